package importer

import (
	"context"
	"fmt"

	"github.com/aplose/erp-migrate/pkg/erp"
	"github.com/aplose/erp-migrate/pkg/legacy"
	"github.com/shopspring/decimal"
)

func (im *Importer) ImportInvoices(ctx context.Context, scope *Scope) error {
	records, err := im.fetch(ctx, scope, ExtInvoices)
	if err != nil {
		return fmt.Errorf("loading %s: %w", ExtInvoices, err)
	}
	t, err := im.eachRecord(ctx, scope, StepInvoices, records, im.importInvoice)
	im.summarize(ctx, scope, StepInvoices, ExtInvoices, t)
	return err
}

func (im *Importer) importInvoice(ctx context.Context, scope *Scope, rec legacy.Record, id int64) error {
	ref := fallbackRef(rec, "INV", id, "ref")
	exists, err := im.targets.InvoiceReferenceExists(ctx, scope.TenantID, ref)
	if err != nil {
		return fmt.Errorf("checking invoice %s: %w", ref, err)
	}
	if exists {
		return skipf("Reference exists: %s", ref)
	}

	thirdPartyID, err := im.requireThirdParty(ctx, scope, rec)
	if err != nil {
		return err
	}

	issued, ok := rec.FirstDate("date")
	if !ok {
		issued = im.today()
	}
	due, ok := rec.FirstDate("date_lim_reglement")
	if !ok {
		due = issued.AddDate(0, 0, DefaultDueDays)
	}

	totals := documentTotals(rec)
	paid := amountPaid(rec, totals.Total)

	invoice := &erp.Invoice{
		TenantID:        scope.TenantID,
		Reference:       ref,
		Type:            invoiceType(rec),
		ThirdPartyID:    thirdPartyID,
		ContactID:       im.optionalRef(ctx, scope, rec, ExtContacts, "fk_contact", "contact_id"),
		IssueDate:       issued,
		DueDate:         due,
		CurrencyCode:    currencyOrDefault(rec, "currency_code", "multicurrency_code"),
		Totals:          totals,
		AmountPaid:      paid,
		AmountRemaining: totals.Total.Sub(paid),
		Notes:           rec.FirstString("note_private"),
		Status:          invoiceStatus(rec, totals.Total, paid),
	}
	if err := im.targets.CreateInvoice(ctx, invoice); err != nil {
		return fmt.Errorf("saving invoice %s: %w", ref, err)
	}
	return im.remember(ctx, scope, ExtInvoices, id, TargetInvoice, invoice.ID)
}

// invoiceType treats legacy type 2 as a purchase invoice.
func invoiceType(rec legacy.Record) string {
	if t, ok := rec.Int("type"); ok && t == 2 {
		return erp.InvoiceTypePurchase
	}
	return erp.InvoiceTypeSales
}

// amountPaid prefers the settled amount reported by the API. Without one, a
// paid flag means the whole total was settled.
func amountPaid(rec legacy.Record, total decimal.Decimal) decimal.Decimal {
	if paid, ok := firstDecimal(rec, "totalpaid", "sumpayed"); ok {
		return paid
	}
	if rec.Bool("paye") {
		return total
	}
	return decimal.Zero
}

func invoiceStatus(rec legacy.Record, total, paid decimal.Decimal) string {
	paidFlag := rec.Bool("paye")
	partial := paid.IsPositive() && paid.LessThan(total)

	status, hasCode := documentStatus(rec, invoiceStatuses, InvoiceValidated)
	if hasCode && status != InvoiceValidated {
		return status
	}
	switch {
	case paidFlag:
		return InvoicePaid
	case partial:
		return InvoicePartiallyPaid
	default:
		return InvoiceValidated
	}
}
