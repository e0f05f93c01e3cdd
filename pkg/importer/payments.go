package importer

import (
	"context"
	"fmt"

	"github.com/aplose/erp-migrate/pkg/erp"
	"github.com/aplose/erp-migrate/pkg/legacy"
	"github.com/shopspring/decimal"
)

// ImportPayments is optional: when the payments resource cannot be read the
// whole step is skipped with a warning.
func (im *Importer) ImportPayments(ctx context.Context, scope *Scope) error {
	records, err := im.fetch(ctx, scope, ExtPayments)
	if err != nil {
		im.ledger.Warn(ctx, scope.RunID, StepPayments, "", fmt.Sprintf("Payments import skipped: %v", err))
		return nil
	}
	t, err := im.eachRecord(ctx, scope, StepPayments, records, im.importPayment)
	im.summarize(ctx, scope, StepPayments, ExtPayments, t)
	return err
}

func (im *Importer) importPayment(ctx context.Context, scope *Scope, rec legacy.Record, id int64) error {
	ref := fallbackRef(rec, "PAY", id, "num_payment", "ref")
	exists, err := im.targets.PaymentReferenceExists(ctx, scope.TenantID, ref)
	if err != nil {
		return fmt.Errorf("checking payment %s: %w", ref, err)
	}
	if exists {
		return skipf("Reference exists: %s", ref)
	}

	invoiceLegacyID, ok := rec.Int64("fk_facture")
	if !ok || invoiceLegacyID <= 0 {
		return skipf("Missing fk_facture")
	}
	invoiceID, found, err := im.resolve(ctx, scope, ExtInvoices, invoiceLegacyID)
	if err != nil {
		return fmt.Errorf("resolving invoice %d: %w", invoiceLegacyID, err)
	}
	if !found {
		return skipf("Invoice not found: %d", invoiceLegacyID)
	}

	paidOn, ok := rec.FirstDate("datep", "date")
	if !ok {
		paidOn = im.today()
	}
	method := rec.FirstString("payment_method", "type_code")
	if method == "" {
		method = DefaultPaymentMethod
	}

	payment := &erp.Payment{
		TenantID:     scope.TenantID,
		Reference:    ref,
		InvoiceID:    invoiceID,
		Amount:       rec.DecimalOr("amount", decimal.Zero),
		CurrencyCode: currencyOrDefault(rec, "currency_code"),
		PaymentDate:  paidOn,
		Method:       method,
		Notes:        rec.FirstString("note"),
	}
	if err := im.targets.CreatePayment(ctx, payment); err != nil {
		return fmt.Errorf("saving payment %s: %w", ref, err)
	}
	return im.remember(ctx, scope, ExtPayments, id, TargetPayment, payment.ID)
}
