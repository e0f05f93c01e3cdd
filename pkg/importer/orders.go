package importer

import (
	"context"
	"fmt"

	"github.com/aplose/erp-migrate/pkg/erp"
	"github.com/aplose/erp-migrate/pkg/legacy"
)

func (im *Importer) ImportOrders(ctx context.Context, scope *Scope) error {
	records, err := im.fetch(ctx, scope, ExtOrders)
	if err != nil {
		return fmt.Errorf("loading %s: %w", ExtOrders, err)
	}
	t, err := im.eachRecord(ctx, scope, StepOrders, records, im.importOrder)
	im.summarize(ctx, scope, StepOrders, ExtOrders, t)
	return err
}

func (im *Importer) importOrder(ctx context.Context, scope *Scope, rec legacy.Record, id int64) error {
	ref := fallbackRef(rec, "SO", id, "ref")
	exists, err := im.targets.OrderReferenceExists(ctx, scope.TenantID, ref)
	if err != nil {
		return fmt.Errorf("checking order %s: %w", ref, err)
	}
	if exists {
		return skipf("Reference exists: %s", ref)
	}

	thirdPartyID, err := im.requireThirdParty(ctx, scope, rec)
	if err != nil {
		return err
	}

	ordered, ok := rec.FirstDate("date_commande", "date")
	if !ok {
		ordered = im.today()
	}
	status, _ := documentStatus(rec, orderStatuses, OrderConfirmed)

	order := &erp.SalesOrder{
		TenantID:     scope.TenantID,
		Reference:    ref,
		ThirdPartyID: thirdPartyID,
		ContactID:    im.optionalRef(ctx, scope, rec, ExtContacts, "fk_contact", "contact_id"),
		OrderDate:    ordered,
		ExpectedDate: datePtr(rec, "date_livraison", "delivery_date"),
		CurrencyCode: currencyOrDefault(rec, "currency_code", "multicurrency_code"),
		Totals:       documentTotals(rec),
		Notes:        rec.FirstString("note_private"),
		Status:       status,
	}
	if err := im.targets.CreateOrder(ctx, order); err != nil {
		return fmt.Errorf("saving order %s: %w", ref, err)
	}
	return im.remember(ctx, scope, ExtOrders, id, TargetSalesOrder, order.ID)
}
