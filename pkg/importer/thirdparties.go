package importer

import (
	"context"
	"fmt"

	"github.com/aplose/erp-migrate/pkg/common/logger"
	"github.com/aplose/erp-migrate/pkg/erp"
	"github.com/aplose/erp-migrate/pkg/legacy"
	"github.com/shopspring/decimal"
)

func (im *Importer) ImportThirdParties(ctx context.Context, scope *Scope) error {
	records, err := im.fetch(ctx, scope, ExtThirdParties)
	if err != nil {
		return fmt.Errorf("loading %s: %w", ExtThirdParties, err)
	}
	t, err := im.eachRecord(ctx, scope, StepThirdParties, records, im.importThirdParty)
	im.summarize(ctx, scope, StepThirdParties, ExtThirdParties, t)
	return err
}

func (im *Importer) importThirdParty(ctx context.Context, scope *Scope, rec legacy.Record, id int64) error {
	name := rec.FirstString("name", "nom")
	if name == "" {
		logger.ForRun(scope.TenantID, scope.RunID).WithField("external_id", id).Debug("third party without a name ignored")
		return errIgnored
	}

	code := rec.ThirdPartyCode()
	exists, err := im.targets.ThirdPartyCodeExists(ctx, scope.TenantID, code)
	if err != nil {
		return fmt.Errorf("checking code %s: %w", code, err)
	}
	if exists {
		return skipf("Code already exists: %s", code)
	}

	tp := &erp.ThirdParty{
		TenantID:           scope.TenantID,
		Code:               code,
		Name:               name,
		Type:               thirdPartyType(rec),
		LegalForm:          rec.FirstString("forme_juridique", "forme_juridique_code"),
		TaxID:              rec.FirstString("tva_intra"),
		RegistrationNumber: rec.FirstString("siren", "idprof1"),
		Website:            rec.FirstString("url"),
		Phone:              rec.FirstString("phone"),
		Fax:                rec.FirstString("fax"),
		Email:              rec.FirstString("email"),
		AddressLine1:       rec.FirstString("address"),
		AddressLine2:       rec.FirstString("address2"),
		City:               rec.FirstString("town"),
		State:              rec.FirstString("state"),
		PostalCode:         rec.FirstString("zip"),
		CountryCode:        rec.FirstString("country_code", "code_pays"),
		CurrencyCode:       rec.FirstString("code_devise", "multicurrency_code"),
		Notes:              rec.FirstString("note_private"),
		Status:             erp.StatusActive,
	}
	if terms, ok := rec.Int("payment_terms"); ok {
		tp.PaymentTermsDays = &terms
	}
	if limit, ok := firstDecimal(rec, "credit_limit", "outstanding_limit"); ok {
		tp.CreditLimit = &limit
	}

	if err := im.targets.CreateThirdParty(ctx, tp); err != nil {
		return fmt.Errorf("saving third party %s: %w", code, err)
	}
	return im.remember(ctx, scope, ExtThirdParties, id, TargetThirdParty, tp.ID)
}

// thirdPartyType reads the customer, supplier and prospect flags. The
// client field is either a boolean or the legacy enum 0 none, 1 customer,
// 2 prospect, 3 both.
func thirdPartyType(rec legacy.Record) string {
	customer := rec.Bool("client")
	prospect := rec.Bool("prospect")
	if n, ok := rec.Int("client"); ok {
		customer = n == 1 || n == 3
		prospect = prospect || n == 2 || n == 3
	}
	supplier := rec.Bool("fournisseur")

	switch {
	case customer && supplier:
		return erp.ThirdPartyBoth
	case customer:
		return erp.ThirdPartyCustomer
	case supplier:
		return erp.ThirdPartySupplier
	case prospect:
		return erp.ThirdPartyProspect
	default:
		return erp.ThirdPartyOther
	}
}

func firstDecimal(rec legacy.Record, keys ...string) (decimal.Decimal, bool) {
	for _, k := range keys {
		if d, ok := rec.Decimal(k); ok {
			return d, true
		}
	}
	return decimal.Zero, false
}
