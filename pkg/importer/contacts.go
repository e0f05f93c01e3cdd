package importer

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aplose/erp-migrate/pkg/common/logger"
	"github.com/aplose/erp-migrate/pkg/erp"
	"github.com/aplose/erp-migrate/pkg/legacy"
)

func (im *Importer) ImportContacts(ctx context.Context, scope *Scope) error {
	records, err := im.fetch(ctx, scope, ExtContacts)
	if err != nil {
		return fmt.Errorf("loading %s: %w", ExtContacts, err)
	}
	t, err := im.eachRecord(ctx, scope, StepContacts, records, im.importContact)
	im.summarize(ctx, scope, StepContacts, ExtContacts, t)
	return err
}

func (im *Importer) importContact(ctx context.Context, scope *Scope, rec legacy.Record, id int64) error {
	code := "CT-" + strconv.FormatInt(id, 10)
	exists, err := im.targets.ContactCodeExists(ctx, scope.TenantID, code)
	if err != nil {
		return fmt.Errorf("checking contact %s: %w", code, err)
	}
	if exists {
		return skipf("Contact already exists: %s", code)
	}

	contact := &erp.Contact{
		TenantID:     scope.TenantID,
		Code:         code,
		FirstName:    nameOrPlaceholder(rec, "firstname", "prenom"),
		LastName:     nameOrPlaceholder(rec, "lastname", "nom"),
		Civility:     rec.FirstString("civility_code", "civility"),
		JobTitle:     rec.FirstString("poste"),
		Department:   rec.FirstString("department"),
		Email:        rec.FirstString("email"),
		Phone:        rec.FirstString("phone_pro", "phone"),
		Mobile:       rec.FirstString("phone_mobile"),
		Fax:          rec.FirstString("fax"),
		AddressLine1: rec.FirstString("address"),
		City:         rec.FirstString("town"),
		State:        rec.FirstString("state"),
		PostalCode:   rec.FirstString("zip"),
		CountryCode:  rec.FirstString("country_code"),
		Notes:        rec.FirstString("note_private"),
		Status:       erp.StatusActive,
	}
	if err := im.targets.CreateContact(ctx, contact); err != nil {
		return fmt.Errorf("saving contact %s: %w", code, err)
	}
	if err := im.remember(ctx, scope, ExtContacts, id, TargetContact, contact.ID); err != nil {
		return err
	}

	thirdPartyID := im.optionalRef(ctx, scope, rec, ExtThirdParties, "socid")
	if thirdPartyID == nil {
		return nil
	}
	link := &erp.ContactLink{
		TenantID:     scope.TenantID,
		ContactID:    contact.ID,
		ThirdPartyID: *thirdPartyID,
		LinkType:     erp.LinkTypeEmployee,
	}
	if err := im.targets.CreateContactLink(ctx, link); err != nil {
		logger.Log.WithError(err).WithField("contact", code).Warn("contact link not saved")
		im.ledger.Warn(ctx, scope.RunID, StepContacts, strconv.FormatInt(id, 10),
			fmt.Sprintf("Contact %s saved without third party link: %v", code, err))
	}
	return nil
}

func nameOrPlaceholder(rec legacy.Record, keys ...string) string {
	if v := rec.FirstString(keys...); v != "" {
		return v
	}
	return placeholderName
}
