package importer

import (
	"context"
	"fmt"

	"github.com/aplose/erp-migrate/pkg/erp"
	"github.com/aplose/erp-migrate/pkg/legacy"
)

// ImportProposals reads the first proposal alias that returns records.
func (im *Importer) ImportProposals(ctx context.Context, scope *Scope) error {
	records, resource, err := im.fetchFirst(ctx, scope, im.profile.ProposalResources)
	if err != nil {
		return err
	}
	t, err := im.eachRecord(ctx, scope, StepProposals, records, im.importProposal)
	im.summarize(ctx, scope, StepProposals, resource, t)
	return err
}

// fetchFirst tries each alias in order and keeps the first non-empty list.
// It fails only when every alias failed.
func (im *Importer) fetchFirst(ctx context.Context, scope *Scope, aliases []string) ([]legacy.Record, string, error) {
	var lastErr error
	failures := 0
	for _, alias := range aliases {
		records, err := im.fetch(ctx, scope, alias)
		if err != nil {
			lastErr = err
			failures++
			continue
		}
		if len(records) > 0 {
			return records, alias, nil
		}
	}
	if len(aliases) > 0 && failures == len(aliases) {
		return nil, "", fmt.Errorf("loading %v: %w", aliases, lastErr)
	}
	if len(aliases) > 0 {
		return nil, aliases[0], nil
	}
	return nil, "", nil
}

func (im *Importer) importProposal(ctx context.Context, scope *Scope, rec legacy.Record, id int64) error {
	ref := fallbackRef(rec, "PRO", id, "ref")
	exists, err := im.targets.ProposalReferenceExists(ctx, scope.TenantID, ref)
	if err != nil {
		return fmt.Errorf("checking proposal %s: %w", ref, err)
	}
	if exists {
		return skipf("Reference exists: %s", ref)
	}

	thirdPartyID, err := im.requireThirdParty(ctx, scope, rec)
	if err != nil {
		return err
	}

	issued, ok := rec.FirstDate("date_creation", "datec", "date")
	if !ok {
		issued = im.today()
	}
	status, _ := documentStatus(rec, proposalStatuses, ProposalDraft)

	proposal := &erp.Proposal{
		TenantID:     scope.TenantID,
		Reference:    ref,
		ThirdPartyID: thirdPartyID,
		ContactID:    im.optionalRef(ctx, scope, rec, ExtContacts, "fk_contact", "contact_id"),
		Title:        rec.FirstString("title", "ref_client"),
		IssueDate:    issued,
		ValidUntil:   datePtr(rec, "date_fin_validite", "fin_validite"),
		CurrencyCode: currencyOrDefault(rec, "currency_code", "multicurrency_code"),
		Totals:       documentTotals(rec),
		Notes:        rec.FirstString("note_private"),
		Status:       status,
	}
	if err := im.targets.CreateProposal(ctx, proposal); err != nil {
		return fmt.Errorf("saving proposal %s: %w", ref, err)
	}
	return im.remember(ctx, scope, ExtProposals, id, TargetProposal, proposal.ID)
}
