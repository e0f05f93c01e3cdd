package importer

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/aplose/erp-migrate/pkg/dictionary"
	"github.com/aplose/erp-migrate/pkg/legacy"
	"github.com/aplose/erp-migrate/pkg/observability/metrics"
)

const maxDerivedCodeLength = 50

// ImportDictionaries upserts reference values from every configured
// dictionary resource. Dictionary problems never fail the step: an
// unreachable resource or a rejected value is a warning.
func (im *Importer) ImportDictionaries(ctx context.Context, scope *Scope) error {
	for _, src := range im.profile.Dictionaries {
		if err := ctx.Err(); err != nil {
			return err
		}
		records, err := im.fetch(ctx, scope, src.Resource)
		if err != nil {
			im.ledger.Warn(ctx, scope.RunID, StepDictionaries, "", fmt.Sprintf("Could not load %s: %v", src.Resource, err))
			continue
		}

		imported := 0
		for _, rec := range records {
			code := dictionaryCode(src.Type, rec)
			if code == "" {
				continue
			}
			label := rec.FirstString("label", "name", "code")

			externalID := ""
			if id, ok := rec.ID(); ok {
				externalID = strconv.FormatInt(id, 10)
			}

			err := guard(func() error {
				item, err := im.dictionaries.Upsert(ctx, scope.TenantID, src.Type, code, label, imported, true)
				if err != nil {
					return err
				}
				id, ok := rec.ID()
				if !ok {
					return nil
				}
				_, mapped, err := im.resolve(ctx, scope, src.Resource, id)
				if err != nil {
					return fmt.Errorf("resolving %s mapping for %d: %w", src.Resource, id, err)
				}
				if mapped {
					return nil
				}
				return im.remember(ctx, scope, src.Resource, id, TargetDictionaryItem, item.ID)
			})
			if err != nil {
				metrics.ObserveRecord(StepDictionaries, metrics.OutcomeFailed)
				im.ledger.Warn(ctx, scope.RunID, StepDictionaries, externalID,
					fmt.Sprintf("Could not import %s %s: %v", src.Type, code, err))
				continue
			}
			imported++
			metrics.ObserveRecord(StepDictionaries, metrics.OutcomeCreated)
		}

		im.ledger.Info(ctx, scope.RunID, StepDictionaries, "",
			fmt.Sprintf("Imported %d items for %s from %s", imported, src.Type, src.Resource))
	}
	return nil
}

// dictionaryCode derives the natural code of a dictionary value. Countries
// and currencies carry one; other types fall back to the label.
func dictionaryCode(dictType string, rec legacy.Record) string {
	switch dictType {
	case dictionary.TypeCountry, dictionary.TypeCurrency:
		return rec.FirstString("code", "code_iso")
	}
	if label, ok := rec.String("label"); ok {
		runes := []rune(label)
		if len(runes) > maxDerivedCodeLength {
			runes = runes[:maxDerivedCodeLength]
		}
		return strings.ReplaceAll(strings.ToUpper(string(runes)), " ", "_")
	}
	if id, ok := rec.ID(); ok {
		return "D" + strconv.FormatInt(id, 10)
	}
	return ""
}
