package importer

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aplose/erp-migrate/pkg/legacy"
	"github.com/aplose/erp-migrate/pkg/observability/metrics"
	"github.com/aplose/erp-migrate/pkg/staging"
	"gorm.io/datatypes"
)

// StageUnmodeled copies legacy records that have no target model yet into
// the staging table, one resource at a time.
func (im *Importer) StageUnmodeled(ctx context.Context, scope *Scope) error {
	for _, resource := range im.profile.StagingResources {
		if err := ctx.Err(); err != nil {
			return err
		}
		records, err := im.fetch(ctx, scope, resource)
		if err != nil {
			im.ledger.Warn(ctx, scope.RunID, StepStaging, "", fmt.Sprintf("Could not load %s: %v", resource, err))
			continue
		}
		for _, rec := range records {
			im.stageRecord(ctx, scope, resource, rec)
		}
	}
	return nil
}

func (im *Importer) stageRecord(ctx context.Context, scope *Scope, resource string, rec legacy.Record) {
	id, ok := rec.ID()
	if !ok {
		return
	}
	externalID := strconv.FormatInt(id, 10)

	err := guard(func() error {
		return im.staging.Save(ctx, &staging.Record{
			RunID:      scope.RunID,
			EntityType: resource,
			ExternalID: id,
			Payload:    datatypes.JSONMap(rec),
		})
	})
	if err != nil {
		metrics.ObserveRecord(StepStaging, metrics.OutcomeFailed)
		im.ledger.Error(ctx, scope.RunID, StepStaging, externalID, fmt.Sprintf("Could not stage %s %d: %v", resource, id, err))
		return
	}
	metrics.ObserveRecord(StepStaging, metrics.OutcomeStaged)
	im.ledger.Info(ctx, scope.RunID, StepStaging, externalID, fmt.Sprintf("pending module: %s id=%d", resource, id))
}
