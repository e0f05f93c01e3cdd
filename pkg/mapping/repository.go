package mapping

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&Mapping{})
}

// Record stores one mapping. Mapping the same legacy id twice in a run
// violates the unique index and is returned as an error.
func (r *Repository) Record(ctx context.Context, m *Mapping) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(m).Error
}

// Resolve returns the target id created for a legacy record in this run. The
// boolean is false when the record was not imported by the run.
func (r *Repository) Resolve(ctx context.Context, tenantID string, runID uuid.UUID, externalType string, externalID int64) (uuid.UUID, bool, error) {
	var m Mapping
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND run_id = ? AND external_type = ? AND external_id = ?", tenantID, runID, externalType, externalID).
		Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, err
	}
	return m.TargetID, true, nil
}

func (r *Repository) ListByRun(ctx context.Context, tenantID string, runID uuid.UUID) ([]Mapping, error) {
	var out []Mapping
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND run_id = ?", tenantID, runID).
		Order("id ASC").
		Find(&out).Error
	return out, err
}
