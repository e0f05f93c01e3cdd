package staging

import (
	"context"
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
	return r.db.AutoMigrate(&Record{})
}

func (r *Repository) Save(ctx context.Context, rec *Record) error {
	rec.CreatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *Repository) ListByRun(ctx context.Context, runID uuid.UUID, entityType string, limit int) ([]Record, error) {
	query := r.db.WithContext(ctx).Where("run_id = ?", runID)
	if entityType != "" {
		query = query.Where("entity_type = ?", entityType)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	var out []Record
	err := query.Order("id ASC").Find(&out).Error
	return out, err
}
