package importrun

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNotFound = errors.New("import record not found")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&Run{}, &LogEntry{}, &SavedConfig{})
}

func (r *Repository) CreateRun(ctx context.Context, run *Run) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *Repository) FinishRun(ctx context.Context, id uuid.UUID, status string, finishedAt time.Time) error {
	result := r.db.WithContext(ctx).Model(&Run{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      status,
			"finished_at": finishedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	var run Run
	result := r.db.WithContext(ctx).First(&run, "id = ?", id)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &run, result.Error
}

func (r *Repository) ListRuns(ctx context.Context, tenantID string, limit int) ([]Run, error) {
	var runs []Run
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("started_at DESC").
		Limit(limit).
		Find(&runs).Error
	return runs, err
}

func (r *Repository) AppendLog(ctx context.Context, entry *LogEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *Repository) CountLogs(ctx context.Context, runID uuid.UUID, level string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&LogEntry{}).
		Where("run_id = ? AND level = ?", runID, level).
		Count(&count).Error
	return count, err
}

func (r *Repository) ListLogs(ctx context.Context, runID uuid.UUID, level string, limit int) ([]LogEntry, error) {
	query := r.db.WithContext(ctx).Where("run_id = ?", runID)
	if level != "" {
		query = query.Where("level = ?", level)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	var entries []LogEntry
	err := query.Order("id ASC").Find(&entries).Error
	return entries, err
}

// SaveConfig inserts or replaces the tenant's saved endpoint.
func (r *Repository) SaveConfig(ctx context.Context, cfg *SavedConfig) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"base_url", "api_key", "updated_at"}),
	}).Create(cfg).Error
}

func (r *Repository) GetConfigByTenant(ctx context.Context, tenantID string) (*SavedConfig, error) {
	var cfg SavedConfig
	result := r.db.WithContext(ctx).First(&cfg, "tenant_id = ?", tenantID)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &cfg, result.Error
}

func (r *Repository) GetConfig(ctx context.Context, id uuid.UUID) (*SavedConfig, error) {
	var cfg SavedConfig
	result := r.db.WithContext(ctx).First(&cfg, "id = ?", id)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &cfg, result.Error
}
