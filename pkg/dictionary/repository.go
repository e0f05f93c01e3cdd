package dictionary

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&Item{}, &Currency{})
}

// UpsertItem writes item keyed by (tenant, type, code) and returns the stored row.
func (r *Repository) UpsertItem(ctx context.Context, item *Item) (*Item, error) {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "dict_type"}, {Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"label", "sort_order", "active", "updated_at"}),
	}).Create(item).Error
	if err != nil {
		return nil, err
	}

	var stored Item
	err = r.db.WithContext(ctx).
		Where("tenant_id = ? AND dict_type = ? AND code = ?", item.TenantID, item.DictType, item.Code).
		Take(&stored).Error
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

// EnsureCurrency inserts the currency unless its code is already present.
func (r *Repository) EnsureCurrency(ctx context.Context, currency *Currency) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(currency).Error
}

func (r *Repository) ListItems(ctx context.Context, tenantID, dictType string) ([]Item, error) {
	var items []Item
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND dict_type = ?", tenantID, dictType).
		Order("sort_order ASC").
		Find(&items).Error
	return items, err
}
