package mapping

import (
	"time"

	"github.com/google/uuid"
)

// Mapping links a legacy identifier to the target row created for it during
// one import run. Rows are written once and never updated.
type Mapping struct {
	ID           int64     `json:"id" gorm:"primaryKey;autoIncrement;column:id"`
	TenantID     string    `json:"tenant_id" gorm:"column:tenant_id;size:64;not null;uniqueIndex:uq_legacy_import_mapping,priority:1"`
	RunID        uuid.UUID `json:"run_id" gorm:"type:uuid;column:run_id;not null;uniqueIndex:uq_legacy_import_mapping,priority:2"`
	ExternalType string    `json:"external_type" gorm:"column:external_type;size:64;not null;uniqueIndex:uq_legacy_import_mapping,priority:3"`
	ExternalID   int64     `json:"external_id" gorm:"column:external_id;not null;uniqueIndex:uq_legacy_import_mapping,priority:4"`
	TargetType   string    `json:"target_type" gorm:"column:target_type;size:64;not null"`
	TargetID     uuid.UUID `json:"target_id" gorm:"type:uuid;column:target_id;not null"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at"`
}

func (Mapping) TableName() string {
	return "legacy_import_mappings"
}
