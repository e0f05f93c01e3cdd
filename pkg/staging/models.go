package staging

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Record keeps a legacy object verbatim until a target model exists for it.
type Record struct {
	ID         int64             `json:"id" gorm:"primaryKey;autoIncrement;column:id"`
	RunID      uuid.UUID         `json:"run_id" gorm:"type:uuid;column:run_id;not null;index:idx_legacy_import_staging_run"`
	EntityType string            `json:"entity_type" gorm:"column:entity_type;size:64;not null"`
	ExternalID int64             `json:"external_id" gorm:"column:external_id;not null"`
	Payload    datatypes.JSONMap `json:"payload" gorm:"column:payload"`
	CreatedAt  time.Time         `json:"created_at" gorm:"column:created_at"`
}

func (Record) TableName() string {
	return "legacy_import_staging"
}
