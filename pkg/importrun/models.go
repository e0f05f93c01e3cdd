package importrun

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	StatusRunning             = "RUNNING"
	StatusSuccess             = "SUCCESS"
	StatusCompletedWithErrors = "COMPLETED_WITH_ERRORS"
)

const (
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
	LevelSkip  = "SKIP"
)

const (
	maxMessageLength = 1000
	maxStepLength    = 80
)

type Run struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;column:id"`
	TenantID   string     `json:"tenant_id" gorm:"column:tenant_id;size:64;not null;index:idx_legacy_import_runs_tenant"`
	BaseURL    string     `json:"base_url" gorm:"column:base_url;size:500"`
	ConfigID   *uuid.UUID `json:"config_id,omitempty" gorm:"type:uuid;column:config_id"`
	CreatedBy  string     `json:"created_by,omitempty" gorm:"column:created_by;size:64"`
	Status     string     `json:"status" gorm:"column:status;size:32;not null"`
	StartedAt  time.Time  `json:"started_at" gorm:"column:started_at;not null"`
	FinishedAt *time.Time `json:"finished_at,omitempty" gorm:"column:finished_at"`
}

func (Run) TableName() string {
	return "legacy_import_runs"
}

// LogEntry is one append-only ledger row. IDs are assigned in insertion order.
type LogEntry struct {
	ID         int64          `json:"id" gorm:"primaryKey;autoIncrement;column:id"`
	RunID      uuid.UUID      `json:"run_id" gorm:"type:uuid;column:run_id;not null;index:idx_legacy_import_logs_run"`
	Step       string         `json:"step" gorm:"column:step;size:80;not null"`
	Level      string         `json:"level" gorm:"column:level;size:8;not null"`
	ExternalID string         `json:"external_id,omitempty" gorm:"column:external_id;size:64"`
	EntityType string         `json:"entity_type,omitempty" gorm:"column:entity_type;size:64"`
	EntityID   *uuid.UUID     `json:"entity_id,omitempty" gorm:"type:uuid;column:entity_id"`
	Message    string         `json:"message" gorm:"column:message;size:1000"`
	Detail     datatypes.JSON `json:"detail,omitempty" gorm:"column:detail_json"`
	CreatedAt  time.Time      `json:"created_at" gorm:"column:created_at"`
}

func (LogEntry) TableName() string {
	return "legacy_import_logs"
}

// SavedConfig holds the legacy endpoint a tenant imports from.
type SavedConfig struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;column:id"`
	TenantID  string    `json:"tenant_id" gorm:"column:tenant_id;size:64;not null;uniqueIndex"`
	BaseURL   string    `json:"base_url" gorm:"column:base_url;size:500;not null"`
	APIKey    string    `json:"-" gorm:"column:api_key;size:500"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (SavedConfig) TableName() string {
	return "legacy_import_configs"
}
