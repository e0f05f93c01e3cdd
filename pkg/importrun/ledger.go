package importrun

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/aplose/erp-migrate/pkg/common/logger"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const DefaultRunListLimit = 10

var (
	ErrTenantRequired  = errors.New("tenant id is required")
	ErrBaseURLRequired = errors.New("base url is required")
)

// Store is the persistence the ledger writes through. *Repository satisfies it.
type Store interface {
	CreateRun(ctx context.Context, run *Run) error
	FinishRun(ctx context.Context, id uuid.UUID, status string, finishedAt time.Time) error
	GetRun(ctx context.Context, id uuid.UUID) (*Run, error)
	ListRuns(ctx context.Context, tenantID string, limit int) ([]Run, error)
	AppendLog(ctx context.Context, entry *LogEntry) error
	CountLogs(ctx context.Context, runID uuid.UUID, level string) (int64, error)
	ListLogs(ctx context.Context, runID uuid.UUID, level string, limit int) ([]LogEntry, error)
	SaveConfig(ctx context.Context, cfg *SavedConfig) error
	GetConfigByTenant(ctx context.Context, tenantID string) (*SavedConfig, error)
	GetConfig(ctx context.Context, id uuid.UUID) (*SavedConfig, error)
}

// Entry describes one ledger line before it is stored.
type Entry struct {
	RunID      uuid.UUID
	Step       string
	Level      string
	ExternalID string
	EntityType string
	EntityID   *uuid.UUID
	Message    string
	Detail     interface{}
}

// Ledger records import runs and their per-record outcomes. Log writes never
// fail the caller; a lost ledger line is reported on the process log instead.
type Ledger struct {
	store Store
	now   func() time.Time
}

func NewLedger(store Store) *Ledger {
	return &Ledger{store: store, now: func() time.Time { return time.Now().UTC() }}
}

func (l *Ledger) CreateRun(ctx context.Context, tenantID, baseURL string, configID *uuid.UUID, createdBy string) (*Run, error) {
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return nil, ErrTenantRequired
	}
	run := &Run{
		ID:        uuid.New(),
		TenantID:  tenantID,
		BaseURL:   baseURL,
		ConfigID:  configID,
		CreatedBy: createdBy,
		Status:    StatusRunning,
		StartedAt: l.now(),
	}
	if err := l.store.CreateRun(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

func (l *Ledger) FinishRun(ctx context.Context, runID uuid.UUID, status string) error {
	return l.store.FinishRun(ctx, runID, status, l.now())
}

func (l *Ledger) Log(ctx context.Context, e Entry) {
	entry := &LogEntry{
		RunID:      e.RunID,
		Step:       truncate(e.Step, maxStepLength),
		Level:      e.Level,
		ExternalID: e.ExternalID,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Message:    truncate(e.Message, maxMessageLength),
		CreatedAt:  l.now(),
	}
	if e.Detail != nil {
		if raw, err := json.Marshal(e.Detail); err == nil {
			entry.Detail = datatypes.JSON(raw)
		} else {
			logger.Log.WithError(err).WithField("run_id", e.RunID).Warn("dropping unserializable ledger detail")
		}
	}

	if err := l.store.AppendLog(ctx, entry); err != nil {
		logger.Log.WithError(err).WithFields(map[string]interface{}{
			"run_id":      e.RunID,
			"step":        e.Step,
			"level":       e.Level,
			"external_id": e.ExternalID,
			"message":     entry.Message,
		}).Error("failed to write import log entry")
	}
}

func (l *Ledger) Info(ctx context.Context, runID uuid.UUID, step, externalID, message string) {
	l.Log(ctx, Entry{RunID: runID, Step: step, Level: LevelInfo, ExternalID: externalID, Message: message})
}

func (l *Ledger) Warn(ctx context.Context, runID uuid.UUID, step, externalID, message string) {
	l.Log(ctx, Entry{RunID: runID, Step: step, Level: LevelWarn, ExternalID: externalID, Message: message})
}

func (l *Ledger) Error(ctx context.Context, runID uuid.UUID, step, externalID, message string) {
	l.Log(ctx, Entry{RunID: runID, Step: step, Level: LevelError, ExternalID: externalID, Message: message})
}

func (l *Ledger) Skip(ctx context.Context, runID uuid.UUID, step, externalID, message string) {
	l.Log(ctx, Entry{RunID: runID, Step: step, Level: LevelSkip, ExternalID: externalID, Message: message})
}

// HasErrors reports whether any ERROR line was written for the run.
func (l *Ledger) HasErrors(ctx context.Context, runID uuid.UUID) (bool, error) {
	n, err := l.store.CountLogs(ctx, runID, LevelError)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (l *Ledger) GetRun(ctx context.Context, runID uuid.UUID) (*Run, error) {
	return l.store.GetRun(ctx, runID)
}

func (l *Ledger) ListRuns(ctx context.Context, tenantID string, limit int) ([]Run, error) {
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return nil, ErrTenantRequired
	}
	if limit <= 0 {
		limit = DefaultRunListLimit
	}
	return l.store.ListRuns(ctx, tenantID, limit)
}

// ListLogs returns the run's log lines in insertion order, optionally
// filtered by level.
func (l *Ledger) ListLogs(ctx context.Context, runID uuid.UUID, level string, limit int) ([]LogEntry, error) {
	return l.store.ListLogs(ctx, runID, strings.ToUpper(strings.TrimSpace(level)), limit)
}

// SaveConfig stores the tenant's legacy endpoint, replacing any previous one.
func (l *Ledger) SaveConfig(ctx context.Context, tenantID, baseURL, apiKey string) (*SavedConfig, error) {
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return nil, ErrTenantRequired
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, ErrBaseURLRequired
	}
	cfg := &SavedConfig{
		ID:        uuid.New(),
		TenantID:  tenantID,
		BaseURL:   baseURL,
		APIKey:    strings.TrimSpace(apiKey),
		UpdatedAt: l.now(),
	}
	if err := l.store.SaveConfig(ctx, cfg); err != nil {
		return nil, err
	}
	return l.store.GetConfigByTenant(ctx, tenantID)
}

// ResolveConfig loads the saved endpoint by id, or the tenant's only one when
// configID is nil. A config that belongs to another tenant is not found.
func (l *Ledger) ResolveConfig(ctx context.Context, tenantID string, configID *uuid.UUID) (*SavedConfig, error) {
	if configID == nil {
		return l.store.GetConfigByTenant(ctx, tenantID)
	}
	cfg, err := l.store.GetConfig(ctx, *configID)
	if err != nil {
		return nil, err
	}
	if cfg.TenantID != tenantID {
		return nil, ErrNotFound
	}
	return cfg, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
