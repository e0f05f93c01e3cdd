package importrun

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu       sync.Mutex
	runs     map[uuid.UUID]*Run
	logs     []LogEntry
	configs  map[string]*SavedConfig
	failLogs bool
}

func newMemStore() *memStore {
	return &memStore{runs: map[uuid.UUID]*Run{}, configs: map[string]*SavedConfig{}}
}

func (m *memStore) CreateRun(_ context.Context, run *Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *run
	m.runs[run.ID] = &cp
	return nil
}

func (m *memStore) FinishRun(_ context.Context, id uuid.UUID, status string, finishedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[id]
	if !ok {
		return ErrNotFound
	}
	run.Status = status
	run.FinishedAt = &finishedAt
	return nil
}

func (m *memStore) GetRun(_ context.Context, id uuid.UUID) (*Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *run
	return &cp, nil
}

func (m *memStore) ListRuns(_ context.Context, tenantID string, limit int) ([]Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Run
	for _, r := range m.runs {
		if r.TenantID == tenantID && len(out) < limit {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memStore) AppendLog(_ context.Context, entry *LogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failLogs {
		return errors.New("disk full")
	}
	entry.ID = int64(len(m.logs) + 1)
	m.logs = append(m.logs, *entry)
	return nil
}

func (m *memStore) CountLogs(_ context.Context, runID uuid.UUID, level string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, l := range m.logs {
		if l.RunID == runID && l.Level == level {
			n++
		}
	}
	return n, nil
}

func (m *memStore) ListLogs(_ context.Context, runID uuid.UUID, level string, limit int) ([]LogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []LogEntry
	for _, l := range m.logs {
		if l.RunID != runID || (level != "" && l.Level != level) {
			continue
		}
		out = append(out, l)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memStore) SaveConfig(_ context.Context, cfg *SavedConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.configs[cfg.TenantID]; ok {
		existing.BaseURL = cfg.BaseURL
		existing.APIKey = cfg.APIKey
		existing.UpdatedAt = cfg.UpdatedAt
		return nil
	}
	cp := *cfg
	m.configs[cfg.TenantID] = &cp
	return nil
}

func (m *memStore) GetConfigByTenant(_ context.Context, tenantID string) (*SavedConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cfg, ok := m.configs[tenantID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *cfg
	return &cp, nil
}

func (m *memStore) GetConfig(_ context.Context, id uuid.UUID) (*SavedConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, cfg := range m.configs {
		if cfg.ID == id {
			cp := *cfg
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func TestCreateRunRequiresTenant(t *testing.T) {
	l := NewLedger(newMemStore())
	_, err := l.CreateRun(context.Background(), "  ", "http://erp", nil, "")
	assert.ErrorIs(t, err, ErrTenantRequired)
}

func TestRunLifecycle(t *testing.T) {
	store := newMemStore()
	l := NewLedger(store)
	ctx := context.Background()

	run, err := l.CreateRun(ctx, "acme", "http://erp", nil, "admin")
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, run.Status)
	assert.Nil(t, run.FinishedAt)

	l.Info(ctx, run.ID, "START", "", "Import started from http://erp")
	l.Skip(ctx, run.ID, "INVOICES", "42", "Third party not found: 9")

	hasErrors, err := l.HasErrors(ctx, run.ID)
	require.NoError(t, err)
	assert.False(t, hasErrors)

	l.Error(ctx, run.ID, "INVOICES", "43", "boom")
	hasErrors, err = l.HasErrors(ctx, run.ID)
	require.NoError(t, err)
	assert.True(t, hasErrors)

	require.NoError(t, l.FinishRun(ctx, run.ID, StatusCompletedWithErrors))
	stored, err := l.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompletedWithErrors, stored.Status)
	require.NotNil(t, stored.FinishedAt)

	logs, err := l.ListLogs(ctx, run.ID, "", 0)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, "START", logs[0].Step)
	assert.Equal(t, LevelSkip, logs[1].Level)

	skips, err := l.ListLogs(ctx, run.ID, "skip", 0)
	require.NoError(t, err)
	require.Len(t, skips, 1)
	assert.Equal(t, "42", skips[0].ExternalID)
}

func TestLogTruncatesAndSerializesDetail(t *testing.T) {
	store := newMemStore()
	l := NewLedger(store)
	runID := uuid.New()

	l.Log(context.Background(), Entry{
		RunID:   runID,
		Step:    strings.Repeat("S", 120),
		Level:   LevelWarn,
		Message: strings.Repeat("é", 1500),
		Detail:  map[string]interface{}{"resource": "payments", "count": 3},
	})

	require.Len(t, store.logs, 1)
	entry := store.logs[0]
	assert.Len(t, []rune(entry.Message), maxMessageLength)
	assert.Len(t, entry.Step, maxStepLength)
	assert.JSONEq(t, `{"resource":"payments","count":3}`, string(entry.Detail))
}

func TestLogFailureDoesNotPanic(t *testing.T) {
	store := newMemStore()
	store.failLogs = true
	l := NewLedger(store)

	assert.NotPanics(t, func() {
		l.Warn(context.Background(), uuid.New(), "PAYMENTS", "", "Payments import skipped: timeout")
	})
}

func TestSavedConfig(t *testing.T) {
	store := newMemStore()
	l := NewLedger(store)
	ctx := context.Background()

	_, err := l.SaveConfig(ctx, "acme", " ", "key")
	assert.ErrorIs(t, err, ErrBaseURLRequired)

	first, err := l.SaveConfig(ctx, "acme", "https://erp.acme.test/", " key-1 ")
	require.NoError(t, err)
	assert.Equal(t, "https://erp.acme.test", first.BaseURL)
	assert.Equal(t, "key-1", first.APIKey)

	second, err := l.SaveConfig(ctx, "acme", "https://erp2.acme.test", "key-2")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	resolved, err := l.ResolveConfig(ctx, "acme", &first.ID)
	require.NoError(t, err)
	assert.Equal(t, "key-2", resolved.APIKey)

	_, err = l.ResolveConfig(ctx, "globex", &first.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	resolved, err = l.ResolveConfig(ctx, "acme", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://erp2.acme.test", resolved.BaseURL)
}

func TestListRunsDefaultsLimit(t *testing.T) {
	store := newMemStore()
	l := NewLedger(store)
	ctx := context.Background()
	for i := 0; i < 12; i++ {
		_, err := l.CreateRun(ctx, "acme", "http://erp", nil, "")
		require.NoError(t, err)
	}
	runs, err := l.ListRuns(ctx, "acme", 0)
	require.NoError(t, err)
	assert.Len(t, runs, DefaultRunListLimit)
}
