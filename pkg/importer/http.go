package importer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aplose/erp-migrate/pkg/common/logger"
	"github.com/aplose/erp-migrate/pkg/common/models"
	"github.com/aplose/erp-migrate/pkg/dictionary"
	"github.com/aplose/erp-migrate/pkg/importrun"
	"github.com/aplose/erp-migrate/pkg/mapping"
	"github.com/aplose/erp-migrate/pkg/staging"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const (
	defaultLogLimit     = 500
	defaultStagingLimit = 100
)

type Runner interface {
	Run(ctx context.Context, req Request) (*importrun.Run, error)
	TestConnection(ctx context.Context, baseURL, apiKey string) bool
}

type RunQueries interface {
	GetRun(ctx context.Context, runID uuid.UUID) (*importrun.Run, error)
	ListRuns(ctx context.Context, tenantID string, limit int) ([]importrun.Run, error)
	ListLogs(ctx context.Context, runID uuid.UUID, level string, limit int) ([]importrun.LogEntry, error)
	SaveConfig(ctx context.Context, tenantID, baseURL, apiKey string) (*importrun.SavedConfig, error)
}

type StagingQueries interface {
	ListByRun(ctx context.Context, runID uuid.UUID, entityType string, limit int) ([]staging.Record, error)
}

type MappingQueries interface {
	ListByRun(ctx context.Context, tenantID string, runID uuid.UUID) ([]mapping.Mapping, error)
}

type DictionaryQueries interface {
	ListItems(ctx context.Context, tenantID, dictType string) ([]dictionary.Item, error)
}

type Queue interface {
	Enqueue(ctx context.Context, req models.ImportRequest) error
}

// HandlerDeps lists what the admin API reads and drives. Queue may be nil,
// in which case every import runs within the request. RunTimeout bounds a
// run started by a request; zero means no bound.
type HandlerDeps struct {
	Runner       Runner
	Runs         RunQueries
	Staging      StagingQueries
	Mappings     MappingQueries
	Dictionaries DictionaryQueries
	Queue        Queue
	RunTimeout   time.Duration
}

type Handler struct {
	runner       Runner
	runs         RunQueries
	staging      StagingQueries
	mappings     MappingQueries
	dictionaries DictionaryQueries
	queue        Queue
	runTimeout   time.Duration
}

func NewHandler(deps HandlerDeps) *Handler {
	return &Handler{
		runner:       deps.Runner,
		runs:         deps.Runs,
		staging:      deps.Staging,
		mappings:     deps.Mappings,
		dictionaries: deps.Dictionaries,
		queue:        deps.Queue,
		runTimeout:   deps.RunTimeout,
	}
}

func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/connection-test", h.handleTestConnection).Methods(http.MethodPost)
	r.HandleFunc("/import-config", h.handleSaveConfig).Methods(http.MethodPut)
	r.HandleFunc("/imports", h.handleStartImport).Methods(http.MethodPost)
	r.HandleFunc("/imports", h.handleListRuns).Methods(http.MethodGet)
	r.HandleFunc("/imports/{id}", h.handleGetRun).Methods(http.MethodGet)
	r.HandleFunc("/imports/{id}/logs", h.handleListLogs).Methods(http.MethodGet)
	r.HandleFunc("/imports/{id}/staging", h.handleListStaging).Methods(http.MethodGet)
	r.HandleFunc("/imports/{id}/mappings", h.handleListMappings).Methods(http.MethodGet)
	r.HandleFunc("/dictionaries/{type}", h.handleListDictionary).Methods(http.MethodGet)
}

type credentials struct {
	BaseURL string `json:"base_url"`
	APIKey  string `json:"api_key"`
}

type startRequest struct {
	credentials
	ConfigID    string `json:"config_id"`
	InitiatedBy string `json:"initiated_by"`
	Async       bool   `json:"async"`
}

func (h *Handler) handleTestConnection(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.BaseURL) == "" {
		http.Error(w, "base_url is required", http.StatusBadRequest)
		return
	}
	ok := h.runner.TestConnection(r.Context(), req.BaseURL, req.APIKey)
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": ok})
}

func (h *Handler) handleSaveConfig(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	cfg, err := h.runs.SaveConfig(r.Context(), tenantVar(r), req.BaseURL, req.APIKey)
	if err != nil {
		writeError(w, err, "failed to save import config")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"config": cfg})
}

func (h *Handler) handleStartImport(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	tenantID := tenantVar(r)

	var configID *uuid.UUID
	if req.ConfigID != "" {
		id, err := uuid.Parse(req.ConfigID)
		if err != nil {
			http.Error(w, "invalid config id", http.StatusBadRequest)
			return
		}
		configID = &id
	}

	if req.Async && h.queue != nil {
		h.enqueue(w, r, tenantID, configID, req)
		return
	}

	ctx, cancel := h.runContext(r)
	defer cancel()
	run, err := h.runner.Run(ctx, Request{
		TenantID:    tenantID,
		BaseURL:     req.BaseURL,
		APIKey:      req.APIKey,
		ConfigID:    configID,
		InitiatedBy: req.InitiatedBy,
	})
	if err != nil {
		writeError(w, err, "failed to run import")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"run": run})
}

// runContext detaches a run from its request: a client that disconnects or
// times out does not abort the import. The run is still bounded by runTimeout.
func (h *Handler) runContext(r *http.Request) (context.Context, context.CancelFunc) {
	ctx := context.WithoutCancel(r.Context())
	if h.runTimeout > 0 {
		return context.WithTimeout(ctx, h.runTimeout)
	}
	return context.WithCancel(ctx)
}

// enqueue hands the run to the worker. Inline credentials are saved first
// so the queued message only has to carry the config id.
func (h *Handler) enqueue(w http.ResponseWriter, r *http.Request, tenantID string, configID *uuid.UUID, req startRequest) {
	if configID == nil && strings.TrimSpace(req.BaseURL) != "" {
		cfg, err := h.runs.SaveConfig(r.Context(), tenantID, req.BaseURL, req.APIKey)
		if err != nil {
			writeError(w, err, "failed to save import config")
			return
		}
		configID = &cfg.ID
	}

	msg := models.ImportRequest{TenantID: tenantID, InitiatedBy: req.InitiatedBy}
	if configID != nil {
		msg.ConfigID = configID.String()
	}
	if err := h.queue.Enqueue(r.Context(), msg); err != nil {
		logger.Log.WithError(err).WithField("tenant_id", tenantID).Error("failed to queue import")
		http.Error(w, "failed to queue import", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]interface{}{"queued": true, "config_id": msg.ConfigID})
}

func (h *Handler) handleListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.runs.ListRuns(r.Context(), tenantVar(r), parseLimit(r, importrun.DefaultRunListLimit))
	if err != nil {
		writeError(w, err, "failed to list imports")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": runs})
}

func (h *Handler) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, ok := h.tenantRun(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"run": run})
}

func (h *Handler) handleListLogs(w http.ResponseWriter, r *http.Request) {
	run, ok := h.tenantRun(w, r)
	if !ok {
		return
	}
	logs, err := h.runs.ListLogs(r.Context(), run.ID, r.URL.Query().Get("level"), parseLimit(r, defaultLogLimit))
	if err != nil {
		writeError(w, err, "failed to list import logs")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": logs})
}

func (h *Handler) handleListStaging(w http.ResponseWriter, r *http.Request) {
	run, ok := h.tenantRun(w, r)
	if !ok {
		return
	}
	records, err := h.staging.ListByRun(r.Context(), run.ID, r.URL.Query().Get("entity_type"), parseLimit(r, defaultStagingLimit))
	if err != nil {
		writeError(w, err, "failed to list staged records")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": records})
}

func (h *Handler) handleListMappings(w http.ResponseWriter, r *http.Request) {
	run, ok := h.tenantRun(w, r)
	if !ok {
		return
	}
	rows, err := h.mappings.ListByRun(r.Context(), run.TenantID, run.ID)
	if err != nil {
		writeError(w, err, "failed to list mappings")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": rows})
}

func (h *Handler) handleListDictionary(w http.ResponseWriter, r *http.Request) {
	dictType := strings.ToUpper(mux.Vars(r)["type"])
	items, err := h.dictionaries.ListItems(r.Context(), tenantVar(r), dictType)
	if err != nil {
		writeError(w, err, "failed to list dictionary")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

// tenantRun loads the {id} run and hides runs owned by other tenants.
func (h *Handler) tenantRun(w http.ResponseWriter, r *http.Request) (*importrun.Run, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid import id", http.StatusBadRequest)
		return nil, false
	}
	run, err := h.runs.GetRun(r.Context(), id)
	if err == nil && run.TenantID != tenantVar(r) {
		err = importrun.ErrNotFound
	}
	if err != nil {
		writeError(w, err, "failed to get import")
		return nil, false
	}
	return run, true
}

func tenantVar(r *http.Request) string {
	return strings.TrimSpace(mux.Vars(r)["tenant"])
}

func writeError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, ErrTenantRequired), errors.Is(err, ErrMissingSource), errors.Is(err, importrun.ErrBaseURLRequired):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrRunInProgress):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, importrun.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	default:
		logger.Log.WithError(err).Error(msg)
		http.Error(w, msg, http.StatusInternalServerError)
	}
}

func parseLimit(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	if v, err := strconv.Atoi(raw); err == nil && v > 0 {
		return v
	}
	return fallback
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
