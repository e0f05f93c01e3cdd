package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aplose/erp-migrate/pkg/common/logger"
	"github.com/aplose/erp-migrate/pkg/common/tenant"
	"github.com/aplose/erp-migrate/pkg/importrun"
	"github.com/aplose/erp-migrate/pkg/legacy"
	"github.com/aplose/erp-migrate/pkg/observability/metrics"
	"github.com/google/uuid"
)

var (
	ErrTenantRequired = importrun.ErrTenantRequired
	ErrMissingSource  = errors.New("legacy base url and api key are required")
	ErrRunInProgress  = errors.New("an import is already running for this tenant")
)

// StepFunc runs one import step. A returned error (or a panic) is recorded
// against the step and the run moves on to the next one.
type StepFunc func(ctx context.Context, scope *Scope) error

type Step struct {
	Name string
	Run  StepFunc
}

// Steps returns the import steps in dependency order.
func (im *Importer) Steps() []Step {
	return []Step{
		{Name: StepDictionaries, Run: im.ImportDictionaries},
		{Name: StepThirdParties, Run: im.ImportThirdParties},
		{Name: StepContacts, Run: im.ImportContacts},
		{Name: StepProducts, Run: im.ImportProducts},
		{Name: StepProposals, Run: im.ImportProposals},
		{Name: StepInvoices, Run: im.ImportInvoices},
		{Name: StepPayments, Run: im.ImportPayments},
		{Name: StepOrders, Run: im.ImportOrders},
		{Name: StepStaging, Run: im.StageUnmodeled},
	}
}

// RemoteClient is a configured connection to one legacy instance.
type RemoteClient interface {
	Source
	TestConnection(ctx context.Context) bool
}

type ClientFactory func(baseURL, apiKey string) RemoteClient

// LegacyClientFactory builds a fresh legacy.Client per call.
func LegacyClientFactory(newClient func() *legacy.Client) ClientFactory {
	return func(baseURL, apiKey string) RemoteClient {
		c := newClient()
		c.Configure(baseURL, apiKey)
		return c
	}
}

// RunLedger is the run bookkeeping the orchestrator needs on top of Ledger.
type RunLedger interface {
	Ledger
	CreateRun(ctx context.Context, tenantID, baseURL string, configID *uuid.UUID, createdBy string) (*importrun.Run, error)
	FinishRun(ctx context.Context, runID uuid.UUID, status string) error
	HasErrors(ctx context.Context, runID uuid.UUID) (bool, error)
	GetRun(ctx context.Context, runID uuid.UUID) (*importrun.Run, error)
	ResolveConfig(ctx context.Context, tenantID string, configID *uuid.UUID) (*importrun.SavedConfig, error)
}

// Locker serializes runs per tenant.
type Locker interface {
	Acquire(ctx context.Context, tenantID string) (release func(), err error)
}

// Notifier is told when runs start and finish.
type Notifier interface {
	RunStarted(ctx context.Context, run *importrun.Run)
	RunFinished(ctx context.Context, run *importrun.Run)
}

type Request struct {
	TenantID    string
	BaseURL     string
	APIKey      string
	ConfigID    *uuid.UUID
	InitiatedBy string
}

type OrchestratorOption func(*Orchestrator)

func WithLocker(l Locker) OrchestratorOption {
	return func(o *Orchestrator) { o.locker = l }
}

func WithNotifier(n Notifier) OrchestratorOption {
	return func(o *Orchestrator) { o.notifier = n }
}

// WithSteps replaces the step table.
func WithSteps(steps []Step) OrchestratorOption {
	return func(o *Orchestrator) { o.steps = steps }
}

type Orchestrator struct {
	ledger    RunLedger
	steps     []Step
	newClient ClientFactory
	locker    Locker
	notifier  Notifier
}

func NewOrchestrator(ledger RunLedger, im *Importer, newClient ClientFactory, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		ledger:    ledger,
		steps:     im.Steps(),
		newClient: newClient,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// TestConnection checks credentials without touching any run state.
func (o *Orchestrator) TestConnection(ctx context.Context, baseURL, apiKey string) bool {
	return o.newClient(baseURL, apiKey).TestConnection(ctx)
}

// Run performs one full import for a tenant and returns the finished run.
// Errors are returned only when no run could be started.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*importrun.Run, error) {
	tenantID := strings.TrimSpace(req.TenantID)
	if tenantID == "" {
		metrics.RunRejected()
		return nil, ErrTenantRequired
	}

	baseURL, apiKey, configID, err := o.resolveSource(ctx, tenantID, req)
	if err != nil {
		metrics.RunRejected()
		return nil, err
	}

	if o.locker != nil {
		release, err := o.locker.Acquire(ctx, tenantID)
		if err != nil {
			metrics.RunRejected()
			return nil, err
		}
		defer release()
	}

	ctx = tenant.WithTenantID(ctx, tenantID)
	client := o.newClient(baseURL, apiKey)

	run, err := o.ledger.CreateRun(ctx, tenantID, baseURL, configID, req.InitiatedBy)
	if err != nil {
		metrics.RunRejected()
		return nil, fmt.Errorf("creating import run: %w", err)
	}
	metrics.RunStarted()

	log := logger.ForRun(tenantID, run.ID)
	log.WithField("base_url", baseURL).Info("legacy import started")

	o.ledger.Info(ctx, run.ID, StepStart, "", "Import started from "+baseURL)
	if o.notifier != nil {
		o.notifier.RunStarted(ctx, run)
	}

	scope := &Scope{RunID: run.ID, TenantID: tenantID, Source: client}
	for _, step := range o.steps {
		o.runStep(ctx, scope, step)
	}

	// The run is closed even when the caller has gone away.
	finishCtx := context.WithoutCancel(ctx)

	status := importrun.StatusSuccess
	hasErrors, err := o.ledger.HasErrors(finishCtx, run.ID)
	if err != nil {
		log.WithError(err).Warn("could not count import errors")
		status = importrun.StatusCompletedWithErrors
	} else if hasErrors || ctx.Err() != nil {
		status = importrun.StatusCompletedWithErrors
	}

	if err := o.ledger.FinishRun(finishCtx, run.ID, status); err != nil {
		log.WithError(err).Error("failed to finish import run")
	}
	o.ledger.Info(finishCtx, run.ID, StepEnd, "", "Import finished with status "+status)
	metrics.RunFinished(status == importrun.StatusSuccess)
	log.WithField("status", status).Info("legacy import finished")

	finished, err := o.ledger.GetRun(finishCtx, run.ID)
	if err != nil {
		log.WithError(err).Warn("could not reload finished run")
		run.Status = status
		finished = run
	}
	if o.notifier != nil {
		o.notifier.RunFinished(finishCtx, finished)
	}
	return finished, nil
}

func (o *Orchestrator) resolveSource(ctx context.Context, tenantID string, req Request) (string, string, *uuid.UUID, error) {
	baseURL := strings.TrimSpace(req.BaseURL)
	apiKey := strings.TrimSpace(req.APIKey)
	configID := req.ConfigID

	if req.ConfigID != nil || baseURL == "" {
		cfg, err := o.ledger.ResolveConfig(ctx, tenantID, req.ConfigID)
		if err != nil {
			if errors.Is(err, importrun.ErrNotFound) {
				return "", "", nil, ErrMissingSource
			}
			return "", "", nil, fmt.Errorf("loading import config: %w", err)
		}
		if baseURL == "" {
			baseURL = cfg.BaseURL
		}
		if apiKey == "" {
			apiKey = cfg.APIKey
		}
		configID = &cfg.ID
	}

	if baseURL == "" || apiKey == "" {
		return "", "", nil, ErrMissingSource
	}
	return baseURL, apiKey, configID, nil
}

func (o *Orchestrator) runStep(ctx context.Context, scope *Scope, step Step) {
	err := guard(func() error { return step.Run(ctx, scope) })
	if err == nil {
		return
	}
	metrics.StepFailed()
	logger.ForRun(scope.TenantID, scope.RunID).WithError(err).WithField("step", step.Name).Warn("import step failed")
	o.ledger.Error(context.WithoutCancel(ctx), scope.RunID, step.Name, "", "Step failed: "+err.Error())
}
