package importer

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/aplose/erp-migrate/pkg/common/logger"
	"github.com/aplose/erp-migrate/pkg/dictionary"
	"github.com/aplose/erp-migrate/pkg/erp"
	"github.com/aplose/erp-migrate/pkg/importrun"
	"github.com/aplose/erp-migrate/pkg/legacy"
	"github.com/aplose/erp-migrate/pkg/mapping"
	"github.com/aplose/erp-migrate/pkg/observability/metrics"
	"github.com/aplose/erp-migrate/pkg/staging"
	"github.com/google/uuid"
)

// Source is the read side of the legacy API used by the importers.
type Source interface {
	GetList(ctx context.Context, resource string, params url.Values) ([]legacy.Record, error)
}

// Ledger receives the user-facing outcome of every noteworthy record.
type Ledger interface {
	Log(ctx context.Context, e importrun.Entry)
	Info(ctx context.Context, runID uuid.UUID, step, externalID, message string)
	Warn(ctx context.Context, runID uuid.UUID, step, externalID, message string)
	Error(ctx context.Context, runID uuid.UUID, step, externalID, message string)
	Skip(ctx context.Context, runID uuid.UUID, step, externalID, message string)
}

type Mappings interface {
	Record(ctx context.Context, m *mapping.Mapping) error
	Resolve(ctx context.Context, tenantID string, runID uuid.UUID, externalType string, externalID int64) (uuid.UUID, bool, error)
}

type Dictionaries interface {
	Upsert(ctx context.Context, tenantID, dictType, code, label string, sortOrder int, active bool) (*dictionary.Item, error)
}

type StagingStore interface {
	Save(ctx context.Context, rec *staging.Record) error
}

// Targets creates business entities and answers the idempotency checks.
type Targets interface {
	ThirdPartyCodeExists(ctx context.Context, tenantID, code string) (bool, error)
	CreateThirdParty(ctx context.Context, tp *erp.ThirdParty) error
	ContactCodeExists(ctx context.Context, tenantID, code string) (bool, error)
	CreateContact(ctx context.Context, c *erp.Contact) error
	CreateContactLink(ctx context.Context, link *erp.ContactLink) error
	CategoryCodeExists(ctx context.Context, tenantID, code string) (bool, error)
	CreateCategory(ctx context.Context, c *erp.ProductCategory) error
	ProductCodeExists(ctx context.Context, tenantID, code string) (bool, error)
	CreateProduct(ctx context.Context, p *erp.Product) error
	ProposalReferenceExists(ctx context.Context, tenantID, ref string) (bool, error)
	CreateProposal(ctx context.Context, p *erp.Proposal) error
	InvoiceReferenceExists(ctx context.Context, tenantID, ref string) (bool, error)
	CreateInvoice(ctx context.Context, inv *erp.Invoice) error
	PaymentReferenceExists(ctx context.Context, tenantID, ref string) (bool, error)
	CreatePayment(ctx context.Context, p *erp.Payment) error
	OrderReferenceExists(ctx context.Context, tenantID, ref string) (bool, error)
	CreateOrder(ctx context.Context, o *erp.SalesOrder) error
}

// Scope is what every step needs to know about the run it belongs to.
type Scope struct {
	RunID    uuid.UUID
	TenantID string
	Source   Source
}

type Deps struct {
	Ledger       Ledger
	Mappings     Mappings
	Dictionaries Dictionaries
	Targets      Targets
	Staging      StagingStore
	Profile      Profile
	Now          func() time.Time
}

// Importer holds the per-entity import steps.
type Importer struct {
	ledger       Ledger
	mappings     Mappings
	dictionaries Dictionaries
	targets      Targets
	staging      StagingStore
	profile      Profile
	now          func() time.Time
}

func New(deps Deps) *Importer {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	profile := deps.Profile
	if profile.isZero() {
		profile = DefaultProfile()
	}
	return &Importer{
		ledger:       deps.Ledger,
		mappings:     deps.Mappings,
		dictionaries: deps.Dictionaries,
		targets:      deps.Targets,
		staging:      deps.Staging,
		profile:      profile,
		now:          now,
	}
}

// today is the default for absent legacy dates: midnight UTC of the import day.
func (im *Importer) today() time.Time {
	n := im.now().UTC()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

func (im *Importer) fetch(ctx context.Context, scope *Scope, resource string) ([]legacy.Record, error) {
	return scope.Source.GetList(ctx, resource, im.profile.Params(resource))
}

// skipError marks a record that was deliberately not imported. The reason
// becomes a SKIP ledger line.
type skipError struct {
	reason string
}

func (e *skipError) Error() string {
	return e.reason
}

func skipf(format string, args ...interface{}) error {
	return &skipError{reason: fmt.Sprintf(format, args...)}
}

// errIgnored drops a record without a ledger line.
var errIgnored = errors.New("record ignored")

type recordFunc func(ctx context.Context, scope *Scope, rec legacy.Record, id int64) error

type tally struct {
	created int
	skipped int
	failed  int
}

// eachRecord applies fn to every record carrying a legacy id. A failure or
// panic in one record is written to the ledger and never stops the loop.
func (im *Importer) eachRecord(ctx context.Context, scope *Scope, step string, records []legacy.Record, fn recordFunc) (tally, error) {
	var t tally
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return t, err
		}
		id, ok := rec.ID()
		if !ok {
			continue
		}
		externalID := strconv.FormatInt(id, 10)

		err := guard(func() error { return fn(ctx, scope, rec, id) })
		var skip *skipError
		switch {
		case err == nil:
			t.created++
			metrics.ObserveRecord(step, metrics.OutcomeCreated)
		case errors.Is(err, errIgnored):
		case errors.As(err, &skip):
			t.skipped++
			metrics.ObserveRecord(step, metrics.OutcomeSkipped)
			im.ledger.Skip(ctx, scope.RunID, step, externalID, skip.reason)
		default:
			t.failed++
			metrics.ObserveRecord(step, metrics.OutcomeFailed)
			logger.ForRun(scope.TenantID, scope.RunID).WithError(err).WithFields(map[string]interface{}{
				"step":        step,
				"external_id": externalID,
			}).Warn("legacy record import failed")
			im.ledger.Error(ctx, scope.RunID, step, externalID, err.Error())
		}
	}
	return t, nil
}

func (im *Importer) summarize(ctx context.Context, scope *Scope, step, resource string, t tally) {
	im.ledger.Log(ctx, importrun.Entry{
		RunID:   scope.RunID,
		Step:    step,
		Level:   importrun.LevelInfo,
		Message: fmt.Sprintf("%s: created=%d skipped=%d failed=%d", resource, t.created, t.skipped, t.failed),
		Detail: map[string]interface{}{
			"resource": resource,
			"created":  t.created,
			"skipped":  t.skipped,
			"failed":   t.failed,
		},
	})
}

// guard turns a panic inside fn into an error.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

func (im *Importer) remember(ctx context.Context, scope *Scope, externalType string, externalID int64, targetType string, targetID uuid.UUID) error {
	err := im.mappings.Record(ctx, &mapping.Mapping{
		TenantID:     scope.TenantID,
		RunID:        scope.RunID,
		ExternalType: externalType,
		ExternalID:   externalID,
		TargetType:   targetType,
		TargetID:     targetID,
	})
	if err != nil {
		return fmt.Errorf("recording %s mapping for %d: %w", externalType, externalID, err)
	}
	return nil
}

func (im *Importer) resolve(ctx context.Context, scope *Scope, externalType string, externalID int64) (uuid.UUID, bool, error) {
	return im.mappings.Resolve(ctx, scope.TenantID, scope.RunID, externalType, externalID)
}

// requireThirdParty resolves the mandatory socid reference.
func (im *Importer) requireThirdParty(ctx context.Context, scope *Scope, rec legacy.Record) (uuid.UUID, error) {
	socid, ok := rec.Int64("socid")
	if !ok || socid <= 0 {
		return uuid.Nil, skipf("Missing socid")
	}
	id, found, err := im.resolve(ctx, scope, ExtThirdParties, socid)
	if err != nil {
		return uuid.Nil, fmt.Errorf("resolving third party %d: %w", socid, err)
	}
	if !found {
		return uuid.Nil, skipf("Third party not found: %d", socid)
	}
	return id, nil
}

// optionalRef resolves a best-effort reference from the first key present.
// Lookup failures leave the reference empty.
func (im *Importer) optionalRef(ctx context.Context, scope *Scope, rec legacy.Record, externalType string, keys ...string) *uuid.UUID {
	for _, key := range keys {
		legacyID, ok := rec.Int64(key)
		if !ok || legacyID <= 0 {
			continue
		}
		id, found, err := im.resolve(ctx, scope, externalType, legacyID)
		if err != nil {
			logger.ForRun(scope.TenantID, scope.RunID).WithError(err).WithFields(map[string]interface{}{
				"external_type": externalType,
				"external_id":   legacyID,
			}).Debug("optional reference lookup failed")
			return nil
		}
		if found {
			return &id
		}
		return nil
	}
	return nil
}

// fallbackRef returns the legacy ref, or prefix-<id> when it is blank.
func fallbackRef(rec legacy.Record, prefix string, id int64, keys ...string) string {
	if ref := rec.FirstString(keys...); ref != "" {
		return ref
	}
	return prefix + "-" + strconv.FormatInt(id, 10)
}

func currencyOrDefault(rec legacy.Record, keys ...string) string {
	if c := rec.FirstString(keys...); c != "" {
		return c
	}
	return DefaultCurrency
}

func datePtr(rec legacy.Record, keys ...string) *time.Time {
	if d, ok := rec.FirstDate(keys...); ok {
		return &d
	}
	return nil
}

// firstFlag reads the first key present on rec as a boolean.
func firstFlag(rec legacy.Record, keys ...string) bool {
	for _, k := range keys {
		if v, ok := rec[k]; ok && v != nil {
			return rec.Bool(k)
		}
	}
	return false
}
