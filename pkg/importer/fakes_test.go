package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aplose/erp-migrate/pkg/dictionary"
	"github.com/aplose/erp-migrate/pkg/erp"
	"github.com/aplose/erp-migrate/pkg/importrun"
	"github.com/aplose/erp-migrate/pkg/legacy"
	"github.com/aplose/erp-migrate/pkg/mapping"
	"github.com/aplose/erp-migrate/pkg/staging"
	"github.com/google/uuid"
)

const testTenant = "acme"

var fixedNow = time.Date(2024, 6, 15, 13, 45, 0, 0, time.UTC)

// memRunStore backs a real importrun.Ledger.
type memRunStore struct {
	mu      sync.Mutex
	runs    map[uuid.UUID]*importrun.Run
	order   []uuid.UUID
	logs    []importrun.LogEntry
	configs map[uuid.UUID]*importrun.SavedConfig
}

func newMemRunStore() *memRunStore {
	return &memRunStore{
		runs:    map[uuid.UUID]*importrun.Run{},
		configs: map[uuid.UUID]*importrun.SavedConfig{},
	}
}

func (m *memRunStore) CreateRun(_ context.Context, run *importrun.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *run
	m.runs[run.ID] = &cp
	m.order = append(m.order, run.ID)
	return nil
}

func (m *memRunStore) FinishRun(_ context.Context, id uuid.UUID, status string, finishedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[id]
	if !ok {
		return importrun.ErrNotFound
	}
	run.Status = status
	run.FinishedAt = &finishedAt
	return nil
}

func (m *memRunStore) GetRun(_ context.Context, id uuid.UUID) (*importrun.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[id]
	if !ok {
		return nil, importrun.ErrNotFound
	}
	cp := *run
	return &cp, nil
}

func (m *memRunStore) ListRuns(_ context.Context, tenantID string, limit int) ([]importrun.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []importrun.Run
	for i := len(m.order) - 1; i >= 0 && len(out) < limit; i-- {
		if run := m.runs[m.order[i]]; run.TenantID == tenantID {
			out = append(out, *run)
		}
	}
	return out, nil
}

func (m *memRunStore) AppendLog(_ context.Context, entry *importrun.LogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry.ID = int64(len(m.logs) + 1)
	m.logs = append(m.logs, *entry)
	return nil
}

func (m *memRunStore) CountLogs(_ context.Context, runID uuid.UUID, level string) (int64, error) {
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

func (m *memRunStore) ListLogs(_ context.Context, runID uuid.UUID, level string, limit int) ([]importrun.LogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []importrun.LogEntry
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

func (m *memRunStore) SaveConfig(_ context.Context, cfg *importrun.SavedConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, existing := range m.configs {
		if existing.TenantID == cfg.TenantID {
			delete(m.configs, id)
			cfg.ID = id
		}
	}
	cp := *cfg
	m.configs[cfg.ID] = &cp
	return nil
}

func (m *memRunStore) GetConfigByTenant(_ context.Context, tenantID string) (*importrun.SavedConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, cfg := range m.configs {
		if cfg.TenantID == tenantID {
			cp := *cfg
			return &cp, nil
		}
	}
	return nil, importrun.ErrNotFound
}

func (m *memRunStore) GetConfig(_ context.Context, id uuid.UUID) (*importrun.SavedConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cfg, ok := m.configs[id]
	if !ok {
		return nil, importrun.ErrNotFound
	}
	cp := *cfg
	return &cp, nil
}

func (m *memRunStore) entries(runID uuid.UUID) []importrun.LogEntry {
	out, _ := m.ListLogs(context.Background(), runID, "", 0)
	return out
}

func (m *memRunStore) messages(runID uuid.UUID, step, level string) []string {
	var out []string
	for _, l := range m.entries(runID) {
		if l.Step == step && l.Level == level {
			out = append(out, l.Message)
		}
	}
	return out
}

type mappingKey struct {
	tenant       string
	run          uuid.UUID
	externalType string
	externalID   int64
}

type memMappings struct {
	mu         sync.Mutex
	rows       map[mappingKey]mapping.Mapping
	resolveErr error
}

func newMemMappings() *memMappings {
	return &memMappings{rows: map[mappingKey]mapping.Mapping{}}
}

func (m *memMappings) Record(_ context.Context, row *mapping.Mapping) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := mappingKey{row.TenantID, row.RunID, row.ExternalType, row.ExternalID}
	if _, dup := m.rows[key]; dup {
		return fmt.Errorf("duplicate mapping %v", key)
	}
	m.rows[key] = *row
	return nil
}

func (m *memMappings) Resolve(_ context.Context, tenantID string, runID uuid.UUID, externalType string, externalID int64) (uuid.UUID, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.resolveErr != nil {
		return uuid.Nil, false, m.resolveErr
	}
	row, ok := m.rows[mappingKey{tenantID, runID, externalType, externalID}]
	if !ok {
		return uuid.Nil, false, nil
	}
	return row.TargetID, true, nil
}

func (m *memMappings) ListByRun(_ context.Context, tenantID string, runID uuid.UUID) ([]mapping.Mapping, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []mapping.Mapping
	for k, row := range m.rows {
		if k.tenant == tenantID && k.run == runID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *memMappings) count(externalType string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k := range m.rows {
		if k.externalType == externalType {
			n++
		}
	}
	return n
}

// memDictStore backs a real dictionary.Service.
type memDictStore struct {
	mu         sync.Mutex
	items      map[string]*dictionary.Item
	currencies map[string]dictionary.Currency
}

func newMemDictStore() *memDictStore {
	return &memDictStore{items: map[string]*dictionary.Item{}, currencies: map[string]dictionary.Currency{}}
}

func (m *memDictStore) UpsertItem(_ context.Context, item *dictionary.Item) (*dictionary.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := item.TenantID + "/" + item.DictType + "/" + item.Code
	if existing, ok := m.items[key]; ok {
		existing.Label = item.Label
		existing.SortOrder = item.SortOrder
		existing.Active = item.Active
		cp := *existing
		return &cp, nil
	}
	cp := *item
	m.items[key] = &cp
	return item, nil
}

func (m *memDictStore) ListItems(_ context.Context, tenantID, dictType string) ([]dictionary.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []dictionary.Item
	for _, item := range m.items {
		if item.TenantID == tenantID && item.DictType == dictType {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (m *memDictStore) EnsureCurrency(_ context.Context, c *dictionary.Currency) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.currencies[c.Code]; !ok {
		m.currencies[c.Code] = *c
	}
	return nil
}

// memTargets records created entities and answers natural-key lookups.
type memTargets struct {
	mu          sync.Mutex
	codes       map[string]bool
	thirdParty  []*erp.ThirdParty
	contacts    []*erp.Contact
	links       []*erp.ContactLink
	categories  []*erp.ProductCategory
	products    []*erp.Product
	proposals   []*erp.Proposal
	invoices    []*erp.Invoice
	payments    []*erp.Payment
	orders      []*erp.SalesOrder
	failInvoice string
}

func newMemTargets() *memTargets {
	return &memTargets{codes: map[string]bool{}}
}

func (m *memTargets) has(kind, tenantID, code string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[kind+"/"+tenantID+"/"+code], nil
}

func (m *memTargets) put(kind, tenantID, code string) uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[kind+"/"+tenantID+"/"+code] = true
	return uuid.New()
}

func (m *memTargets) ThirdPartyCodeExists(_ context.Context, tenantID, code string) (bool, error) {
	return m.has("tp", tenantID, code)
}

func (m *memTargets) CreateThirdParty(_ context.Context, tp *erp.ThirdParty) error {
	tp.ID = m.put("tp", tp.TenantID, tp.Code)
	m.thirdParty = append(m.thirdParty, tp)
	return nil
}

func (m *memTargets) ContactCodeExists(_ context.Context, tenantID, code string) (bool, error) {
	return m.has("ct", tenantID, code)
}

func (m *memTargets) CreateContact(_ context.Context, c *erp.Contact) error {
	c.ID = m.put("ct", c.TenantID, c.Code)
	m.contacts = append(m.contacts, c)
	return nil
}

func (m *memTargets) CreateContactLink(_ context.Context, link *erp.ContactLink) error {
	link.ID = uuid.New()
	m.links = append(m.links, link)
	return nil
}

func (m *memTargets) CategoryCodeExists(_ context.Context, tenantID, code string) (bool, error) {
	return m.has("cat", tenantID, code)
}

func (m *memTargets) CreateCategory(_ context.Context, c *erp.ProductCategory) error {
	c.ID = m.put("cat", c.TenantID, c.Code)
	m.categories = append(m.categories, c)
	return nil
}

func (m *memTargets) ProductCodeExists(_ context.Context, tenantID, code string) (bool, error) {
	return m.has("prd", tenantID, code)
}

func (m *memTargets) CreateProduct(_ context.Context, p *erp.Product) error {
	p.ID = m.put("prd", p.TenantID, p.Code)
	m.products = append(m.products, p)
	return nil
}

func (m *memTargets) ProposalReferenceExists(_ context.Context, tenantID, ref string) (bool, error) {
	return m.has("pro", tenantID, ref)
}

func (m *memTargets) CreateProposal(_ context.Context, p *erp.Proposal) error {
	p.ID = m.put("pro", p.TenantID, p.Reference)
	m.proposals = append(m.proposals, p)
	return nil
}

func (m *memTargets) InvoiceReferenceExists(_ context.Context, tenantID, ref string) (bool, error) {
	return m.has("inv", tenantID, ref)
}

func (m *memTargets) CreateInvoice(_ context.Context, inv *erp.Invoice) error {
	if m.failInvoice != "" && inv.Reference == m.failInvoice {
		return errors.New("constraint violation")
	}
	inv.ID = m.put("inv", inv.TenantID, inv.Reference)
	m.invoices = append(m.invoices, inv)
	return nil
}

func (m *memTargets) PaymentReferenceExists(_ context.Context, tenantID, ref string) (bool, error) {
	return m.has("pay", tenantID, ref)
}

func (m *memTargets) CreatePayment(_ context.Context, p *erp.Payment) error {
	p.ID = m.put("pay", p.TenantID, p.Reference)
	m.payments = append(m.payments, p)
	return nil
}

func (m *memTargets) OrderReferenceExists(_ context.Context, tenantID, ref string) (bool, error) {
	return m.has("so", tenantID, ref)
}

func (m *memTargets) CreateOrder(_ context.Context, o *erp.SalesOrder) error {
	o.ID = m.put("so", o.TenantID, o.Reference)
	m.orders = append(m.orders, o)
	return nil
}

type memStaging struct {
	mu      sync.Mutex
	records []staging.Record
	fail    bool
}

func (m *memStaging) Save(_ context.Context, rec *staging.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("disk full")
	}
	rec.ID = int64(len(m.records) + 1)
	m.records = append(m.records, *rec)
	return nil
}

func (m *memStaging) ListByRun(_ context.Context, runID uuid.UUID, entityType string, limit int) ([]staging.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []staging.Record
	for _, r := range m.records {
		if r.RunID == runID && (entityType == "" || r.EntityType == entityType) {
			out = append(out, r)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// fakeSource serves canned records per resource.
type fakeSource struct {
	records map[string][]legacy.Record
	errs    map[string]error
	calls   []string
}

func (f *fakeSource) GetList(_ context.Context, resource string, _ url.Values) ([]legacy.Record, error) {
	f.calls = append(f.calls, resource)
	if err, ok := f.errs[resource]; ok {
		return nil, err
	}
	return f.records[resource], nil
}

// harness wires an Importer and an Orchestrator over in-memory stores.
type harness struct {
	runs     *memRunStore
	ledger   *importrun.Ledger
	mappings *memMappings
	dicts    *memDictStore
	targets  *memTargets
	staging  *memStaging
	importer *Importer
}

func newHarness() *harness {
	h := &harness{
		runs:     newMemRunStore(),
		mappings: newMemMappings(),
		dicts:    newMemDictStore(),
		targets:  newMemTargets(),
		staging:  &memStaging{},
	}
	h.ledger = importrun.NewLedger(h.runs)
	h.importer = New(Deps{
		Ledger:       h.ledger,
		Mappings:     h.mappings,
		Dictionaries: dictionary.NewService(h.dicts),
		Targets:      h.targets,
		Staging:      h.staging,
		Now:          func() time.Time { return fixedNow },
	})
	return h
}

// scope starts a run in the ledger so step log lines have an owner.
func (h *harness) scope(t *testing.T, src Source) *Scope {
	t.Helper()
	run, err := h.ledger.CreateRun(context.Background(), testTenant, "http://legacy.test", nil, "tester")
	if err != nil {
		t.Fatalf("create run: %v", err)
	}
	return &Scope{RunID: run.ID, TenantID: testTenant, Source: src}
}

func rec(fields map[string]interface{}) legacy.Record {
	return legacy.Record(fields)
}

// legacyServer serves resource name to JSON body. Unknown resources answer
// 404 with an error body, the way the legacy API does.
func legacyServer(t *testing.T, apiKey string, bodies map[string]interface{}) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("DOLAPIKEY") != apiKey {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"code":401,"message":"Unauthorized"}}`))
			return
		}
		resource := strings.TrimPrefix(r.URL.Path, "/api/index.php/")
		body, ok := bodies[resource]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"code":404,"message":"Not found"}}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}
