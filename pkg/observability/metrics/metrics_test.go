package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWritePrometheusIncludesRecordCounters(t *testing.T) {
	RunStarted()
	ObserveRecord("INVOICES", OutcomeCreated)
	ObserveRecord("INVOICES", OutcomeCreated)
	ObserveRecord("INVOICES", OutcomeSkipped)
	RunFinished(false)

	assert.GreaterOrEqual(t, RecordCount("INVOICES", OutcomeCreated), int64(2))

	rec := httptest.NewRecorder()
	WritePrometheus(rec)

	body := rec.Body.String()
	assert.Contains(t, body, `erp_migrate_records_total{step="INVOICES",outcome="created"}`)
	assert.Contains(t, body, `erp_migrate_runs_finished_total{status="COMPLETED_WITH_ERRORS"}`)
	assert.Equal(t, "text/plain; version=0.0.4", rec.Header().Get("Content-Type"))
}
