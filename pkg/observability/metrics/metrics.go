package metrics

import (
	"fmt"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
)

const (
	OutcomeCreated = "created"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
	OutcomeStaged  = "staged"
)

var (
	runsStarted    atomic.Int64
	runsSucceeded  atomic.Int64
	runsWithErrors atomic.Int64
	runsRejected   atomic.Int64
	stepFailures   atomic.Int64
	runsInProgress atomic.Int64

	recordsMu sync.Mutex
	records   = map[recordKey]int64{}
)

type recordKey struct {
	step    string
	outcome string
}

func RunStarted() {
	runsStarted.Add(1)
	runsInProgress.Add(1)
}

// RunFinished counts a terminal run. success distinguishes SUCCESS from
// COMPLETED_WITH_ERRORS.
func RunFinished(success bool) {
	runsInProgress.Add(-1)
	if success {
		runsSucceeded.Add(1)
		return
	}
	runsWithErrors.Add(1)
}

// RunRejected counts imports refused before a run was created.
func RunRejected() {
	runsRejected.Add(1)
}

func StepFailed() {
	stepFailures.Add(1)
}

func ObserveRecord(step, outcome string) {
	recordsMu.Lock()
	records[recordKey{step: step, outcome: outcome}]++
	recordsMu.Unlock()
}

// RecordCount returns the current counter for step and outcome.
func RecordCount(step, outcome string) int64 {
	recordsMu.Lock()
	defer recordsMu.Unlock()
	return records[recordKey{step: step, outcome: outcome}]
}

func WritePrometheus(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	fmt.Fprintf(w, "# HELP erp_migrate_runs_started_total Number of legacy import runs started.\n")
	fmt.Fprintf(w, "# TYPE erp_migrate_runs_started_total counter\n")
	fmt.Fprintf(w, "erp_migrate_runs_started_total %d\n", runsStarted.Load())

	fmt.Fprintf(w, "# HELP erp_migrate_runs_finished_total Number of legacy import runs finished, by status.\n")
	fmt.Fprintf(w, "# TYPE erp_migrate_runs_finished_total counter\n")
	fmt.Fprintf(w, "erp_migrate_runs_finished_total{status=\"SUCCESS\"} %d\n", runsSucceeded.Load())
	fmt.Fprintf(w, "erp_migrate_runs_finished_total{status=\"COMPLETED_WITH_ERRORS\"} %d\n", runsWithErrors.Load())

	fmt.Fprintf(w, "# HELP erp_migrate_runs_rejected_total Number of import requests refused before a run was created.\n")
	fmt.Fprintf(w, "# TYPE erp_migrate_runs_rejected_total counter\n")
	fmt.Fprintf(w, "erp_migrate_runs_rejected_total %d\n", runsRejected.Load())

	fmt.Fprintf(w, "# HELP erp_migrate_runs_in_progress Number of legacy import runs currently executing.\n")
	fmt.Fprintf(w, "# TYPE erp_migrate_runs_in_progress gauge\n")
	fmt.Fprintf(w, "erp_migrate_runs_in_progress %d\n", runsInProgress.Load())

	fmt.Fprintf(w, "# HELP erp_migrate_step_failures_total Number of import steps aborted by an error.\n")
	fmt.Fprintf(w, "# TYPE erp_migrate_step_failures_total counter\n")
	fmt.Fprintf(w, "erp_migrate_step_failures_total %d\n", stepFailures.Load())

	recordsMu.Lock()
	keys := make([]recordKey, 0, len(records))
	for k := range records {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].step != keys[j].step {
			return keys[i].step < keys[j].step
		}
		return keys[i].outcome < keys[j].outcome
	})
	fmt.Fprintf(w, "# HELP erp_migrate_records_total Number of legacy records processed, by step and outcome.\n")
	fmt.Fprintf(w, "# TYPE erp_migrate_records_total counter\n")
	for _, k := range keys {
		fmt.Fprintf(w, "erp_migrate_records_total{step=%q,outcome=%q} %d\n", k.step, k.outcome, records[k])
	}
	recordsMu.Unlock()
}
