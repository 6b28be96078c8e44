// Package metrics provides a small, backend-agnostic abstraction for recording
// operational metrics from the star-schema pipeline.
//
// A global backend defaults to a no-op implementation, so every Record call is
// safe when no real backend is configured. Concrete systems (Prometheus
// Pushgateway, DogStatsD) live in subpackages and are installed with
// SetBackend.
package metrics

import (
	"sync"
	"time"
)

// Metric names shared by all backends.
const (
	StepTotal           = "etl_step_total"
	StepDurationSeconds = "etl_step_duration_seconds"
	RowsTotal           = "etl_rows_total"
	QualityFailures     = "etl_quality_failures_total"
	KPI                 = "etl_kpi"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// SetGauge records the current value of a gauge.
	SetGauge(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) SetGauge(string, float64, Labels)         {}
func (nopBackend) Flush() error                             { return nil }

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	mu.Lock()
	backend = b
	mu.Unlock()
}

// Reset restores the no-op backend.
func Reset() {
	mu.Lock()
	backend = nopBackend{}
	mu.Unlock()
}

// Flush delegates to the current backend.
func Flush() error {
	return current().Flush()
}

// RecordStep records latency and success/failure of one pipeline step
// (extract, transform, quality, write, load) for a job.
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{"job": job, "step": step, "status": status}

	b := current()
	b.IncCounter(StepTotal, 1, lbls)
	b.ObserveHistogram(StepDurationSeconds, d.Seconds(), lbls)
}

// RecordRows counts rows per table and kind. Typical kinds are "extracted",
// "skipped", "written" and "loaded".
func RecordRows(table, kind string, n int) {
	if n <= 0 {
		return
	}
	current().IncCounter(RowsTotal, float64(n), Labels{"table": table, "kind": kind})
}

// RecordQualityFailure counts one failed data quality rule.
func RecordQualityFailure(table, rule string) {
	current().IncCounter(QualityFailures, 1, Labels{"table": table, "rule": rule})
}

// SetKPI publishes a business KPI of the finished run, such as
// "total_orders", "revenue" or "late_delivery_pct".
func SetKPI(name string, v float64) {
	current().SetGauge(KPI, v, Labels{"kpi": name})
}
