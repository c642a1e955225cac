// Package metrics records run outcomes as Prometheus metrics.
//
// The CLI is a short-lived process, so metrics are exported by writing the
// registry to a node_exporter textfile after each run instead of serving them.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nandeep-biztech/pim-etl/internal/core/domain"
	"github.com/nandeep-biztech/pim-etl/internal/core/ports/driven"
)

const namespace = "pim_etl"

// Ensure Recorder implements the interface.
var _ driven.RunObserver = (*Recorder)(nil)

// Recorder is a driven.RunObserver backed by its own Prometheus registry.
type Recorder struct {
	reg *prometheus.Registry

	Records          *prometheus.CounterVec
	SupplierRuns     *prometheus.CounterVec
	SupplierDuration *prometheus.HistogramVec
	LastSuccess      *prometheus.GaugeVec
	Runs             *prometheus.CounterVec
	RunDuration      prometheus.Histogram
}

// NewRecorder creates a Recorder with all collectors registered.
func NewRecorder() *Recorder {
	r := prometheus.NewRegistry()

	records := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_total",
		Help:      "Records processed per supplier and stage.",
	}, []string{"supplier", "stage"})
	supplierRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "supplier_runs_total",
		Help:      "Supplier pipeline runs by status.",
	}, []string{"supplier", "action", "status"})
	supplierDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "supplier_run_duration_seconds",
		Help:      "Duration of supplier pipeline runs.",
		Buckets:   []float64{1, 5, 15, 60, 300, 900, 3600},
	}, []string{"supplier"})
	lastSuccess := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "supplier_last_success_timestamp_seconds",
		Help:      "End time of the last successful supplier run.",
	}, []string{"supplier"})
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "runs_total",
		Help:      "Orchestrator runs by action and overall status.",
	}, []string{"action", "status"})
	runDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "run_duration_seconds",
		Help:      "Duration of orchestrator runs.",
		Buckets:   []float64{1, 5, 15, 60, 300, 900, 3600},
	})

	r.MustRegister(records, supplierRuns, supplierDuration, lastSuccess, runs, runDuration)
	return &Recorder{
		reg:              r,
		Records:          records,
		SupplierRuns:     supplierRuns,
		SupplierDuration: supplierDuration,
		LastSuccess:      lastSuccess,
		Runs:             runs,
		RunDuration:      runDuration,
	}
}

// ObserveOutcome records the counters of a finished supplier run.
func (r *Recorder) ObserveOutcome(o domain.RunOutcome) {
	stages := []struct {
		name  string
		value int
	}{
		{"extracted", o.Counts.Extracted},
		{"correlated", o.Counts.Correlated},
		{"transformed", o.Counts.Transformed},
		{"loaded", o.Counts.Loaded},
		{"skipped", o.Counts.Skipped},
		{"failed", o.Counts.Failed},
	}
	for _, s := range stages {
		r.Records.WithLabelValues(o.SupplierID, s.name).Add(float64(s.value))
	}

	r.SupplierRuns.WithLabelValues(o.SupplierID, string(o.Action), string(o.Status)).Inc()
	r.SupplierDuration.WithLabelValues(o.SupplierID).Observe(o.Duration().Seconds())
	if o.Status == domain.StatusSuccess && !o.EndedAt.IsZero() {
		r.LastSuccess.WithLabelValues(o.SupplierID).Set(float64(o.EndedAt.Unix()))
	}
}

// ObserveReport records a finished orchestrator run.
func (r *Recorder) ObserveReport(report domain.RunReport) {
	r.Runs.WithLabelValues(string(report.Action), string(report.Status)).Inc()
	r.RunDuration.Observe(report.Duration().Seconds())
}

// Gatherer exposes the registry, e.g. for promhttp or tests.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.reg
}

// WriteTextfile writes the registry in text format to path, creating the
// parent directory. The file is replaced atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
