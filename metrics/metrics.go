// Package metrics records pipeline row counts and stage timings with Prometheus
// collectors.
//
// A nil *Recorder is valid and records nothing, so callers never need to
// check whether metrics are enabled.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Metric names
const (
	RowsTotalName     = "albumetl_rows_total"
	StageTotalName    = "albumetl_stage_total"
	StageDurationName = "albumetl_stage_duration_seconds"
)

// Row kinds
const (
	KindRead         = "read"
	KindImputed      = "imputed"
	KindCoerceFailed = "coerce_failed"
	KindDropped      = "dropped"
	KindKept         = "kept"
	KindLoaded       = "loaded"
	KindExported     = "exported"
)

const (
	statusSuccess = "success"
	statusFailure = "failure"
)

// Recorder owns a registry and the pipeline collectors.
type Recorder struct {
	reg *prometheus.Registry

	rows          *prometheus.CounterVec   // albumetl_rows_total{stage,kind}
	stageCounter  *prometheus.CounterVec   // albumetl_stage_total{stage,status}
	stageDuration *prometheus.HistogramVec // albumetl_stage_duration_seconds{stage,status}
}

// NewRecorder registers the pipeline collectors on a fresh registry.
func NewRecorder() (*Recorder, error) {
	reg := prometheus.NewRegistry()

	rows := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: RowsTotalName,
			Help: "Rows seen per pipeline stage and kind (read, dropped, loaded, ...).",
		},
		[]string{"stage", "kind"},
	)
	stageCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: StageTotalName,
			Help: "Pipeline stage executions, partitioned by stage and status.",
		},
		[]string{"stage", "status"},
	)
	stageDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    StageDurationName,
			Help:    "Duration of pipeline stages in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		},
		[]string{"stage", "status"},
	)

	if err := reg.Register(rows); err != nil {
		return nil, fmt.Errorf("metrics: register row counter: %w", err)
	}
	if err := reg.Register(stageCounter); err != nil {
		return nil, fmt.Errorf("metrics: register stage counter: %w", err)
	}
	if err := reg.Register(stageDuration); err != nil {
		return nil, fmt.Errorf("metrics: register stage histogram: %w", err)
	}

	return &Recorder{
		reg:           reg,
		rows:          rows,
		stageCounter:  stageCounter,
		stageDuration: stageDuration,
	}, nil
}

// Registry returns the registry the collectors are registered on.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.reg
}

// AddRows adds n to the row counter of stage and kind. Non-positive n is ignored.
func (r *Recorder) AddRows(stage, kind string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.rows.WithLabelValues(stage, kind).Add(float64(n))
}

// Rows returns the current row count of stage and kind.
func (r *Recorder) Rows(stage, kind string) float64 {
	if r == nil {
		return 0
	}
	var m dto.Metric
	if err := r.rows.WithLabelValues(stage, kind).Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

// ObserveStage records one execution of stage with its outcome and duration.
func (r *Recorder) ObserveStage(stage string, err error, d time.Duration) {
	if r == nil {
		return
	}
	status := statusSuccess
	if err != nil {
		status = statusFailure
	}
	r.stageCounter.WithLabelValues(stage, status).Inc()
	r.stageDuration.WithLabelValues(stage, status).Observe(d.Seconds())
}

// Time runs fn as stage and records its outcome.
func (r *Recorder) Time(stage string, fn func() error) error {
	start := time.Now()
	err := fn()
	r.ObserveStage(stage, err, time.Since(start))
	return err
}

// WriteTextfile writes the registry in the text exposition format to path,
// for pickup by the node exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("metrics: write textfile: %w", err)
	}
	return nil
}
