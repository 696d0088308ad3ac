// Package metrics counts validation, normalization and conversion outcomes.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the obkit collectors.
type Metrics struct {
	registry *prometheus.Registry

	// Validations by detected version ("OB2", "OB3", "unknown") and result
	// ("valid", "invalid").
	Validations *prometheus.CounterVec

	// Validation findings by kind ("error", "warning").
	Findings *prometheus.CounterVec

	// Normalized documents by version, and documents dropped from batches.
	Normalized *prometheus.CounterVec
	Dropped    prometheus.Counter

	// Conversions by direction ("ob2_to_ob3", "ob3_to_ob2") and result.
	Conversions *prometheus.CounterVec

	// Batch run duration.
	BatchDuration prometheus.Histogram
}

// New creates a Metrics instance with its own registry, so several instances
// can coexist in one process.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		Validations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "obkit_validations_total",
			Help: "Badge validations by detected version and result",
		}, []string{"version", "result"}),

		Findings: f.NewCounterVec(prometheus.CounterOpts{
			Name: "obkit_validation_findings_total",
			Help: "Validation errors and warnings reported",
		}, []string{"kind"}),

		Normalized: f.NewCounterVec(prometheus.CounterOpts{
			Name: "obkit_normalized_total",
			Help: "Badges normalized by version",
		}, []string{"version"}),

		Dropped: f.NewCounter(prometheus.CounterOpts{
			Name: "obkit_normalize_dropped_total",
			Help: "Invalid documents dropped from batch normalization",
		}),

		Conversions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "obkit_conversions_total",
			Help: "Badge conversions by direction and result",
		}, []string{"direction", "result"}),

		BatchDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "obkit_batch_duration_seconds",
			Help:    "Duration of batch runs",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		}),
	}
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// IncrementValidation records one validation.
func (m *Metrics) IncrementValidation(version string, valid bool, errors, warnings int) {
	if m == nil {
		return
	}
	if version == "" {
		version = "unknown"
	}
	result := "invalid"
	if valid {
		result = "valid"
	}
	m.Validations.WithLabelValues(version, result).Inc()
	m.Findings.WithLabelValues("error").Add(float64(errors))
	m.Findings.WithLabelValues("warning").Add(float64(warnings))
}

// IncrementNormalized records one normalized badge.
func (m *Metrics) IncrementNormalized(version string) {
	if m != nil {
		m.Normalized.WithLabelValues(version).Inc()
	}
}

// IncrementDropped records one document dropped from a batch.
func (m *Metrics) IncrementDropped() {
	if m != nil {
		m.Dropped.Inc()
	}
}

// IncrementConversion records one conversion attempt.
func (m *Metrics) IncrementConversion(direction string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Conversions.WithLabelValues(direction, result).Inc()
}

// ObserveBatchDuration records the duration of a batch run.
func (m *Metrics) ObserveBatchDuration(d time.Duration) {
	if m != nil {
		m.BatchDuration.Observe(d.Seconds())
	}
}

// WriteTextfile writes the current values in the Prometheus text format, for
// pickup by a node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("metrics: failed to write %s: %w", path, err)
	}
	return nil
}
