// Package metrics exposes Prometheus collectors for orchestrator runs.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arc-language/bulkinstall/pkg/core"
)

const namespace = "bulkinstall"

// Metrics holds the collectors of one process. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry     *prometheus.Registry
	attempts     *prometheus.CounterVec
	declarations *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	lastRun      prometheus.Gauge
}

// New creates collectors registered on a private registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attempts_total",
			Help:      "Attempts per manager, mode and outcome.",
		}, []string{"manager", "mode", "outcome"}),
		declarations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "declarations_total",
			Help:      "Classified declarations per mode and outcome.",
		}, []string{"mode", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "invocation_duration_seconds",
			Help:      "Wall time of manager attempts.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		}, []string{"manager"}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
	}
	m.registry.MustRegister(m.attempts, m.declarations, m.duration, m.lastRun)
	return m
}

// Registry returns the registry the collectors live on
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveAttempt records one attempt
func (m *Metrics) ObserveAttempt(mode core.Mode, a core.Attempt) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(a.Manager, mode.String(), a.Outcome().String()).Inc()
	if !a.AlreadyInState {
		m.duration.WithLabelValues(a.Manager).Observe(a.Duration.Seconds())
	}
}

// ObserveDeclaration records one classified declaration
func (m *Metrics) ObserveDeclaration(mode core.Mode, outcome core.Outcome) {
	if m == nil {
		return
	}
	m.declarations.WithLabelValues(mode.String(), outcome.String()).Inc()
}

// ObserveRun records the end of a run
func (m *Metrics) ObserveRun(s *core.RunSummary) {
	if m == nil || s == nil {
		return
	}
	m.lastRun.Set(float64(s.Finished.Unix()))
}

// WriteTextfile writes the current values in the node_exporter textfile format
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
