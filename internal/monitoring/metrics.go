// Package monitoring provides Prometheus metrics for the pipeline engine.
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the engine's Prometheus collectors.
type Metrics struct {
	// Pipeline metrics
	PipelinesTotal   prometheus.Counter
	PipelineDuration prometheus.Histogram

	// Stage metrics, labeled by terminal state
	StagesTotal *prometheus.CounterVec

	// Parse metrics
	ParseErrors prometheus.Counter
}

// NewMetrics registers the engine's collectors on reg. Pass
// prometheus.DefaultRegisterer for the process-wide registry, or a fresh
// registry in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		PipelinesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "shell_pipelines_total",
				Help: "Total number of pipelines executed",
			},
		),
		PipelineDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "shell_pipeline_duration_seconds",
				Help:    "Wall time from pipeline launch to joint settlement",
				Buckets: []float64{.001, .01, .05, .1, .5, 1, 5, 10, 30, 60},
			},
		),
		StagesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shell_stages_total",
				Help: "Stage executions by terminal state",
			},
			[]string{"state"},
		),
		ParseErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "shell_parse_errors_total",
				Help: "Command lines rejected as structurally invalid",
			},
		),
	}
}
