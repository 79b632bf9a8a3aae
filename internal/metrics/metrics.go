// Package metrics exposes Prometheus instrumentation for the evaluation
// service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	evaluationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "obsplan_evaluations_total",
			Help: "Total number of observability grid evaluations.",
		},
		[]string{"kind", "outcome"},
	)

	evaluationDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "obsplan_evaluation_duration_seconds",
			Help:    "Grid evaluation duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	sampleFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "obsplan_sample_failures_total",
			Help: "Total number of unavailable ephemeris samples during evaluation.",
		},
	)
)

func init() {
	prometheus.MustRegister(evaluationsTotal)
	prometheus.MustRegister(evaluationDurationSeconds)
	prometheus.MustRegister(sampleFailuresTotal)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveEvaluation records one completed evaluation of the given kind
// ("grid", "events", "observable") and its outcome ("ok", "error").
func ObserveEvaluation(kind, outcome string, elapsed time.Duration) {
	evaluationsTotal.WithLabelValues(kind, outcome).Inc()
	evaluationDurationSeconds.WithLabelValues(kind).Observe(elapsed.Seconds())
}

// CountSampleFailures records n unavailable ephemeris samples.
func CountSampleFailures(n int) {
	if n <= 0 {
		return
	}
	sampleFailuresTotal.Add(float64(n))
}
