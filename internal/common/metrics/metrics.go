// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LeadSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_submissions_total",
			Help: "Lead submissions by terminal state (accepted, validation_failed, parse_error, primary_failed, rate_limited)",
		},
		[]string{"status"},
	)

	SinkResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_sink_results_total",
			Help: "Secondary sink outcomes per sink",
		},
		[]string{"sink", "status"},
	)

	SinkDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lead_sink_duration_seconds",
			Help:    "Time for a sink to settle, including timeouts",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8, 16},
		},
		[]string{"sink"},
	)

	SubmissionsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lead_submissions_in_flight",
			Help: "Submissions currently being fanned out",
		},
	)

	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lead_rate_limited_total",
			Help: "Requests rejected by the submission rate limiter",
		},
	)
)
