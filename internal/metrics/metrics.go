package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for the werewolf service
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight *prometheus.GaugeVec

	// Reconciliation Metrics
	ReconcileRunsTotal     *prometheus.CounterVec
	ReconcileDuration      prometheus.Histogram
	OverwritesSetTotal     prometheus.Counter
	OverwritesClearedTotal prometheus.Counter

	// Business Metrics
	CommandsTotal      *prometheus.CounterVec
	ReactionsProcessed *prometheus.CounterVec
	ReactionQueueDepth prometheus.Gauge
}

// NewMetricsRegistry registers every metric on reg. Pass prometheus.DefaultRegisterer
// in the server and a fresh prometheus.NewRegistry() in tests.
func NewMetricsRegistry(reg prometheus.Registerer) *MetricsRegistry {
	factory := promauto.With(reg)

	return &MetricsRegistry{
		// HTTP Metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "werewolf_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "werewolf_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "werewolf_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		// Reconciliation Metrics
		ReconcileRunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "werewolf_reconcile_runs_total",
				Help: "Permission reconciliation runs by result",
			},
			[]string{"result"},
		),
		ReconcileDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "werewolf_reconcile_duration_seconds",
				Help:    "Time spent reconciling channel overwrites for one game",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
		),
		OverwritesSetTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "werewolf_overwrites_set_total",
				Help: "Channel permission overwrites written",
			},
		),
		OverwritesClearedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "werewolf_overwrites_cleared_total",
				Help: "Channel permission overwrites removed",
			},
		),

		// Business Metrics
		CommandsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "werewolf_commands_total",
				Help: "Moderator commands by name and outcome (ok, rejected, error)",
			},
			[]string{"command", "outcome"},
		),
		ReactionsProcessed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "werewolf_reactions_processed_total",
				Help: "Signup reaction events by result",
			},
			[]string{"result"},
		),
		ReactionQueueDepth: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "werewolf_reaction_queue_depth",
				Help: "Entries on the reaction stream at the last check",
			},
		),
	}
}
