// Package metrics declares the Prometheus collectors of the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WebhooksReceived counts webhook deliveries by verification outcome.
	WebhooksReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "muxsync_webhooks_received_total",
			Help: "Webhook deliveries received",
		},
		[]string{"verified"},
	)

	// EventsDeduplicated counts deliveries of events already recorded.
	EventsDeduplicated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "muxsync_events_deduplicated_total",
			Help: "Webhook events skipped because they were already processed",
		},
	)

	EventsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "muxsync_events_skipped_total",
			Help: "Webhook events skipped by reason",
		},
		[]string{"reason"},
	)

	EventsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "muxsync_events_dispatched_total",
			Help: "Webhook events applied to local state",
		},
		[]string{"object_type", "action"},
	)

	// BackfillAssets counts assets handled by backfill runs by outcome.
	BackfillAssets = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "muxsync_backfill_assets_total",
			Help: "Assets handled by backfill",
		},
		[]string{"outcome"},
	)

	APIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "muxsync_mux_api_requests_total",
			Help: "Requests to the Mux API by operation and result",
		},
		[]string{"operation", "result"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "muxsync_mux_api_request_duration_seconds",
			Help:    "Mux API request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// CircuitBreakerState is 0 closed, 1 half-open, 2 open.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "muxsync_circuit_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"name"},
	)
)
