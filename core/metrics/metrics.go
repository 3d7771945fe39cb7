// Package metrics holds the Prometheus collectors shared by the bot runtime
// and the optional HTTP endpoint that exposes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "sholatbot"

var (
	// HandlerTotal counts handled updates per routed handler and outcome.
	HandlerTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handler_total",
			Help:      "Total number of handled updates by handler and outcome",
		},
		[]string{"handler", "outcome"},
	)

	// HandlerDuration observes handler latency in seconds.
	HandlerDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "handler_duration_seconds",
			Help:      "Duration of update handling in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"handler"},
	)

	// MessagesSent counts outbound messages that Telegram accepted.
	MessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_sent_total",
			Help:      "Total number of outbound messages accepted by Telegram",
		},
	)

	// SendFailures counts outbound jobs that failed after retries.
	SendFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "send_failures_total",
			Help:      "Total number of outbound sends that failed after retries",
		},
		[]string{"error_kind"},
	)

	// RateLimited counts updates dropped by the per-user limiter.
	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Total number of updates rejected by the rate limiter",
		},
	)

	// UpstreamRequests counts calls to the content API by endpoint and outcome.
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Total number of upstream API requests",
		},
		[]string{"endpoint", "outcome"},
	)

	// UpstreamDuration observes upstream latency in seconds.
	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Duration of upstream API requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// Disambiguations counts city-choice lifecycle events by intent.
	Disambiguations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "disambiguation_events_total",
			Help:      "City disambiguation events (started, resolved, invalid)",
		},
		[]string{"intent", "event"},
	)

	// PendingSwept counts expired pending choices removed by the sweeper.
	PendingSwept = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pending_swept_total",
			Help:      "Total number of expired pending city choices removed",
		},
	)
)
