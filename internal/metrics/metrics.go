// Ghostmap - Real-time Shared Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ghostmap

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus collectors for the shared map service:
// - HTTP endpoint latency and throughput
// - WebSocket connections and message flow
// - Command outcomes and fan-out per event
// - Shared state sizes and alert expiry
// - Event feed publishing and circuit breaker state

const namespace = "ghostmap"

var (
	// HTTP Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Number of HTTP requests currently being served",
		},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "websocket_connections",
			Help:      "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "websocket_messages_sent_total",
			Help:      "Total number of WebSocket messages queued for delivery",
		},
	)

	WSMessagesReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "websocket_messages_received_total",
			Help:      "Total number of WebSocket messages read from clients",
		},
	)

	WSDroppedClients = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "websocket_dropped_clients_total",
			Help:      "Connections disconnected because their send queue was full",
		},
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "websocket_errors_total",
			Help:      "Total number of WebSocket errors",
		},
		[]string{"error_type"},
	)

	// Router Metrics
	CommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Inbound client commands by outcome",
		},
		[]string{"command", "result"}, // result: applied, noop, invalid, rate_limited, unknown
	)

	EventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Outbound events by fan-out scope",
		},
		[]string{"event", "scope"},
	)

	// State Metrics
	StateEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "state_entries",
			Help:      "Current number of entries per shared state collection",
		},
		[]string{"collection"},
	)

	AlertsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_expired_total",
			Help:      "Alerts removed by the expiry sweeper",
		},
	)

	SweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sweep_duration_seconds",
			Help:      "Time spent in one alert expiry pass",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1},
		},
	)

	// Event Feed Metrics
	FeedPublishTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_publish_total",
			Help:      "Event feed publish attempts by result",
		},
		[]string{"result"}, // result: success, failure, dropped, rejected
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state_transitions_total",
			Help:      "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordCommand records the outcome of one inbound command.
func RecordCommand(command, result string) {
	CommandsTotal.WithLabelValues(command, result).Inc()
}

// RecordEvent records one outbound event and how many messages it produced.
func RecordEvent(event, scope string, recipients int) {
	EventsTotal.WithLabelValues(event, scope).Inc()
	WSMessagesSent.Add(float64(recipients))
}

// RecordSweep records one expiry pass.
func RecordSweep(duration time.Duration, expired int) {
	SweepDuration.Observe(duration.Seconds())
	AlertsExpired.Add(float64(expired))
}

// RecordFeedPublish records an event feed publish outcome.
func RecordFeedPublish(result string) {
	FeedPublishTotal.WithLabelValues(result).Inc()
}

// RecordCircuitBreakerTransition updates breaker state gauges on a transition.
// States follow gobreaker ordering: closed, half-open, open.
func RecordCircuitBreakerTransition(name, from, to string, toState int) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	CircuitBreakerState.WithLabelValues(name).Set(float64(toState))
}
