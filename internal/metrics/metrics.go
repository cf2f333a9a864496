// Package metrics provides Prometheus metrics for the fleet console.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics for the console.
type Metrics struct {
	// Registry is the Prometheus registry for this metrics instance
	Registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Polling metrics
	PollsTotal        *prometheus.CounterVec
	PollDuration      prometheus.Histogram
	ActiveBuses       prometheus.Gauge
	LastPollTimestamp prometheus.Gauge

	// Notification metrics
	NotificationsShown *prometheus.CounterVec
}

// New creates and registers all console metrics with a new registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	httpRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "console_http_request_duration_seconds",
			Help:    "HTTP request latency distribution",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	pollsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_polls_total",
			Help: "Total active-bus polls by trigger and outcome",
		},
		[]string{"trigger", "outcome"},
	)

	pollDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "console_poll_duration_seconds",
		Help:    "Active-bus poll latency distribution",
		Buckets: prometheus.DefBuckets,
	})

	activeBuses := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "console_active_buses",
		Help: "Number of buses in the last successful poll",
	})

	lastPollTimestamp := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "console_last_poll_timestamp_seconds",
		Help: "Unix time of the last successful poll",
	})

	notificationsShown := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_notifications_shown_total",
			Help: "Notifications enqueued by type",
		},
		[]string{"type"},
	)

	// Register all metrics with the custom registry
	registry.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		pollsTotal,
		pollDuration,
		activeBuses,
		lastPollTimestamp,
		notificationsShown,
	)

	return &Metrics{
		Registry:            registry,
		HTTPRequestsTotal:   httpRequestsTotal,
		HTTPRequestDuration: httpRequestDuration,
		PollsTotal:          pollsTotal,
		PollDuration:        pollDuration,
		ActiveBuses:         activeBuses,
		LastPollTimestamp:   lastPollTimestamp,
		NotificationsShown:  notificationsShown,
	}
}
