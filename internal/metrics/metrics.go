// Corkboard - Collaborative Kanban Board Server
// Copyright 2026 Corkboard contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/corkboard/corkboard

// Package metrics provides Prometheus instrumentation for Corkboard:
// API latency and throughput, database query performance, realtime
// connection and broadcast counters, and advisory lock activity.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API endpoint metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)

	// Database metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// Realtime connection metrics
	RealtimeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "realtime_connections",
			Help: "Current number of open realtime connections",
		},
	)

	RealtimeConnectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "realtime_connections_total",
			Help: "Total number of accepted realtime connections",
		},
	)

	RealtimeHandshakeRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "realtime_handshake_rejections_total",
			Help: "Total number of rejected realtime handshakes",
		},
		[]string{"reason"}, // "board_id", "token"
	)

	BroadcastsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "realtime_broadcasts_total",
			Help: "Total number of board events broadcast",
		},
		[]string{"event_type"},
	)

	BroadcastSendFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "realtime_broadcast_send_failures_total",
			Help: "Total number of per-connection broadcast send failures",
		},
	)

	// Advisory lock metrics
	LocksAcquiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "resource_locks_acquired_total",
			Help: "Total number of advisory locks acquired",
		},
	)

	LocksDeniedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "resource_locks_denied_total",
			Help: "Total number of denied advisory lock requests",
		},
	)

	LocksReleasedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "resource_locks_released_total",
			Help: "Total number of advisory locks explicitly released",
		},
	)

	LocksExpiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "resource_locks_expired_total",
			Help: "Total number of advisory locks evicted after expiry",
		},
	)

	LocksHeld = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "resource_locks_held",
			Help: "Current number of live advisory locks",
		},
	)
)

// RecordAPIRequest records one completed API request.
func RecordAPIRequest(method, path, status string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, path, status).Inc()
	APIRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(active bool) {
	if active {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordDBQuery records the duration of one database query.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// TrackRealtimeConnection adjusts the open connection gauge, counting total
// accepted connections on the way up.
func TrackRealtimeConnection(open bool) {
	if open {
		RealtimeConnections.Inc()
		RealtimeConnectionsTotal.Inc()
	} else {
		RealtimeConnections.Dec()
	}
}

// RecordBroadcast records one board event fan-out.
func RecordBroadcast(eventType string) {
	BroadcastsTotal.WithLabelValues(eventType).Inc()
}
