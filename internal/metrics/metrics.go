// Homestock - Household Inventory Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/homestock

// Package metrics defines the Prometheus instrumentation for Homestock.
//
// All collectors are registered on the default registry through promauto
// and exposed at /metrics. Callers use the Record*/Set* helpers rather than
// touching the collectors directly so label sets stay consistent.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result label values.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

var (
	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homestock_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "homestock_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "homestock_api_active_requests",
			Help: "Number of API requests currently being served",
		},
	)

	// Record Store Metrics
	StoreOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homestock_store_operations_total",
			Help: "Total number of record store operations",
		},
		[]string{"driver", "operation", "result"},
	)

	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "homestock_store_operation_duration_seconds",
			Help:    "Duration of record store operations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"driver", "operation"},
	)

	// Subscription / Snapshot Cache Metrics
	SnapshotPushesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "homestock_snapshot_pushes_total",
			Help: "Total number of full snapshots applied to the cache",
		},
	)

	SnapshotPushErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "homestock_snapshot_push_errors_total",
			Help: "Total number of subscription push errors (cache retained)",
		},
	)

	CacheItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "homestock_cache_items",
			Help: "Number of items in the snapshot cache",
		},
	)

	ActiveSubscriptions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "homestock_active_subscriptions",
			Help: "Number of live record store subscriptions (0 or 1)",
		},
	)

	// Inventory Mutation Metrics
	ItemMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homestock_item_mutations_total",
			Help: "Total number of add, edit and delete requests by outcome",
		},
		[]string{"operation", "result"},
	)

	// WebSocket Metrics
	WSConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "homestock_websocket_connections_active",
			Help: "Current number of connected WebSocket clients",
		},
	)

	WSMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homestock_websocket_messages_total",
			Help: "Total number of WebSocket messages by direction and type",
		},
		[]string{"direction", "type"},
	)

	WSMessagesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "homestock_websocket_messages_dropped_total",
			Help: "Total number of outbound WebSocket messages dropped for slow clients",
		},
	)

	// Export Metrics
	ExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homestock_exports_total",
			Help: "Total number of CSV exports by sink and outcome",
		},
		[]string{"sink", "result"},
	)

	ExportRows = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "homestock_export_rows",
			Help:    "Number of data rows per CSV export",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	// Imaging Metrics
	PhotosProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homestock_photos_processed_total",
			Help: "Total number of photo attachments normalized",
		},
		[]string{"result"},
	)

	PhotoBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "homestock_photo_encoded_bytes",
			Help:    "Size of normalized photo payloads in bytes",
			Buckets: prometheus.ExponentialBuckets(4096, 2, 8),
		},
	)

	// Session Metrics
	SignInsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homestock_sign_ins_total",
			Help: "Total number of anonymous sign-in attempts",
		},
		[]string{"result"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "homestock_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homestock_circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)
)

// RecordAPIRequest records a completed API request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordStoreOperation records a record store call.
func RecordStoreOperation(driver, operation string, duration time.Duration, err error) {
	StoreOperationsTotal.WithLabelValues(driver, operation, result(err)).Inc()
	StoreOperationDuration.WithLabelValues(driver, operation).Observe(duration.Seconds())
}

// RecordSnapshot records an applied snapshot of n items.
func RecordSnapshot(n int) {
	SnapshotPushesTotal.Inc()
	CacheItems.Set(float64(n))
}

// RecordSnapshotError records a failed subscription push.
func RecordSnapshotError() {
	SnapshotPushErrorsTotal.Inc()
}

// SetActiveSubscriptions sets the live subscription gauge.
func SetActiveSubscriptions(n int) {
	ActiveSubscriptions.Set(float64(n))
}

// RecordItemMutation records an add, edit or delete outcome.
func RecordItemMutation(operation string, err error) {
	ItemMutationsTotal.WithLabelValues(operation, result(err)).Inc()
}

// RecordWSMessage counts a WebSocket message; direction is "in" or "out".
func RecordWSMessage(direction, msgType string) {
	WSMessagesTotal.WithLabelValues(direction, msgType).Inc()
}

// RecordExport records an export attempt.
func RecordExport(sink string, rows int, err error) {
	ExportsTotal.WithLabelValues(sink, result(err)).Inc()
	if err == nil {
		ExportRows.Observe(float64(rows))
	}
}

// RecordPhoto records a photo normalization outcome.
func RecordPhoto(encodedBytes int, err error) {
	PhotosProcessedTotal.WithLabelValues(result(err)).Inc()
	if err == nil {
		PhotoBytes.Observe(float64(encodedBytes))
	}
}

// RecordSignIn records an anonymous sign-in attempt.
func RecordSignIn(err error) {
	SignInsTotal.WithLabelValues(result(err)).Inc()
}

// RecordCircuitBreakerTransition updates breaker state metrics.
func RecordCircuitBreakerTransition(name, from, to string, state float64) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	CircuitBreakerState.WithLabelValues(name).Set(state)
}

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultSuccess
}
