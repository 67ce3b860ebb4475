// Package observability provides metrics and tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aviary_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// NotificationsCreated counts persisted notifications by type.
	NotificationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aviary_notifications_created_total",
		Help: "Total number of notifications created by type",
	}, []string{"type"})

	// ActiveWebSockets is the gauge of live notification stream connections.
	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "aviary_websocket_connections",
		Help: "Number of active WebSocket connections",
	})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure by hub and reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aviary_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})

	// AssetOperationLatency records hosted asset store/delete latency.
	AssetOperationLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "aviary_asset_operation_latency_seconds",
		Help:    "Hosted image asset operation latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
)

// TrackAssetOperation returns a function that records operation latency when
// called (e.g. defer).
func TrackAssetOperation(operation string) func() {
	start := time.Now()
	return func() {
		AssetOperationLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}
