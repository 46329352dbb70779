// Package server exposes Prometheus instrumentation for the chat core.
package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	metricActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sharkchat_active_connections",
		Help: "Number of currently open WebSocket connections.",
	})

	metricInboundEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sharkchat_inbound_events_total",
		Help: "Inbound client events by declared type.",
	}, []string{"type"})

	metricEventErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sharkchat_event_errors_total",
		Help: "Rejected inbound events by error kind.",
	}, []string{"kind"})

	metricMessagesStored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sharkchat_messages_stored_total",
		Help: "Chat messages successfully persisted.",
	})

	metricBroadcastDeliveries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sharkchat_broadcast_deliveries_total",
		Help: "Events queued to individual recipients.",
	})

	metricBroadcastDrops = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sharkchat_broadcast_drops_total",
		Help: "Events silently skipped because a recipient was not writable.",
	})
)

// MetricsHandler serves the Prometheus scrape endpoint.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
