// Package metrics defines the Prometheus instrumentation for the linecast
// server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OpenConnections tracks the number of connections currently enrolled in
	// the registry, by transport (tcp/websocket).
	OpenConnections = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "linecast_open_connections",
			Help: "Connections currently enrolled in the broadcast registry by transport",
		},
		[]string{"transport"},
	)

	// ConnectionsAccepted tracks total accepted connections by transport.
	ConnectionsAccepted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linecast_connections_accepted_total",
			Help: "Total accepted connections by transport",
		},
		[]string{"transport"},
	)

	// AcceptErrors tracks transient accept failures.
	AcceptErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "linecast_accept_errors_total",
			Help: "Total transient accept failures",
		},
	)

	// MessagesReceived tracks messages decoded from clients and enqueued for
	// broadcast.
	MessagesReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "linecast_messages_received_total",
			Help: "Total messages received from clients",
		},
	)

	// MessagesDelivered tracks successful per-destination deliveries.
	MessagesDelivered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "linecast_messages_delivered_total",
			Help: "Total successful per-destination message deliveries",
		},
	)

	// DeliveryFailures tracks per-destination write failures during broadcast.
	DeliveryFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "linecast_delivery_failures_total",
			Help: "Total per-destination write failures during broadcast",
		},
	)

	// Evictions tracks connections removed from the registry by cause
	// (read_error/write_error/shutdown).
	Evictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linecast_evictions_total",
			Help: "Connections evicted from the registry by cause",
		},
		[]string{"cause"},
	)

	// InvalidMessages tracks inbound messages discarded at ingestion because
	// they cannot be framed for rebroadcast.
	InvalidMessages = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "linecast_invalid_messages_total",
			Help: "Total inbound messages discarded as unframeable",
		},
	)

	// RateLimitedMessages tracks messages discarded by the per-connection rate
	// limiter.
	RateLimitedMessages = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "linecast_rate_limited_messages_total",
			Help: "Total messages discarded by per-connection rate limiting",
		},
	)
)
