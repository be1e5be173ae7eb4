package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersReceivedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orderdesk_orders_received_total",
		Help: "Total number of new_order events accepted into the desk.",
	})

	InvalidPayloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orderdesk_invalid_payloads_total",
		Help: "Total number of channel payloads dropped at the boundary.",
	},
		[]string{"event"},
	)

	DecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orderdesk_decisions_total",
		Help: "Total number of order decisions confirmed by the backend.",
	},
		[]string{"kind"},
	)

	OperationErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orderdesk_operation_errors_total",
		Help: "Total number of errors encountered during specific operations.",
	},
		[]string{"operation"},
	)

	ConnectionState = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "orderdesk_connection_state",
		Help: "Real-time channel state: 0 disconnected, 1 connecting, 2 connected, 3 reconnecting.",
	})

	ReconnectAttemptsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orderdesk_reconnect_attempts_total",
		Help: "Total number of channel reconnection attempts.",
	})

	ConnectErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orderdesk_connect_errors_total",
		Help: "Total number of failed channel connection attempts.",
	})

	RoomJoinsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orderdesk_room_joins_total",
		Help: "Total number of join-restaurant emissions.",
	})

	CountdownSeconds = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "orderdesk_countdown_seconds",
		Help: "Seconds left in the response window of the pending order, 0 when idle.",
	})

	OrderCacheItems = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "orderdesk_order_cache_items",
		Help: "Current number of items in the recent orders cache.",
	})

	OutboxTasksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orderdesk_outbox_tasks_total",
		Help: "Outbox tasks relayed to the broker by result.",
	},
		[]string{"result"},
	)
)
