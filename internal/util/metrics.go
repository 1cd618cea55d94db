package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ChatMessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_messages_total",
		Help: "Total number of chat messages by classified intent",
	}, []string{"intent"})

	ChatMessageLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "chat_message_latency_seconds",
		Help:    "Latency of handling one chat message",
		Buckets: prometheus.DefBuckets,
	})

	ChatErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_errors_total",
		Help: "Total number of chat messages answered with an error",
	}, []string{"code"})

	CartLinesAddedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cart_lines_added_total",
		Help: "Total number of order intents applied to a cart",
	})

	CartsCancelledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "carts_cancelled_total",
		Help: "Total number of carts cleared by a cancel intent",
	})

	CheckoutsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkouts_total",
		Help: "Total number of checkout attempts by result",
	}, []string{"result"})

	OrderPersistLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "order_persist_latency_seconds",
		Help:    "Latency of persisting a checked out order",
		Buckets: prometheus.DefBuckets,
	})

	CatalogRefreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_refresh_total",
		Help: "Total number of catalog snapshot refreshes by result",
	}, []string{"result"})

	CatalogRefreshLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalog_refresh_latency_seconds",
		Help:    "Latency of loading the catalog snapshot",
		Buckets: prometheus.DefBuckets,
	})

	CatalogItems = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "catalog_items",
		Help: "Number of items in the current catalog snapshot",
	})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chat_sessions_active",
		Help: "Number of chat sessions held in memory",
	})

	SessionsSweptTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_sessions_swept_total",
		Help: "Total number of idle chat sessions removed",
	})

	NotificationsFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "order_notifications_failed_total",
		Help: "Total number of order notifications that could not be published",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
