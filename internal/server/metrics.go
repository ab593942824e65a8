package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lens_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lens_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// WebSocket metrics
	websocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lens_websocket_active_connections",
			Help: "Number of connected overlay renderers",
		},
	)

	websocketMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lens_websocket_messages_total",
			Help: "Total number of WebSocket messages",
		},
		[]string{"direction"}, // direction: sent, received
	)

	// Blink metrics
	blinkWaitSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lens_blink_wait_seconds",
			Help:    "Time spent waiting for renderers to hide the overlay before a capture",
			Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25},
		},
	)

	blinkAckTimeouts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lens_blink_ack_timeouts_total",
			Help: "Captures that proceeded before every renderer acknowledged the blink",
		},
	)
)
