package translate

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	translationLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lens_translation_lookups_total",
			Help: "Translation cache lookups by result",
		},
		[]string{"result"}, // hit, miss, fallback
	)

	translationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lens_translation_backend_duration_seconds",
			Help:    "Latency of translation backend calls",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2, 5},
		},
	)

	breakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lens_translation_breaker_state",
			Help: "Translation circuit breaker state (0 closed, 1 open, 2 half-open)",
		},
	)
)
