package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lens_cycles_total",
			Help: "Recognition cycles by outcome",
		},
		[]string{"status"},
	)

	cycleDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lens_cycle_duration_seconds",
			Help:    "Duration of pipeline stages per frame",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"stage"},
	)

	blocksEmitted = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lens_blocks_emitted",
			Help:    "Translated blocks delivered per frame",
			Buckets: []float64{0, 1, 2, 4, 8, 16, 32, 64},
		},
	)
)
