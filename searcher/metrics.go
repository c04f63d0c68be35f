package searcher

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// searchesTotal counts decisions by strategy and outcome ("ok" or "error").
	searchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "isolation",
			Subsystem: "searcher",
			Name:      "searches_total",
			Help:      "Total search decisions by strategy and status",
		},
		[]string{"strategy", "status"},
	)

	searchDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "isolation",
			Subsystem: "searcher",
			Name:      "search_duration_seconds",
			Help:      "Time spent per search decision in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"strategy"},
	)

	mctsIterationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "isolation",
			Subsystem: "searcher",
			Name:      "mcts_iterations_total",
			Help:      "Total completed MCTS iterations",
		},
	)
)

func observeSearch(strategy string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	searchesTotal.WithLabelValues(strategy, status).Inc()
	searchDurationSeconds.WithLabelValues(strategy).Observe(time.Since(start).Seconds())
}
