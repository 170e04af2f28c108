package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type spaceMetrics struct {
	appendsTotal          prometheus.Counter
	neighborsShortCircuit prometheus.Counter
	neighborsFallback     prometheus.Counter
}

func newSpaceMetrics(reg prometheus.Registerer) *spaceMetrics {
	reg = prometheus.WrapRegistererWithPrefix("graphdb_store_", reg)
	return &spaceMetrics{
		appendsTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "appends_total",
			Help: "Number of WAL append calls made through this space.",
		}),
		neighborsShortCircuit: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "neighbors_short_circuit_total",
			Help: "Number of get_neighbors requests served entirely from the edge topology cache.",
		}),
		neighborsFallback: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "neighbors_fallback_total",
			Help: "Number of get_neighbors requests that fell back past the cache short-circuit.",
		}),
	}
}
