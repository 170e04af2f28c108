package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type cacheMetrics struct {
	edgeHits           prometheus.Counter
	edgeMisses         prometheus.Counter
	edgeInvalidations  prometheus.Counter
	vertexHits         prometheus.Counter
	vertexMisses       prometheus.Counter
	shortCircuitOK     prometheus.Counter
	shortCircuitMiss   prometheus.Counter
	shortCircuitReject prometheus.Counter
}

func newCacheMetrics(reg prometheus.Registerer) *cacheMetrics {
	reg = prometheus.WrapRegistererWithPrefix("graphdb_cache_", reg)
	return &cacheMetrics{
		edgeHits: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "edge_hits_total",
			Help: "Number of edge-topology pool lookups that hit.",
		}),
		edgeMisses: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "edge_misses_total",
			Help: "Number of edge-topology pool lookups that missed.",
		}),
		edgeInvalidations: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "edge_invalidations_total",
			Help: "Number of explicit edge-topology invalidations.",
		}),
		vertexHits: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "vertex_hits_total",
			Help: "Number of vertex-property pool lookups that hit.",
		}),
		vertexMisses: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "vertex_misses_total",
			Help: "Number of vertex-property pool lookups that missed.",
		}),
		shortCircuitOK: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "neighbors_short_circuit_total",
			Help: "Number of get_neighbors requests fully served from cache.",
		}),
		shortCircuitMiss: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "neighbors_short_circuit_miss_total",
			Help: "Number of get_neighbors requests that fell back to storage after a partial cache miss.",
		}),
		shortCircuitReject: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "neighbors_short_circuit_rejected_total",
			Help: "Number of get_neighbors requests rejected from the short-circuit path outright (filter/limit/random_ref/missing vertex-props).",
		}),
	}
}
