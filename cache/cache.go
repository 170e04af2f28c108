// Package cache implements the edge-topology cache described in spec §4.2:
// a pooled, TTL-aware LRU read-through layer in front of the storage RPC,
// storing only topology (destination-id lists) so it stays safe to consult
// even when vertex/edge properties change underneath it. Grounded on
// HundDB's generic structures/lru_cache.LRUCache[K,V], generalized to named
// byte-budgeted pools with sharding and TTL, and instrumented with
// prometheus counters and go-kit/log logging the way frostdb instruments
// table.go.
package cache

import (
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/polarsignals/graphdb-core/errs"
)

const (
	poolNameVertex = "vertex"
	poolNameEdge   = "edge"
)

// Cache is the shared edge-topology cache instance: two named pools (vertex
// properties, edge topology) sharing one PoolSet namespace, per spec §4.2
// "a single shared LRU instance segmented into named pools".
type Cache struct {
	cfg     Config
	logger  log.Logger
	metrics *cacheMetrics

	pools *PoolSet

	vertexPool *shardedLRU[VertexKey, map[string]string]
	edgePool   *shardedLRU[EdgeKey, []string]
}

// Open constructs a cache with the two standard pools registered. A second
// call to register either name (via CreatePool) fails with Invalid.
func Open(cfg Config, logger log.Logger, reg prometheus.Registerer) (*Cache, error) {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = log.NewNopLogger()
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	c := &Cache{
		cfg:     cfg,
		logger:  logger,
		metrics: newCacheMetrics(reg),
		pools:   newPoolSet(),
	}

	if err := c.pools.register(poolNameVertex); err != nil {
		return nil, err
	}
	if err := c.pools.register(poolNameEdge); err != nil {
		return nil, err
	}

	c.vertexPool = newShardedLRU[VertexKey, map[string]string](
		cfg.LocksPower, int64(cfg.VertexPoolMB)*1024*1024,
		func(k VertexKey) uint32 { return hashString(k.raw) },
	)
	c.edgePool = newShardedLRU[EdgeKey, []string](
		cfg.LocksPower, int64(cfg.EdgePoolMB)*1024*1024,
		func(k EdgeKey) uint32 { return hashString(k.raw) },
	)

	return c, nil
}

// CreatePool reserves an additional named pool slot. Present so hosts that
// need pools beyond the two standard ones (vertex, edge) can extend the
// cache's namespace without risking a silent name collision; spec §4.2
// requires duplicate names to be rejected regardless of which pool they
// belong to.
func (c *Cache) CreatePool(name string) error {
	return c.pools.register(name)
}

// GetEdges returns the cached ordered destination-id list for key, or a
// NotFound error on miss (spec §4.2 "a miss signals the caller to take the
// RPC path").
func (c *Cache) GetEdges(key EdgeKey) ([]string, error) {
	dsts, ok := c.edgePool.get(key, time.Now())
	if !ok {
		c.metrics.edgeMisses.Inc()
		err := errs.NotFoundf("edge cache miss")
		c.logMiss("get_edges", err)
		return nil, err
	}
	c.metrics.edgeHits.Inc()
	return dsts, nil
}

// PutEdges allocates a parent entry for key and chains one child per
// destination id, then inserts or replaces the entry atomically (spec §4.2:
// "allocates a parent item (placeholder payload), appends each dst as a
// chained child, then inserts-or-replaces atomically").
func (c *Cache) PutEdges(key EdgeKey, dsts []string, ttl time.Duration) {
	chain := newDstChain()
	for _, d := range dsts {
		chain.appendChild(d)
	}
	ordered := chain.flatten()
	if ttl <= 0 {
		ttl = c.cfg.EdgeItemTTL
	}
	c.edgePool.put(key, ordered, edgeEntrySize(key, ordered), ttl)
}

// Invalidate removes key's entry outright, as storage writers are required
// to call on every (src, type) whose outgoing edges changed.
func (c *Cache) Invalidate(key EdgeKey) {
	if c.edgePool.remove(key) {
		c.metrics.edgeInvalidations.Inc()
	}
}

// GetVertexProps and PutVertexProps round out the vertex-property pool
// named in spec §4.2 alongside the edge-topology pool, with the same
// TTL/byte-budget mechanics; the spec does not enumerate their operation
// table in detail since the scenarios only exercise the edge pool.
func (c *Cache) GetVertexProps(vid string) (map[string]string, error) {
	props, ok := c.vertexPool.get(NewVertexKey(vid), time.Now())
	if !ok {
		c.metrics.vertexMisses.Inc()
		err := errs.NotFoundf("vertex property cache miss")
		c.logMiss("get_vertex_props", err)
		return nil, err
	}
	c.metrics.vertexHits.Inc()
	return props, nil
}

func (c *Cache) PutVertexProps(vid string, props map[string]string, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.cfg.VertexItemTTL
	}
	c.vertexPool.put(NewVertexKey(vid), props, vertexEntrySize(vid, props), ttl)
}

func edgeEntrySize(key EdgeKey, dsts []string) int64 {
	n := int64(len(key.raw))
	for _, d := range dsts {
		n += int64(len(d))
	}
	return n
}

func vertexEntrySize(vid string, props map[string]string) int64 {
	n := int64(len(vid))
	for k, v := range props {
		n += int64(len(k) + len(v))
	}
	return n
}

func (c *Cache) logMiss(op string, err error) {
	level.Info(c.logger).Log("msg", "cache operation recoverable miss", "op", op, "err", err)
}

// dstChain is the in-memory chain of destination-id child entries built by
// PutEdges before it is flattened into the stored ordered slice, per spec
// §4.2's "chain of child entries, one per destination id" description of
// the edge pool's parent/child shape.
type dstChain struct {
	children []string
}

func newDstChain() *dstChain { return &dstChain{} }

func (c *dstChain) appendChild(dst string) { c.children = append(c.children, dst) }

func (c *dstChain) flatten() []string {
	out := make([]string, len(c.children))
	copy(out, c.children)
	return out
}
