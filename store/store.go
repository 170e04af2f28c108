// Package store wires the WAL, the edge topology cache, and the query
// iterators together into the top-level read/write surface an executor
// would call, grounded on frostdb's ColumnStore -> DB -> Table layering
// (db.go/table.go): a Store holds named Spaces, lazily creating each one
// on first access under a double-checked lock.
package store

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/polarsignals/graphdb-core/cache"
	"github.com/polarsignals/graphdb-core/errs"
	"github.com/polarsignals/graphdb-core/wal"
)

// Store is the top-level handle a host process holds; it owns zero or more
// named graph Spaces, each an independent WAL + cache pair (the rough
// equivalent of frostdb's DB).
type Store struct {
	mtx    *sync.RWMutex
	spaces map[string]*Space
	reg    prometheus.Registerer
	logger log.Logger
}

// New constructs a Store. A nil registerer defaults to a fresh registry, a
// nil logger to a no-op logger, matching ColumnStore's New.
func New(reg prometheus.Registerer, logger log.Logger) *Store {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Store{
		mtx:    &sync.RWMutex{},
		spaces: map[string]*Space{},
		reg:    reg,
		logger: logger,
	}
}

// Space is one named graph: a WAL for durable writes and an edge topology
// cache for read-through traversal, the graph analogue of frostdb's Table.
type Space struct {
	name string
	id   uuid.UUID

	wal   *wal.Store
	cache *cache.Cache

	metrics *spaceMetrics
}

// OpenSpace returns the named space, opening it against cfg on first
// access. Subsequent calls with a different cfg are ignored -- a space's
// on-disk location and tuning are fixed at creation, per TableConfig's
// "configure once" precedent in table.go.
func (s *Store) OpenSpace(name string, cfg SpaceConfig) (*Space, error) {
	s.mtx.RLock()
	sp, ok := s.spaces[name]
	s.mtx.RUnlock()
	if ok {
		return sp, nil
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	if sp, ok = s.spaces[name]; ok {
		return sp, nil
	}

	spaceReg := prometheus.WrapRegistererWith(prometheus.Labels{"space": name}, s.reg)
	walDir := cfg.Dir
	if walDir == "" {
		return nil, errs.Invalidf("space %q: empty WAL directory", name)
	}
	walDir = filepath.Join(walDir, "wal")

	walStore, err := wal.Open(walDir, cfg.WAL.toWAL(), s.logger, spaceReg)
	if err != nil {
		return nil, fmt.Errorf("space %q: open wal: %w", name, err)
	}

	c, err := cache.Open(cfg.Cache.toCache(), s.logger, spaceReg)
	if err != nil {
		walStore.Close()
		return nil, fmt.Errorf("space %q: open cache: %w", name, err)
	}

	sp = &Space{
		name:    name,
		id:      uuid.New(),
		wal:     walStore,
		cache:   c,
		metrics: newSpaceMetrics(spaceReg),
	}
	level.Info(s.logger).Log("msg", "space opened", "space", name, "instance_id", sp.id)
	s.spaces[name] = sp
	return sp, nil
}

// Space returns the named space if it has already been opened, without
// creating it.
func (s *Store) Space(name string) (*Space, bool) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	sp, ok := s.spaces[name]
	return sp, ok
}

// Close closes every open space's WAL. Cache pools need no explicit close.
func (s *Store) Close() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	var firstErr error
	for _, sp := range s.spaces {
		if err := sp.wal.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Name returns the space's name.
func (s *Space) Name() string { return s.name }

// ID returns the space's instance id, assigned once at open time and stable
// for the life of the process; it has no on-disk meaning and is not
// preserved across a restart.
func (s *Space) ID() uuid.UUID { return s.id }

// AppendEdgeMutation durably logs one edge mutation and returns whether the
// append was accepted (false means logID is not exactly one past the WAL's
// last log id, per wal.Store.Append's contract).
func (s *Space) AppendEdgeMutation(logID uint64, payload []byte) (bool, error) {
	s.metrics.appendsTotal.Inc()
	return s.wal.Append(logID, payload)
}

// Cache exposes the space's edge topology cache for direct read-through
// use by the executor (GetEdges/PutEdges/GetNeighborsShortCircuit/etc).
func (s *Space) Cache() *cache.Cache { return s.cache }

// WAL exposes the space's WAL for replay/iteration by the executor or a
// recovery tool.
func (s *Space) WAL() *wal.Store { return s.wal }
