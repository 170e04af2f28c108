package store

import (
	"time"

	"github.com/polarsignals/graphdb-core/cache"
	"github.com/polarsignals/graphdb-core/wal"
)

// WALConfig mirrors spec.md §6's WAL configuration surface.
type WALConfig struct {
	FileSizeMB   int
	BufferSizeMB int
	NumBuffers   int
}

func (c WALConfig) toWAL() wal.Config {
	return wal.Config{FileSizeMB: c.FileSizeMB, BufferSizeMB: c.BufferSizeMB, NumBuffers: c.NumBuffers}
}

// CacheConfig mirrors spec.md §6's edge-topology-cache configuration surface.
type CacheConfig struct {
	CapacityMB    int
	BucketsPower  uint
	LocksPower    uint
	VertexPoolMB  int
	EdgePoolMB    int
	VertexItemTTL time.Duration
	EdgeItemTTL   time.Duration
}

func (c CacheConfig) toCache() cache.Config {
	return cache.Config{
		CapacityMB:    c.CapacityMB,
		BucketsPower:  c.BucketsPower,
		LocksPower:    c.LocksPower,
		VertexPoolMB:  c.VertexPoolMB,
		EdgePoolMB:    c.EdgePoolMB,
		VertexItemTTL: c.VertexItemTTL,
		EdgeItemTTL:   c.EdgeItemTTL,
	}
}

// SpaceConfig configures one graph space: its WAL directory and the two
// ambient subsystem configs.
type SpaceConfig struct {
	Dir   string
	WAL   WALConfig
	Cache CacheConfig
}
