package store

import (
	"context"
	"errors"

	"github.com/polarsignals/graphdb-core/cache"
	"github.com/polarsignals/graphdb-core/errs"
	"github.com/polarsignals/graphdb-core/types"
)

// StorageClient is the executor-facing seam between "get neighbors" calls
// and whatever backs them, grounded on frostdb's logicalplan.TableReader
// interface seam between DBTableProvider and a remote table provider: the
// executor holds a StorageClient and doesn't know whether it's talking to
// an in-process Space or (out of scope here) a remote gRPC-backed one.
type StorageClient interface {
	GetNeighbors(ctx context.Context, req *cache.NeighborsRequest) (*types.DataSet, error)
}

// LocalClient routes GetNeighbors calls to an in-process Space: the cache
// short-circuit first. A rejected request returns the short-circuit's
// Invalid error unchanged; a cache miss returns a NotFound-kind error, since
// the actual storage-engine scan this would otherwise fall back to is out of
// scope (spec.md §1 Non-goals).
type LocalClient struct {
	space *Space
}

// NewLocalClient wraps space as a StorageClient.
func NewLocalClient(space *Space) *LocalClient {
	return &LocalClient{space: space}
}

func (c *LocalClient) GetNeighbors(ctx context.Context, req *cache.NeighborsRequest) (*types.DataSet, error) {
	ds, err := c.space.cache.GetNeighborsShortCircuit(req)
	if err == nil {
		c.space.metrics.neighborsShortCircuit.Inc()
		return ds, nil
	}
	c.space.metrics.neighborsFallback.Inc()
	if errors.Is(err, errs.Invalid) {
		return nil, err
	}
	return nil, errs.Wrap(errs.KindNotFound, "get_neighbors: no storage-engine fallback wired for this space", err)
}
