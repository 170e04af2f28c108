package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/polarsignals/graphdb-core/errs"
	"github.com/polarsignals/graphdb-core/expr"
	"github.com/polarsignals/graphdb-core/types"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(Config{}, log.NewNopLogger(), prometheus.NewRegistry())
	require.NoError(t, err)
	return c
}

func TestGetEdgesMissBeforePut(t *testing.T) {
	c := openTestCache(t)
	_, err := c.GetEdges(NewEdgeKey("v1", 1))
	require.Error(t, err)
	require.True(t, errors.Is(err, errs.NotFound))
}

func TestPutThenGetEdgesRoundTrips(t *testing.T) {
	c := openTestCache(t)
	key := NewEdgeKey("v1", 1)
	want := []string{"v2", "v3", "v4"}
	c.PutEdges(key, want, time.Minute)

	got, err := c.GetEdges(key)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestPutEdgesIdempotent(t *testing.T) {
	c := openTestCache(t)
	key := NewEdgeKey("v1", 1)
	dsts := []string{"a", "b"}

	c.PutEdges(key, dsts, time.Minute)
	c.PutEdges(key, dsts, time.Minute)

	got, err := c.GetEdges(key)
	require.NoError(t, err)
	require.Equal(t, dsts, got)
}

func TestInvalidateRemovesEntry(t *testing.T) {
	c := openTestCache(t)
	key := NewEdgeKey("v1", 1)
	c.PutEdges(key, []string{"a"}, time.Minute)

	c.Invalidate(key)

	_, err := c.GetEdges(key)
	require.Error(t, err)
}

func TestEdgeEntryExpiresAfterTTL(t *testing.T) {
	c := openTestCache(t)
	key := NewEdgeKey("v1", 1)
	c.PutEdges(key, []string{"a"}, time.Nanosecond)

	time.Sleep(time.Millisecond)
	_, err := c.GetEdges(key)
	require.Error(t, err)
}

func TestDuplicatePoolNameRejected(t *testing.T) {
	c := openTestCache(t)
	err := c.CreatePool(poolNameVertex)
	require.Error(t, err)
	require.True(t, errors.Is(err, errs.Invalid))
}

// TestNeighborsShortCircuitRejectsFilteredRequest implements S4: a
// neighbors-request with a non-empty filter expression must be rejected
// without consulting the cache.
func TestNeighborsShortCircuitRejectsFilteredRequest(t *testing.T) {
	c := openTestCache(t)
	req := &NeighborsRequest{
		VIDs:      []string{"v1"},
		EdgeTypes: []int32{1},
		Filter:    &expr.Literal{Value: types.Bool(true)},
	}

	_, err := c.GetNeighborsShortCircuit(req)
	require.Error(t, err)
	require.True(t, errors.Is(err, errs.Invalid))
}

func TestNeighborsShortCircuitRejectsLimitAndRandomRef(t *testing.T) {
	c := openTestCache(t)

	_, err := c.GetNeighborsShortCircuit(&NeighborsRequest{VIDs: []string{"v1"}, Limit: 5, VertexProps: []string{"name"}})
	require.Error(t, err)
	require.True(t, errors.Is(err, errs.Invalid))

	_, err = c.GetNeighborsShortCircuit(&NeighborsRequest{VIDs: []string{"v1"}, RandomRef: true, VertexProps: []string{"name"}})
	require.Error(t, err)
	require.True(t, errors.Is(err, errs.Invalid))
}

// TestNeighborsShortCircuitRejectsMissingVertexProps implements spec §4.2's
// fourth, unconditional rejection rule: a request with no vertex-props field
// set must fall back to the storage RPC rather than being served from the
// cache, even when it carries none of the other three disqualifying flags.
func TestNeighborsShortCircuitRejectsMissingVertexProps(t *testing.T) {
	c := openTestCache(t)
	c.PutEdges(NewEdgeKey("v1", 1), []string{"v2"}, time.Minute)

	_, err := c.GetNeighborsShortCircuit(&NeighborsRequest{
		VIDs:      []string{"v1"},
		EdgeTypes: []int32{1},
	})
	require.Error(t, err)
	require.True(t, errors.Is(err, errs.Invalid))
}

func TestNeighborsShortCircuitFullHit(t *testing.T) {
	c := openTestCache(t)
	c.PutEdges(NewEdgeKey("v1", 1), []string{"v2", "v3"}, time.Minute)

	ds, err := c.GetNeighborsShortCircuit(&NeighborsRequest{
		VIDs:        []string{"v1"},
		EdgeTypes:   []int32{1},
		VertexProps: []string{"name"},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"_vid", "_stats", "_edge:+type1", "_expr"}, ds.ColNames)
	require.Len(t, ds.Rows, 1)
	require.Equal(t, types.String("v1"), ds.Rows[0][0])
}

func TestNeighborsShortCircuitAbortsOnAnyMiss(t *testing.T) {
	c := openTestCache(t)
	c.PutEdges(NewEdgeKey("v1", 1), []string{"v2"}, time.Minute)
	// v2's edges were never populated.

	_, err := c.GetNeighborsShortCircuit(&NeighborsRequest{
		VIDs:        []string{"v1", "v2"},
		EdgeTypes:   []int32{1},
		VertexProps: []string{"name"},
	})
	require.Error(t, err)
	require.True(t, errors.Is(err, errs.NotFound))
}

func TestVertexPropsRoundTrip(t *testing.T) {
	c := openTestCache(t)
	props := map[string]string{"name": "alice"}
	c.PutVertexProps("v1", props, time.Minute)

	got, err := c.GetVertexProps("v1")
	require.NoError(t, err)
	require.Equal(t, props, got)
}

func TestEdgePoolEvictsLeastRecentlyUsedUnderByteBudget(t *testing.T) {
	// A 1-shard, tiny-budget pool forces eviction after a couple of entries.
	c, err := Open(Config{EdgePoolMB: 0, LocksPower: 0}, log.NewNopLogger(), prometheus.NewRegistry())
	require.NoError(t, err)

	c.edgePool = newShardedLRU[EdgeKey, []string](0, 30, func(k EdgeKey) uint32 { return hashString(k.raw) })

	k1, k2, k3 := NewEdgeKey("v1", 1), NewEdgeKey("v2", 1), NewEdgeKey("v3", 1)
	c.PutEdges(k1, []string{"aaaaaaaaaa"}, time.Minute)
	c.PutEdges(k2, []string{"bbbbbbbbbb"}, time.Minute)
	c.PutEdges(k3, []string{"cccccccccc"}, time.Minute)

	// k1 should have been evicted to make room once the budget was exceeded.
	_, err = c.GetEdges(k1)
	require.Error(t, err)
	_, err = c.GetEdges(k3)
	require.NoError(t, err)
}
