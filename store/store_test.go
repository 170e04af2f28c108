package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/polarsignals/graphdb-core/cache"
)

func openTestStore(t *testing.T) (*Store, *Space) {
	t.Helper()
	s := New(nil, nil)
	sp, err := s.OpenSpace("test", SpaceConfig{Dir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })
	return s, sp
}

func TestOpenSpaceIsIdempotent(t *testing.T) {
	s, sp1 := openTestStore(t)
	sp2, err := s.OpenSpace("test", SpaceConfig{Dir: t.TempDir()})
	require.NoError(t, err)
	require.Same(t, sp1, sp2)
}

func TestOpenSpaceConcurrentOpensReturnSameInstance(t *testing.T) {
	s := New(nil, nil)
	dir := t.TempDir()
	t.Cleanup(func() { require.NoError(t, s.Close()) })

	var errg errgroup.Group
	spaces := make([]*Space, 16)
	for i := range spaces {
		i := i
		errg.Go(func() error {
			sp, err := s.OpenSpace("concurrent", SpaceConfig{Dir: dir})
			spaces[i] = sp
			return err
		})
	}
	require.NoError(t, errg.Wait())

	for _, sp := range spaces {
		require.Same(t, spaces[0], sp)
	}
}

func TestOpenSpaceRejectsEmptyDir(t *testing.T) {
	s := New(nil, nil)
	_, err := s.OpenSpace("test", SpaceConfig{})
	require.Error(t, err)
}

func TestSpaceIDIsStableAcrossLookups(t *testing.T) {
	s, sp := openTestStore(t)
	sp2, ok := s.Space("test")
	require.True(t, ok)
	require.Equal(t, sp.ID(), sp2.ID())
}

func TestSpaceLookupWithoutOpening(t *testing.T) {
	s := New(nil, nil)
	_, ok := s.Space("nope")
	require.False(t, ok)
}

func TestAppendEdgeMutationPersists(t *testing.T) {
	_, sp := openTestStore(t)
	ok, err := sp.AppendEdgeMutation(1, []byte("edge-1"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(1), sp.WAL().LastLogID())
}

func TestLocalClientFallsBackToNotFoundWithoutStorageEngine(t *testing.T) {
	_, sp := openTestStore(t)
	client := NewLocalClient(sp)

	_, err := client.GetNeighbors(context.Background(), &cache.NeighborsRequest{
		VIDs:        []string{"v1"},
		EdgeTypes:   []int32{1},
		VertexProps: []string{"name"},
	})
	require.Error(t, err)
}

func TestLocalClientShortCircuitsOnFullCacheHit(t *testing.T) {
	_, sp := openTestStore(t)
	sp.Cache().PutEdges(cache.NewEdgeKey("v1", 1), []string{"v2"}, time.Minute)
	client := NewLocalClient(sp)

	ds, err := client.GetNeighbors(context.Background(), &cache.NeighborsRequest{
		VIDs:        []string{"v1"},
		EdgeTypes:   []int32{1},
		VertexProps: []string{"name"},
	})
	require.NoError(t, err)
	require.Len(t, ds.Rows, 1)
}

func TestLocalClientPropagatesRejectionAsError(t *testing.T) {
	_, sp := openTestStore(t)
	client := NewLocalClient(sp)

	_, err := client.GetNeighbors(context.Background(), &cache.NeighborsRequest{
		VIDs:  []string{"v1"},
		Limit: 5,
	})
	require.Error(t, err)
}
