package iterator

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/polarsignals/graphdb-core/types"
)

func edgeRecord(dst string, typ, rank int64, prop1, prop2 int64) types.Value {
	return types.Value{Kind: types.KindMap, Map: map[string]types.Value{
		"_dst":  types.String(dst),
		"_type": types.Int(typ),
		"_rank": types.Int(rank),
		"prop1": types.Int(prop1),
		"prop2": types.Int(prop2),
	}}
}

func buildNeighborDataSet(tagCol, edgeCol string, vidBase int, n int, edgeType int64, reverseDstPrefix string) *types.DataSet {
	ds := &types.DataSet{ColNames: []string{types.ColVid, types.ColStats, tagCol, edgeCol, types.ColExpr}}
	for i := 0; i < n; i++ {
		vid := strconv.Itoa(vidBase + i)
		tagMap := types.Value{Kind: types.KindMap, Map: map[string]types.Value{
			"prop1": types.Int(int64(vidBase + i)),
			"prop2": types.Int(int64(vidBase + i)),
		}}
		edges := types.Value{Kind: types.KindList, List: []types.Value{
			edgeRecord(reverseDstPrefix+vid+"a", edgeType, 0, int64(vidBase+i), int64(vidBase+i)),
			edgeRecord(reverseDstPrefix+vid+"b", edgeType, 0, int64(vidBase+i), int64(vidBase+i)),
		}}
		ds.Rows = append(ds.Rows, types.Row{types.String(vid), types.Int(0), tagMap, edges, types.Null(types.NullGeneric)})
	}
	return ds
}

// TestNeighborsIteratorMixedTagSplitsLogicalRows implements S3: two
// datasets (tag1/edge1 forward, tag2/edge2 reverse), 10 vids each with 2
// edges, yielding 40 logical rows in order.
func TestNeighborsIteratorMixedTagSplitsLogicalRows(t *testing.T) {
	ds1 := buildNeighborDataSet("_tag:tag1:prop1:prop2", "_edge:+edge1:prop1:prop2", 0, 10, 100, "n")
	ds2 := buildNeighborDataSet("_tag:tag2:prop1:prop2", "_edge:-edge2:prop1:prop2", 10, 10, 200, "n")

	it := NewNeighbors([]*types.DataSet{ds1, ds2})
	require.True(t, it.Valid())
	require.Equal(t, 40, it.Size())

	var vids []string
	for it.Valid() {
		v, ok := it.GetColumn(types.ColVid)
		require.True(t, ok)
		vids = append(vids, v.Str)
		it.Next()
	}
	require.Len(t, vids, 40)
	require.Equal(t, "0", vids[0])
	require.Equal(t, "0", vids[1])
	require.Equal(t, "9", vids[18])
	require.Equal(t, "10", vids[20])
	require.Equal(t, "19", vids[38])
	require.Equal(t, "19", vids[39])
}

func TestNeighborsIteratorGetTagPropNullAcrossSchemas(t *testing.T) {
	ds1 := buildNeighborDataSet("_tag:tag1:prop1:prop2", "_edge:+edge1:prop1:prop2", 0, 10, 100, "n")
	ds2 := buildNeighborDataSet("_tag:tag2:prop1:prop2", "_edge:-edge2:prop1:prop2", 10, 10, 200, "n")
	it := NewNeighbors([]*types.DataSet{ds1, ds2})

	// First logical row belongs to vid 0, tag1.
	require.Equal(t, types.Int(0), it.GetTagProp("tag1", "prop1"))
	require.True(t, it.GetTagProp("tag2", "prop1").IsNull())

	// Advance to the first row from the second dataset.
	for i := 0; i < 20; i++ {
		it.Next()
	}
	require.True(t, it.Valid())
	require.Equal(t, types.Int(10), it.GetTagProp("tag2", "prop1"))
	require.True(t, it.GetTagProp("tag1", "prop1").IsNull())
}

func TestNeighborsIteratorGetEdgeForwardAndReverse(t *testing.T) {
	ds1 := buildNeighborDataSet("_tag:tag1:prop1:prop2", "_edge:+edge1:prop1:prop2", 0, 1, 100, "n")
	ds2 := buildNeighborDataSet("_tag:tag2:prop1:prop2", "_edge:-edge2:prop1:prop2", 10, 1, 200, "n")
	it := NewNeighbors([]*types.DataSet{ds1, ds2})

	fwd := it.GetEdge()
	require.Equal(t, "0", fwd.Src)
	require.Equal(t, "n0a", fwd.Dst)
	require.Equal(t, int32(100), fwd.Type)

	it.Next()
	it.Next()
	rev := it.GetEdge()
	require.Equal(t, "n10a", rev.Src)
	require.Equal(t, "10", rev.Dst)
	require.Equal(t, int32(-200), rev.Type)
}

func TestNeighborsIteratorGetVerticesDedupedFirstSeenOrder(t *testing.T) {
	ds1 := buildNeighborDataSet("_tag:tag1:prop1:prop2", "_edge:+edge1:prop1:prop2", 0, 3, 100, "n")
	it := NewNeighbors([]*types.DataSet{ds1})

	vs := it.GetVertices()
	require.Len(t, vs, 3)
	require.Equal(t, []string{"0", "1", "2"}, []string{vs[0].VID, vs[1].VID, vs[2].VID})
}

func TestNeighborsIteratorGetEdgesCountsAllLogicalEdges(t *testing.T) {
	ds1 := buildNeighborDataSet("_tag:tag1:prop1:prop2", "_edge:+edge1:prop1:prop2", 0, 3, 100, "n")
	it := NewNeighbors([]*types.DataSet{ds1})
	require.Len(t, it.GetEdges(), 6)
}

func TestNeighborsIteratorRejectsMissingVidColumn(t *testing.T) {
	ds := &types.DataSet{ColNames: []string{"oops", types.ColStats, types.ColExpr}}
	it := NewNeighbors([]*types.DataSet{ds})
	require.False(t, it.Valid())
	require.Equal(t, 0, it.Size())
}

func TestNeighborsIteratorRejectsMissingExprColumn(t *testing.T) {
	ds := &types.DataSet{ColNames: []string{types.ColVid, types.ColStats, "oops"}}
	it := NewNeighbors([]*types.DataSet{ds})
	require.False(t, it.Valid())
}

func TestNeighborsIteratorRejectsUnsignedEdgeColumn(t *testing.T) {
	ds := &types.DataSet{ColNames: []string{types.ColVid, types.ColStats, "_edge:edge1:prop1", types.ColExpr}}
	it := NewNeighbors([]*types.DataSet{ds})
	require.False(t, it.Valid())
}

func TestNeighborsIteratorAcceptsEmptyPropListTagColumn(t *testing.T) {
	ds := &types.DataSet{
		ColNames: []string{types.ColVid, types.ColStats, "_tag:tag1", "_edge:+edge1:prop1", types.ColExpr},
		Rows: []types.Row{{
			types.String("0"), types.Int(0),
			types.Value{Kind: types.KindMap, Map: map[string]types.Value{}},
			types.Value{Kind: types.KindList, List: []types.Value{edgeRecord("d", 1, 0, 1, 1)}},
			types.Null(types.NullGeneric),
		}},
	}
	it := NewNeighbors([]*types.DataSet{ds})
	require.True(t, it.Valid())
}
