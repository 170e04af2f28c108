package iterator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/polarsignals/graphdb-core/types"
)

func numberedDataSet(n int) *types.DataSet {
	ds := &types.DataSet{ColNames: []string{"n"}}
	for i := 0; i < n; i++ {
		ds.Rows = append(ds.Rows, types.Row{types.Int(int64(i))})
	}
	return ds
}

func collectInts(ds *types.DataSet) []int64 {
	var out []int64
	for _, r := range ds.Rows {
		out = append(out, r[0].Int)
	}
	return out
}

func TestSequentialIteratorBasicWalk(t *testing.T) {
	ds := numberedDataSet(3)
	it := NewSequential(ds)
	require.Equal(t, 3, it.Size())

	var seen []int64
	for it.Valid() {
		v, ok := it.GetColumn("n")
		require.True(t, ok)
		seen = append(seen, v.Int)
		it.Next()
	}
	require.Equal(t, []int64{0, 1, 2}, seen)
}

func TestSequentialIteratorMissingColumn(t *testing.T) {
	it := NewSequential(numberedDataSet(1))
	_, ok := it.GetColumn("nope")
	require.False(t, ok)
}

// TestSequentialIteratorEraseLoopKeepsOddRows implements S5: walking
// while { if odd then next else erase } over 10 rows keeps exactly the
// odd-indexed values, in their original order.
func TestSequentialIteratorEraseLoopKeepsOddRows(t *testing.T) {
	ds := numberedDataSet(10)
	it := NewSequential(ds)

	for it.Valid() {
		v, _ := it.GetColumn("n")
		if v.Int%2 != 0 {
			it.Next()
		} else {
			it.Erase()
		}
	}

	require.Equal(t, []int64{1, 3, 5, 7, 9}, collectInts(ds))
}

func TestSequentialIteratorEraseSizeInvariant(t *testing.T) {
	ds := numberedDataSet(5)
	it := NewSequential(ds)
	before := it.Size()
	it.Erase()
	require.Equal(t, before-1, it.Size())
}

func TestSequentialIteratorUnstableEraseSizeInvariant(t *testing.T) {
	ds := numberedDataSet(5)
	it := NewSequential(ds)
	before := it.Size()
	it.UnstableErase()
	require.Equal(t, before-1, it.Size())
}

func TestSequentialIteratorUnstableEraseSwapsLastIn(t *testing.T) {
	ds := numberedDataSet(4) // 0,1,2,3
	it := NewSequential(ds)
	it.Next() // cursor -> row 1 (value 1)
	it.UnstableErase()
	// row 1 was replaced by the former last row (value 3); row 0 and the
	// new row 2 (old row 2) are untouched.
	require.Equal(t, []int64{0, 3, 2}, collectInts(ds))
}

func TestSequentialIteratorEraseRangeClampsAndAdjustsCursor(t *testing.T) {
	ds := numberedDataSet(10)
	it := NewSequential(ds)
	it.Reset(5)
	it.EraseRange(2, 8)
	require.Equal(t, []int64{0, 1, 8, 9}, collectInts(ds))
	// cursor was inside the erased range, clamped to its start.
	require.Equal(t, 2, it.cursor)
}

func TestSequentialIteratorCopyHasIndependentCursor(t *testing.T) {
	ds := numberedDataSet(3)
	it := NewSequential(ds)
	it.Next()
	cp := it.Copy()
	require.Equal(t, 0, cp.cursor)
	require.Equal(t, 1, it.cursor)
}
