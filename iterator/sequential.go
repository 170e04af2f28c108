package iterator

import "github.com/polarsignals/graphdb-core/types"

// SequentialIterator wraps a DataSet with a forward cursor, supporting
// reset, erase, and unstable (swap-with-last) erase, per spec §4.3
// "Sequential iterator".
type SequentialIterator struct {
	ds       *types.DataSet
	colIndex map[string]int
	cursor   int
}

// NewSequential constructs a cursor over ds starting at row 0.
func NewSequential(ds *types.DataSet) *SequentialIterator {
	return &SequentialIterator{ds: ds, colIndex: buildColIndex(ds.ColNames), cursor: 0}
}

func (it *SequentialIterator) Kind() Kind { return KindSequential }

func (it *SequentialIterator) Valid() bool {
	return it.cursor >= 0 && it.cursor < len(it.ds.Rows)
}

func (it *SequentialIterator) Size() int { return len(it.ds.Rows) }

func (it *SequentialIterator) ColNames() []string { return it.ds.ColNames }

// Reset repositions the cursor to startIdx; Reset(0) rewinds to the first row.
func (it *SequentialIterator) Reset(startIdx int) { it.cursor = startIdx }

func (it *SequentialIterator) Next() { it.cursor++ }

func (it *SequentialIterator) GetColumn(name string) (types.Value, bool) {
	if !it.Valid() {
		return types.Value{}, false
	}
	i, ok := it.colIndex[name]
	if !ok {
		return types.Value{}, false
	}
	return it.ds.Rows[it.cursor][i], true
}

// Erase logically deletes the current row, then advances; the cursor then
// points at the row that formerly followed the erased one (spec §8
// "erasure preserves the rest").
func (it *SequentialIterator) Erase() {
	if !it.Valid() {
		return
	}
	it.ds.Rows = append(it.ds.Rows[:it.cursor], it.ds.Rows[it.cursor+1:]...)
	// cursor now indexes the row that slid into this slot: the former
	// successor. No increment needed.
}

// UnstableErase swaps the current row with the last and pops, an O(1)
// operation that reorders the dataset. The cursor ends up pointing at
// whatever was just swapped in (spec §4.3).
func (it *SequentialIterator) UnstableErase() {
	if !it.Valid() {
		return
	}
	last := len(it.ds.Rows) - 1
	it.ds.Rows[it.cursor] = it.ds.Rows[last]
	it.ds.Rows = it.ds.Rows[:last]
}

// EraseRange removes rows [lo, hi), clamped to the dataset's current
// length.
func (it *SequentialIterator) EraseRange(lo, hi int) {
	n := len(it.ds.Rows)
	if lo < 0 {
		lo = 0
	}
	if hi > n {
		hi = n
	}
	if lo >= hi {
		return
	}
	it.ds.Rows = append(it.ds.Rows[:lo], it.ds.Rows[hi:]...)
	if it.cursor >= hi {
		it.cursor -= hi - lo
	} else if it.cursor >= lo {
		it.cursor = lo
	}
}

// Copy returns a fresh cursor over the same underlying value.
func (it *SequentialIterator) Copy() *SequentialIterator {
	return &SequentialIterator{ds: it.ds, colIndex: it.colIndex, cursor: 0}
}
