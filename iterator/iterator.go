// Package iterator implements the query executor's dataflow abstraction
// described in spec §4.3: Default/Sequential/Neighbors/Property/Join
// iterator kinds presenting intermediate results as uniform lazy row
// sequences, with navigation, erasure, typed accessors, and structural
// validation of neighbor responses.
//
// Per Design Notes §9, the source's virtual-dispatch class hierarchy is
// replaced with a tagged variant: one Go interface (Iterator) implemented by
// five concrete struct types, dispatched on Kind() rather than on a shared
// vtable. An invalid iterator is constructed, not thrown from a failing
// constructor: Valid() reports false and the iterator yields zero rows,
// exactly the "invalid-state construction" pattern Design Notes §9 mandates.
// Grounded on frostdb's query/physicalplan operator-chaining shape
// (next/valid-style dataflow) and on parts/granule.go's "a list of datasets
// behind one cursor" precedent, generalized from Arrow record batches to
// row-slice DataSets per spec §3.
package iterator

import "github.com/polarsignals/graphdb-core/types"

// Kind tags which concrete iterator variant a value holds.
type Kind uint8

const (
	KindDefault Kind = iota
	KindSequential
	KindNeighbors
	KindProperty
	KindJoin
)

func (k Kind) String() string {
	switch k {
	case KindDefault:
		return "default"
	case KindSequential:
		return "sequential"
	case KindNeighbors:
		return "neighbors"
	case KindProperty:
		return "property"
	case KindJoin:
		return "join"
	default:
		return "unknown"
	}
}

// Iterator is the common surface every variant implements. Column lookup is
// case-sensitive and exact-match. The sequential, property and join variants
// resolve names through maps built at construction, so their lookups are
// constant-time; the neighbors variant scans the current dataset's column
// names on each lookup, and the default variant has no columns.
type Iterator interface {
	Kind() Kind
	Valid() bool
	Next()
	Size() int
	ColNames() []string
	GetColumn(name string) (types.Value, bool)
}

// buildColIndex returns a name->index map for constant-time GetColumn
// lookups, shared by every variant that fronts a flat column list.
func buildColIndex(names []string) map[string]int {
	idx := make(map[string]int, len(names))
	for i, n := range names {
		idx[n] = i // later duplicate wins, matching the join iterator's rule
	}
	return idx
}
