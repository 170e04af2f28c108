package iterator

import "github.com/polarsignals/graphdb-core/types"

// JoinIterator composes two child iterators row-for-row (a positional zip,
// not a cross product): row i of the join is (left row i, right row i).
// Column lookup merges both children's column sets; a name present in both
// resolves to the right child, per spec §4.3's "later wins" rule. Because
// the children are plain Iterator values, a JoinIterator can itself be one
// side of another join.
type JoinIterator struct {
	left, right   Iterator
	names         []string
	resolveRight  map[string]bool // name -> true if owned by right (later-wins)
}

func NewJoin(left, right Iterator) *JoinIterator {
	names := append(append([]string{}, left.ColNames()...), right.ColNames()...)
	resolveRight := make(map[string]bool, len(names))
	for _, n := range left.ColNames() {
		resolveRight[n] = false
	}
	for _, n := range right.ColNames() {
		resolveRight[n] = true // later wins
	}
	return &JoinIterator{left: left, right: right, names: names, resolveRight: resolveRight}
}

func (it *JoinIterator) Kind() Kind { return KindJoin }

func (it *JoinIterator) Valid() bool { return it.left.Valid() && it.right.Valid() }

func (it *JoinIterator) Size() int {
	l, r := it.left.Size(), it.right.Size()
	if l < r {
		return l
	}
	return r
}

func (it *JoinIterator) ColNames() []string { return it.names }

func (it *JoinIterator) Next() {
	it.left.Next()
	it.right.Next()
}

func (it *JoinIterator) GetColumn(name string) (types.Value, bool) {
	fromRight, known := it.resolveRight[name]
	if !known {
		return types.Value{}, false
	}
	if fromRight {
		return it.right.GetColumn(name)
	}
	return it.left.GetColumn(name)
}
