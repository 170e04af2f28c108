package iterator

import "github.com/polarsignals/graphdb-core/types"

// DefaultIterator wraps a single Value: size == 1, and next invalidates it
// (spec §4.3 "Default iterator").
type DefaultIterator struct {
	value types.Value
	valid bool
}

// NewDefault constructs a one-shot iterator over v.
func NewDefault(v types.Value) *DefaultIterator {
	return &DefaultIterator{value: v, valid: true}
}

func (it *DefaultIterator) Kind() Kind { return KindDefault }
func (it *DefaultIterator) Valid() bool { return it.valid }
func (it *DefaultIterator) Size() int {
	if it.valid {
		return 1
	}
	return 0
}

func (it *DefaultIterator) Next() { it.valid = false }

func (it *DefaultIterator) ColNames() []string { return nil }

func (it *DefaultIterator) GetColumn(string) (types.Value, bool) { return types.Value{}, false }

// Value returns the wrapped value while the iterator is still valid.
func (it *DefaultIterator) Value() (types.Value, bool) {
	if !it.valid {
		return types.Value{}, false
	}
	return it.value, true
}
