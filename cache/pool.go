package cache

import (
	"github.com/cespare/xxhash/v2"

	"github.com/polarsignals/graphdb-core/errs"
)

// PoolSet tracks the named pools carved out of one cache instance's total
// byte budget. Spec §4.2: "Pool-creation at startup; attempts to create a
// duplicate pool name are rejected."
type PoolSet struct {
	names map[string]struct{}
}

func newPoolSet() *PoolSet {
	return &PoolSet{names: make(map[string]struct{})}
}

// register reserves name, or returns an Invalid error if it is already
// taken.
func (p *PoolSet) register(name string) error {
	if _, exists := p.names[name]; exists {
		return errs.Invalidf("cache pool %q already exists", name)
	}
	p.names[name] = struct{}{}
	return nil
}

func hashString(s string) uint32 {
	return uint32(xxhash.Sum64String(s))
}
