package placement

import (
	"github.com/cockroachdb/errors"
	"github.com/hupe1980/sparsim/internal/ledger"
)

// EnsureLocality makes the edge (u, v) locally servable from both
// endpoints' primary servers. It returns the number of NON_PRIMARY copies
// added on u's server and on v's server. Unassigned endpoints are a no-op.
func (c *Cluster) EnsureLocality(u, v uint32) (onU, onV int, err error) {
	su, sv := c.primary[u], c.primary[v]
	if su == unassigned || sv == unassigned {
		return 0, 0, nil
	}
	if !c.server(su).HasReplica(v) {
		if err := c.addReplica(su, v, ledger.NonPrimary); err != nil {
			return 0, 0, err
		}
		onU = 1
	}
	if !c.server(sv).HasReplica(u) {
		if err := c.addReplica(sv, u, ledger.NonPrimary); err != nil {
			return onU, 0, err
		}
		onV = 1
	}
	return onU, onV, nil
}

// ShrinkLocality drops the NON_PRIMARY copy of v on u's server unless a
// neighbor of v other than u is PRIMARY there. It returns the number of
// copies removed. Copies with a load-counting role are left alone.
func (c *Cluster) ShrinkLocality(u, v uint32) (int, error) {
	su, sv := c.primary[u], c.primary[v]
	if su == unassigned || sv == unassigned {
		return 0, nil
	}
	s := c.server(su)
	role, ok := s.Replica(v)
	if !ok {
		return 0, errors.AssertionFailedf("locality broken: server %d holds no copy of %d, neighbor of %d", su, v, u)
	}
	if role != ledger.NonPrimary {
		return 0, nil
	}
	if c.hasNeighborOn(v, u, su) {
		return 0, nil
	}
	if _, err := c.removeReplica(su, v); err != nil {
		return 0, err
	}
	return 1, nil
}

// hasNeighborOn reports whether a neighbor of v other than exclude has its
// primary on server s.
func (c *Cluster) hasNeighborOn(v, exclude uint32, s int32) bool {
	for _, w := range c.g.Neighbors(v) {
		if w != exclude && c.primary[w] == s {
			return true
		}
	}
	return false
}
