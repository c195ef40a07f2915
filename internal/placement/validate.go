package placement

import (
	"fmt"

	"github.com/hupe1980/sparsim/internal/ledger"
)

// ValidationError reports the first vertex/server pair found in breach of
// the placement invariants.
type ValidationError struct {
	Vertex uint32
	Server int
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("placement: vertex %d on server %d: %s", e.Vertex, e.Server, e.Reason)
}

// Validate scans the whole cluster for primary uniqueness, edge locality,
// minimal non-primary copies and consistent virtual-primary counts.
func (c *Cluster) Validate() error {
	virtuals := make([]int32, len(c.primary))
	for srv := range c.ledger.Servers() {
		id := int32(srv.ID())
		for v := range srv.Primaries() {
			if c.primary[v] != id {
				return &ValidationError{Vertex: v, Server: int(id), Reason: fmt.Sprintf("stray PRIMARY copy, primary server is %d", c.primary[v])}
			}
		}
		for v := range srv.VirtualPrimaries() {
			if c.primary[v] == unassigned {
				return &ValidationError{Vertex: v, Server: int(id), Reason: "VIRTUAL_PRIMARY copy of unassigned vertex"}
			}
			virtuals[v]++
		}
		for w := range srv.NonPrimaries() {
			if !c.hasNeighborOn(w, w, id) {
				return &ValidationError{Vertex: w, Server: int(id), Reason: "NON_PRIMARY copy without a neighbor primary"}
			}
		}
	}

	for i, s := range c.primary {
		v := uint32(i)
		if s == unassigned {
			if c.assigned.Test(uint(v)) {
				return &ValidationError{Vertex: v, Server: unassigned, Reason: "assigned vertex without primary server"}
			}
			continue
		}
		if !c.server(s).HasRole(v, ledger.Primary) {
			return &ValidationError{Vertex: v, Server: int(s), Reason: "missing PRIMARY copy"}
		}
		if virtuals[v] != c.virtuals[v] {
			return &ValidationError{Vertex: v, Server: int(s), Reason: fmt.Sprintf("virtual primary count %d, found %d", c.virtuals[v], virtuals[v])}
		}
		for _, u := range c.g.Neighbors(v) {
			if c.primary[u] != unassigned && !c.server(s).HasReplica(u) {
				return &ValidationError{Vertex: u, Server: int(s), Reason: fmt.Sprintf("no copy for edge to %d", v)}
			}
		}
	}
	return nil
}

// CheckLoadBound reports whether servers a and b are within the load
// constraint.
func (c *Cluster) CheckLoadBound(a, b int) bool {
	return c.balanced(int32(a), int32(b))
}
