package placement

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/cockroachdb/errors"
	"github.com/hupe1980/sparsim/internal/ledger"
)

// Decision is the outcome of one placement decision.
type Decision uint8

const (
	// Retained means no server scored positively; v stays put.
	Retained Decision = iota
	// Moved means v moved within the load bound.
	Moved
	// Swapped means v moved and a primary of the target moved back.
	Swapped
	// Reverted means the move broke the load bound and no swap paid off.
	Reverted
)

func (d Decision) String() string {
	switch d {
	case Retained:
		return "retained"
	case Moved:
		return "moved"
	case Swapped:
		return "swapped"
	case Reverted:
		return "reverted"
	default:
		return fmt.Sprintf("Decision(%d)", uint8(d))
	}
}

// Ingest assigns v to the least-loaded server and its virtual primaries
// to the next k least-loaded servers, then builds locality with every
// assigned neighbor.
func (c *Cluster) Ingest(v uint32) error {
	servers := c.ledger.LeastLoaded(c.cfg.VirtualPrimaries + 1)
	return c.place(v, int32(servers[0]), servers[1:])
}

// IngestAt assigns v's primary to server s and its virtual primaries to
// the k least-loaded other servers.
func (c *Cluster) IngestAt(v uint32, s int) error {
	if s < 0 || s >= c.NumServers() {
		return errors.AssertionFailedf("vertex %d: server %d out of range", v, s)
	}
	candidates := c.ledger.LeastLoaded(c.cfg.VirtualPrimaries + 1)
	vps := make([]int, 0, c.cfg.VirtualPrimaries)
	for _, id := range candidates {
		if id != s && len(vps) < c.cfg.VirtualPrimaries {
			vps = append(vps, id)
		}
	}
	return c.place(v, int32(s), vps)
}

// IngestWith assigns v's primary to server s and its virtual primaries to
// the given servers.
func (c *Cluster) IngestWith(v uint32, s int, virtualPrimaries []int) error {
	return c.place(v, int32(s), virtualPrimaries)
}

func (c *Cluster) place(v uint32, s int32, virtualPrimaries []int) error {
	if c.primary[v] != unassigned {
		return errors.AssertionFailedf("vertex %d already assigned to server %d", v, c.primary[v])
	}
	if err := c.addReplica(s, v, ledger.Primary); err != nil {
		return err
	}
	c.setPrimary(v, s)
	for _, vp := range virtualPrimaries {
		if err := c.addReplica(int32(vp), v, ledger.VirtualPrimary); err != nil {
			return err
		}
	}
	for _, u := range c.g.Neighbors(v) {
		if _, _, err := c.EnsureLocality(v, u); err != nil {
			return err
		}
	}
	return nil
}

// Place scores v and reallocates it if some server scores positively.
func (c *Cluster) Place(v uint32) (Decision, error) {
	scb, b, err := c.FindMaxSCB(v, NoTarget)
	if err != nil {
		return Retained, err
	}
	if scb.Value <= 0 || b == int(c.primary[v]) {
		return Retained, nil
	}
	return c.Reallocate(v, scb, b)
}

// Reallocate moves v to server b. If the move breaks the load bound it
// looks for a primary of b whose move to v's server makes the pair
// profitable, and reverts when there is none.
func (c *Cluster) Reallocate(v uint32, scb SCB, b int) (Decision, error) {
	a := c.primary[v]
	if a == int32(b) {
		return Retained, errors.AssertionFailedf("vertex %d: reallocation onto its own server %d", v, b)
	}

	loadA, loadB := c.server(a).Load(), c.server(int32(b)).Load()
	if role, ok := c.server(int32(b)).Replica(v); !ok || role == ledger.NonPrimary {
		loadA--
		loadB++
	}
	if abs(loadA-loadB) <= c.cfg.LoadConstraint {
		if err := c.MoveNode(v, b); err != nil {
			return Moved, err
		}
		c.logDecision(v, a, int32(b), Moved, scb.Value)
		return Moved, nil
	}

	sp := c.Begin()
	if err := c.MoveNode(v, b); err != nil {
		c.Commit(sp)
		return Reverted, err
	}

	best, partner := math.MinInt, uint32(0)
	found := false
	for _, w := range c.server(int32(b)).PrimaryIDs() {
		if w == v {
			continue
		}
		s, _, err := c.FindMaxSCB(w, int(a))
		if err != nil {
			c.Commit(sp)
			return Reverted, err
		}
		if s.Value > best {
			best, partner, found = s.Value, w, true
		}
	}

	if found && scb.Value+best > 0 {
		inner := c.Begin()
		if err := c.MoveNode(partner, int(a)); err != nil {
			c.Commit(inner)
			c.Commit(sp)
			return Reverted, err
		}
		if c.balanced(a, int32(b)) {
			c.Commit(inner)
			c.Commit(sp)
			c.logDecision(v, a, int32(b), Swapped, scb.Value+best)
			return Swapped, nil
		}
		if err := c.Rollback(inner); err != nil {
			c.Commit(sp)
			return Reverted, err
		}
	}

	if err := c.Rollback(sp); err != nil {
		return Reverted, err
	}
	c.logDecision(v, a, int32(b), Reverted, scb.Value)
	return Reverted, nil
}

// MoveNode makes b the primary server of v. A VIRTUAL_PRIMARY copy on b
// trades roles with the old primary; otherwise the old primary copy is
// dropped and any cache of v on b is promoted.
func (c *Cluster) MoveNode(v uint32, b int) error {
	a := c.primary[v]
	dst := int32(b)
	switch {
	case a == unassigned:
		return errors.AssertionFailedf("move of unassigned vertex %d", v)
	case a == dst:
		return errors.AssertionFailedf("vertex %d: move onto its own server %d", v, b)
	case !c.server(a).HasRole(v, ledger.Primary):
		return errors.AssertionFailedf("vertex %d: server %d lost its primary copy", v, a)
	}

	neighbors := c.g.Neighbors(v)
	for _, u := range neighbors {
		if _, err := c.ShrinkLocality(v, u); err != nil {
			return err
		}
	}

	if c.server(dst).HasRole(v, ledger.VirtualPrimary) {
		if _, err := c.removeReplica(a, v); err != nil {
			return err
		}
		if _, err := c.removeReplica(dst, v); err != nil {
			return err
		}
		if err := c.addReplica(a, v, ledger.VirtualPrimary); err != nil {
			return err
		}
	} else {
		if _, err := c.removeReplica(a, v); err != nil {
			return err
		}
		if role, ok := c.server(dst).Replica(v); ok {
			if role != ledger.NonPrimary {
				return errors.AssertionFailedf("vertex %d: unexpected %s copy on server %d", v, role, b)
			}
			if _, err := c.removeReplica(dst, v); err != nil {
				return err
			}
		}
	}
	if err := c.addReplica(dst, v, ledger.Primary); err != nil {
		return err
	}
	c.setPrimary(v, dst)

	for _, u := range neighbors {
		if _, _, err := c.EnsureLocality(v, u); err != nil {
			return err
		}
	}
	return nil
}

func (c *Cluster) logDecision(v uint32, from, to int32, d Decision, value int) {
	c.logger.Debug("placement decision",
		slog.Uint64("vertex", uint64(v)),
		slog.Int("from", int(from)),
		slog.Int("to", int(to)),
		slog.String("decision", d.String()),
		slog.Int("scb", value),
	)
}
