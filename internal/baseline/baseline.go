package baseline

import (
	"context"
	"math/rand"

	"github.com/cockroachdb/errors"
	"github.com/hupe1980/sparsim/internal/placement"
)

// Random assigns every vertex, in enumeration order, a uniformly random
// primary server and k distinct random virtual-primary servers.
func Random(ctx context.Context, c *placement.Cluster, rng *rand.Rand) error {
	g := c.Graph()
	k := c.Config().VirtualPrimaries
	servers := c.NumServers()
	for v := range g.Vertices() {
		if err := ctx.Err(); err != nil {
			return err
		}
		perm := rng.Perm(servers)
		if err := c.IngestWith(v, perm[0], perm[1:k+1]); err != nil {
			return errors.Wrapf(err, "random placement of vertex %d", v)
		}
	}
	return nil
}

// EdgeDriven replays the edges in enumeration order. Unassigned endpoints
// are ingested on the least-loaded servers. For a cut edge (u, v) it
// compares doing nothing with moving u onto v's server and v onto u's
// server, and keeps the cheapest option that respects the load
// constraint. Ties keep the current placement. Isolated vertices are
// ingested last.
func EdgeDriven(ctx context.Context, c *placement.Cluster) error {
	g := c.Graph()
	for u, v := range g.Edges() {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, x := range []uint32{u, v} {
			if !c.Assigned(x) {
				if err := c.Ingest(x); err != nil {
					return err
				}
			}
		}
		su, sv := c.Primary(u), c.Primary(v)
		if su == sv {
			continue
		}

		best, bestCost := -1, c.InterServerCost()
		options := []struct {
			vertex uint32
			to     int
		}{{u, sv}, {v, su}}
		for i, opt := range options {
			cost, ok, err := trialMove(c, opt.vertex, opt.to)
			if err != nil {
				return err
			}
			if ok && cost < bestCost {
				best, bestCost = i, cost
			}
		}
		if best >= 0 {
			if err := c.MoveNode(options[best].vertex, options[best].to); err != nil {
				return err
			}
		}
	}

	for v := range g.Vertices() {
		if !c.Assigned(v) {
			if err := c.Ingest(v); err != nil {
				return err
			}
		}
	}
	return nil
}

// trialMove returns the cost after moving v to server to and whether the
// two servers stay within the load constraint. The cluster is unchanged on
// return.
func trialMove(c *placement.Cluster, v uint32, to int) (int, bool, error) {
	from := c.Primary(v)
	sp := c.Begin()
	if err := c.MoveNode(v, to); err != nil {
		c.Commit(sp)
		return 0, false, err
	}
	cost := c.InterServerCost()
	ok := c.CheckLoadBound(from, to)
	return cost, ok, c.Rollback(sp)
}

// Oracle assigns every vertex's primary from a static partition of the
// graph into one part per server. Virtual primaries go to the least-loaded
// other servers.
func Oracle(ctx context.Context, c *placement.Cluster, p Partitioner) error {
	parts, err := p.Partition(ctx, c.Graph(), c.NumServers())
	if err != nil {
		return errors.Wrap(err, "partition")
	}
	if len(parts) != c.Graph().NumVertices() {
		return errors.Newf("partitioner returned %d parts for %d vertices", len(parts), c.Graph().NumVertices())
	}
	for v := range c.Graph().Vertices() {
		if err := c.IngestAt(v, parts[v]%c.NumServers()); err != nil {
			return err
		}
	}
	return nil
}
