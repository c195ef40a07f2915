package placement

import (
	"context"
	"log/slog"

	"github.com/hupe1980/sparsim/internal/ledger"
)

// ExchangeVirtualPrimaries trades virtual-primary roles between every
// pair of servers. A vertex is a candidate from A to B when A holds it as
// VIRTUAL_PRIMARY, B holds it as NON_PRIMARY and no neighbor of it is
// primary on A, so A's copy can go. Candidates A to B are paired
// one-for-one, in ascending vertex order, with candidates B to A: B's
// cache becomes the virtual primary and A's copy is dropped. Loads and
// primaries are unchanged. It returns the number of pairs exchanged.
func (c *Cluster) ExchangeVirtualPrimaries(ctx context.Context) (int, error) {
	n := int32(c.NumServers())

	// A virtual primary that no neighbor needs stays free for the whole
	// sweep since primaries never move here.
	free := make([][]uint32, n)
	for s := range n {
		for v := range c.server(s).VirtualPrimaries() {
			if !c.hasNeighborOn(v, v, s) {
				free[s] = append(free[s], v)
			}
		}
	}

	exchanged := 0
	for a := range n {
		if err := ctx.Err(); err != nil {
			return exchanged, err
		}
		for b := a + 1; b < n; b++ {
			ab := c.exchangeCandidates(free[a], a, b)
			if len(ab) == 0 {
				continue
			}
			ba := c.exchangeCandidates(free[b], b, a)
			for i := range min(len(ab), len(ba)) {
				if err := c.shiftVirtualPrimary(ab[i], a, b); err != nil {
					return exchanged, err
				}
				if err := c.shiftVirtualPrimary(ba[i], b, a); err != nil {
					return exchanged, err
				}
				exchanged++
			}
		}
	}
	c.logger.Debug("virtual primaries exchanged", slog.Int("pairs", exchanged))
	return exchanged, nil
}

func (c *Cluster) exchangeCandidates(free []uint32, from, to int32) []uint32 {
	var out []uint32
	for _, v := range free {
		if c.server(to).HasRole(v, ledger.NonPrimary) && c.server(from).HasRole(v, ledger.VirtualPrimary) {
			out = append(out, v)
		}
	}
	return out
}

func (c *Cluster) shiftVirtualPrimary(v uint32, from, to int32) error {
	if _, err := c.removeReplica(from, v); err != nil {
		return err
	}
	if _, err := c.removeReplica(to, v); err != nil {
		return err
	}
	return c.addReplica(to, v, ledger.VirtualPrimary)
}
