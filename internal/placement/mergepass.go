package placement

import (
	"cmp"
	"context"
	"log/slog"
	"math"
	"slices"

	"github.com/hupe1980/sparsim/internal/ledger"
	"github.com/hupe1980/sparsim/internal/merge"
)

// MergeStats summarizes a MergeRebalance run.
type MergeStats struct {
	Groups    int
	Attempts  int
	Committed int
}

type vertexGroup struct {
	server   int32
	vertices []uint32
}

// MergeRebalance clusters the primaries of every server with a randomized
// greedy merge and then swaps groups of similar size between servers. Each
// swap is followed by bounded singleton moves that restore the load bound,
// and is kept only if the inter-server cost strictly drops with the two
// servers balanced.
func (c *Cluster) MergeRebalance(ctx context.Context) (MergeStats, error) {
	var stats MergeStats
	singleton := make([]bool, c.g.NumVertices())
	var groups []vertexGroup

	for srv := range c.ledger.Servers() {
		s := int32(srv.ID())
		mg := c.serverMergeGraph(srv)
		mg.Merge(c.rng)
		singles, grps := mg.Finalize()
		for _, v := range singles {
			singleton[v] = true
		}
		for _, grp := range grps {
			groups = append(groups, vertexGroup{server: s, vertices: grp})
		}
	}
	stats.Groups = len(groups)

	slices.SortFunc(groups, func(x, y vertexGroup) int {
		if n := cmp.Compare(len(y.vertices), len(x.vertices)); n != 0 {
			return n
		}
		return cmp.Compare(x.vertices[0], y.vertices[0])
	})

	used := make([]bool, len(groups))
	for i := range groups {
		if used[i] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		attempts := 0
		for j := i + 1; j < len(groups); j++ {
			gi, gj := groups[i], groups[j]
			if used[j] || gi.server == gj.server {
				continue
			}
			if abs(len(gi.vertices)-len(gj.vertices)) > c.cfg.LoadConstraint {
				continue
			}
			if c.cfg.MergePartnerLimit > 0 && attempts >= c.cfg.MergePartnerLimit {
				break
			}
			attempts++
			stats.Attempts++

			ok, err := c.trySwapGroups(gi, gj, singleton)
			if err != nil {
				return stats, err
			}
			if ok {
				used[i], used[j] = true, true
				stats.Committed++
				break
			}
		}
	}
	return stats, nil
}

// serverMergeGraph builds the merged graph over the primaries of srv.
// An intra-server edge weighs one plus the number of common neighbors
// whose primary lives on another server.
func (c *Cluster) serverMergeGraph(srv *ledger.Server) *merge.Graph {
	s := int32(srv.ID())
	mg := merge.New(srv.PrimaryIDs())
	for a := range srv.Primaries() {
		for _, b := range c.g.Neighbors(a) {
			if b <= a || c.primary[b] != s {
				continue
			}
			mg.AddEdge(a, b, 1+c.sharedOffServer(a, b, s))
		}
	}
	return mg
}

func (c *Cluster) sharedOffServer(a, b uint32, s int32) int {
	na, nb := c.g.Neighbors(a), c.g.Neighbors(b)
	n := 0
	for i, j := 0, 0; i < len(na) && j < len(nb); {
		switch {
		case na[i] < nb[j]:
			i++
		case na[i] > nb[j]:
			j++
		default:
			if p := c.primary[na[i]]; p != unassigned && p != s {
				n++
			}
			i++
			j++
		}
	}
	return n
}

func (c *Cluster) trySwapGroups(x, y vertexGroup, singleton []bool) (bool, error) {
	for _, grp := range []vertexGroup{x, y} {
		for _, v := range grp.vertices {
			if c.primary[v] != grp.server {
				return false, nil
			}
		}
	}

	before := c.InterServerCost()
	sp := c.Begin()
	moved := make(map[uint32]bool, len(x.vertices)+len(y.vertices))

	for _, v := range x.vertices {
		if err := c.MoveNode(v, int(y.server)); err != nil {
			c.Commit(sp)
			return false, err
		}
		moved[v] = true
	}
	for _, v := range y.vertices {
		if err := c.MoveNode(v, int(x.server)); err != nil {
			c.Commit(sp)
			return false, err
		}
		moved[v] = true
	}
	if err := c.rebalancePair(x.server, y.server, singleton, moved); err != nil {
		c.Commit(sp)
		return false, err
	}

	after := c.InterServerCost()
	if after < before && c.balanced(x.server, y.server) {
		c.Commit(sp)
		c.logger.Debug("group swap committed",
			slog.Int("server_a", int(x.server)),
			slog.Int("server_b", int(y.server)),
			slog.Int("size_a", len(x.vertices)),
			slog.Int("size_b", len(y.vertices)),
			slog.Int("gain", before-after),
		)
		return true, nil
	}
	return false, c.Rollback(sp)
}

// rebalancePair moves singleton primaries between a and b. While the pair
// is unbalanced it moves the best singleton off the heavier server; once
// balanced it only takes positive moves that keep the balance. No vertex
// moves twice within one attempt.
func (c *Cluster) rebalancePair(a, b int32, singleton []bool, moved map[uint32]bool) error {
	for range c.cfg.MergeRebalanceSteps {
		if !c.balanced(a, b) {
			heavy, light := a, b
			if c.server(b).Load() > c.server(a).Load() {
				heavy, light = b, a
			}
			v, _, ok, err := c.bestSingleton(heavy, light, singleton, moved, false)
			if err != nil || !ok {
				return err
			}
			if err := c.MoveNode(v, int(light)); err != nil {
				return err
			}
			moved[v] = true
			continue
		}

		v1, s1, ok1, err := c.bestSingleton(a, b, singleton, moved, true)
		if err != nil {
			return err
		}
		v2, s2, ok2, err := c.bestSingleton(b, a, singleton, moved, true)
		if err != nil {
			return err
		}
		var v uint32
		var dst int32
		switch {
		case ok1 && (!ok2 || s1 >= s2):
			v, dst = v1, b
		case ok2:
			v, dst = v2, a
		default:
			return nil
		}
		if err := c.MoveNode(v, int(dst)); err != nil {
			return err
		}
		moved[v] = true
	}
	return nil
}

// bestSingleton returns the unmoved singleton primary of from with the
// highest SCB towards to. With keepBalance it only considers positive
// moves whose projected loads stay within the bound.
func (c *Cluster) bestSingleton(from, to int32, singleton []bool, moved map[uint32]bool, keepBalance bool) (uint32, int, bool, error) {
	best, bestValue, found := uint32(0), math.MinInt, false
	for v := range c.server(from).Primaries() {
		if !singleton[v] || moved[v] {
			continue
		}
		scb, _, err := c.FindMaxSCB(v, int(to))
		if err != nil {
			return 0, 0, false, err
		}
		if keepBalance {
			if scb.Value <= 0 || !c.balancedAfterMove(v, from, to) {
				continue
			}
		}
		if scb.Value > bestValue {
			best, bestValue, found = v, scb.Value, true
		}
	}
	return best, bestValue, found, nil
}

func (c *Cluster) balancedAfterMove(v uint32, from, to int32) bool {
	loadFrom, loadTo := c.server(from).Load(), c.server(to).Load()
	if !c.server(to).HasRole(v, ledger.VirtualPrimary) {
		loadFrom--
		loadTo++
	}
	return abs(loadFrom-loadTo) <= c.cfg.LoadConstraint
}
