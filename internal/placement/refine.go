package placement

import (
	"context"
	"log/slog"
	"slices"
)

// RefineStats summarizes an IterativeRefine run.
type RefineStats struct {
	Rounds     int
	Moved      int
	Swapped    int
	Reverted   int
	RolledBack bool
}

func (s *RefineStats) count(d Decision) {
	switch d {
	case Moved:
		s.Moved++
	case Swapped:
		s.Swapped++
	case Reverted:
		s.Reverted++
	case Retained:
	}
}

type candidate struct {
	vertex uint32
	value  int
}

// IterativeRefine repeatedly ranks every assigned vertex by its best SCB
// and runs Place on the positive ones, highest first. A round that raises
// the inter-server cost is rolled back and ends the pass. The pass also
// stops after Config.RefineRounds rounds or once a round's relative gain
// drops below Config.RefineMinGain.
func (c *Cluster) IterativeRefine(ctx context.Context) (RefineStats, error) {
	var stats RefineStats
	var candidates []candidate

	for round := 0; round < c.cfg.RefineRounds; round++ {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		before := c.InterServerCost()

		candidates = candidates[:0]
		for v, ok := c.assigned.NextSet(0); ok; v, ok = c.assigned.NextSet(v + 1) {
			scb, _, err := c.FindMaxSCB(uint32(v), NoTarget)
			if err != nil {
				return stats, err
			}
			if scb.Value > 0 {
				candidates = append(candidates, candidate{vertex: uint32(v), value: scb.Value})
			}
		}
		if len(candidates) == 0 {
			break
		}
		slices.SortStableFunc(candidates, func(x, y candidate) int { return y.value - x.value })

		var roundStats RefineStats
		sp := c.Begin()
		for _, cand := range candidates {
			d, err := c.Place(cand.vertex)
			if err != nil {
				c.Commit(sp)
				return stats, err
			}
			roundStats.count(d)
		}

		after := c.InterServerCost()
		stats.Rounds++
		if after > before {
			if err := c.Rollback(sp); err != nil {
				return stats, err
			}
			stats.RolledBack = true
			c.logger.Debug("refine round rolled back", slog.Int("round", round), slog.Int("cost", after))
			break
		}
		c.Commit(sp)
		stats.Moved += roundStats.Moved
		stats.Swapped += roundStats.Swapped
		stats.Reverted += roundStats.Reverted

		gain := before - after
		c.logger.Debug("refine round",
			slog.Int("round", round),
			slog.Int("candidates", len(candidates)),
			slog.Int("cost", after),
			slog.Int("gain", gain),
		)
		if gain == 0 || float64(gain) < c.cfg.RefineMinGain*float64(before) {
			break
		}
	}
	return stats, nil
}
