package baseline

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/hupe1980/sparsim/graph"
)

// Partitioner splits a graph into parts. It returns one part id in
// [0, parts) per vertex.
type Partitioner interface {
	Partition(ctx context.Context, g *graph.Graph, parts int) ([]int, error)
}

// PartitionerFunc adapts a function to the Partitioner interface.
type PartitionerFunc func(ctx context.Context, g *graph.Graph, parts int) ([]int, error)

// Partition calls f.
func (f PartitionerFunc) Partition(ctx context.Context, g *graph.Graph, parts int) ([]int, error) {
	return f(ctx, g, parts)
}

// LabelPropagation is a balanced label-propagation partitioner. Vertices
// start round-robin and repeatedly move to the part most of their
// neighbors live in, discounted by that part's fill level. A part never
// grows beyond its capacity and never empties.
type LabelPropagation struct {
	// Rounds caps the sweeps over all vertices. Default 20.
	Rounds int
	// Imbalance is the allowed overshoot of a part over n/parts. Default 0.03.
	Imbalance float64
	// Penalty weighs a part's fill level against its neighbor share.
	// Default 0.5.
	Penalty float64
}

var _ Partitioner = LabelPropagation{}

// Partition implements Partitioner.
func (lp LabelPropagation) Partition(ctx context.Context, g *graph.Graph, parts int) ([]int, error) {
	if parts <= 0 {
		return nil, errors.Newf("parts must be positive, got %d", parts)
	}
	rounds := lp.Rounds
	if rounds <= 0 {
		rounds = 20
	}
	imbalance := lp.Imbalance
	if imbalance <= 0 {
		imbalance = 0.03
	}
	penalty := lp.Penalty
	if penalty <= 0 {
		penalty = 0.5
	}

	n := g.NumVertices()
	capacity := int(float64((n+parts-1)/parts) * (1 + imbalance))
	capacity = max(capacity, (n+parts-1)/parts)

	part := make([]int, n)
	size := make([]int, parts)
	for v := range part {
		part[v] = v % parts
		size[part[v]]++
	}

	share := make([]int, parts)
	var touched []int
	for range rounds {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		changed := false
		for v := range g.Vertices() {
			deg := g.Degree(v)
			if deg == 0 {
				continue
			}
			touched = touched[:0]
			for _, u := range g.Neighbors(v) {
				p := part[u]
				if share[p] == 0 {
					touched = append(touched, p)
				}
				share[p]++
			}

			cur := part[v]
			score := func(p int) float64 {
				return float64(share[p])/float64(deg) - penalty*float64(size[p])/float64(capacity)
			}
			best, bestScore := cur, score(cur)
			for _, p := range touched {
				if p == cur || size[p] >= capacity {
					continue
				}
				// Moving in adds v to p; compare against p's size with v.
				s := float64(share[p])/float64(deg) - penalty*float64(size[p]+1)/float64(capacity)
				if s > bestScore {
					best, bestScore = p, s
				}
			}
			for _, p := range touched {
				share[p] = 0
			}

			if best != cur && size[cur] > 1 {
				part[v] = best
				size[cur]--
				size[best]++
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return part, nil
}
