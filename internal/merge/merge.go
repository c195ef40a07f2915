package merge

import (
	"math/rand"
	"slices"

	"github.com/bits-and-blooms/bitset"
)

// Graph is a weighted undirected graph whose nodes are groups of vertices.
type Graph struct {
	index    map[uint32]int
	members  [][]uint32
	internal []int
	external []int
	adj      []map[int]int
	alive    *bitset.BitSet
}

// New creates a merged graph with one singleton node per vertex.
func New(vertices []uint32) *Graph {
	n := len(vertices)
	g := &Graph{
		index:    make(map[uint32]int, n),
		members:  make([][]uint32, n),
		internal: make([]int, n),
		external: make([]int, n),
		adj:      make([]map[int]int, n),
		alive:    bitset.New(uint(n)),
	}
	for i, v := range vertices {
		g.index[v] = i
		g.members[i] = []uint32{v}
		g.adj[i] = make(map[int]int)
		g.alive.Set(uint(i))
	}
	return g
}

// Len returns the number of live nodes.
func (g *Graph) Len() int { return int(g.alive.Count()) }

// AddEdge connects the nodes holding vertices a and b. Unknown vertices,
// self-loops and already connected pairs are ignored.
func (g *Graph) AddEdge(a, b uint32, weight int) {
	i, ok := g.index[a]
	if !ok {
		return
	}
	j, ok := g.index[b]
	if !ok || i == j {
		return
	}
	if _, exists := g.adj[i][j]; exists {
		return
	}
	g.adj[i][j] = weight
	g.adj[j][i] = weight
	g.external[i] += weight
	g.external[j] += weight
}

// Weight returns the weight of the edge between the nodes holding a and b.
func (g *Graph) Weight(a, b uint32) int {
	i, ok := g.index[a]
	if !ok {
		return 0
	}
	j, ok := g.index[b]
	if !ok {
		return 0
	}
	return g.adj[i][j]
}

func (g *Graph) beta(i int) float64 {
	return float64(g.internal[i]-g.external[i]) / float64(len(g.members[i]))
}

// Merge runs one randomized greedy pass. The visiting order of nodes and
// of each node's neighbors is drawn from rng.
func (g *Graph) Merge(rng *rand.Rand) {
	order := make([]int, len(g.members))
	for i := range order {
		order[i] = i
	}
	rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	var neighbors []int
	for _, a := range order {
		if !g.alive.Test(uint(a)) {
			continue
		}

		neighbors = neighbors[:0]
		for b := range g.adj[a] {
			neighbors = append(neighbors, b)
		}
		// Map order is random; sort before shuffling to stay reproducible.
		slices.Sort(neighbors)
		rng.Shuffle(len(neighbors), func(i, j int) { neighbors[i], neighbors[j] = neighbors[j], neighbors[i] })

		for _, b := range neighbors {
			shared, ok := g.adj[a][b]
			if !ok || !g.alive.Test(uint(b)) {
				continue
			}
			newInternal := g.internal[a] + g.internal[b] + shared
			newExternal := g.external[a] + g.external[b] - 2*shared
			size := len(g.members[a]) + len(g.members[b])
			newBeta := float64(newInternal-newExternal) / float64(size)
			if newBeta > g.beta(a) {
				g.absorb(a, b, newInternal, newExternal)
			}
		}
	}
}

// absorb folds node b into node a.
func (g *Graph) absorb(a, b, internal, external int) {
	g.internal[a] = internal
	g.external[a] = external

	merged := slices.Concat(g.members[a], g.members[b])
	slices.Sort(merged)
	g.members[a] = merged

	for c, w := range g.adj[b] {
		delete(g.adj[c], b)
		if c == a {
			continue
		}
		g.adj[a][c] += w
		g.adj[c][a] += w
	}
	delete(g.adj[a], b)

	g.adj[b] = nil
	g.members[b] = nil
	g.alive.Clear(uint(b))
}

// Finalize splits the live nodes into single vertices and multi-vertex
// groups, both in node order. Group members are sorted ascending.
func (g *Graph) Finalize() (singletons []uint32, groups [][]uint32) {
	for i, ok := g.alive.NextSet(0); ok; i, ok = g.alive.NextSet(i + 1) {
		m := g.members[i]
		if len(m) == 1 {
			singletons = append(singletons, m[0])
		} else {
			groups = append(groups, slices.Clone(m))
		}
	}
	return singletons, groups
}
