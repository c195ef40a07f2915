package testutil

import (
	"math/rand"
	"sync"

	"github.com/hupe1980/sparsim/graph"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Perm returns a pseudo-random permutation of [0,n).
func (r *RNG) Perm(n int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Perm(n)
}

// ErdosRenyi returns a G(n, p) graph. Every vertex 0..n-1 is present even
// when isolated.
func (r *RNG) ErdosRenyi(n int, p float64) *graph.Graph {
	b := graph.NewBuilder()
	for v := range n {
		b.AddVertex(int64(v))
	}
	for u := range n {
		for v := u + 1; v < n; v++ {
			if r.Float64() < p {
				b.AddEdge(int64(u), int64(v))
			}
		}
	}
	return b.Build()
}

// Clustered returns a planted-partition graph of communities x size
// vertices: intra-community edges appear with probability pIn and
// inter-community edges with probability pOut.
func (r *RNG) Clustered(communities, size int, pIn, pOut float64) *graph.Graph {
	n := communities * size
	b := graph.NewBuilder()
	for v := range n {
		b.AddVertex(int64(v))
	}
	for u := range n {
		for v := u + 1; v < n; v++ {
			p := pOut
			if u/size == v/size {
				p = pIn
			}
			if r.Float64() < p {
				b.AddEdge(int64(u), int64(v))
			}
		}
	}
	return b.Build()
}

// Path returns the path 0-1-...-(n-1).
func Path(n int) *graph.Graph {
	b := graph.NewBuilder()
	for v := range n {
		b.AddVertex(int64(v))
	}
	for v := 1; v < n; v++ {
		b.AddEdge(int64(v-1), int64(v))
	}
	return b.Build()
}

// Cycle returns the cycle over n vertices.
func Cycle(n int) *graph.Graph {
	b := graph.NewBuilder()
	for v := range n {
		b.AddVertex(int64(v))
		b.AddEdge(int64(v), int64((v+1)%n))
	}
	return b.Build()
}

// Cliques returns count disjoint cliques of the given size, numbered
// consecutively.
func Cliques(count, size int) *graph.Graph {
	b := graph.NewBuilder()
	for c := range count {
		base := c * size
		for i := range size {
			b.AddVertex(int64(base + i))
			for j := range i {
				b.AddEdge(int64(base+j), int64(base+i))
			}
		}
	}
	return b.Build()
}
