package graph

import (
	"iter"
	"slices"
)

// Graph is an immutable undirected graph in compressed sparse row form.
// It is safe for concurrent readers.
type Graph struct {
	ids     []int64
	index   map[int64]uint32
	offsets []int
	adj     []uint32
	edges   int
}

// NumVertices returns the number of vertices.
func (g *Graph) NumVertices() int { return len(g.ids) }

// NumEdges returns the number of undirected edges.
func (g *Graph) NumEdges() int { return g.edges }

// ID returns the original identifier of vertex v.
func (g *Graph) ID(v uint32) int64 { return g.ids[v] }

// Lookup returns the dense index of the original identifier id.
func (g *Graph) Lookup(id int64) (uint32, bool) {
	v, ok := g.index[id]
	return v, ok
}

// Degree returns the number of neighbors of v.
func (g *Graph) Degree(v uint32) int {
	return g.offsets[v+1] - g.offsets[v]
}

// Neighbor returns the i-th neighbor of v in ascending order.
func (g *Graph) Neighbor(v uint32, i int) uint32 {
	return g.adj[g.offsets[v]+i]
}

// Neighbors returns the sorted neighbor list of v.
// The returned slice is shared and must not be modified.
func (g *Graph) Neighbors(v uint32) []uint32 {
	return g.adj[g.offsets[v]:g.offsets[v+1]]
}

// IsEdge reports whether u and v are adjacent.
func (g *Graph) IsEdge(u, v uint32) bool {
	if g.Degree(u) > g.Degree(v) {
		u, v = v, u
	}
	_, found := slices.BinarySearch(g.Neighbors(u), v)
	return found
}

// Vertices iterates over all vertices in enumeration order.
func (g *Graph) Vertices() iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		for v := range uint32(len(g.ids)) {
			if !yield(v) {
				return
			}
		}
	}
}

// Edges iterates over every undirected edge once, as (u, v) with u < v.
func (g *Graph) Edges() iter.Seq2[uint32, uint32] {
	return func(yield func(uint32, uint32) bool) {
		for u := range uint32(len(g.ids)) {
			for _, v := range g.Neighbors(u) {
				if u < v && !yield(u, v) {
					return
				}
			}
		}
	}
}

// Adjacency returns the graph in adjacency-array form: the neighbors of
// vertex v are adjncy[xadj[v]:xadj[v+1]]. The slices are shared.
func (g *Graph) Adjacency() (xadj []int, adjncy []uint32) {
	return g.offsets, g.adj
}

// Induced returns the subgraph induced by the first n vertices in
// enumeration order. If n <= 0 or n >= NumVertices, g itself is returned.
func (g *Graph) Induced(n int) *Graph {
	if n <= 0 || n >= len(g.ids) {
		return g
	}
	b := NewBuilder()
	for v := range uint32(n) {
		b.AddVertex(g.ids[v])
	}
	for u, v := range g.Edges() {
		if int(u) < n && int(v) < n {
			b.AddEdge(g.ids[u], g.ids[v])
		}
	}
	return b.Build()
}

// Builder accumulates vertices and edges for a Graph.
type Builder struct {
	ids   []int64
	index map[int64]uint32
	src   []uint32
	dst   []uint32
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{index: make(map[int64]uint32)}
}

// AddVertex registers id and returns its dense index.
func (b *Builder) AddVertex(id int64) uint32 {
	if v, ok := b.index[id]; ok {
		return v
	}
	v := uint32(len(b.ids))
	b.index[id] = v
	b.ids = append(b.ids, id)
	return v
}

// AddEdge registers the undirected edge between u and v, adding the
// endpoints if they are new.
func (b *Builder) AddEdge(u, v int64) {
	su := b.AddVertex(u)
	sv := b.AddVertex(v)
	if su == sv {
		return
	}
	b.src = append(b.src, su)
	b.dst = append(b.dst, sv)
}

// Build finalizes the graph. The Builder must not be used afterwards.
func (b *Builder) Build() *Graph {
	n := len(b.ids)
	degree := make([]int, n+1)
	for i := range b.src {
		degree[b.src[i]]++
		degree[b.dst[i]]++
	}

	offsets := make([]int, n+1)
	for v := 0; v < n; v++ {
		offsets[v+1] = offsets[v] + degree[v]
	}
	adj := make([]uint32, offsets[n])
	fill := slices.Clone(offsets[:n])
	for i := range b.src {
		u, v := b.src[i], b.dst[i]
		adj[fill[u]] = v
		fill[u]++
		adj[fill[v]] = u
		fill[v]++
	}

	// Sort and deduplicate each list, compacting in place.
	compact := make([]int, n+1)
	w := 0
	for v := 0; v < n; v++ {
		list := adj[offsets[v]:offsets[v+1]]
		slices.Sort(list)
		list = slices.Compact(list)
		compact[v] = w
		w += copy(adj[w:], list)
	}
	compact[n] = w

	return &Graph{
		ids:     b.ids,
		index:   b.index,
		offsets: compact,
		adj:     adj[:w:w],
		edges:   w / 2,
	}
}
