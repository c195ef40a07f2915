package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErdosRenyi(t *testing.T) {
	rng := NewRNG(4711)

	g := rng.ErdosRenyi(50, 0.2)

	assert.Equal(t, 50, g.NumVertices())
	assert.Greater(t, g.NumEdges(), 0)
	assert.Less(t, g.NumEdges(), 50*49/2)
}

func TestReset(t *testing.T) {
	rng := NewRNG(4711)
	g1 := rng.ErdosRenyi(30, 0.3)
	rng.Reset()
	g2 := rng.ErdosRenyi(30, 0.3)

	xadj1, adj1 := g1.Adjacency()
	xadj2, adj2 := g2.Adjacency()
	assert.Equal(t, xadj1, xadj2)
	assert.Equal(t, adj1, adj2)
	assert.Equal(t, int64(4711), rng.Seed())
}

func TestClustered(t *testing.T) {
	rng := NewRNG(1)

	g := rng.Clustered(4, 5, 1, 0)

	assert.Equal(t, 20, g.NumVertices())
	assert.Equal(t, 4*10, g.NumEdges())
	assert.False(t, g.IsEdge(0, 5))
}

func TestShapes(t *testing.T) {
	p := Path(6)
	assert.Equal(t, 6, p.NumVertices())
	assert.Equal(t, 5, p.NumEdges())
	assert.True(t, p.IsEdge(2, 3))

	c := Cycle(5)
	assert.Equal(t, 5, c.NumEdges())
	assert.True(t, c.IsEdge(4, 0))

	k := Cliques(3, 4)
	assert.Equal(t, 12, k.NumVertices())
	assert.Equal(t, 18, k.NumEdges())
	assert.False(t, k.IsEdge(3, 4))
}
