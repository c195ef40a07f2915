package graph

import (
	"bytes"
	"slices"
	"strconv"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const triangleWithTail = `# comment
10 20
20 30
30 10
30 40
20 10
40 40
`

func TestLoad_DedupesAndSorts(t *testing.T) {
	g, err := Load(strings.NewReader(triangleWithTail))
	require.NoError(t, err)

	assert.Equal(t, 4, g.NumVertices())
	assert.Equal(t, 4, g.NumEdges())

	// Dense ids follow first appearance: 10->0, 20->1, 30->2, 40->3.
	v, ok := g.Lookup(30)
	require.True(t, ok)
	assert.Equal(t, uint32(2), v)
	assert.Equal(t, int64(40), g.ID(3))

	assert.Equal(t, []uint32{1, 2}, g.Neighbors(0))
	assert.Equal(t, []uint32{0, 1, 3}, g.Neighbors(2))
	assert.Equal(t, []uint32{2}, g.Neighbors(3))
	assert.Equal(t, 3, g.Degree(2))
	assert.Equal(t, uint32(3), g.Neighbor(2, 2))

	assert.True(t, g.IsEdge(0, 1))
	assert.True(t, g.IsEdge(3, 2))
	assert.False(t, g.IsEdge(0, 3))
	assert.False(t, g.IsEdge(3, 3))
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(strings.NewReader("1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")

	_, err = Load(strings.NewReader("1 2\nx 3\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")

	var numErr *strconv.NumError
	require.True(t, errors.As(err, &numErr))
	assert.Equal(t, "x", numErr.Num)

	_, err = LoadNamed("edges.gz", strings.NewReader("not gzip"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "graph: gzip")
}

func TestGraph_EdgesAndVertices(t *testing.T) {
	g, err := Load(strings.NewReader(triangleWithTail))
	require.NoError(t, err)

	var edges [][2]uint32
	for u, v := range g.Edges() {
		edges = append(edges, [2]uint32{u, v})
	}
	assert.Equal(t, [][2]uint32{{0, 1}, {0, 2}, {1, 2}, {2, 3}}, edges)
	assert.Equal(t, []uint32{0, 1, 2, 3}, slices.Collect(g.Vertices()))

	xadj, adjncy := g.Adjacency()
	assert.Equal(t, []int{0, 2, 4, 7, 8}, xadj)
	assert.Len(t, adjncy, 8)
}

func TestGraph_Induced(t *testing.T) {
	g, err := Load(strings.NewReader(triangleWithTail))
	require.NoError(t, err)

	sub := g.Induced(2)
	assert.Equal(t, 2, sub.NumVertices())
	assert.Equal(t, 1, sub.NumEdges())
	assert.Equal(t, int64(20), sub.ID(1))

	assert.Same(t, g, g.Induced(0))
	assert.Same(t, g, g.Induced(10))
}

func TestLoadNamed_Compressed(t *testing.T) {
	plain := []byte("1 2\n2 3\n")

	var gz bytes.Buffer
	gw := gzip.NewWriter(&gz)
	_, err := gw.Write(plain)
	require.NoError(t, err)
	require.NoError(t, gw.Close())

	var zs bytes.Buffer
	zw, err := zstd.NewWriter(&zs)
	require.NoError(t, err)
	_, err = zw.Write(plain)
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	var lz bytes.Buffer
	lw := lz4.NewWriter(&lz)
	_, err = lw.Write(plain)
	require.NoError(t, err)
	require.NoError(t, lw.Close())

	tests := []struct {
		name string
		data []byte
	}{
		{"edges.txt", plain},
		{"edges.txt.gz", gz.Bytes()},
		{"edges.txt.zst", zs.Bytes()},
		{"edges.txt.lz4", lz.Bytes()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := LoadNamed(tt.name, bytes.NewReader(tt.data))
			require.NoError(t, err)
			assert.Equal(t, 3, g.NumVertices())
			assert.Equal(t, 2, g.NumEdges())
		})
	}
}
