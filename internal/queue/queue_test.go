package queue

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexedHeap_InitialOrder(t *testing.T) {
	h := NewIndexed(4)

	assert.Equal(t, 4, h.Len())
	assert.Equal(t, 0, h.Top())
	assert.Equal(t, []int{0, 1, 2, 3}, h.Smallest(4))
}

func TestIndexedHeap_SetAndTieBreak(t *testing.T) {
	h := NewIndexed(3)

	h.Add(0, 1)
	assert.Equal(t, 1, h.Top())

	h.Add(1, 1)
	assert.Equal(t, 2, h.Top())

	h.Add(2, 1)
	// All keys equal: lowest id wins.
	assert.Equal(t, 0, h.Top())
	assert.Equal(t, []int{0, 1, 2}, h.Smallest(3))

	h.Set(2, 0)
	assert.Equal(t, []int{2, 0}, h.Smallest(2))
	assert.Equal(t, 0, h.Key(2))
}

func TestIndexedHeap_SmallestClamps(t *testing.T) {
	h := NewIndexed(2)

	assert.Empty(t, h.Smallest(0))
	assert.Len(t, h.Smallest(5), 2)
	assert.Equal(t, -1, NewIndexed(0).Top())
}

func TestIndexedHeap_RandomUpdates(t *testing.T) {
	const n = 37
	rng := rand.New(rand.NewSource(4711))
	h := NewIndexed(n)
	keys := make([]int, n)

	for step := 0; step < 2000; step++ {
		item := rng.Intn(n)
		delta := rng.Intn(5) - 2
		keys[item] += delta
		h.Add(item, delta)

		want := make([]int, n)
		for i := range want {
			want[i] = i
		}
		sort.Slice(want, func(a, b int) bool {
			if keys[want[a]] != keys[want[b]] {
				return keys[want[a]] < keys[want[b]]
			}
			return want[a] < want[b]
		})

		k := 1 + rng.Intn(5)
		require.Equal(t, want[:k], h.Smallest(k), "step %d", step)
		require.Equal(t, want[0], h.Top())
	}
}
