package queue

import "container/heap"

// Compile time check to ensure IndexedHeap satisfies the heap interface.
var _ heap.Interface = (*IndexedHeap)(nil)

// IndexedHeap is a min-heap over the dense items [0, n) ordered by
// (key, item) ascending. Every item stays in the heap for its whole
// lifetime; only keys change. The position index makes key updates
// O(log n) without relying on pointer identity.
type IndexedHeap struct {
	items []int // heap order
	pos   []int // item -> position in items
	keys  []int // item -> key
}

// NewIndexed creates a heap holding items 0..n-1, all with key 0.
func NewIndexed(n int) *IndexedHeap {
	h := &IndexedHeap{
		items: make([]int, n),
		pos:   make([]int, n),
		keys:  make([]int, n),
	}
	// Ascending ids with equal keys already satisfy the heap invariant.
	for i := 0; i < n; i++ {
		h.items[i] = i
		h.pos[i] = i
	}
	return h
}

// Len returns the number of items.
func (h *IndexedHeap) Len() int { return len(h.items) }

// Less orders positions i and j by (key, item).
func (h *IndexedHeap) Less(i, j int) bool {
	a, b := h.items[i], h.items[j]
	if h.keys[a] != h.keys[b] {
		return h.keys[a] < h.keys[b]
	}
	return a < b
}

// Swap swaps the items at positions i and j and keeps the index current.
func (h *IndexedHeap) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.pos[h.items[i]] = i
	h.pos[h.items[j]] = j
}

// Push appends a new item. It is required by heap.Interface; items are
// registered up front by NewIndexed, so callers never push directly.
func (h *IndexedHeap) Push(x any) {
	item := x.(int)
	for len(h.pos) <= item {
		h.pos = append(h.pos, -1)
		h.keys = append(h.keys, 0)
	}
	h.pos[item] = len(h.items)
	h.items = append(h.items, item)
}

// Pop removes the last item. Required by heap.Interface.
func (h *IndexedHeap) Pop() any {
	n := len(h.items)
	item := h.items[n-1]
	h.items = h.items[:n-1]
	h.pos[item] = -1
	return item
}

// Key returns the current key of item.
func (h *IndexedHeap) Key(item int) int { return h.keys[item] }

// Set changes the key of item and restores heap order.
func (h *IndexedHeap) Set(item, key int) {
	if h.keys[item] == key {
		return
	}
	h.keys[item] = key
	heap.Fix(h, h.pos[item])
}

// Add adds delta to the key of item.
func (h *IndexedHeap) Add(item, delta int) {
	h.Set(item, h.keys[item]+delta)
}

// Top returns the smallest item, or -1 if the heap is empty.
func (h *IndexedHeap) Top() int {
	if len(h.items) == 0 {
		return -1
	}
	return h.items[0]
}

// Smallest returns up to k items in ascending (key, item) order without
// modifying the heap. The next smallest item is always a child of one
// already returned, so only that frontier has to be searched.
func (h *IndexedHeap) Smallest(k int) []int {
	if k > len(h.items) {
		k = len(h.items)
	}
	out := make([]int, 0, k)
	if k <= 0 {
		return out
	}
	frontier := []int{0}
	for len(out) < k && len(frontier) > 0 {
		best := 0
		for i := 1; i < len(frontier); i++ {
			if h.Less(frontier[i], frontier[best]) {
				best = i
			}
		}
		p := frontier[best]
		frontier[best] = frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]

		out = append(out, h.items[p])
		if l := 2*p + 1; l < len(h.items) {
			frontier = append(frontier, l)
		}
		if r := 2*p + 2; r < len(h.items) {
			frontier = append(frontier, r)
		}
	}
	return out
}
