// Package graph provides the immutable social graph the placement engine
// operates on.
//
// Vertices are addressed by a dense index (uint32) assigned in order of
// first appearance in the edge list; the original identifier is kept for
// reporting. The graph is undirected and simple: self-loops and
// duplicate edges are dropped, and every neighbor list is sorted.
//
// # Loading
//
//	g, err := graph.Load(r)                      // plain edge list
//	g, err := graph.LoadNamed("twitter.txt.zst", r) // decompress by extension
//
// The edge-list format is two integer vertex ids per line. Lines that are
// empty or start with '#' or '%' are ignored.
package graph
