// Package merge groups the primary vertices of one server into clusters
// by randomized greedy local search.
//
// Each node of the merged graph starts as a single vertex. Visiting nodes
// and their neighbors in shuffled order, a neighbor is absorbed whenever
// doing so increases the node's beta:
//
//	beta = (internal - external) / size
//
// where internal and external are the summed edge weights inside the
// group and leaving it. Absorbed neighbors hand their edges to the
// absorbing node, with parallel edges folded into one by adding weights.
package merge
