// Package placement implements the replica placement engine.
//
// A Cluster is the single mutable state object: the social graph, the
// replica ledger of every server and the primary server of every vertex.
// All placement operations are methods on it and run on one goroutine.
//
// # Invariants
//
// After every completed operation:
//
//  1. Every assigned vertex has exactly one PRIMARY record.
//  2. For every edge (u, v) with both ends assigned, u's primary server
//     holds some copy of v and vice versa.
//  3. A NON_PRIMARY copy of w on server S exists only while a neighbor of
//     w is PRIMARY on S.
//  4. Committed reallocations keep |load(A) - load(B)| within the load
//     constraint for the servers they touch.
//
// # Transactions
//
// Tentative work (swap evaluation, group swaps, refinement rounds) runs
// inside a savepoint. Every ledger mutation is journaled with its inverse,
// so Rollback restores the exact prior state.
//
//	sp := c.Begin()
//	if err := c.MoveNode(v, b); err != nil { ... }
//	if !accept {
//	    return c.Rollback(sp)
//	}
//	c.Commit(sp)
//
// Invariant violations are returned as cockroachdb/errors assertion
// failures and must abort the run.
package placement
