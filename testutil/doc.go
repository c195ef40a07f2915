// Package testutil provides testing utilities for sparsim.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded random source and synthetic social graphs.
//
// # Random Graphs
//
//	rng := testutil.NewRNG(seed)
//	g := rng.ErdosRenyi(64, 0.1)
//	h := rng.Clustered(8, 16, 0.6, 0.02)
//
// # Fixed Shapes
//
//	p := testutil.Path(6)      // 0-1-2-3-4-5
//	c := testutil.Cycle(5)
//	k := testutil.Cliques(3, 4) // three disjoint 4-cliques
package testutil
