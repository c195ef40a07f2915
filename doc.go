// Package sparsim simulates replica placement for social graphs.
//
// Every vertex of a social graph has one primary copy, k standby copies
// (virtual primaries) and read-only caches (non-primaries) on every
// server that hosts the primary of one of its neighbors. The simulator
// places vertices so that this inter-server replication stays small while
// server loads stay balanced.
//
// # Quick Start
//
//	g, _ := graph.Load(file)
//	sim, _ := sparsim.New(g,
//	    sparsim.WithServers(16),
//	    sparsim.WithVirtualPrimaries(2),
//	    sparsim.WithAlgorithm(sparsim.Offline),
//	)
//	rep, _ := sim.Run(ctx)
//	fmt.Println(rep.Line()) // cost,elapsed_ms
//
// # Algorithms
//
//   - Random: primary and standbys on random distinct servers
//   - SPAR: edge-driven co-location of endpoints
//   - METIS: static balanced partition (label propagation by default)
//   - Online: least-loaded ingestion followed by an SCB-scored move,
//     swap or revert per vertex
//   - Offline: Online plus iterative refinement, cluster-merge
//     rebalancing and virtual-primary exchange
//
// # Cost
//
// The inter-server cost is the number of copies that are not primaries,
// summed over all servers. Offline passes never raise it.
//
// # Errors
//
// Broken internal invariants abort a run; IsInvariantViolation detects
// them. Invalid settings wrap ErrInvalidConfig. With WithValidation a full
// scan runs after every phase and reports a *ValidationError.
package sparsim
