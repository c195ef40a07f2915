// Package baseline implements the comparison strategies run against the
// SCB placement engine.
//
// Random scatters primaries and virtual primaries uniformly. EdgeDriven
// ingests edges in arrival order and, for every cut edge, keeps the
// cheapest of three options: leave both endpoints, or move one endpoint
// onto the other's server. Oracle seeds primaries from a static k-way
// partition computed by a Partitioner; LabelPropagation is the built-in
// partitioner.
//
// All strategies place vertices through a placement.Cluster, so the
// reported inter-server cost is comparable across strategies.
package baseline
