// Package radial lays out concept graphs as concentric rings around a fixed
// root.
//
// # Overview
//
// A concept graph grows outward from one seed word. This package assigns
// every node a canvas position so that:
//
//   - the root (first node of the snapshot) sits exactly on the canvas center
//   - nodes sit on concentric rings by their BFS distance from the root
//   - siblings share contiguous angular wedges sized by subtree weight, so
//     tree edges never cross
//   - a bounded force relaxation removes collisions and local irregularities
//     without drifting away from the ring/wedge targets
//
// The entry points are [Layout], which returns positions together with the
// derived spanning tree and targets, and [Apply], which returns a copy of the
// input graph with new positions. [PlaceSibling] is a cheap placement for a
// freshly added child between full layouts.
//
// # Pipeline
//
// A layout call runs five steps, each usable on its own:
//
//  1. [BuildAdjacency]: undirected neighbour lists, self-loops and dangling
//     edges dropped
//  2. [ExtractTree]: BFS spanning tree from the root; unreachable nodes are
//     collected as disconnected
//  3. [Weights] and [Sectors]: bottom-up subtree weights, then a recursive
//     proportional split of the full turn starting at [StartAngle]
//  4. [Targets]: wedge midpoint plus [RingRadius] per depth gives a target
//     point for every node
//  5. relaxation: a fixed number of steps of repulsion, edge springs, radial
//     pull, collision correction and a weak anchor toward the target point
//
// # Determinism
//
// Given the same snapshot and [Options] the result is identical on every
// call. Sibling order follows the current angle of each node around the
// center, so a settled graph keeps its arrangement across repeated layouts.
// Nodes without a usable angle (sitting on the center, or with non-finite
// coordinates) make their sibling group fall back to edge-list discovery
// order. Coincident points are separated along an index-derived direction,
// never a random one.
//
// # Concurrency
//
// All functions are pure: they never mutate their inputs and keep no state
// between calls, so independent snapshots can be laid out in parallel.
//
// # Performance
//
// Relaxation is O(iterations × (V² + E)), dominated by all-pairs repulsion.
// That is fine for the low hundreds of nodes a hand-grown concept graph
// reaches; larger graphs would need spatial partitioning.
package radial
