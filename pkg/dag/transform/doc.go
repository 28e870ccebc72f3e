// Package transform provides the graph transformations that prepare a
// [dag.DAG] for crossing reduction and coordinate assignment.
//
// # Cycle Breaking
//
// Process diagrams loop: rework paths jump back to an earlier task. Layering
// needs an acyclic graph, so [BreakCycles] reverses every back edge found by
// a depth-first search. Reversed edges keep their ID and are flagged so the
// router can turn them back into loopbacks.
//
// # Layer Assignment
//
// [AssignLayers] computes the layer for each node with a longest-path
// traversal so every edge points to a later layer. [PullSinks] then moves end
// events back next to the node they follow.
//
// # Edge Subdivision
//
// [Subdivide] breaks edges spanning several layers into chains of
// single-layer hops by inserting channel nodes:
//
//	Before: split (layer 0) → merge (layer 3)
//	After:  split → Flow_7~1 → Flow_7~2 → merge
//
// # Usage
//
// Apply the transformations in order:
//
//	transform.BreakCycles(g)
//	transform.AssignLayers(g)
//	transform.PullSinks(g)
//	transform.Subdivide(g, channelHeight)
package transform
