// Package dag provides a directed graph organised into layers, the working
// structure of the built-in layered layout algorithm.
//
// # Overview
//
// BPMN processes read left to right. The layered algorithm assigns every flow
// node to a vertical layer (a column), orders the nodes inside each layer to
// reduce crossings, and then places the columns side by side. This package
// holds the graph those steps operate on: sized nodes, flow-labelled edges and
// the layer index.
//
// # Basic Usage
//
// Create a graph with [New], add nodes with [DAG.AddNode] and edges with
// [DAG.AddEdge]:
//
//	g := dag.New()
//	g.AddNode(dag.Node{ID: "start", Width: 36, Height: 36})
//	g.AddNode(dag.Node{ID: "task", Width: 100, Height: 80})
//	g.AddEdge(dag.Edge{ID: "Flow_1", From: "start", To: "task"})
//
// Nodes are returned in insertion order everywhere, so a layout computed from
// the same diagram is always the same.
//
// # Node Types
//
//   - [NodeKindRegular]: a real diagram shape
//   - [NodeKindSubdivider]: a channel node breaking an edge that spans several
//     layers, so every edge joins consecutive layers
//
// # Edge Crossings
//
// [CountCrossings] and [CountLayerCrossings] use a Fenwick tree (binary
// indexed tree) to count inversions in O(E log V) time. The ordering step
// calls them after every barycenter sweep to keep the best ordering seen.
//
// # Concurrency
//
// DAG instances are not safe for concurrent use. Layouts of different
// diagrams build separate graphs and can run in parallel.
//
// # Related Packages
//
// The [transform] subpackage provides the transformations that prepare a
// graph for ordering:
//   - Cycle breaking (reverse back edges)
//   - Layer assignment (longest path)
//   - Edge subdivision (channel nodes for long edges)
//
// The [perm] subpackage enumerates the orderings of short runs for the
// exhaustive step of crossing reduction.
//
// [transform]: github.com/matzehuels/bpmnlayout/pkg/dag/transform
// [perm]: github.com/matzehuels/bpmnlayout/pkg/dag/perm
package dag
