package bridge

import (
	"context"

	"github.com/matzehuels/bpmnlayout/pkg/geom"
)

// Padding is the inner margin of a compound node.
type Padding struct {
	Top, Left, Bottom, Right float64
}

// Node is a box in the layout graph. Leaf nodes have a fixed size; compound
// nodes contain Children laid out inside their padding and get their size
// from the algorithm.
//
// X and Y are relative to the parent node's top-left corner, as ELK reports
// them.
type Node struct {
	ID            string
	X, Y          float64
	Width, Height float64
	Padding       Padding
	// Partition orders siblings top to bottom when partitioning is on.
	Partition int
	Children  []*Node
	// Edges holds the edges whose (lifted) endpoints are both children of
	// this node.
	Edges []*Edge
}

// IsCompound reports whether n has children to lay out.
func (n *Node) IsCompound() bool { return len(n.Children) > 0 }

// Edge connects two sibling nodes.
type Edge struct {
	ID     string
	Source string
	Target string
	// Lifted is set when an endpoint was replaced by one of its ancestors so
	// both ends are siblings. Points of lifted edges are not applied.
	Lifted bool
	// Points is the route computed by the algorithm, relative to the
	// containing node's top-left corner. May be empty.
	Points []geom.Point
}

// Options are the layout parameters handed to the algorithm.
type Options struct {
	NodeSpacing  float64
	LayerSpacing float64
	// PartitionOrdering keeps siblings of a lower partition above siblings of
	// a higher one.
	PartitionOrdering bool
	// Sweeps bounds the number of crossing-reduction passes.
	Sweeps int
}

// Graph is the hierarchical input and output of a layered layout.
type Graph struct {
	Root    *Node
	Options Options
}

// Algorithm is a layered graph-drawing algorithm. Layout fills in node
// positions, compound sizes and edge points; it may reuse g for the result.
type Algorithm interface {
	Name() string
	Layout(ctx context.Context, g *Graph) (*Graph, error)
}

// Walk visits every node below root depth-first, parents before children,
// passing each node's absolute origin (the absolute position of its
// top-left corner).
func Walk(root *Node, origin geom.Point, fn func(n *Node, abs geom.Point)) {
	for _, c := range root.Children {
		abs := geom.Point{X: origin.X + c.X, Y: origin.Y + c.Y}
		fn(c, abs)
		Walk(c, abs, fn)
	}
}

// Find returns the node with the given id below root.
func Find(root *Node, id string) (*Node, bool) {
	if root.ID == id {
		return root, true
	}
	for _, c := range root.Children {
		if n, ok := Find(c, id); ok {
			return n, true
		}
	}
	return nil, false
}

// Count returns the number of nodes below root.
func Count(root *Node) int {
	n := len(root.Children)
	for _, c := range root.Children {
		n += Count(c)
	}
	return n
}
