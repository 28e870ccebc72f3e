package dag

import (
	"errors"
	"maps"
	"slices"
)

// Errors returned by graph construction and [DAG.Validate].
var (
	ErrInvalidNodeID        = errors.New("node ID must not be empty")
	ErrDuplicateNodeID      = errors.New("duplicate node ID")
	ErrUnknownSourceNode    = errors.New("unknown source node")
	ErrUnknownTargetNode    = errors.New("unknown target node")
	ErrNonConsecutiveLayers = errors.New("edges must connect consecutive layers")
	ErrGraphHasCycle        = errors.New("graph contains a cycle")
)

// NodeKind tells diagram shapes apart from nodes the layout inserted.
type NodeKind int

const (
	// NodeKindRegular is a diagram shape.
	NodeKindRegular NodeKind = iota
	// NodeKindSubdivider is a channel node on a flow that spans several
	// layers. Its MasterID is the ID of the flow it belongs to.
	NodeKindSubdivider
)

// Node is a box with a fixed size and an assigned layer. Layers run left
// to right in the flow direction.
type Node struct {
	ID    string
	Layer int

	// Width and Height are the box size in pixels.
	Width, Height float64

	// Partition keeps nodes of different lanes apart: within a layer, a
	// lower partition always sits above a higher one.
	Partition int

	Kind     NodeKind
	MasterID string

	seq int
}

// IsSubdivider reports whether the node was inserted to break a long edge.
func (n Node) IsSubdivider() bool { return n.Kind == NodeKindSubdivider }

// Seq returns the node's insertion index. Orderings start from it, so
// layouts follow declaration order and are reproducible.
func (n Node) Seq() int { return n.seq }

// Edge is a directed connection standing for a diagram flow. Subdivided
// chains repeat the flow's ID on every hop.
type Edge struct {
	ID       string
	From, To string

	// Reversed marks an edge turned around to break a cycle; its route is
	// flipped back when read out.
	Reversed bool
}

// DAG is a layered directed graph. Nodes keep insertion order everywhere
// it is observable. Use [New]; the zero value is not ready for use, and a
// DAG must not be shared between goroutines.
type DAG struct {
	nodes  map[string]*Node
	order  []string
	edges  []Edge
	succ   map[string][]string
	pred   map[string][]string
	layers map[int][]*Node
}

// New returns an empty graph.
func New() *DAG {
	return &DAG{
		nodes:  map[string]*Node{},
		succ:   map[string][]string{},
		pred:   map[string][]string{},
		layers: map[int][]*Node{},
	}
}

// AddNode inserts n and indexes it under n.Layer.
func (d *DAG) AddNode(n Node) error {
	switch {
	case n.ID == "":
		return ErrInvalidNodeID
	case d.nodes[n.ID] != nil:
		return ErrDuplicateNodeID
	}
	n.seq = len(d.order)
	d.nodes[n.ID] = &n
	d.order = append(d.order, n.ID)
	d.layers[n.Layer] = append(d.layers[n.Layer], &n)
	return nil
}

// SetLayers moves the nodes named in layers and rebuilds the layer index.
// Other nodes keep their layer.
func (d *DAG) SetLayers(layers map[string]int) {
	clear(d.layers)
	for _, id := range d.order {
		n := d.nodes[id]
		if l, ok := layers[id]; ok {
			n.Layer = l
		}
		d.layers[n.Layer] = append(d.layers[n.Layer], n)
	}
}

// AddEdge connects two existing nodes. Parallel edges are kept: a gateway
// and a task are often joined by more than one flow.
func (d *DAG) AddEdge(e Edge) error {
	if d.nodes[e.From] == nil {
		return ErrUnknownSourceNode
	}
	if d.nodes[e.To] == nil {
		return ErrUnknownTargetNode
	}
	d.edges = append(d.edges, e)
	d.succ[e.From] = append(d.succ[e.From], e.To)
	d.pred[e.To] = append(d.pred[e.To], e.From)
	return nil
}

// RemoveEdge deletes every edge from→to, if any.
func (d *DAG) RemoveEdge(from, to string) {
	d.edges = slices.DeleteFunc(d.edges, func(e Edge) bool { return e.From == from && e.To == to })
	d.succ[from] = slices.DeleteFunc(d.succ[from], func(id string) bool { return id == to })
	d.pred[to] = slices.DeleteFunc(d.pred[to], func(id string) bool { return id == from })
}

// Nodes returns the graph's nodes in insertion order. The pointers are
// live: changing a node changes the graph.
func (d *DAG) Nodes() []*Node { return d.filter(func(string) bool { return true }) }

// Edges returns a copy of the edges in insertion order.
func (d *DAG) Edges() []Edge { return slices.Clone(d.edges) }

func (d *DAG) NodeCount() int { return len(d.nodes) }
func (d *DAG) EdgeCount() int { return len(d.edges) }

// Children and Parents return adjacency lists owned by the graph; callers
// must not modify them.
func (d *DAG) Children(id string) []string { return d.succ[id] }
func (d *DAG) Parents(id string) []string  { return d.pred[id] }

func (d *DAG) OutDegree(id string) int { return len(d.succ[id]) }
func (d *DAG) InDegree(id string) int  { return len(d.pred[id]) }

// Node looks a node up by ID.
func (d *DAG) Node(id string) (*Node, bool) {
	n, ok := d.nodes[id]
	return n, ok
}

// NodesInLayer returns the nodes of one layer in insertion order.
func (d *DAG) NodesInLayer(layer int) []*Node { return d.layers[layer] }

// LayerCount returns the number of non-empty layers.
func (d *DAG) LayerCount() int { return len(d.layers) }

// LayerIDs returns the layer indices in ascending order.
func (d *DAG) LayerIDs() []int { return slices.Sorted(maps.Keys(d.layers)) }

// Sources returns the nodes without incoming edges.
func (d *DAG) Sources() []*Node {
	return d.filter(func(id string) bool { return len(d.pred[id]) == 0 })
}

// Sinks returns the nodes without outgoing edges.
func (d *DAG) Sinks() []*Node {
	return d.filter(func(id string) bool { return len(d.succ[id]) == 0 })
}

func (d *DAG) filter(keep func(id string) bool) []*Node {
	var out []*Node
	for _, id := range d.order {
		if keep(id) {
			out = append(out, d.nodes[id])
		}
	}
	return out
}

// Validate checks that every edge joins consecutive layers and that the
// graph has no cycle. It is meant for graphs that went through
// [transform.Subdivide].
//
// [transform.Subdivide]: github.com/matzehuels/bpmnlayout/pkg/dag/transform
func (d *DAG) Validate() error {
	for _, e := range d.edges {
		if d.nodes[e.To].Layer != d.nodes[e.From].Layer+1 {
			return ErrNonConsecutiveLayers
		}
	}

	// Kahn's algorithm: a node left unvisited sits on a cycle.
	indeg := make(map[string]int, len(d.nodes))
	for id, ps := range d.pred {
		indeg[id] = len(ps)
	}
	queue := slices.Collect(func(yield func(string) bool) {
		for _, id := range d.order {
			if indeg[id] == 0 && !yield(id) {
				return
			}
		}
	})
	visited := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		visited++
		for _, c := range d.succ[id] {
			if indeg[c]--; indeg[c] == 0 {
				queue = append(queue, c)
			}
		}
	}
	if visited != len(d.nodes) {
		return ErrGraphHasCycle
	}
	return nil
}

// PosMap maps each ID to its index in ids.
func PosMap(ids []string) map[string]int {
	m := make(map[string]int, len(ids))
	for i, id := range ids {
		m[id] = i
	}
	return m
}

// NodeIDs returns the IDs of nodes, in order.
func NodeIDs(nodes []*Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}
