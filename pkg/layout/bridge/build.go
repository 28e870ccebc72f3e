package bridge

import (
	"github.com/matzehuels/bpmnlayout/pkg/bpmn"
	"github.com/matzehuels/bpmnlayout/pkg/config"
	"github.com/matzehuels/bpmnlayout/pkg/errors"
)

// RootID is the id of the synthetic root node of a full-diagram graph.
const RootID = "__root__"

// Built is a layout graph together with the lookups needed to read it back.
type Built struct {
	Graph *Graph
	// Scope is the container the graph was built for; empty for the whole
	// diagram.
	Scope string

	parent map[string]*Node
	nodes  map[string]*Node
}

// Node returns the graph node built for element id.
func (b *Built) Node(id string) (*Node, bool) {
	n, ok := b.nodes[id]
	return n, ok
}

// BuildOptions control graph construction.
type BuildOptions struct {
	Tunables config.Tunables
	// Scope restricts the graph to the subtree of a participant or expanded
	// subprocess.
	Scope string
	// PartitionByLane orders flow nodes by lane index.
	PartitionByLane bool
}

// Build translates d into a hierarchical layout graph. Pools and expanded
// subprocesses become compound nodes; lanes are flattened into their pool
// and only contribute a partition hint. Boundary events are left out and
// their flows start at the host instead. Message flows are left out since
// they cross pools and are routed afterwards.
func Build(d *bpmn.Diagram, opts BuildOptions) (*Built, error) {
	b := &Built{
		Scope:  opts.Scope,
		parent: make(map[string]*Node),
		nodes:  make(map[string]*Node),
	}
	t := opts.Tunables

	var root *Node
	var top []*bpmn.Element
	if opts.Scope == "" {
		root = &Node{ID: RootID}
		for _, e := range d.Elements() {
			if e.Parent == "" {
				top = append(top, e)
			}
		}
	} else {
		sc, ok := d.Element(opts.Scope)
		if !ok {
			return nil, errors.New(errors.ErrCodeNotFound, "scope element %s not found", opts.Scope)
		}
		if !IsScopeContainer(sc) {
			return nil, errors.New(errors.ErrCodeInvalidScope,
				"scope element %s is a %s, not a participant or expanded subprocess", sc.ID, sc.Kind)
		}
		root = b.newNode(d, sc, t)
		top = d.Children(sc.ID)
	}
	b.nodes[root.ID] = root
	b.addChildren(d, root, top, t, opts.PartitionByLane)

	g := &Graph{
		Root: root,
		Options: Options{
			NodeSpacing:       t.NodeSpacing,
			LayerSpacing:      t.LayerSpacing,
			PartitionOrdering: opts.PartitionByLane,
			Sweeps:            t.OrderingSweeps,
		},
	}
	b.Graph = g
	b.addEdges(d)
	return b, nil
}

// IsScopeContainer reports whether e can be the scope of a partial layout.
func IsScopeContainer(e *bpmn.Element) bool {
	return e.Kind == bpmn.Participant || (e.Kind == bpmn.SubProcess && e.Expanded)
}

// inGraph reports whether e is laid out as a box of its own.
func inGraph(e *bpmn.Element) bool {
	switch e.Kind.Category() {
	case bpmn.CategoryEvent:
		return e.Kind != bpmn.BoundaryEvent
	case bpmn.CategoryActivity, bpmn.CategoryGateway:
		return true
	case bpmn.CategoryContainer:
		return e.Kind == bpmn.Participant
	case bpmn.CategoryArtifact:
		return e.Kind == bpmn.DataObjectReference || e.Kind == bpmn.DataStoreReference
	case bpmn.CategoryConnection, bpmn.CategoryUnknown:
	}
	return false
}

func (b *Built) newNode(d *bpmn.Diagram, e *bpmn.Element, t config.Tunables) *Node {
	n := &Node{ID: e.ID}
	if r, ok := d.Bounds(e.ID); ok && !r.Empty() {
		n.Width, n.Height = r.Width, r.Height
	} else {
		n.Width, n.Height = bpmn.DefaultSize(e.Kind, e.Expanded)
	}
	switch {
	case e.Kind == bpmn.Participant:
		left := t.PoolHeaderWidth + t.ContainerPadding
		if len(d.Lanes(e.ID)) > 0 {
			left += t.PoolHeaderWidth
		}
		n.Padding = Padding{Top: t.ContainerPadding, Left: left, Bottom: t.ContainerPadding, Right: t.ContainerPadding}
	case e.IsContainer():
		n.Padding = Padding{Top: t.ContainerPadding, Left: t.ContainerPadding, Bottom: t.ContainerPadding, Right: t.ContainerPadding}
	}
	return n
}

func (b *Built) addChildren(d *bpmn.Diagram, parent *Node, elems []*bpmn.Element, t config.Tunables, byLane bool) {
	for _, e := range elems {
		if !inGraph(e) {
			continue
		}
		n := b.newNode(d, e, t)
		if byLane && e.Lane != "" {
			n.Partition = laneIndex(d, e)
		}
		parent.Children = append(parent.Children, n)
		b.nodes[n.ID] = n
		b.parent[n.ID] = parent
		if e.IsContainer() {
			b.addChildren(d, n, d.Children(e.ID), t, byLane)
		}
	}
}

func laneIndex(d *bpmn.Diagram, e *bpmn.Element) int {
	p, ok := d.Participant(e.ID)
	if !ok {
		return 0
	}
	for i, l := range d.Lanes(p.ID) {
		if l.ID == e.Lane {
			return i
		}
	}
	return 0
}

// laidOut maps an element id to the graph node standing for it: the element
// itself, the host of a boundary event, or the nearest collapsed ancestor.
func (b *Built) laidOut(d *bpmn.Diagram, id string) (*Node, bool) {
	for id != "" {
		if n, ok := b.nodes[id]; ok && id != b.Graph.Root.ID {
			return n, true
		}
		e, ok := d.Element(id)
		if !ok {
			return nil, false
		}
		if e.Kind == bpmn.BoundaryEvent {
			id = e.AttachedTo
			continue
		}
		id = e.Parent
	}
	return nil, false
}

func (b *Built) ancestors(n *Node) []*Node {
	chain := []*Node{n}
	for p, ok := b.parent[n.ID]; ok; p, ok = b.parent[p.ID] {
		chain = append(chain, p)
	}
	return chain
}

func (b *Built) addEdges(d *bpmn.Diagram) {
	for _, f := range d.Flows() {
		switch f.Kind {
		case bpmn.SequenceFlow, bpmn.Association, bpmn.DataInputAssociation, bpmn.DataOutputAssociation:
		default:
			continue
		}
		src, ok := b.laidOut(d, f.Source)
		if !ok {
			continue
		}
		tgt, ok := b.laidOut(d, f.Target)
		if !ok {
			continue
		}
		ls, lt, lca := b.lift(src, tgt)
		if lca == nil || ls == lt {
			continue
		}
		lca.Edges = append(lca.Edges, &Edge{
			ID:     f.ID,
			Source: ls.ID,
			Target: lt.ID,
			Lifted: ls.ID != f.Source || lt.ID != f.Target,
		})
	}
}

// lift replaces src and tgt by their ancestors that are siblings, and
// returns those together with their common parent.
func (b *Built) lift(src, tgt *Node) (*Node, *Node, *Node) {
	sa := b.ancestors(src)
	ta := b.ancestors(tgt)
	i, j := len(sa)-1, len(ta)-1
	if sa[i] != ta[j] {
		return nil, nil, nil
	}
	for i > 0 && j > 0 && sa[i-1] == ta[j-1] {
		i--
		j--
	}
	if i == 0 || j == 0 {
		// one endpoint contains the other
		return nil, nil, nil
	}
	return sa[i-1], ta[j-1], sa[i]
}
