package strategy

import (
	"fmt"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/matzehuels/bpmnlayout/pkg/bpmn"
)

// Shape is the structural class of a diagram's sequence flow graph.
type Shape string

const (
	ShapeEmpty        Shape = "empty"
	ShapeChain        Shape = "chain"
	ShapeSplitMerge   Shape = "split-merge"
	ShapeCyclic       Shape = "cyclic"
	ShapeComplex      Shape = "complex"
	ShapeDisconnected Shape = "disconnected"
)

// Stats are the counts the selector decides on.
type Stats struct {
	FlowNodes      int   `json:"flowNodes"`
	SequenceFlows  int   `json:"sequenceFlows"`
	Lanes          int   `json:"lanes"`
	Participants   int   `json:"participants"`
	MessageFlows   int   `json:"messageFlows"`
	BoundaryEvents int   `json:"boundaryEvents"`
	Subprocesses   int   `json:"expandedSubprocesses"`
	Shape          Shape `json:"shape"`
	// Trivial is set for a single acyclic chain or a single split/merge with
	// no boundary events, lanes or expanded subprocesses.
	Trivial bool `json:"trivial"`
}

// Analyze computes the selector statistics of d.
func Analyze(d *bpmn.Diagram) Stats {
	var s Stats
	for _, e := range d.Elements() {
		switch {
		case e.Kind == bpmn.BoundaryEvent:
			s.BoundaryEvents++
			s.FlowNodes++
		case e.Kind == bpmn.Lane:
			s.Lanes++
		case e.Kind == bpmn.Participant:
			s.Participants++
		case e.Kind == bpmn.SubProcess && e.Expanded && len(e.Children) > 0:
			s.Subprocesses++
			s.FlowNodes++
		case e.Kind.IsFlowNode():
			s.FlowNodes++
		}
	}
	s.SequenceFlows = len(d.FlowsOf(bpmn.SequenceFlow))
	s.MessageFlows = len(d.FlowsOf(bpmn.MessageFlow))
	s.Shape = classify(d)
	s.Trivial = (s.Shape == ShapeChain || s.Shape == ShapeSplitMerge) &&
		s.BoundaryEvents == 0 && s.Lanes == 0 && s.Subprocesses == 0 && s.Participants <= 1
	return s
}

// Select recommends a strategy for d. A non-empty subset forces Subset.
func Select(d *bpmn.Diagram, subset []string) Recommendation {
	if len(subset) > 0 {
		return Recommendation{
			Strategy:   Subset,
			Reason:     fmt.Sprintf("explicit subset of %d elements", len(subset)),
			Confidence: High,
		}
	}
	return Recommend(Analyze(d))
}

// Recommend applies the selection rules to precomputed stats, in priority
// order: boundary events, several pools, lanes, trivial shape, otherwise a
// full layered layout.
func Recommend(s Stats) Recommendation {
	switch {
	case s.FlowNodes == 0:
		return Recommendation{Full, "empty diagram, nothing to lay out", Low}
	case s.BoundaryEvents > 0:
		return Recommendation{Full, fmt.Sprintf("%d boundary events need attachment-aware placement", s.BoundaryEvents), Medium}
	case s.Participants >= 2:
		return Recommendation{Collaboration, fmt.Sprintf("%d participants with %d message flows", s.Participants, s.MessageFlows), Medium}
	case s.Lanes > 0 && s.Participants <= 1:
		return Recommendation{Lanes, fmt.Sprintf("%d lanes in a single participant", s.Lanes), High}
	case s.Trivial:
		return Recommendation{Deterministic, fmt.Sprintf("trivial %s of %d nodes", s.Shape, s.FlowNodes), High}
	case s.Shape == ShapeCyclic:
		return Recommendation{Full, "sequence flow contains cycles", Medium}
	default:
		return Recommendation{Full, fmt.Sprintf("%s process of %d nodes", s.Shape, s.FlowNodes), Medium}
	}
}

// classify inspects the sequence flow graph between the flow nodes of d.
func classify(d *bpmn.Diagram) Shape {
	nodes := d.FlowNodes()
	if len(nodes) == 0 {
		return ShapeEmpty
	}

	g := simple.NewDirectedGraph()
	index := make(map[string]int64, len(nodes))
	for i, n := range nodes {
		index[n.ID] = int64(i)
		g.AddNode(simple.Node(i))
	}
	in := make(map[int64]int)
	out := make(map[int64]int)
	selfLoop := false
	for _, f := range d.FlowsOf(bpmn.SequenceFlow) {
		from, okF := index[f.Source]
		to, okT := index[f.Target]
		if !okF || !okT {
			continue
		}
		if from == to {
			selfLoop = true
			continue
		}
		if g.HasEdgeFromTo(from, to) {
			return ShapeComplex
		}
		g.SetEdge(g.NewEdge(simple.Node(from), simple.Node(to)))
		out[from]++
		in[to]++
	}

	if _, err := topo.Sort(g); err != nil || selfLoop {
		return ShapeCyclic
	}
	if len(topo.ConnectedComponents(asUndirected(g))) > 1 {
		return ShapeDisconnected
	}

	var splits, merges []int64
	for _, n := range nodes {
		id := index[n.ID]
		if out[id] > 1 {
			splits = append(splits, id)
		}
		if in[id] > 1 {
			merges = append(merges, id)
		}
	}
	switch {
	case len(splits) == 0 && len(merges) == 0:
		return ShapeChain
	case len(splits) == 1 && len(merges) == 1 && reaches(g, splits[0], merges[0]):
		return ShapeSplitMerge
	default:
		return ShapeComplex
	}
}

func reaches(g *simple.DirectedGraph, from, to int64) bool {
	seen := map[int64]bool{from: true}
	stack := []int64{from}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == to {
			return true
		}
		nodes := g.From(cur)
		for nodes.Next() {
			id := nodes.Node().ID()
			if !seen[id] {
				seen[id] = true
				stack = append(stack, id)
			}
		}
	}
	return false
}

func asUndirected(g *simple.DirectedGraph) *simple.UndirectedGraph {
	u := simple.NewUndirectedGraph()
	nodes := g.Nodes()
	for nodes.Next() {
		u.AddNode(nodes.Node())
	}
	edges := g.Edges()
	for edges.Next() {
		e := edges.Edge()
		u.SetEdge(u.NewEdge(e.From(), e.To()))
	}
	return u
}
