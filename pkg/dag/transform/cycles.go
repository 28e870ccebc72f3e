package transform

import "github.com/matzehuels/bpmnlayout/pkg/dag"

// BreakCycles makes g acyclic by reversing its back edges. The search starts
// from the sources and then from any node not yet reached, both in insertion
// order, so loops in a process are cut at the flow that returns to an
// earlier step.
//
// Reversed edges keep their ID and have Reversed toggled. Self-loops are
// removed and returned separately; the router draws them on its own.
func BreakCycles(g *dag.DAG) (reversed, selfLoops []dag.Edge) {
	back := findBackEdges(g)
	if len(back) == 0 {
		return nil, nil
	}

	for _, e := range g.Edges() {
		switch {
		case !back[[2]string{e.From, e.To}]:
		case e.From == e.To:
			selfLoops = append(selfLoops, e)
		default:
			reversed = append(reversed, e)
		}
	}
	for k := range back {
		g.RemoveEdge(k[0], k[1])
	}
	for _, e := range reversed {
		// Both endpoints exist, so AddEdge cannot fail.
		_ = g.AddEdge(dag.Edge{ID: e.ID, From: e.To, To: e.From, Reversed: !e.Reversed})
	}
	return reversed, selfLoops
}

// findBackEdges runs an iterative depth-first search and returns every edge
// that points at a node still on the search path.
func findBackEdges(g *dag.DAG) map[[2]string]bool {
	type frame struct {
		id   string
		next int
	}
	done := make(map[string]bool, g.NodeCount())
	onPath := make(map[string]bool)
	back := make(map[[2]string]bool)

	visit := func(root string) {
		if done[root] {
			return
		}
		stack := []frame{{id: root}}
		onPath[root] = true
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			children := g.Children(top.id)
			if top.next == len(children) {
				onPath[top.id] = false
				done[top.id] = true
				stack = stack[:len(stack)-1]
				continue
			}
			c := children[top.next]
			top.next++
			switch {
			case onPath[c]:
				back[[2]string{top.id, c}] = true
			case !done[c]:
				onPath[c] = true
				stack = append(stack, frame{id: c})
			}
		}
	}

	for _, n := range g.Sources() {
		visit(n.ID)
	}
	for _, n := range g.Nodes() {
		visit(n.ID)
	}
	return back
}
