package transform

import "github.com/matzehuels/bpmnlayout/pkg/dag"

// AssignLayers places every node one layer right of its furthest
// predecessor (longest-path layering), so sources land in layer 0 and every
// edge points right. It runs in O(V+E) and overwrites existing layers.
//
// The graph must be acyclic; run [BreakCycles] first. Nodes on a cycle are
// never reached and keep their current layer.
func AssignLayers(g *dag.DAG) {
	remaining := make(map[string]int, g.NodeCount())
	layer := make(map[string]int, g.NodeCount())
	var ready []string
	for _, n := range g.Nodes() {
		if remaining[n.ID] = g.InDegree(n.ID); remaining[n.ID] == 0 {
			ready = append(ready, n.ID)
			layer[n.ID] = 0
		}
	}

	for i := 0; i < len(ready); i++ {
		id := ready[i]
		for _, c := range g.Children(id) {
			layer[c] = max(layer[c], layer[id]+1)
			if remaining[c]--; remaining[c] == 0 {
				ready = append(ready, c)
			}
		}
	}
	g.SetLayers(layer)
}

// PullSinks moves every sink as far left as its predecessors allow. Longest
// path layering pushes end events of short branches to the far right; pulling
// them back keeps them next to the task they follow.
func PullSinks(g *dag.DAG) {
	moved := make(map[string]int)
	for _, n := range g.Sinks() {
		maxPred := -1
		for _, p := range g.Parents(n.ID) {
			if pn, ok := g.Node(p); ok && pn.Layer > maxPred {
				maxPred = pn.Layer
			}
		}
		if maxPred >= 0 && maxPred+1 < n.Layer {
			moved[n.ID] = maxPred + 1
		}
	}
	if len(moved) > 0 {
		g.SetLayers(moved)
	}
}
