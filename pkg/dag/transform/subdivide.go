package transform

import (
	"fmt"

	"github.com/matzehuels/bpmnlayout/pkg/dag"
)

// Subdivide replaces every edge spanning more than one layer with a chain of
// [dag.NodeKindSubdivider] nodes, one per crossed layer:
//
//	split (0) → merge (3)   becomes   split → Flow_7~1 → Flow_7~2 → merge
//
// Channel nodes are channel pixels high and have no width. They inherit the
// source's partition and take part in ordering like real nodes; their final
// positions become the bend points of the flow. Every hop keeps the edge's
// ID and Reversed flag, and each channel node has the edge ID as MasterID.
func Subdivide(g *dag.DAG, channel float64) {
	taken := make(map[string]bool, g.NodeCount())
	for _, n := range g.Nodes() {
		taken[n.ID] = true
	}
	channelID := func(flow string, layer int) string {
		id := fmt.Sprintf("%s~%d", flow, layer)
		for i := 1; taken[id]; i++ {
			id = fmt.Sprintf("%s~%d__%d", flow, layer, i)
		}
		taken[id] = true
		return id
	}

	type span struct {
		e        dag.Edge
		src, dst *dag.Node
	}
	var long []span
	for _, e := range g.Edges() {
		src, _ := g.Node(e.From)
		dst, _ := g.Node(e.To)
		if src != nil && dst != nil && dst.Layer > src.Layer+1 {
			long = append(long, span{e, src, dst})
		}
	}

	for _, s := range long {
		g.RemoveEdge(s.e.From, s.e.To)
	}
	for _, s := range long {
		prev := s.src.ID
		for layer := s.src.Layer + 1; layer <= s.dst.Layer; layer++ {
			next := s.dst.ID
			if layer < s.dst.Layer {
				next = channelID(s.e.ID, layer)
				_ = g.AddNode(dag.Node{
					ID:        next,
					Layer:     layer,
					Height:    channel,
					Partition: s.src.Partition,
					Kind:      dag.NodeKindSubdivider,
					MasterID:  s.e.ID,
				})
			}
			_ = g.AddEdge(dag.Edge{ID: s.e.ID, From: prev, To: next, Reversed: s.e.Reversed})
			prev = next
		}
	}
}
