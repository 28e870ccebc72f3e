package layered

import (
	"math"

	"github.com/matzehuels/bpmnlayout/pkg/dag"
	"github.com/matzehuels/bpmnlayout/pkg/geom"
	"github.com/matzehuels/bpmnlayout/pkg/layout/bridge"
)

// place assigns coordinates to every node and returns the size of the
// drawing. Layers become columns separated by LayerSpacing; within a column
// nodes keep their order, are aligned with the median of their predecessors
// when there is room, and are otherwise pushed down.
func (lv *level) place(opts bridge.Options) (width, height float64) {
	g := lv.g
	layers := g.LayerIDs()

	x := 0.0
	for _, l := range layers {
		w := 0.0
		for _, n := range g.NodesInLayer(l) {
			w = math.Max(w, n.Width)
		}
		lv.colX[l], lv.colW[l] = x, w
		x += w + opts.LayerSpacing
	}

	for _, l := range layers {
		var prev *dag.Node
		prevBottom := 0.0
		for _, id := range lv.orders[l] {
			n, _ := g.Node(id)
			top, aligned := lv.alignedTop(n)
			if prev != nil {
				minTop := prevBottom + gap(prev, n, opts.NodeSpacing)
				if !aligned || top < minTop {
					top = minTop
				}
			} else if !aligned {
				top = 0
			}
			lv.center[id] = geom.Pt(lv.colX[l]+lv.colW[l]/2, top+n.Height/2)
			prev, prevBottom = n, top+n.Height
		}
	}

	minY := math.Inf(1)
	for _, n := range g.Nodes() {
		minY = math.Min(minY, lv.center[n.ID].Y-n.Height/2)
	}
	for _, n := range g.Nodes() {
		c := lv.center[n.ID]
		c.Y -= minY
		lv.center[n.ID] = c
		lv.pos[n.ID] = geom.Pt(c.X-n.Width/2, c.Y-n.Height/2)
		width = math.Max(width, c.X+n.Width/2)
		height = math.Max(height, c.Y+n.Height/2)
	}
	return width, height
}

// alignedTop returns the top coordinate that centers n on the median of its
// already placed predecessors. The upper median is used for an even count so
// the first branch into a merge stays on the main row.
func (lv *level) alignedTop(n *dag.Node) (float64, bool) {
	var ys []float64
	for _, p := range lv.orders[n.Layer-1] {
		if !hasEdge(lv.g, p, n.ID) {
			continue
		}
		if c, ok := lv.center[p]; ok {
			ys = append(ys, c.Y)
		}
	}
	if len(ys) == 0 {
		return 0, false
	}
	return ys[(len(ys)-1)/2] - n.Height/2, true
}

func hasEdge(g *dag.DAG, from, to string) bool {
	for _, c := range g.Children(from) {
		if c == to {
			return true
		}
	}
	return false
}

// gap is the vertical distance kept between two neighbours in a column.
// Channel nodes pack tighter since their height already leaves room.
func gap(a, b *dag.Node, spacing float64) float64 {
	switch {
	case a.IsSubdivider() && b.IsSubdivider():
		return 0
	case a.IsSubdivider() || b.IsSubdivider():
		return spacing / 2
	default:
		return spacing
	}
}
