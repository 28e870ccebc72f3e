package bridge

import (
	"math"

	"github.com/matzehuels/bpmnlayout/pkg/bpmn"
	"github.com/matzehuels/bpmnlayout/pkg/geom"
)

// Applied summarises what Apply changed.
type Applied struct {
	Moved   int
	Resized int
	Routed  int
}

// Apply writes the algorithm's result back to d.
//
// Positions in the graph are relative to the parent node, so Apply walks the
// tree depth-first and accumulates each compound's absolute top-left as the
// origin of its children; a child is only placed after its parent. origin is
// the absolute position of the graph root's top-left corner.
//
// Compound containers take the computed size when they must grow, or when
// they would shrink by more than threshold. Boundary events follow their
// host. Routes of edges that were not lifted are copied over.
func (b *Built) Apply(d *bpmn.Diagram, origin geom.Point, threshold float64) Applied {
	var res Applied
	root := b.Graph.Root

	if b.Scope != "" {
		if r, ok := d.Bounds(b.Scope); ok {
			if w, h, changed := resized(r, root, threshold); changed {
				d.SetBounds(b.Scope, geom.R(r.X, r.Y, w, h))
				res.Resized++
			}
		}
	}
	b.applyEdges(d, root, origin, &res)

	Walk(root, origin, func(n *Node, abs geom.Point) {
		old, ok := d.Bounds(n.ID)
		if !ok {
			return
		}
		w, h := old.Width, old.Height
		if n.IsCompound() {
			var changed bool
			if w, h, changed = resized(old, n, threshold); changed {
				res.Resized++
			}
		}
		next := geom.R(abs.X, abs.Y, w, h)
		if next == old {
			b.applyEdges(d, n, abs, &res)
			return
		}
		d.SetBounds(n.ID, next)
		res.Moved++
		dx, dy := next.X-old.X, next.Y-old.Y
		if dx != 0 || dy != 0 {
			for _, be := range d.BoundaryEvents(n.ID) {
				d.Translate(be.ID, dx, dy)
			}
		}
		b.applyEdges(d, n, abs, &res)
	})
	return res
}

func (b *Built) applyEdges(d *bpmn.Diagram, n *Node, abs geom.Point, res *Applied) {
	for _, e := range n.Edges {
		if e.Lifted || len(e.Points) < 2 {
			continue
		}
		pts := make([]geom.Point, len(e.Points))
		for i, p := range e.Points {
			pts[i] = p.Add(abs.X, abs.Y)
		}
		d.SetWaypoints(e.ID, pts)
		res.Routed++
	}
}

func resized(old geom.Rect, n *Node, threshold float64) (w, h float64, changed bool) {
	w, h = old.Width, old.Height
	if n.Width > w || math.Abs(n.Width-w) > threshold {
		w, changed = n.Width, true
	}
	if n.Height > h || math.Abs(n.Height-h) > threshold {
		h, changed = n.Height, true
	}
	return w, h, changed
}
