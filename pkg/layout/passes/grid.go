package passes

import (
	"context"

	"github.com/matzehuels/bpmnlayout/pkg/bpmn"
	"github.com/matzehuels/bpmnlayout/pkg/geom"
)

// SnapToGrid rounds the top-left corner of every movable shape to the grid
// pitch. Lanes follow their pool and boundary events follow their host so
// both stay attached. Routes are left to the routing pass.
func SnapToGrid(ctx context.Context, s *State) error {
	if s.GridSnap <= 0 {
		return nil
	}
	d := s.Diagram
	type delta struct{ dx, dy float64 }
	moved := make(map[string]delta)
	for _, e := range d.Elements() {
		if e.Kind == bpmn.Lane || e.Kind == bpmn.BoundaryEvent || !s.Movable(e.ID) {
			continue
		}
		r, ok := d.Bounds(e.ID)
		if !ok {
			continue
		}
		x, y := geom.Snap(r.X, s.GridSnap), geom.Snap(r.Y, s.GridSnap)
		if x == r.X && y == r.Y {
			continue
		}
		d.SetBounds(e.ID, geom.R(x, y, r.Width, r.Height))
		moved[e.ID] = delta{x - r.X, y - r.Y}
	}
	for _, e := range d.Elements() {
		var owner string
		switch e.Kind {
		case bpmn.Lane:
			owner = e.Parent
		case bpmn.BoundaryEvent:
			owner = e.AttachedTo
		default:
			continue
		}
		if m, ok := moved[owner]; ok {
			d.Translate(e.ID, m.dx, m.dy)
		}
	}
	return nil
}
