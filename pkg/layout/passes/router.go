package passes

import (
	"context"
	"fmt"
	"math"

	"github.com/matzehuels/bpmnlayout/pkg/bpmn"
	"github.com/matzehuels/bpmnlayout/pkg/geom"
	"github.com/matzehuels/bpmnlayout/pkg/observability"
)

// Router re-routes a single connection from the current bounds of its
// endpoints. Implementations may fail on inconsistent geometry; callers
// recover per flow.
type Router interface {
	Route(m bpmn.Model, f *bpmn.Flow) ([]geom.Point, error)
}

// OrthogonalRouter picks a route template from the relative position of the
// two endpoints.
type OrthogonalRouter struct {
	// Margin is the clearance below the lower endpoint for backward routes.
	Margin float64
}

// Route implements [Router].
func (r OrthogonalRouter) Route(m bpmn.Model, f *bpmn.Flow) ([]geom.Point, error) {
	src, ok := m.Bounds(f.Source)
	if !ok {
		return nil, fmt.Errorf("flow %s: source %s has no bounds", f.ID, f.Source)
	}
	tgt, ok := m.Bounds(f.Target)
	if !ok {
		return nil, fmt.Errorf("flow %s: target %s has no bounds", f.ID, f.Target)
	}
	if src.Empty() || tgt.Empty() {
		return nil, fmt.Errorf("flow %s: endpoint with empty bounds", f.ID)
	}

	if f.Source == f.Target {
		top := src.Y - r.Margin
		return []geom.Point{
			geom.Pt(src.Right(), src.CenterY()),
			geom.Pt(src.Right()+r.Margin, src.CenterY()),
			geom.Pt(src.Right()+r.Margin, top),
			geom.Pt(src.CenterX(), top),
			geom.Pt(src.CenterX(), src.Y),
		}, nil
	}

	switch {
	case tgt.X >= src.Right():
		return Forward(src, tgt), nil
	case tgt.X < src.Right() && tgt.Right() > src.X && (tgt.Y >= src.Bottom() || tgt.Bottom() <= src.Y):
		return DogLeg(src, tgt), nil
	default:
		return Backward(src, tgt, math.Max(src.Bottom(), tgt.Bottom())+r.Margin), nil
	}
}

// Stale reports whether the stored route of f no longer fits its endpoints:
// it is missing, has a diagonal segment, or does not start and end on the
// border of the source and target shapes.
func Stale(m bpmn.Model, f *bpmn.Flow, tol float64) bool {
	pts := m.Waypoints(f.ID)
	if len(pts) < 2 || !geom.IsOrthogonal(pts) {
		return true
	}
	src, okS := m.Bounds(f.Source)
	tgt, okT := m.Bounds(f.Target)
	if !okS || !okT {
		return true
	}
	return !src.OnPerimeter(pts[0], tol) || !tgt.OnPerimeter(pts[len(pts)-1], tol)
}

// routable reports whether the routing pass owns flows of kind k.
func routable(k bpmn.Kind) bool {
	switch k {
	case bpmn.SequenceFlow, bpmn.Association, bpmn.DataInputAssociation, bpmn.DataOutputAssociation:
		return true
	}
	return false
}

// touchesPinned reports whether an endpoint of f is pinned or skipped.
func touchesPinned(s *State, f *bpmn.Flow) bool {
	for _, id := range []string{f.Source, f.Target} {
		if s.Skip[id] {
			return true
		}
		if e, ok := s.Diagram.Element(id); ok && e.Pinned {
			return true
		}
	}
	return false
}

// RouteConnections re-routes every stale sequence flow and association in
// scope, plus stale flows of a partial layout that touch a pinned or
// skipped element, since nothing else repairs them once that element was
// moved by hand. A router failure falls back to the [Simple] template for that flow
// alone; it is logged, reported to the layout hooks and recorded in the
// diagnostics, never returned.
func RouteConnections(ctx context.Context, s *State) error {
	d := s.Diagram
	hooks := observability.Layout()
	for _, f := range d.Flows() {
		if !routable(f.Kind) || s.Neighbor(f) || !(s.FlowInScope(f) || touchesPinned(s, f)) {
			continue
		}
		if _, ok := d.Connection(f.ID); !ok || !Stale(d, f, 2) {
			continue
		}
		pts, err := s.Router.Route(d, f)
		if err == nil {
			d.SetWaypoints(f.ID, geom.Simplify(pts))
			continue
		}

		hooks.OnRouteFallback(ctx, f.ID, err)
		s.Logger.Warn("routing failed, using template", "flow", f.ID, "err", err)
		s.Report.AddRouteFallback(f.ID)
		src, okS := d.Bounds(f.Source)
		tgt, okT := d.Bounds(f.Target)
		if okS && okT {
			d.SetWaypoints(f.ID, Simple(src, tgt))
		}
	}
	return nil
}
