package passes

import (
	"context"

	"github.com/matzehuels/bpmnlayout/pkg/bpmn"
	"github.com/matzehuels/bpmnlayout/pkg/geom"
)

// Compensate is the event definition of compensation boundary events.
const Compensate = "compensate"

// PlaceAttached puts boundary events back on their host's border, moves
// compensation handlers below their host and places text annotations next
// to the element they describe.
func PlaceAttached(ctx context.Context, s *State) error {
	d := s.Diagram
	for _, host := range d.Elements() {
		if host.Kind.Category() != bpmn.CategoryActivity {
			continue
		}
		attachBoundaryEvents(s, host.ID)
	}
	for _, be := range d.ElementsOf(bpmn.BoundaryEvent) {
		if be.EventDefinition == Compensate {
			placeHandlers(s, be)
		}
	}
	for _, a := range d.ElementsOf(bpmn.TextAnnotation) {
		placeAnnotation(s, a)
	}
	return nil
}

// attachBoundaryEvents centers every event of host that has drifted off its
// border on the bottom edge, spread evenly along it.
func attachBoundaryEvents(s *State, host string) {
	d := s.Diagram
	hr, ok := d.Bounds(host)
	if !ok {
		return
	}
	events := d.BoundaryEvents(host)
	tol := s.Tunables.BoundaryTolerance
	for i, be := range events {
		r, ok := d.Bounds(be.ID)
		if !ok || !s.Movable(be.ID) || hr.OnPerimeter(r.Center(), tol) {
			continue
		}
		cx := hr.X + hr.Width*float64(i+1)/float64(len(events)+1)
		d.SetBounds(be.ID, geom.R(cx-r.Width/2, hr.Bottom()-r.Height/2, r.Width, r.Height))
	}
}

// placeHandlers moves the compensation handlers associated with be below
// the host of be. A handler that takes part in the sequence flow keeps its
// position on the main path.
func placeHandlers(s *State, be *bpmn.Element) {
	d := s.Diagram
	hr, ok := d.Bounds(be.AttachedTo)
	if !ok {
		return
	}
	for _, id := range be.Outgoing {
		f, ok := d.Flow(id)
		if !ok || f.Kind != bpmn.Association {
			continue
		}
		h, ok := d.Element(f.Target)
		if !ok || !s.Movable(h.ID) || inSequence(d, h) {
			continue
		}
		r, ok := d.Bounds(h.ID)
		if !ok {
			continue
		}
		top := hr.Bottom() + s.Tunables.CompensationOffset
		MoveTree(d, h.ID, hr.X-r.X, top-r.Y)
		clearBelow(d, h.ID, top, s.Tunables.NodeSpacing)
	}
}

func inSequence(d *bpmn.Diagram, e *bpmn.Element) bool {
	for _, ids := range [][]string{e.Incoming, e.Outgoing} {
		for _, id := range ids {
			if f, ok := d.Flow(id); ok && f.Kind == bpmn.SequenceFlow {
				return true
			}
		}
	}
	return false
}

// placeAnnotation puts a to the upper right of the first element it is
// associated with.
func placeAnnotation(s *State, a *bpmn.Element) {
	d := s.Diagram
	if a.Pinned || !s.Movable(a.ID) {
		return
	}
	r, ok := d.Bounds(a.ID)
	if !ok {
		return
	}
	for _, id := range append(append([]string{}, a.Outgoing...), a.Incoming...) {
		f, ok := d.Flow(id)
		if !ok || f.Kind != bpmn.Association {
			continue
		}
		other := f.Target
		if other == a.ID {
			other = f.Source
		}
		er, ok := d.Bounds(other)
		if !ok {
			continue
		}
		d.SetBounds(a.ID, geom.R(er.CenterX(), er.Y-s.Tunables.AnnotationOffset-r.Height, r.Width, r.Height))
		return
	}
}
