package passes

import (
	"context"

	"github.com/matzehuels/bpmnlayout/pkg/bpmn"
)

// RouteLoopbacks routes every sequence flow in scope whose target lies left
// of its source as a U below the content of the pool or expanded
// subprocess containing the source. The U never leaves that container, so
// it cannot run into a neighboring pool.
func RouteLoopbacks(ctx context.Context, s *State) error {
	d := s.Diagram
	for _, f := range d.FlowsOf(bpmn.SequenceFlow) {
		if f.Source == f.Target || !s.FlowInScope(f) {
			continue
		}
		src, okS := d.Bounds(f.Source)
		tgt, okT := d.Bounds(f.Target)
		if !okS || !okT || tgt.CenterX() >= src.CenterX() {
			continue
		}
		d.SetWaypoints(f.ID, Backward(src, tgt, loopFloor(s, f.Source)))
	}
	return nil
}

// loopFloor returns the y of the horizontal leg of a loopback leaving id.
func loopFloor(s *State, id string) float64 {
	d := s.Diagram
	margin := s.Tunables.LoopbackMargin

	c := container(d, id)
	var members []*bpmn.Element
	if c == nil {
		for _, e := range d.Elements() {
			if e.Parent == "" && e.Kind != bpmn.Participant {
				members = append(members, e)
			}
		}
	} else {
		members = d.Descendants(c.ID)
	}

	bottom := 0.0
	for _, e := range members {
		if e.Kind == bpmn.Lane {
			continue
		}
		if r, ok := d.Bounds(e.ID); ok {
			bottom = max(bottom, r.Bottom())
		}
	}
	if c == nil {
		return bottom + margin
	}
	cr, ok := d.Bounds(c.ID)
	if !ok {
		return bottom + margin
	}
	return bottom + min(margin, max(cr.Bottom()-bottom, 0)/2)
}

// container returns the nearest pool or expanded subprocess enclosing id.
func container(d *bpmn.Diagram, id string) *bpmn.Element {
	e, ok := d.Element(id)
	for ok && e.Parent != "" {
		p, found := d.Element(e.Parent)
		if !found {
			return nil
		}
		if p.Kind == bpmn.Participant || (p.Kind == bpmn.SubProcess && p.Expanded) {
			return p
		}
		e, ok = p, true
	}
	return nil
}
