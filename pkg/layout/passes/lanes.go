package passes

import (
	"context"

	"github.com/matzehuels/bpmnlayout/pkg/bpmn"
	"github.com/matzehuels/bpmnlayout/pkg/geom"
	"github.com/matzehuels/bpmnlayout/pkg/layout/report"
)

// CompactLanes shrinks every lane to its content, tiles the lanes of each
// pool top to bottom without gaps and sets the pool height to their sum.
// Lane members are moved vertically with their lane. A partial layout
// leaves the lanes alone and only pulls moved members back inside the band
// of their lane. Pools of a collaboration are restacked since their
// heights changed.
//
// It also records the lane crossing metrics of the diagram.
func CompactLanes(ctx context.Context, s *State) error {
	d := s.Diagram
	for _, p := range d.ElementsOf(bpmn.Participant) {
		lanes := d.Lanes(p.ID)
		if len(lanes) == 0 || s.Skip[p.ID] {
			continue
		}
		if s.Partial() {
			clampToLanes(s, lanes)
			continue
		}
		tileLanes(s, p.ID, lanes)
	}
	if !s.Partial() {
		stackPools(s)
	}
	s.Report.LaneCrossingMetrics = LaneMetrics(d)
	return nil
}

// laneContent returns the lane members that carry their own bounds, and
// their bounding box. Boundary events travel with their host.
func laneContent(d *bpmn.Diagram, lane string) ([]string, geom.Rect, bool) {
	var ids []string
	var rects []geom.Rect
	for _, m := range d.LaneMembers(lane) {
		if m.Kind == bpmn.BoundaryEvent {
			continue
		}
		if r, ok := d.Bounds(m.ID); ok {
			ids = append(ids, m.ID)
			rects = append(rects, r)
		}
	}
	b, ok := geom.BoundsOf(rects)
	return ids, b, ok
}

func tileLanes(s *State, pool string, lanes []*bpmn.Element) {
	d := s.Diagram
	pr, ok := d.Bounds(pool)
	if !ok {
		return
	}
	t := s.Tunables
	y := pr.Y
	for _, l := range lanes {
		h := t.MinLaneHeight
		ids, content, ok := laneContent(d, l.ID)
		if ok {
			h = max(h, content.Height+2*t.LanePadding)
			moveSet(d, ids, 0, y+(h-content.Height)/2-content.Y)
		}
		d.SetBounds(l.ID, geom.R(pr.X+t.PoolHeaderWidth, y, pr.Width-t.PoolHeaderWidth, h))
		y += h
	}
	pr.Height = y - pr.Y
	d.SetBounds(pool, pr)
}

// clampToLanes moves in-scope lane members vertically into their lane.
func clampToLanes(s *State, lanes []*bpmn.Element) {
	d := s.Diagram
	pad := s.Tunables.LanePadding
	for _, l := range lanes {
		lr, ok := d.Bounds(l.ID)
		if !ok {
			continue
		}
		for _, m := range d.LaneMembers(l.ID) {
			if m.Kind == bpmn.BoundaryEvent || !s.Movable(m.ID) {
				continue
			}
			r, ok := d.Bounds(m.ID)
			if !ok || r.Height > lr.Height-2*pad {
				continue
			}
			switch {
			case r.Y < lr.Y+pad:
				MoveTree(d, m.ID, 0, lr.Y+pad-r.Y)
			case r.Bottom() > lr.Bottom()-pad:
				MoveTree(d, m.ID, 0, lr.Bottom()-pad-r.Bottom())
			}
		}
	}
}

// LaneMetrics counts the sequence flows whose endpoints both belong to a
// lane and how many of them change lanes. It returns nil for a diagram
// without lanes.
func LaneMetrics(d *bpmn.Diagram) *report.LaneMetrics {
	if len(d.ElementsOf(bpmn.Lane)) == 0 {
		return nil
	}
	m := &report.LaneMetrics{}
	for _, f := range d.FlowsOf(bpmn.SequenceFlow) {
		a, b := laneOf(d, f.Source), laneOf(d, f.Target)
		if a == "" || b == "" {
			continue
		}
		m.TotalLaneFlows++
		if a != b {
			m.CrossingLaneFlows++
		}
	}
	m.LaneCoherenceScore = 100
	if m.TotalLaneFlows > 0 {
		m.LaneCoherenceScore = 100 * float64(m.TotalLaneFlows-m.CrossingLaneFlows) / float64(m.TotalLaneFlows)
	}
	return m
}

func laneOf(d *bpmn.Diagram, id string) string {
	e, ok := d.Element(id)
	if !ok {
		return ""
	}
	if e.Lane == "" && e.Kind == bpmn.BoundaryEvent {
		if h, ok := d.Element(e.AttachedTo); ok {
			return h.Lane
		}
	}
	return e.Lane
}
