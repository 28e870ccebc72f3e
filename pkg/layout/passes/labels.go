package passes

import (
	"context"
	"math"

	"github.com/matzehuels/bpmnlayout/pkg/bpmn"
	"github.com/matzehuels/bpmnlayout/pkg/geom"
)

// labelSize estimates the box of text wrapped at LabelMaxWidth.
func labelSize(s *State, text string) (w, h float64) {
	t := s.Tunables
	full := float64(len([]rune(text))) * t.LabelCharWidth
	w = math.Min(t.LabelMaxWidth, full)
	lines := math.Max(1, math.Ceil(full/t.LabelMaxWidth))
	return w, lines * t.LabelLineHeight
}

// hasExternalLabel reports whether the name of e is drawn outside its
// shape. Activities, containers and annotations carry their text inside.
func hasExternalLabel(e *bpmn.Element) bool {
	switch e.Kind.Category() {
	case bpmn.CategoryEvent, bpmn.CategoryGateway:
		return true
	}
	return e.Kind == bpmn.DataObjectReference || e.Kind == bpmn.DataStoreReference
}

// labelCandidates returns the four boxes of size w x h around anchor, in
// tie-break order: top, bottom, left, right.
func labelCandidates(anchor geom.Rect, w, h, margin float64) []geom.Rect {
	cx, cy := anchor.CenterX(), anchor.CenterY()
	return []geom.Rect{
		geom.R(cx-w/2, anchor.Y-margin-h, w, h),
		geom.R(cx-w/2, anchor.Bottom()+margin, w, h),
		geom.R(anchor.X-margin-w, cy-h/2, w, h),
		geom.R(anchor.Right()+margin, cy-h/2, w, h),
	}
}

// FlowLabelAnchor returns the point a flow label is placed around. L and Z
// shaped routes use the middle of their single segment of at least
// minSegment; other routes use the point half way along, moved back by the
// arrowhead length.
func FlowLabelAnchor(pts []geom.Point, minSegment, arrowhead float64) geom.Point {
	segs := geom.Segments(pts)
	if len(segs) == 2 || len(segs) == 3 {
		var long []geom.Segment
		for _, sg := range segs {
			if sg.Len() >= minSegment {
				long = append(long, sg)
			}
		}
		if len(long) == 1 {
			return long[0].Mid()
		}
	}
	return geom.PointAlong(pts, math.Max(0, geom.PathLen(pts)/2-arrowhead))
}

type labelScorer struct {
	segments []geom.Segment
	placed   []geom.Rect
	s        *State
}

func (sc *labelScorer) score(r geom.Rect, host *geom.Rect) float64 {
	t := sc.s.Tunables
	var v float64
	for _, sg := range sc.segments {
		if geom.SegmentIntersectsRect(sg, r) {
			v += t.LabelSegmentWeight
		}
	}
	for _, p := range sc.placed {
		if r.Overlaps(p) {
			v += t.LabelOverlapWeight
		}
	}
	if host != nil && r.Overlaps(*host) {
		v += t.LabelHostWeight
	}
	return v
}

func (sc *labelScorer) best(cands []geom.Rect, host *geom.Rect) geom.Rect {
	best, bestScore := cands[0], math.Inf(1)
	for _, c := range cands {
		if v := sc.score(c, host); v < bestScore {
			best, bestScore = c, v
		}
	}
	sc.placed = append(sc.placed, best)
	return best
}

// PlaceLabels places the external labels of named events, gateways, data
// elements and flows in scope. Each gets four candidate boxes scored by the
// flow segments they cross, the labels they overlap and, for boundary
// events, overlap with the host; the lowest score wins and ties go to the
// earlier candidate.
func PlaceLabels(ctx context.Context, s *State) error {
	d := s.Diagram
	t := s.Tunables
	sc := &labelScorer{s: s}
	for _, f := range d.Flows() {
		sc.segments = append(sc.segments, geom.Segments(d.Waypoints(f.ID))...)
	}

	for _, e := range d.Elements() {
		if e.Name == "" || !hasExternalLabel(e) {
			continue
		}
		if !s.Movable(e.ID) || e.Pinned {
			if l, ok := d.Label(e.ID); ok {
				sc.placed = append(sc.placed, l)
			}
			continue
		}
		r, ok := d.Bounds(e.ID)
		if !ok {
			continue
		}
		var host *geom.Rect
		if e.Kind == bpmn.BoundaryEvent {
			if hr, ok := d.Bounds(e.AttachedTo); ok {
				host = &hr
			}
		}
		w, h := labelSize(s, e.Name)
		d.SetLabel(e.ID, sc.best(labelCandidates(r, w, h, t.LabelMargin), host))
	}

	for _, f := range d.Flows() {
		if f.Name == "" || !s.FlowInScope(f) {
			continue
		}
		pts := d.Waypoints(f.ID)
		if len(pts) < 2 {
			continue
		}
		a := FlowLabelAnchor(pts, t.MinSegmentLength, t.ArrowheadLength)
		w, h := labelSize(s, f.Name)
		d.SetLabel(f.ID, sc.best(labelCandidates(geom.R(a.X, a.Y, 0, 0), w, h, t.LabelMargin), nil))
	}
	return nil
}
