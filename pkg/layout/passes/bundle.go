package passes

import (
	"context"

	"github.com/matzehuels/bpmnlayout/pkg/bpmn"
	"github.com/matzehuels/bpmnlayout/pkg/geom"
)

// BundleParallel spreads flows sharing both source and target so they do
// not draw on top of each other. The i-th of n parallel flows is shifted by
// (i - (n-1)/2) * BundleSpacing; endpoints only slide along the border they
// sit on. A flow without a parallel sibling is left untouched.
func BundleParallel(ctx context.Context, s *State) error {
	d := s.Diagram
	type pair struct{ src, tgt string }
	groups := make(map[pair][]*bpmn.Flow)
	var keys []pair
	for _, f := range d.FlowsOf(bpmn.SequenceFlow) {
		if f.Source == f.Target || !s.FlowInScope(f) || len(d.Waypoints(f.ID)) < 2 {
			continue
		}
		k := pair{f.Source, f.Target}
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], f)
	}

	for _, k := range keys {
		flows := groups[k]
		if len(flows) < 2 {
			continue
		}
		n := float64(len(flows))
		for i, f := range flows {
			o := (float64(i) - (n-1)/2) * s.Tunables.BundleSpacing
			d.SetWaypoints(f.ID, offsetRoute(d.Waypoints(f.ID), o))
		}
	}
	return nil
}

// offsetRoute shifts pts diagonally by o, keeping each endpoint on the
// border it touches.
func offsetRoute(pts []geom.Point, o float64) []geom.Point {
	out := make([]geom.Point, len(pts))
	for i, p := range pts {
		out[i] = p.Add(o, o)
	}
	last := len(pts) - 1
	undo := func(end, next int) {
		if (geom.Segment{A: pts[end], B: pts[next]}).Horizontal() {
			out[end].X = pts[end].X
		} else {
			out[end].Y = pts[end].Y
		}
	}
	undo(0, 1)
	undo(last, last-1)
	return out
}
