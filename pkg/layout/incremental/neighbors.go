package incremental

import (
	"context"
	"math"

	"github.com/matzehuels/bpmnlayout/pkg/geom"
	"github.com/matzehuels/bpmnlayout/pkg/layout/passes"
)

// NameNeighbors is the name of the neighbor edge pass.
const NameNeighbors = "neighbors"

// NeighborPass returns the neighbor edge rebuild as a pass.
func NeighborPass() passes.Pass {
	return passes.Func(NameNeighbors, RebuildNeighbors)
}

// Pipeline returns the pass pipeline of a partial layout: the full
// pipeline with neighbor edges rebuilt right after routing.
func Pipeline() []passes.Pass {
	return passes.Insert(passes.Full(), passes.NameRoute, NeighborPass())
}

// RebuildNeighbors re-routes every edge with exactly one endpoint in the
// partial scope. An edge whose target lies right of its source gets the
// forward template; otherwise it gets the U-shaped backward template below
// both endpoints.
func RebuildNeighbors(ctx context.Context, s *passes.State) error {
	if !s.Partial() {
		return nil
	}
	d := s.Diagram
	n := 0
	for _, f := range d.Flows() {
		if !rebuilt(f.Kind) || !s.Neighbor(f) {
			continue
		}
		if _, ok := d.Connection(f.ID); !ok {
			continue
		}
		src, okS := d.Bounds(f.Source)
		tgt, okT := d.Bounds(f.Target)
		if !okS || !okT {
			continue
		}
		d.SetWaypoints(f.ID, neighborRoute(src, tgt, s.Tunables.LoopbackMargin))
		n++
	}
	s.Logger.Debug("neighbor edges rebuilt", "count", n)
	return nil
}

func neighborRoute(src, tgt geom.Rect, margin float64) []geom.Point {
	if tgt.CenterX() >= src.CenterX() {
		return passes.Forward(src, tgt)
	}
	return passes.Backward(src, tgt, math.Max(src.Bottom(), tgt.Bottom())+margin)
}
