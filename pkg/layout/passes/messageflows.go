package passes

import (
	"context"

	"github.com/matzehuels/bpmnlayout/pkg/bpmn"
)

// RouteMessageFlows routes every message flow in scope as a dog-leg between
// the facing borders of its endpoints.
func RouteMessageFlows(ctx context.Context, s *State) error {
	d := s.Diagram
	for _, f := range d.FlowsOf(bpmn.MessageFlow) {
		if !s.FlowInScope(f) {
			continue
		}
		src, okS := d.Bounds(f.Source)
		tgt, okT := d.Bounds(f.Target)
		if !okS || !okT {
			continue
		}
		d.SetWaypoints(f.ID, DogLeg(src, tgt))
	}
	return nil
}
