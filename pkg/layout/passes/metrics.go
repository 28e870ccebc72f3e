package passes

import (
	"context"

	"github.com/matzehuels/bpmnlayout/pkg/bpmn"
	"github.com/matzehuels/bpmnlayout/pkg/geom"
	"github.com/matzehuels/bpmnlayout/pkg/layout/report"
)

// Quality measures the routes of the given flows that have at least two
// waypoints. Without any route the result is fully orthogonal with no bends.
func Quality(m bpmn.Model, flowIDs []string) report.Quality {
	var routed, orthogonal, bends int
	for _, id := range flowIDs {
		pts := m.Waypoints(id)
		if len(pts) < 2 {
			continue
		}
		routed++
		if geom.IsOrthogonal(pts) {
			orthogonal++
		}
		bends += max(0, len(pts)-2)
	}
	if routed == 0 {
		return report.Quality{OrthogonalFlowPercent: 100}
	}
	return report.Quality{
		OrthogonalFlowPercent: 100 * float64(orthogonal) / float64(routed),
		AvgBendCount:          float64(bends) / float64(routed),
	}
}

// MeasureQuality records the route quality metrics.
func MeasureQuality(ctx context.Context, s *State) error {
	var ids []string
	for _, f := range s.Diagram.Flows() {
		ids = append(ids, f.ID)
	}
	s.Report.QualityMetrics = Quality(s.Diagram, ids)
	return nil
}
