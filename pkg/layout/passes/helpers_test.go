package passes

import (
	"testing"

	"github.com/matzehuels/bpmnlayout/pkg/bpmn"
	"github.com/matzehuels/bpmnlayout/pkg/config"
	"github.com/matzehuels/bpmnlayout/pkg/geom"
)

func newState(d *bpmn.Diagram) *State {
	return NewState(d, config.DefaultTunables())
}

// setAt moves id to (x, y) keeping its size.
func setAt(d *bpmn.Diagram, id string, x, y float64) {
	r, _ := d.Bounds(id)
	d.SetBounds(id, geom.R(x, y, r.Width, r.Height))
}

func mustBounds(t *testing.T, d *bpmn.Diagram, id string) geom.Rect {
	t.Helper()
	r, ok := d.Bounds(id)
	if !ok {
		t.Fatalf("%s has no bounds", id)
	}
	return r
}

func samePoints(a, b []geom.Point) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Eq(b[i]) {
			return false
		}
	}
	return true
}

func pts(xy ...float64) []geom.Point {
	out := make([]geom.Point, 0, len(xy)/2)
	for i := 0; i+1 < len(xy); i += 2 {
		out = append(out, geom.Pt(xy[i], xy[i+1]))
	}
	return out
}
