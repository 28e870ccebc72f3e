package passes

import (
	"context"
	"testing"

	"github.com/matzehuels/bpmnlayout/pkg/bpmn"
	"github.com/matzehuels/bpmnlayout/pkg/bpmn/bpmntest"
)

func TestBundleParallel(t *testing.T) {
	b := bpmntest.New("d")
	b.Node("a", bpmn.Task, "").Node("b", bpmn.Task, "").Node("c", bpmn.Task, "")
	b.Seq("f1", "a", "b").Seq("f2", "a", "b").Seq("single", "a", "c")
	d := b.Build()
	setAt(d, "b", 300, 0)
	setAt(d, "c", 300, 200)
	d.SetWaypoints("f1", pts(100, 40, 300, 40))
	d.SetWaypoints("f2", pts(100, 40, 300, 40))
	single := pts(100, 40, 200, 40, 200, 240, 300, 240)
	d.SetWaypoints("single", single)

	if err := BundleParallel(context.Background(), newState(d)); err != nil {
		t.Fatal(err)
	}
	if got, want := d.Waypoints("f1"), pts(100, 35, 300, 35); !samePoints(got, want) {
		t.Errorf("f1 = %v, want %v", got, want)
	}
	if got, want := d.Waypoints("f2"), pts(100, 45, 300, 45); !samePoints(got, want) {
		t.Errorf("f2 = %v, want %v", got, want)
	}
	if got := d.Waypoints("single"); !samePoints(got, single) {
		t.Errorf("single flow modified: %v", got)
	}
}

func TestOffsetRouteKeepsEndsOnBorder(t *testing.T) {
	// Leaves the bottom of the source, enters the left of the target.
	got := offsetRoute(pts(50, 80, 50, 200, 300, 200), 10)
	if want := pts(60, 80, 60, 210, 300, 210); !samePoints(got, want) {
		t.Errorf("offsetRoute = %v, want %v", got, want)
	}
}
