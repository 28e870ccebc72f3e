package passes

import (
	"context"
	"testing"

	"github.com/matzehuels/bpmnlayout/pkg/bpmn"
	"github.com/matzehuels/bpmnlayout/pkg/bpmn/bpmntest"
	"github.com/matzehuels/bpmnlayout/pkg/geom"
)

func TestFlowLabelAnchor(t *testing.T) {
	tests := []struct {
		name  string
		route []geom.Point
		want  geom.Point
	}{
		{"l with one long segment", pts(0, 0, 100, 0, 100, 10), geom.Pt(50, 0)},
		{"z with one long segment", pts(0, 0, 10, 0, 10, 100, 20, 100), geom.Pt(10, 50)},
		{"z with three long segments", pts(0, 0, 50, 0, 50, 100, 100, 100), geom.Pt(50, 40)},
		{"straight", pts(0, 0, 100, 0), geom.Pt(40, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FlowLabelAnchor(tt.route, 30, 10); !got.Eq(tt.want) {
				t.Errorf("FlowLabelAnchor = %v, want %v", got, tt.want)
			}
		})
	}
}

func labelled(t *testing.T, d *bpmn.Diagram, id string) geom.Rect {
	t.Helper()
	l, ok := d.Label(id)
	if !ok {
		t.Fatalf("%s has no label", id)
	}
	return l
}

func TestPlaceLabels(t *testing.T) {
	b := bpmntest.New("d")
	b.Add(bpmn.Element{ID: "ev", Kind: bpmn.StartEvent, Name: "Order received"})
	b.Add(bpmn.Element{ID: "task", Kind: bpmn.Task, Name: "Check order"})
	d := b.Build()
	setAt(d, "ev", 100, 100)

	if err := PlaceLabels(context.Background(), newState(d)); err != nil {
		t.Fatal(err)
	}
	// 14 characters wrap onto two lines of at most 90px.
	if got, want := labelled(t, d, "ev"), geom.R(73, 67, 90, 28); got != want {
		t.Errorf("event label = %v, want %v", got, want)
	}
	if _, ok := d.Label("task"); ok {
		t.Error("task got an external label")
	}
}

func TestPlaceLabelsAvoidsFlows(t *testing.T) {
	b := bpmntest.New("d")
	b.Add(bpmn.Element{ID: "ev", Kind: bpmn.StartEvent, Name: "Order received"})
	b.Node("x", bpmn.Task, "").Node("y", bpmn.Task, "")
	b.Seq("f", "x", "y")
	d := b.Build()
	setAt(d, "ev", 100, 100)
	d.SetWaypoints("f", pts(118, 0, 118, 90))

	if err := PlaceLabels(context.Background(), newState(d)); err != nil {
		t.Fatal(err)
	}
	if got := labelled(t, d, "ev"); got.Y != 141 {
		t.Errorf("label = %v, want the bottom candidate", got)
	}
}

func TestPlaceLabelsAvoidsHost(t *testing.T) {
	b := bpmntest.New("d")
	b.Node("host", bpmn.Task, "")
	b.Add(bpmn.Element{ID: "be", Kind: bpmn.BoundaryEvent, AttachedTo: "host", Name: "x"})
	d := b.Build()
	setAt(d, "host", 100, 100)
	setAt(d, "be", 132, 162)

	if err := PlaceLabels(context.Background(), newState(d)); err != nil {
		t.Fatal(err)
	}
	l := labelled(t, d, "be")
	if l.Overlaps(mustBounds(t, d, "host")) {
		t.Errorf("boundary label %v overlaps its host", l)
	}
	if l.Y != 203 {
		t.Errorf("label = %v, want below the event", l)
	}
}

func TestPlaceLabelsSkipsPinned(t *testing.T) {
	b := bpmntest.New("d")
	b.Add(bpmn.Element{ID: "ev", Kind: bpmn.EndEvent, Name: "Done", Pinned: true})
	d := b.Build()
	d.SetLabel("ev", geom.R(500, 500, 30, 14))
	if err := PlaceLabels(context.Background(), newState(d)); err != nil {
		t.Fatal(err)
	}
	if got := labelled(t, d, "ev"); got != geom.R(500, 500, 30, 14) {
		t.Errorf("pinned label moved to %v", got)
	}
}

func TestPlaceLabelsFlow(t *testing.T) {
	b := bpmntest.New("d")
	b.Node("x", bpmn.Task, "").Node("y", bpmn.Task, "")
	d := b.Build()
	if _, err := d.AddFlow(bpmn.Flow{ID: "yes", Kind: bpmn.SequenceFlow, Name: "yes", Source: "x", Target: "y"}); err != nil {
		t.Fatal(err)
	}
	d.AddConnection(bpmn.Connection{ElementID: "yes", Waypoints: pts(100, 40, 300, 40)})
	if err := PlaceLabels(context.Background(), newState(d)); err != nil {
		t.Fatal(err)
	}
	// Anchor at 90 along: top candidate clear of the segment.
	if got, want := labelled(t, d, "yes"), geom.R(179.5, 21, 21, 14); got != want {
		t.Errorf("flow label = %v, want %v", got, want)
	}
}
