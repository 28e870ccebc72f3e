package incremental

import (
	"context"
	"reflect"
	"slices"
	"testing"

	"github.com/matzehuels/bpmnlayout/pkg/bpmn"
	"github.com/matzehuels/bpmnlayout/pkg/bpmn/bpmntest"
	"github.com/matzehuels/bpmnlayout/pkg/config"
	"github.com/matzehuels/bpmnlayout/pkg/errors"
	"github.com/matzehuels/bpmnlayout/pkg/geom"
	"github.com/matzehuels/bpmnlayout/pkg/layout/passes"
)

// placedChain returns start, t1, t2, end on one row.
func placedChain() *bpmn.Diagram {
	d := bpmntest.New("chain").Chain("", 2).Build()
	d.SetBounds("start", geom.R(0, 22, 36, 36))
	d.SetBounds("t1", geom.R(100, 0, 100, 80))
	d.SetBounds("t2", geom.R(300, 0, 100, 80))
	d.SetBounds("end", geom.R(500, 22, 36, 36))
	return d
}

// lanePool returns a pool with two stacked lanes and task a in the upper
// one, plus a second pool q with lane m.
func lanePool() *bpmn.Diagram {
	b := bpmntest.New("lanes")
	b.At(bpmn.Element{ID: "p", Kind: bpmn.Participant}, 0, 0)
	b.At(bpmn.Element{ID: "l1", Kind: bpmn.Lane, Parent: "p"}, 30, 0)
	b.At(bpmn.Element{ID: "l2", Kind: bpmn.Lane, Parent: "p"}, 30, 125)
	b.At(bpmn.Element{ID: "a", Kind: bpmn.Task, Parent: "p", Lane: "l1"}, 100, 20)
	b.At(bpmn.Element{ID: "q", Kind: bpmn.Participant}, 0, 300)
	b.At(bpmn.Element{ID: "m", Kind: bpmn.Lane, Parent: "q"}, 30, 300)
	return b.Build()
}

func TestMovePinsAndUndoes(t *testing.T) {
	d := placedChain()
	ed := NewEditor(d, nil)

	if err := ed.Move("t1", 10, 20); err != nil {
		t.Fatalf("Move: %v", err)
	}
	t1, _ := d.Element("t1")
	if r, _ := d.Bounds("t1"); r != geom.R(110, 20, 100, 80) || !t1.Pinned {
		t.Errorf("after move: t1 = %v pinned=%v", r, t1.Pinned)
	}

	if err := ed.History().Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if r, _ := d.Bounds("t1"); r != geom.R(100, 0, 100, 80) || t1.Pinned {
		t.Errorf("after undo: t1 = %v pinned=%v", r, t1.Pinned)
	}
}

func TestZeroMovePins(t *testing.T) {
	d := placedChain()
	if err := NewEditor(d, nil).Move("t2", 0, 0); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if t2, _ := d.Element("t2"); !t2.Pinned {
		t.Error("zero move did not pin")
	}
}

func TestMoveCarriesBoundaryEvents(t *testing.T) {
	d := placedChain()
	d.AddElement(bpmn.Element{ID: "be", Kind: bpmn.BoundaryEvent, AttachedTo: "t1"})
	d.AddShape(bpmn.Shape{ElementID: "be", Bounds: geom.R(132, 62, 36, 36)})

	if err := NewEditor(d, nil).Move("t1", 50, 0); err != nil {
		t.Fatal(err)
	}
	if r, _ := d.Bounds("be"); r.X != 182 {
		t.Errorf("boundary event x = %g, want 182", r.X)
	}
	if be, _ := d.Element("be"); be.Pinned {
		t.Error("boundary event pinned by host move")
	}
}

func TestEditorRejects(t *testing.T) {
	d := lanePool()
	d.AddElement(bpmn.Element{ID: "b", Kind: bpmn.Task, Parent: "p", Lane: "l1"})
	d.AddShape(bpmn.Shape{ElementID: "b", Bounds: geom.R(250, 20, 100, 80)})
	d.AddFlow(bpmn.Flow{ID: "f", Kind: bpmn.SequenceFlow, Source: "a", Target: "b"})
	ed := NewEditor(d, nil)

	tests := []struct {
		name string
		err  error
		code errors.Code
	}{
		{"move flow", ed.Move("f", 1, 1), errors.ErrCodeInvalidInput},
		{"move missing", ed.Move("nope", 1, 1), errors.ErrCodeNotFound},
		{"move lane", ed.Move("l1", 0, 10), errors.ErrCodeInvalidInput},
		{"resize empty", ed.Resize("a", geom.R(0, 0, 0, 80)), errors.ErrCodeInvalidInput},
		{"lane missing", ed.AssignLane("a", "nope"), errors.ErrCodeNotFound},
		{"lane is task", ed.AssignLane("a", "b"), errors.ErrCodeInvalidInput},
		{"lane of other pool", ed.AssignLane("a", "m"), errors.ErrCodeInvalidInput},
		{"assign lane to lane", ed.AssignLane("l1", "l2"), errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		if !errors.Is(tt.err, tt.code) {
			t.Errorf("%s: err = %v, want %s", tt.name, tt.err, tt.code)
		}
	}
	if n := ed.History().Position(); n != 0 {
		t.Errorf("rejected edits recorded %d history entries", n)
	}
}

func TestResizePins(t *testing.T) {
	d := placedChain()
	ed := NewEditor(d, nil)
	if err := ed.Resize("t1", geom.R(100, 0, 140, 90)); err != nil {
		t.Fatal(err)
	}
	t1, _ := d.Element("t1")
	if r, _ := d.Bounds("t1"); r.Width != 140 || !t1.Pinned {
		t.Errorf("t1 = %v pinned=%v", r, t1.Pinned)
	}
}

func TestAssignLaneDoesNotPin(t *testing.T) {
	d := lanePool()
	ed := NewEditor(d, nil)
	if err := ed.AssignLane("a", "l2"); err != nil {
		t.Fatalf("AssignLane: %v", err)
	}
	a, _ := d.Element("a")
	if a.Lane != "l2" || a.Pinned {
		t.Errorf("a lane=%s pinned=%v, want l2 unpinned", a.Lane, a.Pinned)
	}
	if r, _ := d.Bounds("a"); r.Y != 147.5 {
		t.Errorf("a.Y = %g, want centered in l2 at 147.5", r.Y)
	}

	if err := ed.History().Undo(); err != nil {
		t.Fatal(err)
	}
	if r, _ := d.Bounds("a"); a.Lane != "l1" || r.Y != 20 {
		t.Errorf("after undo: lane=%s y=%g", a.Lane, r.Y)
	}
}

func TestNewPlan(t *testing.T) {
	d := placedChain()
	d.AddElement(bpmn.Element{ID: "be", Kind: bpmn.BoundaryEvent, AttachedTo: "t1"})
	d.AddShape(bpmn.Shape{ElementID: "be", Bounds: geom.R(132, 62, 36, 36)})
	t2, _ := d.Element("t2")
	t2.Pinned = true

	p, err := NewPlan(d, []string{"t1", "t2", "t1"})
	if err != nil {
		t.Fatalf("NewPlan: %v", err)
	}
	if want := []string{"t1", "be"}; !reflect.DeepEqual(p.Members, want) {
		t.Errorf("Members = %v, want %v", p.Members, want)
	}
	if want := []string{"t2"}; !reflect.DeepEqual(p.PinnedSkipped, want) {
		t.Errorf("PinnedSkipped = %v, want %v", p.PinnedSkipped, want)
	}
	if want := []string{"f1", "f2"}; !reflect.DeepEqual(p.Neighbors, want) {
		t.Errorf("Neighbors = %v, want %v", p.Neighbors, want)
	}
	if !p.Skip()["t2"] || p.Scope()["t2"] {
		t.Error("pinned element must be skipped, not scoped")
	}
}

func TestNewPlanErrors(t *testing.T) {
	d := lanePool()
	d.AddFlow(bpmn.Flow{ID: "f", Kind: bpmn.SequenceFlow, Source: "a", Target: "a"})
	tests := []struct {
		ids  []string
		code errors.Code
	}{
		{nil, errors.ErrCodeInvalidInput},
		{[]string{"f"}, errors.ErrCodeInvalidInput},
		{[]string{"l1"}, errors.ErrCodeInvalidInput},
		{[]string{"a", "ghost"}, errors.ErrCodeNotFound},
	}
	for _, tt := range tests {
		if _, err := NewPlan(d, tt.ids); !errors.Is(err, tt.code) {
			t.Errorf("NewPlan(%v) = %v, want %s", tt.ids, err, tt.code)
		}
	}
}

func TestRebuildNeighbors(t *testing.T) {
	d := placedChain()
	d.SetBounds("t1", geom.R(600, 200, 100, 80))
	for _, id := range []string{"f1", "f2", "f3"} {
		d.SetWaypoints(id, []geom.Point{geom.Pt(0, 0), geom.Pt(50, 50)})
	}
	s := passes.NewState(d, config.DefaultTunables())
	s.Scope = map[string]bool{"t1": true}

	if err := RebuildNeighbors(context.Background(), s); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		flow string
		want []geom.Point
	}{
		{"f1", []geom.Point{geom.Pt(36, 40), geom.Pt(318, 40), geom.Pt(318, 240), geom.Pt(600, 240)}},
		{"f2", []geom.Point{geom.Pt(650, 280), geom.Pt(650, 310), geom.Pt(350, 310), geom.Pt(350, 80)}},
	}
	for _, tt := range tests {
		if got := d.Waypoints(tt.flow); !slices.Equal(got, tt.want) {
			t.Errorf("%s = %v, want %v", tt.flow, got, tt.want)
		}
	}
	if got := d.Waypoints("f3"); len(got) != 2 || got[1] != geom.Pt(50, 50) {
		t.Errorf("f3 outside the scope was rerouted: %v", got)
	}
}

func TestRebuildNeighborsFullLayoutNoop(t *testing.T) {
	d := placedChain()
	d.SetWaypoints("f1", []geom.Point{geom.Pt(0, 0), geom.Pt(50, 50)})
	if err := RebuildNeighbors(context.Background(), passes.NewState(d, config.DefaultTunables())); err != nil {
		t.Fatal(err)
	}
	if got := d.Waypoints("f1"); got[1] != geom.Pt(50, 50) {
		t.Errorf("full layout state rebuilt f1: %v", got)
	}
}

func TestPipelineOrder(t *testing.T) {
	list := Pipeline()
	var got []string
	for _, p := range list {
		got = append(got, p.Name())
	}
	i := slices.Index(got, passes.NameRoute)
	if i < 0 || i+1 >= len(got) || got[i+1] != NameNeighbors {
		t.Errorf("pipeline = %v, want %s right after %s", got, NameNeighbors, passes.NameRoute)
	}
}

func TestPinLaw(t *testing.T) {
	d := placedChain()
	ed := NewEditor(d, nil)
	if err := ed.Move("t1", 0, 150); err != nil {
		t.Fatal(err)
	}
	before, _ := d.Bounds("t1")

	plan, err := NewPlan(d, []string{"t1", "t2"})
	if err != nil {
		t.Fatal(err)
	}
	s := passes.NewState(d, config.DefaultTunables())
	s.Scope, s.Skip = plan.Scope(), plan.Skip()
	s.Report.AddPinnedSkipped(plan.PinnedSkipped...)
	if err := passes.Run(context.Background(), s, Pipeline()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if after, _ := d.Bounds("t1"); after != before {
		t.Errorf("pinned t1 moved from %v to %v", before, after)
	}
	if !reflect.DeepEqual(s.Report.PinnedSkipped, []string{"t1"}) {
		t.Errorf("PinnedSkipped = %v", s.Report.PinnedSkipped)
	}
	for _, id := range plan.Neighbors {
		if pts := d.Waypoints(id); len(pts) < 2 || !geom.IsOrthogonal(pts) {
			t.Errorf("neighbor %s not rebuilt: %v", id, pts)
		}
	}

	if n := ClearPins(d); n != 1 {
		t.Errorf("ClearPins = %d, want 1", n)
	}
	if t1, _ := d.Element("t1"); t1.Pinned {
		t.Error("t1 still pinned")
	}
}
