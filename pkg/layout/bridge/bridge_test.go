package bridge_test

import (
	"context"
	"fmt"
	"reflect"
	"testing"

	"github.com/matzehuels/bpmnlayout/pkg/bpmn"
	"github.com/matzehuels/bpmnlayout/pkg/bpmn/bpmntest"
	"github.com/matzehuels/bpmnlayout/pkg/config"
	"github.com/matzehuels/bpmnlayout/pkg/errors"
	"github.com/matzehuels/bpmnlayout/pkg/geom"
	"github.com/matzehuels/bpmnlayout/pkg/layered"
	"github.com/matzehuels/bpmnlayout/pkg/layout/bridge"
)

// algFunc adapts a function to bridge.Algorithm.
type algFunc func(g *bridge.Graph) (*bridge.Graph, error)

func (f algFunc) Name() string { return "test" }
func (f algFunc) Layout(_ context.Context, g *bridge.Graph) (*bridge.Graph, error) {
	return f(g)
}

func collaboration() *bpmn.Diagram {
	b := bpmntest.New("collab")
	b.Node("pool", bpmn.Participant, "")
	b.Node("laneA", bpmn.Lane, "pool")
	b.Node("laneB", bpmn.Lane, "pool")
	b.InLane("start", bpmn.StartEvent, "pool", "laneA")
	b.InLane("task", bpmn.UserTask, "pool", "laneB")
	b.Add(bpmn.Element{ID: "sub", Kind: bpmn.SubProcess, Parent: "pool", Lane: "laneB", Expanded: true})
	b.Node("inner", bpmn.Task, "sub")
	b.Add(bpmn.Element{ID: "timer", Kind: bpmn.BoundaryEvent, Parent: "pool", AttachedTo: "task"})
	b.InLane("end", bpmn.EndEvent, "pool", "laneA")
	b.Seq("f1", "start", "task")
	b.Seq("f2", "task", "inner")
	b.Seq("f3", "timer", "end")
	b.Seq("f4", "sub", "end")
	return b.Build()
}

func TestBuildNesting(t *testing.T) {
	built, err := bridge.Build(collaboration(), bridge.BuildOptions{
		Tunables:        config.DefaultTunables(),
		PartitionByLane: true,
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	root := built.Graph.Root
	if len(root.Children) != 1 || root.Children[0].ID != "pool" {
		t.Fatalf("root children = %v, want [pool]", ids(root.Children))
	}
	pool := root.Children[0]
	if got, want := ids(pool.Children), []string{"start", "task", "sub", "end"}; !reflect.DeepEqual(got, want) {
		t.Errorf("pool children = %v, want %v", got, want)
	}
	if _, ok := built.Node("timer"); ok {
		t.Error("boundary event should not be a graph node")
	}
	if _, ok := built.Node("laneA"); ok {
		t.Error("lane should not be a graph node")
	}

	tu := config.DefaultTunables()
	if want := 2*tu.PoolHeaderWidth + tu.ContainerPadding; pool.Padding.Left != want {
		t.Errorf("pool left padding = %g, want %g", pool.Padding.Left, want)
	}

	task, _ := built.Node("task")
	if task.Partition != 1 {
		t.Errorf("task partition = %d, want 1 (laneB)", task.Partition)
	}

	edges := map[string]*bridge.Edge{}
	for _, e := range pool.Edges {
		edges[e.ID] = e
	}
	if e := edges["f2"]; e == nil || e.Target != "sub" || !e.Lifted {
		t.Errorf("f2 = %+v, want lifted edge task->sub", e)
	}
	if e := edges["f3"]; e == nil || e.Source != "task" || !e.Lifted {
		t.Errorf("f3 = %+v, want edge from boundary host", e)
	}
	if e := edges["f1"]; e == nil || e.Lifted {
		t.Errorf("f1 = %+v, want plain edge", e)
	}
}

func TestBuildScope(t *testing.T) {
	d := collaboration()
	tests := []struct {
		scope string
		code  errors.Code
	}{
		{"missing", errors.ErrCodeNotFound},
		{"task", errors.ErrCodeInvalidScope},
		{"laneA", errors.ErrCodeInvalidScope},
	}
	for _, tt := range tests {
		_, err := bridge.Build(d, bridge.BuildOptions{Tunables: config.DefaultTunables(), Scope: tt.scope})
		if !errors.Is(err, tt.code) {
			t.Errorf("scope %q: err = %v, want %s", tt.scope, err, tt.code)
		}
	}

	built, err := bridge.Build(d, bridge.BuildOptions{Tunables: config.DefaultTunables(), Scope: "sub"})
	if err != nil {
		t.Fatalf("scope sub: %v", err)
	}
	if got := ids(built.Graph.Root.Children); !reflect.DeepEqual(got, []string{"inner"}) {
		t.Errorf("sub scope children = %v", got)
	}
}

func TestLayoutChain(t *testing.T) {
	d := bpmntest.New("chain").Chain("", 2).Build()
	tu := config.DefaultTunables()
	res, err := bridge.New(layered.New(), tu, nil).Layout(context.Background(), d, bridge.Request{})
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if res.Routed != 3 {
		t.Errorf("routed = %d, want 3", res.Routed)
	}

	order := []string{"start", "t1", "t2", "end"}
	first, _ := d.Bounds("start")
	if first.X != tu.OriginX {
		t.Errorf("start.X = %g, want origin %g", first.X, tu.OriginX)
	}
	for i := 1; i < len(order); i++ {
		prev, _ := d.Bounds(order[i-1])
		cur, _ := d.Bounds(order[i])
		if cur.X <= prev.Right() {
			t.Errorf("%s.X = %g not right of %s (%g)", order[i], cur.X, order[i-1], prev.Right())
		}
	}
	for _, f := range d.Flows() {
		pts := d.Waypoints(f.ID)
		if !geom.IsOrthogonal(pts) {
			t.Errorf("flow %s not orthogonal: %v", f.ID, pts)
		}
		src, _ := d.Bounds(f.Source)
		if len(pts) == 0 || !src.OnPerimeter(pts[0], 1) {
			t.Errorf("flow %s does not start on %s: %v", f.ID, f.Source, pts)
		}
	}
}

func TestLayoutNestedOrigins(t *testing.T) {
	d := collaboration()
	alg := algFunc(func(g *bridge.Graph) (*bridge.Graph, error) {
		bridge.Walk(g.Root, geom.Point{}, func(n *bridge.Node, _ geom.Point) {
			n.X, n.Y = 10, 20
			if n.IsCompound() {
				n.Width, n.Height = 900, 400
			}
		})
		return g, nil
	})
	res, err := bridge.New(alg, config.DefaultTunables(), nil).Layout(context.Background(), d, bridge.Request{})
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}

	tu := config.DefaultTunables()
	pool, _ := d.Bounds("pool")
	if pool != geom.R(tu.OriginX+10, tu.OriginY+20, 900, 400) {
		t.Errorf("pool = %+v", pool)
	}
	inner, _ := d.Bounds("inner")
	if inner.X != pool.X+10+10 || inner.Y != pool.Y+20+20 {
		t.Errorf("inner at (%g,%g), want parent-relative offsets added", inner.X, inner.Y)
	}
	if res.Resized != 2 {
		t.Errorf("resized = %d, want pool and sub", res.Resized)
	}

	task, _ := d.Bounds("task")
	timer, _ := d.Bounds("timer")
	if timer.X-task.X != 0 || timer.Y-task.Y != 0 {
		t.Errorf("boundary event did not follow host: task %+v timer %+v", task, timer)
	}
}

func TestLayoutSmallResizeIgnored(t *testing.T) {
	b := bpmntest.New("small")
	b.At(bpmn.Element{ID: "sub", Kind: bpmn.SubProcess, Expanded: true}, 0, 0)
	b.Node("inner", bpmn.Task, "sub")
	d := b.Build()
	alg := algFunc(func(g *bridge.Graph) (*bridge.Graph, error) {
		sub := g.Root.Children[0]
		sub.Width, sub.Height = 348, 203
		sub.Children[0].X, sub.Children[0].Y = 30, 30
		return g, nil
	})
	if _, err := bridge.New(alg, config.DefaultTunables(), nil).Layout(context.Background(), d, bridge.Request{}); err != nil {
		t.Fatalf("Layout: %v", err)
	}
	r, _ := d.Bounds("sub")
	if r.Width != 350 {
		t.Errorf("width = %g, want unchanged 350 for a 2px shrink", r.Width)
	}
	if r.Height != 203 {
		t.Errorf("height = %g, want grown to 203", r.Height)
	}
}

func TestLayoutFailureLeavesDiagram(t *testing.T) {
	d := bpmntest.New("chain").Chain("", 2).Build()
	before := d.Snapshot()

	failing := algFunc(func(*bridge.Graph) (*bridge.Graph, error) {
		return nil, fmt.Errorf("malformed nesting")
	})
	_, err := bridge.New(failing, config.DefaultTunables(), nil).Layout(context.Background(), d, bridge.Request{})
	if !errors.Is(err, errors.ErrCodeLayoutFailed) {
		t.Fatalf("err = %v, want LAYOUT_FAILED", err)
	}
	if !reflect.DeepEqual(before, d.Snapshot()) {
		t.Error("diagram changed after a failed layout")
	}

	nan := algFunc(func(g *bridge.Graph) (*bridge.Graph, error) {
		g.Root.Children[0].Width = 0
		return g, nil
	})
	_, err = bridge.New(nan, config.DefaultTunables(), nil).Layout(context.Background(), d, bridge.Request{})
	if !errors.Is(err, errors.ErrCodeLayoutFailed) {
		t.Errorf("empty node size: err = %v, want LAYOUT_FAILED", err)
	}
}

func TestLayoutSubset(t *testing.T) {
	b := bpmntest.New("subset")
	b.At(bpmn.Element{ID: "a", Kind: bpmn.Task}, 500, 300)
	b.At(bpmn.Element{ID: "b", Kind: bpmn.Task}, 100, 100)
	b.At(bpmn.Element{ID: "c", Kind: bpmn.Task}, 900, 900)
	b.Seq("f1", "a", "b")
	b.Seq("f2", "b", "c")
	d := b.Build()

	br := bridge.New(layered.New(), config.DefaultTunables(), nil)
	res, err := br.LayoutSubset(context.Background(), d, []string{"a", "b"})
	if err != nil {
		t.Fatalf("LayoutSubset: %v", err)
	}
	if res.Routed != 1 {
		t.Errorf("routed = %d, want only the inner flow", res.Routed)
	}
	a, _ := d.Bounds("a")
	bb, _ := d.Bounds("b")
	if a.X != 100 || a.Y != 100 {
		t.Errorf("a at (%g,%g), want subset origin (100,100)", a.X, a.Y)
	}
	if bb.X <= a.Right() {
		t.Errorf("b not right of a: a %+v b %+v", a, bb)
	}
	if c, _ := d.Bounds("c"); c.X != 900 || c.Y != 900 {
		t.Errorf("c moved to (%g,%g)", c.X, c.Y)
	}
}

func ids(nodes []*bridge.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	return out
}
