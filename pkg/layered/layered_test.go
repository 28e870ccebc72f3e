package layered

import (
	"context"
	"math"
	"testing"

	"github.com/matzehuels/bpmnlayout/pkg/dag"
	"github.com/matzehuels/bpmnlayout/pkg/geom"
	"github.com/matzehuels/bpmnlayout/pkg/layout/bridge"
)

func box(id string, w, h float64) *bridge.Node {
	return &bridge.Node{ID: id, Width: w, Height: h}
}

func edge(id, src, tgt string) *bridge.Edge {
	return &bridge.Edge{ID: id, Source: src, Target: tgt}
}

func graph(children []*bridge.Node, edges ...*bridge.Edge) *bridge.Graph {
	return &bridge.Graph{
		Root:    &bridge.Node{ID: bridge.RootID, Children: children, Edges: edges},
		Options: bridge.Options{NodeSpacing: 50, LayerSpacing: 60, Sweeps: 8},
	}
}

func rect(n *bridge.Node) geom.Rect { return geom.R(n.X, n.Y, n.Width, n.Height) }

func run(t *testing.T, g *bridge.Graph) *bridge.Graph {
	t.Helper()
	out, err := New().Layout(context.Background(), g)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	return out
}

func TestLayoutChain(t *testing.T) {
	nodes := []*bridge.Node{box("start", 36, 36), box("t1", 100, 80), box("t2", 100, 80), box("end", 36, 36)}
	g := run(t, graph(nodes,
		edge("f1", "start", "t1"), edge("f2", "t1", "t2"), edge("f3", "t2", "end")))

	for i := 1; i < len(nodes); i++ {
		prev, cur := nodes[i-1], nodes[i]
		if cur.X <= prev.X+prev.Width {
			t.Errorf("%s.X = %g, want > %g", cur.ID, cur.X, prev.X+prev.Width)
		}
		if dy := math.Abs(rect(cur).CenterY() - rect(prev).CenterY()); dy > geom.Epsilon {
			t.Errorf("%s and %s centers differ by %g", prev.ID, cur.ID, dy)
		}
	}
	for _, e := range g.Root.Edges {
		if len(e.Points) != 2 {
			t.Errorf("edge %s has %d points, want a straight route", e.ID, len(e.Points))
		}
	}
}

func TestLayoutSplitMerge(t *testing.T) {
	nodes := []*bridge.Node{
		box("start", 36, 36), box("split", 50, 50), box("a", 100, 80),
		box("b", 100, 80), box("join", 50, 50), box("end", 36, 36),
	}
	edges := []*bridge.Edge{
		edge("f1", "start", "split"), edge("f2", "split", "a"), edge("f3", "split", "b"),
		edge("f4", "a", "join"), edge("f5", "b", "join"), edge("f6", "join", "end"),
	}
	run(t, graph(nodes, edges...))

	for i := range nodes {
		for j := i + 1; j < len(nodes); j++ {
			if rect(nodes[i]).Overlaps(rect(nodes[j])) {
				t.Errorf("%s overlaps %s", nodes[i].ID, nodes[j].ID)
			}
		}
	}
	a, b := nodes[2], nodes[3]
	if math.Abs(a.X-b.X) > geom.Epsilon {
		t.Errorf("branches in different columns: a.X=%g b.X=%g", a.X, b.X)
	}
	if math.Abs(rect(a).CenterY()-rect(nodes[1]).CenterY()) > geom.Epsilon {
		t.Errorf("first branch not on the gateway row")
	}
	for _, e := range edges {
		if !geom.IsOrthogonal(e.Points) {
			t.Errorf("edge %s not orthogonal: %v", e.ID, e.Points)
		}
	}
}

func TestLayoutRoutesEndOnPerimeter(t *testing.T) {
	nodes := []*bridge.Node{box("a", 100, 80), box("b", 100, 80), box("c", 36, 36)}
	edges := []*bridge.Edge{edge("f1", "a", "b"), edge("f2", "a", "c"), edge("f3", "b", "c")}
	run(t, graph(nodes, edges...))

	byID := map[string]*bridge.Node{"a": nodes[0], "b": nodes[1], "c": nodes[2]}
	for _, e := range edges {
		if len(e.Points) < 2 {
			t.Fatalf("edge %s has no route", e.ID)
		}
		first, last := e.Points[0], e.Points[len(e.Points)-1]
		if !rect(byID[e.Source]).OnPerimeter(first, 1) {
			t.Errorf("edge %s starts at %v, off %s", e.ID, first, e.Source)
		}
		if !rect(byID[e.Target]).OnPerimeter(last, 1) {
			t.Errorf("edge %s ends at %v, off %s", e.ID, last, e.Target)
		}
	}
}

func TestLayoutCycle(t *testing.T) {
	nodes := []*bridge.Node{box("a", 100, 80), box("b", 100, 80), box("c", 100, 80)}
	edges := []*bridge.Edge{edge("f1", "a", "b"), edge("f2", "b", "c"), edge("back", "c", "a")}
	run(t, graph(nodes, edges...))

	if !(nodes[0].X < nodes[1].X && nodes[1].X < nodes[2].X) {
		t.Errorf("cycle not laid out left to right: %g %g %g", nodes[0].X, nodes[1].X, nodes[2].X)
	}
	back := edges[2]
	if len(back.Points) < 2 {
		t.Fatalf("back edge has no route")
	}
	if first := back.Points[0]; !rect(nodes[2]).OnPerimeter(first, 1) {
		t.Errorf("back edge starts at %v, want on c", first)
	}
}

func TestLayoutSelfLoopIgnored(t *testing.T) {
	nodes := []*bridge.Node{box("a", 100, 80)}
	loop := edge("loop", "a", "a")
	run(t, graph(nodes, loop))
	if len(loop.Points) != 0 {
		t.Errorf("self loop got points %v", loop.Points)
	}
}

func TestLayoutCompoundSizedToContent(t *testing.T) {
	inner := []*bridge.Node{box("t1", 100, 80), box("t2", 100, 80)}
	pool := &bridge.Node{
		ID:       "pool",
		Padding:  bridge.Padding{Top: 30, Left: 60, Bottom: 30, Right: 30},
		Children: inner,
		Edges:    []*bridge.Edge{edge("f1", "t1", "t2")},
	}
	run(t, graph([]*bridge.Node{pool}))

	if inner[0].X != 60 || inner[0].Y != 30 {
		t.Errorf("first child at (%g,%g), want padding offset (60,30)", inner[0].X, inner[0].Y)
	}
	wantW := 60 + 100 + 60 + 100 + 30.0
	if pool.Width != wantW {
		t.Errorf("pool width = %g, want %g", pool.Width, wantW)
	}
	if pool.Height != 30+80+30 {
		t.Errorf("pool height = %g, want 140", pool.Height)
	}
}

func TestLayoutPartitionOrdering(t *testing.T) {
	start := box("start", 36, 36)
	low := box("low", 100, 80)
	low.Partition = 1
	high := box("high", 100, 80)
	g := graph([]*bridge.Node{start, low, high}, edge("f1", "start", "low"), edge("f2", "start", "high"))
	g.Options.PartitionOrdering = true
	run(t, g)

	if high.Y >= low.Y {
		t.Errorf("partition 0 node at y=%g not above partition 1 node at y=%g", high.Y, low.Y)
	}
}

func TestLayoutAvoidsCrossings(t *testing.T) {
	// a1 feeds b2 and a2 feeds b1; declaration order alone would cross.
	nodes := []*bridge.Node{
		box("a1", 100, 80), box("a2", 100, 80), box("b1", 100, 80), box("b2", 100, 80),
	}
	run(t, graph(nodes, edge("f1", "a1", "b2"), edge("f2", "a2", "b1")))

	a1Above := nodes[0].Y < nodes[1].Y
	b2Above := nodes[3].Y < nodes[2].Y
	if a1Above != b2Above {
		t.Errorf("edges cross: a1.Y=%g a2.Y=%g b1.Y=%g b2.Y=%g",
			nodes[0].Y, nodes[1].Y, nodes[2].Y, nodes[3].Y)
	}
}

func TestLayoutErrors(t *testing.T) {
	if _, err := New().Layout(context.Background(), nil); err == nil {
		t.Error("expected error for nil graph")
	}

	g := graph([]*bridge.Node{box("a", 10, 10)}, edge("f1", "a", "missing"))
	if _, err := New().Layout(context.Background(), g); err == nil {
		t.Error("expected error for dangling edge")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New().Layout(ctx, graph([]*bridge.Node{box("a", 10, 10)})); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestLayoutDeterministic(t *testing.T) {
	mk := func() *bridge.Graph {
		return graph(
			[]*bridge.Node{box("s", 36, 36), box("x", 50, 50), box("a", 100, 80), box("b", 100, 80), box("e", 36, 36)},
			edge("f1", "s", "x"), edge("f2", "x", "a"), edge("f3", "x", "b"),
			edge("f4", "a", "e"), edge("f5", "b", "e"),
		)
	}
	g1, g2 := run(t, mk()), run(t, mk())
	for i, n := range g1.Root.Children {
		m := g2.Root.Children[i]
		if n.X != m.X || n.Y != m.Y {
			t.Errorf("%s placed at (%g,%g) then (%g,%g)", n.ID, n.X, n.Y, m.X, m.Y)
		}
	}
}

func TestExhaustRemovesCrossings(t *testing.T) {
	g := dag.New()
	for _, id := range []string{"a", "b", "c"} {
		g.AddNode(dag.Node{ID: id, Layer: 0})
	}
	for _, id := range []string{"x", "y", "z"} {
		g.AddNode(dag.Node{ID: id, Layer: 1})
	}
	g.AddEdge(dag.Edge{ID: "e1", From: "a", To: "z"})
	g.AddEdge(dag.Edge{ID: "e2", From: "b", To: "y"})
	g.AddEdge(dag.Edge{ID: "e3", From: "c", To: "x"})

	lv := &level{g: g, orders: map[int][]string{0: {"a", "b", "c"}, 1: {"x", "y", "z"}}}
	if c := dag.CountCrossings(g, lv.orders); c != 3 {
		t.Fatalf("initial crossings = %d, want 3", c)
	}
	lv.exhaust([]int{0, 1})
	if c := dag.CountCrossings(g, lv.orders); c != 0 {
		t.Errorf("crossings after exhaust = %d, want 0 (orders %v)", c, lv.orders)
	}
}

func TestExhaustKeepsPartitionsApart(t *testing.T) {
	g := dag.New()
	g.AddNode(dag.Node{ID: "a", Layer: 0, Partition: 0})
	g.AddNode(dag.Node{ID: "b", Layer: 0, Partition: 1})
	g.AddNode(dag.Node{ID: "x", Layer: 1, Partition: 0})
	g.AddNode(dag.Node{ID: "y", Layer: 1, Partition: 1})
	g.AddEdge(dag.Edge{ID: "e1", From: "a", To: "y"})
	g.AddEdge(dag.Edge{ID: "e2", From: "b", To: "x"})

	lv := &level{g: g, orders: map[int][]string{0: {"a", "b"}, 1: {"x", "y"}}}
	lv.exhaust([]int{0, 1})
	if lv.orders[0][0] != "a" || lv.orders[1][0] != "x" {
		t.Errorf("partition order changed: %v", lv.orders)
	}
}
