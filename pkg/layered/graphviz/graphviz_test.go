package graphviz

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/bpmnlayout/pkg/geom"
	"github.com/matzehuels/bpmnlayout/pkg/layout/bridge"
)

func level() *bridge.Node {
	return &bridge.Node{
		ID: bridge.RootID,
		Children: []*bridge.Node{
			{ID: "a", Width: 100, Height: 80},
			{ID: "b", Width: 100, Height: 80},
		},
		Edges: []*bridge.Edge{
			{ID: "f1", Source: "a", Target: "b"},
			{ID: "loop", Source: "b", Target: "b"},
		},
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(level(), bridge.Options{NodeSpacing: 72, LayerSpacing: 36})

	for _, want := range []string{
		"rankdir=LR;",
		"splines=ortho;",
		"nodesep=1.0000;",
		"ranksep=0.5000;",
		`"a" [width=1.3889, height=1.1111];`,
		`"a" -> "b" [id="f1"];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "loop") {
		t.Errorf("self loop should be left out:\n%s", dot)
	}
}

func TestParseLayout(t *testing.T) {
	data := []byte(`{
		"bb": "0,0,300,100",
		"objects": [
			{"_gvid": 0, "name": "a", "pos": "50,60"},
			{"_gvid": 1, "name": "b", "pos": "250,60"}
		],
		"edges": [
			{"_gvid": 0, "tail": 0, "head": 1, "pos": "e,200,60 100,60 133,60 167,60 190,60"}
		]
	}`)

	res, err := parseLayout(data, level())
	if err != nil {
		t.Fatalf("parseLayout: %v", err)
	}
	if got := res.pos["a"]; !got.Eq(geom.Pt(0, 0)) {
		t.Errorf("a at %v, want (0,0)", got)
	}
	if got := res.pos["b"]; !got.Eq(geom.Pt(200, 0)) {
		t.Errorf("b at %v, want (200,0)", got)
	}
	if res.width != 300 || res.height != 80 {
		t.Errorf("size = %gx%g, want 300x80", res.width, res.height)
	}
	route := res.routes["f1"]
	if len(route) != 2 || !route[0].Eq(geom.Pt(100, 40)) || !route[1].Eq(geom.Pt(200, 40)) {
		t.Errorf("route = %v, want [(100,40) (200,40)]", route)
	}
}

func TestParseLayoutMissingNode(t *testing.T) {
	data := []byte(`{"bb": "0,0,100,100", "objects": [{"name": "a", "pos": "50,50"}]}`)
	if _, err := parseLayout(data, level()); err == nil {
		t.Error("expected error for node missing from layout")
	}
}

func TestParseSpline(t *testing.T) {
	tests := []struct {
		pos  string
		want int
	}{
		{"0,0 1,0 2,0 3,0", 2},
		{"e,10,0 0,0 1,0 2,0 3,0 4,0 5,0 6,0", 4},
		{"s,0,0 e,9,9 1,1 2,2 3,3 4,4", 4},
	}
	for _, tt := range tests {
		pts, err := parseSpline(tt.pos)
		if err != nil {
			t.Fatalf("parseSpline(%q): %v", tt.pos, err)
		}
		if len(pts) != tt.want {
			t.Errorf("parseSpline(%q) = %v, want %d points", tt.pos, pts, tt.want)
		}
	}
	if _, err := parseSpline("e,1,1"); err == nil {
		t.Error("expected error without control points")
	}
}

func TestOrthogonalize(t *testing.T) {
	got := orthogonalize([]geom.Point{geom.Pt(0, 0), geom.Pt(100, 50)})
	if !geom.IsOrthogonal(got) {
		t.Errorf("orthogonalize = %v, not orthogonal", got)
	}
	if len(got) != 4 {
		t.Errorf("orthogonalize = %v, want a 4 point jog", got)
	}
}

func TestEngineLayout(t *testing.T) {
	g := &bridge.Graph{Root: level(), Options: bridge.Options{NodeSpacing: 50, LayerSpacing: 60}}
	out, err := New().Layout(context.Background(), g)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	a, b := out.Root.Children[0], out.Root.Children[1]
	if b.X < a.X+a.Width {
		t.Errorf("b.X = %g, want right of a (%g)", b.X, a.X+a.Width)
	}
	if out.Root.Width < b.X+b.Width {
		t.Errorf("root width %g does not cover b", out.Root.Width)
	}
}
