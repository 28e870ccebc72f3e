// Package graphviz is a layered graph-drawing algorithm backed by Graphviz
// dot, running in-process through go-graphviz.
//
// Every compound node is laid out as its own flat digraph, bottom-up, with
// rankdir=LR and orthogonal splines. Node boxes are fixed-size so dot keeps
// the sizes handed to it. The layout is read back from dot's JSON output and
// converted to parent-relative, top-left based coordinates with the y axis
// pointing down.
//
// Partition hints are not passed to dot; lane bands are restored by the lane
// compaction pass that runs afterwards.
package graphviz

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/bpmnlayout/pkg/geom"
	"github.com/matzehuels/bpmnlayout/pkg/layout/bridge"
)

// jsonFormat is dot's JSON output, which carries positions in points.
const jsonFormat = graphviz.Format("json")

// Engine runs Graphviz dot.
type Engine struct{}

// New returns a Graphviz engine.
func New() *Engine { return &Engine{} }

// Name implements bridge.Algorithm.
func (e *Engine) Name() string { return "graphviz" }

// Layout implements bridge.Algorithm.
func (e *Engine) Layout(ctx context.Context, g *bridge.Graph) (*bridge.Graph, error) {
	if g == nil || g.Root == nil {
		return nil, fmt.Errorf("graphviz: empty graph")
	}
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	if err := layoutCompound(ctx, gv, g.Root, g.Options); err != nil {
		return nil, err
	}
	return g, nil
}

func layoutCompound(ctx context.Context, gv *graphviz.Graphviz, n *bridge.Node, opts bridge.Options) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, c := range n.Children {
		if c.IsCompound() {
			if err := layoutCompound(ctx, gv, c, opts); err != nil {
				return err
			}
		}
	}
	if len(n.Children) == 0 {
		return nil
	}

	out, err := render(ctx, gv, ToDOT(n, opts))
	if err != nil {
		return fmt.Errorf("%s: %w", n.ID, err)
	}
	res, err := parseLayout(out, n)
	if err != nil {
		return fmt.Errorf("%s: %w", n.ID, err)
	}

	pad := n.Padding
	for _, c := range n.Children {
		p := res.pos[c.ID]
		c.X = pad.Left + p.X
		c.Y = pad.Top + p.Y
	}
	for _, e := range n.Edges {
		e.Points = e.Points[:0]
		for _, p := range res.routes[e.ID] {
			e.Points = append(e.Points, p.Add(pad.Left, pad.Top))
		}
	}
	n.Width = pad.Left + res.width + pad.Right
	n.Height = pad.Top + res.height + pad.Bottom
	return nil
}

func render(ctx context.Context, gv *graphviz.Graphviz, dot string) ([]byte, error) {
	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, jsonFormat, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

// result is one level's layout, normalized so the drawing starts at 0,0.
type result struct {
	pos           map[string]geom.Point
	routes        map[string][]geom.Point
	width, height float64
}
