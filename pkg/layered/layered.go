// Package layered is a pure Go hierarchical layered graph-drawing algorithm.
//
// The Engine implements [bridge.Algorithm]. Compound nodes are laid out
// bottom-up: the children of a compound are arranged first, the compound is
// sized to fit them plus its padding, and the result is then treated as a
// fixed-size box one level up.
//
// Each level runs the classic Sugiyama pipeline on the sibling nodes and
// their edges:
//
//  1. Back edges are reversed ([transform.BreakCycles]).
//  2. Nodes are assigned to left-to-right layers by longest path, and sinks
//     are pulled back next to their predecessors.
//  3. Edges spanning several layers are subdivided with channel nodes.
//  4. Barycenter sweeps reorder every layer, keeping the ordering with the
//     fewest crossings, followed by a transpose pass. Short runs that
//     still cross are then searched exhaustively.
//  5. Layers become columns; nodes are aligned with the median of their
//     predecessors and pushed apart where they would overlap.
//  6. Edges are routed orthogonally through their channel nodes.
//
// Results are deterministic: ties are always broken by declaration order.
//
// [transform.BreakCycles]: github.com/matzehuels/bpmnlayout/pkg/dag/transform
package layered

import (
	"context"
	"fmt"

	"github.com/matzehuels/bpmnlayout/pkg/dag"
	"github.com/matzehuels/bpmnlayout/pkg/dag/transform"
	"github.com/matzehuels/bpmnlayout/pkg/geom"
	"github.com/matzehuels/bpmnlayout/pkg/layout/bridge"
)

// DefaultChannel is the vertical room reserved for an edge passing through a
// layer.
const DefaultChannel = 10.0

// Engine is the built-in layered algorithm.
type Engine struct {
	// Channel is the height of the channel nodes long edges are routed
	// through. Zero means DefaultChannel.
	Channel float64
}

// New returns an Engine with default settings.
func New() *Engine { return &Engine{Channel: DefaultChannel} }

// Name implements bridge.Algorithm.
func (e *Engine) Name() string { return "layered" }

// Layout implements bridge.Algorithm. It fills in the positions of every node
// below g.Root, the sizes of compound nodes and the points of every edge, and
// returns g.
func (e *Engine) Layout(ctx context.Context, g *bridge.Graph) (*bridge.Graph, error) {
	if g == nil || g.Root == nil {
		return nil, fmt.Errorf("layered: empty graph")
	}
	opts := g.Options
	if opts.Sweeps <= 0 {
		opts.Sweeps = 8
	}
	channel := e.Channel
	if channel <= 0 {
		channel = DefaultChannel
	}
	if err := layoutCompound(ctx, g.Root, opts, channel); err != nil {
		return nil, err
	}
	return g, nil
}

func layoutCompound(ctx context.Context, n *bridge.Node, opts bridge.Options, channel float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, c := range n.Children {
		if c.IsCompound() {
			if err := layoutCompound(ctx, c, opts, channel); err != nil {
				return err
			}
		}
	}
	if len(n.Children) == 0 {
		return nil
	}

	lv, err := newLevel(n, opts, channel)
	if err != nil {
		return fmt.Errorf("layered: %s: %w", n.ID, err)
	}
	lv.order(opts)
	w, h := lv.place(opts)
	lv.route()

	pad := n.Padding
	for _, c := range n.Children {
		p := lv.pos[c.ID]
		c.X = pad.Left + p.X
		c.Y = pad.Top + p.Y
	}
	for _, e := range n.Edges {
		pts := lv.routes[e.ID]
		e.Points = e.Points[:0]
		for _, p := range pts {
			p.X += pad.Left
			p.Y += pad.Top
			e.Points = append(e.Points, p)
		}
	}
	n.Width = pad.Left + w + pad.Right
	n.Height = pad.Top + h + pad.Bottom
	return nil
}

// level is the flat layered graph of one compound node's children.
type level struct {
	g      *dag.DAG
	edges  []*bridge.Edge
	orders map[int][]string
	// pos is the top-left corner of every node, center the middle of
	// every node including channel nodes.
	pos    map[string]geom.Point
	center map[string]geom.Point
	colX   map[int]float64
	colW   map[int]float64
	routes map[string][]geom.Point
}

func newLevel(n *bridge.Node, opts bridge.Options, channel float64) (*level, error) {
	g := dag.New()
	for _, c := range n.Children {
		if err := g.AddNode(dag.Node{
			ID:        c.ID,
			Width:     c.Width,
			Height:    c.Height,
			Partition: partition(c, opts),
		}); err != nil {
			return nil, fmt.Errorf("node %q: %w", c.ID, err)
		}
	}
	for _, e := range n.Edges {
		if e.Source == e.Target {
			continue
		}
		if err := g.AddEdge(dag.Edge{ID: e.ID, From: e.Source, To: e.Target}); err != nil {
			return nil, fmt.Errorf("edge %q: %w", e.ID, err)
		}
	}

	transform.BreakCycles(g)
	transform.AssignLayers(g)
	transform.PullSinks(g)
	transform.Subdivide(g, channel)

	return &level{
		g:      g,
		edges:  n.Edges,
		orders: make(map[int][]string),
		pos:    make(map[string]geom.Point, g.NodeCount()),
		center: make(map[string]geom.Point, g.NodeCount()),
		colX:   make(map[int]float64),
		colW:   make(map[int]float64),
		routes: make(map[string][]geom.Point, len(n.Edges)),
	}, nil
}

func partition(n *bridge.Node, opts bridge.Options) int {
	if !opts.PartitionOrdering {
		return 0
	}
	return n.Partition
}
