// Package bridge converts a BPMN diagram into a hierarchical layout graph,
// runs a layered graph-drawing [Algorithm] on it and writes the result back.
//
// The graph mirrors container nesting: pools and expanded subprocesses are
// compound nodes, lanes are flattened into their pool with the lane index as
// a partition hint, and leaf nodes keep their current size. Algorithms report
// positions relative to the parent node, the way ELK does; [Built.Apply]
// turns them into absolute coordinates.
package bridge

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/bpmnlayout/pkg/bpmn"
	"github.com/matzehuels/bpmnlayout/pkg/config"
	"github.com/matzehuels/bpmnlayout/pkg/errors"
	"github.com/matzehuels/bpmnlayout/pkg/geom"
)

// Bridge runs an Algorithm over diagrams.
type Bridge struct {
	Algorithm Algorithm
	Tunables  config.Tunables
	Logger    *log.Logger
}

// New returns a bridge using alg. A nil logger discards output.
func New(alg Algorithm, t config.Tunables, logger *log.Logger) *Bridge {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Bridge{Algorithm: alg, Tunables: t, Logger: logger}
}

// Request selects what to lay out.
type Request struct {
	// Scope limits the layout to a participant or expanded subprocess.
	Scope string
	// PartitionByLane keeps lane members grouped in lane order.
	PartitionByLane bool
}

// Layout builds the graph for req, runs the algorithm and applies the
// result. An algorithm error is returned as LAYOUT_FAILED and leaves d
// untouched.
func (br *Bridge) Layout(ctx context.Context, d *bpmn.Diagram, req Request) (Applied, error) {
	built, err := Build(d, BuildOptions{
		Tunables:        br.Tunables,
		Scope:           req.Scope,
		PartitionByLane: req.PartitionByLane,
	})
	if err != nil {
		return Applied{}, err
	}
	if Count(built.Graph.Root) == 0 {
		return Applied{}, nil
	}

	out, err := br.run(ctx, d.ID, built.Graph)
	if err != nil {
		return Applied{}, err
	}
	built.Graph = out

	origin := geom.Pt(br.Tunables.OriginX, br.Tunables.OriginY)
	if req.Scope != "" {
		r, _ := d.Bounds(req.Scope)
		origin = geom.Pt(r.X, r.Y)
	}
	res := built.Apply(d, origin, br.Tunables.ResizeThreshold)
	br.Logger.Debug("layered layout applied", "algorithm", br.Algorithm.Name(),
		"scope", req.Scope, "moved", res.Moved, "resized", res.Resized, "routed", res.Routed)
	return res, nil
}

func (br *Bridge) run(ctx context.Context, diagramID string, g *Graph) (*Graph, error) {
	out, err := br.Algorithm.Layout(ctx, g)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLayoutFailed, err, "%s layout of %s", br.Algorithm.Name(), diagramID)
	}
	if out == nil || out.Root == nil {
		return nil, errors.New(errors.ErrCodeLayoutFailed, "%s returned no graph for %s", br.Algorithm.Name(), diagramID)
	}
	if err := checkResult(out.Root); err != nil {
		return nil, errors.Wrap(errors.ErrCodeLayoutFailed, err, "%s layout of %s", br.Algorithm.Name(), diagramID)
	}
	return out, nil
}

func checkResult(root *Node) error {
	var bad error
	Walk(root, geom.Point{}, func(n *Node, _ geom.Point) {
		if bad != nil {
			return
		}
		for _, v := range []float64{n.X, n.Y, n.Width, n.Height} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				bad = fmt.Errorf("node %s has non-finite geometry", n.ID)
				return
			}
		}
		if n.Width <= 0 || n.Height <= 0 {
			bad = fmt.Errorf("node %s has empty size %gx%g", n.ID, n.Width, n.Height)
		}
	})
	return bad
}
