// Package passes holds the post-layout geometry passes.
//
// Every pass takes the per-diagram [State] and mutates the diagram in
// place. Passes only touch the elements and flows they are concerned with,
// and only those in scope: a full layout has no scope and may move
// anything; a partial layout names the elements it may move, and flows are
// in scope when at least one endpoint is.
//
// [Full] returns the passes in the order a layout runs them: node geometry
// first, then routing, then the passes that only measure or decorate the
// final geometry.
package passes

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/bpmnlayout/pkg/bpmn"
	"github.com/matzehuels/bpmnlayout/pkg/config"
	"github.com/matzehuels/bpmnlayout/pkg/geom"
	"github.com/matzehuels/bpmnlayout/pkg/layout/report"
	"github.com/matzehuels/bpmnlayout/pkg/observability"
)

// State is the layout context of one diagram, threaded through every pass.
type State struct {
	Diagram  *bpmn.Diagram
	Tunables config.Tunables
	Logger   *log.Logger
	Router   Router
	Report   *report.Diagnostics

	// Scope holds the elements a partial layout may move. Nil means every
	// element.
	Scope map[string]bool
	// Skip holds elements that must not move, such as pinned elements
	// named in a partial layout.
	Skip map[string]bool

	// GridSnap is the snapping pitch; zero disables snapping.
	GridSnap int
	// PoolExpansion lets passes grow pools to fit their content.
	PoolExpansion bool

	// HappyPath holds the flows on the main path, filled in by the happy
	// path pass.
	HappyPath map[string]bool
}

// NewState returns a full-layout state for d with default collaborators.
func NewState(d *bpmn.Diagram, t config.Tunables) *State {
	return &State{
		Diagram:       d,
		Tunables:      t,
		Logger:        log.NewWithOptions(io.Discard, log.Options{}),
		Router:        OrthogonalRouter{Margin: t.LoopbackMargin},
		Report:        report.New(),
		PoolExpansion: true,
	}
}

// Partial reports whether the state is scoped to a subset of elements.
func (s *State) Partial() bool { return s.Scope != nil }

// Movable reports whether a pass may change the bounds of element id.
func (s *State) Movable(id string) bool {
	if s.Skip[id] {
		return false
	}
	return s.Scope == nil || s.Scope[id]
}

// FlowInScope reports whether a pass may change the route of f.
func (s *State) FlowInScope(f *bpmn.Flow) bool {
	return s.Scope == nil || s.Scope[f.Source] || s.Scope[f.Target]
}

// Neighbor reports whether f has exactly one endpoint in a partial scope.
func (s *State) Neighbor(f *bpmn.Flow) bool {
	return s.Scope != nil && s.Scope[f.Source] != s.Scope[f.Target]
}

// Pass is one step of the post-layout pipeline.
type Pass interface {
	Name() string
	Run(ctx context.Context, s *State) error
}

type passFunc struct {
	name string
	fn   func(ctx context.Context, s *State) error
}

func (p passFunc) Name() string                            { return p.name }
func (p passFunc) Run(ctx context.Context, s *State) error { return p.fn(ctx, s) }

// Func wraps fn as a named pass.
func Func(name string, fn func(ctx context.Context, s *State) error) Pass {
	return passFunc{name: name, fn: fn}
}

// Pass names, in pipeline order.
const (
	NameContainers   = "containers"
	NameHappyPath    = "happy-path"
	NameBoundary     = "boundary"
	NameRefit        = "refit"
	NameLanes        = "lanes"
	NameGrid         = "grid"
	NameRoute        = "route"
	NameMessageFlows = "message-flows"
	NameLoopback     = "loopback"
	NameBundle       = "bundle"
	NameCrossings    = "crossings"
	NameLabels       = "labels"
	NameMetrics      = "metrics"
)

// Full returns the complete pass pipeline.
func Full() []Pass {
	return []Pass{
		Func(NameContainers, FitContainers),
		Func(NameHappyPath, StackBranches),
		Func(NameBoundary, PlaceAttached),
		// Stacking and boundary placement move nodes; containers fit again.
		Func(NameRefit, FitContainers),
		Func(NameLanes, CompactLanes),
		Func(NameGrid, SnapToGrid),
		Func(NameRoute, RouteConnections),
		Func(NameMessageFlows, RouteMessageFlows),
		Func(NameLoopback, RouteLoopbacks),
		Func(NameBundle, BundleParallel),
		Func(NameCrossings, DetectCrossings),
		Func(NameLabels, PlaceLabels),
		Func(NameMetrics, MeasureQuality),
	}
}

// Insert returns passes with p added right after the pass named after.
func Insert(list []Pass, after string, p Pass) []Pass {
	out := make([]Pass, 0, len(list)+1)
	for _, q := range list {
		out = append(out, q)
		if q.Name() == after {
			out = append(out, p)
		}
	}
	return out
}

// Run executes passes in order. Each pass is timed, logged at debug level
// and reported to the layout hooks. The first error stops the pipeline.
func Run(ctx context.Context, s *State, list []Pass) error {
	hooks := observability.Layout()
	for _, p := range list {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()
		if err := p.Run(ctx, s); err != nil {
			return err
		}
		d := time.Since(start)
		hooks.OnPassComplete(ctx, p.Name(), d)
		s.Logger.Debug("pass complete", "pass", p.Name(), "duration", d)
	}
	return nil
}

// MoveTree translates element id together with everything that moves with
// it: nested elements, boundary events of any of them, and the routes of
// flows running entirely inside the moved set.
func MoveTree(d *bpmn.Diagram, id string, dx, dy float64) {
	moveSet(d, []string{id}, dx, dy)
}

// moveSet is MoveTree for several roots moved together, so flows between
// them keep their routes.
func moveSet(d *bpmn.Diagram, ids []string, dx, dy float64) {
	if (dx == 0 && dy == 0) || len(ids) == 0 {
		return
	}
	moved := make(map[string]bool)
	for _, id := range ids {
		moved[id] = true
		for _, c := range d.Descendants(id) {
			moved[c.ID] = true
		}
	}
	for mid := range moved {
		for _, be := range d.BoundaryEvents(mid) {
			moved[be.ID] = true
		}
	}
	for _, e := range d.Elements() {
		if moved[e.ID] {
			d.Translate(e.ID, dx, dy)
		}
	}
	for _, f := range d.Flows() {
		if moved[f.Source] && moved[f.Target] {
			pts := d.Waypoints(f.ID)
			for i := range pts {
				pts[i] = pts[i].Add(dx, dy)
			}
			d.SetWaypoints(f.ID, pts)
		}
	}
}

// obstacles returns the bounds of the flow nodes sharing parent with id,
// boundary events excluded.
func obstacles(d *bpmn.Diagram, id string) []geom.Rect {
	e, ok := d.Element(id)
	if !ok {
		return nil
	}
	var out []geom.Rect
	for _, o := range d.Elements() {
		if o.ID == id || o.Parent != e.Parent || o.Kind == bpmn.BoundaryEvent {
			continue
		}
		if !o.Kind.IsFlowNode() && o.Kind != bpmn.DataObjectReference && o.Kind != bpmn.DataStoreReference {
			continue
		}
		if r, ok := d.Bounds(o.ID); ok {
			out = append(out, r)
		}
	}
	return out
}

// clearBelow moves id vertically so its top is at least minTop and it
// overlaps none of its siblings, pushing it further down past any sibling
// in the way. It returns the vertical offset applied.
func clearBelow(d *bpmn.Diagram, id string, minTop, gap float64) float64 {
	r, ok := d.Bounds(id)
	if !ok {
		return 0
	}
	next := r
	if next.Y < minTop {
		next.Y = minTop
	}
	others := obstacles(d, id)
	for changed := true; changed; {
		changed = false
		for _, o := range others {
			if next.Overlaps(o) {
				next.Y = o.Bottom() + gap
				changed = true
			}
		}
	}
	dy := next.Y - r.Y
	MoveTree(d, id, 0, dy)
	return dy
}
