// Package layout is the automatic layout engine for BPMN diagrams.
//
// An [Engine] picks a strategy (or takes the one forced by [Options]),
// positions the flow nodes either directly for trivial shapes or through
// the layered algorithm behind [bridge.Bridge], and then runs the post
// layout passes of package passes. Partial layouts plan their element set
// with package incremental and rebuild only the edges touching it.
//
// Layout works on a copy of the diagram and writes the result back only on
// success, so a failed invocation leaves the diagram as it was.
//
//	eng := layout.New(nil, config.DefaultTunables())
//	res, err := eng.Layout(ctx, d, layout.Options{GridSnap: 10})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Diagnostics.CrossingFlows)
package layout

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/bpmnlayout/pkg/bpmn"
	"github.com/matzehuels/bpmnlayout/pkg/config"
	"github.com/matzehuels/bpmnlayout/pkg/errors"
	"github.com/matzehuels/bpmnlayout/pkg/history"
	"github.com/matzehuels/bpmnlayout/pkg/layered"
	"github.com/matzehuels/bpmnlayout/pkg/layout/bridge"
	"github.com/matzehuels/bpmnlayout/pkg/layout/direpair"
	"github.com/matzehuels/bpmnlayout/pkg/layout/incremental"
	"github.com/matzehuels/bpmnlayout/pkg/layout/passes"
	"github.com/matzehuels/bpmnlayout/pkg/layout/report"
	"github.com/matzehuels/bpmnlayout/pkg/layout/strategy"
	"github.com/matzehuels/bpmnlayout/pkg/observability"
)

// Engine lays out diagrams. It holds no per-diagram state and may be used
// for different diagrams concurrently; calls for the same diagram must be
// serialized by the caller.
type Engine struct {
	Algorithm bridge.Algorithm
	Tunables  config.Tunables
	// Router re-routes stale connections; nil uses the orthogonal router.
	Router passes.Router
}

// New returns an engine running alg. A nil alg uses the built-in layered
// algorithm.
func New(alg bridge.Algorithm, t config.Tunables) *Engine {
	if alg == nil {
		alg = layered.New()
	}
	return &Engine{Algorithm: alg, Tunables: t}
}

// Result is the outcome of one layout invocation.
type Result struct {
	RunID       uuid.UUID
	Strategy    strategy.Strategy
	Diagnostics *report.Diagnostics
	Duration    time.Duration
}

// Layout lays out d according to opts. Invalid options or element ids are
// rejected before anything changes; a layered algorithm failure is
// returned as LAYOUT_FAILED with d unchanged.
func (e *Engine) Layout(ctx context.Context, d *bpmn.Diagram, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if err := e.checkTargets(d, &opts); err != nil {
		return nil, err
	}
	res := &Result{RunID: uuid.New(), Diagnostics: report.New()}
	logger := opts.Logger.With("diagram", d.ID, "run", res.RunID.String()[:8])

	if opts.DryRun {
		rec := strategy.Select(d, opts.ElementIDs)
		res.Diagnostics.RecommendedStrategy = &rec
		logger.Debug("dry run", "strategy", rec.Strategy, "confidence", rec.Confidence)
		return res, nil
	}

	hooks := observability.Layout()
	start := time.Now()
	work := d.Clone()
	repair := direpair.Repair(work, e.Tunables)
	expanded := 0
	if opts.ExpandSubprocesses && !opts.Partial() {
		expanded = ExpandSubprocesses(work, e.Tunables)
	}
	st := e.choose(work, &opts)
	res.Strategy = st

	hooks.OnLayoutStart(ctx, d.ID, string(st), len(work.FlowNodes()))
	diag, err := e.run(ctx, work, st, &opts)
	res.Duration = time.Since(start)
	hooks.OnLayoutComplete(ctx, d.ID, string(st), res.Duration, err)
	if err != nil {
		logger.Error("layout failed", "strategy", st, "err", err)
		return nil, err
	}

	diag.Strategy = st
	diag.ShapesAdded = repair.ShapesAdded
	diag.ConnectionsAdded = repair.ConnectionsAdded
	diag.DuplicatesRemoved = repair.DuplicatesRemoved
	diag.SubprocessesExpanded = expanded
	res.Diagnostics = diag

	var cmd *history.GeometryCommand
	if opts.History != nil {
		cmd = history.Capture(d, "layout "+string(st))
	}
	d.Restore(work.Snapshot())
	if cmd != nil {
		opts.History.Record(cmd.Commit())
	}

	logger.Info("layout complete", "strategy", st, "duration", res.Duration,
		"crossings", diag.CrossingFlows, "repaired", repair.Changed())
	return res, nil
}

// checkTargets validates the ids opts refers to against d.
func (e *Engine) checkTargets(d *bpmn.Diagram, opts *Options) error {
	if opts.ScopeElementID != "" {
		sc, ok := d.Element(opts.ScopeElementID)
		if !ok {
			return errors.New(errors.ErrCodeNotFound, "scope element %s not found", opts.ScopeElementID)
		}
		if !bridge.IsScopeContainer(sc) {
			return errors.New(errors.ErrCodeInvalidScope,
				"scope element %s is a %s, not a participant or expanded subprocess", sc.ID, sc.Kind)
		}
	}
	if opts.Partial() {
		if _, err := incremental.NewPlan(d, opts.ElementIDs); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) choose(d *bpmn.Diagram, opts *Options) strategy.Strategy {
	if opts.Partial() {
		return strategy.Subset
	}
	if st, ok := opts.Forced(); ok {
		return st
	}
	return strategy.Select(d, nil).Strategy
}

// run lays out work in place and returns the diagnostics of the passes.
func (e *Engine) run(ctx context.Context, work *bpmn.Diagram, st strategy.Strategy, opts *Options) (*report.Diagnostics, error) {
	s := passes.NewState(work, e.Tunables)
	s.Logger = opts.Logger
	s.GridSnap = opts.GridSnap
	s.PoolExpansion = opts.PoolExpansionEnabled()
	if e.Router != nil {
		s.Router = e.Router
	}
	br := bridge.New(e.Algorithm, e.Tunables, opts.Logger)
	pipeline := passes.Full()

	switch st {
	case strategy.Subset:
		plan, err := incremental.NewPlan(work, opts.ElementIDs)
		if err != nil {
			return nil, err
		}
		s.Scope, s.Skip = plan.Scope(), plan.Skip()
		s.Report.AddPinnedSkipped(plan.PinnedSkipped...)
		if len(plan.Members) > 0 {
			if _, err := br.LayoutSubset(ctx, work, plan.Members); err != nil {
				return nil, err
			}
		}
		pipeline = incremental.Pipeline()

	case strategy.Deterministic:
		e.clearPins(work, opts.ScopeElementID, s)
		Deterministic(work, e.Tunables, opts.ScopeElementID)

	default:
		e.clearPins(work, opts.ScopeElementID, s)
		_, err := br.Layout(ctx, work, bridge.Request{
			Scope:           opts.ScopeElementID,
			PartitionByLane: opts.LaneStrategy == LanePreserve,
		})
		if err != nil {
			return nil, err
		}
	}

	if err := passes.Run(ctx, s, pipeline); err != nil {
		return nil, err
	}
	return s.Report, nil
}

// clearPins unpins everything a full or scoped layout may move and, for a
// scoped layout, limits the passes to the scope's subtree.
func (e *Engine) clearPins(work *bpmn.Diagram, scope string, s *passes.State) {
	if scope == "" {
		incremental.ClearPins(work)
		return
	}
	s.Scope = map[string]bool{scope: true}
	for _, c := range work.Descendants(scope) {
		s.Scope[c.ID] = true
		c.Pinned = false
	}
	if sc, ok := work.Element(scope); ok {
		sc.Pinned = false
	}
}
