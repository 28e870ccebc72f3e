package layout

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/bpmnlayout/pkg/errors"
	"github.com/matzehuels/bpmnlayout/pkg/history"
	"github.com/matzehuels/bpmnlayout/pkg/layout/strategy"
)

// Lane strategies.
const (
	// LanePreserve keeps lane members grouped in lane order.
	LanePreserve = "preserve"
	// LaneIgnore lets the layered algorithm order nodes freely; lanes are
	// still compacted afterwards.
	LaneIgnore = "ignore"
)

// Options configure one layout invocation. Every field is optional.
type Options struct {
	// LayoutStrategy forces a strategy instead of the selector's choice.
	LayoutStrategy string `json:"layoutStrategy,omitempty" yaml:"layoutStrategy,omitempty"`
	// LaneStrategy is LanePreserve (default) or LaneIgnore.
	LaneStrategy string `json:"laneStrategy,omitempty" yaml:"laneStrategy,omitempty"`
	// ScopeElementID restricts the layout to a participant or expanded
	// subprocess.
	ScopeElementID string `json:"scopeElementId,omitempty" yaml:"scopeElementId,omitempty"`
	// ElementIDs requests a partial layout of exactly these elements.
	ElementIDs []string `json:"elementIds,omitempty" yaml:"elementIds,omitempty"`
	// GridSnap is the snapping pitch in pixels; zero disables snapping.
	GridSnap int `json:"gridSnap,omitempty" yaml:"gridSnap,omitempty"`
	// PoolExpansion lets undersized pools grow to fit their content.
	// Nil means enabled.
	PoolExpansion *bool `json:"poolExpansion,omitempty" yaml:"poolExpansion,omitempty"`
	// ExpandSubprocesses expands collapsed subprocesses that have internal
	// flow. Event subprocesses are never expanded.
	ExpandSubprocesses bool `json:"expandSubprocesses,omitempty" yaml:"expandSubprocesses,omitempty"`
	// DryRun only runs the strategy selector.
	DryRun bool `json:"dryRun,omitempty" yaml:"dryRun,omitempty"`

	// Runtime options (not serialized)
	Logger  *log.Logger    `json:"-" yaml:"-"`
	History *history.Stack `json:"-" yaml:"-"`

	strategy  strategy.Strategy
	validated bool
}

// ValidateAndSetDefaults checks the options and fills in defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.LayoutStrategy != "" {
		st, err := strategy.Parse(o.LayoutStrategy)
		if err != nil {
			return err
		}
		o.strategy = st
		o.LayoutStrategy = string(st)
	}
	switch o.LaneStrategy {
	case "":
		o.LaneStrategy = LanePreserve
	case LanePreserve, LaneIgnore:
	default:
		return errors.New(errors.ErrCodeInvalidInput,
			"unknown lane strategy %q (want %s or %s)", o.LaneStrategy, LanePreserve, LaneIgnore)
	}
	if err := errors.ValidateGridPitch(o.GridSnap); err != nil {
		return err
	}
	if o.ScopeElementID != "" {
		if err := errors.ValidateID("scope element", o.ScopeElementID); err != nil {
			return err
		}
	}
	for _, id := range o.ElementIDs {
		if err := errors.ValidateID("element", id); err != nil {
			return err
		}
	}

	partial := len(o.ElementIDs) > 0
	switch {
	case partial && o.ScopeElementID != "":
		return errors.New(errors.ErrCodeInvalidInput, "elementIds and scopeElementId are mutually exclusive")
	case partial && o.strategy != "" && o.strategy != strategy.Subset:
		return errors.New(errors.ErrCodeInvalidStrategy,
			"elementIds require the %s strategy, got %s", strategy.Subset, o.strategy)
	case !partial && o.strategy == strategy.Subset:
		return errors.New(errors.ErrCodeInvalidInput, "the %s strategy needs elementIds", strategy.Subset)
	}

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// Partial reports whether the options request a partial layout.
func (o *Options) Partial() bool { return len(o.ElementIDs) > 0 }

// PoolExpansionEnabled resolves PoolExpansion.
func (o *Options) PoolExpansionEnabled() bool {
	return o.PoolExpansion == nil || *o.PoolExpansion
}

// Forced returns the strategy set by LayoutStrategy, if any.
func (o *Options) Forced() (strategy.Strategy, bool) {
	return o.strategy, o.strategy != ""
}
