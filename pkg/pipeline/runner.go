package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/bpmnlayout/pkg/bpmn"
	"github.com/matzehuels/bpmnlayout/pkg/cache"
	"github.com/matzehuels/bpmnlayout/pkg/config"
	"github.com/matzehuels/bpmnlayout/pkg/history"
	"github.com/matzehuels/bpmnlayout/pkg/layout"
	"github.com/matzehuels/bpmnlayout/pkg/layout/report"
	"github.com/matzehuels/bpmnlayout/pkg/layout/strategy"
	"github.com/matzehuels/bpmnlayout/pkg/observability"
)

const keyTypeLayout = "layout"

// Runner wraps a layout engine with a result cache.
// Both CLI and API use it so caching behaves the same everywhere.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can use the same Runner for different diagrams.
type Runner struct {
	Engine *layout.Engine
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	// TTL is the lifetime of cached results; zero means cache.TTLLayout.
	TTL time.Duration
}

// NewRunner creates a runner around eng.
// If eng is nil, an engine with default tunables is used.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(eng *layout.Engine, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if eng == nil {
		eng = layout.New(nil, config.DefaultTunables())
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Engine: eng,
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// cachedLayout is what the cache stores for one layout.
type cachedLayout struct {
	Strategy    strategy.Strategy   `json:"strategy"`
	Geometry    bpmn.Geometry       `json:"geometry"`
	Diagnostics *report.Diagnostics `json:"diagnostics"`
}

// Layout lays out d in place. A cached result for the same document and
// options is applied instead of running the engine.
func (r *Runner) Layout(ctx context.Context, d *bpmn.Diagram, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	var key string
	if opts.cacheable() {
		k, err := r.key(d, &opts)
		if err != nil {
			r.Logger.Warn("cannot compute cache key", "diagram", d.ID, "err", err)
		}
		key = k
	}
	if key != "" && !opts.Refresh {
		if res, ok := r.fromCache(ctx, d, key, &opts); ok {
			return res, nil
		}
	}

	lr, err := r.Engine.Layout(ctx, d, opts.Options)
	if err != nil {
		return nil, err
	}
	res := &Result{
		Strategy:    lr.Strategy,
		Diagnostics: lr.Diagnostics,
		RunID:       lr.RunID.String(),
		Duration:    lr.Duration,
	}
	if key != "" {
		r.store(ctx, key, cachedLayout{Strategy: lr.Strategy, Geometry: d.Snapshot(), Diagnostics: lr.Diagnostics})
	}
	return res, nil
}

// Recommend returns the strategy the selector picks for d without laying
// it out.
func (r *Runner) Recommend(ctx context.Context, d *bpmn.Diagram, elementIDs []string) (*strategy.Recommendation, error) {
	res, err := r.Layout(ctx, d, Options{Options: layout.Options{DryRun: true, ElementIDs: elementIDs}})
	if err != nil {
		return nil, err
	}
	return res.Diagnostics.RecommendedStrategy, nil
}

func (r *Runner) key(d *bpmn.Diagram, opts *Options) (string, error) {
	docHash, err := DocumentHash(d)
	if err != nil {
		return "", err
	}
	tunables, err := cache.HashJSON(r.Engine.Tunables)
	if err != nil {
		return "", err
	}
	return r.Keyer.LayoutKey(docHash, cache.LayoutKeyOpts{
		Strategy:           opts.LayoutStrategy,
		LaneStrategy:       opts.LaneStrategy,
		Scope:              opts.ScopeElementID,
		GridSnap:           opts.GridSnap,
		PoolExpansion:      opts.PoolExpansionEnabled(),
		ExpandSubprocesses: opts.ExpandSubprocesses,
		Algorithm:          r.Engine.Algorithm.Name(),
		Tunables:           tunables,
	}), nil
}

// fromCache applies a cached result to d. Backend and decode errors are
// logged and treated as misses.
func (r *Runner) fromCache(ctx context.Context, d *bpmn.Diagram, key string, opts *Options) (*Result, bool) {
	hooks := observability.Cache()
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache lookup failed", "err", err)
		return nil, false
	}
	if !hit {
		hooks.OnCacheMiss(ctx, keyTypeLayout)
		return nil, false
	}
	var entry cachedLayout
	if err := json.Unmarshal(data, &entry); err != nil || entry.Diagnostics == nil {
		r.Logger.Warn("dropping corrupt cache entry", "err", err)
		_ = r.Cache.Delete(ctx, key)
		hooks.OnCacheMiss(ctx, keyTypeLayout)
		return nil, false
	}
	hooks.OnCacheHit(ctx, keyTypeLayout)

	var cmd *history.GeometryCommand
	if opts.History != nil {
		cmd = history.Capture(d, "layout "+string(entry.Strategy))
	}
	d.Restore(entry.Geometry)
	if cmd != nil {
		opts.History.Record(cmd.Commit())
	}
	opts.Logger.Info("layout from cache", "diagram", d.ID, "strategy", entry.Strategy)
	return &Result{Strategy: entry.Strategy, Diagnostics: entry.Diagnostics, CacheHit: true}, true
}

func (r *Runner) store(ctx context.Context, key string, entry cachedLayout) {
	data, err := json.Marshal(entry)
	if err != nil {
		r.Logger.Warn("cannot encode layout for cache", "err", err)
		return
	}
	ttl := r.TTL
	if ttl == 0 {
		ttl = cache.TTLLayout
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache store failed", "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyTypeLayout, len(data))
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
