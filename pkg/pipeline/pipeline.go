// Package pipeline runs the layout engine for the CLI and the HTTP API.
//
// It adds what an application around the engine needs and the engine
// itself does not care about: document parsing, a result cache, and an
// in-memory workspace of diagrams with edit history and batch rollback.
// Centralizing this keeps the CLI and the server behaving the same.
//
// # Usage
//
// Lay out a single document with caching:
//
//	runner := pipeline.NewRunner(layout.New(nil, tunables), c, nil, logger)
//	d, err := pipeline.Parse(pipeline.Source{Path: "order.json"})
//	if err != nil {
//	    return err
//	}
//	res, err := runner.Layout(ctx, d, pipeline.Options{})
//
// Keep diagrams around and edit them:
//
//	ws := pipeline.NewWorkspace(runner)
//	id, _ := ws.Add(d)
//	_ = ws.Move(id, "task_1", 0, 40)
//	_, err = ws.Layout(ctx, id, pipeline.Options{})
package pipeline

import (
	"time"

	"github.com/matzehuels/bpmnlayout/pkg/layout"
	"github.com/matzehuels/bpmnlayout/pkg/layout/report"
	"github.com/matzehuels/bpmnlayout/pkg/layout/strategy"
)

// Options configure one layout run through the pipeline.
type Options struct {
	layout.Options

	// Refresh skips the cache lookup and overwrites the stored result.
	Refresh bool `json:"refresh,omitempty" yaml:"refresh,omitempty"`
}

// cacheable reports whether results for opts go through the cache. Dry
// runs and partial layouts never do.
func (o *Options) cacheable() bool {
	return !o.DryRun && !o.Partial()
}

// Result is the outcome of a layout run.
type Result struct {
	// DiagramID identifies the diagram in a workspace.
	DiagramID string `json:"diagramId,omitempty"`

	Strategy    strategy.Strategy   `json:"strategy,omitempty"`
	Diagnostics *report.Diagnostics `json:"diagnostics"`

	// RunID is empty for cache hits.
	RunID    string        `json:"runId,omitempty"`
	Duration time.Duration `json:"duration"`
	CacheHit bool          `json:"cacheHit"`
}
