// Package cli implements the bpmnlayout command-line interface.
//
// The commands read BPMN diagram documents (JSON or YAML), lay them out
// through a cached [pipeline.Runner] and write the result back. The API
// server is started with serve. Built on cobra; logging uses
// charmbracelet/log.
//
// # Commands
//
//   - layout: lay out a document and write it with updated geometry
//   - recommend: print the strategy the selector picks, without layout
//   - serve: run the HTTP API
//   - cache: clear or locate the layout cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// logs every layout pass and cache access. The logger travels through
// context.Context.
//
// [pipeline.Runner]: github.com/matzehuels/bpmnlayout/pkg/pipeline.Runner
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns a logger writing to w at level, with short
// "15:04:05.00" timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times one step of a command and logs it at debug level, so the
// timings only show with --verbose.
type progress struct {
	logger *log.Logger
	step   string
	start  time.Time
}

func newProgress(l *log.Logger, step string) *progress {
	l.Debug("start", "step", step)
	return &progress{logger: l, step: step, start: time.Now()}
}

// done logs the step with its elapsed time and any extra key/value pairs.
func (p *progress) done(keyvals ...any) {
	kv := append([]any{"step", p.step, "elapsed", time.Since(p.start).Round(time.Millisecond)}, keyvals...)
	p.logger.Debug("done", kv...)
}

type ctxKey struct{}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// loggerFromContext returns the logger attached by withLogger, or
// log.Default() when there is none.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
