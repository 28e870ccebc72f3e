package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks implements every hook interface by writing debug-level log lines.
// The CLI registers it when --verbose is set.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks that log to logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{logger: logger}
}

var (
	_ LayoutHooks = (*LogHooks)(nil)
	_ CacheHooks  = (*LogHooks)(nil)
	_ HTTPHooks   = (*LogHooks)(nil)
)

func (h *LogHooks) OnLayoutStart(_ context.Context, diagramID, strategy string, nodeCount int) {
	h.logger.Debug("layout start", "diagram", diagramID, "strategy", strategy, "nodes", nodeCount)
}

func (h *LogHooks) OnLayoutComplete(_ context.Context, diagramID, strategy string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("layout failed", "diagram", diagramID, "strategy", strategy, "duration", d, "err", err)
		return
	}
	h.logger.Debug("layout done", "diagram", diagramID, "strategy", strategy, "duration", d)
}

func (h *LogHooks) OnPassComplete(_ context.Context, pass string, d time.Duration) {
	h.logger.Debug("pass", "name", pass, "duration", d)
}

func (h *LogHooks) OnRouteFallback(_ context.Context, flowID string, err error) {
	h.logger.Debug("route fallback", "flow", flowID, "err", err)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, route string) {
	h.logger.Debug("request", "method", method, "route", route)
}

func (h *LogHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.logger.Debug("response", "method", method, "route", route, "status", status, "duration", d)
}
