// Package observability lets callers watch layout runs without the layout
// packages importing a logging or metrics stack.
//
// Three hook interfaces cover the events worth watching: [LayoutHooks] for
// runs and their passes, [CacheHooks] for result cache traffic and
// [HTTPHooks] for the API server. Each has a no-op implementation, which is
// what [Layout], [Cache] and [HTTP] return until main registers something
// else. [LogHooks] is the implementation the CLI and server install when
// verbose logging is on.
//
//	observability.SetLayoutHooks(observability.NewLogHooks(logger))
//	defer observability.Reset()
//
// Engine code emits events through the getters:
//
//	observability.Layout().OnPassComplete(ctx, "lanes", time.Since(start))
package observability

import (
	"context"
	"sync"
	"time"
)

// LayoutHooks receives events from the layout engine.
type LayoutHooks interface {
	OnLayoutStart(ctx context.Context, diagramID, strategy string, nodeCount int)
	OnLayoutComplete(ctx context.Context, diagramID, strategy string, duration time.Duration, err error)

	// OnPassComplete fires after each post-layout pass.
	OnPassComplete(ctx context.Context, pass string, duration time.Duration)

	// OnRouteFallback fires when a connection could not be routed and a
	// template route was used instead.
	OnRouteFallback(ctx context.Context, flowID string, err error)
}

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives events from the HTTP API.
type HTTPHooks interface {
	// OnRequest records an incoming request.
	OnRequest(ctx context.Context, method, route string)

	// OnResponse records the response sent for a request.
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// NoopLayoutHooks is a no-op implementation of LayoutHooks.
type NoopLayoutHooks struct{}

func (NoopLayoutHooks) OnLayoutStart(context.Context, string, string, int) {}
func (NoopLayoutHooks) OnLayoutComplete(context.Context, string, string, time.Duration, error) {
}
func (NoopLayoutHooks) OnPassComplete(context.Context, string, time.Duration) {}
func (NoopLayoutHooks) OnRouteFallback(context.Context, string, error)        {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// slot holds the registered implementation of one hook interface.
type slot[H any] struct {
	mu  sync.RWMutex
	cur H
	def H
}

func newSlot[H any](def H) *slot[H] { return &slot[H]{cur: def, def: def} }

func (s *slot[H]) get() H {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// set installs h. A nil h is ignored.
func (s *slot[H]) set(h H) {
	if any(h) == nil {
		return
	}
	s.mu.Lock()
	s.cur = h
	s.mu.Unlock()
}

func (s *slot[H]) reset() {
	s.mu.Lock()
	s.cur = s.def
	s.mu.Unlock()
}

var (
	layoutSlot = newSlot[LayoutHooks](NoopLayoutHooks{})
	cacheSlot  = newSlot[CacheHooks](NoopCacheHooks{})
	httpSlot   = newSlot[HTTPHooks](NoopHTTPHooks{})
)

// SetLayoutHooks registers layout hooks. Call it at startup, before any
// layout runs. A nil h is ignored.
func SetLayoutHooks(h LayoutHooks) { layoutSlot.set(h) }

// SetCacheHooks registers cache hooks. A nil h is ignored.
func SetCacheHooks(h CacheHooks) { cacheSlot.set(h) }

// SetHTTPHooks registers HTTP hooks. A nil h is ignored.
func SetHTTPHooks(h HTTPHooks) { httpSlot.set(h) }

// Layout returns the registered layout hooks.
func Layout() LayoutHooks { return layoutSlot.get() }

// Cache returns the registered cache hooks.
func Cache() CacheHooks { return cacheSlot.get() }

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks { return httpSlot.get() }

// Reset restores the no-op hooks. Tests that register hooks defer it.
func Reset() {
	layoutSlot.reset()
	cacheSlot.reset()
	httpSlot.reset()
}
