package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

type countingLayout struct {
	NoopLayoutHooks
	passes []string
}

func (c *countingLayout) OnPassComplete(_ context.Context, pass string, _ time.Duration) {
	c.passes = append(c.passes, pass)
}

type countingCache struct {
	NoopCacheHooks
	hits int
}

func (c *countingCache) OnCacheHit(context.Context, string) { c.hits++ }

type countingHTTP struct {
	NoopHTTPHooks
	routes []string
}

func (c *countingHTTP) OnRequest(_ context.Context, method, route string) {
	c.routes = append(c.routes, method+" "+route)
}

func TestDefaultsAreNoop(t *testing.T) {
	Reset()
	ctx := context.Background()

	// Emitting through the defaults must be harmless.
	Layout().OnLayoutStart(ctx, "d1", "elk-full", 10)
	Layout().OnRouteFallback(ctx, "Flow_1", errors.New("stale"))
	Cache().OnCacheSet(ctx, "layout", 1024)
	HTTP().OnResponse(ctx, "POST", "/v1/diagrams/{id}/layout", 200, time.Second)

	if _, ok := Layout().(NoopLayoutHooks); !ok {
		t.Errorf("Layout() = %T, want NoopLayoutHooks", Layout())
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Errorf("Cache() = %T, want NoopCacheHooks", Cache())
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Errorf("HTTP() = %T, want NoopHTTPHooks", HTTP())
	}
}

func TestRegisteredHooksReceiveEvents(t *testing.T) {
	defer Reset()
	ctx := context.Background()

	l, c, h := &countingLayout{}, &countingCache{}, &countingHTTP{}
	SetLayoutHooks(l)
	SetCacheHooks(c)
	SetHTTPHooks(h)

	Layout().OnPassComplete(ctx, "boundary-events", time.Millisecond)
	Layout().OnPassComplete(ctx, "lanes", time.Millisecond)
	Cache().OnCacheHit(ctx, "layout")
	HTTP().OnRequest(ctx, "GET", "/v1/diagrams/{id}")

	if strings.Join(l.passes, ",") != "boundary-events,lanes" {
		t.Errorf("passes = %v", l.passes)
	}
	if c.hits != 1 {
		t.Errorf("cache hits = %d, want 1", c.hits)
	}
	if len(h.routes) != 1 || h.routes[0] != "GET /v1/diagrams/{id}" {
		t.Errorf("routes = %v", h.routes)
	}

	Reset()
	Layout().OnPassComplete(ctx, "stacking", time.Millisecond)
	if len(l.passes) != 2 {
		t.Error("hooks still receive events after Reset")
	}
}

func TestSetNilKeepsCurrent(t *testing.T) {
	defer Reset()
	l := &countingLayout{}
	SetLayoutHooks(l)
	SetLayoutHooks(nil)
	SetCacheHooks(nil)
	SetHTTPHooks(nil)

	if Layout() != LayoutHooks(l) {
		t.Errorf("Layout() = %T after SetLayoutHooks(nil)", Layout())
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Errorf("Cache() = %T after SetCacheHooks(nil)", Cache())
	}
}

func TestLogHooksWriteDebugLines(t *testing.T) {
	var buf bytes.Buffer
	h := NewLogHooks(log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel}))

	h.OnPassComplete(context.Background(), "lanes", time.Millisecond)
	h.OnRouteFallback(context.Background(), "Flow_7", errors.New("boom"))

	out := buf.String()
	for _, want := range []string{"lanes", "Flow_7", "boom"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q missing %q", out, want)
		}
	}
}
