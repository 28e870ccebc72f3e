package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/bpmnlayout/pkg/observability"
)

// syncBuffer is a bytes.Buffer safe for the spinner goroutine and the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerDrawsMessageAndStage(t *testing.T) {
	var out syncBuffer
	s := newSpinner(context.Background(), &out, "Laying out order.json...")
	s.SetStage("route-connections")
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	got := out.String()
	if !strings.Contains(got, "Laying out order.json...") {
		t.Errorf("output %q missing message", got)
	}
	if !strings.Contains(got, "(route-connections)") {
		t.Errorf("output %q missing stage", got)
	}
	if !strings.HasSuffix(got, "\r") {
		t.Errorf("output %q should end by clearing the line", got)
	}
}

func TestSpinnerCancelledByParent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := newSpinner(ctx, &syncBuffer{}, "Working...")
	s.Start()
	cancel()
	time.Sleep(50 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("spinner should report cancellation of its parent context")
	}
	s.Stop()
}

func TestSpinnerTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	s := newSpinner(ctx, &syncBuffer{}, "Working...")
	s.Start()
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("spinner should report cancellation after the timeout")
	}
}

func TestSpinnerStopIsNotCancellation(t *testing.T) {
	s := newSpinner(context.Background(), &syncBuffer{}, "Working...")
	s.Start()
	s.Stop()
	if s.Cancelled() {
		t.Error("Stop should not count as cancellation")
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinner(context.Background(), &syncBuffer{}, "Working...")
	s.Start()
	s.Stop()
	s.Stop()
}

func TestSpinnerStopWithoutStart(t *testing.T) {
	s := newSpinner(context.Background(), &syncBuffer{}, "Working...")
	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop without Start blocked")
	}
}

type countingLayoutHooks struct {
	observability.NoopLayoutHooks
	passes []string
}

func (h *countingLayoutHooks) OnPassComplete(_ context.Context, pass string, _ time.Duration) {
	h.passes = append(h.passes, pass)
}

func TestReportPasses(t *testing.T) {
	defer observability.Reset()
	inner := &countingLayoutHooks{}
	observability.SetLayoutHooks(inner)

	s := newSpinner(context.Background(), &syncBuffer{}, "Working...")
	restore := reportPasses(s)
	observability.Layout().OnPassComplete(context.Background(), "snap-to-grid", time.Millisecond)
	restore()

	if len(inner.passes) != 1 || inner.passes[0] != "snap-to-grid" {
		t.Errorf("wrapped hooks saw %v, want [snap-to-grid]", inner.passes)
	}
	if s.stage != "snap-to-grid" {
		t.Errorf("stage = %q, want snap-to-grid", s.stage)
	}
	if observability.Layout() != observability.LayoutHooks(inner) {
		t.Error("restore should reinstate the previous hooks")
	}
}
