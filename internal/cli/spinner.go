package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/matzehuels/bpmnlayout/pkg/observability"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner animates a status line on w until stopped or until its context is
// cancelled. The line shows the message and, once set, the current stage.
type Spinner struct {
	w       io.Writer
	parent  context.Context
	ctx     context.Context
	cancel  context.CancelFunc
	stopped chan struct{}
	started atomic.Bool
	once    sync.Once

	mu      sync.Mutex
	message string
	stage   string
	width   int
}

// newSpinner creates a spinner bound to ctx. It does not draw until Start.
func newSpinner(ctx context.Context, w io.Writer, message string) *Spinner {
	sctx, cancel := context.WithCancel(ctx)
	return &Spinner{
		w:       w,
		parent:  ctx,
		ctx:     sctx,
		cancel:  cancel,
		stopped: make(chan struct{}),
		message: message,
	}
}

// Start begins the animation.
func (s *Spinner) Start() {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()
		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				s.clear()
				return
			case <-ticker.C:
				s.draw(spinnerFrames[i%len(spinnerFrames)])
			}
		}
	}()
}

// SetStage replaces the stage shown after the message.
func (s *Spinner) SetStage(stage string) {
	s.mu.Lock()
	s.stage = stage
	s.mu.Unlock()
}

func (s *Spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text := s.message
	if s.stage != "" {
		text += " (" + s.stage + ")"
	}
	// Pad over whatever a longer previous line left behind.
	pad := max(s.width-len(text), 0)
	s.width = len(text)
	fmt.Fprintf(s.w, "\r%s %s%s", styleIconSpinner.Render(frame), StyleDim.Render(text), strings.Repeat(" ", pad))
}

func (s *Spinner) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width > 0 {
		fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width+2))
		s.width = 0
	}
}

// Stop halts the animation and clears the line. It is safe to call more
// than once.
func (s *Spinner) Stop() {
	s.once.Do(s.cancel)
	if s.started.Load() {
		<-s.stopped
	}
}

// StopWithError stops the spinner and prints message as an error.
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	printError("%s", message)
}

// Cancelled reports whether the context the spinner was created with has
// ended. Stop alone does not cancel it.
func (s *Spinner) Cancelled() bool { return s.parent.Err() != nil }

// passReporter forwards layout events to the hooks it wraps and shows each
// finished pass on the spinner.
type passReporter struct {
	observability.LayoutHooks
	spinner *Spinner
}

func (r passReporter) OnPassComplete(ctx context.Context, pass string, d time.Duration) {
	r.LayoutHooks.OnPassComplete(ctx, pass, d)
	r.spinner.SetStage(pass)
}

// reportPasses installs a passReporter for s and returns a function that
// restores the previous layout hooks.
func reportPasses(s *Spinner) (restore func()) {
	prev := observability.Layout()
	observability.SetLayoutHooks(passReporter{LayoutHooks: prev, spinner: s})
	return func() { observability.SetLayoutHooks(prev) }
}
