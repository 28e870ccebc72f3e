package pipeline

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/matzehuels/bpmnlayout/pkg/bpmn"
	"github.com/matzehuels/bpmnlayout/pkg/errors"
	"github.com/matzehuels/bpmnlayout/pkg/geom"
	"github.com/matzehuels/bpmnlayout/pkg/history"
	docio "github.com/matzehuels/bpmnlayout/pkg/io"
	"github.com/matzehuels/bpmnlayout/pkg/layout/incremental"
	"github.com/matzehuels/bpmnlayout/pkg/layout/strategy"
)

// Workspace holds diagrams in memory, each with its own edit history.
// Operations on different diagrams run concurrently; operations on the
// same diagram are serialized.
type Workspace struct {
	runner *Runner

	mu      sync.RWMutex
	entries map[string]*entry
}

type entry struct {
	mu     sync.Mutex
	d      *bpmn.Diagram
	editor *incremental.Editor
}

func (e *entry) history() *history.Stack { return e.editor.History() }

// NewWorkspace returns an empty workspace laying out through r. A nil r
// uses a runner without cache.
func NewWorkspace(r *Runner) *Workspace {
	if r == nil {
		r = NewRunner(nil, nil, nil, nil)
	}
	return &Workspace{runner: r, entries: make(map[string]*entry)}
}

// Add stores d under its id, assigning a new one when it has none, and
// returns the id. A diagram with the same id is replaced.
func (w *Workspace) Add(d *bpmn.Diagram) (string, error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	} else if err := errors.ValidateID("diagram", d.ID); err != nil {
		return "", err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.entries[d.ID] = &entry{d: d, editor: incremental.NewEditor(d, history.New())}
	return d.ID, nil
}

// Remove deletes a diagram.
func (w *Workspace) Remove(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.entries[id]; !ok {
		return notFound(id)
	}
	delete(w.entries, id)
	return nil
}

// IDs returns the stored diagram ids in sorted order.
func (w *Workspace) IDs() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	ids := make([]string, 0, len(w.entries))
	for id := range w.entries {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Document returns the current state of a diagram as a document.
func (w *Workspace) Document(id string) (docio.Document, error) {
	var doc docio.Document
	err := w.with(id, func(e *entry) error {
		doc = docio.FromDiagram(e.d)
		return nil
	})
	return doc, err
}

// Diagram returns a copy of a stored diagram.
func (w *Workspace) Diagram(id string) (*bpmn.Diagram, error) {
	var d *bpmn.Diagram
	err := w.with(id, func(e *entry) error {
		d = e.d.Clone()
		return nil
	})
	return d, err
}

// Layout lays out a stored diagram. The run is recorded in its history.
func (w *Workspace) Layout(ctx context.Context, id string, opts Options) (*Result, error) {
	var res *Result
	err := w.with(id, func(e *entry) error {
		var err error
		res, err = w.layout(ctx, e, opts)
		return err
	})
	return res, err
}

func (w *Workspace) layout(ctx context.Context, e *entry, opts Options) (*Result, error) {
	opts.History = e.history()
	res, err := w.runner.Layout(ctx, e.d, opts)
	if err != nil {
		return nil, err
	}
	res.DiagramID = e.d.ID
	return res, nil
}

// Recommend returns the strategy the selector picks for a stored diagram.
func (w *Workspace) Recommend(ctx context.Context, id string, elementIDs []string) (*strategy.Recommendation, error) {
	var rec *strategy.Recommendation
	err := w.with(id, func(e *entry) error {
		var err error
		rec, err = w.runner.Recommend(ctx, e.d, elementIDs)
		return err
	})
	return rec, err
}

// Move translates an element and pins it.
func (w *Workspace) Move(id, elementID string, dx, dy float64) error {
	return w.with(id, func(e *entry) error { return e.editor.Move(elementID, dx, dy) })
}

// Resize sets the bounds of an element and pins it.
func (w *Workspace) Resize(id, elementID string, r geom.Rect) error {
	return w.with(id, func(e *entry) error { return e.editor.Resize(elementID, r) })
}

// AssignLane moves a flow node to another lane of its pool.
func (w *Workspace) AssignLane(id, elementID, lane string) error {
	return w.with(id, func(e *entry) error { return e.editor.AssignLane(elementID, lane) })
}

// Undo reverts the last edit or layout of a diagram.
func (w *Workspace) Undo(id string) error {
	return w.with(id, func(e *entry) error { return historyError(e.history().Undo()) })
}

// Redo reapplies the last undone edit or layout of a diagram.
func (w *Workspace) Redo(id string) error {
	return w.with(id, func(e *entry) error { return historyError(e.history().Redo()) })
}

// History lists the applied edits of a diagram, oldest first.
func (w *Workspace) History(id string) ([]history.Entry, error) {
	var out []history.Entry
	err := w.with(id, func(e *entry) error {
		out = e.history().Entries()
		return nil
	})
	return out, err
}

func (w *Workspace) lookup(id string) (*entry, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	e, ok := w.entries[id]
	if !ok {
		return nil, notFound(id)
	}
	return e, nil
}

// with runs fn holding the lock of diagram id.
func (w *Workspace) with(id string, fn func(*entry) error) error {
	e, err := w.lookup(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e)
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeNotFound, "diagram %s not found", id)
}

func historyError(err error) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(errors.ErrCodeInvalidInput, err, "history")
}
