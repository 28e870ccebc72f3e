package pipeline

import (
	"context"
	"slices"

	"github.com/matzehuels/bpmnlayout/pkg/errors"
	"github.com/matzehuels/bpmnlayout/pkg/geom"
)

// Batch operation kinds.
const (
	OpMove       = "move"
	OpResize     = "resize"
	OpAssignLane = "assignLane"
)

// Op is one edit of a batch.
type Op struct {
	Op        string     `json:"op" yaml:"op"`
	DiagramID string     `json:"diagramId" yaml:"diagramId"`
	ElementID string     `json:"elementId" yaml:"elementId"`
	DX        float64    `json:"dx,omitempty" yaml:"dx,omitempty"`
	DY        float64    `json:"dy,omitempty" yaml:"dy,omitempty"`
	Bounds    *geom.Rect `json:"bounds,omitempty" yaml:"bounds,omitempty"`
	Lane      string     `json:"lane,omitempty" yaml:"lane,omitempty"`
}

// Batch is a list of edits followed by at most one layout of every diagram
// they touched.
type Batch struct {
	Ops []Op `json:"ops" yaml:"ops"`
	// Layout, when set, lays out each touched diagram once after the edits.
	Layout *Options `json:"layout,omitempty" yaml:"layout,omitempty"`
	// StopOnError aborts at the first failure and rolls every touched
	// diagram back to its state before the batch.
	StopOnError bool `json:"stopOnError,omitempty" yaml:"stopOnError,omitempty"`
}

// OpResult reports the outcome of one operation.
type OpResult struct {
	Index int    `json:"index"`
	OK    bool   `json:"ok"`
	Code  string `json:"code,omitempty"`
	Error string `json:"error,omitempty"`
}

// BatchResult reports a batch.
type BatchResult struct {
	Ops     []OpResult         `json:"ops"`
	Layouts map[string]*Result `json:"layouts,omitempty"`
	// LayoutErrors holds the layout failures per diagram when StopOnError
	// is not set.
	LayoutErrors map[string]string `json:"layoutErrors,omitempty"`
	RolledBack   bool              `json:"rolledBack"`
}

// Batch applies b. Every diagram the batch names is locked for its whole
// duration. With StopOnError the first failing operation or layout
// rewinds all touched diagrams to their history position before the
// batch, and that error is returned together with the partial result.
func (w *Workspace) Batch(ctx context.Context, b Batch) (*BatchResult, error) {
	if len(b.Ops) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "batch has no operations")
	}
	for i, op := range b.Ops {
		switch op.Op {
		case OpMove, OpAssignLane:
		case OpResize:
			if op.Bounds == nil {
				return nil, errors.New(errors.ErrCodeInvalidInput, "op %d: resize needs bounds", i)
			}
		default:
			return nil, errors.New(errors.ErrCodeInvalidInput, "op %d: unknown operation %q", i, op.Op)
		}
	}

	// Lock in id order so concurrent batches cannot deadlock.
	var ids []string
	for _, op := range b.Ops {
		if !slices.Contains(ids, op.DiagramID) {
			ids = append(ids, op.DiagramID)
		}
	}
	touched := slices.Clone(ids)
	slices.Sort(ids)
	entries := make(map[string]*entry, len(ids))
	for _, id := range ids {
		e, err := w.lookup(id)
		if err != nil {
			return nil, err
		}
		entries[id] = e
	}
	for _, id := range ids {
		entries[id].mu.Lock()
		defer entries[id].mu.Unlock()
	}

	start := make(map[string]int, len(ids))
	for id, e := range entries {
		start[id] = e.history().Position()
	}
	rollback := func(res *BatchResult, cause error) (*BatchResult, error) {
		for _, id := range touched {
			if err := entries[id].history().RewindTo(start[id]); err != nil {
				w.runner.Logger.Error("batch rollback failed", "diagram", id, "err", err)
				return res, errors.Wrap(errors.ErrCodeInternal, err, "rollback of %s", id)
			}
		}
		res.RolledBack = true
		res.Layouts = nil
		return res, cause
	}

	res := &BatchResult{Ops: make([]OpResult, 0, len(b.Ops))}
	for i, op := range b.Ops {
		err := applyOp(entries[op.DiagramID], op)
		r := OpResult{Index: i, OK: err == nil}
		if err != nil {
			r.Code = string(errors.GetCode(err))
			r.Error = errors.UserMessage(err)
		}
		res.Ops = append(res.Ops, r)
		if err != nil && b.StopOnError {
			return rollback(res, err)
		}
	}

	if b.Layout != nil {
		res.Layouts = make(map[string]*Result, len(touched))
		for _, id := range touched {
			lr, err := w.layout(ctx, entries[id], *b.Layout)
			if err != nil {
				if b.StopOnError {
					return rollback(res, err)
				}
				if res.LayoutErrors == nil {
					res.LayoutErrors = make(map[string]string)
				}
				res.LayoutErrors[id] = errors.UserMessage(err)
				continue
			}
			res.Layouts[id] = lr
		}
	}
	return res, nil
}

func applyOp(e *entry, op Op) error {
	switch op.Op {
	case OpMove:
		return e.editor.Move(op.ElementID, op.DX, op.DY)
	case OpResize:
		return e.editor.Resize(op.ElementID, *op.Bounds)
	default:
		return e.editor.AssignLane(op.ElementID, op.Lane)
	}
}
