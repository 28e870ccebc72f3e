package incremental

import (
	"github.com/matzehuels/bpmnlayout/pkg/bpmn"
	"github.com/matzehuels/bpmnlayout/pkg/errors"
	"github.com/matzehuels/bpmnlayout/pkg/geom"
	"github.com/matzehuels/bpmnlayout/pkg/history"
	"github.com/matzehuels/bpmnlayout/pkg/layout/passes"
)

// Editor applies manual edits to a diagram and records each one in its
// history. Moves and resizes pin the element; lane reassignment does not.
type Editor struct {
	d *bpmn.Diagram
	h *history.Stack
}

// NewEditor returns an editor for d recording into h. A nil h starts a new
// history.
func NewEditor(d *bpmn.Diagram, h *history.Stack) *Editor {
	if h == nil {
		h = history.New()
	}
	return &Editor{d: d, h: h}
}

// History returns the command history the editor records into.
func (e *Editor) History() *history.Stack { return e.h }

// Move translates id by (dx, dy) together with its nested elements and
// boundary events, and pins it. A zero move still pins.
func (e *Editor) Move(id string, dx, dy float64) error {
	el, err := e.shaped(id)
	if err != nil {
		return err
	}
	if el.Kind == bpmn.Lane {
		return errors.New(errors.ErrCodeInvalidInput, "lane %s moves with its participant", id)
	}
	_, err = e.h.Execute(&edit{name: "move " + id, d: e.d, apply: func() error {
		passes.MoveTree(e.d, id, dx, dy)
		el.Pinned = true
		return nil
	}})
	return err
}

// Resize sets the bounds of id and pins it.
func (e *Editor) Resize(id string, r geom.Rect) error {
	el, err := e.shaped(id)
	if err != nil {
		return err
	}
	if err := errors.ValidateSize(r.Width, r.Height); err != nil {
		return err
	}
	_, err = e.h.Execute(&edit{name: "resize " + id, d: e.d, apply: func() error {
		e.d.SetBounds(id, r)
		el.Pinned = true
		return nil
	}})
	return err
}

// AssignLane moves flow node id into lane. The element is shifted
// vertically into the lane's band if it lies outside of it. Lane
// membership is structural, so the element is not pinned.
func (e *Editor) AssignLane(id, lane string) error {
	el, err := e.shaped(id)
	if err != nil {
		return err
	}
	if !el.Kind.IsFlowNode() {
		return errors.New(errors.ErrCodeInvalidInput, "%s is a %s, only flow nodes belong to lanes", id, el.Kind)
	}
	l, ok := e.d.Element(lane)
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "lane %s not found", lane)
	}
	if l.Kind != bpmn.Lane {
		return errors.New(errors.ErrCodeInvalidInput, "%s is a %s, not a lane", lane, l.Kind)
	}
	if p, ok := e.d.Participant(id); !ok || p.ID != l.Parent {
		return errors.New(errors.ErrCodeInvalidInput, "lane %s is not in the participant of %s", lane, id)
	}

	_, err = e.h.Execute(&edit{name: "assign lane " + id, d: e.d, apply: func() error {
		if err := e.d.SetLane(id, lane); err != nil {
			return err
		}
		r, _ := e.d.Bounds(id)
		if lr, ok := e.d.Bounds(lane); ok && !lr.Contains(r, 0) {
			passes.MoveTree(e.d, id, 0, lr.CenterY()-r.CenterY())
		}
		return nil
	}})
	return err
}

// shaped returns element id, rejecting flows and elements without a shape.
func (e *Editor) shaped(id string) (*bpmn.Element, error) {
	el, ok := e.d.Element(id)
	if !ok {
		if _, isFlow := e.d.Flow(id); isFlow {
			return nil, errors.New(errors.ErrCodeInvalidInput, "%s is a flow; flows are routed, not moved", id)
		}
		return nil, errors.New(errors.ErrCodeNotFound, "element %s not found", id)
	}
	if _, ok := e.d.Bounds(id); !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput, "element %s has no shape", id)
	}
	return el, nil
}

// edit is a history command that applies a change once and afterwards
// swaps between the geometry before and after it.
type edit struct {
	name          string
	d             *bpmn.Diagram
	apply         func() error
	before, after *bpmn.Geometry
}

func (c *edit) Name() string { return c.name }

func (c *edit) Do() error {
	if c.after != nil {
		c.d.Restore(*c.after)
		return nil
	}
	before := c.d.Snapshot()
	if err := c.apply(); err != nil {
		c.d.Restore(before)
		return err
	}
	after := c.d.Snapshot()
	c.before, c.after = &before, &after
	return nil
}

func (c *edit) Undo() error {
	if c.before != nil {
		c.d.Restore(*c.before)
	}
	return nil
}

// ClearPins unpins every element of d and returns how many were pinned.
func ClearPins(d *bpmn.Diagram) int {
	n := 0
	for _, el := range d.Elements() {
		if el.Pinned {
			el.Pinned = false
			n++
		}
	}
	return n
}
