// Package bpmntest builds diagrams for tests.
package bpmntest

import (
	"fmt"

	"github.com/matzehuels/bpmnlayout/pkg/bpmn"
	"github.com/matzehuels/bpmnlayout/pkg/geom"
)

// Builder adds elements and flows to a diagram and panics on model errors,
// which in tests are always bugs in the fixture.
type Builder struct {
	D *bpmn.Diagram
	// NoDI skips shape and connection creation.
	NoDI bool
}

// New starts a diagram with the given id.
func New(id string) *Builder { return &Builder{D: bpmn.New(id)} }

// Add registers e with a default-size shape at the origin.
func (b *Builder) Add(e bpmn.Element) *Builder {
	if _, err := b.D.AddElement(e); err != nil {
		panic(err)
	}
	if !b.NoDI {
		w, h := bpmn.DefaultSize(e.Kind, e.Expanded)
		b.D.AddShape(bpmn.Shape{ElementID: e.ID, Bounds: geom.R(0, 0, w, h)})
	}
	return b
}

// At registers e with a default-size shape at (x, y).
func (b *Builder) At(e bpmn.Element, x, y float64) *Builder {
	if _, err := b.D.AddElement(e); err != nil {
		panic(err)
	}
	w, h := bpmn.DefaultSize(e.Kind, e.Expanded)
	b.D.AddShape(bpmn.Shape{ElementID: e.ID, Bounds: geom.R(x, y, w, h)})
	return b
}

// Node is shorthand for Add with only id, kind and parent.
func (b *Builder) Node(id string, k bpmn.Kind, parent string) *Builder {
	return b.Add(bpmn.Element{ID: id, Kind: k, Parent: parent})
}

// InLane adds a flow node assigned to lane.
func (b *Builder) InLane(id string, k bpmn.Kind, parent, lane string) *Builder {
	return b.Add(bpmn.Element{ID: id, Kind: k, Parent: parent, Lane: lane})
}

// Flow connects source to target with a flow of kind k and an empty route.
func (b *Builder) Flow(id string, k bpmn.Kind, source, target string) *Builder {
	if _, err := b.D.AddFlow(bpmn.Flow{ID: id, Kind: k, Source: source, Target: target}); err != nil {
		panic(err)
	}
	if !b.NoDI {
		b.D.AddConnection(bpmn.Connection{ElementID: id})
	}
	return b
}

// Seq connects source to target with a sequence flow.
func (b *Builder) Seq(id, source, target string) *Builder {
	return b.Flow(id, bpmn.SequenceFlow, source, target)
}

// Chain adds a start event, n tasks and an end event joined by sequence flows.
// Ids are start, t1..tn, end and f1..f(n+1).
func (b *Builder) Chain(parent string, n int) *Builder {
	b.Node("start", bpmn.StartEvent, parent)
	prev := "start"
	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("t%d", i)
		b.Node(id, bpmn.Task, parent)
		b.Seq(fmt.Sprintf("f%d", i), prev, id)
		prev = id
	}
	b.Node("end", bpmn.EndEvent, parent)
	b.Seq(fmt.Sprintf("f%d", n+1), prev, "end")
	return b
}

// Build returns the diagram.
func (b *Builder) Build() *bpmn.Diagram { return b.D }
