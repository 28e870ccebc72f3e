package io

import (
	"github.com/matzehuels/bpmnlayout/pkg/bpmn"
	"github.com/matzehuels/bpmnlayout/pkg/errors"
)

// Document is the serialized form of a [bpmn.Diagram].
type Document struct {
	ID       string            `json:"id,omitempty" yaml:"id,omitempty"`
	Name     string            `json:"name,omitempty" yaml:"name,omitempty"`
	Elements []Element         `json:"elements" yaml:"elements"`
	Flows    []Flow            `json:"flows,omitempty" yaml:"flows,omitempty"`
	Shapes   []bpmn.Shape      `json:"shapes,omitempty" yaml:"shapes,omitempty"`
	Edges    []bpmn.Connection `json:"edges,omitempty" yaml:"edges,omitempty"`
}

// Element is one semantic element of a document.
type Element struct {
	ID                string `json:"id" yaml:"id"`
	Type              string `json:"type" yaml:"type"`
	Name              string `json:"name,omitempty" yaml:"name,omitempty"`
	Parent            string `json:"parent,omitempty" yaml:"parent,omitempty"`
	Lane              string `json:"lane,omitempty" yaml:"lane,omitempty"`
	AttachedTo        string `json:"attachedTo,omitempty" yaml:"attachedTo,omitempty"`
	Default           string `json:"default,omitempty" yaml:"default,omitempty"`
	EventDefinition   string `json:"eventDefinition,omitempty" yaml:"eventDefinition,omitempty"`
	TriggeredByEvent  bool   `json:"triggeredByEvent,omitempty" yaml:"triggeredByEvent,omitempty"`
	IsForCompensation bool   `json:"isForCompensation,omitempty" yaml:"isForCompensation,omitempty"`
	Expanded          bool   `json:"expanded,omitempty" yaml:"expanded,omitempty"`
	Pinned            bool   `json:"pinned,omitempty" yaml:"pinned,omitempty"`
}

// Flow is one connection of a document.
type Flow struct {
	ID        string `json:"id" yaml:"id"`
	Type      string `json:"type" yaml:"type"`
	Name      string `json:"name,omitempty" yaml:"name,omitempty"`
	Source    string `json:"source" yaml:"source"`
	Target    string `json:"target" yaml:"target"`
	Condition string `json:"condition,omitempty" yaml:"condition,omitempty"`
}

// FromDiagram converts d into a document. Duplicate shapes and edges are
// kept so that a round trip does not hide them from DI repair.
func FromDiagram(d *bpmn.Diagram) Document {
	doc := Document{ID: d.ID, Name: d.Name, Elements: []Element{}}
	for _, e := range d.Elements() {
		doc.Elements = append(doc.Elements, Element{
			ID:                e.ID,
			Type:              e.Kind.String(),
			Name:              e.Name,
			Parent:            e.Parent,
			Lane:              e.Lane,
			AttachedTo:        e.AttachedTo,
			Default:           e.Default,
			EventDefinition:   e.EventDefinition,
			TriggeredByEvent:  e.TriggeredByEvent,
			IsForCompensation: e.IsForCompensation,
			Expanded:          e.Expanded,
			Pinned:            e.Pinned,
		})
	}
	for _, f := range d.Flows() {
		doc.Flows = append(doc.Flows, Flow{
			ID:        f.ID,
			Type:      f.Kind.String(),
			Name:      f.Name,
			Source:    f.Source,
			Target:    f.Target,
			Condition: f.Condition,
		})
	}
	g := d.Snapshot()
	doc.Shapes = g.Shapes
	doc.Edges = g.Connections
	return doc
}

// Diagram builds the diagram described by doc. Elements are added once
// their parent, lane and host exist, so document order does not matter.
func (doc Document) Diagram() (*bpmn.Diagram, error) {
	d := bpmn.New(doc.ID)
	d.Name = doc.Name

	pending := make([]bpmn.Element, 0, len(doc.Elements))
	for _, e := range doc.Elements {
		k, err := bpmn.ParseKind(e.Type)
		if err != nil {
			return nil, invalid(err, "element %s", e.ID)
		}
		pending = append(pending, bpmn.Element{
			ID:                e.ID,
			Kind:              k,
			Name:              e.Name,
			Parent:            e.Parent,
			Lane:              e.Lane,
			AttachedTo:        e.AttachedTo,
			Default:           e.Default,
			EventDefinition:   e.EventDefinition,
			TriggeredByEvent:  e.TriggeredByEvent,
			IsForCompensation: e.IsForCompensation,
			Expanded:          e.Expanded,
			Pinned:            e.Pinned,
		})
	}
	if err := addElements(d, pending); err != nil {
		return nil, err
	}

	for _, f := range doc.Flows {
		k, err := bpmn.ParseKind(f.Type)
		if err != nil {
			return nil, invalid(err, "flow %s", f.ID)
		}
		_, err = d.AddFlow(bpmn.Flow{
			ID:        f.ID,
			Kind:      k,
			Name:      f.Name,
			Source:    f.Source,
			Target:    f.Target,
			Condition: f.Condition,
		})
		if err != nil {
			return nil, invalid(err, "flow %s", f.ID)
		}
	}

	for _, s := range doc.Shapes {
		if !d.Has(s.ElementID) {
			return nil, errors.New(errors.ErrCodeInvalidDocument, "shape %s references unknown element %s", s.ID, s.ElementID)
		}
		d.AddShape(s)
	}
	for _, c := range doc.Edges {
		if _, ok := d.Flow(c.ElementID); !ok {
			return nil, errors.New(errors.ErrCodeInvalidDocument, "edge %s references unknown flow %s", c.ID, c.ElementID)
		}
		d.AddConnection(c)
	}
	return d, nil
}

// addElements inserts elements whose references are satisfied, repeating
// until nothing is left or no progress is made.
func addElements(d *bpmn.Diagram, pending []bpmn.Element) error {
	for len(pending) > 0 {
		var rest []bpmn.Element
		for _, e := range pending {
			if !ready(d, e) {
				rest = append(rest, e)
				continue
			}
			if _, err := d.AddElement(e); err != nil {
				return invalid(err, "element %s", e.ID)
			}
		}
		if len(rest) == len(pending) {
			// Report the first blocked element with the real reason.
			_, err := d.AddElement(rest[0])
			return invalid(err, "element %s", rest[0].ID)
		}
		pending = rest
	}
	return nil
}

func ready(d *bpmn.Diagram, e bpmn.Element) bool {
	for _, ref := range []string{e.Parent, e.Lane, e.AttachedTo} {
		if ref != "" && !d.Has(ref) {
			return false
		}
	}
	return true
}

func invalid(err error, format string, args ...any) error {
	return errors.Wrap(errors.ErrCodeInvalidDocument, err, format, args...)
}
