// Package incremental implements partial re-layout and pin tracking.
//
// Elements moved or resized by hand through an [Editor] are pinned. A
// partial layout names a subset of elements; [NewPlan] splits it into the
// members that will be laid out and the pinned ones that are skipped, and
// finds the neighbor edges that cross the subset boundary. Neighbor edges
// are rebuilt from route templates by [RebuildNeighbors] so no stale
// diagonal route survives. A full layout clears all pins with [ClearPins].
package incremental

import (
	"slices"

	"github.com/matzehuels/bpmnlayout/pkg/bpmn"
	"github.com/matzehuels/bpmnlayout/pkg/errors"
)

// Plan is the resolved element set of a partial layout.
type Plan struct {
	// Members are the elements laid out, in request order, followed by the
	// boundary events attached to them.
	Members []string
	// PinnedSkipped are requested elements left alone because they are
	// pinned.
	PinnedSkipped []string
	// Neighbors are the flows with exactly one endpoint among Members.
	Neighbors []string
}

// NewPlan resolves ids against d. Every id must name an element; flows and
// lanes are rejected. Duplicates are ignored.
func NewPlan(d *bpmn.Diagram, ids []string) (*Plan, error) {
	if len(ids) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "partial layout needs at least one element id")
	}
	p := &Plan{}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		el, ok := d.Element(id)
		if !ok {
			if _, isFlow := d.Flow(id); isFlow {
				return nil, errors.New(errors.ErrCodeInvalidInput, "%s is a flow, not an element", id)
			}
			return nil, errors.New(errors.ErrCodeNotFound, "element %s not found", id)
		}
		if el.Kind == bpmn.Lane {
			return nil, errors.New(errors.ErrCodeInvalidInput, "lane %s is laid out with its participant", id)
		}
		if el.Pinned {
			p.PinnedSkipped = append(p.PinnedSkipped, id)
			continue
		}
		p.Members = append(p.Members, id)
	}

	in := p.Scope()
	for _, id := range slices.Clone(p.Members) {
		for _, be := range d.BoundaryEvents(id) {
			if !in[be.ID] && !be.Pinned {
				p.Members = append(p.Members, be.ID)
				in[be.ID] = true
			}
		}
	}
	for _, f := range d.Flows() {
		if rebuilt(f.Kind) && in[f.Source] != in[f.Target] {
			p.Neighbors = append(p.Neighbors, f.ID)
		}
	}
	return p, nil
}

// Scope returns the members as a set.
func (p *Plan) Scope() map[string]bool {
	m := make(map[string]bool, len(p.Members))
	for _, id := range p.Members {
		m[id] = true
	}
	return m
}

// Skip returns the pinned elements as a set.
func (p *Plan) Skip() map[string]bool {
	m := make(map[string]bool, len(p.PinnedSkipped))
	for _, id := range p.PinnedSkipped {
		m[id] = true
	}
	return m
}

// rebuilt reports whether neighbor edges of kind k are rebuilt from
// templates. Message flows get their dog-leg route from the message flow
// pass instead.
func rebuilt(k bpmn.Kind) bool {
	switch k {
	case bpmn.SequenceFlow, bpmn.Association, bpmn.DataInputAssociation, bpmn.DataOutputAssociation:
		return true
	}
	return false
}
