package passes

import (
	"cmp"
	"context"
	"slices"

	"github.com/matzehuels/bpmnlayout/pkg/bpmn"
	"github.com/matzehuels/bpmnlayout/pkg/geom"
)

// HappyPath returns the ids of the sequence flows on the main path of d.
// From every start event the walk follows an element's default flow when it
// has one, otherwise its first outgoing sequence flow, and stops at a dead
// end or at an element it has already visited.
func HappyPath(d *bpmn.Diagram) map[string]bool {
	path := make(map[string]bool)
	for _, start := range d.ElementsOf(bpmn.StartEvent) {
		seen := map[string]bool{}
		for cur := start; cur != nil && !seen[cur.ID]; {
			seen[cur.ID] = true
			f := nextOnPath(d, cur)
			if f == nil {
				break
			}
			path[f.ID] = true
			cur, _ = d.Element(f.Target)
		}
	}
	return path
}

func nextOnPath(d *bpmn.Diagram, e *bpmn.Element) *bpmn.Flow {
	var first *bpmn.Flow
	for _, id := range e.Outgoing {
		f, ok := d.Flow(id)
		if !ok || f.Kind != bpmn.SequenceFlow {
			continue
		}
		if f.ID == e.Default {
			return f
		}
		if first == nil {
			first = f
		}
	}
	return first
}

// StackBranches keeps the happy-path branch of every split on its row and
// moves the first node of each other branch below the vertical extent of
// the branches before it. A branch extends from its first node up to the
// nodes it shares with a later branch, so a nested split counts with all
// of its rows. Splits are handled right to left, inner ones first. Only
// forward flows take part; loops back to an earlier node are left to the
// loopback pass. Branches that already clear the extent keep their
// position.
func StackBranches(ctx context.Context, s *State) error {
	d := s.Diagram
	s.HappyPath = HappyPath(d)
	spacing := s.Tunables.BranchSpacing

	type split struct {
		e  *bpmn.Element
		gw geom.Rect
	}
	var splits []split
	for _, e := range d.FlowNodes() {
		if len(sequenceOut(d, e)) < 2 {
			continue
		}
		if r, ok := d.Bounds(e.ID); ok {
			splits = append(splits, split{e, r})
		}
	}
	slices.SortStableFunc(splits, func(a, b split) int { return cmp.Compare(b.gw.X, a.gw.X) })

	for _, sp := range splits {
		e, gw := sp.e, sp.gw
		var forward []*bpmn.Flow
		for _, f := range sequenceOut(d, e) {
			if r, ok := d.Bounds(f.Target); ok && r.X >= gw.Right() {
				forward = append(forward, f)
			}
		}
		if len(forward) < 2 {
			continue
		}
		main := forward[0]
		for _, f := range forward {
			if s.HappyPath[f.ID] {
				main = f
				break
			}
		}

		reach := make(map[string]map[string]bool, len(forward))
		for _, f := range forward {
			reach[f.ID] = downstream(d, e, f.Target)
		}
		// exclusive returns the bounds of the nodes only branch f reaches.
		exclusive := func(f *bpmn.Flow) geom.Rect {
			r, _ := d.Bounds(f.Target)
			for id := range reach[f.ID] {
				shared := false
				for _, g := range forward {
					if g != f && reach[g.ID][id] {
						shared = true
						break
					}
				}
				if nr, ok := d.Bounds(id); ok && !shared {
					r = r.Union(nr)
				}
			}
			return r
		}

		extent := exclusive(main)
		for _, f := range forward {
			if f == main {
				continue
			}
			t, ok := d.Element(f.Target)
			if !ok || t.Parent != e.Parent || t.Kind == bpmn.BoundaryEvent {
				continue
			}
			r, _ := d.Bounds(t.ID)
			if s.Movable(t.ID) && r.Y < extent.Bottom() && r.Bottom() > extent.Y {
				clearBelow(d, t.ID, extent.Bottom()+spacing, spacing)
			}
			extent = extent.Union(exclusive(f))
		}
	}
	return nil
}

// downstream returns the nodes reachable from id along forward sequence
// flows inside the parent of split, id included and split excluded.
func downstream(d *bpmn.Diagram, split *bpmn.Element, id string) map[string]bool {
	seen := map[string]bool{}
	queue := []string{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		e, ok := d.Element(cur)
		if !ok || seen[cur] || cur == split.ID || e.Parent != split.Parent {
			continue
		}
		seen[cur] = true
		r, ok := d.Bounds(cur)
		if !ok {
			continue
		}
		for _, f := range sequenceOut(d, e) {
			if tr, ok := d.Bounds(f.Target); ok && tr.CenterX() > r.CenterX() {
				queue = append(queue, f.Target)
			}
		}
	}
	return seen
}

// sequenceOut returns the outgoing sequence flows of e in declaration order.
func sequenceOut(d *bpmn.Diagram, e *bpmn.Element) []*bpmn.Flow {
	var out []*bpmn.Flow
	for _, id := range e.Outgoing {
		if f, ok := d.Flow(id); ok && f.Kind == bpmn.SequenceFlow && f.Target != e.ID {
			out = append(out, f)
		}
	}
	return out
}
