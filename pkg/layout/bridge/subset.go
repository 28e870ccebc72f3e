package bridge

import (
	"context"
	"slices"

	"github.com/matzehuels/bpmnlayout/pkg/bpmn"
	"github.com/matzehuels/bpmnlayout/pkg/geom"
)

// LayoutSubset lays out only the given elements as a flat graph and places
// the result where the subset's bounding box was. Flows between subset
// members are edges; everything else stays where it is. Containers in the
// subset carry their contents along.
func (br *Bridge) LayoutSubset(ctx context.Context, d *bpmn.Diagram, ids []string) (Applied, error) {
	root := &Node{ID: RootID}
	var rects []geom.Rect
	member := make(map[string]bool)
	for _, id := range ids {
		e, ok := d.Element(id)
		if !ok || e.Kind == bpmn.Lane || e.Kind == bpmn.BoundaryEvent {
			continue
		}
		r, ok := d.Bounds(id)
		if !ok {
			continue
		}
		root.Children = append(root.Children, &Node{ID: id, Width: r.Width, Height: r.Height})
		rects = append(rects, r)
		member[id] = true
	}
	if len(root.Children) == 0 {
		return Applied{}, nil
	}
	for _, f := range d.Flows() {
		if f.Kind == bpmn.MessageFlow {
			continue
		}
		src, tgt := hostOf(d, f.Source), hostOf(d, f.Target)
		if src == tgt || !member[src] || !member[tgt] {
			continue
		}
		root.Edges = append(root.Edges, &Edge{ID: f.ID, Source: src, Target: tgt, Lifted: src != f.Source || tgt != f.Target})
	}

	g := &Graph{Root: root, Options: Options{
		NodeSpacing:  br.Tunables.NodeSpacing,
		LayerSpacing: br.Tunables.LayerSpacing,
		Sweeps:       br.Tunables.OrderingSweeps,
	}}
	out, err := br.run(ctx, d.ID, g)
	if err != nil {
		return Applied{}, err
	}

	box, _ := geom.BoundsOf(rects)
	var res Applied
	for _, n := range out.Root.Children {
		old, _ := d.Bounds(n.ID)
		next := geom.R(box.X+n.X, box.Y+n.Y, old.Width, old.Height)
		dx, dy := next.X-old.X, next.Y-old.Y
		if dx == 0 && dy == 0 {
			continue
		}
		d.SetBounds(n.ID, next)
		res.Moved++
		for _, be := range d.BoundaryEvents(n.ID) {
			d.Translate(be.ID, dx, dy)
		}
		for _, c := range d.Descendants(n.ID) {
			if slices.Contains(ids, c.ID) {
				continue
			}
			d.Translate(c.ID, dx, dy)
		}
	}
	b := &Built{Graph: out}
	b.applyEdges(d, out.Root, geom.Pt(box.X, box.Y), &res)
	return res, nil
}

func hostOf(d *bpmn.Diagram, id string) string {
	if e, ok := d.Element(id); ok && e.Kind == bpmn.BoundaryEvent {
		return e.AttachedTo
	}
	return id
}
