// Package direpair makes the interchange geometry of a diagram usable for
// layout: every element gets exactly one shape and every flow exactly one
// connection.
//
// Diagrams imported from hand-written or generated documents often lack
// coordinates, and flawed exports sometimes repeat a shape. Repair removes
// the duplicates, keeping the entry defined last, and synthesizes default
// size shapes and empty connections for whatever is missing. A diagram that
// needs no repair is left as it is.
package direpair

import (
	"slices"

	"github.com/matzehuels/bpmnlayout/pkg/bpmn"
	"github.com/matzehuels/bpmnlayout/pkg/config"
	"github.com/matzehuels/bpmnlayout/pkg/geom"
)

// Result counts the repairs made.
type Result struct {
	ShapesAdded       int
	ConnectionsAdded  int
	DuplicatesRemoved int
}

// Changed reports whether anything was repaired.
func (r Result) Changed() bool {
	return r.ShapesAdded+r.ConnectionsAdded+r.DuplicatesRemoved > 0
}

// Repair deduplicates and completes the geometry of d.
func Repair(d *bpmn.Diagram, t config.Tunables) Result {
	var res Result
	res.DuplicatesRemoved += dedupeShapes(d)
	res.DuplicatesRemoved += dedupeConnections(d)
	res.ShapesAdded = addShapes(d, t)
	res.ConnectionsAdded = addConnections(d)
	return res
}

// lastWins keeps the last entry per key, in the order the kept entries
// were defined.
func lastWins[T any](items []T, key func(T) string) ([]T, int) {
	last := make(map[string]int, len(items))
	for i, it := range items {
		last[key(it)] = i
	}
	if len(last) == len(items) {
		return items, 0
	}
	out := make([]T, 0, len(last))
	for i, it := range items {
		if last[key(it)] == i {
			out = append(out, it)
		}
	}
	return out, len(items) - len(out)
}

func dedupeShapes(d *bpmn.Diagram) int {
	kept, n := lastWins(d.Shapes(), func(s *bpmn.Shape) string { return s.ElementID })
	if n > 0 {
		d.ReplaceShapes(kept)
	}
	return n
}

func dedupeConnections(d *bpmn.Diagram) int {
	kept, n := lastWins(d.Connections(), func(c *bpmn.Connection) string { return c.ElementID })
	if n > 0 {
		d.ReplaceConnections(kept)
	}
	return n
}

// addShapes synthesizes shapes outermost first, so a missing container is
// placed before its children look for their origin.
func addShapes(d *bpmn.Diagram, t config.Tunables) int {
	var missing []*bpmn.Element
	for _, e := range d.Elements() {
		if _, ok := d.Shape(e.ID); !ok {
			missing = append(missing, e)
		}
	}
	slices.SortStableFunc(missing, func(a, b *bpmn.Element) int {
		return d.Depth(a.ID) - d.Depth(b.ID)
	})
	// Boundary events go last so their host has a shape.
	slices.SortStableFunc(missing, func(a, b *bpmn.Element) int {
		return boolInt(a.Kind == bpmn.BoundaryEvent) - boolInt(b.Kind == bpmn.BoundaryEvent)
	})
	for _, e := range missing {
		d.AddShape(bpmn.Shape{ElementID: e.ID, Bounds: placeholder(d, e, t)})
	}
	return len(missing)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// placeholder returns default-size bounds for e: boundary events on the
// bottom edge of their host, lanes below the existing lanes of their pool,
// anything else right of its existing siblings.
func placeholder(d *bpmn.Diagram, e *bpmn.Element, t config.Tunables) geom.Rect {
	w, h := bpmn.DefaultSize(e.Kind, e.Expanded)

	switch e.Kind {
	case bpmn.BoundaryEvent:
		if hr, ok := d.Bounds(e.AttachedTo); ok {
			return geom.R(hr.CenterX()-w/2, hr.Bottom()-h/2, w, h)
		}
	case bpmn.Lane:
		if pr, ok := d.Bounds(e.Parent); ok {
			y := pr.Y
			for _, l := range d.Lanes(e.Parent) {
				if lr, ok := d.Bounds(l.ID); ok {
					y = max(y, lr.Bottom())
				}
			}
			return geom.R(pr.X+t.PoolHeaderWidth, y, pr.Width-t.PoolHeaderWidth, h)
		}
	}

	var siblings []geom.Rect
	for _, s := range d.Elements() {
		if s.Parent != e.Parent || s.ID == e.ID || s.Kind == bpmn.Lane || s.Kind == bpmn.BoundaryEvent {
			continue
		}
		if r, ok := d.Bounds(s.ID); ok {
			siblings = append(siblings, r)
		}
	}
	if box, ok := geom.BoundsOf(siblings); ok {
		return geom.R(box.Right()+t.NodeSpacing, box.Y, w, h)
	}

	origin := geom.Pt(t.OriginX, t.OriginY)
	if pr, ok := d.Bounds(e.Parent); ok {
		origin = geom.Pt(pr.X+t.ContainerPadding, pr.Y+t.ContainerPadding)
		if p, _ := d.Element(e.Parent); p != nil && p.Kind == bpmn.Participant {
			origin.X += t.PoolHeaderWidth
		}
	}
	if e.Lane != "" {
		if lr, ok := d.Bounds(e.Lane); ok {
			origin.Y = lr.CenterY() - h/2
		}
	}
	return geom.R(origin.X, origin.Y, w, h)
}

func addConnections(d *bpmn.Diagram) int {
	n := 0
	for _, f := range d.Flows() {
		if _, ok := d.Connection(f.ID); !ok {
			d.AddConnection(bpmn.Connection{ElementID: f.ID})
			n++
		}
	}
	return n
}
