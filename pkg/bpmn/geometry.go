package bpmn

import (
	"github.com/matzehuels/bpmnlayout/pkg/geom"
)

// Model is the read/write surface layout passes use to inspect elements and
// move their geometry. *Diagram implements it.
type Model interface {
	Element(id string) (*Element, bool)
	Flow(id string) (*Flow, bool)
	Bounds(id string) (geom.Rect, bool)
	SetBounds(id string, r geom.Rect)
	Waypoints(id string) []geom.Point
	SetWaypoints(id string, pts []geom.Point)
}

var _ Model = (*Diagram)(nil)

// AddShape appends a shape. A later shape for the same element shadows
// earlier ones until DI repair removes the duplicates.
func (d *Diagram) AddShape(s Shape) *Shape {
	if s.ID == "" {
		s.ID = s.ElementID + "_di"
	}
	sh := s
	d.shapes = append(d.shapes, &sh)
	d.shapeIdx[sh.ElementID] = &sh
	return &sh
}

// AddConnection appends a connection, shadowing earlier ones for the same flow.
func (d *Diagram) AddConnection(c Connection) *Connection {
	if c.ID == "" {
		c.ID = c.ElementID + "_di"
	}
	cn := c
	cn.Waypoints = geom.ClonePoints(c.Waypoints)
	d.connections = append(d.connections, &cn)
	d.connIdx[cn.ElementID] = &cn
	return &cn
}

// Shapes returns every shape, duplicates included, in definition order.
func (d *Diagram) Shapes() []*Shape { return d.shapes }

// Connections returns every connection, duplicates included.
func (d *Diagram) Connections() []*Connection { return d.connections }

// ReplaceShapes swaps the shape list and rebuilds the index.
func (d *Diagram) ReplaceShapes(shapes []*Shape) {
	d.shapes = shapes
	d.shapeIdx = make(map[string]*Shape, len(shapes))
	for _, s := range shapes {
		d.shapeIdx[s.ElementID] = s
	}
}

// ReplaceConnections swaps the connection list and rebuilds the index.
func (d *Diagram) ReplaceConnections(conns []*Connection) {
	d.connections = conns
	d.connIdx = make(map[string]*Connection, len(conns))
	for _, c := range conns {
		d.connIdx[c.ElementID] = c
	}
}

// Shape returns the effective shape of element id.
func (d *Diagram) Shape(id string) (*Shape, bool) {
	s, ok := d.shapeIdx[id]
	return s, ok
}

// Connection returns the effective connection of flow id.
func (d *Diagram) Connection(id string) (*Connection, bool) {
	c, ok := d.connIdx[id]
	return c, ok
}

// Bounds returns the bounds of element id.
func (d *Diagram) Bounds(id string) (geom.Rect, bool) {
	if s, ok := d.shapeIdx[id]; ok {
		return s.Bounds, true
	}
	return geom.Rect{}, false
}

// SetBounds moves or resizes element id. An external label moves with it.
func (d *Diagram) SetBounds(id string, r geom.Rect) {
	s, ok := d.shapeIdx[id]
	if !ok {
		return
	}
	if s.Label != nil {
		l := s.Label.Translate(r.X-s.Bounds.X, r.Y-s.Bounds.Y)
		s.Label = &l
	}
	s.Bounds = r
}

// Translate moves element id by (dx, dy).
func (d *Diagram) Translate(id string, dx, dy float64) {
	if r, ok := d.Bounds(id); ok {
		d.SetBounds(id, r.Translate(dx, dy))
	}
}

// Waypoints returns a copy of the waypoints of flow id.
func (d *Diagram) Waypoints(id string) []geom.Point {
	if c, ok := d.connIdx[id]; ok {
		return geom.ClonePoints(c.Waypoints)
	}
	return nil
}

// SetWaypoints replaces the route of flow id.
func (d *Diagram) SetWaypoints(id string, pts []geom.Point) {
	if c, ok := d.connIdx[id]; ok {
		c.Waypoints = geom.ClonePoints(pts)
	}
}

// Label returns the external label bounds of id, for shapes or connections.
func (d *Diagram) Label(id string) (geom.Rect, bool) {
	if s, ok := d.shapeIdx[id]; ok && s.Label != nil {
		return *s.Label, true
	}
	if c, ok := d.connIdx[id]; ok && c.Label != nil {
		return *c.Label, true
	}
	return geom.Rect{}, false
}

// SetLabel sets the external label bounds of id.
func (d *Diagram) SetLabel(id string, r geom.Rect) {
	if s, ok := d.shapeIdx[id]; ok {
		s.Label = &r
		return
	}
	if c, ok := d.connIdx[id]; ok {
		c.Label = &r
	}
}

// Geometry is a restorable copy of everything layout may change.
type Geometry struct {
	Shapes      []Shape           `json:"shapes"`
	Connections []Connection      `json:"connections"`
	Pinned      []string          `json:"pinned,omitempty"`
	Expanded    []string          `json:"expanded,omitempty"`
	Lanes       map[string]string `json:"lanes,omitempty"`
}

// Snapshot captures the diagram's geometry, pins, expansion flags and lane
// assignments.
func (d *Diagram) Snapshot() Geometry {
	g := Geometry{
		Shapes:      make([]Shape, 0, len(d.shapes)),
		Connections: make([]Connection, 0, len(d.connections)),
		Lanes:       make(map[string]string),
	}
	for _, s := range d.shapes {
		g.Shapes = append(g.Shapes, cloneShape(s))
	}
	for _, c := range d.connections {
		g.Connections = append(g.Connections, cloneConnection(c))
	}
	for _, id := range d.order {
		e := d.elements[id]
		if e.Pinned {
			g.Pinned = append(g.Pinned, id)
		}
		if e.Expanded {
			g.Expanded = append(g.Expanded, id)
		}
		if e.Lane != "" {
			g.Lanes[id] = e.Lane
		}
	}
	return g
}

// Restore resets the diagram to g. Ids in g that no longer exist are ignored.
func (d *Diagram) Restore(g Geometry) {
	shapes := make([]*Shape, 0, len(g.Shapes))
	for i := range g.Shapes {
		s := cloneShape(&g.Shapes[i])
		shapes = append(shapes, &s)
	}
	conns := make([]*Connection, 0, len(g.Connections))
	for i := range g.Connections {
		c := cloneConnection(&g.Connections[i])
		conns = append(conns, &c)
	}
	d.ReplaceShapes(shapes)
	d.ReplaceConnections(conns)

	pinned := make(map[string]bool, len(g.Pinned))
	for _, id := range g.Pinned {
		pinned[id] = true
	}
	expanded := make(map[string]bool, len(g.Expanded))
	for _, id := range g.Expanded {
		expanded[id] = true
	}
	for _, e := range d.elements {
		e.Pinned = pinned[e.ID]
		e.Expanded = expanded[e.ID]
		if g.Lanes != nil {
			e.Lane = g.Lanes[e.ID]
		}
	}
}

// ApplyGeometry copies bounds and waypoints from g onto existing shapes and
// connections without touching pins or lanes. It returns the number of
// entries that matched.
func (d *Diagram) ApplyGeometry(g Geometry) int {
	n := 0
	for _, s := range g.Shapes {
		if cur, ok := d.shapeIdx[s.ElementID]; ok {
			cur.Bounds = s.Bounds
			cur.Label = cloneRect(s.Label)
			n++
		}
	}
	for _, c := range g.Connections {
		if cur, ok := d.connIdx[c.ElementID]; ok {
			cur.Waypoints = geom.ClonePoints(c.Waypoints)
			cur.Label = cloneRect(c.Label)
			n++
		}
	}
	for _, id := range g.Expanded {
		if e, ok := d.elements[id]; ok {
			e.Expanded = true
		}
	}
	return n
}

// Clone returns a deep copy of d.
func (d *Diagram) Clone() *Diagram {
	c := New(d.ID)
	c.Name = d.Name
	c.order = append([]string(nil), d.order...)
	c.flowOrder = append([]string(nil), d.flowOrder...)
	for id, e := range d.elements {
		el := *e
		el.Incoming = append([]string(nil), e.Incoming...)
		el.Outgoing = append([]string(nil), e.Outgoing...)
		el.Children = append([]string(nil), e.Children...)
		c.elements[id] = &el
	}
	for id, f := range d.flows {
		fl := *f
		c.flows[id] = &fl
	}
	c.Restore(d.Snapshot())
	return c
}

func cloneShape(s *Shape) Shape {
	out := *s
	out.Label = cloneRect(s.Label)
	return out
}

func cloneConnection(c *Connection) Connection {
	out := *c
	out.Waypoints = geom.ClonePoints(c.Waypoints)
	out.Label = cloneRect(c.Label)
	return out
}

func cloneRect(r *geom.Rect) *geom.Rect {
	if r == nil {
		return nil
	}
	v := *r
	return &v
}
