package bpmn

import (
	"errors"
	"fmt"
	"slices"

	"github.com/matzehuels/bpmnlayout/pkg/geom"
)

var (
	// ErrDuplicateID is returned when an element or flow id is already in use.
	ErrDuplicateID = errors.New("duplicate id")
	// ErrUnknownElement is returned when a referenced element does not exist.
	ErrUnknownElement = errors.New("unknown element")
	// ErrInvalidKind is returned when an element is added with the wrong kind.
	ErrInvalidKind = errors.New("invalid kind")
)

// Element is a semantic BPMN element: a flow node, container or artifact.
type Element struct {
	ID   string
	Kind Kind
	Name string

	// Parent is the enclosing participant or subprocess. Empty means the
	// top-level process.
	Parent string
	// Lane is the lane the element is assigned to, if any.
	Lane string
	// AttachedTo is the host activity of a boundary event.
	AttachedTo string
	// Default is the id of the default outgoing flow of a gateway or activity.
	Default string
	// EventDefinition names the event trigger ("message", "timer",
	// "compensate", ...). Empty for none events.
	EventDefinition string

	TriggeredByEvent  bool
	IsForCompensation bool
	Expanded          bool

	// Pinned marks an element whose position was set by hand.
	Pinned bool

	Incoming []string
	Outgoing []string
	Children []string
}

// IsContainer reports whether e lays out child shapes inside its bounds.
func (e *Element) IsContainer() bool {
	switch e.Kind {
	case Participant, Lane:
		return true
	case SubProcess:
		return e.Expanded
	}
	return false
}

// Flow is a connection between two elements.
type Flow struct {
	ID        string
	Kind      Kind
	Name      string
	Source    string
	Target    string
	Condition string
}

// Shape is the interchange geometry of a non-connection element.
type Shape struct {
	ID        string     `json:"id" yaml:"id"`
	ElementID string     `json:"elementId" yaml:"elementId"`
	Bounds    geom.Rect  `json:"bounds" yaml:"bounds"`
	Label     *geom.Rect `json:"label,omitempty" yaml:"label,omitempty"`
}

// Connection is the interchange geometry of a flow.
type Connection struct {
	ID        string       `json:"id" yaml:"id"`
	ElementID string       `json:"elementId" yaml:"elementId"`
	Waypoints []geom.Point `json:"waypoints" yaml:"waypoints"`
	Label     *geom.Rect   `json:"label,omitempty" yaml:"label,omitempty"`
}

// Diagram is one process or collaboration with its geometry.
type Diagram struct {
	ID   string
	Name string

	elements  map[string]*Element
	order     []string
	flows     map[string]*Flow
	flowOrder []string

	shapes      []*Shape
	connections []*Connection
	shapeIdx    map[string]*Shape
	connIdx     map[string]*Connection
}

// New returns an empty diagram.
func New(id string) *Diagram {
	return &Diagram{
		ID:       id,
		elements: make(map[string]*Element),
		flows:    make(map[string]*Flow),
		shapeIdx: make(map[string]*Shape),
		connIdx:  make(map[string]*Connection),
	}
}

// AddElement registers e. Parent and host references must already exist.
func (d *Diagram) AddElement(e Element) (*Element, error) {
	if e.ID == "" {
		return nil, fmt.Errorf("%w: element id is empty", ErrUnknownElement)
	}
	if d.exists(e.ID) {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateID, e.ID)
	}
	if e.Kind == KindUnknown || e.Kind.IsConnection() {
		return nil, fmt.Errorf("%w: %s cannot be a shape element", ErrInvalidKind, e.Kind)
	}
	if e.Parent != "" {
		p, ok := d.elements[e.Parent]
		if !ok {
			return nil, fmt.Errorf("%w: parent %s of %s", ErrUnknownElement, e.Parent, e.ID)
		}
		if p.Kind != Participant && p.Kind != SubProcess {
			return nil, fmt.Errorf("%w: %s (%s) cannot contain %s", ErrInvalidKind, p.ID, p.Kind, e.ID)
		}
	}
	if e.Kind == Lane {
		if p, ok := d.elements[e.Parent]; !ok || p.Kind != Participant {
			return nil, fmt.Errorf("%w: lane %s must belong to a participant", ErrInvalidKind, e.ID)
		}
	}
	if e.Lane != "" {
		l, ok := d.elements[e.Lane]
		if !ok || l.Kind != Lane {
			return nil, fmt.Errorf("%w: lane %s of %s", ErrUnknownElement, e.Lane, e.ID)
		}
	}
	if e.Kind == BoundaryEvent {
		h, ok := d.elements[e.AttachedTo]
		if !ok || h.Kind.Category() != CategoryActivity {
			return nil, fmt.Errorf("%w: boundary event %s needs an activity host, got %q", ErrInvalidKind, e.ID, e.AttachedTo)
		}
	}

	el := e
	el.Incoming = nil
	el.Outgoing = nil
	el.Children = nil
	d.elements[el.ID] = &el
	d.order = append(d.order, el.ID)
	if el.Parent != "" {
		p := d.elements[el.Parent]
		p.Children = append(p.Children, el.ID)
	}
	return &el, nil
}

// AddFlow registers a connection between two existing elements.
func (d *Diagram) AddFlow(f Flow) (*Flow, error) {
	if f.ID == "" {
		return nil, fmt.Errorf("%w: flow id is empty", ErrUnknownElement)
	}
	if d.exists(f.ID) {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateID, f.ID)
	}
	if !f.Kind.IsConnection() {
		return nil, fmt.Errorf("%w: %s is not a connection kind", ErrInvalidKind, f.Kind)
	}
	src, ok := d.elements[f.Source]
	if !ok {
		return nil, fmt.Errorf("%w: source %s of %s", ErrUnknownElement, f.Source, f.ID)
	}
	tgt, ok := d.elements[f.Target]
	if !ok {
		return nil, fmt.Errorf("%w: target %s of %s", ErrUnknownElement, f.Target, f.ID)
	}
	fl := f
	d.flows[fl.ID] = &fl
	d.flowOrder = append(d.flowOrder, fl.ID)
	src.Outgoing = append(src.Outgoing, fl.ID)
	tgt.Incoming = append(tgt.Incoming, fl.ID)
	return &fl, nil
}

func (d *Diagram) exists(id string) bool {
	_, e := d.elements[id]
	_, f := d.flows[id]
	return e || f
}

// Element returns the element with the given id.
func (d *Diagram) Element(id string) (*Element, bool) {
	e, ok := d.elements[id]
	return e, ok
}

// Flow returns the flow with the given id.
func (d *Diagram) Flow(id string) (*Flow, bool) {
	f, ok := d.flows[id]
	return f, ok
}

// Has reports whether id names an element or a flow.
func (d *Diagram) Has(id string) bool { return d.exists(id) }

// Elements returns all elements in declaration order.
func (d *Diagram) Elements() []*Element {
	out := make([]*Element, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, d.elements[id])
	}
	return out
}

// Flows returns all flows in declaration order.
func (d *Diagram) Flows() []*Flow {
	out := make([]*Flow, 0, len(d.flowOrder))
	for _, id := range d.flowOrder {
		out = append(out, d.flows[id])
	}
	return out
}

// ElementsOf returns the elements of the given kinds in declaration order.
func (d *Diagram) ElementsOf(kinds ...Kind) []*Element {
	var out []*Element
	for _, id := range d.order {
		if e := d.elements[id]; slices.Contains(kinds, e.Kind) {
			out = append(out, e)
		}
	}
	return out
}

// FlowNodes returns every event, activity and gateway in declaration order.
func (d *Diagram) FlowNodes() []*Element {
	var out []*Element
	for _, id := range d.order {
		if e := d.elements[id]; e.Kind.IsFlowNode() {
			out = append(out, e)
		}
	}
	return out
}

// FlowsOf returns the flows of kind k in declaration order.
func (d *Diagram) FlowsOf(k Kind) []*Flow {
	var out []*Flow
	for _, id := range d.flowOrder {
		if f := d.flows[id]; f.Kind == k {
			out = append(out, f)
		}
	}
	return out
}

// Children returns the direct children of the container id in order.
// Lanes have no direct children; use LaneMembers for them.
func (d *Diagram) Children(id string) []*Element {
	e, ok := d.elements[id]
	if !ok {
		return nil
	}
	out := make([]*Element, 0, len(e.Children))
	for _, c := range e.Children {
		out = append(out, d.elements[c])
	}
	return out
}

// Lanes returns the lanes of participant id in order.
func (d *Diagram) Lanes(participant string) []*Element {
	var out []*Element
	for _, c := range d.Children(participant) {
		if c.Kind == Lane {
			out = append(out, c)
		}
	}
	return out
}

// LaneMembers returns the elements assigned to lane id.
func (d *Diagram) LaneMembers(lane string) []*Element {
	var out []*Element
	for _, id := range d.order {
		if e := d.elements[id]; e.Lane == lane {
			out = append(out, e)
		}
	}
	return out
}

// BoundaryEvents returns the boundary events attached to host.
func (d *Diagram) BoundaryEvents(host string) []*Element {
	var out []*Element
	for _, id := range d.order {
		if e := d.elements[id]; e.Kind == BoundaryEvent && e.AttachedTo == host {
			out = append(out, e)
		}
	}
	return out
}

// Participant returns the participant that ultimately contains id, if any.
func (d *Diagram) Participant(id string) (*Element, bool) {
	for cur, ok := d.elements[id]; ok; cur, ok = d.elements[cur.Parent] {
		if cur.Kind == Participant {
			return cur, true
		}
	}
	return nil, false
}

// IsAncestor reports whether anc contains id, directly or transitively.
func (d *Diagram) IsAncestor(anc, id string) bool {
	e, ok := d.elements[id]
	for ok && e.Parent != "" {
		if e.Parent == anc {
			return true
		}
		e, ok = d.elements[e.Parent]
	}
	return false
}

// Depth returns the nesting depth of id; top-level elements have depth 0.
func (d *Diagram) Depth(id string) int {
	n := 0
	e, ok := d.elements[id]
	for ok && e.Parent != "" {
		n++
		e, ok = d.elements[e.Parent]
	}
	return n
}

// Descendants returns every element nested below id, parents first.
func (d *Diagram) Descendants(id string) []*Element {
	var out []*Element
	var walk func(string)
	walk = func(p string) {
		for _, c := range d.Children(p) {
			out = append(out, c)
			walk(c.ID)
		}
	}
	walk(id)
	return out
}

// SetLane reassigns id to lane. An empty lane removes the assignment.
func (d *Diagram) SetLane(id, lane string) error {
	e, ok := d.elements[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownElement, id)
	}
	if lane != "" {
		l, ok := d.elements[lane]
		if !ok || l.Kind != Lane {
			return fmt.Errorf("%w: lane %s", ErrUnknownElement, lane)
		}
	}
	e.Lane = lane
	return nil
}
