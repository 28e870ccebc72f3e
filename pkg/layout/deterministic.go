package layout

import (
	"slices"

	"github.com/matzehuels/bpmnlayout/pkg/bpmn"
	"github.com/matzehuels/bpmnlayout/pkg/config"
	"github.com/matzehuels/bpmnlayout/pkg/geom"
	"github.com/matzehuels/bpmnlayout/pkg/layout/passes"
)

// Deterministic places flow nodes without the layered algorithm: columns
// left to right by longest path over the sequence flow, the happy path on
// the first row and every other branch on a row of its own below it. Gaps
// between columns depend on the kinds of the elements they separate.
//
// Every container level is placed on its own, outermost first. With a
// scope only the scope's children are placed. It returns the number of
// nodes placed.
func Deterministic(d *bpmn.Diagram, t config.Tunables, scope string) int {
	levels := []string{scope}
	if scope == "" {
		var inner []*bpmn.Element
		for _, e := range d.Elements() {
			if e.Kind == bpmn.Participant || (e.Kind == bpmn.SubProcess && e.Expanded) {
				inner = append(inner, e)
			}
		}
		slices.SortStableFunc(inner, func(a, b *bpmn.Element) int {
			return d.Depth(a.ID) - d.Depth(b.ID)
		})
		for _, e := range inner {
			levels = append(levels, e.ID)
		}
	}

	happy := passes.HappyPath(d)
	n := 0
	for _, parent := range levels {
		origin, ok := contentOrigin(d, t, parent)
		if !ok {
			continue
		}
		n += placeLevel(d, t, parent, origin, happy)
	}
	return n
}

// contentOrigin is the top-left corner available to the children of parent.
func contentOrigin(d *bpmn.Diagram, t config.Tunables, parent string) (geom.Point, bool) {
	if parent == "" {
		return geom.Pt(t.OriginX, t.OriginY), true
	}
	e, ok := d.Element(parent)
	if !ok {
		return geom.Point{}, false
	}
	r, ok := d.Bounds(parent)
	if !ok {
		return geom.Point{}, false
	}
	p := geom.Pt(r.X+t.ContainerPadding, r.Y+t.ContainerPadding)
	if e.Kind == bpmn.Participant {
		p.X += t.PoolHeaderWidth
		if len(d.Lanes(parent)) > 0 {
			p.X += t.PoolHeaderWidth
		}
	}
	return p, true
}

type level struct {
	d     *bpmn.Diagram
	nodes []*bpmn.Element
	in    map[string]bool
}

// successors returns the targets of the sequence flows leaving id or one of
// its boundary events that stay on this level, in declaration order.
func (l *level) successors(id string) []string {
	var out []string
	sources := []string{id}
	for _, be := range l.d.BoundaryEvents(id) {
		sources = append(sources, be.ID)
	}
	for _, src := range sources {
		e, _ := l.d.Element(src)
		for _, fid := range e.Outgoing {
			f, ok := l.d.Flow(fid)
			if !ok || f.Kind != bpmn.SequenceFlow || !l.in[f.Target] || f.Target == id {
				continue
			}
			if !slices.Contains(out, f.Target) {
				out = append(out, f.Target)
			}
		}
	}
	return out
}

// order returns the nodes in topological order, ignoring the edges that
// close a cycle. Roots without incoming flow come first.
func (l *level) order() []string {
	state := make(map[string]int, len(l.nodes))
	var post []string
	var visit func(string)
	visit = func(id string) {
		state[id] = 1
		for _, s := range l.successors(id) {
			if state[s] == 0 {
				visit(s)
			}
		}
		state[id] = 2
		post = append(post, id)
	}

	hasIn := make(map[string]bool)
	for _, n := range l.nodes {
		for _, s := range l.successors(n.ID) {
			hasIn[s] = true
		}
	}
	for _, n := range l.nodes {
		if !hasIn[n.ID] && state[n.ID] == 0 {
			visit(n.ID)
		}
	}
	for _, n := range l.nodes {
		if state[n.ID] == 0 {
			visit(n.ID)
		}
	}
	slices.Reverse(post)
	return post
}

func placeLevel(d *bpmn.Diagram, t config.Tunables, parent string, origin geom.Point, happy map[string]bool) int {
	l := &level{d: d, in: make(map[string]bool)}
	for _, e := range d.Elements() {
		if e.Parent == parent && e.Kind.IsFlowNode() && e.Kind != bpmn.BoundaryEvent {
			if _, ok := d.Bounds(e.ID); ok {
				l.nodes = append(l.nodes, e)
				l.in[e.ID] = true
			}
		}
	}
	if len(l.nodes) == 0 {
		return 0
	}

	topo := l.order()
	pos := make(map[string]int, len(topo))
	for i, id := range topo {
		pos[id] = i
	}
	forward := func(u string) []string {
		var out []string
		for _, v := range l.successors(u) {
			if pos[v] > pos[u] {
				out = append(out, v)
			}
		}
		return out
	}

	col := make(map[string]int, len(topo))
	for _, u := range topo {
		for _, v := range forward(u) {
			col[v] = max(col[v], col[u]+1)
		}
	}

	main := make(map[string]bool)
	for _, n := range l.nodes {
		if n.Kind == bpmn.StartEvent {
			main[n.ID] = true
		}
	}
	for fid := range happy {
		if f, ok := d.Flow(fid); ok && l.in[f.Target] {
			main[f.Target] = true
		}
	}

	row := make(map[string]int, len(topo))
	next, rowZeroUsed := 1, len(main) > 0
	assign := func(id string, r int) {
		row[id] = r
		if r == 0 {
			rowZeroUsed = true
		}
	}
	for _, u := range topo {
		if _, ok := row[u]; !ok {
			if main[u] || !rowZeroUsed {
				assign(u, 0)
			} else {
				assign(u, next)
				next++
			}
		}
		inherited := false
		for _, v := range forward(u) {
			if _, ok := row[v]; ok {
				continue
			}
			switch {
			case main[v]:
				assign(v, 0)
			case row[u] != 0 && !inherited:
				assign(v, row[u])
				inherited = true
			default:
				assign(v, next)
				next++
			}
		}
	}

	ncols := 0
	rowH := 0.0
	for _, n := range l.nodes {
		ncols = max(ncols, col[n.ID]+1)
		r, _ := d.Bounds(n.ID)
		rowH = max(rowH, r.Height)
	}
	colW := make([]float64, ncols)
	kinds := make([][]bpmn.Kind, ncols)
	for _, n := range l.nodes {
		r, _ := d.Bounds(n.ID)
		c := col[n.ID]
		colW[c] = max(colW[c], r.Width)
		kinds[c] = append(kinds[c], n.Kind)
	}
	gaps := make([]float64, ncols)
	for _, u := range topo {
		e, _ := d.Element(u)
		for _, v := range forward(u) {
			if c := col[u]; col[v] == c+1 {
				ev, _ := d.Element(v)
				gaps[c] = max(gaps[c], gapBetween(t, e.Kind, ev.Kind))
			}
		}
	}
	xs := make([]float64, ncols)
	x := origin.X
	for c := range ncols {
		xs[c] = x
		gap := gaps[c]
		if gap == 0 {
			gap = t.GapTaskTask
		}
		x += colW[c] + gap
	}

	for _, n := range l.nodes {
		r, _ := d.Bounds(n.ID)
		c := col[n.ID]
		nx := xs[c] + (colW[c]-r.Width)/2
		cy := origin.Y + rowH/2 + float64(row[n.ID])*(rowH+t.BranchSpacing)
		passes.MoveTree(d, n.ID, nx-r.X, cy-r.Height/2-r.Y)
	}

	for _, f := range d.FlowsOf(bpmn.SequenceFlow) {
		if l.in[hostOf(d, f.Source)] && l.in[hostOf(d, f.Target)] {
			d.SetWaypoints(f.ID, nil)
		}
	}
	return len(l.nodes)
}

// gapBetween is the horizontal gap between neighbouring columns holding
// elements of kinds a and b.
func gapBetween(t config.Tunables, a, b bpmn.Kind) float64 {
	switch {
	case a.IsEvent() || b.IsEvent():
		return t.GapEventTask
	case a.IsGateway() || b.IsGateway():
		return t.GapGatewayTask
	default:
		return t.GapTaskTask
	}
}

func hostOf(d *bpmn.Diagram, id string) string {
	if e, ok := d.Element(id); ok && e.Kind == bpmn.BoundaryEvent {
		return e.AttachedTo
	}
	return id
}
