package passes

import (
	"cmp"
	"context"
	"slices"

	"github.com/matzehuels/bpmnlayout/pkg/bpmn"
	"github.com/matzehuels/bpmnlayout/pkg/geom"
)

// FitContainers grows expanded subprocesses and pools so their content fits
// inside with ContainerPadding, deepest containers first. Pools only grow
// when PoolExpansion is set. A full layout of a collaboration then stacks
// the pools vertically, left-aligned, and widens them to a common width.
func FitContainers(ctx context.Context, s *State) error {
	d := s.Diagram
	var containers []*bpmn.Element
	for _, e := range d.Elements() {
		if (e.Kind == bpmn.SubProcess && e.Expanded) || e.Kind == bpmn.Participant {
			containers = append(containers, e)
		}
	}
	slices.SortStableFunc(containers, func(a, b *bpmn.Element) int {
		return d.Depth(b.ID) - d.Depth(a.ID)
	})

	for _, c := range containers {
		if s.Skip[c.ID] {
			continue
		}
		if c.Kind == bpmn.Participant && !s.PoolExpansion {
			continue
		}
		fitContainer(s, c)
	}

	if !s.Partial() {
		stackPools(s)
	}
	return nil
}

// contentBounds returns the bounding box of the children of id, lanes
// excluded.
func contentBounds(d *bpmn.Diagram, id string) (geom.Rect, bool) {
	var rects []geom.Rect
	for _, c := range d.Children(id) {
		if c.Kind == bpmn.Lane {
			continue
		}
		if r, ok := d.Bounds(c.ID); ok {
			rects = append(rects, r)
		}
	}
	return geom.BoundsOf(rects)
}

func fitContainer(s *State, c *bpmn.Element) {
	d := s.Diagram
	r, ok := d.Bounds(c.ID)
	if !ok {
		return
	}
	content, ok := contentBounds(d, c.ID)
	if !ok {
		return
	}
	pad := s.Tunables.ContainerPadding
	left := pad
	if c.Kind == bpmn.Participant {
		left += s.Tunables.PoolHeaderWidth
	}
	need := geom.Rect{
		X:      content.X - left,
		Y:      content.Y - pad,
		Width:  content.Width + left + pad,
		Height: content.Height + 2*pad,
	}
	if r.Contains(need, 0) {
		return
	}
	d.SetBounds(c.ID, r.Union(need))
	if c.Kind == bpmn.Participant {
		stretchLanes(s, c.ID)
	}
}

// stretchLanes makes the lanes of pool cover it again after the pool
// changed size: every lane takes the pool width right of its header, the
// topmost lane reaches up to the pool top and the bottom lane down to the
// pool bottom.
func stretchLanes(s *State, pool string) {
	d := s.Diagram
	p, ok := d.Bounds(pool)
	if !ok {
		return
	}
	type band struct {
		id string
		r  geom.Rect
	}
	var bands []band
	for _, l := range d.Lanes(pool) {
		if r, ok := d.Bounds(l.ID); ok {
			bands = append(bands, band{l.ID, r})
		}
	}
	if len(bands) == 0 {
		return
	}
	slices.SortStableFunc(bands, func(a, b band) int { return cmp.Compare(a.r.Y, b.r.Y) })

	header := s.Tunables.PoolHeaderWidth
	first, last := &bands[0].r, &bands[len(bands)-1].r
	if first.Y > p.Y {
		first.Height += first.Y - p.Y
		first.Y = p.Y
	}
	if last.Bottom() < p.Bottom() {
		last.Height = p.Bottom() - last.Y
	}
	for _, b := range bands {
		d.SetBounds(b.id, geom.R(p.X+header, b.r.Y, p.Width-header, b.r.Height))
	}
}

// stackPools arranges the participants of a collaboration top to bottom in
// their current vertical order.
func stackPools(s *State) {
	d := s.Diagram
	type pool struct {
		id string
		r  geom.Rect
	}
	var pools []pool
	for _, e := range d.ElementsOf(bpmn.Participant) {
		if r, ok := d.Bounds(e.ID); ok && !s.Skip[e.ID] {
			pools = append(pools, pool{e.ID, r})
		}
	}
	if len(pools) < 2 {
		return
	}
	slices.SortStableFunc(pools, func(a, b pool) int {
		switch {
		case a.r.Y < b.r.Y:
			return -1
		case a.r.Y > b.r.Y:
			return 1
		}
		return 0
	})

	minX, width := pools[0].r.X, 0.0
	for _, p := range pools {
		minX = min(minX, p.r.X)
		width = max(width, p.r.Width)
	}
	y := pools[0].r.Y
	for _, p := range pools {
		MoveTree(d, p.id, minX-p.r.X, y-p.r.Y)
		r, _ := d.Bounds(p.id)
		if s.PoolExpansion && r.Width < width {
			r.Width = width
			d.SetBounds(p.id, r)
			stretchLanes(s, p.id)
		}
		y = r.Bottom() + s.Tunables.PoolSpacing
	}
}
