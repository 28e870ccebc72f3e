package layered

import (
	"math"
	"slices"

	"github.com/matzehuels/bpmnlayout/pkg/geom"
)

// route computes an orthogonal polyline for every edge of the level. The
// route leaves the source on its right side, crosses each layer it spans
// horizontally at the height of its channel node, changes height only in the
// gaps between columns and enters the target on its left side. Routes of
// reversed edges are flipped back to run from source to target. Self-loops
// get no route.
func (lv *level) route() {
	hops := make(map[string]map[string]string)
	reversed := make(map[string]bool)
	for _, e := range lv.g.Edges() {
		if hops[e.ID] == nil {
			hops[e.ID] = make(map[string]string)
		}
		hops[e.ID][e.From] = e.To
		reversed[e.ID] = e.Reversed
	}

	for _, e := range lv.edges {
		next, ok := hops[e.ID]
		if !ok {
			continue
		}
		from, to := e.Source, e.Target
		if reversed[e.ID] {
			from, to = to, from
		}
		pts := lv.trace(from, to, next)
		if len(pts) == 0 {
			continue
		}
		if reversed[e.ID] {
			slices.Reverse(pts)
		}
		lv.routes[e.ID] = pts
	}
}

func (lv *level) trace(from, to string, next map[string]string) []geom.Point {
	src, ok := lv.g.Node(from)
	if !ok {
		return nil
	}
	c := lv.center[from]
	stations := []geom.Point{geom.Pt(c.X+src.Width/2, c.Y)}

	cur := from
	for steps := 0; cur != to; steps++ {
		nxt, ok := next[cur]
		if !ok || steps > len(next) {
			return nil
		}
		cur = nxt
		n, _ := lv.g.Node(cur)
		c := lv.center[cur]
		if cur == to {
			stations = append(stations, geom.Pt(c.X-n.Width/2, c.Y))
			break
		}
		x0, w := lv.colX[n.Layer], lv.colW[n.Layer]
		stations = append(stations, geom.Pt(x0, c.Y), geom.Pt(x0+w, c.Y))
	}

	pts := []geom.Point{stations[0]}
	for i := 1; i < len(stations); i++ {
		p, q := stations[i-1], stations[i]
		if math.Abs(p.Y-q.Y) >= geom.Epsilon {
			midX := (p.X + q.X) / 2
			pts = append(pts, geom.Pt(midX, p.Y), geom.Pt(midX, q.Y))
		}
		pts = append(pts, q)
	}
	return geom.Simplify(pts)
}
