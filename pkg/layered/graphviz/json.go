package graphviz

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/bpmnlayout/pkg/geom"
	"github.com/matzehuels/bpmnlayout/pkg/layout/bridge"
)

type jsonGraph struct {
	BB      string       `json:"bb"`
	Objects []jsonObject `json:"objects"`
	Edges   []jsonEdge   `json:"edges"`
}

type jsonObject struct {
	Name string `json:"name"`
	Pos  string `json:"pos"`
}

type jsonEdge struct {
	GVID int    `json:"_gvid"`
	ID   string `json:"id"`
	Pos  string `json:"pos"`
}

// parseLayout reads dot's JSON output for the children of n. Dot reports node
// centers and spline control points in points with the origin bottom-left;
// the result uses top-left corners with y pointing down, shifted so the
// drawing starts at 0,0.
func parseLayout(data []byte, n *bridge.Node) (*result, error) {
	var jg jsonGraph
	if err := json.Unmarshal(data, &jg); err != nil {
		return nil, fmt.Errorf("decode layout: %w", err)
	}
	bb, err := parseFloats(jg.BB, 4)
	if err != nil {
		return nil, fmt.Errorf("bounding box: %w", err)
	}
	top := bb[3]

	sizes := make(map[string]*bridge.Node, len(n.Children))
	for _, c := range n.Children {
		sizes[c.ID] = c
	}

	res := &result{
		pos:    make(map[string]geom.Point, len(n.Children)),
		routes: make(map[string][]geom.Point, len(n.Edges)),
	}
	for _, o := range jg.Objects {
		c, ok := sizes[o.Name]
		if !ok {
			continue
		}
		xy, err := parseFloats(o.Pos, 2)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", o.Name, err)
		}
		res.pos[o.Name] = geom.Pt(xy[0]-c.Width/2, top-xy[1]-c.Height/2)
	}
	for id := range sizes {
		if _, ok := res.pos[id]; !ok {
			return nil, fmt.Errorf("node %s missing from layout", id)
		}
	}

	// Edges without an id attribute fall back to declaration order.
	var declared []string
	for _, e := range n.Edges {
		if e.Source != e.Target {
			declared = append(declared, e.ID)
		}
	}
	for _, je := range jg.Edges {
		id := je.ID
		if id == "" && je.GVID >= 0 && je.GVID < len(declared) {
			id = declared[je.GVID]
		}
		if id == "" || je.Pos == "" {
			continue
		}
		pts, err := parseSpline(je.Pos)
		if err != nil {
			return nil, fmt.Errorf("edge %s: %w", id, err)
		}
		for i := range pts {
			pts[i].Y = top - pts[i].Y
		}
		res.routes[id] = orthogonalize(pts)
	}

	res.normalize(sizes)
	return res, nil
}

// normalize shifts the drawing to start at 0,0 and computes its size.
func (r *result) normalize(sizes map[string]*bridge.Node) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for id, p := range r.pos {
		c := sizes[id]
		minX, minY = math.Min(minX, p.X), math.Min(minY, p.Y)
		maxX, maxY = math.Max(maxX, p.X+c.Width), math.Max(maxY, p.Y+c.Height)
	}
	for _, pts := range r.routes {
		for _, p := range pts {
			minX, minY = math.Min(minX, p.X), math.Min(minY, p.Y)
			maxX, maxY = math.Max(maxX, p.X), math.Max(maxY, p.Y)
		}
	}
	for id, p := range r.pos {
		r.pos[id] = p.Add(-minX, -minY)
	}
	for id, pts := range r.routes {
		for i := range pts {
			pts[i] = pts[i].Add(-minX, -minY)
		}
		r.routes[id] = pts
	}
	r.width, r.height = maxX-minX, maxY-minY
}

// parseSpline parses an edge pos attribute: optional "s,x,y" and "e,x,y"
// endpoints followed by 3n+1 cubic B-spline control points. With ortho
// splines the curve pieces are straight, so the piece endpoints are the
// polyline vertices. The arrow tip "e" ends the route when present.
func parseSpline(pos string) ([]geom.Point, error) {
	var start, end *geom.Point
	var ctrl []geom.Point
	for _, f := range strings.Fields(pos) {
		switch {
		case strings.HasPrefix(f, "s,"), strings.HasPrefix(f, "e,"):
			xy, err := parseFloats(f[2:], 2)
			if err != nil {
				return nil, err
			}
			p := geom.Pt(xy[0], xy[1])
			if f[0] == 's' {
				start = &p
			} else {
				end = &p
			}
		default:
			xy, err := parseFloats(f, 2)
			if err != nil {
				return nil, err
			}
			ctrl = append(ctrl, geom.Pt(xy[0], xy[1]))
		}
	}
	if len(ctrl) == 0 {
		return nil, fmt.Errorf("no control points in %q", pos)
	}

	var pts []geom.Point
	if start != nil {
		pts = append(pts, *start)
	}
	for i := 0; i < len(ctrl); i += 3 {
		pts = append(pts, ctrl[i])
	}
	if last := ctrl[len(ctrl)-1]; (len(ctrl)-1)%3 != 0 {
		pts = append(pts, last)
	}
	if end != nil {
		pts = append(pts, *end)
	}
	return pts, nil
}

// orthogonalize replaces every diagonal step with a horizontal-vertical-
// horizontal jog through the middle.
func orthogonalize(pts []geom.Point) []geom.Point {
	if len(pts) < 2 {
		return pts
	}
	out := []geom.Point{pts[0]}
	for i := 1; i < len(pts); i++ {
		p, q := out[len(out)-1], pts[i]
		if !(geom.Segment{A: p, B: q}).Orthogonal() {
			midX := (p.X + q.X) / 2
			out = append(out, geom.Pt(midX, p.Y), geom.Pt(midX, q.Y))
		}
		out = append(out, q)
	}
	return geom.Simplify(out)
}

func parseFloats(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) < n {
		return nil, fmt.Errorf("want %d numbers in %q", n, s)
	}
	out := make([]float64, n)
	for i := range n {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", s, err)
		}
		out[i] = v
	}
	return out, nil
}
