package geom

import "math"

// Segment is one straight piece of a polyline.
type Segment struct {
	A, B Point
}

// Horizontal reports whether s runs along the x axis.
func (s Segment) Horizontal() bool { return math.Abs(s.A.Y-s.B.Y) < Epsilon }

// Vertical reports whether s runs along the y axis.
func (s Segment) Vertical() bool { return math.Abs(s.A.X-s.B.X) < Epsilon }

// Orthogonal reports whether s is horizontal or vertical.
func (s Segment) Orthogonal() bool { return s.Horizontal() || s.Vertical() }

// Len returns the Euclidean length of s.
func (s Segment) Len() float64 { return math.Hypot(s.B.X-s.A.X, s.B.Y-s.A.Y) }

// Mid returns the midpoint of s.
func (s Segment) Mid() Point { return Point{X: (s.A.X + s.B.X) / 2, Y: (s.A.Y + s.B.Y) / 2} }

// Segments splits a waypoint list into consecutive segments.
func Segments(pts []Point) []Segment {
	if len(pts) < 2 {
		return nil
	}
	out := make([]Segment, 0, len(pts)-1)
	for i := 1; i < len(pts); i++ {
		out = append(out, Segment{A: pts[i-1], B: pts[i]})
	}
	return out
}

// IsOrthogonal reports whether every segment of pts is axis-aligned.
func IsOrthogonal(pts []Point) bool {
	for _, s := range Segments(pts) {
		if !s.Orthogonal() {
			return false
		}
	}
	return true
}

// PathLen returns the total length of the polyline.
func PathLen(pts []Point) float64 {
	total := 0.0
	for _, s := range Segments(pts) {
		total += s.Len()
	}
	return total
}

// PointAlong returns the point at distance d from the start of the polyline,
// clamped to its ends.
func PointAlong(pts []Point, d float64) Point {
	if len(pts) == 0 {
		return Point{}
	}
	if d <= 0 {
		return pts[0]
	}
	for _, s := range Segments(pts) {
		l := s.Len()
		if d <= l && l > 0 {
			t := d / l
			return Point{X: s.A.X + (s.B.X-s.A.X)*t, Y: s.A.Y + (s.B.Y-s.A.Y)*t}
		}
		d -= l
	}
	return pts[len(pts)-1]
}

// Simplify drops duplicate consecutive points and collinear interior points.
func Simplify(pts []Point) []Point {
	if len(pts) < 3 {
		return pts
	}
	out := []Point{pts[0]}
	for i := 1; i < len(pts); i++ {
		if pts[i].Eq(out[len(out)-1]) {
			continue
		}
		if len(out) >= 2 {
			a, b := out[len(out)-2], out[len(out)-1]
			c := pts[i]
			if (math.Abs(a.X-b.X) < Epsilon && math.Abs(b.X-c.X) < Epsilon) ||
				(math.Abs(a.Y-b.Y) < Epsilon && math.Abs(b.Y-c.Y) < Epsilon) {
				out[len(out)-1] = c
				continue
			}
		}
		out = append(out, pts[i])
	}
	if len(out) < 2 {
		return []Point{pts[0], pts[len(pts)-1]}
	}
	return out
}

// SegmentIntersectsRect reports whether s crosses or touches r.
// Orthogonal segments only need the bounding-box test; other segments are
// clipped with Liang-Barsky.
func SegmentIntersectsRect(s Segment, r Rect) bool {
	minX, maxX := math.Min(s.A.X, s.B.X), math.Max(s.A.X, s.B.X)
	minY, maxY := math.Min(s.A.Y, s.B.Y), math.Max(s.A.Y, s.B.Y)
	if maxX < r.X || minX > r.Right() || maxY < r.Y || minY > r.Bottom() {
		return false
	}
	if s.Orthogonal() {
		return true
	}

	dx, dy := s.B.X-s.A.X, s.B.Y-s.A.Y
	tMin, tMax := 0.0, 1.0
	clip := func(p, q float64) bool {
		if p == 0 {
			return q >= 0
		}
		t := q / p
		if p < 0 {
			if t > tMax {
				return false
			}
			if t > tMin {
				tMin = t
			}
		} else {
			if t < tMin {
				return false
			}
			if t < tMax {
				tMax = t
			}
		}
		return true
	}
	return clip(-dx, s.A.X-r.X) && clip(dx, r.Right()-s.A.X) &&
		clip(-dy, s.A.Y-r.Y) && clip(dy, r.Bottom()-s.A.Y) && tMin <= tMax
}

// ClonePoints returns a copy of pts.
func ClonePoints(pts []Point) []Point {
	if pts == nil {
		return nil
	}
	out := make([]Point, len(pts))
	copy(out, pts)
	return out
}
