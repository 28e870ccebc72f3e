// Package geom provides the small amount of plane geometry the layout engine
// needs: points, axis-aligned rectangles and orthogonal polyline helpers.
//
// All coordinates use the diagram convention: x grows to the right, y grows
// downward, and a rectangle's X/Y is its top-left corner.
package geom

import "math"

// Epsilon is the tolerance used when comparing coordinates.
const Epsilon = 0.5

// Point is a position in diagram space.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Add returns p translated by (dx, dy).
func (p Point) Add(dx, dy float64) Point { return Point{X: p.X + dx, Y: p.Y + dy} }

// Eq reports whether p and q coincide within Epsilon.
func (p Point) Eq(q Point) bool {
	return math.Abs(p.X-q.X) < Epsilon && math.Abs(p.Y-q.Y) < Epsilon
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// R is shorthand for Rect{X: x, Y: y, Width: w, Height: h}.
func R(x, y, w, h float64) Rect { return Rect{X: x, Y: y, Width: w, Height: h} }

func (r Rect) Right() float64   { return r.X + r.Width }
func (r Rect) Bottom() float64  { return r.Y + r.Height }
func (r Rect) CenterX() float64 { return r.X + r.Width/2 }
func (r Rect) CenterY() float64 { return r.Y + r.Height/2 }
func (r Rect) Center() Point    { return Point{X: r.CenterX(), Y: r.CenterY()} }

// Empty reports whether r has no area.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Translate returns r moved by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// Inset returns r shrunk by d on every side (grown when d is negative).
func (r Rect) Inset(d float64) Rect {
	return Rect{X: r.X + d, Y: r.Y + d, Width: r.Width - 2*d, Height: r.Height - 2*d}
}

// Overlaps reports whether r and o share interior area.
// Rectangles that merely touch along an edge do not overlap.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.Right()-Epsilon && o.X < r.Right()-Epsilon &&
		r.Y < o.Bottom()-Epsilon && o.Y < r.Bottom()-Epsilon
}

// Contains reports whether o lies entirely inside r, with tol pixels of slack.
func (r Rect) Contains(o Rect, tol float64) bool {
	return o.X >= r.X-tol && o.Y >= r.Y-tol &&
		o.Right() <= r.Right()+tol && o.Bottom() <= r.Bottom()+tol
}

// ContainsPoint reports whether p lies inside or on the border of r.
func (r Rect) ContainsPoint(p Point) bool {
	return p.X >= r.X-Epsilon && p.X <= r.Right()+Epsilon &&
		p.Y >= r.Y-Epsilon && p.Y <= r.Bottom()+Epsilon
}

// Union returns the smallest rectangle containing r and o.
// An empty receiver is ignored so Union can fold over a slice.
func (r Rect) Union(o Rect) Rect {
	if r.Width == 0 && r.Height == 0 && r.X == 0 && r.Y == 0 {
		return o
	}
	x := math.Min(r.X, o.X)
	y := math.Min(r.Y, o.Y)
	return Rect{
		X:      x,
		Y:      y,
		Width:  math.Max(r.Right(), o.Right()) - x,
		Height: math.Max(r.Bottom(), o.Bottom()) - y,
	}
}

// BoundsOf returns the bounding box of rects, and false when rects is empty.
func BoundsOf(rects []Rect) (Rect, bool) {
	if len(rects) == 0 {
		return Rect{}, false
	}
	b := rects[0]
	for _, r := range rects[1:] {
		x := math.Min(b.X, r.X)
		y := math.Min(b.Y, r.Y)
		b = Rect{X: x, Y: y, Width: math.Max(b.Right(), r.Right()) - x, Height: math.Max(b.Bottom(), r.Bottom()) - y}
	}
	return b, true
}

// OnPerimeter reports whether p lies on the border of r within tol.
func (r Rect) OnPerimeter(p Point, tol float64) bool {
	inX := p.X >= r.X-tol && p.X <= r.Right()+tol
	inY := p.Y >= r.Y-tol && p.Y <= r.Bottom()+tol
	if !inX || !inY {
		return false
	}
	return math.Abs(p.X-r.X) <= tol || math.Abs(p.X-r.Right()) <= tol ||
		math.Abs(p.Y-r.Y) <= tol || math.Abs(p.Y-r.Bottom()) <= tol
}

// Snap rounds v to the nearest multiple of pitch. A pitch <= 0 returns v.
func Snap(v float64, pitch int) float64 {
	if pitch <= 0 {
		return v
	}
	p := float64(pitch)
	return math.Round(v/p) * p
}
