package passes

import (
	"math"

	"github.com/matzehuels/bpmnlayout/pkg/geom"
)

// Route templates. Each returns an orthogonal polyline from the border of
// src to the border of tgt.

// Forward routes left to right: straight when the shapes share a row,
// otherwise a Z with its vertical leg halfway between them.
func Forward(src, tgt geom.Rect) []geom.Point {
	a := geom.Pt(src.Right(), src.CenterY())
	b := geom.Pt(tgt.X, tgt.CenterY())
	if math.Abs(a.Y-b.Y) < geom.Epsilon {
		return []geom.Point{a, geom.Pt(b.X, a.Y)}
	}
	midX := (a.X + b.X) / 2
	return []geom.Point{a, geom.Pt(midX, a.Y), geom.Pt(midX, b.Y), b}
}

// Backward routes a flow whose target lies to the left as a U below both
// shapes, running along floor.
func Backward(src, tgt geom.Rect, floor float64) []geom.Point {
	floor = math.Max(floor, math.Max(src.Bottom(), tgt.Bottom()))
	a := geom.Pt(src.CenterX(), src.Bottom())
	b := geom.Pt(tgt.CenterX(), tgt.Bottom())
	return []geom.Point{a, geom.Pt(a.X, floor), geom.Pt(b.X, floor), b}
}

// DogLeg routes vertical-horizontal-vertical between the facing edges of
// src and tgt, collapsing to one vertical segment when their centers are
// aligned.
func DogLeg(src, tgt geom.Rect) []geom.Point {
	var a, b geom.Point
	if tgt.CenterY() >= src.CenterY() {
		a = geom.Pt(src.CenterX(), src.Bottom())
		b = geom.Pt(tgt.CenterX(), tgt.Y)
	} else {
		a = geom.Pt(src.CenterX(), src.Y)
		b = geom.Pt(tgt.CenterX(), tgt.Bottom())
	}
	if math.Abs(a.X-b.X) < 1 {
		return []geom.Point{a, geom.Pt(a.X, b.Y)}
	}
	midY := (a.Y + b.Y) / 2
	return []geom.Point{a, geom.Pt(a.X, midY), geom.Pt(b.X, midY), b}
}

// Simple is the fallback route: a straight segment when the shapes share a
// row or column, otherwise an L from the side of src to the top or bottom of
// tgt.
func Simple(src, tgt geom.Rect) []geom.Point {
	switch {
	case math.Abs(src.CenterY()-tgt.CenterY()) < geom.Epsilon:
		if tgt.CenterX() >= src.CenterX() {
			return []geom.Point{geom.Pt(src.Right(), src.CenterY()), geom.Pt(tgt.X, src.CenterY())}
		}
		return []geom.Point{geom.Pt(src.X, src.CenterY()), geom.Pt(tgt.Right(), src.CenterY())}
	case math.Abs(src.CenterX()-tgt.CenterX()) < geom.Epsilon:
		if tgt.CenterY() >= src.CenterY() {
			return []geom.Point{geom.Pt(src.CenterX(), src.Bottom()), geom.Pt(src.CenterX(), tgt.Y)}
		}
		return []geom.Point{geom.Pt(src.CenterX(), src.Y), geom.Pt(src.CenterX(), tgt.Bottom())}
	}
	a := geom.Pt(src.Right(), src.CenterY())
	if tgt.CenterX() < src.CenterX() {
		a = geom.Pt(src.X, src.CenterY())
	}
	b := geom.Pt(tgt.CenterX(), tgt.Y)
	if tgt.CenterY() < src.CenterY() {
		b = geom.Pt(tgt.CenterX(), tgt.Bottom())
	}
	return []geom.Point{a, geom.Pt(b.X, a.Y), b}
}
