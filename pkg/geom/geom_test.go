package geom

import "testing"

func TestRectOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Rect
		want bool
	}{
		{"disjoint", R(0, 0, 10, 10), R(20, 0, 10, 10), false},
		{"touching edge", R(0, 0, 10, 10), R(10, 0, 10, 10), false},
		{"overlapping", R(0, 0, 10, 10), R(5, 5, 10, 10), true},
		{"nested", R(0, 0, 100, 100), R(10, 10, 10, 10), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Overlaps(tt.b); got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRectContains(t *testing.T) {
	outer := R(0, 0, 100, 100)
	if !outer.Contains(R(10, 10, 20, 20), 0) {
		t.Error("Contains() = false for nested rect")
	}
	if outer.Contains(R(90, 90, 20, 20), 0) {
		t.Error("Contains() = true for rect leaking out")
	}
	if !outer.Contains(R(90, 90, 11, 11), 1) {
		t.Error("Contains() should honour tolerance")
	}
}

func TestOnPerimeter(t *testing.T) {
	r := R(100, 100, 100, 80)
	for _, p := range []Point{Pt(100, 140), Pt(200, 140), Pt(150, 100), Pt(150, 180)} {
		if !r.OnPerimeter(p, 1) {
			t.Errorf("OnPerimeter(%v) = false, want true", p)
		}
	}
	if r.OnPerimeter(Pt(150, 140), 1) {
		t.Error("centre reported as on perimeter")
	}
	if r.OnPerimeter(Pt(50, 140), 1) {
		t.Error("outside point reported as on perimeter")
	}
}

func TestBoundsOf(t *testing.T) {
	if _, ok := BoundsOf(nil); ok {
		t.Fatal("BoundsOf(nil) ok = true")
	}
	b, _ := BoundsOf([]Rect{R(10, 10, 10, 10), R(-5, 30, 10, 10)})
	want := R(-5, 10, 25, 30)
	if b != want {
		t.Errorf("BoundsOf() = %+v, want %+v", b, want)
	}
}

func TestSnap(t *testing.T) {
	if got := Snap(14, 10); got != 10 {
		t.Errorf("Snap(14,10) = %v", got)
	}
	if got := Snap(15, 10); got != 20 {
		t.Errorf("Snap(15,10) = %v", got)
	}
	if got := Snap(13.3, 0); got != 13.3 {
		t.Errorf("Snap with zero pitch changed value: %v", got)
	}
}

func TestIsOrthogonal(t *testing.T) {
	if !IsOrthogonal([]Point{Pt(0, 0), Pt(10, 0), Pt(10, 10)}) {
		t.Error("L path not orthogonal")
	}
	if IsOrthogonal([]Point{Pt(0, 0), Pt(10, 10)}) {
		t.Error("diagonal path reported orthogonal")
	}
}

func TestSimplify(t *testing.T) {
	got := Simplify([]Point{Pt(0, 0), Pt(5, 0), Pt(10, 0), Pt(10, 0), Pt(10, 10)})
	want := []Point{Pt(0, 0), Pt(10, 0), Pt(10, 10)}
	if len(got) != len(want) {
		t.Fatalf("Simplify() = %v, want %v", got, want)
	}
	for i := range want {
		if !got[i].Eq(want[i]) {
			t.Errorf("Simplify()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestPointAlong(t *testing.T) {
	pts := []Point{Pt(0, 0), Pt(10, 0), Pt(10, 10)}
	if p := PointAlong(pts, 15); !p.Eq(Pt(10, 5)) {
		t.Errorf("PointAlong(15) = %v", p)
	}
	if p := PointAlong(pts, 100); !p.Eq(Pt(10, 10)) {
		t.Errorf("PointAlong past end = %v", p)
	}
}

func TestSegmentIntersectsRect(t *testing.T) {
	r := R(10, 10, 10, 10)
	tests := []struct {
		name string
		s    Segment
		want bool
	}{
		{"horizontal through", Segment{Pt(0, 15), Pt(30, 15)}, true},
		{"horizontal above", Segment{Pt(0, 5), Pt(30, 5)}, false},
		{"diagonal through", Segment{Pt(0, 0), Pt(30, 30)}, true},
		{"diagonal missing corner", Segment{Pt(0, 25), Pt(5, 30)}, false},
		{"diagonal near corner", Segment{Pt(0, 12), Pt(12, 0)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SegmentIntersectsRect(tt.s, r); got != tt.want {
				t.Errorf("SegmentIntersectsRect() = %v, want %v", got, tt.want)
			}
		})
	}
}
