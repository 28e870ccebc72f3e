package passes

import (
	"cmp"
	"context"
	"math"
	"slices"
	"sort"

	"github.com/matzehuels/bpmnlayout/pkg/bpmn"
	"github.com/matzehuels/bpmnlayout/pkg/geom"
)

type sweepKind int

// Event order at equal x: removals, then queries, then insertions, so
// segments that only touch at an end are not counted.
const (
	sweepRemove sweepKind = iota
	sweepQuery
	sweepInsert
)

type sweepEvent struct {
	x    float64
	kind sweepKind
	seg  int
}

type axisSegment struct {
	flow       string
	fixed      float64 // y of a horizontal, x of a vertical segment
	lo, hi     float64
	horizontal bool
}

// bitTree is a Fenwick tree of counts over 1-based ranks.
type bitTree []int

func newBitTree(n int) bitTree { return make(bitTree, n+1) }

func (t bitTree) add(i, v int) {
	for ; i < len(t); i += i & -i {
		t[i] += v
	}
}

// prefix returns the count of ranks 1..i.
func (t bitTree) prefix(i int) int {
	n := 0
	for ; i > 0; i -= i & -i {
		n += t[i]
	}
	return n
}

// kth returns the smallest rank r with prefix(r) >= k.
func (t bitTree) kth(k int) int {
	pos := 0
	step := 1
	for step*2 < len(t) {
		step *= 2
	}
	for ; step > 0; step /= 2 {
		if next := pos + step; next < len(t) && t[next] < k {
			pos = next
			k -= t[next]
		}
	}
	return pos + 1
}

// Crossings counts the pairs of flows whose routes cross, using a sweep
// over x. The active horizontal segments live in a Fenwick tree indexed by
// their rank in y order, so each event costs O(log n) plus the crossings it
// reports. Only proper crossings of a horizontal and a vertical segment
// count; touching ends, shared endpoints and diagonal segments do not.
// Pairs are returned sorted, each with its ids in order.
func Crossings(d *bpmn.Diagram) (int, [][2]string) {
	var segs []axisSegment
	for _, f := range d.Flows() {
		for _, sg := range geom.Segments(d.Waypoints(f.ID)) {
			switch {
			case sg.Len() < geom.Epsilon:
			case sg.Horizontal():
				segs = append(segs, axisSegment{
					flow: f.ID, fixed: sg.A.Y, horizontal: true,
					lo: math.Min(sg.A.X, sg.B.X), hi: math.Max(sg.A.X, sg.B.X),
				})
			case sg.Vertical():
				segs = append(segs, axisSegment{
					flow: f.ID, fixed: sg.A.X,
					lo: math.Min(sg.A.Y, sg.B.Y), hi: math.Max(sg.A.Y, sg.B.Y),
				})
			}
		}
	}

	eps := geom.Epsilon
	events := make([]sweepEvent, 0, 2*len(segs))
	var byY []int
	for i, sg := range segs {
		if sg.horizontal {
			if sg.hi-sg.lo <= 2*eps {
				continue
			}
			byY = append(byY, i)
			events = append(events,
				sweepEvent{x: sg.lo + eps, kind: sweepInsert, seg: i},
				sweepEvent{x: sg.hi - eps, kind: sweepRemove, seg: i})
			continue
		}
		events = append(events, sweepEvent{x: sg.fixed, kind: sweepQuery, seg: i})
	}
	slices.SortFunc(events, func(a, b sweepEvent) int {
		if c := cmp.Compare(a.x, b.x); c != 0 {
			return c
		}
		return cmp.Compare(a.kind, b.kind)
	})

	// rank[i] is the 1-based position of horizontal segment i in y order.
	slices.SortFunc(byY, func(a, b int) int {
		if c := cmp.Compare(segs[a].fixed, segs[b].fixed); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	rank := make([]int, len(segs))
	for r, i := range byY {
		rank[i] = r + 1
	}
	// rankFrom returns the first rank whose y is above y, or at least y when
	// inclusive is set.
	rankFrom := func(y float64, inclusive bool) int {
		return 1 + sort.Search(len(byY), func(k int) bool {
			if inclusive {
				return segs[byY[k]].fixed >= y
			}
			return segs[byY[k]].fixed > y
		})
	}

	active := newBitTree(len(byY))
	found := make(map[[2]string]bool)
	for _, ev := range events {
		sg := segs[ev.seg]
		switch ev.kind {
		case sweepInsert:
			active.add(rank[ev.seg], 1)
		case sweepRemove:
			active.add(rank[ev.seg], -1)
		case sweepQuery:
			from := rankFrom(sg.lo+eps, false)
			to := rankFrom(sg.hi-eps, true)
			if from >= to {
				continue
			}
			last := active.prefix(to - 1)
			for k := active.prefix(from-1) + 1; k <= last; k++ {
				other := segs[byY[active.kth(k)-1]].flow
				if other == sg.flow {
					continue
				}
				found[orderedPair(sg.flow, other)] = true
			}
		}
	}

	pairs := make([][2]string, 0, len(found))
	for p := range found {
		pairs = append(pairs, p)
	}
	slices.SortFunc(pairs, func(a, b [2]string) int {
		if c := cmp.Compare(a[0], b[0]); c != 0 {
			return c
		}
		return cmp.Compare(a[1], b[1])
	})
	return len(pairs), pairs
}

func orderedPair(a, b string) [2]string {
	if b < a {
		a, b = b, a
	}
	return [2]string{a, b}
}

// DetectCrossings records the crossing flow pairs of the final routes.
func DetectCrossings(ctx context.Context, s *State) error {
	s.Report.CrossingFlows, s.Report.CrossingFlowPairs = Crossings(s.Diagram)
	return nil
}
