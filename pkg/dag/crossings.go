package dag

import (
	"maps"
	"slices"
)

// Side selects which edges of a node a pair count looks at.
type Side int

const (
	// Incoming counts edges from the previous layer.
	Incoming Side = iota
	// Outgoing counts edges to the next layer.
	Outgoing
)

// CountCrossings sums [CountLayerCrossings] over every pair of consecutive
// layers in orders. A layer missing from the map counts as empty.
//
//	orders := map[int][]string{
//	    0: {"StartEvent_1"},
//	    1: {"Task_review", "Task_approve"},
//	}
//	n := dag.CountCrossings(g, orders)
func CountCrossings(g *DAG, orders map[int][]string) int {
	total := 0
	for _, r := range slices.Sorted(maps.Keys(orders)) {
		if next, ok := orders[r+1]; ok {
			total += CountLayerCrossings(g, orders[r], next)
		}
	}
	return total
}

// CountLayerCrossings counts crossings among the edges running from layer a
// to layer b, both given in order.
//
// Edges (u1,v1) and (u2,v2) cross when u1 comes before u2 but v1 comes after
// v2. With edges sorted by source, the count is the number of inversions in
// their target positions, which a Fenwick tree finds in O(E log |b|).
func CountLayerCrossings(g *DAG, a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	pos := PosMap(b)

	// Children are visited source by source, so only targets need sorting
	// within each source.
	var targets []int
	for _, id := range a {
		start := len(targets)
		for _, c := range g.Children(id) {
			if p, ok := pos[c]; ok {
				targets = append(targets, p)
			}
		}
		slices.Sort(targets[start:])
	}
	if len(targets) < 2 {
		return 0
	}

	tree := make(fenwick, len(b)+1)
	crossings := 0
	for seen, p := range targets {
		crossings += seen - tree.prefix(p)
		tree.add(p)
	}
	return crossings
}

// fenwick counts positions; index 0 is unused.
type fenwick []int

// prefix returns how many added positions are <= p.
func (t fenwick) prefix(p int) int {
	n := 0
	for i := p + 1; i > 0; i -= i & -i {
		n += t[i]
	}
	return n
}

func (t fenwick) add(p int) {
	for i := p + 1; i < len(t); i += i & -i {
		t[i]++
	}
}

// CountPairCrossings counts the crossings between the edges of left and
// right on one side, with left placed before right in their layer. adjPos
// maps the adjacent layer's nodes to their positions; neighbours outside it
// are ignored.
//
// Comparing CountPairCrossings(left, right) with the swapped call tells the
// transpose heuristic whether exchanging two neighbours helps.
func CountPairCrossings(g *DAG, left, right string, adjPos map[string]int, side Side) int {
	neighbours := g.Children
	if side == Incoming {
		neighbours = g.Parents
	}

	rs := make([]int, 0, len(neighbours(right)))
	for _, n := range neighbours(right) {
		if p, ok := adjPos[n]; ok {
			rs = append(rs, p)
		}
	}
	crossings := 0
	for _, n := range neighbours(left) {
		lp, ok := adjPos[n]
		if !ok {
			continue
		}
		for _, rp := range rs {
			if lp > rp {
				crossings++
			}
		}
	}
	return crossings
}
