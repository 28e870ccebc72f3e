package layered

import (
	"slices"
	"sort"

	"github.com/matzehuels/bpmnlayout/pkg/dag"
	"github.com/matzehuels/bpmnlayout/pkg/dag/perm"
	"github.com/matzehuels/bpmnlayout/pkg/layout/bridge"
)

// order fills lv.orders with a crossing-reduced ordering of every layer.
func (lv *level) order(opts bridge.Options) {
	g := lv.g
	layers := g.LayerIDs()
	for _, l := range layers {
		nodes := slices.Clone(g.NodesInLayer(l))
		sort.SliceStable(nodes, func(i, j int) bool {
			if nodes[i].Partition != nodes[j].Partition {
				return nodes[i].Partition < nodes[j].Partition
			}
			return nodes[i].Seq() < nodes[j].Seq()
		})
		lv.orders[l] = dag.NodeIDs(nodes)
	}
	if len(layers) < 2 {
		return
	}

	best := cloneOrders(lv.orders)
	bestCrossings := dag.CountCrossings(g, lv.orders)
	for i := 0; i < opts.Sweeps && bestCrossings > 0; i++ {
		for k := 1; k < len(layers); k++ {
			lv.sortByBarycenter(layers[k], layers[k-1], true)
		}
		for k := len(layers) - 2; k >= 0; k-- {
			lv.sortByBarycenter(layers[k], layers[k+1], false)
		}
		if c := dag.CountCrossings(g, lv.orders); c < bestCrossings {
			best, bestCrossings = cloneOrders(lv.orders), c
		}
	}
	lv.orders = best
	if bestCrossings > 0 {
		lv.transpose(layers)
		lv.exhaust(layers)
	}
}

// exhaust tries every ordering of each short run of same-partition nodes and
// keeps the one with the fewest crossings against the adjacent layers. Ties
// keep the current order.
func (lv *level) exhaust(layers []int) {
	for k, l := range layers {
		var prev, next []string
		if k > 0 {
			prev = lv.orders[layers[k-1]]
		}
		if k < len(layers)-1 {
			next = lv.orders[layers[k+1]]
		}
		ids := lv.orders[l]
		part := lv.partitions(ids)
		for start := 0; start < len(ids); {
			end := start + 1
			for end < len(ids) && part[ids[end]] == part[ids[start]] {
				end++
			}
			if n := end - start; n > 2 && n <= perm.MaxExhaustive {
				lv.exhaustRun(ids, start, end, prev, next)
			}
			start = end
		}
	}
}

func (lv *level) exhaustRun(ids []string, start, end int, prev, next []string) {
	cost := func() int {
		return dag.CountLayerCrossings(lv.g, prev, ids) + dag.CountLayerCrossings(lv.g, ids, next)
	}
	run := slices.Clone(ids[start:end])
	best, bestCost := slices.Clone(run), cost()
	perm.Each(len(run), func(p []int) bool {
		for i, j := range p {
			ids[start+i] = run[j]
		}
		if c := cost(); c < bestCost {
			best, bestCost = slices.Clone(ids[start:end]), c
		}
		return bestCost > 0
	})
	copy(ids[start:end], best)
}

// sortByBarycenter reorders layer by the mean position of each node's
// neighbours in the adjacent layer. Nodes without neighbours there keep their
// current position as their key. Partitions always stay in ascending order.
func (lv *level) sortByBarycenter(layer, adj int, useParents bool) {
	ids := lv.orders[layer]
	adjPos := dag.PosMap(lv.orders[adj])
	key := make(map[string]float64, len(ids))
	for i, id := range ids {
		nbrs := lv.g.Children(id)
		if useParents {
			nbrs = lv.g.Parents(id)
		}
		sum, count := 0.0, 0
		for _, nb := range nbrs {
			if p, ok := adjPos[nb]; ok {
				sum += float64(p)
				count++
			}
		}
		if count > 0 {
			key[id] = sum / float64(count)
		} else {
			key[id] = float64(i)
		}
	}

	part := lv.partitions(ids)
	sort.SliceStable(ids, func(i, j int) bool {
		a, b := ids[i], ids[j]
		if part[a] != part[b] {
			return part[a] < part[b]
		}
		return key[a] < key[b]
	})
}

// transpose swaps neighbouring nodes of the same partition while doing so
// removes crossings with both adjacent layers.
func (lv *level) transpose(layers []int) {
	const maxRounds = 16
	for round := 0; round < maxRounds; round++ {
		improved := false
		for k, l := range layers {
			ids := lv.orders[l]
			part := lv.partitions(ids)
			var prevPos, nextPos map[string]int
			if k > 0 {
				prevPos = dag.PosMap(lv.orders[layers[k-1]])
			}
			if k < len(layers)-1 {
				nextPos = dag.PosMap(lv.orders[layers[k+1]])
			}
			for i := 0; i+1 < len(ids); i++ {
				a, b := ids[i], ids[i+1]
				if part[a] != part[b] {
					continue
				}
				if lv.pairCrossings(b, a, prevPos, nextPos) < lv.pairCrossings(a, b, prevPos, nextPos) {
					ids[i], ids[i+1] = b, a
					improved = true
				}
			}
		}
		if !improved {
			return
		}
	}
}

func (lv *level) pairCrossings(left, right string, prevPos, nextPos map[string]int) int {
	c := 0
	if prevPos != nil {
		c += dag.CountPairCrossings(lv.g, left, right, prevPos, dag.Incoming)
	}
	if nextPos != nil {
		c += dag.CountPairCrossings(lv.g, left, right, nextPos, dag.Outgoing)
	}
	return c
}

func (lv *level) partitions(ids []string) map[string]int {
	part := make(map[string]int, len(ids))
	for _, id := range ids {
		if n, ok := lv.g.Node(id); ok {
			part[id] = n.Partition
		}
	}
	return part
}

func cloneOrders(orders map[int][]string) map[int][]string {
	out := make(map[int][]string, len(orders))
	for l, ids := range orders {
		out[l] = slices.Clone(ids)
	}
	return out
}
