// Package perm enumerates permutations of small index sets.
//
// The layered ordering uses it to search every ordering of a short run of
// nodes once the heuristic sweeps have settled.
package perm

import "slices"

// MaxExhaustive is the largest set size Each will enumerate in full.
const MaxExhaustive = 7

// Seq returns [0, 1, ..., n-1]. For n <= 0 it returns an empty slice.
func Seq(n int) []int {
	if n <= 0 {
		return []int{}
	}
	s := make([]int, n)
	for i := range s {
		s[i] = i
	}
	return s
}

// Factorial returns n!. For n <= 1 it returns 1.
func Factorial(n int) int {
	f := 1
	for i := 2; i <= n; i++ {
		f *= i
	}
	return f
}

// Generate returns permutations of [0, n) in Heap's order, starting with the
// identity. A limit <= 0 returns all n! of them. Each slice is a separate
// allocation.
func Generate(n, limit int) [][]int {
	var out [][]int
	Each(n, func(p []int) bool {
		out = append(out, slices.Clone(p))
		return limit <= 0 || len(out) < limit
	})
	return out
}

// Each calls fn with every permutation of [0, n) in Heap's order until fn
// returns false. The slice passed to fn is reused between calls. It returns
// the number of permutations visited.
func Each(n int, fn func([]int) bool) int {
	p := Seq(n)
	visited := 1
	if !fn(p) || n < 2 {
		return visited
	}
	state := make([]int, n)
	for i := 0; i < n; {
		if state[i] >= i {
			state[i] = 0
			i++
			continue
		}
		if i%2 == 0 {
			p[0], p[i] = p[i], p[0]
		} else {
			p[state[i]], p[i] = p[i], p[state[i]]
		}
		visited++
		if !fn(p) {
			return visited
		}
		state[i]++
		i = 0
	}
	return visited
}
