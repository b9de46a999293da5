package cch

import "sort"

// FixOrderAndBuild runs contraction once under order, then derives a
// reordering that improves separator-based parallelism, and contracts
// again under the improved order (spec.md §4.2 "optional
// fix_order_and_build").
//
// The heuristic: stable-sort the whole order by each node's upward degree
// after the first pass, ascending (a proxy for separator width — high-degree
// nodes belong near the top of the hierarchy, low-degree nodes contract
// cheaply near the bottom); nodes of equal degree keep their first-pass
// relative order. This tends to push the nodes that end up heavily connected after
// fill-in towards the top of the new order, shrinking the separators
// bisection produces without changing which nodes are reachable from which.
func FixOrderAndBuild(n int, arcs []Arc, order []Rank) (*CCH, error) {
	first, err := Build(n, arcs, order)
	if err != nil {
		return nil, err
	}

	degreeByOrig := make([]int, n)
	for origID := 0; origID < n; origID++ {
		lo, hi := first.UpRange(first.Rank[origID])
		degreeByOrig[origID] = int(hi - lo)
	}

	improved := append([]Rank(nil), order...)
	sort.SliceStable(improved, func(i, j int) bool {
		return degreeByOrig[improved[i]] < degreeByOrig[improved[j]]
	})

	return Build(n, arcs, improved)
}
