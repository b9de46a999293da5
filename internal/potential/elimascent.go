package potential

import (
	"roadrouter/internal/cch"
	"roadrouter/internal/plf"
)

// lazyAscent is the shared target-rooted elimination-tree walk every
// potential flavour is built on (spec.md §4.4): a node's value is computed
// on first demand by walking up the elimination tree until an
// already-computed ancestor is found, then descending back down relaxing
// each node against its upward neighbours that are already computed.
//
// edgeWeight functions are parameterised by the node the edge emanates
// from (not just the edge id) so CorridorLowerbound-Pot can look up that
// node's own arrival corridor to pick a metric column; CCH-Pot and
// MultiMetric-Pot simply ignore the "from" argument.
type lazyAscent struct {
	c        *cch.CCH
	computed []bool
	value    []Weight
}

func newLazyAscent(c *cch.CCH) *lazyAscent {
	n := c.NumNodes()
	return &lazyAscent{c: c, computed: make([]bool, n), value: make([]Weight, n)}
}

// seedTarget is the "backward elimination-tree sweep from target" of
// spec.md §4.4: it walks target up to the elimination tree root along the
// single tree-ancestor chain, filling value/computed for every node on
// that chain using downWeight for each tree edge crossed.
func (a *lazyAscent) seedTarget(target cch.Rank, downWeight func(e cch.EdgeID, from cch.Rank) Weight) {
	a.value[target] = 0
	a.computed[target] = true
	cur := target
	for {
		parent := a.c.ElimParent[cur]
		if parent < 0 {
			return
		}
		p := cch.Rank(parent)
		if a.computed[p] {
			return
		}
		e, ok := a.c.EdgeIDBetween(cur, p)
		if !ok {
			return
		}
		a.value[p] = plf.AddSaturating(downWeight(e, cur), a.value[cur])
		a.computed[p] = true
		cur = p
	}
}

// get returns v's lazily computed value, descending the elimination-tree
// stack per spec.md §4.4, relaxing over every already-computed upward
// neighbour using upWeight.
func (a *lazyAscent) get(v cch.Rank, upWeight func(e cch.EdgeID, from cch.Rank) Weight) (Weight, bool) {
	if !a.computed[v] {
		var stack []cch.Rank
		cur := v
		for !a.computed[cur] {
			stack = append(stack, cur)
			parent := a.c.ElimParent[cur]
			if parent < 0 {
				a.value[cur] = Infinity
				a.computed[cur] = true
				break
			}
			cur = cch.Rank(parent)
		}
		for i := len(stack) - 1; i >= 0; i-- {
			node := stack[i]
			best := Infinity
			lo, hi := a.c.UpRange(node)
			for e := lo; e < hi; e++ {
				w := a.c.UpHead[e]
				if !a.computed[w] {
					continue
				}
				if cand := plf.AddSaturating(upWeight(e, node), a.value[w]); cand < best {
					best = cand
				}
			}
			a.value[node] = best
			a.computed[node] = true
		}
	}
	return a.value[v], a.value[v] < Infinity
}
