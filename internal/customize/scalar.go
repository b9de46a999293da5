// Package customize implements CCH customization (spec.md §4.3): turning a
// weight view of the live capacity graph into upward/downward shortcut
// weights via lower-triangle enumeration, in scalar, bound-pair, and
// interval-vector flavours, plus an optional perfect-customization pass and
// the parallel, separator-tree-driven scheduler of spec.md §5.
package customize

import (
	"roadrouter/internal/cch"
	"roadrouter/internal/plf"
)

// Weight aliases the plf package's travel-time type.
type Weight = plf.Weight

// Rank aliases the cch package's contraction-rank type.
type Rank = cch.Rank

// Infinity is the unreachable-shortcut sentinel.
const Infinity = plf.Infinity

// ScalarView supplies a cch edge's seed weight from the live graph: the
// travel time assigned to one of the original arcs it shadows. Customize
// takes the minimum over every shadowed arc in a direction, or Infinity if
// the edge shadows none (a pure fill-in shortcut).
type ScalarView func(arcID cch.ArcID) Weight

// ScalarMetric is customize's simplest output: one weight per direction per
// cch edge (spec.md §4.3 "Scalar: min-combination on Weight").
type ScalarMetric struct {
	Up, Down []Weight
}

func seedScalar(c *cch.CCH, view ScalarView) (up, down []Weight) {
	m := c.NumEdges()
	up = make([]Weight, m)
	down = make([]Weight, m)
	for e := 0; e < m; e++ {
		up[e] = minShadow(c.UpShadow[e], view)
		down[e] = minShadow(c.DownShadow[e], view)
	}
	return up, down
}

func minShadow(arcs []cch.ArcID, view ScalarView) Weight {
	best := Infinity
	for _, a := range arcs {
		if w := view(a); w < best {
			best = w
		}
	}
	return best
}

// CustomizeScalar runs sequential lower-triangle enumeration customization
// and returns the resulting scalar metric.
func CustomizeScalar(c *cch.CCH, view ScalarView) *ScalarMetric {
	up, down := seedScalar(c, view)
	customizeRange(c, up, down, 0, Rank(c.NumNodes()))
	return &ScalarMetric{Up: up, Down: down}
}

// customizeRange runs the per-node lower-triangle relaxation for every rank
// in [lo, hi) ascending, mutating up/down in place. Callers may run this
// concurrently on disjoint [lo,hi) ranges provided neither range contains
// an ancestor (in the elimination tree) of a node in the other — the
// separator tree guarantees this invariant (spec.md §5).
func customizeRange(c *cch.CCH, up, down []Weight, lo, hi Rank) {
	for v := lo; v < hi; v++ {
		customizeNode(c, up, down, v)
	}
}

// customizeNode applies the lower-triangle enumeration rule at v: for every
// lower neighbour x of v (edge (x,v), id e1), and every other upward
// neighbour w of x with rank(w) > rank(v) (edge (x,w), id e2), the chordal
// property guarantees edge (v,w) exists (id e3); relax it in both
// directions via the path through x.
func customizeNode(c *cch.CCH, up, down []Weight, v Rank) {
	dlo, dhi := c.DownRange(v)
	for i := dlo; i < dhi; i++ {
		x := c.DownNeighbor[i]
		e1 := c.DownEdgeID[i]
		ulo, uhi := c.UpRange(x)
		for j := ulo; j < uhi; j++ {
			w := c.UpHead[j]
			if w <= v {
				continue
			}
			e2 := j
			e3, ok := c.EdgeIDBetween(v, w)
			if !ok {
				continue
			}
			if cand := plf.AddSaturating(down[e1], up[e2]); cand < up[e3] {
				up[e3] = cand
			}
			if cand := plf.AddSaturating(down[e2], up[e1]); cand < down[e3] {
				down[e3] = cand
			}
		}
	}
}
