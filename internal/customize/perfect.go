package customize

import (
	"roadrouter/internal/cch"
	"roadrouter/internal/plf"
)

// PerfectResult is the output of perfect customization: tightened bounds
// plus, per direction, which cch edges survive (Lower <= Upper) and which
// are dominated shortcuts that the directed CCH a query walks should skip
// entirely (spec.md §4.3).
type PerfectResult struct {
	Bounds   *BoundMetric
	KeptUp   []bool
	KeptDown []bool
}

// PerfectCustomize runs the reverse-rank tightening sweep on top of an
// already-customized bound pair, then prunes edges whose lower bound now
// exceeds the tightened upper bound (spec.md §4.3).
//
// The tightening sweep applies the same triangle relaxation as forward
// customization, but driven by each node's own *upward* neighbour pairs in
// descending rank order rather than its downward neighbours in ascending
// order: for v processed from N-1 down to 0, and any two of v's upward
// neighbours a<b with an existing edge (a,b), the paths a->v->b and
// b->v->a (using the already-customized upper/down weights of (v,a) and
// (v,b)) can only shrink (a,b)'s bounds further, catching transitive
// tightenings the single ascending pass does not.
func PerfectCustomize(c *cch.CCH, bm *BoundMetric) *PerfectResult {
	up := append([]Weight(nil), bm.Upper.Up...)
	down := append([]Weight(nil), bm.Upper.Down...)
	tightenReverse(c, up, down)

	m := c.NumEdges()
	keptUp := make([]bool, m)
	keptDown := make([]bool, m)
	for e := 0; e < m; e++ {
		keptUp[e] = bm.Lower.Up[e] <= up[e]
		keptDown[e] = bm.Lower.Down[e] <= down[e]
	}
	return &PerfectResult{
		Bounds:   &BoundMetric{Lower: bm.Lower, Upper: &ScalarMetric{Up: up, Down: down}},
		KeptUp:   keptUp,
		KeptDown: keptDown,
	}
}

func tightenReverse(c *cch.CCH, up, down []Weight) {
	n := c.NumNodes()
	for v := Rank(n - 1); ; v-- {
		lo, hi := c.UpRange(v)
		for i := lo; i < hi; i++ {
			a := c.UpHead[i]
			for j := i + 1; j < hi; j++ {
				b := c.UpHead[j]
				eAB, ok := c.EdgeIDBetween(a, b)
				if !ok {
					continue
				}
				if cand := plf.AddSaturating(down[i], up[j]); cand < up[eAB] {
					up[eAB] = cand
				}
				if cand := plf.AddSaturating(down[j], up[i]); cand < down[eAB] {
					down[eAB] = cand
				}
			}
		}
		if v == 0 {
			break
		}
	}
}

// CellHandle is an exclusive write capability over one separator-tree
// cell's slice of the customization's Up/Down arrays. It is produced only
// by SplitBySeparator, never by a public constructor, encapsulating the
// aliasing invariant spec.md §5 calls out: perfect customization's workers
// hold references into the same backing arrays, and the separator
// discipline alone guarantees their writes never collide.
//
// Safety argument: customizeNode(c, up, down, v) only ever writes edge id
// EdgeIDBetween(v, w) for some w > v — an edge owned by v's own upward
// adjacency list, which the CCH's CSR construction places in
// [UpFirstOut[v], UpFirstOut[v+1)). A cell covering rank range [Lo, Hi)
// therefore only ever writes within [UpFirstOut[Lo], UpFirstOut[Hi)), and
// the separator tree guarantees sibling cells' rank ranges are disjoint —
// so their write ranges are disjoint too, even though every handle reads
// from (and is backed by) the same full arrays.
type CellHandle struct {
	c        *cch.CCH
	lo, hi   Rank
	up, down []Weight
}

// Run executes this cell's sequential per-node customization.
func (h *CellHandle) Run() {
	customizeRange(h.c, h.up, h.down, h.lo, h.hi)
}

// SplitBySeparator produces one CellHandle per leaf of tree, each backed by
// the same up/down arrays. Handles from cells at the same tree level may be
// run concurrently; a handle must never be run before every handle from a
// cell containing one of its down-neighbours (enforced by the caller
// driving tree.Levels() root-to-leaf is the wrong order — customize must
// walk leaves-to-root, see Driver in parallel.go).
func SplitBySeparator(c *cch.CCH, tree *cch.SeparatorTree, up, down []Weight) []*CellHandle {
	leaves := tree.Leaves()
	handles := make([]*CellHandle, len(leaves))
	for i, leaf := range leaves {
		handles[i] = &CellHandle{c: c, lo: leaf.Lo, hi: leaf.Hi, up: up, down: down}
	}
	return handles
}
