package cch

// Cell is one node of the separator tree used by customize's parallel
// driver (spec.md §4.2, §5). Lo and Hi give the contiguous rank range a
// cell owns exclusively; a cell records no separator of its own.
//
// Cells are derived from contiguous rank ranges rather than recomputed from
// scratch: a nested-dissection node order already assigns each level of its
// recursive bisection a contiguous block of ranks (that is how such orders
// are constructed in practice), so bisecting the rank axis recovers the same
// tree the order encodes without re-deriving separators from the graph.
type Cell struct {
	Lo, Hi   Rank // half-open interior range [Lo, Hi)
	Children []*Cell
}

// SeparatorTree is the root of the nested decomposition plus the top-level
// separator: the highest-ranked contiguous block, customized sequentially
// by customize_separator after every cell below it has finished.
type SeparatorTree struct {
	Root           *Cell
	TopSeparatorLo Rank // [TopSeparatorLo, N) customized last, sequentially
}

// BuildSeparatorTree partitions [0, n) into a binary tree of cells, stopping
// when a cell's node count is at most minCellSize (spec.md §5's
// N/(32*threads) load-balancing threshold — callers pass that computed
// value). topSeparatorFrac reserves the top fraction of ranks (by convention
// the most heavily connected, highest-degree nodes in a good order) as the
// sequential top-level separator.
func BuildSeparatorTree(n int, minCellSize int, topSeparatorFrac float64) *SeparatorTree {
	if n <= 0 {
		return &SeparatorTree{Root: &Cell{Lo: 0, Hi: 0}, TopSeparatorLo: 0}
	}
	if topSeparatorFrac <= 0 {
		topSeparatorFrac = 0.05
	}
	topLo := Rank(float64(n) * (1 - topSeparatorFrac))
	if topLo >= Rank(n) {
		topLo = Rank(n - 1)
	}

	if minCellSize < 1 {
		minCellSize = 1
	}
	root := bisect(0, topLo, minCellSize)
	return &SeparatorTree{Root: root, TopSeparatorLo: topLo}
}

func bisect(lo, hi Rank, minCellSize int) *Cell {
	c := &Cell{Lo: lo, Hi: hi}
	if int(hi-lo) <= minCellSize {
		return c
	}
	mid := lo + (hi-lo)/2
	c.Children = []*Cell{bisect(lo, mid, minCellSize), bisect(mid, hi, minCellSize)}
	return c
}

// Leaves returns every leaf cell in ascending rank order — the unit of
// parallel work customize_cell dispatches one task per.
func (t *SeparatorTree) Leaves() []*Cell {
	var out []*Cell
	var walk func(*Cell)
	walk = func(c *Cell) {
		if len(c.Children) == 0 {
			if c.Hi > c.Lo {
				out = append(out, c)
			}
			return
		}
		for _, ch := range c.Children {
			walk(ch)
		}
	}
	walk(t.Root)
	return out
}

// Levels groups cells by tree depth, root first, so customize's driver can
// fan out one errgroup per level and join before descending (spec.md §5
// "cells at the same tree level run in parallel").
func (t *SeparatorTree) Levels() [][]*Cell {
	var levels [][]*Cell
	cur := []*Cell{t.Root}
	for len(cur) > 0 {
		levels = append(levels, cur)
		var next []*Cell
		for _, c := range cur {
			next = append(next, c.Children...)
		}
		cur = next
	}
	return levels
}
