package customize

import "roadrouter/internal/cch"

// BoundMetric is customize's bound-pair output: independent lower and upper
// scalar metrics (spec.md §4.3 "Bound pair: independent min on lower and
// upper"). Invariant: Upper[e] >= Lower[e] for every edge e.
type BoundMetric struct {
	Lower, Upper *ScalarMetric
}

// CustomizeBounds runs two independent scalar customizations, one seeded
// from each side of view, and returns the combined bound pair.
func CustomizeBounds(c *cch.CCH, view BoundView) *BoundMetric {
	lowerView := func(a uint32) Weight { lo, _ := view(a); return lo }
	upperView := func(a uint32) Weight { _, hi := view(a); return hi }
	return &BoundMetric{
		Lower: CustomizeScalar(c, lowerView),
		Upper: CustomizeScalar(c, upperView),
	}
}
