package potential

import (
	"roadrouter/internal/cch"
	"roadrouter/internal/customize"
	"roadrouter/internal/plf"
)

// CorridorLowerboundPot implements spec.md §4.4 "CorridorLowerbound-Pot":
// built from an I-interval customization, its backward elimination sweep
// and lazy forward ascent both take, for each node they relax out of, that
// node's own arrival corridor (from a Bounded interval query against the
// global bound-pair customization) and use the minimum over every metric
// column whose window overlaps that corridor — supporting corridors that
// wrap past midnight via IntervalMetric.Min{Up,Down}OverWindow's circular
// range handling.
type CorridorLowerboundPot struct {
	c         *cch.CCH
	intervals *customize.IntervalMetric
	bounds    *customize.BoundMetric

	bounded *Bounded
	ascent  *lazyAscent
	t0      Weight
	source  Weight
}

// NewCorridorLowerboundPot builds a CorridorLowerbound-Pot over an
// I-interval customization plus the global bound pair used for per-node
// corridor framing.
func NewCorridorLowerboundPot(c *cch.CCH, intervals *customize.IntervalMetric, bounds *customize.BoundMetric) *CorridorLowerboundPot {
	return &CorridorLowerboundPot{c: c, intervals: intervals, bounds: bounds}
}

func (p *CorridorLowerboundPot) Init(source, target cch.Rank, t0 Weight) error {
	p.t0 = t0
	p.bounded = NewBounded(p.c, p.bounds)
	if err := p.bounded.Init(source, target, t0); err != nil {
		return err
	}

	p.ascent = newLazyAscent(p.c)
	p.ascent.seedTarget(target, func(e cch.EdgeID, from cch.Rank) Weight {
		return p.windowedWeight(e, from, p.intervals.MinDownOverWindow)
	})

	src, ok := p.ascent.get(source, func(e cch.EdgeID, from cch.Rank) Weight {
		return p.windowedWeight(e, from, p.intervals.MinUpOverWindow)
	})
	if ok {
		p.source = src
	} else {
		p.source = Infinity
	}
	return nil
}

// windowedWeight derives "from"'s own arrival corridor via the shared
// Bounded interval query, then asks IntervalMetric for the minimum weight
// edge e takes across every column overlapping that corridor.
func (p *CorridorLowerboundPot) windowedWeight(e cch.EdgeID, from cch.Rank, minOverWindow func(e int, start, end plf.Timestamp) Weight) Weight {
	lower, upper, ok := p.bounded.IntervalQuery(from)
	if !ok {
		return Infinity
	}
	start := plf.Mod(plf.Timestamp(p.t0) + plf.Timestamp(lower))
	end := plf.Mod(plf.Timestamp(p.t0) + plf.Timestamp(upper))
	return minOverWindow(int(e), start, end)
}

func (p *CorridorLowerboundPot) Potential(v cch.Rank, t Weight) (Weight, bool) {
	return p.ascent.get(v, func(e cch.EdgeID, from cch.Rank) Weight {
		return p.windowedWeight(e, from, p.intervals.MinUpOverWindow)
	})
}

func (p *CorridorLowerboundPot) VerifyResult(distance Weight) bool {
	if distance >= Infinity || p.source >= Infinity {
		return true
	}
	return distance >= p.source
}
