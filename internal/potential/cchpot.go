package potential

import (
	"roadrouter/internal/cch"
	"roadrouter/internal/customize"
)

// CCHPot is the scalar lower-bound potential of spec.md §4.4 "CCH-Pot
// (scalar lower-bound)": a backward elimination-tree sweep from target
// seeds the tree-ancestor chain, and Potential lazily extends it to any
// other node via the shared lazyAscent.
type CCHPot struct {
	c      *cch.CCH
	metric *customize.ScalarMetric

	ascent *lazyAscent
	source Weight
}

// NewCCHPot builds a CCH-Pot over a scalar customization metric.
func NewCCHPot(c *cch.CCH, metric *customize.ScalarMetric) *CCHPot {
	return &CCHPot{c: c, metric: metric}
}

func (p *CCHPot) Init(source, target cch.Rank, t0 Weight) error {
	p.ascent = newLazyAscent(p.c)
	p.ascent.seedTarget(target, func(e cch.EdgeID, _ cch.Rank) Weight { return p.metric.Down[e] })
	src, ok := p.ascent.get(source, func(e cch.EdgeID, _ cch.Rank) Weight { return p.metric.Up[e] })
	if ok {
		p.source = src
	} else {
		p.source = Infinity
	}
	return nil
}

func (p *CCHPot) Potential(v cch.Rank, _ Weight) (Weight, bool) {
	return p.ascent.get(v, func(e cch.EdgeID, _ cch.Rank) Weight { return p.metric.Up[e] })
}

// VerifyResult checks that the reported distance never undercuts this
// potential's own admissible estimate from source — the signature of a
// customization that has gone stale relative to the live graph (spec.md
// §4.4's admissibility invariant).
func (p *CCHPot) VerifyResult(distance Weight) bool {
	if distance >= Infinity || p.source >= Infinity {
		return true
	}
	return distance >= p.source
}
