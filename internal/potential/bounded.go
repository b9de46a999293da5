package potential

import (
	"roadrouter/internal/cch"
	"roadrouter/internal/customize"
)

// Bounded implements spec.md §4.4's "Bounded lower/upper": two independent
// scalar sweeps over a bound-pair customization, exposed as IntervalQuery —
// the building block MultiMetric-Pot and CorridorLowerbound-Pot use to
// frame a query's arrival corridor before picking a metric column.
type Bounded struct {
	lower *CCHPot
	upper *CCHPot
}

// NewBounded builds a Bounded potential over a customize.BoundMetric.
func NewBounded(c *cch.CCH, bm *customize.BoundMetric) *Bounded {
	return &Bounded{lower: NewCCHPot(c, bm.Lower), upper: NewCCHPot(c, bm.Upper)}
}

func (b *Bounded) Init(source, target cch.Rank, t0 Weight) error {
	if err := b.lower.Init(source, target, t0); err != nil {
		return err
	}
	return b.upper.Init(source, target, t0)
}

// IntervalQuery returns the admissible (lower, upper) remaining-travel-time
// bound from v to the target established by Init, or ok=false if v cannot
// reach it under either bound's customization.
func (b *Bounded) IntervalQuery(v cch.Rank) (lower, upper Weight, ok bool) {
	lo, lok := b.lower.Potential(v, 0)
	hi, hok := b.upper.Potential(v, 0)
	if !lok || !hok {
		return 0, 0, false
	}
	return lo, hi, true
}

// Potential satisfies the shared capability set using the lower-bound side,
// so a Bounded value is itself a (looser but valid) standalone potential.
func (b *Bounded) Potential(v cch.Rank, t Weight) (Weight, bool) { return b.lower.Potential(v, t) }

func (b *Bounded) VerifyResult(distance Weight) bool { return b.lower.VerifyResult(distance) }
