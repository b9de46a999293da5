package potential

import (
	"roadrouter/internal/cch"
	"roadrouter/internal/customize"
	"roadrouter/internal/plf"
)

// MultiMetricPot implements spec.md §4.4 "MultiMetric-Pot": Init runs a
// Bounded interval query to frame the query's arrival corridor, picks the
// narrowest interval-metric column whose window fully covers it (tie-break
// smaller metric id, via IntervalMetric.ColumnForInterval), and falls back
// to the global lower-bound metric if the corridor wraps past midnight.
// Potential then behaves exactly like a CCH-Pot built on that one column.
type MultiMetricPot struct {
	c         *cch.CCH
	intervals *customize.IntervalMetric
	bounds    *customize.BoundMetric

	column int // chosen metric id, or -1 meaning "fell back to bounds.Lower"
	inner  *CCHPot
}

// NewMultiMetricPot builds a MultiMetric-Pot over an interval-vector
// customization plus the global bound pair used for corridor framing and
// midnight-wrap fallback.
func NewMultiMetricPot(c *cch.CCH, intervals *customize.IntervalMetric, bounds *customize.BoundMetric) *MultiMetricPot {
	return &MultiMetricPot{c: c, intervals: intervals, bounds: bounds, column: -1}
}

func (p *MultiMetricPot) Init(source, target cch.Rank, t0 Weight) error {
	bounded := NewBounded(p.c, p.bounds)
	if err := bounded.Init(source, target, t0); err != nil {
		return err
	}

	p.column = -1
	if lower, upper, ok := bounded.IntervalQuery(source); ok {
		arrStart := plf.Mod(plf.Timestamp(t0) + plf.Timestamp(lower))
		arrEnd := plf.Mod(plf.Timestamp(t0) + plf.Timestamp(upper))
		if arrStart <= arrEnd {
			p.column = p.intervals.ColumnForInterval(arrStart, arrEnd)
		}
		// arrEnd < arrStart: corridor wraps past midnight, fall back to
		// the global lower metric (spec.md §4.4).
	}

	p.inner = NewCCHPot(p.c, p.columnMetric())
	return p.inner.Init(source, target, t0)
}

func (p *MultiMetricPot) columnMetric() *customize.ScalarMetric {
	if p.column < 0 {
		return p.bounds.Lower
	}
	n := p.intervals.NumEdges
	base := p.column * n
	return &customize.ScalarMetric{
		Up:   p.intervals.UpMajor[base : base+n],
		Down: p.intervals.DownMajor[base : base+n],
	}
}

func (p *MultiMetricPot) Potential(v cch.Rank, t Weight) (Weight, bool) { return p.inner.Potential(v, t) }
func (p *MultiMetricPot) VerifyResult(distance Weight) bool             { return p.inner.VerifyResult(distance) }
