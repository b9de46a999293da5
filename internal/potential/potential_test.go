package potential

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roadrouter/internal/cch"
	"roadrouter/internal/customize"
)

// chainCCH builds 0-1-2 (a path, no direct 0-2 arc) with node 1 contracted
// first, forcing a fill-in shortcut between ranks 0 and 2.
func chainCCH(t *testing.T) *cch.CCH {
	t.Helper()
	arcs := []cch.Arc{{From: 0, To: 1}, {From: 1, To: 0}, {From: 1, To: 2}, {From: 2, To: 1}}
	c, err := cch.Build(3, arcs, []cch.Rank{1, 0, 2})
	require.NoError(t, err)
	return c
}

func constScalarView(w Weight) customize.ScalarView {
	return func(cch.ArcID) Weight { return w }
}

func constBoundView(w Weight) customize.BoundView {
	return func(uint32) (Weight, Weight) { return w, w }
}

func TestCCHPot_TargetIsZeroAndAdmissible(t *testing.T) {
	c := chainCCH(t)
	scalar := customize.CustomizeScalar(c, constScalarView(10))
	pot := NewCCHPot(c, scalar)

	target := c.Rank[2]
	source := c.Rank[0]
	require.NoError(t, pot.Init(source, target, 0))

	v, ok := pot.Potential(target, 0)
	require.True(t, ok)
	assert.Equal(t, Weight(0), v)

	srcPot, ok := pot.Potential(source, 0)
	require.True(t, ok)
	// 0 -> 1 -> 2 is the only path, each leg weight 10.
	assert.Equal(t, Weight(20), srcPot)
}

func TestCCHPot_VerifyResult(t *testing.T) {
	c := chainCCH(t)
	scalar := customize.CustomizeScalar(c, constScalarView(10))
	pot := NewCCHPot(c, scalar)
	require.NoError(t, pot.Init(c.Rank[0], c.Rank[2], 0))

	assert.True(t, pot.VerifyResult(20))
	assert.True(t, pot.VerifyResult(25))
	assert.False(t, pot.VerifyResult(5))
}

func TestBounded_IntervalQueryMatchesScalarWhenBoundsEqual(t *testing.T) {
	c := chainCCH(t)
	bm := customize.CustomizeBounds(c, constBoundView(10))
	b := NewBounded(c, bm)
	require.NoError(t, b.Init(c.Rank[0], c.Rank[2], 0))

	lo, hi, ok := b.IntervalQuery(c.Rank[0])
	require.True(t, ok)
	assert.Equal(t, lo, hi)
	assert.Equal(t, Weight(20), lo)
}

// TestPotentialEquivalence_OneBucket covers spec.md §8 scenario S3: on a
// graph with one effective bucket (every view constant), CCH-Pot,
// MultiMetric-Pot, and CorridorLowerbound-Pot must agree on potential(v,0)
// for every v.
func TestPotentialEquivalence_OneBucket(t *testing.T) {
	c := chainCCH(t)
	scalar := customize.CustomizeScalar(c, constScalarView(10))
	bounds := customize.CustomizeBounds(c, constBoundView(10))
	entries := customize.BuildEqualIntervalEntries(1)
	intervals := customize.CustomizeIntervals(c, []customize.ScalarView{constScalarView(10)}, entries)

	source, target := c.Rank[0], c.Rank[2]

	cchPot := NewCCHPot(c, scalar)
	require.NoError(t, cchPot.Init(source, target, 0))

	mmPot := NewMultiMetricPot(c, intervals, bounds)
	require.NoError(t, mmPot.Init(source, target, 0))

	clPot := NewCorridorLowerboundPot(c, intervals, bounds)
	require.NoError(t, clPot.Init(source, target, 0))

	for v := cch.Rank(0); v < cch.Rank(c.NumNodes()); v++ {
		want, wantOK := cchPot.Potential(v, 0)
		gotMM, mmOK := mmPot.Potential(v, 0)
		gotCL, clOK := clPot.Potential(v, 0)

		require.Equal(t, wantOK, mmOK)
		require.Equal(t, wantOK, clOK)
		if wantOK {
			assert.Equal(t, want, gotMM, "rank %d: multimetric disagrees with cch-pot", v)
			assert.Equal(t, want, gotCL, "rank %d: corridor-lowerbound disagrees with cch-pot", v)
		}
	}
}

func TestMultiMetricPot_FallsBackToLowerOnMidnightWrap(t *testing.T) {
	c := chainCCH(t)
	// A wide bound spread (lower=1000, upper=1_000_000 per leg) combined
	// with a late departure pushes the upper end of the arrival corridor
	// past midnight while the lower end stays within the same day.
	bounds := customize.CustomizeBounds(c, func(uint32) (Weight, Weight) { return 1_000, 1_000_000 })
	entries := customize.BuildEqualIntervalEntries(4)
	views := make([]customize.ScalarView, len(entries))
	for i := range views {
		views[i] = constScalarView(10)
	}
	intervals := customize.CustomizeIntervals(c, views, entries)

	source, target := c.Rank[0], c.Rank[2]
	p := NewMultiMetricPot(c, intervals, bounds)
	require.NoError(t, p.Init(source, target, 86_000_000))
	assert.Equal(t, -1, p.column)
}
