package customize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roadrouter/internal/cch"
)

// chainCCH builds 0-1-2 (a path, no direct 0-2 arc) so node 1 contracted
// first forces a shortcut between 0 and 2.
func chainCCH(t *testing.T) (*cch.CCH, []cch.Arc) {
	t.Helper()
	arcs := []cch.Arc{{From: 0, To: 1}, {From: 1, To: 0}, {From: 1, To: 2}, {From: 2, To: 1}}
	c, err := cch.Build(3, arcs, []cch.Rank{1, 0, 2})
	require.NoError(t, err)
	return c, arcs
}

func TestCustomizeScalar_ShortcutEqualsSumOfSegments(t *testing.T) {
	c, arcs := chainCCH(t)
	weights := map[cch.ArcID]Weight{0: 10, 1: 10, 2: 20, 3: 20} // 0->1=10, 1->0=10, 1->2=20, 2->1=20
	view := func(a cch.ArcID) Weight { return weights[a] }

	m := CustomizeScalar(c, view)

	r0, r2 := c.Rank[0], c.Rank[2]
	lo, hi := r0, r2
	if lo > hi {
		lo, hi = hi, lo
	}
	e, ok := c.EdgeIDBetween(lo, hi)
	require.True(t, ok)

	// Shortcut (0,2) must equal the sum of the two original arc weights in
	// whichever direction it was relaxed.
	assert.True(t, m.Up[e] == 30 || m.Down[e] == 30, "expected shortcut weight 30, got up=%d down=%d", m.Up[e], m.Down[e])
	_ = arcs
}

func TestCustomizeScalar_WeightsNeverNegative(t *testing.T) {
	c, _ := chainCCH(t)
	view := func(a cch.ArcID) Weight { return Weight(a) + 1 }
	m := CustomizeScalar(c, view)
	for e := 0; e < c.NumEdges(); e++ {
		assert.False(t, m.Up[e] < 0)
		assert.False(t, m.Down[e] < 0)
	}
}

func TestCustomizeBounds_UpperNeverBelowLower(t *testing.T) {
	c, _ := chainCCH(t)
	view := func(a cch.ArcID) (Weight, Weight) { return Weight(a) * 2, Weight(a)*2 + 5 }
	bm := CustomizeBounds(c, view)
	for e := 0; e < c.NumEdges(); e++ {
		if bm.Lower.Up[e] >= Infinity {
			continue
		}
		assert.GreaterOrEqual(t, bm.Upper.Up[e], bm.Lower.Up[e])
	}
}

func TestCustomizeIntervals_MetricMajorLayout(t *testing.T) {
	c, _ := chainCCH(t)
	entries := BuildEqualIntervalEntries(2)
	views := []ScalarView{
		func(a cch.ArcID) Weight { return 5 },
		func(a cch.ArcID) Weight { return 50 },
	}
	im := CustomizeIntervals(c, views, entries)
	require.Equal(t, 2, im.K)
	require.Equal(t, c.NumEdges(), im.NumEdges)

	e, _ := c.EdgeIDBetween(minRank(c, 0, 1), maxRank(c, 0, 1))
	assert.Less(t, im.UpAt(0, int(e)), im.UpAt(1, int(e)))
}

func TestIntervalMetric_ColumnForInterval(t *testing.T) {
	im := &IntervalMetric{Entries: BuildEqualIntervalEntries(4)}
	mid := im.Entries[1]
	assert.Equal(t, 1, im.ColumnForInterval(mid.Start, mid.End))
	assert.Equal(t, -1, im.ColumnForInterval(mid.Start, mid.End+1))
}

func TestPerfectCustomize_PrunesDominatedShortcut(t *testing.T) {
	c, _ := chainCCH(t)
	lowerView := func(a cch.ArcID) (Weight, Weight) { return 10, 10 }
	bm := CustomizeBounds(c, lowerView)
	// Force a clearly dominated shortcut: set its lower bound above the
	// tightened upper bound so PerfectCustomize must drop it.
	e, ok := c.EdgeIDBetween(minRank(c, 0, 2), maxRank(c, 0, 2))
	require.True(t, ok)
	bm.Lower.Up[e] = Infinity
	bm.Lower.Down[e] = Infinity

	pr := PerfectCustomize(c, bm)
	assert.False(t, pr.KeptUp[e])
	assert.False(t, pr.KeptDown[e])
}

func TestDriver_ParallelMatchesSequential(t *testing.T) {
	c, _ := chainCCH(t)
	view := func(a cch.ArcID) Weight { return Weight(a)*3 + 1 }

	seq := CustomizeScalar(c, view)

	tree := cch.BuildSeparatorTree(c.NumNodes(), 1, 0.34)
	d := NewDriver()
	par := d.CustomizeScalarParallel(c, view, tree)

	assert.Equal(t, seq.Up, par.Up)
	assert.Equal(t, seq.Down, par.Down)
}

func minRank(c *cch.CCH, a, b int) cch.Rank {
	ra, rb := c.Rank[a], c.Rank[b]
	if ra < rb {
		return ra
	}
	return rb
}

func maxRank(c *cch.CCH, a, b int) cch.Rank {
	ra, rb := c.Rank[a], c.Rank[b]
	if ra > rb {
		return ra
	}
	return rb
}
