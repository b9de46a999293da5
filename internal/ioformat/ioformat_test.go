package ioformat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roadrouter/internal/capgraph"
	"roadrouter/internal/cch"
	"roadrouter/internal/customize"
)

func testNetwork(t *testing.T) *capgraph.Network {
	t.Helper()
	firstOut := []capgraph.EdgeID{0, 1, 3, 4}
	head := []capgraph.NodeID{1, 0, 2, 1}
	distance := []float64{1000, 1000, 2000, 2000}
	freeflow := []float64{10, 10, 20, 20}
	capacity := []float64{1000, 1000, 1000, 1000}
	net, err := capgraph.New(firstOut, head, distance, freeflow, capacity, 4, nil)
	require.NoError(t, err)
	return net
}

func TestGraphDump_RoundTrip(t *testing.T) {
	net := testNetwork(t)
	order := []cch.Rank{1, 0, 2}
	lat := []float32{1.1, 2.2, 3.3}
	lon := []float32{4.4, 5.5, 6.6}

	dir := t.TempDir()
	require.NoError(t, DumpGraph(dir, net, order, lat, lon))

	dump, err := LoadGraph(dir)
	require.NoError(t, err)

	assert.Equal(t, net.FirstOut, dump.FirstOut)
	assert.Equal(t, net.Head, dump.Head)
	assert.Equal(t, []uint32{100_000, 100_000, 100_000, 100_000}, dump.TravelTime)
	assert.Equal(t, []uint32{1000, 1000, 2000, 2000}, dump.GeoDistance)
	assert.Equal(t, []uint32{1000, 1000, 1000, 1000}, dump.Capacity)
	assert.Equal(t, lat, dump.Latitude)
	assert.Equal(t, lon, dump.Longitude)
	assert.Equal(t, []uint32{1, 0, 2}, dump.CCHPerm)

	rebuiltNet, err := dump.ToNetwork(4, nil)
	require.NoError(t, err)
	for e := 0; e < net.NumArcs(); e++ {
		assert.InDelta(t, float64(net.LowerboundTime[e]), float64(rebuiltNet.LowerboundTime[e]), 1)
	}

	arcs := dump.ToArcs()
	c, err := cch.Build(len(dump.FirstOut)-1, arcs, dump.ToOrder())
	require.NoError(t, err)
	assert.Equal(t, 3, c.NumNodes())
}

func TestQueryDump_RoundTrip(t *testing.T) {
	queries := []QueryRecord{
		{From: 0, To: 2, DepartureMs: 0},
		{From: 1, To: 0, DepartureMs: 43_200_000},
	}
	path := t.TempDir() + "/queries.bin"
	require.NoError(t, DumpQueries(path, queries))

	got, err := LoadQueries(path)
	require.NoError(t, err)
	assert.Equal(t, queries, got)
}

func TestCustomizationDump_RoundTrip(t *testing.T) {
	c := chainCCHForIOTest(t)
	view := func(cch.ArcID) customize.Weight { return 10 }
	bounds := customize.CustomizeBounds(c, func(uint32) (customize.Weight, customize.Weight) { return 5, 15 })
	entries := customize.BuildEqualIntervalEntries(2)
	intervals := customize.CustomizeIntervals(c, []customize.ScalarView{view, view}, entries)

	dir := t.TempDir()
	require.NoError(t, DumpCustomization(dir, bounds, intervals))

	dump, err := LoadCustomization(dir, 2)
	require.NoError(t, err)

	numEdges := c.NumEdges()
	require.Len(t, dump.UpwardBounds, 2*numEdges)
	for e := 0; e < numEdges; e++ {
		assert.Equal(t, uint32(bounds.Lower.Up[e]), dump.UpwardBounds[2*e])
		assert.Equal(t, uint32(bounds.Upper.Up[e]), dump.UpwardBounds[2*e+1])
	}
	require.Len(t, dump.Entries, 2)
	assert.Equal(t, entries[0].Start, dump.Entries[0].Start)
	assert.Equal(t, entries[1].End, dump.Entries[1].End)
}

func chainCCHForIOTest(t *testing.T) *cch.CCH {
	t.Helper()
	arcs := []cch.Arc{{From: 0, To: 1}, {From: 1, To: 0}, {From: 1, To: 2}, {From: 2, To: 1}}
	c, err := cch.Build(3, arcs, []cch.Rank{1, 0, 2})
	require.NoError(t, err)
	return c
}
