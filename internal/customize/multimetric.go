package customize

import (
	"roadrouter/internal/capgraph"
	"roadrouter/internal/cch"
	"roadrouter/internal/plf"
)

// MetricEntry maps one logical time interval [Start, End) onto a metric
// column id (spec.md §3 "metric entry table"). Several entries may share a
// column after reduction; this package only produces the equal-width
// partition BuildEqualIntervalEntries generates, never reduces it further.
type MetricEntry struct {
	Start, End plf.Timestamp
	MetricID   int
}

// BuildEqualIntervalEntries partitions the day into k equal, contiguous
// intervals, one metric id per interval.
func BuildEqualIntervalEntries(k int) []MetricEntry {
	entries := make([]MetricEntry, k)
	width := plf.MaxBuckets / plf.Timestamp(k)
	for i := 0; i < k; i++ {
		start := plf.Timestamp(i) * width
		end := start + width
		if i == k-1 {
			end = plf.MaxBuckets
		}
		entries[i] = MetricEntry{Start: start, End: end, MetricID: i}
	}
	return entries
}

// IntervalMetric is customize's interval-vector output: k weights per cch
// edge, laid out metric-major (metric_id*NumEdges+edge_id) for cache
// locality on per-metric scans during a query (spec.md §3).
type IntervalMetric struct {
	K        int
	NumEdges int
	UpMajor  []Weight
	DownMajor []Weight
	Entries  []MetricEntry
}

// UpAt returns edge e's upward weight under metric column metricID; DownAt
// is its downward counterpart.
func (m *IntervalMetric) UpAt(metricID int, e int) Weight {
	return m.UpMajor[metricID*m.NumEdges+e]
}

func (m *IntervalMetric) DownAt(metricID int, e int) Weight {
	return m.DownMajor[metricID*m.NumEdges+e]
}

// ColumnForInterval returns the metric id of the narrowest entry interval
// that fully contains [start, end), preferring the smaller metric id on a
// tie, or -1 if none does (the caller must fall back to a global bound
// metric — spec.md §4.4 MultiMetric-Pot's midnight-wrap case).
func (m *IntervalMetric) ColumnForInterval(start, end plf.Timestamp) int {
	best := -1
	var bestWidth plf.Timestamp
	for _, e := range m.Entries {
		if e.Start <= start && end <= e.End {
			width := e.End - e.Start
			if best == -1 || width < bestWidth || (width == bestWidth && e.MetricID < best) {
				best, bestWidth = e.MetricID, width
			}
		}
	}
	return best
}

// MinUpOverWindow returns the minimum Up weight edge e takes across every
// metric column whose entry interval overlaps the circular window
// [start, end) — CorridorLowerbound-Pot's per-node interval minimum
// (spec.md §4.4), including the wrapped case where start > end covers
// [start, MaxBuckets) union [0, end).
func (m *IntervalMetric) MinUpOverWindow(e int, start, end plf.Timestamp) Weight {
	return m.minOverWindow(e, start, end, m.UpMajor)
}

// MinDownOverWindow is MinUpOverWindow's downward-direction counterpart.
func (m *IntervalMetric) MinDownOverWindow(e int, start, end plf.Timestamp) Weight {
	return m.minOverWindow(e, start, end, m.DownMajor)
}

func (m *IntervalMetric) minOverWindow(e int, start, end plf.Timestamp, major []Weight) Weight {
	if start <= end {
		return m.minOverNonWrappingWindow(e, start, end, major)
	}
	a := m.minOverNonWrappingWindow(e, start, plf.MaxBuckets, major)
	b := m.minOverNonWrappingWindow(e, 0, end, major)
	if b < a {
		return b
	}
	return a
}

func (m *IntervalMetric) minOverNonWrappingWindow(e int, start, end plf.Timestamp, major []Weight) Weight {
	best := Infinity
	for _, entry := range m.Entries {
		// A zero-width window is a point query: treat it as containing
		// instant `start` rather than an empty half-open range.
		overlaps := entry.Start < end && start < entry.End
		if start == end {
			overlaps = entry.Start <= start && start < entry.End
		}
		if overlaps {
			if v := major[entry.MetricID*m.NumEdges+e]; v < best {
				best = v
			}
		}
	}
	return best
}

// CustomizeIntervals runs one independent scalar customization per metric
// column (spec.md §4.3 "Interval vector of length k: k-wide min"), copying
// each column's result straight into the metric-major layout queries need.
func CustomizeIntervals(c *cch.CCH, views []ScalarView, entries []MetricEntry) *IntervalMetric {
	k := len(views)
	numEdges := c.NumEdges()
	out := &IntervalMetric{K: k, NumEdges: numEdges, Entries: entries, UpMajor: make([]Weight, k*numEdges), DownMajor: make([]Weight, k*numEdges)}
	for metricID, view := range views {
		col := CustomizeScalar(c, view)
		base := metricID * numEdges
		copy(out.UpMajor[base:base+numEdges], col.Up)
		copy(out.DownMajor[base:base+numEdges], col.Down)
	}
	return out
}

// IntervalViewsFromGraph builds one ScalarIntervalMinView per metric entry,
// the standard seed for a capacity-graph-backed interval customization.
func IntervalViewsFromGraph(net *capgraph.Network, entries []MetricEntry) []ScalarView {
	views := make([]ScalarView, len(entries))
	for i, e := range entries {
		start, end := e.Start, e.End
		views[i] = ScalarIntervalMinView(net, start, end)
	}
	return views
}
