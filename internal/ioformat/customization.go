package ioformat

import (
	"path/filepath"

	"roadrouter/internal/apperror"
	"roadrouter/internal/customize"
	"roadrouter/internal/plf"
)

// Customization result dump file names (spec.md §6, optional).
const (
	fileUpwardBounds    = "upward_bounds"
	fileDownwardBounds  = "downward_bounds"
	fileUpwardIntervals = "upward_intervals"
	fileDownwardIntervals = "downward_intervals"
	fileMetricEntries   = "metric_entries"
)

// CustomizationDump is the optional on-disk form of a customization
// result: bound-pair weights in both directions, interval-vector weights in
// both directions, and the metric-entry table mapping time ranges to
// metric ids (spec.md §6).
//
// Bound and interval arrays are stored lower/upper- and metric-interleaved
// per edge (2 u32 per edge for bounds, K u32 per edge per direction for
// intervals) so a reader never needs NumEdges from a side channel to
// de-interleave metric-major layout.
type CustomizationDump struct {
	UpwardBounds, DownwardBounds     []uint32 // [2*e], [2*e+1] = lower, upper
	UpwardIntervals, DownwardIntervals []uint32 // [e*K+k]
	K                                 int
	Entries                           []customize.MetricEntry
}

// DumpCustomization writes a bound metric and an interval metric (built
// from the same customization run) to dir.
func DumpCustomization(dir string, bounds *customize.BoundMetric, intervals *customize.IntervalMetric) error {
	numEdges := len(bounds.Lower.Up)
	upBounds := make([]uint32, 2*numEdges)
	downBounds := make([]uint32, 2*numEdges)
	for e := 0; e < numEdges; e++ {
		upBounds[2*e] = uint32(bounds.Lower.Up[e])
		upBounds[2*e+1] = uint32(bounds.Upper.Up[e])
		downBounds[2*e] = uint32(bounds.Lower.Down[e])
		downBounds[2*e+1] = uint32(bounds.Upper.Down[e])
	}

	upIntervals := edgeMajor(intervals.UpMajor, intervals.K, intervals.NumEdges)
	downIntervals := edgeMajor(intervals.DownMajor, intervals.K, intervals.NumEdges)

	if err := writeU32Slice(filepath.Join(dir, fileUpwardBounds), upBounds); err != nil {
		return err
	}
	if err := writeU32Slice(filepath.Join(dir, fileDownwardBounds), downBounds); err != nil {
		return err
	}
	if err := writeU32Slice(filepath.Join(dir, fileUpwardIntervals), upIntervals); err != nil {
		return err
	}
	if err := writeU32Slice(filepath.Join(dir, fileDownwardIntervals), downIntervals); err != nil {
		return err
	}
	return dumpMetricEntries(filepath.Join(dir, fileMetricEntries), intervals.Entries)
}

// edgeMajor transposes customize's metric-major (metric*numEdges+edge)
// layout into edge-major (edge*K+metric) for the on-disk form, which a
// reader walks one edge at a time without knowing NumEdges up front.
func edgeMajor(metricMajor []customize.Weight, k, numEdges int) []uint32 {
	out := make([]uint32, len(metricMajor))
	for metricID := 0; metricID < k; metricID++ {
		for e := 0; e < numEdges; e++ {
			out[e*k+metricID] = uint32(metricMajor[metricID*numEdges+e])
		}
	}
	return out
}

func dumpMetricEntries(path string, entries []customize.MetricEntry) error {
	flat := make([]uint32, 0, 3*len(entries))
	for _, e := range entries {
		flat = append(flat, uint32(e.Start), uint32(e.End), uint32(e.MetricID))
	}
	return writeU32Slice(path, flat)
}

// LoadCustomization reads a customization result dump back, returning the
// edge-major arrays and K as stored; callers reassemble a
// customize.BoundMetric/IntervalMetric if they need customize's own types.
func LoadCustomization(dir string, k int) (*CustomizationDump, error) {
	d := &CustomizationDump{K: k}
	var err error
	if d.UpwardBounds, err = readU32Slice(filepath.Join(dir, fileUpwardBounds)); err != nil {
		return nil, err
	}
	if d.DownwardBounds, err = readU32Slice(filepath.Join(dir, fileDownwardBounds)); err != nil {
		return nil, err
	}
	if d.UpwardIntervals, err = readU32Slice(filepath.Join(dir, fileUpwardIntervals)); err != nil {
		return nil, err
	}
	if d.DownwardIntervals, err = readU32Slice(filepath.Join(dir, fileDownwardIntervals)); err != nil {
		return nil, err
	}
	entriesRaw, err := readU32Slice(filepath.Join(dir, fileMetricEntries))
	if err != nil {
		return nil, err
	}
	if len(entriesRaw)%3 != 0 {
		return nil, apperror.New(apperror.CodeDumpTruncated, "metric entry table length not a multiple of 3").WithField(dir)
	}
	d.Entries = make([]customize.MetricEntry, len(entriesRaw)/3)
	for i := range d.Entries {
		d.Entries[i] = customize.MetricEntry{
			Start:    plf.Timestamp(entriesRaw[3*i]),
			End:      plf.Timestamp(entriesRaw[3*i+1]),
			MetricID: int(entriesRaw[3*i+2]),
		}
	}
	if len(d.UpwardBounds)%2 != 0 || len(d.DownwardBounds)%2 != 0 {
		return nil, apperror.New(apperror.CodeMalformedDump, "bound arrays must hold (lower, upper) pairs").WithField(dir)
	}
	return d, nil
}
