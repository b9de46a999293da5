package report

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"roadrouter/internal/apperror"
)

// CSVGenerator renders a Batch as two concatenated CSV tables: query
// results first, then potential-quality records, each preceded by its own
// header row.
type CSVGenerator struct{}

func NewCSVGenerator() *CSVGenerator { return &CSVGenerator{} }

func (g *CSVGenerator) Format() string { return "csv" }

// csvWriter swallows writes after the first error, so callers never need
// to check err after every single Write call.
type csvWriter struct {
	w   *csv.Writer
	err error
}

func (cw *csvWriter) Write(record []string) {
	if cw.err != nil {
		return
	}
	cw.err = cw.w.Write(record)
}

func (g *CSVGenerator) Generate(b Batch) ([]byte, error) {
	var buf bytes.Buffer
	cw := &csvWriter{w: csv.NewWriter(&buf)}

	cw.Write([]string{"type", "query_time_s", "cust_time_s", "num_runs", "num_valid", "total_dist", "avg_dist"})
	for _, r := range b.QueryResults {
		cw.Write([]string{
			r.Type,
			strconv.FormatFloat(r.QueryTimeS, 'f', -1, 64),
			strconv.FormatFloat(r.CustTimeS, 'f', -1, 64),
			strconv.Itoa(r.NumRuns),
			strconv.Itoa(r.NumValid),
			strconv.FormatFloat(r.TotalDist, 'f', -1, 64),
			strconv.FormatFloat(r.AvgDist, 'f', -1, 64),
		})
	}

	cw.Write([]string{"name", "query_count", "time_type", "time_s"})
	for _, r := range b.PotentialQuality {
		cw.Write([]string{
			r.Name,
			strconv.Itoa(r.QueryCount),
			r.TimeType,
			strconv.FormatFloat(r.TimeS, 'f', -1, 64),
		})
	}

	cw.w.Flush()
	if cw.err == nil {
		cw.err = cw.w.Error()
	}
	if cw.err != nil {
		return nil, apperror.Wrap(cw.err, apperror.CodeInternal, "writing csv report")
	}
	return buf.Bytes(), nil
}
