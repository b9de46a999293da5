// Package report writes the structured diagnostic records spec.md §6
// defines as the core's entire reporting contract: per-query records and
// potential-quality records. Everything about how those records are
// rendered (CSV, JSON, or Excel) is an external collaborator's concern, not
// the core's — mirroring the teacher's report-svc generator package, which
// this package's Generator interface and per-format implementations are
// grounded on directly.
package report

// QueryResultRecord is one row of the per-query result record spec.md §6
// names: `(type, query_time_s, cust_time_s, num_runs, num_valid,
// total_dist, avg_dist)`.
type QueryResultRecord struct {
	Type        string
	QueryTimeS  float64
	CustTimeS   float64
	NumRuns     int
	NumValid    int
	TotalDist   float64
	AvgDist     float64
}

// PotentialQualityRecord is one row of the potential-quality record
// spec.md §6 names: `(name, query_count, time_type, time_s)`.
type PotentialQualityRecord struct {
	Name       string
	QueryCount int
	TimeType   string
	TimeS      float64
}

// Batch is everything one report covers: a run's query records and its
// potential-quality records, rendered together into one file regardless of
// format.
type Batch struct {
	QueryResults      []QueryResultRecord
	PotentialQuality  []PotentialQualityRecord
}

// Generator renders a Batch into one format's on-disk byte representation.
type Generator interface {
	Format() string
	Generate(b Batch) ([]byte, error)
}
