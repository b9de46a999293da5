package report

import (
	"encoding/json"

	"roadrouter/internal/apperror"
)

// JSONGenerator renders a Batch as one JSON document with both record
// tables as top-level arrays.
type JSONGenerator struct{}

func NewJSONGenerator() *JSONGenerator { return &JSONGenerator{} }

func (g *JSONGenerator) Format() string { return "json" }

type jsonReport struct {
	QueryResults     []jsonQueryResult     `json:"queryResults"`
	PotentialQuality []jsonPotentialRecord `json:"potentialQuality"`
}

type jsonQueryResult struct {
	Type        string  `json:"type"`
	QueryTimeS  float64 `json:"queryTimeS"`
	CustTimeS   float64 `json:"custTimeS"`
	NumRuns     int     `json:"numRuns"`
	NumValid    int     `json:"numValid"`
	TotalDist   float64 `json:"totalDist"`
	AvgDist     float64 `json:"avgDist"`
}

type jsonPotentialRecord struct {
	Name       string  `json:"name"`
	QueryCount int     `json:"queryCount"`
	TimeType   string  `json:"timeType"`
	TimeS      float64 `json:"timeS"`
}

func (g *JSONGenerator) Generate(b Batch) ([]byte, error) {
	out := jsonReport{
		QueryResults:     make([]jsonQueryResult, len(b.QueryResults)),
		PotentialQuality: make([]jsonPotentialRecord, len(b.PotentialQuality)),
	}
	for i, r := range b.QueryResults {
		out.QueryResults[i] = jsonQueryResult{
			Type: r.Type, QueryTimeS: r.QueryTimeS, CustTimeS: r.CustTimeS,
			NumRuns: r.NumRuns, NumValid: r.NumValid, TotalDist: r.TotalDist, AvgDist: r.AvgDist,
		}
	}
	for i, r := range b.PotentialQuality {
		out.PotentialQuality[i] = jsonPotentialRecord{
			Name: r.Name, QueryCount: r.QueryCount, TimeType: r.TimeType, TimeS: r.TimeS,
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternal, "marshalling json report")
	}
	return data, nil
}
