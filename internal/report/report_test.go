package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleBatch() Batch {
	return Batch{
		QueryResults: []QueryResultRecord{
			{Type: "cch-pot", QueryTimeS: 0.001, CustTimeS: 0.5, NumRuns: 100, NumValid: 98, TotalDist: 5000, AvgDist: 50},
		},
		PotentialQuality: []PotentialQualityRecord{
			{Name: "cch-pot", QueryCount: 100, TimeType: "query", TimeS: 0.001},
		},
	}
}

func TestRegistry_KnowsAllConfiguredFormats(t *testing.T) {
	reg := NewRegistry()
	for _, format := range []string{"csv", "json", "xlsx"} {
		g, err := reg.Get(format)
		require.NoError(t, err)
		assert.Equal(t, format, g.Format())
	}
	_, err := reg.Get("yaml")
	assert.Error(t, err)
}

func TestCSVGenerator_ContainsBothTables(t *testing.T) {
	out, err := NewCSVGenerator().Generate(sampleBatch())
	require.NoError(t, err)
	s := string(out)
	assert.Contains(t, s, "query_time_s")
	assert.Contains(t, s, "cch-pot")
	assert.Contains(t, s, "query_count")
}

func TestJSONGenerator_RoundTripsCounts(t *testing.T) {
	out, err := NewJSONGenerator().Generate(sampleBatch())
	require.NoError(t, err)
	assert.Contains(t, string(out), "\"queryResults\"")
	assert.Contains(t, string(out), "\"potentialQuality\"")
}

func TestExcelGenerator_ProducesNonEmptyWorkbook(t *testing.T) {
	out, err := NewExcelGenerator().Generate(sampleBatch())
	require.NoError(t, err)
	assert.NotEmpty(t, out)
	// xlsx files are zip archives; the local file header signature is a
	// cheap sanity check without parsing the whole workbook back.
	assert.Equal(t, []byte{0x50, 0x4B, 0x03, 0x04}, out[:4])
}
