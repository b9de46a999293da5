package querygen

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoCellFixture() (*Grid, []float64, []float64) {
	cells := []GridEntry{
		{ID: 0, Longitude: 0, Latitude: 0},
		{ID: 1, Longitude: 10, Latitude: 10},
	}
	population := []uint32{90, 10}
	grid := NewGrid(cells, population)

	// nodes 0,1 near cell 0; node 2 near cell 1
	longitude := []float64{0.1, -0.1, 10.1}
	latitude := []float64{0.1, -0.1, 9.9}
	return grid, longitude, latitude
}

func TestNewGenerator_AssignsNodesToNearestCell(t *testing.T) {
	grid, lon, lat := twoCellFixture()
	gen, err := NewGenerator(grid, lon, lat, 42)
	require.NoError(t, err)

	assert.ElementsMatch(t, []uint32{0, 1}, gen.vertexGrid[0])
	assert.ElementsMatch(t, []uint32{2}, gen.vertexGrid[1])
	assert.Equal(t, uint32(100), gen.totalPopulation)
}

func TestNewGenerator_RejectsMismatchedCoordinateLengths(t *testing.T) {
	grid, lon, _ := twoCellFixture()
	_, err := NewGenerator(grid, lon, []float64{0, 0}, 1)
	assert.Error(t, err)
}

func TestNewGenerator_RejectsZeroPopulation(t *testing.T) {
	cells := []GridEntry{{ID: 0, Longitude: 0, Latitude: 0}}
	grid := NewGrid(cells, []uint32{0})
	_, err := NewGenerator(grid, []float64{0}, []float64{0}, 1)
	assert.Error(t, err)
}

func TestGenerator_GenerateProducesRequestedCountSortedByDeparture(t *testing.T) {
	grid, lon, lat := twoCellFixture()
	gen, err := NewGenerator(grid, lon, lat, 7)
	require.NoError(t, err)

	queries := gen.Generate(50, UniformDeparture{Min: 0, Max: 86_400_000})
	require.Len(t, queries, 50)

	for i := 1; i < len(queries); i++ {
		assert.LessOrEqual(t, queries[i-1].DepartureMs, queries[i].DepartureMs)
	}
	for _, q := range queries {
		assert.Contains(t, []uint32{0, 1, 2}, q.From)
		assert.Contains(t, []uint32{0, 1, 2}, q.To)
	}
}

func TestGenerator_IsDeterministicForFixedSeed(t *testing.T) {
	grid, lon, lat := twoCellFixture()

	gen1, err := NewGenerator(grid, lon, lat, 123)
	require.NoError(t, err)
	q1 := gen1.Generate(20, UniformDeparture{Min: 0, Max: 1000})

	gen2, err := NewGenerator(grid, lon, lat, 123)
	require.NoError(t, err)
	q2 := gen2.Generate(20, UniformDeparture{Min: 0, Max: 1000})

	assert.Equal(t, q1, q2)
}

func TestFindInterval(t *testing.T) {
	prefixSums := []uint32{0, 90}
	assert.Equal(t, 0, findInterval(prefixSums, 0))
	assert.Equal(t, 0, findInterval(prefixSums, 89))
	assert.Equal(t, 1, findInterval(prefixSums, 90))
	assert.Equal(t, 1, findInterval(prefixSums, 99))
}

func TestUniformDeparture_StaysWithinRange(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	d := UniformDeparture{Min: 1000, Max: 2000}
	for i := 0; i < 100; i++ {
		v := d.Sample(rng)
		assert.GreaterOrEqual(t, v, int64(1000))
		assert.Less(t, v, int64(2000))
	}
}

func TestGeometricDeparture_StaysWithinHorizon(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	d := GeometricDeparture{PeakMs: 28_800_000, HorizonMs: 86_400_000, MeanOffset: 3_600_000}
	for i := 0; i < 100; i++ {
		v := d.Sample(rng)
		assert.GreaterOrEqual(t, v, int64(0))
		assert.Less(t, v, int64(86_400_000))
	}
}
