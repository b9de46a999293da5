package querygen

import (
	"math/rand"
	"sort"

	"roadrouter/internal/apperror"
	"roadrouter/internal/capgraph"
)

// Query is one generated time-dependent query.
type Query struct {
	From        capgraph.NodeID
	To          capgraph.NodeID
	DepartureMs int64
}

// Generator draws population-density-weighted queries over a fixed set of
// node coordinates and a population grid, grounded on the original's
// generate_uniform_population_density_based_queries.
type Generator struct {
	grid            *Grid
	vertexGrid      [][]capgraph.NodeID
	cellPrefixSums  []uint32 // cellPrefixSums[i] = total population of non-empty cells before cellOrder[i]
	cellOrder       []int    // cells with at least one assigned node, in prefix-sum order
	totalPopulation uint32
	rng             *rand.Rand
}

// NewGenerator assigns every node to its nearest population cell and builds
// the cumulative-population index used for weighted cell sampling. seed
// makes query generation reproducible across runs (0 seeds from an
// unpredictable source via the caller).
func NewGenerator(grid *Grid, longitude, latitude []float64, seed int64) (*Generator, error) {
	if len(longitude) != len(latitude) {
		return nil, apperror.New(apperror.CodeInvalidArgument, "longitude/latitude length mismatch").
			WithField("longitude_len", len(longitude)).WithField("latitude_len", len(latitude))
	}

	vertexGrid := make([][]capgraph.NodeID, grid.NumCells())
	for nodeID := range longitude {
		cell := grid.NearestCell(longitude[nodeID], latitude[nodeID])
		vertexGrid[cell] = append(vertexGrid[cell], capgraph.NodeID(nodeID))
	}

	var cellOrder []int
	var prefixSums []uint32
	var total uint32
	for cell := 0; cell < grid.NumCells(); cell++ {
		if len(vertexGrid[cell]) == 0 {
			continue
		}
		cellOrder = append(cellOrder, cell)
		prefixSums = append(prefixSums, total)
		total += grid.Population(cell)
	}

	if total == 0 {
		return nil, apperror.New(apperror.CodeInvalidArgument, "population grid assigns zero population to reachable nodes")
	}

	return &Generator{
		grid:            grid,
		vertexGrid:      vertexGrid,
		cellPrefixSums:  prefixSums,
		cellOrder:       cellOrder,
		totalPopulation: total,
		rng:             rand.New(rand.NewSource(seed)),
	}, nil
}

// Generate draws n queries, each endpoint chosen by population-weighted
// cell sampling followed by a uniform pick among the cell's nodes, with
// departures drawn from dist. The result is sorted by departure, matching
// the original's "more realistic usage scenario" ordering.
func (g *Generator) Generate(n int, dist DepartureDistribution) []Query {
	queries := make([]Query, n)
	for i := 0; i < n; i++ {
		from := g.sampleNode()
		to := g.sampleNode()
		queries[i] = Query{From: from, To: to, DepartureMs: dist.Sample(g.rng)}
	}

	sort.Slice(queries, func(i, j int) bool {
		return queries[i].DepartureMs < queries[j].DepartureMs
	})
	return queries
}

func (g *Generator) sampleNode() capgraph.NodeID {
	draw := uint32(g.rng.Int63n(int64(g.totalPopulation)))
	idx := findInterval(g.cellPrefixSums, draw)
	cell := g.cellOrder[idx]
	nodes := g.vertexGrid[cell]
	return nodes[g.rng.Intn(len(nodes))]
}

// findInterval returns i such that prefixSums[i] <= val < prefixSums[i+1]
// (or val < prefixSums[len-1]'s upper bound, the implicit total), mirroring
// the original's binary-search-over-prefix-sums find_interval.
func findInterval(prefixSums []uint32, val uint32) int {
	lo, hi := 0, len(prefixSums)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if prefixSums[mid] <= val {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}
