// Package querygen generates synthetic time-dependent queries weighted by
// population density, the "population density query generators" external
// collaborator named in spec.md §2.
package querygen

import "math"

// GridEntry is one population cell, identified by its lower-left corner in
// longitude/latitude degrees.
type GridEntry struct {
	ID        int
	Longitude float64
	Latitude  float64
}

// Grid is a flat population grid with brute-force nearest-cell lookup. The
// corpus has no spatial-index library (the original used a kd-tree crate);
// a population grid sized for a single metro area's road network is small
// enough that a linear scan per lookup is not a bottleneck, and DESIGN.md
// records this as the stdlib-only exception.
type Grid struct {
	cells      []GridEntry
	population []uint32
}

// NewGrid builds a Grid from parallel cells/population slices.
func NewGrid(cells []GridEntry, population []uint32) *Grid {
	return &Grid{cells: cells, population: population}
}

// NearestCell returns the index of the population cell closest to (lon, lat).
func (g *Grid) NearestCell(lon, lat float64) int {
	best := 0
	bestDist := math.MaxFloat64
	for i, c := range g.cells {
		dx := c.Longitude - lon
		dy := c.Latitude - lat
		d := dx*dx + dy*dy
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

// NumCells returns the number of cells in the grid.
func (g *Grid) NumCells() int { return len(g.cells) }

// Population returns the population assigned to cell i.
func (g *Grid) Population(i int) uint32 { return g.population[i] }
