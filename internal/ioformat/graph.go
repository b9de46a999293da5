package ioformat

import (
	"path/filepath"

	"roadrouter/internal/apperror"
	"roadrouter/internal/capgraph"
	"roadrouter/internal/cch"
)

// Graph file names within a graph_dir (spec.md §6).
const (
	fileFirstOut    = "first_out"
	fileHead        = "head"
	fileTravelTime  = "travel_time"
	fileGeoDistance = "geo_distance"
	fileCapacity    = "capacity"
	fileLatitude    = "latitude"
	fileLongitude   = "longitude"
	fileCCHPerm     = "cch_perm"
)

// GraphDump is the raw, unvalidated contents of an on-disk graph directory
// (spec.md §6): CSR topology, per-arc static attributes, optional
// coordinates, and the CCH node order.
type GraphDump struct {
	FirstOut    []uint32
	Head        []uint32
	TravelTime  []uint32 // free-flow travel time, ms
	GeoDistance []uint32 // metres
	Capacity    []uint32 // vehicles/hour
	Latitude    []float32
	Longitude   []float32
	CCHPerm     []uint32 // rank -> original id
}

// DumpGraph writes net's static arrays plus latitude/longitude and the CCH
// node order into dir, one file per array, no framing.
func DumpGraph(dir string, net *capgraph.Network, cchPerm []cch.Rank, latitude, longitude []float32) error {
	m := net.NumArcs()
	travelTime := make([]uint32, m)
	geoDistance := make([]uint32, m)
	capacity := make([]uint32, m)
	for e := 0; e < m; e++ {
		travelTime[e] = uint32(net.LowerboundTime[e])
		geoDistance[e] = uint32(net.Distance[e])
		capacity[e] = uint32(net.MaxCapacity[e])
	}

	writers := []struct {
		name string
		fn   func() error
	}{
		{fileFirstOut, func() error { return writeU32Slice(filepath.Join(dir, fileFirstOut), net.FirstOut) }},
		{fileHead, func() error { return writeU32Slice(filepath.Join(dir, fileHead), net.Head) }},
		{fileTravelTime, func() error { return writeU32Slice(filepath.Join(dir, fileTravelTime), travelTime) }},
		{fileGeoDistance, func() error { return writeU32Slice(filepath.Join(dir, fileGeoDistance), geoDistance) }},
		{fileCapacity, func() error { return writeU32Slice(filepath.Join(dir, fileCapacity), capacity) }},
		{fileLatitude, func() error { return writeF32Slice(filepath.Join(dir, fileLatitude), latitude) }},
		{fileLongitude, func() error { return writeF32Slice(filepath.Join(dir, fileLongitude), longitude) }},
		{fileCCHPerm, func() error { return writeU32Slice(filepath.Join(dir, fileCCHPerm), cchPerm) }},
	}
	for _, w := range writers {
		if err := w.fn(); err != nil {
			return err
		}
	}
	return nil
}

// LoadGraph reads every array of a graph dump directory back into memory,
// without constructing a Network or CCH — callers convert via ToArcs and
// ToNetwork once they have decided on a speed model and bucket count.
func LoadGraph(dir string) (*GraphDump, error) {
	g := &GraphDump{}
	var err error
	if g.FirstOut, err = readU32Slice(filepath.Join(dir, fileFirstOut)); err != nil {
		return nil, err
	}
	if g.Head, err = readU32Slice(filepath.Join(dir, fileHead)); err != nil {
		return nil, err
	}
	if g.TravelTime, err = readU32Slice(filepath.Join(dir, fileTravelTime)); err != nil {
		return nil, err
	}
	if g.GeoDistance, err = readU32Slice(filepath.Join(dir, fileGeoDistance)); err != nil {
		return nil, err
	}
	if g.Capacity, err = readU32Slice(filepath.Join(dir, fileCapacity)); err != nil {
		return nil, err
	}
	if g.Latitude, err = readF32Slice(filepath.Join(dir, fileLatitude)); err != nil {
		return nil, err
	}
	if g.Longitude, err = readF32Slice(filepath.Join(dir, fileLongitude)); err != nil {
		return nil, err
	}
	if g.CCHPerm, err = readU32Slice(filepath.Join(dir, fileCCHPerm)); err != nil {
		return nil, err
	}
	if err := g.validate(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *GraphDump) validate() error {
	if len(g.FirstOut) == 0 {
		return apperror.New(apperror.CodeMalformedDump, "first_out must have at least one element")
	}
	n := len(g.FirstOut) - 1
	m := len(g.Head)
	if len(g.TravelTime) != m || len(g.GeoDistance) != m || len(g.Capacity) != m {
		return apperror.New(apperror.CodeMalformedDump, "per-arc arrays must match head length")
	}
	if len(g.Latitude) != n || len(g.Longitude) != n {
		return apperror.New(apperror.CodeMalformedDump, "latitude/longitude must match node count")
	}
	if len(g.CCHPerm) != n {
		return apperror.New(apperror.CodeMalformedDump, "cch_perm must match node count")
	}
	return nil
}

// ToArcs rebuilds the unweighted directed topology cch.Build needs from the
// CSR arrays.
func (g *GraphDump) ToArcs() []cch.Arc {
	n := len(g.FirstOut) - 1
	arcs := make([]cch.Arc, 0, len(g.Head))
	for u := 0; u < n; u++ {
		for e := g.FirstOut[u]; e < g.FirstOut[u+1]; e++ {
			arcs = append(arcs, cch.Arc{From: cch.NodeID(u), To: g.Head[e]})
		}
	}
	return arcs
}

// ToOrder returns the CCH node order (rank -> original id) cch.Build
// expects, in its own Rank type.
func (g *GraphDump) ToOrder() []cch.Rank {
	return append([]cch.Rank(nil), g.CCHPerm...)
}

// ToNetwork reconstructs a capgraph.Network. The dump stores free-flow
// travel time directly rather than speed, so free-flow speed is derived as
// distance / travel_time; a zero travel time (a teleport arc with zero
// geo-distance) falls back to 1 m/s, which recomputes to the same zero
// travel time capgraph.New would have produced from a zero distance anyway.
func (g *GraphDump) ToNetwork(numBuckets int, speedModel capgraph.SpeedModel) (*capgraph.Network, error) {
	m := len(g.Head)
	distance := make([]float64, m)
	freeflowSpeed := make([]float64, m)
	capacity := make([]float64, m)
	for e := 0; e < m; e++ {
		distance[e] = float64(g.GeoDistance[e])
		capacity[e] = float64(g.Capacity[e])
		if g.TravelTime[e] == 0 {
			freeflowSpeed[e] = 1
			continue
		}
		freeflowSpeed[e] = distance[e] * 1000 / float64(g.TravelTime[e])
	}
	return capgraph.New(g.FirstOut, g.Head, distance, freeflowSpeed, capacity, numBuckets, speedModel)
}
