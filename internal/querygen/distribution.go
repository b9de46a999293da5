package querygen

import (
	"math"
	"math/rand"
)

// DepartureDistribution draws a departure timestamp (milliseconds since the
// simulation's reference midnight) for one generated query.
type DepartureDistribution interface {
	Sample(rng *rand.Rand) int64
}

// UniformDeparture draws uniformly from [Min, Max).
type UniformDeparture struct {
	Min, Max int64
}

func (d UniformDeparture) Sample(rng *rand.Rand) int64 {
	if d.Max <= d.Min {
		return d.Min
	}
	return d.Min + rng.Int63n(d.Max-d.Min)
}

// GeometricDeparture draws a morning-rush-weighted departure: an offset
// from PeakMs distributed geometrically, truncated to [0, HorizonMs).
type GeometricDeparture struct {
	PeakMs     int64
	HorizonMs  int64
	MeanOffset float64 // mean absolute distance from PeakMs, in milliseconds
}

func (d GeometricDeparture) Sample(rng *rand.Rand) int64 {
	p := 1.0 / (d.MeanOffset + 1.0)
	offset := geometricSample(rng, p)
	if rng.Intn(2) == 0 {
		offset = -offset
	}

	t := d.PeakMs + offset
	if t < 0 {
		t = 0
	}
	if d.HorizonMs > 0 && t >= d.HorizonMs {
		t = d.HorizonMs - 1
	}
	return t
}

// geometricSample draws a non-negative integer from a geometric
// distribution with success probability p via inverse-CDF sampling,
// matching the shape of the original's rand_distr::Geometric use.
func geometricSample(rng *rand.Rand, p float64) int64 {
	if p <= 0 {
		p = 1e-6
	}
	if p >= 1 {
		return 0
	}
	u := rng.Float64()
	return int64(math.Log(1-u) / math.Log(1-p))
}
