// Package capgraph implements the Capacity Graph (spec.md §4.1): static CSR
// topology plus, per directed arc, a piecewise-linear travel-time profile
// derived from current utilisation. The graph exposes neighbour iteration,
// profile evaluation, and an IncreaseWeights mutation that cooperative
// routing uses to feed used paths back into the graph.
package capgraph

import (
	"roadrouter/internal/apperror"
	"roadrouter/internal/plf"
)

// NodeID and EdgeID index into the CSR arrays.
type NodeID = uint32
type EdgeID = uint32

// Weight and Timestamp alias the plf package's millisecond-resolution types.
type Weight = plf.Weight
type Timestamp = plf.Timestamp

// Infinity is the unreachable sentinel (spec.md §3).
const Infinity = plf.Infinity

// MaxBuckets is the period: one day, in milliseconds.
const MaxBuckets = plf.MaxBuckets

// speedSample is one sparse (bucket-start, speed) observation; only buckets
// that ever carried traffic are materialised (spec.md §4.1).
type speedSample struct {
	At    Timestamp
	Speed float64 // metres/second
}

// capacitySample is one sparse (bucket-start, vehicle count) observation.
type capacitySample struct {
	At   Timestamp
	Used float64
}

// arcState is the mutable, per-arc dynamic state: sparse speed/used-capacity
// buckets plus the materialised PLF derived from them.
type arcState struct {
	usedCapacity []capacitySample
	speed        []speedSample
	profile      plf.Function
}

// SpeedModel computes an arc's current speed from its static free-flow
// speed, its capacity, and the vehicle count observed in one bucket. It
// mirrors the BPR (Bureau of Public Roads) congestion function family.
type SpeedModel func(freeflowSpeed, maxCapacity, used float64) float64

// DefaultSpeedModel is the standard BPR curve: speed degrades as
// (used/capacity)^power grows, floored at a fraction of free flow so arcs
// never report zero speed.
func DefaultSpeedModel(freeflowSpeed, maxCapacity, used float64) float64 {
	const (
		alpha   = 0.15
		power   = 4.0
		minFrac = 0.1
	)
	if maxCapacity <= 0 {
		return freeflowSpeed
	}
	ratio := used / maxCapacity
	degradation := 1.0
	r := ratio
	for i := 0; i < int(power); i++ {
		degradation *= r
	}
	speed := freeflowSpeed / (1 + alpha*degradation)
	if speed < freeflowSpeed*minFrac {
		speed = freeflowSpeed * minFrac
	}
	return speed
}

// Network is the Capacity Graph entity of spec.md §3: CSR topology, static
// per-arc attributes, and mutable per-arc profiles.
type Network struct {
	FirstOut []EdgeID
	Head     []NodeID

	Distance       []float64 // metres
	FreeflowSpeed  []float64 // metres/second
	MaxCapacity    []float64 // vehicles/hour
	LowerboundTime []Weight  // free-flow travel time, ms

	numBuckets  int
	bucketWidth Timestamp
	speedModel  SpeedModel

	arcs []arcState
}

// NumNodes returns the node count N.
func (n *Network) NumNodes() int { return len(n.FirstOut) - 1 }

// NumArcs returns the arc count M.
func (n *Network) NumArcs() int { return len(n.Head) }

// NumBuckets returns the number of equal-width buckets partitioning the day.
func (n *Network) NumBuckets() int { return n.numBuckets }

// EdgesFrom returns the half-open range of arc ids leaving node u.
func (n *Network) EdgesFrom(u NodeID) (EdgeID, EdgeID) {
	return n.FirstOut[u], n.FirstOut[u+1]
}

// New constructs a Network from raw CSR arrays and static per-arc
// attributes, with numBuckets equal partitions of the day. MaxBuckets must
// be a multiple of numBuckets (spec.md §3).
func New(firstOut []EdgeID, head []NodeID, distance, freeflowSpeed, maxCapacity []float64, numBuckets int, speedModel SpeedModel) (*Network, error) {
	n := len(firstOut) - 1
	m := len(head)
	if n < 0 {
		return nil, apperror.New(apperror.CodeInvalidGraph, "firstOut must have at least one element")
	}
	if len(distance) != m || len(freeflowSpeed) != m || len(maxCapacity) != m {
		return nil, apperror.New(apperror.CodeInvalidGraph, "per-arc attribute arrays must match head length")
	}
	if numBuckets <= 0 || int64(MaxBuckets)%int64(numBuckets) != 0 {
		return nil, apperror.New(apperror.CodeBucketMismatch, "MaxBuckets must be a multiple of numBuckets").WithDetails("num_buckets", numBuckets)
	}
	if speedModel == nil {
		speedModel = DefaultSpeedModel
	}

	lowerbound := make([]Weight, m)
	for e := 0; e < m; e++ {
		lowerbound[e] = travelTime(distance[e], freeflowSpeed[e])
	}

	net := &Network{
		FirstOut:       append([]EdgeID(nil), firstOut...),
		Head:           append([]NodeID(nil), head...),
		Distance:       append([]float64(nil), distance...),
		FreeflowSpeed:  append([]float64(nil), freeflowSpeed...),
		MaxCapacity:    append([]float64(nil), maxCapacity...),
		LowerboundTime: lowerbound,
		numBuckets:     numBuckets,
		bucketWidth:    MaxBuckets / Timestamp(numBuckets),
		speedModel:     speedModel,
		arcs:           make([]arcState, m),
	}
	net.ResetWeights()
	return net, nil
}

// travelTime converts a distance (metres) and speed (metres/second) into a
// millisecond travel time, saturating to Infinity if speed is non-positive.
func travelTime(distanceM, speedMS float64) Weight {
	if speedMS <= 0 {
		return Infinity
	}
	return Weight(distanceM / speedMS * 1000)
}
