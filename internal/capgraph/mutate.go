package capgraph

import (
	"sort"

	"roadrouter/internal/apperror"
	"roadrouter/internal/plf"
)

// Eval evaluates arc e's travel-time profile at departure time t (taken
// modulo MaxBuckets), in O(log B_e) where B_e is the arc's current
// breakpoint count (spec.md §4.1).
func (n *Network) Eval(e EdgeID, t Timestamp) Weight {
	return n.arcs[e].profile.Eval(t)
}

// Profile returns a read-only view of arc e's current materialised PLF.
func (n *Network) Profile(e EdgeID) plf.Function {
	return n.arcs[e].profile
}

// ResetWeights restores every arc to its free-flow constant profile and
// clears all observed traffic (spec.md §4.1 "reset_weights").
func (n *Network) ResetWeights() {
	for e := range n.arcs {
		n.arcs[e].usedCapacity = n.arcs[e].usedCapacity[:0]
		n.arcs[e].speed = n.arcs[e].speed[:0]
		n.arcs[e].profile = plf.Constant(n.LowerboundTime[e])
	}
}

// bucketStart rounds t down to the arc's current bucket boundary.
func (n *Network) bucketStart(t Timestamp) Timestamp {
	t = plf.Mod(t)
	return (t / n.bucketWidth) * n.bucketWidth
}

// IncreaseWeights absorbs a cooperative-routing path update: for each
// (edge, departure) pair, it increments the arc's used-capacity counter at
// the bucket containing departure, recomputes that bucket's speed via the
// configured SpeedModel, and rebuilds the arc's PLF (spec.md §4.1).
//
// Boundary cases: a departure landing in bucket 0 also refreshes the
// period-end sentinel, and a neighbouring bucket that has never carried
// traffic is materialised at the free-flow value before the profile is
// rebuilt, preserving piecewise-linear fidelity between an untouched run of
// buckets and a freshly congested one.
func (n *Network) IncreaseWeights(edgePath []EdgeID, departures []Timestamp) error {
	if len(edgePath) != len(departures) {
		return apperror.New(apperror.CodeInvalidArgument, "edgePath and departures must have equal length")
	}
	for i, e := range edgePath {
		if int(e) >= len(n.arcs) {
			return apperror.New(apperror.CodeInvalidArgument, "edge id out of range").WithDetails("edge", e)
		}
		n.bumpArc(e, departures[i])
	}
	return nil
}

func (n *Network) bumpArc(e EdgeID, departure Timestamp) {
	tb := n.bucketStart(departure)
	st := &n.arcs[e]

	idx := sort.Search(len(st.usedCapacity), func(i int) bool { return st.usedCapacity[i].At >= tb })
	var used float64
	if idx < len(st.usedCapacity) && st.usedCapacity[idx].At == tb {
		st.usedCapacity[idx].Used++
		used = st.usedCapacity[idx].Used
	} else {
		used = 1
		st.usedCapacity = insertCap(st.usedCapacity, idx, capacitySample{At: tb, Used: used})
	}

	speed := n.speedModel(n.FreeflowSpeed[e], n.MaxCapacity[e], used)
	n.setSpeedBucket(e, tb, speed)

	if tb == 0 {
		n.ensureNeighborBucket(e, MaxBuckets)
	}
	n.ensureNeighborBucket(e, n.nextBucketStart(tb))
	n.ensureNeighborBucket(e, n.prevBucketStart(tb))

	n.rebuildProfile(e)
}

func (n *Network) nextBucketStart(tb Timestamp) Timestamp {
	next := tb + n.bucketWidth
	if next >= MaxBuckets {
		return MaxBuckets
	}
	return next
}

func (n *Network) prevBucketStart(tb Timestamp) Timestamp {
	if tb <= 0 {
		return 0
	}
	return tb - n.bucketWidth
}

// ensureNeighborBucket materialises bucket at if it has never carried
// traffic, at the arc's free-flow speed, so the PLF rebuild below always
// has two real samples to interpolate between.
func (n *Network) ensureNeighborBucket(e EdgeID, at Timestamp) {
	st := &n.arcs[e]
	idx := sort.Search(len(st.speed), func(i int) bool { return st.speed[i].At >= at })
	if idx < len(st.speed) && st.speed[idx].At == at {
		return
	}
	n.setSpeedBucket(e, at, n.FreeflowSpeed[e])
}

func (n *Network) setSpeedBucket(e EdgeID, at Timestamp, speed float64) {
	st := &n.arcs[e]
	idx := sort.Search(len(st.speed), func(i int) bool { return st.speed[i].At >= at })
	if idx < len(st.speed) && st.speed[idx].At == at {
		st.speed[idx].Speed = speed
		return
	}
	st.speed = insertSpeed(st.speed, idx, speedSample{At: at, Speed: speed})
}

func insertCap(s []capacitySample, idx int, v capacitySample) []capacitySample {
	s = append(s, capacitySample{})
	copy(s[idx+1:], s[idx:])
	s[idx] = v
	return s
}

func insertSpeed(s []speedSample, idx int, v speedSample) []speedSample {
	s = append(s, speedSample{})
	copy(s[idx+1:], s[idx:])
	s[idx] = v
	return s
}

// rebuildProfile converts arc e's sparse speed buckets into a travel-time
// PLF via the analytic speed-profile-to-travel-time transform of spec.md
// §4.1: for each speed segment [t1,t2) at speed s, the departure-time
// breakpoint is (t1, distance/s); segments without an observed bucket are
// filled in at free-flow speed so the whole period is covered.
//
// A FIFO violation here is an InvariantViolation (spec.md §7): it means the
// speed model produced a segment steep enough to let a later departure
// arrive before an earlier one, which is a logic bug, not a recoverable
// condition, so it panics rather than returning an error.
func (n *Network) rebuildProfile(e EdgeID) {
	st := &n.arcs[e]
	dist := n.Distance[e]

	if len(st.speed) == 0 {
		st.profile = plf.Constant(n.LowerboundTime[e])
		return
	}

	pts := make([]plf.Breakpoint, 0, len(st.speed)+2)
	if st.speed[0].At != 0 {
		pts = append(pts, plf.Breakpoint{At: 0, Value: travelTime(dist, n.FreeflowSpeed[e])})
	}
	for _, s := range st.speed {
		pts = append(pts, plf.Breakpoint{At: s.At, Value: travelTime(dist, s.Speed)})
	}
	last := pts[len(pts)-1]
	if last.At != MaxBuckets {
		pts = append(pts, plf.Breakpoint{At: MaxBuckets, Value: pts[0].Value})
	} else {
		pts[len(pts)-1].Value = pts[0].Value
	}

	profile := plf.Function{Points: pts}
	if !profile.IsFIFO() {
		panic(apperror.NewCritical(apperror.CodeFIFOBroken, "FIFO violated after update").
			WithDetails("edge", e))
	}
	st.profile = profile
}
