package capgraph

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lineNetwork builds a path of n nodes, n-1 forward arcs (and n-1 reverse
// arcs so IncreaseWeights has somewhere to write in both directions), all
// sharing the same distance/speed/capacity so per-arc behaviour is easy to
// reason about in the property checks below.
func lineNetwork(t *testing.T, n int, numBuckets int) *Network {
	t.Helper()
	firstOut := make([]EdgeID, n+1)
	var head []NodeID
	var dist, freeflow, capacity []float64
	for u := 0; u < n; u++ {
		firstOut[u] = EdgeID(len(head))
		if u+1 < n {
			head = append(head, NodeID(u+1))
			dist = append(dist, 1000)
			freeflow = append(freeflow, 20)
			capacity = append(capacity, 100)
		}
		if u-1 >= 0 {
			head = append(head, NodeID(u-1))
			dist = append(dist, 1000)
			freeflow = append(freeflow, 20)
			capacity = append(capacity, 100)
		}
	}
	firstOut[n] = EdgeID(len(head))
	net, err := New(firstOut, head, dist, freeflow, capacity, numBuckets, DefaultSpeedModel)
	require.NoError(t, err)
	return net
}

func TestNew_RejectsMismatchedBucketCount(t *testing.T) {
	_, err := New([]EdgeID{0}, nil, nil, nil, nil, 7, nil)
	require.Error(t, err)
}

func TestResetWeights_RestoresFreeFlow(t *testing.T) {
	net := lineNetwork(t, 4, 24)
	for e := EdgeID(0); e < EdgeID(net.NumArcs()); e++ {
		assert.Equal(t, net.LowerboundTime[e], net.Eval(e, 0))
	}

	require.NoError(t, net.IncreaseWeights([]EdgeID{0, 1, 2}, []Timestamp{0, 1000, 2000}))
	net.ResetWeights()

	for e := EdgeID(0); e < EdgeID(net.NumArcs()); e++ {
		for _, tt := range []Timestamp{0, 1000, 43_200_000, MaxBuckets - 1} {
			assert.Equal(t, net.LowerboundTime[e], net.Eval(e, tt), "edge %d t=%d", e, tt)
		}
	}
}

// TestIncreaseWeights_StaysFIFO is the P2 property check (spec.md §8) at
// the graph-mutation boundary: any sequence of IncreaseWeights calls
// driven by the default speed model must leave every arc's profile FIFO,
// since DefaultSpeedModel only ever degrades speed below free-flow and
// never produces a segment steep enough to let arrival time decrease.
func TestIncreaseWeights_StaysFIFO(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	net := lineNetwork(t, 8, 24)

	for round := 0; round < 30; round++ {
		numUpdates := 1 + rng.Intn(5)
		edges := make([]EdgeID, numUpdates)
		departs := make([]Timestamp, numUpdates)
		for i := range edges {
			edges[i] = EdgeID(rng.Intn(net.NumArcs()))
			departs[i] = Timestamp(rng.Int63n(MaxBuckets))
		}
		require.NoError(t, net.IncreaseWeights(edges, departs))
	}

	for e := EdgeID(0); e < EdgeID(net.NumArcs()); e++ {
		assert.True(t, net.Profile(e).IsFIFO(), "edge %d profile not FIFO: %+v", e, net.Profile(e))
	}
}

// TestEval_NeverBelowFreeFlow is the P1-style admissibility check at the
// arc level: congestion can only raise travel time above the free-flow
// lower bound, never lower it, since DefaultSpeedModel never reports a
// speed above FreeflowSpeed.
func TestEval_NeverBelowFreeFlow(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	net := lineNetwork(t, 6, 24)

	for round := 0; round < 20; round++ {
		e := EdgeID(rng.Intn(net.NumArcs()))
		tb := Timestamp(rng.Int63n(MaxBuckets))
		require.NoError(t, net.IncreaseWeights([]EdgeID{e}, []Timestamp{tb}))
	}

	for e := EdgeID(0); e < EdgeID(net.NumArcs()); e++ {
		for tt := Timestamp(0); tt < MaxBuckets; tt += MaxBuckets / 50 {
			assert.GreaterOrEqual(t, net.Eval(e, tt), net.LowerboundTime[e], "edge %d t=%d", e, tt)
		}
	}
}

// TestResetWeights_Idempotent is the P7 property check: reset_weights
// followed by a query sequence yields the same distances as the same
// queries on a never-touched network.
func TestResetWeights_Idempotent(t *testing.T) {
	fresh := lineNetwork(t, 5, 24)

	touched := lineNetwork(t, 5, 24)
	require.NoError(t, touched.IncreaseWeights([]EdgeID{0, 2, 4}, []Timestamp{0, 10_000, 70_000}))
	touched.ResetWeights()

	for e := EdgeID(0); e < EdgeID(fresh.NumArcs()); e++ {
		for tt := Timestamp(0); tt < MaxBuckets; tt += MaxBuckets / 20 {
			assert.Equal(t, fresh.Eval(e, tt), touched.Eval(e, tt), "edge %d t=%d", e, tt)
		}
	}
}
