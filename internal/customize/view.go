package customize

import (
	"roadrouter/internal/capgraph"
)

// ScalarLowerBoundView returns each original arc's free-flow (best-case)
// travel time — the view CCH-Pot's customization is built on.
func ScalarLowerBoundView(net *capgraph.Network) ScalarView {
	return func(arcID uint32) Weight {
		return net.Profile(arcID).LowerBound()
	}
}

// ScalarUpperBoundView returns each original arc's worst observed travel
// time over the whole day.
func ScalarUpperBoundView(net *capgraph.Network) ScalarView {
	return func(arcID uint32) Weight {
		return net.Profile(arcID).UpperBound()
	}
}

// ScalarEvalView returns each original arc's travel time at a fixed
// departure instant — used when a customization only needs to be accurate
// for queries near a known time of day.
func ScalarEvalView(net *capgraph.Network, t Weight) ScalarView {
	return func(arcID uint32) Weight {
		return net.Eval(arcID, t)
	}
}

// ScalarIntervalMinView returns each original arc's minimum travel time
// over the half-open departure window [start, end) — the seed used for one
// column of an interval-vector customization.
func ScalarIntervalMinView(net *capgraph.Network, start, end Weight) ScalarView {
	return func(arcID uint32) Weight {
		return net.Profile(arcID).MinOverInterval(start, end)
	}
}

// BoundView returns the spec.md §4.1 lower/upper profile bounds for an arc;
// Bounded customization runs the scalar primitive once per bound.
type BoundView func(arcID uint32) (lower, upper Weight)

// BoundViewFromGraph builds a BoundView from a capacity graph's current
// profiles.
func BoundViewFromGraph(net *capgraph.Network) BoundView {
	return func(arcID uint32) (Weight, Weight) {
		p := net.Profile(arcID)
		return p.LowerBound(), p.UpperBound()
	}
}
