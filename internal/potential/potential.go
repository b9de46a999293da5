// Package potential implements the admissible lower-bound family of
// spec.md §4.4: CCH-Pot, Bounded lower/upper, MultiMetric-Pot, and
// CorridorLowerbound-Pot. Every flavour shares the same capability set
// (spec.md §9 "Potential as a capability, not an inheritance hierarchy") so
// the server can be generic over whichever one it is configured with,
// without any dynamic dispatch inside the Dijkstra inner loop.
//
// Nodes here are addressed by CCH rank, not original id: every flavour's
// lazy elimination-tree ascent walks cch.CCH.ElimParent and cch.CCH.UpRange
// directly, and the server is responsible for the rank <-> original id
// translation at its own boundary.
package potential

import (
	"roadrouter/internal/cch"
	"roadrouter/internal/plf"
)

// Weight aliases the plf package's travel-time type.
type Weight = plf.Weight

// Infinity is the unreachable sentinel.
const Infinity = plf.Infinity

// Potential is the shared contract every flavour implements (spec.md §4.4):
// Init is called once per query, Potential is called from inside the
// Dijkstra inner loop (must stay allocation-light), and VerifyResult is
// called once after the search terminates to decide whether the
// customization this potential was built from has gone stale.
type Potential interface {
	// Init prepares the potential for a query from source to target
	// departing at t0. Errors are reserved for malformed CCH state; an
	// unreachable target is not an error, it just makes every Potential
	// call return ok=false.
	Init(source, target cch.Rank, t0 Weight) error

	// Potential returns an admissible lower bound on the remaining travel
	// time from v to this potential's target at time t, or ok=false if v
	// provably cannot reach the target within the bound this potential
	// was built to respect.
	Potential(v cch.Rank, t Weight) (w Weight, ok bool)

	// VerifyResult reports whether distance (the Dijkstra-reported
	// travel time from source to target) is consistent with this
	// potential's own admissible estimate from source: a potential built
	// from a customization that predates a subsequent increase_weights
	// call may have grown inadmissible, and this is the check that
	// catches it (spec.md §4.4 "Potential admissibility invariant").
	VerifyResult(distance Weight) bool
}
