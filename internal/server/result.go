package server

import "roadrouter/internal/capgraph"

// Result is the outcome of one Server.Query call (spec.md §3 "Query/Result").
// Found is false for both an unreachable target (spec.md §7 Unreachable —
// never an error) and a query that failed verification twice in a row
// before the caller could even request a retry (spec.md §4.5 "Verify").
type Result struct {
	Found      bool
	Distance   Weight // elapsed travel time, arrival_at_target - t0
	Nodes      []capgraph.NodeID
	Edges      []capgraph.EdgeID
	Departures []Timestamp // one per edge, aligned with Edges

	Diagnostics Diagnostics
}
