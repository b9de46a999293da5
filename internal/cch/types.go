// Package cch implements Customizable Contraction Hierarchy preprocessing
// (spec.md §4.2): metric-independent contraction of an original directed
// graph, given a nested-dissection node order, into a chordal supergraph
// plus the elimination tree, inverted adjacency, and the two arc-mappings
// that customize (package customize) consumes.
package cch

import "roadrouter/internal/apperror"

// NodeID indexes nodes by their ORIGINAL id; Rank indexes the same nodes by
// contraction rank (0 = contracted/eliminated first).
type NodeID = uint32
type Rank = uint32

// EdgeID indexes a chordal supergraph ("cch") edge — the unit that
// customize assigns shortcut weights to.
type EdgeID = uint32

// ArcID indexes into the caller-supplied original arc list.
type ArcID = uint32

// Arc is one directed, unweighted edge of the original topology, used only
// to build the chordal supergraph and the shadow mapping — no weight is
// part of this package; customize supplies weights separately via a
// caller-provided view.
type Arc struct {
	From, To NodeID
}

// CCH is the preprocessed, metric-independent hierarchy of spec.md §3.
type CCH struct {
	n int

	Rank  []Rank // original id -> rank
	Order []Rank // rank -> original id; the input permutation, retained for IO round-trips

	// Chordal supergraph, upward direction: for rank r, the edges
	// [UpFirstOut[r], UpFirstOut[r+1]) in UpHead are r's higher-ranked
	// neighbours. Edge id == position in UpHead.
	UpFirstOut []EdgeID
	UpHead     []Rank

	// Inverted (downward) adjacency: for rank r, DownNeighbor holds r's
	// lower-ranked neighbours, each paired with the EdgeID of the
	// corresponding upward edge (spec.md §4.2 "edge id that connects them
	// upward").
	DownFirstOut []EdgeID
	DownNeighbor []Rank
	DownEdgeID   []EdgeID

	// ElimParent[r] is the smallest-rank higher neighbour of r — the
	// elimination tree parent — or -1 if r is a root.
	ElimParent []int32

	// UpShadow[e]/DownShadow[e] are the original arc ids a cch edge e
	// directly shadows: UpShadow holds arcs running low-rank -> high-rank,
	// DownShadow holds arcs running high-rank -> low-rank. Edges created
	// purely by fill-in during contraction (true shortcuts) have both
	// slices empty.
	UpShadow   [][]ArcID
	DownShadow [][]ArcID
}

// NumNodes returns N.
func (c *CCH) NumNodes() int { return c.n }

// NumEdges returns the chordal supergraph's edge count.
func (c *CCH) NumEdges() int { return len(c.UpHead) }

// UpRange returns the half-open edge-id range of rank r's upward neighbours.
func (c *CCH) UpRange(r Rank) (EdgeID, EdgeID) { return c.UpFirstOut[r], c.UpFirstOut[r+1] }

// DownRange returns the half-open index range of rank r's downward
// (lower-ranked) neighbours in DownNeighbor/DownEdgeID.
func (c *CCH) DownRange(r Rank) (EdgeID, EdgeID) { return c.DownFirstOut[r], c.DownFirstOut[r+1] }

func validatePermutation(order []Rank) error {
	n := len(order)
	seen := make([]bool, n)
	for _, r := range order {
		if int(r) >= n {
			return apperror.New(apperror.CodeOrderInvalid, "order entry out of range")
		}
		if seen[r] {
			return apperror.New(apperror.CodeOrderInvalid, "order is not a permutation: duplicate rank")
		}
		seen[r] = true
	}
	return nil
}
