package cch

import (
	"fmt"
	"sort"

	"roadrouter/internal/apperror"
)

func orderLengthErr(n, got int) error {
	return apperror.New(apperror.CodeOrderInvalid, fmt.Sprintf("order length %d does not match node count %d", got, n))
}

// Build contracts arcs (an unweighted, directed topology over N original
// node ids) under the supplied node order into a chordal supergraph. order
// maps rank -> original id (spec.md §6 cch_perm layout); its inverse gives
// Rank.
//
// Contraction follows the standard elimination game: processing ranks
// ascending, node r's surviving (higher-ranked) neighbours are cliqued
// together (fill-in) before r is dropped from further consideration. The
// resulting neighbour sets, recorded at the moment each rank is processed,
// are exactly the chordal supergraph's upward adjacency.
func Build(n int, arcs []Arc, order []Rank) (*CCH, error) {
	if len(order) != n {
		return nil, orderLengthErr(n, len(order))
	}
	if err := validatePermutation(order); err != nil {
		return nil, err
	}

	rank := make([]Rank, n)
	for r, orig := range order {
		rank[orig] = Rank(r)
	}

	adj := make([]map[Rank]struct{}, n)
	for r := range adj {
		adj[r] = make(map[Rank]struct{})
	}
	for _, a := range arcs {
		ru, rv := rank[a.From], rank[a.To]
		if ru == rv {
			continue
		}
		adj[ru][rv] = struct{}{}
		adj[rv][ru] = struct{}{}
	}

	upNeighbors := make([][]Rank, n)
	elimParent := make([]int32, n)

	for v := Rank(0); int(v) < n; v++ {
		higher := make([]Rank, 0, len(adj[v]))
		for w := range adj[v] {
			if w > v {
				higher = append(higher, w)
			}
		}
		sort.Slice(higher, func(i, j int) bool { return higher[i] < higher[j] })
		upNeighbors[v] = higher

		if len(higher) == 0 {
			elimParent[v] = -1
		} else {
			elimParent[v] = int32(higher[0])
		}

		for i := 0; i < len(higher); i++ {
			u := higher[i]
			for j := i + 1; j < len(higher); j++ {
				w := higher[j]
				if _, ok := adj[u][w]; ok {
					continue
				}
				adj[u][w] = struct{}{}
				adj[w][u] = struct{}{}
			}
		}
	}

	c := &CCH{
		n:          n,
		Rank:       rank,
		Order:      append([]Rank(nil), order...),
		ElimParent: elimParent,
	}
	c.buildUpCSR(upNeighbors)
	c.buildDownCSR()
	c.buildShadows(arcs, rank)
	return c, nil
}

func (c *CCH) buildUpCSR(upNeighbors [][]Rank) {
	n := c.n
	c.UpFirstOut = make([]EdgeID, n+1)
	total := 0
	for r := 0; r < n; r++ {
		total += len(upNeighbors[r])
	}
	c.UpHead = make([]Rank, 0, total)
	for r := 0; r < n; r++ {
		c.UpFirstOut[r] = EdgeID(len(c.UpHead))
		c.UpHead = append(c.UpHead, upNeighbors[r]...)
	}
	c.UpFirstOut[n] = EdgeID(len(c.UpHead))
}

func (c *CCH) buildDownCSR() {
	n := c.n
	degree := make([]int, n)
	for r := 0; r < n; r++ {
		lo, hi := c.UpRange(Rank(r))
		for _, w := range c.UpHead[lo:hi] {
			degree[w]++
		}
	}
	c.DownFirstOut = make([]EdgeID, n+1)
	for r := 0; r < n; r++ {
		c.DownFirstOut[r+1] = c.DownFirstOut[r] + EdgeID(degree[r])
	}
	total := c.DownFirstOut[n]
	c.DownNeighbor = make([]Rank, total)
	c.DownEdgeID = make([]EdgeID, total)

	cursor := append([]EdgeID(nil), c.DownFirstOut...)
	for r := 0; r < n; r++ {
		lo, hi := c.UpRange(Rank(r))
		for e := lo; e < hi; e++ {
			w := c.UpHead[e]
			pos := cursor[w]
			c.DownNeighbor[pos] = Rank(r)
			c.DownEdgeID[pos] = e
			cursor[w]++
		}
	}
}

// EdgeIDBetween finds the upward edge id connecting lo < hi (both ranks),
// or false if no such chordal edge exists (never the case for a correctly
// built supergraph when lo,hi come from an original arc, since every
// original arc's endpoints are cliqued together during contraction).
func (c *CCH) EdgeIDBetween(lo, hi Rank) (EdgeID, bool) {
	start, end := c.UpRange(lo)
	heads := c.UpHead[start:end]
	i := sort.Search(len(heads), func(i int) bool { return heads[i] >= hi })
	if i < len(heads) && heads[i] == hi {
		return start + EdgeID(i), true
	}
	return 0, false
}

func (c *CCH) buildShadows(arcs []Arc, rank []Rank) {
	c.UpShadow = make([][]ArcID, len(c.UpHead))
	c.DownShadow = make([][]ArcID, len(c.UpHead))
	for id, a := range arcs {
		ru, rv := rank[a.From], rank[a.To]
		if ru == rv {
			continue
		}
		lo, hi, forward := ru, rv, true
		if lo > hi {
			lo, hi, forward = rv, ru, false
		}
		e, ok := c.EdgeIDBetween(lo, hi)
		if !ok {
			continue
		}
		if forward {
			c.UpShadow[e] = append(c.UpShadow[e], ArcID(id))
		} else {
			c.DownShadow[e] = append(c.DownShadow[e], ArcID(id))
		}
	}
}
