package server

import (
	"container/heap"

	"roadrouter/internal/capgraph"
	"roadrouter/internal/cch"
	"roadrouter/internal/plf"
	"roadrouter/internal/potential"
)

// Weight and Timestamp alias the plf package's travel-time types.
type Weight = plf.Weight
type Timestamp = plf.Timestamp

// Infinity is the unreachable sentinel.
const Infinity = plf.Infinity

const noPredecessor = ^uint32(0)

// pqItem is one entry of the Dijkstra priority queue: priority is
// arrival-at-node + potential(node, arrival) (spec.md §4.5).
type pqItem struct {
	node     capgraph.NodeID
	arrival  Timestamp
	priority Weight
}

type priorityQueue []pqItem

func (q priorityQueue) Len() int            { return len(q) }
func (q priorityQueue) Less(i, j int) bool  { return q[i].priority < q[j].priority }
func (q priorityQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *priorityQueue) Push(x any)         { *q = append(*q, x.(pqItem)) }
func (q *priorityQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// searchResult is the raw Dijkstra outcome before the server's state
// machine interprets it (spec.md §4.5 Search/Terminate).
type searchResult struct {
	arrival    []Timestamp // keyed by node id; Infinity if unreached
	predNode   []uint32
	predEdge   []uint32
	foundTo    bool
	toArrival  Timestamp
	diag       Diagnostics
}

// dijkstra runs TD-Dijkstra from `from` departing at t0, guided by pot,
// stopping as soon as `to` is settled (spec.md §4.5 step 2: Search).
func dijkstra[P potential.Potential](net *capgraph.Network, c *cch.CCH, pot P, from, to capgraph.NodeID, t0 Timestamp) searchResult {
	n := net.NumNodes()
	res := searchResult{
		arrival:  make([]Timestamp, n),
		predNode: make([]uint32, n),
		predEdge: make([]uint32, n),
	}
	settled := make([]bool, n)
	for v := 0; v < n; v++ {
		res.arrival[v] = Infinity
		res.predNode[v] = noPredecessor
		res.predEdge[v] = noPredecessor
	}
	res.arrival[from] = t0

	potentialAt := func(v capgraph.NodeID, t Timestamp) Weight {
		res.diag.NumPotentialComputations++
		w, ok := pot.Potential(c.Rank[v], Weight(t-t0))
		if !ok {
			return 0 // conservative, always-admissible fallback outside the potential's corridor
		}
		return w
	}

	pq := &priorityQueue{{node: from, arrival: t0, priority: Weight(t0) + potentialAt(from, t0)}}
	heap.Init(pq)

	for pq.Len() > 0 {
		item := heap.Pop(pq).(pqItem)
		res.diag.QueuePops++
		if settled[item.node] {
			continue
		}
		settled[item.node] = true
		if item.node == to {
			res.foundTo = true
			res.toArrival = item.arrival
			break
		}

		lo, hi := net.EdgesFrom(item.node)
		for e := lo; e < hi; e++ {
			res.diag.RelaxedArcs++
			head := net.Head[e]
			if settled[head] {
				continue
			}
			arr := item.arrival + net.Eval(e, item.arrival)
			if arr < res.arrival[head] {
				res.arrival[head] = arr
				res.predNode[head] = item.node
				res.predEdge[head] = e
				priority := Weight(arr) + potentialAt(head, arr)
				heap.Push(pq, pqItem{node: head, arrival: arr, priority: priority})
				res.diag.QueuePushes++
			}
		}
	}
	return res
}

// reconstructPath walks predecessors from `to` back to `from` and returns
// the path's nodes and edges in forward order (spec.md §4.5 step 5:
// Path-reconstruct). The per-edge departures are rebuilt separately by
// simulateDepartures, matching P3 (path consistency) by construction rather
// than trusting the Dijkstra arrival times directly.
func reconstructPath(net *capgraph.Network, res searchResult, from, to capgraph.NodeID, t0 Timestamp) (nodes []capgraph.NodeID, edges []capgraph.EdgeID) {
	if !res.foundTo {
		return nil, nil
	}
	var revNodes []capgraph.NodeID
	var revEdges []capgraph.EdgeID
	cur := to
	for cur != from {
		revNodes = append(revNodes, cur)
		e := res.predEdge[cur]
		revEdges = append(revEdges, e)
		cur = res.predNode[cur]
	}
	revNodes = append(revNodes, from)

	nodes = make([]capgraph.NodeID, len(revNodes))
	for i, v := range revNodes {
		nodes[len(nodes)-1-i] = v
	}
	edges = make([]capgraph.EdgeID, len(revEdges))
	for i, e := range revEdges {
		edges[len(edges)-1-i] = e
	}
	return nodes, edges
}

// simulateDepartures forward-simulates edges departing at t0, returning one
// departure timestamp per edge.
func simulateDepartures(net *capgraph.Network, edges []capgraph.EdgeID, t0 Timestamp) []Timestamp {
	departures := make([]Timestamp, len(edges))
	t := t0
	for i, e := range edges {
		departures[i] = t
		t = t + net.Eval(e, t)
	}
	return departures
}
