package customize

import (
	"sync"

	"roadrouter/internal/cch"
	"roadrouter/internal/plf"
)

// scratch holds two N-sized arrays keyed by neighbour rank, used while
// customizing a single node: the best upward/downward candidate found for
// each of the node's upward neighbours is accumulated here before being
// flushed into the edge-indexed Up/Down arrays, and the arrays are reused
// across every node a worker processes to amortise zeroing (spec.md §5
// "thread-local scratch").
type scratch struct {
	bestUp, bestDown []Weight
	marked           []bool
	touched          []Rank
}

func newScratch(n int) *scratch {
	return &scratch{
		bestUp:   make([]Weight, n),
		bestDown: make([]Weight, n),
		marked:   make([]bool, n),
	}
}

func (s *scratch) note(w Rank, up, down Weight) {
	i := int(w)
	if !s.marked[i] {
		s.marked[i] = true
		s.bestUp[i] = Infinity
		s.bestDown[i] = Infinity
		s.touched = append(s.touched, w)
	}
	if up < s.bestUp[i] {
		s.bestUp[i] = up
	}
	if down < s.bestDown[i] {
		s.bestDown[i] = down
	}
}

// flush writes every touched neighbour's best candidate into the edge
// arrays and clears the scratch for the next node.
func (s *scratch) flush(c *cch.CCH, v Rank, up, down []Weight) {
	for _, w := range s.touched {
		e, ok := c.EdgeIDBetween(v, w)
		if !ok {
			continue
		}
		i := int(w)
		if s.bestUp[i] < up[e] {
			up[e] = s.bestUp[i]
		}
		if s.bestDown[i] < down[e] {
			down[e] = s.bestDown[i]
		}
		s.marked[i] = false
	}
	s.touched = s.touched[:0]
}

// scratchPool hands out per-worker scratch buffers sized for a given CCH,
// so concurrent cell workers in the parallel driver never share one.
type scratchPool struct {
	pool *sync.Pool
}

func newScratchPool(numNodes int) *scratchPool {
	return &scratchPool{pool: &sync.Pool{New: func() any { return newScratch(numNodes) }}}
}

func (p *scratchPool) get() *scratch  { return p.pool.Get().(*scratch) }
func (p *scratchPool) put(s *scratch) { p.pool.Put(s) }

// customizeNodeWithScratch is equivalent to customizeNode but batches every
// candidate for a given upward neighbour through scratch before writing the
// edge arrays once, instead of comparing against up[e3]/down[e3] on every
// intermediate relaxation.
func customizeNodeWithScratch(c *cch.CCH, up, down []Weight, v Rank, s *scratch) {
	dlo, dhi := c.DownRange(v)
	for i := dlo; i < dhi; i++ {
		x := c.DownNeighbor[i]
		e1 := c.DownEdgeID[i]
		ulo, uhi := c.UpRange(x)
		for j := ulo; j < uhi; j++ {
			w := c.UpHead[j]
			if w <= v {
				continue
			}
			e2 := j
			candUp := plf.AddSaturating(down[e1], up[e2])
			candDown := plf.AddSaturating(down[e2], up[e1])
			s.note(w, candUp, candDown)
		}
	}
	s.flush(c, v, up, down)
}

// customizeRangeWithScratch runs customizeNodeWithScratch over [lo, hi)
// ascending, reusing one scratch buffer for the whole range.
func customizeRangeWithScratch(c *cch.CCH, up, down []Weight, lo, hi Rank, s *scratch) {
	for v := lo; v < hi; v++ {
		customizeNodeWithScratch(c, up, down, v, s)
	}
}
