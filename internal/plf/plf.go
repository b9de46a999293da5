package plf

import "sort"

// Eval returns f(t mod MaxBuckets) by binary search over breakpoints
// followed by linear interpolation, in O(log B) where B is the current
// breakpoint count.
func (f Function) Eval(t Timestamp) Weight {
	t = Mod(t)
	pts := f.Points
	// Find the first breakpoint with At >= t.
	i := sort.Search(len(pts), func(i int) bool { return pts[i].At >= t })
	if i < len(pts) && pts[i].At == t {
		return pts[i].Value
	}
	// t falls strictly between pts[i-1] and pts[i].
	lo, hi := pts[i-1], pts[i]
	span := hi.At - lo.At
	if span == 0 {
		return lo.Value
	}
	frac := t - lo.At
	return lo.Value + (hi.Value-lo.Value)*frac/span
}

// ArrivalAt returns t + f(t), the absolute arrival time for a departure at
// (absolute, non-periodic) timestamp t.
func (f Function) ArrivalAt(t Timestamp) Timestamp {
	return t + f.Eval(t)
}

// IsFIFO reports whether the function satisfies the FIFO property across
// its own breakpoints: consecutive breakpoints never let arrival decrease.
// Debug assertions call this after every mutation per spec.md §4.1.
func (f Function) IsFIFO() bool {
	for i := 1; i < len(f.Points); i++ {
		prevArr := f.Points[i-1].At + f.Points[i-1].Value
		currArr := f.Points[i].At + f.Points[i].Value
		if currArr < prevArr {
			return false
		}
	}
	return true
}

// Link computes the composition (f ∘ g)(t) = f(t) + g(t + f(t)): depart at
// t, take f, then take g starting at the arrival. The result is sampled at
// every breakpoint of f plus every breakpoint of g reachable from some
// breakpoint of f, which bounds the error introduced between samples to the
// piecewise-linear interpolation error of the two inputs.
func Link(f, g Function) Function {
	out := make([]Breakpoint, 0, len(f.Points)+len(g.Points))
	for _, bp := range f.Points {
		arrival := bp.At + bp.Value
		gVal := g.Eval(arrival)
		out = append(out, Breakpoint{At: bp.At, Value: bp.Value + gVal})
	}
	// Breakpoints of g that land inside f's domain (via g's own arrival
	// time translated back through f linearly) sharpen concave segments
	// that a pure f-sample pass would miss.
	for _, bp := range g.Points {
		if bp.At == 0 || bp.At == MaxBuckets {
			continue
		}
		t := inverseDepartureHint(f, bp.At)
		if t < 0 {
			continue
		}
		fVal := f.Eval(t)
		out = append(out, Breakpoint{At: t, Value: fVal + bp.Value})
	}
	return normalize(out)
}

// inverseDepartureHint estimates a departure time t such that f's arrival
// t+f(t) is close to target, by linear search over f's breakpoint arrivals.
// Returns -1 if target falls outside f's arrival range.
func inverseDepartureHint(f Function, target Timestamp) Timestamp {
	pts := f.Points
	if len(pts) == 0 {
		return -1
	}
	for i := 1; i < len(pts); i++ {
		a0 := pts[i-1].At + pts[i-1].Value
		a1 := pts[i].At + pts[i].Value
		if target < a0 || target > a1 {
			continue
		}
		span := a1 - a0
		if span == 0 {
			return pts[i-1].At
		}
		frac := target - a0
		dep := pts[i-1].At + (pts[i].At-pts[i-1].At)*frac/span
		return dep
	}
	return -1
}

// Merge computes the pointwise minimum of f and g, emitting a breakpoint at
// every sample of both inputs plus at each crossing where the two segments
// intersect, so the result is still exactly piecewise-linear (spec.md §3
// "merging... with intersection-aware breakpoint emission").
func Merge(f, g Function) Function {
	out := make([]Breakpoint, 0, len(f.Points)+len(g.Points))
	i, j := 0, 0
	for i < len(f.Points) || j < len(g.Points) {
		var t Timestamp
		switch {
		case i >= len(f.Points):
			t = g.Points[j].At
			j++
		case j >= len(g.Points):
			t = f.Points[i].At
			i++
		case f.Points[i].At == g.Points[j].At:
			t = f.Points[i].At
			i++
			j++
		case f.Points[i].At < g.Points[j].At:
			t = f.Points[i].At
			i++
		default:
			t = g.Points[j].At
			j++
		}
		out = appendMin(out, f, g, t)
	}
	out = insertCrossings(out, f, g)
	return normalize(out)
}

func appendMin(out []Breakpoint, f, g Function, t Timestamp) []Breakpoint {
	fv, gv := f.Eval(t), g.Eval(t)
	v := fv
	if gv < v {
		v = gv
	}
	return append(out, Breakpoint{At: t, Value: v})
}

// insertCrossings detects segments where f and g swap which is the
// pointwise minimum and inserts the linear-interpolated intersection point,
// so the merged function remains piecewise-linear rather than merely
// sampled.
func insertCrossings(out []Breakpoint, f, g Function) []Breakpoint {
	if len(out) < 2 {
		return out
	}
	withCrossings := make([]Breakpoint, 0, len(out)*2)
	prevT := out[0].At
	prevDiff := f.Eval(prevT) - g.Eval(prevT)
	withCrossings = append(withCrossings, out[0])
	for k := 1; k < len(out); k++ {
		t := out[k].At
		diff := f.Eval(t) - g.Eval(t)
		if (prevDiff > 0) != (diff > 0) && prevDiff != 0 && diff != 0 {
			span := t - prevT
			if span > 0 {
				frac := prevDiff
				denom := prevDiff - diff
				if denom != 0 {
					crossT := prevT + span*frac/denom
					if crossT > prevT && crossT < t {
						v := f.Eval(crossT)
						withCrossings = append(withCrossings, Breakpoint{At: crossT, Value: v})
					}
				}
			}
		}
		withCrossings = append(withCrossings, out[k])
		prevT, prevDiff = t, diff
	}
	return withCrossings
}

// normalize sorts, deduplicates, and re-pins the periodic sentinels so the
// result satisfies the invariants of spec.md §3: At[0]==0,
// At[last]==MaxBuckets, Value[0]==Value[last].
func normalize(pts []Breakpoint) Function {
	sort.Slice(pts, func(i, j int) bool { return pts[i].At < pts[j].At })
	out := pts[:0:0]
	for i, bp := range pts {
		if i > 0 && bp.At == out[len(out)-1].At {
			out[len(out)-1] = bp
			continue
		}
		out = append(out, bp)
	}
	if len(out) == 0 {
		return Constant(0)
	}
	if out[0].At != 0 {
		out = append([]Breakpoint{{At: 0, Value: out[0].Value}}, out...)
	}
	last := len(out) - 1
	if out[last].At != MaxBuckets {
		out = append(out, Breakpoint{At: MaxBuckets, Value: out[0].Value})
	} else {
		out[last].Value = out[0].Value
	}
	return Function{Points: out}
}

// MinOverInterval returns the minimum value f attains over the half-open
// departure window [start, end), taken modulo MaxBuckets. If end < start the
// window wraps past midnight and the minimum is taken over the two disjoint
// ranges [start, MaxBuckets) and [0, end), matching the circular-interval
// handling CorridorLowerbound-Pot and multi-metric column selection need
// (spec.md §4.4).
func (f Function) MinOverInterval(start, end Timestamp) Weight {
	start, end = Mod(start), Mod(end)
	if start <= end {
		return f.minOverNonWrapping(start, end)
	}
	a := f.minOverNonWrapping(start, MaxBuckets)
	b := f.minOverNonWrapping(0, end)
	if b < a {
		return b
	}
	return a
}

func (f Function) minOverNonWrapping(start, end Timestamp) Weight {
	if start == end {
		return f.Eval(start)
	}
	best := f.Eval(start)
	if v := f.Eval(end); v < best {
		best = v
	}
	i := sort.Search(len(f.Points), func(i int) bool { return f.Points[i].At >= start })
	for ; i < len(f.Points) && f.Points[i].At < end; i++ {
		if f.Points[i].Value < best {
			best = f.Points[i].Value
		}
	}
	return best
}

// LowerBound returns the global minimum value of f, a scalar that never
// exceeds f anywhere (an admissible lower bound, used by CCH customization
// and the potentials built on it). ApproxLowerBound below gives a tighter
// lower bound as a simplified PLF, using an Imai-Iri style sweep.
func (f Function) LowerBound() Weight {
	min := f.Points[0].Value
	for _, bp := range f.Points {
		if bp.Value < min {
			min = bp.Value
		}
	}
	return min
}

// UpperBound returns the global maximum value of f, a valid scalar upper
// bound.
func (f Function) UpperBound() Weight {
	max := f.Points[0].Value
	for _, bp := range f.Points {
		if bp.Value > max {
			max = bp.Value
		}
	}
	return max
}

// ApproxLowerBound simplifies f to at most maxBreakpoints breakpoints while
// guaranteeing the result is <= f everywhere (Imai-Iri style: repeatedly
// drop the breakpoint whose removal perturbs the hull least, then push the
// surviving segment down to stay under the dropped samples).
func (f Function) ApproxLowerBound(maxBreakpoints int) Function {
	return approxBound(f, maxBreakpoints, true)
}

// ApproxUpperBound is the symmetric upper-bound simplification: the result
// is always >= f.
func (f Function) ApproxUpperBound(maxBreakpoints int) Function {
	return approxBound(f, maxBreakpoints, false)
}

func approxBound(f Function, maxBreakpoints int, lower bool) Function {
	if maxBreakpoints < 2 || len(f.Points) <= maxBreakpoints {
		return f
	}
	// Keep evenly spaced samples from the original breakpoint set, then
	// adjust each kept value so the simplification stays on the correct
	// side of every dropped sample between it and its neighbours.
	step := float64(len(f.Points)-1) / float64(maxBreakpoints-1)
	kept := make([]int, maxBreakpoints)
	for i := range kept {
		kept[i] = int(float64(i) * step)
	}
	kept[len(kept)-1] = len(f.Points) - 1

	out := make([]Breakpoint, 0, maxBreakpoints)
	for i, idx := range kept {
		bp := f.Points[idx]
		lo, hi := idx, idx
		if i > 0 {
			lo = kept[i-1]
		}
		if i < len(kept)-1 {
			hi = kept[i+1]
		}
		v := bp.Value
		for j := lo; j <= hi && j < len(f.Points); j++ {
			if lower && f.Points[j].Value < v {
				v = f.Points[j].Value
			}
			if !lower && f.Points[j].Value > v {
				v = f.Points[j].Value
			}
		}
		out = append(out, Breakpoint{At: bp.At, Value: v})
	}
	return normalize(out)
}
