package kick

// RefineFunc maps a coarse interval to a refined one. ok is false when the
// refinement is rejected and the coarse interval should stand.
type RefineFunc func(coarse Interval) (refined Interval, ok bool)

// VelocityRefiner snaps an interval to the extrema of the smoothed hip
// velocity: the start moves to the fastest opening frame and the end to the
// fastest closing frame inside the coarse span.
//
// This is a best-effort heuristic. When the span has no defined velocity
// the extrema default to the coarse bounds, and when the maximum does not
// precede the minimum the refinement is rejected.
func VelocityRefiner(smoothed Series) RefineFunc {
	return func(coarse Interval) (Interval, bool) {
		return RefineInterval(smoothed, coarse)
	}
}

// RefineInterval applies the velocity-extremum heuristic to one interval.
// A rejected refinement returns the coarse interval unchanged.
func RefineInterval(smoothed Series, coarse Interval) (Interval, bool) {
	start, ok := ArgExtremum(smoothed, coarse.Start, coarse.End, Maxima)
	if !ok {
		start = coarse.Start
	}
	end, ok := ArgExtremum(smoothed, coarse.Start, coarse.End, Minima)
	if !ok {
		end = coarse.End
	}
	if start < end {
		return Interval{Start: start, End: end}, true
	}
	return coarse, false
}

// Refine runs refine over every coarse interval, returning the refined
// intervals in the same order and which of them were accepted.
func Refine(coarse []Interval, refine RefineFunc) (out []Interval, accepted []bool) {
	out = make([]Interval, len(coarse))
	accepted = make([]bool, len(coarse))
	for i, iv := range coarse {
		r, ok := refine(iv)
		if !ok || r.Start >= r.End {
			r, ok = iv, false
		}
		out[i] = r
		accepted[i] = ok
	}
	return out, accepted
}
