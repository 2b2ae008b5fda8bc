package kick

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Direction selects which extremum a search looks for.
type Direction int

const (
	Maxima Direction = iota
	Minima
)

func (d Direction) String() string {
	if d == Minima {
		return "minima"
	}
	return "maxima"
}

// orient returns a copy of values scaled so that the extremum of interest
// is always a maximum.
func (d Direction) orient(values []float64) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	if d == Minima {
		floats.Scale(-1, out)
	}
	return out
}

// argMax returns the index of the largest defined value, taking the first
// one on ties. ok is false if every value is NaN.
func argMax(values []float64) (idx int, ok bool) {
	idx = -1
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if idx < 0 || v > values[idx] {
			idx = i
		}
	}
	return idx, idx >= 0
}

// isPeak reports whether values[i] is strictly above both neighbours.
// Boundary samples have only one neighbour and never qualify.
func isPeak(values []float64, i int) bool {
	if i <= 0 || i >= len(values)-1 {
		return false
	}
	return values[i] > values[i-1] && values[i] > values[i+1]
}

// ArgExtremum returns the frame in [lo, hi] where s reaches its maximum or
// minimum, skipping undefined samples. The earliest frame wins ties. ok is
// false when no defined sample falls inside the range.
func ArgExtremum(s Series, lo, hi int, dir Direction) (frame int, ok bool) {
	i, j := s.Span(lo, hi)
	if i >= j {
		return 0, false
	}
	idx, ok := argMax(dir.orient(s.Values[i:j]))
	if !ok {
		return 0, false
	}
	return s.Frames[i+idx], true
}
