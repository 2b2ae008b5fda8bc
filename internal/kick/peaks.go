package kick

import "sort"

// Peak picking defaults for the smoothed hip velocity, in degrees per frame
// and frames.
const (
	DefaultPeakHeight   = 5.0
	DefaultPeakDistance = 10
)

// PeakOptions constrains FindPeaks.
type PeakOptions struct {
	// Height is the minimum value a peak must reach, after orienting the
	// series so that the requested extremum is a maximum.
	Height float64
	// Distance is the minimum spacing in frames between accepted peaks.
	Distance int
}

// DefaultPeakOptions returns the diagnostic defaults.
func DefaultPeakOptions() PeakOptions {
	return PeakOptions{Height: DefaultPeakHeight, Distance: DefaultPeakDistance}
}

// FindPeaks returns, in increasing frame order, the frames of the local
// maxima (or minima) of s. Undefined samples are dropped first. A
// candidate must be strictly beyond both neighbours and reach opts.Height.
// Candidates are then accepted highest first, earliest first among equals,
// and any candidate closer than opts.Distance frames to an accepted peak is
// discarded.
func FindPeaks(s Series, dir Direction, opts PeakOptions) []int {
	d := s.Defined()
	values := dir.orient(d.Values)

	var candidates []int
	for i := range values {
		if isPeak(values, i) && values[i] >= opts.Height {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		return values[candidates[a]] > values[candidates[b]]
	})

	var accepted []int // frames, kept sorted
	for _, idx := range candidates {
		frame := d.Frames[idx]
		pos := sort.SearchInts(accepted, frame)
		if pos > 0 && frame-accepted[pos-1] < opts.Distance {
			continue
		}
		if pos < len(accepted) && accepted[pos]-frame < opts.Distance {
			continue
		}
		accepted = append(accepted, 0)
		copy(accepted[pos+1:], accepted[pos:])
		accepted[pos] = frame
	}
	return accepted
}
