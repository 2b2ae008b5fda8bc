package kick

// RisingEdges returns the frames where the raised state turns on. The state
// before the first sample is taken as not raised, and a gap in the frame
// index compares against the previous available sample.
func RisingEdges(states []FrameState) []int {
	var edges []int
	prev := false
	for _, fs := range states {
		if fs.Raised && !prev {
			edges = append(edges, fs.Frame)
		}
		prev = fs.Raised
	}
	return edges
}

// FallingEdges returns the frames where the raised state turns off.
func FallingEdges(states []FrameState) []int {
	var edges []int
	prev := false
	for _, fs := range states {
		if !fs.Raised && prev {
			edges = append(edges, fs.Frame)
		}
		prev = fs.Raised
	}
	return edges
}

// Detection is the outcome of edge pairing.
type Detection struct {
	Intervals []Interval
	// Dangling holds rising edges with no later frame to end on, i.e. a
	// rise on the very last frame of the stream.
	Dangling []int
}

// PairEdges merges sorted start and end frames into intervals. Each start
// takes the first unconsumed end after it; ends that precede every
// remaining start (the stream began mid-raise) are dropped. Starts left
// over once the ends run out are closed at lastFrame.
func PairEdges(starts, ends []int, lastFrame int) Detection {
	var d Detection
	i, j := 0, 0
	for i < len(starts) && j < len(ends) {
		switch {
		case starts[i] < ends[j]:
			d.Intervals = append(d.Intervals, Interval{Start: starts[i], End: ends[j]})
			i++
			j++
		default:
			// orphan end
			j++
		}
	}
	for ; i < len(starts); i++ {
		if starts[i] < lastFrame {
			d.Intervals = append(d.Intervals, Interval{Start: starts[i], End: lastFrame})
		} else {
			d.Dangling = append(d.Dangling, starts[i])
		}
	}
	return d
}

// DetectIntervals finds the coarse kick intervals of a classified series.
// lastFrame is the final frame of the stream; it is raised to the last
// classified frame if smaller.
func DetectIntervals(states []FrameState, lastFrame int) Detection {
	if n := len(states); n > 0 && states[n-1].Frame > lastFrame {
		lastFrame = states[n-1].Frame
	}
	return PairEdges(RisingEdges(states), FallingEdges(states), lastFrame)
}
