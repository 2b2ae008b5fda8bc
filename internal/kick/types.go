package kick

import (
	"fmt"
	"math"
	"sort"
)

// FrameState is the classification of one frame with a detected pose.
type FrameState struct {
	Frame int `json:"frame"`
	// Raised is true when the ankle sits above the hip in image space
	// (smaller y, since image y grows downward).
	Raised bool `json:"raised"`
	// HipAngle is the opening between the knees at the hip, in degrees.
	HipAngle float64 `json:"hip_angle"`
	// Degenerate marks a frame whose hip angle could not be measured and
	// carries geometry.DegenerateAngle instead.
	Degenerate bool `json:"degenerate,omitempty"`
}

// Interval is an inclusive frame span with Start < End.
type Interval struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func (iv Interval) String() string {
	return fmt.Sprintf("[%d, %d]", iv.Start, iv.End)
}

// Len returns the number of frames spanned, counting both ends.
func (iv Interval) Len() int { return iv.End - iv.Start + 1 }

// Record is one detected kick.
type Record struct {
	// Interval is the reported span: the refined interval when refinement
	// was accepted, otherwise the coarse one.
	Interval Interval `json:"interval"`
	Coarse   Interval `json:"coarse"`
	Refined  bool     `json:"refined"`
	// Angle is the hip angle at the rising-edge frame, the moment the
	// ankle first clears the hip.
	Angle float64 `json:"angle"`
}

// Series is a frame-indexed signal. Frames are strictly increasing and
// NaN values mark samples where the signal is undefined.
type Series struct {
	Frames []int
	Values []float64
}

// Len returns the number of samples, defined or not.
func (s Series) Len() int { return len(s.Frames) }

// At returns the value at frame. ok is false if the frame is absent or the
// value is undefined.
func (s Series) At(frame int) (v float64, ok bool) {
	i := sort.SearchInts(s.Frames, frame)
	if i == len(s.Frames) || s.Frames[i] != frame || math.IsNaN(s.Values[i]) {
		return 0, false
	}
	return s.Values[i], true
}

// Span returns the index range [i, j) of samples whose frame lies in the
// inclusive range [lo, hi].
func (s Series) Span(lo, hi int) (i, j int) {
	i = sort.SearchInts(s.Frames, lo)
	j = sort.SearchInts(s.Frames, hi+1)
	if j < i {
		j = i
	}
	return i, j
}

// Defined returns a copy of s with the undefined samples removed.
func (s Series) Defined() Series {
	out := Series{
		Frames: make([]int, 0, len(s.Frames)),
		Values: make([]float64, 0, len(s.Values)),
	}
	for i, v := range s.Values {
		if math.IsNaN(v) {
			continue
		}
		out.Frames = append(out.Frames, s.Frames[i])
		out.Values = append(out.Values, v)
	}
	return out
}
