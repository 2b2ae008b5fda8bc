package kick

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// DefaultSmoothingWindow is the moving-average width applied to velocity and
// acceleration before extremum search.
const DefaultSmoothingWindow = 5

// Kinematics holds the hip-angle signal and its discrete derivatives, all
// sharing the frame index of the classified series.
type Kinematics struct {
	Angle              Series
	Velocity           Series
	Acceleration       Series
	Jerk               Series
	VelocitySmooth     Series
	AccelerationSmooth Series
}

// AngleSeries extracts the hip angle of each classified frame.
func AngleSeries(states []FrameState) Series {
	s := Series{
		Frames: make([]int, len(states)),
		Values: make([]float64, len(states)),
	}
	for i, fs := range states {
		s.Frames[i] = fs.Frame
		s.Values[i] = fs.HipAngle
	}
	return s
}

// Diff returns the first difference of s between consecutive samples,
// indexed by the later sample. The first sample has no predecessor and is
// undefined, as is any difference involving an undefined input.
func Diff(s Series) Series {
	out := Series{
		Frames: append([]int(nil), s.Frames...),
		Values: make([]float64, len(s.Values)),
	}
	for i := range s.Values {
		if i == 0 {
			out.Values[i] = math.NaN()
			continue
		}
		out.Values[i] = s.Values[i] - s.Values[i-1]
	}
	return out
}

// MovingAverage applies a centred moving average of the given width. The
// width is forced odd and at least one. A sample is undefined when its
// window runs past either end of the series or covers an undefined value.
func MovingAverage(s Series, window int) Series {
	if window < 1 {
		window = 1
	}
	if window%2 == 0 {
		window++
	}
	half := window / 2

	out := Series{
		Frames: append([]int(nil), s.Frames...),
		Values: make([]float64, len(s.Values)),
	}
	for i := range s.Values {
		if i < half || i+half >= len(s.Values) {
			out.Values[i] = math.NaN()
			continue
		}
		// NaN inside the window propagates through the sum.
		out.Values[i] = floats.Sum(s.Values[i-half:i+half+1]) / float64(window)
	}
	return out
}

// ComputeKinematics derives velocity, acceleration and jerk from the hip
// angle and smooths velocity and acceleration with the given window.
func ComputeKinematics(states []FrameState, window int) Kinematics {
	k := Kinematics{Angle: AngleSeries(states)}
	k.Velocity = Diff(k.Angle)
	k.Acceleration = Diff(k.Velocity)
	k.Jerk = Diff(k.Acceleration)
	k.VelocitySmooth = MovingAverage(k.Velocity, window)
	k.AccelerationSmooth = MovingAverage(k.Acceleration, window)
	return k
}
