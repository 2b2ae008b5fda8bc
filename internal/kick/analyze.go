package kick

import (
	"github.com/banshee-data/kick.report/internal/landmarks"
)

// Options configures a batch analysis.
type Options struct {
	SmoothingWindow int
	Peaks           PeakOptions
	// Refine overrides the refinement strategy. Nil selects VelocityRefiner
	// over the smoothed hip velocity.
	Refine RefineFunc
}

// DefaultOptions returns the standard analysis settings.
func DefaultOptions() Options {
	return Options{
		SmoothingWindow: DefaultSmoothingWindow,
		Peaks:           DefaultPeakOptions(),
	}
}

// Result is the outcome of a batch analysis.
type Result struct {
	States     []FrameState
	Coarse     []Interval
	Dangling   []int
	Kicks      []Record
	Kinematics Kinematics
	// PositivePeaks and NegativePeaks are diagnostic only; they play no
	// part in interval refinement.
	PositivePeaks []int
	NegativePeaks []int

	// RejectedRefinements counts kicks that kept their coarse interval.
	RejectedRefinements int
	// DegenerateFrames counts frames whose hip angle was unmeasurable.
	DegenerateFrames int
}

// Analyze runs detection, refinement and peak picking over a classified
// series. lastFrame is the final frame of the source stream, used to close
// a kick that is still raised when the stream ends.
func Analyze(states []FrameState, lastFrame int, opts Options) *Result {
	r := &Result{States: states}
	for _, fs := range states {
		if fs.Degenerate {
			r.DegenerateFrames++
		}
	}

	det := DetectIntervals(states, lastFrame)
	r.Coarse = det.Intervals
	r.Dangling = det.Dangling

	r.Kinematics = ComputeKinematics(states, opts.SmoothingWindow)

	refine := opts.Refine
	if refine == nil {
		refine = VelocityRefiner(r.Kinematics.VelocitySmooth)
	}
	refined, accepted := Refine(r.Coarse, refine)

	r.Kicks = make([]Record, 0, len(r.Coarse))
	for i, coarse := range r.Coarse {
		// The rising-edge frame is always a classified frame.
		angle, _ := r.Kinematics.Angle.At(coarse.Start)
		if !accepted[i] {
			r.RejectedRefinements++
		}
		r.Kicks = append(r.Kicks, Record{
			Interval: refined[i],
			Coarse:   coarse,
			Refined:  accepted[i],
			Angle:    angle,
		})
	}

	r.PositivePeaks = FindPeaks(r.Kinematics.VelocitySmooth, Maxima, opts.Peaks)
	r.NegativePeaks = FindPeaks(r.Kinematics.VelocitySmooth, Minima, opts.Peaks)
	return r
}

// AnalyzeTable classifies t and analyzes it. A kick still raised at the
// end of the series closes on the last frame with a detected pose, so rows
// without a usable pose after it do not change the result.
func AnalyzeTable(t *landmarks.Table, joints landmarks.JointMap, opts Options) *Result {
	states := Classify(t, joints)
	last := -1
	if n := len(states); n > 0 {
		last = states[n-1].Frame
	}
	return Analyze(states, last, opts)
}
