// Package kick segments kicks out of a frame-indexed pose landmark series.
//
// The batch path is a chain of pure functions composed by Analyze:
//
//	Classify         landmarks -> per-frame raised state and hip angle
//	DetectIntervals  raised edges -> coarse kick intervals
//	ComputeKinematics hip angle -> velocity, acceleration, jerk (+ smoothed)
//	Refine           coarse intervals -> intervals snapped to velocity extrema
//	FindPeaks        smoothed velocity -> diagnostic peak frames
//
// CounterState is the streaming alternative: it consumes one FrameState at
// a time and counts rising edges without buffering or refinement.
package kick
