package kick

import (
	"github.com/banshee-data/kick.report/internal/geometry"
	"github.com/banshee-data/kick.report/internal/landmarks"
)

// ClassifySample derives the raised state and hip angle of one frame.
// ok is false when any of the four tracked joints is missing; such frames
// are gaps and are not interpolated.
func ClassifySample(s landmarks.Sample, joints landmarks.JointMap) (fs FrameState, ok bool) {
	ankle, ok1 := s.Point(joints.Ankle)
	hip, ok2 := s.Point(joints.Hip)
	rightKnee, ok3 := s.Point(joints.RightKnee)
	leftKnee, ok4 := s.Point(joints.LeftKnee)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return FrameState{}, false
	}

	return FrameState{
		Frame:      s.Frame,
		Raised:     ankle.Y < hip.Y,
		HipAngle:   geometry.AngleAtVertex(rightKnee, hip, leftKnee),
		Degenerate: geometry.IsDegenerate(rightKnee, hip, leftKnee),
	}, true
}

// Classify classifies every sample of t, skipping frames with missing joints.
func Classify(t *landmarks.Table, joints landmarks.JointMap) []FrameState {
	if t.Len() == 0 {
		return nil
	}
	states := make([]FrameState, 0, t.Len())
	for _, s := range t.Samples {
		if fs, ok := ClassifySample(s, joints); ok {
			states = append(states, fs)
		}
	}
	return states
}
