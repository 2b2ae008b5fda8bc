package kick

import (
	"encoding/json"

	"github.com/banshee-data/kick.report/internal/geometry"
)

// Stage is the streaming counter's phase.
type Stage string

const (
	StageReady   Stage = "READY"
	StageKicking Stage = "KICKING"
)

// CounterState is the streaming kick counter. It is a plain value: the
// caller owns it, passes it to Advance and keeps the returned copy. Copies
// share the recorded kicks, which are never modified once recorded.
type CounterState struct {
	Count int   `json:"count"`
	Stage Stage `json:"stage"`
	// HipAngle is the angle of the most recent frame.
	HipAngle float64 `json:"hip_angle"`

	last *kickEntry
}

// kickEntry is one recorded kick, linked to the kick before it.
type kickEntry struct {
	angle float64
	prev  *kickEntry
}

// NewCounterState returns a counter that has seen no frames.
func NewCounterState() CounterState {
	return CounterState{Stage: StageReady, HipAngle: geometry.DegenerateAngle}
}

// Advance feeds one frame to the counter in constant time. kicked is true
// when the frame is a rising edge, in which case the frame's hip angle has
// been recorded as the newest kick.
func (s CounterState) Advance(fs FrameState) (next CounterState, kicked bool) {
	next = s
	next.HipAngle = fs.HipAngle
	switch {
	case fs.Raised && s.Stage != StageKicking:
		next.Count++
		next.Stage = StageKicking
		next.last = &kickEntry{angle: fs.HipAngle, prev: s.last}
		kicked = true
	case !fs.Raised && s.Stage == StageKicking:
		next.Stage = StageReady
	}
	return next, kicked
}

// KickAngles returns the hip angle recorded at each counted kick, oldest
// first.
func (s CounterState) KickAngles() []float64 {
	if s.last == nil {
		return nil
	}
	out := make([]float64, s.Count)
	i := s.Count - 1
	for e := s.last; e != nil; e = e.prev {
		out[i] = e.angle
		i--
	}
	return out
}

// MarshalJSON includes the recorded kick angles.
func (s CounterState) MarshalJSON() ([]byte, error) {
	type counterJSON struct {
		Count      int       `json:"count"`
		Stage      Stage     `json:"stage"`
		HipAngle   float64   `json:"hip_angle"`
		KickAngles []float64 `json:"kick_angles"`
	}
	angles := s.KickAngles()
	if angles == nil {
		angles = []float64{}
	}
	return json.Marshal(counterJSON{Count: s.Count, Stage: s.Stage, HipAngle: s.HipAngle, KickAngles: angles})
}

// HistoryEntry is one line of the kick history panel.
type HistoryEntry struct {
	Number int     `json:"number"`
	Angle  float64 `json:"angle"`
}

// History returns the last n recorded kicks, oldest first, numbered from 1
// over the whole session. It walks at most n kicks.
func (s CounterState) History(n int) []HistoryEntry {
	if n <= 0 || s.last == nil {
		return nil
	}
	n = min(n, s.Count)
	out := make([]HistoryEntry, n)
	e := s.last
	for i := n - 1; i >= 0; i-- {
		out[i] = HistoryEntry{Number: s.Count - (n - 1 - i), Angle: e.angle}
		e = e.prev
	}
	return out
}

// Replay runs the counter over a whole classified series.
func Replay(states []FrameState) CounterState {
	s := NewCounterState()
	for _, fs := range states {
		s, _ = s.Advance(fs)
	}
	return s
}
