package kick

import (
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// statesOf builds contiguous frame states from raised flags.
func statesOf(raised ...bool) []FrameState {
	states := make([]FrameState, len(raised))
	for i, r := range raised {
		states[i] = FrameState{Frame: i, Raised: r, HipAngle: 30}
	}
	return states
}

const (
	F = false
	T = true
)

func TestDetectIntervals(t *testing.T) {
	tests := []struct {
		name     string
		states   []FrameState
		rising   []int
		falling  []int
		want     []Interval
		dangling []int
	}{
		{
			name:    "two kicks",
			states:  statesOf(F, F, T, T, F, F, T, F),
			rising:  []int{2, 6},
			falling: []int{4, 7},
			want:    []Interval{{2, 4}, {6, 7}},
		},
		{
			name:   "ends mid raise",
			states: statesOf(F, T, T),
			rising: []int{1},
			want:   []Interval{{1, 2}},
		},
		{
			name:    "raised from the first frame",
			states:  statesOf(T, T, F, F),
			rising:  []int{0},
			falling: []int{2},
			want:    []Interval{{0, 2}},
		},
		{
			name:     "rise on the last frame",
			states:   statesOf(F, F, T),
			rising:   []int{2},
			dangling: []int{2},
		},
		{
			name:   "all false",
			states: statesOf(F, F, F, F),
		},
		{
			name: "empty",
		},
		{
			name: "gap carries previous state",
			states: []FrameState{
				{Frame: 0}, {Frame: 1, Raised: true}, {Frame: 5, Raised: true}, {Frame: 6},
			},
			rising:  []int{1},
			falling: []int{6},
			want:    []Interval{{1, 6}},
		},
		{
			name: "gap between two kicks",
			states: []FrameState{
				{Frame: 3, Raised: true}, {Frame: 4}, {Frame: 9}, {Frame: 10, Raised: true}, {Frame: 12},
			},
			rising:  []int{3, 10},
			falling: []int{4, 12},
			want:    []Interval{{3, 4}, {10, 12}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.rising, RisingEdges(tt.states)); diff != "" {
				t.Errorf("RisingEdges mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.falling, FallingEdges(tt.states)); diff != "" {
				t.Errorf("FallingEdges mismatch (-want +got):\n%s", diff)
			}

			last := -1
			if n := len(tt.states); n > 0 {
				last = tt.states[n-1].Frame
			}
			got := DetectIntervals(tt.states, last)
			if diff := cmp.Diff(tt.want, got.Intervals); diff != "" {
				t.Errorf("DetectIntervals mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.dangling, got.Dangling); diff != "" {
				t.Errorf("Dangling mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDetectIntervals_StreamLongerThanStates(t *testing.T) {
	// Trailing frames without a pose still belong to the stream.
	got := DetectIntervals(statesOf(F, T, T), 10)
	if diff := cmp.Diff([]Interval{{1, 10}}, got.Intervals); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	// A stale lastFrame never cuts the series short.
	got = DetectIntervals(statesOf(F, T, T), 0)
	if diff := cmp.Diff([]Interval{{1, 2}}, got.Intervals); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestPairEdges(t *testing.T) {
	tests := []struct {
		name      string
		starts    []int
		ends      []int
		lastFrame int
		want      []Interval
	}{
		{"orphan end before first start", []int{5}, []int{2, 8}, 20, []Interval{{5, 8}}},
		{"several orphan ends", []int{10, 30}, []int{1, 3, 12, 35}, 40, []Interval{{10, 12}, {30, 35}}},
		{"ends exhausted", []int{1, 6}, []int{3}, 9, []Interval{{1, 3}, {6, 9}}},
		{"no ends", []int{4}, nil, 7, []Interval{{4, 7}}},
		{"no starts", nil, []int{4}, 7, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PairEdges(tt.starts, tt.ends, tt.lastFrame)
			if diff := cmp.Diff(tt.want, got.Intervals); diff != "" {
				t.Errorf("PairEdges mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDetectIntervals_Properties(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for run := 0; run < 500; run++ {
		n := rng.IntN(60)
		states := make([]FrameState, 0, n)
		frame := 0
		for i := 0; i < n; i++ {
			frame += 1 + rng.IntN(3) // occasional gaps
			states = append(states, FrameState{Frame: frame, Raised: rng.IntN(2) == 1})
		}
		last := frame

		got := DetectIntervals(states, last)
		rising := RisingEdges(states)
		if len(got.Intervals)+len(got.Dangling) != len(rising) {
			t.Fatalf("run %d: %d intervals + %d dangling != %d rising edges",
				run, len(got.Intervals), len(got.Dangling), len(rising))
		}
		if len(got.Dangling) > 0 && (len(got.Dangling) != 1 || got.Dangling[0] != last) {
			t.Fatalf("run %d: unexpected dangling rises %v", run, got.Dangling)
		}
		for i, iv := range got.Intervals {
			if iv.Start >= iv.End {
				t.Fatalf("run %d: interval %v has start >= end", run, iv)
			}
			if iv.Start != rising[i] {
				t.Fatalf("run %d: interval %d starts at %d, want rising edge %d", run, i, iv.Start, rising[i])
			}
			if i > 0 && iv.Start < got.Intervals[i-1].End {
				t.Fatalf("run %d: interval %v overlaps %v", run, iv, got.Intervals[i-1])
			}
		}
	}
}
