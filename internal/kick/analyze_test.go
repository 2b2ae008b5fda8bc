package kick

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/kick.report/internal/geometry"
	"github.com/banshee-data/kick.report/internal/landmarks"
	"github.com/banshee-data/kick.report/internal/testutil"
)

func singleKickTable() *landmarks.Table {
	return testutil.PoseTable(
		testutil.RaisedRange(40, 10, 19),
		testutil.KickAngleProfile(40, 8, 14, 30, 90),
	)
}

func TestAnalyzeTable_SingleKick(t *testing.T) {
	r := AnalyzeTable(singleKickTable(), landmarks.DefaultJointMap(), DefaultOptions())

	require.Len(t, r.States, 40)
	assert.Equal(t, []Interval{{10, 20}}, r.Coarse)
	assert.Empty(t, r.Dangling)

	require.Len(t, r.Kicks, 1)
	k := r.Kicks[0]
	assert.Equal(t, Interval{10, 20}, k.Coarse)
	assert.True(t, k.Refined)
	assert.Equal(t, Interval{12, 19}, k.Interval)

	s := math.Sin(2 * math.Pi / 14)
	assert.InDelta(t, 30+90*s*s, k.Angle, 1e-6)

	assert.Equal(t, []int{12}, r.PositivePeaks)
	assert.Equal(t, []int{19}, r.NegativePeaks)
	assert.Equal(t, 0, r.RejectedRefinements)
	assert.Equal(t, 0, r.DegenerateFrames)

	// The smoothed velocity needs a full window of defined derivatives.
	for _, f := range []int{0, 1, 2, 38, 39} {
		_, ok := r.Kinematics.VelocitySmooth.At(f)
		assert.False(t, ok, "frame %d", f)
	}
	_, ok := r.Kinematics.VelocitySmooth.At(3)
	assert.True(t, ok)
}

func TestAnalyzeTable_TrailingFramesWithoutPose(t *testing.T) {
	table := testutil.PoseTable([]bool{false, true, true}, nil)
	require.NoError(t, table.Append(landmarks.Sample{Frame: 3}))
	require.NoError(t, table.Append(landmarks.Sample{Frame: 4, Points: map[int]geometry.Point{
		0: {X: math.NaN(), Y: math.NaN()},
	}}))

	r := AnalyzeTable(table, landmarks.DefaultJointMap(), DefaultOptions())
	require.Len(t, r.States, 3)
	assert.Equal(t, []Interval{{1, 2}}, r.Coarse)
	assert.Empty(t, r.Dangling)

	trimmed := testutil.PoseTable([]bool{false, true, true}, nil)
	if diff := cmp.Diff(AnalyzeTable(trimmed, landmarks.DefaultJointMap(), DefaultOptions()).Kicks, r.Kicks); diff != "" {
		t.Errorf("kicks differ from the table without pose-less frames (-want +got):\n%s", diff)
	}
}

func TestAnalyze_RejectedRefinementKeepsCoarse(t *testing.T) {
	states := statesOf(F, T, T, T, F, F)
	opts := DefaultOptions()
	opts.Refine = func(iv Interval) (Interval, bool) { return iv, false }

	r := Analyze(states, 5, opts)
	require.Len(t, r.Kicks, 1)
	assert.Equal(t, Record{Interval: Interval{1, 4}, Coarse: Interval{1, 4}, Angle: 30}, r.Kicks[0])
	assert.Equal(t, 1, r.RejectedRefinements)
}

func TestAnalyze_Empty(t *testing.T) {
	for name, states := range map[string][]FrameState{
		"no frames":  nil,
		"never kick": statesOf(F, F, F, F, F, F, F, F),
	} {
		t.Run(name, func(t *testing.T) {
			r := Analyze(states, len(states)-1, DefaultOptions())
			assert.Empty(t, r.Coarse)
			assert.Empty(t, r.Kicks)
			assert.Empty(t, r.PositivePeaks)
			assert.Empty(t, r.NegativePeaks)
		})
	}

	r := AnalyzeTable(&landmarks.Table{}, landmarks.DefaultJointMap(), DefaultOptions())
	assert.Empty(t, r.Kicks)
}

func TestAnalyze_DegenerateFrames(t *testing.T) {
	states := statesOf(F, T, F)
	states[1].HipAngle = 180
	states[1].Degenerate = true

	r := Analyze(states, 2, DefaultOptions())
	assert.Equal(t, 1, r.DegenerateFrames)
	if diff := cmp.Diff([]Interval{{1, 2}}, r.Coarse); diff != "" {
		t.Errorf("coarse mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 180.0, r.Kicks[0].Angle)
}
