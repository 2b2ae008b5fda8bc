package kick

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestRefineInterval(t *testing.T) {
	tests := []struct {
		name     string
		smoothed Series
		coarse   Interval
		want     Interval
		accepted bool
	}{
		{
			name:     "max before min",
			smoothed: seriesOf(0, 1, 6, 3, -2, -7, -1, 0),
			coarse:   Interval{1, 7},
			want:     Interval{2, 5},
			accepted: true,
		},
		{
			name:     "search limited to the interval",
			smoothed: seriesOf(50, 1, 6, 3, -2, -7, -1, -90),
			coarse:   Interval{1, 6},
			want:     Interval{2, 5},
			accepted: true,
		},
		{
			name:     "min before max is rejected",
			smoothed: seriesOf(0, -4, -1, 2, 8, 1),
			coarse:   Interval{1, 5},
			want:     Interval{1, 5},
		},
		{
			name:     "flat segment rejects",
			smoothed: seriesOf(3, 3, 3, 3),
			coarse:   Interval{0, 3},
			want:     Interval{0, 3},
		},
		{
			name:     "ties take the earliest frame",
			smoothed: seriesOf(0, 5, 5, -5, -5, 0),
			coarse:   Interval{0, 5},
			want:     Interval{1, 3},
			accepted: true,
		},
		{
			name:     "undefined samples are skipped",
			smoothed: seriesOf(nan, nan, 4, nan, -4, nan),
			coarse:   Interval{0, 5},
			want:     Interval{2, 4},
			accepted: true,
		},
		{
			name:     "no defined samples falls back to the bounds",
			smoothed: seriesOf(nan, nan, nan, nan),
			coarse:   Interval{1, 3},
			want:     Interval{1, 3},
			accepted: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := RefineInterval(tt.smoothed, tt.coarse)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.accepted, ok)
		})
	}
}

func TestRefine_FallbackIsIdentity(t *testing.T) {
	coarse := []Interval{{2, 9}, {12, 20}, {30, 31}}
	inverted := func(iv Interval) (Interval, bool) {
		return Interval{Start: iv.End, End: iv.Start}, true
	}
	rejecting := func(iv Interval) (Interval, bool) {
		return Interval{Start: 0, End: 100}, false
	}

	for name, fn := range map[string]RefineFunc{"inverted": inverted, "rejecting": rejecting} {
		t.Run(name, func(t *testing.T) {
			got, accepted := Refine(coarse, fn)
			if diff := cmp.Diff(coarse, got); diff != "" {
				t.Errorf("fallback changed intervals (-want +got):\n%s", diff)
			}
			assert.Equal(t, []bool{false, false, false}, accepted)
		})
	}
}

func TestRefine_Velocity(t *testing.T) {
	smoothed := seriesOf(0, 4, 1, -3, 0, 0, -1, 2, 6, -6, 0)
	got, accepted := Refine([]Interval{{0, 4}, {5, 10}, {6, 8}}, VelocityRefiner(smoothed))

	want := []Interval{{1, 3}, {8, 9}, {6, 8}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Refine mismatch (-want +got):\n%s", diff)
	}
	// {6,8}: max at 8, min at 6, so the coarse interval stands.
	assert.Equal(t, []bool{true, true, false}, accepted)
}

func TestArgExtremum(t *testing.T) {
	s := Series{Frames: []int{10, 11, 13, 14}, Values: []float64{1, 9, -4, 9}}

	f, ok := ArgExtremum(s, 10, 14, Maxima)
	assert.True(t, ok)
	assert.Equal(t, 11, f)

	f, ok = ArgExtremum(s, 10, 14, Minima)
	assert.True(t, ok)
	assert.Equal(t, 13, f)

	_, ok = ArgExtremum(s, 15, 20, Maxima)
	assert.False(t, ok)

	assert.Equal(t, "minima", Minima.String())
	assert.Equal(t, "maxima", Maxima.String())
}
