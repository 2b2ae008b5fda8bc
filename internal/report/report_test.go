package report

import (
	"bytes"
	"encoding/csv"
	"image/png"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/kick.report/internal/kick"
	"github.com/banshee-data/kick.report/internal/landmarks"
	"github.com/banshee-data/kick.report/internal/testutil"
)

func singleKick(t *testing.T) *kick.Result {
	t.Helper()
	table := testutil.PoseTable(
		testutil.RaisedRange(40, 10, 19),
		testutil.KickAngleProfile(40, 8, 14, 30, 90),
	)
	r := kick.AnalyzeTable(table, landmarks.DefaultJointMap(), kick.DefaultOptions())
	require.Len(t, r.Kicks, 1)
	return r
}

func TestWritePNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePNG(&buf, singleKick(t), "clip.mp4"))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	b := img.Bounds()
	assert.Greater(t, b.Dx(), 0)
	assert.Greater(t, b.Dy(), b.Dx()/2, "four stacked panels should be taller than half the width")
}

func TestSavePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kicks.png")
	require.NoError(t, SavePNG(path, singleKick(t), ""))
	assert.FileExists(t, path)

	assert.Error(t, SavePNG(filepath.Join(t.TempDir(), "missing", "x.png"), singleKick(t), ""))
}

func TestRender_Empty(t *testing.T) {
	empty := kick.Analyze(nil, -1, kick.DefaultOptions())
	var buf bytes.Buffer
	assert.ErrorIs(t, WritePNG(&buf, empty, ""), ErrNoFrames)
	assert.ErrorIs(t, RenderHTML(&buf, empty, ChartOptions{}), ErrNoFrames)
}

func TestRenderHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, singleKick(t), ChartOptions{Title: "clip.mp4"}))

	html := buf.String()
	for _, want := range []string{"Hip Angle", "Hip Velocity", "Hip Acceleration", "Hip Jerk", "Hip Angle per Kick", "peaks (+)", "clip.mp4"} {
		assert.Contains(t, html, want)
	}
	assert.Contains(t, html, `"-"`, "undefined samples are emitted as echarts gaps")
}

func TestMasks(t *testing.T) {
	s := kick.Series{Frames: []int{0, 1, 2, 3, 4, 5}, Values: []float64{1, 2, 3, 4, 5, 6}}

	m := maskToKicks(s, []kick.Record{{Interval: kick.Interval{Start: 1, End: 2}}, {Interval: kick.Interval{Start: 4, End: 5}}})
	got := lineData(m)
	assert.Equal(t, []opt{"-", 2.0, 3.0, "-", 5.0, 6.0}, values(got))

	m = maskToFrames(s, []int{3, 9})
	assert.Equal(t, []opt{"-", "-", "-", 4.0, "-", "-"}, values(lineData(m)))
}

func TestWriteDiagnosticsCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDiagnosticsCSV(&buf, singleKick(t)))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 41)
	assert.Equal(t, diagnosticsHeader, rows[0])

	col := map[string]int{}
	for i, name := range rows[0] {
		col[name] = i
	}
	frame0 := rows[1]
	assert.Equal(t, "0", frame0[col["frame"]])
	assert.Equal(t, "", frame0[col["velocity"]])
	assert.Equal(t, "0", frame0[col["kick"]])

	frame12 := rows[13]
	assert.Equal(t, "12", frame12[col["frame"]])
	assert.Equal(t, "true", frame12[col["raised"]])
	assert.Equal(t, "1", frame12[col["kick"]])
	assert.Equal(t, "true", frame12[col["positive_peak"]])
	assert.Equal(t, "true", rows[20][col["negative_peak"]])
	assert.Equal(t, "0", rows[21][col["kick"]], "frame 20 is past the refined end")
}

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, singleKick(t)))

	out := buf.String()
	assert.Contains(t, out, "Kicks detected: 1 (refinement rejected: 0)")
	assert.Contains(t, out, "Rising edges: 1 (1 closed, 0 unclosed on the final frame)")
	assert.NotContains(t, out, "Unclosed rise")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	last := lines[len(lines)-1]
	assert.Contains(t, last, "[10, 20]")
	assert.Contains(t, last, "[12, 19]")
	assert.Contains(t, last, "46.9°")

	buf.Reset()
	r := kick.Analyze(nil, -1, kick.DefaultOptions())
	require.NoError(t, WriteSummary(&buf, r))
	assert.Contains(t, buf.String(), "Kicks detected: 0")
	assert.NotContains(t, buf.String(), "ankle edges")
}

func TestWriteSummary_RiseOnFinalFrame(t *testing.T) {
	states := []kick.FrameState{
		{Frame: 0, HipAngle: 30},
		{Frame: 1, Raised: true, HipAngle: 30},
		{Frame: 2, HipAngle: 30},
		{Frame: 3, Raised: true, HipAngle: 30},
	}
	r := kick.Analyze(states, 3, kick.DefaultOptions())
	require.Equal(t, []int{3}, r.Dangling)

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, r))
	out := buf.String()
	assert.Contains(t, out, "Kicks detected: 1")
	assert.Contains(t, out, "Rising edges: 2 (1 closed, 1 unclosed on the final frame)")
	assert.Contains(t, out, "Unclosed rise on final frame: [3]")

	// The total agrees with the streaming counter over the same frames.
	assert.Equal(t, 2, kick.Replay(states).Count)
}

type opt = any

func values(data []opts.LineData) []opt {
	out := make([]opt, len(data))
	for i, d := range data {
		out[i] = d.Value
	}
	return out
}
