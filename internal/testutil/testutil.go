// Package testutil provides shared test utilities and fixtures.
//
// Besides the HTTP assertion helpers it builds synthetic pose tables: a
// hip at a fixed position, knees spread symmetrically below it to a chosen
// hip angle, and an ankle placed above or below the hip.
package testutil

import (
	"bytes"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/banshee-data/kick.report/internal/geometry"
	"github.com/banshee-data/kick.report/internal/landmarks"
)

// AssertStatusCode checks that the response status code matches expected.
func AssertStatusCode(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status code = %d, want %d", got, want)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// NewTestRequest creates a test HTTP request with an optional body.
func NewTestRequest(method, path string, body []byte) *http.Request {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	return httptest.NewRequest(method, path, r)
}

// NewTestRecorder creates a test response recorder.
func NewTestRecorder() *httptest.ResponseRecorder {
	return httptest.NewRecorder()
}

// Fixture geometry in normalised image coordinates.
var (
	hipPosition  = geometry.Point{X: 0.5, Y: 0.5}
	raisedAnkle  = geometry.Point{X: 0.8, Y: 0.35}
	loweredAnkle = geometry.Point{X: 0.55, Y: 0.9}
)

const thighLength = 0.2

// PoseSample builds a frame for the default joint map whose hip angle is
// hipAngle degrees and whose ankle is above the hip when raised is set.
func PoseSample(frame int, raised bool, hipAngle float64) landmarks.Sample {
	half := hipAngle * math.Pi / 360
	joints := landmarks.DefaultJointMap()

	ankle := loweredAnkle
	if raised {
		ankle = raisedAnkle
	}
	return landmarks.Sample{
		Frame: frame,
		Points: map[int]geometry.Point{
			joints.Hip:       hipPosition,
			joints.Ankle:     ankle,
			joints.RightKnee: {X: hipPosition.X + thighLength*math.Sin(half), Y: hipPosition.Y + thighLength*math.Cos(half)},
			joints.LeftKnee:  {X: hipPosition.X - thighLength*math.Sin(half), Y: hipPosition.Y + thighLength*math.Cos(half)},
		},
	}
}

// PoseTable builds a contiguous table starting at frame 0. angles may be
// nil, in which case every frame uses a 30 degree hip angle.
func PoseTable(raised []bool, angles []float64) *landmarks.Table {
	t := &landmarks.Table{Samples: make([]landmarks.Sample, 0, len(raised))}
	for i, r := range raised {
		angle := 30.0
		if angles != nil {
			angle = angles[i]
		}
		t.Samples = append(t.Samples, PoseSample(i, r, angle))
	}
	return t
}

// KickAngleProfile returns n hip angles resting at base that open to
// base+amp and close again over frames [start, start+length], following a
// squared sine.
func KickAngleProfile(n, start, length int, base, amp float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = base
		if i >= start && i <= start+length {
			s := math.Sin(math.Pi * float64(i-start) / float64(length))
			out[i] = base + amp*s*s
		}
	}
	return out
}

// RaisedRange returns n flags that are set on frames [from, to].
func RaisedRange(n, from, to int) []bool {
	out := make([]bool, n)
	for i := from; i <= to && i < n; i++ {
		out[i] = true
	}
	return out
}

// KickCSV renders a single-kick pose table as landmark CSV.
func KickCSV(t *testing.T) []byte {
	t.Helper()
	table := PoseTable(RaisedRange(40, 10, 19), KickAngleProfile(40, 8, 14, 30, 90))
	var buf bytes.Buffer
	if err := landmarks.WriteCSV(&buf, table, landmarks.DefaultColumns()); err != nil {
		t.Fatalf("failed to render fixture csv: %v", err)
	}
	return buf.Bytes()
}
