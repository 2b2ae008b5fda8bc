package testutil

import (
	"bytes"
	"math"
	"net/http"
	"testing"

	"github.com/banshee-data/kick.report/internal/geometry"
	"github.com/banshee-data/kick.report/internal/landmarks"
)

func TestAssertHelpers_Pass(t *testing.T) {
	t.Parallel()

	AssertStatusCode(t, http.StatusOK, http.StatusOK)
	AssertNoError(t, nil)
	AssertError(t, http.ErrBodyNotAllowed)
}

func TestPoseSample(t *testing.T) {
	t.Parallel()

	joints := landmarks.DefaultJointMap()
	for _, want := range []float64{10, 45, 90, 135, 170} {
		s := PoseSample(3, true, want)
		hip, _ := s.Point(joints.Hip)
		rk, _ := s.Point(joints.RightKnee)
		lk, _ := s.Point(joints.LeftKnee)
		ankle, _ := s.Point(joints.Ankle)

		if got := geometry.AngleAtVertex(rk, hip, lk); math.Abs(got-want) > 1e-9 {
			t.Errorf("hip angle = %f, want %f", got, want)
		}
		if ankle.Y >= hip.Y {
			t.Errorf("raised ankle y=%f should be above hip y=%f", ankle.Y, hip.Y)
		}
	}

	s := PoseSample(0, false, 30)
	ankle, _ := s.Point(joints.Ankle)
	hip, _ := s.Point(joints.Hip)
	if ankle.Y <= hip.Y {
		t.Errorf("lowered ankle y=%f should be below hip y=%f", ankle.Y, hip.Y)
	}
}

func TestKickAngleProfile(t *testing.T) {
	t.Parallel()

	p := KickAngleProfile(40, 8, 14, 30, 90)
	if p[0] != 30 || p[8] != 30 || p[39] != 30 {
		t.Errorf("profile should rest at base outside the kick: %v", p)
	}
	if math.Abs(p[15]-120) > 1e-9 {
		t.Errorf("profile peak = %f, want 120", p[15])
	}
}

func TestKickCSV(t *testing.T) {
	t.Parallel()

	data := KickCSV(t)
	table, err := landmarks.ReadCSV(bytes.NewReader(data), landmarks.DefaultColumns(), landmarks.DefaultJointMap())
	AssertNoError(t, err)
	if table.Len() != 40 {
		t.Errorf("table has %d frames, want 40", table.Len())
	}
}
