package monitoring

import (
	"fmt"
	"testing"
)

func capture(t *testing.T) *[]string {
	t.Helper()
	original := Logf
	t.Cleanup(func() { Logf = original })

	var lines []string
	SetLogger(func(format string, v ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, v...))
	})
	return &lines
}

func TestSetLogger(t *testing.T) {
	lines := capture(t)
	Logf("kicks=%d", 3)
	if len(*lines) != 1 || (*lines)[0] != "kicks=3" {
		t.Errorf("lines = %v", *lines)
	}

	SetLogger(nil)
	Logf("dropped")
	if len(*lines) != 1 {
		t.Errorf("nil logger should mute output, got %v", *lines)
	}
}

func TestPrefixed(t *testing.T) {
	logf := Prefixed("migrate")
	lines := capture(t)

	logf("applied %d", 2)
	if len(*lines) != 1 || (*lines)[0] != "[migrate] applied 2" {
		t.Errorf("lines = %v", *lines)
	}
}
