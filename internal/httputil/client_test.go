package httputil

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
)

func TestNewStandardClient(t *testing.T) {
	if NewStandardClient(nil) != http.DefaultClient {
		t.Error("nil should select http.DefaultClient")
	}
	custom := &http.Client{}
	if NewStandardClient(custom) != custom {
		t.Error("custom client should be returned as is")
	}
}

func TestMockHTTPClient(t *testing.T) {
	m := NewMockHTTPClient().
		AddResponse(http.StatusCreated, `{"ok":true}`).
		AddErrorResponse(errors.New("connection refused"))

	req, _ := http.NewRequest(http.MethodPost, "http://kick.local/api/analyze", strings.NewReader("frame\n"))
	resp, err := m.Do(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusCreated || string(body) != `{"ok":true}` {
		t.Errorf("first response = %d %s", resp.StatusCode, body)
	}
	if m.Bodies[0] != "frame\n" {
		t.Errorf("recorded body = %q", m.Bodies[0])
	}

	req, _ = http.NewRequest(http.MethodGet, "http://kick.local/api/runs", nil)
	if _, err := m.Do(req); err == nil || err.Error() != "connection refused" {
		t.Errorf("second response error = %v", err)
	}

	resp, err = m.Do(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Errorf("exhausted queue = %v %v", resp, err)
	}
	if m.RequestCount() != 3 {
		t.Errorf("RequestCount() = %d, want 3", m.RequestCount())
	}
}
