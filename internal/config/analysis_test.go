package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/banshee-data/kick.report/internal/landmarks"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return path
}

func TestDefaultAnalysisConfig(t *testing.T) {
	cfg := DefaultAnalysisConfig()

	if cfg.SmoothingWindow == nil || *cfg.SmoothingWindow != 5 {
		t.Errorf("Expected SmoothingWindow 5, got %v", cfg.SmoothingWindow)
	}
	if cfg.PeakDistance == nil || *cfg.PeakDistance != 10 {
		t.Errorf("Expected PeakDistance 10, got %v", cfg.PeakDistance)
	}
	if got := cfg.Joints(); got != landmarks.DefaultJointMap() {
		t.Errorf("Joints() = %+v, want default map", got)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestEmptyConfigGetters(t *testing.T) {
	cfg := EmptyAnalysisConfig()

	if cfg.GetSmoothingWindow() != 5 {
		t.Errorf("GetSmoothingWindow() = %d, want 5", cfg.GetSmoothingWindow())
	}
	if cfg.GetPeakHeight() != 5.0 {
		t.Errorf("GetPeakHeight() = %f, want 5.0", cfg.GetPeakHeight())
	}
	if cfg.GetPeakDistance() != 10 {
		t.Errorf("GetPeakDistance() = %d, want 10", cfg.GetPeakDistance())
	}
	if cfg.GetHistorySize() != 10 {
		t.Errorf("GetHistorySize() = %d, want 10", cfg.GetHistorySize())
	}
	if cfg.Columns() != landmarks.DefaultColumns() {
		t.Errorf("Columns() = %+v, want defaults", cfg.Columns())
	}
	if cfg.JSON() != "{}" {
		t.Errorf("JSON() = %s, want {}", cfg.JSON())
	}
}

func TestLoadAnalysisConfig(t *testing.T) {
	path := writeConfig(t, "test_config.json", `{
  "frame_column": "idx",
  "ankle_joint": 27,
  "hip_joint": 23,
  "smoothing_window": 7,
  "peak_height": 2.5
}`)

	cfg, err := LoadAnalysisConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if got := cfg.Columns(); got.Frame != "idx" || got.XPrefix != "x_" {
		t.Errorf("Columns() = %+v", got)
	}
	j := cfg.Joints()
	if j.Ankle != 27 || j.Hip != 23 || j.RightKnee != 26 {
		t.Errorf("Joints() = %+v", j)
	}

	opts := cfg.Options()
	if opts.SmoothingWindow != 7 {
		t.Errorf("SmoothingWindow = %d, want 7", opts.SmoothingWindow)
	}
	if opts.Peaks.Height != 2.5 || opts.Peaks.Distance != 10 {
		t.Errorf("Peaks = %+v", opts.Peaks)
	}
}

func TestLoadAnalysisConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		body    string
		wantErr string
	}{
		{"wrong extension", "config.yaml", `{}`, ".json extension"},
		{"bad json", "config.json", `{"smoothing_window": }`, "failed to parse"},
		{"even window", "config.json", `{"smoothing_window": 4}`, "smoothing_window"},
		{"zero window", "config.json", `{"smoothing_window": 0}`, "smoothing_window"},
		{"negative height", "config.json", `{"peak_height": -1}`, "peak_height"},
		{"zero distance", "config.json", `{"peak_distance": 0}`, "peak_distance"},
		{"negative history", "config.json", `{"history_size": -2}`, "history_size"},
		{"empty frame column", "config.json", `{"frame_column": ""}`, "frame_column"},
		{"duplicate joint", "config.json", `{"ankle_joint": 24}`, "more than one joint"},
		{"negative joint", "config.json", `{"left_knee_joint": -1}`, "non-negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.file, tt.body)
			_, err := LoadAnalysisConfig(path)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}

	if _, err := LoadAnalysisConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadAnalysisConfig_TooLarge(t *testing.T) {
	body := `{"x_prefix": "` + strings.Repeat("a", 1024*1024) + `"}`
	path := writeConfig(t, "big.json", body)
	if _, err := LoadAnalysisConfig(path); err == nil || !strings.Contains(err.Error(), "too large") {
		t.Errorf("expected size error, got %v", err)
	}
}

func TestMustLoadDefaultConfig(t *testing.T) {
	cfg := MustLoadDefaultConfig()
	want := DefaultAnalysisConfig()

	if cfg.JSON() != want.JSON() {
		t.Errorf("defaults file out of sync with DefaultAnalysisConfig:\n file: %s\n code: %s", cfg.JSON(), want.JSON())
	}
}
