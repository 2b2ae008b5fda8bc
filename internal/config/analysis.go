package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/banshee-data/kick.report/internal/kick"
	"github.com/banshee-data/kick.report/internal/landmarks"
)

// DefaultConfigPath is the path to the canonical analysis defaults file.
const DefaultConfigPath = "config/analysis.defaults.json"

// DefaultHistorySize is the number of kicks shown by the stream history panel.
const DefaultHistorySize = 10

// AnalysisConfig holds the tunable parameters of a kick analysis. Every
// field is optional; the Get* methods fall back to the built-in defaults
// so partial files are safe. The same JSON is stored with each analysis
// run.
type AnalysisConfig struct {
	// Input table layout
	FrameColumn *string `json:"frame_column,omitempty"`
	XPrefix     *string `json:"x_prefix,omitempty"`
	YPrefix     *string `json:"y_prefix,omitempty"`

	// Joint ids
	AnkleJoint     *int `json:"ankle_joint,omitempty"`
	HipJoint       *int `json:"hip_joint,omitempty"`
	RightKneeJoint *int `json:"right_knee_joint,omitempty"`
	LeftKneeJoint  *int `json:"left_knee_joint,omitempty"`

	// Kinematics and peak picking
	SmoothingWindow *int     `json:"smoothing_window,omitempty"`
	PeakHeight      *float64 `json:"peak_height,omitempty"`
	PeakDistance    *int     `json:"peak_distance,omitempty"` // frames

	// Streaming
	HistorySize *int `json:"history_size,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyAnalysisConfig returns an AnalysisConfig with all fields unset.
func EmptyAnalysisConfig() *AnalysisConfig {
	return &AnalysisConfig{}
}

// DefaultAnalysisConfig returns a config with every field set to its default.
func DefaultAnalysisConfig() *AnalysisConfig {
	cols := landmarks.DefaultColumns()
	joints := landmarks.DefaultJointMap()
	return &AnalysisConfig{
		FrameColumn:     ptrString(cols.Frame),
		XPrefix:         ptrString(cols.XPrefix),
		YPrefix:         ptrString(cols.YPrefix),
		AnkleJoint:      ptrInt(joints.Ankle),
		HipJoint:        ptrInt(joints.Hip),
		RightKneeJoint:  ptrInt(joints.RightKnee),
		LeftKneeJoint:   ptrInt(joints.LeftKnee),
		SmoothingWindow: ptrInt(kick.DefaultSmoothingWindow),
		PeakHeight:      ptrFloat64(kick.DefaultPeakHeight),
		PeakDistance:    ptrInt(kick.DefaultPeakDistance),
		HistorySize:     ptrInt(DefaultHistorySize),
	}
}

// LoadAnalysisConfig loads an AnalysisConfig from a JSON file.
// The file must have a .json extension and be under 1MB.
func LoadAnalysisConfig(path string) (*AnalysisConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseAnalysisConfig(data)
}

// ParseAnalysisConfig decodes and validates a JSON config document.
func ParseAnalysisConfig(data []byte) (*AnalysisConfig, error) {
	cfg := EmptyAnalysisConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical defaults from DefaultConfigPath,
// searching the current directory and its parents. Panics if the file
// cannot be loaded; intended for test setup.
func MustLoadDefaultConfig() *AnalysisConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadAnalysisConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are usable.
func (c *AnalysisConfig) Validate() error {
	if c.SmoothingWindow != nil {
		if w := *c.SmoothingWindow; w < 1 || w%2 == 0 {
			return fmt.Errorf("smoothing_window must be a positive odd number, got %d", w)
		}
	}
	if c.PeakHeight != nil && *c.PeakHeight < 0 {
		return fmt.Errorf("peak_height must be non-negative, got %f", *c.PeakHeight)
	}
	if c.PeakDistance != nil && *c.PeakDistance < 1 {
		return fmt.Errorf("peak_distance must be at least 1, got %d", *c.PeakDistance)
	}
	if c.HistorySize != nil && *c.HistorySize < 0 {
		return fmt.Errorf("history_size must be non-negative, got %d", *c.HistorySize)
	}
	if c.FrameColumn != nil && *c.FrameColumn == "" {
		return fmt.Errorf("frame_column must not be empty")
	}
	if err := c.Joints().Validate(); err != nil {
		return err
	}
	return nil
}

// Columns returns the input table layout.
func (c *AnalysisConfig) Columns() landmarks.Columns {
	cols := landmarks.DefaultColumns()
	if c.FrameColumn != nil {
		cols.Frame = *c.FrameColumn
	}
	if c.XPrefix != nil {
		cols.XPrefix = *c.XPrefix
	}
	if c.YPrefix != nil {
		cols.YPrefix = *c.YPrefix
	}
	return cols
}

// Joints returns the joint ids used for classification.
func (c *AnalysisConfig) Joints() landmarks.JointMap {
	j := landmarks.DefaultJointMap()
	if c.AnkleJoint != nil {
		j.Ankle = *c.AnkleJoint
	}
	if c.HipJoint != nil {
		j.Hip = *c.HipJoint
	}
	if c.RightKneeJoint != nil {
		j.RightKnee = *c.RightKneeJoint
	}
	if c.LeftKneeJoint != nil {
		j.LeftKnee = *c.LeftKneeJoint
	}
	return j
}

// GetSmoothingWindow returns the smoothing_window value or the default.
func (c *AnalysisConfig) GetSmoothingWindow() int {
	if c.SmoothingWindow == nil {
		return kick.DefaultSmoothingWindow
	}
	return *c.SmoothingWindow
}

// GetPeakHeight returns the peak_height value or the default.
func (c *AnalysisConfig) GetPeakHeight() float64 {
	if c.PeakHeight == nil {
		return kick.DefaultPeakHeight
	}
	return *c.PeakHeight
}

// GetPeakDistance returns the peak_distance value or the default.
func (c *AnalysisConfig) GetPeakDistance() int {
	if c.PeakDistance == nil {
		return kick.DefaultPeakDistance
	}
	return *c.PeakDistance
}

// GetHistorySize returns the history_size value or the default.
func (c *AnalysisConfig) GetHistorySize() int {
	if c.HistorySize == nil {
		return DefaultHistorySize
	}
	return *c.HistorySize
}

// Options converts the config into analysis options.
func (c *AnalysisConfig) Options() kick.Options {
	opts := kick.DefaultOptions()
	opts.SmoothingWindow = c.GetSmoothingWindow()
	opts.Peaks = kick.PeakOptions{
		Height:   c.GetPeakHeight(),
		Distance: c.GetPeakDistance(),
	}
	return opts
}

// JSON returns the config encoded for storage alongside a run.
func (c *AnalysisConfig) JSON() string {
	data, err := json.Marshal(c)
	if err != nil {
		return "{}"
	}
	return string(data)
}
