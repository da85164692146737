package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig represents the root configuration for tuning parameters.
// Pointer fields distinguish "not set" from an explicit zero, so partial
// config files are safe: omitted fields fall back to the Get* defaults.
type TuningConfig struct {
	// Smoothing params
	SmoothingFactor        *float64 `json:"smoothing_factor,omitempty"`
	UseConfidenceWeighting *bool    `json:"use_confidence_weighting,omitempty"`
	PoseHistoryCapacity    *int     `json:"pose_history_capacity,omitempty"`

	// Classification params
	MinConfidence            *float64 `json:"min_confidence,omitempty"`
	RackHeightThreshold      *float64 `json:"rack_height_threshold,omitempty"`
	DipDepthThresholdDeg     *float64 `json:"dip_depth_threshold_deg,omitempty"`
	LockoutAngleThresholdDeg *float64 `json:"lockout_angle_threshold_deg,omitempty"`
	LockoutHeightThreshold   *float64 `json:"lockout_height_threshold,omitempty"`
	MinRepDuration           *string  `json:"min_rep_duration,omitempty"` // duration string like "500ms"
}

// EmptyTuningConfig returns a TuningConfig with all fields unset.
// Use LoadTuningConfig to load actual values from a file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file. The file is
// validated to have a .json extension and to be under the max file size.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
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

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from
// DefaultConfigPath, searching the current directory and common parents.
// Panics if the file cannot be loaded; intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // from deeper packages
		"../../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	unitFields := map[string]*float64{
		"smoothing_factor":         c.SmoothingFactor,
		"min_confidence":           c.MinConfidence,
		"rack_height_threshold":    c.RackHeightThreshold,
		"lockout_height_threshold": c.LockoutHeightThreshold,
	}
	for name, v := range unitFields {
		if v != nil && (*v < 0 || *v > 1) {
			return fmt.Errorf("%s must be between 0 and 1, got %f", name, *v)
		}
	}

	if c.PoseHistoryCapacity != nil && *c.PoseHistoryCapacity < 1 {
		return fmt.Errorf("pose_history_capacity must be at least 1, got %d", *c.PoseHistoryCapacity)
	}

	if c.DipDepthThresholdDeg != nil && *c.DipDepthThresholdDeg <= 0 {
		return fmt.Errorf("dip_depth_threshold_deg must be positive, got %f", *c.DipDepthThresholdDeg)
	}

	if c.LockoutAngleThresholdDeg != nil {
		if *c.LockoutAngleThresholdDeg <= 0 || *c.LockoutAngleThresholdDeg > 180 {
			return fmt.Errorf("lockout_angle_threshold_deg must be in (0, 180], got %f", *c.LockoutAngleThresholdDeg)
		}
	}

	if c.MinRepDuration != nil && *c.MinRepDuration != "" {
		if _, err := time.ParseDuration(*c.MinRepDuration); err != nil {
			return fmt.Errorf("invalid min_rep_duration '%s': %w", *c.MinRepDuration, err)
		}
	}

	return nil
}

// clamp01 clamps fractional values to [0,1] on read. Validate rejects
// out-of-range files, but values injected programmatically are clamped
// rather than propagated.
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// GetSmoothingFactor returns the smoothing_factor value or the default.
func (c *TuningConfig) GetSmoothingFactor() float64 {
	if c.SmoothingFactor == nil {
		return 0.5
	}
	return clamp01(*c.SmoothingFactor)
}

// GetUseConfidenceWeighting returns the use_confidence_weighting value or the default.
func (c *TuningConfig) GetUseConfidenceWeighting() bool {
	if c.UseConfidenceWeighting == nil {
		return true
	}
	return *c.UseConfidenceWeighting
}

// GetPoseHistoryCapacity returns the pose_history_capacity value or the default.
func (c *TuningConfig) GetPoseHistoryCapacity() int {
	if c.PoseHistoryCapacity == nil || *c.PoseHistoryCapacity < 1 {
		return 5
	}
	return *c.PoseHistoryCapacity
}

// GetMinConfidence returns the min_confidence value or the default.
func (c *TuningConfig) GetMinConfidence() float64 {
	if c.MinConfidence == nil {
		return 0.3
	}
	return clamp01(*c.MinConfidence)
}

// GetRackHeightThreshold returns the rack_height_threshold value or the default.
func (c *TuningConfig) GetRackHeightThreshold() float64 {
	if c.RackHeightThreshold == nil {
		return 0.25
	}
	return clamp01(*c.RackHeightThreshold)
}

// GetDipDepthThresholdDeg returns the dip_depth_threshold_deg value or the default.
func (c *TuningConfig) GetDipDepthThresholdDeg() float64 {
	if c.DipDepthThresholdDeg == nil || *c.DipDepthThresholdDeg <= 0 {
		return 5.0
	}
	return *c.DipDepthThresholdDeg
}

// GetLockoutAngleThresholdDeg returns the lockout_angle_threshold_deg value or the default.
func (c *TuningConfig) GetLockoutAngleThresholdDeg() float64 {
	if c.LockoutAngleThresholdDeg == nil {
		return 160.0
	}
	return *c.LockoutAngleThresholdDeg
}

// GetLockoutHeightThreshold returns the lockout_height_threshold value or the default.
func (c *TuningConfig) GetLockoutHeightThreshold() float64 {
	if c.LockoutHeightThreshold == nil {
		return 0.5
	}
	return clamp01(*c.LockoutHeightThreshold)
}

// GetMinRepDuration parses and returns the min_rep_duration as a time.Duration.
func (c *TuningConfig) GetMinRepDuration() time.Duration {
	if c.MinRepDuration == nil || *c.MinRepDuration == "" {
		return 500 * time.Millisecond
	}
	d, err := time.ParseDuration(*c.MinRepDuration)
	if err != nil || d <= 0 {
		return 500 * time.Millisecond
	}
	return d
}
