package pose

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/repform-data/form.report/internal/config"
)

func TestEngineConfigFromEmptyTuningMatchesDefaults(t *testing.T) {
	t.Parallel()

	// An empty tuning config and the compiled-in defaults must agree, or a
	// binary run without -config behaves differently from the documented
	// defaults.
	got := EngineConfigFromTuning(config.EmptyTuningConfig())
	assert.Equal(t, DefaultEngineConfig(), got)
}

func TestEngineConfigFromDefaultsFile(t *testing.T) {
	t.Parallel()

	// The shipped defaults file is the same source of truth.
	got := EngineConfigFromTuning(config.MustLoadDefaultConfig())
	assert.Equal(t, DefaultEngineConfig(), got)
}

func TestConfigFromTuningOverrides(t *testing.T) {
	t.Parallel()

	alpha := 0.8
	capacity := 9
	lockout := 150.0
	duration := "750ms"
	cfg := &config.TuningConfig{
		SmoothingFactor:          &alpha,
		PoseHistoryCapacity:      &capacity,
		LockoutAngleThresholdDeg: &lockout,
		MinRepDuration:           &duration,
	}

	engineCfg := EngineConfigFromTuning(cfg)
	assert.InDelta(t, 0.8, engineCfg.Smoother.Alpha, 1e-9)
	assert.Equal(t, 9, engineCfg.HistoryCapacity)
	assert.InDelta(t, 150.0, engineCfg.Classifier.LockoutAngleThresholdDeg, 1e-9)
	assert.Equal(t, cfg.GetMinRepDuration(), engineCfg.Classifier.MinRepDuration)
	// The form analyzer shares the lockout geometry with the classifier.
	assert.InDelta(t, 150.0, engineCfg.Form.LockoutAngleThresholdDeg, 1e-9)
}
