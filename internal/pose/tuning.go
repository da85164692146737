package pose

import (
	"github.com/repform-data/form.report/internal/config"
)

// EngineConfigFromTuning builds the full pipeline configuration from a
// loaded TuningConfig. Use this in binaries where the TuningConfig is
// already loaded; tests can pair it with config.MustLoadDefaultConfig.
func EngineConfigFromTuning(cfg *config.TuningConfig) EngineConfig {
	return EngineConfig{
		Smoother:        SmootherConfigFromTuning(cfg),
		Classifier:      ClassifierConfigFromTuning(cfg),
		Form:            FormConfigFromTuning(cfg),
		HistoryCapacity: cfg.GetPoseHistoryCapacity(),
	}
}

// SmootherConfigFromTuning builds a SmootherConfig from a loaded TuningConfig.
func SmootherConfigFromTuning(cfg *config.TuningConfig) SmootherConfig {
	return SmootherConfig{
		Alpha:                  cfg.GetSmoothingFactor(),
		UseConfidenceWeighting: cfg.GetUseConfidenceWeighting(),
		MinConfidence:          cfg.GetMinConfidence(),
	}
}

// ClassifierConfigFromTuning builds a ClassifierConfig from a loaded TuningConfig.
func ClassifierConfigFromTuning(cfg *config.TuningConfig) ClassifierConfig {
	return ClassifierConfig{
		MinConfidence:            cfg.GetMinConfidence(),
		RackHeightThreshold:      cfg.GetRackHeightThreshold(),
		DipDepthThresholdDeg:     cfg.GetDipDepthThresholdDeg(),
		LockoutAngleThresholdDeg: cfg.GetLockoutAngleThresholdDeg(),
		LockoutHeightThreshold:   cfg.GetLockoutHeightThreshold(),
		MinRepDuration:           cfg.GetMinRepDuration(),
	}
}

// FormConfigFromTuning builds a FormConfig from a loaded TuningConfig.
func FormConfigFromTuning(cfg *config.TuningConfig) FormConfig {
	return FormConfig{
		MinConfidence:            cfg.GetMinConfidence(),
		LockoutAngleThresholdDeg: cfg.GetLockoutAngleThresholdDeg(),
		LockoutHeightThreshold:   cfg.GetLockoutHeightThreshold(),
	}
}
