package pose

import (
	"sync"
	"time"
)

// EngineConfig bundles the per-stage configuration for one session.
type EngineConfig struct {
	Smoother        SmootherConfig
	Classifier      ClassifierConfig
	Form            FormConfig
	HistoryCapacity int
}

// DefaultEngineConfig returns the default pipeline configuration.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Smoother:        DefaultSmootherConfig(),
		Classifier:      DefaultClassifierConfig(),
		Form:            DefaultFormConfig(),
		HistoryCapacity: DefaultHistoryCapacity,
	}
}

// FrameResult is the full pipeline output for one frame.
type FrameResult struct {
	Smoothed   *Pose              `json:"smoothed,omitempty"`
	Phase      Phase              `json:"phase"`
	RepCount   int                `json:"rep_count"`
	IsValidRep bool               `json:"is_valid_rep"`
	Form       FormAnalysisResult `json:"form"`
	CapturedAt time.Time          `json:"captured_at"`
}

// Snapshot is the externally visible session state between frames.
type Snapshot struct {
	Phase      Phase     `json:"phase"`
	RepCount   int       `json:"rep_count"`
	IsValidRep bool      `json:"is_valid_rep"`
	LastScore  int       `json:"last_score"`
	FrameCount int       `json:"frame_count"`
	LastRepAt  time.Time `json:"last_rep_at,omitempty"`
}

// Engine drives the per-frame pipeline: smooth -> classify -> score. It owns
// the only two pieces of mutable state in the system, the smoothing history
// and the ClassifierState, and updates both atomically per frame. The mutex
// exists solely so a caller may feed frames from a detection goroutine while
// reading snapshots from another; the engine itself never spawns work.
type Engine struct {
	smoother   *Smoother
	classifier *Classifier
	analyzer   *FormAnalyzer

	mu         sync.Mutex
	history    *History
	state      ClassifierState
	frameCount int
	lastScore  int
}

// NewEngine creates an engine for one tracking session.
func NewEngine(cfg EngineConfig) *Engine {
	return &Engine{
		smoother:   NewSmoother(cfg.Smoother),
		classifier: NewClassifier(cfg.Classifier),
		analyzer:   NewFormAnalyzer(cfg.Form),
		history:    NewHistory(cfg.HistoryCapacity),
		state:      NewClassifierState(),
		lastScore:  100,
	}
}

// ProcessFrame runs one raw pose through the full pipeline at the given
// capture time. The timestamp is passed in (not read from a wall clock) so
// recorded sessions replay deterministically.
func (e *Engine) ProcessFrame(raw *Pose, now time.Time) FrameResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	smoothed := e.smoother.Smooth(raw, e.history)
	if smoothed != nil {
		e.history.Add(smoothed)
	}
	e.state = e.classifier.Classify(smoothed, now, e.state)
	form := e.analyzer.Analyze(smoothed, e.state.CurrentPhase, now)

	e.frameCount++
	e.lastScore = form.OverallScore

	return FrameResult{
		Smoothed:   smoothed,
		Phase:      e.state.CurrentPhase,
		RepCount:   e.state.RepCount,
		IsValidRep: e.state.IsValidRep,
		Form:       form,
		CapturedAt: now,
	}
}

// Snapshot returns the current session state without processing a frame.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{
		Phase:      e.state.CurrentPhase,
		RepCount:   e.state.RepCount,
		IsValidRep: e.state.IsValidRep,
		LastScore:  e.lastScore,
		FrameCount: e.frameCount,
		LastRepAt:  e.state.LastRepAt,
	}
}

// State returns a copy of the classifier state, for persistence and tests.
func (e *Engine) State() ClassifierState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Reset clears all session state: history buffer, classifier state, and
// counters. Reset is explicit; nothing resets implicitly mid-session.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.history.Clear()
	e.state = NewClassifierState()
	e.frameCount = 0
	e.lastScore = 100
}
