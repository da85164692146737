package pose

import (
	"time"
)

// Phase represents the discrete stage of a push-press repetition.
type Phase string

const (
	// PhaseUnknown is the initial phase and the fallback whenever no
	// predicate matches.
	PhaseUnknown Phase = "unknown"
	// PhaseRack is the starting position, bar racked at the shoulders.
	PhaseRack Phase = "rack"
	// PhaseDip is the shallow knee bend that loads the drive.
	PhaseDip Phase = "dip"
	// PhaseDrive is the explosive leg extension that launches the bar.
	PhaseDrive Phase = "drive"
	// PhaseLockout is the finish, arms extended overhead.
	PhaseLockout Phase = "lockout"
)

// Internal geometric tolerances, not user-tunable. All fractions are of
// shoulder width so they hold at any camera distance.
const (
	// driveKneeDeltaDeg is the per-frame knee extension that signals a drive.
	driveKneeDeltaDeg = 2.0
	// driveKneeAngleMinDeg is the knee angle above which legs count as extending.
	driveKneeAngleMinDeg = 160.0
	// dipKneeAngleMaxDeg is the knee angle below which legs count as bent.
	dipKneeAngleMaxDeg = 170.0
	// rackArmAngleMaxDeg separates a racked arm from an intermediate drive arm.
	rackArmAngleMaxDeg = 100.0
	// rackHorizontalTolerance bounds wrist x-offset from the shoulder at rack.
	rackHorizontalTolerance = 0.5
	// wristAlignTolerance bounds the vertical misalignment of the two wrists
	// at lockout.
	wristAlignTolerance = 0.2
	// armVerticalTolerance bounds wrist x-deviation from the shoulder at
	// lockout (arms stacked over shoulders).
	armVerticalTolerance = 0.35
)

// ClassifierConfig holds the tunable classification thresholds.
type ClassifierConfig struct {
	MinConfidence            float64       // Minimum landmark confidence for any decision
	RackHeightThreshold      float64       // Wrist-to-shoulder height tolerance at rack (fraction of shoulder width)
	DipDepthThresholdDeg     float64       // Per-frame knee angle decrease that signals a dip (degrees)
	LockoutAngleThresholdDeg float64       // Arm angle above which arms count as locked out (degrees)
	LockoutHeightThreshold   float64       // Wrist height above shoulder at lockout (fraction of shoulder width)
	MinRepDuration           time.Duration // Debounce window between counted reps
}

// DefaultClassifierConfig returns the classifier defaults.
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		MinConfidence:            0.3,
		RackHeightThreshold:      0.25,
		DipDepthThresholdDeg:     5.0,
		LockoutAngleThresholdDeg: 160.0,
		LockoutHeightThreshold:   0.5,
		MinRepDuration:           500 * time.Millisecond,
	}
}

// ClassifierState is the state machine's working memory. It is a plain value
// threaded explicitly through every Classify call, never global, so
// independent sessions and deterministic replay come for free. Create one per
// tracking session with NewClassifierState and reset only at session
// boundaries.
type ClassifierState struct {
	CurrentPhase  Phase
	PreviousPhase Phase

	// RepCount is monotonically non-decreasing.
	RepCount int

	// LastRepAt is the timestamp of the last counted repetition; the zero
	// value means no rep has been counted yet.
	LastRepAt time.Time
	// LastTransitionAt is the timestamp of the last phase change.
	LastTransitionAt time.Time

	// KneeAngleDeg caches the previous frame's knee angle for the
	// delta-based dip/drive predicates. This one-frame cache is separate
	// from the smoothing history buffer.
	KneeAngleDeg float64
	HasKneeAngle bool

	// IsValidRep is true only when the last transition followed the
	// canonical order (rack->dip, dip->drive, drive->lockout) or a rep was
	// just counted. Advisory: drives UI feedback, never gates counting.
	IsValidRep bool
}

// NewClassifierState returns the initial state for a fresh session.
func NewClassifierState() ClassifierState {
	return ClassifierState{
		CurrentPhase:  PhaseUnknown,
		PreviousPhase: PhaseUnknown,
	}
}

// Classifier turns smoothed pose geometry into a discrete exercise phase and
// a debounced repetition count.
type Classifier struct {
	cfg ClassifierConfig
}

// NewClassifier creates a classifier. Fractional thresholds are clamped to
// [0,1]; this stage never fails.
func NewClassifier(cfg ClassifierConfig) *Classifier {
	cfg.MinConfidence = clampUnit(cfg.MinConfidence)
	cfg.RackHeightThreshold = clampUnit(cfg.RackHeightThreshold)
	cfg.LockoutHeightThreshold = clampUnit(cfg.LockoutHeightThreshold)
	if cfg.MinRepDuration <= 0 {
		cfg.MinRepDuration = 500 * time.Millisecond
	}
	return &Classifier{cfg: cfg}
}

// frameMeasurements holds the per-frame geometry the predicates share.
type frameMeasurements struct {
	shoulderWidth float64
	leftArmDeg    float64 // shoulder-elbow-wrist
	rightArmDeg   float64
	kneeDeg       float64 // mean of left and right hip-knee-ankle

	leftShoulder, rightShoulder Landmark
	leftWrist, rightWrist       Landmark
}

// Classify evaluates one smoothed pose against the phase predicates and
// returns the updated state. If any required landmark lacks confidence the
// state is returned untouched: partial occlusion must never fabricate a
// transition, so the machine freezes rather than reverting to unknown.
func (c *Classifier) Classify(p *Pose, now time.Time, state ClassifierState) ClassifierState {
	if p == nil || !p.HasAll(RequiredForClassification, c.cfg.MinConfidence) {
		return state
	}
	m, ok := c.measure(p)
	if !ok {
		return state
	}

	newPhase := c.phaseFor(m, state)

	next := state
	next.KneeAngleDeg = m.kneeDeg
	next.HasKneeAngle = true
	next.IsValidRep = false

	if newPhase == state.CurrentPhase {
		return next
	}

	next.PreviousPhase = state.CurrentPhase
	next.CurrentPhase = newPhase
	next.LastTransitionAt = now

	counted := false
	if newPhase == PhaseLockout && now.Sub(state.LastRepAt) > c.cfg.MinRepDuration {
		next.RepCount++
		next.LastRepAt = now
		counted = true
	}
	next.IsValidRep = counted || canonicalOrder(state.CurrentPhase, newPhase)
	return next
}

// canonicalOrder reports whether from->to follows the textbook rep sequence.
func canonicalOrder(from, to Phase) bool {
	switch {
	case from == PhaseRack && to == PhaseDip:
		return true
	case from == PhaseDip && to == PhaseDrive:
		return true
	case from == PhaseDrive && to == PhaseLockout:
		return true
	}
	return false
}

// measure computes the shared angle/width primitives. Returns ok=false only
// when the shoulder span is degenerate (which would poison every
// width-normalized tolerance).
func (c *Classifier) measure(p *Pose) (frameMeasurements, bool) {
	var m frameMeasurements
	var ok bool
	if m.shoulderWidth, ok = p.ShoulderWidth(); !ok {
		return m, false
	}

	m.leftShoulder, _ = p.Landmark(LeftShoulder)
	m.rightShoulder, _ = p.Landmark(RightShoulder)
	m.leftWrist, _ = p.Landmark(LeftWrist)
	m.rightWrist, _ = p.Landmark(RightWrist)

	leftElbow, _ := p.Landmark(LeftElbow)
	rightElbow, _ := p.Landmark(RightElbow)
	m.leftArmDeg = AngleDeg(m.leftShoulder, leftElbow, m.leftWrist)
	m.rightArmDeg = AngleDeg(m.rightShoulder, rightElbow, m.rightWrist)

	leftHip, _ := p.Landmark(LeftHip)
	rightHip, _ := p.Landmark(RightHip)
	leftKnee, _ := p.Landmark(LeftKnee)
	rightKnee, _ := p.Landmark(RightKnee)
	leftAnkle, _ := p.Landmark(LeftAnkle)
	rightAnkle, _ := p.Landmark(RightAnkle)
	m.kneeDeg = (AngleDeg(leftHip, leftKnee, leftAnkle) + AngleDeg(rightHip, rightKnee, rightAnkle)) / 2

	return m, true
}

// phaseFor evaluates the predicates in strict priority order: lockout is the
// rarest and most decisive signal, so it wins over drive/dip/rack when a pose
// is geometrically ambiguous. The order is load-bearing; do not reorder
// without validating thresholds against recorded sessions.
func (c *Classifier) phaseFor(m frameMeasurements, state ClassifierState) Phase {
	switch {
	case c.isLockout(m):
		return PhaseLockout
	case c.isDrive(m, state):
		return PhaseDrive
	case c.isDip(m, state):
		return PhaseDip
	case c.isRack(m):
		return PhaseRack
	}
	return PhaseUnknown
}

// isLockout: both arms past the lockout angle, both wrists well above the
// shoulders, wrists level with each other, and arms stacked near-vertically.
func (c *Classifier) isLockout(m frameMeasurements) bool {
	if m.leftArmDeg <= c.cfg.LockoutAngleThresholdDeg || m.rightArmDeg <= c.cfg.LockoutAngleThresholdDeg {
		return false
	}
	minHeight := c.cfg.LockoutHeightThreshold * m.shoulderWidth
	if HeightAbove(m.leftWrist, m.leftShoulder) <= minHeight ||
		HeightAbove(m.rightWrist, m.rightShoulder) <= minHeight {
		return false
	}
	if absDiff(m.leftWrist.Y, m.rightWrist.Y) > wristAlignTolerance*m.shoulderWidth {
		return false
	}
	maxDeviation := armVerticalTolerance * m.shoulderWidth
	return HorizontalDistance(m.leftWrist, m.leftShoulder) <= maxDeviation &&
		HorizontalDistance(m.rightWrist, m.rightShoulder) <= maxDeviation
}

// isDrive: knees extending fast through near-straight while the arms are in
// the intermediate range (no longer racked, not yet locked out).
func (c *Classifier) isDrive(m frameMeasurements, state ClassifierState) bool {
	if !state.HasKneeAngle {
		return false
	}
	if m.kneeDeg-state.KneeAngleDeg <= driveKneeDeltaDeg || m.kneeDeg <= driveKneeAngleMinDeg {
		return false
	}
	intermediate := func(armDeg float64) bool {
		return armDeg > rackArmAngleMaxDeg && armDeg < c.cfg.LockoutAngleThresholdDeg
	}
	return intermediate(m.leftArmDeg) && intermediate(m.rightArmDeg)
}

// isDip: knees flexing faster than the depth threshold and visibly bent.
func (c *Classifier) isDip(m frameMeasurements, state ClassifierState) bool {
	if !state.HasKneeAngle {
		return false
	}
	return state.KneeAngleDeg-m.kneeDeg > c.cfg.DipDepthThresholdDeg && m.kneeDeg < dipKneeAngleMaxDeg
}

// isRack: both wrists at shoulder height and close to the shoulders.
func (c *Classifier) isRack(m frameMeasurements) bool {
	maxHeight := c.cfg.RackHeightThreshold * m.shoulderWidth
	maxOffset := rackHorizontalTolerance * m.shoulderWidth
	return absDiff(m.leftWrist.Y, m.leftShoulder.Y) <= maxHeight &&
		absDiff(m.rightWrist.Y, m.rightShoulder.Y) <= maxHeight &&
		HorizontalDistance(m.leftWrist, m.leftShoulder) <= maxOffset &&
		HorizontalDistance(m.rightWrist, m.rightShoulder) <= maxOffset
}

func absDiff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}
