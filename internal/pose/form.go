package pose

import "time"

// Severity grades a form issue. Each level carries a fixed score penalty.
type Severity string

const (
	SeverityLow      Severity = "low"      // -5
	SeverityModerate Severity = "moderate" // -10
	SeverityHigh     Severity = "high"     // -20
)

// Penalty returns the score deduction for the severity.
func (s Severity) Penalty() int {
	switch s {
	case SeverityLow:
		return 5
	case SeverityModerate:
		return 10
	case SeverityHigh:
		return 20
	}
	return 0
}

// FormIssue is one failed geometric check. Issues are produced fresh each
// call and never mutated afterwards.
type FormIssue struct {
	ID       string   `json:"id"`
	Phase    Phase    `json:"phase"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	BodyPart string   `json:"body_part"`
}

// FormAnalysisResult holds the issues and aggregate score for one frame.
type FormAnalysisResult struct {
	Issues       []FormIssue `json:"issues"`
	OverallScore int         `json:"overall_score"` // [0,100]
	CapturedAt   time.Time   `json:"captured_at"`
}

// Form check thresholds. Distances are fractions of shoulder width, angles in
// degrees.
const (
	rackElbowHipMaxOffset  = 0.45 // Elbows drifting out from over the hips
	rackWristHeightMax     = 0.30 // Wrists sagging below / riding above shoulder level
	dipKneeDeepDeg         = 100.0
	dipKneeShallowDeg      = 150.0
	dipKneeSymmetryDeg     = 15.0
	dipTorsoLeanMaxDeg     = 15.0
	driveArmSymmetryDeg    = 20.0
	driveLegExtensionDeg   = 165.0
	lockoutWristAlignLimit = 0.20
	lockoutArmDriftLimit   = 0.35
)

// FormConfig holds the tunable parameters of the form analyzer. The lockout
// thresholds intentionally match the classifier's so a pose classified as
// lockout is scored against the same geometry that admitted it.
type FormConfig struct {
	MinConfidence            float64
	LockoutAngleThresholdDeg float64
	LockoutHeightThreshold   float64
}

// DefaultFormConfig returns the form analyzer defaults.
func DefaultFormConfig() FormConfig {
	return FormConfig{
		MinConfidence:            0.3,
		LockoutAngleThresholdDeg: 160.0,
		LockoutHeightThreshold:   0.5,
	}
}

// FormAnalyzer scores a pose against the fixed rule set for its phase.
// Every check names the landmark subset it needs; when any of those lacks
// confidence the check is skipped outright: no issue, no penalty. A noisy
// frame therefore degrades toward a clean score, never toward a false fault.
type FormAnalyzer struct {
	cfg FormConfig
}

// NewFormAnalyzer creates a form analyzer, clamping fractions to [0,1].
func NewFormAnalyzer(cfg FormConfig) *FormAnalyzer {
	cfg.MinConfidence = clampUnit(cfg.MinConfidence)
	cfg.LockoutHeightThreshold = clampUnit(cfg.LockoutHeightThreshold)
	return &FormAnalyzer{cfg: cfg}
}

// Analyze runs the phase's rule set over the pose. The unknown phase yields
// an empty result with a perfect score: no phase, no opinion.
func (a *FormAnalyzer) Analyze(p *Pose, phase Phase, now time.Time) FormAnalysisResult {
	result := FormAnalysisResult{
		Issues:     []FormIssue{},
		CapturedAt: now,
	}
	if p != nil {
		switch phase {
		case PhaseRack:
			result.Issues = a.checkRack(p)
		case PhaseDip:
			result.Issues = a.checkDip(p)
		case PhaseDrive:
			result.Issues = a.checkDrive(p)
		case PhaseLockout:
			result.Issues = a.checkLockout(p)
		case PhaseUnknown:
			// No rule set applies.
		}
	}
	result.OverallScore = ScoreIssues(result.Issues)
	return result
}

// ScoreIssues computes the aggregate score for a set of issues: start at 100,
// subtract each issue's fixed penalty, clamp to [0,100]. The sum is
// commutative, so evaluation order never changes the score.
func ScoreIssues(issues []FormIssue) int {
	score := 100
	for _, issue := range issues {
		score -= issue.Severity.Penalty()
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

func (a *FormAnalyzer) checkRack(p *Pose) []FormIssue {
	var issues []FormIssue
	min := a.cfg.MinConfidence
	sw, haveWidth := scaledWidth(p, min)

	// Elbows stacked over the hips keep the bar on the shelf.
	for _, side := range bothSides {
		elbow, okE := p.Confident(side.elbow, min)
		hip, okH := p.Confident(side.hip, min)
		if !haveWidth || !okE || !okH {
			continue
		}
		if HorizontalDistance(elbow, hip) > rackElbowHipMaxOffset*sw {
			issues = append(issues, FormIssue{
				ID:       "rack_elbow_position",
				Phase:    PhaseRack,
				Message:  "elbow drifting out from over the hip; keep the bar racked on the shoulders",
				Severity: SeverityModerate,
				BodyPart: side.elbow,
			})
		}
	}

	// Wrists at shoulder height.
	for _, side := range bothSides {
		wrist, okW := p.Confident(side.wrist, min)
		shoulder, okS := p.Confident(side.shoulder, min)
		if !haveWidth || !okW || !okS {
			continue
		}
		if absDiff(wrist.Y, shoulder.Y) > rackWristHeightMax*sw {
			issues = append(issues, FormIssue{
				ID:       "rack_wrist_height",
				Phase:    PhaseRack,
				Message:  "wrist not at shoulder height in the rack position",
				Severity: SeverityLow,
				BodyPart: side.wrist,
			})
		}
	}
	return issues
}

func (a *FormAnalyzer) checkDip(p *Pose) []FormIssue {
	var issues []FormIssue
	min := a.cfg.MinConfidence

	leftKnee, okL := kneeAngle(p, leftSide, min)
	rightKnee, okR := kneeAngle(p, rightSide, min)

	if okL && okR {
		mean := (leftKnee + rightKnee) / 2
		if mean < dipKneeDeepDeg {
			issues = append(issues, FormIssue{
				ID:       "dip_too_deep",
				Phase:    PhaseDip,
				Message:  "dip is too deep; a push press dip is a shallow knee bend, not a squat",
				Severity: SeverityModerate,
				BodyPart: "knees",
			})
		} else if mean > dipKneeShallowDeg {
			issues = append(issues, FormIssue{
				ID:       "dip_too_shallow",
				Phase:    PhaseDip,
				Message:  "dip is shallow; deepen the knee bend to load the drive",
				Severity: SeverityLow,
				BodyPart: "knees",
			})
		}
		if absDiff(leftKnee, rightKnee) > dipKneeSymmetryDeg {
			issues = append(issues, FormIssue{
				ID:       "dip_knee_asymmetry",
				Phase:    PhaseDip,
				Message:  "knees bending unevenly through the dip",
				Severity: SeverityModerate,
				BodyPart: "knees",
			})
		}
	}

	// Torso verticality: the dip travels straight down.
	if lean, ok := torsoLean(p, min); ok && lean > dipTorsoLeanMaxDeg {
		issues = append(issues, FormIssue{
			ID:       "dip_torso_lean",
			Phase:    PhaseDip,
			Message:  "torso leaning through the dip; keep the chest upright",
			Severity: SeverityHigh,
			BodyPart: "torso",
		})
	}
	return issues
}

func (a *FormAnalyzer) checkDrive(p *Pose) []FormIssue {
	var issues []FormIssue
	min := a.cfg.MinConfidence

	leftArm, okLA := armAngle(p, leftSide, min)
	rightArm, okRA := armAngle(p, rightSide, min)
	if okLA && okRA && absDiff(leftArm, rightArm) > driveArmSymmetryDeg {
		issues = append(issues, FormIssue{
			ID:       "drive_arm_asymmetry",
			Phase:    PhaseDrive,
			Message:  "arms extending unevenly; press both sides together",
			Severity: SeverityModerate,
			BodyPart: "arms",
		})
	}

	leftKnee, okLK := kneeAngle(p, leftSide, min)
	rightKnee, okRK := kneeAngle(p, rightSide, min)
	if okLK && okRK && (leftKnee+rightKnee)/2 < driveLegExtensionDeg {
		issues = append(issues, FormIssue{
			ID:       "drive_incomplete_leg_extension",
			Phase:    PhaseDrive,
			Message:  "legs not finishing their extension; drive through fully before the press",
			Severity: SeverityLow,
			BodyPart: "knees",
		})
	}
	return issues
}

func (a *FormAnalyzer) checkLockout(p *Pose) []FormIssue {
	var issues []FormIssue
	min := a.cfg.MinConfidence
	sw, haveWidth := scaledWidth(p, min)

	// Full arm extension, per side.
	for _, side := range bothSides {
		arm, ok := armAngle(p, side, min)
		if !ok {
			continue
		}
		if arm < a.cfg.LockoutAngleThresholdDeg {
			issues = append(issues, FormIssue{
				ID:       "lockout_incomplete",
				Phase:    PhaseLockout,
				Message:  "arm not fully locked out overhead",
				Severity: SeverityHigh,
				BodyPart: side.elbow,
			})
		}
	}

	// Bar height: wrists well above the shoulders.
	for _, side := range bothSides {
		wrist, okW := p.Confident(side.wrist, min)
		shoulder, okS := p.Confident(side.shoulder, min)
		if !haveWidth || !okW || !okS {
			continue
		}
		if HeightAbove(wrist, shoulder) < a.cfg.LockoutHeightThreshold*sw {
			issues = append(issues, FormIssue{
				ID:       "lockout_bar_low",
				Phase:    PhaseLockout,
				Message:  "bar finishing low; press to full height over the shoulders",
				Severity: SeverityModerate,
				BodyPart: side.wrist,
			})
		}
		if HorizontalDistance(wrist, shoulder) > lockoutArmDriftLimit*sw {
			issues = append(issues, FormIssue{
				ID:       "lockout_bar_drift",
				Phase:    PhaseLockout,
				Message:  "bar drifting off the vertical line over the shoulder",
				Severity: SeverityModerate,
				BodyPart: side.wrist,
			})
		}
	}

	// Level finish: wrists at the same height.
	leftWrist, okLW := p.Confident(LeftWrist, min)
	rightWrist, okRW := p.Confident(RightWrist, min)
	if haveWidth && okLW && okRW &&
		absDiff(leftWrist.Y, rightWrist.Y) > lockoutWristAlignLimit*sw {
		issues = append(issues, FormIssue{
			ID:       "lockout_uneven_wrists",
			Phase:    PhaseLockout,
			Message:  "wrists finishing at different heights",
			Severity: SeverityLow,
			BodyPart: "wrists",
		})
	}
	return issues
}

// side groups the landmark names of one body side for the per-side checks.
type side struct {
	shoulder, elbow, wrist, hip, knee, ankle string
}

var (
	leftSide  = side{LeftShoulder, LeftElbow, LeftWrist, LeftHip, LeftKnee, LeftAnkle}
	rightSide = side{RightShoulder, RightElbow, RightWrist, RightHip, RightKnee, RightAnkle}
	bothSides = []side{leftSide, rightSide}
)

// armAngle returns the shoulder-elbow-wrist angle for a side, requiring all
// three landmarks at min confidence.
func armAngle(p *Pose, s side, min float64) (float64, bool) {
	shoulder, ok1 := p.Confident(s.shoulder, min)
	elbow, ok2 := p.Confident(s.elbow, min)
	wrist, ok3 := p.Confident(s.wrist, min)
	if !ok1 || !ok2 || !ok3 {
		return 0, false
	}
	return AngleDeg(shoulder, elbow, wrist), true
}

// kneeAngle returns the hip-knee-ankle angle for a side.
func kneeAngle(p *Pose, s side, min float64) (float64, bool) {
	hip, ok1 := p.Confident(s.hip, min)
	knee, ok2 := p.Confident(s.knee, min)
	ankle, ok3 := p.Confident(s.ankle, min)
	if !ok1 || !ok2 || !ok3 {
		return 0, false
	}
	return AngleDeg(hip, knee, ankle), true
}

// torsoLean returns the hip-to-shoulder lean from vertical using the side
// midpoints, requiring all four torso landmarks.
func torsoLean(p *Pose, min float64) (float64, bool) {
	ls, ok1 := p.Confident(LeftShoulder, min)
	rs, ok2 := p.Confident(RightShoulder, min)
	lh, ok3 := p.Confident(LeftHip, min)
	rh, ok4 := p.Confident(RightHip, min)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return 0, false
	}
	return LeanFromVerticalDeg(Midpoint(ls, rs), Midpoint(lh, rh)), true
}

// scaledWidth returns the shoulder width when both shoulders clear min
// confidence; width-normalized checks are skipped without it.
func scaledWidth(p *Pose, min float64) (float64, bool) {
	if _, ok := p.Confident(LeftShoulder, min); !ok {
		return 0, false
	}
	if _, ok := p.Confident(RightShoulder, min); !ok {
		return 0, false
	}
	return p.ShoulderWidth()
}
