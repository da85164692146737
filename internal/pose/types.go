// Package pose implements the per-frame analysis pipeline for the overhead
// push press: landmark smoothing, phase classification with rep counting, and
// rule-based form scoring. All stages are pure transformations over state
// owned by the caller; nothing in this package performs I/O.
package pose

import "math"

// Landmark names follow the MoveNet 17-keypoint vocabulary. Unrecognized
// names are carried through smoothing untouched and ignored everywhere else.
const (
	Nose          = "nose"
	LeftEye       = "left_eye"
	RightEye      = "right_eye"
	LeftEar       = "left_ear"
	RightEar      = "right_ear"
	LeftShoulder  = "left_shoulder"
	RightShoulder = "right_shoulder"
	LeftElbow     = "left_elbow"
	RightElbow    = "right_elbow"
	LeftWrist     = "left_wrist"
	RightWrist    = "right_wrist"
	LeftHip       = "left_hip"
	RightHip      = "right_hip"
	LeftKnee      = "left_knee"
	RightKnee     = "right_knee"
	LeftAnkle     = "left_ankle"
	RightAnkle    = "right_ankle"
)

// RequiredForClassification is the landmark set the classifier needs at
// minimum confidence before it will change phase. Partial occlusion of any of
// these freezes the state machine for the frame.
var RequiredForClassification = []string{
	LeftShoulder, RightShoulder,
	LeftElbow, RightElbow,
	LeftWrist, RightWrist,
	LeftHip, RightHip,
	LeftKnee, RightKnee,
	LeftAnkle, RightAnkle,
}

// Landmark is a named 2D body-joint estimate in image coordinates
// (x right, y down, both typically normalized to [0,1]) with a per-landmark
// confidence score in [0,1].
type Landmark struct {
	Name       string  `json:"name"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Confidence float64 `json:"confidence"`
}

// Pose is the full landmark set for one detected person at one instant, plus
// an optional overall detection score. Pipeline stages treat a Pose as
// immutable and return new copies rather than mutating inputs.
type Pose struct {
	Landmarks []Landmark `json:"landmarks"`
	Score     float64    `json:"score,omitempty"`
}

// Landmark returns the landmark with the given name, if present.
// Names are assumed unique within a pose; the first match wins.
func (p *Pose) Landmark(name string) (Landmark, bool) {
	if p == nil {
		return Landmark{}, false
	}
	for _, lm := range p.Landmarks {
		if lm.Name == name {
			return lm, true
		}
	}
	return Landmark{}, false
}

// Confident returns the named landmark only if its confidence is at least
// min. A missing landmark and a low-confidence landmark are indistinguishable
// to callers, which is the degradation model the whole pipeline relies on.
func (p *Pose) Confident(name string, min float64) (Landmark, bool) {
	lm, ok := p.Landmark(name)
	if !ok || lm.Confidence < min {
		return Landmark{}, false
	}
	return lm, true
}

// HasAll reports whether every named landmark is present at confidence >= min.
func (p *Pose) HasAll(names []string, min float64) bool {
	for _, name := range names {
		if _, ok := p.Confident(name, min); !ok {
			return false
		}
	}
	return true
}

// Clone returns a deep copy sharing no storage with the receiver.
func (p *Pose) Clone() *Pose {
	if p == nil {
		return nil
	}
	out := &Pose{Score: p.Score}
	if p.Landmarks != nil {
		out.Landmarks = make([]Landmark, len(p.Landmarks))
		copy(out.Landmarks, p.Landmarks)
	}
	return out
}

// ShoulderWidth returns the distance between the two shoulder landmarks.
// Scale-dependent tolerances are expressed as fractions of this value so
// classification is invariant to resolution and distance from camera.
// Returns false if either shoulder is missing or the width is degenerate.
func (p *Pose) ShoulderWidth() (float64, bool) {
	left, okL := p.Landmark(LeftShoulder)
	right, okR := p.Landmark(RightShoulder)
	if !okL || !okR {
		return 0, false
	}
	w := Distance(left, right)
	if w < minShoulderWidth || math.IsNaN(w) {
		return 0, false
	}
	return w, true
}

// minShoulderWidth guards against division by a degenerate shoulder span
// (both shoulders collapsed onto the same pixel).
const minShoulderWidth = 1e-6
