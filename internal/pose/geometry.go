package pose

import "math"

// AngleDeg computes the angle at vertex b formed by the segments b->a and
// b->c, in degrees. The raw atan2 difference is reflected so the result is
// always in [0, 180]: a straight joint reads 180, a fully folded joint 0.
func AngleDeg(a, b, c Landmark) float64 {
	angle := math.Atan2(c.Y-b.Y, c.X-b.X) - math.Atan2(a.Y-b.Y, a.X-b.X)
	deg := math.Abs(angle * 180 / math.Pi)
	if deg > 180 {
		deg = 360 - deg
	}
	return deg
}

// Distance returns the Euclidean distance between two landmarks.
func Distance(a, b Landmark) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// HorizontalDistance returns the absolute x separation of two landmarks.
func HorizontalDistance(a, b Landmark) float64 {
	return math.Abs(a.X - b.X)
}

// HeightAbove returns how far a sits above b in image coordinates.
// Positive when a is above b (smaller y); negative when below.
func HeightAbove(a, b Landmark) float64 {
	return b.Y - a.Y
}

// Midpoint returns the unnamed midpoint of two landmarks, carrying the lower
// of the two confidences.
func Midpoint(a, b Landmark) Landmark {
	return Landmark{
		X:          (a.X + b.X) / 2,
		Y:          (a.Y + b.Y) / 2,
		Confidence: math.Min(a.Confidence, b.Confidence),
	}
}

// LeanFromVerticalDeg returns the angle in degrees between the segment
// lower->upper and the image vertical. 0 means perfectly upright.
func LeanFromVerticalDeg(upper, lower Landmark) float64 {
	dx := math.Abs(upper.X - lower.X)
	dy := math.Abs(upper.Y - lower.Y)
	if dx == 0 && dy == 0 {
		return 0
	}
	return math.Atan2(dx, dy) * 180 / math.Pi
}

// KneeAngleMeanDeg returns the mean hip-knee-ankle angle across both legs,
// requiring all six leg landmarks at minConfidence. Exposed for the report
// and plotting tools.
func KneeAngleMeanDeg(p *Pose, minConfidence float64) (float64, bool) {
	left, okL := kneeAngle(p, leftSide, minConfidence)
	right, okR := kneeAngle(p, rightSide, minConfidence)
	if !okL || !okR {
		return 0, false
	}
	return (left + right) / 2, true
}

// ArmAnglesDeg returns the left and right shoulder-elbow-wrist angles,
// requiring all six arm landmarks at minConfidence.
func ArmAnglesDeg(p *Pose, minConfidence float64) (left, right float64, ok bool) {
	left, okL := armAngle(p, leftSide, minConfidence)
	right, okR := armAngle(p, rightSide, minConfidence)
	return left, right, okL && okR
}

// clampUnit clamps v to [0, 1]. Configuration fractions and confidence
// values pass through this before use.
func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
