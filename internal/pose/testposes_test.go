package pose

// Test poses use a fixed frontal skeleton: shoulders 0.2 apart at y=0.40,
// hips at y=0.70, ankles at y=0.98, all in normalized image coordinates.
// The four keyframe poses walk one textbook push-press repetition:
//
//	rack    arms folded at the shoulders, legs straight (knee 180°)
//	dip     same arms, knees bent forward (knee ~111°)
//	drive   arms pressing at ~113°, knees nearly straight (~172°)
//	lockout arms vertical overhead (180°), legs straight
const testConfidence = 0.9

func buildPose(points map[string][2]float64) *Pose {
	p := &Pose{Score: testConfidence}
	for _, name := range RequiredForClassification {
		xy, ok := points[name]
		if !ok {
			continue
		}
		p.Landmarks = append(p.Landmarks, Landmark{
			Name: name, X: xy[0], Y: xy[1], Confidence: testConfidence,
		})
	}
	return p
}

func basePoints() map[string][2]float64 {
	return map[string][2]float64{
		LeftShoulder: {0.40, 0.40}, RightShoulder: {0.60, 0.40},
		LeftHip: {0.42, 0.70}, RightHip: {0.58, 0.70},
		LeftAnkle: {0.42, 0.98}, RightAnkle: {0.58, 0.98},
	}
}

func merged(maps ...map[string][2]float64) map[string][2]float64 {
	out := make(map[string][2]float64)
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

func rackArms() map[string][2]float64 {
	return map[string][2]float64{
		LeftElbow: {0.40, 0.52}, LeftWrist: {0.42, 0.41},
		RightElbow: {0.60, 0.52}, RightWrist: {0.58, 0.41},
	}
}

func driveArms() map[string][2]float64 {
	return map[string][2]float64{
		LeftElbow: {0.30, 0.34}, LeftWrist: {0.32, 0.20},
		RightElbow: {0.70, 0.34}, RightWrist: {0.68, 0.20},
	}
}

func lockoutArms() map[string][2]float64 {
	return map[string][2]float64{
		LeftElbow: {0.40, 0.25}, LeftWrist: {0.40, 0.10},
		RightElbow: {0.60, 0.25}, RightWrist: {0.60, 0.10},
	}
}

func straightKnees() map[string][2]float64 {
	return map[string][2]float64{LeftKnee: {0.42, 0.84}, RightKnee: {0.58, 0.84}}
}

func dipKnees() map[string][2]float64 { // hip-knee-ankle ~111.4°
	return map[string][2]float64{LeftKnee: {0.51, 0.80}, RightKnee: {0.67, 0.80}}
}

func driveKnees() map[string][2]float64 { // ~171.8°
	return map[string][2]float64{LeftKnee: {0.43, 0.84}, RightKnee: {0.59, 0.84}}
}

func rackPose() *Pose {
	return buildPose(merged(basePoints(), rackArms(), straightKnees()))
}

func dipPose() *Pose {
	return buildPose(merged(basePoints(), rackArms(), dipKnees()))
}

func drivePose() *Pose {
	return buildPose(merged(basePoints(), driveArms(), driveKnees()))
}

func lockoutPose() *Pose {
	return buildPose(merged(basePoints(), lockoutArms(), straightKnees()))
}

func setLandmark(p *Pose, name string, x, y float64) {
	for i := range p.Landmarks {
		if p.Landmarks[i].Name == name {
			p.Landmarks[i].X = x
			p.Landmarks[i].Y = y
			return
		}
	}
	p.Landmarks = append(p.Landmarks, Landmark{Name: name, X: x, Y: y, Confidence: testConfidence})
}

func setConfidence(p *Pose, name string, c float64) {
	for i := range p.Landmarks {
		if p.Landmarks[i].Name == name {
			p.Landmarks[i].Confidence = c
			return
		}
	}
}

// lerpPose interpolates between two poses built from the same landmark set.
func lerpPose(a, b *Pose, t float64) *Pose {
	out := a.Clone()
	for i := range out.Landmarks {
		lb, ok := b.Landmark(out.Landmarks[i].Name)
		if !ok {
			continue
		}
		out.Landmarks[i].X = out.Landmarks[i].X*(1-t) + lb.X*t
		out.Landmarks[i].Y = out.Landmarks[i].Y*(1-t) + lb.Y*t
	}
	return out
}
