package pose

// SmootherConfig holds the temporal smoothing parameters.
type SmootherConfig struct {
	// Alpha is the blend weight of the historical average, in [0,1].
	// Low alpha favours responsiveness, high alpha favours stability.
	Alpha float64
	// UseConfidenceWeighting weights each historical sample by its own
	// confidence score so low-confidence noise cannot dominate a
	// high-confidence current reading.
	UseConfidenceWeighting bool
	// MinConfidence is the score below which a historical landmark is
	// excluded from the confidence-weighted average.
	MinConfidence float64
}

// DefaultSmootherConfig returns the default smoothing parameters.
func DefaultSmootherConfig() SmootherConfig {
	return SmootherConfig{
		Alpha:                  0.5,
		UseConfidenceWeighting: true,
		MinConfidence:          0.3,
	}
}

// Smoother reduces frame-to-frame landmark jitter by blending each landmark
// position with an average of the same landmark across the history buffer.
// Smoothing affects position only; confidence scores pass through untouched.
type Smoother struct {
	cfg SmootherConfig
}

// NewSmoother creates a smoother. Out-of-range fractions are clamped to
// [0,1] rather than rejected; this stage never fails.
func NewSmoother(cfg SmootherConfig) *Smoother {
	cfg.Alpha = clampUnit(cfg.Alpha)
	cfg.MinConfidence = clampUnit(cfg.MinConfidence)
	return &Smoother{cfg: cfg}
}

// Smooth returns a smoothed copy of current. The history buffer is read but
// never mutated or retained; appending the result to the buffer is the
// caller's job. With an empty history or alpha <= 0 the input is returned as
// an aliasing-free copy.
func (s *Smoother) Smooth(current *Pose, history *History) *Pose {
	if current == nil {
		return nil
	}
	if history == nil || history.Size() == 0 || s.cfg.Alpha <= 0 {
		return current.Clone()
	}

	past := history.All()
	out := &Pose{
		Score:     current.Score,
		Landmarks: make([]Landmark, len(current.Landmarks)),
	}
	for i, lm := range current.Landmarks {
		out.Landmarks[i] = s.smoothLandmark(lm, past)
	}
	return out
}

// smoothLandmark blends one landmark with its historical positions.
// Poses missing the landmark are skipped, not treated as zero. The averages
// are commutative, so the result does not depend on history order.
func (s *Smoother) smoothLandmark(current Landmark, past []*Pose) Landmark {
	var matched []Landmark
	for _, p := range past {
		if lm, ok := p.Landmark(current.Name); ok {
			matched = append(matched, lm)
		}
	}
	if len(matched) == 0 {
		return current
	}

	var avgX, avgY float64
	if s.cfg.UseConfidenceWeighting {
		ok := false
		avgX, avgY, ok = confidenceWeightedAverage(current, matched, s.cfg.MinConfidence)
		if !ok {
			// No historical sample cleared the confidence bar; trust
			// the current reading alone.
			return current
		}
	} else {
		var sumX, sumY float64
		for _, lm := range matched {
			sumX += lm.X
			sumY += lm.Y
		}
		avgX = sumX / float64(len(matched))
		avgY = sumY / float64(len(matched))
	}

	a := s.cfg.Alpha
	out := current
	out.X = current.X*(1-a) + avgX*a
	out.Y = current.Y*(1-a) + avgY*a
	return out
}

// confidenceWeightedAverage averages the current landmark together with the
// historical samples scoring at least minConfidence, each weighted by its own
// confidence. The current landmark always participates, using minConfidence
// as its weight when it carries no score. Returns ok=false when no historical
// sample qualifies.
func confidenceWeightedAverage(current Landmark, matched []Landmark, minConfidence float64) (x, y float64, ok bool) {
	var sumX, sumY, sumW float64
	qualified := 0
	for _, lm := range matched {
		if lm.Confidence < minConfidence {
			continue
		}
		sumX += lm.X * lm.Confidence
		sumY += lm.Y * lm.Confidence
		sumW += lm.Confidence
		qualified++
	}
	if qualified == 0 {
		return 0, 0, false
	}

	w := current.Confidence
	if w <= 0 {
		w = minConfidence
	}
	sumX += current.X * w
	sumY += current.Y * w
	sumW += w

	if sumW <= 0 {
		return 0, 0, false
	}
	return sumX / sumW, sumY / sumW, true
}
