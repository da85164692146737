package pose

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func singleLandmarkPose(x, y, confidence float64) *Pose {
	return &Pose{Landmarks: []Landmark{
		{Name: LeftWrist, X: x, Y: y, Confidence: confidence},
	}}
}

func TestSmoothEmptyHistoryReturnsCopy(t *testing.T) {
	t.Parallel()

	s := NewSmoother(DefaultSmootherConfig())
	raw := rackPose()
	out := s.Smooth(raw, NewHistory(5))

	require.NotNil(t, out)
	assert.Empty(t, cmp.Diff(raw, out))

	// The copy must not alias the input.
	out.Landmarks[0].X = 99
	assert.Equal(t, 0.40, raw.Landmarks[0].X)
}

func TestSmoothAlphaZeroReturnsCopy(t *testing.T) {
	t.Parallel()

	s := NewSmoother(SmootherConfig{Alpha: 0, MinConfidence: 0.3})
	h := NewHistory(5)
	h.Add(singleLandmarkPose(0, 0, 0.9))

	raw := singleLandmarkPose(1, 1, 0.9)
	out := s.Smooth(raw, h)
	assert.Empty(t, cmp.Diff(raw, out))
}

func TestSmoothNilPose(t *testing.T) {
	t.Parallel()
	s := NewSmoother(DefaultSmootherConfig())
	assert.Nil(t, s.Smooth(nil, NewHistory(5)))
}

func TestSmoothUniformAverage(t *testing.T) {
	t.Parallel()

	s := NewSmoother(SmootherConfig{Alpha: 0.5, UseConfidenceWeighting: false})
	h := NewHistory(5)
	h.Add(singleLandmarkPose(0.0, 0.0, 0.9))
	h.Add(singleLandmarkPose(0.5, 0.5, 0.9))

	out := s.Smooth(singleLandmarkPose(1.0, 1.0, 0.9), h)
	require.Len(t, out.Landmarks, 1)
	// avg = 0.25, blended = 1.0*0.5 + 0.25*0.5
	assert.InDelta(t, 0.625, out.Landmarks[0].X, 1e-9)
	assert.InDelta(t, 0.625, out.Landmarks[0].Y, 1e-9)
	// Confidence passes through untouched.
	assert.InDelta(t, 0.9, out.Landmarks[0].Confidence, 1e-9)
}

func TestSmoothConfidenceWeighting(t *testing.T) {
	t.Parallel()

	s := NewSmoother(SmootherConfig{Alpha: 0.5, UseConfidenceWeighting: true, MinConfidence: 0.3})

	t.Run("low-confidence history excluded", func(t *testing.T) {
		t.Parallel()
		h := NewHistory(5)
		h.Add(singleLandmarkPose(0.0, 0.0, 0.1)) // below the bar, ignored
		h.Add(singleLandmarkPose(0.5, 0.5, 0.5))

		out := s.Smooth(singleLandmarkPose(1.0, 1.0, 0.5), h)
		require.Len(t, out.Landmarks, 1)
		// weighted avg = (0.5*0.5 + 1.0*0.5) / 1.0 = 0.75; blended = 0.875
		assert.InDelta(t, 0.875, out.Landmarks[0].X, 1e-9)
	})

	t.Run("no qualified history leaves current unchanged", func(t *testing.T) {
		t.Parallel()
		h := NewHistory(5)
		h.Add(singleLandmarkPose(0.0, 0.0, 0.1))
		h.Add(singleLandmarkPose(0.2, 0.2, 0.2))

		out := s.Smooth(singleLandmarkPose(1.0, 1.0, 0.9), h)
		require.Len(t, out.Landmarks, 1)
		assert.InDelta(t, 1.0, out.Landmarks[0].X, 1e-9)
	})
}

func TestSmoothMissingLandmarkInHistory(t *testing.T) {
	t.Parallel()

	s := NewSmoother(DefaultSmootherConfig())
	h := NewHistory(5)
	// History has only the wrist; the elbow has no past samples.
	h.Add(singleLandmarkPose(0.0, 0.0, 0.9))

	raw := &Pose{Landmarks: []Landmark{
		{Name: LeftWrist, X: 1.0, Y: 1.0, Confidence: 0.9},
		{Name: LeftElbow, X: 0.7, Y: 0.7, Confidence: 0.9},
	}}
	out := s.Smooth(raw, h)
	require.Len(t, out.Landmarks, 2)

	wrist, _ := out.Landmark(LeftWrist)
	elbow, _ := out.Landmark(LeftElbow)
	assert.Less(t, wrist.X, 1.0)          // blended toward history
	assert.InDelta(t, 0.7, elbow.X, 1e-9) // no history, passed through
}

func TestSmoothHistoryOrderInvariant(t *testing.T) {
	t.Parallel()

	s := NewSmoother(DefaultSmootherConfig())
	samples := []*Pose{
		singleLandmarkPose(0.1, 0.2, 0.8),
		singleLandmarkPose(0.4, 0.3, 0.5),
		singleLandmarkPose(0.9, 0.7, 0.6),
	}

	forward := NewHistory(5)
	for _, p := range samples {
		forward.Add(p)
	}
	backward := NewHistory(5)
	for i := len(samples) - 1; i >= 0; i-- {
		backward.Add(samples[i])
	}

	raw := singleLandmarkPose(0.5, 0.5, 0.9)
	assert.Empty(t, cmp.Diff(s.Smooth(raw, forward), s.Smooth(raw, backward)))
}

func TestSmoothDoesNotMutateHistory(t *testing.T) {
	t.Parallel()

	s := NewSmoother(DefaultSmootherConfig())
	h := NewHistory(5)
	h.Add(singleLandmarkPose(0.25, 0.25, 0.9))

	s.Smooth(singleLandmarkPose(1.0, 1.0, 0.9), h)

	stored := h.Previous(1)
	require.NotNil(t, stored)
	assert.InDelta(t, 0.25, stored.Landmarks[0].X, 1e-9)
	assert.Equal(t, 1, h.Size())
}

func TestNewSmootherClampsConfig(t *testing.T) {
	t.Parallel()

	s := NewSmoother(SmootherConfig{Alpha: 7, UseConfidenceWeighting: true, MinConfidence: -2})
	h := NewHistory(5)
	h.Add(singleLandmarkPose(0.0, 0.0, 0.9))

	// Alpha clamped to 1: output is the pure historical average, which the
	// confidence-weighted form pulls partway toward the current reading.
	out := s.Smooth(singleLandmarkPose(1.0, 1.0, 0.9), h)
	assert.InDelta(t, 0.5, out.Landmarks[0].X, 1e-9)
}
