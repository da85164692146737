package pose

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// repCycleFrames builds one full repetition the way a 10fps recording would
// capture it: each phase held or approached over several frames so the
// smoother can track the motion.
func repCycleFrames() []*Pose {
	var frames []*Pose
	hold := func(p *Pose, n int) {
		for i := 0; i < n; i++ {
			frames = append(frames, p.Clone())
		}
	}
	move := func(a, b *Pose, steps int) {
		for i := 1; i <= steps; i++ {
			frames = append(frames, lerpPose(a, b, float64(i)/float64(steps)))
		}
	}
	hold(rackPose(), 4)
	move(rackPose(), dipPose(), 3)
	move(dipPose(), drivePose(), 3)
	move(drivePose(), lockoutPose(), 3)
	hold(lockoutPose(), 4)
	move(lockoutPose(), rackPose(), 3)
	return frames
}

func TestEngineCountsRepsAcrossFullCycles(t *testing.T) {
	t.Parallel()

	engine := NewEngine(DefaultEngineConfig())
	frames := append(repCycleFrames(), repCycleFrames()...)

	for i, p := range frames {
		engine.ProcessFrame(p, at(int64(i)*100))
	}

	snap := engine.Snapshot()
	assert.Equal(t, 2, snap.RepCount)
	assert.Equal(t, len(frames), snap.FrameCount)
	assert.False(t, snap.LastRepAt.IsZero())
}

func TestEngineProcessFrameResult(t *testing.T) {
	t.Parallel()

	engine := NewEngine(DefaultEngineConfig())
	result := engine.ProcessFrame(rackPose(), at(1234))

	require.NotNil(t, result.Smoothed)
	assert.Equal(t, PhaseRack, result.Phase)
	assert.Equal(t, 0, result.RepCount)
	assert.Equal(t, at(1234), result.CapturedAt)
	assert.Equal(t, at(1234), result.Form.CapturedAt)
	assert.Equal(t, 100, result.Form.OverallScore)
}

func TestEngineSnapshotDefaults(t *testing.T) {
	t.Parallel()

	snap := NewEngine(DefaultEngineConfig()).Snapshot()
	assert.Equal(t, PhaseUnknown, snap.Phase)
	assert.Equal(t, 0, snap.RepCount)
	assert.Equal(t, 0, snap.FrameCount)
	assert.Equal(t, 100, snap.LastScore)
	assert.True(t, snap.LastRepAt.IsZero())
}

func TestEngineReset(t *testing.T) {
	t.Parallel()

	engine := NewEngine(DefaultEngineConfig())
	for i, p := range append(repCycleFrames(), repCycleFrames()...) {
		engine.ProcessFrame(p, at(int64(i)*100))
	}
	require.Equal(t, 2, engine.Snapshot().RepCount)

	engine.Reset()
	snap := engine.Snapshot()
	assert.Equal(t, PhaseUnknown, snap.Phase)
	assert.Equal(t, 0, snap.RepCount)
	assert.Equal(t, 0, snap.FrameCount)
	assert.Equal(t, 100, snap.LastScore)

	// The session restarts cleanly: a fresh cycle counts from one.
	for i, p := range repCycleFrames() {
		engine.ProcessFrame(p, at(100000+int64(i)*100))
	}
	assert.Equal(t, 1, engine.Snapshot().RepCount)
}

func TestEngineConcurrentSnapshots(t *testing.T) {
	t.Parallel()

	engine := NewEngine(DefaultEngineConfig())
	frames := repCycleFrames()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i, p := range frames {
			engine.ProcessFrame(p, at(int64(i)*100))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < len(frames); i++ {
			snap := engine.Snapshot()
			assert.GreaterOrEqual(t, snap.RepCount, 0)
			time.Sleep(time.Millisecond)
		}
	}()
	wg.Wait()

	assert.Equal(t, len(frames), engine.Snapshot().FrameCount)
}

func TestEngineStateCopy(t *testing.T) {
	t.Parallel()

	engine := NewEngine(DefaultEngineConfig())
	engine.ProcessFrame(rackPose(), at(0))

	state := engine.State()
	state.RepCount = 99
	assert.Equal(t, 0, engine.State().RepCount)
}
