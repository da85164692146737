package pose

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// SessionStats holds aggregate statistics for one completed session.
type SessionStats struct {
	FrameCount int `json:"frame_count"`
	RepCount   int `json:"rep_count"`

	// Rep cadence, from the intervals between counted reps.
	RepIntervalMeanSecs   float64 `json:"rep_interval_mean_secs"`
	RepIntervalStdDevSecs float64 `json:"rep_interval_stddev_secs"`

	// Form score distribution over scored frames (unknown-phase frames are
	// excluded: a perfect score with no rule set applied says nothing).
	ScoreMean float64 `json:"score_mean"`
	ScoreP50  float64 `json:"score_p50"`
	ScoreP85  float64 `json:"score_p85"`
	ScoreP95  float64 `json:"score_p95"`

	PhaseFrames map[Phase]int  `json:"phase_frames"`
	IssueCounts map[string]int `json:"issue_counts"`
}

// ComputeSessionStats aggregates a session's frame results.
func ComputeSessionStats(results []FrameResult) *SessionStats {
	stats := &SessionStats{
		FrameCount:  len(results),
		PhaseFrames: make(map[Phase]int),
		IssueCounts: make(map[string]int),
	}
	if len(results) == 0 {
		return stats
	}

	var scores []float64
	var repTimes []float64 // Unix seconds of each counted rep
	prevReps := 0
	for _, r := range results {
		stats.PhaseFrames[r.Phase]++
		if r.Phase != PhaseUnknown {
			scores = append(scores, float64(r.Form.OverallScore))
		}
		for _, issue := range r.Form.Issues {
			stats.IssueCounts[issue.ID]++
		}
		if r.RepCount > prevReps {
			repTimes = append(repTimes, float64(r.CapturedAt.UnixNano())/1e9)
			prevReps = r.RepCount
		}
	}
	stats.RepCount = prevReps

	if len(scores) > 0 {
		stats.ScoreMean = stat.Mean(scores, nil)
		sort.Float64s(scores)
		stats.ScoreP50 = stat.Quantile(0.50, stat.Empirical, scores, nil)
		stats.ScoreP85 = stat.Quantile(0.85, stat.Empirical, scores, nil)
		stats.ScoreP95 = stat.Quantile(0.95, stat.Empirical, scores, nil)
	}

	if len(repTimes) > 1 {
		intervals := make([]float64, len(repTimes)-1)
		for i := 1; i < len(repTimes); i++ {
			intervals[i-1] = repTimes[i] - repTimes[i-1]
		}
		stats.RepIntervalMeanSecs = stat.Mean(intervals, nil)
		if len(intervals) > 1 {
			stats.RepIntervalStdDevSecs = stat.StdDev(intervals, nil)
		}
	}
	return stats
}
