// Package replay feeds recorded pose-frame logs through the analysis
// pipeline. Logs are NDJSON: one frame object per line, in capture order.
// Because the engine takes explicit timestamps, a replayed session produces
// bit-identical results on every run.
package replay

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/repform-data/form.report/internal/db"
	"github.com/repform-data/form.report/internal/pose"
)

// Frame is one line of a recorded frame log.
type Frame struct {
	TimestampMs int64     `json:"timestamp_ms"`
	Pose        pose.Pose `json:"pose"`
}

// maxLineBytes bounds a single NDJSON line (a 17-landmark frame is ~2KB;
// 1MB leaves room for denser estimators).
const maxLineBytes = 1 << 20

// ReadFrames parses an NDJSON frame log. Blank lines are skipped; a
// malformed line fails the whole read with its line number, since a damaged
// log should be fixed rather than partially analyzed.
func ReadFrames(r io.Reader) ([]Frame, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var frames []Frame
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var f Frame
		if err := json.Unmarshal(line, &f); err != nil {
			return nil, fmt.Errorf("line %d: invalid frame: %w", lineNo, err)
		}
		frames = append(frames, f)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read frame log: %w", err)
	}
	return frames, nil
}

// Run processes frames through the engine in order and returns the per-frame
// results.
func Run(engine *pose.Engine, frames []Frame) []pose.FrameResult {
	results := make([]pose.FrameResult, 0, len(frames))
	for _, f := range frames {
		results = append(results, engine.ProcessFrame(&f.Pose, time.UnixMilli(f.TimestampMs)))
	}
	return results
}

// Persist writes a replayed session to the store: one session row, one rep
// row per counted repetition, and every observed form issue.
func Persist(store *db.DB, exercise string, results []pose.FrameResult) (string, error) {
	if len(results) == 0 {
		return "", fmt.Errorf("nothing to persist: no frames")
	}

	sessionID, err := store.CreateSession(exercise, results[0].CapturedAt)
	if err != nil {
		return "", err
	}

	prevReps := 0
	for _, r := range results {
		if r.RepCount > prevReps {
			if err := store.RecordRep(sessionID, r.RepCount, r.CapturedAt, r.IsValidRep); err != nil {
				return "", err
			}
			prevReps = r.RepCount
		}
		if err := store.RecordIssues(sessionID, r.Form.Issues, r.CapturedAt); err != nil {
			return "", err
		}
	}

	stats := pose.ComputeSessionStats(results)
	last := results[len(results)-1]
	if err := store.FinishSession(sessionID, last.CapturedAt, stats.FrameCount, stats.RepCount, stats.ScoreMean); err != nil {
		return "", err
	}
	return sessionID, nil
}
