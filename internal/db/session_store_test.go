package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repform-data/form.report/internal/pose"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.MigrateUp("migrations"))
	return db
}

func TestMigrateUpIsIdempotent(t *testing.T) {
	t.Parallel()

	db := testDB(t)
	require.NoError(t, db.MigrateUp("migrations"))

	version, dirty, err := db.MigrateVersion("migrations")
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, uint(1), version)
}

func TestSessionLifecycle(t *testing.T) {
	t.Parallel()

	db := testDB(t)
	started := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)

	id, err := db.CreateSession("push_press", started)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	s, err := db.GetSession(id)
	require.NoError(t, err)
	assert.Equal(t, "push_press", s.Exercise)
	assert.True(t, s.StartedAt.Equal(started))
	assert.Nil(t, s.EndedAt)
	assert.Nil(t, s.AvgScore)
	assert.Equal(t, 0, s.RepCount)

	ended := started.Add(5 * time.Minute)
	require.NoError(t, db.FinishSession(id, ended, 3000, 12, 87.5))

	s, err = db.GetSession(id)
	require.NoError(t, err)
	require.NotNil(t, s.EndedAt)
	assert.True(t, s.EndedAt.Equal(ended))
	assert.Equal(t, 3000, s.FrameCount)
	assert.Equal(t, 12, s.RepCount)
	require.NotNil(t, s.AvgScore)
	assert.InDelta(t, 87.5, *s.AvgScore, 1e-9)
}

func TestGetSessionMissing(t *testing.T) {
	t.Parallel()

	db := testDB(t)
	_, err := db.GetSession("no-such-id")
	assert.ErrorContains(t, err, "no session")
}

func TestFinishSessionMissing(t *testing.T) {
	t.Parallel()

	db := testDB(t)
	err := db.FinishSession("no-such-id", time.Now(), 0, 0, 0)
	assert.ErrorContains(t, err, "no session")
}

func TestRecordAndListReps(t *testing.T) {
	t.Parallel()

	db := testDB(t)
	started := time.Now()
	id, err := db.CreateSession("push_press", started)
	require.NoError(t, err)

	require.NoError(t, db.RecordRep(id, 1, started.Add(2*time.Second), true))
	require.NoError(t, db.RecordRep(id, 2, started.Add(5*time.Second), false))

	reps, err := db.ListReps(id)
	require.NoError(t, err)
	require.Len(t, reps, 2)
	assert.Equal(t, 1, reps[0].RepIndex)
	assert.True(t, reps[0].Valid)
	assert.Equal(t, 2, reps[1].RepIndex)
	assert.False(t, reps[1].Valid)
	assert.True(t, reps[1].CountedAt.After(reps[0].CountedAt))
}

func TestRecordIssuesAndBreakdown(t *testing.T) {
	t.Parallel()

	db := testDB(t)
	id, err := db.CreateSession("push_press", time.Now())
	require.NoError(t, err)

	issues := []pose.FormIssue{
		{ID: "dip_torso_lean", Phase: pose.PhaseDip, Severity: pose.SeverityHigh, BodyPart: "torso", Message: "leaning"},
		{ID: "lockout_incomplete", Phase: pose.PhaseLockout, Severity: pose.SeverityHigh, BodyPart: "left_elbow", Message: "soft elbow"},
	}
	require.NoError(t, db.RecordIssues(id, issues, time.Now()))
	require.NoError(t, db.RecordIssues(id, issues[:1], time.Now()))
	// An empty batch is a no-op, not an error.
	require.NoError(t, db.RecordIssues(id, nil, time.Now()))

	counts, err := db.IssueBreakdown(id)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{
		"dip_torso_lean":     2,
		"lockout_incomplete": 1,
	}, counts)
}

func TestListSessions(t *testing.T) {
	t.Parallel()

	db := testDB(t)
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 3; i++ {
		id, err := db.CreateSession("push_press", base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, err)
		ids = append(ids, id)
	}

	sessions, err := db.ListSessions(10)
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	// Newest first.
	assert.Equal(t, ids[2], sessions[0].SessionID)
	assert.Equal(t, ids[0], sessions[2].SessionID)

	limited, err := db.ListSessions(2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	// A non-positive limit falls back to the default rather than failing.
	all, err := db.ListSessions(0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestRecordRepUnknownSessionFails(t *testing.T) {
	t.Parallel()

	// The reps table has a foreign key back to sessions.
	db := testDB(t)
	err := db.RecordRep("no-such-session", 1, time.Now(), true)
	assert.Error(t, err)
}
