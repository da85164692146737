package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/repform-data/form.report/internal/pose"
)

// Session is one persisted tracking session.
type Session struct {
	SessionID  string     `json:"session_id"`
	Exercise   string     `json:"exercise"`
	StartedAt  time.Time  `json:"started_at"`
	EndedAt    *time.Time `json:"ended_at,omitempty"`
	FrameCount int        `json:"frame_count"`
	RepCount   int        `json:"rep_count"`
	AvgScore   *float64   `json:"avg_score,omitempty"`
}

// Rep is one counted repetition within a session.
type Rep struct {
	RepID     string    `json:"rep_id"`
	SessionID string    `json:"session_id"`
	RepIndex  int       `json:"rep_index"`
	CountedAt time.Time `json:"counted_at"`
	Valid     bool      `json:"valid"`
}

// IssueRecord is one persisted form issue.
type IssueRecord struct {
	IssueID    string    `json:"issue_id"`
	SessionID  string    `json:"session_id"`
	Phase      string    `json:"phase"`
	CheckID    string    `json:"check_id"`
	Severity   string    `json:"severity"`
	BodyPart   string    `json:"body_part"`
	Message    string    `json:"message"`
	ObservedAt time.Time `json:"observed_at"`
}

// CreateSession inserts a new session row and returns its generated ID.
func (db *DB) CreateSession(exercise string, startedAt time.Time) (string, error) {
	id := uuid.NewString()
	_, err := db.Exec(
		`INSERT INTO sessions (session_id, exercise, started_unix_ns) VALUES (?, ?, ?)`,
		id, exercise, startedAt.UnixNano(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	return id, nil
}

// FinishSession closes out a session with its final counters.
func (db *DB) FinishSession(sessionID string, endedAt time.Time, frameCount, repCount int, avgScore float64) error {
	res, err := db.Exec(
		`UPDATE sessions SET ended_unix_ns = ?, frame_count = ?, rep_count = ?, avg_score = ? WHERE session_id = ?`,
		endedAt.UnixNano(), frameCount, repCount, avgScore, sessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to finish session: %w", err)
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return fmt.Errorf("no session with id %s", sessionID)
	}
	return nil
}

// RecordRep inserts one counted repetition.
func (db *DB) RecordRep(sessionID string, repIndex int, countedAt time.Time, valid bool) error {
	_, err := db.Exec(
		`INSERT INTO reps (rep_id, session_id, rep_index, counted_unix_ns, valid) VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), sessionID, repIndex, countedAt.UnixNano(), valid,
	)
	if err != nil {
		return fmt.Errorf("failed to record rep %d: %w", repIndex, err)
	}
	return nil
}

// RecordIssues inserts a batch of form issues observed at one instant.
func (db *DB) RecordIssues(sessionID string, issues []pose.FormIssue, observedAt time.Time) error {
	if len(issues) == 0 {
		return nil
	}
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin issue transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO form_issues (issue_id, session_id, phase, check_id, severity, body_part, message, observed_unix_ns)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("failed to prepare issue insert: %w", err)
	}
	defer stmt.Close()

	for _, issue := range issues {
		if _, err := stmt.Exec(
			uuid.NewString(), sessionID, string(issue.Phase), issue.ID,
			string(issue.Severity), issue.BodyPart, issue.Message, observedAt.UnixNano(),
		); err != nil {
			return fmt.Errorf("failed to record issue %s: %w", issue.ID, err)
		}
	}
	return tx.Commit()
}

// GetSession fetches one session by ID.
func (db *DB) GetSession(sessionID string) (*Session, error) {
	row := db.QueryRow(
		`SELECT session_id, exercise, started_unix_ns, ended_unix_ns, frame_count, rep_count, avg_score
		 FROM sessions WHERE session_id = ?`, sessionID,
	)
	s, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no session with id %s", sessionID)
	}
	return s, err
}

// ListSessions returns the most recent sessions, newest first.
func (db *DB) ListSessions(limit int) ([]*Session, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Query(
		`SELECT session_id, exercise, started_unix_ns, ended_unix_ns, frame_count, rep_count, avg_score
		 FROM sessions ORDER BY started_unix_ns DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// ListReps returns the counted reps of a session in order.
func (db *DB) ListReps(sessionID string) ([]*Rep, error) {
	rows, err := db.Query(
		`SELECT rep_id, session_id, rep_index, counted_unix_ns, valid
		 FROM reps WHERE session_id = ? ORDER BY rep_index`, sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list reps: %w", err)
	}
	defer rows.Close()

	var reps []*Rep
	for rows.Next() {
		var r Rep
		var countedNanos int64
		if err := rows.Scan(&r.RepID, &r.SessionID, &r.RepIndex, &countedNanos, &r.Valid); err != nil {
			return nil, fmt.Errorf("failed to scan rep: %w", err)
		}
		r.CountedAt = time.Unix(0, countedNanos)
		reps = append(reps, &r)
	}
	return reps, rows.Err()
}

// IssueBreakdown returns the per-check issue counts of a session.
func (db *DB) IssueBreakdown(sessionID string) (map[string]int, error) {
	rows, err := db.Query(
		`SELECT check_id, COUNT(*) FROM form_issues WHERE session_id = ? GROUP BY check_id`, sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query issue breakdown: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var checkID string
		var n int
		if err := rows.Scan(&checkID, &n); err != nil {
			return nil, fmt.Errorf("failed to scan issue count: %w", err)
		}
		counts[checkID] = n
	}
	return counts, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*Session, error) {
	var s Session
	var startedNanos int64
	var endedNanos sql.NullInt64
	var avgScore sql.NullFloat64
	if err := row.Scan(&s.SessionID, &s.Exercise, &startedNanos, &endedNanos, &s.FrameCount, &s.RepCount, &avgScore); err != nil {
		return nil, err
	}
	s.StartedAt = time.Unix(0, startedNanos)
	if endedNanos.Valid {
		t := time.Unix(0, endedNanos.Int64)
		s.EndedAt = &t
	}
	if avgScore.Valid {
		s.AvgScore = &avgScore.Float64
	}
	return &s, nil
}
