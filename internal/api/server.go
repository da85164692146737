// Package api exposes the live tracking session over HTTP. It is a thin
// collaborator around the pose engine: one frame in per POST, session
// snapshots out, persisted history on the side.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/repform-data/form.report/internal/db"
	"github.com/repform-data/form.report/internal/monitoring"
	"github.com/repform-data/form.report/internal/pose"
	"github.com/repform-data/form.report/internal/timeutil"
)

// Server serves the session API for one engine instance.
type Server struct {
	engine *pose.Engine
	store  *db.DB // may be nil: persistence endpoints report 503
	clock  timeutil.Clock
}

// NewServer creates an API server. A nil clock falls back to the real clock.
func NewServer(engine *pose.Engine, store *db.DB, clock timeutil.Clock) *Server {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Server{
		engine: engine,
		store:  store,
		clock:  clock,
	}
}

// RegisterRoutes attaches all API handlers to the mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/frames", s.handleFrames)
	mux.HandleFunc("/api/session", s.handleSession)
	mux.HandleFunc("/api/session/reset", s.handleReset)
	mux.HandleFunc("/api/sessions", s.handleSessions)
	mux.HandleFunc("/healthz", s.handleHealthz)
}

// Frame is the wire format of one pose frame posted by the estimator glue.
type Frame struct {
	// TimestampMs is the capture time in Unix milliseconds; zero means
	// "stamp on arrival".
	TimestampMs int64     `json:"timestamp_ms,omitempty"`
	Pose        pose.Pose `json:"pose"`
}

// CaptureTime resolves the frame's capture time against the given clock.
func (f *Frame) CaptureTime(clock timeutil.Clock) time.Time {
	if f.TimestampMs > 0 {
		return time.UnixMilli(f.TimestampMs)
	}
	return clock.Now()
}

// handleFrames accepts one pose frame and returns the full pipeline result.
func (s *Server) handleFrames(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var frame Frame
	if err := json.NewDecoder(r.Body).Decode(&frame); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, "invalid frame JSON: "+err.Error())
		return
	}
	if len(frame.Pose.Landmarks) == 0 {
		s.writeJSONError(w, http.StatusBadRequest, "frame has no landmarks")
		return
	}

	result := s.engine.ProcessFrame(&frame.Pose, frame.CaptureTime(s.clock))
	// The smoothed pose is large and the UI polls /api/session for state;
	// keep the frame response light.
	result.Smoothed = nil
	s.writeJSON(w, http.StatusOK, result)
}

// handleSession returns the current session snapshot.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "GET required")
		return
	}
	s.writeJSON(w, http.StatusOK, s.engine.Snapshot())
}

// handleReset clears all session state.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	s.engine.Reset()
	monitoring.Logf("session reset via API")
	s.writeJSON(w, http.StatusOK, s.engine.Snapshot())
}

// handleSessions lists persisted sessions, newest first. Query param
// "limit" caps the result (default 50).
func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "GET required")
		return
	}
	if s.store == nil {
		s.writeJSONError(w, http.StatusServiceUnavailable, "session persistence not configured")
		return
	}

	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 500 {
			limit = v
		}
	}

	sessions, err := s.store.ListSessions(limit)
	if err != nil {
		monitoring.Logf("failed to list sessions: %v", err)
		s.writeJSONError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}
	if sessions == nil {
		sessions = []*db.Session{}
	}
	s.writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		monitoring.Logf("failed to encode response: %v", err)
	}
}

func (s *Server) writeJSONError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
