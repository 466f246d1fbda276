package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kozaktomas/face-attendance/internal/recognition"
)

// SessionStatus represents the lifecycle state of a recognition session.
type SessionStatus string

// Session lifecycle states.
const (
	SessionStatusRunning SessionStatus = "running"
	SessionStatusStopped SessionStatus = "stopped"
	SessionStatusFailed  SessionStatus = "failed"
)

// Session is one continuous recognition loop against a detector.
type Session struct {
	id        string
	startedAt time.Time
	cancel    context.CancelFunc

	mu        sync.RWMutex
	status    SessionStatus
	stoppedAt *time.Time
	errMsg    string
}

// SessionView is the JSON shape of a session.
type SessionView struct {
	ID        string        `json:"id"`
	Status    SessionStatus `json:"status"`
	StartedAt time.Time     `json:"started_at"`
	StoppedAt *time.Time    `json:"stopped_at,omitempty"`
	Error     string        `json:"error,omitempty"`
}

func (s *Session) view() SessionView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SessionView{
		ID:        s.id,
		Status:    s.status,
		StartedAt: s.startedAt,
		StoppedAt: s.stoppedAt,
		Error:     s.errMsg,
	}
}

func (s *Session) running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status == SessionStatusRunning
}

func (s *Session) finish(status SessionStatus, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != SessionStatusRunning {
		return
	}
	now := time.Now()
	s.status = status
	s.stoppedAt = &now
	s.errMsg = errMsg
}

// SessionManager tracks running recognition sessions.
type SessionManager struct {
	sessions map[string]*Session
	mu       sync.RWMutex
}

// NewSessionManager creates a session manager.
func NewSessionManager() *SessionManager {
	return &SessionManager{sessions: make(map[string]*Session)}
}

func (m *SessionManager) add(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.id] = s
}

// Get retrieves a session by id, or nil.
func (m *SessionManager) Get(id string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[id]
}

// List returns all sessions.
func (m *SessionManager) List() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out
}

// Running reports whether any session is still running.
func (m *SessionManager) Running() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.sessions {
		if s.running() {
			return true
		}
	}
	return false
}

// StopAll cancels every running session. Used during shutdown.
func (m *SessionManager) StopAll() {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.sessions {
		s.cancel()
	}
}

// SessionsHandler manages recognition sessions over HTTP. A session owns
// the periodic detection loop; only one may run at a time because the
// pipeline's drop-frame guard is per process.
type SessionsHandler struct {
	pipeline    *recognition.Pipeline
	manager     *SessionManager
	newDetector func() recognition.Detector
}

// NewSessionsHandler creates a sessions handler. newDetector builds a
// fresh detector connection per session.
func NewSessionsHandler(pipeline *recognition.Pipeline, manager *SessionManager, newDetector func() recognition.Detector) *SessionsHandler {
	return &SessionsHandler{pipeline: pipeline, manager: manager, newDetector: newDetector}
}

// Start handles POST /sessions: spawns a recognition loop that runs
// until cancelled.
func (h *SessionsHandler) Start(w http.ResponseWriter, r *http.Request) {
	if h.manager.Running() {
		respondError(w, http.StatusConflict, "a recognition session is already running")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	session := &Session{
		id:        uuid.NewString(),
		status:    SessionStatusRunning,
		startedAt: time.Now(),
		cancel:    cancel,
	}
	h.manager.add(session)

	go func() {
		err := h.pipeline.Run(ctx, h.newDetector())
		if err != nil && ctx.Err() == nil {
			session.finish(SessionStatusFailed, err.Error())
			return
		}
		session.finish(SessionStatusStopped, "")
	}()

	respondJSON(w, http.StatusCreated, session.view())
}

// sessionDetail is the GET /sessions/{id} response.
type sessionDetail struct {
	SessionView
	Stats recognition.Stats `json:"stats"`
}

// Get handles GET /sessions/{id}: session state plus pipeline counters.
func (h *SessionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	session := h.manager.Get(chi.URLParam(r, "id"))
	if session == nil {
		respondError(w, http.StatusNotFound, "session not found")
		return
	}
	respondJSON(w, http.StatusOK, sessionDetail{
		SessionView: session.view(),
		Stats:       h.pipeline.Stats(),
	})
}

// List handles GET /sessions.
func (h *SessionsHandler) List(w http.ResponseWriter, r *http.Request) {
	sessions := h.manager.List()
	out := make([]SessionView, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, s.view())
	}
	respondJSON(w, http.StatusOK, out)
}

// Stop handles DELETE /sessions/{id}: cancels the recognition loop.
func (h *SessionsHandler) Stop(w http.ResponseWriter, r *http.Request) {
	session := h.manager.Get(chi.URLParam(r, "id"))
	if session == nil {
		respondError(w, http.StatusNotFound, "session not found")
		return
	}
	session.cancel()
	respondJSON(w, http.StatusOK, map[string]string{"status": "stopping"})
}
