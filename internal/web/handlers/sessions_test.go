package handlers

import (
	"context"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/face-attendance/internal/database/mock"
	"github.com/kozaktomas/face-attendance/internal/recognition"
)

// fakeDetector reports no faces and counts Close calls.
type fakeDetector struct {
	closed atomic.Bool
}

func (d *fakeDetector) Detect(ctx context.Context) ([]recognition.DetectionEvent, error) {
	return nil, nil
}

func (d *fakeDetector) Close() error {
	d.closed.Store(true)
	return nil
}

func createSessionsHandlerForTest(t *testing.T) (*SessionsHandler, *fakeDetector) {
	t.Helper()
	det := &fakeDetector{}
	pipeline := testPipeline(testRegistry(t, "Alice"), mock.NewStore())
	handler := NewSessionsHandler(pipeline, NewSessionManager(), func() recognition.Detector {
		return det
	})
	return handler, det
}

// routerFor mounts the handler under the real route patterns so
// chi.URLParam resolves.
func routerFor(handler *SessionsHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Post("/sessions", handler.Start)
	r.Get("/sessions", handler.List)
	r.Get("/sessions/{id}", handler.Get)
	r.Delete("/sessions/{id}", handler.Stop)
	return r
}

func TestSessionLifecycle(t *testing.T) {
	handler, det := createSessionsHandlerForTest(t)
	router := routerFor(handler)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest("POST", "/sessions", nil))
	assertStatusCode(t, recorder, 201)

	var created SessionView
	parseJSONResponse(t, recorder, &created)
	if created.ID == "" {
		t.Fatal("expected session id")
	}
	if created.Status != SessionStatusRunning {
		t.Errorf("expected running status, got %s", created.Status)
	}

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest("GET", "/sessions/"+created.ID, nil))
	assertStatusCode(t, recorder, 200)

	var detail struct {
		SessionView
		Stats recognition.Stats `json:"stats"`
	}
	parseJSONResponse(t, recorder, &detail)
	if detail.ID != created.ID {
		t.Errorf("expected session %s, got %s", created.ID, detail.ID)
	}

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest("DELETE", "/sessions/"+created.ID, nil))
	assertStatusCode(t, recorder, 200)

	waitForStatus(t, router, created.ID, SessionStatusStopped)
	if !det.closed.Load() {
		t.Error("expected detector to be closed after stop")
	}
}

func TestSessionStart_RejectsSecondSession(t *testing.T) {
	handler, _ := createSessionsHandlerForTest(t)
	router := routerFor(handler)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest("POST", "/sessions", nil))
	assertStatusCode(t, recorder, 201)

	var created SessionView
	parseJSONResponse(t, recorder, &created)

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest("POST", "/sessions", nil))
	assertStatusCode(t, recorder, 409)

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest("DELETE", "/sessions/"+created.ID, nil))
	assertStatusCode(t, recorder, 200)

	waitForStatus(t, router, created.ID, SessionStatusStopped)

	// After the first session stops, a new one may start.
	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest("POST", "/sessions", nil))
	assertStatusCode(t, recorder, 201)
}

func TestSessionGet_NotFound(t *testing.T) {
	handler, _ := createSessionsHandlerForTest(t)
	router := routerFor(handler)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest("GET", "/sessions/nope", nil))
	assertStatusCode(t, recorder, 404)

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest("DELETE", "/sessions/nope", nil))
	assertStatusCode(t, recorder, 404)
}

func TestSessionList(t *testing.T) {
	handler, _ := createSessionsHandlerForTest(t)
	router := routerFor(handler)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest("GET", "/sessions", nil))
	assertStatusCode(t, recorder, 200)

	var sessions []SessionView
	parseJSONResponse(t, recorder, &sessions)
	if len(sessions) != 0 {
		t.Errorf("expected no sessions, got %d", len(sessions))
	}

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest("POST", "/sessions", nil))
	assertStatusCode(t, recorder, 201)

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest("GET", "/sessions", nil))
	assertStatusCode(t, recorder, 200)

	parseJSONResponse(t, recorder, &sessions)
	if len(sessions) != 1 {
		t.Errorf("expected 1 session, got %d", len(sessions))
	}
}

// waitForStatus polls the session endpoint until the expected status
// shows up or the deadline passes.
func waitForStatus(t *testing.T, router *chi.Mux, id string, want SessionStatus) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest("GET", "/sessions/"+id, nil))

		var detail SessionView
		parseJSONResponse(t, recorder, &detail)
		if detail.Status == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("session %s never reached status %s", id, want)
}
