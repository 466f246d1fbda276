package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kozaktomas/face-attendance/internal/database/mock"
	"github.com/kozaktomas/face-attendance/internal/recognition"
)

const testDim = 4

// testRegistry builds a registry preloaded with the given names, each
// mapped to an axis-aligned embedding so distances are predictable.
func testRegistry(t *testing.T, names ...string) *recognition.Registry {
	t.Helper()
	reg := recognition.NewRegistry(testDim)
	for i, name := range names {
		emb := make([]float32, testDim)
		emb[i%testDim] = 1
		if _, err := reg.Register(name, emb); err != nil {
			t.Fatalf("registering %s: %v", name, err)
		}
	}
	return reg
}

// testPipeline wires a pipeline over a mock store with a short cooldown.
func testPipeline(reg *recognition.Registry, store *mock.Store) *recognition.Pipeline {
	gate := recognition.NewCooldownGate(5 * time.Minute)
	return recognition.NewPipeline(reg, gate, store, 0.6, 50*time.Millisecond)
}

// parseJSONResponse parses the recorder body into target.
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertContentType checks if the response has the expected content type
func assertContentType(t *testing.T, recorder *httptest.ResponseRecorder, expected string) {
	t.Helper()
	ct := recorder.Header().Get("Content-Type")
	if ct != expected {
		t.Errorf("expected Content-Type '%s', got '%s'", expected, ct)
	}
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}
