package detector

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestServiceDetect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/detect" {
			t.Errorf("expected /detect path, got %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"faces": []map[string]any{
				{"embedding": []float32{1, 2, 3}, "observed_at": "2026-08-30T10:00:00Z"},
				{"embedding": []float32{4, 5, 6}},
			},
		})
	}))
	defer server.Close()

	svc := NewService(server.URL, 5*time.Second)
	defer svc.Close()

	events, err := svc.Detect(context.Background())
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 detections, got %d", len(events))
	}
	if events[0].Embedding[2] != 3 {
		t.Errorf("unexpected embedding: %v", events[0].Embedding)
	}

	want := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	if !events[0].ObservedAt.Equal(want) {
		t.Errorf("expected observed_at %v, got %v", want, events[0].ObservedAt)
	}
	if events[1].ObservedAt.IsZero() {
		t.Error("expected fallback timestamp for face without observed_at")
	}
}

func TestServiceDetectErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "camera unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	svc := NewService(server.URL, 5*time.Second)
	defer svc.Close()

	if _, err := svc.Detect(context.Background()); err == nil {
		t.Error("expected error on non-200 response")
	}
}

func TestStaticDetector(t *testing.T) {
	s := NewStatic(nil, nil)

	ctx := context.Background()
	s.Detect(ctx)
	if s.Exhausted() {
		t.Error("expected one frame remaining")
	}
	s.Detect(ctx)
	if !s.Exhausted() {
		t.Error("expected detector exhausted")
	}

	frame, err := s.Detect(ctx)
	if err != nil || frame != nil {
		t.Errorf("expected empty frame after exhaustion, got %v, %v", frame, err)
	}

	s.Close()
	if !s.Closed() {
		t.Error("expected Closed to report true")
	}
}
