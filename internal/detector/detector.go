// Package detector provides recognition.Detector implementations. The
// camera and the embedding model are external collaborators; detectors
// only hand the core fixed-length vectors.
package detector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kozaktomas/face-attendance/internal/recognition"
)

const defaultServiceURL = "http://localhost:8000"

// Service polls an external face-embedding service over HTTP. One call
// to Detect asks the service for the faces in its current frame; the
// service runs the camera and the model and replies with one embedding
// per face.
type Service struct {
	baseURL string
	client  *http.Client
}

// NewService creates a detector client for the embedding service.
func NewService(baseURL string, timeout time.Duration) *Service {
	if baseURL == "" {
		baseURL = defaultServiceURL
	}
	return &Service{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// detectResponse is the embedding service's reply for one frame.
type detectResponse struct {
	Faces []struct {
		Embedding  []float32 `json:"embedding"`
		ObservedAt string    `json:"observed_at,omitempty"`
	} `json:"faces"`
}

// Detect fetches the faces in the service's current frame. Faces missing
// an observation timestamp get the local receive time.
func (s *Service) Detect(ctx context.Context) ([]recognition.DetectionEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/detect", bytes.NewReader([]byte("{}")))
	if err != nil {
		return nil, fmt.Errorf("creating detect request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling embedding service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("embedding service returned %d: %s", resp.StatusCode, string(body))
	}

	var parsed detectResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding detect response: %w", err)
	}

	now := time.Now()
	events := make([]recognition.DetectionEvent, 0, len(parsed.Faces))
	for _, f := range parsed.Faces {
		observed := now
		if f.ObservedAt != "" {
			if t, err := time.Parse(time.RFC3339, f.ObservedAt); err == nil {
				observed = t
			}
		}
		events = append(events, recognition.DetectionEvent{
			Embedding:  f.Embedding,
			ObservedAt: observed,
		})
	}
	return events, nil
}

// Close releases the client's idle connections. The camera itself
// belongs to the external service.
func (s *Service) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
