package detector

import (
	"context"
	"sync"

	"github.com/kozaktomas/face-attendance/internal/recognition"
)

// Static replays a fixed sequence of frames, then reports empty frames.
// Useful for tests and for driving the pipeline from recorded data.
type Static struct {
	mu     sync.Mutex
	frames [][]recognition.DetectionEvent
	pos    int
	closed bool
}

// NewStatic creates a detector that yields the given frames in order.
func NewStatic(frames ...[]recognition.DetectionEvent) *Static {
	return &Static{frames: frames}
}

// Detect returns the next frame, or an empty frame once exhausted.
func (s *Static) Detect(ctx context.Context) ([]recognition.DetectionEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pos >= len(s.frames) {
		return nil, nil
	}
	frame := s.frames[s.pos]
	s.pos++
	return frame, nil
}

// Exhausted reports whether all frames have been consumed.
func (s *Static) Exhausted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos >= len(s.frames)
}

// Close marks the detector closed.
func (s *Static) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Closed reports whether Close was called.
func (s *Static) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
