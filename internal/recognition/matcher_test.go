package recognition

import (
	"errors"
	"math"
	"testing"
)

func buildMatcher(t *testing.T, threshold float64, entries ...Identity) *Matcher {
	t.Helper()
	dim := 2
	if len(entries) > 0 {
		dim = len(entries[0].Embedding)
	}
	return NewMatcher(entries, dim, threshold, 1)
}

func TestClassifyEmptyRegistry(t *testing.T) {
	m := buildMatcher(t, 0.6)

	res, err := m.Classify([]float32{1, 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.IsUnknown() {
		t.Errorf("expected Unknown on empty registry, got %q", res.Label)
	}
	if !math.IsInf(res.Distance, 1) {
		t.Errorf("expected +Inf distance on empty registry, got %f", res.Distance)
	}
}

func TestClassifyNearestWithinThreshold(t *testing.T) {
	m := buildMatcher(t, 0.6,
		Identity{Name: "Alice", Embedding: []float32{0, 0}},
		Identity{Name: "Bob", Embedding: []float32{10, 10}},
	)

	res, err := m.Classify([]float32{0.1, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Label != "Alice" {
		t.Errorf("expected Alice, got %q", res.Label)
	}
	if math.Abs(res.Distance-0.1) > 1e-6 {
		t.Errorf("expected distance 0.1, got %f", res.Distance)
	}
	if math.Abs(res.Confidence-0.9) > 1e-6 {
		t.Errorf("expected confidence 0.9, got %f", res.Confidence)
	}
}

func TestClassifyBeyondThresholdIsUnknown(t *testing.T) {
	m := buildMatcher(t, 0.6,
		Identity{Name: "Alice", Embedding: []float32{0, 0}},
	)

	res, err := m.Classify([]float32{3, 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.IsUnknown() {
		t.Errorf("expected Unknown beyond threshold, got %q", res.Label)
	}
	if math.Abs(res.Distance-5) > 1e-6 {
		t.Errorf("expected true minimal distance 5 to be reported, got %f", res.Distance)
	}
}

func TestClassifyDistanceAtThresholdIsUnknown(t *testing.T) {
	m := buildMatcher(t, 1.0,
		Identity{Name: "Alice", Embedding: []float32{0, 0}},
	)

	// Exactly at the threshold must not match.
	res, err := m.Classify([]float32{1, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.IsUnknown() {
		t.Errorf("expected Unknown at threshold boundary, got %q", res.Label)
	}
}

func TestClassifyTieBreakByRegistrationOrder(t *testing.T) {
	// Two entries at the same embedding: the first-registered wins.
	m := buildMatcher(t, 0.6,
		Identity{Name: "First", Embedding: []float32{1, 1}},
		Identity{Name: "Second", Embedding: []float32{1, 1}},
	)

	res, err := m.Classify([]float32{1, 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Label != "First" {
		t.Errorf("expected first-registered entry to win tie, got %q", res.Label)
	}
}

func TestClassifyDimensionMismatch(t *testing.T) {
	m := buildMatcher(t, 0.6,
		Identity{Name: "Alice", Embedding: []float32{0, 0}},
	)

	_, err := m.Classify([]float32{1, 2, 3})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestConfidenceCanGoNegative(t *testing.T) {
	m := buildMatcher(t, 10,
		Identity{Name: "Alice", Embedding: []float32{0, 0}},
	)

	res, err := m.Classify([]float32{3, 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Confidence != -4 {
		t.Errorf("expected confidence 1-5 = -4, got %f", res.Confidence)
	}
}
