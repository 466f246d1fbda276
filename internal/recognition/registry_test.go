package recognition

import (
	"errors"
	"sync"
	"testing"
)

func TestRegisterValidation(t *testing.T) {
	r := NewRegistry(3)

	tests := []struct {
		name      string
		person    string
		embedding []float32
	}{
		{"empty name", "", []float32{1, 2, 3}},
		{"whitespace name", "   ", []float32{1, 2, 3}},
		{"too short embedding", "Alice", []float32{1}},
		{"too long embedding", "Alice", []float32{1, 2, 3, 4}},
		{"nil embedding", "Alice", nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := r.Register(tc.person, tc.embedding); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}

	if r.Len() != 0 {
		t.Errorf("failed registrations must not add entries, got %d", r.Len())
	}
}

func TestRegisterAssignsUIDAndCopiesEmbedding(t *testing.T) {
	r := NewRegistry(2)
	emb := []float32{1, 2}

	id, err := r.Register("Alice", emb)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.UID == "" {
		t.Error("expected a generated UID")
	}

	// Mutating the caller's slice must not affect the registry.
	emb[0] = 99
	snap := r.Snapshot()
	if snap[0].Embedding[0] != 1 {
		t.Errorf("registry embedding was mutated through caller slice: %f", snap[0].Embedding[0])
	}
}

func TestSameNameCreatesSeparateEntries(t *testing.T) {
	r := NewRegistry(2)

	if _, err := r.Register("Alice", []float32{1, 0}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := r.Register("Alice", []float32{0, 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap := r.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("expected 2 independent entries, got %d", len(snap))
	}
	if snap[0].UID == snap[1].UID {
		t.Error("expected distinct UIDs for separate registrations")
	}
}

func TestVersionBumpsOnRegister(t *testing.T) {
	r := NewRegistry(1)

	v0 := r.Version()
	if _, err := r.Register("Alice", []float32{1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Version() != v0+1 {
		t.Errorf("expected version %d, got %d", v0+1, r.Version())
	}
}

func TestSnapshotIsolatedFromLaterRegistrations(t *testing.T) {
	r := NewRegistry(1)
	if _, err := r.Register("Alice", []float32{1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap := r.Snapshot()
	if _, err := r.Register("Bob", []float32{2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(snap) != 1 {
		t.Errorf("snapshot must be a point-in-time view, got %d entries", len(snap))
	}
}

func TestConcurrentRegistrations(t *testing.T) {
	r := NewRegistry(1)

	const n = 100
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := r.Register("Person", []float32{float32(i)}); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if r.Len() != n {
		t.Errorf("expected %d entries, got %d", n, r.Len())
	}
	if r.Version() != n {
		t.Errorf("expected version %d, got %d", n, r.Version())
	}
}
