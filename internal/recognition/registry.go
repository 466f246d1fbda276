package recognition

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry holds the named reference embeddings used to build matchers.
// It only ever grows: entries are immutable after registration and there
// is no removal or rename operation. Each registration bumps a version
// counter so consumers can tell when a cached matcher went stale.
type Registry struct {
	mu      sync.RWMutex
	dim     int
	entries []Identity
	version uint64
}

// NewRegistry creates an empty registry for embeddings of the given dimension.
func NewRegistry(dim int) *Registry {
	return &Registry{dim: dim}
}

// Register validates and appends a new identity entry. The embedding is
// copied, so callers may reuse their slice. The same name may be
// registered multiple times; every call creates an independent entry.
func (r *Registry) Register(name string, embedding []float32) (Identity, error) {
	if strings.TrimSpace(name) == "" {
		return Identity{}, fmt.Errorf("%w: name must not be empty", ErrInvalidInput)
	}
	if len(embedding) != r.dim {
		return Identity{}, fmt.Errorf("%w: embedding has %d dimensions, registry expects %d",
			ErrInvalidInput, len(embedding), r.dim)
	}

	id := Identity{
		UID:          uuid.NewString(),
		Name:         name,
		Embedding:    append([]float32(nil), embedding...),
		RegisteredAt: time.Now(),
	}

	r.mu.Lock()
	r.entries = append(r.entries, id)
	r.version++
	r.mu.Unlock()

	return id, nil
}

// Add appends an already-materialized identity, preserving its UID and
// registration time. Used when loading persisted identities at startup.
func (r *Registry) Add(id Identity) error {
	if strings.TrimSpace(id.Name) == "" {
		return fmt.Errorf("%w: name must not be empty", ErrInvalidInput)
	}
	if len(id.Embedding) != r.dim {
		return fmt.Errorf("%w: embedding has %d dimensions, registry expects %d",
			ErrInvalidInput, len(id.Embedding), r.dim)
	}

	r.mu.Lock()
	r.entries = append(r.entries, id)
	r.version++
	r.mu.Unlock()
	return nil
}

// Snapshot returns a consistent point-in-time copy of all entries in
// registration order. The returned slice is owned by the caller; the
// embeddings themselves are shared but never mutated.
func (r *Registry) Snapshot() []Identity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Identity(nil), r.entries...)
}

// Version returns the current registry version. It increases by one on
// every registration.
func (r *Registry) Version() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

// Len returns the number of registered entries.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Dimension returns the embedding length this registry accepts.
func (r *Registry) Dimension() int {
	return r.dim
}
