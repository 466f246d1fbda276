// Package mock provides an in-memory implementation of the database
// interfaces for testing.
package mock

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kozaktomas/face-attendance/internal/database"
	"github.com/kozaktomas/face-attendance/internal/recognition"
)

// Store is a thread-safe in-memory database.Store with error injection.
type Store struct {
	mu         sync.RWMutex
	identities []database.StoredIdentity
	records    []database.AttendanceRecord
	ids        database.RecordIDGenerator

	// Error injection
	SaveIdentityError   error
	ListIdentitiesError error
	AppendError         error
	ListError           error
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{}
}

// SaveIdentity stores a new identity entry.
func (s *Store) SaveIdentity(ctx context.Context, id database.StoredIdentity) error {
	if s.SaveIdentityError != nil {
		return s.SaveIdentityError
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identities = append(s.identities, id)
	return nil
}

// ListIdentities returns all identities in registration order.
func (s *Store) ListIdentities(ctx context.Context) ([]database.StoredIdentity, error) {
	if s.ListIdentitiesError != nil {
		return nil, s.ListIdentitiesError
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]database.StoredIdentity(nil), s.identities...), nil
}

// CountIdentities returns the number of stored identities.
func (s *Store) CountIdentities(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.identities), nil
}

// Append stores one attendance record under the lock, so concurrent
// appends never lose records.
func (s *Store) Append(ctx context.Context, name string, ts time.Time) (database.AttendanceRecord, error) {
	if s.AppendError != nil {
		return database.AttendanceRecord{}, s.AppendError
	}

	rec := database.AttendanceRecord{
		ID:        s.ids.Next(name, ts),
		Name:      name,
		Timestamp: ts,
	}
	rec.DeriveDisplayFields()

	s.mu.Lock()
	s.records = append(s.records, rec)
	s.mu.Unlock()
	return rec, nil
}

// List returns all records, most recent first.
func (s *Store) List(ctx context.Context) ([]database.AttendanceRecord, error) {
	if s.ListError != nil {
		return nil, s.ListError
	}
	s.mu.RLock()
	out := append([]database.AttendanceRecord(nil), s.records...)
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

// ListByName returns the records matching the normalized name, most recent first.
func (s *Store) ListByName(ctx context.Context, name string) ([]database.AttendanceRecord, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	want := recognition.NormalizeName(name)
	var out []database.AttendanceRecord
	for _, r := range all {
		if recognition.NormalizeName(r.Name) == want {
			out = append(out, r)
		}
	}
	return out, nil
}

// CountAttendance returns the number of records.
func (s *Store) CountAttendance(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}
