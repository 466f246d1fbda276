package database

import (
	"context"
	"errors"
	"time"
)

// ErrStorageFailure wraps backend write/read errors so callers can map
// them to a 500 without inspecting driver-specific error types.
var ErrStorageFailure = errors.New("storage failure")

// IdentityStore persists registered identities so the registry survives
// restarts. Identities are insert-only; there is no delete or rename.
type IdentityStore interface {
	// SaveIdentity stores a new identity entry.
	SaveIdentity(ctx context.Context, id StoredIdentity) error
	// ListIdentities returns all identities in registration order (oldest first).
	ListIdentities(ctx context.Context) ([]StoredIdentity, error)
	// CountIdentities returns the total number of stored identities.
	CountIdentities(ctx context.Context) (int, error)
}

// AttendanceStore is the durable attendance ledger. Append must be safe
// under concurrent writers: no record may be lost and generated ids must
// be unique even for same-millisecond accepts of the same name. List
// reflects every Append that completed before the call returned.
type AttendanceStore interface {
	// Append durably stores one accepted event and returns the record
	// including its generated id.
	Append(ctx context.Context, name string, ts time.Time) (AttendanceRecord, error)
	// List returns all records sorted by timestamp descending (most recent first).
	List(ctx context.Context) ([]AttendanceRecord, error)
	// ListByName returns the records whose normalized name matches the
	// given name, most recent first.
	ListByName(ctx context.Context, name string) ([]AttendanceRecord, error)
	// CountAttendance returns the total number of records.
	CountAttendance(ctx context.Context) (int, error)
}

// Store is the full backend surface used by the server.
type Store interface {
	IdentityStore
	AttendanceStore

	Close() error
}
