package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"

	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/database"
	"github.com/kozaktomas/face-attendance/internal/recognition"
)

// Store implements database.Store on PostgreSQL. Appends are single
// INSERT statements; the database serializes them, so no record is lost
// under concurrent writers.
type Store struct {
	pool *Pool
	ids  database.RecordIDGenerator
}

// NewStore connects to PostgreSQL and applies pending migrations.
func NewStore(cfg *config.DatabaseConfig) (*Store, error) {
	pool, err := NewPool(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating PostgreSQL pool: %w", err)
	}

	if err := pool.Migrate(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.pool.Close()
}

// SaveIdentity stores a new identity entry with its embedding vector.
func (s *Store) SaveIdentity(ctx context.Context, id database.StoredIdentity) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO identities (uid, name, normalized_name, embedding, dim, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		id.UID, id.Name, recognition.NormalizeName(id.Name),
		pgvector.NewVector(id.Embedding), id.Dim, id.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting identity: %w", err)
	}
	return nil
}

// ListIdentities returns all identities in registration order.
func (s *Store) ListIdentities(ctx context.Context) ([]database.StoredIdentity, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT uid, name, embedding, dim, created_at
		FROM identities ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying identities: %w", err)
	}
	defer rows.Close()

	var out []database.StoredIdentity
	for rows.Next() {
		var id database.StoredIdentity
		var vec pgvector.Vector
		if err := rows.Scan(&id.UID, &id.Name, &vec, &id.Dim, &id.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning identity: %w", err)
		}
		id.Embedding = vec.Slice()
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating identities: %w", err)
	}
	return out, nil
}

// CountIdentities returns the number of stored identities.
func (s *Store) CountIdentities(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM identities").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting identities: %w", err)
	}
	return n, nil
}

// Append durably stores one attendance record and returns it.
func (s *Store) Append(ctx context.Context, name string, ts time.Time) (database.AttendanceRecord, error) {
	rec := database.AttendanceRecord{
		ID:        s.ids.Next(name, ts),
		Name:      name,
		Timestamp: ts,
	}
	rec.DeriveDisplayFields()

	_, err := s.pool.Exec(ctx, `
		INSERT INTO attendance (id, name, normalized_name, ts, display_date, display_time)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.ID, rec.Name, recognition.NormalizeName(rec.Name),
		rec.Timestamp, rec.Date, rec.Time,
	)
	if err != nil {
		return database.AttendanceRecord{}, fmt.Errorf("inserting attendance record: %w", err)
	}
	return rec, nil
}

// List returns all records, most recent first.
func (s *Store) List(ctx context.Context) ([]database.AttendanceRecord, error) {
	return s.queryRecords(ctx, `
		SELECT id, name, ts, display_date, display_time
		FROM attendance ORDER BY ts DESC`)
}

// ListByName returns records matching the normalized name, most recent first.
func (s *Store) ListByName(ctx context.Context, name string) ([]database.AttendanceRecord, error) {
	return s.queryRecords(ctx, `
		SELECT id, name, ts, display_date, display_time
		FROM attendance WHERE normalized_name = $1 ORDER BY ts DESC`,
		recognition.NormalizeName(name))
}

// CountAttendance returns the number of records.
func (s *Store) CountAttendance(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM attendance").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting attendance: %w", err)
	}
	return n, nil
}

func (s *Store) queryRecords(ctx context.Context, query string, args ...any) ([]database.AttendanceRecord, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying attendance: %w", err)
	}
	defer rows.Close()

	var out []database.AttendanceRecord
	for rows.Next() {
		var rec database.AttendanceRecord
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Timestamp, &rec.Date, &rec.Time); err != nil {
			return nil, fmt.Errorf("scanning attendance record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating attendance: %w", err)
	}
	return out, nil
}
