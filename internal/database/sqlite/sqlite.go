// Package sqlite provides a single-file storage backend built on the
// pure-Go modernc.org/sqlite driver. It is the default backend when no
// PostgreSQL URL is configured.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kozaktomas/face-attendance/internal/database"
	"github.com/kozaktomas/face-attendance/internal/recognition"
)

const schema = `
CREATE TABLE IF NOT EXISTS identities (
	seq             INTEGER PRIMARY KEY AUTOINCREMENT,
	uid             TEXT NOT NULL UNIQUE,
	name            TEXT NOT NULL,
	normalized_name TEXT NOT NULL,
	embedding       BLOB NOT NULL,
	dim             INTEGER NOT NULL,
	created_at      INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS attendance (
	id              TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	normalized_name TEXT NOT NULL,
	ts_nanos        INTEGER NOT NULL,
	display_date    TEXT NOT NULL,
	display_time    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_attendance_ts ON attendance (ts_nanos DESC);
CREATE INDEX IF NOT EXISTS idx_attendance_name ON attendance (normalized_name);
`

// Store implements database.Store on a local sqlite file. sqlite allows
// a single writer, so the connection pool is capped at one connection;
// every Append is a single INSERT, never a read-modify-write.
type Store struct {
	db  *sql.DB
	ids database.RecordIDGenerator
}

// Open opens (or creates) the sqlite database at path and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying sqlite schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database file.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("closing sqlite database: %w", err)
	}
	return nil
}

// SaveIdentity stores a new identity entry.
func (s *Store) SaveIdentity(ctx context.Context, id database.StoredIdentity) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO identities (uid, name, normalized_name, embedding, dim, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		id.UID, id.Name, recognition.NormalizeName(id.Name),
		encodeEmbedding(id.Embedding), id.Dim, id.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("inserting identity: %w", err)
	}
	return nil
}

// ListIdentities returns all identities in registration order.
func (s *Store) ListIdentities(ctx context.Context) ([]database.StoredIdentity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT uid, name, embedding, dim, created_at
		FROM identities ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying identities: %w", err)
	}
	defer rows.Close()

	var out []database.StoredIdentity
	for rows.Next() {
		var id database.StoredIdentity
		var blob []byte
		var nanos int64
		if err := rows.Scan(&id.UID, &id.Name, &blob, &id.Dim, &nanos); err != nil {
			return nil, fmt.Errorf("scanning identity: %w", err)
		}
		id.Embedding = decodeEmbedding(blob)
		id.CreatedAt = time.Unix(0, nanos)
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
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM identities").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting identities: %w", err)
	}
	return n, nil
}

// Append durably stores one attendance record. The id combines the name
// slug, unix milliseconds, and a monotonic counter, so concurrent
// same-millisecond accepts still get distinct ids.
func (s *Store) Append(ctx context.Context, name string, ts time.Time) (database.AttendanceRecord, error) {
	rec := database.AttendanceRecord{
		ID:        s.ids.Next(name, ts),
		Name:      name,
		Timestamp: ts,
	}
	rec.DeriveDisplayFields()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attendance (id, name, normalized_name, ts_nanos, display_date, display_time)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Name, recognition.NormalizeName(rec.Name),
		ts.UnixNano(), rec.Date, rec.Time,
	)
	if err != nil {
		return database.AttendanceRecord{}, fmt.Errorf("inserting attendance record: %w", err)
	}
	return rec, nil
}

// List returns all records, most recent first.
func (s *Store) List(ctx context.Context) ([]database.AttendanceRecord, error) {
	return s.queryRecords(ctx, `
		SELECT id, name, ts_nanos, display_date, display_time
		FROM attendance ORDER BY ts_nanos DESC`)
}

// ListByName returns records matching the normalized name, most recent first.
func (s *Store) ListByName(ctx context.Context, name string) ([]database.AttendanceRecord, error) {
	return s.queryRecords(ctx, `
		SELECT id, name, ts_nanos, display_date, display_time
		FROM attendance WHERE normalized_name = ? ORDER BY ts_nanos DESC`,
		recognition.NormalizeName(name))
}

// CountAttendance returns the number of records.
func (s *Store) CountAttendance(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM attendance").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting attendance: %w", err)
	}
	return n, nil
}

func (s *Store) queryRecords(ctx context.Context, query string, args ...any) ([]database.AttendanceRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying attendance: %w", err)
	}
	defer rows.Close()

	var out []database.AttendanceRecord
	for rows.Next() {
		var rec database.AttendanceRecord
		var nanos int64
		if err := rows.Scan(&rec.ID, &rec.Name, &nanos, &rec.Date, &rec.Time); err != nil {
			return nil, fmt.Errorf("scanning attendance record: %w", err)
		}
		rec.Timestamp = time.Unix(0, nanos)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating attendance: %w", err)
	}
	return out, nil
}

// encodeEmbedding packs a float32 vector into a little-endian blob.
func encodeEmbedding(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// decodeEmbedding unpacks a little-endian blob into a float32 vector.
func decodeEmbedding(buf []byte) []float32 {
	v := make([]float32, len(buf)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return v
}
