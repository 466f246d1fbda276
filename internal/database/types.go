// Package database defines the storage contracts shared by all backends:
// identity persistence and the append-only attendance ledger.
package database

import (
	"time"
)

// StoredIdentity represents a reference embedding persisted by a backend.
type StoredIdentity struct {
	UID       string
	Name      string
	Embedding []float32
	Dim       int
	CreatedAt time.Time
}

// AttendanceRecord is one accepted attendance event. Records are
// append-only and never mutated after creation. Date and Time are
// display strings derived from Timestamp at write time using the
// server's local timezone.
type AttendanceRecord struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp"`
	Date      string    `json:"date,omitempty"`
	Time      string    `json:"time,omitempty"`
}

// DeriveDisplayFields fills the Date and Time display strings from the
// record timestamp.
func (r *AttendanceRecord) DeriveDisplayFields() {
	r.Date = r.Timestamp.Local().Format("2006-01-02")
	r.Time = r.Timestamp.Local().Format("15:04:05")
}
