// Package export renders attendance records into the CSV layout consumed
// by the attendance UI: a Name,Date,Time header, quoted fields, and a
// UTF-8 BOM so spreadsheet tools pick the right encoding.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kozaktomas/face-attendance/internal/database"
)

// utf8BOM is prepended so Excel detects UTF-8 instead of the locale codepage.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Filename returns the download filename for an export generated at t,
// e.g., attendance_log_2026-08-30.csv.
func Filename(t time.Time) string {
	return fmt.Sprintf("attendance_log_%s.csv", t.Local().Format("2006-01-02"))
}

// quote wraps a CSV field in double quotes, escaping embedded quotes.
// Every field is quoted regardless of content, matching the export
// layout the UI round-trips.
func quote(field string) string {
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

// WriteCSV writes records as BOM-prefixed CSV with a Name,Date,Time
// header, one row per record in the given order.
func WriteCSV(w io.Writer, records []database.AttendanceRecord) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("writing BOM: %w", err)
	}

	var b strings.Builder
	b.WriteString(`"Name","Date","Time"` + "\r\n")
	for _, rec := range records {
		date, tm := rec.Date, rec.Time
		if date == "" || tm == "" {
			date = rec.Timestamp.Local().Format("2006-01-02")
			tm = rec.Timestamp.Local().Format("15:04:05")
		}
		b.WriteString(quote(rec.Name) + "," + quote(date) + "," + quote(tm) + "\r\n")
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("writing rows: %w", err)
	}
	return nil
}
