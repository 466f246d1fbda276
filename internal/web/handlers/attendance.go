package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/kozaktomas/face-attendance/internal/database"
	"github.com/kozaktomas/face-attendance/internal/export"
)

// AttendanceHandler serves the attendance ledger endpoints.
type AttendanceHandler struct {
	store database.AttendanceStore
}

// NewAttendanceHandler creates an attendance handler backed by the given store.
func NewAttendanceHandler(store database.AttendanceStore) *AttendanceHandler {
	return &AttendanceHandler{store: store}
}

// List handles GET /attendance. Records come back most recent first; an
// optional ?name= query filters by normalized name.
func (h *AttendanceHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		records []database.AttendanceRecord
		err     error
	)
	if name := r.URL.Query().Get("name"); name != "" {
		records, err = h.store.ListByName(r.Context(), name)
	} else {
		records, err = h.store.List(r.Context())
	}
	if err != nil {
		log.Printf("listing attendance: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to read attendance records")
		return
	}
	if records == nil {
		records = []database.AttendanceRecord{}
	}
	respondJSON(w, http.StatusOK, records)
}

// createRequest is the POST /attendance body.
type createRequest struct {
	Name      string `json:"name"`
	Timestamp string `json:"timestamp"`
}

// Create handles POST /attendance: a manual ledger append with a
// client-supplied ISO-8601 timestamp. The server assigns the id.
func (h *AttendanceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	ts, err := parseTimestamp(req.Timestamp)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := h.store.Append(r.Context(), req.Name, ts)
	if err != nil {
		log.Printf("appending attendance for %s: %v", sanitizeForLog(req.Name), err)
		respondError(w, http.StatusInternalServerError, "failed to store attendance record")
		return
	}
	respondJSON(w, http.StatusCreated, rec)
}

// Export handles GET /attendance/export: the full ledger as a
// BOM-prefixed CSV download.
func (h *AttendanceHandler) Export(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.List(r.Context())
	if err != nil {
		log.Printf("exporting attendance: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to read attendance records")
		return
	}

	filename := export.Filename(time.Now())
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)

	if err := export.WriteCSV(w, records); err != nil {
		// Headers are already out; all we can do is log.
		log.Printf("writing CSV export: %v", err)
	}
}

// parseTimestamp accepts ISO-8601 timestamps with or without sub-second
// precision.
func parseTimestamp(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, fmt.Errorf("timestamp is required")
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("timestamp must be ISO-8601, got %q", s)
}
