package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/kozaktomas/face-attendance/internal/database"
	"github.com/kozaktomas/face-attendance/internal/recognition"
)

// RecognizeHandler runs a single detection through the recognition pipeline.
type RecognizeHandler struct {
	pipeline *recognition.Pipeline
}

// NewRecognizeHandler creates a recognize handler.
func NewRecognizeHandler(pipeline *recognition.Pipeline) *RecognizeHandler {
	return &RecognizeHandler{pipeline: pipeline}
}

// recognizeRequest is the POST /recognize body. ObservedAt is optional;
// it defaults to the server clock.
type recognizeRequest struct {
	Embedding  []float32 `json:"embedding"`
	ObservedAt string    `json:"observed_at"`
}

type recognizeResponse struct {
	Match    recognition.MatchResult    `json:"match"`
	Accepted bool                       `json:"accepted"`
	Record   *database.AttendanceRecord `json:"record"`
}

// Recognize handles POST /recognize: classify one embedding, apply the
// cooldown gate, and persist the attendance record when accepted.
func (h *RecognizeHandler) Recognize(w http.ResponseWriter, r *http.Request) {
	var req recognizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if len(req.Embedding) == 0 {
		respondError(w, http.StatusBadRequest, "embedding is required")
		return
	}

	observedAt := time.Now()
	if req.ObservedAt != "" {
		ts, err := parseTimestamp(req.ObservedAt)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		observedAt = ts
	}

	outcome := h.pipeline.Process(r.Context(), recognition.DetectionEvent{
		Embedding:  req.Embedding,
		ObservedAt: observedAt,
	})
	if outcome.Err != nil && outcome.Accepted {
		// The sighting passed the gate but did not reach storage.
		respondError(w, http.StatusInternalServerError, "failed to store attendance record")
		return
	}

	respondJSON(w, http.StatusOK, recognizeResponse{
		Match:    outcome.Match,
		Accepted: outcome.Accepted,
		Record:   outcome.Record,
	})
}
