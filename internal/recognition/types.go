// Package recognition implements the face-recognition attendance core:
// a registry of named reference embeddings, a nearest-neighbor matcher,
// a per-identity cooldown gate, and the periodic pipeline that ties them
// to a durable attendance store.
package recognition

import (
	"encoding/json"
	"math"
	"time"
)

// UnknownLabel is the sentinel returned when no registered identity is
// within the match threshold of a query embedding.
const UnknownLabel = "Unknown"

// Identity is a single named reference embedding. Registering the same
// name twice creates two independent entries; samples are never merged.
type Identity struct {
	UID          string
	Name         string
	Embedding    []float32
	RegisteredAt time.Time
}

// DetectionEvent is one face observation handed to the pipeline by an
// external detector. Consumed exactly once.
type DetectionEvent struct {
	Embedding  []float32
	ObservedAt time.Time
}

// MatchResult is the outcome of classifying one embedding against the
// registry. Confidence is derived as 1 - distance and is informational
// only; it is not a calibrated probability and can go negative.
type MatchResult struct {
	Label      string  `json:"label"`
	Distance   float64 `json:"distance"`
	Confidence float64 `json:"confidence"`
}

// IsUnknown reports whether the result did not resolve to a registered identity.
func (r MatchResult) IsUnknown() bool {
	return r.Label == UnknownLabel
}

// MarshalJSON encodes non-finite distances as null. An empty registry or
// a dimension mismatch yields an infinite distance, which JSON cannot
// represent.
func (r MatchResult) MarshalJSON() ([]byte, error) {
	type view struct {
		Label      string   `json:"label"`
		Distance   *float64 `json:"distance"`
		Confidence *float64 `json:"confidence"`
	}
	v := view{Label: r.Label}
	if !math.IsInf(r.Distance, 0) && !math.IsNaN(r.Distance) {
		v.Distance = &r.Distance
		v.Confidence = &r.Confidence
	}
	return json.Marshal(v)
}
