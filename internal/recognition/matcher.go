package recognition

import (
	"fmt"
	"math"
)

// Matcher is a nearest-neighbor classifier over one registry snapshot.
// It is immutable after construction; build a new one when the registry
// changes. Classification scans every entry in registration order, which
// keeps the argmin stable: the earliest-registered entry wins exact ties.
type Matcher struct {
	entries   []Identity
	dim       int
	threshold float64
	version   uint64
}

// NewMatcher builds a matcher from a registry snapshot. The version tags
// which registry state the matcher was built from.
func NewMatcher(snapshot []Identity, dim int, threshold float64, version uint64) *Matcher {
	return &Matcher{
		entries:   snapshot,
		dim:       dim,
		threshold: threshold,
		version:   version,
	}
}

// Version returns the registry version this matcher was built from.
func (m *Matcher) Version() uint64 {
	return m.version
}

// Classify resolves a query embedding to the nearest registered identity,
// or Unknown when the registry is empty or the nearest entry is at or
// beyond the threshold. The reported distance is always the true minimum
// found (+Inf for an empty registry).
func (m *Matcher) Classify(embedding []float32) (MatchResult, error) {
	if len(embedding) != m.dim {
		return MatchResult{}, fmt.Errorf("%w: query has %d dimensions, matcher expects %d",
			ErrDimensionMismatch, len(embedding), m.dim)
	}

	best := math.Inf(1)
	bestName := ""
	for i := range m.entries {
		// Strict less-than keeps the first-registered entry on exact ties.
		if d := EuclideanDistance(embedding, m.entries[i].Embedding); d < best {
			best = d
			bestName = m.entries[i].Name
		}
	}

	label := UnknownLabel
	if bestName != "" && best < m.threshold {
		label = bestName
	}

	return MatchResult{
		Label:      label,
		Distance:   best,
		Confidence: 1 - best,
	}, nil
}
