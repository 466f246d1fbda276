package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/kozaktomas/face-attendance/internal/database"
	"github.com/kozaktomas/face-attendance/internal/recognition"
)

// nearDuplicateWarnDistance flags registrations suspiciously close to an
// existing entry. Advisory only; duplicates are allowed by design.
const nearDuplicateWarnDistance = 0.15

// IdentitiesHandler serves identity registration and lookup.
type IdentitiesHandler struct {
	registry *recognition.Registry
	index    *recognition.IdentityIndex
	store    database.IdentityStore
}

// NewIdentitiesHandler creates an identities handler.
func NewIdentitiesHandler(registry *recognition.Registry, index *recognition.IdentityIndex, store database.IdentityStore) *IdentitiesHandler {
	return &IdentitiesHandler{registry: registry, index: index, store: store}
}

// identityResponse is the public view of a registry entry; embeddings
// stay server-side.
type identityResponse struct {
	UID          string    `json:"uid"`
	Name         string    `json:"name"`
	RegisteredAt time.Time `json:"registered_at"`
}

// registerRequest is the POST /identities body.
type registerRequest struct {
	Name      string    `json:"name"`
	Embedding []float32 `json:"embedding"`
}

// Register handles POST /identities: validates the entry, adds it to the
// in-memory registry, persists it, and updates the similarity index.
func (h *IdentitiesHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	id := recognition.Identity{
		UID:          uuid.NewString(),
		Name:         req.Name,
		Embedding:    req.Embedding,
		RegisteredAt: time.Now(),
	}

	if err := h.registry.Add(id); err != nil {
		if errors.Is(err, recognition.ErrInvalidInput) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to register identity")
		return
	}

	// Advisory near-duplicate warning; the entry is registered either way.
	if h.index.Count() > 0 {
		if near, distances, err := h.index.Search(req.Embedding, 1); err == nil && len(near) > 0 {
			if distances[0] < nearDuplicateWarnDistance {
				log.Printf("registration %s is very close (%.3f) to existing identity %s",
					sanitizeForLog(req.Name), distances[0], sanitizeForLog(near[0].Name))
			}
		}
	}
	h.index.Add(id, h.registry.Version())

	err := h.store.SaveIdentity(r.Context(), database.StoredIdentity{
		UID:       id.UID,
		Name:      id.Name,
		Embedding: id.Embedding,
		Dim:       len(id.Embedding),
		CreatedAt: id.RegisteredAt,
	})
	if err != nil {
		// The in-memory entry stays usable for this process; it will be
		// missing after a restart.
		log.Printf("persisting identity %s: %v", sanitizeForLog(id.Name), err)
		respondError(w, http.StatusInternalServerError, "failed to persist identity")
		return
	}

	respondJSON(w, http.StatusCreated, identityResponse{
		UID:          id.UID,
		Name:         id.Name,
		RegisteredAt: id.RegisteredAt,
	})
}

// List handles GET /identities.
func (h *IdentitiesHandler) List(w http.ResponseWriter, r *http.Request) {
	snap := h.registry.Snapshot()
	out := make([]identityResponse, 0, len(snap))
	for _, id := range snap {
		out = append(out, identityResponse{
			UID:          id.UID,
			Name:         id.Name,
			RegisteredAt: id.RegisteredAt,
		})
	}
	respondJSON(w, http.StatusOK, out)
}

// similarRequest is the POST /identities/similar body.
type similarRequest struct {
	Embedding []float32 `json:"embedding"`
	Limit     int       `json:"limit"`
}

// similarResult is one nearest-neighbor hit.
type similarResult struct {
	UID      string  `json:"uid"`
	Name     string  `json:"name"`
	Distance float64 `json:"distance"`
}

// Similar handles POST /identities/similar: approximate nearest-neighbor
// search over the registry for admin tooling.
func (h *IdentitiesHandler) Similar(w http.ResponseWriter, r *http.Request) {
	var req similarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.Limit <= 0 {
		req.Limit = 5
	}

	if h.index.Count() == 0 {
		respondJSON(w, http.StatusOK, []similarResult{})
		return
	}

	ids, distances, err := h.index.Search(req.Embedding, req.Limit)
	if err != nil {
		log.Printf("similarity search: %v", err)
		respondError(w, http.StatusInternalServerError, "similarity search failed")
		return
	}

	out := make([]similarResult, 0, len(ids))
	for i, id := range ids {
		out = append(out, similarResult{UID: id.UID, Name: id.Name, Distance: distances[i]})
	}
	respondJSON(w, http.StatusOK, out)
}
