// Package handlers provides HTTP handlers for filtration operations.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Amelie-Schreiber/persistent-homology-of-entanglement/internal/modules/circuits"
	"github.com/Amelie-Schreiber/persistent-homology-of-entanglement/internal/modules/filtration"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles filtration HTTP requests.
type Handler struct {
	service    *filtration.Service
	repository *filtration.Repository
	log        zerolog.Logger
}

// NewHandler creates a new filtration handler.
func NewHandler(
	service *filtration.Service,
	repository *filtration.Repository,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		service:    service,
		repository: repository,
		log:        log.With().Str("handler", "filtration").Logger(),
	}
}

// ComputeRequest carries the circuit to run the pipeline on.
type ComputeRequest struct {
	Circuit *circuits.Circuit `json:"circuit"`
	Store   bool              `json:"store"`
}

// HandleCompute handles POST /api/filtration/compute.
func (h *Handler) HandleCompute(w http.ResponseWriter, r *http.Request) {
	var req ComputeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Circuit == nil {
		http.Error(w, "Missing circuit", http.StatusBadRequest)
		return
	}

	seq, err := h.service.Compute(r.Context(), req.Circuit)
	if err != nil {
		if errors.Is(err, circuits.ErrNoMoments) || errors.Is(err, circuits.ErrInvalidCircuit) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.log.Error().Err(err).Msg("Filtration computation failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if req.Store {
		if err := h.repository.Save(seq); err != nil {
			h.log.Error().Err(err).Str("run_id", seq.ID).Msg("Failed to store filtration run")
			http.Error(w, "Failed to store run", http.StatusInternalServerError)
			return
		}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": seq,
		"metadata": map[string]interface{}{
			"stored":    req.Store,
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleListRuns handles GET /api/filtration/runs.
func (h *Handler) HandleListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.repository.List(0)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list filtration runs")
		http.Error(w, "Failed to list runs", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"runs":  runs,
			"count": len(runs),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleGetRun handles GET /api/filtration/runs/{id}.
func (h *Handler) HandleGetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	seq, err := h.repository.Get(id)
	if err != nil {
		if errors.Is(err, filtration.ErrRunNotFound) {
			http.Error(w, "Run not found", http.StatusNotFound)
			return
		}
		h.log.Error().Err(err).Str("run_id", id).Msg("Failed to load filtration run")
		http.Error(w, "Failed to load run", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": seq,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleDeleteRun handles DELETE /api/filtration/runs/{id}.
func (h *Handler) HandleDeleteRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.repository.Delete(id); err != nil {
		if errors.Is(err, filtration.ErrRunNotFound) {
			http.Error(w, "Run not found", http.StatusNotFound)
			return
		}
		h.log.Error().Err(err).Str("run_id", id).Msg("Failed to delete filtration run")
		http.Error(w, "Failed to delete run", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"deleted": id,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// writeJSON writes a JSON response.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
