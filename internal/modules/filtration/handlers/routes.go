package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all filtration routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/filtration", func(r chi.Router) {
		r.Post("/compute", h.HandleCompute)
		r.Get("/runs", h.HandleListRuns)
		r.Get("/runs/{id}", h.HandleGetRun)
		r.Delete("/runs/{id}", h.HandleDeleteRun)
		r.Get("/stream", h.HandleStream)
	})
}
