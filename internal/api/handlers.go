package api

import (
	"context"
	"net/http"
	"time"

	"recommender/internal/domain"
	"recommender/internal/logging"
)

const recommendFailure = "Unable to generate recommendations at this time."

// Handler serves the three core operations over HTTP.
type Handler struct {
	service    domain.Recommender
	healthWait time.Duration
}

// NewHandler creates a handler. healthWait bounds how long a health probe
// waits for initialization before answering "initializing".
func NewHandler(service domain.Recommender, healthWait time.Duration) *Handler {
	if healthWait <= 0 {
		healthWait = DefaultHealthWait
	}
	return &Handler{service: service, healthWait: healthWait}
}

// Catalog handles GET /api/catalog.
func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.CatalogSummary(r.Context())
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("catalog summary failed")
		respondError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, r, http.StatusOK, summary)
}

// Health handles GET /api/health: 200 ready, 202 initializing, 500 error.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.healthWait)
	defer cancel()

	health := h.service.Health(ctx)
	status := http.StatusOK
	switch health.Status {
	case domain.HealthError:
		status = http.StatusInternalServerError
	case domain.HealthInitializing:
		status = http.StatusAccepted
	}
	respondJSON(w, r, status, health)
}

// Recommendations handles GET /api/recommendations?seed=.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	seed := r.URL.Query().Get("seed")
	payload, err := h.service.Recommend(r.Context(), seed)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("recommend failed")
		respondError(w, r, http.StatusInternalServerError, recommendFailure)
		return
	}
	respondJSON(w, r, http.StatusOK, payload)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", http.MethodGet)
	respondError(w, r, http.StatusMethodNotAllowed, "Method not allowed")
}

func notFound(w http.ResponseWriter, r *http.Request) {
	respondError(w, r, http.StatusNotFound, "Not found")
}
