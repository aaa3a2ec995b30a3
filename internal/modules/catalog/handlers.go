package catalog

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handlers contains HTTP handlers for the investment catalog
type Handlers struct {
	repo *OptionRepository
	log  zerolog.Logger
}

// NewHandlers creates new catalog handlers
func NewHandlers(repo *OptionRepository, log zerolog.Logger) *Handlers {
	return &Handlers{
		repo: repo,
		log:  log.With().Str("handler", "catalog").Logger(),
	}
}

// RegisterRoutes registers catalog routes
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Get("/investment-options", h.HandleGetOptions)
}

// HandleGetOptions returns the investment options catalog
// GET /api/investment-options?type=Stock
func (h *Handlers) HandleGetOptions(w http.ResponseWriter, r *http.Request) {
	optType := r.URL.Query().Get("type")

	options, err := h.repo.List(optType)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list investment options")
		http.Error(w, "Failed to list investment options", http.StatusInternalServerError)
		return
	}

	if options == nil {
		options = []InvestmentOption{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(options); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode options response")
	}
}
