package investments

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/jayanthkotte/Personalized-Investment-Recommendation-App/internal/auth"
)

// Handlers contains HTTP handlers for the virtual portfolio
type Handlers struct {
	service *Service
	log     zerolog.Logger
}

// NewHandlers creates new investment handlers
func NewHandlers(service *Service, log zerolog.Logger) *Handlers {
	return &Handlers{
		service: service,
		log:     log.With().Str("handler", "investments").Logger(),
	}
}

// RegisterRoutes registers authenticated investment routes
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Route("/investments", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleBuy)
		r.Post("/{id}/sell", h.HandleSell)
	})
}

// HandleList returns the user's holdings
// GET /api/investments
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	holdings, err := h.service.List(userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to list holdings")
		writeError(w, "Failed to list investments", http.StatusInternalServerError)
		return
	}
	if holdings == nil {
		holdings = []Holding{}
	}
	writeJSON(w, holdings)
}

type buyRequest struct {
	ExpectedReturn *float64 `json:"expected_return"`
	Type           string   `json:"type"`
	Company        string   `json:"company"`
	Amount         float64  `json:"amount"`
}

// HandleBuy records a new holding
// POST /api/investments
func (h *Handlers) HandleBuy(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req buyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Type == "" {
		writeError(w, "type is required", http.StatusBadRequest)
		return
	}

	holding, err := h.service.Buy(userID, req.Type, req.Company, req.Amount, req.ExpectedReturn)
	switch {
	case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrInsufficientBalance):
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to buy holding")
		writeError(w, "Failed to add investment", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"msg":     "Investment added",
		"holding": holding,
	})
}

// HandleSell removes a holding and credits the balance back
// POST /api/investments/{id}/sell
func (h *Handlers) HandleSell(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	holdingID := chi.URLParam(r, "id")
	err := h.service.Sell(userID, holdingID)
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, "Investment not found", http.StatusNotFound)
		return
	case err != nil:
		h.log.Error().Err(err).Str("user_id", userID).Str("holding_id", holdingID).Msg("Failed to sell holding")
		writeError(w, "Failed to sell investment", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]string{"msg": "Investment sold"})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
