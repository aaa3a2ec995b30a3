package recommendation

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/jayanthkotte/Personalized-Investment-Recommendation-App/internal/auth"
)

// Handlers contains HTTP handlers for the recommendation endpoints
type Handlers struct {
	engine *Engine
	log    zerolog.Logger
}

// NewHandlers creates new recommendation handlers
func NewHandlers(engine *Engine, log zerolog.Logger) *Handlers {
	return &Handlers{
		engine: engine,
		log:    log.With().Str("handler", "recommendation").Logger(),
	}
}

// RegisterRoutes registers authenticated recommendation routes
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Post("/recommend", h.HandleRecommendByProfile)
	r.Post("/recommend-rtc", h.HandleRecommendByRiskTenureCapital)
	r.Get("/recommendations", h.HandleHistory)
}

// HandleRecommendByProfile scores the stored profile
// POST /api/recommend
func (h *Handlers) HandleRecommendByProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	result, err := h.engine.RecommendByProfile(userID)
	if err != nil {
		h.writeFailure(w, userID, err)
		return
	}
	writeJSON(w, result)
}

type rtcRequest struct {
	Tenure  int `json:"tenure"`
	Capital int `json:"capital"`
}

// HandleRecommendByRiskTenureCapital scores stored risk with
// request-supplied tenure and capital
// POST /api/recommend-rtc
func (h *Handlers) HandleRecommendByRiskTenureCapital(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req rtcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.engine.RecommendByRiskTenureCapital(userID, req.Tenure, req.Capital)
	if err != nil {
		h.writeFailure(w, userID, err)
		return
	}
	writeJSON(w, result)
}

// HandleHistory returns the user's past recommendations
// GET /api/recommendations
func (h *Handlers) HandleHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	records, err := h.engine.History(userID)
	if err != nil {
		h.writeFailure(w, userID, err)
		return
	}
	if records == nil {
		records = []Record{}
	}
	writeJSON(w, map[string]interface{}{"recommendations": records})
}

// writeFailure maps engine failure kinds onto HTTP status codes
func (h *Handlers) writeFailure(w http.ResponseWriter, userID string, err error) {
	var f *Failure
	if !errors.As(err, &f) {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Recommendation failed")
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	status := http.StatusInternalServerError
	switch f.Kind {
	case KindUserNotFound, KindNoMatch:
		status = http.StatusNotFound
	case KindProfileIncomplete, KindBehaviorUnknown, KindInvalidInput:
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		h.log.Error().Err(err).Str("user_id", userID).Str("kind", string(f.Kind)).Msg("Recommendation failed")
	} else {
		h.log.Debug().Str("user_id", userID).Str("kind", string(f.Kind)).Msg("Recommendation rejected")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": f.Message,
		"code":  string(f.Kind),
	})
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
