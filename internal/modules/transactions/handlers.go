package transactions

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/jayanthkotte/Personalized-Investment-Recommendation-App/internal/auth"
)

// maxUploadBytes bounds statement uploads (CSV statements are small)
const maxUploadBytes = 8 << 20

// BehaviorReader returns the stored behavior label for a user
type BehaviorReader interface {
	GetBehavior(userID string) (string, error)
}

// Handlers contains HTTP handlers for transaction ingestion and listing
type Handlers struct {
	service        *Service
	repo           *Repository
	behaviorReader BehaviorReader
	log            zerolog.Logger
}

// NewHandlers creates new transaction handlers
func NewHandlers(service *Service, repo *Repository, behaviorReader BehaviorReader, log zerolog.Logger) *Handlers {
	return &Handlers{
		service:        service,
		repo:           repo,
		behaviorReader: behaviorReader,
		log:            log.With().Str("handler", "transactions").Logger(),
	}
}

// RegisterRoutes registers authenticated transaction routes
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Route("/transactions", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/upload", h.HandleUpload)
	})
}

// HandleUpload ingests a bank statement CSV
// POST /api/transactions/upload (multipart field "file")
func (h *Handlers) HandleUpload(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, "No file uploaded", http.StatusBadRequest)
		return
	}
	defer file.Close()

	result, err := h.service.IngestCSV(userID, file)
	if err != nil {
		h.log.Warn().Err(err).Str("user_id", userID).Msg("Statement ingestion failed")
		writeError(w, "Failed to process statement: "+err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, map[string]interface{}{
		"msg":                      "transactions uploaded",
		"new_count":                result.NewCount,
		"financial_behavior_label": result.Behavior,
	})
}

// HandleList returns the user's transactions and current behavior label
// GET /api/transactions
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	records, err := h.repo.ListByUser(userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to list transactions")
		writeError(w, "Failed to list transactions", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []Record{}
	}

	behavior, err := h.behaviorReader.GetBehavior(userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to read behavior")
		behavior = string(BehaviorUnknown)
	}

	writeJSON(w, map[string]interface{}{
		"transactions": records,
		"behavior":     behavior,
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
