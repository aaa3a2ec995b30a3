package users

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/jayanthkotte/Personalized-Investment-Recommendation-App/internal/auth"
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// Handlers contains HTTP handlers for profile management
type Handlers struct {
	repo *Repository
	log  zerolog.Logger
}

// NewHandlers creates new user profile handlers
func NewHandlers(repo *Repository, log zerolog.Logger) *Handlers {
	return &Handlers{
		repo: repo,
		log:  log.With().Str("handler", "users").Logger(),
	}
}

// RegisterRoutes registers authenticated profile routes
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Post("/risk-profile", h.HandleCompleteRiskProfile)
	r.Get("/profile", h.HandleGetProfile)
	r.Post("/profile", h.HandleUpdateProfile)
	r.Post("/change-password", h.HandleChangePassword)
}

type riskProfileRequest struct {
	RiskScore      int    `json:"risk_score"`
	RiskLevel      string `json:"risk_level"`
	InvestmentGoal string `json:"investment_goal"`
}

// HandleCompleteRiskProfile stores the risk questionnaire outcome
// POST /api/risk-profile
func (h *Handlers) HandleCompleteRiskProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req riskProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.RiskLevel == "" || req.InvestmentGoal == "" {
		writeError(w, "Risk level and investment goal are required", http.StatusBadRequest)
		return
	}

	if err := h.repo.CompleteRiskProfile(userID, req.RiskScore, req.RiskLevel, req.InvestmentGoal); err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to update risk profile")
		writeError(w, "Failed to update risk profile", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]string{"msg": "Risk profile updated"})
}

// HandleGetProfile returns the authenticated user's profile
// GET /api/profile
func (h *Handlers) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.repo.GetByID(userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to fetch profile")
		writeError(w, "Failed to fetch profile", http.StatusInternalServerError)
		return
	}
	if user == nil {
		writeError(w, "User not found", http.StatusNotFound)
		return
	}

	writeJSON(w, user)
}

type updateProfileRequest struct {
	Name              string `json:"name"`
	Email             string `json:"email"`
	RiskLevel         string `json:"risk_level"`
	InvestmentGoal    string `json:"investment_goal"`
	FinancialBehavior string `json:"financial_behavior"`
}

// HandleUpdateProfile updates the editable profile fields
// POST /api/profile
func (h *Handlers) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if msg := validateProfileFields(name, email, req.RiskLevel, req.InvestmentGoal, req.FinancialBehavior); msg != "" {
		writeError(w, msg, http.StatusBadRequest)
		return
	}

	taken, err := h.repo.EmailTakenByOther(email, userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to check email")
		writeError(w, "Failed to update profile", http.StatusInternalServerError)
		return
	}
	if taken {
		writeError(w, "Email already registered by another user.", http.StatusBadRequest)
		return
	}

	if err := h.repo.UpdateProfile(userID, name, email, req.RiskLevel, req.InvestmentGoal, req.FinancialBehavior); err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to update profile")
		writeError(w, "Failed to update profile", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]string{"msg": "Profile updated"})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// HandleChangePassword verifies the current password and stores a new hash
// POST /api/change-password
func (h *Handlers) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		writeError(w, "All fields are required", http.StatusBadRequest)
		return
	}

	user, err := h.repo.GetByID(userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to fetch user")
		writeError(w, "Failed to change password", http.StatusInternalServerError)
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)) != nil {
		writeError(w, "Current password is incorrect.", http.StatusBadRequest)
		return
	}
	if req.CurrentPassword == req.NewPassword {
		writeError(w, "New password must be different from current password.", http.StatusBadRequest)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to hash password")
		writeError(w, "Failed to change password", http.StatusInternalServerError)
		return
	}

	if err := h.repo.UpdatePassword(userID, string(hash)); err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to store password")
		writeError(w, "Failed to change password", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]string{"msg": "Password changed successfully"})
}

// validateProfileFields applies the registration-era naming rules.
// Returns a user-facing message, or "" when the fields are acceptable.
func validateProfileFields(name, email, riskLevel, goal, behavior string) string {
	if name == "" || email == "" || riskLevel == "" || goal == "" || behavior == "" {
		return "All fields are required"
	}
	if unicode.IsDigit(rune(name[0])) {
		return "Username must not start with a number."
	}
	if isAllDigits(name) {
		return "Username cannot be all numbers."
	}
	if unicode.IsDigit(rune(email[0])) {
		return "Email must not start with a number and must be a valid email address."
	}
	if !emailPattern.MatchString(email) {
		return "Please enter a valid email address."
	}
	return ""
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return len(s) > 0
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
