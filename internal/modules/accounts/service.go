// Package accounts provides user registration, login and token issuance.
package accounts

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/jayanthkotte/Personalized-Investment-Recommendation-App/internal/modules/users"
)

// ErrEmailTaken is returned when registering an already-registered email
var ErrEmailTaken = errors.New("email already registered")

// ErrInvalidCredentials is returned when login credentials do not match
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserStore defines the user operations the auth service needs
// Used to avoid a dependency cycle with the users module
type UserStore interface {
	Create(user users.UserProfile) error
	GetByEmail(email string) (*users.UserProfile, error)
}

// Service handles registration, login and token issuance
type Service struct {
	store    UserStore
	secret   []byte
	tokenTTL time.Duration
	log      zerolog.Logger
}

// NewService creates a new auth service
func NewService(store UserStore, secret string, tokenTTL time.Duration, log zerolog.Logger) *Service {
	return &Service{
		store:    store,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		log:      log.With().Str("service", "auth").Logger(),
	}
}

// Register creates a new user account with profile defaults.
// New accounts start with an incomplete risk profile, Unknown behavior and
// the initial virtual balance.
func (s *Service) Register(name, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	existing, err := s.store.GetByEmail(email)
	if err != nil {
		return fmt.Errorf("failed to check existing email: %w", err)
	}
	if existing != nil {
		return ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := users.UserProfile{
		ID:                uuid.New().String(),
		Name:              strings.TrimSpace(name),
		Email:             email,
		PasswordHash:      string(hash),
		FinancialBehavior: "Unknown",
		VirtualBalance:    users.InitialVirtualBalance,
		CreatedAt:         time.Now().UTC(),
	}

	if err := s.store.Create(user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Msg("Registered new user")
	return nil
}

// LoginResult holds the outcome of a successful login
type LoginResult struct {
	Token                string
	RiskProfileCompleted bool
}

// Login verifies credentials and issues a signed token
func (s *Service) Login(email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.store.GetByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &LoginResult{
		Token:                token,
		RiskProfileCompleted: user.RiskProfileCompleted,
	}, nil
}

func (s *Service) issueToken(userID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}
