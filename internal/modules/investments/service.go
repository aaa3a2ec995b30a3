package investments

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jayanthkotte/Personalized-Investment-Recommendation-App/internal/database"
)

var (
	ErrNotFound            = errors.New("investment not found")
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrInsufficientBalance = errors.New("insufficient virtual balance")
)

// BalanceStore adjusts and reads a user's virtual balance. Adjustments
// run inside the same transaction as the holding write.
type BalanceStore interface {
	AdjustBalanceTx(tx *sql.Tx, id string, delta float64) error
	GetBalance(id string) (float64, error)
}

// Service implements the virtual portfolio: buys deduct from the
// virtual balance, sells credit the full invested amount back. The
// holding write and the balance adjustment commit as one transaction.
type Service struct {
	db       *sql.DB
	repo     *Repository
	balances BalanceStore
	log      zerolog.Logger
}

func NewService(db *sql.DB, repo *Repository, balances BalanceStore, log zerolog.Logger) *Service {
	return &Service{
		db:       db,
		repo:     repo,
		balances: balances,
		log:      log.With().Str("service", "investments").Logger(),
	}
}

// Buy records a new holding and deducts its amount from the balance
func (s *Service) Buy(userID, invType, company string, amount float64, expectedReturn *float64) (*Holding, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	balance, err := s.balances.GetBalance(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read balance: %w", err)
	}
	if amount > balance {
		return nil, ErrInsufficientBalance
	}

	holding := Holding{
		ID:             uuid.New().String(),
		UserID:         userID,
		Type:           invType,
		Company:        company,
		Amount:         amount,
		ExpectedReturn: expectedReturn,
		DateInvested:   time.Now().UTC(),
	}
	err = database.WithTransaction(s.db, func(tx *sql.Tx) error {
		if err := s.repo.CreateTx(tx, holding); err != nil {
			return err
		}
		if err := s.balances.AdjustBalanceTx(tx, userID, -amount); err != nil {
			return fmt.Errorf("failed to deduct balance: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", userID).Str("type", invType).Float64("amount", amount).Msg("Holding bought")
	return &holding, nil
}

// Sell removes a holding and credits its amount back to the balance
func (s *Service) Sell(userID, holdingID string) error {
	holding, err := s.repo.GetByID(holdingID, userID)
	if err != nil {
		return err
	}
	if holding == nil {
		return ErrNotFound
	}

	err = database.WithTransaction(s.db, func(tx *sql.Tx) error {
		if err := s.balances.AdjustBalanceTx(tx, userID, holding.Amount); err != nil {
			return fmt.Errorf("failed to credit balance: %w", err)
		}
		return s.repo.DeleteTx(tx, holdingID, userID)
	})
	if err != nil {
		return err
	}

	s.log.Info().Str("user_id", userID).Str("holding_id", holdingID).Float64("amount", holding.Amount).Msg("Holding sold")
	return nil
}

// List returns the user's current holdings
func (s *Service) List(userID string) ([]Holding, error) {
	return s.repo.ListByUser(userID)
}
