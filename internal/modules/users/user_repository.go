package users

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// usersColumns is the list of columns for the users table
// Used to avoid SELECT * which can break when schema changes
const usersColumns = `id, name, email, password_hash, risk_score, risk_level, investment_goal,
financial_behavior, risk_profile_completed, virtual_balance, created_at`

// Repository handles user database operations
type Repository struct {
	appDB *sql.DB // app.db - users table
	log   zerolog.Logger
}

// NewRepository creates a new user repository
func NewRepository(appDB *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		appDB: appDB,
		log:   log.With().Str("repo", "users").Logger(),
	}
}

// Create inserts a new user record
func (r *Repository) Create(user UserProfile) error {
	query := `
		INSERT INTO users
		(id, name, email, password_hash, risk_score, risk_level, investment_goal,
		 financial_behavior, risk_profile_completed, virtual_balance, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var riskScore sql.NullInt64
	if user.RiskScore != nil {
		riskScore = sql.NullInt64{Int64: int64(*user.RiskScore), Valid: true}
	}

	_, err := r.appDB.Exec(query,
		user.ID, user.Name, user.Email, user.PasswordHash, riskScore,
		user.RiskLevel, user.InvestmentGoal, user.FinancialBehavior,
		user.RiskProfileCompleted, user.VirtualBalance,
		user.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// GetByID returns a user by id, or nil when not found
func (r *Repository) GetByID(id string) (*UserProfile, error) {
	return r.getOne("SELECT "+usersColumns+" FROM users WHERE id = ?", id)
}

// GetByEmail returns a user by email, or nil when not found
func (r *Repository) GetByEmail(email string) (*UserProfile, error) {
	return r.getOne("SELECT "+usersColumns+" FROM users WHERE email = ?", email)
}

// EmailTakenByOther reports whether another user already owns the email
func (r *Repository) EmailTakenByOther(email, excludeID string) (bool, error) {
	var count int
	err := r.appDB.QueryRow("SELECT COUNT(*) FROM users WHERE email = ? AND id != ?", email, excludeID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check email ownership: %w", err)
	}
	return count > 0, nil
}

// CompleteRiskProfile stores the questionnaire outcome and marks the profile complete
func (r *Repository) CompleteRiskProfile(id string, riskScore int, riskLevel, investmentGoal string) error {
	query := `
		UPDATE users
		SET risk_score = ?, risk_level = ?, investment_goal = ?, risk_profile_completed = 1
		WHERE id = ?
	`

	result, err := r.appDB.Exec(query, riskScore, riskLevel, investmentGoal, id)
	if err != nil {
		return fmt.Errorf("failed to update risk profile: %w", err)
	}

	return requireRowAffected(result, id)
}

// UpdateProfile updates the editable profile fields
func (r *Repository) UpdateProfile(id, name, email, riskLevel, investmentGoal, behavior string) error {
	query := `
		UPDATE users
		SET name = ?, email = ?, risk_level = ?, investment_goal = ?, financial_behavior = ?
		WHERE id = ?
	`

	result, err := r.appDB.Exec(query, name, email, riskLevel, investmentGoal, behavior, id)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	return requireRowAffected(result, id)
}

// SetBehavior persists a derived financial behavior label onto the profile
func (r *Repository) SetBehavior(id, behavior string) error {
	result, err := r.appDB.Exec("UPDATE users SET financial_behavior = ? WHERE id = ?", behavior, id)
	if err != nil {
		return fmt.Errorf("failed to set behavior: %w", err)
	}

	return requireRowAffected(result, id)
}

// GetBehavior returns the stored behavior label, defaulting to Unknown
func (r *Repository) GetBehavior(id string) (string, error) {
	var behavior string
	err := r.appDB.QueryRow("SELECT financial_behavior FROM users WHERE id = ?", id).Scan(&behavior)
	if err == sql.ErrNoRows {
		return "Unknown", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query behavior: %w", err)
	}
	return behavior, nil
}

// UpdatePassword replaces the stored password hash
func (r *Repository) UpdatePassword(id, passwordHash string) error {
	result, err := r.appDB.Exec("UPDATE users SET password_hash = ? WHERE id = ?", passwordHash, id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return requireRowAffected(result, id)
}

// AdjustBalance applies a delta to the user's virtual balance
func (r *Repository) AdjustBalance(id string, delta float64) error {
	return adjustBalance(r.appDB, id, delta)
}

// AdjustBalanceTx applies a balance delta within an open transaction,
// so callers can pair it with other writes atomically
func (r *Repository) AdjustBalanceTx(tx *sql.Tx, id string, delta float64) error {
	return adjustBalance(tx, id, delta)
}

func adjustBalance(ex interface {
	Exec(query string, args ...any) (sql.Result, error)
}, id string, delta float64) error {
	result, err := ex.Exec("UPDATE users SET virtual_balance = virtual_balance + ? WHERE id = ?", delta, id)
	if err != nil {
		return fmt.Errorf("failed to adjust balance: %w", err)
	}

	return requireRowAffected(result, id)
}

// GetBalance returns the user's current virtual balance
func (r *Repository) GetBalance(id string) (float64, error) {
	var balance float64
	err := r.appDB.QueryRow("SELECT virtual_balance FROM users WHERE id = ?", id).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("failed to query balance: %w", err)
	}
	return balance, nil
}

func (r *Repository) getOne(query string, arg string) (*UserProfile, error) {
	var user UserProfile
	var riskScore sql.NullInt64
	var createdAt string

	err := r.appDB.QueryRow(query, arg).Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &riskScore,
		&user.RiskLevel, &user.InvestmentGoal, &user.FinancialBehavior,
		&user.RiskProfileCompleted, &user.VirtualBalance, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil // User not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	if riskScore.Valid {
		score := int(riskScore.Int64)
		user.RiskScore = &score
	}
	if parsed, err := time.Parse(time.RFC3339, createdAt); err == nil {
		user.CreatedAt = parsed
	}

	return &user, nil
}

func requireRowAffected(result sql.Result, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("user %s not found", id)
	}
	return nil
}
