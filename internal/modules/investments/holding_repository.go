package investments

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const holdingsColumns = `id, user_id, type, company, amount, expected_return, date_invested`

// Repository handles holding database operations
type Repository struct {
	appDB *sql.DB
	log   zerolog.Logger
}

func NewRepository(appDB *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		appDB: appDB,
		log:   log.With().Str("repo", "holdings").Logger(),
	}
}

// execer lets repository writes run against either the pool or an
// open transaction.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// Create inserts a new holding
func (r *Repository) Create(holding Holding) error {
	return r.create(r.appDB, holding)
}

// CreateTx inserts a new holding within an open transaction
func (r *Repository) CreateTx(tx *sql.Tx, holding Holding) error {
	return r.create(tx, holding)
}

func (r *Repository) create(ex execer, holding Holding) error {
	query := fmt.Sprintf(`INSERT INTO holdings (%s) VALUES (?, ?, ?, ?, ?, ?, ?)`, holdingsColumns)
	var company sql.NullString
	if holding.Company != "" {
		company = sql.NullString{String: holding.Company, Valid: true}
	}
	var expectedReturn sql.NullFloat64
	if holding.ExpectedReturn != nil {
		expectedReturn = sql.NullFloat64{Float64: *holding.ExpectedReturn, Valid: true}
	}

	_, err := ex.Exec(query,
		holding.ID, holding.UserID, holding.Type, company,
		holding.Amount, expectedReturn,
		holding.DateInvested.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert holding %s: %w", holding.ID, err)
	}
	return nil
}

// GetByID returns a holding owned by the given user, or nil when the
// holding does not exist or belongs to someone else
func (r *Repository) GetByID(id, userID string) (*Holding, error) {
	query := fmt.Sprintf(`SELECT %s FROM holdings WHERE id = ? AND user_id = ?`, holdingsColumns)
	rows, err := r.appDB.Query(query, id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query holding %s: %w", id, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	holding, err := scanHolding(rows)
	if err != nil {
		return nil, err
	}
	return &holding, nil
}

// ListByUser returns a user's holdings, newest first
func (r *Repository) ListByUser(userID string) ([]Holding, error) {
	query := fmt.Sprintf(`SELECT %s FROM holdings WHERE user_id = ? ORDER BY date_invested DESC, id DESC`, holdingsColumns)
	rows, err := r.appDB.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query holdings for user %s: %w", userID, err)
	}
	defer rows.Close()

	var holdings []Holding
	for rows.Next() {
		holding, err := scanHolding(rows)
		if err != nil {
			return nil, err
		}
		holdings = append(holdings, holding)
	}
	return holdings, rows.Err()
}

// Delete removes a holding owned by the given user
func (r *Repository) Delete(id, userID string) error {
	return r.delete(r.appDB, id, userID)
}

// DeleteTx removes a holding within an open transaction
func (r *Repository) DeleteTx(tx *sql.Tx, id, userID string) error {
	return r.delete(tx, id, userID)
}

func (r *Repository) delete(ex execer, id, userID string) error {
	result, err := ex.Exec(`DELETE FROM holdings WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete holding %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result for %s: %w", id, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func scanHolding(rows *sql.Rows) (Holding, error) {
	var holding Holding
	var company sql.NullString
	var expectedReturn sql.NullFloat64
	var dateInvested string

	err := rows.Scan(&holding.ID, &holding.UserID, &holding.Type, &company,
		&holding.Amount, &expectedReturn, &dateInvested)
	if err != nil {
		return Holding{}, fmt.Errorf("failed to scan holding row: %w", err)
	}

	holding.Company = company.String
	if expectedReturn.Valid {
		holding.ExpectedReturn = &expectedReturn.Float64
	}
	if parsed, err := time.Parse(time.RFC3339, dateInvested); err == nil {
		holding.DateInvested = parsed
	}
	return holding, nil
}
