package transactions

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// transactionsColumns is the list of columns for the transactions table
// Used to avoid SELECT * which can break when schema changes
const transactionsColumns = `id, user_id, date, amount, description, type, created_at`

// Repository handles transaction database operations
type Repository struct {
	appDB *sql.DB // app.db - transactions table
	log   zerolog.Logger
}

// NewRepository creates a new transaction repository
func NewRepository(appDB *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		appDB: appDB,
		log:   log.With().Str("repo", "transactions").Logger(),
	}
}

// Insert stores a transaction unless an identical one already exists.
// Identity is the tuple (user, date, amount, description); re-ingesting a
// duplicate is a no-op, reported via the returned bool.
func (r *Repository) Insert(record Record) (bool, error) {
	exists, err := r.exists(record)
	if err != nil {
		return false, fmt.Errorf("failed to check for existing transaction: %w", err)
	}
	if exists {
		r.log.Debug().
			Str("user_id", record.UserID).
			Str("date", record.Date).
			Msg("Transaction already exists, skipping duplicate")
		return false, nil
	}

	query := `
		INSERT INTO transactions (user_id, date, amount, description, type, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err = r.appDB.Exec(query,
		record.UserID, record.Date, record.Amount, record.Description,
		record.Type, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return false, fmt.Errorf("failed to insert transaction: %w", err)
	}

	return true, nil
}

// ListByUser returns all transactions for a user, newest first
func (r *Repository) ListByUser(userID string) ([]Record, error) {
	query := "SELECT " + transactionsColumns + " FROM transactions WHERE user_id = ? ORDER BY date DESC, id DESC"

	rows, err := r.appDB.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var createdAt string
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Date, &rec.Amount,
			&rec.Description, &rec.Type, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		if parsed, err := time.Parse(time.RFC3339, createdAt); err == nil {
			rec.CreatedAt = parsed
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return records, nil
}

// SumsByType returns per-type transaction sums for a user
func (r *Repository) SumsByType(userID string) (Aggregates, error) {
	query := "SELECT type, COALESCE(SUM(amount), 0) FROM transactions WHERE user_id = ? GROUP BY type"

	rows, err := r.appDB.Query(query, userID)
	if err != nil {
		return Aggregates{}, fmt.Errorf("failed to query transaction sums: %w", err)
	}
	defer rows.Close()

	var agg Aggregates
	for rows.Next() {
		var txType string
		var sum float64
		if err := rows.Scan(&txType, &sum); err != nil {
			return Aggregates{}, fmt.Errorf("failed to scan transaction sum: %w", err)
		}
		switch txType {
		case TypeCredit:
			agg.Income = sum
		case TypeDebit:
			agg.Expenses = sum
		case TypeInvestment:
			agg.Investment = sum
		}
	}
	if err := rows.Err(); err != nil {
		return Aggregates{}, fmt.Errorf("failed to iterate transaction sums: %w", err)
	}

	return agg, nil
}

func (r *Repository) exists(record Record) (bool, error) {
	var count int
	err := r.appDB.QueryRow(
		"SELECT COUNT(*) FROM transactions WHERE user_id = ? AND date = ? AND amount = ? AND description = ?",
		record.UserID, record.Date, record.Amount, record.Description).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
