// Package transactions manages transaction ingestion and behavior derivation.
package transactions

import "time"

// Transaction types
const (
	TypeCredit     = "credit"
	TypeDebit      = "debit"
	TypeInvestment = "investment"
)

// Record represents one ingested bank transaction.
// Date is kept as the raw statement string: it participates in the
// dedupe key verbatim and is never used for arithmetic.
type Record struct {
	CreatedAt   time.Time `json:"created_at"`
	UserID      string    `json:"user_id"`
	Date        string    `json:"date"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	Amount      float64   `json:"amount"`
	ID          int64     `json:"id"`
}

// Aggregates holds per-type sums of transaction magnitudes for one user
type Aggregates struct {
	Income     float64 `json:"income"`
	Expenses   float64 `json:"expenses"`
	Investment float64 `json:"investment"`
}
