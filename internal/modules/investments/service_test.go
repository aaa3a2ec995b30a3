package investments

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jayanthkotte/Personalized-Investment-Recommendation-App/internal/modules/users"

	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE holdings (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			type TEXT NOT NULL,
			company TEXT,
			amount REAL NOT NULL,
			expected_return REAL,
			date_invested TEXT NOT NULL
		);
		CREATE TABLE users (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			risk_score INTEGER,
			risk_level TEXT NOT NULL DEFAULT '',
			investment_goal TEXT NOT NULL DEFAULT '',
			financial_behavior TEXT NOT NULL DEFAULT 'Unknown',
			risk_profile_completed INTEGER NOT NULL DEFAULT 0,
			virtual_balance REAL NOT NULL DEFAULT 100000,
			created_at TEXT NOT NULL
		);
	`)
	require.NoError(t, err)

	return db
}

func seedUser(t *testing.T, db *sql.DB, id string, balance float64) {
	_, err := db.Exec(`INSERT INTO users (id, name, email, password_hash, virtual_balance, created_at)
		VALUES (?, ?, ?, 'x', ?, '2025-01-01T00:00:00Z')`,
		id, id, id+"@example.com", balance)
	require.NoError(t, err)
}

func newTestService(t *testing.T, balance float64) (*Service, *users.Repository, *sql.DB) {
	log := zerolog.New(nil).Level(zerolog.Disabled)
	db := setupTestDB(t)
	seedUser(t, db, "u1", balance)
	balances := users.NewRepository(db, log)
	return NewService(db, NewRepository(db, log), balances, log), balances, db
}

func mustBalance(t *testing.T, balances *users.Repository, id string) float64 {
	balance, err := balances.GetBalance(id)
	require.NoError(t, err)
	return balance
}

// failingBalances accepts reads but rejects every adjustment
type failingBalances struct {
	balance float64
}

func (f *failingBalances) AdjustBalanceTx(tx *sql.Tx, id string, delta float64) error {
	return errors.New("balance update failed")
}

func (f *failingBalances) GetBalance(id string) (float64, error) {
	return f.balance, nil
}

func TestBuyAndList(t *testing.T) {
	service, balances, _ := newTestService(t, 100000)

	holding, err := service.Buy("u1", "Stock", "Infosys", 5000, nil)
	require.NoError(t, err)
	assert.Equal(t, 95000.0, mustBalance(t, balances, "u1"))

	holdings, err := service.List("u1")
	require.NoError(t, err)
	require.Len(t, holdings, 1)
	assert.Equal(t, holding.ID, holdings[0].ID)
	assert.Equal(t, "Infosys", holdings[0].Company)
	assert.Equal(t, 5000.0, holdings[0].Amount)
}

func TestBuy_InvalidAmount(t *testing.T) {
	service, _, _ := newTestService(t, 100000)

	_, err := service.Buy("u1", "Stock", "Infosys", 0, nil)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = service.Buy("u1", "Stock", "Infosys", -100, nil)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestBuy_InsufficientBalance(t *testing.T) {
	service, balances, _ := newTestService(t, 1000)

	_, err := service.Buy("u1", "Stock", "Infosys", 5000, nil)
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, 1000.0, mustBalance(t, balances, "u1"))
}

func TestBuy_RollsBackHoldingWhenDeductFails(t *testing.T) {
	log := zerolog.New(nil).Level(zerolog.Disabled)
	db := setupTestDB(t)
	service := NewService(db, NewRepository(db, log), &failingBalances{balance: 100000}, log)

	_, err := service.Buy("u1", "Stock", "Infosys", 5000, nil)
	require.Error(t, err)

	holdings, err := service.List("u1")
	require.NoError(t, err)
	assert.Empty(t, holdings)
}

func TestSell_CreditsAmountBack(t *testing.T) {
	service, balances, _ := newTestService(t, 100000)

	holding, err := service.Buy("u1", "Mutual Fund", "", 8000, nil)
	require.NoError(t, err)
	assert.Equal(t, 92000.0, mustBalance(t, balances, "u1"))

	require.NoError(t, service.Sell("u1", holding.ID))
	assert.Equal(t, 100000.0, mustBalance(t, balances, "u1"))

	holdings, err := service.List("u1")
	require.NoError(t, err)
	assert.Empty(t, holdings)
}

func TestSell_RollsBackWhenCreditFails(t *testing.T) {
	log := zerolog.New(nil).Level(zerolog.Disabled)
	db := setupTestDB(t)
	repo := NewRepository(db, log)
	service := NewService(db, repo, &failingBalances{balance: 100000}, log)

	holding := Holding{ID: "h1", UserID: "u1", Type: "Stock", Amount: 3000}
	require.NoError(t, repo.Create(holding))

	err := service.Sell("u1", "h1")
	require.Error(t, err)

	holdings, err := service.List("u1")
	require.NoError(t, err)
	require.Len(t, holdings, 1)
	assert.Equal(t, "h1", holdings[0].ID)
}

func TestSell_NotFound(t *testing.T) {
	service, _, _ := newTestService(t, 100000)

	err := service.Sell("u1", "absent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSell_OtherUsersHolding(t *testing.T) {
	service, balances, db := newTestService(t, 100000)
	seedUser(t, db, "u2", 100000)

	holding, err := service.Buy("u1", "Stock", "TCS", 3000, nil)
	require.NoError(t, err)

	err = service.Sell("u2", holding.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 100000.0, mustBalance(t, balances, "u2"))
}
