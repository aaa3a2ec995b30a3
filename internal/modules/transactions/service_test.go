package transactions

import (
	"database/sql"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE transactions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			date TEXT NOT NULL,
			amount REAL NOT NULL,
			description TEXT NOT NULL,
			type TEXT NOT NULL,
			created_at TEXT NOT NULL,
			UNIQUE(user_id, date, amount, description)
		)
	`)
	require.NoError(t, err)

	return db
}

// memoryProfileStore records the last behavior written per user
type memoryProfileStore struct {
	behaviors map[string]string
}

func newMemoryProfileStore() *memoryProfileStore {
	return &memoryProfileStore{behaviors: map[string]string{}}
}

func (m *memoryProfileStore) SetBehavior(userID, behavior string) error {
	m.behaviors[userID] = behavior
	return nil
}

func newTestService(t *testing.T) (*Service, *Repository, *memoryProfileStore) {
	db := setupTestDB(t)
	log := zerolog.New(nil).Level(zerolog.Disabled)
	repo := NewRepository(db, log)
	store := newMemoryProfileStore()
	return NewService(repo, store, log), repo, store
}

func TestIngestCSV(t *testing.T) {
	service, repo, store := newTestService(t)

	csv := strings.Join([]string{
		"date,amount,description,type",
		"2026-01-01,1000,Salary,credit",
		"2026-01-02,200,Groceries,debit",
		"2026-01-03,100,Index fund,investment",
	}, "\n")

	result, err := service.IngestCSV("u1", strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, 3, result.NewCount)
	// saving rate 0.7, investment rate 0.1
	assert.Equal(t, BehaviorSaver, result.Behavior)
	assert.Equal(t, "Saver", store.behaviors["u1"])

	records, err := repo.ListByUser("u1")
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestIngestCSV_SkipsDuplicates(t *testing.T) {
	service, _, _ := newTestService(t)

	csv := strings.Join([]string{
		"date,amount,description,type",
		"2026-01-01,1000,Salary,credit",
	}, "\n")

	first, err := service.IngestCSV("u1", strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, first.NewCount)

	second, err := service.IngestCSV("u1", strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 0, second.NewCount)
}

func TestIngestCSV_NormalizesRows(t *testing.T) {
	service, repo, _ := newTestService(t)

	// Negative amount, uppercase type, missing type defaulting to debit
	csv := strings.Join([]string{
		"Date,Amount,Description,Type",
		"2026-01-01,-250.50,Rent,DEBIT",
		"2026-01-02,75,Takeaway,",
	}, "\n")

	result, err := service.IngestCSV("u1", strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, result.NewCount)

	records, err := repo.ListByUser("u1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, rec := range records {
		assert.Equal(t, TypeDebit, rec.Type)
		assert.Greater(t, rec.Amount, 0.0)
	}
}

func TestIngestCSV_MissingRequiredColumn(t *testing.T) {
	service, _, _ := newTestService(t)

	csv := "date,description\n2026-01-01,Salary"
	_, err := service.IngestCSV("u1", strings.NewReader(csv))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amount")
}

func TestIngestCSV_BadAmount(t *testing.T) {
	service, _, _ := newTestService(t)

	csv := "date,amount,description\n2026-01-01,lots,Salary"
	_, err := service.IngestCSV("u1", strings.NewReader(csv))
	assert.Error(t, err)
}

func TestIngestCSV_UnknownTypeKeptOutOfAggregates(t *testing.T) {
	service, repo, _ := newTestService(t)

	csv := strings.Join([]string{
		"date,amount,description,type",
		"2026-01-01,1000,Salary,credit",
		"2026-01-02,400,Transfer,WIRE",
	}, "\n")

	result, err := service.IngestCSV("u1", strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, result.NewCount)

	records, err := repo.ListByUser("u1")
	require.NoError(t, err)
	require.Len(t, records, 2)

	agg, err := repo.SumsByType("u1")
	require.NoError(t, err)
	assert.Equal(t, 1000.0, agg.Income)
	assert.Equal(t, 0.0, agg.Expenses)
	assert.Equal(t, 0.0, agg.Investment)
}

func TestRecomputeBehavior_NoTransactions(t *testing.T) {
	service, _, store := newTestService(t)

	behavior, err := service.RecomputeBehavior("u1")
	require.NoError(t, err)
	assert.Equal(t, BehaviorUnknown, behavior)
	assert.Equal(t, "Unknown", store.behaviors["u1"])
}

func TestSumsByType(t *testing.T) {
	_, repo, _ := newTestService(t)

	rows := []Record{
		{UserID: "u1", Date: "2026-01-01", Amount: 1000, Description: "Salary", Type: TypeCredit},
		{UserID: "u1", Date: "2026-01-02", Amount: 300, Description: "Rent", Type: TypeDebit},
		{UserID: "u1", Date: "2026-01-03", Amount: 200, Description: "Groceries", Type: TypeDebit},
		{UserID: "u1", Date: "2026-01-04", Amount: 150, Description: "ETF", Type: TypeInvestment},
		{UserID: "other", Date: "2026-01-01", Amount: 9999, Description: "Salary", Type: TypeCredit},
	}
	for _, rec := range rows {
		inserted, err := repo.Insert(rec)
		require.NoError(t, err)
		assert.True(t, inserted)
	}

	agg, err := repo.SumsByType("u1")
	require.NoError(t, err)
	assert.Equal(t, 1000.0, agg.Income)
	assert.Equal(t, 500.0, agg.Expenses)
	assert.Equal(t, 150.0, agg.Investment)
}

func TestInsert_DedupeKeyIsExactTuple(t *testing.T) {
	_, repo, _ := newTestService(t)

	base := Record{UserID: "u1", Date: "2026-01-01", Amount: 100, Description: "Coffee", Type: TypeDebit}
	inserted, err := repo.Insert(base)
	require.NoError(t, err)
	assert.True(t, inserted)

	// Same tuple is skipped even with a different type
	dup := base
	dup.Type = TypeCredit
	inserted, err = repo.Insert(dup)
	require.NoError(t, err)
	assert.False(t, inserted)

	// Any differing tuple field makes it a new transaction
	other := base
	other.Amount = 101
	inserted, err = repo.Insert(other)
	require.NoError(t, err)
	assert.True(t, inserted)
}
