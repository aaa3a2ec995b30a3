package catalog

import (
	"database/sql"
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
		CREATE TABLE investment_options (
			investment_id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			type TEXT NOT NULL,
			risk TEXT NOT NULL,
			expected_return REAL,
			sector TEXT NOT NULL DEFAULT '',
			industry TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			updated_at TEXT NOT NULL
		)
	`)
	require.NoError(t, err)

	return db
}

func newTestRepo(t *testing.T) *OptionRepository {
	return NewOptionRepository(setupTestDB(t), zerolog.New(nil).Level(zerolog.Disabled))
}

func floatPtr(v float64) *float64 { return &v }

func TestUpsertAndList(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.Upsert(InvestmentOption{
		InvestmentID: "MF001", Name: "Alpha Fund", Type: TypeMutualFund, Risk: "Low",
		ExpectedReturn: floatPtr(7.2),
	}))
	require.NoError(t, repo.Upsert(InvestmentOption{
		InvestmentID: "ST001", Name: "Beta Corp", Type: TypeStock, Risk: "High",
	}))

	options, err := repo.List("")
	require.NoError(t, err)
	require.Len(t, options, 2)

	// Ordered by investment id
	assert.Equal(t, "MF001", options[0].InvestmentID)
	require.NotNil(t, options[0].ExpectedReturn)
	assert.Equal(t, 7.2, *options[0].ExpectedReturn)
	assert.Nil(t, options[1].ExpectedReturn)
}

func TestUpsert_ReplacesExisting(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.Upsert(InvestmentOption{
		InvestmentID: "MF001", Name: "Old Name", Type: TypeMutualFund, Risk: "Low",
	}))
	require.NoError(t, repo.Upsert(InvestmentOption{
		InvestmentID: "MF001", Name: "New Name", Type: TypeMutualFund, Risk: "Medium",
	}))

	options, err := repo.List("")
	require.NoError(t, err)
	require.Len(t, options, 1)
	assert.Equal(t, "New Name", options[0].Name)
	assert.Equal(t, "Medium", options[0].Risk)
}

func TestList_TypeFilterIncludesLegacyEquity(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.Upsert(InvestmentOption{InvestmentID: "ST001", Name: "A", Type: TypeStock, Risk: "Low"}))
	require.NoError(t, repo.Upsert(InvestmentOption{InvestmentID: "ST002", Name: "B", Type: "Equity", Risk: "Low"}))
	require.NoError(t, repo.Upsert(InvestmentOption{InvestmentID: "MF001", Name: "C", Type: TypeMutualFund, Risk: "Low"}))

	stocks, err := repo.List(TypeStock)
	require.NoError(t, err)
	require.Len(t, stocks, 2)
	for _, opt := range stocks {
		// Legacy rows are reported as Stock
		assert.Equal(t, TypeStock, opt.Type)
	}

	funds, err := repo.List(TypeMutualFund)
	require.NoError(t, err)
	require.Len(t, funds, 1)
	assert.Equal(t, "MF001", funds[0].InvestmentID)
}

func TestFindByIDs_PreservesLookupOrder(t *testing.T) {
	repo := newTestRepo(t)

	for _, id := range []string{"A", "B", "C"} {
		require.NoError(t, repo.Upsert(InvestmentOption{InvestmentID: id, Name: id, Type: TypeStock, Risk: "Low"}))
	}

	options, err := repo.FindByIDs([]string{"C", "A", "missing"})
	require.NoError(t, err)
	require.Len(t, options, 2)
	assert.Equal(t, "C", options[0].InvestmentID)
	assert.Equal(t, "A", options[1].InvestmentID)
}

func TestFindByIDs_Empty(t *testing.T) {
	repo := newTestRepo(t)

	options, err := repo.FindByIDs(nil)
	require.NoError(t, err)
	assert.Nil(t, options)
}

func TestSeedIfEmpty(t *testing.T) {
	repo := newTestRepo(t)
	log := zerolog.New(nil).Level(zerolog.Disabled)

	require.NoError(t, SeedIfEmpty(repo, log))

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, 20, count)

	// Seeding again is a no-op
	require.NoError(t, SeedIfEmpty(repo, log))
	count, err = repo.Count()
	require.NoError(t, err)
	assert.Equal(t, 20, count)
}
