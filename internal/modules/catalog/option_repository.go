package catalog

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// optionsColumns is the list of columns for the investment_options table
// Used to avoid SELECT * which can break when schema changes
const optionsColumns = `investment_id, name, type, risk, expected_return, sector, industry, description`

// OptionRepository handles investment option database operations
type OptionRepository struct {
	catalogDB *sql.DB // catalog.db - investment_options table
	log       zerolog.Logger
}

// NewOptionRepository creates a new investment option repository
func NewOptionRepository(catalogDB *sql.DB, log zerolog.Logger) *OptionRepository {
	return &OptionRepository{
		catalogDB: catalogDB,
		log:       log.With().Str("repo", "catalog").Logger(),
	}
}

// FindByIDs returns the options matching the given investment IDs.
// Results preserve the order of the ids argument; unknown ids are skipped.
func (r *OptionRepository) FindByIDs(ids []string) ([]InvestmentOption, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]

	query := "SELECT " + optionsColumns + " FROM investment_options WHERE investment_id IN (" + placeholders + ")"

	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.catalogDB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query options by ids: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]InvestmentOption, len(ids))
	for rows.Next() {
		opt, err := scanOption(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan option: %w", err)
		}
		byID[opt.InvestmentID] = opt
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate options: %w", err)
	}

	// Preserve lookup order
	options := make([]InvestmentOption, 0, len(byID))
	for _, id := range ids {
		if opt, ok := byID[id]; ok {
			options = append(options, opt)
		}
	}

	return options, nil
}

// List returns all options, optionally filtered by type.
// A "Stock" filter also matches legacy "Equity" rows, which are reported as "Stock".
func (r *OptionRepository) List(optType string) ([]InvestmentOption, error) {
	query := "SELECT " + optionsColumns + " FROM investment_options"
	var args []interface{}

	switch optType {
	case "":
		// No filter
	case TypeStock:
		query += " WHERE type IN (?, ?)"
		args = append(args, TypeStock, "Equity")
	default:
		query += " WHERE type = ?"
		args = append(args, optType)
	}
	query += " ORDER BY investment_id"

	rows, err := r.catalogDB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query options: %w", err)
	}
	defer rows.Close()

	var options []InvestmentOption
	for rows.Next() {
		opt, err := scanOption(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan option: %w", err)
		}
		if strings.EqualFold(opt.Type, "Equity") {
			opt.Type = TypeStock
		}
		options = append(options, opt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate options: %w", err)
	}

	return options, nil
}

// Upsert inserts or replaces an investment option
func (r *OptionRepository) Upsert(opt InvestmentOption) error {
	query := `
		INSERT INTO investment_options
		(investment_id, name, type, risk, expected_return, sector, industry, description, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(investment_id) DO UPDATE SET
			name = excluded.name,
			type = excluded.type,
			risk = excluded.risk,
			expected_return = excluded.expected_return,
			sector = excluded.sector,
			industry = excluded.industry,
			description = excluded.description,
			updated_at = excluded.updated_at
	`

	var expectedReturn sql.NullFloat64
	if opt.ExpectedReturn != nil {
		expectedReturn = sql.NullFloat64{Float64: *opt.ExpectedReturn, Valid: true}
	}

	_, err := r.catalogDB.Exec(query,
		opt.InvestmentID, opt.Name, opt.Type, opt.Risk, expectedReturn,
		opt.Sector, opt.Industry, opt.Description, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to upsert option %s: %w", opt.InvestmentID, err)
	}

	return nil
}

// Count returns the number of options in the catalog
func (r *OptionRepository) Count() (int, error) {
	var count int
	if err := r.catalogDB.QueryRow("SELECT COUNT(*) FROM investment_options").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count options: %w", err)
	}
	return count, nil
}

func scanOption(rows *sql.Rows) (InvestmentOption, error) {
	var opt InvestmentOption
	var expectedReturn sql.NullFloat64

	err := rows.Scan(&opt.InvestmentID, &opt.Name, &opt.Type, &opt.Risk,
		&expectedReturn, &opt.Sector, &opt.Industry, &opt.Description)
	if err != nil {
		return InvestmentOption{}, err
	}

	if expectedReturn.Valid {
		opt.ExpectedReturn = &expectedReturn.Float64
	}

	return opt, nil
}
