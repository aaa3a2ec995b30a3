package catalog

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
)

//go:embed seed/investment_options.json
var seedFiles embed.FS

// SeedIfEmpty populates the catalog from the embedded seed list when the
// table has no rows. Refreshes from external market-data providers happen
// out of process; this only guarantees a usable catalog on first start.
func SeedIfEmpty(repo *OptionRepository, log zerolog.Logger) error {
	count, err := repo.Count()
	if err != nil {
		return fmt.Errorf("failed to check catalog size: %w", err)
	}
	if count > 0 {
		return nil
	}

	data, err := seedFiles.ReadFile("seed/investment_options.json")
	if err != nil {
		return fmt.Errorf("failed to read embedded seed data: %w", err)
	}

	var options []InvestmentOption
	if err := json.Unmarshal(data, &options); err != nil {
		return fmt.Errorf("failed to parse seed data: %w", err)
	}

	for _, opt := range options {
		if err := repo.Upsert(opt); err != nil {
			return fmt.Errorf("failed to seed option %s: %w", opt.InvestmentID, err)
		}
	}

	log.Info().Int("count", len(options)).Msg("Seeded investment options catalog")
	return nil
}
