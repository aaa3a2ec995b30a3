package transactions

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// ProfileStore persists derived behavior labels onto user profiles
// Used to avoid a dependency cycle with the users module
type ProfileStore interface {
	SetBehavior(userID, behavior string) error
}

// Service ingests transaction CSVs and keeps the derived behavior label current
type Service struct {
	repo         *Repository
	profileStore ProfileStore
	log          zerolog.Logger
}

// NewService creates a new transaction service
func NewService(repo *Repository, profileStore ProfileStore, log zerolog.Logger) *Service {
	return &Service{
		repo:         repo,
		profileStore: profileStore,
		log:          log.With().Str("service", "transactions").Logger(),
	}
}

// IngestResult summarizes one CSV upload
type IngestResult struct {
	Behavior BehaviorLabel `json:"financial_behavior_label"`
	NewCount int           `json:"new_count"`
}

// IngestCSV parses a bank statement CSV, stores the new transactions and
// recomputes the user's financial behavior from the full history.
// Expected columns: date, amount, description, type. Amounts are stored as
// magnitudes; a missing or unknown type defaults to debit.
func (s *Service) IngestCSV(userID string, reader io.Reader) (*IngestResult, error) {
	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true

	header, err := csvReader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"date", "amount", "description"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("CSV is missing required column %q", required)
		}
	}

	newCount := 0
	line := 1
	for {
		row, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}
		line++

		record, err := s.rowToRecord(userID, row, columns)
		if err != nil {
			return nil, fmt.Errorf("invalid CSV row %d: %w", line, err)
		}

		inserted, err := s.repo.Insert(record)
		if err != nil {
			return nil, fmt.Errorf("failed to store transaction: %w", err)
		}
		if inserted {
			newCount++
		}
	}

	behavior, err := s.RecomputeBehavior(userID)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("user_id", userID).
		Int("new_count", newCount).
		Str("behavior", string(behavior)).
		Msg("Ingested transactions")

	return &IngestResult{NewCount: newCount, Behavior: behavior}, nil
}

// RecomputeBehavior reclassifies the user from the stored transaction sums
// and persists the label onto the profile. The recommendation engine only
// ever reads that stored label.
func (s *Service) RecomputeBehavior(userID string) (BehaviorLabel, error) {
	agg, err := s.repo.SumsByType(userID)
	if err != nil {
		return "", fmt.Errorf("failed to aggregate transactions: %w", err)
	}

	behavior := ClassifyBehavior(agg.Income, agg.Expenses, agg.Investment)

	if err := s.profileStore.SetBehavior(userID, string(behavior)); err != nil {
		return "", fmt.Errorf("failed to persist behavior: %w", err)
	}

	return behavior, nil
}

func (s *Service) rowToRecord(userID string, row []string, columns map[string]int) (Record, error) {
	field := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	amount, err := strconv.ParseFloat(field("amount"), 64)
	if err != nil {
		return Record{}, fmt.Errorf("bad amount %q", field("amount"))
	}

	// Unrecognized types are kept as-is; the behavior aggregates only
	// count credit, debit and investment.
	txType := strings.ToLower(field("type"))
	if txType == "" {
		txType = TypeDebit
	}

	return Record{
		UserID:      userID,
		Date:        field("date"),
		Amount:      math.Abs(amount),
		Description: field("description"),
		Type:        txType,
	}, nil
}
