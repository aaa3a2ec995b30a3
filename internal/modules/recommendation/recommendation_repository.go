package recommendation

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const recommendationsColumns = `id, user_id, capital, tenure, risk_level, behavior, goal,
	suggestion_ids, model_version, created_at`

// Repository persists recommendation records in the app database
type Repository struct {
	appDB *sql.DB
	log   zerolog.Logger
}

func NewRepository(appDB *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		appDB: appDB,
		log:   log.With().Str("repo", "recommendations").Logger(),
	}
}

// Create appends a recommendation record. Records are never updated
// after this point.
func (r *Repository) Create(record Record) error {
	suggestionIDs, err := json.Marshal(record.SuggestionIDs)
	if err != nil {
		return fmt.Errorf("failed to encode suggestion ids: %w", err)
	}

	query := fmt.Sprintf(`INSERT INTO recommendations (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, recommendationsColumns)
	_, err = r.appDB.Exec(query,
		record.ID,
		record.UserID,
		record.Capital,
		record.Tenure,
		record.RiskLevel,
		record.Behavior,
		record.Goal,
		string(suggestionIDs),
		record.ModelVersion,
		record.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert recommendation %s: %w", record.ID, err)
	}
	return nil
}

// ListByUser returns a user's recommendation history, newest first
func (r *Repository) ListByUser(userID string) ([]Record, error) {
	query := fmt.Sprintf(`SELECT %s FROM recommendations WHERE user_id = ? ORDER BY created_at DESC, id DESC`, recommendationsColumns)
	rows, err := r.appDB.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query recommendations for user %s: %w", userID, err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var record Record
		var behavior, goal sql.NullString
		var capital, tenure sql.NullInt64
		var suggestionIDs, createdAt string

		err := rows.Scan(
			&record.ID,
			&record.UserID,
			&capital,
			&tenure,
			&record.RiskLevel,
			&behavior,
			&goal,
			&suggestionIDs,
			&record.ModelVersion,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recommendation row: %w", err)
		}

		if capital.Valid {
			v := int(capital.Int64)
			record.Capital = &v
		}
		if tenure.Valid {
			v := int(tenure.Int64)
			record.Tenure = &v
		}
		record.Behavior = behavior.String
		record.Goal = goal.String
		if err := json.Unmarshal([]byte(suggestionIDs), &record.SuggestionIDs); err != nil {
			return nil, fmt.Errorf("failed to decode suggestion ids for %s: %w", record.ID, err)
		}
		if parsed, err := time.Parse(time.RFC3339, createdAt); err == nil {
			record.CreatedAt = parsed
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
