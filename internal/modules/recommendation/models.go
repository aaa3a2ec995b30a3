package recommendation

import (
	"time"

	"github.com/jayanthkotte/Personalized-Investment-Recommendation-App/internal/modules/catalog"
)

// Record is one stored recommendation. Records are append-only history;
// once written they are never updated.
type Record struct {
	CreatedAt     time.Time `json:"created_at"`
	Capital       *int      `json:"capital,omitempty"`
	Tenure        *int      `json:"tenure,omitempty"`
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	RiskLevel     string    `json:"risk_level"`
	Behavior      string    `json:"behavior,omitempty"`
	Goal          string    `json:"goal,omitempty"`
	ModelVersion  string    `json:"model_version"`
	SuggestionIDs []string  `json:"suggestion_ids"`
}

// Result is what the engine hands back to the web layer: the stored
// record plus the resolved investment options in catalog lookup order.
type Result struct {
	Record      Record                    `json:"record"`
	Suggestions []catalog.InvestmentOption `json:"suggestions"`
}
