// Package catalog manages the fixed catalog of investment options.
package catalog

// Investment option types
const (
	TypeStock      = "Stock"
	TypeMutualFund = "Mutual Fund"
)

// InvestmentOption represents one instrument in the recommendation catalog.
// ExpectedReturn is nil when the yearly return could not be derived upstream.
type InvestmentOption struct {
	ExpectedReturn *float64 `json:"expected_return"`
	InvestmentID   string   `json:"investment_id"`
	Name           string   `json:"name"`
	Type           string   `json:"type"`
	Risk           string   `json:"risk"`
	Sector         string   `json:"sector,omitempty"`
	Industry       string   `json:"industry,omitempty"`
	Description    string   `json:"description,omitempty"`
}
