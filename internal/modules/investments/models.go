package investments

import "time"

// Holding is a virtual portfolio position. Buying deducts the amount
// from the user's virtual balance; selling removes the holding and
// credits the amount back.
type Holding struct {
	DateInvested   time.Time `json:"date_invested"`
	ExpectedReturn *float64  `json:"expected_return,omitempty"`
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Type           string    `json:"type"`
	Company        string    `json:"company,omitempty"`
	Amount         float64   `json:"amount"`
}
