// Package users manages user accounts and risk profiles.
package users

import "time"

// InitialVirtualBalance is credited to every new account for paper investing
const InitialVirtualBalance = 100000.0

// Risk levels assignable from the risk questionnaire
const (
	RiskLow    = "Low"
	RiskMedium = "Medium"
	RiskHigh   = "High"
)

// UserProfile represents a user account with its risk/goal profile.
// FinancialBehavior is derived from transaction history on every ingestion
// and read (never recomputed) by the recommendation engine.
type UserProfile struct {
	CreatedAt            time.Time `json:"created_at"`
	RiskScore            *int      `json:"risk_score,omitempty"`
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	Email                string    `json:"email"`
	PasswordHash         string    `json:"-"`
	RiskLevel            string    `json:"risk_level,omitempty"`
	InvestmentGoal       string    `json:"investment_goal,omitempty"`
	FinancialBehavior    string    `json:"financial_behavior"`
	RiskProfileCompleted bool      `json:"risk_profile_completed"`
	VirtualBalance       float64   `json:"virtual_balance"`
}
