package transactions

// BehaviorLabel is a coarse classification of a user's transaction pattern
type BehaviorLabel string

// Behavior labels
const (
	BehaviorSaver    BehaviorLabel = "Saver"
	BehaviorSpender  BehaviorLabel = "Spender"
	BehaviorInvestor BehaviorLabel = "Investor"
	BehaviorUnknown  BehaviorLabel = "Unknown"
)

// ClassifyBehavior derives a behavior label from per-type transaction sums.
// Inputs are non-negative magnitudes. Rules are evaluated in order, first
// match wins; the comparison directions are part of the contract, e.g. a
// saving rate of exactly 0.4 with a low investment rate is a Saver.
func ClassifyBehavior(income, expenses, investment float64) BehaviorLabel {
	if income == 0 {
		return BehaviorUnknown
	}

	savingRate := (income - expenses - investment) / income
	spendingRate := expenses / income
	investmentRate := investment / income

	switch {
	case savingRate >= 0.4 && investmentRate < 0.2:
		return BehaviorSaver
	case spendingRate >= 0.6 && investmentRate < 0.2:
		return BehaviorSpender
	case investmentRate >= 0.15 && savingRate >= 0.2:
		return BehaviorInvestor
	default:
		return BehaviorUnknown
	}
}
