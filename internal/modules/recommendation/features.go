// Package recommendation implements the recommendation decision engine:
// feature encoding, classifier scoring, threshold selection and the
// persisted recommendation history.
package recommendation

import (
	"github.com/jayanthkotte/Personalized-Investment-Recommendation-App/internal/modules/recommendation/artifact"
)

// Capital bins. Boundaries are inclusive on the lower edge: 20000 is
// medium, 60000 is high.
const (
	CapitalBinLow    = "low"
	CapitalBinMedium = "medium"
	CapitalBinHigh   = "high"
)

// CapitalBin buckets a capital amount into its categorical feature value
func CapitalBin(capital int) string {
	switch {
	case capital < 20000:
		return CapitalBinLow
	case capital < 60000:
		return CapitalBinMedium
	default:
		return CapitalBinHigh
	}
}

// ProfileFeatures is the fixed feature record for the profile variant
type ProfileFeatures struct {
	RiskLevel string
	Behavior  string
	Goal      string
}

// Vector encodes the record into the 3-dimensional vector
// [risk_index, behavior_index, goal_index]
func (f ProfileFeatures) Vector(enc *artifact.Encoder) ([]float64, error) {
	risk, err := enc.Encode(artifact.FeatureRiskLevel, f.RiskLevel)
	if err != nil {
		return nil, err
	}
	behavior, err := enc.Encode(artifact.FeatureBehavior, f.Behavior)
	if err != nil {
		return nil, err
	}
	goal, err := enc.Encode(artifact.FeatureGoal, f.Goal)
	if err != nil {
		return nil, err
	}
	return []float64{float64(risk), float64(behavior), float64(goal)}, nil
}

// RTCFeatures is the fixed feature record for the risk/tenure/capital variant
type RTCFeatures struct {
	RiskLevel string
	Tenure    int
	Capital   int
}

// Vector encodes the record into the 4-dimensional vector
// [risk_index, tenure, capital, capital_bin_index]. Tenure and capital
// enter as raw numeric features; the bin is derived from capital.
func (f RTCFeatures) Vector(enc *artifact.Encoder) ([]float64, error) {
	risk, err := enc.Encode(artifact.FeatureRiskLevel, f.RiskLevel)
	if err != nil {
		return nil, err
	}
	bin, err := enc.Encode(artifact.FeatureCapitalBin, CapitalBin(f.Capital))
	if err != nil {
		return nil, err
	}
	return []float64{float64(risk), float64(f.Tenure), float64(f.Capital), float64(bin)}, nil
}
