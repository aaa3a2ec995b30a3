package artifact

import "fmt"

// Feature names used as vocabulary keys in bundle files
const (
	FeatureRiskLevel  = "risk_level"
	FeatureBehavior   = "behavior"
	FeatureGoal       = "goal"
	FeatureCapitalBin = "capital_bin"
)

// UnknownCategoryError reports a categorical value that was not observed
// when the bundle was calibrated. This is a configuration/data-drift fault:
// encoding must never silently default to some bucket.
type UnknownCategoryError struct {
	Feature string
	Value   string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("unknown category %q for feature %q", e.Value, e.Feature)
}

// Encoder maps categorical feature values to the vocabulary indices fixed
// at calibration time. Encoding is pure: identical inputs always produce
// identical indices for a given bundle version.
type Encoder struct {
	vocab map[string][]string
	index map[string]map[string]int
}

// NewEncoder builds an encoder over per-feature class lists, where a
// class's position in its list is its index.
func NewEncoder(vocab map[string][]string) *Encoder {
	index := make(map[string]map[string]int, len(vocab))
	for feature, classes := range vocab {
		m := make(map[string]int, len(classes))
		for i, class := range classes {
			m[class] = i
		}
		index[feature] = m
	}
	return &Encoder{vocab: vocab, index: index}
}

// Encode returns the vocabulary index of raw for the named feature
func (e *Encoder) Encode(feature, raw string) (int, error) {
	m, ok := e.index[feature]
	if !ok {
		return 0, &UnknownCategoryError{Feature: feature, Value: raw}
	}
	idx, ok := m[raw]
	if !ok {
		return 0, &UnknownCategoryError{Feature: feature, Value: raw}
	}
	return idx, nil
}

// Classes returns the class list for a feature in index order
func (e *Encoder) Classes(feature string) []string {
	return e.vocab[feature]
}
