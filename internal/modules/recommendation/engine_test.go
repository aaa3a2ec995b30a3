package recommendation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jayanthkotte/Personalized-Investment-Recommendation-App/internal/modules/catalog"
	"github.com/jayanthkotte/Personalized-Investment-Recommendation-App/internal/modules/recommendation/artifact"
	"github.com/jayanthkotte/Personalized-Investment-Recommendation-App/internal/modules/users"
)

type stubProfiles struct {
	profiles map[string]*users.UserProfile
}

func (s *stubProfiles) GetByID(id string) (*users.UserProfile, error) {
	return s.profiles[id], nil
}

type stubCatalog struct {
	options map[string]catalog.InvestmentOption
}

func (s *stubCatalog) FindByIDs(ids []string) ([]catalog.InvestmentOption, error) {
	var out []catalog.InvestmentOption
	for _, id := range ids {
		if opt, ok := s.options[id]; ok {
			out = append(out, opt)
		}
	}
	return out, nil
}

type stubRecords struct {
	created []Record
}

func (s *stubRecords) Create(record Record) error {
	s.created = append(s.created, record)
	return nil
}

func (s *stubRecords) ListByUser(userID string) ([]Record, error) {
	return s.created, nil
}

type stubProvider struct {
	bundle *artifact.Bundle
}

func (s *stubProvider) Bundle() *artifact.Bundle { return s.bundle }

// leafEnsemble builds a single-node tree that always returns score
func leafEnsemble(score float64) artifact.Ensemble {
	return artifact.Ensemble{Trees: []artifact.Tree{
		{Nodes: []artifact.Node{{Feature: -1, Value: score}}},
	}}
}

func testVocab() map[string][]string {
	return map[string][]string{
		artifact.FeatureRiskLevel:  {"Low", "Medium", "High"},
		artifact.FeatureBehavior:   {"Saver", "Spender", "Investor"},
		artifact.FeatureGoal:       {"Retirement", "Wealth Growth", "Education"},
		artifact.FeatureCapitalBin: {"low", "medium", "high"},
	}
}

// fixedBundle scores labels A, B, C with constant probabilities
func fixedBundle(t *testing.T, scores, thresholds []float64) *artifact.Bundle {
	t.Helper()
	models := make([]artifact.Ensemble, len(scores))
	for i, score := range scores {
		models[i] = leafEnsemble(score)
	}
	bundle, err := artifact.New("test-v1", testVocab(), []string{"A", "B", "C"}, models, thresholds)
	require.NoError(t, err)
	return bundle
}

func completeProfile() *users.UserProfile {
	return &users.UserProfile{
		ID:                   "u1",
		RiskLevel:            "High",
		InvestmentGoal:       "Retirement",
		FinancialBehavior:    "Investor",
		RiskProfileCompleted: true,
	}
}

func testCatalog() *stubCatalog {
	return &stubCatalog{options: map[string]catalog.InvestmentOption{
		"A": {InvestmentID: "A", Name: "Alpha Fund", Type: catalog.TypeMutualFund, Risk: "High"},
		"B": {InvestmentID: "B", Name: "Beta Fund", Type: catalog.TypeMutualFund, Risk: "Low"},
		"C": {InvestmentID: "C", Name: "Gamma Stock", Type: catalog.TypeStock, Risk: "High"},
	}}
}

func newTestEngine(t *testing.T, profile *users.UserProfile, bundle *artifact.Bundle) (*Engine, *stubRecords) {
	t.Helper()
	profiles := &stubProfiles{profiles: map[string]*users.UserProfile{}}
	if profile != nil {
		profiles.profiles[profile.ID] = profile
	}
	records := &stubRecords{}
	provider := &stubProvider{bundle: bundle}
	engine := NewEngine(profiles, testCatalog(), records, provider, provider, testLog())
	return engine, records
}

func TestRecommendByProfile_SelectsLabelsAboveThreshold(t *testing.T) {
	bundle := fixedBundle(t, []float64{0.9, 0.1, 0.6}, []float64{0.5, 0.5, 0.5})
	engine, records := newTestEngine(t, completeProfile(), bundle)

	result, err := engine.RecommendByProfile("u1")
	require.NoError(t, err)

	require.Len(t, result.Suggestions, 2)
	assert.Equal(t, "A", result.Suggestions[0].InvestmentID)
	assert.Equal(t, "C", result.Suggestions[1].InvestmentID)
	assert.Equal(t, []string{"A", "C"}, result.Record.SuggestionIDs)
	assert.Equal(t, "test-v1", result.Record.ModelVersion)
	assert.Equal(t, "High", result.Record.RiskLevel)
	assert.Equal(t, "Investor", result.Record.Behavior)
	assert.Equal(t, "Retirement", result.Record.Goal)
	assert.Nil(t, result.Record.Tenure)
	assert.Nil(t, result.Record.Capital)

	require.Len(t, records.created, 1)
	assert.Equal(t, result.Record.ID, records.created[0].ID)
}

func TestRecommendByProfile_Deterministic(t *testing.T) {
	bundle := fixedBundle(t, []float64{0.9, 0.1, 0.6}, []float64{0.5, 0.5, 0.5})
	engine, _ := newTestEngine(t, completeProfile(), bundle)

	first, err := engine.RecommendByProfile("u1")
	require.NoError(t, err)
	second, err := engine.RecommendByProfile("u1")
	require.NoError(t, err)

	assert.Equal(t, first.Record.SuggestionIDs, second.Record.SuggestionIDs)
}

func TestRecommendByProfile_NormalizesStoredCasing(t *testing.T) {
	profile := completeProfile()
	profile.RiskLevel = "high"
	profile.InvestmentGoal = "wealth growth"
	profile.FinancialBehavior = "INVESTOR"

	bundle := fixedBundle(t, []float64{0.9, 0.1, 0.1}, []float64{0.5, 0.5, 0.5})
	engine, _ := newTestEngine(t, profile, bundle)

	result, err := engine.RecommendByProfile("u1")
	require.NoError(t, err)
	assert.Equal(t, "High", result.Record.RiskLevel)
	assert.Equal(t, "Wealth Growth", result.Record.Goal)
	assert.Equal(t, "Investor", result.Record.Behavior)
}

func TestRecommendByProfile_UserNotFound(t *testing.T) {
	bundle := fixedBundle(t, []float64{0.9, 0.1, 0.6}, nil)
	engine, _ := newTestEngine(t, nil, bundle)

	_, err := engine.RecommendByProfile("missing")
	var f *Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, KindUserNotFound, f.Kind)
}

func TestRecommendByProfile_GuardOrdering(t *testing.T) {
	// A profile that is both incomplete and has an unknown behavior
	// must report the incomplete profile first.
	profile := completeProfile()
	profile.RiskProfileCompleted = false
	profile.FinancialBehavior = "Unknown"

	bundle := fixedBundle(t, []float64{0.9, 0.1, 0.6}, nil)
	engine, _ := newTestEngine(t, profile, bundle)

	_, err := engine.RecommendByProfile("u1")
	var f *Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, KindProfileIncomplete, f.Kind)
}

func TestRecommendByProfile_BehaviorUnknown(t *testing.T) {
	profile := completeProfile()
	profile.FinancialBehavior = "Unknown"

	bundle := fixedBundle(t, []float64{0.9, 0.1, 0.6}, nil)
	engine, _ := newTestEngine(t, profile, bundle)

	_, err := engine.RecommendByProfile("u1")
	var f *Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, KindBehaviorUnknown, f.Kind)
}

func TestRecommendByProfile_NoMatchPersistsNothing(t *testing.T) {
	bundle := fixedBundle(t, []float64{0.1, 0.1, 0.1}, []float64{0.5, 0.5, 0.5})
	engine, records := newTestEngine(t, completeProfile(), bundle)

	_, err := engine.RecommendByProfile("u1")
	var f *Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, KindNoMatch, f.Kind)
	assert.Empty(t, records.created)
}

func TestRecommendByProfile_UnknownCategory(t *testing.T) {
	profile := completeProfile()
	profile.InvestmentGoal = "Time Travel"

	bundle := fixedBundle(t, []float64{0.9, 0.1, 0.6}, nil)
	engine, records := newTestEngine(t, profile, bundle)

	_, err := engine.RecommendByProfile("u1")
	var f *Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, KindUnknownCategory, f.Kind)
	assert.Empty(t, records.created)
}

func TestRecommendByRiskTenureCapital_Success(t *testing.T) {
	bundle := fixedBundle(t, []float64{0.9, 0.1, 0.6}, []float64{0.5, 0.5, 0.5})
	engine, records := newTestEngine(t, completeProfile(), bundle)

	result, err := engine.RecommendByRiskTenureCapital("u1", 5, 30000)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "C"}, result.Record.SuggestionIDs)
	require.NotNil(t, result.Record.Tenure)
	require.NotNil(t, result.Record.Capital)
	assert.Equal(t, 5, *result.Record.Tenure)
	assert.Equal(t, 30000, *result.Record.Capital)
	assert.Empty(t, result.Record.Behavior)
	assert.Empty(t, result.Record.Goal)
	require.Len(t, records.created, 1)
}

func TestRecommendByRiskTenureCapital_InputValidation(t *testing.T) {
	bundle := fixedBundle(t, []float64{0.9, 0.1, 0.6}, nil)
	engine, records := newTestEngine(t, completeProfile(), bundle)

	tests := []struct {
		name    string
		tenure  int
		capital int
	}{
		{"tenure below range", 0, 30000},
		{"tenure above range", 11, 30000},
		{"capital below range", 5, 999},
		{"capital above range", 5, 100001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.RecommendByRiskTenureCapital("u1", tt.tenure, tt.capital)
			var f *Failure
			require.ErrorAs(t, err, &f)
			assert.Equal(t, KindInvalidInput, f.Kind)
		})
	}
	assert.Empty(t, records.created)
}

func TestRecommendByRiskTenureCapital_RangeBoundariesAccepted(t *testing.T) {
	bundle := fixedBundle(t, []float64{0.9, 0.1, 0.6}, []float64{0.5, 0.5, 0.5})
	engine, _ := newTestEngine(t, completeProfile(), bundle)

	_, err := engine.RecommendByRiskTenureCapital("u1", 1, 1000)
	require.NoError(t, err)
	_, err = engine.RecommendByRiskTenureCapital("u1", 10, 100000)
	require.NoError(t, err)
}

func TestRecommendByRiskTenureCapital_CalibratedThresholdsApply(t *testing.T) {
	// With a calibrated threshold of 0.7 for label A, a 0.6 score no
	// longer selects it even though it clears the 0.5 default.
	bundle := fixedBundle(t, []float64{0.6, 0.1, 0.8}, []float64{0.7, 0.7, 0.7})
	engine, _ := newTestEngine(t, completeProfile(), bundle)

	result, err := engine.RecommendByRiskTenureCapital("u1", 5, 30000)
	require.NoError(t, err)
	assert.Equal(t, []string{"C"}, result.Record.SuggestionIDs)
}

func TestHistory_WrapsStoreErrors(t *testing.T) {
	bundle := fixedBundle(t, []float64{0.9, 0.1, 0.6}, nil)
	profiles := &stubProfiles{profiles: map[string]*users.UserProfile{}}
	records := &failingRecords{}
	provider := &stubProvider{bundle: bundle}
	engine := NewEngine(profiles, testCatalog(), records, provider, provider, testLog())

	_, err := engine.History("u1")
	var f *Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, KindStore, f.Kind)
}

type failingRecords struct{}

func (failingRecords) Create(Record) error { return errors.New("disk full") }

func (failingRecords) ListByUser(string) ([]Record, error) { return nil, errors.New("disk full") }
