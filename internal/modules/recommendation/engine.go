package recommendation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jayanthkotte/Personalized-Investment-Recommendation-App/internal/modules/catalog"
	"github.com/jayanthkotte/Personalized-Investment-Recommendation-App/internal/modules/recommendation/artifact"
	"github.com/jayanthkotte/Personalized-Investment-Recommendation-App/internal/modules/users"
)

// Tenure and capital bounds for the risk/tenure/capital variant
const (
	minTenure  = 1
	maxTenure  = 10
	minCapital = 1000
	maxCapital = 100000
)

// ProfileReader provides the stored user profile without importing the
// users repository directly
type ProfileReader interface {
	GetByID(id string) (*users.UserProfile, error)
}

// CatalogStore resolves label identifiers to investment options
type CatalogStore interface {
	FindByIDs(ids []string) ([]catalog.InvestmentOption, error)
}

// RecordStore persists and lists recommendation records
type RecordStore interface {
	Create(record Record) error
	ListByUser(userID string) ([]Record, error)
}

// BundleProvider yields the current classifier bundle. Implementations
// must return a fully consistent bundle: classifier, vocabulary and
// thresholds always come from the same artifact version.
type BundleProvider interface {
	Bundle() *artifact.Bundle
}

// Engine runs the recommendation pipeline: guard checks, feature
// encoding, classifier scoring, threshold selection, catalog lookup and
// record persistence. One invocation is one fully ordered chain; the
// engine holds no mutable state of its own.
type Engine struct {
	profiles     ProfileReader
	options      CatalogStore
	records      RecordStore
	profileModel BundleProvider
	rtcModel     BundleProvider
	log          zerolog.Logger
}

func NewEngine(profiles ProfileReader, options CatalogStore, records RecordStore, profileModel, rtcModel BundleProvider, log zerolog.Logger) *Engine {
	return &Engine{
		profiles:     profiles,
		options:      options,
		records:      records,
		profileModel: profileModel,
		rtcModel:     rtcModel,
		log:          log.With().Str("component", "recommendation_engine").Logger(),
	}
}

// RecommendByProfile scores the stored risk level, financial behavior
// and investment goal against the profile classifier and persists the
// resulting record.
func (e *Engine) RecommendByProfile(userID string) (*Result, error) {
	user, err := e.loadGuardedProfile(userID)
	if err != nil {
		return nil, err
	}

	bundle := e.profileModel.Bundle()
	features := ProfileFeatures{
		RiskLevel: normalizeCategory(user.RiskLevel),
		Behavior:  normalizeCategory(user.FinancialBehavior),
		Goal:      normalizeCategory(user.InvestmentGoal),
	}
	vector, err := features.Vector(bundle.Encoder())
	if err != nil {
		return nil, encodingFailure(err)
	}

	record := Record{
		ID:           uuid.New().String(),
		UserID:       userID,
		RiskLevel:    features.RiskLevel,
		Behavior:     features.Behavior,
		Goal:         features.Goal,
		ModelVersion: bundle.Version,
		CreatedAt:    time.Now().UTC(),
	}
	return e.scoreAndPersist(bundle, vector, record)
}

// RecommendByRiskTenureCapital scores the stored risk level together
// with a request-supplied tenure and capital. Capital is additionally
// bucketed into a coarse bin before encoding.
func (e *Engine) RecommendByRiskTenureCapital(userID string, tenure, capital int) (*Result, error) {
	user, err := e.loadGuardedProfile(userID)
	if err != nil {
		return nil, err
	}

	if tenure < minTenure || tenure > maxTenure {
		return nil, failure(KindInvalidInput, fmt.Sprintf("tenure must be between %d and %d years", minTenure, maxTenure))
	}
	if capital < minCapital || capital > maxCapital {
		return nil, failure(KindInvalidInput, fmt.Sprintf("capital must be between %d and %d", minCapital, maxCapital))
	}

	bundle := e.rtcModel.Bundle()
	features := RTCFeatures{
		RiskLevel: normalizeCategory(user.RiskLevel),
		Tenure:    tenure,
		Capital:   capital,
	}
	vector, err := features.Vector(bundle.Encoder())
	if err != nil {
		return nil, encodingFailure(err)
	}

	record := Record{
		ID:           uuid.New().String(),
		UserID:       userID,
		RiskLevel:    features.RiskLevel,
		Tenure:       &tenure,
		Capital:      &capital,
		ModelVersion: bundle.Version,
		CreatedAt:    time.Now().UTC(),
	}
	return e.scoreAndPersist(bundle, vector, record)
}

// History lists a user's past recommendations, newest first
func (e *Engine) History(userID string) ([]Record, error) {
	records, err := e.records.ListByUser(userID)
	if err != nil {
		return nil, wrapFailure(KindStore, "failed to load recommendation history", err)
	}
	return records, nil
}

// loadGuardedProfile fetches the profile and applies the precondition
// guards. Order matters: a profile that is both incomplete and missing
// a derived behavior reports the incomplete profile first.
func (e *Engine) loadGuardedProfile(userID string) (*users.UserProfile, error) {
	user, err := e.profiles.GetByID(userID)
	if err != nil {
		return nil, wrapFailure(KindStore, "failed to load user profile", err)
	}
	if user == nil {
		return nil, failure(KindUserNotFound, "user not found")
	}
	if !user.RiskProfileCompleted || user.RiskLevel == "" || user.InvestmentGoal == "" {
		return nil, failure(KindProfileIncomplete, "complete your risk profile to get recommendations")
	}
	if user.FinancialBehavior == "" || strings.EqualFold(user.FinancialBehavior, "unknown") {
		return nil, failure(KindBehaviorUnknown, "upload transactions so your financial behavior can be determined")
	}
	return user, nil
}

// scoreAndPersist runs the shared tail of both variants: score, compare
// against the bundle's thresholds, resolve matched labels against the
// catalog and persist the record. A record is only written when at least
// one suggestion resolved.
func (e *Engine) scoreAndPersist(bundle *artifact.Bundle, vector []float64, record Record) (*Result, error) {
	scores, err := bundle.Score(vector)
	if err != nil {
		return nil, wrapFailure(KindInternal, "classifier scoring failed", err)
	}

	var selected []string
	for i, score := range scores {
		if score >= bundle.Thresholds[i] {
			selected = append(selected, bundle.Labels[i])
		}
	}
	if len(selected) == 0 {
		return nil, failure(KindNoMatch, "no suitable investments found for your profile")
	}

	suggestions, err := e.options.FindByIDs(selected)
	if err != nil {
		return nil, wrapFailure(KindStore, "failed to resolve investment options", err)
	}
	if len(suggestions) == 0 {
		return nil, failure(KindNoMatch, "no suitable investments found for your profile")
	}

	record.SuggestionIDs = make([]string, 0, len(suggestions))
	for _, opt := range suggestions {
		record.SuggestionIDs = append(record.SuggestionIDs, opt.InvestmentID)
	}

	if err := e.records.Create(record); err != nil {
		return nil, wrapFailure(KindStore, "failed to store recommendation", err)
	}

	e.log.Info().
		Str("user_id", record.UserID).
		Str("model_version", record.ModelVersion).
		Int("suggestions", len(record.SuggestionIDs)).
		Msg("Recommendation created")

	return &Result{Record: record, Suggestions: suggestions}, nil
}

func encodingFailure(err error) error {
	var unknown *artifact.UnknownCategoryError
	if errors.As(err, &unknown) {
		return wrapFailure(KindUnknownCategory, unknown.Error(), err)
	}
	return wrapFailure(KindInternal, "feature encoding failed", err)
}

// normalizeCategory capitalizes each word so stored values like "high"
// or "wealth growth" match the vocabulary's canonical casing
func normalizeCategory(value string) string {
	words := strings.Fields(strings.ToLower(strings.TrimSpace(value)))
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
