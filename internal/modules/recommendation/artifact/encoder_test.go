package artifact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncoder_Encode(t *testing.T) {
	enc := NewEncoder(map[string][]string{
		FeatureRiskLevel: {"Low", "Medium", "High"},
	})

	tests := []struct {
		value    string
		expected int
	}{
		{"Low", 0},
		{"Medium", 1},
		{"High", 2},
	}

	for _, tt := range tests {
		idx, err := enc.Encode(FeatureRiskLevel, tt.value)
		require.NoError(t, err)
		assert.Equal(t, tt.expected, idx)
	}
}

func TestEncoder_EncodeIsStable(t *testing.T) {
	enc := NewEncoder(map[string][]string{
		FeatureGoal: {"Retirement", "Education"},
	})

	first, err := enc.Encode(FeatureGoal, "Education")
	require.NoError(t, err)
	second, err := enc.Encode(FeatureGoal, "Education")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEncoder_UnknownValue(t *testing.T) {
	enc := NewEncoder(map[string][]string{
		FeatureRiskLevel: {"Low", "Medium", "High"},
	})

	_, err := enc.Encode(FeatureRiskLevel, "Extreme")
	var unknown *UnknownCategoryError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, FeatureRiskLevel, unknown.Feature)
	assert.Equal(t, "Extreme", unknown.Value)
}

func TestEncoder_UnknownFeature(t *testing.T) {
	enc := NewEncoder(map[string][]string{})

	_, err := enc.Encode("shoe_size", "42")
	var unknown *UnknownCategoryError
	require.ErrorAs(t, err, &unknown)
}

func TestEncoder_Classes(t *testing.T) {
	enc := NewEncoder(map[string][]string{
		FeatureCapitalBin: {"low", "medium", "high"},
	})

	assert.Equal(t, []string{"low", "medium", "high"}, enc.Classes(FeatureCapitalBin))
	assert.Nil(t, enc.Classes("missing"))
}
