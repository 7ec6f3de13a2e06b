package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryFromMagnitude(t *testing.T) {
	tests := []struct {
		magnitude int
		expected  Category
	}{
		{0, CategoryLow},
		{4, CategoryLow},
		{5, CategoryHigh},
		{9, CategoryHigh},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, CategoryFromMagnitude(tt.magnitude), "magnitude %d", tt.magnitude)
	}
}

func TestCategoryOpposite(t *testing.T) {
	assert.Equal(t, CategoryLow, CategoryHigh.Opposite())
	assert.Equal(t, CategoryHigh, CategoryLow.Opposite())
}

func TestCategoryRoundTrip(t *testing.T) {
	assert.Equal(t, CategoryHigh, ParseCategory(CategoryHigh.String()))
	assert.Equal(t, CategoryLow, ParseCategory(CategoryLow.String()))
}

func TestOutcomeRoundTrip(t *testing.T) {
	for _, o := range []Outcome{OutcomeFirstObservation, OutcomeWin, OutcomeLoss, OutcomeUnchanged, OutcomeNoData} {
		assert.Equal(t, o, ParseOutcome(o.String()))
	}
}

func TestEnumsMarshalAsLabels(t *testing.T) {
	b, err := json.Marshal(CategoryHigh)
	assert.NoError(t, err)
	assert.Equal(t, `"High"`, string(b))

	b, err = json.Marshal(OutcomeWin)
	assert.NoError(t, err)
	assert.Equal(t, `"WIN ✅"`, string(b))
}

func TestDisplayID(t *testing.T) {
	assert.Equal(t, "01010", ResolvedEvent{ID: "20240101010"}.DisplayID())
	assert.Equal(t, "123", ResolvedEvent{ID: "123"}.DisplayID())
}

func TestNextIDHint(t *testing.T) {
	assert.Equal(t, "20240101011", ResolvedEvent{ID: "20240101010"}.NextIDHint())
	assert.Equal(t, "", ResolvedEvent{ID: "2024-01-01-10"}.NextIDHint(), "non-numeric ids give no hint")
}
