package predictor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"hilotrack/models"
)

func cats(s string) []models.Category {
	out := make([]models.Category, len(s))
	for i, r := range s {
		if r == 'H' {
			out[i] = models.CategoryHigh
		} else {
			out[i] = models.CategoryLow
		}
	}
	return out
}

func TestBaseDirection(t *testing.T) {
	tests := []struct {
		name     string
		window   string // newest first, H/L per entry
		expected models.Category
	}{
		{
			name:     "seven highs reverse to low",
			window:   "HHHHHHHLLL",
			expected: models.CategoryLow,
		},
		{
			name:     "seven lows reverse to high",
			window:   "LLLLLLLHHH",
			expected: models.CategoryHigh,
		},
		{
			name:     "reversal dominates momentum on all-high run",
			window:   "HHHHHHHHHH",
			expected: models.CategoryLow,
		},
		{
			name:     "three fresh highs ride momentum",
			window:   "HHHLLHLLHL",
			expected: models.CategoryHigh,
		},
		{
			name:     "three fresh lows ride momentum",
			window:   "LLLHHLHHLH",
			expected: models.CategoryLow,
		},
		{
			name:     "majority high without run or momentum",
			window:   "HLHHLHHLHL",
			expected: models.CategoryHigh,
		},
		{
			name:     "exact tie breaks to low",
			window:   "HLHLHLHLHL",
			expected: models.CategoryLow,
		},
		{
			// The trailing highs would tip the first rule into reversal
			// if anything past the tenth entry were read.
			name:     "only first ten entries read",
			window:   "HLHHLHHLHL" + "HHHH",
			expected: models.CategoryHigh,
		},
		{
			name:     "two entries fall through to majority",
			window:   "HL",
			expected: models.CategoryLow,
		},
		{
			name:     "two highs make a majority",
			window:   "HH",
			expected: models.CategoryHigh,
		},
		{
			name:     "single low",
			window:   "L",
			expected: models.CategoryLow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BaseDirection(cats(tt.window))
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestBaseDirectionIsPure(t *testing.T) {
	window := cats("HLHHLHLHLL")
	first := BaseDirection(window)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, BaseDirection(window))
	}
}
