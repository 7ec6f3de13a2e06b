package analyze

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"hilotrack/models"
)

func events(magnitudes ...int) []models.ResolvedEvent {
	evs := make([]models.ResolvedEvent, len(magnitudes))
	for i, n := range magnitudes {
		evs[i] = models.ResolvedEvent{
			Magnitude: n,
			Category:  models.CategoryFromMagnitude(n),
		}
	}
	return evs
}

func TestHotNumbers(t *testing.T) {
	tests := []struct {
		name       string
		magnitudes []int
		topN       int
		expected   []int
	}{
		{
			name:       "counts across the whole window",
			magnitudes: []int{7, 3, 7, 3, 7, 1, 3, 7, 9, 3},
			topN:       3,
			expected:   []int{7, 3, 1}, // 7 and 3 four times each, then 1 seen before 9
		},
		{
			name:       "ties keep first-encountered order",
			magnitudes: []int{5, 2, 5, 2, 8},
			topN:       2,
			expected:   []int{5, 2},
		},
		{
			name:       "fewer distinct values than topN",
			magnitudes: []int{4, 4, 4},
			topN:       3,
			expected:   []int{4},
		},
		{
			name:       "empty window yields empty slice",
			magnitudes: nil,
			topN:       3,
			expected:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HotNumbers(events(tt.magnitudes...), tt.topN)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestHotNumbersTieOrderIsStable(t *testing.T) {
	window := events(9, 1, 9, 1, 4, 4)
	first := HotNumbers(window, 3)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, HotNumbers(window, 3))
	}
	assert.Equal(t, []int{9, 1, 4}, first)
}

func TestColdNumbers(t *testing.T) {
	// 7 appears three times, 3 twice, 1 and 9 once each; the coldest
	// trail the ranking in descending-count order.
	window := events(7, 3, 7, 1, 7, 3, 9)
	assert.Equal(t, []int{3, 1, 9}, ColdNumbers(window, 3))

	assert.Empty(t, ColdNumbers(nil, 3))
}
