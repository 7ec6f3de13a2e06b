package predictor

import "hilotrack/models"

// trendSpan is how many of the most recent categories the heuristic reads.
const trendSpan = 10

// reversalRunLength is the run size at which a trend is treated as
// exhausted and bet against.
const reversalRunLength = 7

// BaseDirection derives the base prediction from the most recent categories,
// newest-first. Only the first trendSpan entries are read.
//
// Rule order matters: the reversal rules are checked before the momentum
// rules because an extreme run would otherwise also satisfy momentum, and
// reversal is always treated as the dominant signal. Exact ten-entry ties
// resolve to Low.
func BaseDirection(categories []models.Category) models.Category {
	span := categories
	if len(span) > trendSpan {
		span = span[:trendSpan]
	}

	var highs, lows int
	for _, c := range span {
		if c == models.CategoryHigh {
			highs++
		} else {
			lows++
		}
	}

	// Reversal on a strong run.
	if highs >= reversalRunLength {
		return models.CategoryLow
	}
	if lows >= reversalRunLength {
		return models.CategoryHigh
	}

	// Short-run momentum on the freshest three.
	if len(span) >= 3 {
		if span[0] == models.CategoryHigh && span[1] == models.CategoryHigh && span[2] == models.CategoryHigh {
			return models.CategoryHigh
		}
		if span[0] == models.CategoryLow && span[1] == models.CategoryLow && span[2] == models.CategoryLow {
			return models.CategoryLow
		}
	}

	// Simple majority, ties to Low.
	if highs > lows {
		return models.CategoryHigh
	}
	return models.CategoryLow
}
