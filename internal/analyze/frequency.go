package analyze

import (
	"sort"

	"hilotrack/models"
)

// magnitudeRank orders the distinct magnitudes of a window by descending
// occurrence count. Ties keep first-encountered order, so the ranking is
// stable for identical windows.
func magnitudeRank(window []models.ResolvedEvent) []int {
	counts := make(map[int]int, len(window))
	var order []int
	for _, ev := range window {
		if counts[ev.Magnitude] == 0 {
			order = append(order, ev.Magnitude)
		}
		counts[ev.Magnitude]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	return order
}

// HotNumbers returns the topN most frequent magnitudes in the window,
// most frequent first. An empty window yields an empty slice; callers
// building display hints must tolerate that.
func HotNumbers(window []models.ResolvedEvent, topN int) []int {
	rank := magnitudeRank(window)
	if len(rank) > topN {
		rank = rank[:topN]
	}
	return rank
}

// ColdNumbers returns the bottomN least frequent magnitudes, keeping the
// descending-count order among them (the very coldest comes last).
func ColdNumbers(window []models.ResolvedEvent, bottomN int) []int {
	rank := magnitudeRank(window)
	if len(rank) > bottomN {
		rank = rank[len(rank)-bottomN:]
	}
	return rank
}
