// Command replay feeds a recorded outcome dump through the prediction engine
// offline, so heuristic changes can be sanity-checked against real draws
// without a database or a live feed.
//
// The dump is a JSON array of rows, oldest first:
//
//	[{"issueNumber":"20240101001","number":7,"color":"green"}, ...]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"hilotrack/internal/predictor"
	"hilotrack/models"
)

type dumpRow struct {
	IssueNumber string      `json:"issueNumber"`
	Number      json.Number `json:"number"`
	Color       string      `json:"color"`
}

// memoryStore satisfies the history store contract without persistence.
type memoryStore struct {
	mu   sync.Mutex
	recs []models.PredictionRecord
}

func (m *memoryStore) Append(_ context.Context, rec models.PredictionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs = append(m.recs, rec)
	return nil
}

func (m *memoryStore) QueryRecent(_ context.Context, limit int) ([]models.PredictionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.PredictionRecord
	for i := len(m.recs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.recs[i])
	}
	return out, nil
}

func (m *memoryStore) AggregateOutcomeCounts(_ context.Context) (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var wins, losses int
	for _, r := range m.recs {
		switch r.Outcome {
		case models.OutcomeWin:
			wins++
		case models.OutcomeLoss:
			losses++
		}
	}
	return wins, losses, nil
}

func (m *memoryStore) ExportAll(context.Context) (models.ArchiveHandle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return models.ArchiveHandle{ID: "replay", RecordCount: len(m.recs)}, nil
}

func (m *memoryStore) ClearAll(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs = nil
	return nil
}

func main() {
	dumpPath := flag.String("dump", "", "path to a JSON dump of draws, oldest first")
	windowSize := flag.Int("window", 20, "events visible per simulated poll")
	lossThreshold := flag.Int("loss-threshold", 2, "loss streak that triggers the strategy switch")
	verbose := flag.Bool("v", false, "print every resolution")
	flag.Parse()

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.WarnLevel).With().Timestamp().Logger()

	if *dumpPath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay -dump draws.json [-window 20] [-loss-threshold 2]")
		os.Exit(2)
	}

	raw, err := os.ReadFile(*dumpPath)
	if err != nil {
		log.Fatal().Err(err).Msg("reading dump")
	}

	var rows []dumpRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		log.Fatal().Err(err).Msg("parsing dump")
	}
	if len(rows) == 0 {
		log.Fatal().Msg("dump contains no rows")
	}

	events := make([]models.ResolvedEvent, 0, len(rows))
	for _, r := range rows {
		var n int
		if _, err := fmt.Sscanf(r.Number.String(), "%d", &n); err != nil {
			continue
		}
		events = append(events, models.ResolvedEvent{
			ID:        r.IssueNumber,
			Magnitude: n,
			Category:  models.CategoryFromMagnitude(n),
			ColorTag:  r.Color,
		})
	}

	store := &memoryStore{}
	engine := predictor.NewEngine(store, *lossThreshold)
	ctx := context.Background()

	// Replay oldest to newest: each step shows the engine the same
	// newest-first window a live poll would have produced.
	var last models.ObservationResult
	for i := range events {
		window := windowEndingAt(events, i, *windowSize)
		res, _ := engine.Observe(ctx, window)
		last = res
		if *verbose {
			fmt.Printf("%s  n=%d %-4s  %-18s next=%-4s  %s\n",
				res.Issue, res.Magnitude, res.Category, res.Outcome.Label(), res.Prediction, res.Strategy)
		}
	}

	fmt.Printf("\nreplayed %d draws (window=%d, loss-threshold=%d)\n", len(events), *windowSize, *lossThreshold)
	fmt.Printf("wins=%d losses=%d total=%d accuracy=%.1f%%\n", last.Wins, last.Losses, last.Total, last.Accuracy)
}

// windowEndingAt builds the newest-first window whose head is events[i].
func windowEndingAt(events []models.ResolvedEvent, i, size int) []models.ResolvedEvent {
	window := make([]models.ResolvedEvent, 0, size)
	for j := i; j >= 0 && len(window) < size; j-- {
		window = append(window, events[j])
	}
	return window
}
