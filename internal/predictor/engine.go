package predictor

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"hilotrack/internal/analyze"
	"hilotrack/models"
)

// StrategyFollowTrend labels the default strategy of adopting the base
// direction unmodified.
const StrategyFollowTrend = "Follow-Trend"

// hotNumberCount is how many hot/cold magnitudes are surfaced per poll.
const hotNumberCount = 3

// Engine is the prediction state machine. It owns all mutable predictor
// state; every Observe/Reset call runs under one mutex so the full
// read-decide-write sequence is serialized. The history store append happens
// inside the critical section but is fire-and-forget: a failed append is
// logged and surfaced, never rolled back into the in-memory state.
type Engine struct {
	store         models.HistoryStore
	logger        zerolog.Logger
	lossThreshold int

	mu              sync.Mutex
	lossStreak      int
	totalResolved   int
	totalWins       int
	totalLosses     int
	lastSeenEventID string
	pending         *models.Category
	strategyLabel   string
	lastResult      *models.ObservationResult
}

// NewEngine creates an engine with zeroed counters. lossThreshold is the
// loss streak at which the strategy flips against the base direction.
func NewEngine(store models.HistoryStore, lossThreshold int) *Engine {
	return &Engine{
		store:         store,
		lossThreshold: lossThreshold,
		strategyLabel: StrategyFollowTrend,
		logger:        log.With().Str("component", "predictor").Logger(),
	}
}

// Snapshot is a read-only view of the live counters for the stats endpoint.
type Snapshot struct {
	Wins            int     `json:"wins"`
	Losses          int     `json:"losses"`
	Total           int     `json:"total"`
	Accuracy        float64 `json:"accuracy"`
	LossStreak      int     `json:"loss_streak"`
	Strategy        string  `json:"strategy"`
	Prediction      string  `json:"prediction,omitempty"`
	LastSeenEventID string  `json:"last_seen_event_id,omitempty"`
}

// Observe ingests one freshly fetched window of resolved events,
// newest-first. It scores the pending prediction when the head of the window
// is a genuinely new event, advances the counters, computes the next
// prediction and appends exactly one history record. Repeat polls of an
// already-scored event and empty windows are no-ops.
//
// The returned error is only ever a store append failure; the observation
// result is valid either way.
func (e *Engine) Observe(ctx context.Context, window []models.ResolvedEvent) (models.ObservationResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(window) == 0 {
		return e.noDataResultLocked(), nil
	}

	latest := window[0]
	if latest.ID == e.lastSeenEventID && e.lastResult != nil {
		res := *e.lastResult
		res.Outcome = models.OutcomeUnchanged
		return res, nil
	}

	// A new event has resolved. Score the pending prediction first: the
	// ordering here is load-bearing, the streak must reflect this event
	// before the next strategy is selected.
	outcome := models.OutcomeFirstObservation
	if e.pending != nil {
		e.totalResolved++
		if *e.pending == latest.Category {
			e.totalWins++
			e.lossStreak = 0
			outcome = models.OutcomeWin
		} else {
			e.totalLosses++
			e.lossStreak++
			outcome = models.OutcomeLoss
		}
	}
	e.lastSeenEventID = latest.ID

	base := BaseDirection(categoriesOf(window))
	prediction := base
	strategy := StrategyFollowTrend
	if e.lossStreak >= e.lossThreshold {
		prediction = base.Opposite()
		strategy = fmt.Sprintf("Switched (losses=%d)", e.lossStreak)
	}
	e.pending = &prediction
	e.strategyLabel = strategy

	hot := analyze.HotNumbers(window, hotNumberCount)
	cold := analyze.ColdNumbers(window, hotNumberCount)

	rec := models.PredictionRecord{
		EventID:         latest.ID,
		Magnitude:       latest.Magnitude,
		Category:        latest.Category,
		ColorTag:        latest.ColorTag,
		PredictionLabel: predictionLabel(prediction, hot),
		StrategyLabel:   strategy,
		Outcome:         outcome,
		RecordedAt:      time.Now().UTC(),
	}

	var appendErr error
	if err := e.store.Append(ctx, rec); err != nil {
		// The live stream is worth more than the audit trail: state has
		// already advanced and stays advanced. The gap is accepted.
		appendErr = fmt.Errorf("append history record: %w", err)
		e.logger.Error().Err(err).Str("event_id", latest.ID).Msg("history append failed, state advanced without record")
	}

	res := models.ObservationResult{
		EventID:    latest.ID,
		Issue:      latest.DisplayID(),
		NextIssue:  latest.NextIDHint(),
		Magnitude:  latest.Magnitude,
		Category:   latest.Category,
		ColorTag:   latest.ColorTag,
		Outcome:    outcome,
		Prediction: prediction,
		Strategy:   strategy,
		Wins:       e.totalWins,
		Losses:     e.totalLosses,
		Total:      e.totalResolved,
		Accuracy:   accuracyPercent(e.totalWins, e.totalResolved),
		LossStreak: e.lossStreak,
		Hot:        hot,
		Cold:       cold,
	}
	e.lastResult = &res

	e.logger.Info().
		Str("event_id", latest.ID).
		Int("number", latest.Magnitude).
		Str("result", latest.Category.String()).
		Str("outcome", outcome.String()).
		Str("prediction", prediction.String()).
		Str("strategy", strategy).
		Float64("accuracy", res.Accuracy).
		Msg("observation resolved")

	return res, appendErr
}

// Reset exports the full live history to an archive, clears the store and
// returns every counter to the zero epoch. It shares the Observe mutex, so
// no event can be scored into the old epoch once the export has begun and
// none can be lost to the clear. The in-memory state is zeroed even when the
// export or clear fails; the error is surfaced to the caller.
func (e *Engine) Reset(ctx context.Context) (models.ArchiveHandle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	handle, err := e.store.ExportAll(ctx)
	if err != nil {
		err = fmt.Errorf("export history: %w", err)
	} else if clearErr := e.store.ClearAll(ctx); clearErr != nil {
		err = fmt.Errorf("clear history: %w", clearErr)
	}

	e.lossStreak = 0
	e.totalResolved = 0
	e.totalWins = 0
	e.totalLosses = 0
	e.lastSeenEventID = ""
	e.pending = nil
	e.strategyLabel = StrategyFollowTrend
	e.lastResult = nil

	if err != nil {
		e.logger.Error().Err(err).Msg("reset completed with store failure, new epoch started anyway")
		return handle, err
	}

	e.logger.Info().
		Str("archive_id", handle.ID).
		Int("records", handle.RecordCount).
		Msg("epoch archived and reset")
	return handle, nil
}

// Snapshot reports the live counters without touching them.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := Snapshot{
		Wins:            e.totalWins,
		Losses:          e.totalLosses,
		Total:           e.totalResolved,
		Accuracy:        accuracyPercent(e.totalWins, e.totalResolved),
		LossStreak:      e.lossStreak,
		Strategy:        e.strategyLabel,
		LastSeenEventID: e.lastSeenEventID,
	}
	if e.pending != nil {
		s.Prediction = e.pending.String()
	}
	return s
}

func (e *Engine) noDataResultLocked() models.ObservationResult {
	return models.ObservationResult{
		Outcome:    models.OutcomeNoData,
		NoData:     true,
		Wins:       e.totalWins,
		Losses:     e.totalLosses,
		Total:      e.totalResolved,
		Accuracy:   accuracyPercent(e.totalWins, e.totalResolved),
		LossStreak: e.lossStreak,
		Strategy:   e.strategyLabel,
	}
}

func categoriesOf(window []models.ResolvedEvent) []models.Category {
	cats := make([]models.Category, len(window))
	for i, ev := range window {
		cats[i] = ev.Category
	}
	return cats
}

// predictionLabel annotates the predicted category with the hot numbers
// active at prediction time, e.g. "High (hot: 7,3,9)".
func predictionLabel(pred models.Category, hot []int) string {
	if len(hot) == 0 {
		return pred.String()
	}
	parts := make([]string, len(hot))
	for i, n := range hot {
		parts[i] = strconv.Itoa(n)
	}
	return fmt.Sprintf("%s (hot: %s)", pred, strings.Join(parts, ","))
}

// accuracyPercent is the running win rate as a percentage rounded to one
// decimal, 0 before anything has resolved.
func accuracyPercent(wins, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(wins)/float64(total)*1000) / 10
}
