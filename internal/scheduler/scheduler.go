package scheduler

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"hilotrack/internal/notify"
	"hilotrack/internal/predictor"
	"hilotrack/models"
)

// Scheduler drives the engine from the outside: a poll ticker feeding
// fetched windows into Observe and a daily timer firing Reset at a fixed
// UTC wall-clock hour. The engine itself has no opinion on timing.
type Scheduler struct {
	source       models.EventSource
	engine       *predictor.Engine
	notifier     notify.Notifier
	pollInterval time.Duration
	resetHour    int
	logger       zerolog.Logger

	lastStrategy string
}

func New(source models.EventSource, engine *predictor.Engine, notifier notify.Notifier, pollInterval time.Duration, resetHour int) *Scheduler {
	if notifier == nil {
		notifier = notify.Noop{}
	}
	return &Scheduler{
		source:       source,
		engine:       engine,
		notifier:     notifier,
		pollInterval: pollInterval,
		resetHour:    resetHour,
		logger:       log.With().Str("component", "scheduler").Logger(),
		lastStrategy: predictor.StrategyFollowTrend,
	}
}

// Run blocks until ctx is cancelled. The first poll fires immediately.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	resetTimer := time.NewTimer(time.Until(s.nextReset(time.Now().UTC())))
	defer resetTimer.Stop()

	s.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("scheduler stopping")
			return
		case <-ticker.C:
			s.poll(ctx)
		case <-resetTimer.C:
			s.dailyReset(ctx)
			resetTimer.Reset(time.Until(s.nextReset(time.Now().UTC())))
		}
	}
}

// poll runs one fetch+observe cycle. Feed failures degrade to an empty
// window so the engine sees "no new information" rather than a fault.
func (s *Scheduler) poll(ctx context.Context) {
	window, err := s.source.Recent(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("feed fetch failed, skipping cycle")
		window = nil
	}

	res, storeErr := s.engine.Observe(ctx, window)
	if storeErr != nil {
		s.logger.Error().Err(storeErr).Msg("observation stored with degradation")
	}
	if res.NoData || res.Outcome == models.OutcomeUnchanged {
		return
	}

	if res.Strategy != s.lastStrategy && strings.HasPrefix(res.Strategy, "Switched") {
		s.notifier.StrategySwitched(res.Strategy, res.LossStreak, res.Prediction)
	}
	s.lastStrategy = res.Strategy
}

// dailyReset archives the epoch, carrying the closing tally into the
// notification before the counters are zeroed.
func (s *Scheduler) dailyReset(ctx context.Context) {
	snap := s.engine.Snapshot()

	handle, err := s.engine.Reset(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("daily reset degraded")
	}
	s.lastStrategy = predictor.StrategyFollowTrend
	s.notifier.EpochReset(handle, snap.Wins, snap.Losses)
}

// nextReset is the next occurrence of the configured UTC hour after now.
func (s *Scheduler) nextReset(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), s.resetHour, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next
}
