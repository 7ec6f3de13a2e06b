package scheduler

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hilotrack/internal/predictor"
	"hilotrack/models"
)

type stubSource struct {
	window []models.ResolvedEvent
	err    error
}

func (s *stubSource) Recent(context.Context) ([]models.ResolvedEvent, error) {
	return s.window, s.err
}

type recordingNotifier struct {
	switches []string
	resets   []models.ArchiveHandle
}

func (r *recordingNotifier) StrategySwitched(strategy string, _ int, _ models.Category) {
	r.switches = append(r.switches, strategy)
}

func (r *recordingNotifier) EpochReset(h models.ArchiveHandle, _, _ int) {
	r.resets = append(r.resets, h)
}

type nullStore struct{}

func (nullStore) Append(context.Context, models.PredictionRecord) error { return nil }

func (nullStore) QueryRecent(context.Context, int) ([]models.PredictionRecord, error) {
	return nil, nil
}

func (nullStore) AggregateOutcomeCounts(context.Context) (int, int, error) { return 0, 0, nil }

func (nullStore) ExportAll(context.Context) (models.ArchiveHandle, error) {
	return models.ArchiveHandle{ID: "a1"}, nil
}

func (nullStore) ClearAll(context.Context) error { return nil }

func win(headID, pattern string) []models.ResolvedEvent {
	evs := make([]models.ResolvedEvent, len(pattern))
	for i, r := range pattern {
		n := 2
		if r == 'H' {
			n = 7
		}
		evs[i] = models.ResolvedEvent{
			ID:        fmt.Sprintf("%s.%d", headID, i),
			Magnitude: n,
			Category:  models.CategoryFromMagnitude(n),
		}
	}
	evs[0].ID = headID
	return evs
}

func TestNextReset(t *testing.T) {
	s := New(&stubSource{}, nil, nil, time.Second, 3)

	now := time.Date(2024, 5, 10, 1, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 5, 10, 3, 0, 0, 0, time.UTC), s.nextReset(now))

	// At or past the hour, the reset belongs to the next day.
	now = time.Date(2024, 5, 10, 3, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 5, 11, 3, 0, 0, 0, time.UTC), s.nextReset(now))

	now = time.Date(2024, 5, 10, 22, 15, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 5, 11, 3, 0, 0, 0, time.UTC), s.nextReset(now))
}

func TestPollNotifiesOnStrategySwitch(t *testing.T) {
	source := &stubSource{}
	notifier := &recordingNotifier{}
	engine := predictor.NewEngine(nullStore{}, 2)
	s := New(source, engine, notifier, time.Second, 0)
	ctx := context.Background()

	// Tie windows predict Low; High heads lose twice and trip the switch.
	source.window = win("1", "HLHLHLHLHL")
	s.poll(ctx)
	source.window = win("2", "HLLHLHLHLH")
	s.poll(ctx)
	require.Empty(t, notifier.switches, "below threshold no notification")

	source.window = win("3", "HHLLHLHLHL")
	s.poll(ctx)
	require.Len(t, notifier.switches, 1)
	assert.Equal(t, "Switched (losses=2)", notifier.switches[0])

	// Repeat poll of the same head stays quiet.
	s.poll(ctx)
	assert.Len(t, notifier.switches, 1)
}

func TestPollSurvivesFeedFailure(t *testing.T) {
	source := &stubSource{err: context.DeadlineExceeded}
	notifier := &recordingNotifier{}
	engine := predictor.NewEngine(nullStore{}, 2)
	s := New(source, engine, notifier, time.Second, 0)

	s.poll(context.Background())
	assert.Empty(t, notifier.switches)
	assert.Zero(t, engine.Snapshot().Total)
}

func TestDailyResetNotifies(t *testing.T) {
	source := &stubSource{window: win("1", "HLHLHLHLHL")}
	notifier := &recordingNotifier{}
	engine := predictor.NewEngine(nullStore{}, 2)
	s := New(source, engine, notifier, time.Second, 0)
	ctx := context.Background()

	s.poll(ctx)
	s.dailyReset(ctx)

	require.Len(t, notifier.resets, 1)
	assert.Equal(t, "a1", notifier.resets[0].ID)
	assert.Zero(t, engine.Snapshot().Total)
	assert.Equal(t, predictor.StrategyFollowTrend, s.lastStrategy)
}
