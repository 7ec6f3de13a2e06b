package models

import "context"

// EventSource produces the most recent window of resolved events,
// newest-first, deduplicated by id.
type EventSource interface {
	Recent(ctx context.Context) ([]ResolvedEvent, error)
}

// HistoryStore is the append-only persistence boundary for prediction records.
type HistoryStore interface {
	Append(ctx context.Context, rec PredictionRecord) error
	QueryRecent(ctx context.Context, limit int) ([]PredictionRecord, error)
	AggregateOutcomeCounts(ctx context.Context) (wins, losses int, err error)
	ExportAll(ctx context.Context) (ArchiveHandle, error)
	ClearAll(ctx context.Context) error
}
