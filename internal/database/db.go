package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"hilotrack/models"
)

// Store is the postgres-backed history store. The live table is append-only;
// rows only leave it through the archival reset, which snapshots them into
// the archive tables first.
type Store struct {
	*sql.DB
}

// ConnectionParams holds PostgreSQL connection parameters
type ConnectionParams struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// New creates a new database connection
func New(params ConnectionParams) (*Store, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		params.Host, params.Port, params.User, params.Password, params.DBName, params.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	if err := createTables(db); err != nil {
		return nil, err
	}

	return &Store{db}, nil
}

// createTables creates the necessary tables if they don't exist. The column
// order of prediction_records is part of the export contract and must not
// change.
func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS prediction_records (
			id BIGSERIAL PRIMARY KEY,
			event_id TEXT NOT NULL,
			magnitude INTEGER NOT NULL,
			category TEXT NOT NULL,
			color_tag TEXT NOT NULL,
			prediction_label TEXT NOT NULL,
			strategy_label TEXT NOT NULL,
			outcome TEXT NOT NULL,
			recorded_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS prediction_archives (
			id TEXT PRIMARY KEY,
			record_count INTEGER NOT NULL,
			created_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS prediction_archive_rows (
			archive_id TEXT NOT NULL REFERENCES prediction_archives(id),
			position BIGINT NOT NULL,
			event_id TEXT NOT NULL,
			magnitude INTEGER NOT NULL,
			category TEXT NOT NULL,
			color_tag TEXT NOT NULL,
			prediction_label TEXT NOT NULL,
			strategy_label TEXT NOT NULL,
			outcome TEXT NOT NULL,
			recorded_at TIMESTAMP NOT NULL,
			PRIMARY KEY (archive_id, position)
		)
	`)

	return err
}

// Append inserts one prediction record.
func (s *Store) Append(ctx context.Context, rec models.PredictionRecord) error {
	_, err := s.ExecContext(ctx, `
		INSERT INTO prediction_records (
			event_id, magnitude, category, color_tag,
			prediction_label, strategy_label, outcome, recorded_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		rec.EventID, rec.Magnitude, rec.Category.String(), rec.ColorTag,
		rec.PredictionLabel, rec.StrategyLabel, rec.Outcome.String(), rec.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("insert prediction record: %w", err)
	}
	return nil
}

// QueryRecent returns up to limit live records, most recent first.
func (s *Store) QueryRecent(ctx context.Context, limit int) ([]models.PredictionRecord, error) {
	rows, err := s.QueryContext(ctx, `
		SELECT event_id, magnitude, category, color_tag,
		       prediction_label, strategy_label, outcome, recorded_at
		FROM prediction_records
		ORDER BY id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// AllRecords returns every live record in insertion order, for exports.
func (s *Store) AllRecords(ctx context.Context) ([]models.PredictionRecord, error) {
	rows, err := s.QueryContext(ctx, `
		SELECT event_id, magnitude, category, color_tag,
		       prediction_label, strategy_label, outcome, recorded_at
		FROM prediction_records
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query all records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// AggregateOutcomeCounts tallies wins and losses across the live table.
func (s *Store) AggregateOutcomeCounts(ctx context.Context) (wins, losses int, err error) {
	err = s.QueryRowContext(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE outcome = 'Win'),
			COUNT(*) FILTER (WHERE outcome = 'Loss')
		FROM prediction_records
	`).Scan(&wins, &losses)
	if err != nil {
		return 0, 0, fmt.Errorf("aggregate outcome counts: %w", err)
	}
	return wins, losses, nil
}

// ExportAll snapshots every live record into a new archive, preserving
// insertion order, and returns its handle. The live table is left intact;
// clearing is a separate step so the caller controls the epoch boundary.
func (s *Store) ExportAll(ctx context.Context) (models.ArchiveHandle, error) {
	handle := models.ArchiveHandle{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}

	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return models.ArchiveHandle{}, fmt.Errorf("begin export: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO prediction_archive_rows (
			archive_id, position, event_id, magnitude, category, color_tag,
			prediction_label, strategy_label, outcome, recorded_at
		)
		SELECT $1, id, event_id, magnitude, category, color_tag,
		       prediction_label, strategy_label, outcome, recorded_at
		FROM prediction_records
	`, handle.ID)
	if err != nil {
		return models.ArchiveHandle{}, fmt.Errorf("copy records into archive: %w", err)
	}

	copied, err := res.RowsAffected()
	if err != nil {
		return models.ArchiveHandle{}, fmt.Errorf("count archived rows: %w", err)
	}
	handle.RecordCount = int(copied)

	_, err = tx.ExecContext(ctx, `
		INSERT INTO prediction_archives (id, record_count, created_at)
		VALUES ($1, $2, $3)
	`, handle.ID, handle.RecordCount, handle.CreatedAt)
	if err != nil {
		return models.ArchiveHandle{}, fmt.Errorf("insert archive handle: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.ArchiveHandle{}, fmt.Errorf("commit export: %w", err)
	}

	return handle, nil
}

// ClearAll removes every live record.
func (s *Store) ClearAll(ctx context.Context) error {
	if _, err := s.ExecContext(ctx, `DELETE FROM prediction_records`); err != nil {
		return fmt.Errorf("clear prediction records: %w", err)
	}
	return nil
}

// ListArchives returns every archive handle, newest first.
func (s *Store) ListArchives(ctx context.Context) ([]models.ArchiveHandle, error) {
	rows, err := s.QueryContext(ctx, `
		SELECT id, record_count, created_at
		FROM prediction_archives
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list archives: %w", err)
	}
	defer rows.Close()

	var handles []models.ArchiveHandle
	for rows.Next() {
		var h models.ArchiveHandle
		if err := rows.Scan(&h.ID, &h.RecordCount, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan archive handle: %w", err)
		}
		handles = append(handles, h)
	}
	return handles, rows.Err()
}

// ArchiveRows returns the frozen rows of one archive in their original
// insertion order.
func (s *Store) ArchiveRows(ctx context.Context, archiveID string) ([]models.PredictionRecord, error) {
	rows, err := s.QueryContext(ctx, `
		SELECT event_id, magnitude, category, color_tag,
		       prediction_label, strategy_label, outcome, recorded_at
		FROM prediction_archive_rows
		WHERE archive_id = $1
		ORDER BY position ASC
	`, archiveID)
	if err != nil {
		return nil, fmt.Errorf("query archive rows: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]models.PredictionRecord, error) {
	var recs []models.PredictionRecord
	for rows.Next() {
		var (
			rec      models.PredictionRecord
			category string
			outcome  string
		)
		if err := rows.Scan(
			&rec.EventID, &rec.Magnitude, &category, &rec.ColorTag,
			&rec.PredictionLabel, &rec.StrategyLabel, &outcome, &rec.RecordedAt,
		); err != nil {
			return nil, fmt.Errorf("scan prediction record: %w", err)
		}
		rec.Category = models.ParseCategory(category)
		rec.Outcome = models.ParseOutcome(outcome)
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
