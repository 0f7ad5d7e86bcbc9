package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"rally-metrics-go/logging"
	"rally-metrics-go/models"
	"rally-metrics-go/services"
	"time"

	_ "github.com/glebarez/go-sqlite"
)

var _ services.SummaryRepository = (*SQLiteSummaryRepository)(nil)

const createSummariesTable = `CREATE TABLE IF NOT EXISTS summaries (
	player_key TEXT PRIMARY KEY,
	player_name TEXT NOT NULL,
	text TEXT NOT NULL,
	fetched_at INTEGER NOT NULL
)`

// SQLiteSummaryRepository stores summaries in a local SQLite file
type SQLiteSummaryRepository struct {
	db     *sql.DB
	logger *logging.Logger
}

// OpenSQLiteSummaryRepository opens (creating if needed) the database at path
func OpenSQLiteSummaryRepository(ctx context.Context, path string) (*SQLiteSummaryRepository, error) {
	logger := logging.WithPrefix("sqlite_summary_repo")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite %s: %w", path, err)
	}
	// single writer
	db.SetMaxOpenConns(1)

	ctx, cancel := withTimeout(ctx, ShortTimeout)
	defer cancel()

	if _, err := db.ExecContext(ctx, createSummariesTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create summaries table: %w", err)
	}

	logger.Infof("Using summary store at %s", path)
	return &SQLiteSummaryRepository{db: db, logger: logger}, nil
}

func (r *SQLiteSummaryRepository) GetSummary(ctx context.Context, key string) (*models.Summary, error) {
	ctx, cancel := withTimeout(ctx, ShortTimeout)
	defer cancel()

	var (
		summary   = models.Summary{Key: key}
		fetchedAt int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT player_name, text, fetched_at FROM summaries WHERE player_key = ?`, key,
	).Scan(&summary.PlayerName, &summary.Text, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read summary %q: %w", key, err)
	}
	summary.FetchedAt = time.UnixMilli(fetchedAt).UTC()
	return &summary, nil
}

func (r *SQLiteSummaryRepository) SaveSummary(ctx context.Context, key string, summary *models.Summary) error {
	ctx, cancel := withTimeout(ctx, ShortTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO summaries (player_key, player_name, text, fetched_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(player_key) DO UPDATE SET player_name = excluded.player_name, text = excluded.text, fetched_at = excluded.fetched_at`,
		key, summary.PlayerName, summary.Text, summary.FetchedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to save summary %q: %w", key, err)
	}
	return nil
}

func (r *SQLiteSummaryRepository) PurgeSummaries(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx, MediumTimeout)
	defer cancel()

	result, err := r.db.ExecContext(ctx, `DELETE FROM summaries`)
	if err != nil {
		return fmt.Errorf("failed to purge summaries: %w", err)
	}
	n, _ := result.RowsAffected()
	r.logger.Infof("Purged %d summaries", n)
	return nil
}

// Close closes the database
func (r *SQLiteSummaryRepository) Close() error {
	return r.db.Close()
}
