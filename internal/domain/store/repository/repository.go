// Package repository persists the refresh audit log in Postgres.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/FACorreiaa/raiox-score/internal/domain/store"
)

// DBTX is satisfied by *pgxpool.Pool, pgx.Tx and pgxmock pools.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// RefreshRepository defines the interface for refresh log persistence
type RefreshRepository interface {
	RecordRefresh(ctx context.Context, run store.RefreshRun) error
	ListRecent(ctx context.Context, limit int) ([]store.RefreshRun, error)
	LastSuccess(ctx context.Context) (*store.RefreshRun, error)
}

// PostgresRefreshRepository implements RefreshRepository
type PostgresRefreshRepository struct {
	db DBTX
}

// NewPostgresRefreshRepository creates a new refresh log repository
func NewPostgresRefreshRepository(db DBTX) *PostgresRefreshRepository {
	return &PostgresRefreshRepository{db: db}
}

var _ store.RefreshRecorder = (*PostgresRefreshRepository)(nil)

// RecordRefresh inserts one refresh attempt
func (r *PostgresRefreshRepository) RecordRefresh(ctx context.Context, run store.RefreshRun) error {
	query := `
		INSERT INTO snapshot_refreshes (
			id, started_at, duration_ms, rows_seen, records, dropped, success, error
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	var errText *string
	if run.Error != "" {
		errText = &run.Error
	}

	_, err := r.db.Exec(ctx, query,
		run.ID,
		run.StartedAt,
		run.Duration.Milliseconds(),
		run.Rows,
		run.Records,
		run.Dropped,
		run.Success,
		errText,
	)
	if err != nil {
		return fmt.Errorf("failed to insert refresh run: %w", err)
	}
	return nil
}

const selectRuns = `
	SELECT id, started_at, duration_ms, rows_seen, records, dropped, success, error
	FROM snapshot_refreshes
`

// ListRecent returns the latest refresh attempts, newest first
func (r *PostgresRefreshRepository) ListRecent(ctx context.Context, limit int) ([]store.RefreshRun, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	rows, err := r.db.Query(ctx, selectRuns+` ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list refresh runs: %w", err)
	}
	defer rows.Close()

	var runs []store.RefreshRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate refresh runs: %w", err)
	}
	return runs, nil
}

// LastSuccess returns the most recent successful refresh, or nil when none exists
func (r *PostgresRefreshRepository) LastSuccess(ctx context.Context) (*store.RefreshRun, error) {
	row := r.db.QueryRow(ctx, selectRuns+` WHERE success ORDER BY started_at DESC LIMIT 1`)
	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &run, nil
}

func scanRun(row pgx.Row) (store.RefreshRun, error) {
	var (
		run        store.RefreshRun
		durationMS int64
		errText    *string
	)
	if err := row.Scan(
		&run.ID,
		&run.StartedAt,
		&durationMS,
		&run.Rows,
		&run.Records,
		&run.Dropped,
		&run.Success,
		&errText,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return run, err
		}
		return run, fmt.Errorf("failed to scan refresh run: %w", err)
	}
	run.Duration = time.Duration(durationMS) * time.Millisecond
	if errText != nil {
		run.Error = *errText
	}
	return run, nil
}
