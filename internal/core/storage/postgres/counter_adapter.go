package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/237Fresnel/urban-transport-platform/internal/core/storage"
)

// CounterAdapter implements storage.CounterStore using PostgreSQL.
// Increments are single-statement upserts, atomic per key, so the ingestion
// worker pool can drive them concurrently without client-side locking.
// The increment statements are prepared once; they run twice per trip,
// which makes them the hottest statements in the system.
type CounterAdapter struct {
	db           *sql.DB
	stmtIncrHour *sql.Stmt
	stmtIncrZone *sql.Stmt
}

// NewCounterAdapter creates a counter adapter sharing the given connection.
func NewCounterAdapter(db *sql.DB) (*CounterAdapter, error) {
	stmtHour, err := db.Prepare(queryIncrementHour)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare hour increment statement: %w", err)
	}

	stmtZone, err := db.Prepare(queryIncrementZone)
	if err != nil {
		stmtHour.Close()
		return nil, fmt.Errorf("failed to prepare zone increment statement: %w", err)
	}

	slog.Info("[Counters] Adapter initialized with prepared increment statements")

	return &CounterAdapter{
		db:           db,
		stmtIncrHour: stmtHour,
		stmtIncrZone: stmtZone,
	}, nil
}

// IncrementHour adds 1 to the (city, date, hour) bucket, creating it at 1.
func (a *CounterAdapter) IncrementHour(ctx context.Context, city, date string, hour int) error {
	if _, err := a.stmtIncrHour.ExecContext(ctx, city, date, hour); err != nil {
		return backendErr("increment hour counter", err)
	}
	return nil
}

// IncrementZone adds 1 to the (city, zone) bucket, creating it at 1.
func (a *CounterAdapter) IncrementZone(ctx context.Context, city, zone string) error {
	if _, err := a.stmtIncrZone.ExecContext(ctx, city, zone); err != nil {
		return backendErr("increment zone counter", err)
	}
	return nil
}

// HourCount is a point read of one (city, date, hour) bucket.
// A missing bucket reads as zero.
func (a *CounterAdapter) HourCount(ctx context.Context, city, date string, hour int) (int64, error) {
	var count int64
	err := a.db.QueryRowContext(ctx, queryHourCount, city, date, hour).Scan(&count)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, backendErr("read hour counter", err)
	}
	return count, nil
}

// ZoneCount is a point read of one (city, zone) bucket.
// A missing bucket reads as zero.
func (a *CounterAdapter) ZoneCount(ctx context.Context, city, zone string) (int64, error) {
	var count int64
	err := a.db.QueryRowContext(ctx, queryZoneCount, city, zone).Scan(&count)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, backendErr("read zone counter", err)
	}
	return count, nil
}

// HourBuckets returns every hour bucket for one city+date, ascending by hour.
func (a *CounterAdapter) HourBuckets(ctx context.Context, city, date string) ([]storage.HourBucket, error) {
	rows, err := a.db.QueryContext(ctx, queryHourBuckets, city, date)
	if err != nil {
		return nil, backendErr("range read hour counters", err)
	}
	defer rows.Close()

	var buckets []storage.HourBucket
	for rows.Next() {
		var b storage.HourBucket
		if err := rows.Scan(&b.City, &b.Date, &b.Hour, &b.TripCount); err != nil {
			return nil, fmt.Errorf("failed to scan hour bucket: %w", err)
		}
		buckets = append(buckets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating hour buckets: %w", err)
	}
	return buckets, nil
}

// Reset truncates both counter tables.
func (a *CounterAdapter) Reset(ctx context.Context) error {
	if _, err := a.db.ExecContext(ctx, queryTruncateCounters); err != nil {
		return backendErr("truncate counters", err)
	}
	slog.Warn("[Counters] Counter tables truncated")
	return nil
}

// Close closes the prepared statements. The shared connection is owned by
// the trip adapter.
func (a *CounterAdapter) Close() error {
	var firstErr error
	if err := a.stmtIncrHour.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to close hour increment statement: %w", err)
	}
	if err := a.stmtIncrZone.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to close zone increment statement: %w", err)
	}
	return firstErr
}
