package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	v1 "github.com/237Fresnel/urban-transport-platform/internal/api/v1"
	"github.com/237Fresnel/urban-transport-platform/internal/core/storage"
)

// backendErr classifies a store failure. Context expiry keeps its own
// identity (callers distinguish a timed-out aggregation from a dead
// backend); everything else is tagged storage.ErrUnavailable so handlers
// can map it to 503.
func backendErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w", op, errors.Join(storage.ErrUnavailable, err))
}

// nullableString maps "" to SQL NULL so `($1::text IS NULL OR col = $1)`
// filters collapse cleanly.
func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

type scanner interface {
	Scan(dest ...interface{}) error
}

// scanTripRow scans a database row into a Trip.
// Compatible with both sql.Row (single) and sql.Rows (multiple).
func scanTripRow(row scanner) (*v1.Trip, error) {
	var trip v1.Trip
	err := row.Scan(
		&trip.RowID,
		&trip.TripID,
		&trip.UserID,
		&trip.City,
		&trip.ZoneStart,
		&trip.ZoneEnd,
		&trip.DistanceKm,
		&trip.PriceEur,
		&trip.Timestamp,
		&trip.Hour,
		&trip.DayOfWeek,
		&trip.Date,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan trip row: %w", err)
	}
	return &trip, nil
}
