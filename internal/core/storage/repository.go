package storage

import (
	"context"
	"errors"

	v1 "github.com/237Fresnel/urban-transport-platform/internal/api/v1"
	coreagg "github.com/237Fresnel/urban-transport-platform/internal/core/aggregation"
)

// ErrUnavailable marks a store backend that cannot be reached. Handlers map
// it to 503; it is never silently defaulted to an empty result.
var ErrUnavailable = errors.New("store backend unavailable")

// TripFilter narrows a trip listing. Zero values mean "no filter".
type TripFilter struct {
	City  string
	Date  string // YYYY-MM-DD
	Limit int
}

// TripStore is the row-level record store owned by the ingestion pipeline.
type TripStore interface {
	// BulkInsert writes one ingestion batch in a single statement.
	BulkInsert(ctx context.Context, trips []v1.Trip) error

	// ListTrips returns raw trips matching the filter, newest first.
	ListTrips(ctx context.Context, filter TripFilter) ([]v1.Trip, error)

	// DistinctCities returns the set of city values present in the store.
	DistinctCities(ctx context.Context) ([]string, error)

	// Reset truncates the trip table. Destructive; the pipeline calls it
	// before every run.
	Reset(ctx context.Context) error

	// EnsureIndexes builds the derived query indexes (city, date, hour,
	// timestamp, city+date). Called after a bulk load, not before.
	EnsureIndexes(ctx context.Context) error

	Ping(ctx context.Context) error
}

// StatsReader serves the five aggregate families from the record store.
// An empty city means "unfiltered"; the batch aggregator always calls
// unfiltered; the query resolver passes a city only for families whose
// FamilySpec allows it. Both paths share these methods so live results are
// schema-identical to artifact rows by construction.
type StatsReader interface {
	DailyStats(ctx context.Context, city string) ([]coreagg.DailyRow, error)
	CityStats(ctx context.Context) ([]coreagg.CityRow, error)
	HourlyStats(ctx context.Context, city string) ([]coreagg.HourlyRow, error)
	ZoneStats(ctx context.Context) ([]coreagg.ZoneRow, error)
	WeekdayStats(ctx context.Context) ([]coreagg.WeekdayRow, error)
}

// HourBucket is one (city, date, hour) counter row.
type HourBucket struct {
	City      string
	Date      string
	Hour      int
	TripCount int64
}

// CounterStore is the increment-only counter side of ingestion. Increments
// are atomic per key (single-statement upsert), never decremented, and never
// read by any HTTP endpoint; the read methods exist for audit and tests.
type CounterStore interface {
	IncrementHour(ctx context.Context, city, date string, hour int) error
	IncrementZone(ctx context.Context, city, zone string) error

	// HourCount / ZoneCount are point reads by full key. Missing keys
	// return a zero count, not an error.
	HourCount(ctx context.Context, city, date string, hour int) (int64, error)
	ZoneCount(ctx context.Context, city, zone string) (int64, error)

	// HourBuckets is a prefix range read: all hour buckets for one
	// city+date, ascending by hour.
	HourBuckets(ctx context.Context, city, date string) ([]HourBucket, error)

	// Reset truncates both counter tables. Destructive.
	Reset(ctx context.Context) error
}
