package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	v1 "github.com/237Fresnel/urban-transport-platform/internal/api/v1"
	"github.com/237Fresnel/urban-transport-platform/internal/artifact"
	coreagg "github.com/237Fresnel/urban-transport-platform/internal/core/aggregation"
	"github.com/237Fresnel/urban-transport-platform/internal/core/storage"
)

// ErrValidation marks a request rejected before any store access.
var ErrValidation = errors.New("invalid query parameter")

// Options bound the trip listing and zone ranking endpoints.
type Options struct {
	Timeout          time.Duration
	DefaultTripLimit int
	MaxTripLimit     int
	DefaultZoneLimit int
}

// Service resolves aggregate queries artifact-first with a live fallback.
//
// Per family: a missing or unreadable artifact always falls back to a live
// aggregation over the record store. A present artifact is served verbatim
// unless the caller supplied a city filter on a family that supports one
// (daily, hourly). The artifact is computed unfiltered, so a filtered
// request always computes live. Families without filter support ignore no
// parameters; their handlers accept none.
//
// The service is stateless and re-reads the artifact on every call.
// Artifact presence is the only freshness signal.
type Service struct {
	trips     storage.TripStore
	stats     storage.StatsReader
	artifacts artifact.Store
	opts      Options
}

// NewService creates a query resolver over the given stores.
func NewService(trips storage.TripStore, stats storage.StatsReader, artifacts artifact.Store, opts Options) *Service {
	if trips == nil {
		panic("query: trip store must not be nil")
	}
	if stats == nil {
		panic("query: stats reader must not be nil")
	}
	if artifacts == nil {
		panic("query: artifact store must not be nil")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.DefaultTripLimit <= 0 {
		opts.DefaultTripLimit = 100
	}
	if opts.MaxTripLimit <= 0 {
		opts.MaxTripLimit = 1000
	}
	if opts.DefaultZoneLimit <= 0 {
		opts.DefaultZoneLimit = 10
	}
	return &Service{trips: trips, stats: stats, artifacts: artifacts, opts: opts}
}

// loadArtifact reports whether the family's artifact was decoded into v.
// Missing means fall back silently; corrupt means fall back with a warning.
func (s *Service) loadArtifact(ctx context.Context, family string, v interface{}) bool {
	spec := coreagg.Families[family]
	err := s.artifacts.Load(ctx, spec.Artifact, v)
	if err == nil {
		return true
	}
	if errors.Is(err, artifact.ErrCorrupt) {
		slog.Warn("[Resolver] Corrupt artifact, computing live", "artifact", spec.Artifact, "error", err)
	} else if !errors.Is(err, artifact.ErrMissing) {
		slog.Warn("[Resolver] Artifact read failed, computing live", "artifact", spec.Artifact, "error", err)
	}
	return false
}

// Daily returns trip counts per calendar day, date ascending. A city filter
// forces a live aggregation; the artifact is unfiltered.
func (s *Service) Daily(ctx context.Context, city string) ([]coreagg.DailyRow, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	if !coreagg.Families[coreagg.FamilyDaily].SupportsCityFilter {
		city = ""
	}
	if city == "" {
		var rows []coreagg.DailyRow
		if s.loadArtifact(ctx, coreagg.FamilyDaily, &rows) {
			return rows, nil
		}
	}
	return s.stats.DailyStats(ctx, city)
}

// Hourly returns trip counts per hour of day, hour ascending. A city filter
// forces a live aggregation.
func (s *Service) Hourly(ctx context.Context, city string) ([]coreagg.HourlyRow, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	if !coreagg.Families[coreagg.FamilyHourly].SupportsCityFilter {
		city = ""
	}
	if city == "" {
		var rows []coreagg.HourlyRow
		if s.loadArtifact(ctx, coreagg.FamilyHourly, &rows) {
			return rows, nil
		}
	}
	return s.stats.HourlyStats(ctx, city)
}

// Cities returns per-city trip counts and mean distances, busiest first.
func (s *Service) Cities(ctx context.Context) ([]coreagg.CityRow, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	var rows []coreagg.CityRow
	if s.loadArtifact(ctx, coreagg.FamilyCities, &rows) {
		return rows, nil
	}
	return s.stats.CityStats(ctx)
}

// TopZones returns start zones ranked by trip count. The limit is applied
// after resolution on both paths, never pushed into the aggregation.
func (s *Service) TopZones(ctx context.Context, limit int) ([]coreagg.ZoneRow, error) {
	if limit == 0 {
		limit = s.opts.DefaultZoneLimit
	}
	if limit < 1 {
		return nil, fmt.Errorf("%w: limit must be at least 1, got %d", ErrValidation, limit)
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	var rows []coreagg.ZoneRow
	if !s.loadArtifact(ctx, coreagg.FamilyTopZones, &rows) {
		live, err := s.stats.ZoneStats(ctx)
		if err != nil {
			return nil, err
		}
		rows = live
	}
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

// Weekday returns trip counts per city and day of week.
func (s *Service) Weekday(ctx context.Context) ([]coreagg.WeekdayRow, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	var rows []coreagg.WeekdayRow
	if s.loadArtifact(ctx, coreagg.FamilyWeekday, &rows) {
		return rows, nil
	}
	return s.stats.WeekdayStats(ctx)
}

// Trips lists raw trip records, newest first. A zero limit takes the
// default; out-of-range limits and malformed dates are rejected before any
// store access.
func (s *Service) Trips(ctx context.Context, city, date string, limit int) ([]v1.Trip, error) {
	if limit == 0 {
		limit = s.opts.DefaultTripLimit
	}
	if limit < 1 || limit > s.opts.MaxTripLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d, got %d", ErrValidation, s.opts.MaxTripLimit, limit)
	}
	if date != "" {
		if _, err := time.Parse(v1.DateLayout, date); err != nil {
			return nil, fmt.Errorf("%w: date must be formatted as %s", ErrValidation, v1.DateLayout)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	return s.trips.ListTrips(ctx, storage.TripFilter{City: city, Date: date, Limit: limit})
}

// DistinctCities returns the distinct city values present in the record
// store, sorted ascending. Always live; no artifact backs this listing.
func (s *Service) DistinctCities(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	return s.trips.DistinctCities(ctx)
}
