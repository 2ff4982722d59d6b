package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/237Fresnel/urban-transport-platform/internal/artifact"
	coreagg "github.com/237Fresnel/urban-transport-platform/internal/core/aggregation"
	"github.com/237Fresnel/urban-transport-platform/internal/core/storage"
	"golang.org/x/sync/errgroup"
)

// Aggregator materializes the five aggregate families from a full record
// store scan into the artifact store.
//
// Contract: the run is all-or-nothing. Every family is computed in memory
// first; any scan failure aborts the run with no artifact touched. A partial
// artifact set is worse than none: the resolver cannot tell "not yet
// computed" from "computed but empty".
type Aggregator struct {
	stats     storage.StatsReader
	artifacts artifact.Store
}

// NewAggregator creates a batch aggregator over the given stores.
func NewAggregator(stats storage.StatsReader, artifacts artifact.Store) *Aggregator {
	if stats == nil {
		panic("batch: stats reader must not be nil")
	}
	if artifacts == nil {
		panic("batch: artifact store must not be nil")
	}
	return &Aggregator{stats: stats, artifacts: artifacts}
}

// snapshot holds one run's computed families before any write happens.
type snapshot struct {
	daily   []coreagg.DailyRow
	cities  []coreagg.CityRow
	hourly  []coreagg.HourlyRow
	zones   []coreagg.ZoneRow
	weekday []coreagg.WeekdayRow
}

// Run computes all five families and overwrites their artifacts.
// The five scans are independent full-collection group-bys and run
// concurrently; the record store bounds its own scan parallelism.
func (a *Aggregator) Run(ctx context.Context) error {
	started := time.Now()
	slog.Info("[BatchJob] Starting full aggregation run")

	var snap snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rows, err := a.stats.DailyStats(gctx, "")
		if err != nil {
			return fmt.Errorf("compute %s: %w", coreagg.FamilyDaily, err)
		}
		snap.daily = rows
		return nil
	})
	g.Go(func() error {
		rows, err := a.stats.CityStats(gctx)
		if err != nil {
			return fmt.Errorf("compute %s: %w", coreagg.FamilyCities, err)
		}
		snap.cities = rows
		return nil
	})
	g.Go(func() error {
		rows, err := a.stats.HourlyStats(gctx, "")
		if err != nil {
			return fmt.Errorf("compute %s: %w", coreagg.FamilyHourly, err)
		}
		snap.hourly = rows
		return nil
	})
	g.Go(func() error {
		rows, err := a.stats.ZoneStats(gctx)
		if err != nil {
			return fmt.Errorf("compute %s: %w", coreagg.FamilyTopZones, err)
		}
		snap.zones = rows
		return nil
	})
	g.Go(func() error {
		rows, err := a.stats.WeekdayStats(gctx)
		if err != nil {
			return fmt.Errorf("compute %s: %w", coreagg.FamilyWeekday, err)
		}
		snap.weekday = rows
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("aggregation run aborted, no artifacts written: %w", err)
	}

	// All families computed. Publish the whole set.
	writes := []struct {
		family string
		rows   interface{}
	}{
		{coreagg.FamilyDaily, snap.daily},
		{coreagg.FamilyCities, snap.cities},
		{coreagg.FamilyHourly, snap.hourly},
		{coreagg.FamilyTopZones, snap.zones},
		{coreagg.FamilyWeekday, snap.weekday},
	}
	for _, w := range writes {
		spec := coreagg.Families[w.family]
		if err := a.artifacts.Save(ctx, spec.Artifact, w.rows); err != nil {
			return fmt.Errorf("write artifact %s: %w", spec.Artifact, err)
		}
	}

	slog.Info("[BatchJob] Aggregation run complete",
		"daily_rows", len(snap.daily),
		"city_rows", len(snap.cities),
		"hourly_rows", len(snap.hourly),
		"zone_rows", len(snap.zones),
		"weekday_rows", len(snap.weekday),
		"elapsed", time.Since(started),
	)
	return nil
}
