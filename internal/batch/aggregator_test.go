package batch

import (
	"context"
	"errors"
	"testing"
	"time"

	v1 "github.com/237Fresnel/urban-transport-platform/internal/api/v1"
	"github.com/237Fresnel/urban-transport-platform/internal/artifact"
	coreagg "github.com/237Fresnel/urban-transport-platform/internal/core/aggregation"
	"github.com/237Fresnel/urban-transport-platform/internal/core/storage"
	"github.com/237Fresnel/urban-transport-platform/internal/core/storage/memory"
	"github.com/stretchr/testify/require"
)

func seedTrips(t *testing.T, store *memory.Store) {
	t.Helper()

	trips := []v1.Trip{
		{TripID: "t1", UserID: "u1", City: "Paris", ZoneStart: "Zone A", ZoneEnd: "Zone B",
			DistanceKm: 10.0, PriceEur: 8.50, Timestamp: time.Date(2026, 2, 7, 8, 15, 0, 0, time.UTC)},
		{TripID: "t2", UserID: "u2", City: "Paris", ZoneStart: "Zone A", ZoneEnd: "Zone C",
			DistanceKm: 20.0, PriceEur: 14.00, Timestamp: time.Date(2026, 2, 7, 18, 40, 0, 0, time.UTC)},
		{TripID: "t3", UserID: "u3", City: "Lyon", ZoneStart: "Zone B", ZoneEnd: "Zone A",
			DistanceKm: 10.0, PriceEur: 6.25, Timestamp: time.Date(2026, 2, 8, 8, 5, 0, 0, time.UTC)},
	}
	for i := range trips {
		trips[i].Derive()
	}
	require.NoError(t, store.BulkInsert(context.Background(), trips))
}

func TestAggregator_RunWritesAllFamilies(t *testing.T) {
	store := memory.NewStore()
	seedTrips(t, store)
	artifacts := artifact.NewMemoryStore()

	agg := NewAggregator(store, artifacts)
	require.NoError(t, agg.Run(context.Background()))

	ctx := context.Background()

	var daily []coreagg.DailyRow
	require.NoError(t, artifacts.Load(ctx, "daily.json", &daily))
	require.Equal(t, []coreagg.DailyRow{
		{Date: "2026-02-07", TripCount: 2},
		{Date: "2026-02-08", TripCount: 1},
	}, daily)

	var cities []coreagg.CityRow
	require.NoError(t, artifacts.Load(ctx, "avg_distance.json", &cities))
	require.Equal(t, []coreagg.CityRow{
		{City: "Paris", AvgDistance: 15.0, TripCount: 2},
		{City: "Lyon", AvgDistance: 10.0, TripCount: 1},
	}, cities)

	var hourly []coreagg.HourlyRow
	require.NoError(t, artifacts.Load(ctx, "rush_hours.json", &hourly))
	require.Equal(t, []coreagg.HourlyRow{
		{Hour: 8, TripCount: 2},
		{Hour: 18, TripCount: 1},
	}, hourly)

	var zones []coreagg.ZoneRow
	require.NoError(t, artifacts.Load(ctx, "top_zones.json", &zones))
	require.Equal(t, []coreagg.ZoneRow{
		{Zone: "Zone A", TripCount: 2},
		{Zone: "Zone B", TripCount: 1},
	}, zones)

	var weekday []coreagg.WeekdayRow
	require.NoError(t, artifacts.Load(ctx, "by_day_of_week.json", &weekday))
	require.Equal(t, []coreagg.WeekdayRow{
		{City: "Lyon", DayOfWeek: "Sunday", TripCount: 1},
		{City: "Paris", DayOfWeek: "Saturday", TripCount: 2},
	}, weekday)
}

// failingStats delegates to a real store but fails one family's scan.
type failingStats struct {
	storage.StatsReader
}

func (f *failingStats) ZoneStats(context.Context) ([]coreagg.ZoneRow, error) {
	return nil, errors.New("connection reset")
}

func TestAggregator_ScanFailureWritesNothing(t *testing.T) {
	store := memory.NewStore()
	seedTrips(t, store)
	artifacts := artifact.NewMemoryStore()

	agg := NewAggregator(&failingStats{StatsReader: store}, artifacts)
	err := agg.Run(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "no artifacts written")

	for _, spec := range coreagg.Families {
		require.False(t, artifacts.Has(spec.Artifact), "artifact %s must not exist after aborted run", spec.Artifact)
	}
}

func TestAggregator_RunOverwritesStaleArtifacts(t *testing.T) {
	store := memory.NewStore()
	seedTrips(t, store)
	artifacts := artifact.NewMemoryStore()
	ctx := context.Background()

	stale := []coreagg.DailyRow{{Date: "2020-01-01", TripCount: 999}}
	require.NoError(t, artifacts.Save(ctx, "daily.json", stale))

	agg := NewAggregator(store, artifacts)
	require.NoError(t, agg.Run(ctx))

	var daily []coreagg.DailyRow
	require.NoError(t, artifacts.Load(ctx, "daily.json", &daily))
	require.Len(t, daily, 2)
	require.Equal(t, "2026-02-07", daily[0].Date)
}

func TestScheduler_StopsOnContextCancel(t *testing.T) {
	store := memory.NewStore()
	seedTrips(t, store)
	artifacts := artifact.NewMemoryStore()

	sched := NewScheduler(time.Hour, NewAggregator(store, artifacts))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sched.Start(ctx) }()

	// The immediate run publishes before the first tick.
	require.Eventually(t, func() bool {
		return artifacts.Has("daily.json")
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
}
