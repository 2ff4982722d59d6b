package query

import (
	"context"
	"testing"
	"time"

	v1 "github.com/237Fresnel/urban-transport-platform/internal/api/v1"
	"github.com/237Fresnel/urban-transport-platform/internal/artifact"
	"github.com/237Fresnel/urban-transport-platform/internal/batch"
	coreagg "github.com/237Fresnel/urban-transport-platform/internal/core/aggregation"
	"github.com/237Fresnel/urban-transport-platform/internal/core/storage"
	"github.com/237Fresnel/urban-transport-platform/internal/core/storage/memory"
	"github.com/stretchr/testify/require"
)

func seedStore(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.NewStore()

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
	return store
}

func newService(store *memory.Store, artifacts artifact.Store) *Service {
	return NewService(store, store, artifacts, Options{})
}

func TestService_ArtifactServedVerbatim(t *testing.T) {
	store := seedStore(t)
	artifacts := artifact.NewMemoryStore()
	ctx := context.Background()

	// An artifact that disagrees with the record store proves which source
	// answered.
	precomputed := []coreagg.DailyRow{{Date: "2025-12-31", TripCount: 42}}
	require.NoError(t, artifacts.Save(ctx, "daily.json", precomputed))

	rows, err := newService(store, artifacts).Daily(ctx, "")
	require.NoError(t, err)
	require.Equal(t, precomputed, rows)
}

func TestService_MissingArtifactFallsBackLive(t *testing.T) {
	store := seedStore(t)
	svc := newService(store, artifact.NewMemoryStore())

	rows, err := svc.Daily(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, []coreagg.DailyRow{
		{Date: "2026-02-07", TripCount: 2},
		{Date: "2026-02-08", TripCount: 1},
	}, rows)
}

func TestService_CorruptArtifactFallsBackLive(t *testing.T) {
	store := seedStore(t)
	artifacts := artifact.NewMemoryStore()
	artifacts.Corrupt("rush_hours.json")

	rows, err := newService(store, artifacts).Hourly(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, []coreagg.HourlyRow{
		{Hour: 8, TripCount: 2},
		{Hour: 18, TripCount: 1},
	}, rows)
}

func TestService_CityFilterBypassesArtifact(t *testing.T) {
	store := seedStore(t)
	artifacts := artifact.NewMemoryStore()
	ctx := context.Background()

	// Fresh artifacts from the real data. The filtered query must not serve
	// them: they were computed unfiltered.
	require.NoError(t, batch.NewAggregator(store, artifacts).Run(ctx))
	svc := newService(store, artifacts)

	daily, err := svc.Daily(ctx, "Lyon")
	require.NoError(t, err)
	require.Equal(t, []coreagg.DailyRow{{Date: "2026-02-08", TripCount: 1}}, daily)

	hourly, err := svc.Hourly(ctx, "Paris")
	require.NoError(t, err)
	require.Equal(t, []coreagg.HourlyRow{
		{Hour: 8, TripCount: 1},
		{Hour: 18, TripCount: 1},
	}, hourly)
}

func TestService_FallbackMatchesArtifactResult(t *testing.T) {
	store := seedStore(t)
	artifacts := artifact.NewMemoryStore()
	ctx := context.Background()
	svc := newService(store, artifacts)

	live, err := svc.Cities(ctx)
	require.NoError(t, err)

	require.NoError(t, batch.NewAggregator(store, artifacts).Run(ctx))
	precomputed, err := svc.Cities(ctx)
	require.NoError(t, err)

	require.Equal(t, precomputed, live)
	require.Equal(t, 15.0, live[0].AvgDistance)
}

func TestService_TopZonesLimit(t *testing.T) {
	store := seedStore(t)
	artifacts := artifact.NewMemoryStore()
	ctx := context.Background()
	svc := newService(store, artifacts)

	// Live path.
	rows, err := svc.TopZones(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, []coreagg.ZoneRow{{Zone: "Zone A", TripCount: 2}}, rows)

	// Precomputed path: limit still applied after loading.
	require.NoError(t, batch.NewAggregator(store, artifacts).Run(ctx))
	rows, err = svc.TopZones(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, []coreagg.ZoneRow{{Zone: "Zone A", TripCount: 2}}, rows)

	// Zero means absent: default limit covers everything here.
	rows, err = svc.TopZones(ctx, 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	_, err = svc.TopZones(ctx, -3)
	require.ErrorIs(t, err, ErrValidation)
}

func TestService_TripsValidation(t *testing.T) {
	store := seedStore(t)
	svc := newService(store, artifact.NewMemoryStore())
	ctx := context.Background()

	tests := []struct {
		name  string
		city  string
		date  string
		limit int
	}{
		{name: "limit above max", limit: 1001},
		{name: "negative limit", limit: -1},
		{name: "malformed date", date: "07/02/2026", limit: 10},
		{name: "partial date", date: "2026-02", limit: 10},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Trips(ctx, tc.city, tc.date, tc.limit)
			require.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestService_TripsFiltersAndOrder(t *testing.T) {
	store := seedStore(t)
	svc := newService(store, artifact.NewMemoryStore())
	ctx := context.Background()

	trips, err := svc.Trips(ctx, "Paris", "", 0)
	require.NoError(t, err)
	require.Len(t, trips, 2)
	// Newest first.
	require.Equal(t, "t2", trips[0].TripID)
	require.Equal(t, "t1", trips[1].TripID)

	trips, err = svc.Trips(ctx, "", "2026-02-08", 0)
	require.NoError(t, err)
	require.Len(t, trips, 1)
	require.Equal(t, "t3", trips[0].TripID)

	trips, err = svc.Trips(ctx, "", "", 1)
	require.NoError(t, err)
	require.Len(t, trips, 1)
}

func TestService_DistinctCities(t *testing.T) {
	store := seedStore(t)
	svc := newService(store, artifact.NewMemoryStore())

	cities, err := svc.DistinctCities(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"Lyon", "Paris"}, cities)
}

// downStats reports every live aggregation as unavailable.
type downStats struct {
	storage.StatsReader
}

func (d *downStats) DailyStats(context.Context, string) ([]coreagg.DailyRow, error) {
	return nil, storage.ErrUnavailable
}

func TestService_BackendErrorSurfaces(t *testing.T) {
	store := seedStore(t)
	svc := NewService(store, &downStats{StatsReader: store}, artifact.NewMemoryStore(), Options{})

	_, err := svc.Daily(context.Background(), "")
	require.ErrorIs(t, err, storage.ErrUnavailable)
}

func TestService_EmptyStoreIsEmptyResultNotError(t *testing.T) {
	svc := newService(memory.NewStore(), artifact.NewMemoryStore())
	ctx := context.Background()

	rows, err := svc.Daily(ctx, "")
	require.NoError(t, err)
	require.Empty(t, rows)

	zones, err := svc.TopZones(ctx, 0)
	require.NoError(t, err)
	require.Empty(t, zones)
}
