package memory

import (
	"context"
	"sort"
	"sync"

	v1 "github.com/237Fresnel/urban-transport-platform/internal/api/v1"
	coreagg "github.com/237Fresnel/urban-transport-platform/internal/core/aggregation"
	"github.com/237Fresnel/urban-transport-platform/internal/core/storage"
	"github.com/shopspring/decimal"
)

// Store is an in-memory implementation of TripStore, StatsReader and
// CounterStore. Useful for testing and development. Its aggregation methods
// implement the same group-by and sort semantics as the postgres adapter, so
// behavioral tests written against it hold for the SQL paths.
type Store struct {
	mu        sync.RWMutex
	trips     []v1.Trip
	nextRowID int64

	hourCounts map[hourKey]int64
	zoneCounts map[zoneKey]int64
}

type hourKey struct {
	city string
	date string
	hour int
}

type zoneKey struct {
	city string
	zone string
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		nextRowID:  1,
		hourCounts: make(map[hourKey]int64),
		zoneCounts: make(map[zoneKey]int64),
	}
}

func (s *Store) BulkInsert(_ context.Context, trips []v1.Trip) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, trip := range trips {
		trip.RowID = s.nextRowID
		s.nextRowID++
		s.trips = append(s.trips, trip)
	}
	return nil
}

func (s *Store) ListTrips(_ context.Context, filter storage.TripFilter) ([]v1.Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []v1.Trip
	for _, trip := range s.trips {
		if filter.City != "" && trip.City != filter.City {
			continue
		}
		if filter.Date != "" && trip.Date != filter.Date {
			continue
		}
		out = append(out, trip)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *Store) DistinctCities(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	var cities []string
	for _, trip := range s.trips {
		if !seen[trip.City] {
			seen[trip.City] = true
			cities = append(cities, trip.City)
		}
	}
	sort.Strings(cities)
	return cities, nil
}

// Reset clears trips and counters. One Store serves both the record store
// and counter store roles, so its reset covers both sides.
func (s *Store) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trips = nil
	s.nextRowID = 1
	s.hourCounts = make(map[hourKey]int64)
	s.zoneCounts = make(map[zoneKey]int64)
	return nil
}

// EnsureIndexes is a no-op: in-memory scans need no indexes.
func (s *Store) EnsureIndexes(_ context.Context) error { return nil }

func (s *Store) Ping(_ context.Context) error { return nil }

func (s *Store) DailyStats(_ context.Context, city string) ([]coreagg.DailyRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int64)
	for _, trip := range s.trips {
		if city != "" && trip.City != city {
			continue
		}
		counts[trip.Date]++
	}

	out := make([]coreagg.DailyRow, 0, len(counts))
	for date, n := range counts {
		out = append(out, coreagg.DailyRow{Date: date, TripCount: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (s *Store) CityStats(_ context.Context) ([]coreagg.CityRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type acc struct {
		sum   decimal.Decimal
		count int64
	}
	accs := make(map[string]*acc)
	for _, trip := range s.trips {
		a, ok := accs[trip.City]
		if !ok {
			a = &acc{}
			accs[trip.City] = a
		}
		a.sum = a.sum.Add(decimal.NewFromFloat(trip.DistanceKm))
		a.count++
	}

	out := make([]coreagg.CityRow, 0, len(accs))
	for city, a := range accs {
		out = append(out, coreagg.CityRow{
			City:        city,
			AvgDistance: coreagg.MeanDistance(a.sum, a.count),
			TripCount:   a.count,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TripCount != out[j].TripCount {
			return out[i].TripCount > out[j].TripCount
		}
		return out[i].City < out[j].City
	})
	return out, nil
}

func (s *Store) HourlyStats(_ context.Context, city string) ([]coreagg.HourlyRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[int]int64)
	for _, trip := range s.trips {
		if city != "" && trip.City != city {
			continue
		}
		counts[trip.Hour]++
	}

	out := make([]coreagg.HourlyRow, 0, len(counts))
	for hour, n := range counts {
		out = append(out, coreagg.HourlyRow{Hour: hour, TripCount: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hour < out[j].Hour })
	return out, nil
}

func (s *Store) ZoneStats(_ context.Context) ([]coreagg.ZoneRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int64)
	for _, trip := range s.trips {
		counts[trip.ZoneStart]++
	}

	out := make([]coreagg.ZoneRow, 0, len(counts))
	for zone, n := range counts {
		out = append(out, coreagg.ZoneRow{Zone: zone, TripCount: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TripCount != out[j].TripCount {
			return out[i].TripCount > out[j].TripCount
		}
		return out[i].Zone < out[j].Zone
	})
	return out, nil
}

func (s *Store) WeekdayStats(_ context.Context) ([]coreagg.WeekdayRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type key struct {
		city string
		day  string
	}
	counts := make(map[key]int64)
	for _, trip := range s.trips {
		counts[key{city: trip.City, day: trip.DayOfWeek}]++
	}

	out := make([]coreagg.WeekdayRow, 0, len(counts))
	for k, n := range counts {
		out = append(out, coreagg.WeekdayRow{City: k.city, DayOfWeek: k.day, TripCount: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].City != out[j].City {
			return out[i].City < out[j].City
		}
		if out[i].TripCount != out[j].TripCount {
			return out[i].TripCount > out[j].TripCount
		}
		return out[i].DayOfWeek < out[j].DayOfWeek
	})
	return out, nil
}

func (s *Store) IncrementHour(_ context.Context, city, date string, hour int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hourCounts[hourKey{city: city, date: date, hour: hour}]++
	return nil
}

func (s *Store) IncrementZone(_ context.Context, city, zone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zoneCounts[zoneKey{city: city, zone: zone}]++
	return nil
}

func (s *Store) HourCount(_ context.Context, city, date string, hour int) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hourCounts[hourKey{city: city, date: date, hour: hour}], nil
}

func (s *Store) ZoneCount(_ context.Context, city, zone string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.zoneCounts[zoneKey{city: city, zone: zone}], nil
}

func (s *Store) HourBuckets(_ context.Context, city, date string) ([]storage.HourBucket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []storage.HourBucket
	for k, n := range s.hourCounts {
		if k.city != city || k.date != date {
			continue
		}
		out = append(out, storage.HourBucket{City: k.city, Date: k.date, Hour: k.hour, TripCount: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hour < out[j].Hour })
	return out, nil
}

// TripCount reports the number of stored trips.
func (s *Store) TripCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.trips)
}
