package ingestion

import (
	"math"
	"math/rand"
	"time"

	v1 "github.com/237Fresnel/urban-transport-platform/internal/api/v1"
	"github.com/google/uuid"
)

const (
	minDistanceKm = 0.5
	maxDistanceKm = 50.0
	minPriceEur   = 1.0
	maxPriceEur   = 25.0
	historyDays   = 365
)

// Generator synthesizes random trips spread uniformly over the trailing
// year. Fixing the seed makes a run reproducible.
type Generator struct {
	catalog Catalog
	rng     *rand.Rand
	now     time.Time
}

// NewGenerator creates a generator over the given catalog. A zero seed
// derives one from the current time.
func NewGenerator(catalog Catalog, seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{
		catalog: catalog,
		rng:     rand.New(rand.NewSource(seed)),
		now:     time.Now().UTC(),
	}
}

func (g *Generator) Next() v1.Trip {
	zoneStart := g.catalog.Zones[g.rng.Intn(len(g.catalog.Zones))]
	zoneEnd := g.catalog.Zones[g.rng.Intn(len(g.catalog.Zones))]

	secondsBack := g.rng.Int63n(historyDays * 24 * 60 * 60)
	ts := g.now.Add(-time.Duration(secondsBack) * time.Second)

	trip := v1.Trip{
		TripID:     uuid.NewString(),
		UserID:     uuid.NewString(),
		City:       g.catalog.Cities[g.rng.Intn(len(g.catalog.Cities))],
		ZoneStart:  zoneStart,
		ZoneEnd:    zoneEnd,
		DistanceKm: round2(minDistanceKm + g.rng.Float64()*(maxDistanceKm-minDistanceKm)),
		PriceEur:   round2(minPriceEur + g.rng.Float64()*(maxPriceEur-minPriceEur)),
		Timestamp:  ts,
	}
	trip.Derive()
	return trip
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
