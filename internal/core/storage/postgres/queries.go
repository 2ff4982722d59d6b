package postgres

// SQL for the trip record store, the counter store and the live aggregation
// paths. The aggregation queries are shared verbatim between the batch
// aggregator (city = NULL) and the resolver's live-filtered fallback
// (city = $1), which is what keeps both paths schema-identical.

const (
	queryInsertTripPrefix = `
		INSERT INTO trips (
			trip_id, user_id, city, zone_start, zone_end,
			distance_km, price_eur, ts, hour, day_of_week, trip_date
		) VALUES `

	queryListTrips = `
		SELECT
			id, trip_id, user_id, city, zone_start, zone_end,
			distance_km, price_eur, ts, hour, day_of_week, trip_date
		FROM trips
		WHERE ($1::text IS NULL OR city = $1)
		  AND ($2::text IS NULL OR trip_date = $2)
		ORDER BY ts DESC
		LIMIT $3
	`

	queryDistinctCities = `SELECT DISTINCT city FROM trips ORDER BY city ASC`

	queryTruncateTrips = `TRUNCATE trips RESTART IDENTITY`

	// Aggregation paths. Sort orders are part of the artifact contract.

	queryDailyStats = `
		SELECT trip_date, COUNT(*) AS trip_count
		FROM trips
		WHERE ($1::text IS NULL OR city = $1)
		GROUP BY trip_date
		ORDER BY trip_date ASC
	`

	// The mean itself is computed in Go from the exact decimal sum so the
	// 2dp rounding mode is pinned in one place (aggregation.MeanDistance).
	queryCityStats = `
		SELECT city, SUM(distance_km)::text AS distance_sum, COUNT(*) AS trip_count
		FROM trips
		GROUP BY city
		ORDER BY trip_count DESC, city ASC
	`

	queryHourlyStats = `
		SELECT hour, COUNT(*) AS trip_count
		FROM trips
		WHERE ($1::text IS NULL OR city = $1)
		GROUP BY hour
		ORDER BY hour ASC
	`

	queryZoneStats = `
		SELECT zone_start, COUNT(*) AS trip_count
		FROM trips
		GROUP BY zone_start
		ORDER BY trip_count DESC, zone_start ASC
	`

	queryWeekdayStats = `
		SELECT city, day_of_week, COUNT(*) AS trip_count
		FROM trips
		GROUP BY city, day_of_week
		ORDER BY city ASC, trip_count DESC, day_of_week ASC
	`

	// Counter store. Single-statement upserts keep increments atomic per
	// key under concurrent workers, with no read-modify-write in the client.

	queryIncrementHour = `
		INSERT INTO trip_counts_by_hour (city, trip_date, hour, trip_count)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (city, trip_date, hour)
		DO UPDATE SET trip_count = trip_counts_by_hour.trip_count + 1
	`

	queryIncrementZone = `
		INSERT INTO trip_counts_by_zone (city, zone, trip_count)
		VALUES ($1, $2, 1)
		ON CONFLICT (city, zone)
		DO UPDATE SET trip_count = trip_counts_by_zone.trip_count + 1
	`

	queryHourCount = `
		SELECT trip_count FROM trip_counts_by_hour
		WHERE city = $1 AND trip_date = $2 AND hour = $3
	`

	queryZoneCount = `
		SELECT trip_count FROM trip_counts_by_zone
		WHERE city = $1 AND zone = $2
	`

	queryHourBuckets = `
		SELECT city, trip_date, hour, trip_count
		FROM trip_counts_by_hour
		WHERE city = $1 AND trip_date = $2
		ORDER BY hour ASC
	`

	queryTruncateCounters = `TRUNCATE trip_counts_by_hour, trip_counts_by_zone`
)

// ensureIndexStatements are the derived indexes the ingestion pipeline builds
// after a bulk load. Building them post-load keeps the load itself fast at
// the target volume; IF NOT EXISTS makes repeated runs idempotent.
var ensureIndexStatements = []string{
	`CREATE INDEX IF NOT EXISTS idx_trips_city ON trips (city)`,
	`CREATE INDEX IF NOT EXISTS idx_trips_date ON trips (trip_date)`,
	`CREATE INDEX IF NOT EXISTS idx_trips_hour ON trips (hour)`,
	`CREATE INDEX IF NOT EXISTS idx_trips_ts ON trips (ts)`,
	`CREATE INDEX IF NOT EXISTS idx_trips_city_date ON trips (city, trip_date)`,
}
