package aggregation

// Typed artifact row schemas. Field names are the wire contract: the batch
// aggregator writes them to the artifact files and the live paths must
// produce rows that are byte-for-byte schema-identical.

// DailyRow is one row of the "daily" family: trips per calendar day,
// ascending by date.
type DailyRow struct {
	Date      string `json:"date"`
	TripCount int64  `json:"trip_count"`
}

// CityRow is one row of the "avg_distance_by_city" family: mean distance
// (2dp) and trip count per city, descending by trip count.
type CityRow struct {
	City        string  `json:"city"`
	AvgDistance float64 `json:"avg_distance"`
	TripCount   int64   `json:"trip_count"`
}

// HourlyRow is one row of the "rush_hours" family: trips per hour of day,
// ascending by hour. Hours with no trips emit no row.
type HourlyRow struct {
	Hour      int   `json:"hour"`
	TripCount int64 `json:"trip_count"`
}

// ZoneRow is one row of the "top_zones" family: trips per start zone,
// descending by trip count, ties broken ascending by zone. The artifact
// carries the full ranking; truncation to the caller's limit happens at
// query time.
type ZoneRow struct {
	Zone      string `json:"zone"`
	TripCount int64  `json:"trip_count"`
}

// WeekdayRow is one row of the "by_day_of_week" family: trips per
// (city, weekday), city ascending then trip count descending.
type WeekdayRow struct {
	City      string `json:"city"`
	DayOfWeek string `json:"day_of_week"`
	TripCount int64  `json:"trip_count"`
}
