package v1

import (
	"fmt"
	"time"
)

// Trip is the atomic record of the system. It is immutable once written:
// the derived bucketing fields (Hour, DayOfWeek, Date) are computed exactly
// once at ingestion time from Timestamp and persisted alongside it, so every
// downstream consumer buckets identically. Readers must never recompute them.
type Trip struct {
	// RowID is the monotonic row identifier assigned by the record store
	// (BIGSERIAL). Internal only, never exposed on the API surface.
	RowID int64 `json:"-"`

	// TripID and UserID are opaque unique identifiers supplied by the
	// ingestion pipeline (UUIDs in the generator).
	TripID string `json:"trip_id"`
	UserID string `json:"user_id"`

	// City is one of a small fixed city set. ZoneStart/ZoneEnd come from a
	// fixed zone set. The store enforces neither; catalog membership is the
	// generator's concern.
	City      string `json:"city"`
	ZoneStart string `json:"zone_start"`
	ZoneEnd   string `json:"zone_end"`

	// DistanceKm and PriceEur are positive. The generator bounds them
	// (0.5–50.0 km, 1.0–25.0 EUR) but readers must tolerate out-of-range
	// values, so no store-side validation.
	DistanceKm float64 `json:"distance_km"`
	PriceEur   float64 `json:"price_eur"`

	Timestamp time.Time `json:"timestamp"`

	// Derived fields. Hour is 0–23 local to Timestamp, DayOfWeek is the
	// English weekday name, Date is the calendar day as YYYY-MM-DD.
	Hour      int    `json:"hour"`
	DayOfWeek string `json:"day_of_week"`
	Date      string `json:"date"`
}

// DateLayout is the calendar-day wire format used across trips, counter
// buckets and artifacts.
const DateLayout = "2006-01-02"

// Derive computes Hour, DayOfWeek and Date from Timestamp, in the
// timestamp's own location. This is the single place derived fields are
// produced; hour/day bucketing across the record store, the counter store
// and every artifact hangs off it.
func (t *Trip) Derive() {
	t.Hour = t.Timestamp.Hour()
	t.DayOfWeek = t.Timestamp.Weekday().String()
	t.Date = t.Timestamp.Format(DateLayout)
}

// Validate ensures the trip carries every required attribute and that the
// derived fields are consistent with Timestamp.
func (t *Trip) Validate() error {
	if t.TripID == "" {
		return fmt.Errorf("trip_id is required")
	}
	if t.UserID == "" {
		return fmt.Errorf("user_id is required")
	}
	if t.City == "" {
		return fmt.Errorf("city is required")
	}
	if t.ZoneStart == "" || t.ZoneEnd == "" {
		return fmt.Errorf("zone_start and zone_end are required")
	}
	if t.Timestamp.IsZero() {
		return fmt.Errorf("timestamp is required")
	}
	if t.Hour != t.Timestamp.Hour() {
		return fmt.Errorf("hour %d inconsistent with timestamp (want %d)", t.Hour, t.Timestamp.Hour())
	}
	if t.Date != t.Timestamp.Format(DateLayout) {
		return fmt.Errorf("date %q inconsistent with timestamp (want %s)", t.Date, t.Timestamp.Format(DateLayout))
	}
	return nil
}
