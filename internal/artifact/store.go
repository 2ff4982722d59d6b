package artifact

import (
	"context"
	"errors"
)

// ErrMissing marks an artifact that has never been computed (or was cleared).
// Not a failure; it is the resolver's signal to fall back to live
// aggregation.
var ErrMissing = errors.New("artifact missing")

// ErrCorrupt marks an artifact file that exists but cannot be decoded.
// The resolver treats it exactly like ErrMissing, but logs it.
var ErrCorrupt = errors.New("artifact corrupt")

// Store persists named aggregate artifacts. The batch aggregator is the only
// writer; writes are whole-artifact overwrites, never merges. Readers get a
// decoded snapshot or ErrMissing/ErrCorrupt; presence of a decodable
// artifact is the only freshness signal in the system.
type Store interface {
	// Save overwrites the named artifact with v (a slice of typed rows).
	Save(ctx context.Context, name string, v interface{}) error

	// Load decodes the named artifact into v (a pointer to a slice of
	// typed rows). Returns ErrMissing if absent, ErrCorrupt if undecodable.
	Load(ctx context.Context, name string, v interface{}) error

	// Clear removes all artifacts. Destructive; the ingestion pipeline
	// calls it during reset so stale aggregates cannot outlive their data.
	Clear(ctx context.Context) error
}
