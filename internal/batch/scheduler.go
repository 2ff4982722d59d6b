package batch

import (
	"context"
	"log/slog"
	"time"
)

// Scheduler runs the batch aggregator on a periodic interval.
// It is stateless: each tick is an independent full recompute.
type Scheduler struct {
	interval   time.Duration
	aggregator *Aggregator
}

// NewScheduler creates an interval scheduler for the aggregator.
func NewScheduler(interval time.Duration, aggregator *Aggregator) *Scheduler {
	return &Scheduler{interval: interval, aggregator: aggregator}
}

// Start begins periodic aggregation runs, including one immediately so a
// fresh deployment serves artifacts without waiting a full interval.
// Runs until context is cancelled. A failed run is logged and retried on the
// next tick; artifact-absence fallback keeps queries correct meanwhile.
func (s *Scheduler) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("[Scheduler] Starting batch aggregation scheduler", "interval", s.interval)

	if err := s.aggregator.Run(ctx); err != nil {
		slog.Error("[Scheduler] Initial aggregation run failed", "error", err)
	}

	for {
		select {
		case <-ticker.C:
			if err := s.aggregator.Run(ctx); err != nil {
				slog.Error("[Scheduler] Aggregation run failed", "error", err)
			}
		case <-ctx.Done():
			slog.Info("[Scheduler] Stopping (context cancelled)")
			return nil
		}
	}
}
