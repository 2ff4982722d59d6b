package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	v1 "github.com/237Fresnel/urban-transport-platform/internal/api/v1"
	"github.com/237Fresnel/urban-transport-platform/internal/core/storage"
)

// TripSource produces the trips a pipeline run writes.
type TripSource interface {
	Next() v1.Trip
}

// Report summarizes one pipeline run. Individual failures do not abort the
// run; they are collected here and surfaced at the end.
type Report struct {
	TripsWritten      int
	BatchesFlushed    int
	BatchesFailed     int
	IncrementFailures int
	Elapsed           time.Duration
}

// Failed reports whether any batch write or counter increment failed.
func (r Report) Failed() bool {
	return r.BatchesFailed > 0 || r.IncrementFailures > 0
}

// Pipeline loads trips into the record store in bulk batches while fanning
// out two counter increments per trip through a bounded worker pool.
//
// The batch writes and the counter increments are not transactional with
// each other. A crash mid-run can leave the counter store ahead of or
// behind the record store; the destructive reset at the start of every run
// is what restores consistency.
type Pipeline struct {
	source      TripSource
	trips       storage.TripStore
	counters    storage.CounterStore
	batchSize   int
	workerCount int
}

// NewPipeline creates an ingestion pipeline.
func NewPipeline(source TripSource, trips storage.TripStore, counters storage.CounterStore, batchSize, workerCount int) *Pipeline {
	if source == nil {
		panic("ingestion: trip source must not be nil")
	}
	if trips == nil {
		panic("ingestion: trip store must not be nil")
	}
	if counters == nil {
		panic("ingestion: counter store must not be nil")
	}
	if batchSize <= 0 {
		batchSize = 5000
	}
	if workerCount <= 0 {
		workerCount = 1
	}
	return &Pipeline{
		source:      source,
		trips:       trips,
		counters:    counters,
		batchSize:   batchSize,
		workerCount: workerCount,
	}
}

// Run truncates both stores, then writes n generated trips. It returns a
// non-nil error when any batch or increment failed, alongside the full
// report. Reset or index-build failures abort immediately.
func (p *Pipeline) Run(ctx context.Context, n int) (Report, error) {
	started := time.Now()
	var report Report

	slog.Warn("[Pipeline] Destructive reset: truncating record store and counter store")
	if err := p.trips.Reset(ctx); err != nil {
		return report, fmt.Errorf("reset record store: %w", err)
	}
	if err := p.counters.Reset(ctx); err != nil {
		return report, fmt.Errorf("reset counter store: %w", err)
	}

	slog.Info("[Pipeline] Starting load", "trips", n, "batch_size", p.batchSize, "workers", p.workerCount)

	jobs := make(chan v1.Trip, p.batchSize)
	failures := make(chan int, p.workerCount)

	var wg sync.WaitGroup
	wg.Add(p.workerCount)
	for i := 0; i < p.workerCount; i++ {
		go func() {
			defer wg.Done()
			failed := 0
			for trip := range jobs {
				if err := p.counters.IncrementHour(ctx, trip.City, trip.Date, trip.Hour); err != nil {
					failed++
				}
				if err := p.counters.IncrementZone(ctx, trip.City, trip.ZoneStart); err != nil {
					failed++
				}
			}
			failures <- failed
		}()
	}

	batch := make([]v1.Trip, 0, p.batchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := p.trips.BulkInsert(ctx, batch); err != nil {
			report.BatchesFailed++
			slog.Error("[Pipeline] Batch write failed, continuing with next batch",
				"batch_size", len(batch), "error", err)
		} else {
			report.BatchesFlushed++
			report.TripsWritten += len(batch)
		}
		batch = batch[:0]
	}

	for i := 0; i < n; i++ {
		trip := p.source.Next()
		batch = append(batch, trip)
		jobs <- trip
		if len(batch) == p.batchSize {
			flush()
		}
	}
	flush()

	close(jobs)
	wg.Wait()
	close(failures)
	for failed := range failures {
		report.IncrementFailures += failed
	}

	slog.Info("[Pipeline] Building record store indexes")
	if err := p.trips.EnsureIndexes(ctx); err != nil {
		report.Elapsed = time.Since(started)
		return report, fmt.Errorf("build indexes: %w", err)
	}

	report.Elapsed = time.Since(started)
	slog.Info("[Pipeline] Load complete",
		"trips_written", report.TripsWritten,
		"batches_flushed", report.BatchesFlushed,
		"batches_failed", report.BatchesFailed,
		"increment_failures", report.IncrementFailures,
		"elapsed", report.Elapsed,
	)

	if report.Failed() {
		return report, fmt.Errorf("load finished with failures: %d failed batches, %d failed increments",
			report.BatchesFailed, report.IncrementFailures)
	}
	return report, nil
}
