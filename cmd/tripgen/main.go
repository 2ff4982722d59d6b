package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	corecfg "github.com/237Fresnel/urban-transport-platform/internal/core/config"
	"github.com/237Fresnel/urban-transport-platform/internal/core/storage/postgres"
	"github.com/237Fresnel/urban-transport-platform/internal/ingestion"
	"github.com/237Fresnel/urban-transport-platform/internal/migrations"
)

// tripgen wipes the record and counter stores and reloads them with
// generated trips. It is destructive by design: every run starts from an
// empty store.
func main() {
	configPath := flag.String("config", "transport.yaml", "Path to configuration file")
	totalTrips := flag.Int("trips", 0, "Number of trips to generate (overrides config)")
	batchSize := flag.Int("batch", 0, "Bulk write batch size (overrides config)")
	seed := flag.Int64("seed", 0, "Random seed (overrides config, 0 means time-seeded)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := corecfg.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	n := cfg.Ingest.TotalTrips
	if *totalTrips > 0 {
		n = *totalTrips
	}
	b := cfg.Ingest.BatchSize
	if *batchSize > 0 {
		b = *batchSize
	}
	genSeed := cfg.Ingest.Seed
	if *seed != 0 {
		genSeed = *seed
	}

	catalog := ingestion.DefaultCatalog()
	if cfg.Ingest.CatalogPath != "" {
		catalog, err = ingestion.LoadCatalog(cfg.Ingest.CatalogPath)
		if err != nil {
			slog.Error("Failed to load catalog", "path", cfg.Ingest.CatalogPath, "error", err)
			os.Exit(1)
		}
	}

	dbAdapter, err := postgres.NewAdapter(
		cfg.Database.DSN,
		cfg.Database.MaxOpenConns,
		cfg.Database.MaxIdleConns,
	)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer dbAdapter.Close()

	if err := migrations.RunMigrations(dbAdapter.DB(), cfg.Database.AutoMigrate); err != nil {
		slog.Error("Failed to run database migrations", "error", err)
		os.Exit(1)
	}

	counters, err := postgres.NewCounterAdapter(dbAdapter.DB())
	if err != nil {
		slog.Error("Failed to initialize counter store", "error", err)
		os.Exit(1)
	}
	defer counters.Close()

	generator := ingestion.NewGenerator(catalog, genSeed)
	pipeline := ingestion.NewPipeline(generator, dbAdapter, counters, b, cfg.Ingest.WorkerCount)

	report, runErr := pipeline.Run(context.Background(), n)
	slog.Info("Run report",
		"trips_written", report.TripsWritten,
		"batches_flushed", report.BatchesFlushed,
		"batches_failed", report.BatchesFailed,
		"increment_failures", report.IncrementFailures,
		"elapsed", report.Elapsed,
	)
	if runErr != nil {
		slog.Error("Load finished with failures", "error", runErr)
		os.Exit(1)
	}
}
