package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/237Fresnel/urban-transport-platform/internal/artifact"
	"github.com/237Fresnel/urban-transport-platform/internal/batch"
	corecfg "github.com/237Fresnel/urban-transport-platform/internal/core/config"
	"github.com/237Fresnel/urban-transport-platform/internal/core/storage/postgres"
	"github.com/237Fresnel/urban-transport-platform/internal/migrations"
	"github.com/237Fresnel/urban-transport-platform/internal/query"
	"github.com/237Fresnel/urban-transport-platform/internal/server"
)

func main() {
	configPath := flag.String("config", "transport.yaml", "Path to configuration file")
	aggregateOnce := flag.Bool("aggregate-once", false, "Run one aggregation pass and exit")
	flag.Parse()

	// 0. Initialize Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 1. Load Configuration
	cfg, err := corecfg.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded config", "config", cfg)

	interval, err := time.ParseDuration(cfg.Aggregation.Interval)
	if err != nil {
		slog.Error("Invalid aggregation interval", "value", cfg.Aggregation.Interval, "error", err)
		os.Exit(1)
	}
	queryTimeout, err := time.ParseDuration(cfg.Query.Timeout)
	if err != nil {
		slog.Error("Invalid query timeout", "value", cfg.Query.Timeout, "error", err)
		os.Exit(1)
	}

	// 2. Initialize Storage (PostgreSQL)
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

	// 2.1. Run Database Migrations
	if err := migrations.RunMigrations(dbAdapter.DB(), cfg.Database.AutoMigrate); err != nil {
		slog.Error("Failed to run database migrations", "error", err)
		os.Exit(1)
	}

	// 3. Initialize Artifact Store
	artifactStore, err := artifact.NewFileSystemStore(cfg.Artifacts.Dir)
	if err != nil {
		slog.Error("Failed to initialize artifact store", "error", err)
		os.Exit(1)
	}

	// 4. Initialize Batch Aggregation
	aggregator := batch.NewAggregator(dbAdapter, artifactStore)

	if *aggregateOnce {
		if err := aggregator.Run(context.Background()); err != nil {
			slog.Error("Aggregation run failed", "error", err)
			os.Exit(1)
		}
		return
	}

	scheduler := batch.NewScheduler(interval, aggregator)

	// 5. Initialize Query Resolver (API)
	querySvc := query.NewService(dbAdapter, dbAdapter, artifactStore, query.Options{
		Timeout:          queryTimeout,
		DefaultTripLimit: cfg.Query.DefaultTripLimit,
		MaxTripLimit:     cfg.Query.MaxTripLimit,
		DefaultZoneLimit: cfg.Query.DefaultZoneLimit,
	})

	// 6. Initialize Server
	srv := server.New(fmtAddr(cfg.Server.Host, cfg.Server.Port), dbAdapter, cfg.Server.Mode)
	querySvc.RegisterRoutes(srv.Engine)

	// 7. Start Services
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Aggregation.Enabled {
		go func() {
			if err := scheduler.Start(ctx); err != nil {
				slog.Error("Scheduler stopped with error", "error", err)
			}
		}()
	} else {
		slog.Info("Batch aggregation scheduler disabled by config")
	}

	// Signal handler triggers the shutdown sequence below.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Signal received, shutting down...")
		cancel()
	}()

	// HTTP server blocks until ctx is cancelled.
	if err := srv.Run(ctx); err != nil {
		slog.Error("Server stopped with error", "error", err)
	}

	slog.Info("Shutdown complete")
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
