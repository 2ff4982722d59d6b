package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config represents the top-level configuration for the transport platform.
type Config struct {
	Server      ServerConfig      `koanf:"server"`
	Database    DatabaseConfig    `koanf:"database"`
	Artifacts   ArtifactsConfig   `koanf:"artifacts"`
	Ingest      IngestConfig      `koanf:"ingest"`
	Aggregation AggregationConfig `koanf:"aggregation"`
	Query       QueryConfig       `koanf:"query"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Port int    `koanf:"port"`
	Host string `koanf:"host"`
	Mode string `koanf:"mode"` // "debug" or "release"
}

// DatabaseConfig holds the database connection settings.
type DatabaseConfig struct {
	DSN          string `koanf:"dsn"`
	MaxOpenConns int    `koanf:"max_open_conns"`
	MaxIdleConns int    `koanf:"max_idle_conns"`
	AutoMigrate  bool   `koanf:"auto_migrate"`
}

// ArtifactsConfig locates the aggregate artifact files on disk.
type ArtifactsConfig struct {
	Dir string `koanf:"dir"`
}

// IngestConfig drives the trip generation pipeline.
type IngestConfig struct {
	TotalTrips  int    `koanf:"total_trips"`
	BatchSize   int    `koanf:"batch_size"`
	WorkerCount int    `koanf:"worker_count"` // counter increment worker pool
	CatalogPath string `koanf:"catalog_path"` // optional city/zone catalog YAML
	Seed        int64  `koanf:"seed"`         // 0 means time-seeded
}

// AggregationConfig holds settings for the batch aggregator.
type AggregationConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Interval string `koanf:"interval"` // parsed as time.Duration in main
}

// QueryConfig bounds the query resolver.
type QueryConfig struct {
	Timeout          string `koanf:"timeout"` // live aggregation timeout
	DefaultTripLimit int    `koanf:"default_trip_limit"`
	MaxTripLimit     int    `koanf:"max_trip_limit"`
	DefaultZoneLimit int    `koanf:"default_zone_limit"`
}

// Load loads the configuration from the given file path and environment variables.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	defaults := map[string]interface{}{
		"server.port":              8080,
		"server.host":              "0.0.0.0",
		"server.mode":              "release",
		"database.dsn":             "postgres://localhost:5432/transport?sslmode=disable",
		"database.max_open_conns":  25,
		"database.max_idle_conns":  25,
		"database.auto_migrate":    true,
		"artifacts.dir":            "./artifacts",
		"ingest.total_trips":       500000,
		"ingest.batch_size":        5000,
		"ingest.worker_count":      10,
		"ingest.catalog_path":      "",
		"ingest.seed":              0,
		"aggregation.enabled":      true,
		"aggregation.interval":     "15m",
		"query.timeout":            "30s",
		"query.default_trip_limit": 100,
		"query.max_trip_limit":     1000,
		"query.default_zone_limit": 10,
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	// 2. Load from file
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	// 3. Load from Environment Variables
	// TRANSPORT_SERVER__PORT=9090 overrides server.port
	if err := k.Load(env.Provider("TRANSPORT_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "TRANSPORT_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
