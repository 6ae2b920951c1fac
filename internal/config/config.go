// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package config

import (
	"time"

	"github.com/tomtom215/fitlens/internal/recommend"
)

// Config holds all application configuration loaded from defaults, an
// optional YAML file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in defaults for every setting
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Mapped variables override everything
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal("Failed to load config:", err)
//	}
//	db, err := database.New(cfg.Database)
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Events    EventsConfig    `koanf:"events"`
	Cache     CacheConfig     `koanf:"cache"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
	Recommend RecommendConfig `koanf:"recommend"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port    int           `koanf:"port"`
	Host    string        `koanf:"host"`
	Timeout time.Duration `koanf:"timeout"`

	// Environment mode: "development", "staging", "production"
	Environment string `koanf:"environment"`

	// MaxUploadBytes caps the multipart body of /analyze-and-recommend.
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`
}

// DatabaseConfig selects and configures the catalog and events store.
type DatabaseConfig struct {
	// Driver is one of duckdb, postgres, sqlite.
	Driver string `koanf:"driver"`

	// DSN is a file path (or :memory:) for duckdb and sqlite, or a
	// connection URL for postgres.
	DSN string `koanf:"dsn"`

	MaxOpenConns int `koanf:"max_open_conns"`

	// SeedFile is an optional JSON catalog loaded at startup.
	SeedFile string `koanf:"seed_file"`

	Breaker BreakerConfig `koanf:"breaker"`
}

// BreakerConfig configures the catalog circuit breaker.
type BreakerConfig struct {
	// MinRequests is the request count before the failure ratio is considered.
	MinRequests uint32 `koanf:"min_requests"`

	// FailureRatio trips the breaker when reached.
	FailureRatio float64 `koanf:"failure_ratio"`

	// Timeout is how long the breaker stays open.
	Timeout time.Duration `koanf:"timeout"`

	// Interval clears the counts while closed.
	Interval time.Duration `koanf:"interval"`
}

// EventsConfig controls publishing of tracked events.
type EventsConfig struct {
	Enabled bool `koanf:"enabled"`

	// Transport is "gochannel" (in-process) or "nats".
	Transport string `koanf:"transport"`

	// URL is the NATS server URL when Transport is nats.
	URL string `koanf:"url"`

	// EmbeddedServer runs a NATS server inside the process.
	EmbeddedServer bool   `koanf:"embedded_server"`
	EmbeddedHost   string `koanf:"embedded_host"`
	EmbeddedPort   int    `koanf:"embedded_port"`

	// TopicPrefix is prepended to the event name: <prefix>.<event>.
	TopicPrefix string `koanf:"topic_prefix"`
}

// CacheConfig selects the recommendation response cache backend.
type CacheConfig struct {
	// Backend is "memory" or "badger".
	Backend string `koanf:"backend"`

	// Path is the Badger directory. Empty runs Badger in memory.
	Path string `koanf:"path"`
}

// SecurityConfig holds CORS and rate limiting settings
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	// TrainInterval is the minimum spacing of manual training triggers.
	TrainInterval time.Duration `koanf:"train_interval"`
	TrainBurst    int           `koanf:"train_burst"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// RecommendConfig holds the recommendation engine settings plus the
// locations of its models and training data.
type RecommendConfig struct {
	Scorer          string                    `koanf:"scorer"`
	FallbackToRules bool                      `koanf:"fallback_to_rules"`
	Rules           recommend.RulesConfig     `koanf:"rules"`
	Logistic        recommend.LogisticConfig  `koanf:"logistic"`
	Diversity       recommend.DiversityConfig `koanf:"diversity"`
	Training        recommend.TrainingConfig  `koanf:"training"`
	Limits          recommend.LimitsConfig    `koanf:"limits"`
	Cache           recommend.CacheConfig     `koanf:"cache"`

	// ModelPath is the model store directory.
	ModelPath string `koanf:"model_path"`

	// TrainingCSV is the labeled slate file used for training.
	TrainingCSV string `koanf:"training_csv"`
}

// Engine returns the engine configuration.
func (r *RecommendConfig) Engine() *recommend.Config {
	return &recommend.Config{
		Scorer:          r.Scorer,
		FallbackToRules: r.FallbackToRules,
		Rules:           r.Rules,
		Logistic:        r.Logistic,
		Diversity:       r.Diversity,
		Training:        r.Training,
		Limits:          r.Limits,
		Cache:           r.Cache,
	}
}

// Load reads configuration from all layers. See LoadWithKoanf.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
