// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/fitlens/internal/recommend"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/fitlens/config.yaml",
	"/etc/fitlens/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
func defaultConfig() *Config {
	engine := recommend.DefaultConfig()
	return &Config{
		Server: ServerConfig{
			Port:           8000,
			Host:           "0.0.0.0",
			Timeout:        30 * time.Second,
			Environment:    "development",
			MaxUploadBytes: 10 << 20, // 10MB
		},
		Database: DatabaseConfig{
			Driver:       "duckdb",
			DSN:          "/data/fitlens.duckdb",
			MaxOpenConns: 10,
			Breaker: BreakerConfig{
				MinRequests:  10,
				FailureRatio: 0.6,
				Timeout:      30 * time.Second,
				Interval:     time.Minute,
			},
		},
		Events: EventsConfig{
			Enabled:        true,
			Transport:      "gochannel",
			URL:            "nats://127.0.0.1:4222",
			EmbeddedServer: false,
			EmbeddedHost:   "127.0.0.1",
			EmbeddedPort:   4222,
			TopicPrefix:    "fitlens.events",
		},
		Cache: CacheConfig{
			Backend: "memory",
			Path:    "",
		},
		Security: SecurityConfig{
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			TrainInterval:   time.Minute,
			TrainBurst:      1,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Recommend: RecommendConfig{
			Scorer:          engine.Scorer,
			FallbackToRules: engine.FallbackToRules,
			Rules:           engine.Rules,
			Logistic:        engine.Logistic,
			Diversity:       engine.Diversity,
			Training:        engine.Training,
			Limits:          engine.Limits,
			Cache:           engine.Cache,
			ModelPath:       "/data/models",
			TrainingCSV:     "/data/train.csv",
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any mapped setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// DATABASE_DRIVER -> database.driver, RECOMMEND_SCORER -> recommend.scorer
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Defaults returns the built-in configuration, before any file or
// environment overrides.
func Defaults() *Config {
	return defaultConfig()
}

// ConfigFile returns the config file Load would read, or "" when none exists.
func ConfigFile() string {
	return findConfigFile()
}

// findConfigFile returns CONFIG_PATH if it exists, else the first default
// path that exists, else "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
// Unmapped variables are ignored.
var envMappings = map[string]string{
	// Server
	"http_port":        "server.port",
	"http_host":        "server.host",
	"http_timeout":     "server.timeout",
	"environment":      "server.environment",
	"max_upload_bytes": "server.max_upload_bytes",

	// Database
	"database_driver":         "database.driver",
	"database_dsn":            "database.dsn",
	"database_url":            "database.dsn",
	"database_max_open_conns": "database.max_open_conns",
	"database_seed_file":      "database.seed_file",
	"breaker_min_requests":    "database.breaker.min_requests",
	"breaker_failure_ratio":   "database.breaker.failure_ratio",
	"breaker_timeout":         "database.breaker.timeout",

	// Events
	"events_enabled":     "events.enabled",
	"events_transport":   "events.transport",
	"nats_url":           "events.url",
	"nats_embedded":      "events.embedded_server",
	"nats_embedded_host": "events.embedded_host",
	"nats_embedded_port": "events.embedded_port",
	"events_topic":       "events.topic_prefix",

	// Cache
	"cache_backend": "cache.backend",
	"cache_path":    "cache.path",

	// Security
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"train_rate_interval": "security.train_interval",
	"train_rate_burst":    "security.train_burst",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Recommendation engine
	"recommend_scorer":            "recommend.scorer",
	"recommend_fallback_to_rules": "recommend.fallback_to_rules",
	"recommend_model_path":        "recommend.model_path",
	"recommend_training_csv":      "recommend.training_csv",
	"recommend_train_interval":    "recommend.training.interval",
	"recommend_train_on_startup":  "recommend.training.on_startup",
	"recommend_min_interactions":  "recommend.training.min_interactions",
	"recommend_retain_versions":   "recommend.training.retain_versions",
	"recommend_default_k":         "recommend.limits.default_k",
	"recommend_max_k":             "recommend.limits.max_k",
	"recommend_max_candidates":    "recommend.limits.max_candidates",
	"recommend_cache_enabled":     "recommend.cache.enabled",
	"recommend_cache_ttl":         "recommend.cache.ttl",
	"recommend_diversity_enabled": "recommend.diversity.enabled",
	"recommend_diversity_lambda":  "recommend.diversity.mmr_lambda",
	"recommend_lr_c":              "recommend.logistic.c",
	"recommend_lr_max_iterations": "recommend.logistic.max_iterations",
	"recommend_lr_seed":           "recommend.logistic.seed",
}

// envTransformFunc maps an environment variable name to its koanf path, or
// "" to skip it.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

// WatchConfigFile calls callback whenever the file at path changes.
// The caller is responsible for reloading and swapping the configuration.
func WatchConfigFile(path string, callback func()) error {
	return file.Provider(path).Watch(func(event interface{}, err error) {
		if err != nil {
			return
		}
		callback()
	})
}
