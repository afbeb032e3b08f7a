package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified
// path. It applies default values, validates the configuration, and
// returns any errors. The configuration is not modified by environment
// variables; use LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies environment variable overrides. Environment variables follow
// the naming convention ATLAS_SECTION_FIELD (e.g.,
// ATLAS_POLICIES_DIRECTORY). Environment variables always take
// precedence over file-based configuration.
//
// The loading sequence is:
//  1. Load YAML from file
//  2. Apply default values
//  3. Apply environment variable overrides
//  4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Environment variables use the format
// ATLAS_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Policy bundle overrides
	if val := os.Getenv("ATLAS_POLICIES_DIRECTORY"); val != "" {
		cfg.Policies.Directory = val
	}
	if val := os.Getenv("ATLAS_POLICIES_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Policies.Watch = b
		}
	}
	if val := os.Getenv("ATLAS_POLICIES_DEBOUNCE_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Policies.DebounceInterval = d
		}
	}

	// Eligibility overrides
	if val := os.Getenv("ATLAS_ELIGIBILITY_CONFIDENCE_FLOOR"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Eligibility.ConfidenceFloor = f
		}
	}
	if val := os.Getenv("ATLAS_ELIGIBILITY_MAX_CONCURRENCY"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.Eligibility.MaxConcurrency = n
		}
	}

	// Determination storage overrides
	if val := os.Getenv("ATLAS_DETERMINATIONS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Determinations.Enabled = b
		}
	}
	if val := os.Getenv("ATLAS_DETERMINATIONS_BACKEND"); val != "" {
		cfg.Determinations.Backend = val
	}
	if val := os.Getenv("ATLAS_DETERMINATIONS_SQLITE_PATH"); val != "" {
		cfg.Determinations.SQLite.Path = val
	}
	if val := os.Getenv("ATLAS_DETERMINATIONS_RETENTION_DAYS"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.Determinations.Retention.Days = n
		}
	}
	if val := os.Getenv("ATLAS_DETERMINATIONS_RETENTION_SCHEDULE"); val != "" {
		cfg.Determinations.Retention.Schedule = val
	}

	// Code store overrides
	if val := os.Getenv("ATLAS_CODES_PATH"); val != "" {
		cfg.Codes.Path = val
	}

	// Telemetry overrides
	if val := os.Getenv("ATLAS_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("ATLAS_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("ATLAS_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
}
