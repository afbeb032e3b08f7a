package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	if cfg.Policies.Directory != "policies" {
		t.Errorf("expected default policies directory, got %q", cfg.Policies.Directory)
	}
	if cfg.Policies.DebounceInterval != 100*time.Millisecond {
		t.Errorf("expected 100ms debounce, got %v", cfg.Policies.DebounceInterval)
	}
	if cfg.Eligibility.ConfidenceFloor != 0.5 {
		t.Errorf("expected confidence floor 0.5, got %v", cfg.Eligibility.ConfidenceFloor)
	}
	if cfg.Eligibility.MaxConcurrency != 4 {
		t.Errorf("expected max concurrency 4, got %d", cfg.Eligibility.MaxConcurrency)
	}
	if !cfg.Determinations.Enabled {
		t.Error("expected determinations enabled by default")
	}
	if cfg.Determinations.Backend != "sqlite" {
		t.Errorf("expected sqlite backend, got %q", cfg.Determinations.Backend)
	}
	if cfg.Determinations.Retention.Days != 365 {
		t.Errorf("expected 365 retention days, got %d", cfg.Determinations.Retention.Days)
	}
	if cfg.Telemetry.Logging.Level != "info" {
		t.Errorf("expected info log level, got %q", cfg.Telemetry.Logging.Level)
	}
	if !cfg.Telemetry.Logging.RedactPHI {
		t.Error("expected PHI redaction enabled by default")
	}

	if err := Validate(cfg); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{
			name:      "empty policies directory",
			mutate:    func(c *Config) { c.Policies.Directory = "" },
			wantField: "policies.directory",
		},
		{
			name:      "confidence floor above one",
			mutate:    func(c *Config) { c.Eligibility.ConfidenceFloor = 1.5 },
			wantField: "eligibility.confidence_floor",
		},
		{
			name:      "zero concurrency",
			mutate:    func(c *Config) { c.Eligibility.MaxConcurrency = 0 },
			wantField: "eligibility.max_concurrency",
		},
		{
			name:      "unknown backend",
			mutate:    func(c *Config) { c.Determinations.Backend = "postgres" },
			wantField: "determinations.backend",
		},
		{
			name:      "negative retention",
			mutate:    func(c *Config) { c.Determinations.Retention.Days = -1 },
			wantField: "determinations.retention.days",
		},
		{
			name:      "invalid cron schedule",
			mutate:    func(c *Config) { c.Determinations.Retention.Schedule = "not a cron" },
			wantField: "determinations.retention.schedule",
		},
		{
			name:      "unknown log level",
			mutate:    func(c *Config) { c.Telemetry.Logging.Level = "trace" },
			wantField: "telemetry.logging.level",
		},
		{
			name: "archive without path",
			mutate: func(c *Config) {
				c.Determinations.Retention.ArchiveBeforeDelete = true
				c.Determinations.Retention.ArchivePath = ""
			},
			wantField: "determinations.retention.archive_path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantField) {
				t.Errorf("expected error naming %s, got %v", tt.wantField, err)
			}
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Policies.Directory = ""
	cfg.Eligibility.MaxConcurrency = 0
	cfg.Telemetry.Logging.Format = "xml"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}

	verr, ok := err.(ValidationError)
	if !ok {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if len(verr.Errors) != 3 {
		t.Errorf("expected 3 field errors, got %d: %v", len(verr.Errors), verr.Errors)
	}
}

func TestLoadConfig(t *testing.T) {
	content := `
policies:
  directory: bundles
  watch: true
eligibility:
  confidence_floor: 0.7
determinations:
  backend: memory
telemetry:
  logging:
    level: debug
    format: text
`
	path := filepath.Join(t.TempDir(), "atlas.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Policies.Directory != "bundles" {
		t.Errorf("expected bundles directory, got %q", cfg.Policies.Directory)
	}
	if !cfg.Policies.Watch {
		t.Error("expected watch enabled")
	}
	if cfg.Eligibility.ConfidenceFloor != 0.7 {
		t.Errorf("expected floor 0.7, got %v", cfg.Eligibility.ConfidenceFloor)
	}
	if cfg.Determinations.Backend != "memory" {
		t.Errorf("expected memory backend, got %q", cfg.Determinations.Backend)
	}

	// Unset fields get defaults.
	if cfg.Eligibility.MaxConcurrency != 4 {
		t.Errorf("expected default concurrency 4, got %d", cfg.Eligibility.MaxConcurrency)
	}
	if cfg.Policies.MaxFileSize != DefaultMaxFileSize {
		t.Errorf("expected default max file size, got %d", cfg.Policies.MaxFileSize)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("policies: [not a map"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	content := `
eligibility:
  confidence_floor: 2.0
`
	path := filepath.Join(t.TempDir(), "atlas.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestEnvOverrides(t *testing.T) {
	content := `
policies:
  directory: bundles
`
	path := filepath.Join(t.TempDir(), "atlas.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	t.Setenv("ATLAS_POLICIES_DIRECTORY", "override")
	t.Setenv("ATLAS_ELIGIBILITY_CONFIDENCE_FLOOR", "0.8")
	t.Setenv("ATLAS_DETERMINATIONS_BACKEND", "memory")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides failed: %v", err)
	}

	if cfg.Policies.Directory != "override" {
		t.Errorf("expected env override for directory, got %q", cfg.Policies.Directory)
	}
	if cfg.Eligibility.ConfidenceFloor != 0.8 {
		t.Errorf("expected env override for floor, got %v", cfg.Eligibility.ConfidenceFloor)
	}
	if cfg.Determinations.Backend != "memory" {
		t.Errorf("expected env override for backend, got %q", cfg.Determinations.Backend)
	}
}

func TestEnvOverrides_InvalidBackendRejected(t *testing.T) {
	content := "policies:\n  directory: bundles\n"
	path := filepath.Join(t.TempDir(), "atlas.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	t.Setenv("ATLAS_DETERMINATIONS_BACKEND", "postgres")

	if _, err := LoadConfigWithEnvOverrides(path); err == nil {
		t.Fatal("expected validation error after env override")
	}
}

func TestSingleton_SetAndGet(t *testing.T) {
	original := GetConfig()
	defer SetConfig(original)

	cfg := NewDefaultConfig()
	SetConfig(cfg)

	if GetConfig() != cfg {
		t.Error("expected SetConfig to replace the global instance")
	}
}
