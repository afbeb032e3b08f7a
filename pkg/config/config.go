package config

import "time"

// Config is the root configuration structure for Atlas.
// It contains all configuration sections for policy bundle loading,
// eligibility evaluation, determination persistence, the code reference
// store, and telemetry.
type Config struct {
	// Policies contains configuration for policy bundle loading and
	// hot reload.
	Policies PoliciesConfig `yaml:"policies"`

	// Eligibility contains configuration for the evaluation engine.
	Eligibility EligibilityConfig `yaml:"eligibility"`

	// Determinations contains configuration for determination
	// persistence and retention.
	Determinations DeterminationsConfig `yaml:"determinations"`

	// Codes contains configuration for the HCPCS code reference store.
	Codes CodesConfig `yaml:"codes"`

	// Telemetry contains configuration for logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// PoliciesConfig contains configuration for policy bundle loading.
type PoliciesConfig struct {
	// Directory is the directory holding policy bundle YAML files.
	// Default: "policies"
	Directory string `yaml:"directory"`

	// Watch enables hot reload of the directory on file changes.
	// Default: false
	Watch bool `yaml:"watch"`

	// DebounceInterval is how long to coalesce file change events
	// before reloading.
	// Default: 100ms
	DebounceInterval time.Duration `yaml:"debounce_interval"`

	// MaxFileSize is the largest bundle file the loader will read,
	// in bytes.
	// Default: 5MB
	MaxFileSize int64 `yaml:"max_file_size"`
}

// EligibilityConfig contains configuration for the evaluation engine.
type EligibilityConfig struct {
	// ConfidenceFloor is the default minimum evidence confidence a
	// criterion needs before its finding is trusted. Criteria may
	// override it per definition.
	// Default: 0.5
	ConfidenceFloor float64 `yaml:"confidence_floor"`

	// MaxConcurrency bounds how many criteria are evaluated in
	// parallel within one evaluation.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency"`
}

// DeterminationsConfig contains configuration for determination
// persistence.
type DeterminationsConfig struct {
	// Enabled turns determination recording on.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Backend selects the storage backend: "sqlite" or "memory".
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite contains SQLite backend settings.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// Retention contains retention and pruning settings.
	Retention RetentionConfig `yaml:"retention"`
}

// SQLiteConfig contains SQLite backend settings for determination
// storage.
type SQLiteConfig struct {
	// Path is the SQLite database file path.
	// Default: "data/determinations.db"
	Path string `yaml:"path"`

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// WALMode enables write-ahead logging.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RetentionConfig contains retention settings for stored
// determinations.
type RetentionConfig struct {
	// Days is how long determinations are kept. Zero keeps them
	// forever.
	// Default: 365
	Days int `yaml:"days"`

	// Schedule is the cron expression for the pruning job. Empty
	// disables scheduled pruning.
	// Default: "0 3 * * *"
	Schedule string `yaml:"schedule"`

	// ArchiveBeforeDelete writes pruned records to an archive file
	// before deleting them.
	// Default: false
	ArchiveBeforeDelete bool `yaml:"archive_before_delete"`

	// ArchivePath is the directory for archive files.
	// Default: "data/archives/"
	ArchivePath string `yaml:"archive_path"`

	// MaxRecords caps the total number of stored determinations. Zero
	// means no cap.
	// Default: 0
	MaxRecords int64 `yaml:"max_records"`
}

// CodesConfig contains configuration for the HCPCS code reference
// store.
type CodesConfig struct {
	// Path is the SQLite database file path for the code table.
	// Default: "data/codes.db"
	Path string `yaml:"path"`

	// SeedOnStartup seeds the CGM code table when the store opens.
	// Default: true
	SeedOnStartup bool `yaml:"seed_on_startup"`
}

// TelemetryConfig contains configuration for logging and metrics.
type TelemetryConfig struct {
	// Logging contains structured logging settings.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics settings.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", or
	// "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the log output format: "json" or "text".
	// Default: "json"
	Format string `yaml:"format"`

	// Output is the log destination: "stdout" or "stderr".
	// Default: "stderr"
	Output string `yaml:"output"`

	// RedactPHI enables redaction of patient identifiers in log output.
	// Default: true
	RedactPHI bool `yaml:"redact_phi"`
}

// MetricsConfig contains Prometheus metrics settings.
type MetricsConfig struct {
	// Enabled turns metric recording on.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Namespace is the metric name prefix.
	// Default: "atlas"
	Namespace string `yaml:"namespace"`

	// Subsystem is the second metric name segment.
	// Default: "eligibility"
	Subsystem string `yaml:"subsystem"`
}
