package config

import "time"

// Default values for configuration fields.
const (
	// Policy bundle defaults
	DefaultPoliciesDirectory = "policies"
	DefaultPoliciesWatch     = false
	DefaultDebounceInterval  = 100 * time.Millisecond
	DefaultMaxFileSize       = int64(5 * 1024 * 1024) // 5MB

	// Eligibility defaults
	DefaultConfidenceFloor = 0.5
	DefaultMaxConcurrency  = 4

	// Determination storage defaults
	DefaultDeterminationsEnabled = true
	DefaultDeterminationsBackend = "sqlite"
	DefaultSQLitePath            = "data/determinations.db"
	DefaultSQLiteMaxOpenConns    = 10
	DefaultSQLiteMaxIdleConns    = 5
	DefaultSQLiteWALMode         = true
	DefaultSQLiteBusyTimeout     = 5 * time.Second

	// Retention defaults
	DefaultRetentionDays     = 365
	DefaultRetentionSchedule = "0 3 * * *"
	DefaultArchivePath       = "data/archives/"

	// Code store defaults
	DefaultCodesPath          = "data/codes.db"
	DefaultCodesSeedOnStartup = true

	// Telemetry defaults
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "json"
	DefaultLogOutput        = "stderr"
	DefaultLogRedactPHI     = true
	DefaultMetricsNamespace = "atlas"
	DefaultMetricsSubsystem = "eligibility"
)

// ApplyDefaults fills in default values for any configuration fields
// that were not set. Boolean fields with true defaults are handled by
// NewDefaultConfig; ApplyDefaults only fills zero values.
func ApplyDefaults(cfg *Config) {
	if cfg.Policies.Directory == "" {
		cfg.Policies.Directory = DefaultPoliciesDirectory
	}
	if cfg.Policies.DebounceInterval == 0 {
		cfg.Policies.DebounceInterval = DefaultDebounceInterval
	}
	if cfg.Policies.MaxFileSize == 0 {
		cfg.Policies.MaxFileSize = DefaultMaxFileSize
	}

	if cfg.Eligibility.ConfidenceFloor == 0 {
		cfg.Eligibility.ConfidenceFloor = DefaultConfidenceFloor
	}
	if cfg.Eligibility.MaxConcurrency == 0 {
		cfg.Eligibility.MaxConcurrency = DefaultMaxConcurrency
	}

	if cfg.Determinations.Backend == "" {
		cfg.Determinations.Backend = DefaultDeterminationsBackend
	}
	if cfg.Determinations.SQLite.Path == "" {
		cfg.Determinations.SQLite.Path = DefaultSQLitePath
	}
	if cfg.Determinations.SQLite.MaxOpenConns == 0 {
		cfg.Determinations.SQLite.MaxOpenConns = DefaultSQLiteMaxOpenConns
	}
	if cfg.Determinations.SQLite.MaxIdleConns == 0 {
		cfg.Determinations.SQLite.MaxIdleConns = DefaultSQLiteMaxIdleConns
	}
	if cfg.Determinations.SQLite.BusyTimeout == 0 {
		cfg.Determinations.SQLite.BusyTimeout = DefaultSQLiteBusyTimeout
	}
	if cfg.Determinations.Retention.Schedule == "" {
		cfg.Determinations.Retention.Schedule = DefaultRetentionSchedule
	}
	if cfg.Determinations.Retention.ArchivePath == "" {
		cfg.Determinations.Retention.ArchivePath = DefaultArchivePath
	}

	if cfg.Codes.Path == "" {
		cfg.Codes.Path = DefaultCodesPath
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}
	if cfg.Telemetry.Logging.Output == "" {
		cfg.Telemetry.Logging.Output = DefaultLogOutput
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsystem
	}
}

// NewDefaultConfig returns a configuration populated entirely with
// default values. Unlike ApplyDefaults it also sets boolean fields
// whose defaults are true.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)

	cfg.Policies.Watch = DefaultPoliciesWatch
	cfg.Determinations.Enabled = DefaultDeterminationsEnabled
	cfg.Determinations.SQLite.WALMode = DefaultSQLiteWALMode
	cfg.Determinations.Retention.Days = DefaultRetentionDays
	cfg.Codes.SeedOnStartup = DefaultCodesSeedOnStartup
	cfg.Telemetry.Logging.RedactPHI = DefaultLogRedactPHI

	return cfg
}
