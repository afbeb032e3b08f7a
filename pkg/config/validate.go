package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration
// field.
type FieldError struct {
	// Field is the dotted path to the configuration field
	// (e.g., "policies.directory").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a
// configuration. It implements the error interface and provides access
// to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a
// ValidationError if any validation rules fail. It returns nil if the
// configuration is valid. All validation errors are collected and
// returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validatePolicies(&cfg.Policies)...)
	errs = append(errs, validateEligibility(&cfg.Eligibility)...)
	errs = append(errs, validateDeterminations(&cfg.Determinations)...)
	errs = append(errs, validateCodes(&cfg.Codes)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validatePolicies(cfg *PoliciesConfig) []FieldError {
	var errs []FieldError

	if cfg.Directory == "" {
		errs = append(errs, FieldError{
			Field:   "policies.directory",
			Message: "directory cannot be empty",
		})
	}
	if cfg.DebounceInterval < 0 {
		errs = append(errs, FieldError{
			Field:   "policies.debounce_interval",
			Message: "debounce interval cannot be negative",
		})
	}
	if cfg.MaxFileSize <= 0 {
		errs = append(errs, FieldError{
			Field:   "policies.max_file_size",
			Message: "max file size must be positive",
		})
	}

	return errs
}

func validateEligibility(cfg *EligibilityConfig) []FieldError {
	var errs []FieldError

	if cfg.ConfidenceFloor < 0 || cfg.ConfidenceFloor > 1 {
		errs = append(errs, FieldError{
			Field:   "eligibility.confidence_floor",
			Message: "confidence floor must be between 0 and 1",
		})
	}
	if cfg.MaxConcurrency < 1 {
		errs = append(errs, FieldError{
			Field:   "eligibility.max_concurrency",
			Message: "max concurrency must be at least 1",
		})
	}

	return errs
}

func validateDeterminations(cfg *DeterminationsConfig) []FieldError {
	var errs []FieldError

	switch cfg.Backend {
	case "sqlite", "memory":
	default:
		errs = append(errs, FieldError{
			Field:   "determinations.backend",
			Message: fmt.Sprintf("unsupported backend %q (expected sqlite or memory)", cfg.Backend),
		})
	}

	if cfg.Backend == "sqlite" {
		if cfg.SQLite.Path == "" {
			errs = append(errs, FieldError{
				Field:   "determinations.sqlite.path",
				Message: "path cannot be empty",
			})
		}
		if cfg.SQLite.MaxOpenConns < 1 {
			errs = append(errs, FieldError{
				Field:   "determinations.sqlite.max_open_conns",
				Message: "max open connections must be at least 1",
			})
		}
		if cfg.SQLite.MaxIdleConns < 0 {
			errs = append(errs, FieldError{
				Field:   "determinations.sqlite.max_idle_conns",
				Message: "max idle connections cannot be negative",
			})
		}
	}

	if cfg.Retention.Days < 0 {
		errs = append(errs, FieldError{
			Field:   "determinations.retention.days",
			Message: "retention days cannot be negative",
		})
	}
	if cfg.Retention.MaxRecords < 0 {
		errs = append(errs, FieldError{
			Field:   "determinations.retention.max_records",
			Message: "max records cannot be negative",
		})
	}
	if cfg.Retention.Schedule != "" {
		if _, err := cron.ParseStandard(cfg.Retention.Schedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "determinations.retention.schedule",
				Message: fmt.Sprintf("invalid cron expression: %v", err),
			})
		}
	}
	if cfg.Retention.ArchiveBeforeDelete && cfg.Retention.ArchivePath == "" {
		errs = append(errs, FieldError{
			Field:   "determinations.retention.archive_path",
			Message: "archive path cannot be empty when archiving is enabled",
		})
	}

	return errs
}

func validateCodes(cfg *CodesConfig) []FieldError {
	var errs []FieldError

	if cfg.Path == "" {
		errs = append(errs, FieldError{
			Field:   "codes.path",
			Message: "path cannot be empty",
		})
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("unsupported level %q (expected debug, info, warn, or error)", cfg.Logging.Level),
		})
	}

	switch cfg.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("unsupported format %q (expected json or text)", cfg.Logging.Format),
		})
	}

	switch cfg.Logging.Output {
	case "stdout", "stderr":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.output",
			Message: fmt.Sprintf("unsupported output %q (expected stdout or stderr)", cfg.Logging.Output),
		})
	}

	if cfg.Metrics.Enabled && cfg.Metrics.Namespace == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.namespace",
			Message: "namespace cannot be empty when metrics are enabled",
		})
	}

	return errs
}
