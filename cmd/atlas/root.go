package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"backwork/atlas/pkg/config"
	"backwork/atlas/pkg/telemetry/logging"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "atlas",
	Short: "Atlas - eligibility criteria evaluation engine",
	Long: `Atlas is an eligibility evaluation engine for Medicare local coverage
determinations.

It evaluates extracted patient records against versioned policy bundles,
producing:
  - Per-criterion verdicts with evidence and confidence
  - Alternative-group resolution (e.g. insulin therapy OR hypoglycemia)
  - An aggregate determination with documentation gaps
  - Claim audits against HCPCS coding and bundling rules`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "atlas.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadAppConfig loads the application configuration. A missing config
// file at the default path falls back to defaults so commands work
// without a config file.
func loadAppConfig() (*config.Config, error) {
	if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
		if !rootCmd.PersistentFlags().Changed("config") {
			return config.NewDefaultConfig(), nil
		}
		return nil, fmt.Errorf("config file %q not found", cfgFile)
	}

	return config.LoadConfigWithEnvOverrides(cfgFile)
}

// newLogger builds the command logger from the logging configuration.
// The --verbose flag forces debug level.
func newLogger(cfg *config.LoggingConfig) *slog.Logger {
	level := cfg.Level
	if verbose {
		level = "debug"
	}

	out := os.Stderr
	if cfg.Output == "stdout" {
		out = os.Stdout
	}

	logger, err := logging.New(logging.Config{
		Level:     level,
		Format:    cfg.Format,
		Writer:    out,
		RedactPHI: cfg.RedactPHI,
	})
	if err != nil {
		// Config validation rejects bad values before we get here.
		return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{}))
	}
	return logger
}
