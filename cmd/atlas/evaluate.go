package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"backwork/atlas/pkg/cli"
	"backwork/atlas/pkg/config"
	"backwork/atlas/pkg/determinations"
	"backwork/atlas/pkg/determinations/storage"
	"backwork/atlas/pkg/eligibility"
	"backwork/atlas/pkg/record"
	"backwork/atlas/pkg/registry"
	"backwork/atlas/pkg/telemetry/metrics"
)

var evaluateFlags struct {
	policiesDir string
	policyID    string
	recordPath  string
	asOf        string
	subjectID   string
	store       bool
	format      string
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate a record against a policy bundle",
	Long: `Evaluate an extracted patient record against a policy bundle and
print the determination.

The record file is a JSON document of extracted facts with evidence,
as produced by an extraction adapter. The determination lists one
verdict per criterion, the aggregate status, and documentation gaps.

Examples:
  # Evaluate against the CGM policy
  atlas evaluate --policies policies/ --policy L33822 --record chart.json

  # Evaluate as of a specific date
  atlas evaluate --policy L33822 --record chart.json --as-of 2026-03-15

  # Persist the determination
  atlas evaluate --policy L33822 --record chart.json --store --subject patient-17

  # Human-readable summary
  atlas evaluate --policy L33822 --record chart.json --format text`,
	RunE: evaluateRecord,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().StringVar(&evaluateFlags.policiesDir, "policies", "", "policy bundle directory (uses config if not specified)")
	evaluateCmd.Flags().StringVarP(&evaluateFlags.policyID, "policy", "p", "", "policy id to evaluate against (required)")
	evaluateCmd.Flags().StringVarP(&evaluateFlags.recordPath, "record", "r", "", "extracted record JSON file (required)")
	evaluateCmd.Flags().StringVar(&evaluateFlags.asOf, "as-of", "", "evaluation reference date (YYYY-MM-DD or RFC3339; defaults to now)")
	evaluateCmd.Flags().StringVar(&evaluateFlags.subjectID, "subject", "", "subject id for stored determinations")
	evaluateCmd.Flags().BoolVar(&evaluateFlags.store, "store", false, "persist the determination")
	evaluateCmd.Flags().StringVar(&evaluateFlags.format, "format", "json", "output format: json, text")

	evaluateCmd.MarkFlagRequired("policy")
	evaluateCmd.MarkFlagRequired("record")
}

func evaluateRecord(cmd *cobra.Command, args []string) error {
	cfg, err := loadAppConfig()
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	logger := newLogger(&cfg.Telemetry.Logging)

	// Load bundles
	dir := evaluateFlags.policiesDir
	if dir == "" {
		dir = cfg.Policies.Directory
	}

	reg := registry.NewBundleRegistry()
	loader := registry.NewBundleLoader(&registry.LoaderConfig{
		MaxFileSize: cfg.Policies.MaxFileSize,
	})
	if err := loader.LoadIntoRegistry(dir, reg); err != nil {
		return cli.NewCommandError("evaluate", fmt.Errorf("failed to load bundles: %w", err))
	}

	// Load record
	rec, err := readRecord(evaluateFlags.recordPath)
	if err != nil {
		return cli.NewCommandError("evaluate", err)
	}

	// Build engine
	engineCfg := eligibility.DefaultConfig().
		WithConfidenceFloor(cfg.Eligibility.ConfidenceFloor).
		WithMaxConcurrency(cfg.Eligibility.MaxConcurrency)

	engine, err := eligibility.NewEngine(reg, engineCfg, logger)
	if err != nil {
		return cli.NewCommandError("evaluate", err)
	}

	if cfg.Telemetry.Metrics.Enabled {
		collector := metrics.NewCollector(&metrics.Config{
			Enabled:   true,
			Namespace: cfg.Telemetry.Metrics.Namespace,
			Subsystem: cfg.Telemetry.Metrics.Subsystem,
		}, nil)
		engine.WithObserver(collector)
	}

	// Evaluate; an interrupt aborts cleanly mid-run
	ctx := cli.SetupSignalHandler()

	var det *eligibility.Determination
	if evaluateFlags.asOf != "" {
		asOf, err := parseAsOf(evaluateFlags.asOf)
		if err != nil {
			return err
		}
		det, err = engine.EvaluateAt(ctx, evaluateFlags.policyID, rec, asOf)
		if err != nil {
			return cli.NewCommandError("evaluate", err)
		}
	} else {
		det, err = engine.Evaluate(ctx, evaluateFlags.policyID, rec)
		if err != nil {
			return cli.NewCommandError("evaluate", err)
		}
	}

	// Persist if requested
	if evaluateFlags.store {
		if err := storeDetermination(ctx, cfg, det); err != nil {
			return cli.NewCommandError("evaluate", err)
		}
	}

	if evaluateFlags.format == "text" {
		printDetermination(det)
		return nil
	}
	return outputJSON(det)
}

func readRecord(path string) (*record.ExtractedRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read record file: %w", err)
	}

	var rec record.ExtractedRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse record file %q: %w", path, err)
	}
	return &rec, nil
}

func parseAsOf(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --as-of value %q (expected YYYY-MM-DD or RFC3339)", value)
	}
	return t, nil
}

func storeDetermination(ctx context.Context, cfg *config.Config, det *eligibility.Determination) error {
	store, err := openDeterminationStorage(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	recorder := determinations.NewRecorder(store, determinations.DefaultRecorderConfig())
	stored, err := recorder.Record(ctx, evaluateFlags.subjectID, det)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "stored determination %s\n", stored.ID)
	return nil
}

func openDeterminationStorage(cfg *config.Config) (determinations.Storage, error) {
	switch cfg.Determinations.Backend {
	case "memory":
		return storage.NewMemoryStorage(), nil
	case "sqlite":
		return storage.NewSQLiteStorage(&storage.SQLiteConfig{
			Path:         cfg.Determinations.SQLite.Path,
			MaxOpenConns: cfg.Determinations.SQLite.MaxOpenConns,
			MaxIdleConns: cfg.Determinations.SQLite.MaxIdleConns,
			WALMode:      cfg.Determinations.SQLite.WALMode,
			BusyTimeout:  cfg.Determinations.SQLite.BusyTimeout,
		})
	default:
		return nil, fmt.Errorf("unsupported backend: %s", cfg.Determinations.Backend)
	}
}

func printDetermination(det *eligibility.Determination) {
	fmt.Printf("Policy: %s (%s, version %s)\n", det.PolicyID, det.PolicyTitle, det.PolicyVersion)
	fmt.Printf("As of: %s\n", det.AsOf.Format("2006-01-02"))
	fmt.Printf("Overall: %s (%d/%d required criteria met)\n", det.OverallStatus, det.MetCount, det.TotalCount)
	fmt.Println()

	for _, r := range det.Results {
		marker := "✗"
		if r.Status == eligibility.StatusMet {
			marker = "✓"
		}
		fmt.Printf("%s %s: %s (confidence %.2f)\n", marker, r.Name, r.Status, r.Confidence)
		fmt.Printf("  %s\n", r.Explanation)
		if r.Recommendation != "" {
			fmt.Printf("  recommendation: %s\n", r.Recommendation)
		}
	}

	if len(det.GapsIdentified) > 0 {
		fmt.Println()
		fmt.Println("Gaps:")
		for _, gap := range det.GapsIdentified {
			fmt.Printf("  - %s\n", gap)
		}
	}

	fmt.Println()
	fmt.Println(det.Summary)
}
