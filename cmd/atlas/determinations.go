package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"backwork/atlas/pkg/cli"
	"backwork/atlas/pkg/determinations"
	"backwork/atlas/pkg/determinations/retention"
)

var determinationsFlags struct {
	backend   string
	timeRange string
	subject   string
	policy    string
	status    string
	limit     int
	offset    int
	sort      string
	format    string
}

var determinationsCmd = &cobra.Command{
	Use:   "determinations",
	Short: "Query stored determinations",
	Long: `Query and prune stored eligibility determinations.

Subcommands:
  query  - Query determinations with filters
  prune  - Apply the retention policy once

Examples:
  # Query recent determinations for a policy
  atlas determinations query --policy-id L33822 --limit 10

  # Filter by subject and outcome
  atlas determinations query --subject patient-17 --status not_qualified

  # Prune expired determinations
  atlas determinations prune`,
}

var determinationsQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query stored determinations",
	Long: `Query stored determinations with various filters.

Time Range Format:
  RFC3339 interval format: "start/end"
  Example: "2026-08-01T00:00:00Z/2026-09-01T00:00:00Z"

Examples:
  # Query a specific time range
  atlas determinations query --time-range "2026-08-01T00:00:00Z/2026-09-01T00:00:00Z"

  # Filter by subject and policy
  atlas determinations query --subject patient-17 --policy-id L33822

  # JSON output
  atlas determinations query --format json`,
	RunE: queryDeterminations,
}

var determinationsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Apply the retention policy once",
	Long: `Delete stored determinations that fall outside the configured
retention window or record cap. With archiving enabled, pruned records
are written to the archive directory first.`,
	RunE: pruneDeterminations,
}

func init() {
	rootCmd.AddCommand(determinationsCmd)
	determinationsCmd.AddCommand(determinationsQueryCmd, determinationsPruneCmd)

	determinationsQueryCmd.Flags().StringVar(&determinationsFlags.backend, "backend", "", "backend: sqlite, memory (uses config if not specified)")
	determinationsQueryCmd.Flags().StringVar(&determinationsFlags.timeRange, "time-range", "", "time range (RFC3339 interval: start/end)")
	determinationsQueryCmd.Flags().StringVar(&determinationsFlags.subject, "subject", "", "filter by subject id")
	determinationsQueryCmd.Flags().StringVar(&determinationsFlags.policy, "policy-id", "", "filter by policy id")
	determinationsQueryCmd.Flags().StringVar(&determinationsFlags.status, "status", "", "filter by overall status (qualified, not_qualified, review_needed)")
	determinationsQueryCmd.Flags().IntVar(&determinationsFlags.limit, "limit", 100, "max results")
	determinationsQueryCmd.Flags().IntVar(&determinationsFlags.offset, "offset", 0, "pagination offset")
	determinationsQueryCmd.Flags().StringVar(&determinationsFlags.sort, "sort", "desc", "sort order by recorded time: asc, desc")
	determinationsQueryCmd.Flags().StringVar(&determinationsFlags.format, "format", "text", "output format: text, json, csv")

	determinationsPruneCmd.Flags().StringVar(&determinationsFlags.backend, "backend", "", "backend: sqlite, memory (uses config if not specified)")
}

func queryDeterminations(cmd *cobra.Command, args []string) error {
	cfg, err := loadAppConfig()
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	if determinationsFlags.backend != "" {
		cfg.Determinations.Backend = determinationsFlags.backend
	}

	store, err := openDeterminationStorage(cfg)
	if err != nil {
		return cli.NewCommandError("determinations", err)
	}
	defer store.Close()

	query := &determinations.Query{
		SubjectID:     determinationsFlags.subject,
		PolicyID:      determinationsFlags.policy,
		OverallStatus: determinationsFlags.status,
		Limit:         determinationsFlags.limit,
		Offset:        determinationsFlags.offset,
		SortOrder:     determinationsFlags.sort,
	}

	if determinationsFlags.timeRange != "" {
		parts := strings.Split(determinationsFlags.timeRange, "/")
		if len(parts) != 2 {
			return fmt.Errorf("invalid time range format (expected: start/end)")
		}

		startTime, err := time.Parse(time.RFC3339, parts[0])
		if err != nil {
			return fmt.Errorf("invalid start time: %w", err)
		}
		query.StartTime = &startTime

		endTime, err := time.Parse(time.RFC3339, parts[1])
		if err != nil {
			return fmt.Errorf("invalid end time: %w", err)
		}
		query.EndTime = &endTime
	}

	ctx := cli.SetupSignalHandler()
	records, err := store.Query(ctx, query)
	if err != nil {
		return cli.NewCommandError("determinations", fmt.Errorf("query failed: %w", err))
	}

	switch determinationsFlags.format {
	case "json":
		return outputJSON(records)
	case "csv":
		return outputDeterminationsCSV(records)
	}

	if len(records) == 0 {
		fmt.Println("No determinations found.")
		return nil
	}

	for _, rec := range records {
		det := rec.Determination
		fmt.Printf("%s  %s\n", rec.ID, rec.RecordedAt.Format(time.RFC3339))
		fmt.Printf("  subject: %s  policy: %s (%s)\n", rec.SubjectID, det.PolicyID, det.PolicyVersion)
		fmt.Printf("  outcome: %s (%d/%d met)\n", det.OverallStatus, det.MetCount, det.TotalCount)
		fmt.Println()
	}
	fmt.Printf("Total: %d record(s)\n", len(records))

	return nil
}

func outputDeterminationsCSV(records []*determinations.StoredDetermination) error {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		det := rec.Determination
		rows = append(rows, []string{
			rec.ID,
			rec.RecordedAt.Format(time.RFC3339),
			rec.SubjectID,
			det.PolicyID,
			string(det.OverallStatus),
			strconv.Itoa(det.MetCount),
			strconv.Itoa(det.TotalCount),
		})
	}

	formatter := &cli.CSVFormatter{
		Headers: []string{"id", "recorded_at", "subject_id", "policy_id", "status", "met", "total"},
	}
	return formatter.FormatTo(os.Stdout, rows)
}

func pruneDeterminations(cmd *cobra.Command, args []string) error {
	cfg, err := loadAppConfig()
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	if determinationsFlags.backend != "" {
		cfg.Determinations.Backend = determinationsFlags.backend
	}

	store, err := openDeterminationStorage(cfg)
	if err != nil {
		return cli.NewCommandError("determinations", err)
	}
	defer store.Close()

	pruner := retention.NewPruner(store, &retention.Config{
		RetentionDays:       cfg.Determinations.Retention.Days,
		ArchiveBeforeDelete: cfg.Determinations.Retention.ArchiveBeforeDelete,
		ArchivePath:         cfg.Determinations.Retention.ArchivePath,
		MaxRecords:          cfg.Determinations.Retention.MaxRecords,
	})

	deleted, err := pruner.Prune(cli.SetupSignalHandler())
	if err != nil {
		return cli.NewCommandError("determinations", fmt.Errorf("prune failed: %w", err))
	}

	fmt.Printf("Pruned %d determination(s).\n", deleted)
	return nil
}
