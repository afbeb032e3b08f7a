package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"backwork/atlas/pkg/cli"
	"backwork/atlas/pkg/registry"
)

var policiesFlags struct {
	dir    string
	format string
}

var policiesCmd = &cobra.Command{
	Use:   "policies",
	Short: "List registered policy bundles",
	Long: `List the policy bundles in a directory with their versions and
criterion counts.

Examples:
  # List bundles in the configured directory
  atlas policies

  # List bundles in a specific directory
  atlas policies --dir policies/

  # JSON output
  atlas policies --format json`,
	RunE: listPolicies,
}

func init() {
	rootCmd.AddCommand(policiesCmd)

	policiesCmd.Flags().StringVarP(&policiesFlags.dir, "dir", "d", "", "policy bundle directory (uses config if not specified)")
	policiesCmd.Flags().StringVar(&policiesFlags.format, "format", "text", "output format: text, json")
}

// PolicySummary is one row of the policy listing.
type PolicySummary struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Version        string `json:"version"`
	Jurisdiction   string `json:"jurisdiction,omitempty"`
	CriterionCount int    `json:"criterion_count"`
	RequiredSlots  int    `json:"required_slots"`
	SourceFile     string `json:"source_file"`
}

func listPolicies(cmd *cobra.Command, args []string) error {
	cfg, err := loadAppConfig()
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	dir := policiesFlags.dir
	if dir == "" {
		dir = cfg.Policies.Directory
	}

	reg := registry.NewBundleRegistry()
	loader := registry.NewBundleLoader(&registry.LoaderConfig{
		MaxFileSize: cfg.Policies.MaxFileSize,
	})
	if err := loader.LoadIntoRegistry(dir, reg); err != nil {
		return cli.NewCommandError("policies", fmt.Errorf("failed to load bundles: %w", err))
	}

	bundles := reg.GetAll()
	summaries := make([]PolicySummary, 0, len(bundles))
	for _, b := range bundles {
		summaries = append(summaries, PolicySummary{
			ID:             b.ID,
			Title:          b.Title,
			Version:        b.Version,
			Jurisdiction:   b.Jurisdiction,
			CriterionCount: b.CriterionCount(),
			RequiredSlots:  len(b.RequiredCriteria()) + len(b.Groups()),
			SourceFile:     b.SourceFile,
		})
	}

	if policiesFlags.format == "json" {
		return outputJSON(summaries)
	}

	if len(summaries) == 0 {
		fmt.Println("No policy bundles found.")
		return nil
	}

	fmt.Printf("Registered bundles (version %s):\n\n", reg.Version())
	for _, s := range summaries {
		fmt.Printf("%s  %s\n", s.ID, s.Title)
		fmt.Printf("  version: %s", s.Version)
		if s.Jurisdiction != "" {
			fmt.Printf("  jurisdiction: %s", s.Jurisdiction)
		}
		fmt.Println()
		fmt.Printf("  criteria: %d (%d required slots)\n", s.CriterionCount, s.RequiredSlots)
		fmt.Printf("  source: %s\n", s.SourceFile)
		fmt.Println()
	}
	fmt.Printf("Total: %d bundle(s)\n", len(summaries))

	return nil
}
