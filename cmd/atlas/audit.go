package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"backwork/atlas/pkg/audit"
	"backwork/atlas/pkg/cli"
	"backwork/atlas/pkg/codes"
)

var auditFlags struct {
	claimPath string
	code      string
	modifier  string
	diagnosis string
	format    string
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Audit a CGM claim for LCD compliance",
	Long: `Audit a CGM claim for LCD L33822 compliance and coding accuracy.

Checks:
  - HCPCS code validity
  - Required modifiers (KX)
  - Diagnosis code coverage
  - Documentation requirements
  - Bundling rules

The full audit reads a claim JSON file. The quick form takes just a
code, modifier, and diagnosis and assumes documentation is on file.

Examples:
  # Full audit from a claim file
  atlas audit --claim claim.json

  # Quick audit
  atlas audit --code K0553 --modifier KX --diagnosis E11.65

  # JSON output
  atlas audit --claim claim.json --format json`,
	RunE: auditClaim,
}

func init() {
	rootCmd.AddCommand(auditCmd)

	auditCmd.Flags().StringVar(&auditFlags.claimPath, "claim", "", "claim JSON file")
	auditCmd.Flags().StringVar(&auditFlags.code, "code", "", "HCPCS code for quick audit")
	auditCmd.Flags().StringVar(&auditFlags.modifier, "modifier", "", "modifier for quick audit")
	auditCmd.Flags().StringVar(&auditFlags.diagnosis, "diagnosis", "", "ICD-10 diagnosis for quick audit")
	auditCmd.Flags().StringVar(&auditFlags.format, "format", "text", "output format: text, json")
}

func auditClaim(cmd *cobra.Command, args []string) error {
	cfg, err := loadAppConfig()
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	logger := newLogger(&cfg.Telemetry.Logging)

	auditor := audit.NewAuditor(codes.CGMCodes, logger)

	var report *audit.Report
	switch {
	case auditFlags.claimPath != "":
		data, err := os.ReadFile(auditFlags.claimPath)
		if err != nil {
			return cli.NewCommandError("audit", fmt.Errorf("failed to read claim file: %w", err))
		}
		var claim audit.Claim
		if err := json.Unmarshal(data, &claim); err != nil {
			return cli.NewCommandError("audit", fmt.Errorf("failed to parse claim file %q: %w", auditFlags.claimPath, err))
		}
		report = auditor.Audit(&claim)

	case auditFlags.code != "":
		report = auditor.QuickAudit(auditFlags.code, auditFlags.modifier, auditFlags.diagnosis)

	default:
		return fmt.Errorf("either --claim or --code must be specified")
	}

	if auditFlags.format == "json" {
		if err := outputJSON(report); err != nil {
			return err
		}
	} else {
		printReport(report)
	}

	if !report.Passed {
		return cli.NewCommandError("audit", fmt.Errorf("claim failed audit"))
	}
	return nil
}

func printReport(report *audit.Report) {
	fmt.Printf("LCD reference: %s\n", report.LCDReference)
	fmt.Printf("Score: %d/100\n", report.Score)
	fmt.Println()

	for _, issue := range report.Issues {
		var marker string
		switch issue.Severity {
		case audit.SeverityError:
			marker = "✗"
		case audit.SeverityWarning:
			marker = "⚠"
		default:
			marker = "•"
		}
		fmt.Printf("%s [%s/%s] %s\n", marker, issue.Severity, issue.Category, issue.Message)
		fmt.Printf("  %s\n", issue.Recommendation)
	}

	if len(report.Issues) > 0 {
		fmt.Println()
	}
	fmt.Println(report.Summary)
}
