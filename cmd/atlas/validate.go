package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"backwork/atlas/pkg/cli"
	schemaErrors "backwork/atlas/pkg/schema/errors"
	"backwork/atlas/pkg/schema/parser"
	"backwork/atlas/pkg/schema/validator"
)

var validateFlags struct {
	file   string
	dir    string
	format string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate policy bundle files",
	Long: `Validate policy bundle files for syntax and semantic errors.

The validate command parses bundle files and performs comprehensive
validation:
  - YAML syntax validation
  - Bundle structure validation (metadata, criterion fields, kinds)
  - Semantic validation (kind-specific parameters, group invariants)

Examples:
  # Validate single file
  atlas validate --file policies/l33822-cgm.yaml

  # Validate directory
  atlas validate --dir policies/

  # JSON output for CI/CD
  atlas validate --dir policies/ --format json`,
	RunE: validateBundles,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateFlags.file, "file", "f", "", "bundle file to validate")
	validateCmd.Flags().StringVarP(&validateFlags.dir, "dir", "d", "", "directory of bundle files")
	validateCmd.Flags().StringVar(&validateFlags.format, "format", "text", "output format: text, json")
}

func validateBundles(cmd *cobra.Command, args []string) error {
	if validateFlags.file == "" && validateFlags.dir == "" {
		return fmt.Errorf("either --file or --dir must be specified")
	}

	var files []string

	if validateFlags.file != "" {
		files = append(files, validateFlags.file)
	}

	if validateFlags.dir != "" {
		for _, pattern := range []string{"*.yaml", "*.yml"} {
			matches, err := filepath.Glob(filepath.Join(validateFlags.dir, pattern))
			if err != nil {
				return fmt.Errorf("failed to list bundle files: %w", err)
			}
			files = append(files, matches...)
		}
	}

	if len(files) == 0 {
		return fmt.Errorf("no bundle files found")
	}

	var progress cli.ProgressReporter
	if validateFlags.format == "text" && len(files) > 1 {
		progress = cli.NewProgressReporter(nil)
		progress.Start(int64(len(files)))
	}

	results := make([]ValidationResult, 0, len(files))
	for _, file := range files {
		results = append(results, validateBundleFile(file))
		if progress != nil {
			progress.Increment()
		}
	}
	if progress != nil {
		progress.Finish()
	}

	if validateFlags.format == "json" {
		return outputJSON(results)
	}
	return outputText(results)
}

// ValidationResult represents the validation result for a single bundle file.
type ValidationResult struct {
	File     string            `json:"file"`
	PolicyID string            `json:"policy_id,omitempty"`
	Valid    bool              `json:"valid"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a single validation error.
type ValidationError struct {
	Line       int    `json:"line,omitempty"`
	Column     int    `json:"column,omitempty"`
	Message    string `json:"message"`
	Type       string `json:"type,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func validateBundleFile(path string) ValidationResult {
	result := ValidationResult{
		File:  path,
		Valid: true,
	}

	bundle, err := parser.NewParser().Parse(path)
	if err != nil {
		result.Valid = false
		result.Errors = collectErrors(err)
		return result
	}
	result.PolicyID = bundle.ID

	if err := validator.NewValidator().Validate(bundle); err != nil {
		result.Valid = false
		result.Errors = collectErrors(err)
	}

	return result
}

func collectErrors(err error) []ValidationError {
	var list *schemaErrors.ErrorList
	if errors.As(err, &list) {
		out := make([]ValidationError, 0, len(list.Errors))
		for _, e := range list.Errors {
			out = append(out, ValidationError{
				Line:       e.Location.Line,
				Column:     e.Location.Column,
				Message:    e.Message,
				Type:       string(e.Type),
				Suggestion: e.Suggestion,
			})
		}
		return out
	}

	var single *schemaErrors.Error
	if errors.As(err, &single) {
		return []ValidationError{{
			Line:       single.Location.Line,
			Column:     single.Location.Column,
			Message:    single.Message,
			Type:       string(single.Type),
			Suggestion: single.Suggestion,
		}}
	}

	return []ValidationError{{Message: err.Error()}}
}

func outputText(results []ValidationResult) error {
	totalErrors := 0

	for _, result := range results {
		fmt.Printf("Validating %s...\n", result.File)

		if result.Valid {
			fmt.Println("✓ Syntax valid")
			fmt.Println("✓ All criteria have valid parameters")
		}

		for _, err := range result.Errors {
			fmt.Printf("✗ Error: %s", err.Message)
			if err.Line > 0 {
				fmt.Printf(" (line %d", err.Line)
				if err.Column > 0 {
					fmt.Printf(", col %d", err.Column)
				}
				fmt.Print(")")
			}
			if err.Type != "" {
				fmt.Printf(" [%s]", err.Type)
			}
			fmt.Println()
			if err.Suggestion != "" {
				fmt.Printf("  suggestion: %s\n", err.Suggestion)
			}
			totalErrors++
		}

		fmt.Println()
	}

	fmt.Println("Summary:")
	fmt.Printf("  %d file(s), %d error(s)\n", len(results), totalErrors)

	if totalErrors > 0 {
		return cli.NewCommandError("validate", fmt.Errorf("validation failed"))
	}

	return nil
}

func outputJSON(data interface{}) error {
	formatter := &cli.JSONFormatter{Indent: true}
	return formatter.FormatTo(os.Stdout, data)
}
