package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"backwork/atlas/pkg/cli"
	"backwork/atlas/pkg/codes"
)

var codesFlags struct {
	db     string
	limit  int
	format string
}

var codesCmd = &cobra.Command{
	Use:   "codes",
	Short: "Look up HCPCS reference codes",
	Long: `Look up HCPCS codes from the reference store.

The store is a local SQLite database seeded with the CGM code table
(descriptors, modifiers, KX requirements, bundling exclusivity, and
the governing coverage determination).

Examples:
  # Look up a single code
  atlas codes lookup K0553

  # All codes under the glucose monitor LCD
  atlas codes by-lcd L33822

  # Search descriptions
  atlas codes search receiver --limit 5`,
}

var codesLookupCmd = &cobra.Command{
	Use:   "lookup <code>",
	Short: "Look up a single HCPCS code",
	Args:  cobra.ExactArgs(1),
	RunE:  runCodesLookup,
}

var codesSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search codes by code or description",
	Args:  cobra.ExactArgs(1),
	RunE:  runCodesSearch,
}

var codesByLCDCmd = &cobra.Command{
	Use:   "by-lcd [lcd]",
	Short: "List codes governed by a local coverage determination",
	Long: `List the codes governed by a local coverage determination,
sorted by code. Defaults to the glucose monitor LCD (` + codes.LCDGlucoseMonitors + `).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCodesByLCD,
}

func init() {
	rootCmd.AddCommand(codesCmd)
	codesCmd.AddCommand(codesLookupCmd, codesSearchCmd, codesByLCDCmd)

	codesCmd.PersistentFlags().StringVar(&codesFlags.db, "db", "", "code database path (uses config if not specified)")
	codesCmd.PersistentFlags().StringVar(&codesFlags.format, "format", "text", "output format: text, json")
	codesSearchCmd.Flags().IntVar(&codesFlags.limit, "limit", 20, "maximum results")
}

// openConfiguredCodeStore opens the code store named by flags and
// config, seeding the CGM table when the config asks for it.
func openConfiguredCodeStore(ctx context.Context) (*codes.Store, error) {
	cfg, err := loadAppConfig()
	if err != nil {
		return nil, cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	path := codesFlags.db
	if path == "" {
		path = cfg.Codes.Path
	}

	return openCodeStoreAt(ctx, path, cfg.Codes.SeedOnStartup)
}

// openCodeStoreAt opens (creating if needed) the code store at path.
func openCodeStoreAt(ctx context.Context, path string, seed bool) (*codes.Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create code store directory: %w", err)
		}
	}

	store, err := codes.NewStore(path)
	if err != nil {
		return nil, err
	}

	if seed {
		if err := store.Seed(ctx, codes.CGMCodes); err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to seed code table: %w", err)
		}
	}

	return store, nil
}

func runCodesLookup(cmd *cobra.Command, args []string) error {
	ctx := cli.SetupSignalHandler()

	store, err := openConfiguredCodeStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	entry, err := store.Lookup(ctx, args[0])
	if err != nil {
		return cli.NewCommandError("codes", err)
	}
	if entry == nil {
		return cli.NewCommandError("codes", fmt.Errorf("code %q not found", strings.ToUpper(strings.TrimSpace(args[0]))))
	}

	if codesFlags.format == "json" {
		return outputJSON(entry)
	}
	printCodeEntry(entry)
	return nil
}

func runCodesSearch(cmd *cobra.Command, args []string) error {
	ctx := cli.SetupSignalHandler()

	store, err := openConfiguredCodeStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.Search(ctx, args[0], codesFlags.limit)
	if err != nil {
		return cli.NewCommandError("codes", err)
	}

	return outputCodeList(entries, fmt.Sprintf("no codes match %q", args[0]))
}

func runCodesByLCD(cmd *cobra.Command, args []string) error {
	lcd := codes.LCDGlucoseMonitors
	if len(args) > 0 {
		lcd = strings.ToUpper(strings.TrimSpace(args[0]))
	}

	ctx := cli.SetupSignalHandler()

	store, err := openConfiguredCodeStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.ByLCD(ctx, lcd)
	if err != nil {
		return cli.NewCommandError("codes", err)
	}

	return outputCodeList(entries, fmt.Sprintf("no codes under %s", lcd))
}

func outputCodeList(entries []*codes.CodeEntry, emptyMsg string) error {
	if codesFlags.format == "json" {
		if entries == nil {
			entries = []*codes.CodeEntry{}
		}
		return outputJSON(entries)
	}

	if len(entries) == 0 {
		fmt.Println(emptyMsg)
		return nil
	}

	for _, entry := range entries {
		kx := ""
		if entry.RequiresKX {
			kx = "  [KX required]"
		}
		fmt.Printf("%-6s %s%s\n", entry.Code, entry.Short, kx)
	}
	return nil
}

func printCodeEntry(entry *codes.CodeEntry) {
	fmt.Printf("%s  %s\n", entry.Code, entry.Short)
	fmt.Printf("  %s\n", entry.Long)
	fmt.Printf("  category: %s, pricing: %s\n", entry.Category, entry.Pricing)

	if len(entry.Modifiers) > 0 {
		line := fmt.Sprintf("  modifiers: %s", strings.Join(entry.Modifiers, ", "))
		if entry.RequiresKX {
			line += " (KX required)"
		}
		fmt.Println(line)
	}
	if len(entry.ExclusiveWith) > 0 {
		fmt.Printf("  not billable with: %s\n", strings.Join(entry.ExclusiveWith, ", "))
	}
	if entry.LCD != "" {
		fmt.Printf("  coverage: %s\n", entry.LCD)
	}
	if entry.Notes != "" {
		fmt.Printf("  %s\n", entry.Notes)
	}
}
