package main

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

var (
	// Version is the release version (set by build flags).
	Version = "0.1.0"
	// GitCommit is the git commit hash (set by build flags; falls back
	// to the toolchain VCS stamp).
	GitCommit = ""
	// BuildDate is the build timestamp (set by build flags; falls back
	// to the toolchain VCS stamp).
	BuildDate = ""
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and build information",
	Long:  `Print the atlas version, the commit it was built from, and the build environment.`,
	Run: func(cmd *cobra.Command, args []string) {
		commit, date := buildMetadata()
		fmt.Printf("atlas %s (LCD eligibility engine)\n", Version)
		fmt.Printf("  commit:   %s\n", commit)
		fmt.Printf("  built:    %s\n", date)
		fmt.Printf("  go:       %s\n", runtime.Version())
		fmt.Printf("  platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// buildMetadata resolves the commit and build date, preferring values
// injected at build time over the VCS stamp the Go toolchain embeds.
func buildMetadata() (commit, date string) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		info = &debug.BuildInfo{}
	}
	return resolveBuildMetadata(GitCommit, BuildDate, info.Settings)
}

func resolveBuildMetadata(commit, date string, settings []debug.BuildSetting) (string, string) {
	var dirty bool
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			if commit == "" {
				commit = s.Value
			}
		case "vcs.time":
			if date == "" {
				date = s.Value
			}
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}

	if dirty && commit != "" {
		commit += "-dirty"
	}
	if commit == "" {
		commit = "unknown"
	}
	if date == "" {
		date = "unknown"
	}
	return commit, date
}
