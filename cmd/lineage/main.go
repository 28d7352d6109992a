// Package main provides the entry point for the lineage CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chrono-code/lineage/cmd/lineage/commands"
	"github.com/chrono-code/lineage/pkg/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "lineage",
		Short: "Lineage - line provenance and longevity analysis for git history",
		Long: `Lineage reconstructs the lifetime of every line that ever existed in a
repository and reports average line age per author.

Commands:
  run       Walk history and report line longevity statistics
  records   Walk history and stream raw line lifetime records`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add commands.
	rootCmd.AddCommand(commands.NewRunCommand())
	rootCmd.AddCommand(commands.NewRecordsCommand())
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "lineage %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
