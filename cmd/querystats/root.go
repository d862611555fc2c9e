package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for querystats.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "querystats",
		Short: "Search trail analyzer for Firefox history",
		Long: `querystats reads the search terms Firefox remembers in its form history,
finds the visits that used them, and follows the links clicked afterwards.

Each search is shown with where and when it was used, followed by the trail
of pages reached from the result page. The browser's databases are copied
before reading, so Firefox may keep running.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewAnalyzeCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewProfilesCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
