package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nao1215/querystats/internal/profile"
)

// NewProfilesCmd creates the profiles command.
func NewProfilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List Firefox profiles with history",
		Long: `Profiles lists the Firefox profile directories that hold both history
databases, most recently used first. 'querystats analyze' reads the first
one unless --profile is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return listProfiles(profile.NewLocator(), cmd.OutOrStdout())
		},
	}
}

// listProfiles prints the profiles locator finds.
func listProfiles(locator *profile.Locator, w io.Writer) error {
	profiles, err := locator.Discover()
	if err != nil {
		return fmt.Errorf("failed to discover profiles: %w", err)
	}

	if len(profiles) == 0 {
		fmt.Fprintln(w, "No Firefox profiles found in:")
		for _, root := range locator.Roots() {
			fmt.Fprintf(w, "  %s\n", root)
		}
		fmt.Fprintln(w, "\nUse 'querystats analyze --profile <dir>' to read a profile elsewhere.")
		return nil
	}

	fmt.Fprintf(w, "Firefox profiles (%d):\n\n", len(profiles))
	fmt.Fprintf(w, "    %-32s  %-16s  %s\n", "Name", "Last used", "Directory")
	fmt.Fprintln(w, "    "+strings.Repeat("-", 80))

	for i, p := range profiles {
		marker := " "
		if i == 0 {
			marker = "*"
		}
		fmt.Fprintf(w, "  %s %-32s  %-16s  %s\n",
			marker,
			p.Name,
			humanize.Time(p.LastUsed),
			p.Dir,
		)
	}

	fmt.Fprintln(w, "\n* analyzed by default")

	return nil
}
