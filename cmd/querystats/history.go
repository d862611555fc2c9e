package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/querystats/internal/config"
	"github.com/nao1215/querystats/internal/database"
)

// defaultHistoryLimit is how many runs are listed by default.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
// This command lists and shows reports stored in the run history.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List or show saved analysis runs",
		Long: `History shows the analysis runs saved by 'querystats analyze'.

Without an argument the most recent runs are listed. With a run ID the saved
report is shown again, in any report format.

Examples:
  # List the 20 most recent runs
  querystats history

  # List every saved run
  querystats history --limit 0

  # Show a saved run as Markdown
  querystats history -m 01912f7e-8a4c-7b3e-9c1d-2e5f6a7b8c9d`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "l", defaultHistoryLimit,
		"Number of runs to list (0 lists all)")
	cmd.Flags().String("db-dir", "",
		"Run history directory (default: XDG data directory)")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output the run in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output the run in Markdown format")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return err
	}
	if flags.Changed("db-dir") {
		if cfg.DBDir, err = flags.GetString("db-dir"); err != nil {
			return err
		}
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	limit, err := flags.GetInt("limit")
	if err != nil {
		return err
	}

	// Reading the history never creates it.
	db, err := database.Open(cfg.DBDir, database.Options{})
	if errors.Is(err, database.ErrNotFound) {
		fmt.Fprintln(cmd.OutOrStdout(), "No analysis runs saved yet.")
		fmt.Fprintln(cmd.OutOrStdout(), "\nUse 'querystats analyze' to analyze a profile.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close() //nolint:errcheck // read-only use

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if len(args) == 1 {
		return showRun(ctx, db, cfg, args[0], cmd.OutOrStdout())
	}
	return listRuns(ctx, db, limit, cmd.OutOrStdout())
}

// listRuns prints the stored runs, newest first.
func listRuns(ctx context.Context, db *database.RunDB, limit int, w io.Writer) error {
	runs, err := db.ListRuns(ctx, limit)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(w, "No analysis runs saved yet.")
		fmt.Fprintln(w, "\nUse 'querystats analyze' to analyze a profile.")
		return nil
	}

	fmt.Fprintf(w, "Saved runs (%d):\n\n", len(runs))
	fmt.Fprintf(w, "  %-36s  %-19s  %8s  %6s  %s\n", "ID", "Date", "Searches", "Nodes", "Profile")
	fmt.Fprintln(w, "  "+strings.Repeat("-", 90))

	for _, run := range runs {
		fmt.Fprintf(w, "  %-36s  %-19s  %8d  %6d  %s\n",
			run.ID,
			run.GeneratedAt.Local().Format("2006-01-02 15:04:05"),
			run.Searches,
			run.Nodes,
			run.Profile,
		)
	}

	fmt.Fprintln(w, "\nUse 'querystats history <run-id>' to show a saved run.")

	return nil
}

// showRun writes the stored report of one run.
func showRun(ctx context.Context, db *database.RunDB, cfg *config.Config, id string, w io.Writer) error {
	r, err := db.GetReport(ctx, id)
	if err != nil {
		return err
	}
	if r == nil {
		return fmt.Errorf("%w: no run with ID %s", database.ErrNotFound, id)
	}

	if _, err := newWriter(cfg, w).Write(r); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
