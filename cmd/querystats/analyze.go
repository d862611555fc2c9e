package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/querystats/internal/config"
	"github.com/nao1215/querystats/internal/log"
	"github.com/nao1215/querystats/internal/model"
	"github.com/nao1215/querystats/internal/pipeline"
	"github.com/nao1215/querystats/internal/profile"
)

// limitFlag ties a limit flag to the Limits field it sets.
type limitFlag struct {
	name      string
	shorthand string
	usage     string
	def       int
	field     func(*model.Limits) *int
}

// limitFlags are the analysis bounds. They are strings so that any input
// is accepted and coerced with config.ParseLimit.
var limitFlags = []limitFlag{
	{
		name: "count", shorthand: "n", def: model.DefaultMaxCount,
		usage: "Number of most recently used searches to analyze",
		field: func(l *model.Limits) *int { return &l.MaxCount },
	},
	{
		name: "repeat", shorthand: "r", def: model.DefaultMaxRepeat,
		usage: "Number of visits shown per search",
		field: func(l *model.Limits) *int { return &l.MaxRepeat },
	},
	{
		name: "depth", shorthand: "d", def: model.DefaultMaxDepth,
		usage: "Number of clicks followed after a search",
		field: func(l *model.Limits) *int { return &l.MaxDepth },
	},
	{
		name: "breadth", shorthand: "b", def: model.DefaultMaxBreadth,
		usage: "Number of follow-up visits fetched per page, redirects included",
		field: func(l *model.Limits) *int { return &l.MaxBreadth },
	},
}

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Show recent searches and the pages clicked after them",
		Long: `Analyze reads a Firefox profile and shows, for each recently used search,
the visits that used it and the trail of pages clicked afterwards.

Redirects are followed but never shown. Results are saved in the run history
unless --no-save is given; see 'querystats history'.

Examples:
  # Analyze the most recently used profile
  querystats analyze

  # Analyze a specific profile with deeper trails
  querystats analyze -P ~/.mozilla/firefox/abcd1234.default-release -d 8

  # Analyze copies of the databases taken elsewhere
  querystats analyze --places ./places.sqlite --formhistory ./formhistory.sqlite

  # Write a Markdown report
  querystats analyze -m -o trails.md

Configuration file (.querystats) example:
  limits:
    count: 50
    depth: 6
  profile: /home/alice/.mozilla/firefox/abcd1234.default-release
  format: markdown`,
		Args: cobra.NoArgs,
		RunE: runAnalyzeCmd,
	}

	// Analysis bounds
	for _, f := range limitFlags {
		cmd.Flags().StringP(f.name, f.shorthand, strconv.Itoa(f.def), f.usage)
	}

	// History source flags
	cmd.Flags().StringP("profile", "P", "",
		"Firefox profile directory (default: most recently used profile)")
	cmd.Flags().String("places", "",
		"Path of places.sqlite (overrides --profile)")
	cmd.Flags().String("formhistory", "",
		"Path of formhistory.sqlite (overrides --profile)")
	cmd.Flags().Bool("no-snapshot", false,
		"Read the live databases instead of copies")
	cmd.Flags().Duration("busy-timeout", config.DefaultBusyTimeout,
		"How long to wait for a database locked by the browser")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: ./.querystats, $XDG_CONFIG_HOME/querystats/config.yaml, ~/.querystats)")

	// Logging flags
	cmd.Flags().String("log-format", config.LogFormatText,
		"Log format on stderr: text or json")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().Bool("urls", false,
		"Show the URL of every page in text reports")
	cmd.Flags().Int("width", 0,
		"Line width of text reports (default: terminal width)")

	// Run history flags
	cmd.Flags().Bool("no-save", false,
		"Do not save the result in the run history")
	cmd.Flags().String("db-dir", "",
		"Run history directory (default: XDG data directory)")

	return cmd
}

// runAnalyzeCmd executes the analyze command.
func runAnalyzeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runAnalyze(ctx, cfg, profile.NewLocator(), cmd.OutOrStdout(), logger)
}

// newLogger creates the logger selected by the configured log format.
func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	if cfg.LogFormat == config.LogFormatJSON {
		return log.NewJSONLogger(w, cfg.Verbose)
	}
	return log.NewLogger(w, cfg.Verbose)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from defaults, the configuration file and the
// command flags, later sources overriding earlier ones.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	cfg.ConfigFilePath, err = flags.GetString("config")
	if err != nil {
		return nil, err
	}

	// An explicitly given configuration file must exist.
	// Without one, a missing file means defaults.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	if configPath != "" {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		if err := cfg.ApplyFile(file); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
		}
	} else if cfg.ConfigFilePath != "" {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	for _, f := range limitFlags {
		if !flags.Changed(f.name) {
			continue
		}
		value, err := flags.GetString(f.name)
		if err != nil {
			return nil, err
		}
		*f.field(&cfg.Limits) = config.ParseLimit(value)
	}

	stringFlags := map[string]*string{
		"profile":     &cfg.ProfileDir,
		"places":      &cfg.PlacesPath,
		"formhistory": &cfg.FormHistoryPath,
		"output":      &cfg.ReportFile,
		"db-dir":      &cfg.DBDir,
		"log-format":  &cfg.LogFormat,
	}
	for name, target := range stringFlags {
		if !flags.Changed(name) {
			continue
		}
		if *target, err = flags.GetString(name); err != nil {
			return nil, err
		}
	}

	if flags.Changed("no-snapshot") {
		if cfg.NoSnapshot, err = flags.GetBool("no-snapshot"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("no-save") {
		noSave, err := flags.GetBool("no-save")
		if err != nil {
			return nil, err
		}
		cfg.SaveToDB = !noSave
	}
	if flags.Changed("busy-timeout") {
		if cfg.BusyTimeout, err = flags.GetDuration("busy-timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("urls") {
		if cfg.ShowURLs, err = flags.GetBool("urls"); err != nil {
			return nil, err
		}
	}
	if cfg.Width, err = flags.GetInt("width"); err != nil {
		return nil, err
	}

	// A format flag replaces the format chosen in the file.
	if flags.Changed("json") || flags.Changed("markdown") {
		if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
			return nil, err
		}
		if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
			return nil, err
		}
	}

	cfg.Verbose = getVerboseFlag(cmd)

	return cfg, nil
}

// runAnalyze runs the analysis pipeline and writes the report.
func runAnalyze(ctx context.Context, cfg *config.Config, locator *profile.Locator, stdout io.Writer, logger *slog.Logger) error {
	logger.Info("starting analysis",
		"limits", cfg.Limits,
		"snapshot", !cfg.NoSnapshot,
		"saveToDB", cfg.SaveToDB,
	)

	state := pipeline.NewState(cfg)
	defer func() {
		if err := state.Close(); err != nil {
			logger.Warn("failed to clean up", "error", err)
		}
	}()

	p := pipeline.DefaultPipeline(locator, pipeline.WithLogger(logger))
	logger.Debug("pipeline ready", "steps", p.StepNames())

	if err := p.Execute(ctx, state); err != nil {
		return err
	}

	return outputReport(cfg, state.Report, stdout)
}
