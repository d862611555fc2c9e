package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/nao1215/querystats/internal/analyzer"
	"github.com/nao1215/querystats/internal/database"
	"github.com/nao1215/querystats/internal/model"
	"github.com/nao1215/querystats/internal/profile"
)

// Errors returned when steps run out of order.
var (
	// ErrHistoryNotOpen is returned by AnalyzeStep before OpenStep has run.
	ErrHistoryNotOpen = errors.New("browser history is not open")

	// ErrNoReport is returned by SaveStep before AnalyzeStep has run.
	ErrNoReport = errors.New("no report to save")
)

// snapshotPattern names the temporary directory of a snapshot.
const snapshotPattern = "querystats-*"

// LocateStep resolves the browser profile and its database paths.
type LocateStep struct {
	locator *profile.Locator
	logger  *slog.Logger
}

// NewLocateStep creates a step that resolves the profile with locator.
// A nil locator searches the default profile roots.
func NewLocateStep(locator *profile.Locator, logger *slog.Logger) *LocateStep {
	if locator == nil {
		locator = profile.NewLocator()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LocateStep{locator: locator, logger: logger}
}

// Name returns the step name.
func (s *LocateStep) Name() string {
	return "locate"
}

// Do resolves the profile named by the configuration, or the most recently
// used one.
func (s *LocateStep) Do(_ context.Context, state *State) error {
	cfg := state.Config
	p, err := s.locator.Resolve(cfg.ProfileDir, cfg.PlacesPath, cfg.FormHistoryPath)
	if err != nil {
		return fmt.Errorf("failed to locate profile: %w", err)
	}

	state.Profile = p
	state.PlacesPath = p.PlacesPath
	state.FormHistoryPath = p.FormHistoryPath

	s.logger.Debug("located profile",
		"profile", state.ProfileLabel(),
		"places", p.PlacesPath,
		"formhistory", p.FormHistoryPath,
	)
	return nil
}

// SnapshotStep copies the databases into a temporary directory, so the run
// neither waits on nor disturbs a browser holding them open.
type SnapshotStep struct {
	tempDir string
	logger  *slog.Logger
}

// NewSnapshotStep creates a snapshot step. The snapshot directory is created
// under tempDir, or the system temp directory when tempDir is empty.
func NewSnapshotStep(tempDir string, logger *slog.Logger) *SnapshotStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &SnapshotStep{tempDir: tempDir, logger: logger}
}

// Name returns the step name.
func (s *SnapshotStep) Name() string {
	return "snapshot"
}

// Do copies the databases unless the configuration asks for the live files.
// The copies are removed when the state is closed.
func (s *SnapshotStep) Do(ctx context.Context, state *State) error {
	if state.Config.NoSnapshot {
		s.logger.Debug("skipping snapshot, reading live databases")
		return nil
	}

	dir, err := os.MkdirTemp(s.tempDir, snapshotPattern)
	if err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	state.OnClose(func() error {
		return os.RemoveAll(dir)
	})

	copies, err := database.Snapshot(ctx, dir, state.PlacesPath, state.FormHistoryPath)
	if err != nil {
		return err
	}

	state.SnapshotDir = dir
	state.PlacesPath = copies[0]
	state.FormHistoryPath = copies[1]

	s.logger.Debug("snapshot created", "dir", dir)
	return nil
}

// OpenStep opens the browser history databases.
type OpenStep struct {
	logger *slog.Logger
}

// NewOpenStep creates an open step.
func NewOpenStep(logger *slog.Logger) *OpenStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &OpenStep{logger: logger}
}

// Name returns the step name.
func (s *OpenStep) Name() string {
	return "open"
}

// Do opens the databases. Live files are opened read-only; snapshot copies
// are opened writable so SQLite can replay their write-ahead logs.
func (s *OpenStep) Do(_ context.Context, state *State) error {
	history, err := database.OpenHistory(state.PlacesPath, state.FormHistoryPath, database.HistoryOptions{
		Writable:    state.Snapshotted(),
		BusyTimeout: state.Config.BusyTimeout,
	})
	if err != nil {
		return err
	}

	state.History = history
	state.OnClose(history.Close)
	return nil
}

// AnalyzeStep builds the search trails and the report.
type AnalyzeStep struct {
	now    func() time.Time
	logger *slog.Logger
}

// AnalyzeStepOption configures an AnalyzeStep.
type AnalyzeStepOption func(*AnalyzeStep)

// WithAnalyzeClock sets the clock used for relative times and the report
// timestamp.
func WithAnalyzeClock(now func() time.Time) AnalyzeStepOption {
	return func(s *AnalyzeStep) {
		s.now = now
	}
}

// WithAnalyzeLogger sets a custom logger for the analyze step.
func WithAnalyzeLogger(logger *slog.Logger) AnalyzeStepOption {
	return func(s *AnalyzeStep) {
		s.logger = logger
	}
}

// NewAnalyzeStep creates an analyze step.
func NewAnalyzeStep(opts ...AnalyzeStepOption) *AnalyzeStep {
	s := &AnalyzeStep{
		now:    time.Now,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *AnalyzeStep) Name() string {
	return "analyze"
}

// Do analyzes the opened history. On failure no report is produced.
func (s *AnalyzeStep) Do(ctx context.Context, state *State) error {
	if state.History == nil {
		return ErrHistoryNotOpen
	}

	a := analyzer.New(state.History, state.Config.Limits,
		analyzer.WithLogger(s.logger),
		analyzer.WithClock(s.now),
	)

	results, err := a.Analyze(ctx)
	if err != nil {
		return err
	}

	report := model.NewReport(state.ProfileLabel(), a.Limits())
	report.SetResults(results, s.now())
	state.Report = report

	s.logger.Info("analysis completed",
		"visits", report.Stats.Visits,
		"clicks", report.Stats.Clicks,
	)
	return nil
}

// SaveStep stores the report in the run history database.
type SaveStep struct {
	opts   database.Options
	logger *slog.Logger
}

// NewSaveStep creates a save step.
func NewSaveStep(logger *slog.Logger) *SaveStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &SaveStep{opts: database.DefaultOptions(), logger: logger}
}

// Name returns the step name.
func (s *SaveStep) Name() string {
	return "save"
}

// Do saves the report unless saving is disabled.
func (s *SaveStep) Do(ctx context.Context, state *State) error {
	if !state.Config.SaveToDB {
		s.logger.Debug("skipping save, run history disabled")
		return nil
	}
	if state.Report == nil {
		return ErrNoReport
	}

	rdb, err := database.Open(state.Config.DBDir, s.opts)
	if err != nil {
		return fmt.Errorf("failed to open run history: %w", err)
	}
	defer func() {
		_ = rdb.Close()
	}()

	if err := rdb.SaveReport(ctx, state.Report); err != nil {
		return err
	}

	state.Saved = true
	s.logger.Debug("report saved", "id", state.Report.ID, "db", rdb.Path())
	return nil
}

// DefaultPipeline creates a pipeline with every step of an analysis run:
// locate, snapshot, open, analyze and save.
func DefaultPipeline(locator *profile.Locator, opts ...Option) *Pipeline {
	p := New(opts...)

	p.AddSteps(
		NewLocateStep(locator, p.logger),
		NewSnapshotStep("", p.logger),
		NewOpenStep(p.logger),
		NewAnalyzeStep(WithAnalyzeLogger(p.logger)),
		NewSaveStep(p.logger),
	)

	return p
}
