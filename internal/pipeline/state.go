package pipeline

import (
	"errors"
	"path/filepath"

	"github.com/nao1215/querystats/internal/config"
	"github.com/nao1215/querystats/internal/database"
	"github.com/nao1215/querystats/internal/model"
	"github.com/nao1215/querystats/internal/profile"
)

// State is what the steps of one run share.
type State struct {
	// Config is the run configuration. Steps do not modify it.
	Config *config.Config

	// Profile is the located browser profile.
	Profile profile.Profile

	// PlacesPath and FormHistoryPath are the databases to open: the
	// profile's own files, or their snapshot copies.
	PlacesPath      string
	FormHistoryPath string

	// SnapshotDir is the temporary directory holding the copies.
	// Empty when the live databases are read.
	SnapshotDir string

	// History is the opened browser history.
	History *database.HistoryDB

	// Report is the finished analysis.
	Report *model.Report

	// Saved reports whether Report was stored in the run history.
	Saved bool

	// Performed lists the names of the steps that completed.
	Performed []string

	cleanups []func() error
}

// NewState creates the state for a run with the given configuration.
func NewState(cfg *config.Config) *State {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return &State{
		Config:    cfg,
		Performed: make([]string, 0),
	}
}

// Snapshotted reports whether the run reads copies of the databases.
func (s *State) Snapshotted() bool {
	return s.SnapshotDir != ""
}

// ProfileLabel names the history source in reports.
func (s *State) ProfileLabel() string {
	if s.Profile.Dir != "" {
		return s.Profile.Dir
	}
	if s.Profile.PlacesPath != "" {
		return filepath.Dir(s.Profile.PlacesPath)
	}
	return ""
}

// OnClose registers fn to run when the state is closed.
func (s *State) OnClose(fn func() error) {
	s.cleanups = append(s.cleanups, fn)
}

// Close runs the registered cleanups, last registered first, and returns
// their errors joined. Closing twice is a no-op.
func (s *State) Close() error {
	var errs []error
	for i := len(s.cleanups) - 1; i >= 0; i-- {
		if err := s.cleanups[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.cleanups = nil
	return errors.Join(errs...)
}
