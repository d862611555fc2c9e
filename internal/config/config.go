package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/querystats/internal/model"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "querystats"

	// DefaultBusyTimeout is how long a query waits on a database locked by
	// a running browser before failing.
	DefaultBusyTimeout = 5 * time.Second
)

// Report format names accepted in the configuration file.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// Log format names.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config holds all configuration options for querystats.
// It is populated from defaults, then the configuration file, then CLI flags,
// and passed through the application rather than kept in global state.
type Config struct {
	// Limits bounds the analysis. Negative values are treated as 0.
	Limits model.Limits

	// ProfileDir is the Firefox profile to read. When empty, the most
	// recently used profile is picked.
	ProfileDir string

	// PlacesPath overrides the places.sqlite location.
	PlacesPath string

	// FormHistoryPath overrides the formhistory.sqlite location.
	FormHistoryPath string

	// NoSnapshot reads the live databases instead of copies.
	// The browser may hold locks on them while it runs.
	NoSnapshot bool

	// BusyTimeout is how long a query waits for a browser lock.
	BusyTimeout time.Duration

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// LogFormat selects text or JSON log lines on stderr.
	LogFormat string

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .querystats in the current directory,
	// config.yaml in the XDG config directory, then .querystats in the
	// user's home directory.
	ConfigFilePath string

	// JSONReport enables JSON report output.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	// Directories are created automatically if they don't exist.
	ReportFile string

	// ShowURLs prints the URL of every node in text reports.
	ShowURLs bool

	// Width is the line width of text reports. 0 means the terminal width,
	// or no limit when not writing to a terminal.
	Width int

	// SaveToDB stores the finished report in the run history.
	SaveToDB bool

	// DBDir is the directory of the run history database.
	// Defaults to XDG data directory (~/.local/share/querystats on Linux).
	DBDir string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Limits:      model.DefaultLimits(),
		BusyTimeout: DefaultBusyTimeout,
		LogFormat:   LogFormatText,
		SaveToDB:    true,
		DBDir:       XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for querystats.
// On Linux: ~/.local/share/querystats
// On macOS: ~/Library/Application Support/querystats
// On Windows: %LOCALAPPDATA%\querystats
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for querystats.
// On Linux: ~/.config/querystats
// On macOS: ~/Library/Application Support/querystats
// On Windows: %APPDATA%\querystats
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// ApplyFile overrides the configuration with the values set in f.
// Values absent from the file leave the configuration untouched.
func (c *Config) ApplyFile(f *File) error {
	if f == nil {
		return nil
	}

	if f.Limits.Count != nil {
		c.Limits.MaxCount = int(*f.Limits.Count)
	}
	if f.Limits.Repeat != nil {
		c.Limits.MaxRepeat = int(*f.Limits.Repeat)
	}
	if f.Limits.Depth != nil {
		c.Limits.MaxDepth = int(*f.Limits.Depth)
	}
	if f.Limits.Breadth != nil {
		c.Limits.MaxBreadth = int(*f.Limits.Breadth)
	}

	if f.Profile != "" {
		c.ProfileDir = f.Profile
	}
	if f.Places != "" {
		c.PlacesPath = f.Places
	}
	if f.FormHistory != "" {
		c.FormHistoryPath = f.FormHistory
	}
	if f.Snapshot != nil {
		c.NoSnapshot = !*f.Snapshot
	}
	if f.BusyTimeout != "" {
		d, err := time.ParseDuration(f.BusyTimeout)
		if err != nil {
			return ErrInvalidBusyTimeout
		}
		c.BusyTimeout = d
	}
	if f.Save != nil {
		c.SaveToDB = *f.Save
	}
	if f.DBDir != "" {
		c.DBDir = f.DBDir
	}
	if f.ShowURLs {
		c.ShowURLs = true
	}

	if f.LogFormat != "" {
		c.LogFormat = f.LogFormat
	}

	switch f.Format {
	case "", FormatText:
	case FormatJSON:
		c.JSONReport = true
	case FormatMarkdown:
		c.MarkdownReport = true
	default:
		return ErrUnknownFormat
	}

	return nil
}

// Validate checks if the configuration is valid.
// It returns the first problem found.
func (c *Config) Validate() error {
	// JSONReport and MarkdownReport are mutually exclusive
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.BusyTimeout < 0 {
		return ErrInvalidBusyTimeout
	}

	if c.Width < 0 {
		return ErrInvalidWidth
	}

	switch c.LogFormat {
	case "", LogFormatText, LogFormatJSON:
	default:
		return ErrUnknownLogFormat
	}

	// A database file needs a directory to live in
	if c.SaveToDB && c.DBDir == "" {
		return ErrNoDBDir
	}

	return nil
}
