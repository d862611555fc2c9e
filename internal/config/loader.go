package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".querystats"

// XDGConfigFile is the configuration file name inside XDGConfigDir.
const XDGConfigFile = "config.yaml"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// LimitsFile holds the limits set in the configuration file.
// A nil field is not set.
type LimitsFile struct {
	Count   *Limit `yaml:"count,omitempty"`
	Repeat  *Limit `yaml:"repeat,omitempty"`
	Depth   *Limit `yaml:"depth,omitempty"`
	Breadth *Limit `yaml:"breadth,omitempty"`
}

// File represents the structure of the .querystats configuration file.
type File struct {
	// Limits bounds the analysis.
	Limits LimitsFile `yaml:"limits,omitempty"`

	// Profile is the Firefox profile directory to read.
	Profile string `yaml:"profile,omitempty"`

	// Places is the path of places.sqlite.
	Places string `yaml:"places,omitempty"`

	// FormHistory is the path of formhistory.sqlite.
	FormHistory string `yaml:"formhistory,omitempty"`

	// Snapshot copies the databases before reading them. Defaults to true.
	Snapshot *bool `yaml:"snapshot,omitempty"`

	// BusyTimeout is how long to wait for a browser lock, e.g. "5s".
	BusyTimeout string `yaml:"busyTimeout,omitempty"`

	// Save stores every run in the run history. Defaults to true.
	Save *bool `yaml:"save,omitempty"`

	// DBDir is the run history directory.
	DBDir string `yaml:"dbDir,omitempty"`

	// Format is the default report format: text, json or markdown.
	Format string `yaml:"format,omitempty"`

	// ShowURLs prints URLs in text reports.
	ShowURLs bool `yaml:"showUrls,omitempty"`

	// LogFormat is the log output format: text or json.
	LogFormat string `yaml:"logFormat,omitempty"`
}

// LoadConfigFile loads the configuration file at path.
// If the file does not exist, it returns ErrConfigNotFound.
// Callers should handle this error appropriately based on whether
// the config file path was explicitly specified by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .querystats in the current directory
// 3. Look for config.yaml in the XDG config directory
// 4. Look for .querystats in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	for _, candidate := range searchPaths() {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return ""
}

// searchPaths returns the implicit configuration file locations in search order.
func searchPaths() []string {
	paths := make([]string, 0, 3)

	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, DefaultConfigFile))
	}

	paths = append(paths, filepath.Join(XDGConfigDir(), XDGConfigFile))

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, DefaultConfigFile))
	}

	return paths
}
