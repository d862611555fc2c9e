package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and Config.ApplyFile() so
// callers can use errors.Is() while users still get a readable message.
var (
	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidBusyTimeout is returned when the lock wait is negative or unparsable.
	ErrInvalidBusyTimeout = errors.New("invalid busy timeout: must be a non-negative duration")

	// ErrInvalidWidth is returned when the report width is negative.
	ErrInvalidWidth = errors.New("invalid width: must be non-negative")

	// ErrNoDBDir is returned when saving is enabled without a database directory.
	ErrNoDBDir = errors.New("no database directory: set --db-dir or use --no-save")

	// ErrUnknownFormat is returned for a format other than text, json or markdown.
	ErrUnknownFormat = errors.New("unknown report format: use text, json or markdown")

	// ErrUnknownLogFormat is returned for a log format other than text or json.
	ErrUnknownLogFormat = errors.New("unknown log format: use text or json")
)
