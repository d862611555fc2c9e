// Package log provides privacy-preserving logging built on the standard
// slog package.
//
// Debug output of querystats talks about a user's browsing history. The
// PrivacyHandler keeps that history out of log files:
//   - attributes whose key names browsing data (search values, URLs,
//     page titles, LIKE patterns) are masked
//   - query strings and fragments are stripped from URLs found in any
//     other string attribute, since search terms live there
//   - credential-like keys (cookie, token, password) are masked
//
// Masking also applies in verbose mode, so logs can be shared in bug
// reports.
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, verbose)
//	logger.Debug("matched search visits", "pattern", "%=cats%", "visits", 3)
//	// level=DEBUG msg="matched search visits" pattern=***REDACTED*** visits=3
//	slog.SetDefault(logger)
package log
