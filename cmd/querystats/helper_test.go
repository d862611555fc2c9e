package main

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nao1215/querystats/internal/profile"
)

// writeProfile creates a Firefox profile directory where "go generics" was
// typed into a search form an hour ago, after which the user clicked through
// a redirect to the Go blog and from there to the language reference.
func writeProfile(t *testing.T) string {
	t.Helper()

	now := time.Now()
	dir := t.TempDir()

	createDB(t, filepath.Join(dir, profile.FormHistoryFile), `
		CREATE TABLE moz_formhistory (id INTEGER PRIMARY KEY, fieldname TEXT, value TEXT, lastUsed INTEGER);
		INSERT INTO moz_formhistory (fieldname, value, lastUsed) VALUES ('searchbar-history', 'go generics', ?);
	`, now.Add(-time.Hour).UnixMicro())

	createDB(t, filepath.Join(dir, profile.PlacesFile), `
		CREATE TABLE moz_places (id INTEGER PRIMARY KEY, url TEXT, title TEXT);
		CREATE TABLE moz_historyvisits (id INTEGER PRIMARY KEY, from_visit INTEGER, place_id INTEGER, visit_date INTEGER, visit_type INTEGER);
		INSERT INTO moz_places (id, url, title) VALUES
			(1, 'https://www.google.com/search?q=go+generics', 'go generics - Google Search'),
			(2, 'https://www.google.com/url?q=https://go.dev/blog/intro-generics', NULL),
			(3, 'https://go.dev/blog/intro-generics', 'An Introduction To Generics'),
			(4, 'https://go.dev/ref/spec', 'The Go Programming Language Specification');
		INSERT INTO moz_historyvisits (id, from_visit, place_id, visit_date, visit_type) VALUES
			(1, 0, 1, ?, 1),
			(2, 1, 2, ?, 1),
			(3, 2, 3, ?, 5),
			(4, 3, 4, ?, 1);
	`,
		now.Add(-time.Hour).UnixMicro(),
		now.Add(-59*time.Minute).UnixMicro(),
		now.Add(-59*time.Minute).UnixMicro(),
		now.Add(-50*time.Minute).UnixMicro(),
	)

	return dir
}

// createDB creates a SQLite database at path and runs script on it.
func createDB(t *testing.T, path, script string, args ...any) {
	t.Helper()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	defer func() {
		_ = db.Close()
	}()

	if _, err := db.Exec(script, args...); err != nil {
		t.Fatalf("failed to populate %s: %v", path, err)
	}
}
