package database

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"
)

// placesSchema is the subset of the Firefox places.sqlite schema that is queried.
const placesSchema = `
CREATE TABLE moz_places (
	id INTEGER PRIMARY KEY,
	url LONGVARCHAR,
	title LONGVARCHAR,
	rev_host LONGVARCHAR,
	visit_count INTEGER DEFAULT 0,
	last_visit_date INTEGER
);
CREATE TABLE moz_historyvisits (
	id INTEGER PRIMARY KEY,
	from_visit INTEGER,
	place_id INTEGER,
	visit_date INTEGER,
	visit_type INTEGER,
	session INTEGER
);
`

// formHistorySchema is the Firefox formhistory.sqlite schema.
const formHistorySchema = `
CREATE TABLE moz_formhistory (
	id INTEGER PRIMARY KEY,
	fieldname TEXT NOT NULL,
	value TEXT NOT NULL,
	timesUsed INTEGER,
	firstUsed INTEGER,
	lastUsed INTEGER,
	guid TEXT
);
`

// Visit types used by the fixtures.
const (
	linkVisit  = 1
	typedVisit = 2
)

// fixtureNow is the reference time of every fixture timestamp.
var fixtureNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

// profileFixture is a fake Firefox profile with both history databases.
type profileFixture struct {
	dir         string
	places      *sql.DB
	formHistory *sql.DB
}

// newProfileFixture creates an empty profile in a temp dir.
func newProfileFixture(t *testing.T) *profileFixture {
	t.Helper()
	return newProfileFixtureIn(t, t.TempDir())
}

// newProfileFixtureIn creates an empty profile in dir.
func newProfileFixtureIn(t *testing.T, dir string) *profileFixture {
	t.Helper()

	f := &profileFixture{dir: dir}
	f.places = createFixtureDB(t, f.placesPath(), placesSchema)
	f.formHistory = createFixtureDB(t, f.formHistoryPath(), formHistorySchema)
	return f
}

func createFixtureDB(t *testing.T, path, schema string) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("failed to create schema in %s: %v", path, err)
	}
	return db
}

func (f *profileFixture) placesPath() string {
	return filepath.Join(f.dir, "places.sqlite")
}

func (f *profileFixture) formHistoryPath() string {
	return filepath.Join(f.dir, "formhistory.sqlite")
}

// addSearch records a form history entry last used ago before fixtureNow.
func (f *profileFixture) addSearch(t *testing.T, value, fieldName string, ago time.Duration) {
	t.Helper()

	_, err := f.formHistory.Exec(
		"INSERT INTO moz_formhistory (fieldname, value, timesUsed, lastUsed) VALUES (?, ?, 1, ?)",
		fieldName, value, fixtureNow.Add(-ago).UnixMicro(),
	)
	if err != nil {
		t.Fatalf("failed to insert search: %v", err)
	}
}

// addPlace records a page. A nil title makes visits to it redirects.
func (f *profileFixture) addPlace(t *testing.T, id int64, url string, title *string) {
	t.Helper()

	if _, err := f.places.Exec("INSERT INTO moz_places (id, url, title) VALUES (?, ?, ?)", id, url, title); err != nil {
		t.Fatalf("failed to insert place: %v", err)
	}
}

// addVisit records a visit to place that happened ago before fixtureNow.
func (f *profileFixture) addVisit(t *testing.T, id, from, place int64, visitType int, ago time.Duration) {
	t.Helper()

	_, err := f.places.Exec(
		"INSERT INTO moz_historyvisits (id, from_visit, place_id, visit_date, visit_type) VALUES (?, ?, ?, ?, ?)",
		id, from, place, fixtureNow.Add(-ago).UnixMicro(), visitType,
	)
	if err != nil {
		t.Fatalf("failed to insert visit: %v", err)
	}
}

// openFixture opens the fixture's databases read-only.
func (f *profileFixture) open(t *testing.T) *HistoryDB {
	t.Helper()

	h, err := OpenHistory(f.placesPath(), f.formHistoryPath(), HistoryOptions{})
	if err != nil {
		t.Fatalf("failed to open history: %v", err)
	}
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func title(s string) *string {
	return &s
}
