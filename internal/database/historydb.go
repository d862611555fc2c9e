package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/querystats/internal/model"
)

// visitTypeLink is the moz_historyvisits.visit_type of a followed link.
const visitTypeLink = 1

// HistoryDB reads search and visit history from a Firefox profile.
// It holds one connection per database file.
type HistoryDB struct {
	// places is places.sqlite: moz_places and moz_historyvisits.
	places *sql.DB

	// forms is formhistory.sqlite: moz_formhistory.
	forms *sql.DB
}

// HistoryOptions configures how the browser databases are opened.
type HistoryOptions struct {
	// Writable opens the files read-write. Use it for snapshot copies only,
	// so SQLite can replay a copied write-ahead log. Live browser databases
	// must be opened read-only.
	Writable bool

	// BusyTimeout is how long a query waits for a lock held by the browser.
	BusyTimeout time.Duration
}

// OpenHistory opens the places and form history databases.
// Both files must exist; a missing one yields an error wrapping ErrNotFound.
func OpenHistory(placesPath, formHistoryPath string, opts HistoryOptions) (*HistoryDB, error) {
	places, err := openBrowserDB(placesPath, opts)
	if err != nil {
		return nil, err
	}

	forms, err := openBrowserDB(formHistoryPath, opts)
	if err != nil {
		_ = places.Close()
		return nil, err
	}

	return &HistoryDB{
		places: places,
		forms:  forms,
	}, nil
}

// openBrowserDB opens a single browser database file.
func openBrowserDB(path string, opts HistoryOptions) (*sql.DB, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w at %s", ErrNotFound, path)
	} else if err != nil {
		return nil, fmt.Errorf("failed to check database path: %w", err)
	}

	dsn, err := browserDSN(path, opts)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filepath.Base(path), err)
	}

	// A single connection keeps reads on one consistent view of the file.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open %s: %w", filepath.Base(path), err)
	}

	return db, nil
}

// browserDSN builds a SQLite URI for path. The URI form is needed for the
// mode parameter to reach SQLite; spaces and other special characters in
// profile paths are percent-encoded.
func browserDSN(path string, opts HistoryOptions) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	slashed := filepath.ToSlash(abs)
	if !strings.HasPrefix(slashed, "/") {
		slashed = "/" + slashed
	}

	mode := "ro"
	if opts.Writable {
		mode = "rw"
	}
	query := url.Values{}
	query.Set("mode", mode)
	if opts.BusyTimeout > 0 {
		query.Set("_pragma", fmt.Sprintf("busy_timeout(%d)", opts.BusyTimeout.Milliseconds()))
	}

	u := url.URL{Scheme: "file", Path: slashed, RawQuery: query.Encode()}
	return u.String(), nil
}

// Close closes both database connections.
func (h *HistoryDB) Close() error {
	placesErr := h.places.Close()
	formsErr := h.forms.Close()
	if placesErr != nil {
		return placesErr
	}
	return formsErr
}

// RecentSearches returns at most limit form history entries, most recently used first.
func (h *HistoryDB) RecentSearches(ctx context.Context, limit int) ([]model.FormHistoryEntry, error) {
	query := `
	SELECT value, fieldname, lastUsed
	FROM moz_formhistory
	ORDER BY lastUsed DESC
	LIMIT :count
	`

	rows, err := h.forms.QueryContext(ctx, query, sql.Named("count", limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query form history: %w", err)
	}
	defer rows.Close()

	entries := make([]model.FormHistoryEntry, 0)
	for rows.Next() {
		var (
			entry    model.FormHistoryEntry
			value    sql.NullString
			field    sql.NullString
			lastUsed sql.NullInt64
		)
		if err := rows.Scan(&value, &field, &lastUsed); err != nil {
			return nil, fmt.Errorf("failed to scan form history: %w", err)
		}
		entry.Value = value.String
		entry.FieldName = field.String
		entry.LastUsed = prTime(lastUsed)
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// SearchVisits returns at most limit followed-link visits whose URL matches
// the LIKE pattern, newest first.
func (h *HistoryDB) SearchVisits(ctx context.Context, pattern string, limit int) ([]model.VisitRecord, error) {
	query := `
	SELECT v.id, p.url, p.title, v.visit_date, v.from_visit
	FROM moz_places p
	JOIN moz_historyvisits v ON v.place_id = p.id
	WHERE p.url LIKE :query AND v.visit_type = :visitType
	ORDER BY v.visit_date DESC
	LIMIT :repeat
	`

	return h.queryVisits(ctx, query,
		sql.Named("query", pattern),
		sql.Named("visitType", visitTypeLink),
		sql.Named("repeat", limit),
	)
}

// FollowUpVisits returns at most limit visits navigated to from the given
// visit, in the database's natural order.
func (h *HistoryDB) FollowUpVisits(ctx context.Context, from model.VisitID, limit int) ([]model.VisitRecord, error) {
	query := `
	SELECT v.id, p.url, p.title, v.visit_date, v.from_visit
	FROM moz_historyvisits v
	JOIN moz_places p ON p.id = v.place_id
	WHERE v.from_visit = :visitId
	LIMIT :breadth
	`

	return h.queryVisits(ctx, query,
		sql.Named("visitId", int64(from)),
		sql.Named("breadth", limit),
	)
}

// queryVisits runs a visit query and materializes every row before returning.
func (h *HistoryDB) queryVisits(ctx context.Context, query string, args ...any) ([]model.VisitRecord, error) {
	rows, err := h.places.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query visits: %w", err)
	}
	defer rows.Close()

	visits := make([]model.VisitRecord, 0)
	for rows.Next() {
		var (
			visit     model.VisitRecord
			rawURL    sql.NullString
			title     sql.NullString
			visitDate sql.NullInt64
			fromVisit sql.NullInt64
		)
		if err := rows.Scan(&visit.ID, &rawURL, &title, &visitDate, &fromVisit); err != nil {
			return nil, fmt.Errorf("failed to scan visit: %w", err)
		}
		visit.URL = rawURL.String
		if title.Valid {
			visit.Title = &title.String
		}
		visit.VisitDate = prTime(visitDate)
		visit.FromVisit = model.VisitID(fromVisit.Int64)
		visits = append(visits, visit)
	}

	return visits, rows.Err()
}

// prTime converts a PRTime value (microseconds since the Unix epoch).
// NULL converts to the zero time.
func prTime(v sql.NullInt64) time.Time {
	if !v.Valid {
		return time.Time{}
	}
	return time.UnixMicro(v.Int64)
}
