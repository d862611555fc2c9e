package analyzer

import (
	"context"

	"github.com/nao1215/querystats/internal/model"
)

// Store is the read-only history data source the Analyzer queries.
//
// Every method returns fully materialized rows, so callers may issue further
// queries while iterating over a result. An empty result is not an error.
type Store interface {
	// RecentSearches returns at most limit form history entries,
	// most recently used first.
	RecentSearches(ctx context.Context, limit int) ([]model.FormHistoryEntry, error)

	// SearchVisits returns at most limit followed-link visits whose URL
	// matches the LIKE pattern, newest first.
	SearchVisits(ctx context.Context, pattern string, limit int) ([]model.VisitRecord, error)

	// FollowUpVisits returns at most limit visits navigated to from the
	// given visit, in the store's natural order.
	FollowUpVisits(ctx context.Context, from model.VisitID, limit int) ([]model.VisitRecord, error)
}
