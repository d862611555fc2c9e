package analyzer

import (
	"context"

	"github.com/nao1215/querystats/internal/model"
)

// memoryStore is an in-memory Store. Rows are returned in the order they
// were added, truncated to the requested limit.
type memoryStore struct {
	searches  []model.FormHistoryEntry
	matches   map[string][]model.VisitRecord
	followUps map[model.VisitID][]model.VisitRecord

	// failOn makes FollowUpVisits fail for that visit.
	failOn model.VisitID
	err    error

	// calls records the visit ids passed to FollowUpVisits, in order.
	calls []model.VisitID

	// limits records the limit passed to each call, keyed by method.
	limits map[string][]int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		matches:   make(map[string][]model.VisitRecord),
		followUps: make(map[model.VisitID][]model.VisitRecord),
		limits:    make(map[string][]int),
	}
}

func (s *memoryStore) addSearch(entry model.FormHistoryEntry, visits ...model.VisitRecord) {
	s.searches = append(s.searches, entry)
	pattern := SearchPattern(entry)
	s.matches[pattern] = append(s.matches[pattern], visits...)
}

func (s *memoryStore) addFollowUps(from model.VisitID, visits ...model.VisitRecord) {
	for i := range visits {
		visits[i].FromVisit = from
	}
	s.followUps[from] = append(s.followUps[from], visits...)
}

func (s *memoryStore) RecentSearches(_ context.Context, limit int) ([]model.FormHistoryEntry, error) {
	s.limits["searches"] = append(s.limits["searches"], limit)
	return truncate(s.searches, limit), nil
}

func (s *memoryStore) SearchVisits(_ context.Context, pattern string, limit int) ([]model.VisitRecord, error) {
	s.limits["matches"] = append(s.limits["matches"], limit)
	return truncate(s.matches[pattern], limit), nil
}

func (s *memoryStore) FollowUpVisits(_ context.Context, from model.VisitID, limit int) ([]model.VisitRecord, error) {
	s.calls = append(s.calls, from)
	s.limits["followups"] = append(s.limits["followups"], limit)
	if s.err != nil && from == s.failOn {
		return nil, s.err
	}
	return truncate(s.followUps[from], limit), nil
}

func truncate[T any](rows []T, limit int) []T {
	if limit < len(rows) {
		rows = rows[:limit]
	}
	out := make([]T, len(rows))
	copy(out, rows)
	return out
}

// page returns a titled visit.
func page(id model.VisitID, url, title string) model.VisitRecord {
	return model.VisitRecord{ID: id, URL: url, Title: &title}
}

// redirect returns an untitled visit.
func redirect(id model.VisitID, url string) model.VisitRecord {
	return model.VisitRecord{ID: id, URL: url}
}
