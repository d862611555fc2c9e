package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/querystats/internal/model"
)

// Analyzer builds search trail trees from a Store.
type Analyzer struct {
	// store is the history data source.
	store Store

	// limits bounds the analysis. Always normalized.
	limits model.Limits

	// now returns the reference time for "time ago" annotations.
	now func() time.Time

	// logger receives debug output about the walk.
	logger *slog.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets a custom logger for the analyzer.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		a.logger = logger
	}
}

// WithClock sets the function used to read the current time.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) {
		a.now = now
	}
}

// New creates an Analyzer over store. Negative limits are treated as 0.
func New(store Store, limits model.Limits, opts ...Option) *Analyzer {
	a := &Analyzer{
		store:  store,
		limits: limits.Normalize(),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.logger == nil {
		a.logger = slog.Default()
	}

	return a
}

// Limits returns the normalized limits the analyzer runs with.
func (a *Analyzer) Limits() model.Limits {
	return a.limits
}

// trail is the traversal context of one parent: it numbers the visible
// nodes produced for that parent, including those found behind redirects.
type trail struct {
	clicks int

	// expanded holds every visit already expanded in the current root walk.
	expanded map[model.VisitID]struct{}
}

// child returns a fresh context for the subtree below a visible node.
func (t *trail) child() *trail {
	return &trail{expanded: t.expanded}
}

// Analyze returns one top-level node per visit that used a recent search,
// each with its click trail.
//
// Searches are ordered by last use, newest first, and the visits of a search
// by visit date, newest first. Any store error aborts the analysis and is
// returned; no partial result is produced.
func (a *Analyzer) Analyze(ctx context.Context) ([]model.ResultNode, error) {
	entries, err := a.store.RecentSearches(ctx, a.limits.MaxCount)
	if err != nil {
		return nil, fmt.Errorf("failed to read form history: %w", err)
	}

	a.logger.Debug("loaded recent searches", "count", len(entries))

	now := a.now()
	results := make([]model.ResultNode, 0, len(entries))
	for _, entry := range entries {
		nodes, err := a.analyzeSearch(ctx, entry, now)
		if err != nil {
			return nil, err
		}
		results = append(results, nodes...)
	}

	return results, nil
}

// analyzeSearch builds the top-level nodes for one form history entry.
func (a *Analyzer) analyzeSearch(ctx context.Context, entry model.FormHistoryEntry, now time.Time) ([]model.ResultNode, error) {
	pattern := SearchPattern(entry)

	visits, err := a.store.SearchVisits(ctx, pattern, a.limits.MaxRepeat)
	if err != nil {
		return nil, fmt.Errorf("failed to find visits for search: %w", err)
	}

	a.logger.Debug("matched search visits",
		"pattern", pattern,
		"visits", len(visits),
	)

	nodes := make([]model.ResultNode, 0, len(visits))
	for i, visit := range visits {
		host := DisplayHost(visit.URL)
		node := model.ResultNode{
			URL:        visit.URL,
			Label:      entry.Value,
			Annotation: searchAnnotation(host, TimeAgo(visit.VisitDate, now), i+1),
			Host:       host,
			VisitedAt:  visit.VisitDate,
		}

		root := &trail{expanded: map[model.VisitID]struct{}{visit.ID: {}}}
		node.Children, err = a.expand(ctx, visit.ID, 1, root)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}

	return nodes, nil
}

// expand returns the visible follow-up pages of a visit.
//
// Redirect hops are followed at the same depth and share t, so pages behind
// them are numbered together with their parent's direct children. Each
// visible page starts a fresh context one level deeper.
func (a *Analyzer) expand(ctx context.Context, from model.VisitID, depth int, t *trail) ([]model.ResultNode, error) {
	if depth > a.limits.MaxDepth {
		return nil, nil
	}

	visits, err := a.store.FollowUpVisits(ctx, from, a.limits.MaxBreadth)
	if err != nil {
		return nil, fmt.Errorf("failed to follow visit %d: %w", from, err)
	}

	var nodes []model.ResultNode
	for _, visit := range visits {
		if _, seen := t.expanded[visit.ID]; seen {
			a.logger.Debug("skipping visit already in trail", "visit", visit.ID)
			continue
		}
		t.expanded[visit.ID] = struct{}{}

		if visit.IsRedirect() {
			hidden, err := a.expand(ctx, visit.ID, depth, t)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, hidden...)
			continue
		}

		t.clicks++
		node := model.ResultNode{
			URL:        visit.URL,
			Label:      visit.DisplayTitle(),
			Annotation: clickAnnotation(t.clicks),
		}
		node.Children, err = a.expand(ctx, visit.ID, depth+1, t.child())
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}

	return nodes, nil
}
