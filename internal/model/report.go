package model

import (
	"time"

	"github.com/google/uuid"
)

// Report is the outcome of one analysis run.
// It is what report writers render and what the run history stores.
type Report struct {
	// ID uniquely identifies the run. It is a UUIDv7, so IDs sort by creation time.
	ID string `json:"id"`

	// GeneratedAt is when the analysis finished.
	GeneratedAt time.Time `json:"generated_at"`

	// Profile is the browser profile directory the history was read from.
	Profile string `json:"profile,omitempty"`

	// Limits are the bounds the analysis ran with.
	Limits Limits `json:"limits"`

	// Results are the top-level nodes, one per visit that used a search.
	Results []ResultNode `json:"results"`

	// Stats summarizes Results.
	Stats Stats `json:"stats"`
}

// Stats summarizes the result tree of a report.
type Stats struct {
	// Searches is the number of distinct search values with at least one visit.
	Searches int `json:"searches"`

	// Visits is the number of top-level nodes.
	Visits int `json:"visits"`

	// Clicks is the number of trail nodes below the top-level nodes.
	Clicks int `json:"clicks"`

	// DeepestTrail is the deepest click level reached.
	DeepestTrail int `json:"deepest_trail"`
}

// NewReport creates an empty report for the given profile and limits.
func NewReport(profile string, limits Limits) *Report {
	return &Report{
		ID:      newRunID(),
		Profile: profile,
		Limits:  limits,
		Results: make([]ResultNode, 0),
	}
}

// SetResults stores the analysis results, stamps the report and updates Stats.
func (r *Report) SetResults(results []ResultNode, generatedAt time.Time) {
	if results == nil {
		results = make([]ResultNode, 0)
	}
	r.Results = results
	r.GeneratedAt = generatedAt
	r.Stats = computeStats(results)
}

// HasResults reports whether any visit matched a search.
func (r *Report) HasResults() bool {
	return len(r.Results) > 0
}

func computeStats(results []ResultNode) Stats {
	var stats Stats
	searches := make(map[string]struct{})
	for _, node := range results {
		searches[node.Label] = struct{}{}
		stats.Visits++
		stats.Clicks += node.Count() - 1
		if d := node.Depth(); d > stats.DeepestTrail {
			stats.DeepestTrail = d
		}
	}
	stats.Searches = len(searches)
	return stats
}

// newRunID generates a new UUID v7 for a run.
func newRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New().String()
	}
	return id.String()
}
