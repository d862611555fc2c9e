package model

// Default limits.
const (
	// DefaultMaxCount is the number of recent searches to look through.
	DefaultMaxCount = 20

	// DefaultMaxRepeat is the number of visits shown per search.
	DefaultMaxRepeat = 5

	// DefaultMaxDepth is how many clicks deep a trail is followed.
	DefaultMaxDepth = 4

	// DefaultMaxBreadth is how many follow-up visits are fetched per page.
	DefaultMaxBreadth = 10
)

// Limits bounds an analysis run.
type Limits struct {
	// MaxCount is the number of most recent searches to analyze.
	MaxCount int `json:"max_count" yaml:"count"`

	// MaxRepeat is the number of matching visits kept per search.
	MaxRepeat int `json:"max_repeat" yaml:"repeat"`

	// MaxDepth is the deepest click level that is expanded.
	// Depth 0 means no trail is expanded below the search result.
	MaxDepth int `json:"max_depth" yaml:"depth"`

	// MaxBreadth is the number of follow-up visits fetched per step.
	// Redirect hops use up a slot without producing a node.
	MaxBreadth int `json:"max_breadth" yaml:"breadth"`
}

// DefaultLimits returns the default limits.
func DefaultLimits() Limits {
	return Limits{
		MaxCount:   DefaultMaxCount,
		MaxRepeat:  DefaultMaxRepeat,
		MaxDepth:   DefaultMaxDepth,
		MaxBreadth: DefaultMaxBreadth,
	}
}

// Normalize returns a copy of l with every negative limit set to 0.
func (l Limits) Normalize() Limits {
	return Limits{
		MaxCount:   nonNegative(l.MaxCount),
		MaxRepeat:  nonNegative(l.MaxRepeat),
		MaxDepth:   nonNegative(l.MaxDepth),
		MaxBreadth: nonNegative(l.MaxBreadth),
	}
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
