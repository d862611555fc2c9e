package analyzer

import (
	"context"
	"errors"
	"reflect"
	"slices"
	"testing"
	"time"

	"github.com/nao1215/querystats/internal/model"
)

var testNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func limits(count, repeat, depth, breadth int) model.Limits {
	return model.Limits{MaxCount: count, MaxRepeat: repeat, MaxDepth: depth, MaxBreadth: breadth}
}

func searchVisit(id model.VisitID, url string, ago time.Duration) model.VisitRecord {
	v := page(id, url, "results")
	v.VisitDate = testNow.Add(-ago)
	return v
}

func labels(nodes []model.ResultNode) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Label)
	}
	return out
}

// analyze runs the analyzer and fails the test on error.
func analyze(t *testing.T, store Store, l model.Limits, opts ...Option) []model.ResultNode {
	t.Helper()

	results, err := New(store, l, opts...).Analyze(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return results
}

// checkLabels fails when the node labels differ from want.
func checkLabels(t *testing.T, nodes []model.ResultNode, want ...string) {
	t.Helper()

	if got := labels(nodes); !slices.Equal(got, want) {
		t.Fatalf("expected labels %q, got %q", want, got)
	}
}

// checkAnnotations fails when the node annotations differ from want.
func checkAnnotations(t *testing.T, nodes []model.ResultNode, want ...string) {
	t.Helper()

	got := make([]string, 0, len(nodes))
	for _, n := range nodes {
		got = append(got, n.Annotation)
	}
	if !slices.Equal(got, want) {
		t.Errorf("expected annotations %q, got %q", want, got)
	}
}

func TestAnalyze_SingleSearchWithoutDepth(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	store.addSearch(
		model.FormHistoryEntry{Value: "cats", FieldName: SearchBarField},
		searchVisit(1, "https://www.google.com/search?q=cats", 3*24*time.Hour),
	)
	store.addFollowUps(1, page(2, "https://en.wikipedia.org/wiki/Cat", "Cat"))

	results := analyze(t, store, limits(1, 1, 0, 5), WithClock(fixedClock))
	checkLabels(t, results, "cats")

	node := results[0]
	if node.URL != "https://www.google.com/search?q=cats" {
		t.Errorf("unexpected URL %q", node.URL)
	}
	if node.Host != "google.com" {
		t.Errorf("expected host google.com, got %q", node.Host)
	}
	if node.Annotation != "@ google.com 3 days ago" {
		t.Errorf("unexpected annotation %q", node.Annotation)
	}
	if !node.VisitedAt.Equal(testNow.Add(-3 * 24 * time.Hour)) {
		t.Errorf("unexpected visit time %v", node.VisitedAt)
	}
	if len(node.Children) != 0 {
		t.Errorf("expected no children, got %d", len(node.Children))
	}
	if len(store.calls) != 0 {
		t.Errorf("depth 0 must not query follow-up visits, got calls for %v", store.calls)
	}
}

func TestAnalyze_RepeatAnnotation(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	store.addSearch(
		model.FormHistoryEntry{Value: "go generics", FieldName: "search-query-field"},
		searchVisit(1, "https://www.example.com/?query-field=go+generics", time.Hour),
		searchVisit(2, "https://www.example.com/?query-field=go+generics", 2*time.Hour),
		searchVisit(3, "https://www.example.com/?query-field=go+generics", 3*time.Hour),
	)

	results := analyze(t, store, limits(5, 2, 3, 5), WithClock(fixedClock))
	if len(results) != 2 {
		t.Fatalf("expected the repeat limit to keep 2 visits, got %d", len(results))
	}

	checkAnnotations(t, results,
		"@ example.com 1 hour ago",
		"@ example.com 2 hours ago (repeat 2)",
	)
	if got := store.limits["matches"]; !slices.Equal(got, []int{2}) {
		t.Errorf("expected one visit query limited to 2, got %v", got)
	}
}

func TestAnalyze_SearchOrderFollowsStore(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	store.addSearch(model.FormHistoryEntry{Value: "newest", FieldName: SearchBarField},
		searchVisit(1, "https://duckduckgo.com/?q=newest", time.Minute))
	store.addSearch(model.FormHistoryEntry{Value: "unmatched", FieldName: SearchBarField})
	store.addSearch(model.FormHistoryEntry{Value: "oldest", FieldName: SearchBarField},
		searchVisit(2, "https://duckduckgo.com/?q=oldest", time.Hour))

	results := analyze(t, store, limits(10, 1, 1, 1), WithClock(fixedClock))
	checkLabels(t, results, "newest", "oldest")
}

func TestAnalyze_CountLimit(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	for i, value := range []string{"a", "b", "c"} {
		store.addSearch(model.FormHistoryEntry{Value: value, FieldName: SearchBarField},
			searchVisit(model.VisitID(i+1), "https://duckduckgo.com/?q="+value, time.Minute))
	}

	results := analyze(t, store, limits(2, 1, 0, 0))
	checkLabels(t, results, "a", "b")
}

func TestAnalyze_ClickNumbering(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	store.addSearch(model.FormHistoryEntry{Value: "cats", FieldName: SearchBarField},
		searchVisit(1, "https://duckduckgo.com/?q=cats", time.Minute))
	store.addFollowUps(1,
		page(10, "https://a.example/", "A"),
		redirect(11, "https://r.example/"),
		page(14, "https://d.example/", "D"),
	)
	store.addFollowUps(11,
		page(12, "https://b.example/", "B"),
		page(13, "https://c.example/", "C"),
	)
	store.addFollowUps(10,
		page(20, "https://x.example/", "X"),
		page(21, "https://y.example/", "Y"),
	)

	results := analyze(t, store, limits(1, 1, 3, 10))
	checkLabels(t, results, "cats")

	trail := results[0].Children
	checkLabels(t, trail, "A", "B", "C", "D")
	checkAnnotations(t, trail, "", "(click 2)", "(click 3)", "(click 4)")

	// Each visible node numbers its own children from 1 again.
	checkLabels(t, trail[0].Children, "X", "Y")
	checkAnnotations(t, trail[0].Children, "", "(click 2)")
}

func TestAnalyze_RedirectChainKeepsDepth(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	store.addSearch(model.FormHistoryEntry{Value: "news", FieldName: SearchBarField},
		searchVisit(1, "https://duckduckgo.com/?q=news", time.Minute))
	store.addFollowUps(1, page(2, "https://news.example/", "News"))
	store.addFollowUps(2, redirect(3, "https://t.co/abc"))
	store.addFollowUps(3, redirect(4, "http://news.example/story"))
	store.addFollowUps(4, page(5, "https://news.example/story", "Story"))
	store.addFollowUps(5, page(6, "https://news.example/related", "Related"))

	// Depth 2: News at depth 1, Story at depth 2 despite two redirects,
	// Related would be depth 3 and is cut.
	results := analyze(t, store, limits(1, 1, 2, 10))
	checkLabels(t, results, "news")

	news := results[0].Children
	checkLabels(t, news, "News")

	story := news[0].Children
	checkLabels(t, story, "Story")
	if story[0].Annotation != "" {
		t.Errorf("first visible node behind redirects is click 1, got %q", story[0].Annotation)
	}
	if len(story[0].Children) != 0 {
		t.Errorf("expected the trail to stop at depth 2, got %d children", len(story[0].Children))
	}

	if got := results[0].Depth(); got != 2 {
		t.Errorf("expected depth 2, got %d", got)
	}
	if slices.Contains(store.calls, model.VisitID(5)) {
		t.Error("depth 3 must not be queried")
	}
}

func TestAnalyze_RedirectsNeverSurface(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	store.addSearch(model.FormHistoryEntry{Value: "q", FieldName: SearchBarField},
		searchVisit(1, "https://duckduckgo.com/?q=q", time.Minute))
	store.addFollowUps(1, redirect(2, "https://r1.example/"), redirect(3, "https://r2.example/"))
	store.addFollowUps(3, page(4, "https://p.example/", "P"))

	results := analyze(t, store, limits(1, 1, 5, 5))

	results[0].Walk(func(node model.ResultNode, depth int) {
		if depth == 0 {
			return
		}
		if node.URL == "https://r1.example/" || node.URL == "https://r2.example/" {
			t.Errorf("redirect %s appeared in the trail", node.URL)
		}
	})
	checkLabels(t, results[0].Children, "P")
}

func TestAnalyze_BreadthCountsRedirects(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	store.addSearch(model.FormHistoryEntry{Value: "q", FieldName: SearchBarField},
		searchVisit(1, "https://duckduckgo.com/?q=q", time.Minute))
	store.addFollowUps(1,
		redirect(2, "https://r.example/"),
		page(3, "https://a.example/", "A"),
		page(4, "https://b.example/", "B"),
	)
	store.addFollowUps(2, page(5, "https://c.example/", "C"))

	results := analyze(t, store, limits(1, 1, 1, 2))

	// The redirect takes one of the two slots, so B is never fetched.
	checkLabels(t, results[0].Children, "C", "A")
	for _, limit := range store.limits["followups"] {
		if limit != 2 {
			t.Errorf("expected follow-up queries limited to 2, got %d", limit)
		}
	}
}

func TestAnalyze_Bounds(t *testing.T) {
	t.Parallel()

	// A full tree without redirects: every page has three follow-ups.
	store := newMemoryStore()
	store.addSearch(model.FormHistoryEntry{Value: "tree", FieldName: SearchBarField},
		searchVisit(1, "https://duckduckgo.com/?q=tree", time.Minute))
	next := model.VisitID(2)
	var grow func(from model.VisitID, level int)
	grow = func(from model.VisitID, level int) {
		if level > 5 {
			return
		}
		for range 3 {
			id := next
			next++
			store.addFollowUps(from, page(id, "https://tree.example/", "node"))
			grow(id, level+1)
		}
	}
	grow(1, 1)

	for _, tt := range []struct{ depth, breadth int }{{0, 3}, {1, 2}, {2, 3}, {3, 1}, {4, 2}} {
		results := analyze(t, store, limits(1, 1, tt.depth, tt.breadth))
		if len(results) != 1 {
			t.Fatalf("expected one result, got %d", len(results))
		}

		if got := results[0].Depth(); got > tt.depth {
			t.Errorf("depth %d exceeds limit %d", got, tt.depth)
		}
		results[0].Walk(func(node model.ResultNode, _ int) {
			if len(node.Children) > tt.breadth {
				t.Errorf("%d children exceed breadth %d", len(node.Children), tt.breadth)
			}
		})
	}
}

func TestAnalyze_ErrorAbortsRun(t *testing.T) {
	t.Parallel()

	errBroken := errors.New("database disk image is malformed")

	store := newMemoryStore()
	store.addSearch(model.FormHistoryEntry{Value: "q", FieldName: SearchBarField},
		searchVisit(1, "https://duckduckgo.com/?q=q", time.Minute))
	store.addFollowUps(1, page(2, "https://a.example/", "A"))
	store.failOn = 2
	store.err = errBroken

	results, err := New(store, limits(1, 1, 3, 3)).Analyze(context.Background())
	if !errors.Is(err, errBroken) {
		t.Errorf("expected the store error, got %v", err)
	}
	if results != nil {
		t.Errorf("expected no results, got %v", results)
	}
}

func TestAnalyze_EmptyStore(t *testing.T) {
	t.Parallel()

	results := analyze(t, newMemoryStore(), model.DefaultLimits())
	if results == nil {
		t.Fatal("expected an empty slice, got nil")
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestAnalyze_NegativeLimitsBecomeZero(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	store.addSearch(model.FormHistoryEntry{Value: "q", FieldName: SearchBarField},
		searchVisit(1, "https://duckduckgo.com/?q=q", time.Minute))

	a := New(store, limits(-1, -5, -2, -3))
	if a.Limits() != (model.Limits{}) {
		t.Errorf("expected zero limits, got %+v", a.Limits())
	}

	results, err := a.Analyze(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
	if got := store.limits["searches"]; !slices.Equal(got, []int{0}) {
		t.Errorf("expected one search query limited to 0, got %v", got)
	}
}

func TestAnalyze_CycleTerminates(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	store.addSearch(model.FormHistoryEntry{Value: "q", FieldName: SearchBarField},
		searchVisit(1, "https://duckduckgo.com/?q=q", time.Minute))
	store.addFollowUps(1, redirect(2, "https://r.example/"))
	store.addFollowUps(2, redirect(3, "https://s.example/"))
	store.addFollowUps(3, redirect(2, "https://r.example/"), page(4, "https://p.example/", "P"))

	results := analyze(t, store, limits(1, 1, 2, 5))
	checkLabels(t, results[0].Children, "P")
}

func TestAnalyze_Idempotent(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	store.addSearch(model.FormHistoryEntry{Value: "cats", FieldName: SearchBarField},
		searchVisit(1, "https://duckduckgo.com/?q=cats", time.Hour),
		searchVisit(2, "https://duckduckgo.com/?q=cats", 2*time.Hour))
	store.addFollowUps(1, page(3, "https://a.example/", "A"), redirect(4, "https://r.example/"))
	store.addFollowUps(4, page(5, "https://b.example/", "B"))

	a := New(store, model.DefaultLimits(), WithClock(fixedClock))
	first, err := a.Analyze(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := a.Analyze(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("expected identical results, got %+v and %+v", first, second)
	}
}
