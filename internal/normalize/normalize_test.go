package normalize

import (
	"strings"
	"testing"
	"time"

	"NewsBrief/internal/fetch"
)

func TestResolvePublishedPriority(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	structured := time.Date(2025, time.March, 9, 8, 0, 0, 0, time.UTC)
	updated := time.Date(2025, time.March, 8, 8, 0, 0, 0, time.UTC)

	item := fetch.RawItem{
		PublishedParsed: &structured,
		Published:       "2025-03-07 10:00:00",
		UpdatedParsed:   &updated,
	}
	if got := resolvePublished(item, now); !got.Equal(structured) {
		t.Fatalf("expected structured published %v, got %v", structured, got)
	}

	item.PublishedParsed = nil
	got := resolvePublished(item, now)
	if got.Year() != 2025 || got.Month() != time.March || got.Day() != 7 {
		t.Fatalf("expected free-text date to win, got %v", got)
	}
	if got.Location() != time.UTC {
		t.Fatalf("zone-less date should be assumed UTC, got %v", got.Location())
	}

	item.Published = ""
	if got := resolvePublished(item, now); !got.Equal(updated) {
		t.Fatalf("expected updated fallback %v, got %v", updated, got)
	}

	item.UpdatedParsed = nil
	if got := resolvePublished(item, now); !got.Equal(now) {
		t.Fatalf("expected now fallback %v, got %v", now, got)
	}
}

func TestUnparseableDateIsKept(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	items := []fetch.RawItem{
		{Title: "Garbled date", Link: "https://example.org/a", Published: "not a date at all"},
	}

	out := Batch(items, "src-1", Options{TimeWindowHours: 24}, now)
	if len(out) != 1 {
		t.Fatalf("article with unparseable date must be kept, got %d articles", len(out))
	}
	if !out[0].PublishedAt.Equal(now) {
		t.Fatalf("unparseable date should fall back to now, got %v", out[0].PublishedAt)
	}
}

func TestTimeWindowScenario(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	old := now.Add(-40 * time.Hour)
	fresh := now.Add(-2 * time.Hour)

	items := []fetch.RawItem{
		{Title: "Old", Link: "https://example.org/old", PublishedParsed: &old,
			Tags: []string{"AI", "Tech", "AI"}},
		{Title: "Fresh A", Link: "https://example.org/a", PublishedParsed: &fresh,
			Tags: []string{"AI"}, Category: "AI"},
		{Title: "Fresh B", Link: "https://example.org/b", PublishedParsed: &fresh,
			Summary: strings.Repeat("x", 700)},
	}

	out := Batch(items, "techcrunch-rss", Options{TimeWindowHours: 24}, now)
	if len(out) != 2 {
		t.Fatalf("expected 2 articles after window filter, got %d", len(out))
	}
	if out[0].Title != "Fresh A" || out[1].Title != "Fresh B" {
		t.Fatalf("feed order must be preserved, got %q then %q", out[0].Title, out[1].Title)
	}
	if len(out[0].Categories) != 1 || out[0].Categories[0] != "AI" {
		t.Fatalf("categories must be deduplicated, got %v", out[0].Categories)
	}
	if len(out[1].ContentSnippet) != 500 {
		t.Fatalf("snippet must be truncated to 500 chars, got %d", len(out[1].ContentSnippet))
	}
}

func TestMaxItemsAppliedAfterWindow(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	old := now.Add(-40 * time.Hour)
	fresh := now.Add(-time.Hour)

	items := []fetch.RawItem{
		{Title: "Stale", Link: "https://example.org/stale", PublishedParsed: &old},
		{Title: "First", Link: "https://example.org/1", PublishedParsed: &fresh},
		{Title: "Second", Link: "https://example.org/2", PublishedParsed: &fresh},
		{Title: "Third", Link: "https://example.org/3", PublishedParsed: &fresh},
	}

	out := Batch(items, "src-1", Options{TimeWindowHours: 24, MaxItems: 2}, now)
	if len(out) != 2 {
		t.Fatalf("expected cap of 2, got %d", len(out))
	}
	if out[0].Title != "First" || out[1].Title != "Second" {
		t.Fatalf("cap must preserve feed order, got %q then %q", out[0].Title, out[1].Title)
	}
}

func TestSnippetPrefersSummary(t *testing.T) {
	t.Parallel()

	article := Normalize(fetch.RawItem{
		Title:       "Snippet",
		Link:        "https://example.org/s",
		Summary:     "short summary",
		Description: "long description",
	}, "src-1", time.Now().UTC())

	if article.ContentSnippet != "short summary" {
		t.Fatalf("snippet should prefer summary, got %q", article.ContentSnippet)
	}

	article = Normalize(fetch.RawItem{
		Title:       "Snippet",
		Link:        "https://example.org/s",
		Description: "long description",
	}, "src-1", time.Now().UTC())

	if article.ContentSnippet != "long description" {
		t.Fatalf("snippet should fall back to description, got %q", article.ContentSnippet)
	}
}

func TestEntriesWithoutLinkAreDropped(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	out := Batch([]fetch.RawItem{{Title: "No link"}}, "src-1", Options{TimeWindowHours: 24}, now)
	if len(out) != 0 {
		t.Fatalf("entries without a link must be dropped, got %d", len(out))
	}
}

func TestUntitledFallback(t *testing.T) {
	t.Parallel()

	article := Normalize(fetch.RawItem{Link: "https://example.org/x"}, "src-1", time.Now().UTC())
	if article.Title != "Untitled" {
		t.Fatalf("expected Untitled fallback, got %q", article.Title)
	}
}
