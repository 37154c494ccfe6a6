package view

import (
	"strings"
	"testing"
	"time"

	"NewsBrief/internal/domain"
)

func TestRenderRunSummary(t *testing.T) {
	t.Parallel()

	completedAt := time.Date(2025, 3, 10, 6, 5, 0, 0, time.UTC)
	run := &domain.IngestionRun{
		RunID:       "run-1",
		Status:      domain.RunStatusCompleted,
		StartedAt:   time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC),
		CompletedAt: &completedAt,
		Stats: domain.RunStats{
			SourcesChecked:    3,
			ArticlesFetched:   12,
			ArticlesStored:    10,
			DuplicatesSkipped: 2,
			BriefGenerated:    true,
			Errors:            []string{"source feed-bad: feed returned HTTP 503"},
		},
	}

	out := RenderRunSummary(run)
	for _, want := range []string{
		"Run run-1 [completed]",
		"Sources checked:    3",
		"Articles stored:    10",
		"Brief generated:    true",
		"feed-bad",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestRenderSourceTable(t *testing.T) {
	t.Parallel()

	lastSuccess := time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)
	sources := []domain.Source{
		{ID: "hn-feed", Name: "Hacker News", Type: domain.SourceTypeRSS, Category: "tech",
			Enabled: true, LastSuccess: &lastSuccess, ArticlesLast24h: 12},
		{ID: "dark-site", Name: "Dark Site", Type: domain.SourceTypeWebpage,
			LastError: "page returned HTTP 403"},
	}

	out := RenderSourceTable(sources)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "ID") {
		t.Fatalf("missing header: %q", lines[0])
	}
	if !strings.Contains(lines[1], "2025-03-10 06:00") {
		t.Fatalf("missing last success: %q", lines[1])
	}
	if !strings.Contains(lines[2], "page returned HTTP 403") {
		t.Fatalf("missing last error: %q", lines[2])
	}
}
