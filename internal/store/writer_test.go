package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"NewsBrief/internal/domain"
)

func testArticle(n int) domain.Article {
	return domain.Article{
		Title:       fmt.Sprintf("Article %d", n),
		URL:         fmt.Sprintf("https://example.com/articles/%d", n),
		PublishedAt: time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC),
		SourceID:    "test-source",
	}
}

func TestStoreArticlesSkipsExistingURLs(t *testing.T) {
	t.Parallel()

	mem := NewMemoryStore()
	ctx := context.Background()

	// Write two of the five up front, as a previous run would have.
	for _, n := range []int{1, 3} {
		article := testArticle(n)
		doc := storedArticle{Article: article, RunID: "earlier-run"}
		if err := mem.Set(ctx, CollectionArticles, ArticleID(article.URL), doc); err != nil {
			t.Fatalf("seed store: %v", err)
		}
	}

	articles := make([]domain.Article, 0, 5)
	for n := 1; n <= 5; n++ {
		articles = append(articles, testArticle(n))
	}

	writer := NewWriter(mem, nil)
	report, err := writer.StoreArticles(ctx, "run-1", articles)
	if err != nil {
		t.Fatalf("StoreArticles error: %v", err)
	}

	if report.StoredCount != 3 {
		t.Fatalf("expected 3 stored, got %d", report.StoredCount)
	}
	if report.DuplicatesSkipped != 2 {
		t.Fatalf("expected 2 duplicates skipped, got %d", report.DuplicatesSkipped)
	}
	if report.FailedCount != 0 || len(report.FailedURLs) != 0 {
		t.Fatalf("expected no failures, got %d (%v)", report.FailedCount, report.FailedURLs)
	}

	// The earlier run's copy must survive untouched.
	raw, err := mem.Get(ctx, CollectionArticles, ArticleID(testArticle(1).URL))
	if err != nil {
		t.Fatalf("Get existing: %v", err)
	}
	var kept storedArticle
	if err := json.Unmarshal(raw, &kept); err != nil {
		t.Fatalf("decode existing: %v", err)
	}
	if kept.RunID != "earlier-run" {
		t.Fatalf("existing document was overwritten, runId=%q", kept.RunID)
	}
}

func TestStoreArticlesDeduplicatesWithinBatch(t *testing.T) {
	t.Parallel()

	writer := NewWriter(NewMemoryStore(), nil)
	articles := []domain.Article{testArticle(1), testArticle(1), testArticle(2)}

	report, err := writer.StoreArticles(context.Background(), "run-1", articles)
	if err != nil {
		t.Fatalf("StoreArticles error: %v", err)
	}
	if report.StoredCount != 2 {
		t.Fatalf("expected 2 stored, got %d", report.StoredCount)
	}
	if report.DuplicatesSkipped != 1 {
		t.Fatalf("expected 1 duplicate skipped, got %d", report.DuplicatesSkipped)
	}
}

func TestStoreArticlesDropsEmptyURLs(t *testing.T) {
	t.Parallel()

	writer := NewWriter(NewMemoryStore(), nil)
	articles := []domain.Article{{Title: "No link"}, testArticle(1)}

	report, err := writer.StoreArticles(context.Background(), "run-1", articles)
	if err != nil {
		t.Fatalf("StoreArticles error: %v", err)
	}
	if report.StoredCount != 1 {
		t.Fatalf("expected 1 stored, got %d", report.StoredCount)
	}
	if report.DuplicatesSkipped != 0 || report.FailedCount != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

// failingBatchStore wraps a MemoryStore and fails the first BatchWrite call.
type failingBatchStore struct {
	*MemoryStore
	calls int
}

func (f *failingBatchStore) BatchWrite(ctx context.Context, collection string, docs map[string]any) error {
	f.calls++
	if f.calls == 1 {
		return errors.New("backend unavailable")
	}
	return f.MemoryStore.BatchWrite(ctx, collection, docs)
}

func TestStoreArticlesFailingBatchDoesNotAbortSiblings(t *testing.T) {
	t.Parallel()

	backend := &failingBatchStore{MemoryStore: NewMemoryStore()}
	writer := NewWriter(backend, nil)
	writer.batchSize = 2

	articles := make([]domain.Article, 0, 5)
	for n := 1; n <= 5; n++ {
		articles = append(articles, testArticle(n))
	}

	report, err := writer.StoreArticles(context.Background(), "run-1", articles)
	if err != nil {
		t.Fatalf("StoreArticles error: %v", err)
	}

	// First batch of two fails, the remaining three land.
	if report.StoredCount != 3 {
		t.Fatalf("expected 3 stored, got %d", report.StoredCount)
	}
	if report.FailedCount != 2 {
		t.Fatalf("expected 2 failed, got %d", report.FailedCount)
	}
	if len(report.FailedURLs) != 2 {
		t.Fatalf("expected 2 failed urls, got %v", report.FailedURLs)
	}
	if backend.calls != 3 {
		t.Fatalf("expected 3 batch calls, got %d", backend.calls)
	}
}

func TestArticleIDIsStable(t *testing.T) {
	t.Parallel()

	a := ArticleID("https://example.com/story")
	b := ArticleID("https://example.com/story")
	if a != b {
		t.Fatalf("ids differ for the same url: %s vs %s", a, b)
	}
	if a == ArticleID("https://example.com/other") {
		t.Fatalf("distinct urls should not collide")
	}
	if len(a) != 40 {
		t.Fatalf("expected 40 hex chars, got %d", len(a))
	}
}
