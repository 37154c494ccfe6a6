package store

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"log/slog"

	"NewsBrief/internal/domain"
	"NewsBrief/internal/ports"
)

// maxBatchSize respects the backing store's write throughput limits.
const maxBatchSize = 500

// Writer persists scored articles with URL-level deduplication against
// global store state, so concurrent runs converge to first-writer-wins.
type Writer struct {
	store     Store
	logger    *slog.Logger
	batchSize int
}

var _ ports.ArticleWriter = (*Writer)(nil)

// NewWriter wires a document store behind the article-writing port.
func NewWriter(store Store, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{store: store, logger: logger, batchSize: maxBatchSize}
}

// ArticleID derives the stored document id from the canonical URL.
func ArticleID(url string) string {
	sum := sha1.Sum([]byte(url))
	return hex.EncodeToString(sum[:])
}

type storedArticle struct {
	domain.Article
	RunID string `json:"runId"`
}

type pendingWrite struct {
	id  string
	doc storedArticle
}

// StoreArticles writes articles in batches. A URL already present in the
// store, from this run or any prior one, counts as a duplicate rather than
// an error. A failing batch never aborts its siblings; its URLs are
// collected into the report instead.
func (w *Writer) StoreArticles(ctx context.Context, runID string, articles []domain.Article) (ports.WriteReport, error) {
	report := ports.WriteReport{FailedURLs: []string{}}

	seen := make(map[string]struct{}, len(articles))
	pending := make([]pendingWrite, 0, len(articles))
	for _, article := range articles {
		if article.URL == "" {
			continue
		}
		id := ArticleID(article.URL)
		if _, dup := seen[id]; dup {
			report.DuplicatesSkipped++
			continue
		}
		seen[id] = struct{}{}

		_, err := w.store.Get(ctx, CollectionArticles, id)
		switch {
		case err == nil:
			report.DuplicatesSkipped++
			continue
		case errors.Is(err, ErrNotFound):
			pending = append(pending, pendingWrite{id: id, doc: storedArticle{Article: article, RunID: runID}})
		default:
			w.logger.Warn("duplicate check failed", "url", article.URL, "error", err)
			report.FailedCount++
			report.FailedURLs = append(report.FailedURLs, article.URL)
		}
	}

	for start := 0; start < len(pending); start += w.batchSize {
		end := min(start+w.batchSize, len(pending))
		batch := pending[start:end]

		docs := make(map[string]any, len(batch))
		for _, p := range batch {
			docs[p.id] = p.doc
		}

		if err := w.store.BatchWrite(ctx, CollectionArticles, docs); err != nil {
			batchErr := &domain.StoreWriteError{Err: err}
			for _, p := range batch {
				batchErr.FailedURLs = append(batchErr.FailedURLs, p.doc.URL)
			}
			w.logger.Error("article batch write failed",
				"run_id", runID,
				"batch_size", len(batch),
				"error", err)
			report.FailedCount += len(batch)
			report.FailedURLs = append(report.FailedURLs, batchErr.FailedURLs...)
			continue
		}
		report.StoredCount += len(batch)
	}

	w.logger.Info("articles stored",
		"run_id", runID,
		"stored", report.StoredCount,
		"failed", report.FailedCount,
		"duplicates_skipped", report.DuplicatesSkipped)
	return report, nil
}
