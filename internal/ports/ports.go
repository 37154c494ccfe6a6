package ports

import (
	"context"
	"time"

	"NewsBrief/internal/domain"
)

// FetchOutcome is the result of one fetch attempt, folded into the source's
// health fields by the registry.
type FetchOutcome struct {
	Success      bool
	ErrorMessage string
	FetchedCount int
	At           time.Time
}

// SourceRegistry exposes configured sources and records their health.
type SourceRegistry interface {
	ListEnabledSources(ctx context.Context) ([]domain.Source, error)
	RecordFetchOutcome(ctx context.Context, sourceID string, outcome FetchOutcome) error
}

// ScoreRequest carries the aggregated article set and user topics to the oracle.
type ScoreRequest struct {
	RunID    string
	Date     string
	Articles []domain.Article
	Topics   []string
}

// ArticleScore is the oracle's per-article enrichment, keyed by URL.
type ArticleScore struct {
	URL            string   `json:"url"`
	RelevanceScore float64  `json:"relevance_score"`
	AISummary      string   `json:"ai_summary"`
	AITags         []string `json:"ai_tags"`
}

// ScoreResult bundles the executive brief with per-article scores.
type ScoreResult struct {
	Brief  domain.Brief
	Scores []ArticleScore
}

// ScoringGateway sends articles to the external scoring oracle and receives
// relevance scores plus an executive brief.
type ScoringGateway interface {
	ScoreAndBrief(ctx context.Context, req ScoreRequest) (*ScoreResult, error)
}

// WriteReport is the always-observable outcome of a best-effort store write.
type WriteReport struct {
	StoredCount       int
	FailedCount       int
	FailedURLs        []string
	DuplicatesSkipped int
}

// ArticleWriter persists scored articles with URL-level deduplication.
// Partial failures are reported in the WriteReport, never as an error.
type ArticleWriter interface {
	StoreArticles(ctx context.Context, runID string, articles []domain.Article) (WriteReport, error)
}

// Notification is a fire-and-forget message to operators.
type Notification struct {
	Channel   string
	Recipient string
	Title     string
	Body      string
	URL       string
	Priority  string
}

// Notifier delivers notifications; delivery failure is never run-critical.
type Notifier interface {
	Send(ctx context.Context, notification Notification) error
}

// Scheduler controls when ingestion runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
