package domain

import "time"

// SourceType selects the fetch strategy used for a source.
type SourceType string

const (
	SourceTypeRSS     SourceType = "rss"
	SourceTypeWebpage SourceType = "webpage"
	SourceTypeAPI     SourceType = "api"
)

// Source is a configured origin of articles together with its health state.
// Health fields are written by exactly one worker per run.
type Source struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Type            SourceType        `json:"type"`
	URL             string            `json:"url"`
	Category        string            `json:"category"`
	Enabled         bool              `json:"enabled"`
	Options         map[string]string `json:"options,omitempty"`
	LastChecked     *time.Time        `json:"lastChecked,omitempty"`
	LastSuccess     *time.Time        `json:"lastSuccess,omitempty"`
	LastError       string            `json:"lastError,omitempty"`
	ArticlesLast24h int               `json:"articlesLast24h"`
}

// Article is the canonical normalized shape shared by all source types.
// URL is the deduplication identity within a run and across runs.
type Article struct {
	Title          string    `json:"title"`
	URL            string    `json:"url"`
	PublishedAt    time.Time `json:"publishedAt"`
	Summary        string    `json:"summary,omitempty"`
	Author         string    `json:"author,omitempty"`
	ContentSnippet string    `json:"contentSnippet,omitempty"`
	RawContent     string    `json:"rawContent,omitempty"`
	Categories     []string  `json:"categories"`
	SourceID       string    `json:"sourceId"`

	// Enrichment filled in from the scoring oracle before storage.
	RelevanceScore float64  `json:"relevanceScore,omitempty"`
	AISummary      string   `json:"aiSummary,omitempty"`
	AITags         []string `json:"aiTags,omitempty"`
}

// RunStatus enumerates run lifecycle states. Transitions are monotonic:
// running moves to exactly one of completed or failed.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// RunStats aggregates per-stage outcomes for one ingestion run.
type RunStats struct {
	SourcesChecked    int      `json:"sourcesChecked"`
	ArticlesFetched   int      `json:"articlesFetched"`
	ArticlesStored    int      `json:"articlesStored"`
	DuplicatesSkipped int      `json:"duplicatesSkipped"`
	BriefGenerated    bool     `json:"briefGenerated"`
	Errors            []string `json:"errors"`
}

// IngestionRun is the audit record for one pipeline execution.
type IngestionRun struct {
	RunID       string     `json:"runId"`
	Status      RunStatus  `json:"status"`
	StartedAt   time.Time  `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Stats       RunStats   `json:"stats"`
}

// BriefHighlight is one item the oracle singled out for the executive brief.
type BriefHighlight struct {
	Title                 string `json:"title"`
	Significance          string `json:"significance"`
	StrategicImplications string `json:"strategicImplications"`
	URL                   string `json:"url"`
}

// Brief is the executive summary produced once per run, immutable afterwards.
type Brief struct {
	RunID                 string           `json:"runId"`
	Date                  string           `json:"date"`
	ExecutiveSummary      string           `json:"executiveSummary"`
	Highlights            []BriefHighlight `json:"highlights"`
	TopicBreakdown        map[string]int   `json:"topicBreakdown"`
	TotalArticlesAnalyzed int              `json:"totalArticlesAnalyzed"`
}
