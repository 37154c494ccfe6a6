package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"NewsBrief/internal/domain"
	"NewsBrief/internal/fetch"
	"NewsBrief/internal/normalize"
	"NewsBrief/internal/ports"
	"NewsBrief/internal/store"
)

const defaultConcurrency = 4

// RunnerDeps wires all driven adapters into the run orchestrator.
type RunnerDeps struct {
	Registry ports.SourceRegistry
	Fetchers *fetch.Registry
	Scoring  ports.ScoringGateway
	Writer   ports.ArticleWriter
	Store    store.Store
	Notifier ports.Notifier
	Logger   *slog.Logger
}

// RunnerOptions bound the harvest stage and carry the user topics.
type RunnerOptions struct {
	TimeWindowHours   int
	MaxItemsPerSource int
	Concurrency       int
	Topics            []string
}

// Runner drives one ingestion run end to end: fan-out harvest, aggregation,
// scoring, storage, finalization. Workers hand results back; the Runner
// alone folds them into the run's stats.
type Runner struct {
	registry ports.SourceRegistry
	fetchers *fetch.Registry
	scoring  ports.ScoringGateway
	writer   ports.ArticleWriter
	store    store.Store
	notifier ports.Notifier
	logger   *slog.Logger
	opts     RunnerOptions
}

// NewRunner constructs the orchestration component.
func NewRunner(deps RunnerDeps, opts RunnerOptions) *Runner {
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Runner{
		registry: deps.Registry,
		fetchers: deps.Fetchers,
		scoring:  deps.Scoring,
		writer:   deps.Writer,
		store:    deps.Store,
		notifier: deps.Notifier,
		logger:   deps.Logger,
		opts:     opts,
	}
}

// sourceResult is what each harvest worker hands back to the fold.
type sourceResult struct {
	sourceID string
	articles []domain.Article
	err      error
}

// Execute performs a full harvest -> score -> store run. The returned run
// record is always terminal: completed, or failed with the causing error
// also returned. A run is never left in running state.
func (r *Runner) Execute(ctx context.Context, now time.Time) (*domain.IngestionRun, error) {
	run := &domain.IngestionRun{
		RunID:     uuid.NewString(),
		Status:    domain.RunStatusRunning,
		StartedAt: now.UTC(),
		Stats:     domain.RunStats{Errors: []string{}},
	}
	if err := r.saveRun(ctx, run); err != nil {
		return nil, fmt.Errorf("create run record: %w", err)
	}
	r.logger.Info("ingestion run started", "run_id", run.RunID)

	runErr := r.execute(ctx, run, now)

	completedAt := time.Now().UTC()
	run.CompletedAt = &completedAt
	if runErr != nil {
		run.Status = domain.RunStatusFailed
		run.Stats.Errors = append(run.Stats.Errors, runErr.Error())
		r.logger.Error("ingestion run failed", "run_id", run.RunID, "error", runErr)
	} else {
		run.Status = domain.RunStatusCompleted
		r.logger.Info("ingestion run completed",
			"run_id", run.RunID,
			"sources_checked", run.Stats.SourcesChecked,
			"articles_fetched", run.Stats.ArticlesFetched,
			"articles_stored", run.Stats.ArticlesStored,
			"duplicates_skipped", run.Stats.DuplicatesSkipped)
	}

	// The terminal record must be persisted even when the run failed on a
	// cancelled context.
	if err := r.saveRun(context.WithoutCancel(ctx), run); err != nil {
		r.logger.Error("persist final run record", "run_id", run.RunID, "error", err)
	}
	return run, runErr
}

func (r *Runner) execute(ctx context.Context, run *domain.IngestionRun, now time.Time) (err error) {
	defer func() {
		// An unexpected fault must still terminate the run with a
		// recorded error, not escape past the orchestrator.
		if rec := recover(); rec != nil {
			err = fmt.Errorf("internal fault: %v", rec)
		}
	}()

	sources, err := r.registry.ListEnabledSources(ctx)
	if err != nil {
		return fmt.Errorf("list enabled sources: %w", err)
	}
	run.Stats.SourcesChecked = len(sources)

	results := r.harvest(ctx, sources, now)

	var aggregated []domain.Article
	for _, result := range results {
		if result.err != nil {
			run.Stats.Errors = append(run.Stats.Errors,
				fmt.Sprintf("source %s: %v", result.sourceID, result.err))
			continue
		}
		aggregated = append(aggregated, result.articles...)
	}
	run.Stats.ArticlesFetched = len(aggregated)

	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("run cancelled: %w", ctxErr)
	}

	aggregated = dedupeByURL(aggregated)
	sort.SliceStable(aggregated, func(i, j int) bool {
		return aggregated[i].PublishedAt.After(aggregated[j].PublishedAt)
	})

	if len(aggregated) == 0 {
		return errors.New("no articles harvested from any source")
	}

	result, err := r.scoring.ScoreAndBrief(ctx, ports.ScoreRequest{
		RunID:    run.RunID,
		Date:     now.UTC().Format("2006-01-02"),
		Articles: aggregated,
		Topics:   r.opts.Topics,
	})
	if err != nil {
		return fmt.Errorf("score and brief: %w", err)
	}
	run.Stats.BriefGenerated = true

	if err := r.store.Set(ctx, store.CollectionBriefs, run.RunID, result.Brief); err != nil {
		return fmt.Errorf("persist brief: %w", err)
	}

	applyScores(aggregated, result.Scores)

	report, err := r.writer.StoreArticles(ctx, run.RunID, aggregated)
	if err != nil {
		return fmt.Errorf("store articles: %w", err)
	}
	run.Stats.ArticlesStored = report.StoredCount
	run.Stats.DuplicatesSkipped = report.DuplicatesSkipped
	for _, failedURL := range report.FailedURLs {
		run.Stats.Errors = append(run.Stats.Errors, fmt.Sprintf("store failed: %s", failedURL))
	}

	r.notify(ctx, run, &result.Brief)
	return nil
}

// harvest fans fetch+normalize work out to a bounded worker pool. Every
// source reaches a terminal result before harvest returns; a cancelled
// context stops new tasks from being issued while in-flight ones drain.
func (r *Runner) harvest(ctx context.Context, sources []domain.Source, now time.Time) []sourceResult {
	results := make([]sourceResult, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Concurrency)

	for i, src := range sources {
		if gctx.Err() != nil {
			results[i] = sourceResult{sourceID: src.ID, err: gctx.Err()}
			continue
		}
		g.Go(func() error {
			results[i] = r.harvestSource(gctx, src, now)
			// Per-source failures are data, never a reason to cancel
			// sibling fetches.
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (r *Runner) harvestSource(ctx context.Context, src domain.Source, now time.Time) sourceResult {
	fetcher, err := r.fetchers.Resolve(src.Type)
	if err != nil {
		r.recordOutcome(ctx, src.ID, ports.FetchOutcome{ErrorMessage: err.Error()})
		return sourceResult{sourceID: src.ID, err: err}
	}

	payload, err := fetcher.Fetch(ctx, src, fetch.Options{
		TimeWindowHours: r.opts.TimeWindowHours,
		MaxItems:        r.opts.MaxItemsPerSource,
	})
	if err != nil {
		r.logger.Warn("source fetch failed", "source_id", src.ID, "error", err)
		r.recordOutcome(ctx, src.ID, ports.FetchOutcome{ErrorMessage: err.Error()})
		return sourceResult{sourceID: src.ID, err: err}
	}

	articles := normalize.Batch(payload.Items, src.ID, normalize.Options{
		TimeWindowHours: r.opts.TimeWindowHours,
		MaxItems:        r.opts.MaxItemsPerSource,
	}, now)

	for i := range articles {
		if len(articles[i].Categories) == 0 && src.Category != "" {
			articles[i].Categories = []string{src.Category}
		}
	}

	r.logger.Debug("source harvested", "source_id", src.ID, "articles", len(articles))
	r.recordOutcome(ctx, src.ID, ports.FetchOutcome{Success: true, FetchedCount: len(articles)})
	return sourceResult{sourceID: src.ID, articles: articles}
}

func (r *Runner) recordOutcome(ctx context.Context, sourceID string, outcome ports.FetchOutcome) {
	outcome.At = time.Now().UTC()
	if err := r.registry.RecordFetchOutcome(ctx, sourceID, outcome); err != nil {
		r.logger.Warn("record fetch outcome", "source_id", sourceID, "error", err)
	}
}

func (r *Runner) notify(ctx context.Context, run *domain.IngestionRun, brief *domain.Brief) {
	if r.notifier == nil {
		return
	}
	notification := ports.Notification{
		Title:    fmt.Sprintf("Daily brief %s", brief.Date),
		Body:     brief.ExecutiveSummary,
		Priority: "normal",
	}
	if err := r.notifier.Send(ctx, notification); err != nil {
		// Delivery problems are reported in logs only; the run has
		// already succeeded.
		r.logger.Warn("brief notification failed", "run_id", run.RunID, "error", err)
	}
}

func (r *Runner) saveRun(ctx context.Context, run *domain.IngestionRun) error {
	return r.store.Set(ctx, store.CollectionRuns, run.RunID, run)
}

// GetRun returns the persisted state of a run, stats included.
func (r *Runner) GetRun(ctx context.Context, runID string) (*domain.IngestionRun, error) {
	raw, err := r.store.Get(ctx, store.CollectionRuns, runID)
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", runID, err)
	}
	var run domain.IngestionRun
	if err := json.Unmarshal(raw, &run); err != nil {
		return nil, fmt.Errorf("decode run %s: %w", runID, err)
	}
	return &run, nil
}

func dedupeByURL(articles []domain.Article) []domain.Article {
	seen := make(map[string]struct{}, len(articles))
	out := articles[:0]
	for _, article := range articles {
		if _, dup := seen[article.URL]; dup {
			continue
		}
		seen[article.URL] = struct{}{}
		out = append(out, article)
	}
	return out
}

func applyScores(articles []domain.Article, scores []ports.ArticleScore) {
	byURL := make(map[string]ports.ArticleScore, len(scores))
	for _, score := range scores {
		byURL[score.URL] = score
	}
	for i := range articles {
		if score, ok := byURL[articles[i].URL]; ok {
			articles[i].RelevanceScore = score.RelevanceScore
			articles[i].AISummary = score.AISummary
			articles[i].AITags = score.AITags
		}
	}
}
