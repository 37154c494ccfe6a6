package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"NewsBrief/internal/config"
	"NewsBrief/internal/domain"
	"NewsBrief/internal/fetch"
	"NewsBrief/internal/infrastructure/notify"
	cronscheduler "NewsBrief/internal/infrastructure/scheduler"
	"NewsBrief/internal/logging"
	"NewsBrief/internal/ports"
	"NewsBrief/internal/registry"
	"NewsBrief/internal/scoring"
	"NewsBrief/internal/store"
	"NewsBrief/internal/usecase"
)

// Application wires configuration to the ingestion pipeline and its drivers.
type Application struct {
	cfg        config.Config
	runner     *usecase.Runner
	registry   *registry.Registry
	scheduler  *usecase.Scheduler
	closeStore func() error
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	var st store.Store
	var closeStore func() error
	if cfg.Database.DSN != "" {
		pg, err := store.OpenPostgres(cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		st = pg
		closeStore = pg.Close
	} else {
		baseLogger.Warn("no database DSN configured, using in-memory store")
		st = store.NewMemoryStore()
	}

	sourceRegistry := registry.New(st)

	fetchers := fetch.NewRegistry()
	fetchers.Register(fetch.NewRSSFetcher(nil, baseLogger.With("component", "fetch.rss")))
	fetchers.Register(fetch.NewWebpageFetcher(nil, baseLogger.With("component", "fetch.webpage")))
	fetchers.Register(fetch.NewAPIFetcher(nil, baseLogger.With("component", "fetch.api")))

	gateway := scoring.NewClient(cfg.Scoring, baseLogger.With("component", "scoring"))

	var notifier ports.Notifier
	if cfg.Notifications.WebhookURL != "" {
		notifier = notify.NewWebhookNotifier(
			cfg.Notifications.WebhookURL,
			cfg.Notifications.Channel,
			cfg.Notifications.Recipient)
	}

	writer := store.NewWriter(st, baseLogger.With("component", "store.writer"))

	runner := usecase.NewRunner(usecase.RunnerDeps{
		Registry: sourceRegistry,
		Fetchers: fetchers,
		Scoring:  gateway,
		Writer:   writer,
		Store:    st,
		Notifier: notifier,
		Logger:   baseLogger.With("component", "runner"),
	}, usecase.RunnerOptions{
		TimeWindowHours:   cfg.Pipeline.TimeWindowHours,
		MaxItemsPerSource: cfg.Pipeline.MaxItemsPerSource,
		Concurrency:       cfg.Pipeline.Concurrency,
		Topics:            cfg.Scoring.Topics,
	})

	driver := cronscheduler.NewCronScheduler(cfg.Scheduler.CronExpression, cfg.Scheduler.Location())
	sched := usecase.NewScheduler(driver, runner, baseLogger.With("component", "scheduler"))

	return &Application{
		cfg:        cfg,
		runner:     runner,
		registry:   sourceRegistry,
		scheduler:  sched,
		closeStore: closeStore,
	}, nil
}

// RunOnce executes a single ingestion run.
func (a *Application) RunOnce(ctx context.Context) (*domain.IngestionRun, error) {
	return a.runner.Execute(ctx, time.Now().In(a.cfg.Scheduler.Location()))
}

// Serve starts the scheduler and blocks until the context is cancelled.
func (a *Application) Serve(ctx context.Context) error {
	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return a.scheduler.Stop(stopCtx)
}

// Registry exposes the source registry for the presentation layer and the
// bulk loader.
func (a *Application) Registry() *registry.Registry {
	return a.registry
}

// Close releases held resources.
func (a *Application) Close() error {
	if a.closeStore != nil {
		return a.closeStore()
	}
	return nil
}
