package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"NewsBrief/internal/app"
	"NewsBrief/internal/config"
	"NewsBrief/internal/logging"
	"NewsBrief/internal/view"
)

func main() {
	once := flag.Bool("once", false, "execute a single ingestion run and exit")
	sources := flag.Bool("sources", false, "print source health and exit")
	flag.Parse()

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case *sources:
		list, err := application.Registry().ListSources(ctx)
		if err != nil {
			logger.Error("list sources", "error", err)
			os.Exit(1)
		}
		fmt.Print(view.RenderSourceTable(list))

	case *once:
		run, err := application.RunOnce(ctx)
		if run != nil {
			fmt.Print(view.RenderRunSummary(run))
		}
		if err != nil {
			os.Exit(1)
		}

	default:
		if err := application.Serve(ctx); err != nil {
			logger.Error("application stopped", "error", err)
			os.Exit(1)
		}
	}
}
