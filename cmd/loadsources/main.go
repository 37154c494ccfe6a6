package main

import (
	"context"
	"flag"
	"os"

	"NewsBrief/internal/config"
	"NewsBrief/internal/registry"
	"NewsBrief/internal/store"
	"NewsBrief/pkg/logger"
)

func main() {
	csvPath := flag.String("csv", "data/sources.csv", "CSV file with source definitions")
	flag.Parse()

	log := logger.New("loadsources")
	cfg := config.Load()

	if cfg.Database.DSN == "" {
		log.Fatal("DATABASE_DSN is required; an in-memory store would discard the load")
	}

	pg, err := store.OpenPostgres(cfg.Database.DSN)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer pg.Close()

	file, err := os.Open(*csvPath)
	if err != nil {
		log.Fatalf("open %s: %v", *csvPath, err)
	}
	defer file.Close()

	report, err := registry.New(pg).LoadCSV(context.Background(), file)
	if err != nil {
		log.Fatalf("load sources: %v", err)
	}
	log.Printf("sources loaded: %d added, %d skipped", report.Added, report.Skipped)
}
