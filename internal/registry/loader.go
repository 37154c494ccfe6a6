package registry

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"NewsBrief/internal/domain"
	"NewsBrief/internal/store"
)

// LoadReport summarizes one bulk load.
type LoadReport struct {
	Added   int
	Skipped int
}

var loaderColumns = []string{"source_id", "name", "type", "url", "category", "enabled"}

// LoadCSV populates the sources collection from tabular input with columns
// source_id,name,type,url,category,enabled. Existing ids are left untouched,
// health fields included, so repeated loads are idempotent. New ids are
// inserted with health fields zero.
func (r *Registry) LoadCSV(ctx context.Context, input io.Reader) (LoadReport, error) {
	reader := csv.NewReader(input)

	header, err := reader.Read()
	if err != nil {
		return LoadReport{}, fmt.Errorf("read csv header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, column := range loaderColumns {
		if _, ok := index[column]; !ok {
			return LoadReport{}, fmt.Errorf("csv missing column %q", column)
		}
	}

	var report LoadReport
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return report, fmt.Errorf("read csv row: %w", err)
		}

		id := strings.TrimSpace(record[index["source_id"]])
		if id == "" {
			continue
		}

		if _, err := r.store.Get(ctx, store.CollectionSources, id); err == nil {
			report.Skipped++
			continue
		} else if !errors.Is(err, store.ErrNotFound) {
			return report, fmt.Errorf("check source %s: %w", id, err)
		}

		src := domain.Source{
			ID:       id,
			Name:     strings.TrimSpace(record[index["name"]]),
			Type:     domain.SourceType(strings.TrimSpace(record[index["type"]])),
			URL:      strings.TrimSpace(record[index["url"]]),
			Category: strings.TrimSpace(record[index["category"]]),
			Enabled:  strings.EqualFold(strings.TrimSpace(record[index["enabled"]]), "true"),
		}
		if err := r.store.Set(ctx, store.CollectionSources, id, src); err != nil {
			return report, fmt.Errorf("insert source %s: %w", id, err)
		}
		report.Added++
	}
	return report, nil
}
