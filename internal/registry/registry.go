// Package registry keeps source configuration and health state in the
// document store.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"NewsBrief/internal/domain"
	"NewsBrief/internal/ports"
	"NewsBrief/internal/store"
)

// Registry implements ports.SourceRegistry over the sources collection.
type Registry struct {
	store store.Store
}

var _ ports.SourceRegistry = (*Registry)(nil)

// New wires a document store.
func New(st store.Store) *Registry {
	return &Registry{store: st}
}

// ListEnabledSources returns every source participating in runs, ordered
// by id.
func (r *Registry) ListEnabledSources(ctx context.Context) ([]domain.Source, error) {
	return r.queryByEnabled(ctx, "true")
}

// ListSources returns all sources regardless of enabled state, for the
// read-only presentation layer.
func (r *Registry) ListSources(ctx context.Context) ([]domain.Source, error) {
	enabled, err := r.queryByEnabled(ctx, "true")
	if err != nil {
		return nil, err
	}
	disabled, err := r.queryByEnabled(ctx, "false")
	if err != nil {
		return nil, err
	}

	all := append(enabled, disabled...)
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all, nil
}

func (r *Registry) queryByEnabled(ctx context.Context, value string) ([]domain.Source, error) {
	docs, err := r.store.QueryByField(ctx, store.CollectionSources, "enabled", value)
	if err != nil {
		return nil, fmt.Errorf("query sources: %w", err)
	}

	sources := make([]domain.Source, 0, len(docs))
	for _, raw := range docs {
		var src domain.Source
		if err := json.Unmarshal(raw, &src); err != nil {
			return nil, fmt.Errorf("decode source: %w", err)
		}
		sources = append(sources, src)
	}
	return sources, nil
}

// RecordFetchOutcome folds one fetch attempt into the source's health
// fields. It is idempotent for a given outcome and is the run's single
// writer for that source.
func (r *Registry) RecordFetchOutcome(ctx context.Context, sourceID string, outcome ports.FetchOutcome) error {
	raw, err := r.store.Get(ctx, store.CollectionSources, sourceID)
	if err != nil {
		return fmt.Errorf("load source %s: %w", sourceID, err)
	}

	var src domain.Source
	if err := json.Unmarshal(raw, &src); err != nil {
		return fmt.Errorf("decode source %s: %w", sourceID, err)
	}

	at := outcome.At
	if at.IsZero() {
		at = time.Now().UTC()
	}

	src.LastChecked = &at
	if outcome.Success {
		src.LastSuccess = &at
		src.LastError = ""
		src.ArticlesLast24h = outcome.FetchedCount
	} else {
		src.LastError = outcome.ErrorMessage
	}

	if err := r.store.Set(ctx, store.CollectionSources, sourceID, src); err != nil {
		return fmt.Errorf("update source %s: %w", sourceID, err)
	}
	return nil
}
