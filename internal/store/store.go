package store

import (
	"context"
	"encoding/json"
	"errors"
)

// Collections used by the pipeline.
const (
	CollectionSources  = "sources"
	CollectionArticles = "articles"
	CollectionRuns     = "runs"
	CollectionBriefs   = "briefs"
)

// ErrNotFound is returned by Get when no document exists under the id.
var ErrNotFound = errors.New("document not found")

// Store is the narrow document contract the pipeline depends on. Keeping it
// this small lets every component run against the in-memory implementation
// in tests.
type Store interface {
	Get(ctx context.Context, collection, id string) (json.RawMessage, error)
	Set(ctx context.Context, collection, id string, doc any) error
	BatchWrite(ctx context.Context, collection string, docs map[string]any) error
	QueryByField(ctx context.Context, collection, field, value string) ([]json.RawMessage, error)
}
