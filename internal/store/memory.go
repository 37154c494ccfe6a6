package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// MemoryStore is a mutex-guarded in-process document store. It backs tests
// and runs without external infrastructure when no DSN is configured.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string]json.RawMessage
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore builds an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string]map[string]json.RawMessage{}}
}

// Get returns the raw document or ErrNotFound.
func (m *MemoryStore) Get(ctx context.Context, collection, id string) (json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.data[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return doc, nil
}

// Set marshals and stores the document, replacing any previous version.
func (m *MemoryStore) Set(ctx context.Context, collection, id string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document %s/%s: %w", collection, id, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data[collection] == nil {
		m.data[collection] = map[string]json.RawMessage{}
	}
	m.data[collection][id] = raw
	return nil
}

// BatchWrite stores all documents or none: marshaling is validated up front
// so a bad document cannot leave the batch half-applied.
func (m *MemoryStore) BatchWrite(ctx context.Context, collection string, docs map[string]any) error {
	marshaled := make(map[string]json.RawMessage, len(docs))
	for id, doc := range docs {
		raw, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("marshal document %s/%s: %w", collection, id, err)
		}
		marshaled[id] = raw
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data[collection] == nil {
		m.data[collection] = map[string]json.RawMessage{}
	}
	for id, raw := range marshaled {
		m.data[collection][id] = raw
	}
	return nil
}

// QueryByField returns documents whose top-level field renders to the given
// string value, ordered by document id for deterministic reads.
func (m *MemoryStore) QueryByField(ctx context.Context, collection, field, value string) ([]json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.data[collection]))
	for id, raw := range m.data[collection] {
		var fields map[string]any
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("decode document %s/%s: %w", collection, id, err)
		}
		got, ok := fields[field]
		if !ok {
			continue
		}
		if fmt.Sprintf("%v", got) == value {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	out := make([]json.RawMessage, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.data[collection][id])
	}
	return out, nil
}
