package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
)

// PostgresStore keeps every collection in a single documents table with a
// jsonb payload, matching the document-store contract the pipeline expects.
type PostgresStore struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

var _ Store = (*PostgresStore)(nil)

// OpenPostgres connects, ensures the schema, and returns a ready store.
func OpenPostgres(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	s := &PostgresStore{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate documents table: %w", err)
	}
	return s, nil
}

func (s *PostgresStore) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS documents (
        collection TEXT NOT NULL,
        id TEXT NOT NULL,
        data JSONB NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        PRIMARY KEY (collection, id))`)
	return err
}

// Close releases the underlying connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Get returns the raw document or ErrNotFound.
func (s *PostgresStore) Get(ctx context.Context, collection, id string) (json.RawMessage, error) {
	query, args, err := s.sb.Select("data").
		From("documents").
		Where(sq.Eq{"collection": collection, "id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get query: %w", err)
	}

	var raw []byte
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query document %s/%s: %w", collection, id, err)
	}
	return json.RawMessage(raw), nil
}

// Set upserts the document under the id.
func (s *PostgresStore) Set(ctx context.Context, collection, id string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document %s/%s: %w", collection, id, err)
	}

	query, args, err := s.sb.Insert("documents").
		Columns("collection", "id", "data").
		Values(collection, id, raw).
		Suffix("ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()").
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert document %s/%s: %w", collection, id, err)
	}
	return nil
}

// BatchWrite upserts all documents with a single multi-row statement.
func (s *PostgresStore) BatchWrite(ctx context.Context, collection string, docs map[string]any) error {
	if len(docs) == 0 {
		return nil
	}

	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	insert := s.sb.Insert("documents").Columns("collection", "id", "data")
	for _, id := range ids {
		raw, err := json.Marshal(docs[id])
		if err != nil {
			return fmt.Errorf("marshal document %s/%s: %w", collection, id, err)
		}
		insert = insert.Values(collection, id, raw)
	}

	query, args, err := insert.
		Suffix("ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()").
		ToSql()
	if err != nil {
		return fmt.Errorf("build batch query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("batch write %d documents to %s: %w", len(docs), collection, err)
	}
	return nil
}

// QueryByField matches documents whose jsonb field renders to the value,
// ordered by id.
func (s *PostgresStore) QueryByField(ctx context.Context, collection, field, value string) ([]json.RawMessage, error) {
	query, args, err := s.sb.Select("data").
		From("documents").
		Where(sq.Eq{"collection": collection}).
		Where(sq.Expr("data->>? = ?", field, value)).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build field query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s by %s: %w", collection, field, err)
	}
	defer rows.Close()

	var out []json.RawMessage
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		out = append(out, json.RawMessage(raw))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return out, nil
}
