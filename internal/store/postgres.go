package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	// Registers the "postgres" database/sql driver.
	_ "github.com/lib/pq"

	"github.com/zabloncharles/eventportal/internal/record"
)

// PostgresSource reads event and group documents from Postgres. Rows
// store the original document as jsonb, so decoding goes through the
// same fallible path as every other source: a malformed document is
// logged and skipped, never fatal.
type PostgresSource struct {
	db *sql.DB
}

// OpenPostgres connects to the database and verifies the connection.
func OpenPostgres(ctx context.Context, databaseURL string) (*PostgresSource, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &PostgresSource{db: db}, nil
}

// NewPostgresSource wraps an existing connection pool.
func NewPostgresSource(db *sql.DB) *PostgresSource {
	return &PostgresSource{db: db}
}

// DB exposes the underlying pool for health checks.
func (s *PostgresSource) DB() *sql.DB {
	return s.db
}

// Close releases the connection pool.
func (s *PostgresSource) Close() error {
	return s.db.Close()
}

// Events fetches the full event snapshot.
func (s *PostgresSource) Events(ctx context.Context) ([]record.Event, error) {
	docs, err := s.fetchDocuments(ctx, "SELECT id, doc FROM events ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("fetch events: %w", err)
	}

	events := make([]record.Event, 0, len(docs))
	for _, doc := range docs {
		e, ok := record.DecodeEvent(doc)
		if !ok {
			slog.WarnContext(ctx, "skipping undecodable event document")
			continue
		}
		events = append(events, e)
	}
	return events, nil
}

// Groups fetches the full group snapshot.
func (s *PostgresSource) Groups(ctx context.Context) ([]record.Group, error) {
	docs, err := s.fetchDocuments(ctx, "SELECT id, doc FROM groups ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("fetch groups: %w", err)
	}

	groups := make([]record.Group, 0, len(docs))
	for _, doc := range docs {
		g, ok := record.DecodeGroup(doc)
		if !ok {
			slog.WarnContext(ctx, "skipping undecodable group document")
			continue
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// fetchDocuments runs a (id, jsonb) query and unmarshals each row into
// a raw document map, injecting the row id so the decoder always sees
// one. Rows with corrupt JSON are skipped with a warning.
func (s *PostgresSource) fetchDocuments(ctx context.Context, query string) ([]map[string]any, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []map[string]any
	for rows.Next() {
		var id string
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		doc := map[string]any{}
		if err := json.Unmarshal(raw, &doc); err != nil {
			slog.WarnContext(ctx, "skipping row with corrupt document json",
				"id", id, "error", err)
			continue
		}
		doc["id"] = id

		docs = append(docs, doc)
	}

	return docs, rows.Err()
}
