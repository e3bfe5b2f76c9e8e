// Package registry provides durable storage for token IR documents.
// Schemas are keyed by (schema id, version) so every historic version a
// decoder may still meet on the wire stays retrievable. Documents are
// stored as canonical JSON; re-storing an identical document is a no-op.
package registry

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ujos/simple-binary-encoding/internal/ir"
)

//go:embed schema.sql
var schemaSQL string

// ErrNotFound is returned when no stored schema matches the key.
var ErrNotFound = errors.New("schema not found")

// Registry is a SQLite-backed store of IR documents.
// Uses WAL mode for concurrent read access.
type Registry struct {
	db *sql.DB
}

// Entry describes one stored schema without its document body.
type Entry struct {
	SchemaID  int64
	Version   int64
	Package   string
	Namespace string
	StoredAt  string
}

// Open creates or opens a registry database at the given path.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode
//   - 5-second busy timeout for lock contention
//
// This function is idempotent - safe to call multiple times.
func Open(path string) (*Registry, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Registry{db: db}, nil
}

// Close closes the database connection.
func (r *Registry) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Put stores a validated IR document under its own (schema id, version).
// The document is canonicalized before storage; storing the same document
// twice is idempotent, while storing a different document under an
// existing key replaces it.
func (r *Registry) Put(ctx context.Context, doc *ir.Ir) error {
	data, err := ir.Marshal(doc)
	if err != nil {
		return fmt.Errorf("put schema: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO schemas (schema_id, version, package, namespace, document)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(schema_id, version) DO UPDATE SET
			package = excluded.package,
			namespace = excluded.namespace,
			document = excluded.document
	`,
		doc.ID,
		doc.Version,
		doc.Package,
		doc.Namespace,
		data,
	)
	if err != nil {
		return fmt.Errorf("put schema: %w", err)
	}

	return nil
}

// Get loads one stored schema by id and version.
func (r *Registry) Get(ctx context.Context, schemaID, version int64) (*ir.Ir, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx, `
		SELECT document FROM schemas
		WHERE schema_id = ? AND version = ?
	`, schemaID, version).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("schema %d version %d: %w", schemaID, version, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get schema: %w", err)
	}

	doc, err := ir.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("get schema %d version %d: %w", schemaID, version, err)
	}
	return doc, nil
}

// Latest loads the highest stored version of a schema id.
func (r *Registry) Latest(ctx context.Context, schemaID int64) (*ir.Ir, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx, `
		SELECT document FROM schemas
		WHERE schema_id = ?
		ORDER BY version DESC
		LIMIT 1
	`, schemaID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("schema %d: %w", schemaID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("latest schema: %w", err)
	}

	doc, err := ir.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("latest schema %d: %w", schemaID, err)
	}
	return doc, nil
}

// List returns every stored schema, ordered by id then version.
func (r *Registry) List(ctx context.Context) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT schema_id, version, package, namespace, stored_at
		FROM schemas
		ORDER BY schema_id ASC, version ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list schemas: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.SchemaID, &e.Version, &e.Package, &e.Namespace, &e.StoredAt); err != nil {
			return nil, fmt.Errorf("scan schema row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate schemas: %w", err)
	}

	return entries, nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}
