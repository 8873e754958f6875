// Package journal provides a SQLite-backed record of ingested documents.
// The vector store holds the passages themselves; the journal answers the
// cheaper operational question "what has been ingested, when, and how big
// was it" without a round-trip to the vector backend.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register "sqlite" driver
)

// Record describes one ingested document.
type Record struct {
	// Document is the document name as presented at ingest time.
	Document string
	// Passages is the number of passages stored for the document.
	Passages int
	// IngestedAt is when the document was last ingested.
	IngestedAt time.Time
}

// Journal persists per-document ingest records. Re-ingesting a document
// replaces its previous record. Implementations must be safe for concurrent
// use.
type Journal interface {
	// Record upserts the entry for one document.
	Record(ctx context.Context, document string, passages int) error
	// List returns all records ordered by most recent ingest first.
	List(ctx context.Context) ([]Record, error)
	// Close releases any resources held by the journal.
	Close() error
}

// SQLiteJournal is a Journal backed by a local SQLite database.
type SQLiteJournal struct {
	// db is the underlying database connection pool.
	db *sql.DB
}

// DefaultDBPath returns the default path for the ingest journal database.
// It resolves to ~/.docsearch/journal.db, creating the directory if needed.
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("journal: could not determine home directory: %w", err)
	}
	dir := filepath.Join(home, ".docsearch")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("journal: could not create %s: %w", dir, err)
	}
	return filepath.Join(dir, "journal.db"), nil
}

// Open opens (or creates) a SQLiteJournal at the given path and runs the
// schema migration. Use ":memory:" for an in-memory database in tests.
func Open(path string) (*SQLiteJournal, error) {
	// WAL mode improves concurrent read performance and is safe for single-host use.
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", path, err)
	}
	// Limit to a single writer connection to avoid SQLITE_BUSY under concurrent writes.
	db.SetMaxOpenConns(1)

	j := &SQLiteJournal{db: db}
	if err := j.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return j, nil
}

// migrate creates the schema if it does not already exist.
func (j *SQLiteJournal) migrate() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS documents (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    name         TEXT    NOT NULL UNIQUE,
    passages     INTEGER NOT NULL,
    ingested_at  INTEGER NOT NULL  -- Unix timestamp (seconds)
);
CREATE INDEX IF NOT EXISTS idx_documents_ingested
    ON documents (ingested_at);
`
	if _, err := j.db.Exec(ddl); err != nil {
		return fmt.Errorf("journal: migrate: %w", err)
	}
	return nil
}

// Record upserts the entry for one document. Re-ingesting overwrites the
// passage count and timestamp, matching the replace semantics of the vector
// store's deterministic point identities.
func (j *SQLiteJournal) Record(ctx context.Context, document string, passages int) error {
	const q = `
INSERT INTO documents (name, passages, ingested_at) VALUES (?, ?, ?)
ON CONFLICT(name) DO UPDATE SET passages = excluded.passages, ingested_at = excluded.ingested_at`
	if _, err := j.db.ExecContext(ctx, q, document, passages, time.Now().Unix()); err != nil {
		return fmt.Errorf("journal: record %s: %w", document, err)
	}
	return nil
}

// List returns all records ordered by most recent ingest first.
func (j *SQLiteJournal) List(ctx context.Context) ([]Record, error) {
	const q = `SELECT name, passages, ingested_at FROM documents ORDER BY ingested_at DESC, id DESC`

	rows, err := j.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("journal: list: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var ts int64
		if err := rows.Scan(&r.Document, &r.Passages, &ts); err != nil {
			return nil, fmt.Errorf("journal: list scan: %w", err)
		}
		r.IngestedAt = time.Unix(ts, 0)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("journal: list rows: %w", err)
	}
	return records, nil
}

// Close releases the database connection pool.
func (j *SQLiteJournal) Close() error {
	if err := j.db.Close(); err != nil {
		return fmt.Errorf("journal: close: %w", err)
	}
	return nil
}
