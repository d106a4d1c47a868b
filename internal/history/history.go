// Package history keeps an append-only ledger of publish attempts in
// SQLite. The counter files stay authoritative for the state machine;
// the ledger exists so an operator can audit what was actually posted,
// especially after a "posted but not persisted" incident.
package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SchemaVersion is the latest schema version the migrator produces.
const SchemaVersion = 1

// Status of a recorded publish.
const (
	StatusPosted = "posted"
	// StatusPostedUnpersisted marks the dangerous case: the quote
	// tweet went out but the counter write failed afterwards.
	StatusPostedUnpersisted = "posted_unpersisted"
)

// Entry is one recorded publish.
type Entry struct {
	Counter  int
	TweetID  string
	Text     string
	Status   string
	PostedAt time.Time
}

// Ledger wraps the SQLite handle.
type Ledger struct {
	db *sql.DB
}

// Open opens (creating if needed) the ledger database at path and
// runs migrations.
func Open(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger db: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Ledger{db: db}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER PRIMARY KEY);`)
	if err != nil {
		return fmt.Errorf("migrate: create schema_migrations: %w", err)
	}

	var current int
	err = db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations;`).Scan(&current)
	if err != nil {
		return fmt.Errorf("migrate: read current version: %w", err)
	}
	if current >= SchemaVersion {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("migrate: begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.Exec(`
		CREATE TABLE IF NOT EXISTS publishes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			counter INTEGER NOT NULL,
			tweet_id TEXT NOT NULL,
			text TEXT NOT NULL,
			status TEXT NOT NULL,
			posted_at TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("migrate: create publishes table: %w", err)
	}

	_, err = tx.Exec(`CREATE INDEX IF NOT EXISTS idx_publishes_counter ON publishes(counter);`)
	if err != nil {
		return fmt.Errorf("migrate: create idx_publishes_counter: %w", err)
	}

	_, err = tx.Exec(`INSERT INTO schema_migrations(version) VALUES (?);`, SchemaVersion)
	if err != nil {
		return fmt.Errorf("migrate: record schema version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("migrate: commit: %w", err)
	}
	return nil
}

// Record appends one publish entry.
func (l *Ledger) Record(e Entry) error {
	_, err := l.db.Exec(
		`INSERT INTO publishes (counter, tweet_id, text, status, posted_at) VALUES (?, ?, ?, ?, ?);`,
		e.Counter, e.TweetID, e.Text, e.Status, e.PostedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("record publish: %w", err)
	}
	return nil
}

// Recent returns up to n entries, newest first.
func (l *Ledger) Recent(n int) ([]Entry, error) {
	rows, err := l.db.Query(
		`SELECT counter, tweet_id, text, status, posted_at FROM publishes ORDER BY id DESC LIMIT ?;`, n,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent publishes: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var postedAt string
		if err := rows.Scan(&e.Counter, &e.TweetID, &e.Text, &e.Status, &postedAt); err != nil {
			return nil, fmt.Errorf("scan publish row: %w", err)
		}
		e.PostedAt, err = time.Parse(time.RFC3339, postedAt)
		if err != nil {
			return nil, fmt.Errorf("parse posted_at %q: %w", postedAt, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close releases the database handle.
func (l *Ledger) Close() error {
	return l.db.Close()
}
