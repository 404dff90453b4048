// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package library records every citation bibsearch writes in a SQLite
// history database.
package library

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/bibsearch/pkg/types"
)

const defaultListLimit = 20

// Entry is one citation written to a .bib file.
type Entry struct {
	Key     string
	Record  types.Record
	BibPath string
	AddedAt time.Time
}

// Store manages the history SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database at path and creates the
// schema if it does not exist.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS citations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			key TEXT NOT NULL,
			source TEXT NOT NULL,
			title TEXT NOT NULL,
			authors TEXT NOT NULL,
			year TEXT NOT NULL,
			identifier TEXT,
			venue TEXT,
			bib_path TEXT NOT NULL,
			added_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_citations_key ON citations(key)`,
		`CREATE INDEX IF NOT EXISTS idx_citations_identifier ON citations(identifier)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Add records e. A zero AddedAt is set to the current time.
func (s *Store) Add(ctx context.Context, e Entry) error {
	if e.AddedAt.IsZero() {
		e.AddedAt = time.Now()
	}
	authors, err := json.Marshal(e.Record.Authors)
	if err != nil {
		return fmt.Errorf("encoding authors: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO citations (key, source, title, authors, year, identifier, venue, bib_path, added_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Key, string(e.Record.Source), e.Record.Title, string(authors), e.Record.Year,
		e.Record.Identifier, e.Record.Venue, e.BibPath, e.AddedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting citation %s: %w", e.Key, err)
	}
	return nil
}

// ListOptions filters List.
type ListOptions struct {
	// Limit caps the number of entries (default 20).
	Limit int
	// Source keeps only entries from one source when set.
	Source types.Source
	// Title keeps only entries whose title contains this text.
	Title string
}

// List returns the most recent entries first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]Entry, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := `SELECT key, source, title, authors, year, identifier, venue, bib_path, added_at
		FROM citations WHERE 1=1`
	var args []any
	if opts.Source != "" {
		query += ` AND source = ?`
		args = append(args, string(opts.Source))
	}
	if opts.Title != "" {
		query += ` AND title LIKE ?`
		args = append(args, "%"+opts.Title+"%")
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying citations: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e                     Entry
			source, authors, when string
			identifier, venue     sql.NullString
		)
		if err := rows.Scan(&e.Key, &source, &e.Record.Title, &authors, &e.Record.Year,
			&identifier, &venue, &e.BibPath, &when); err != nil {
			return nil, fmt.Errorf("scanning citation: %w", err)
		}
		e.Record.Source = types.Source(source)
		e.Record.Identifier = identifier.String
		e.Record.Venue = venue.String
		if err := json.Unmarshal([]byte(authors), &e.Record.Authors); err != nil {
			return nil, fmt.Errorf("decoding authors for %s: %w", e.Key, err)
		}
		if e.Record.Authors == nil {
			e.Record.Authors = []string{}
		}
		if t, err := time.Parse(time.RFC3339Nano, when); err == nil {
			e.AddedAt = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// FindByIdentifier returns the most recent entry citing identifier, or
// nil when it has never been cited.
func (s *Store) FindByIdentifier(ctx context.Context, src types.Source, identifier string) (*Entry, error) {
	if identifier == "" {
		return nil, nil
	}
	var e Entry
	var when string
	err := s.db.QueryRowContext(ctx,
		`SELECT key, bib_path, added_at FROM citations
		 WHERE source = ? AND identifier = ? ORDER BY id DESC LIMIT 1`,
		string(src), identifier,
	).Scan(&e.Key, &e.BibPath, &when)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("looking up %s: %w", identifier, err)
	}
	if t, err := time.Parse(time.RFC3339Nano, when); err == nil {
		e.AddedAt = t
	}
	return &e, nil
}
