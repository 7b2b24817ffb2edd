// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package citelink implements the Citation Linker (C11): resolving each
// normalized reference of a just-ingested Literature to an existing
// Literature, an Unresolved placeholder, or a freshly created one (spec
// §4.11), and sweeping Unresolved nodes for promotion once a match lands.
package citelink

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// CandidateIndex is a local SQLite FTS5 title index used to generate a
// short list of fuzzy-match candidates before the full composite score
// runs (spec §9 "Gatekeeper pattern"), grounded on the teacher's
// items_fts virtual table in internal/knowledge/store.go, repurposed from
// indexing extracted paper passages to indexing Literature titles by LID.
type CandidateIndex struct {
	db *sql.DB
}

// Candidate is one title-index hit, carrying enough of the underlying
// Literature's metadata (stored alongside the title at Add time) for the
// composite scorer to check authors and year without a round trip to the
// graph store.
type Candidate struct {
	LID     string
	Title   string
	Authors []string
	Year    int
}

// NewCandidateIndex opens (creating if absent) the SQLite database at path.
func NewCandidateIndex(path string) (*CandidateIndex, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening candidate index: %w", err)
	}
	idx := &CandidateIndex{db: db}
	if err := idx.createSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return idx, nil
}

func (c *CandidateIndex) createSchema() error {
	_, err := c.db.Exec(`CREATE VIRTUAL TABLE IF NOT EXISTS titles_fts USING fts5(lid UNINDEXED, title, authors UNINDEXED, year UNINDEXED)`)
	return err
}

// Close releases the database connection.
func (c *CandidateIndex) Close() error { return c.db.Close() }

// Add indexes lid's title and enough metadata for scoring, so future
// references can find it as a candidate. Safe to call more than once per
// lid (spec doesn't require de-dup here since Search results are scored,
// not trusted as-is).
func (c *CandidateIndex) Add(ctx context.Context, lid, title string, authors []string, year int) error {
	if title == "" {
		return nil
	}
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO titles_fts (lid, title, authors, year) VALUES (?, ?, ?, ?)`,
		lid, title, strings.Join(authors, "; "), year)
	return err
}

// Search returns up to limit titles whose FTS5 match score is non-zero
// against query, ordered by relevance (spec §9 "cheap title-similarity
// first" gatekeeper pass operates on this candidate set).
func (c *CandidateIndex) Search(ctx context.Context, query string, limit int) ([]Candidate, error) {
	if query == "" {
		return nil, nil
	}
	rows, err := c.db.QueryContext(ctx,
		`SELECT lid, title, authors, year FROM titles_fts WHERE titles_fts MATCH ? ORDER BY rank LIMIT ?`,
		ftsQuery(query), limit)
	if err != nil {
		return nil, fmt.Errorf("searching candidate index: %w", err)
	}
	defer rows.Close()

	var out []Candidate
	for rows.Next() {
		var cand Candidate
		var authors string
		if err := rows.Scan(&cand.LID, &cand.Title, &authors, &cand.Year); err != nil {
			return nil, err
		}
		if authors != "" {
			cand.Authors = strings.Split(authors, "; ")
		}
		out = append(out, cand)
	}
	return out, rows.Err()
}

// ftsQuery quotes query as an FTS5 phrase so punctuation in titles (colons,
// hyphens) doesn't trip the MATCH syntax.
func ftsQuery(query string) string {
	return `"` + query + `"`
}
