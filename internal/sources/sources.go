// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sources implements the External Source Clients (C2): thin typed
// clients over CrossRef, Semantic Scholar, the ArXiv API, OpenAlex OA
// lookups, and a TEI-XML PDF parser, each mapping provider payloads onto
// the shared Work schema.
package sources

import "github.com/meshintel/litingest/internal/domain"

// Work is the normalized schema every client maps its provider's payload
// onto (spec §4.2 "shared normalized schema").
type Work struct {
	Title     string
	Authors   []domain.Author
	Year      int
	Journal   string
	Abstract  string
	Fulltext  string
	DOI       string
	ArxivID   string
	PDFURL    string
	Provider  string
	Reference []domain.ParsedRef
}
