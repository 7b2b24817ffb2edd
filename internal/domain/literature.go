// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package domain holds the core record types shared across the ingestion
// pipeline: Literature, Alias, Unresolved, and Task.
package domain

import "time"

// Identifiers collects the external handles a Literature is known by.
// Identifier fields are set-valued and monotonically grow; at most one
// non-null value exists per primary identifier slot.
type Identifiers struct {
	DOI         string   `json:"doi,omitempty" yaml:"doi,omitempty"`
	ArxivID     string   `json:"arxiv_id,omitempty" yaml:"arxiv_id,omitempty"`
	PMID        string   `json:"pmid,omitempty" yaml:"pmid,omitempty"`
	Fingerprint string   `json:"fingerprint,omitempty" yaml:"fingerprint,omitempty"`
	SourceURLs  []string `json:"source_urls,omitempty" yaml:"source_urls,omitempty"`
}

// Author is one entry of a Literature's author list.
type Author struct {
	Name        string `json:"name" yaml:"name"`
	Sequence    int    `json:"sequence,omitempty" yaml:"sequence,omitempty"`
	Affiliation string `json:"affiliation,omitempty" yaml:"affiliation,omitempty"`
}

// Metadata is the normalized bibliographic record produced by the
// Metadata Fetcher waterfall (C5).
type Metadata struct {
	Title          string   `json:"title" yaml:"title"`
	Authors        []Author `json:"authors" yaml:"authors"`
	Year           int      `json:"year,omitempty" yaml:"year,omitempty"`
	Journal        string   `json:"journal,omitempty" yaml:"journal,omitempty"`
	Abstract       string   `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	Keywords       []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	SourcePriority []string `json:"source_priority,omitempty" yaml:"source_priority,omitempty"`
}

// Content is the fulltext-derived payload produced by the Content Fetcher
// (C4) and subsequent parsing.
type Content struct {
	PDFURL         string  `json:"pdf_url,omitempty" yaml:"pdf_url,omitempty"`
	SourcePageURL  string  `json:"source_page_url,omitempty" yaml:"source_page_url,omitempty"`
	Fulltext       string  `json:"fulltext,omitempty" yaml:"fulltext,omitempty"`
	ParsingMethod  string  `json:"parsing_method,omitempty" yaml:"parsing_method,omitempty"`
	QualityScore   float64 `json:"quality_score,omitempty" yaml:"quality_score,omitempty"`
}

// Literature is the canonical record (spec §3 `L`).
type Literature struct {
	LID         string       `json:"lid" yaml:"lid"`
	Identifiers Identifiers  `json:"identifiers" yaml:"identifiers"`
	Metadata    Metadata     `json:"metadata" yaml:"metadata"`
	Content     Content      `json:"content" yaml:"content"`
	TaskInfo    *TaskSummary `json:"task_info,omitempty" yaml:"task_info,omitempty"`
	CreatedAt   time.Time    `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at" yaml:"updated_at"`
}

// TaskSummary is the embedded snapshot of the last/ongoing task that
// produced or is producing this Literature.
type TaskSummary struct {
	TaskID           string     `json:"task_id" yaml:"task_id"`
	ExecutionStatus  TaskStatus `json:"execution_status" yaml:"execution_status"`
	ResultType       ResultType `json:"result_type,omitempty" yaml:"result_type,omitempty"`
}

// AliasType enumerates the kinds of external handle an Alias may carry.
type AliasType string

const (
	AliasDOI     AliasType = "doi"
	AliasArxiv   AliasType = "arxiv"
	AliasPMID    AliasType = "pmid"
	AliasURL     AliasType = "url"
	AliasPDFURL  AliasType = "pdf_url"
	AliasTitleFP AliasType = "title_fp"
	AliasPDFMD5  AliasType = "pdf_md5"
)

// Alias is an external handle pointing at a Literature (spec §3 `A`).
// (alias_type, alias_value) is globally unique.
type Alias struct {
	Type      AliasType `json:"alias_type" yaml:"alias_type"`
	Value     string    `json:"alias_value" yaml:"alias_value"`
	LID       string    `json:"lid" yaml:"lid"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// ParsedRef is the best-effort parse of a raw reference string, used both
// by Unresolved nodes and by the References Fetcher's normalized output.
type ParsedRef struct {
	Title   string   `json:"title,omitempty" yaml:"title,omitempty"`
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`
	Year    int      `json:"year,omitempty" yaml:"year,omitempty"`
	DOI     string   `json:"doi,omitempty" yaml:"doi,omitempty"`
	ArxivID string   `json:"arxiv_id,omitempty" yaml:"arxiv_id,omitempty"`
}

// Unresolved is a placeholder node for a cited-but-unknown work (spec §3
// `U`). It is promoted to Literature once a matching submission arrives.
type Unresolved struct {
	ID        string     `json:"id" yaml:"id"`
	RawText   string     `json:"raw_text" yaml:"raw_text"`
	Parsed    *ParsedRef `json:"parsed,omitempty" yaml:"parsed,omitempty"`
	CreatedAt time.Time  `json:"created_at" yaml:"created_at"`
}

// CitesEdge is a (Literature)-[:CITES]->(Literature|Unresolved) edge.
type CitesEdge struct {
	SrcLID     string  `json:"src_lid" yaml:"src_lid"`
	DstID      string  `json:"dst_id" yaml:"dst_id"`
	DstIsUnres bool    `json:"dst_is_unresolved" yaml:"dst_is_unresolved"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
	Source     string  `json:"source" yaml:"source"`
}
