// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metadata implements the Metadata Fetcher (C5): the waterfall of
// spec §4.5, stopping at the first source that returns a titled work.
// Results from different sources are not merged: the winning source's
// fields are used as they are.
package metadata

import (
	"context"

	"github.com/meshintel/litingest/internal/domain"
	"github.com/meshintel/litingest/internal/errkind"
	"github.com/meshintel/litingest/internal/sources"
)

// Attempt is one waterfall step's outcome.
type Attempt struct {
	Work       *sources.Work
	Source     string
	Confidence float64
}

// Result is the merged metadata output plus provenance bookkeeping (spec
// §4.5 "Records source_priority").
type Result struct {
	Metadata       domain.Metadata
	SourcePriority []string
	NextAction     string // set when every step failed (spec §4.5 "provide DOI", "upload PDF")

	// References is the winning attempt's reference list, when its source
	// surfaced one alongside bibliographic metadata (spec §4.6 step 1).
	References []domain.ParsedRef
}

// Threshold is the minimum confidence a waterfall step must clear to stop
// the waterfall (spec §4.3's adapter-threshold idiom reused here; spec §4.5
// gives each step its own fixed confidence, so this is the floor any of
// them must clear, not a tunable besides 0 meaning "accept the first hit").
const Threshold = 0.0

// Fetcher drives the five-step waterfall. Each step is optional: callers
// only pass the clients/bytes they actually have for this submission.
type Fetcher struct {
	CrossRef  *sources.CrossRefClient
	Arxiv     *sources.ArxivClient
	Semantic  *sources.SemanticScholarClient
	TEIParser *sources.TEIParserClient
}

// Input carries whatever the caller already resolved before metadata
// fetching begins.
type Input struct {
	DOI      string
	ArxivID  string
	PDFBytes []byte
	Scraped  *sources.Work // from a landing-page scrape, if one was done (spec §4.3 scraping strategy)
}

// Fetch runs the waterfall (spec §4.5) and returns the first attempt whose
// confidence is non-zero, recording every attempted source in
// SourcePriority in the order tried (highest priority first, matching
// "user input > authoritative API > parser > scrape").
func (f *Fetcher) Fetch(ctx context.Context, in Input) (*Result, error) {
	var tried []string
	var lastErr error

	try := func(source string, confidence float64, fn func() (*sources.Work, error)) (*Attempt, bool) {
		tried = append(tried, source)
		w, err := fn()
		if err != nil {
			lastErr = err
			return nil, false
		}
		if w == nil || w.Title == "" {
			return nil, false
		}
		return &Attempt{Work: w, Source: source, Confidence: confidence}, true
	}

	if in.DOI != "" && f.CrossRef != nil {
		if a, ok := try("crossref", 0.95, func() (*sources.Work, error) { return f.CrossRef.ByDOI(ctx, in.DOI) }); ok {
			return toResult(a, tried), nil
		}
	}
	if in.ArxivID != "" && f.Arxiv != nil {
		if a, ok := try("arxiv", 0.9, func() (*sources.Work, error) { return f.Arxiv.ByArxiv(ctx, in.ArxivID) }); ok {
			return toResult(a, tried), nil
		}
	}
	if f.Semantic != nil {
		var fn func() (*sources.Work, error)
		switch {
		case in.DOI != "":
			fn = func() (*sources.Work, error) { return f.Semantic.ByDOI(ctx, in.DOI) }
		case in.ArxivID != "":
			fn = func() (*sources.Work, error) { return f.Semantic.ByArxiv(ctx, in.ArxivID) }
		}
		if fn != nil {
			if a, ok := try("semantic_scholar", 0.85, fn); ok {
				return toResult(a, tried), nil
			}
		}
	}
	if len(in.PDFBytes) > 0 && f.TEIParser != nil {
		if a, ok := try("pdf_parser", 0.7, func() (*sources.Work, error) { return f.TEIParser.ParsePDF(ctx, in.PDFBytes) }); ok {
			return toResult(a, tried), nil
		}
	}
	if in.Scraped != nil {
		tried = append(tried, "scrape")
		if in.Scraped.Title != "" {
			return toResult(&Attempt{Work: in.Scraped, Source: "scrape", Confidence: 0.5}, tried), nil
		}
	}

	next := "provide DOI"
	if in.DOI != "" || in.ArxivID != "" {
		next = "upload PDF"
	}
	if lastErr != nil {
		if de, ok := errkind.As(lastErr); ok && !de.Kind.Retryable() {
			return &Result{SourcePriority: tried, NextAction: next}, nil
		}
	}
	return &Result{SourcePriority: tried, NextAction: next}, nil
}

func toResult(a *Attempt, tried []string) *Result {
	authors := make([]domain.Author, len(a.Work.Authors))
	copy(authors, a.Work.Authors)
	references := make([]domain.ParsedRef, len(a.Work.Reference))
	copy(references, a.Work.Reference)
	return &Result{
		Metadata: domain.Metadata{
			Title:          a.Work.Title,
			Authors:        authors,
			Year:           a.Work.Year,
			Journal:        a.Work.Journal,
			Abstract:       a.Work.Abstract,
			SourcePriority: tried,
		},
		SourcePriority: tried,
		References:     references,
	}
}
