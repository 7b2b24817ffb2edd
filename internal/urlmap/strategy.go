// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package urlmap implements the URL Mapping Service (C3): given a URL,
// produce a canonicalized identifier set via platform adapters composing
// ordered strategies (spec §4.3, §9 "Dynamic dispatch / plugin-like
// adapters"). Adapters and strategies are value-typed registry entries,
// not a class hierarchy; runtime selection is driven by priority and
// confidence.
package urlmap

import (
	"context"
	"regexp"
)

// Mapping is the canonicalized identifier set a strategy may produce.
type Mapping struct {
	DOI           string
	ArxivID       string
	SourcePageURL string
	PDFURL        string
	Venue         string
	Confidence    float64
}

// Strategy is one way to extract a Mapping from a URL: regex, API call,
// scraping, or third-party DB lookup (spec §4.3, §9 "Strategy").
type Strategy interface {
	// Name identifies the strategy for logging and tie-breaking by arrival
	// order among equal-priority strategies.
	Name() string
	// Run attempts to produce a Mapping for rawURL. A nil Mapping with a nil
	// error means "no mapping" (try the next strategy).
	Run(ctx context.Context, rawURL string) (*Mapping, error)
}

// RegexStrategy matches rawURL against Pattern and hands capture groups to
// PostProcess, a pure function producing the Mapping.
type RegexStrategy struct {
	StrategyName string
	Pattern      *regexp.Regexp
	PostProcess  func(groups []string) (*Mapping, error)
}

func (s *RegexStrategy) Name() string { return s.StrategyName }

func (s *RegexStrategy) Run(_ context.Context, rawURL string) (*Mapping, error) {
	groups := s.Pattern.FindStringSubmatch(rawURL)
	if groups == nil {
		return nil, nil
	}
	return s.PostProcess(groups)
}

// APIStrategy calls a C2 client based on extracted URL fragments.
type APIStrategy struct {
	StrategyName string
	Call         func(ctx context.Context, rawURL string) (*Mapping, error)
}

func (s *APIStrategy) Name() string { return s.StrategyName }

func (s *APIStrategy) Run(ctx context.Context, rawURL string) (*Mapping, error) {
	return s.Call(ctx, rawURL)
}

// ScrapingStrategy fetches HTML via the Request Broker (C1) and extracts
// citation_doi / citation_pdf_url / <meta> tags.
type ScrapingStrategy struct {
	StrategyName string
	Fetch        func(ctx context.Context, rawURL string) (*Mapping, error)
}

func (s *ScrapingStrategy) Name() string { return s.StrategyName }

func (s *ScrapingStrategy) Run(ctx context.Context, rawURL string) (*Mapping, error) {
	return s.Fetch(ctx, rawURL)
}

// DBStrategy queries a generic third-party resolver (e.g. Semantic
// Scholar's resolve-by-URL) for a Mapping.
type DBStrategy struct {
	StrategyName string
	Query        func(ctx context.Context, rawURL string) (*Mapping, error)
}

func (s *DBStrategy) Name() string { return s.StrategyName }

func (s *DBStrategy) Run(ctx context.Context, rawURL string) (*Mapping, error) {
	return s.Query(ctx, rawURL)
}
