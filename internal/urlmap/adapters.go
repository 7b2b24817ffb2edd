// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package urlmap

import (
	"regexp"
	"strings"
)

// arxivNewFormat matches "1706.03762" or "1706.03762v2"; arxivOldFormat
// matches the pre-2007 "cs/0701001" scheme. Both accepted per spec §4.3
// edge cases; version suffixes are stripped for identity.
var (
	arxivNewFormat = regexp.MustCompile(`arxiv\.org/(?:abs|pdf)/(\d{4}\.\d{4,5})(v\d+)?`)
	arxivOldFormat = regexp.MustCompile(`arxiv\.org/(?:abs|pdf)/([a-z\-]+/\d{7})(v\d+)?`)
	doiInPath      = regexp.MustCompile(`(10\.\d{4,9}/[^\s?#]+)`)
)

// NewArxivAdapter handles arxiv.org URLs in both ID formats.
func NewArxivAdapter() *Adapter {
	return &Adapter{
		Name: "arxiv",
		CanHandle: func(rawURL string) bool {
			return strings.Contains(rawURL, "arxiv.org")
		},
		Threshold: 0.6,
		Strategies: []Strategy{
			&RegexStrategy{
				StrategyName: "arxiv-new-format",
				Pattern:      arxivNewFormat,
				PostProcess: func(groups []string) (*Mapping, error) {
					return &Mapping{
						ArxivID:    groups[1],
						PDFURL:     "https://arxiv.org/pdf/" + groups[1],
						Confidence: 0.95,
					}, nil
				},
			},
			&RegexStrategy{
				StrategyName: "arxiv-old-format",
				Pattern:      arxivOldFormat,
				PostProcess: func(groups []string) (*Mapping, error) {
					return &Mapping{
						ArxivID:    groups[1],
						PDFURL:     "https://arxiv.org/pdf/" + groups[1],
						Confidence: 0.9,
					}, nil
				},
			},
		},
	}
}

// NewDOIAdapter handles doi.org resolver URLs.
func NewDOIAdapter() *Adapter {
	return &Adapter{
		Name: "doi",
		CanHandle: func(rawURL string) bool {
			return strings.Contains(rawURL, "doi.org/")
		},
		Threshold: 0.6,
		Strategies: []Strategy{
			&RegexStrategy{
				StrategyName: "doi-path",
				Pattern:      regexp.MustCompile(`doi\.org/(10\.\d{4,9}/[^\s?#]+)`),
				PostProcess: func(groups []string) (*Mapping, error) {
					return &Mapping{DOI: groups[1], Confidence: 0.95}, nil
				},
			},
		},
	}
}

// NewGenericAdapter is the always-true last-resort adapter. Its first
// strategy still extracts an embedded DOI from the path (spec §4.3 edge
// case: "PDF URLs that embed a DOI must be parsed even when adapter is
// Generic"); its final strategy treats the whole URL as the source page.
func NewGenericAdapter() *Adapter {
	return &Adapter{
		Name:      "generic",
		CanHandle: func(string) bool { return true },
		Threshold: 0.6,
		Strategies: []Strategy{
			&RegexStrategy{
				StrategyName: "embedded-doi",
				Pattern:      doiInPath,
				PostProcess: func(groups []string) (*Mapping, error) {
					return &Mapping{DOI: groups[1], Confidence: 0.8}, nil
				},
			},
			&RegexStrategy{
				StrategyName: "source-page-fallback",
				Pattern:      regexp.MustCompile(`^(https?://.+)$`),
				PostProcess: func(groups []string) (*Mapping, error) {
					return &Mapping{SourcePageURL: groups[1], Confidence: 0.3}, nil
				},
			},
		},
	}
}

// DefaultRegistry is the priority-ordered adapter set: arXiv and DOI
// platform adapters before the Generic fallback.
func DefaultRegistry() *Registry {
	return NewRegistry(NewArxivAdapter(), NewDOIAdapter(), NewGenericAdapter())
}
