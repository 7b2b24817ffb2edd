// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package references implements the References Fetcher (C6): the waterfall
// of spec §4.6, normalizing and de-duplicating the resulting reference list.
package references

import (
	"context"
	"strconv"
	"strings"

	"github.com/meshintel/litingest/internal/dedup"
	"github.com/meshintel/litingest/internal/domain"
)

// Reference is one normalized entry (spec §4.6 "{raw_text, parsed?, source}").
type Reference struct {
	RawText string
	Parsed  *domain.ParsedRef
	Source  string
}

// Input carries whatever the caller already has to run the waterfall.
type Input struct {
	DOI           string
	APIReferences []domain.ParsedRef // from the authoritative API call already made for metadata (spec §4.6 step 1)
	PDFReferences []domain.ParsedRef // from the TEI parser's back/listBibl (step 2)
	SiteReferences []domain.ParsedRef // from inline site extraction (step 3)
}

// Fetch runs the waterfall: API references list (preferred when DOI
// present) → PDF parser bibliography → site-extracted list. Unlike C5,
// availability (not confidence) selects the winner, since spec §4.6 names
// no confidence scores — the ordering itself is the preference.
func Fetch(ctx context.Context, in Input) []Reference {
	var parsed []domain.ParsedRef
	var source string

	switch {
	case len(in.APIReferences) > 0:
		parsed, source = in.APIReferences, "api"
	case len(in.PDFReferences) > 0:
		parsed, source = in.PDFReferences, "pdf_parser"
	case len(in.SiteReferences) > 0:
		parsed, source = in.SiteReferences, "site"
	default:
		return nil
	}

	return normalize(parsed, source)
}

// normalize de-dups by (DOI) -> (normalized-title + year), preferring the
// first occurrence (spec §4.6 "De-dup within the list").
func normalize(parsed []domain.ParsedRef, source string) []Reference {
	seenDOI := map[string]bool{}
	seenTitleYear := map[string]bool{}
	out := make([]Reference, 0, len(parsed))

	for _, p := range parsed {
		p := p
		if p.DOI != "" {
			key := strings.ToLower(p.DOI)
			if seenDOI[key] {
				continue
			}
			seenDOI[key] = true
		} else {
			key := dedup.NormalizeTitle(p.Title) + "|" + strconv.Itoa(p.Year)
			if seenTitleYear[key] {
				continue
			}
			seenTitleYear[key] = true
		}
		out = append(out, Reference{
			RawText: rawText(p),
			Parsed:  &p,
			Source:  source,
		})
	}
	return out
}

func rawText(p domain.ParsedRef) string {
	var b strings.Builder
	b.WriteString(p.Title)
	if len(p.Authors) > 0 {
		b.WriteString(" — ")
		b.WriteString(strings.Join(p.Authors, ", "))
	}
	return b.String()
}
