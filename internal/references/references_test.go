// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package references

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/meshintel/litingest/internal/domain"
)

func TestFetch_PrefersAPIOverPDFOverSite(t *testing.T) {
	refs := Fetch(context.Background(), Input{
		APIReferences:  []domain.ParsedRef{{Title: "API Ref"}},
		PDFReferences:  []domain.ParsedRef{{Title: "PDF Ref"}},
		SiteReferences: []domain.ParsedRef{{Title: "Site Ref"}},
	})
	assert.Len(t, refs, 1)
	assert.Equal(t, "api", refs[0].Source)
}

func TestFetch_FallsBackToPDFThenSite(t *testing.T) {
	pdfRefs := Fetch(context.Background(), Input{PDFReferences: []domain.ParsedRef{{Title: "PDF Ref"}}})
	assert.Equal(t, "pdf_parser", pdfRefs[0].Source)

	siteRefs := Fetch(context.Background(), Input{SiteReferences: []domain.ParsedRef{{Title: "Site Ref"}}})
	assert.Equal(t, "site", siteRefs[0].Source)
}

func TestFetch_DedupsByDOI(t *testing.T) {
	refs := Fetch(context.Background(), Input{APIReferences: []domain.ParsedRef{
		{Title: "A", DOI: "10.1/x"},
		{Title: "A duplicate", DOI: "10.1/X"},
	}})
	assert.Len(t, refs, 1)
}

func TestFetch_DedupsByNormalizedTitleAndYear(t *testing.T) {
	refs := Fetch(context.Background(), Input{APIReferences: []domain.ParsedRef{
		{Title: "Attention Is All You Need", Year: 2017},
		{Title: "attention is all you need!", Year: 2017},
		{Title: "Attention Is All You Need", Year: 2018},
	}})
	assert.Len(t, refs, 2)
}

func TestFetch_NoSourcesReturnsNil(t *testing.T) {
	assert.Nil(t, Fetch(context.Background(), Input{}))
}
