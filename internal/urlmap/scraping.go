// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package urlmap

import (
	"context"
	"regexp"

	"github.com/meshintel/litingest/internal/broker"
)

var metaCitationDOI = regexp.MustCompile(`(?i)<meta\s+name=["']citation_doi["']\s+content=["']([^"']+)["']`)
var metaCitationPDF = regexp.MustCompile(`(?i)<meta\s+name=["']citation_pdf_url["']\s+content=["']([^"']+)["']`)

// NewMetaScrapingStrategy builds a ScrapingStrategy that fetches rawURL via
// the Request Broker (as an external, SSRF-guarded fetch) and extracts
// citation_doi / citation_pdf_url <meta> tags (spec §4.3 "Scraping").
func NewMetaScrapingStrategy(b *broker.Broker) Strategy {
	return &ScrapingStrategy{
		StrategyName: "meta-tag-scrape",
		Fetch: func(ctx context.Context, rawURL string) (*Mapping, error) {
			resp, err := b.Get(ctx, broker.External, rawURL, nil)
			if err != nil {
				return nil, nil // scraping failures are "no mapping", not fatal
			}
			html := string(resp.Body)

			m := &Mapping{}
			found := false
			if g := metaCitationDOI.FindStringSubmatch(html); g != nil {
				m.DOI = g[1]
				found = true
			}
			if g := metaCitationPDF.FindStringSubmatch(html); g != nil {
				m.PDFURL = g[1]
				found = true
			}
			if !found {
				return nil, nil
			}
			m.Confidence = 0.6
			return m, nil
		},
	}
}
