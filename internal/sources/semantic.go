// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/meshintel/litingest/internal/broker"
	"github.com/meshintel/litingest/internal/domain"
	"github.com/meshintel/litingest/internal/errkind"
)

// SemanticScholarClient wraps the Semantic Scholar graph API (spec §4.2,
// §4.5 step 3 — "any identifier known").
type SemanticScholarClient struct {
	Broker  *broker.Broker
	BaseURL string
	APIKey  string
}

const semanticFields = "title,abstract,authors,externalIds,year,references.title,references.externalIds"

type semanticPaper struct {
	Title       string              `json:"title"`
	Abstract    string              `json:"abstract"`
	Year        int                 `json:"year"`
	Authors     []semanticAuthor    `json:"authors"`
	ExternalIDs semanticExternalIDs `json:"externalIds"`
	References  []semanticReference `json:"references"`
}

type semanticAuthor struct {
	Name string `json:"name"`
}

type semanticExternalIDs struct {
	DOI   string `json:"DOI"`
	ArXiv string `json:"ArXiv"`
}

type semanticReference struct {
	Title       string              `json:"title"`
	ExternalIDs semanticExternalIDs `json:"externalIds"`
}

// byID fetches normalized metadata for a paper keyed by any Semantic
// Scholar-accepted identifier string ("DOI:...", "arXiv:...", or a raw
// corpus ID).
func (c *SemanticScholarClient) byID(ctx context.Context, idPath string) (*Work, error) {
	reqURL := fmt.Sprintf("%s%s?fields=%s", c.BaseURL, idPath, semanticFields)
	headers := http.Header{}
	if c.APIKey != "" {
		headers.Set("x-api-key", c.APIKey)
	}
	resp, err := c.Broker.Get(ctx, broker.External, reqURL, headers)
	if err != nil {
		return nil, err
	}
	if resp.Status == 404 {
		return nil, errkind.New(errkind.NotFound, "semantic_scholar", fmt.Errorf("not found: %s", idPath))
	}
	if resp.Status != 200 {
		return nil, errkind.New(errkind.ProviderUnavailable, "semantic_scholar", fmt.Errorf("HTTP %d", resp.Status))
	}

	var p semanticPaper
	if err := json.Unmarshal(resp.Body, &p); err != nil {
		return nil, errkind.New(errkind.ParseFailure, "semantic_scholar", err)
	}

	w := &Work{
		Provider: "semantic_scholar",
		Title:    p.Title,
		Abstract: p.Abstract,
		Year:     p.Year,
		DOI:      p.ExternalIDs.DOI,
		ArxivID:  p.ExternalIDs.ArXiv,
	}
	for i, a := range p.Authors {
		w.Authors = append(w.Authors, domain.Author{Name: a.Name, Sequence: i + 1})
	}
	for _, r := range p.References {
		w.Reference = append(w.Reference, domain.ParsedRef{
			Title:   r.Title,
			DOI:     r.ExternalIDs.DOI,
			ArxivID: r.ExternalIDs.ArXiv,
		})
	}
	return w, nil
}

// ByDOI fetches normalized metadata by DOI.
func (c *SemanticScholarClient) ByDOI(ctx context.Context, doi string) (*Work, error) {
	return c.byID(ctx, "DOI:"+doi)
}

// ByArxiv fetches normalized metadata by arXiv ID.
func (c *SemanticScholarClient) ByArxiv(ctx context.Context, arxivID string) (*Work, error) {
	return c.byID(ctx, "arXiv:"+arxivID)
}

// ReferencesOf returns the already-normalized reference list embedded in
// the last fetched Work (spec §4.6 "authoritative API references list").
func ReferencesOf(w *Work) []domain.ParsedRef { return w.Reference }
