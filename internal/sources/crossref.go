// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/meshintel/litingest/internal/broker"
	"github.com/meshintel/litingest/internal/domain"
	"github.com/meshintel/litingest/internal/errkind"
)

// CrossRefClient wraps the CrossRef works API (spec §4.2, §4.5 step 1).
type CrossRefClient struct {
	Broker  *broker.Broker
	BaseURL string
}

type crossrefResponse struct {
	Message crossrefWork `json:"message"`
}

type crossrefWork struct {
	Title      []string         `json:"title"`
	Abstract   string           `json:"abstract"`
	Author     []crossrefAuthor `json:"author"`
	Created    crossrefDate     `json:"created"`
	Reference  []crossrefRef    `json:"reference"`
	DOI        string           `json:"DOI"`
	Publisher  string           `json:"container-title"`
}

type crossrefAuthor struct {
	Given    string `json:"given"`
	Family   string `json:"family"`
	Sequence string `json:"sequence"`
}

type crossrefDate struct {
	DateParts [][]int `json:"date-parts"`
}

type crossrefRef struct {
	DOI          string `json:"DOI"`
	ArticleTitle string `json:"article-title"`
	Author       string `json:"author"`
	Year         string `json:"year"`
}

// ByDOI fetches normalized metadata (and, when present, its reference list)
// for doi.
func (c *CrossRefClient) ByDOI(ctx context.Context, doi string) (*Work, error) {
	resp, err := c.Broker.Get(ctx, broker.External, c.BaseURL+doi, nil)
	if err != nil {
		return nil, err
	}
	if resp.Status == 404 {
		return nil, errkind.New(errkind.NotFound, "crossref", fmt.Errorf("DOI %s not found", doi))
	}
	if resp.Status != 200 {
		return nil, errkind.New(errkind.ProviderUnavailable, "crossref", fmt.Errorf("HTTP %d", resp.Status))
	}

	var cr crossrefResponse
	if err := json.Unmarshal(resp.Body, &cr); err != nil {
		return nil, errkind.New(errkind.ParseFailure, "crossref", err)
	}

	w := &Work{Provider: "crossref", DOI: doi, Abstract: cr.Message.Abstract}
	if len(cr.Message.Title) > 0 {
		w.Title = cr.Message.Title[0]
	}
	for i, a := range cr.Message.Author {
		w.Authors = append(w.Authors, domain.Author{Name: fmt.Sprintf("%s %s", a.Given, a.Family), Sequence: i + 1})
	}
	if len(cr.Message.Created.DateParts) > 0 && len(cr.Message.Created.DateParts[0]) >= 1 {
		w.Year = cr.Message.Created.DateParts[0][0]
	}
	for _, r := range cr.Message.Reference {
		w.Reference = append(w.Reference, domain.ParsedRef{
			Title: r.ArticleTitle,
			DOI:   r.DOI,
		})
	}
	return w, nil
}
