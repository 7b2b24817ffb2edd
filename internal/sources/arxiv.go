// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/meshintel/litingest/internal/broker"
	"github.com/meshintel/litingest/internal/domain"
	"github.com/meshintel/litingest/internal/errkind"
)

// ArxivClient wraps the arXiv Atom-feed API (spec §4.2, §4.5 step 2).
type ArxivClient struct {
	Broker  *broker.Broker
	BaseURL string
}

type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	Title     string        `xml:"title"`
	Summary   string        `xml:"summary"`
	Published string        `xml:"published"`
	Authors   []arxivAuthor `xml:"author"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

// ByArxiv fetches normalized metadata for the given arXiv ID (version
// suffix accepted and ignored by the API).
func (c *ArxivClient) ByArxiv(ctx context.Context, arxivID string) (*Work, error) {
	reqURL := fmt.Sprintf("%s?id_list=%s", c.BaseURL, url.QueryEscape(arxivID))
	resp, err := c.Broker.Get(ctx, broker.External, reqURL, nil)
	if err != nil {
		return nil, err
	}
	if resp.Status != 200 {
		return nil, errkind.New(errkind.ProviderUnavailable, "arxiv", fmt.Errorf("HTTP %d", resp.Status))
	}

	var feed arxivFeed
	if err := xml.Unmarshal(resp.Body, &feed); err != nil {
		return nil, errkind.New(errkind.ParseFailure, "arxiv", err)
	}
	if len(feed.Entries) == 0 {
		return nil, errkind.New(errkind.NotFound, "arxiv", fmt.Errorf("no entries for %s", arxivID))
	}

	entry := feed.Entries[0]
	w := &Work{
		Provider: "arxiv",
		ArxivID:  strings.TrimSuffix(arxivID, versionSuffix(arxivID)),
		Title:    strings.TrimSpace(entry.Title),
		Abstract: strings.TrimSpace(entry.Summary),
		PDFURL:   "https://arxiv.org/pdf/" + arxivID,
	}
	for i, a := range entry.Authors {
		w.Authors = append(w.Authors, domain.Author{Name: strings.TrimSpace(a.Name), Sequence: i + 1})
	}
	if t, err := time.Parse(time.RFC3339, entry.Published); err == nil {
		w.Year = t.Year()
	}
	return w, nil
}

func versionSuffix(id string) string {
	if i := strings.LastIndex(id, "v"); i > 0 {
		suffix := id[i:]
		isDigits := len(suffix) > 1
		for _, r := range suffix[1:] {
			if r < '0' || r > '9' {
				isDigits = false
			}
		}
		if isDigits {
			return suffix
		}
	}
	return ""
}
