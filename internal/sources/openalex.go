// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/meshintel/litingest/internal/broker"
	"github.com/meshintel/litingest/internal/errkind"
)

// OpenAlexClient wraps OpenAlex's open-access PDF lookup by DOI (spec §4.4
// step 5 "OA lookup by DOI").
type OpenAlexClient struct {
	Broker  *broker.Broker
	BaseURL string
	Mailto  string
}

type openAlexWork struct {
	BestOALocation struct {
		PDFURL string `json:"pdf_url"`
	} `json:"best_oa_location"`
}

// ResolveOAPDFURL returns the open-access PDF URL for doi, or "" if OpenAlex
// has none on record.
func (c *OpenAlexClient) ResolveOAPDFURL(ctx context.Context, doi string) (string, error) {
	reqURL := fmt.Sprintf("%shttps://doi.org/%s", c.BaseURL, doi)
	if c.Mailto != "" {
		reqURL += "?mailto=" + c.Mailto
	}
	resp, err := c.Broker.Get(ctx, broker.External, reqURL, nil)
	if err != nil {
		return "", err
	}
	if resp.Status != 200 {
		return "", errkind.New(errkind.NotFound, "openalex", fmt.Errorf("HTTP %d", resp.Status))
	}

	var w openAlexWork
	if err := json.Unmarshal(resp.Body, &w); err != nil {
		return "", errkind.New(errkind.ParseFailure, "openalex", err)
	}
	return w.BestOALocation.PDFURL, nil
}
