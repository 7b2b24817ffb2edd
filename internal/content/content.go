// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package content implements the Content Fetcher (C4): acquiring PDF bytes
// through a prioritized source list (spec §4.4), validating them, and
// enforcing the configured size cap.
package content

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/meshintel/litingest/internal/broker"
	"github.com/meshintel/litingest/internal/config"
	"github.com/meshintel/litingest/internal/errkind"
	"github.com/meshintel/litingest/internal/sources"
	"github.com/meshintel/litingest/internal/urlmap"
)

const pdfMagic = "%PDF-"

// Result is the outcome of a successful fetch (spec §4.4 "Returns
// {bytes, fetched_url, source}").
type Result struct {
	Bytes      []byte
	FetchedURL string
	Source     string
}

// ObjectStore fetches PDF bytes via a native object-store path (spec §4.4
// step 2), when the fetcher recognizes the URL's host as one of its
// configured stores and has credentials. Left as an injected interface: no
// concrete object-store client is wired, since the upload/storage surface
// itself is out of scope (spec §1).
type ObjectStore interface {
	// Recognizes reports whether rawURL's host is one this store handles.
	Recognizes(rawURL string) bool
	// Fetch retrieves the object's bytes natively.
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// Fetcher acquires PDF bytes per the priority order in spec §4.4.
type Fetcher struct {
	Broker      *broker.Broker
	OpenAlex    *sources.OpenAlexClient
	Store       ObjectStore // nil means "no object-store recognized"
	MaxPDFBytes int64
}

// New builds a Fetcher from the service configuration.
func New(b *broker.Broker, oa *sources.OpenAlexClient, store ObjectStore, cfg config.ContentConfig) *Fetcher {
	return &Fetcher{Broker: b, OpenAlex: oa, Store: store, MaxPDFBytes: cfg.MaxPDFBytes}
}

// Fetch tries, in order: userPDFURL (if non-empty), then mapping.PDFURL,
// each through the object store when it recognizes the URL; then an
// OpenAlex OA lookup by DOI. mapping.SourcePageURL is not fetched, and no
// PDF link is scraped from a landing page. The first candidate that yields
// valid bytes wins.
func (f *Fetcher) Fetch(ctx context.Context, userPDFURL string, mapping urlmap.Mapping) (*Result, error) {
	type candidate struct {
		url    string
		source string
	}
	var candidates []candidate
	if userPDFURL != "" {
		candidates = append(candidates, candidate{userPDFURL, "user"})
	}
	if mapping.PDFURL != "" {
		candidates = append(candidates, candidate{mapping.PDFURL, "mapping"})
	}

	var lastErr error
	for _, c := range candidates {
		if f.Store != nil && f.Store.Recognizes(c.url) {
			b, err := f.Store.Fetch(ctx, c.url)
			if err == nil {
				if verr := validate(b, f.MaxPDFBytes); verr == nil {
					return &Result{Bytes: b, FetchedURL: c.url, Source: c.source + "/object-store"}, nil
				}
			}
			// fall through to HTTPS GET per spec §4.4 "fallback to HTTPS GET"
		}
		b, err := f.fetchHTTPS(ctx, c.url)
		if err != nil {
			lastErr = err
			continue
		}
		if verr := validate(b, f.MaxPDFBytes); verr != nil {
			lastErr = verr
			continue
		}
		return &Result{Bytes: b, FetchedURL: c.url, Source: c.source}, nil
	}

	if mapping.DOI != "" && f.OpenAlex != nil {
		oaURL, err := f.OpenAlex.ResolveOAPDFURL(ctx, mapping.DOI)
		if err == nil && oaURL != "" {
			b, err := f.fetchHTTPS(ctx, oaURL)
			if err == nil {
				if verr := validate(b, f.MaxPDFBytes); verr == nil {
					return &Result{Bytes: b, FetchedURL: oaURL, Source: "openalex"}, nil
				} else {
					lastErr = verr
				}
			} else {
				lastErr = err
			}
		}
	}

	if lastErr != nil {
		if de, ok := errkind.As(lastErr); ok {
			return nil, de
		}
		return nil, errkind.New(errkind.NotFound, "content", lastErr)
	}
	return nil, errkind.New(errkind.NotFound, "content", fmt.Errorf("no PDF candidate available"))
}

func (f *Fetcher) fetchHTTPS(ctx context.Context, rawURL string) ([]byte, error) {
	if _, err := url.Parse(rawURL); err != nil {
		return nil, errkind.New(errkind.InvalidInput, "content", err)
	}
	headers := http.Header{"Accept": []string{"application/pdf"}}
	resp, err := f.Broker.Request(ctx, broker.External, http.MethodGet, rawURL, headers, nil)
	if err != nil {
		return nil, err
	}
	if resp.Status == 404 {
		return nil, errkind.New(errkind.NotFound, "content", fmt.Errorf("HTTP 404 from %s", rawURL))
	}
	if resp.Status != 200 {
		return nil, errkind.New(errkind.ProviderUnavailable, "content", fmt.Errorf("HTTP %d from %s", resp.Status, rawURL))
	}
	return resp.Body, nil
}

// validate enforces the "%PDF-" magic-byte check and the size cap (spec
// §4.4 "must start with %PDF-, size within configured cap").
func validate(b []byte, maxBytes int64) error {
	if maxBytes > 0 && int64(len(b)) > maxBytes {
		return errkind.New(errkind.TooLarge, "content", fmt.Errorf("PDF is %d bytes, cap is %d", len(b), maxBytes))
	}
	if !bytes.HasPrefix(b, []byte(pdfMagic)) {
		return errkind.New(errkind.InvalidPDF, "content", fmt.Errorf("missing %s magic bytes", strings.TrimSpace(pdfMagic)))
	}
	return nil
}
