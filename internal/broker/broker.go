// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package broker implements the Request Broker (C1): uniform outbound HTTP
// with per-destination-class policy (internal vs. external), retries, and
// an SSRF guard on external destinations.
package broker

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/meshintel/litingest/internal/config"
	"github.com/meshintel/litingest/internal/errkind"
	"github.com/meshintel/litingest/internal/httputil"
)

// DestClass selects the outbound policy for a request.
type DestClass string

const (
	Internal DestClass = "internal"
	External DestClass = "external"
)

// Response is the successful outcome of a broker request.
type Response struct {
	Status  int
	Headers http.Header
	Body    []byte
}

// Broker issues outbound HTTP requests with per-destination-class policy.
// Internal targets (PDF parser, graph, cache, object store) use no proxy,
// short timeouts, fail-fast. External targets (publisher APIs, PDF hosts)
// use a configured proxy, longer timeouts, and exponential backoff on
// {408, 429, 5xx, connection errors} with capped retries.
type Broker struct {
	internalClient *http.Client
	externalClient *http.Client
	cfg            config.BrokerConfig
}

// New builds a Broker with separate connection pools per destination class,
// both reused across requests (persistent connection pools per class).
func New(cfg config.BrokerConfig) *Broker {
	b := &Broker{cfg: cfg}

	b.internalClient = &http.Client{
		Timeout:   cfg.InternalTimeout,
		Transport: &http.Transport{},
	}

	transport := &http.Transport{}
	if cfg.ExternalProxy != "" {
		if proxyURL, err := url.Parse(cfg.ExternalProxy); err == nil {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}
	b.externalClient = &http.Client{
		Timeout:   cfg.ExternalTimeout,
		Transport: transport,
	}
	return b
}

// Request issues method against url with the given headers/body under
// destClass's policy, returning a Response or a typed *errkind.Error whose
// Kind is one of {InvalidInput, SSRFBlocked, Timeout, Network}. A non-2xx
// status (after any retries) is returned as a Response, not as an error.
func (b *Broker) Request(ctx context.Context, destClass DestClass, method, rawURL string, headers http.Header, body io.Reader) (*Response, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, errkind.New(errkind.InvalidInput, "", err)
	}

	if destClass == External && httputil.IsPrivateOrLocal(parsed.Host) {
		return nil, errkind.New(errkind.SSRFBlocked, "", fmt.Errorf("destination %s resolves to a private or local address", parsed.Host))
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, errkind.New(errkind.InvalidInput, "", err)
	}
	req.Header.Set("User-Agent", b.cfg.UserAgent)
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	var resp *http.Response
	if destClass == External {
		resp, err = httputil.DoWithRetry(ctx, b.externalClient, req, b.cfg.MaxRetries)
	} else {
		resp, err = b.internalClient.Do(req)
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, errkind.New(errkind.Timeout, "", err)
		}
		return nil, errkind.New(errkind.Network, "", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errkind.New(errkind.Network, "", err)
	}

	return &Response{Status: resp.StatusCode, Headers: resp.Header, Body: data}, nil
}

// Get is a convenience wrapper over Request for the common GET case.
func (b *Broker) Get(ctx context.Context, destClass DestClass, rawURL string, headers http.Header) (*Response, error) {
	return b.Request(ctx, destClass, http.MethodGet, rawURL, headers, nil)
}
