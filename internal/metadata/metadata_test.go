// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package metadata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshintel/litingest/internal/broker"
	"github.com/meshintel/litingest/internal/config"
	"github.com/meshintel/litingest/internal/sources"
)

func testBroker() *broker.Broker {
	cfg := config.Default().Broker
	cfg.MaxRetries = 0
	return broker.New(cfg)
}

func TestFetch_CrossRefWinsWhenDOIKnown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":{"title":["A Title"],"author":[{"given":"A","family":"B"}],"created":{"date-parts":[[2020,1,1]]}}}`))
	}))
	defer srv.Close()

	f := &Fetcher{CrossRef: &sources.CrossRefClient{Broker: testBroker(), BaseURL: srv.URL + "/"}}
	res, err := f.Fetch(context.Background(), Input{DOI: "10.1/x"})
	require.NoError(t, err)
	assert.Equal(t, "A Title", res.Metadata.Title)
	assert.Equal(t, []string{"crossref"}, res.SourcePriority)
}

func TestFetch_SurfacesAPIReferences(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":{"title":["A Title"],"author":[{"given":"A","family":"B"}],
			"created":{"date-parts":[[2020,1,1]]},
			"reference":[{"DOI":"10.1/y","article-title":"Cited Work","year":"2018"}]}}`))
	}))
	defer srv.Close()

	f := &Fetcher{CrossRef: &sources.CrossRefClient{Broker: testBroker(), BaseURL: srv.URL + "/"}}
	res, err := f.Fetch(context.Background(), Input{DOI: "10.1/x"})
	require.NoError(t, err)
	require.Len(t, res.References, 1)
	assert.Equal(t, "10.1/y", res.References[0].DOI)
}

func TestFetch_FallsThroughToScrape(t *testing.T) {
	f := &Fetcher{}
	res, err := f.Fetch(context.Background(), Input{Scraped: &sources.Work{Title: "Scraped Title"}})
	require.NoError(t, err)
	assert.Equal(t, "Scraped Title", res.Metadata.Title)
	assert.Contains(t, res.SourcePriority, "scrape")
}

func TestFetch_NothingAvailable_SetsNextAction(t *testing.T) {
	f := &Fetcher{}
	res, err := f.Fetch(context.Background(), Input{})
	require.NoError(t, err)
	assert.Equal(t, "provide DOI", res.NextAction)
}
