// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package content

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshintel/litingest/internal/broker"
	"github.com/meshintel/litingest/internal/config"
	"github.com/meshintel/litingest/internal/errkind"
	"github.com/meshintel/litingest/internal/urlmap"
)

func testBroker() *broker.Broker {
	cfg := config.Default().Broker
	cfg.MaxRetries = 0
	return broker.New(cfg)
}

func TestFetch_UserURLWins(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("%PDF-1.4 fake content"))
	}))
	defer srv.Close()

	f := New(testBroker(), nil, nil, config.ContentConfig{MaxPDFBytes: 1024})
	res, err := f.Fetch(context.Background(), srv.URL, urlmap.Mapping{})
	require.NoError(t, err)
	assert.Equal(t, "user", res.Source)
}

func TestFetch_InvalidPDFRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not a pdf</html>"))
	}))
	defer srv.Close()

	f := New(testBroker(), nil, nil, config.ContentConfig{MaxPDFBytes: 1024})
	_, err := f.Fetch(context.Background(), srv.URL, urlmap.Mapping{})
	require.Error(t, err)
	de, ok := errkind.As(err)
	require.True(t, ok)
	assert.Equal(t, errkind.InvalidPDF, de.Kind)
}

func TestFetch_TooLargeRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("%PDF-1.4 this is way too long for the cap"))
	}))
	defer srv.Close()

	f := New(testBroker(), nil, nil, config.ContentConfig{MaxPDFBytes: 5})
	_, err := f.Fetch(context.Background(), srv.URL, urlmap.Mapping{})
	require.Error(t, err)
	de, ok := errkind.As(err)
	require.True(t, ok)
	assert.Equal(t, errkind.TooLarge, de.Kind)
}

func TestFetch_FallsBackToMappingPDFURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("%PDF-1.4 mapping pdf"))
	}))
	defer srv.Close()

	f := New(testBroker(), nil, nil, config.ContentConfig{MaxPDFBytes: 1024})
	res, err := f.Fetch(context.Background(), "", urlmap.Mapping{PDFURL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, "mapping", res.Source)
}

func TestFetch_NothingAvailable(t *testing.T) {
	f := New(testBroker(), nil, nil, config.ContentConfig{MaxPDFBytes: 1024})
	_, err := f.Fetch(context.Background(), "", urlmap.Mapping{})
	require.Error(t, err)
}
