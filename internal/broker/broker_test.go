// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package broker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshintel/litingest/internal/config"
	"github.com/meshintel/litingest/internal/errkind"
)

func testConfig() config.BrokerConfig {
	cfg := config.Default().Broker
	cfg.MaxRetries = 0
	return cfg
}

func TestRequest_Success(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer ts.Close()

	b := New(testConfig())
	resp, err := b.Get(context.Background(), Internal, ts.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "ok", string(resp.Body))
}

func TestRequest_BlocksSSRFOnExternal(t *testing.T) {
	b := New(testConfig())
	_, err := b.Get(context.Background(), External, "http://127.0.0.1:9999/x", nil)
	require.Error(t, err)
	de, _ := errkind.As(err)
	assert.Equal(t, errkind.SSRFBlocked, de.Kind)
}

func TestRequest_AllowsLoopbackOnInternal(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	b := New(testConfig())
	resp, err := b.Get(context.Background(), Internal, ts.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
}
