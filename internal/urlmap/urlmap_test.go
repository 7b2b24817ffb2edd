// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package urlmap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_ArxivNewFormat(t *testing.T) {
	reg := DefaultRegistry()
	m, ok, err := reg.Resolve(context.Background(), "https://arxiv.org/abs/1706.03762")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "1706.03762", m.ArxivID)
}

func TestResolve_ArxivVersionSuffixStripped(t *testing.T) {
	reg := DefaultRegistry()
	m, ok, err := reg.Resolve(context.Background(), "https://arxiv.org/abs/1706.03762v2")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "1706.03762", m.ArxivID)
}

func TestResolve_ArxivOldFormat(t *testing.T) {
	reg := DefaultRegistry()
	m, ok, err := reg.Resolve(context.Background(), "https://arxiv.org/abs/cs/0701001")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "cs/0701001", m.ArxivID)
}

func TestResolve_DOIAdapter(t *testing.T) {
	reg := DefaultRegistry()
	m, ok, err := reg.Resolve(context.Background(), "https://doi.org/10.1145/1234567.1234568")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "10.1145/1234567.1234568", m.DOI)
}

func TestResolve_GenericAdapterExtractsEmbeddedDOI(t *testing.T) {
	reg := DefaultRegistry()
	m, ok, err := reg.Resolve(context.Background(), "https://publisher.example.com/content/10.1000/xyz123.pdf")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "10.1000/xyz123.pdf", m.DOI)
}

func TestResolve_GenericFallbackSourcePage(t *testing.T) {
	reg := DefaultRegistry()
	m, ok, err := reg.Resolve(context.Background(), "https://blog.example.com/my-paper")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "https://blog.example.com/my-paper", m.SourcePageURL)
}

func TestResolve_NoneMatches(t *testing.T) {
	reg := NewRegistry(NewArxivAdapter(), NewDOIAdapter())
	_, ok, err := reg.Resolve(context.Background(), "not-a-url")
	require.NoError(t, err)
	assert.False(t, ok)
}
