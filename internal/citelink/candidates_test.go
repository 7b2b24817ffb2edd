// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package citelink

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T) *CandidateIndex {
	t.Helper()
	idx, err := NewCandidateIndex(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestCandidateIndex_AddAndSearch(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, "lid-1", "Attention Is All You Need", []string{"Ashish Vaswani"}, 2017))
	require.NoError(t, idx.Add(ctx, "lid-2", "Deep Residual Learning for Image Recognition", []string{"Kaiming He"}, 2015))

	results, err := idx.Search(ctx, "Attention", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "lid-1", results[0].LID)
	assert.Equal(t, 2017, results[0].Year)
	assert.Equal(t, []string{"Ashish Vaswani"}, results[0].Authors)
}

func TestCandidateIndex_Search_NoMatch(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, "lid-1", "Attention Is All You Need", nil, 2017))

	results, err := idx.Search(ctx, "Reinforcement", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestCandidateIndex_Add_SkipsEmptyTitle(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, "lid-1", "", nil, 0))

	results, err := idx.Search(ctx, "anything", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}
