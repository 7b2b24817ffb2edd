// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package citelink

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshintel/litingest/internal/config"
	"github.com/meshintel/litingest/internal/dedup"
	"github.com/meshintel/litingest/internal/domain"
	"github.com/meshintel/litingest/internal/references"
)

type fakeGraph struct {
	aliases          map[domain.AliasType]map[string]string
	cites            []citeCall
	unresolved       []domain.ParsedRef
	unresolvedByFP   map[string][]string
	promoted         []promoteCall
	nextUnresolvedID string
}

type citeCall struct {
	src, dst        string
	dstIsUnresolved bool
	confidence      float64
}

type promoteCall struct {
	unresolvedID, lid string
}

func newFakeGraph() *fakeGraph {
	return &fakeGraph{
		aliases:        map[domain.AliasType]map[string]string{},
		unresolvedByFP: map[string][]string{},
	}
}

func (f *fakeGraph) set(typ domain.AliasType, value, lid string) {
	if f.aliases[typ] == nil {
		f.aliases[typ] = map[string]string{}
	}
	f.aliases[typ][value] = lid
}

func (f *fakeGraph) ResolveAlias(ctx context.Context, typ domain.AliasType, value string) (string, bool, error) {
	lid, ok := f.aliases[typ][value]
	return lid, ok, nil
}

func (f *fakeGraph) CreateUnresolved(ctx context.Context, parsed domain.ParsedRef, rawText string) (string, error) {
	f.unresolved = append(f.unresolved, parsed)
	if f.nextUnresolvedID != "" {
		return f.nextUnresolvedID, nil
	}
	return "unres-1", nil
}

func (f *fakeGraph) LinkCites(ctx context.Context, srcLID, dst string, dstIsUnresolved bool, confidence float64, source string) error {
	f.cites = append(f.cites, citeCall{src: srcLID, dst: dst, dstIsUnresolved: dstIsUnresolved, confidence: confidence})
	return nil
}

func (f *fakeGraph) FindUnresolvedByTitleFP(ctx context.Context, titleFP string) ([]string, error) {
	return f.unresolvedByFP[titleFP], nil
}

func (f *fakeGraph) PromoteUnresolved(ctx context.Context, unresolvedID, lid string) error {
	f.promoted = append(f.promoted, promoteCall{unresolvedID: unresolvedID, lid: lid})
	return nil
}

func testLinker(t *testing.T, graph *fakeGraph) *Linker {
	t.Helper()
	idx, err := NewCandidateIndex(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	cfg := config.CitelinkConfig{
		GatekeeperThreshold: 0.4,
		AcceptThreshold:     0.6,
		YearTolerance:       1,
		JaroWinklerMin:      0.8,
		AuthorMatchRate:     0.5,
	}
	return New(graph, idx, cfg, nil)
}

func TestLinkReferences_ExactDOIResolve(t *testing.T) {
	graph := newFakeGraph()
	graph.set(domain.AliasDOI, "10.1/x", "lid-existing")
	l := testLinker(t, graph)

	refs := []references.Reference{{
		RawText: "some paper",
		Parsed:  &domain.ParsedRef{DOI: "10.1/x"},
		Source:  "pdf",
	}}
	require.NoError(t, l.LinkReferences(context.Background(), "lid-src", refs))

	require.Len(t, graph.cites, 1)
	assert.Equal(t, "lid-existing", graph.cites[0].dst)
	assert.False(t, graph.cites[0].dstIsUnresolved)
	assert.Empty(t, graph.unresolved)
}

func TestLinkReferences_FuzzyTitleMatch(t *testing.T) {
	graph := newFakeGraph()
	l := testLinker(t, graph)
	ctx := context.Background()

	require.NoError(t, l.IndexLiterature(ctx, "lid-existing", "Attention Is All You Need", []string{"Ashish Vaswani"}, 2017))

	refs := []references.Reference{{
		RawText: "Vaswani et al, Attention is all you need, 2017",
		Parsed:  &domain.ParsedRef{Title: "Attention is all you need", Authors: []string{"Ashish Vaswani"}, Year: 2017},
		Source:  "pdf",
	}}
	require.NoError(t, l.LinkReferences(ctx, "lid-src", refs))

	require.Len(t, graph.cites, 1)
	assert.Equal(t, "lid-existing", graph.cites[0].dst)
	assert.False(t, graph.cites[0].dstIsUnresolved)
}

func TestLinkReferences_NoMatchCreatesUnresolved(t *testing.T) {
	graph := newFakeGraph()
	l := testLinker(t, graph)

	refs := []references.Reference{{
		RawText: "An entirely unrelated paper",
		Parsed:  &domain.ParsedRef{Title: "An Entirely Unrelated Paper", Year: 2019},
		Source:  "pdf",
	}}
	require.NoError(t, l.LinkReferences(context.Background(), "lid-src", refs))

	require.Len(t, graph.unresolved, 1)
	require.Len(t, graph.cites, 1)
	assert.True(t, graph.cites[0].dstIsUnresolved)
}

func TestLinkReferences_SelfLoopSkipped(t *testing.T) {
	graph := newFakeGraph()
	graph.set(domain.AliasDOI, "10.1/self", "lid-src")
	l := testLinker(t, graph)

	refs := []references.Reference{{
		RawText: "self citation",
		Parsed:  &domain.ParsedRef{DOI: "10.1/self"},
		Source:  "pdf",
	}}
	require.NoError(t, l.LinkReferences(context.Background(), "lid-src", refs))

	assert.Empty(t, graph.cites)
}

func TestSweepUnresolved_PromotesMatches(t *testing.T) {
	graph := newFakeGraph()
	l := testLinker(t, graph)

	fp := dedup.TitleFingerprint("Some Title", []string{"Jane Doe"}, 2020)
	graph.unresolvedByFP[fp] = []string{"unres-1", "unres-2"}

	require.NoError(t, l.SweepUnresolved(context.Background(), "lid-new", "Some Title", []string{"Jane Doe"}, 2020))

	require.Len(t, graph.promoted, 2)
	assert.Equal(t, "lid-new", graph.promoted[0].lid)
}
