// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dedup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshintel/litingest/internal/config"
	"github.com/meshintel/litingest/internal/domain"
)

type fakeAliases struct {
	aliases   map[domain.AliasType]map[string]string
	status    map[string]domain.TaskStatus
	eligible  map[string]bool
	deleted   []string
}

func newFakeAliases() *fakeAliases {
	return &fakeAliases{
		aliases:  map[domain.AliasType]map[string]string{},
		status:   map[string]domain.TaskStatus{},
		eligible: map[string]bool{},
	}
}

func (f *fakeAliases) set(typ domain.AliasType, value, lid string) {
	if f.aliases[typ] == nil {
		f.aliases[typ] = map[string]string{}
	}
	f.aliases[typ][value] = lid
}

func (f *fakeAliases) ResolveAlias(ctx context.Context, typ domain.AliasType, value string) (string, bool, error) {
	lid, ok := f.aliases[typ][value]
	return lid, ok, nil
}

func (f *fakeAliases) LiteratureStatus(ctx context.Context, lid string) (domain.TaskStatus, bool, error) {
	s, ok := f.status[lid]
	return s, ok, nil
}

func (f *fakeAliases) CleanupEligible(ctx context.Context, lid string) (bool, error) {
	return f.eligible[lid], nil
}

func (f *fakeAliases) DeleteLiterature(ctx context.Context, lid string) error {
	f.deleted = append(f.deleted, lid)
	delete(f.status, lid)
	return nil
}

type fakeTasks struct {
	inFlight map[string]string
}

func (f *fakeTasks) FindInFlight(ctx context.Context, normalized string, staleness time.Duration) (string, bool, error) {
	id, ok := f.inFlight[normalized]
	return id, ok, nil
}

func TestPhase1_ExistingMatch(t *testing.T) {
	a := newFakeAliases()
	a.set(domain.AliasDOI, "10.1/x", "lid-1")
	a.status["lid-1"] = domain.TaskCompleted

	e := New(a, nil, config.Default().Dedup)
	out, ok, err := e.Phase1(context.Background(), ExplicitIdentifiers{DOI: "10.1/x"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, OutcomeExisting, out.Kind)
	assert.Equal(t, "lid-1", out.LID)
}

func TestPhase1_FailedAndCleanupEligible_ContinuesWaterfall(t *testing.T) {
	a := newFakeAliases()
	a.set(domain.AliasDOI, "10.1/x", "lid-1")
	a.status["lid-1"] = domain.TaskFailed
	a.eligible["lid-1"] = true

	e := New(a, nil, config.Default().Dedup)
	_, ok, err := e.Phase1(context.Background(), ExplicitIdentifiers{DOI: "10.1/x"})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, a.deleted, "lid-1")
}

func TestPhase1_FailedNotEligible_ReturnsExistingAsRetry(t *testing.T) {
	a := newFakeAliases()
	a.set(domain.AliasDOI, "10.1/x", "lid-1")
	a.status["lid-1"] = domain.TaskFailed
	a.eligible["lid-1"] = false

	e := New(a, nil, config.Default().Dedup)
	out, ok, err := e.Phase1(context.Background(), ExplicitIdentifiers{DOI: "10.1/x"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, OutcomeExisting, out.Kind)
	assert.Equal(t, "lid-1", out.LID)
}

func TestPhase2_URLNormalizationMatches(t *testing.T) {
	a := newFakeAliases()
	a.set(domain.AliasURL, NormalizeURL("https://arxiv.org/abs/2301.07041"), "lid-2")
	a.status["lid-2"] = domain.TaskCompleted

	e := New(a, nil, config.Default().Dedup)
	out, ok, err := e.Phase2(context.Background(), "https://arxiv.org/pdf/2301.07041.pdf?utm_source=x#frag")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "lid-2", out.LID)
}

func TestPhase3_InFlightMatch(t *testing.T) {
	a := newFakeAliases()
	tasks := &fakeTasks{inFlight: map[string]string{NormalizeURL("https://x.org/p"): "task-9"}}

	e := New(a, tasks, config.Default().Dedup)
	out, ok, err := e.Phase3(context.Background(), "https://x.org/p")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, OutcomeInProgress, out.Kind)
	assert.Equal(t, "task-9", out.OtherTaskID)
}

func TestPhase4_TitleFingerprintMatch(t *testing.T) {
	a := newFakeAliases()
	fp := TitleFingerprint("Attention Is All You Need", []string{"Ashish Vaswani", "Noam Shazeer"}, 2017)
	a.set(domain.AliasTitleFP, fp, "lid-3")

	e := New(a, nil, config.Default().Dedup)
	out, ok, err := e.Phase4(context.Background(), "deadbeef", fp)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "lid-3", out.LID)
}

func TestPhase4_ContentFingerprintMatch(t *testing.T) {
	a := newFakeAliases()
	a.set(domain.AliasPDFMD5, "deadbeef", "lid-4")

	e := New(a, nil, config.Default().Dedup)
	out, ok, err := e.Phase4(context.Background(), "deadbeef", "some-other-title-fp")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "lid-4", out.LID)
}

func TestResolve_NewWhenNothingMatches(t *testing.T) {
	a := newFakeAliases()
	e := New(a, &fakeTasks{inFlight: map[string]string{}}, config.Default().Dedup)
	out, err := e.Resolve(context.Background(), ExplicitIdentifiers{}, "https://new.example/paper")
	require.NoError(t, err)
	assert.Equal(t, OutcomeNew, out.Kind)
}

func TestNormalizeURL_CanonicalizesArxivVariants(t *testing.T) {
	a := NormalizeURL("https://ARXIV.org/pdf/2301.07041.pdf")
	b := NormalizeURL("https://arxiv.org/abs/2301.07041")
	assert.Equal(t, a, b)
}
