// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package citelink

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/meshintel/litingest/internal/config"
	"github.com/meshintel/litingest/internal/dedup"
	"github.com/meshintel/litingest/internal/domain"
	"github.com/meshintel/litingest/internal/graphstore"
	"github.com/meshintel/litingest/internal/references"
)

// candidateSearchLimit bounds how many fuzzy candidates the gatekeeper pass
// considers per reference, keeping the composite scorer's cost flat
// regardless of graph size.
const candidateSearchLimit = 10

// GraphLinker is the slice of graphstore.Store the Linker needs, narrowed
// so tests can substitute a fake rather than a live Neo4j (mirrors
// internal/dedup's AliasIndex interface).
type GraphLinker interface {
	ResolveAlias(ctx context.Context, aliasType domain.AliasType, value string) (string, bool, error)
	CreateUnresolved(ctx context.Context, parsed domain.ParsedRef, rawText string) (string, error)
	LinkCites(ctx context.Context, srcLID, dst string, dstIsUnresolved bool, confidence float64, source string) error
	FindUnresolvedByTitleFP(ctx context.Context, titleFP string) ([]string, error)
	PromoteUnresolved(ctx context.Context, unresolvedID, lid string) error
}

// Linker implements the Citation Linker (C11, spec §4.11): for each
// normalized reference of a just-ingested Literature, it resolves a CITES
// edge to an existing Literature, a newly created Unresolved placeholder,
// or (after a later submission lands) promotes a previously-Unresolved
// placeholder into a real edge. Grounded on the teacher's
// extract/citations.go LinkCitations, generalized from linking citations
// within one paper's local knowledge base to linking across the whole
// literature graph.
type Linker struct {
	Graph      GraphLinker
	Candidates *CandidateIndex
	Cfg        config.CitelinkConfig
	Log        *logrus.Entry
}

// New constructs a Linker.
func New(graph GraphLinker, candidates *CandidateIndex, cfg config.CitelinkConfig, log *logrus.Entry) *Linker {
	return &Linker{Graph: graph, Candidates: candidates, Cfg: cfg, Log: log}
}

// IndexLiterature registers lid's title/authors/year in the candidate
// index, making it reachable by future LinkReferences calls. Callers
// (the Task Coordinator, after UpsertLiterature) must call this once per
// newly created Literature.
func (l *Linker) IndexLiterature(ctx context.Context, lid, title string, authors []string, year int) error {
	return l.Candidates.Add(ctx, lid, title, authors, year)
}

// LinkReferences resolves each of refs against the graph and links srcLID
// to the result, implementing the waterfall spec §4.11 describes: (a)
// exact DOI/ArXiv alias resolve, (b) gatekeeper + composite fuzzy title/
// author match, (c) Unresolved placeholder creation. It structurally
// satisfies internal/task's CitationLinker interface.
func (l *Linker) LinkReferences(ctx context.Context, srcLID string, refs []references.Reference) error {
	for _, ref := range refs {
		if err := l.linkOne(ctx, srcLID, ref); err != nil {
			if l.Log != nil {
				l.Log.WithError(err).WithField("src_lid", srcLID).Warn("citelink: failed to link reference")
			}
			continue
		}
	}
	return nil
}

func (l *Linker) linkOne(ctx context.Context, srcLID string, ref references.Reference) error {
	dstLID, confidence, ok, err := l.resolveExact(ctx, ref.Parsed)
	if err != nil {
		return err
	}
	if ok {
		return l.link(ctx, srcLID, dstLID, false, confidence, ref.Source)
	}

	if ref.Parsed != nil && ref.Parsed.Title != "" {
		dstLID, confidence, ok, err = l.resolveFuzzy(ctx, *ref.Parsed)
		if err != nil {
			return err
		}
		if ok {
			return l.link(ctx, srcLID, dstLID, false, confidence, ref.Source)
		}
	}

	parsed := domain.ParsedRef{}
	if ref.Parsed != nil {
		parsed = *ref.Parsed
	}
	unresolvedID, err := l.Graph.CreateUnresolved(ctx, parsed, ref.RawText)
	if err != nil {
		return err
	}
	return l.link(ctx, srcLID, unresolvedID, true, 1.0, ref.Source)
}

func (l *Linker) link(ctx context.Context, srcLID, dstID string, dstIsUnresolved bool, confidence float64, source string) error {
	if graphstore.CreatesSelfLoop(srcLID, dstID) {
		return nil
	}
	return l.Graph.LinkCites(ctx, srcLID, dstID, dstIsUnresolved, confidence, source)
}

// resolveExact is spec §4.11 step (a): DOI or ArXiv ID, when present on
// the parsed reference, resolve deterministically through the alias index.
func (l *Linker) resolveExact(ctx context.Context, parsed *domain.ParsedRef) (lid string, confidence float64, ok bool, err error) {
	if parsed == nil {
		return "", 0, false, nil
	}
	if parsed.DOI != "" {
		lid, ok, err = l.Graph.ResolveAlias(ctx, domain.AliasDOI, parsed.DOI)
		if err != nil || ok {
			return lid, 1.0, ok, err
		}
	}
	if parsed.ArxivID != "" {
		lid, ok, err = l.Graph.ResolveAlias(ctx, domain.AliasArxiv, parsed.ArxivID)
		if err != nil || ok {
			return lid, 1.0, ok, err
		}
	}
	return "", 0, false, nil
}

// resolveFuzzy is spec §4.11 step (b): a cheap FTS5 gatekeeper pass
// followed by the full composite score (title token-overlap+LCS, author
// last-name Jaro-Winkler match rate, year tolerance), accepted only above
// Cfg.AcceptThreshold.
func (l *Linker) resolveFuzzy(ctx context.Context, ref domain.ParsedRef) (lid string, confidence float64, ok bool, err error) {
	candidates, err := l.Candidates.Search(ctx, ref.Title, candidateSearchLimit)
	if err != nil {
		return "", 0, false, err
	}

	best := 0.0
	bestLID := ""
	for _, cand := range candidates {
		gate := titleScore(ref.Title, cand.Title)
		if gate < l.Cfg.GatekeeperThreshold {
			continue
		}
		if !l.yearCompatible(ref.Year, cand.Year) {
			continue
		}

		score := gate
		if len(ref.Authors) > 0 && len(cand.Authors) > 0 {
			rate := lastNameMatchRate(ref.Authors, cand.Authors, l.Cfg.JaroWinklerMin)
			if rate < l.Cfg.AuthorMatchRate {
				continue
			}
		}

		if score > best {
			best = score
			bestLID = cand.LID
		}
	}

	if bestLID == "" || best < l.Cfg.AcceptThreshold {
		return "", 0, false, nil
	}
	return bestLID, best, true, nil
}

func (l *Linker) yearCompatible(refYear, candYear int) bool {
	if refYear == 0 || candYear == 0 {
		return true
	}
	diff := refYear - candYear
	if diff < 0 {
		diff = -diff
	}
	return diff <= l.Cfg.YearTolerance
}

// SweepUnresolved promotes any Unresolved placeholder whose stored title
// fingerprint matches the freshly created Literature lid/title/authors/year
// (spec §4.11 "On any newly-created Literature, additionally sweep
// existing Unresolved nodes whose fingerprint matches and promote them").
func (l *Linker) SweepUnresolved(ctx context.Context, lid, title string, authors []string, year int) error {
	fp := dedup.TitleFingerprint(title, authors, year)
	if fp == "" {
		return nil
	}
	ids, err := l.Graph.FindUnresolvedByTitleFP(ctx, fp)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := l.Graph.PromoteUnresolved(ctx, id, lid); err != nil {
			return err
		}
	}
	return nil
}
