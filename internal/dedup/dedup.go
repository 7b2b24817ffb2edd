// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dedup implements the Deduplication Engine (C7): the four-phase
// waterfall described in spec §4.7, executed in order with the first match
// winning.
package dedup

import (
	"context"
	"time"

	"github.com/meshintel/litingest/internal/config"
	"github.com/meshintel/litingest/internal/domain"
)

// Outcome is the result of running the waterfall against one submission.
type Outcome struct {
	Kind        OutcomeKind
	LID         string // set for OutcomeExisting; empty for OutcomeInProgress
	OtherTaskID string // set for OutcomeInProgress
}

// OutcomeKind enumerates the three waterfall results (spec §4.7).
type OutcomeKind string

const (
	OutcomeExisting   OutcomeKind = "existing"
	OutcomeInProgress OutcomeKind = "in_progress"
	OutcomeNew        OutcomeKind = "new"
)

// AliasIndex is the subset of the Alias & Graph DAO (C8) the dedup engine
// needs: alias resolution and the cleanup check for phase 1.
type AliasIndex interface {
	ResolveAlias(ctx context.Context, aliasType domain.AliasType, value string) (lid string, found bool, err error)
	LiteratureStatus(ctx context.Context, lid string) (status domain.TaskStatus, found bool, err error)
	// CleanupEligible reports whether lid may be deleted and recreated
	// (spec §9 "Failure-doc cleanup in phase 1": terminal failed AND no
	// incoming CITES edges from resolved literature).
	CleanupEligible(ctx context.Context, lid string) (bool, error)
	DeleteLiterature(ctx context.Context, lid string) error
}

// TaskLookup is the subset of the Task Coordinator (C9) store the dedup
// engine needs for phase 3.
type TaskLookup interface {
	// FindInFlight returns the task ID of a pending/processing task whose
	// submitted_source normalizes equal to normalizedSource and that was
	// created within staleness of now, if any.
	FindInFlight(ctx context.Context, normalizedSource string, staleness time.Duration) (taskID string, found bool, err error)
}

// ExplicitIdentifiers is the phase-1 input: any identifiers already known
// about the submission before fetching metadata.
type ExplicitIdentifiers struct {
	DOI     string
	ArxivID string
	PMID    string
}

// Engine runs the four-phase waterfall.
type Engine struct {
	Aliases AliasIndex
	Tasks   TaskLookup
	Cfg     config.DedupConfig
}

// New builds an Engine.
func New(aliases AliasIndex, tasks TaskLookup, cfg config.DedupConfig) *Engine {
	return &Engine{Aliases: aliases, Tasks: tasks, Cfg: cfg}
}

// Phase1 runs the explicit-identifier phase (spec §4.7 phase 1). It returns
// ok=false when no identifier matched (or the only match was cleaned up),
// meaning the caller should proceed to phase 2.
func (e *Engine) Phase1(ctx context.Context, ids ExplicitIdentifiers) (Outcome, bool, error) {
	for _, pair := range []struct {
		typ   domain.AliasType
		value string
	}{
		{domain.AliasDOI, ids.DOI},
		{domain.AliasArxiv, ids.ArxivID},
		{domain.AliasPMID, ids.PMID},
	} {
		if pair.value == "" {
			continue
		}
		lid, found, err := e.Aliases.ResolveAlias(ctx, pair.typ, pair.value)
		if err != nil {
			return Outcome{}, false, err
		}
		if !found {
			continue
		}

		status, found, err := e.Aliases.LiteratureStatus(ctx, lid)
		if err != nil {
			return Outcome{}, false, err
		}
		if !found {
			continue
		}
		if status != domain.TaskFailed {
			return Outcome{Kind: OutcomeExisting, LID: lid}, true, nil
		}

		eligible, err := e.Aliases.CleanupEligible(ctx, lid)
		if err != nil {
			return Outcome{}, false, err
		}
		if eligible {
			if err := e.Aliases.DeleteLiterature(ctx, lid); err != nil {
				return Outcome{}, false, err
			}
			continue
		}
		// Not eligible for cleanup: keep it, treat this submission as a
		// retry attempt against the same LID (spec §9 "Failure-doc
		// cleanup in phase 1").
		return Outcome{Kind: OutcomeExisting, LID: lid}, true, nil
	}
	return Outcome{}, false, nil
}

// Phase2 runs the source-URL phase (spec §4.7 phase 2).
func (e *Engine) Phase2(ctx context.Context, rawURL string) (Outcome, bool, error) {
	if rawURL == "" {
		return Outcome{}, false, nil
	}
	normalized := NormalizeURL(rawURL)
	lid, found, err := e.Aliases.ResolveAlias(ctx, domain.AliasURL, normalized)
	if err != nil {
		return Outcome{}, false, err
	}
	if !found {
		return Outcome{}, false, nil
	}

	status, found, err := e.Aliases.LiteratureStatus(ctx, lid)
	if err != nil {
		return Outcome{}, false, err
	}
	if !found {
		return Outcome{}, false, nil
	}
	if status != domain.TaskFailed {
		return Outcome{Kind: OutcomeExisting, LID: lid}, true, nil
	}

	eligible, err := e.Aliases.CleanupEligible(ctx, lid)
	if err != nil {
		return Outcome{}, false, err
	}
	if eligible {
		if err := e.Aliases.DeleteLiterature(ctx, lid); err != nil {
			return Outcome{}, false, err
		}
		return Outcome{}, false, nil
	}
	return Outcome{Kind: OutcomeExisting, LID: lid}, true, nil
}

// Phase3 runs the in-flight-task phase (spec §4.7 phase 3).
func (e *Engine) Phase3(ctx context.Context, rawURL string) (Outcome, bool, error) {
	if rawURL == "" || e.Tasks == nil {
		return Outcome{}, false, nil
	}
	normalized := NormalizeURL(rawURL)
	taskID, found, err := e.Tasks.FindInFlight(ctx, normalized, e.Cfg.InFlightStaleness)
	if err != nil {
		return Outcome{}, false, err
	}
	if !found {
		return Outcome{}, false, nil
	}
	return Outcome{Kind: OutcomeInProgress, OtherTaskID: taskID}, true, nil
}

// Phase4 runs the content/title fingerprint phase (spec §4.7 phase 4),
// called once C5/C6 have produced metadata and (optionally) C4 a PDF.
// Either fingerprint alone is enough to match: two submissions of the same
// PDF with divergent (or missing) titles still dedup on pdf_md5, and two
// submissions of the same paper from different hosts without a shared PDF
// still dedup on title_fp.
func (e *Engine) Phase4(ctx context.Context, pdfMD5, titleFP string) (Outcome, bool, error) {
	for _, pair := range []struct {
		typ   domain.AliasType
		value string
	}{
		{domain.AliasPDFMD5, pdfMD5},
		{domain.AliasTitleFP, titleFP},
	} {
		if pair.value == "" {
			continue
		}
		lid, found, err := e.Aliases.ResolveAlias(ctx, pair.typ, pair.value)
		if err != nil {
			return Outcome{}, false, err
		}
		if found {
			return Outcome{Kind: OutcomeExisting, LID: lid}, true, nil
		}
	}
	return Outcome{}, false, nil
}

// Resolve runs phases 1-3 (the pre-metadata phases, spec §4.9 plan step 2)
// and returns the first matching outcome, or OutcomeNew if none match.
func (e *Engine) Resolve(ctx context.Context, ids ExplicitIdentifiers, rawURL string) (Outcome, error) {
	if out, ok, err := e.Phase1(ctx, ids); err != nil || ok {
		return out, err
	}
	if out, ok, err := e.Phase2(ctx, rawURL); err != nil || ok {
		return out, err
	}
	if out, ok, err := e.Phase3(ctx, rawURL); err != nil || ok {
		return out, err
	}
	return Outcome{Kind: OutcomeNew}, nil
}
