// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package task

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/meshintel/litingest/internal/config"
	"github.com/meshintel/litingest/internal/content"
	"github.com/meshintel/litingest/internal/dedup"
	"github.com/meshintel/litingest/internal/domain"
	"github.com/meshintel/litingest/internal/errkind"
	"github.com/meshintel/litingest/internal/graphstore"
	"github.com/meshintel/litingest/internal/metadata"
	"github.com/meshintel/litingest/internal/references"
	"github.com/meshintel/litingest/internal/sources"
	"github.com/meshintel/litingest/internal/urlmap"
)

// Submission is everything a caller may supply when asking for a work to
// be ingested (spec §6 "Submission (abstract)").
type Submission struct {
	URL     string   `json:"url,omitempty"`
	DOI     string   `json:"doi,omitempty"`
	ArxivID string   `json:"arxiv_id,omitempty"`
	PMID    string   `json:"pmid,omitempty"`
	PDFURL  string   `json:"pdf_url,omitempty"`
	Title   string   `json:"title,omitempty"`
	Authors []string `json:"authors,omitempty"`
}

// CitationLinker is the Citation Linker (C11) surface the coordinator
// invokes at plan steps 4 and 6; implemented by package citelink. Declared
// here, not there, so citelink depends on task rather than the reverse.
type CitationLinker interface {
	// LinkReferences resolves srcLID's reference list against the graph.
	LinkReferences(ctx context.Context, srcLID string, refs []references.Reference) error
	// IndexLiterature registers a newly created Literature as a future
	// fuzzy-match candidate for other tasks' reference lists.
	IndexLiterature(ctx context.Context, lid, title string, authors []string, year int) error
	// SweepUnresolved promotes any Unresolved placeholder whose
	// fingerprint matches the freshly created Literature (spec §4.11).
	SweepUnresolved(ctx context.Context, lid, title string, authors []string, year int) error
}

// Coordinator drives one task through the execution plan of spec §4.9,
// wiring together URL mapping (C3), content (C4), metadata (C5),
// references (C6), dedup (C7), the graph DAO (C8) and the citation linker
// (C11). Grounded on evalgo-org-eve/coordinator/phases.go's PhaseManager,
// simplified to this system's fixed state diagram.
type Coordinator struct {
	Store      *Store
	Registry   *Registry
	URLMap     *urlmap.Registry
	Content    *content.Fetcher
	Metadata   *metadata.Fetcher
	Dedup      *dedup.Engine
	Graph      *graphstore.Store
	Citelink   CitationLinker
	Cfg        config.TaskConfig
	Log        *logrus.Entry
}

// Submit runs the phase-1-only dedup check spec §4.10 names for `submit`,
// using only the identifiers the caller already supplied; on a miss it
// schedules a new task and returns its ID.
func (c *Coordinator) Submit(ctx context.Context, sub Submission) (existingLID string, taskID string, accepted bool, err error) {
	ids := dedup.ExplicitIdentifiers{DOI: sub.DOI, ArxivID: sub.ArxivID, PMID: sub.PMID}
	outcome, ok, err := c.Dedup.Phase1(ctx, ids)
	if err != nil {
		return "", "", false, err
	}
	if ok && outcome.Kind == dedup.OutcomeExisting {
		return outcome.LID, "", false, nil
	}

	taskID = uuid.NewString()
	source := submittedSource(sub)
	t := domain.NewTask(taskID, source)
	if err := c.Store.SaveSubmission(ctx, taskID, sub); err != nil {
		return "", "", false, err
	}
	if err := c.Store.SaveTask(ctx, t); err != nil {
		return "", "", false, err
	}
	if err := c.Store.Enqueue(ctx, taskID); err != nil {
		return "", "", false, err
	}
	return "", taskID, true, nil
}

func submittedSource(sub Submission) string {
	switch {
	case sub.URL != "":
		return sub.URL
	case sub.DOI != "":
		return "doi:" + sub.DOI
	case sub.ArxivID != "":
		return "arxiv:" + sub.ArxivID
	case sub.PMID != "":
		return "pmid:" + sub.PMID
	default:
		return sub.PDFURL
	}
}

// Run executes the full plan for taskID (spec §4.9 "Execution" steps 1-7).
// Invoked by Pool once a task ID is dequeued.
func (c *Coordinator) Run(ctx context.Context, taskID string) error {
	t, found, err := c.Store.GetTask(ctx, taskID)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("task %s not found", taskID)
	}
	sub, err := c.Store.GetSubmission(ctx, taskID)
	if err != nil {
		return err
	}

	cancel := c.Registry.Track(taskID)
	defer c.Registry.Untrack(taskID)

	deadline := time.Now().Add(c.Cfg.HardTimeout)
	if err := c.Store.MarkProcessing(ctx, taskID, deadline); err != nil {
		c.Log.WithError(err).Warn("mark processing failed")
	}
	defer c.Store.CompleteProcessing(ctx, taskID)

	if err := Transition(t, domain.TaskProcessing); err != nil {
		return err
	}
	c.publish(ctx, t, domain.EventStatus)

	if cancelled(cancel) {
		return c.finishCancelled(ctx, t)
	}

	// Step 1: URL mapping, only when the submission is URL-only.
	var mapping urlmap.Mapping
	if sub.URL != "" && sub.DOI == "" && sub.ArxivID == "" && sub.PMID == "" {
		m, ok, err := c.URLMap.Resolve(ctx, sub.URL)
		if err != nil {
			c.Log.WithError(err).Warn("url mapping failed")
		} else if ok {
			mapping = m
		}
	}
	if mapping.DOI != "" {
		sub.DOI = mapping.DOI
	}
	if mapping.ArxivID != "" {
		sub.ArxivID = mapping.ArxivID
	}

	if cancelled(cancel) {
		return c.finishCancelled(ctx, t)
	}

	// Step 2: pre-metadata dedup, phases 1-3.
	ids := dedup.ExplicitIdentifiers{DOI: sub.DOI, ArxivID: sub.ArxivID, PMID: sub.PMID}
	preOutcome, err := c.Dedup.Resolve(ctx, ids, sub.URL)
	if err != nil {
		return c.finishFailed(ctx, t, errkind.New(errkind.Internal, "dedup", err))
	}
	switch preOutcome.Kind {
	case dedup.OutcomeExisting:
		return c.finishDuplicate(ctx, t, preOutcome.LID)
	case dedup.OutcomeInProgress:
		// Phase 3 also finds this task's own in-flight index entry.
		if preOutcome.OtherTaskID != taskID {
			return c.finishDuplicate(ctx, t, "")
		}
	}

	if cancelled(cancel) {
		return c.finishCancelled(ctx, t)
	}

	// Step 3: emit a placeholder LID, run metadata and content concurrently.
	candidate := graphstore.Candidate{Identifiers: domain.Identifiers{DOI: sub.DOI, ArxivID: sub.ArxivID, PMID: sub.PMID}}
	placeholderLID := graphstore.DeriveLID(candidate)
	t.LiteratureID = placeholderLID

	var metaResult *metadata.Result
	var contentResult *content.Result
	var metaErr, contentErr error

	_ = TransitionComponent(t, domain.ComponentMetadata, domain.ComponentProcessing)
	_ = TransitionComponent(t, domain.ComponentContent, domain.ComponentProcessing)
	c.publish(ctx, t, domain.EventStatus)

	done := make(chan struct{}, 2)
	go func() {
		metaResult, metaErr = c.Metadata.Fetch(ctx, metadata.Input{DOI: sub.DOI, ArxivID: sub.ArxivID})
		done <- struct{}{}
	}()
	go func() {
		contentResult, contentErr = c.Content.Fetch(ctx, sub.PDFURL, mapping)
		done <- struct{}{}
	}()
	<-done
	<-done

	if contentErr != nil {
		cs := t.Components[domain.ComponentContent]
		cs.Status = domain.ComponentFailed
		cs.Error = toErrorInfo(contentErr)
		cs.NextAction = "provide PDF"
		t.Components[domain.ComponentContent] = cs
	} else {
		cs := t.Components[domain.ComponentContent]
		cs.Status = domain.ComponentSuccess
		cs.Progress = 100
		cs.Source = contentResult.Source
		t.Components[domain.ComponentContent] = cs
	}

	if metaErr != nil || metaResult == nil || metaResult.Metadata.Title == "" {
		cs := t.Components[domain.ComponentMetadata]
		cs.Status = domain.ComponentFailed
		if metaErr != nil {
			cs.Error = toErrorInfo(metaErr)
		}
		if metaResult != nil {
			cs.NextAction = metaResult.NextAction
		}
		t.Components[domain.ComponentMetadata] = cs
		t.RecomputeProgress()
		return c.finishFailed(ctx, t, errkind.New(errkind.NotFound, "metadata", fmt.Errorf("no metadata source succeeded")))
	}
	cs := t.Components[domain.ComponentMetadata]
	cs.Status = domain.ComponentSuccess
	cs.Progress = 100
	t.Components[domain.ComponentMetadata] = cs
	t.RecomputeProgress()
	c.publish(ctx, t, domain.EventStatus)

	if cancelled(cancel) {
		return c.finishCancelled(ctx, t)
	}

	// Step 4: post-metadata dedup, phase 4.
	var pdfMD5 string
	if contentErr == nil {
		pdfMD5 = dedup.ContentFingerprint(contentResult.Bytes)
	}
	authorNames := make([]string, len(metaResult.Metadata.Authors))
	for i, a := range metaResult.Metadata.Authors {
		authorNames[i] = a.Name
	}
	titleFP := dedup.TitleFingerprint(metaResult.Metadata.Title, authorNames, metaResult.Metadata.Year)
	postOutcome, _, err := c.Dedup.Phase4(ctx, pdfMD5, titleFP)
	if err != nil {
		return c.finishFailed(ctx, t, errkind.New(errkind.Internal, "dedup", err))
	}
	if postOutcome.Kind == dedup.OutcomeExisting {
		if sub.DOI != "" {
			_ = c.Graph.AddAlias(ctx, postOutcome.LID, domain.AliasDOI, sub.DOI)
		}
		if sub.ArxivID != "" {
			_ = c.Graph.AddAlias(ctx, postOutcome.LID, domain.AliasArxiv, sub.ArxivID)
		}
		if pdfMD5 != "" {
			_ = c.Graph.AddAlias(ctx, postOutcome.LID, domain.AliasPDFMD5, pdfMD5)
		}
		return c.finishDuplicate(ctx, t, postOutcome.LID)
	}

	candidate.Identifiers.Fingerprint = titleFP
	candidate.Metadata = metaResult.Metadata
	lid, _, err := c.Graph.UpsertLiterature(ctx, candidate)
	if err != nil {
		return c.finishFailed(ctx, t, errkind.New(errkind.Internal, "graph", err))
	}
	t.LiteratureID = lid
	if sub.DOI != "" {
		_ = c.Graph.AddAlias(ctx, lid, domain.AliasDOI, sub.DOI)
	}
	if sub.ArxivID != "" {
		_ = c.Graph.AddAlias(ctx, lid, domain.AliasArxiv, sub.ArxivID)
	}
	if sub.PMID != "" {
		_ = c.Graph.AddAlias(ctx, lid, domain.AliasPMID, sub.PMID)
	}
	if sub.URL != "" {
		_ = c.Graph.AddAlias(ctx, lid, domain.AliasURL, dedup.NormalizeURL(sub.URL))
	}
	_ = c.Graph.AddAlias(ctx, lid, domain.AliasTitleFP, titleFP)
	if pdfMD5 != "" {
		_ = c.Graph.AddAlias(ctx, lid, domain.AliasPDFMD5, pdfMD5)
	}

	var pdfWork *sources.Work
	if contentErr == nil && contentResult != nil && c.Metadata.TEIParser != nil {
		if w, err := c.Metadata.TEIParser.ParsePDF(ctx, contentResult.Bytes); err == nil && w != nil {
			pdfWork = w
		}
	}

	if contentErr == nil && contentResult != nil {
		content := domain.Content{
			PDFURL:        contentResult.FetchedURL,
			SourcePageURL: mapping.SourcePageURL,
		}
		if pdfWork != nil {
			content.Fulltext = pdfWork.Fulltext
			content.ParsingMethod = "tei"
		}
		if err := c.Graph.UpdateContent(ctx, lid, content); err != nil {
			c.Log.WithError(err).Warn("content persistence failed")
		}
	}

	if c.Citelink != nil {
		if err := c.Citelink.IndexLiterature(ctx, lid, metaResult.Metadata.Title, authorNames, metaResult.Metadata.Year); err != nil {
			c.Log.WithError(err).Warn("candidate indexing failed")
		}
		if err := c.Citelink.SweepUnresolved(ctx, lid, metaResult.Metadata.Title, authorNames, metaResult.Metadata.Year); err != nil {
			c.Log.WithError(err).Warn("unresolved sweep failed")
		}
	}

	if cancelled(cancel) {
		return c.finishCancelled(ctx, t)
	}

	// Step 5: references, possibly needing content's PDF bytes.
	_ = TransitionComponent(t, domain.ComponentReferences, domain.ComponentProcessing)
	c.publish(ctx, t, domain.EventStatus)

	var pdfRefs []domain.ParsedRef
	if pdfWork != nil {
		pdfRefs = sources.ReferencesOf(pdfWork)
	}
	refs := references.Fetch(ctx, references.Input{
		DOI:           sub.DOI,
		APIReferences: referenceSourceOf(metaResult),
		PDFReferences: pdfRefs,
	})
	rs := t.Components[domain.ComponentReferences]
	if refs == nil && pdfRefs == nil {
		rs.Status = domain.ComponentFailed
		rs.NextAction = "no references available"
	} else {
		rs.Status = domain.ComponentSuccess
		rs.Progress = 100
	}
	t.Components[domain.ComponentReferences] = rs
	t.RecomputeProgress()

	// Step 6: citation linker.
	if c.Citelink != nil && len(refs) > 0 {
		if err := c.Citelink.LinkReferences(ctx, lid, refs); err != nil {
			c.Log.WithError(err).Warn("citation linking failed")
		}
	}

	// Step 7: finalize.
	t.ResultType = domain.ResultCreated
	return c.finishCompleted(ctx, t)
}

// referenceSourceOf extracts whatever reference list the winning metadata
// attempt carried, if its provider surfaced one (authoritative APIs return
// references alongside bibliographic metadata; spec §4.6 step 1, preferred
// over a locally parsed PDF when both are available).
func referenceSourceOf(r *metadata.Result) []domain.ParsedRef {
	if r == nil {
		return nil
	}
	return r.References
}

func cancelled(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

func (c *Coordinator) finishCompleted(ctx context.Context, t *domain.Task) error {
	if err := Transition(t, domain.TaskCompleted); err != nil {
		return err
	}
	return c.terminal(ctx, t, domain.EventCompleted)
}

func (c *Coordinator) finishDuplicate(ctx context.Context, t *domain.Task, lid string) error {
	t.ResultType = domain.ResultDuplicate
	if lid != "" {
		t.LiteratureID = lid
	}
	if err := Transition(t, domain.TaskCompleted); err != nil {
		return err
	}
	return c.terminal(ctx, t, domain.EventCompleted)
}

func (c *Coordinator) finishFailed(ctx context.Context, t *domain.Task, derr *errkind.Error) error {
	t.Error = toErrorInfo(derr)
	if err := Transition(t, domain.TaskFailed); err != nil {
		return err
	}
	return c.terminal(ctx, t, domain.EventFailed)
}

func (c *Coordinator) finishCancelled(ctx context.Context, t *domain.Task) error {
	if err := Transition(t, domain.TaskCancelled); err != nil {
		return err
	}
	return c.terminal(ctx, t, domain.EventFailed)
}

func (c *Coordinator) terminal(ctx context.Context, t *domain.Task, kind domain.EventKind) error {
	t.UpdatedAt = time.Now()
	if err := c.Store.SaveTask(ctx, t); err != nil {
		return err
	}
	if lidStatus := c.taskStatusForLiterature(t); lidStatus != "" && t.LiteratureID != "" {
		_ = c.setLiteratureStatus(ctx, t.LiteratureID, lidStatus)
	}
	c.publish(ctx, t, kind)
	return nil
}

// taskStatusForLiterature reports the TaskStatus to record on the
// Literature node graphstore reads back for dedup phase 1/2's cleanup
// check, or "" if the node shouldn't be stamped (e.g. a duplicate outcome
// leaves the existing node's own status untouched).
func (c *Coordinator) taskStatusForLiterature(t *domain.Task) domain.TaskStatus {
	if t.ResultType == domain.ResultDuplicate {
		return ""
	}
	return t.ExecutionStatus
}

func (c *Coordinator) setLiteratureStatus(ctx context.Context, lid string, status domain.TaskStatus) error {
	return c.Graph.SetLiteratureStatus(ctx, lid, status)
}

func (c *Coordinator) publish(ctx context.Context, t *domain.Task, kind domain.EventKind) {
	snapshot := *t
	if err := c.Store.SaveTask(ctx, &snapshot); err != nil {
		c.Log.WithError(err).Warn("save task failed")
	}
	if err := c.Store.Publish(ctx, domain.TaskEvent{Kind: kind, TaskID: t.TaskID, Timestamp: time.Now(), Payload: &snapshot}); err != nil {
		c.Log.WithError(err).Warn("publish event failed")
	}
}

func toErrorInfo(err error) *domain.ErrorInfo {
	if de, ok := errkind.As(err); ok {
		return &domain.ErrorInfo{Kind: string(de.Kind), Stage: de.Stage, Details: de.Cause.Error()}
	}
	return &domain.ErrorInfo{Kind: string(errkind.Internal), Details: err.Error()}
}
