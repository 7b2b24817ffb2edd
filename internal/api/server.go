// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package api implements the Resolver API Surface (C10): HTTP handlers for
// submit/get_task/stream_task/get_literature/get_literature_fulltext/
// batch_get/graph/by_identifier (spec §4.10). Grounded on
// seanpm2001-labe/go/ckit/server.go's gorilla/mux routing and go-cache
// usage, adapted from index/citation fusion to task submission and graph
// reads.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/meshintel/litingest/internal/config"
	"github.com/meshintel/litingest/internal/domain"
	"github.com/meshintel/litingest/internal/graphstore"
	"github.com/meshintel/litingest/internal/task"
)

// Graph is the subset of graphstore.Store the API reads from.
type Graph interface {
	GetLiterature(ctx context.Context, lid string) (domain.Literature, bool, error)
	GetLiteratureFulltext(ctx context.Context, lid string) (domain.Literature, bool, error)
	BatchGet(ctx context.Context, lids []string) ([]domain.Literature, error)
	Graph(ctx context.Context, lids []string, depth int) ([]graphstore.GraphNode, []graphstore.GraphEdge, error)
}

// Tasks is the subset of task.Store the API reads from.
type Tasks interface {
	GetTask(ctx context.Context, taskID string) (*domain.Task, bool, error)
	Subscribe(ctx context.Context, taskID string) (<-chan domain.TaskEvent, func(), error)
}

// Submitter is the subset of task.Coordinator the API drives submissions
// through.
type Submitter interface {
	Submit(ctx context.Context, sub task.Submission) (existingLID, taskID string, accepted bool, err error)
}

// Server wires Tasks, Graph and Submitter behind the HTTP surface spec
// §4.10 names. Expensive reads (by_identifier's bounded wait) are cached
// the way the teacher caches its fused citation responses.
type Server struct {
	Tasks     Tasks
	Graph     Graph
	Submitter Submitter
	Cfg       config.APIConfig
	Log       *logrus.Entry
	Router    *mux.Router

	cache *cache.Cache
}

// New builds a Server with its routes registered.
func New(tasks Tasks, graph Graph, submitter Submitter, cfg config.APIConfig, log *logrus.Entry) *Server {
	s := &Server{
		Tasks:     tasks,
		Graph:     graph,
		Submitter: submitter,
		Cfg:       cfg,
		Log:       log,
		Router:    mux.NewRouter(),
		cache:     cache.New(5*time.Minute, 10*time.Minute),
	}
	s.routes()
	s.Router.Use(s.logRequest)
	return s
}

func (s *Server) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		next.ServeHTTP(w, r)
		if s.Log != nil {
			s.Log.WithFields(logrus.Fields{
				"method":  r.Method,
				"path":    r.URL.Path,
				"elapsed": time.Since(started),
			}).Debug("api request")
		}
	})
}

func (s *Server) routes() {
	s.Router.HandleFunc("/v1/submit", s.handleSubmit()).Methods(http.MethodPost)
	s.Router.HandleFunc("/v1/tasks/{task_id}", s.handleGetTask()).Methods(http.MethodGet)
	s.Router.HandleFunc("/v1/tasks/{task_id}/stream", s.handleStreamTask()).Methods(http.MethodGet)
	s.Router.HandleFunc("/v1/literature/{lid}", s.handleGetLiterature()).Methods(http.MethodGet)
	s.Router.HandleFunc("/v1/literature/{lid}/fulltext", s.handleGetLiteratureFulltext()).Methods(http.MethodGet)
	s.Router.HandleFunc("/v1/literature", s.handleBatchGet()).Methods(http.MethodPost)
	s.Router.HandleFunc("/v1/graph", s.handleGraph()).Methods(http.MethodPost)
	s.Router.HandleFunc("/v1/by-identifier/{kind}/{value:.*}", s.handleByIdentifier()).Methods(http.MethodGet)
}

// ServeHTTP turns the server into an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

// submitRequest is the JSON body for /v1/submit (spec §6 "Submission
// (abstract)").
type submitRequest struct {
	URL     string   `json:"url,omitempty"`
	DOI     string   `json:"doi,omitempty"`
	ArxivID string   `json:"arxiv_id,omitempty"`
	PMID    string   `json:"pmid,omitempty"`
	PDFURL  string   `json:"pdf_url,omitempty"`
	Title   string   `json:"title,omitempty"`
	Authors []string `json:"authors,omitempty"`
}

func (s *Server) handleSubmit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req submitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_input", err)
			return
		}
		lid, taskID, accepted, err := s.Submitter.Submit(r.Context(), task.Submission{
			URL: req.URL, DOI: req.DOI, ArxivID: req.ArxivID, PMID: req.PMID,
			PDFURL: req.PDFURL, Title: req.Title, Authors: req.Authors,
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal", err)
			return
		}
		if !accepted {
			writeJSON(w, http.StatusOK, map[string]interface{}{"exists": true, "lid": lid})
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]interface{}{
			"accepted":   true,
			"task_id":    taskID,
			"status_url": fmt.Sprintf("/v1/tasks/%s", taskID),
			"stream_url": fmt.Sprintf("/v1/tasks/%s/stream", taskID),
		})
	}
}

func (s *Server) handleGetTask() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		taskID := mux.Vars(r)["task_id"]
		t, found, err := s.Tasks.GetTask(r.Context(), taskID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal", err)
			return
		}
		if !found {
			writeError(w, http.StatusNotFound, "not_found", fmt.Errorf("task %s not found", taskID))
			return
		}
		writeJSON(w, http.StatusOK, t)
	}
}

// handleStreamTask implements stream_task as Server-Sent Events, closing
// on the task's terminal state (spec §4.10 "closes on terminal state").
func (s *Server) handleStreamTask() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		taskID := mux.Vars(r)["task_id"]
		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "internal", fmt.Errorf("streaming unsupported"))
			return
		}

		events, cancel, err := s.Tasks.Subscribe(r.Context(), taskID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal", err)
			return
		}
		defer cancel()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		if t, found, err := s.Tasks.GetTask(r.Context(), taskID); err == nil && found {
			writeSSE(w, flusher, domain.TaskEvent{Kind: domain.EventStatus, TaskID: taskID, Timestamp: time.Now(), Payload: t})
			if t.ExecutionStatus.Terminal() {
				return
			}
		}

		for {
			select {
			case <-r.Context().Done():
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				writeSSE(w, flusher, ev)
				if ev.Kind == domain.EventCompleted || ev.Kind == domain.EventFailed {
					return
				}
			}
		}
	}
}

func writeSSE(w http.ResponseWriter, flusher http.Flusher, ev domain.TaskEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Kind, data)
	flusher.Flush()
}

func (s *Server) handleGetLiterature() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lid := mux.Vars(r)["lid"]
		lit, found, err := s.Graph.GetLiterature(r.Context(), lid)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal", err)
			return
		}
		if !found {
			writeError(w, http.StatusNotFound, "not_found", fmt.Errorf("literature %s not found", lid))
			return
		}
		writeJSON(w, http.StatusOK, lit)
	}
}

func (s *Server) handleGetLiteratureFulltext() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lid := mux.Vars(r)["lid"]
		lit, found, err := s.Graph.GetLiteratureFulltext(r.Context(), lid)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal", err)
			return
		}
		if !found {
			writeError(w, http.StatusNotFound, "not_found", fmt.Errorf("literature %s not found", lid))
			return
		}
		writeJSON(w, http.StatusOK, lit)
	}
}

type batchGetRequest struct {
	LIDs []string `json:"lids"`
}

func (s *Server) handleBatchGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req batchGetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_input", err)
			return
		}
		lits, err := s.Graph.BatchGet(r.Context(), req.LIDs)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal", err)
			return
		}
		writeJSON(w, http.StatusOK, lits)
	}
}

type graphRequest struct {
	LIDs  []string `json:"lids"`
	Depth int      `json:"depth,omitempty"`
}

func (s *Server) handleGraph() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req graphRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_input", err)
			return
		}
		if len(req.LIDs) > s.Cfg.GraphMaxLIDs {
			req.LIDs = req.LIDs[:s.Cfg.GraphMaxLIDs]
		}
		depth := req.Depth
		if depth <= 0 {
			depth = 1
		}
		if depth > s.Cfg.GraphMaxDepth {
			depth = s.Cfg.GraphMaxDepth
		}
		nodes, edges, err := s.Graph.Graph(r.Context(), req.LIDs, depth)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"nodes": nodes, "edges": edges})
	}
}

// handleByIdentifier is the convenience operation spec §4.10 describes:
// submit, then a bounded wait on the resulting task's stream, then read.
func (s *Server) handleByIdentifier() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		kind, value := vars["kind"], vars["value"]

		sub := task.Submission{}
		switch kind {
		case "doi":
			sub.DOI = value
		case "arxiv_id":
			sub.ArxivID = value
		case "pmid":
			sub.PMID = value
		case "url":
			sub.URL = value
		default:
			writeError(w, http.StatusBadRequest, "invalid_input", fmt.Errorf("unknown identifier kind %q", kind))
			return
		}

		if cached, found := s.cache.Get(kind + ":" + value); found {
			writeJSON(w, http.StatusOK, cached)
			return
		}

		lid, taskID, accepted, err := s.Submitter.Submit(r.Context(), sub)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal", err)
			return
		}
		if !accepted {
			lit, found, err := s.Graph.GetLiterature(r.Context(), lid)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "internal", err)
				return
			}
			if !found {
				writeError(w, http.StatusNotFound, "not_found", fmt.Errorf("literature %s not found", lid))
				return
			}
			writeJSON(w, http.StatusOK, lit)
			return
		}

		lid = s.waitForTerminal(r.Context(), taskID, s.Cfg.ByIDWait)
		if lid == "" {
			writeJSON(w, http.StatusAccepted, map[string]interface{}{
				"accepted": true, "task_id": taskID,
				"status_url": fmt.Sprintf("/v1/tasks/%s", taskID),
			})
			return
		}
		lit, found, err := s.Graph.GetLiterature(r.Context(), lid)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal", err)
			return
		}
		if !found {
			writeError(w, http.StatusNotFound, "not_found", fmt.Errorf("literature %s not found", lid))
			return
		}
		s.cache.Set(kind+":"+value, lit, cache.DefaultExpiration)
		writeJSON(w, http.StatusOK, lit)
	}
}

// waitForTerminal blocks on taskID's event stream up to wait, returning the
// resulting literature_id, or "" on timeout/non-completion.
func (s *Server) waitForTerminal(ctx context.Context, taskID string, wait time.Duration) string {
	events, cancel, err := s.Tasks.Subscribe(ctx, taskID)
	if err != nil {
		return ""
	}
	defer cancel()

	deadline := time.After(wait)
	for {
		select {
		case <-deadline:
			return ""
		case <-ctx.Done():
			return ""
		case ev, ok := <-events:
			if !ok {
				return ""
			}
			if ev.Kind == domain.EventCompleted && ev.Payload != nil {
				return ev.Payload.LiteratureID
			}
			if ev.Kind == domain.EventFailed {
				return ""
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, kind string, err error) {
	writeJSON(w, status, errorBody{Kind: kind, Error: err.Error()})
}
