// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/meshintel/litingest/internal/api"
	"github.com/meshintel/litingest/internal/broker"
	"github.com/meshintel/litingest/internal/citelink"
	"github.com/meshintel/litingest/internal/config"
	"github.com/meshintel/litingest/internal/container"
	"github.com/meshintel/litingest/internal/content"
	"github.com/meshintel/litingest/internal/convert"
	"github.com/meshintel/litingest/internal/dedup"
	"github.com/meshintel/litingest/internal/graphstore"
	"github.com/meshintel/litingest/internal/logging"
	"github.com/meshintel/litingest/internal/metadata"
	"github.com/meshintel/litingest/internal/sources"
	"github.com/meshintel/litingest/internal/task"
	"github.com/meshintel/litingest/internal/urlmap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the ingestion pipeline and its HTTP API",
	Long: `serve wires the URL mapping, content, metadata, references, dedup,
graph and citation-linking components into a worker pool and fronts them
with the Resolver API (submit/get_task/stream_task/get_literature/
get_literature_fulltext/batch_get/graph/by_identifier).`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logging.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b := broker.New(cfg.Broker)

	crossRef := &sources.CrossRefClient{Broker: b, BaseURL: cfg.Sources.CrossRefBase}
	arxiv := &sources.ArxivClient{Broker: b, BaseURL: cfg.Sources.ArxivAPIBase}
	openAlex := &sources.OpenAlexClient{Broker: b, BaseURL: cfg.Sources.OpenAlexBase}
	semantic := &sources.SemanticScholarClient{Broker: b, BaseURL: cfg.Sources.SemanticScholarBase, APIKey: secretDefault("semantic_scholar_api_key", "")}
	teiParser := &sources.TEIParserClient{Broker: b, URL: cfg.Sources.TEIParserURL}
	if cfg.Sources.TEIParserURL == "" {
		if rt, err := container.DetectRuntime(); err == nil {
			if local, err := convert.NewLocalTEIParser(rt); err == nil {
				teiParser.Local = local
			} else {
				log.WithError(err).Warn("local TEI parser unavailable, PDF parsing disabled")
			}
		} else {
			log.WithError(err).Warn("no container runtime detected, PDF parsing disabled")
		}
	}

	urlRegistry := urlmap.DefaultRegistry()

	contentFetcher := content.New(b, openAlex, nil, cfg.Content)
	metaFetcher := &metadata.Fetcher{CrossRef: crossRef, Arxiv: arxiv, Semantic: semantic, TEIParser: teiParser}

	graphStore, err := graphstore.New(ctx, cfg.Graph)
	if err != nil {
		return fmt.Errorf("connect graph store: %w", err)
	}
	defer graphStore.Close(ctx)
	if err := graphStore.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("ensure graph indexes: %w", err)
	}

	taskStore, err := task.NewStore(ctx, cfg.Redis, cfg.Task.ResultTTL)
	if err != nil {
		return fmt.Errorf("connect task store: %w", err)
	}
	defer taskStore.Close()

	dedupEngine := dedup.New(graphStore, taskStore, cfg.Dedup)

	candidates, err := citelink.NewCandidateIndex(cfg.Citelink.CandidateDBPath)
	if err != nil {
		return fmt.Errorf("open candidate index: %w", err)
	}
	linker := citelink.New(graphStore, candidates, cfg.Citelink, logging.Component(log, "citelink"))

	coordinator := &task.Coordinator{
		Store:    taskStore,
		Registry: task.NewRegistry(),
		URLMap:   urlRegistry,
		Content:  contentFetcher,
		Metadata: metaFetcher,
		Dedup:    dedupEngine,
		Graph:    graphStore,
		Citelink: linker,
		Cfg:      cfg.Task,
		Log:      logging.Component(log, "coordinator"),
	}

	pool := task.NewPool(taskStore, coordinator, cfg.Task.WorkerCount, cfg.Task.Prefetch, logging.Component(log, "pool"))
	go pool.Run(ctx)

	server := api.New(taskStore, graphStore, coordinator, cfg.API, logging.Component(log, "api"))
	httpServer := &http.Server{Addr: cfg.API.ListenAddr, Handler: server}

	serveErr := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.API.ListenAddr).Info("listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-serveErr:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Task.SoftTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
