// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config holds the service-wide configuration, loaded by viper from
// a config file, the LITINGEST_ environment prefix, and flags.
package config

import (
	"time"

	"github.com/spf13/viper"
)

// BrokerConfig configures the Request Broker (C1).
type BrokerConfig struct {
	InternalTimeout time.Duration `mapstructure:"internal_timeout"`
	ExternalTimeout time.Duration `mapstructure:"external_timeout"`
	ExternalProxy   string        `mapstructure:"external_proxy"`
	MaxRetries      int           `mapstructure:"max_retries"`
	UserAgent       string        `mapstructure:"user_agent"`
}

// ContentConfig configures the Content Fetcher (C4).
type ContentConfig struct {
	MaxPDFBytes int64 `mapstructure:"max_pdf_bytes"`
}

// DedupConfig configures the Deduplication Engine (C7).
type DedupConfig struct {
	InFlightStaleness time.Duration `mapstructure:"in_flight_staleness"`
}

// CitelinkConfig configures the Citation Linker (C11) fuzzy-match thresholds,
// pinned per spec §9's Open Question resolution.
type CitelinkConfig struct {
	GatekeeperThreshold float64 `mapstructure:"gatekeeper_threshold"`
	AcceptThreshold     float64 `mapstructure:"accept_threshold"`
	YearTolerance       int     `mapstructure:"year_tolerance"`
	JaroWinklerMin      float64 `mapstructure:"jaro_winkler_min"`
	AuthorMatchRate     float64 `mapstructure:"author_match_rate"`
	CandidateDBPath     string  `mapstructure:"candidate_db_path"`
}

// TaskConfig configures the Task Coordinator (C9).
type TaskConfig struct {
	WorkerCount     int           `mapstructure:"worker_count"`
	Prefetch        int           `mapstructure:"prefetch"`
	PerTaskConcurrency int        `mapstructure:"per_task_concurrency"`
	HardTimeout     time.Duration `mapstructure:"hard_timeout"`
	SoftTimeout     time.Duration `mapstructure:"soft_timeout"`
	ResultTTL       time.Duration `mapstructure:"result_ttl"`
}

// GraphConfig configures the Neo4j-backed Alias & Graph DAO (C8).
type GraphConfig struct {
	URI      string `mapstructure:"uri"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// RedisConfig configures the Redis-backed task store / queue / pub-sub.
type RedisConfig struct {
	URL       string `mapstructure:"url"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// APIConfig configures the Resolver API surface (C10).
type APIConfig struct {
	ListenAddr   string        `mapstructure:"listen_addr"`
	GraphMaxLIDs int           `mapstructure:"graph_max_lids"`
	GraphMaxDepth int          `mapstructure:"graph_max_depth"`
	ByIDWait     time.Duration `mapstructure:"by_identifier_wait"`
}

// SourcesConfig configures External Source Clients (C2), including the
// optional local PDF-parser fallback (SPEC_FULL §12).
type SourcesConfig struct {
	CrossRefBase      string `mapstructure:"crossref_base"`
	ArxivAPIBase      string `mapstructure:"arxiv_api_base"`
	OpenAlexBase      string `mapstructure:"openalex_base"`
	SemanticScholarBase string `mapstructure:"semantic_scholar_base"`
	TEIParserURL      string `mapstructure:"tei_parser_url"`
	LocalParserImage  string `mapstructure:"local_parser_image"`
}

// Config aggregates every component's settings.
type Config struct {
	LogLevel  string          `mapstructure:"log_level"`
	Broker    BrokerConfig    `mapstructure:"broker"`
	Content   ContentConfig   `mapstructure:"content"`
	Dedup     DedupConfig     `mapstructure:"dedup"`
	Citelink  CitelinkConfig  `mapstructure:"citelink"`
	Task      TaskConfig      `mapstructure:"task"`
	Graph     GraphConfig     `mapstructure:"graph"`
	Redis     RedisConfig     `mapstructure:"redis"`
	API       APIConfig       `mapstructure:"api"`
	Sources   SourcesConfig   `mapstructure:"sources"`
}

// Default returns the configuration with every documented spec default
// filled in (spec §4.1, §4.4, §4.7, §4.9, §4.10, §4.11, §5).
func Default() Config {
	return Config{
		LogLevel: "info",
		Broker: BrokerConfig{
			InternalTimeout: 10 * time.Second,
			ExternalTimeout: 30 * time.Second,
			MaxRetries:      3,
			UserAgent:       "litingest/0.1 (mailto:research-infra@meshintel.example)",
		},
		Content: ContentConfig{
			MaxPDFBytes: 50 * 1024 * 1024,
		},
		Dedup: DedupConfig{
			InFlightStaleness: 30 * time.Minute,
		},
		Citelink: CitelinkConfig{
			GatekeeperThreshold: 0.4,
			AcceptThreshold:     0.6,
			YearTolerance:       1,
			JaroWinklerMin:      0.8,
			AuthorMatchRate:     0.5,
			CandidateDBPath:     "./litingest-candidates.db",
		},
		Task: TaskConfig{
			WorkerCount:        4,
			Prefetch:           2,
			PerTaskConcurrency: 3,
			HardTimeout:        30 * time.Minute,
			SoftTimeout:        25 * time.Minute,
			ResultTTL:          1 * time.Hour,
		},
		Graph: GraphConfig{
			URI:      "bolt://localhost:7687",
			Username: "neo4j",
		},
		Redis: RedisConfig{
			URL:       "redis://localhost:6379/0",
			KeyPrefix: "litingest:",
		},
		API: APIConfig{
			ListenAddr:    ":8080",
			GraphMaxLIDs:  20,
			GraphMaxDepth: 3,
			ByIDWait:      10 * time.Second,
		},
		Sources: SourcesConfig{
			CrossRefBase:        "https://api.crossref.org/works/",
			ArxivAPIBase:        "https://export.arxiv.org/api/query",
			OpenAlexBase:        "https://api.openalex.org/works/",
			SemanticScholarBase: "https://api.semanticscholar.org/graph/v1/paper/",
		},
	}
}

// Load reads the config via viper on top of Default(), honoring the
// LITINGEST_ environment prefix and an explicit config file path.
func Load(v *viper.Viper) (Config, error) {
	cfg := Default()
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
