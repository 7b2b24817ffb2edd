// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the litingest service: a scholarly
// literature ingestion pipeline fronted by an HTTP API (C10), driven by a
// worker pool (C9) over the URL mapping, content, metadata, references,
// dedup, graph and citation-linking components (C1-C8, C11).
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/meshintel/litingest/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup (Semantic
// Scholar, etc.), the way cmd/research-engine loaded provider keys.
var loadedSecrets map[string]string

func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	return loadedSecrets[key]
}

var rootCmd = &cobra.Command{
	Use:   "litingest",
	Short: "Scholarly literature ingestion service",
	Long: `litingest resolves URLs and identifiers to deduplicated literature
records: it fetches metadata and PDF content through waterfalls of external
providers, links references into a citation graph, and serves the result
over an HTTP API.

serve runs the full pipeline as a long-lived service. submit/status/get are
thin CLI clients against a running serve instance.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./litingest.yaml or ~/.config/litingest/litingest.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("litingest")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "litingest"))
		}
	}

	viper.SetEnvPrefix("LITINGEST")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
