// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"
)

// serverFlag returns the base URL of a running `serve` instance, shared by
// the submit/status/get thin CLI wrappers (SPEC_FULL §10: "preserving a
// non-service way to drive ingestion for local development and scripting").
func serverFlag(cmd *cobra.Command) string {
	addr, _ := cmd.Flags().GetString("server")
	return addr
}

func addServerFlag(cmd *cobra.Command) {
	cmd.Flags().String("server", "http://localhost:8080", "litingest server base URL")
}

func postJSON(baseURL, path string, body interface{}) (*http.Response, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
	}
	resp, err := http.Post(baseURL+path, "application/json", &buf)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", path, err)
	}
	return resp, nil
}

func getJSON(baseURL, path string) (*http.Response, error) {
	resp, err := http.Get(baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", path, err)
	}
	return resp, nil
}

// printResponse copies resp's body to stdout as-is; every route already
// returns the JSON shape the caller wants to see.
func printResponse(resp *http.Response) error {
	defer resp.Body.Close()
	_, err := io.Copy(os.Stdout, resp.Body)
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("server returned %s", resp.Status)
	}
	return err
}
