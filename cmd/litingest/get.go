// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// getCmd is the parent for the Resolver API's read operations (spec §4.10
// get_literature/get_literature_fulltext/batch_get/graph/by_identifier).
var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Read literature records from a running serve instance",
}

var getLiteratureCmd = &cobra.Command{
	Use:   "literature <lid>",
	Short: "Fetch one literature record by LID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := getJSON(serverFlag(cmd), "/v1/literature/"+args[0])
		if err != nil {
			return err
		}
		return printResponse(resp)
	},
}

var getFulltextCmd = &cobra.Command{
	Use:   "fulltext <lid>",
	Short: "Fetch one literature record by LID, including fulltext",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := getJSON(serverFlag(cmd), "/v1/literature/"+args[0]+"/fulltext")
		if err != nil {
			return err
		}
		return printResponse(resp)
	},
}

type batchGetRequest struct {
	LIDs []string `json:"lids"`
}

var getBatchCmd = &cobra.Command{
	Use:   "batch <lid> [lid...]",
	Short: "Fetch several literature records by LID in one call",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := postJSON(serverFlag(cmd), "/v1/literature", batchGetRequest{LIDs: args})
		if err != nil {
			return err
		}
		return printResponse(resp)
	},
}

type graphRequest struct {
	LIDs  []string `json:"lids"`
	Depth int      `json:"depth"`
}

var getGraphCmd = &cobra.Command{
	Use:   "graph <lid> [lid...]",
	Short: "Read the citation graph around one or more seed LIDs",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		depth, _ := cmd.Flags().GetInt("depth")
		resp, err := postJSON(serverFlag(cmd), "/v1/graph", graphRequest{LIDs: args, Depth: depth})
		if err != nil {
			return err
		}
		return printResponse(resp)
	},
}

var getByIdentifierCmd = &cobra.Command{
	Use:   "by-identifier <kind> <value>",
	Short: "Resolve doi|arxiv_id|pmid|url to a literature record, submitting it first if unseen",
	Long: `by-identifier calls GET /v1/by-identifier/{kind}/{value}, which
internally submits the identifier if it isn't already known, waits up to the
server's configured bound for ingestion to finish, and returns the resulting
record (spec §4.10 "by_identifier").`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := strings.ToLower(args[0])
		resp, err := getJSON(serverFlag(cmd), fmt.Sprintf("/v1/by-identifier/%s/%s", kind, args[1]))
		if err != nil {
			return err
		}
		return printResponse(resp)
	},
}

func init() {
	getGraphCmd.Flags().Int("depth", 1, "BFS depth from the seed LIDs")
	for _, c := range []*cobra.Command{getLiteratureCmd, getFulltextCmd, getBatchCmd, getGraphCmd, getByIdentifierCmd} {
		addServerFlag(c)
		getCmd.AddCommand(c)
	}
	rootCmd.AddCommand(getCmd)
}
