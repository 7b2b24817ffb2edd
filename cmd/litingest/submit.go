// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"strings"

	"github.com/spf13/cobra"
)

type submitRequest struct {
	URL     string   `json:"url,omitempty"`
	DOI     string   `json:"doi,omitempty"`
	ArxivID string   `json:"arxiv_id,omitempty"`
	PMID    string   `json:"pmid,omitempty"`
	PDFURL  string   `json:"pdf_url,omitempty"`
	Title   string   `json:"title,omitempty"`
	Authors []string `json:"authors,omitempty"`
}

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a URL or identifier for ingestion",
	Long: `submit posts a single submission to a running serve instance's
/v1/submit endpoint, printing either an existing literature ID (on a dedup
hit) or a new task ID to poll with "status".`,
	RunE: runSubmit,
}

func init() {
	submitCmd.Flags().String("url", "", "landing page or PDF URL")
	submitCmd.Flags().String("doi", "", "DOI")
	submitCmd.Flags().String("arxiv-id", "", "arXiv ID")
	submitCmd.Flags().String("pmid", "", "PubMed ID")
	submitCmd.Flags().String("pdf-url", "", "direct PDF URL")
	submitCmd.Flags().String("title", "", "title, stored with the submission (dedup does not use it)")
	submitCmd.Flags().String("authors", "", "comma-separated author names")
	addServerFlag(submitCmd)
	rootCmd.AddCommand(submitCmd)
}

func runSubmit(cmd *cobra.Command, args []string) error {
	url, _ := cmd.Flags().GetString("url")
	doi, _ := cmd.Flags().GetString("doi")
	arxivID, _ := cmd.Flags().GetString("arxiv-id")
	pmid, _ := cmd.Flags().GetString("pmid")
	pdfURL, _ := cmd.Flags().GetString("pdf-url")
	title, _ := cmd.Flags().GetString("title")
	authorsCSV, _ := cmd.Flags().GetString("authors")

	var authors []string
	if authorsCSV != "" {
		for _, a := range strings.Split(authorsCSV, ",") {
			authors = append(authors, strings.TrimSpace(a))
		}
	}

	req := submitRequest{
		URL: url, DOI: doi, ArxivID: arxivID, PMID: pmid,
		PDFURL: pdfURL, Title: title, Authors: authors,
	}

	resp, err := postJSON(serverFlag(cmd), "/v1/submit", req)
	if err != nil {
		return err
	}
	return printResponse(resp)
}
