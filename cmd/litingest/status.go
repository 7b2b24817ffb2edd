// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status <task-id>",
	Short: "Fetch a submitted task's current status",
	Long: `status calls GET /v1/tasks/{task_id}, printing the task's current
component-by-component progress, or with --stream follows
/v1/tasks/{task_id}/stream until the task reaches a terminal state.`,
	Args: cobra.ExactArgs(1),
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().Bool("stream", false, "follow the task's SSE stream instead of a single snapshot")
	addServerFlag(statusCmd)
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	taskID := args[0]
	stream, _ := cmd.Flags().GetBool("stream")

	path := fmt.Sprintf("/v1/tasks/%s", taskID)
	if stream {
		path += "/stream"
	}
	resp, err := getJSON(serverFlag(cmd), path)
	if err != nil {
		return err
	}
	return printResponse(resp)
}
