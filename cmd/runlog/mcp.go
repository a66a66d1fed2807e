package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"runlog/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

The server reads the local database and never calls Strava. It communicates
via stdin/stdout; logs go to stderr.

AVAILABLE TOOLS:

  list_activities           List stored activities
  activity_count            Count stored activities
  list_weeks                List weeks with activity, or weekly summaries
  get_week                  Day-by-day breakdown of one week
  list_training_blocks      List training blocks
  get_training_block_weeks  Numbered weeks of a training block

AVAILABLE RESOURCES:

  runlog://weeks/summaries   Weekly totals
  runlog://training-blocks   Training blocks`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		server := mcp.NewServer(a.activities, a.weeks, a.blocks, version, logger)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
