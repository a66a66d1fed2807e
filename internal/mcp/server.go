// Package mcp exposes the stored activities, week views and training blocks
// to AI assistants over the Model Context Protocol.
package mcp

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"runlog/internal/types"
)

// Activities reads stored activities
type Activities interface {
	List(ctx context.Context, activityType string) ([]types.Activity, error)
	Count(ctx context.Context) (int, error)
}

// Weeks serves the weekly views
type Weeks interface {
	Available(ctx context.Context) ([]string, error)
	Summaries(ctx context.Context) ([]types.WeekSummary, error)
	Week(ctx context.Context, weekStart string) (types.Week, error)
}

// TrainingBlocks reads race-prep plans
type TrainingBlocks interface {
	List(ctx context.Context) ([]types.TrainingBlock, error)
	Weeks(ctx context.Context, id string) (types.TrainingBlockWeeks, error)
}

// Server wraps the MCP server with read-only service access.
type Server struct {
	mcpServer  *mcp.Server
	activities Activities
	weeks      Weeks
	blocks     TrainingBlocks
	logger     *log.Logger
}

// NewServer creates a new MCP server over the given services.
func NewServer(activities Activities, weeks Weeks, blocks TrainingBlocks, version string, logger *log.Logger) *Server {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "runlog",
			Version: version,
		},
		nil,
	)

	s := &Server{
		mcpServer:  mcpServer,
		activities: activities,
		weeks:      weeks,
		blocks:     blocks,
		logger:     logger,
	}

	s.registerTools()
	s.registerResources()

	return s
}

// Serve runs the server over stdio until ctx is done or the client hangs up.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("mcp server listening on stdio")
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
