package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	summariesURI = "runlog://weeks/summaries"
	blocksURI    = "runlog://training-blocks"
)

func (s *Server) registerResources() {
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         summariesURI,
		Name:        "Weekly Summaries",
		Description: "Totals for every week with activity, oldest week numbered 1",
		MIMEType:    "application/json",
	}, s.handleSummariesResource)

	s.mcpServer.AddResource(&mcp.Resource{
		URI:         blocksURI,
		Name:        "Training Blocks",
		Description: "All training blocks with weeks remaining to race day",
		MIMEType:    "application/json",
	}, s.handleBlocksResource)
}

func (s *Server) handleSummariesResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	summaries, err := s.weeks.Summaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize weeks: %w", err)
	}
	return jsonResource(summariesURI, summaries)
}

func (s *Server) handleBlocksResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	blocks, err := s.blocks.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list training blocks: %w", err)
	}
	return jsonResource(blocksURI, blocks)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
