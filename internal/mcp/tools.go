package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"runlog/internal/types"
)

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_activities",
		Description: "List stored activities, newest first. Distances are in miles.",
	}, s.handleListActivities)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "activity_count",
		Description: "Count every stored activity regardless of type",
	}, s.handleActivityCount)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_weeks",
		Description: "List Monday week starts with activity, or full weekly summaries",
	}, s.handleListWeeks)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_week",
		Description: "Get the Monday-to-Sunday breakdown of one week",
	}, s.handleGetWeek)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_training_blocks",
		Description: "List training blocks ordered by race date",
	}, s.handleListTrainingBlocks)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_training_block_weeks",
		Description: "Get the numbered weeks of a training block with their mileage",
	}, s.handleGetTrainingBlockWeeks)
}

// Tool input/output types

type listActivitiesInput struct {
	Type  string `json:"type,omitempty" jsonschema:"activity type such as Run or Ride, or all; defaults to the primary type"`
	Limit int    `json:"limit,omitempty" jsonschema:"max results (default 20)"`
}

type countOutput struct {
	Count int `json:"count"`
}

type listWeeksInput struct {
	Summaries bool `json:"summaries,omitempty" jsonschema:"return numbered weekly totals instead of bare week starts"`
}

type getWeekInput struct {
	WeekStart string `json:"week_start" jsonschema:"any date in the week, YYYY-MM-DD"`
}

type blockWeeksInput struct {
	ID string `json:"id" jsonschema:"training block id"`
}

// Tool handlers

func (s *Server) handleListActivities(ctx context.Context, req *mcp.CallToolRequest, input listActivitiesInput) (*mcp.CallToolResult, any, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}

	activities, err := s.activities.List(ctx, input.Type)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list activities: %w", err)
	}
	if len(activities) == 0 {
		return nil, map[string]any{"message": "No activities found."}, nil
	}
	if len(activities) > input.Limit {
		activities = activities[:input.Limit]
	}
	return nil, map[string]any{"activities": activities}, nil
}

func (s *Server) handleActivityCount(ctx context.Context, req *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, countOutput, error) {
	n, err := s.activities.Count(ctx)
	if err != nil {
		return nil, countOutput{}, fmt.Errorf("failed to count activities: %w", err)
	}
	return nil, countOutput{Count: n}, nil
}

func (s *Server) handleListWeeks(ctx context.Context, req *mcp.CallToolRequest, input listWeeksInput) (*mcp.CallToolResult, any, error) {
	if input.Summaries {
		summaries, err := s.weeks.Summaries(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to summarize weeks: %w", err)
		}
		return nil, map[string]any{"weeks": summaries}, nil
	}

	weeks, err := s.weeks.Available(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list weeks: %w", err)
	}
	if len(weeks) == 0 {
		return nil, map[string]any{"message": "No weeks with activity."}, nil
	}
	return nil, map[string]any{"weeks": weeks}, nil
}

func (s *Server) handleGetWeek(ctx context.Context, req *mcp.CallToolRequest, input getWeekInput) (*mcp.CallToolResult, types.Week, error) {
	w, err := s.weeks.Week(ctx, input.WeekStart)
	if err != nil {
		return nil, types.Week{}, fmt.Errorf("failed to get week %q: %w", input.WeekStart, err)
	}
	return nil, w, nil
}

func (s *Server) handleListTrainingBlocks(ctx context.Context, req *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, any, error) {
	blocks, err := s.blocks.List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list training blocks: %w", err)
	}
	if len(blocks) == 0 {
		return nil, map[string]any{"message": "No training blocks found."}, nil
	}
	return nil, map[string]any{"blocks": blocks}, nil
}

func (s *Server) handleGetTrainingBlockWeeks(ctx context.Context, req *mcp.CallToolRequest, input blockWeeksInput) (*mcp.CallToolResult, any, error) {
	weeks, err := s.blocks.Weeks(ctx, input.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("training block not found: %s: %w", input.ID, err)
	}
	return nil, weeks, nil
}
