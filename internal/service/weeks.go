package service

import (
	"context"
	"fmt"

	"runlog/internal/analysis"
	"runlog/internal/store"
	"runlog/internal/types"
)

// WeekService builds the weekly views from stored activities
type WeekService struct {
	store       *store.DB
	primaryType string
}

// NewWeekService creates a week service over activities of primaryType
func NewWeekService(db *store.DB, primaryType string) *WeekService {
	if primaryType == "" {
		primaryType = DefaultPrimaryType
	}
	return &WeekService{store: db, primaryType: primaryType}
}

// Available returns the Monday of every week with activity, most recent first
func (s *WeekService) Available(ctx context.Context) ([]string, error) {
	entries, err := s.entries(ctx)
	if err != nil {
		return nil, err
	}
	weeks := analysis.AvailableWeeks(entries)
	out := make([]string, len(weeks))
	for i, w := range weeks {
		out[i] = w.Format(analysis.DateLayout)
	}
	return out, nil
}

// Summaries returns every available week numbered from the oldest
func (s *WeekService) Summaries(ctx context.Context) ([]types.WeekSummary, error) {
	entries, err := s.entries(ctx)
	if err != nil {
		return nil, err
	}
	numbered := analysis.WeeklySummaries(entries)
	out := make([]types.WeekSummary, len(numbered))
	for i, w := range numbered {
		out[i] = types.WeekSummary{WeekNumber: w.Number, Week: types.NewWeek(w.Week)}
	}
	return out, nil
}

// Week returns the week containing weekStart. Any day of the week is
// accepted and aligned to its Monday.
func (s *WeekService) Week(ctx context.Context, weekStart string) (types.Week, error) {
	d, err := analysis.ParseDate(weekStart)
	if err != nil {
		return types.Week{}, invalid("Invalid week start")
	}
	entries, err := s.entries(ctx)
	if err != nil {
		return types.Week{}, err
	}
	return types.NewWeek(analysis.WeekData(entries, analysis.MondayOf(d))), nil
}

func (s *WeekService) entries(ctx context.Context) ([]analysis.Entry, error) {
	rows, err := s.store.ListActivities(ctx, store.ActivityFilter{Type: s.primaryType})
	if err != nil {
		return nil, fmt.Errorf("listing activities: %w", err)
	}
	entries := make([]analysis.Entry, len(rows))
	for i, a := range rows {
		entries[i] = ToActivity(a).Entry()
	}
	return entries, nil
}
