package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"runlog/internal/analysis"
	"runlog/internal/store"
	"runlog/internal/types"
)

// TrainingBlockService manages race-prep plans
type TrainingBlockService struct {
	store *store.DB
	weeks *WeekService
	now   func() time.Time
	newID func() string
}

// NewTrainingBlockService creates a training block service. weeks supplies
// the activities for per-week summaries.
func NewTrainingBlockService(db *store.DB, weeks *WeekService) *TrainingBlockService {
	return &TrainingBlockService{
		store: db,
		weeks: weeks,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// List returns every block, soonest race first
func (s *TrainingBlockService) List(ctx context.Context) ([]types.TrainingBlock, error) {
	blocks, err := s.store.ListTrainingBlocks(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing training blocks: %w", err)
	}
	out := make([]types.TrainingBlock, len(blocks))
	for i, b := range blocks {
		out[i] = s.toBlock(b)
	}
	return out, nil
}

// Get returns one block or ErrNotFound
func (s *TrainingBlockService) Get(ctx context.Context, id string) (types.TrainingBlock, error) {
	b, err := s.get(ctx, id)
	if err != nil {
		return types.TrainingBlock{}, err
	}
	return s.toBlock(*b), nil
}

// Create validates and stores a new block
func (s *TrainingBlockService) Create(ctx context.Context, req types.CreateTrainingBlockRequest) (types.TrainingBlock, error) {
	switch {
	case strings.TrimSpace(req.RaceName) == "":
		return types.TrainingBlock{}, invalid("Race name is required")
	case strings.TrimSpace(req.Identifier) == "":
		return types.TrainingBlock{}, invalid("Identifier is required")
	case strings.TrimSpace(req.RaceDate) == "":
		return types.TrainingBlock{}, invalid("Race date is required")
	case strings.TrimSpace(req.StartDate) == "":
		return types.TrainingBlock{}, invalid("Start date is required")
	case req.DurationWeeks <= 0:
		return types.TrainingBlock{}, invalid("Duration weeks must be greater than 0")
	}

	raceDate, err := analysis.ParseDate(req.RaceDate)
	if err != nil {
		return types.TrainingBlock{}, invalid("Invalid race date")
	}
	startDate, err := analysis.ParseDate(req.StartDate)
	if err != nil {
		return types.TrainingBlock{}, invalid("Invalid start date")
	}
	if !startDate.Before(raceDate) {
		return types.TrainingBlock{}, invalid("Start date must be before race date")
	}

	now := s.now().UTC().Truncate(time.Second)
	b := &store.TrainingBlock{
		ID:            s.newID(),
		RaceName:      strings.TrimSpace(req.RaceName),
		Identifier:    strings.TrimSpace(req.Identifier),
		RaceDate:      raceDate,
		StartDate:     startDate,
		DurationWeeks: req.DurationWeeks,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.CreateTrainingBlock(ctx, b); err != nil {
		return types.TrainingBlock{}, fmt.Errorf("creating training block: %w", err)
	}
	return s.toBlock(*b), nil
}

// Update applies a partial update. Fields left nil keep their stored values
// and the date order is checked on the merged record.
func (s *TrainingBlockService) Update(ctx context.Context, id string, req types.UpdateTrainingBlockRequest) (types.TrainingBlock, error) {
	b, err := s.get(ctx, id)
	if err != nil {
		return types.TrainingBlock{}, err
	}

	if req.RaceName != nil {
		if strings.TrimSpace(*req.RaceName) == "" {
			return types.TrainingBlock{}, invalid("Race name is required")
		}
		b.RaceName = strings.TrimSpace(*req.RaceName)
	}
	if req.Identifier != nil {
		if strings.TrimSpace(*req.Identifier) == "" {
			return types.TrainingBlock{}, invalid("Identifier is required")
		}
		b.Identifier = strings.TrimSpace(*req.Identifier)
	}
	if req.RaceDate != nil {
		d, err := analysis.ParseDate(*req.RaceDate)
		if err != nil {
			return types.TrainingBlock{}, invalid("Invalid race date")
		}
		b.RaceDate = d
	}
	if req.StartDate != nil {
		d, err := analysis.ParseDate(*req.StartDate)
		if err != nil {
			return types.TrainingBlock{}, invalid("Invalid start date")
		}
		b.StartDate = d
	}
	if req.DurationWeeks != nil {
		if *req.DurationWeeks <= 0 {
			return types.TrainingBlock{}, invalid("Duration weeks must be greater than 0")
		}
		b.DurationWeeks = *req.DurationWeeks
	}
	if !b.StartDate.Before(b.RaceDate) {
		return types.TrainingBlock{}, invalid("Start date must be before race date")
	}

	b.UpdatedAt = s.now().UTC().Truncate(time.Second)
	if err := s.store.UpdateTrainingBlock(ctx, b); err != nil {
		if errors.Is(err, store.ErrTrainingBlockNotFound) {
			return types.TrainingBlock{}, ErrNotFound
		}
		return types.TrainingBlock{}, fmt.Errorf("updating training block: %w", err)
	}
	return s.toBlock(*b), nil
}

// Delete removes a block or returns ErrNotFound
func (s *TrainingBlockService) Delete(ctx context.Context, id string) error {
	err := s.store.DeleteTrainingBlock(ctx, id)
	if errors.Is(err, store.ErrTrainingBlockNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("deleting training block: %w", err)
	}
	return nil
}

// Weeks schedules a block and fills each week with the recorded activities
func (s *TrainingBlockService) Weeks(ctx context.Context, id string) (types.TrainingBlockWeeks, error) {
	b, err := s.get(ctx, id)
	if err != nil {
		return types.TrainingBlockWeeks{}, err
	}
	entries, err := s.weeks.entries(ctx)
	if err != nil {
		return types.TrainingBlockWeeks{}, err
	}

	scheduled := analysis.BlockWeeks(b.StartDate, b.DurationWeeks, entries)
	out := types.TrainingBlockWeeks{
		Block: s.toBlock(*b),
		Weeks: make([]types.BlockWeek, len(scheduled)),
	}
	for i, w := range scheduled {
		bw := types.BlockWeek{
			WeekNumber: w.Number,
			WeekStart:  w.Start.Format(analysis.DateLayout),
			WeekEnd:    w.Start.AddDate(0, 0, 6).Format(analysis.DateLayout),
			Summary:    w.Summary,
		}
		if pace, ok := analysis.AveragePace(w.Summary); ok {
			bw.AveragePace = pace
		}
		out.Weeks[i] = bw
	}
	return out, nil
}

func (s *TrainingBlockService) get(ctx context.Context, id string) (*store.TrainingBlock, error) {
	b, err := s.store.GetTrainingBlock(ctx, id)
	if errors.Is(err, store.ErrTrainingBlockNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting training block: %w", err)
	}
	return b, nil
}

func (s *TrainingBlockService) toBlock(b store.TrainingBlock) types.TrainingBlock {
	return types.TrainingBlock{
		ID:             b.ID,
		RaceName:       b.RaceName,
		Identifier:     b.Identifier,
		RaceDate:       b.RaceDate.Format(analysis.DateLayout),
		StartDate:      b.StartDate.Format(analysis.DateLayout),
		DurationWeeks:  b.DurationWeeks,
		WeeksRemaining: analysis.WeeksRemaining(b.RaceDate, s.now()),
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
}
