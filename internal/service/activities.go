package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"runlog/internal/auth"
	"runlog/internal/store"
	"runlog/internal/strava"
	"runlog/internal/types"
)

// TypeAll disables the activity type filter
const TypeAll = "all"

// ActivityUpdater writes activity edits back to Strava
type ActivityUpdater interface {
	UpdateActivity(ctx context.Context, id int64, update strava.UpdatableActivity) (*strava.Activity, error)
}

// TokenStatuser reports on the stored OAuth token
type TokenStatuser interface {
	Status(ctx context.Context) (auth.Status, error)
}

// ActivityService serves the stored activities
type ActivityService struct {
	store       *store.DB
	strava      ActivityUpdater
	tokens      TokenStatuser
	primaryType string
	logger      *log.Logger
}

// NewActivityService creates an activity service. primaryType is the
// default list filter.
func NewActivityService(db *store.DB, updater ActivityUpdater, tokens TokenStatuser, primaryType string, logger *log.Logger) *ActivityService {
	if primaryType == "" {
		primaryType = DefaultPrimaryType
	}
	return &ActivityService{
		store:       db,
		strava:      updater,
		tokens:      tokens,
		primaryType: primaryType,
		logger:      logger,
	}
}

// List returns activities most recent first with distance in miles.
// An empty activityType means the primary type; TypeAll lists everything.
func (s *ActivityService) List(ctx context.Context, activityType string) ([]types.Activity, error) {
	filter := store.ActivityFilter{Type: activityType}
	switch strings.ToLower(activityType) {
	case "":
		filter.Type = s.primaryType
	case TypeAll:
		filter.Type = ""
	}

	rows, err := s.store.ListActivities(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing activities: %w", err)
	}
	out := make([]types.Activity, len(rows))
	for i, a := range rows {
		out[i] = ToActivity(a)
	}
	return out, nil
}

// Count returns the number of stored activities of every type
func (s *ActivityService) Count(ctx context.Context) (int, error) {
	n, err := s.store.CountActivities(ctx)
	if err != nil {
		return 0, fmt.Errorf("counting activities: %w", err)
	}
	return n, nil
}

// Rename changes an activity's name on Strava and then locally. An activity
// not yet stored locally is left for the next sync.
func (s *ActivityService) Rename(ctx context.Context, rawID, name string) error {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		return invalid("Invalid activity id")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return invalid("Name is required")
	}

	if _, err := s.strava.UpdateActivity(ctx, id, strava.UpdatableActivity{Name: name}); err != nil {
		return fmt.Errorf("updating activity on Strava: %w", err)
	}

	err = s.store.UpdateActivityName(ctx, id, name)
	if errors.Is(err, store.ErrActivityNotFound) {
		s.logger.Debug("renamed activity not stored locally yet", "id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("updating stored activity: %w", err)
	}
	return nil
}

// TokenStatus reports on the stored token without refreshing it
func (s *ActivityService) TokenStatus(ctx context.Context) (types.TokenStatus, error) {
	st, err := s.tokens.Status(ctx)
	if err != nil {
		return types.TokenStatus{}, fmt.Errorf("reading token status: %w", err)
	}
	out := types.TokenStatus{
		HasToken:      st.HasToken,
		HasReadScope:  st.HasReadScope,
		HasWriteScope: st.HasWriteScope,
		Scopes:        st.Scopes,
	}
	if out.Scopes == nil {
		out.Scopes = []string{}
	}
	if st.HasToken {
		exp := st.ExpiresAt
		out.ExpiresAt = &exp
	}
	return out, nil
}

// ToActivity converts a stored row for the wire, kilometers to miles
func ToActivity(a store.Activity) types.Activity {
	return types.Activity{
		ID:                 strconv.FormatInt(a.ID, 10),
		Name:               a.Name,
		Type:               a.Type,
		SportType:          a.SportType,
		StartDate:          a.StartDate,
		StartDateLocal:     a.StartDateLocal,
		Timezone:           a.Timezone,
		Distance:           a.Distance * KmToMiles,
		MovingTime:         a.MovingTime,
		ElapsedTime:        a.ElapsedTime,
		TotalElevationGain: a.TotalElevationGain,
		AverageSpeed:       a.AverageSpeed,
		AverageHeartrate:   a.AverageHeartrate,
		Calories:           a.Calories,
		KudosCount:         a.KudosCount,
		CommentCount:       a.CommentCount,
		Trainer:            a.Trainer,
		Commute:            a.Commute,
		Manual:             a.Manual,
		Private:            a.Private,
	}
}
