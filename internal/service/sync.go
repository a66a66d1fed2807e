package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"runlog/internal/store"
	"runlog/internal/strava"
)

// SyncClient is the read side of the Strava client
type SyncClient interface {
	ListActivities(ctx context.Context, page, perPage int) ([]strava.Activity, error)
	GetActivity(ctx context.Context, id int64) (*strava.Activity, error)
}

// SyncStore is where synced activities land
type SyncStore interface {
	UpsertActivity(ctx context.Context, a *store.Activity) error
	SetSyncState(ctx context.Context, key, value string) error
}

// SyncOptions controls what a sync pulls
type SyncOptions struct {
	Pages       int
	PerPage     int
	PrimaryType string // only these activities get a detail fetch
	SkipDetails bool
}

// SyncService orchestrates syncing data from Strava
type SyncService struct {
	client SyncClient
	store  SyncStore
	opts   SyncOptions
	logger *log.Logger
	now    func() time.Time

	// running admits one sync at a time
	running sync.Mutex
}

// NewSyncService creates a new sync service. Zero options take defaults.
func NewSyncService(client SyncClient, s SyncStore, opts SyncOptions, logger *log.Logger) *SyncService {
	if opts.Pages <= 0 {
		opts.Pages = DefaultSyncPages
	}
	if opts.PerPage <= 0 {
		opts.PerPage = DefaultSyncPerPage
	}
	if opts.PerPage > MaxSyncPerPage {
		opts.PerPage = MaxSyncPerPage
	}
	if opts.PrimaryType == "" {
		opts.PrimaryType = DefaultPrimaryType
	}
	return &SyncService{
		client: client,
		store:  s,
		opts:   opts,
		logger: logger,
		now:    time.Now,
	}
}

// SyncProgress reports progress during sync
type SyncProgress struct {
	Page            int
	Total           int // activities fetched so far
	Completed       int // activities processed so far
	CurrentActivity string
}

// SyncResult contains the results of a sync operation
type SyncResult struct {
	Fetched        int
	Stored         int
	Enriched       int
	DetailFailures int
	Errors         []error
	Activities     []strava.Activity // as persisted, detail merged
}

// FetchAndPersist pulls recent activities from Strava and upserts them.
// Detail and storage failures are recorded per activity; only a failed page
// fetch fails the sync. progress, when non-nil, is closed on return.
func (s *SyncService) FetchAndPersist(ctx context.Context, progress chan<- SyncProgress) (*SyncResult, error) {
	if progress != nil {
		defer close(progress)
	}
	if !s.running.TryLock() {
		return nil, ErrSyncInProgress
	}
	defer s.running.Unlock()

	result := &SyncResult{}
	started := s.now()

	for page := 1; page <= s.opts.Pages; page++ {
		activities, err := s.client.ListActivities(ctx, page, s.opts.PerPage)
		if err != nil {
			return result, fmt.Errorf("fetching activities page %d: %w", page, err)
		}
		result.Fetched += len(activities)
		s.logger.Debug("fetched activity page", "page", page, "count", len(activities))

		for _, a := range activities {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			s.persist(ctx, a, result)
			if progress != nil {
				progress <- SyncProgress{
					Page:            page,
					Total:           result.Fetched,
					Completed:       result.Stored + len(result.Errors),
					CurrentActivity: a.Name,
				}
			}
		}

		if len(activities) < s.opts.PerPage {
			break // Last page
		}
	}

	if err := s.store.SetSyncState(ctx, store.SyncStateLastSyncAt, s.now().UTC().Format(time.RFC3339)); err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("recording sync time: %w", err))
	}
	if err := s.store.SetSyncState(ctx, store.SyncStateLastFetched, fmt.Sprint(result.Fetched)); err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("recording sync count: %w", err))
	}

	s.logger.Info("sync finished",
		"fetched", result.Fetched,
		"stored", result.Stored,
		"enriched", result.Enriched,
		"detail_failures", result.DetailFailures,
		"errors", len(result.Errors),
		"took", s.now().Sub(started).Round(time.Millisecond),
	)
	return result, nil
}

// persist enriches one activity when it is of the primary type and upserts it
func (s *SyncService) persist(ctx context.Context, a strava.Activity, result *SyncResult) {
	if a.Type == s.opts.PrimaryType && !s.opts.SkipDetails {
		detail, err := s.client.GetActivity(ctx, a.ID)
		if err != nil {
			result.DetailFailures++
			s.logger.Warn("activity detail unavailable, storing summary", "id", a.ID, "err", err)
		} else {
			a = a.WithDetail(detail)
			result.Enriched++
		}
	}

	if err := s.store.UpsertActivity(ctx, ConvertActivity(a)); err != nil {
		s.logger.Error("storing activity", "id", a.ID, "err", err)
		result.Errors = append(result.Errors, fmt.Errorf("storing activity %d: %w", a.ID, err))
		return
	}
	result.Stored++
	result.Activities = append(result.Activities, a)
}

// ConvertActivity maps a Strava payload to a store row, meters to kilometers
func ConvertActivity(a strava.Activity) *store.Activity {
	return &store.Activity{
		ID:                 a.ID,
		Name:               a.Name,
		Type:               a.Type,
		SportType:          a.SportType,
		StartDate:          a.StartDate,
		StartDateLocal:     a.StartDateLocal,
		Timezone:           a.Timezone,
		Distance:           a.Distance / MetersPerKm,
		MovingTime:         a.MovingTime,
		ElapsedTime:        a.ElapsedTime,
		TotalElevationGain: a.TotalElevationGain,
		AverageSpeed:       a.Speed(),
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
