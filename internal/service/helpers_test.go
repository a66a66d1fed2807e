package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"runlog/internal/auth"
	"runlog/internal/store"
	"runlog/internal/strava"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func setupTestDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.OpenInMemory()
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func floatPtr(f float64) *float64 { return &f }

func run(id int64, local string, meters float64, secs int) strava.Activity {
	start, err := time.Parse(time.RFC3339, local)
	if err != nil {
		panic(err)
	}
	return strava.Activity{
		ID:             id,
		Name:           fmt.Sprintf("Run %d", id),
		Type:           "Run",
		SportType:      "Run",
		StartDate:      start,
		StartDateLocal: start,
		Distance:       meters,
		MovingTime:     secs,
		ElapsedTime:    secs,
	}
}

// fakeStrava serves canned pages and details
type fakeStrava struct {
	mu        sync.Mutex
	pages     map[int][]strava.Activity
	details   map[int64]*strava.Activity
	detailErr map[int64]error
	listErr   error
	updateErr error

	listCalls   []int
	detailCalls []int64
	updates     map[int64]string

	// entered is closed on the first list call; block, when set, holds
	// every list call until it is closed
	entered chan struct{}
	once    sync.Once
	block   chan struct{}
}

func (f *fakeStrava) ListActivities(ctx context.Context, page, perPage int) ([]strava.Activity, error) {
	if f.entered != nil {
		f.once.Do(func() { close(f.entered) })
	}
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls = append(f.listCalls, page)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.pages[page], nil
}

func (f *fakeStrava) GetActivity(ctx context.Context, id int64) (*strava.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailCalls = append(f.detailCalls, id)
	if err := f.detailErr[id]; err != nil {
		return nil, err
	}
	if d, ok := f.details[id]; ok {
		return d, nil
	}
	return &strava.Activity{ID: id}, nil
}

func (f *fakeStrava) UpdateActivity(ctx context.Context, id int64, update strava.UpdatableActivity) (*strava.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	if f.updates == nil {
		f.updates = map[int64]string{}
	}
	f.updates[id] = update.Name
	return &strava.Activity{ID: id, Name: update.Name}, nil
}

// flakyStore fails upserts for chosen ids
type flakyStore struct {
	*store.DB
	failIDs map[int64]bool
}

func (s *flakyStore) UpsertActivity(ctx context.Context, a *store.Activity) error {
	if s.failIDs[a.ID] {
		return errors.New("disk full")
	}
	return s.DB.UpsertActivity(ctx, a)
}

type fakeStatus struct {
	status auth.Status
	err    error
}

func (f fakeStatus) Status(ctx context.Context) (auth.Status, error) {
	return f.status, f.err
}
