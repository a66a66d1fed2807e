package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"runlog/internal/service"
	"runlog/internal/strava"
	"runlog/internal/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeActivities struct {
	list      []types.Activity
	lastType  string
	count     int
	renameErr error
	renamed   map[string]string
	status    types.TokenStatus
}

func (f *fakeActivities) List(ctx context.Context, activityType string) ([]types.Activity, error) {
	f.lastType = activityType
	return f.list, nil
}

func (f *fakeActivities) Count(ctx context.Context) (int, error) { return f.count, nil }

func (f *fakeActivities) Rename(ctx context.Context, id, name string) error {
	if f.renameErr != nil {
		return f.renameErr
	}
	if f.renamed == nil {
		f.renamed = map[string]string{}
	}
	f.renamed[id] = name
	return nil
}

func (f *fakeActivities) TokenStatus(ctx context.Context) (types.TokenStatus, error) {
	return f.status, nil
}

type fakeSyncer struct {
	result *service.SyncResult
	err    error
	calls  int
	run    func(ctx context.Context) (*service.SyncResult, error)
}

func (f *fakeSyncer) FetchAndPersist(ctx context.Context, progress chan<- service.SyncProgress) (*service.SyncResult, error) {
	f.calls++
	if f.run != nil {
		return f.run(ctx)
	}
	return f.result, f.err
}

type fakeWeeks struct{}

func (fakeWeeks) Available(ctx context.Context) ([]string, error) {
	return []string{"2025-01-13", "2025-01-06"}, nil
}

func (fakeWeeks) Summaries(ctx context.Context) ([]types.WeekSummary, error) {
	return []types.WeekSummary{{WeekNumber: 2}, {WeekNumber: 1}}, nil
}

func (fakeWeeks) Week(ctx context.Context, weekStart string) (types.Week, error) {
	if weekStart == "bad" {
		return types.Week{}, &service.ValidationError{Message: "Invalid week start"}
	}
	return types.Week{WeekStart: weekStart, WeekEnd: "2025-01-19", Days: make([]types.Day, 7), AveragePace: "8:00"}, nil
}

type fakeBlocks struct {
	blocks map[string]types.TrainingBlock
}

func (f *fakeBlocks) List(ctx context.Context) ([]types.TrainingBlock, error) {
	var out []types.TrainingBlock
	for _, b := range f.blocks {
		out = append(out, b)
	}
	return out, nil
}

func (f *fakeBlocks) Get(ctx context.Context, id string) (types.TrainingBlock, error) {
	b, ok := f.blocks[id]
	if !ok {
		return types.TrainingBlock{}, service.ErrNotFound
	}
	return b, nil
}

func (f *fakeBlocks) Create(ctx context.Context, req types.CreateTrainingBlockRequest) (types.TrainingBlock, error) {
	if req.RaceName == "" {
		return types.TrainingBlock{}, &service.ValidationError{Message: "Race name is required"}
	}
	b := types.TrainingBlock{ID: fmt.Sprintf("b%d", len(f.blocks)+1), RaceName: req.RaceName, DurationWeeks: req.DurationWeeks}
	f.blocks[b.ID] = b
	return b, nil
}

func (f *fakeBlocks) Update(ctx context.Context, id string, req types.UpdateTrainingBlockRequest) (types.TrainingBlock, error) {
	b, ok := f.blocks[id]
	if !ok {
		return types.TrainingBlock{}, service.ErrNotFound
	}
	if req.RaceName != nil {
		b.RaceName = *req.RaceName
	}
	f.blocks[id] = b
	return b, nil
}

func (f *fakeBlocks) Delete(ctx context.Context, id string) error {
	if _, ok := f.blocks[id]; !ok {
		return service.ErrNotFound
	}
	delete(f.blocks, id)
	return nil
}

func (f *fakeBlocks) Weeks(ctx context.Context, id string) (types.TrainingBlockWeeks, error) {
	b, ok := f.blocks[id]
	if !ok {
		return types.TrainingBlockWeeks{}, service.ErrNotFound
	}
	return types.TrainingBlockWeeks{Block: b, Weeks: []types.BlockWeek{{WeekNumber: 1, WeekStart: "2025-01-06"}}}, nil
}

type testEnv struct {
	activities *fakeActivities
	syncer     *fakeSyncer
	blocks     *fakeBlocks
	server     *Server
}

func newTestEnv(opts Options) *testEnv {
	env := &testEnv{
		activities: &fakeActivities{},
		syncer:     &fakeSyncer{result: &service.SyncResult{}},
		blocks:     &fakeBlocks{blocks: map[string]types.TrainingBlock{}},
	}
	env.server = NewServer(env.activities, env.syncer, fakeWeeks{}, env.blocks, opts, log.New(io.Discard))
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "body: %s", w.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	env := newTestEnv(Options{})
	w := env.do(t, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode[types.HealthResponse](t, w).Status)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRequestIDPropagated(t *testing.T) {
	env := newTestEnv(Options{})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestListActivities(t *testing.T) {
	env := newTestEnv(Options{})
	env.activities.list = []types.Activity{{ID: "12345678901", Name: "Easy", Distance: 3.1}}

	w := env.do(t, http.MethodGet, "/api/activities?type=Ride", nil)
	require.Equal(t, http.StatusOK, w.Code)

	got := decode[[]map[string]any](t, w)
	require.Len(t, got, 1)
	assert.Equal(t, "12345678901", got[0]["id"])
	assert.Equal(t, 3.1, got[0]["distance"])
	assert.Equal(t, "Ride", env.activities.lastType)
}

func TestCountAndTokenStatus(t *testing.T) {
	env := newTestEnv(Options{})
	env.activities.count = 42
	env.activities.status = types.TokenStatus{HasToken: true, HasReadScope: true, Scopes: []string{"read", "activity:read_all"}}

	w := env.do(t, http.MethodGet, "/api/activities/count", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 42, decode[types.CountResponse](t, w).Count)

	w = env.do(t, http.MethodGet, "/api/activities/token-status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, true, body["hasToken"])
	assert.Equal(t, true, body["hasReadScope"])
	assert.Equal(t, false, body["hasWriteScope"])
}

func TestRefetch(t *testing.T) {
	tests := []struct {
		name       string
		result     *service.SyncResult
		err        error
		wantStatus int
		wantCode   string
	}{
		{"success", &service.SyncResult{Fetched: 30, Stored: 30}, nil, http.StatusOK, ""},
		{"in progress", nil, service.ErrSyncInProgress, http.StatusConflict, CodeConflict},
		{"strava failure", nil, fmt.Errorf("fetching activities page 1: %w", &strava.APIError{StatusCode: 503}), http.StatusBadGateway, CodeUpstream},
		{"network failure", nil, fmt.Errorf("fetching activities page 1: %w", errors.New("connection refused")), http.StatusBadGateway, CodeUpstream},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(Options{})
			env.syncer.result, env.syncer.err = tt.result, tt.err
			env.activities.count = 55

			w := env.do(t, http.MethodPost, "/api/activities/refetch", nil)
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.err == nil {
				got := decode[types.RefetchResponse](t, w)
				assert.True(t, got.Success)
				assert.Equal(t, 30, got.Fetched)
				assert.Equal(t, 55, got.Total)
				return
			}
			got := decode[types.ErrorResponse](t, w)
			assert.False(t, got.Success)
			assert.Equal(t, tt.wantCode, got.Code)
		})
	}
}

func TestRefetchSurvivesCallerCancel(t *testing.T) {
	env := newTestEnv(Options{})
	env.activities.count = 3

	reqCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var stored []int
	env.syncer.run = func(ctx context.Context) (*service.SyncResult, error) {
		for i := 1; i <= 3; i++ {
			if i == 2 {
				cancel()
			}
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			stored = append(stored, i)
		}
		return &service.SyncResult{Fetched: 3, Stored: 3}, nil
	}

	req := httptest.NewRequest(http.MethodPost, "/api/activities/refetch", nil).WithContext(reqCtx)
	w := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []int{1, 2, 3}, stored)
	assert.Error(t, reqCtx.Err())
	assert.Equal(t, 3, decode[types.RefetchResponse](t, w).Fetched)
}

func TestUpdateActivity(t *testing.T) {
	env := newTestEnv(Options{})
	w := env.do(t, http.MethodPut, "/api/activities/777", types.UpdateActivityRequest{Name: "Hill repeats"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[types.MessageResponse](t, w).Success)
	assert.Equal(t, "Hill repeats", env.activities.renamed["777"])

	env.activities.renameErr = &service.ValidationError{Message: "Name is required"}
	w = env.do(t, http.MethodPut, "/api/activities/777", types.UpdateActivityRequest{Name: ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Name is required", decode[types.ErrorResponse](t, w).Message)

	w = env.do(t, http.MethodPut, "/api/activities/777", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWeeksEndpoints(t *testing.T) {
	env := newTestEnv(Options{})

	w := env.do(t, http.MethodGet, "/api/weeks", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"2025-01-13", "2025-01-06"}, decode[[]string](t, w))

	w = env.do(t, http.MethodGet, "/api/weeks/summaries", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]types.WeekSummary](t, w), 2)

	w = env.do(t, http.MethodGet, "/api/weeks/2025-01-13", nil)
	require.Equal(t, http.StatusOK, w.Code)
	week := decode[types.Week](t, w)
	assert.Equal(t, "2025-01-13", week.WeekStart)
	assert.Len(t, week.Days, 7)

	w = env.do(t, http.MethodGet, "/api/weeks/bad", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, CodeValidation, decode[types.ErrorResponse](t, w).Code)
}

func TestTrainingBlockEndpoints(t *testing.T) {
	env := newTestEnv(Options{})

	w := env.do(t, http.MethodPost, "/api/training-blocks", types.CreateTrainingBlockRequest{RaceName: "Boston", DurationWeeks: 12})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[types.TrainingBlock](t, w)
	assert.Equal(t, "Boston", created.RaceName)

	w = env.do(t, http.MethodPost, "/api/training-blocks", types.CreateTrainingBlockRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Race name is required", decode[types.ErrorResponse](t, w).Message)

	w = env.do(t, http.MethodGet, "/api/training-blocks/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	name := "Boston 2025"
	w = env.do(t, http.MethodPatch, "/api/training-blocks/"+created.ID, types.UpdateTrainingBlockRequest{RaceName: &name})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Boston 2025", decode[types.TrainingBlock](t, w).RaceName)

	w = env.do(t, http.MethodGet, "/api/training-blocks/"+created.ID+"/weeks", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[types.TrainingBlockWeeks](t, w).Weeks, 1)

	w = env.do(t, http.MethodGet, "/api/training-blocks", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]types.TrainingBlock](t, w), 1)

	w = env.do(t, http.MethodDelete, "/api/training-blocks/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		w = env.do(t, method, "/api/training-blocks/"+created.ID, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, method)
		assert.Equal(t, CodeNotFound, decode[types.ErrorResponse](t, w).Code)
	}
}

func TestCORS(t *testing.T) {
	open := newTestEnv(Options{})
	req := httptest.NewRequest(http.MethodOptions, "/api/activities", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	open.server.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	restricted := newTestEnv(Options{AllowedOrigins: []string{"http://app.test"}})
	for origin, want := range map[string]string{"http://app.test": "http://app.test", "http://evil.test": ""} {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", origin)
		w := httptest.NewRecorder()
		restricted.server.Handler().ServeHTTP(w, req)
		assert.Equal(t, want, w.Header().Get("Access-Control-Allow-Origin"), origin)
	}
}

func TestRateLimit(t *testing.T) {
	env := newTestEnv(Options{RateLimitRPS: 0.001, RateLimitBurst: 2})

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/activities/count", nil).Code)
	}
	w := env.do(t, http.MethodGet, "/api/activities/count", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, CodeRateLimited, decode[types.ErrorResponse](t, w).Code)

	// Health is never limited
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/health", nil).Code)
}

func TestRecovery(t *testing.T) {
	env := newTestEnv(Options{})
	env.server.engine.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := env.do(t, http.MethodGet, "/boom", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, CodeInternal, decode[types.ErrorResponse](t, w).Code)
}
