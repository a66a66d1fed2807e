// Package api serves the stored activities, week views and training blocks
// over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"runlog/internal/service"
	"runlog/internal/types"
)

// Activities serves stored activities and token introspection
type Activities interface {
	List(ctx context.Context, activityType string) ([]types.Activity, error)
	Count(ctx context.Context) (int, error)
	Rename(ctx context.Context, id, name string) error
	TokenStatus(ctx context.Context) (types.TokenStatus, error)
}

// Syncer pulls activities from Strava
type Syncer interface {
	FetchAndPersist(ctx context.Context, progress chan<- service.SyncProgress) (*service.SyncResult, error)
}

// Weeks serves the weekly views
type Weeks interface {
	Available(ctx context.Context) ([]string, error)
	Summaries(ctx context.Context) ([]types.WeekSummary, error)
	Week(ctx context.Context, weekStart string) (types.Week, error)
}

// TrainingBlocks manages race-prep plans
type TrainingBlocks interface {
	List(ctx context.Context) ([]types.TrainingBlock, error)
	Get(ctx context.Context, id string) (types.TrainingBlock, error)
	Create(ctx context.Context, req types.CreateTrainingBlockRequest) (types.TrainingBlock, error)
	Update(ctx context.Context, id string, req types.UpdateTrainingBlockRequest) (types.TrainingBlock, error)
	Delete(ctx context.Context, id string) error
	Weeks(ctx context.Context, id string) (types.TrainingBlockWeeks, error)
}

// Options holds the middleware settings
type Options struct {
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
}

// Server is the HTTP API
type Server struct {
	activities Activities
	syncer     Syncer
	weeks      Weeks
	blocks     TrainingBlocks
	logger     *log.Logger
	engine     *gin.Engine
}

// NewServer builds the router
func NewServer(activities Activities, syncer Syncer, weeks Weeks, blocks TrainingBlocks, opts Options, logger *log.Logger) *Server {
	s := &Server{
		activities: activities,
		syncer:     syncer,
		weeks:      weeks,
		blocks:     blocks,
		logger:     logger,
	}

	r := gin.New()
	r.Use(RequestID())
	r.Use(AccessLog(logger))
	r.Use(Recovery(logger))
	r.Use(CORS(opts.AllowedOrigins))
	r.Use(RateLimit(opts.RateLimitRPS, opts.RateLimitBurst))

	r.GET("/health", s.health)

	api := r.Group("/api")

	act := api.Group("/activities")
	act.GET("", s.listActivities)
	act.GET("/count", s.countActivities)
	act.GET("/token-status", s.tokenStatus)
	act.POST("/refetch", s.refetch)
	act.PUT("/:id", s.updateActivity)

	wk := api.Group("/weeks")
	wk.GET("", s.listWeeks)
	wk.GET("/summaries", s.weekSummaries)
	wk.GET("/:weekStart", s.getWeek)

	tb := api.Group("/training-blocks")
	tb.GET("", s.listTrainingBlocks)
	tb.POST("", s.createTrainingBlock)
	tb.GET("/:id", s.getTrainingBlock)
	tb.PATCH("/:id", s.updateTrainingBlock)
	tb.DELETE("/:id", s.deleteTrainingBlock)
	tb.GET("/:id/weeks", s.trainingBlockWeeks)

	s.engine = r
	return s
}

// Handler returns the router
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled
func (s *Server) Run(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve serves on listener until ctx is cancelled, then drains for up to
// five seconds.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener)
	}()
	s.logger.Info("api listening", "addr", listener.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	s.logger.Info("api stopped")
	return nil
}
