package main

import (
	"fmt"

	"runlog/internal/auth"
	"runlog/internal/service"
	"runlog/internal/store"
	"runlog/internal/strava"
)

// app holds the wired services for one command invocation
type app struct {
	db         *store.DB
	tokens     *auth.Manager
	strava     *strava.Client
	activities *service.ActivityService
	sync       *service.SyncService
	weeks      *service.WeekService
	blocks     *service.TrainingBlockService
}

func openStore() (*store.DB, error) {
	path, err := cfg.DBPath()
	if err != nil {
		return nil, err
	}
	logger.Debug("opening database", "path", path)
	db, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}

// newApp opens the store and wires every service. With interactive set the
// token manager may open a browser to authorize.
func newApp(interactive bool) (*app, error) {
	db, err := openStore()
	if err != nil {
		return nil, err
	}

	oauthCfg := auth.NewOAuthConfig(auth.Config{
		ClientID:     cfg.Strava.ClientID,
		ClientSecret: cfg.Strava.ClientSecret,
	})

	var opts []auth.ManagerOption
	if interactive {
		opts = append(opts, auth.WithAuthorizer(auth.NewFlow(oauthCfg, cfg.Strava.CallbackPort)))
	}
	if cfg.Strava.RefreshToken != "" {
		opts = append(opts, auth.WithBootstrapRefreshToken(cfg.Strava.RefreshToken))
	}
	tokens := auth.NewManager(oauthCfg, db, logger, opts...)

	client := strava.NewClient(tokens)
	weeks := service.NewWeekService(db, cfg.Sync.PrimaryType)

	return &app{
		db:         db,
		tokens:     tokens,
		strava:     client,
		activities: service.NewActivityService(db, client, tokens, cfg.Sync.PrimaryType, logger),
		sync: service.NewSyncService(client, db, service.SyncOptions{
			Pages:       cfg.Sync.Pages,
			PerPage:     cfg.Sync.PerPage,
			PrimaryType: cfg.Sync.PrimaryType,
			SkipDetails: cfg.Sync.SkipDetails,
		}, logger),
		weeks:  weeks,
		blocks: service.NewTrainingBlockService(db, weeks),
	}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}
