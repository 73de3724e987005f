package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/iudanet/tasksync/internal/client/api"
	"github.com/iudanet/tasksync/internal/client/cli"
	"github.com/iudanet/tasksync/internal/client/storage/boltdb"
	syncsvc "github.com/iudanet/tasksync/internal/client/sync"
	"github.com/iudanet/tasksync/internal/client/tasks"
	"github.com/iudanet/tasksync/internal/config"
	"github.com/iudanet/tasksync/internal/crdt"
	"github.com/iudanet/tasksync/internal/logging"
)

// bootstrap собирает сервисы клиента: конфиг, логгер, BoltDB, API клиент
func bootstrap(ctx context.Context, opts *cli.RootOptions) (*cli.App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if err := applyFlags(cfg, opts); err != nil {
		return nil, err
	}

	logger, logCloser, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}
	slog.SetDefault(logger)

	store, err := boltdb.New(ctx, cfg.Client.DBPath)
	if err != nil {
		if logCloser != nil {
			_ = logCloser.Close()
		}
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	logger.Debug("client initialized",
		"api_base_url", cfg.Client.APIBaseURL,
		"db", cfg.Client.DBPath,
		"batch_size", cfg.Sync.BatchSize,
		"max_retries", cfg.Sync.MaxRetries,
	)

	apiClient := api.NewClient(cfg.Client.APIBaseURL, api.WithTimeout(cfg.Client.RequestTimeout))
	syncService := syncsvc.NewService(apiClient, store, store, store, syncsvc.Config{
		BatchSize:    cfg.Sync.BatchSize,
		MaxRetries:   cfg.Sync.MaxRetries,
		ProbeTimeout: cfg.Sync.ProbeTimeout,
	}, logger)
	taskService := tasks.NewService(store, crdt.NewClock(), logger)

	return &cli.App{
		Tasks: taskService,
		Sync:  syncService,
		Close: func() error {
			err := store.Close()
			if logCloser != nil {
				err = errors.Join(err, logCloser.Close())
			}
			return err
		},
	}, nil
}

// applyFlags переопределяет конфиг явно заданными флагами
func applyFlags(cfg *config.Config, opts *cli.RootOptions) error {
	if opts.ServerURL != "" {
		cfg.Client.APIBaseURL = opts.ServerURL
	}
	if opts.DBPath != "" {
		cfg.Client.DBPath = opts.DBPath
	}
	if opts.LogLevel != "" {
		cfg.Logging.Level = opts.LogLevel
	}
	if opts.BatchSize > 0 {
		cfg.Sync.BatchSize = opts.BatchSize
	}
	if opts.MaxRetries >= 0 {
		cfg.Sync.MaxRetries = opts.MaxRetries
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	return nil
}
