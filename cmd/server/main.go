package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/iudanet/tasksync/internal/config"
	"github.com/iudanet/tasksync/internal/logging"
	"github.com/iudanet/tasksync/internal/server"
	"github.com/iudanet/tasksync/internal/server/storage/sqlite"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Parse flags
	showVersion := flag.Bool("version", false, "Show version information")
	configPath := flag.String("config", "", "Path to YAML config file")
	addr := flag.String("addr", "", "Listen address (env TASKSYNC_SERVER_ADDR)")
	dbPath := flag.String("db", "", "Path to SQLite database (env TASKSYNC_SERVER_DB)")
	flag.Parse()

	// Show version and exit if requested
	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if err := run(*configPath, *addr, *dbPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, addr, dbPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	if dbPath != "" {
		cfg.Server.DBPath = dbPath
	}

	logger, logCloser, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	if logCloser != nil {
		defer logCloser.Close()
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := sqlite.New(ctx, cfg.Server.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	logger.Info("tasksync server starting",
		"version", Version,
		"addr", cfg.Server.Addr,
		"db", cfg.Server.DBPath,
	)

	srv := server.New(cfg.Server, st, prometheus.DefaultRegisterer, prometheus.DefaultGatherer, Version, logger)
	return srv.Run(ctx)
}

func printVersion() {
	fmt.Printf("tasksync server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
