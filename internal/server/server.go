// Package server собирает HTTP сервер синхронизации: маршруты, middleware и graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iudanet/tasksync/internal/config"
	"github.com/iudanet/tasksync/internal/server/handlers"
	"github.com/iudanet/tasksync/internal/server/metrics"
	"github.com/iudanet/tasksync/internal/server/middleware"
	"github.com/iudanet/tasksync/internal/server/storage"
)

const (
	// APIPrefix общий префикс маршрутов API
	APIPrefix = "/api"

	healthPath  = APIPrefix + "/health"
	syncPath    = APIPrefix + "/sync"
	metricsPath = "/metrics"
)

// Server HTTP сервер синхронизации
type Server struct {
	httpServer *http.Server
	limiter    *middleware.RateLimiter
	logger     *slog.Logger
	cfg        config.ServerConfig
}

// New создает сервер. gatherer используется для /metrics, reg для регистрации метрик.
func New(cfg config.ServerConfig, st storage.TaskStorage, reg prometheus.Registerer, gatherer prometheus.Gatherer, version string, logger *slog.Logger) *Server {
	m := metrics.New(reg)

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, time.Minute, logger)
	limiter.OnReject(m.IncRateLimited)

	healthHandler := handlers.NewHealthHandler(logger, st, version)
	syncHandler := handlers.NewSyncHandler(logger, st, m)

	mux := http.NewServeMux()
	mux.HandleFunc(healthPath, healthHandler.Health)
	mux.Handle(syncPath, limiter.Handler(http.HandlerFunc(syncHandler.HandleSync)))
	mux.Handle(metricsPath, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	handler := middleware.Chain(mux,
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger, m.ObserveHTTP, healthPath, metricsPath),
	)

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Addr,
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		limiter: limiter,
		logger:  logger,
		cfg:     cfg,
	}
}

// Handler возвращает корневой обработчик (для тестов через httptest)
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run слушает cfg.Addr до отмены ctx, затем выполняет graceful shutdown
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve обслуживает запросы на ln до отмены ctx
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer s.limiter.Stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	s.logger.Info("HTTP server stopped")
	return nil
}
