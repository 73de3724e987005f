package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/tasksync/pkg/api"
)

// pingTimeout ограничивает проверку базы в health check
const pingTimeout = 2 * time.Second

// Pinger проверяет доступность хранилища
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler обрабатывает health check запросы
type HealthHandler struct {
	logger  *slog.Logger
	db      Pinger
	now     func() time.Time
	version string
}

// NewHealthHandler создает новый handler для health check.
// db может быть nil, тогда проверка базы не выполняется.
func NewHealthHandler(logger *slog.Logger, db Pinger, version string) *HealthHandler {
	return &HealthHandler{
		logger:  logger,
		db:      db,
		now:     time.Now,
		version: version,
	}
}

// Health обрабатывает GET /api/health
// Клиент считает сервер доступным при любом 2xx ответе
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	resp := api.HealthResponse{
		Status:    "ok",
		Version:   h.version,
		Timestamp: h.now().UTC(),
	}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		defer cancel()

		if err := h.db.Ping(ctx); err != nil {
			h.logger.Error("health check: database unavailable", slog.Any("error", err))
			resp.Status = "unavailable"
			writeJSON(w, h.logger, http.StatusServiceUnavailable, resp)
			return
		}
	}

	writeJSON(w, h.logger, http.StatusOK, resp)
}
