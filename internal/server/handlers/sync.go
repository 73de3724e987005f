package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/iudanet/tasksync/internal/models"
	"github.com/iudanet/tasksync/internal/server/storage"
	"github.com/iudanet/tasksync/internal/validation"
	"github.com/iudanet/tasksync/pkg/api"
)

const (
	// MaxBatchItems максимальное количество элементов в одном запросе
	MaxBatchItems = 500
	// maxBodyBytes ограничение размера тела запроса
	maxBodyBytes = 4 << 20
)

// TaskStorage определяет интерфейс хранилища, нужный обработчику синхронизации
type TaskStorage interface {
	ApplyMutation(ctx context.Context, m *storage.Mutation) (*storage.Outcome, error)
}

// SyncMetrics счетчики результатов синхронизации
type SyncMetrics interface {
	ObserveBatch(size int)
	IncItem(status string)
	IncReplayed()
}

// SyncHandler handles batch synchronization requests
type SyncHandler struct {
	logger  *slog.Logger
	storage TaskStorage
	metrics SyncMetrics
}

// NewSyncHandler creates a new sync handler. metrics may be nil.
func NewSyncHandler(logger *slog.Logger, storage TaskStorage, metrics SyncMetrics) *SyncHandler {
	return &SyncHandler{
		logger:  logger,
		storage: storage,
		metrics: metrics,
	}
}

// HandleSync обрабатывает POST /api/sync.
// Каждый элемент батча обрабатывается независимо; ответ содержит
// результат для каждого элемента в порядке запроса.
func (h *SyncHandler) HandleSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req api.BatchSyncRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.logger.Warn("failed to decode sync request", slog.Any("error", err))
		writeError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(req.Items) > MaxBatchItems {
		writeError(w, h.logger, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("batch exceeds %d items", MaxBatchItems))
		return
	}

	ctx := r.Context()
	if h.metrics != nil {
		h.metrics.ObserveBatch(len(req.Items))
	}

	h.logger.Info("sync request",
		"items_count", len(req.Items),
		"client_timestamp", req.ClientTimestamp)

	resp := api.BatchSyncResponse{
		ProcessedItems: make([]api.ProcessedItem, 0, len(req.Items)),
	}

	for i := range req.Items {
		processed, err := h.processItem(ctx, &req.Items[i])
		if err != nil {
			// Ошибка хранилища: весь запрос считается неуспешным, клиент повторит батч
			h.logger.Error("failed to apply sync item",
				"client_id", req.Items[i].ID,
				"task_id", req.Items[i].TaskID,
				"error", err)
			writeError(w, h.logger, http.StatusInternalServerError, "internal server error")
			return
		}
		if h.metrics != nil {
			h.metrics.IncItem(string(processed.Status))
		}
		resp.ProcessedItems = append(resp.ProcessedItems, processed)
	}

	writeJSON(w, h.logger, http.StatusOK, resp)
}

// processItem проверяет и применяет один элемент.
// Возвращает error только при сбое хранилища.
func (h *SyncHandler) processItem(ctx context.Context, item *api.QueueItem) (api.ProcessedItem, error) {
	result := api.ProcessedItem{ClientID: item.ID}

	m, err := toMutation(item)
	if err != nil {
		h.logger.Debug("sync item rejected", "client_id", item.ID, "error", err)
		result.Status = api.ItemStatusError
		result.Error = err.Error()
		return result, nil
	}

	outcome, err := h.storage.ApplyMutation(ctx, m)
	if err != nil {
		return result, err
	}

	if outcome.Replayed {
		h.logger.Info("sync item replayed", "client_id", item.ID, "server_id", outcome.ServerID)
		if h.metrics != nil {
			h.metrics.IncReplayed()
		}
	}

	result.ServerID = outcome.ServerID
	if outcome.Conflict {
		result.Status = api.ItemStatusConflict
		resolved := taskToAPI(outcome.Resolved)
		result.ResolvedData = &resolved
		return result, nil
	}

	result.Status = api.ItemStatusSuccess
	return result, nil
}

// toMutation валидирует элемент батча и переводит его в модель хранилища
func toMutation(item *api.QueueItem) (*storage.Mutation, error) {
	if item.ID == "" {
		return nil, errors.New("item id is required")
	}
	if item.TaskID == "" {
		return nil, errors.New("task_id is required")
	}

	op := models.Operation(item.Operation)
	if !op.Valid() {
		return nil, fmt.Errorf("unknown operation %q", item.Operation)
	}
	if item.Data.ID != "" && item.Data.ID != item.TaskID {
		return nil, fmt.Errorf("data.id %q does not match task_id %q", item.Data.ID, item.TaskID)
	}
	if item.Data.UpdatedAt.IsZero() {
		return nil, errors.New("data.updated_at is required")
	}

	task := taskFromAPI(&item.Data)
	task.ID = item.TaskID

	// Для удаления достаточно идентификатора и времени
	if op != models.OperationDelete {
		if err := validation.ValidateTitle(task.Title); err != nil {
			return nil, err
		}
		if err := validation.ValidateDescription(task.Description); err != nil {
			return nil, err
		}
	}

	return &storage.Mutation{
		ClientID:  item.ID,
		TaskID:    item.TaskID,
		Operation: op,
		Task:      task,
	}, nil
}

func taskFromAPI(t *api.Task) *models.Task {
	return &models.Task{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		IsDeleted:   t.IsDeleted,
		ServerID:    t.ServerID,
	}
}

func taskToAPI(t *models.Task) api.Task {
	return api.Task{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		IsDeleted:   t.IsDeleted,
		SyncStatus:  string(t.SyncStatus),
		ServerID:    t.ServerID,
	}
}
