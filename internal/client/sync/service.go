package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/tasksync/internal/client/storage"
	"github.com/iudanet/tasksync/internal/models"
	"github.com/iudanet/tasksync/pkg/api"
)

//go:generate moq -out service_mock.go . Service
//go:generate moq -out api_mock.go . APIClient

var (
	// ErrSyncInProgress возвращается, если синхронизация уже выполняется
	ErrSyncInProgress = errors.New("sync already in progress")

	// ErrTaskNotFailed возвращается при попытке Requeue задачи не в статусе error
	ErrTaskNotFailed = errors.New("task is not in error state")
)

// APIClient определяет вызовы удаленного сервера, нужные синхронизации
type APIClient interface {
	Health(ctx context.Context) error
	Sync(ctx context.Context, req api.BatchSyncRequest) (*api.BatchSyncResponse, error)
}

// Service определяет интерфейс движка синхронизации
type Service interface {
	// Sync выполняет один проход синхронизации очереди с сервером
	Sync(ctx context.Context) (*models.SyncResult, error)

	// CheckConnectivity проверяет доступность сервера, никогда не возвращает ошибку
	CheckConnectivity(ctx context.Context) bool

	// Enqueue ставит мутацию задачи в очередь синхронизации
	Enqueue(ctx context.Context, taskID string, op models.Operation, payload *models.Task) (*models.QueueItem, error)

	// Status возвращает размер очереди, время последней синхронизации и доступность сервера
	Status(ctx context.Context) (*models.SyncStatusReport, error)

	// Pending возвращает содержимое очереди в порядке обработки
	Pending(ctx context.Context) ([]*models.QueueItem, error)

	// Requeue повторно ставит в очередь задачу, синхронизация которой окончательно провалилась
	Requeue(ctx context.Context, taskID string) (*models.QueueItem, error)

	// Discard удаляет из очереди все элементы задачи
	Discard(ctx context.Context, taskID string) error
}

// Config параметры движка синхронизации
type Config struct {
	BatchSize    int           // количество элементов в одном запросе
	MaxRetries   int           // после превышения элемент считается окончательно проваленным
	ProbeTimeout time.Duration // таймаут проверки доступности сервера
}

const (
	DefaultBatchSize    = 10
	DefaultMaxRetries   = 3
	DefaultProbeTimeout = 5 * time.Second
)

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() Config {
	return Config{
		BatchSize:    DefaultBatchSize,
		MaxRetries:   DefaultMaxRetries,
		ProbeTimeout: DefaultProbeTimeout,
	}
}

func (c Config) withDefaults() Config {
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.ProbeTimeout <= 0 {
		c.ProbeTimeout = DefaultProbeTimeout
	}
	return c
}

// service handles synchronization between the local queue and the server
type service struct {
	apiClient APIClient
	tasks     storage.TaskStorage
	queue     storage.QueueStorage
	metadata  storage.MetadataStorage
	logger    *slog.Logger
	now       func() time.Time
	cfg       Config
	inFlight  atomic.Bool
}

// NewService creates a new sync service
func NewService(
	apiClient APIClient,
	tasks storage.TaskStorage,
	queue storage.QueueStorage,
	metadata storage.MetadataStorage,
	cfg Config,
	logger *slog.Logger,
) Service {
	return &service{
		apiClient: apiClient,
		tasks:     tasks,
		queue:     queue,
		metadata:  metadata,
		cfg:       cfg.withDefaults(),
		logger:    logger,
		now:       time.Now,
	}
}

// Sync drains the queue in batches.
// 1. Checks that the server is reachable
// 2. Loads all pending items and splits them into batches
// 3. Sends every batch and applies per-item outcomes
// Only a failure to read the queue is returned as an error.
func (s *service) Sync(ctx context.Context) (*models.SyncResult, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return nil, ErrSyncInProgress
	}
	defer s.inFlight.Store(false)

	result := &models.SyncResult{Errors: []models.SyncError{}}

	if !s.CheckConnectivity(ctx) {
		s.logger.Warn("Server is not reachable, sync skipped")
		return result, nil
	}

	items, err := s.queue.AllPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load sync queue: %w", err)
	}

	result.Success = true
	if len(items) == 0 {
		s.logger.Debug("Sync queue is empty")
		return result, nil
	}

	batches := partition(items, s.cfg.BatchSize)
	s.logger.Info("Starting synchronization", "items", len(items), "batches", len(batches))

	for i, batch := range batches {
		// Отмена проверяется только между батчами
		if err := ctx.Err(); err != nil {
			s.logger.Warn("Sync cancelled", "processed_batches", i, "error", err)
			result.Success = false
			break
		}
		result.Batches++
		s.processBatch(ctx, batch, result)
	}

	s.logger.Info("Synchronization completed",
		"synced", result.SyncedItems,
		"failed", result.FailedItems,
		"skipped", result.SkippedItems,
		"batches", result.Batches,
		"success", result.Success)

	return result, nil
}

// Enqueue appends a mutation with a frozen copy of payload
func (s *service) Enqueue(ctx context.Context, taskID string, op models.Operation, payload *models.Task) (*models.QueueItem, error) {
	if payload == nil {
		return nil, fmt.Errorf("payload cannot be nil")
	}
	item := NewQueueItem(taskID, op, payload, s.now())
	if err := s.queue.Enqueue(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to enqueue %s for task %s: %w", op, taskID, err)
	}
	return item, nil
}

// Status собирает сводку состояния синхронизации
func (s *service) Status(ctx context.Context) (*models.SyncStatusReport, error) {
	count, err := s.queue.PendingCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending items: %w", err)
	}

	lastSynced, err := s.metadata.GetLastSyncedAt(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get last sync time: %w", err)
	}

	return &models.SyncStatusReport{
		PendingCount:    count,
		LastSyncedAt:    lastSynced,
		ServerReachable: s.CheckConnectivity(ctx),
	}, nil
}

// Pending возвращает элементы очереди в порядке обработки
func (s *service) Pending(ctx context.Context) ([]*models.QueueItem, error) {
	items, err := s.queue.AllPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load sync queue: %w", err)
	}
	return items, nil
}

// Requeue ставит текущее состояние задачи обратно в очередь.
// Задача без server_id отправляется как create, удаленная как delete.
func (s *service) Requeue(ctx context.Context, taskID string) (*models.QueueItem, error) {
	task, err := s.tasks.GetTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task %s: %w", taskID, err)
	}
	if task.SyncStatus != models.SyncStatusError {
		return nil, fmt.Errorf("%w: %s is %s", ErrTaskNotFailed, taskID, task.SyncStatus)
	}

	op := models.OperationUpdate
	switch {
	case task.IsDeleted:
		op = models.OperationDelete
	case task.ServerID == "":
		op = models.OperationCreate
	}

	task.SyncStatus = models.SyncStatusPending
	item := NewQueueItem(task.ID, op, task, s.now())
	if err := s.tasks.CommitMutation(ctx, task, item); err != nil {
		return nil, fmt.Errorf("failed to requeue task %s: %w", taskID, err)
	}

	s.logger.Info("Task requeued", "task_id", taskID, "operation", op, "item_id", item.ID)
	return item, nil
}

// Discard удаляет все элементы очереди задачи. Статус задачи не меняется.
func (s *service) Discard(ctx context.Context, taskID string) error {
	if _, err := s.tasks.GetTask(ctx, taskID); err != nil {
		return fmt.Errorf("failed to get task %s: %w", taskID, err)
	}
	if err := s.queue.Remove(ctx, taskID); err != nil {
		return fmt.Errorf("failed to discard queue items: %w", err)
	}
	s.logger.Info("Queue items discarded", "task_id", taskID)
	return nil
}

// NewQueueItem создает элемент очереди с копией задачи
func NewQueueItem(taskID string, op models.Operation, payload *models.Task, enqueuedAt time.Time) *models.QueueItem {
	return &models.QueueItem{
		ID:        uuid.New().String(),
		TaskID:    taskID,
		Operation: op,
		Data:      payload.Clone(),
		CreatedAt: enqueuedAt.UTC(),
	}
}

// isLocalMissing сообщает, что задачи больше нет в локальном хранилище
func isLocalMissing(err error) bool {
	return errors.Is(err, storage.ErrTaskNotFound)
}
