package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/iudanet/tasksync/internal/client/storage"
	syncsvc "github.com/iudanet/tasksync/internal/client/sync"
	"github.com/iudanet/tasksync/internal/crdt"
	"github.com/iudanet/tasksync/internal/models"
	"github.com/iudanet/tasksync/internal/validation"
)

//go:generate moq -out service_mock.go . Service

// Service определяет интерфейс для клиентского сервиса задач.
// Каждая мутация записывает задачу и элемент очереди синхронизации атомарно.
type Service interface {
	Create(ctx context.Context, title, description string) (*models.Task, error)
	Get(ctx context.Context, id string) (*models.Task, error)
	List(ctx context.Context) ([]*models.Task, error)
	Update(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error)
	Delete(ctx context.Context, id string) error
	ListNeedingSync(ctx context.Context) ([]*models.Task, error)
}

// service handles local task operations
type service struct {
	storage storage.TaskStorage
	clock   *crdt.Clock
	logger  *slog.Logger
}

// NewService creates a new tasks service
func NewService(taskStorage storage.TaskStorage, clock *crdt.Clock, logger *slog.Logger) Service {
	if clock == nil {
		clock = crdt.NewClock()
	}
	return &service{
		storage: taskStorage,
		clock:   clock,
		logger:  logger,
	}
}

// Create adds a new task and enqueues its create operation
func (s *service) Create(ctx context.Context, title, description string) (*models.Task, error) {
	if err := validation.ValidateTitle(title); err != nil {
		return nil, err
	}
	if err := validation.ValidateDescription(description); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	task := &models.Task{
		ID:          uuid.New().String(),
		Title:       title,
		Description: description,
		SyncStatus:  models.SyncStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.commit(ctx, task, models.OperationCreate); err != nil {
		return nil, err
	}

	s.logger.Debug("Task created", "task_id", task.ID)
	return task, nil
}

// Get retrieves a task by ID. Soft-deleted tasks are reported as not found.
func (s *service) Get(ctx context.Context, id string) (*models.Task, error) {
	task, err := s.storage.GetTask(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	// Проверяем что не удалено
	if task.IsDeleted {
		return nil, fmt.Errorf("failed to get task: %w", storage.ErrTaskNotFound)
	}

	return task, nil
}

// List returns all tasks that are not deleted
func (s *service) List(ctx context.Context) ([]*models.Task, error) {
	tasks, err := s.storage.ListTasks(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// Update applies a partial change and enqueues an update operation
func (s *service) Update(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error) {
	if err := validation.ValidatePatch(patch); err != nil {
		return nil, err
	}

	task, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	patch.Apply(task)
	task.UpdatedAt = s.clock.After(task.UpdatedAt)
	task.SyncStatus = models.SyncStatusPending

	if err := s.commit(ctx, task, models.OperationUpdate); err != nil {
		return nil, err
	}

	s.logger.Debug("Task updated", "task_id", task.ID)
	return task, nil
}

// Delete marks the task as deleted and enqueues a delete operation
func (s *service) Delete(ctx context.Context, id string) error {
	task, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	task.IsDeleted = true
	task.UpdatedAt = s.clock.After(task.UpdatedAt)
	task.SyncStatus = models.SyncStatusPending

	if err := s.commit(ctx, task, models.OperationDelete); err != nil {
		return err
	}

	s.logger.Debug("Task deleted", "task_id", task.ID)
	return nil
}

// ListNeedingSync возвращает задачи со статусом pending или error
func (s *service) ListNeedingSync(ctx context.Context) ([]*models.Task, error) {
	all, err := s.storage.ListTasks(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	result := make([]*models.Task, 0, len(all))
	for _, task := range all {
		if task.SyncStatus == models.SyncStatusPending || task.SyncStatus == models.SyncStatusError {
			result = append(result, task)
		}
	}
	return result, nil
}

// commit сохраняет задачу вместе с элементом очереди в одной транзакции
func (s *service) commit(ctx context.Context, task *models.Task, op models.Operation) error {
	item := syncsvc.NewQueueItem(task.ID, op, task, task.UpdatedAt)
	if err := s.storage.CommitMutation(ctx, task, item); err != nil {
		return fmt.Errorf("failed to save %s of task %s: %w", op, task.ID, err)
	}
	return nil
}
