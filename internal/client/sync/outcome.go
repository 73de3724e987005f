package sync

import (
	"context"
	"fmt"

	"github.com/iudanet/tasksync/internal/models"
	"github.com/iudanet/tasksync/pkg/api"
)

// processBatch sends one batch and applies the outcome of every item in it
func (s *service) processBatch(ctx context.Context, batch []*models.QueueItem, result *models.SyncResult) {
	req := api.BatchSyncRequest{
		ClientTimestamp: s.now().UTC(),
		Items:           make([]api.QueueItem, 0, len(batch)),
	}
	for _, item := range batch {
		req.Items = append(req.Items, QueueItemToAPI(item))
	}

	resp, err := s.apiClient.Sync(ctx, req)
	if err != nil {
		// Батч целиком не дошёл: каждый элемент проходит процедуру ошибки
		s.logger.Error("Batch sync request failed", "items", len(batch), "error", err)
		for _, item := range batch {
			s.fail(ctx, item, models.FailureTransport, err.Error(), result)
		}
		result.Success = false
		return
	}

	pending := make(map[string]*models.QueueItem, len(batch))
	for _, item := range batch {
		pending[item.ID] = item
	}

	for _, processed := range resp.ProcessedItems {
		item, ok := pending[processed.ClientID]
		if !ok {
			s.logger.Warn("Server returned result for unknown item", "client_id", processed.ClientID)
			continue
		}
		delete(pending, processed.ClientID)

		switch {
		case processed.Status == api.ItemStatusSuccess:
			s.applySuccess(ctx, item, processed.ServerID, result)
		case processed.Status == api.ItemStatusConflict && processed.ResolvedData != nil:
			s.applyConflict(ctx, item, processed.ResolvedData, result)
		case processed.Status == api.ItemStatusError:
			msg := processed.Error
			if msg == "" {
				msg = "Unknown error"
			}
			s.fail(ctx, item, models.FailureRejected, msg, result)
		case processed.Status == api.ItemStatusConflict:
			s.fail(ctx, item, models.FailureMalformed, "conflict without resolved data", result)
		default:
			s.fail(ctx, item, models.FailureMalformed, fmt.Sprintf("unknown item status %q", processed.Status), result)
		}
	}

	// Элементы без результата обрабатываем в исходном порядке батча
	for _, item := range batch {
		if _, ok := pending[item.ID]; ok {
			s.fail(ctx, item, models.FailureMissing, "no result returned for item", result)
		}
	}
}

// applySuccess marks the task synced and removes the confirmed item
func (s *service) applySuccess(ctx context.Context, item *models.QueueItem, serverID string, result *models.SyncResult) {
	syncedAt := s.now().UTC()
	if err := s.tasks.MarkSynced(ctx, item.TaskID, serverID, syncedAt); err != nil {
		s.keep(item, fmt.Errorf("failed to mark task synced: %w", err), result)
		return
	}

	s.removeItem(ctx, item)
	result.SyncedItems++
	s.logger.Debug("Item synced", "task_id", item.TaskID, "operation", item.Operation, "server_id", serverID)
}

// applyConflict resolves the conflict against the current local task.
// Soft-deleted tasks take part in resolution; only a missing task is skipped.
func (s *service) applyConflict(ctx context.Context, item *models.QueueItem, resolved *api.Task, result *models.SyncResult) {
	remote := TaskFromAPI(resolved)
	resolution, err := s.tasks.ResolveConflict(ctx, item, remote, s.now().UTC())
	if isLocalMissing(err) {
		s.logger.Warn("Local task not found, conflict skipped", "task_id", item.TaskID, "item_id", item.ID)
		s.removeItem(ctx, item)
		result.SkippedItems++
		return
	}
	if err != nil {
		s.keep(item, fmt.Errorf("failed to resolve conflict: %w", err), result)
		return
	}

	s.logger.Info("Conflict resolved",
		"task_id", item.TaskID,
		"winner", resolution.Side,
		"remote_updated_at", remote.UpdatedAt)
	result.SyncedItems++
}

// fail increments the retry counter and stores the error.
// Once the counter exceeds MaxRetries the task is marked as error
// and the item is dropped from the queue.
func (s *service) fail(ctx context.Context, item *models.QueueItem, reason models.FailureReason, msg string, result *models.SyncResult) {
	item.RetryCount++
	item.ErrorMessage = msg
	item.ErrorReason = reason

	result.FailedItems++
	result.Errors = append(result.Errors, models.SyncError{
		TaskID:    item.TaskID,
		Operation: item.Operation,
		Error:     msg,
		Reason:    reason,
		Timestamp: s.now().UTC(),
	})

	if item.RetryCount > s.cfg.MaxRetries {
		s.logger.Error("Permanent sync failure",
			"task_id", item.TaskID,
			"item_id", item.ID,
			"retries", item.RetryCount,
			"reason", reason,
			"error", msg)
		if err := s.tasks.MarkError(ctx, item.TaskID); err != nil {
			s.logger.Warn("Failed to mark task as error", "task_id", item.TaskID, "error", err)
		}
		s.removeItem(ctx, item)
		return
	}

	if err := s.queue.UpdateItem(ctx, item); err != nil {
		s.logger.Warn("Failed to update queue item", "item_id", item.ID, "error", err)
	}
}

// keep фиксирует ошибку локального хранилища при применении результата.
// Элемент остаётся в очереди без изменений и будет отправлен повторно.
func (s *service) keep(item *models.QueueItem, err error, result *models.SyncResult) {
	s.logger.Error("Failed to apply sync outcome", "task_id", item.TaskID, "item_id", item.ID, "error", err)
	result.FailedItems++
	result.Errors = append(result.Errors, models.SyncError{
		TaskID:    item.TaskID,
		Operation: item.Operation,
		Error:     err.Error(),
		Reason:    models.FailureLocal,
		Timestamp: s.now().UTC(),
	})
}

func (s *service) removeItem(ctx context.Context, item *models.QueueItem) {
	if err := s.queue.RemoveItem(ctx, item.ID); err != nil {
		s.logger.Warn("Failed to remove queue item", "item_id", item.ID, "error", err)
	}
}
