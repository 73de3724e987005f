package sync

import (
	"github.com/iudanet/tasksync/internal/models"
	"github.com/iudanet/tasksync/pkg/api"
)

// TaskToAPI конвертирует задачу в формат обмена с сервером
func TaskToAPI(t *models.Task) api.Task {
	return api.Task{
		ID:           t.ID,
		Title:        t.Title,
		Description:  t.Description,
		Completed:    t.Completed,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
		IsDeleted:    t.IsDeleted,
		SyncStatus:   string(t.SyncStatus),
		ServerID:     t.ServerID,
		LastSyncedAt: t.LastSyncedAt,
	}
}

// TaskFromAPI конвертирует задачу из формата обмена
func TaskFromAPI(t *api.Task) *models.Task {
	task := &models.Task{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		IsDeleted:   t.IsDeleted,
		SyncStatus:  models.SyncStatus(t.SyncStatus),
		ServerID:    t.ServerID,
	}
	if t.LastSyncedAt != nil {
		ts := *t.LastSyncedAt
		task.LastSyncedAt = &ts
	}
	return task
}

// QueueItemToAPI конвертирует элемент очереди для отправки
func QueueItemToAPI(item *models.QueueItem) api.QueueItem {
	out := api.QueueItem{
		ID:           item.ID,
		TaskID:       item.TaskID,
		Operation:    string(item.Operation),
		CreatedAt:    item.CreatedAt,
		RetryCount:   item.RetryCount,
		ErrorMessage: item.ErrorMessage,
	}
	if item.Data != nil {
		out.Data = TaskToAPI(item.Data)
	}
	return out
}
