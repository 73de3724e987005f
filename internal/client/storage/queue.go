package storage

import (
	"context"

	"github.com/iudanet/tasksync/internal/models"
)

// QueueStorage defines interface for the durable log of pending mutations
type QueueStorage interface {
	// Enqueue appends an item. Returns only after the item is durably recorded.
	Enqueue(ctx context.Context, item *models.QueueItem) error

	// AllPending returns all items, oldest first (enqueue time, then insertion order)
	AllPending(ctx context.Context) ([]*models.QueueItem, error)

	// Remove deletes every queue item of the given task
	Remove(ctx context.Context, taskID string) error

	// RemoveItem deletes a single item by its ID
	// Returns ErrQueueItemNotFound if item doesn't exist
	RemoveItem(ctx context.Context, id string) error

	// UpdateItem persists retry count and error fields of an existing item
	// Returns ErrQueueItemNotFound if item doesn't exist
	UpdateItem(ctx context.Context, item *models.QueueItem) error

	// PendingCount returns the number of queued items
	PendingCount(ctx context.Context) (int, error)
}
