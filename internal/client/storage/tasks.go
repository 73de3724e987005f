package storage

import (
	"context"
	"time"

	"github.com/iudanet/tasksync/internal/crdt"
	"github.com/iudanet/tasksync/internal/models"
)

// TaskStorage defines interface for the local task records.
// Soft-deleted tasks stay in storage; filtering is up to the caller.
type TaskStorage interface {
	// CommitMutation stores the task and appends the queue item
	// in a single transaction. Either both are durable or neither is.
	CommitMutation(ctx context.Context, task *models.Task, item *models.QueueItem) error

	// GetTask retrieves a task by ID, including soft-deleted ones
	// Returns ErrTaskNotFound if task doesn't exist
	GetTask(ctx context.Context, id string) (*models.Task, error)

	// ListTasks returns all tasks ordered by creation time
	ListTasks(ctx context.Context, includeDeleted bool) ([]*models.Task, error)

	// MarkSynced sets status synced, records the server ID (if not empty)
	// and the sync time. Does not enqueue anything.
	MarkSynced(ctx context.Context, id, serverID string, syncedAt time.Time) error

	// MarkError sets status error. Does not enqueue anything.
	MarkError(ctx context.Context, id string) error

	// ResolveConflict re-reads the task of item, resolves it against remote
	// with crdt.Resolve, stores the winner and removes item from the queue,
	// all in one transaction. Soft-deleted tasks are resolved like any other.
	// The task is marked synced unless other queue items for it remain.
	// Returns ErrTaskNotFound if task doesn't exist; the queue is untouched then.
	ResolveConflict(ctx context.Context, item *models.QueueItem, remote *models.Task, syncedAt time.Time) (crdt.Resolution, error)
}
