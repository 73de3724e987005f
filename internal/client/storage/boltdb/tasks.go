package boltdb

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go.etcd.io/bbolt"

	"github.com/iudanet/tasksync/internal/client/storage"
	"github.com/iudanet/tasksync/internal/crdt"
	"github.com/iudanet/tasksync/internal/models"
	"github.com/iudanet/tasksync/internal/validation"
)

// CommitMutation stores the task and appends the matching queue item in one transaction
func (s *Storage) CommitMutation(ctx context.Context, task *models.Task, item *models.QueueItem) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	if err := validation.ValidateTask(task); err != nil {
		return err
	}
	if err := validation.ValidateQueueItem(item); err != nil {
		return err
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if err := putTask(tx, task); err != nil {
			return err
		}
		return putQueueItem(tx, item)
	})
	if err != nil {
		return fmt.Errorf("commit mutation transaction failed: %w", err)
	}

	return nil
}

// GetTask retrieves a task by ID (soft-deleted tasks included)
func (s *Storage) GetTask(ctx context.Context, id string) (*models.Task, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	var task *models.Task
	err = db.View(func(tx *bbolt.Tx) error {
		var err error
		task, err = getTask(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	return task, nil
}

// ListTasks returns tasks ordered by creation time
func (s *Storage) ListTasks(ctx context.Context, includeDeleted bool) ([]*models.Task, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	var tasks []*models.Task
	err = db.View(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketTasks)
		if err != nil {
			return err
		}

		return b.ForEach(func(k, v []byte) error {
			var task models.Task
			if err := json.Unmarshal(v, &task); err != nil {
				return fmt.Errorf("failed to unmarshal task %s: %w", k, err)
			}
			if task.IsDeleted && !includeDeleted {
				return nil
			}
			tasks = append(tasks, &task)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})

	return tasks, nil
}

// MarkSynced marks the task as synced and advances the last-synced metadata
func (s *Storage) MarkSynced(ctx context.Context, id, serverID string, syncedAt time.Time) error {
	return s.modifyTask(id, func(tx *bbolt.Tx, task *models.Task) error {
		task.SyncStatus = models.SyncStatusSynced
		if serverID != "" {
			task.ServerID = serverID
		}
		ts := syncedAt
		task.LastSyncedAt = &ts
		return advanceLastSynced(tx, syncedAt)
	})
}

// MarkError marks the task as permanently failed to sync
func (s *Storage) MarkError(ctx context.Context, id string) error {
	return s.modifyTask(id, func(_ *bbolt.Tx, task *models.Task) error {
		task.SyncStatus = models.SyncStatusError
		return nil
	})
}

// ResolveConflict resolves the stored task against the remote snapshot.
// Read, resolution, write and dequeue happen in one transaction.
// Local identity (ID, CreatedAt) is preserved.
func (s *Storage) ResolveConflict(ctx context.Context, item *models.QueueItem, remote *models.Task, syncedAt time.Time) (crdt.Resolution, error) {
	if item == nil || remote == nil {
		return crdt.Resolution{}, fmt.Errorf("%w: queue item and remote task are required", validation.ErrInvalid)
	}

	var resolution crdt.Resolution
	err := s.modifyTask(item.TaskID, func(tx *bbolt.Tx, task *models.Task) error {
		resolution = crdt.Resolve(task, remote)
		if resolution.Side == crdt.SideRemote {
			task.Title = remote.Title
			task.Description = remote.Description
			task.Completed = remote.Completed
			task.IsDeleted = remote.IsDeleted
			task.UpdatedAt = remote.UpdatedAt
		}
		if remote.ServerID != "" && (resolution.Side == crdt.SideRemote || task.ServerID == "") {
			task.ServerID = remote.ServerID
		}

		if err := deleteQueueItem(tx, item.ID); err != nil {
			return err
		}
		// Более поздние изменения ещё в очереди: задача остаётся pending
		queued, err := hasQueuedItems(tx, task.ID)
		if err != nil {
			return err
		}
		if !queued {
			task.SyncStatus = models.SyncStatusSynced
		}
		ts := syncedAt
		task.LastSyncedAt = &ts
		return advanceLastSynced(tx, syncedAt)
	})
	if err != nil {
		return crdt.Resolution{}, err
	}

	return resolution, nil
}

// modifyTask выполняет read-modify-write задачи в одной транзакции
func (s *Storage) modifyTask(id string, fn func(tx *bbolt.Tx, task *models.Task) error) error {
	db, err := s.conn()
	if err != nil {
		return err
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		task, err := getTask(tx, id)
		if err != nil {
			return err
		}
		if err := fn(tx, task); err != nil {
			return err
		}
		return putTask(tx, task)
	})
	if err != nil {
		return fmt.Errorf("update task %s: %w", id, err)
	}

	return nil
}

func getTask(tx *bbolt.Tx, id string) (*models.Task, error) {
	b, err := bucket(tx, bucketTasks)
	if err != nil {
		return nil, err
	}

	data := b.Get([]byte(id))
	if data == nil {
		return nil, storage.ErrTaskNotFound
	}

	task := &models.Task{}
	if err := json.Unmarshal(data, task); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task: %w", err)
	}

	return task, nil
}

func putTask(tx *bbolt.Tx, task *models.Task) error {
	b, err := bucket(tx, bucketTasks)
	if err != nil {
		return err
	}

	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	if err := b.Put([]byte(task.ID), data); err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}

	return nil
}
