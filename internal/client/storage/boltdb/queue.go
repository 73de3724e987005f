package boltdb

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sort"

	"go.etcd.io/bbolt"

	"github.com/iudanet/tasksync/internal/client/storage"
	"github.com/iudanet/tasksync/internal/models"
	"github.com/iudanet/tasksync/internal/validation"
)

// Enqueue appends an item to the sync queue. The item's Seq is assigned here.
func (s *Storage) Enqueue(ctx context.Context, item *models.QueueItem) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	if err := validation.ValidateQueueItem(item); err != nil {
		return err
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		return putQueueItem(tx, item)
	})
	if err != nil {
		return fmt.Errorf("enqueue transaction failed: %w", err)
	}

	return nil
}

// AllPending returns all queue items ordered by enqueue time, then by insertion order
func (s *Storage) AllPending(ctx context.Context) ([]*models.QueueItem, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	var items []*models.QueueItem
	err = db.View(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketQueue)
		if err != nil {
			return err
		}

		// Ключи — big endian seq, поэтому ForEach идёт в порядке вставки
		return b.ForEach(func(k, v []byte) error {
			var item models.QueueItem
			if err := json.Unmarshal(v, &item); err != nil {
				return fmt.Errorf("failed to unmarshal queue item: %w", err)
			}
			items = append(items, &item)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get pending queue items: %w", err)
	}

	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return items[i].Seq < items[j].Seq
	})

	return items, nil
}

// Remove deletes every queue item that targets taskID
func (s *Storage) Remove(ctx context.Context, taskID string) error {
	db, err := s.conn()
	if err != nil {
		return err
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketQueue)
		if err != nil {
			return err
		}
		idx, err := bucket(tx, bucketQueueIndex)
		if err != nil {
			return err
		}

		// Собираем ключи заранее: удаление во время ForEach недопустимо
		var keys [][]byte
		var ids []string
		err = b.ForEach(func(k, v []byte) error {
			var item models.QueueItem
			if err := json.Unmarshal(v, &item); err != nil {
				return fmt.Errorf("failed to unmarshal queue item: %w", err)
			}
			if item.TaskID == taskID {
				keys = append(keys, append([]byte(nil), k...))
				ids = append(ids, item.ID)
			}
			return nil
		})
		if err != nil {
			return err
		}

		for i, k := range keys {
			if err := b.Delete(k); err != nil {
				return fmt.Errorf("failed to delete queue item: %w", err)
			}
			if err := idx.Delete([]byte(ids[i])); err != nil {
				return fmt.Errorf("failed to delete queue index: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("remove queue items for task %s: %w", taskID, err)
	}

	return nil
}

// RemoveItem deletes a single queue item
func (s *Storage) RemoveItem(ctx context.Context, id string) error {
	db, err := s.conn()
	if err != nil {
		return err
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		idx, err := bucket(tx, bucketQueueIndex)
		if err != nil {
			return err
		}
		if idx.Get([]byte(id)) == nil {
			return storage.ErrQueueItemNotFound
		}
		return deleteQueueItem(tx, id)
	})
	if err != nil {
		return fmt.Errorf("remove queue item %s: %w", id, err)
	}

	return nil
}

// UpdateItem persists retry bookkeeping of an existing item.
// Only RetryCount, ErrorMessage and ErrorReason are taken from the argument:
// the stored payload snapshot is never rewritten.
func (s *Storage) UpdateItem(ctx context.Context, item *models.QueueItem) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	if item == nil || item.ID == "" {
		return fmt.Errorf("%w: queue item id cannot be empty", validation.ErrInvalid)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketQueue)
		if err != nil {
			return err
		}
		idx, err := bucket(tx, bucketQueueIndex)
		if err != nil {
			return err
		}

		key := idx.Get([]byte(item.ID))
		if key == nil {
			return storage.ErrQueueItemNotFound
		}
		data := b.Get(key)
		if data == nil {
			return storage.ErrQueueItemNotFound
		}

		var stored models.QueueItem
		if err := json.Unmarshal(data, &stored); err != nil {
			return fmt.Errorf("failed to unmarshal queue item: %w", err)
		}
		stored.RetryCount = item.RetryCount
		stored.ErrorMessage = item.ErrorMessage
		stored.ErrorReason = item.ErrorReason

		updated, err := json.Marshal(&stored)
		if err != nil {
			return fmt.Errorf("failed to marshal queue item: %w", err)
		}
		return b.Put(key, updated)
	})
	if err != nil {
		return fmt.Errorf("update queue item %s: %w", item.ID, err)
	}

	return nil
}

// PendingCount returns the number of queued items
func (s *Storage) PendingCount(ctx context.Context) (int, error) {
	db, err := s.conn()
	if err != nil {
		return 0, err
	}

	var count int
	err = db.View(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketQueue)
		if err != nil {
			return err
		}
		count = b.Stats().KeyN
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count queue items: %w", err)
	}

	return count, nil
}

// putQueueItem назначает seq и записывает элемент вместе с индексом
func putQueueItem(tx *bbolt.Tx, item *models.QueueItem) error {
	b, err := bucket(tx, bucketQueue)
	if err != nil {
		return err
	}
	idx, err := bucket(tx, bucketQueueIndex)
	if err != nil {
		return err
	}

	if idx.Get([]byte(item.ID)) != nil {
		return fmt.Errorf("queue item %s already exists", item.ID)
	}

	seq, err := b.NextSequence()
	if err != nil {
		return fmt.Errorf("failed to allocate queue sequence: %w", err)
	}
	item.Seq = seq

	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to marshal queue item: %w", err)
	}

	key := seqKey(seq)
	if err := b.Put(key, data); err != nil {
		return fmt.Errorf("failed to save queue item: %w", err)
	}
	if err := idx.Put([]byte(item.ID), key); err != nil {
		return fmt.Errorf("failed to save queue index: %w", err)
	}

	return nil
}

// deleteQueueItem удаляет элемент и его индекс; отсутствие элемента не ошибка
func deleteQueueItem(tx *bbolt.Tx, id string) error {
	b, err := bucket(tx, bucketQueue)
	if err != nil {
		return err
	}
	idx, err := bucket(tx, bucketQueueIndex)
	if err != nil {
		return err
	}

	key := idx.Get([]byte(id))
	if key == nil {
		return nil
	}
	if err := b.Delete(key); err != nil {
		return fmt.Errorf("failed to delete queue item: %w", err)
	}
	if err := idx.Delete([]byte(id)); err != nil {
		return fmt.Errorf("failed to delete queue index: %w", err)
	}
	return nil
}

// hasQueuedItems сообщает, есть ли в очереди элементы для задачи
func hasQueuedItems(tx *bbolt.Tx, taskID string) (bool, error) {
	b, err := bucket(tx, bucketQueue)
	if err != nil {
		return false, err
	}

	c := b.Cursor()
	for k, v := c.First(); k != nil; k, v = c.Next() {
		var item models.QueueItem
		if err := json.Unmarshal(v, &item); err != nil {
			return false, fmt.Errorf("failed to unmarshal queue item: %w", err)
		}
		if item.TaskID == taskID {
			return true, nil
		}
	}
	return false, nil
}

func seqKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}
