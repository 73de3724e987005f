package boltdb

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.etcd.io/bbolt"

	"github.com/iudanet/tasksync/internal/client/storage"
)

var (
	// BoltDB bucket names
	bucketTasks      = []byte("tasks")
	bucketQueue      = []byte("sync_queue")       // seq (big endian) -> QueueItem
	bucketQueueIndex = []byte("sync_queue_index") // item ID -> seq
	bucketMetadata   = []byte("metadata")
)

// Storage represents BoltDB storage implementation for client.
// It implements storage.TaskStorage, storage.QueueStorage and storage.MetadataStorage.
type Storage struct {
	// nil после Close
	db atomic.Pointer[bbolt.DB]
}

// New creates a new BoltDB storage instance
// dbPath is the path to the BoltDB database file
func New(ctx context.Context, dbPath string) (*Storage, error) {
	// Открываем BoltDB; таймаут на случай, если файл заблокирован другим процессом
	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	// Инициализируем buckets
	if err := initBuckets(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}

	s := &Storage{}
	s.db.Store(db)
	return s, nil
}

// Close closes the database connection.
// It is safe to call more than once and concurrently with other methods:
// calls that start after Close get storage.ErrStorageClosed.
func (s *Storage) Close() error {
	db := s.db.Swap(nil)
	if db == nil {
		return nil
	}
	return db.Close()
}

// conn возвращает открытое соединение или ErrStorageClosed
func (s *Storage) conn() (*bbolt.DB, error) {
	db := s.db.Load()
	if db == nil {
		return nil, storage.ErrStorageClosed
	}
	return db, nil
}

// initBuckets создает необходимые buckets если они не существуют
func initBuckets(db *bbolt.DB) error {
	return db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketTasks, bucketQueue, bucketQueueIndex, bucketMetadata} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("failed to create %s bucket: %w", name, err)
			}
		}
		return nil
	})
}

// bucket возвращает bucket или ошибку, если он отсутствует
func bucket(tx *bbolt.Tx, name []byte) (*bbolt.Bucket, error) {
	b := tx.Bucket(name)
	if b == nil {
		return nil, fmt.Errorf("%s bucket not found", name)
	}
	return b, nil
}
