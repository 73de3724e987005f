package boltdb

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

const (
	keyLastSyncedAt = "last_synced_at"
)

// GetLastSyncedAt returns the time of the latest successful item sync
// Returns nil if no sync has been performed yet
func (s *Storage) GetLastSyncedAt(ctx context.Context) (*time.Time, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	var result *time.Time
	err = db.View(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketMetadata)
		if err != nil {
			return err
		}

		raw := b.Get([]byte(keyLastSyncedAt))
		if raw == nil {
			// Синхронизаций ещё не было
			return nil
		}
		if len(raw) != 8 {
			return fmt.Errorf("corrupted last sync value: %d bytes", len(raw))
		}

		ts := time.Unix(0, int64(binary.BigEndian.Uint64(raw))).UTC()
		result = &ts
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get last synced time: %w", err)
	}

	return result, nil
}

// advanceLastSynced сохраняет время синхронизации, только если оно больше сохранённого
func advanceLastSynced(tx *bbolt.Tx, syncedAt time.Time) error {
	b, err := bucket(tx, bucketMetadata)
	if err != nil {
		return err
	}

	nanos := syncedAt.UnixNano()
	if raw := b.Get([]byte(keyLastSyncedAt)); len(raw) == 8 {
		if int64(binary.BigEndian.Uint64(raw)) >= nanos {
			return nil
		}
	}

	value := make([]byte, 8)
	binary.BigEndian.PutUint64(value, uint64(nanos))
	if err := b.Put([]byte(keyLastSyncedAt), value); err != nil {
		return fmt.Errorf("failed to save last synced time: %w", err)
	}

	return nil
}
