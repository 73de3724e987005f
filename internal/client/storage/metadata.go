package storage

import (
	"context"
	"time"
)

// MetadataStorage defines interface for client sync metadata
type MetadataStorage interface {
	// GetLastSyncedAt returns the time of the latest successful item sync
	// Returns nil if nothing has been synced yet
	GetLastSyncedAt(ctx context.Context) (*time.Time, error)
}
