package storage

import "errors"

// Common client storage errors
var (
	// ErrTaskNotFound indicates that task was not found
	ErrTaskNotFound = errors.New("task not found")

	// ErrQueueItemNotFound indicates that sync queue item was not found
	ErrQueueItemNotFound = errors.New("queue item not found")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")
)
