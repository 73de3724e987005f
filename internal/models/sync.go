package models

import "time"

// SyncError describes a single failed item within a synchronization pass.
type SyncError struct {
	Timestamp time.Time     `json:"timestamp"`
	TaskID    string        `json:"task_id"`
	Operation Operation     `json:"operation"`
	Error     string        `json:"error"`
	Reason    FailureReason `json:"reason"`
}

// SyncResult is the aggregate outcome of one synchronization pass.
// It is returned to the caller and never persisted.
type SyncResult struct {
	Errors       []SyncError `json:"errors"`
	SyncedItems  int         `json:"synced_items"`
	FailedItems  int         `json:"failed_items"`
	SkippedItems int         `json:"skipped_items"` // конфликты, для которых локальная задача исчезла
	Batches      int         `json:"batches"`
	Success      bool        `json:"success"`
}

// SyncStatusReport is the status query surface: queue depth,
// last successful sync and current reachability of the server.
type SyncStatusReport struct {
	LastSyncedAt    *time.Time `json:"last_synced_at"`
	PendingCount    int        `json:"pending_count"`
	ServerReachable bool       `json:"server_reachable"`
}
