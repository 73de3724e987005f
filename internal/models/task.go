package models

import "time"

// SyncStatus описывает состояние синхронизации задачи с удаленным сервером
type SyncStatus string

const (
	SyncStatusPending SyncStatus = "pending" // есть несинхронизированные локальные изменения
	SyncStatusSynced  SyncStatus = "synced"  // локальная версия подтверждена сервером
	SyncStatusError   SyncStatus = "error"   // синхронизация окончательно провалилась
)

// Valid reports whether s is one of the known statuses.
func (s SyncStatus) Valid() bool {
	switch s {
	case SyncStatusPending, SyncStatusSynced, SyncStatusError:
		return true
	}
	return false
}

// Task представляет сущность, которая синхронизируется с сервером.
// ID генерируется на клиенте, ServerID назначается сервером при первой успешной синхронизации.
type Task struct {
	CreatedAt    time.Time  `json:"created_at"`               // CreatedAt время создания
	UpdatedAt    time.Time  `json:"updated_at"`               // UpdatedAt время последнего изменения (монотонно не убывает)
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"` // LastSyncedAt время последней успешной синхронизации
	ID           string     `json:"id"`                       // ID уникальный идентификатор (UUID)
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	SyncStatus   SyncStatus `json:"sync_status"`
	ServerID     string     `json:"server_id,omitempty"` // ServerID идентификатор, назначенный сервером
	Completed    bool       `json:"completed"`
	IsDeleted    bool       `json:"is_deleted"` // IsDeleted флаг soft delete
}

// IsNewerThan reports whether t was modified strictly later than other.
func (t *Task) IsNewerThan(other *Task) bool {
	return t.UpdatedAt.After(other.UpdatedAt)
}

// Clone создает глубокую копию задачи
func (t *Task) Clone() *Task {
	clone := *t
	if t.LastSyncedAt != nil {
		ts := *t.LastSyncedAt
		clone.LastSyncedAt = &ts
	}
	return &clone
}

// TaskPatch is a partial update of the user-editable Task fields.
// Nil fields are left untouched.
type TaskPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Completed == nil
}

// Apply копирует заданные поля патча в задачу
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
}
