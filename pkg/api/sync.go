package api

import "time"

// ItemStatus результат обработки одного элемента батча на сервере
type ItemStatus string

const (
	ItemStatusSuccess  ItemStatus = "success"
	ItemStatusConflict ItemStatus = "conflict"
	ItemStatusError    ItemStatus = "error"
)

// Task представляет снимок задачи в формате обмена с сервером
type Task struct {
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	SyncStatus   string     `json:"sync_status,omitempty"`
	ServerID     string     `json:"server_id,omitempty"`
	Completed    bool       `json:"completed"`
	IsDeleted    bool       `json:"is_deleted"`
}

// QueueItem представляет одну мутацию из клиентской очереди синхронизации
type QueueItem struct {
	CreatedAt    time.Time `json:"created_at"`
	Data         Task      `json:"data"`
	ID           string    `json:"id"`
	TaskID       string    `json:"task_id"`
	Operation    string    `json:"operation"` // create | update | delete
	ErrorMessage string    `json:"error_message,omitempty"`
	RetryCount   int       `json:"retry_count"`
}

// BatchSyncRequest представляет батч мутаций, отправляемый клиентом
type BatchSyncRequest struct {
	ClientTimestamp time.Time   `json:"client_timestamp"`
	Items           []QueueItem `json:"items"`
}

// ProcessedItem результат обработки одного элемента батча.
// ClientID совпадает с QueueItem.ID на клиенте.
type ProcessedItem struct {
	ResolvedData *Task      `json:"resolved_data,omitempty"` // актуальная серверная версия при конфликте
	ClientID     string     `json:"client_id"`
	Status       ItemStatus `json:"status"`
	ServerID     string     `json:"server_id,omitempty"` // идентификатор, назначенный сервером при успехе
	Error        string     `json:"error,omitempty"`
}

// BatchSyncResponse представляет ответ сервера на батч
type BatchSyncResponse struct {
	ProcessedItems []ProcessedItem `json:"processed_items"`
}

// HealthResponse представляет ответ health check
type HealthResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Status    string    `json:"status"`
	Version   string    `json:"version,omitempty"`
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`             // описание ошибки
	Message string `json:"message,omitempty"` // дополнительное сообщение
}
