package models

import "time"

// Operation is the kind of local mutation recorded in the queue.
type Operation string

const (
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

// Valid reports whether op is a known operation.
func (op Operation) Valid() bool {
	switch op {
	case OperationCreate, OperationUpdate, OperationDelete:
		return true
	}
	return false
}

// FailureReason классифицирует причину неудачной синхронизации элемента очереди.
// Все причины, кроме FailureLocal, расходуют попытки элемента.
// FailureLocal оставляет элемент в очереди без изменений.
type FailureReason string

const (
	FailureTransport FailureReason = "transport" // сервер недоступен, таймаут, сетевая ошибка
	FailureRejected  FailureReason = "rejected"  // сервер явно отклонил элемент
	FailureMalformed FailureReason = "malformed" // некорректный ответ (conflict без данных, неизвестный статус)
	FailureMissing   FailureReason = "missing"   // сервер не вернул результат для элемента
	FailureLocal     FailureReason = "local"     // локальное хранилище не смогло записать результат
)

// QueueItem представляет одну отложенную мутацию в очереди синхронизации.
// Data — замороженная копия задачи на момент постановки в очередь,
// последующие изменения задачи не влияют на уже поставленный элемент.
type QueueItem struct {
	CreatedAt    time.Time     `json:"created_at"` // CreatedAt время постановки в очередь
	Data         *Task         `json:"data"`       // Data снимок задачи
	ID           string        `json:"id"`         // ID уникальный идентификатор элемента (UUID)
	TaskID       string        `json:"task_id"`
	Operation    Operation     `json:"operation"`
	ErrorMessage string        `json:"error_message,omitempty"` // ErrorMessage последняя ошибка
	ErrorReason  FailureReason `json:"error_reason,omitempty"`
	Seq          uint64        `json:"seq"`         // Seq порядковый номер, назначаемый хранилищем
	RetryCount   int           `json:"retry_count"` // RetryCount количество неудачных попыток
}

// Clone создает глубокую копию элемента очереди вместе со снимком задачи
func (q *QueueItem) Clone() *QueueItem {
	clone := *q
	if q.Data != nil {
		clone.Data = q.Data.Clone()
	}
	return &clone
}
