package storage

import (
	"context"

	"github.com/iudanet/tasksync/internal/models"
)

// Mutation входящий элемент батча, уже прошедший валидацию
type Mutation struct {
	Task      *models.Task // снимок задачи от клиента
	ClientID  string       // ID элемента очереди клиента, ключ дедупликации
	TaskID    string
	Operation models.Operation
}

// Outcome результат применения мутации
type Outcome struct {
	Resolved *models.Task // сохраненная версия, если она новее входящей
	ServerID string
	Conflict bool
	Replayed bool // результат взят из ранее записанного, мутация повторно не применялась
}

// TaskStorage defines interface for the authoritative task store
type TaskStorage interface {
	// ApplyMutation applies a client mutation using last-write-wins against
	// the stored copy. The incoming snapshot wins ties. The outcome is
	// recorded under ClientID, and a repeated ClientID returns the recorded
	// outcome without applying the mutation again.
	ApplyMutation(ctx context.Context, m *Mutation) (*Outcome, error)

	// GetTask retrieves a task by server ID (deleted tasks included)
	// Returns ErrTaskNotFound if task doesn't exist
	GetTask(ctx context.Context, serverID string) (*models.Task, error)

	// ListTasks returns stored tasks ordered by creation time
	ListTasks(ctx context.Context, includeDeleted bool) ([]*models.Task, error)

	// Ping checks that the database is reachable
	Ping(ctx context.Context) error
}
