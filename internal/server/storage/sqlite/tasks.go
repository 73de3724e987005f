package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/tasksync/internal/crdt"
	"github.com/iudanet/tasksync/internal/models"
	"github.com/iudanet/tasksync/internal/server/storage"
)

var _ storage.TaskStorage = (*Storage)(nil)

const taskColumns = `server_id, client_task_id, title, description, completed, is_deleted, created_at, updated_at`

// queryer общий интерфейс *sql.DB и *sql.Tx для чтения
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ApplyMutation applies a client mutation in a single transaction.
// Last-write-wins: the stored copy wins only when its updated_at is strictly later.
func (s *Storage) ApplyMutation(ctx context.Context, m *storage.Mutation) (*storage.Outcome, error) {
	if m == nil || m.Task == nil || m.ClientID == "" || m.TaskID == "" {
		return nil, storage.ErrInvalidMutation
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Повтор элемента (клиент не получил ответ) — отдаем записанный результат
	recorded, err := getProcessed(ctx, tx, m.ClientID)
	if err != nil {
		return nil, err
	}
	if recorded != nil {
		return recorded, nil
	}

	stored, err := s.findTask(ctx, tx, m.Task.ServerID, m.TaskID)
	if err != nil && !errors.Is(err, storage.ErrTaskNotFound) {
		return nil, err
	}

	incoming := m.Task.Clone()
	incoming.ID = m.TaskID
	if m.Operation == models.OperationDelete {
		incoming.IsDeleted = true
	}

	outcome := &storage.Outcome{}
	switch {
	case stored == nil:
		// Неизвестная задача: создаем, даже если пришел update или delete
		outcome.ServerID = incoming.ServerID
		if outcome.ServerID == "" {
			outcome.ServerID = uuid.New().String()
		}
		incoming.ServerID = outcome.ServerID
		if incoming.CreatedAt.IsZero() {
			incoming.CreatedAt = incoming.UpdatedAt
		}
		if err := insertTask(ctx, tx, incoming); err != nil {
			return nil, err
		}
	default:
		outcome.ServerID = stored.ServerID
		res := crdt.Resolve(incoming, stored)
		if res.Side == crdt.SideRemote {
			outcome.Conflict = true
			outcome.Resolved = res.Winner
			break
		}
		incoming.ServerID = stored.ServerID
		if err := updateTask(ctx, tx, incoming); err != nil {
			return nil, err
		}
	}

	if err := s.recordProcessed(ctx, tx, m.ClientID, outcome); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit mutation: %w", err)
	}

	return outcome, nil
}

// GetTask retrieves a task by server ID (deleted tasks included)
func (s *Storage) GetTask(ctx context.Context, serverID string) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE server_id = ?`
	return scanTask(s.db.QueryRowContext(ctx, query, serverID))
}

// ListTasks returns stored tasks ordered by creation time
func (s *Storage) ListTasks(ctx context.Context, includeDeleted bool) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks`
	if !includeDeleted {
		query += ` WHERE is_deleted = 0`
	}
	query += ` ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var tasks []*models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return tasks, nil
}

// findTask ищет задачу сначала по server_id, затем по локальному ID клиента
func (s *Storage) findTask(ctx context.Context, q queryer, serverID, clientTaskID string) (*models.Task, error) {
	if serverID != "" {
		task, err := scanTask(q.QueryRowContext(ctx,
			`SELECT `+taskColumns+` FROM tasks WHERE server_id = ?`, serverID))
		if err == nil || !errors.Is(err, storage.ErrTaskNotFound) {
			return task, err
		}
	}

	return scanTask(q.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE client_task_id = ?`, clientTaskID))
}

func insertTask(ctx context.Context, tx *sql.Tx, task *models.Task) error {
	query := `INSERT INTO tasks (` + taskColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := tx.ExecContext(ctx, query,
		task.ServerID,
		task.ID,
		task.Title,
		task.Description,
		boolToInt(task.Completed),
		boolToInt(task.IsDeleted),
		task.CreatedAt.UnixNano(),
		task.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}

	return nil
}

func updateTask(ctx context.Context, tx *sql.Tx, task *models.Task) error {
	query := `
		UPDATE tasks
		SET title = ?, description = ?, completed = ?, is_deleted = ?, updated_at = ?
		WHERE server_id = ?
	`

	_, err := tx.ExecContext(ctx, query,
		task.Title,
		task.Description,
		boolToInt(task.Completed),
		boolToInt(task.IsDeleted),
		task.UpdatedAt.UnixNano(),
		task.ServerID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	return nil
}

func getProcessed(ctx context.Context, q queryer, clientID string) (*storage.Outcome, error) {
	var (
		outcome  storage.Outcome
		conflict int
		resolved sql.NullString
	)

	err := q.QueryRowContext(ctx,
		`SELECT server_id, conflict, resolved_data FROM processed_items WHERE client_id = ?`, clientID,
	).Scan(&outcome.ServerID, &conflict, &resolved)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get processed item: %w", err)
	}

	outcome.Conflict = intToBool(conflict)
	outcome.Replayed = true
	if resolved.Valid {
		outcome.Resolved = &models.Task{}
		if err := json.Unmarshal([]byte(resolved.String), outcome.Resolved); err != nil {
			return nil, fmt.Errorf("failed to unmarshal resolved data: %w", err)
		}
	}

	return &outcome, nil
}

func (s *Storage) recordProcessed(ctx context.Context, tx *sql.Tx, clientID string, outcome *storage.Outcome) error {
	var resolved sql.NullString
	if outcome.Resolved != nil {
		data, err := json.Marshal(outcome.Resolved)
		if err != nil {
			return fmt.Errorf("failed to marshal resolved data: %w", err)
		}
		resolved = sql.NullString{String: string(data), Valid: true}
	}

	_, err := tx.ExecContext(ctx,
		`INSERT INTO processed_items (client_id, server_id, conflict, resolved_data, processed_at) VALUES (?, ?, ?, ?, ?)`,
		clientID,
		outcome.ServerID,
		boolToInt(outcome.Conflict),
		resolved,
		s.now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to record processed item: %w", err)
	}

	return nil
}

// rowScanner общий интерфейс *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	task := &models.Task{SyncStatus: models.SyncStatusSynced}
	var completed, deleted int
	var createdAt, updatedAt int64

	err := row.Scan(
		&task.ServerID,
		&task.ID,
		&task.Title,
		&task.Description,
		&completed,
		&deleted,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to scan task: %w", err)
	}

	task.Completed = intToBool(completed)
	task.IsDeleted = intToBool(deleted)
	task.CreatedAt = unixNanoToTime(createdAt)
	task.UpdatedAt = unixNanoToTime(updatedAt)

	return task, nil
}

// Helper functions for bool/int conversion
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func intToBool(i int) bool {
	return i != 0
}

func unixNanoToTime(ts int64) time.Time {
	return time.Unix(0, ts).UTC()
}
