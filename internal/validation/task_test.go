package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/iudanet/tasksync/internal/models"
)

func validTask() *models.Task {
	now := time.Now()
	return &models.Task{
		ID:         "task-1",
		Title:      "Buy milk",
		SyncStatus: models.SyncStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestValidateTitle(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		wantErr bool
	}{
		{name: "valid", title: "Buy milk"},
		{name: "unicode at limit", title: strings.Repeat("ж", MaxTitleLen)},
		{name: "empty", title: "", wantErr: true},
		{name: "whitespace only", title: "   \t", wantErr: true},
		{name: "too long", title: strings.Repeat("a", MaxTitleLen+1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTitle(tt.title)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalid)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidatePatch(t *testing.T) {
	empty := ""
	long := strings.Repeat("d", MaxDescriptionLen+1)
	done := true

	assert.ErrorIs(t, ValidatePatch(models.TaskPatch{}), ErrInvalid)
	assert.ErrorIs(t, ValidatePatch(models.TaskPatch{Title: &empty}), ErrInvalid)
	assert.ErrorIs(t, ValidatePatch(models.TaskPatch{Description: &long}), ErrInvalid)
	assert.NoError(t, ValidatePatch(models.TaskPatch{Completed: &done}))
}

func TestValidateTask(t *testing.T) {
	assert.NoError(t, ValidateTask(validTask()))
	assert.ErrorIs(t, ValidateTask(nil), ErrInvalid)

	noID := validTask()
	noID.ID = ""
	assert.ErrorIs(t, ValidateTask(noID), ErrInvalid)

	badStatus := validTask()
	badStatus.SyncStatus = "lost"
	assert.ErrorIs(t, ValidateTask(badStatus), ErrInvalid)

	backwards := validTask()
	backwards.UpdatedAt = backwards.CreatedAt.Add(-time.Second)
	assert.ErrorIs(t, ValidateTask(backwards), ErrInvalid)
}

func TestValidateQueueItem(t *testing.T) {
	item := func() *models.QueueItem {
		return &models.QueueItem{
			ID:        "item-1",
			TaskID:    "task-1",
			Operation: models.OperationCreate,
			Data:      validTask(),
		}
	}

	assert.NoError(t, ValidateQueueItem(item()))

	tests := []struct {
		mutate func(*models.QueueItem)
		name   string
	}{
		{name: "missing id", mutate: func(q *models.QueueItem) { q.ID = "" }},
		{name: "missing task id", mutate: func(q *models.QueueItem) { q.TaskID = "" }},
		{name: "unknown operation", mutate: func(q *models.QueueItem) { q.Operation = "merge" }},
		{name: "nil payload", mutate: func(q *models.QueueItem) { q.Data = nil }},
		{name: "payload for another task", mutate: func(q *models.QueueItem) { q.Data.ID = "task-2" }},
		{name: "negative retries", mutate: func(q *models.QueueItem) { q.RetryCount = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := item()
			tt.mutate(q)
			assert.ErrorIs(t, ValidateQueueItem(q), ErrInvalid)
		})
	}
}
