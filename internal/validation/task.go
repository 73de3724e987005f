package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/iudanet/tasksync/internal/models"
)

const (
	// MaxTitleLen максимальная длина заголовка задачи (в символах)
	MaxTitleLen = 200
	// MaxDescriptionLen максимальная длина описания задачи (в символах)
	MaxDescriptionLen = 4000
)

// ErrInvalid оборачивает все ошибки валидации, чтобы вызывающий код
// мог отличить их от ошибок хранилища через errors.Is
var ErrInvalid = errors.New("validation failed")

// ValidateTitle проверяет заголовок задачи: непустой, не длиннее MaxTitleLen
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title cannot be empty", ErrInvalid)
	}
	if utf8.RuneCountInString(title) > MaxTitleLen {
		return fmt.Errorf("%w: title must not exceed %d characters", ErrInvalid, MaxTitleLen)
	}
	return nil
}

// ValidateDescription проверяет длину описания
func ValidateDescription(description string) error {
	if utf8.RuneCountInString(description) > MaxDescriptionLen {
		return fmt.Errorf("%w: description must not exceed %d characters", ErrInvalid, MaxDescriptionLen)
	}
	return nil
}

// ValidatePatch validates the fields a patch would change.
func ValidatePatch(p models.TaskPatch) error {
	if p.Empty() {
		return fmt.Errorf("%w: no update fields provided", ErrInvalid)
	}
	if p.Title != nil {
		if err := ValidateTitle(*p.Title); err != nil {
			return err
		}
	}
	if p.Description != nil {
		if err := ValidateDescription(*p.Description); err != nil {
			return err
		}
	}
	return nil
}

// ValidateTask проверяет задачу перед записью в хранилище
func ValidateTask(t *models.Task) error {
	if t == nil {
		return fmt.Errorf("%w: task is nil", ErrInvalid)
	}
	if t.ID == "" {
		return fmt.Errorf("%w: task id cannot be empty", ErrInvalid)
	}
	if err := ValidateTitle(t.Title); err != nil {
		return err
	}
	if err := ValidateDescription(t.Description); err != nil {
		return err
	}
	if !t.SyncStatus.Valid() {
		return fmt.Errorf("%w: unknown sync status %q", ErrInvalid, t.SyncStatus)
	}
	if t.UpdatedAt.Before(t.CreatedAt) {
		return fmt.Errorf("%w: updated_at precedes created_at", ErrInvalid)
	}
	return nil
}

// ValidateQueueItem проверяет элемент очереди: операция известна,
// снимок присутствует и относится к той же задаче
func ValidateQueueItem(item *models.QueueItem) error {
	if item == nil {
		return fmt.Errorf("%w: queue item is nil", ErrInvalid)
	}
	if item.ID == "" {
		return fmt.Errorf("%w: queue item id cannot be empty", ErrInvalid)
	}
	if item.TaskID == "" {
		return fmt.Errorf("%w: queue item task id cannot be empty", ErrInvalid)
	}
	if !item.Operation.Valid() {
		return fmt.Errorf("%w: unknown operation %q", ErrInvalid, item.Operation)
	}
	if item.Data == nil {
		return fmt.Errorf("%w: queue item %s has no payload", ErrInvalid, item.ID)
	}
	if item.Data.ID != item.TaskID {
		return fmt.Errorf("%w: payload task id %q does not match %q", ErrInvalid, item.Data.ID, item.TaskID)
	}
	if item.RetryCount < 0 {
		return fmt.Errorf("%w: negative retry count", ErrInvalid)
	}
	return nil
}
