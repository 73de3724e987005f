package storage

import "errors"

// Common storage errors
var (
	// ErrTaskNotFound indicates that task was not found in storage
	ErrTaskNotFound = errors.New("task not found")

	// ErrInvalidMutation indicates that mutation cannot be applied (empty ids, nil snapshot)
	ErrInvalidMutation = errors.New("invalid mutation")
)
