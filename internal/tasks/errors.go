package tasks

import "errors"

var (
	// ErrNotFound is returned for an unknown task id.
	ErrNotFound = errors.New("task not found")

	// ErrAlreadyExists is returned when creating a task with a used id.
	ErrAlreadyExists = errors.New("task already exists")

	// ErrAlreadyCompleted is returned when cancelling a finished task.
	ErrAlreadyCompleted = errors.New("task already completed")

	// ErrAlreadyCancelled is returned when a task was already cancelled.
	ErrAlreadyCancelled = errors.New("task already cancelled")
)
