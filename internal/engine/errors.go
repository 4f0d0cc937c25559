package engine

import (
	"errors"
	"fmt"
)

// ErrShuttingDown is returned by Submit once Shutdown has begun.
var ErrShuttingDown = errors.New("engine is shutting down")

// QueueFullError is returned when every batch worker is busy and the waiting
// queue is at capacity. The caller should retry later.
type QueueFullError struct {
	Current  int
	Capacity int
}

func (e *QueueFullError) Error() string {
	return fmt.Sprintf("batch queue full: %d/%d", e.Current, e.Capacity)
}

// IsQueueFull reports whether err is or wraps a QueueFullError.
func IsQueueFull(err error) bool {
	var qe *QueueFullError
	return errors.As(err, &qe)
}
