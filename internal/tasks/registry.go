package tasks

import (
	"sort"
	"sync"
	"time"

	"github.com/concave-dev/orderpace/internal/logging"
	"github.com/concave-dev/orderpace/internal/order"
)

// Registry stores every task of the process. One mutex guards all task
// fields; no method performs I/O while holding it.
type Registry struct {
	mu    sync.Mutex
	tasks map[string]*task
	now   func() time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tasks: make(map[string]*task),
		now:   time.Now,
	}
}

// Create registers a new Running task.
func (r *Registry) Create(id string, spec Spec) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tasks[id]; exists {
		return ErrAlreadyExists
	}

	r.tasks[id] = &task{
		id:       id,
		spec:     spec,
		status:   StatusRunning,
		cancelCh: make(chan struct{}),
		results:  make([]Result, 0, spec.Total),
	}
	return nil
}

// Get returns a deep copy of the task.
func (r *Registry) Get(id string) (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok {
		return Snapshot{}, ErrNotFound
	}
	return t.snapshot(), nil
}

// List returns summaries of every task, oldest first.
func (r *Registry) List() []Summary {
	r.mu.Lock()
	summaries := make([]Summary, 0, len(r.tasks))
	for _, t := range r.tasks {
		summaries = append(summaries, t.summary())
	}
	r.mu.Unlock()

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].StartTime.Equal(summaries[j].StartTime) {
			return summaries[i].ID < summaries[j].ID
		}
		return summaries[i].StartTime.Before(summaries[j].StartTime)
	})
	return summaries
}

// AppendResult records the outcome of one record. Results for unknown tasks
// are logged and dropped.
func (r *Registry) AppendResult(id string, result Result) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok {
		logging.Warn("Registry: dropping result for unknown task %s", logging.FormatTaskID(id))
		return
	}
	if result.FinishedAt.IsZero() {
		result.FinishedAt = r.now()
	}
	t.results = append(t.results, result)
}

// AppendSkipped records a record whose outcome was not success.
func (r *Registry) AppendSkipped(id string, rec order.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok {
		logging.Warn("Registry: dropping skipped record for unknown task %s", logging.FormatTaskID(id))
		return
	}
	t.skipped = append(t.skipped, rec)
}

// MarkCompleted moves a Running task to Completed. A cancelled task keeps its
// status and ErrAlreadyCancelled is returned.
func (r *Registry) MarkCompleted(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok {
		return ErrNotFound
	}
	switch t.status {
	case StatusCancelled:
		return ErrAlreadyCancelled
	case StatusCompleted:
		return ErrAlreadyCompleted
	}

	t.status = StatusCompleted
	t.finishedAt = r.now()
	return nil
}

// MarkCancelled sets the cancellation flag, moves the task to Cancelled and
// wakes every waiter on its cancel channel.
func (r *Registry) MarkCancelled(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok {
		return ErrNotFound
	}
	switch t.status {
	case StatusCompleted:
		return ErrAlreadyCompleted
	case StatusCancelled:
		return ErrAlreadyCancelled
	}

	t.cancelled = true
	t.status = StatusCancelled
	t.finishedAt = r.now()
	close(t.cancelCh)
	return nil
}

// IsCancelled reports the cancellation flag. Unknown tasks are reported as
// cancelled so that orphaned work stops.
func (r *Registry) IsCancelled(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok {
		return true
	}
	return t.cancelled
}

// CancelCh returns a channel that is closed when the task is cancelled.
func (r *Registry) CancelCh(id string) (<-chan struct{}, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	return t.cancelCh, nil
}

// SetFailureFile records the path of the task's failure artifact.
func (r *Registry) SetFailureFile(id, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.tasks[id]; ok {
		t.failureFile = path
	}
}

// CountByStatus returns how many tasks are in each status.
func (r *Registry) CountByStatus() map[Status]int {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := map[Status]int{
		StatusRunning:   0,
		StatusCompleted: 0,
		StatusCancelled: 0,
	}
	for _, t := range r.tasks {
		counts[t.status]++
	}
	return counts
}

// Remove deletes a task. Used to roll back a task whose batch could not be
// dispatched.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tasks, id)
}
