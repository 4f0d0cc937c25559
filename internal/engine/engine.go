// Package engine runs accepted order batches in the background.
//
// Submit validates a batch, computes its pacing delay, registers a Running
// task and hands the batch to a long-lived dispatcher pool without waiting for
// it to run. Each batch is then processed by a runner that submits records to
// the store one pacing delay apart, records every outcome in the task
// registry, honours cancellation between records and finally writes the
// failure artifact.
//
// CONCURRENCY MODEL:
//   - Dispatcher pool: BatchWorkers goroutines, QueueSize waiting batches;
//     a full queue refuses the submission with QueueFullError
//   - Per-batch pool: Concurrency goroutines per running batch
//   - Task registry: the only shared state, guarded by its own mutex
//
// Cancellation is cooperative. A cancelled batch stops before its next record;
// a store call that is already in flight always runs to completion and its
// result is recorded.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/concave-dev/orderpace/internal/export"
	"github.com/concave-dev/orderpace/internal/logging"
	"github.com/concave-dev/orderpace/internal/metrics"
	"github.com/concave-dev/orderpace/internal/pacing"
	"github.com/concave-dev/orderpace/internal/shopify"
	"github.com/concave-dev/orderpace/internal/tasks"
	"github.com/concave-dev/orderpace/internal/utils"
	"github.com/concave-dev/orderpace/internal/workerpool"
)

// Engine accepts batches and runs them in the background.
type Engine struct {
	cfg        Config
	registry   *tasks.Registry
	exporter   *export.Exporter
	metrics    *metrics.Metrics
	dispatcher *workerpool.Pool
	newClient  ClientFactory
	now        func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.RWMutex
	closing bool
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClientFactory replaces the store client constructor.
func WithClientFactory(f ClientFactory) Option {
	return func(e *Engine) { e.newClient = f }
}

// WithClock replaces the time source used for pacing.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an engine and starts its dispatcher. The registry and exporter
// are required; a nil metrics instance gets a private one.
func New(cfg Config, registry *tasks.Registry, exporter *export.Exporter, m *metrics.Metrics, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}
	if registry == nil {
		return nil, errors.New("task registry is required")
	}
	if exporter == nil {
		return nil, errors.New("failure exporter is required")
	}
	if m == nil {
		m = metrics.New()
	}

	ctx, cancel := context.WithCancel(context.Background())

	e := &Engine{
		cfg:      cfg,
		registry: registry,
		exporter: exporter,
		metrics:  m,
		now:      time.Now,
		ctx:      ctx,
		cancel:   cancel,
	}
	e.newClient = func(store, accessToken string) StoreClient {
		return shopify.NewClient(shopify.Config{
			Store:       store,
			AccessToken: accessToken,
			Timeout:     cfg.RequestTimeout,
			UserAgent:   cfg.UserAgent,
		})
	}
	for _, opt := range opts {
		opt(e)
	}

	e.dispatcher = workerpool.New(cfg.BatchWorkers, cfg.QueueSize, workerpool.WithName("dispatcher"))

	logging.Info("Engine started (batch workers: %d, queue: %d, concurrency: %d)",
		cfg.BatchWorkers, cfg.QueueSize, cfg.Concurrency)
	return e, nil
}

// Submit accepts a batch and returns its task id without waiting for any
// record to be processed. Invalid batches return an *order.ValidationError and
// a saturated dispatcher returns a *QueueFullError; in both cases no task is
// created.
func (e *Engine) Submit(ctx context.Context, batch Batch) (string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closing {
		return "", ErrShuttingDown
	}

	variantID, err := batch.Validate()
	if err != nil {
		e.metrics.SubmissionRejected("invalid")
		return "", err
	}

	start := e.now()
	deadline := batch.Deadline
	if deadline.IsZero() {
		deadline = start
	}
	if !deadline.After(start) && len(batch.Records) > 1 {
		logging.Warn("Deadline %s is not in the future, records will not be paced", deadline.Format(time.RFC3339))
	}
	delay := pacing.ComputeDelay(start, deadline, len(batch.Records))

	taskID, err := utils.GenerateID()
	if err != nil {
		return "", err
	}

	if err := e.registry.Create(taskID, tasks.Spec{
		Total:       len(batch.Records),
		StartTime:   start,
		EndTime:     deadline,
		PacingDelay: delay,
		Store:       batch.Store,
		VariantID:   batch.VariantID,
	}); err != nil {
		return "", fmt.Errorf("failed to register task: %w", err)
	}

	j := job{taskID: taskID, batch: batch, variantID: variantID, delay: delay}
	if err := e.dispatcher.Submit(func() { e.run(j) }); err != nil {
		e.registry.Remove(taskID)
		if errors.Is(err, workerpool.ErrQueueFull) {
			e.metrics.SubmissionRejected("queue_full")
			return "", &QueueFullError{Current: e.dispatcher.QueueLen(), Capacity: e.cfg.QueueSize}
		}
		return "", fmt.Errorf("failed to dispatch batch: %w", err)
	}

	logging.ForTask(taskID).Info("accepted %d records for %s", len(batch.Records), batch.Store)
	return taskID, nil
}

// Cancel requests cancellation of a running task. Records already being
// submitted finish; no further record is started.
func (e *Engine) Cancel(taskID string) error {
	if err := e.registry.MarkCancelled(taskID); err != nil {
		return err
	}
	logging.ForTask(taskID).Info("cancellation requested")
	return nil
}

// Status returns a snapshot of a task.
func (e *Engine) Status(taskID string) (tasks.Snapshot, error) {
	return e.registry.Get(taskID)
}

// List returns summaries of every task.
func (e *Engine) List() []tasks.Summary {
	return e.registry.List()
}

// Exporter returns the failure artifact store.
func (e *Engine) Exporter() *export.Exporter {
	return e.exporter
}

// Metrics returns the engine metrics.
func (e *Engine) Metrics() *metrics.Metrics {
	return e.metrics
}

// Shutdown stops accepting batches, cancels every running task and waits for
// in-flight store calls to finish, or for ctx to end.
func (e *Engine) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	if e.closing {
		e.mu.Unlock()
		return nil
	}
	e.closing = true
	e.mu.Unlock()

	for _, t := range e.registry.List() {
		if t.Status == tasks.StatusRunning {
			if err := e.registry.MarkCancelled(t.ID); err == nil {
				logging.ForTask(t.ID).Warn("cancelled by shutdown")
			}
		}
	}
	e.cancel()

	done := make(chan struct{})
	go func() {
		e.dispatcher.StopWait()
		close(done)
	}()

	select {
	case <-done:
		logging.Info("Engine stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("engine shutdown: %w", ctx.Err())
	}
}

// CountByStatus returns how many tasks are in each status.
func (e *Engine) CountByStatus() map[string]int {
	counts := make(map[string]int)
	for status, n := range e.registry.CountByStatus() {
		counts[string(status)] = n
	}
	return counts
}
