package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/concave-dev/orderpace/internal/export"
	"github.com/concave-dev/orderpace/internal/logging"
	"github.com/concave-dev/orderpace/internal/order"
	"github.com/concave-dev/orderpace/internal/pacing"
	"github.com/concave-dev/orderpace/internal/tasks"
	"github.com/concave-dev/orderpace/internal/workerpool"
)

// job is one accepted batch waiting for, or running on, a batch worker.
type job struct {
	taskID    string
	batch     Batch
	variantID int64
	delay     time.Duration
}

// run processes every record of a batch and finalizes the task. Each record
// is one unit of work on a pool sized by the concurrency limit; results are
// appended in completion order.
func (e *Engine) run(j job) {
	taskID := j.taskID
	records := j.batch.Records
	n := len(records)

	e.metrics.TaskStarted()
	tlog := logging.ForTask(taskID)
	tlog.Info("processing %d records (pacing delay %v)", n, j.delay)

	cancelCh, err := e.registry.CancelCh(taskID)
	if err != nil {
		tlog.Error("%v", err)
		e.metrics.TaskFinished(string(tasks.StatusCancelled))
		return
	}

	s := &submitter{
		taskID:    taskID,
		variantID: j.variantID,
		client:    e.newClient(j.batch.Store, j.batch.AccessToken),
		registry:  e.registry,
		metrics:   e.metrics,
		log:       tlog,
	}

	results := make(chan tasks.Result, n)
	pool := workerpool.New(e.cfg.Concurrency, n, workerpool.WithName("task "+logging.FormatTaskID(taskID)))

	for i, rec := range records {
		i, rec := i, rec
		unit := func() {
			results <- e.runUnit(s, cancelCh, j.delay, i, rec)
		}
		if err := pool.Submit(unit); err != nil {
			tlog.Error("failed to schedule record %d: %v", i, err)
			e.registry.AppendSkipped(taskID, rec)
			results <- tasks.Result{Index: i, Outcome: tasks.OutcomeError, Reason: err.Error()}
		}
	}

	failures := make([]export.Failure, 0)
	for k := 0; k < n; k++ {
		result := <-results
		e.registry.AppendResult(taskID, result)
		e.metrics.RecordOutcome(string(result.Outcome))

		if !result.IsSuccess() {
			reason := result.Reason
			if reason == "" {
				reason = "unknown error"
			}
			failures = append(failures, export.Failure{Record: records[result.Index], Reason: reason})
		}
	}
	pool.StopWait()

	e.finalize(taskID, failures)
}

// runUnit processes one record: check for cancellation, wait the pacing delay,
// check again, then submit. A panic becomes an error result.
func (e *Engine) runUnit(s *submitter, cancelCh <-chan struct{}, delay time.Duration, index int, rec order.Record) (result tasks.Result) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("panic processing record %d: %v", index, r)
			e.registry.AppendSkipped(s.taskID, rec)
			result = tasks.Result{Index: index, Outcome: tasks.OutcomeError, Reason: fmt.Sprintf("panic: %v", r)}
		}
	}()

	if e.registry.IsCancelled(s.taskID) || !pacing.Wait(e.ctx, delay, cancelCh) || e.registry.IsCancelled(s.taskID) {
		e.registry.AppendSkipped(s.taskID, rec)
		return tasks.Result{Index: index, Outcome: tasks.OutcomeCancelled, Reason: ReasonCancelled}
	}

	return s.submit(e.ctx, index, rec)
}

// finalize marks the task completed unless it was cancelled and writes the
// failure artifact.
func (e *Engine) finalize(taskID string, failures []export.Failure) {
	tlog := logging.ForTask(taskID)
	status := tasks.StatusCompleted
	if err := e.registry.MarkCompleted(taskID); err != nil {
		if !errors.Is(err, tasks.ErrAlreadyCancelled) {
			tlog.Error("failed to mark completed: %v", err)
		}
		status = tasks.StatusCancelled
	}

	path, err := e.exporter.Write(taskID, failures)
	if err != nil {
		tlog.Error("failed to write failure file: %v", err)
	} else {
		e.registry.SetFailureFile(taskID, path)
	}

	e.metrics.TaskFinished(string(status))

	if status == tasks.StatusCancelled {
		tlog.Warn("cancelled (%d records not submitted successfully)", len(failures))
		return
	}
	tlog.Success("completed (%d records not submitted successfully)", len(failures))
}
