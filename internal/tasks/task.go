// Package tasks holds the in-memory registry of batch tasks.
//
// A task is created when a batch is accepted and is mutated only through the
// Registry: results and skipped records are appended as records finish, and
// the status moves from Running to exactly one terminal state. Readers get a
// deep-copied Snapshot and never hold live task state.
//
// TASK LIFECYCLE:
//   - Running: accepted, records are being processed
//   - Completed: every record has a result
//   - Cancelled: cancellation was requested; in-flight records may still
//     append results afterwards, the status does not change again
//
// Tasks live only for the lifetime of the process.
package tasks

import (
	"time"

	"github.com/concave-dev/orderpace/internal/order"
)

// Status is the externally visible summary of a task.
type Status string

const (
	StatusRunning   Status = "Running"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"
)

// Outcome is the result of processing one record.
type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeFailed    Outcome = "failed"
	OutcomeError     Outcome = "error"
	OutcomeCancelled Outcome = "cancelled"
)

// Result is the outcome of one record of a batch.
type Result struct {
	// Index is the position of the record in the submitted batch.
	Index   int     `json:"index"`
	Outcome Outcome `json:"status"`

	// OrderID is the remote order id, set for successful records.
	OrderID int64 `json:"order_id,omitempty"`

	// PaymentTermsAttached reports the follow-up call; nil unless successful.
	PaymentTermsAttached *bool `json:"payment_terms_attached,omitempty"`

	// Reason explains any non-success outcome.
	Reason string `json:"reason,omitempty"`

	FinishedAt time.Time `json:"finished_at"`
}

// IsSuccess reports whether the record was submitted.
func (r Result) IsSuccess() bool {
	return r.Outcome == OutcomeSuccess
}

// Spec holds the parameters a task is created with.
type Spec struct {
	Total       int
	StartTime   time.Time
	EndTime     time.Time
	PacingDelay time.Duration
	Store       string
	VariantID   string
}

// task is the live state guarded by the registry mutex.
type task struct {
	id          string
	spec        Spec
	status      Status
	cancelled   bool
	cancelCh    chan struct{}
	results     []Result
	skipped     []order.Record
	finishedAt  time.Time
	failureFile string
}

// Snapshot is a point-in-time copy of a task.
type Snapshot struct {
	ID          string         `json:"task_id"`
	Status      Status         `json:"status"`
	Cancelled   bool           `json:"cancelled"`
	Total       int            `json:"total"`
	Processed   int            `json:"processed"`
	Succeeded   int            `json:"succeeded"`
	StartTime   time.Time      `json:"start_time"`
	EndTime     time.Time      `json:"end_time"`
	FinishedAt  *time.Time     `json:"finished_at,omitempty"`
	PacingDelay float64        `json:"pacing_delay_seconds"`
	Store       string         `json:"store_url"`
	VariantID   string         `json:"variant_id"`
	FailureFile string         `json:"-"`
	Results     []Result       `json:"results"`
	Skipped     []order.Record `json:"skipped_orders"`
}

// Summary is the list view of a task, without per-record detail.
type Summary struct {
	ID         string     `json:"task_id"`
	Status     Status     `json:"status"`
	Total      int        `json:"total"`
	Processed  int        `json:"processed"`
	Succeeded  int        `json:"succeeded"`
	Skipped    int        `json:"skipped"`
	StartTime  time.Time  `json:"start_time"`
	EndTime    time.Time  `json:"end_time"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

func (t *task) succeeded() int {
	n := 0
	for _, r := range t.results {
		if r.IsSuccess() {
			n++
		}
	}
	return n
}

func (t *task) finishedAtPtr() *time.Time {
	if t.finishedAt.IsZero() {
		return nil
	}
	ts := t.finishedAt
	return &ts
}

func (t *task) snapshot() Snapshot {
	results := make([]Result, len(t.results))
	for i, r := range t.results {
		results[i] = r
		if r.PaymentTermsAttached != nil {
			v := *r.PaymentTermsAttached
			results[i].PaymentTermsAttached = &v
		}
	}

	skipped := make([]order.Record, len(t.skipped))
	copy(skipped, t.skipped)

	return Snapshot{
		ID:          t.id,
		Status:      t.status,
		Cancelled:   t.cancelled,
		Total:       t.spec.Total,
		Processed:   len(t.results),
		Succeeded:   t.succeeded(),
		StartTime:   t.spec.StartTime,
		EndTime:     t.spec.EndTime,
		FinishedAt:  t.finishedAtPtr(),
		PacingDelay: t.spec.PacingDelay.Seconds(),
		Store:       t.spec.Store,
		VariantID:   t.spec.VariantID,
		FailureFile: t.failureFile,
		Results:     results,
		Skipped:     skipped,
	}
}

func (t *task) summary() Summary {
	return Summary{
		ID:         t.id,
		Status:     t.status,
		Total:      t.spec.Total,
		Processed:  len(t.results),
		Succeeded:  t.succeeded(),
		Skipped:    len(t.skipped),
		StartTime:  t.spec.StartTime,
		EndTime:    t.spec.EndTime,
		FinishedAt: t.finishedAtPtr(),
	}
}
