// Package handlers provides HTTP request handlers for the orderpace API server.
//
// This file implements the batch task endpoints. A batch is uploaded as a
// spreadsheet export (multipart) or as a JSON list of records, accepted
// without waiting for any record to be processed, and then observed, cancelled
// and finally downloaded as a failure file:
//
//   - POST /api/v1/tasks: Submit a batch, returns the task id (202)
//   - GET /api/v1/tasks: List every task of this process
//   - GET /api/v1/tasks/{id}: Task status with per-record results
//   - POST /api/v1/tasks/{id}/cancel: Request cooperative cancellation
//   - GET /api/v1/tasks/{id}/failures: Download the failure file
//
// ERROR MAPPING:
// Invalid input is 400, an unknown task is 404, cancelling a completed task is
// 400, cancelling twice is 409 and a saturated engine is 429 with Retry-After.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/concave-dev/orderpace/internal/engine"
	"github.com/concave-dev/orderpace/internal/export"
	"github.com/concave-dev/orderpace/internal/logging"
	"github.com/concave-dev/orderpace/internal/order"
	"github.com/concave-dev/orderpace/internal/tasks"
	"github.com/gin-gonic/gin"
)

// TaskEngine is the engine surface used by the task handlers.
type TaskEngine interface {
	Submit(ctx context.Context, batch engine.Batch) (string, error)
	Cancel(taskID string) error
	Status(taskID string) (tasks.Snapshot, error)
	List() []tasks.Summary
}

// SubmitDefaults are daemon-level values used when a submission omits them.
type SubmitDefaults struct {
	VariantID   string
	Store       string
	AccessToken string
}

// SubmitRequest is the JSON form of a batch submission. Records use the
// failure file field names.
type SubmitRequest struct {
	Records     []order.Record `json:"records"`
	VariantID   string         `json:"variant_id"`
	StoreURL    string         `json:"store_url"`
	AccessToken string         `json:"access_token"`
	EndTime     string         `json:"end_time"`
}

// SubmitResponse is returned for an accepted batch.
type SubmitResponse struct {
	TaskID  string `json:"task_id"`
	Records int    `json:"records"`
	Message string `json:"message"`
}

// TaskListResponse lists every task.
type TaskListResponse struct {
	Tasks []tasks.Summary `json:"tasks"`
	Count int             `json:"count"`
}

// CancelResponse is returned for an accepted cancellation.
type CancelResponse struct {
	TaskID  string       `json:"task_id"`
	Status  tasks.Status `json:"status"`
	Message string       `json:"message"`
}

// Deadline layouts accepted besides RFC 3339. They are interpreted in the
// daemon's local time zone, matching an HTML datetime-local input.
var localDeadlineLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
}

// ParseDeadline parses a requested completion time. An empty value means no
// deadline and returns the zero time.
func ParseDeadline(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	for _, layout := range localDeadlineLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, order.NewValidationError("end_time", "must be RFC 3339 or YYYY-MM-DDTHH:MM")
}

// SubmitTask handles batch submissions.
//
// POST /api/v1/tasks
//
// Accepts multipart/form-data with a "file" field holding a CSV export and
// the form fields variant_id, store_url, access_token and end_time, or a JSON
// SubmitRequest. Missing store parameters fall back to the daemon defaults.
func SubmitTask(eng TaskEngine, defaults SubmitDefaults) gin.HandlerFunc {
	return func(c *gin.Context) {
		var (
			batch engine.Batch
			err   error
		)

		if strings.HasPrefix(c.ContentType(), "multipart/") {
			batch, err = batchFromForm(c)
		} else {
			batch, err = batchFromJSON(c)
		}
		if err != nil {
			writeSubmitError(c, err)
			return
		}

		batch.VariantID = firstNonEmpty(batch.VariantID, defaults.VariantID)
		batch.Store = firstNonEmpty(batch.Store, defaults.Store)
		batch.AccessToken = firstNonEmpty(batch.AccessToken, defaults.AccessToken)

		taskID, err := eng.Submit(c.Request.Context(), batch)
		if err != nil {
			writeSubmitError(c, err)
			return
		}

		c.JSON(http.StatusAccepted, SubmitResponse{
			TaskID:  taskID,
			Records: len(batch.Records),
			Message: "Order processing started",
		})
	}
}

func batchFromForm(c *gin.Context) (engine.Batch, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return engine.Batch{}, order.NewValidationError("file", "no file part")
	}
	if fileHeader.Filename == "" {
		return engine.Batch{}, order.NewValidationError("file", "no selected file")
	}
	if !strings.EqualFold(filepath.Ext(fileHeader.Filename), ".csv") {
		return engine.Batch{}, order.NewValidationError("file", "invalid file type, a .csv file is required")
	}

	f, err := fileHeader.Open()
	if err != nil {
		return engine.Batch{}, &order.ValidationError{Field: "file", Reason: "failed to open upload", Err: err}
	}
	defer f.Close()

	rows, err := order.ParseCSV(f)
	if err != nil {
		return engine.Batch{}, err
	}

	deadline, err := ParseDeadline(c.PostForm("end_time"))
	if err != nil {
		return engine.Batch{}, err
	}

	return engine.Batch{
		Records:     order.NormalizeAll(rows),
		VariantID:   strings.TrimSpace(c.PostForm("variant_id")),
		Store:       strings.TrimSpace(c.PostForm("store_url")),
		AccessToken: strings.TrimSpace(c.PostForm("access_token")),
		Deadline:    deadline,
	}, nil
}

func batchFromJSON(c *gin.Context) (engine.Batch, error) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return engine.Batch{}, &order.ValidationError{Field: "body", Reason: "invalid request body", Err: err}
	}

	deadline, err := ParseDeadline(req.EndTime)
	if err != nil {
		return engine.Batch{}, err
	}

	return engine.Batch{
		Records:     order.PrepareAll(req.Records),
		VariantID:   strings.TrimSpace(req.VariantID),
		Store:       strings.TrimSpace(req.StoreURL),
		AccessToken: strings.TrimSpace(req.AccessToken),
		Deadline:    deadline,
	}, nil
}

func writeSubmitError(c *gin.Context, err error) {
	var queueFull *engine.QueueFullError

	switch {
	case order.IsValidationError(err):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid batch",
			"details": err.Error(),
		})
	case errors.As(err, &queueFull):
		c.Header("Retry-After", strconv.Itoa(30))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":   "Engine is busy",
			"details": err.Error(),
		})
	case errors.Is(err, engine.ErrShuttingDown):
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Engine is shutting down",
			"details": err.Error(),
		})
	default:
		logging.Error("Task submission failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to submit batch",
			"details": err.Error(),
		})
	}
}

// ListTasks returns every task known to this process.
//
// GET /api/v1/tasks
func ListTasks(eng TaskEngine) gin.HandlerFunc {
	return func(c *gin.Context) {
		list := eng.List()
		if status := c.Query("status"); status != "" {
			filtered := list[:0]
			for _, t := range list {
				if strings.EqualFold(string(t.Status), status) {
					filtered = append(filtered, t)
				}
			}
			list = filtered
		}

		c.JSON(http.StatusOK, TaskListResponse{Tasks: list, Count: len(list)})
	}
}

// GetTask returns the status of one task with every result so far.
//
// GET /api/v1/tasks/{id}
func GetTask(eng TaskEngine) gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID := c.Param("id")

		snap, err := eng.Status(taskID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Task not found",
				"details": taskID,
			})
			return
		}

		c.JSON(http.StatusOK, snap)
	}
}

// CancelTask requests cancellation of a running task.
//
// POST /api/v1/tasks/{id}/cancel
func CancelTask(eng TaskEngine) gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID := c.Param("id")

		err := eng.Cancel(taskID)
		switch {
		case err == nil:
			c.JSON(http.StatusOK, CancelResponse{
				TaskID:  taskID,
				Status:  tasks.StatusCancelled,
				Message: "Task has been cancelled",
			})
		case errors.Is(err, tasks.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found", "details": taskID})
		case errors.Is(err, tasks.ErrAlreadyCompleted):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Task already completed", "details": taskID})
		case errors.Is(err, tasks.ErrAlreadyCancelled):
			c.JSON(http.StatusConflict, gin.H{"error": "Task already cancelled", "details": taskID})
		default:
			logging.Error("Cancel task %s failed: %v", logging.FormatTaskID(taskID), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel task", "details": err.Error()})
		}
	}
}

// DownloadFailures streams the failure file of a finished task.
//
// GET /api/v1/tasks/{id}/failures
func DownloadFailures(exporter *export.Exporter) gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID := c.Param("id")

		f, err := exporter.Open(taskID)
		if err != nil {
			if errors.Is(err, export.ErrNotFound) || errors.Is(err, export.ErrInvalidTaskID) {
				c.JSON(http.StatusNotFound, gin.H{
					"status":  "error",
					"message": "File not found",
				})
				return
			}
			logging.Error("Failure download for %s failed: %v", logging.FormatTaskID(taskID), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read failure file", "details": err.Error()})
			return
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read failure file", "details": err.Error()})
			return
		}

		c.DataFromReader(http.StatusOK, info.Size(), "text/csv; charset=utf-8", f, map[string]string{
			"Content-Disposition": `attachment; filename="` + export.FileName(taskID) + `"`,
		})
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
