// Package export writes the per-task failure artifact: a CSV of every record
// whose outcome was not success, with the reason, so the batch can be fixed
// and resubmitted.
//
// Artifacts are written to a temporary file in the target directory and then
// renamed, so a concurrent download never sees a partially written file. A
// later write for the same task replaces the earlier artifact.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/concave-dev/orderpace/internal/order"
	"github.com/concave-dev/orderpace/internal/utils"
)

var (
	// ErrNotFound is returned when no artifact exists for a task.
	ErrNotFound = errors.New("failure file not found")

	// ErrInvalidTaskID is returned for ids that are not task identifiers.
	ErrInvalidTaskID = errors.New("invalid task id")
)

// Header is the column layout of the failure artifact.
var Header = []string{
	"name", "address1", "address2", "pincode", "city", "state",
	"phone_number", "product_id", "quantity", "error_reason",
}

// Failure is one non-successful record with its reason.
type Failure struct {
	Record order.Record
	Reason string
}

func (f Failure) row() []string {
	r := f.Record
	return []string{
		r.FullName, r.Address1, r.Address2, r.PostalCode, r.City, r.Region,
		r.RawPhone, r.SKU, r.Quantity, f.Reason,
	}
}

// Exporter writes and serves failure artifacts from one directory.
type Exporter struct {
	dir string
}

// New creates an exporter rooted at dir, creating the directory if needed.
func New(dir string) (*Exporter, error) {
	if dir == "" {
		return nil, errors.New("export directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export directory %s: %w", dir, err)
	}
	return &Exporter{dir: dir}, nil
}

// Dir returns the artifact directory.
func (e *Exporter) Dir() string {
	return e.dir
}

// FileName returns the artifact file name for a task.
func FileName(taskID string) string {
	return fmt.Sprintf("failed_orders_%s.csv", taskID)
}

// Path returns the artifact path for a task without checking that it exists.
func (e *Exporter) Path(taskID string) (string, error) {
	if !utils.IsValidID(taskID) {
		return "", ErrInvalidTaskID
	}
	return filepath.Join(e.dir, FileName(taskID)), nil
}

// Write replaces the task's artifact with the given failures and returns its
// path. An empty failure list still produces a header-only file.
func (e *Exporter) Write(taskID string, failures []Failure) (string, error) {
	path, err := e.Path(taskID)
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(e.dir, "."+FileName(taskID)+".*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if tmpName != "" {
			_ = os.Remove(tmpName)
		}
	}()

	w := csv.NewWriter(tmp)
	if err := w.Write(Header); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write header: %w", err)
	}
	for _, f := range failures {
		if err := w.Write(f.row()); err != nil {
			tmp.Close()
			return "", fmt.Errorf("failed to write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to flush failure file: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to sync failure file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close failure file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return "", fmt.Errorf("failed to publish failure file: %w", err)
	}
	tmpName = ""

	return path, nil
}

// Open opens the task's artifact for reading.
func (e *Exporter) Open(taskID string) (*os.File, error) {
	path, err := e.Path(taskID)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open failure file: %w", err)
	}
	return f, nil
}
