package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/concave-dev/orderpace/cmd/orderpacectl/client"
	"github.com/concave-dev/orderpace/cmd/orderpacectl/config"
	"github.com/concave-dev/orderpace/cmd/orderpacectl/display"
	"github.com/concave-dev/orderpace/cmd/orderpacectl/utils"
	"github.com/concave-dev/orderpace/internal/export"
	"github.com/concave-dev/orderpace/internal/logging"
	"github.com/concave-dev/orderpace/internal/tasks"
	"github.com/spf13/cobra"
)

// HandleSubmit uploads a CSV file as a new batch and optionally follows it.
func HandleSubmit(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	path := args[0]
	logging.Info("Submitting %s to API server: %s", path, config.Global.APIAddr)

	api := newClient()
	resp, err := api.SubmitFile(path, client.SubmitOptions{
		VariantID:   config.Submit.VariantID,
		Store:       config.Submit.Store,
		AccessToken: config.Submit.AccessToken,
		EndTime:     config.Submit.EndTime,
	})
	if err != nil {
		return err
	}

	logging.Success("Batch accepted as task %s", logging.FormatTaskID(resp.TaskID))

	if !config.Submit.Watch {
		display.DisplaySubmit(resp)
		return nil
	}
	return utils.RunWithWatch(statusOnce(api, resp.TaskID, true), true)
}

// HandleList lists tasks.
func HandleList(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	if err := config.ValidateStatusFilter(); err != nil {
		return err
	}

	api := newClient()
	fetchAndDisplay := func() error {
		logging.Info("Fetching tasks from API server: %s", config.Global.APIAddr)

		list, err := api.ListTasks(config.Task.StatusFilter)
		if err != nil {
			return err
		}

		display.DisplayTasks(list)
		if !config.Task.Watch {
			logging.Success("Successfully retrieved %d tasks", len(list))
		}
		return nil
	}

	return utils.RunWithWatch(fetchAndDisplay, config.Task.Watch)
}

// statusOnce fetches and prints one task. With stopWhenDone it ends watch mode
// once the task is no longer running.
func statusOnce(api *client.OrderpaceAPIClient, taskID string, stopWhenDone bool) func() error {
	return func() error {
		snap, err := api.GetTask(taskID)
		if err != nil {
			if client.IsStatus(err, http.StatusNotFound) {
				return fmt.Errorf("task %s not found", taskID)
			}
			return err
		}

		display.DisplayTask(snap)
		if stopWhenDone && snap.Status != tasks.StatusRunning {
			return utils.ErrWatchDone
		}
		return nil
	}
}

// HandleStatus prints the status and per-record results of one task.
func HandleStatus(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	api := newClient()
	taskID, err := resolveTask(api, args[0])
	if err != nil {
		return err
	}

	return utils.RunWithWatch(statusOnce(api, taskID, true), config.Task.Watch)
}

// HandleCancel requests cancellation of a running task. Cancelling is a
// mutation, so partial ids must still resolve to exactly one task.
func HandleCancel(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	api := newClient()
	taskID, err := resolveTask(api, args[0])
	if err != nil {
		return err
	}

	resp, err := api.CancelTask(taskID)
	if err != nil {
		switch {
		case client.IsStatus(err, http.StatusNotFound):
			return fmt.Errorf("task %s not found", taskID)
		case client.IsStatus(err, http.StatusBadRequest):
			return fmt.Errorf("task %s already completed", taskID)
		case client.IsStatus(err, http.StatusConflict):
			return fmt.Errorf("task %s already cancelled", taskID)
		}
		return err
	}

	display.DisplayCancel(resp)
	logging.Success("Cancelled task %s", logging.FormatTaskID(taskID))
	return nil
}

// HandleDownload saves the failure CSV of a finished task. The default file
// name matches the one the daemon uses, so the file can be fixed and submitted
// again directly.
func HandleDownload(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	api := newClient()
	taskID, err := resolveTask(api, args[0])
	if err != nil {
		return err
	}

	out := config.Download.OutFile
	if out == "" {
		out = export.FileName(taskID)
	}

	if out == "-" {
		_, err := api.DownloadFailures(taskID, os.Stdout)
		return err
	}

	// Write next to the destination first so a failed download leaves no
	// truncated file behind
	tmp, err := os.CreateTemp(filepath.Dir(out), ".orderpace-download-*")
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", out, err)
	}
	defer os.Remove(tmp.Name())

	n, err := api.DownloadFailures(taskID, tmp)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		if client.IsStatus(err, http.StatusNotFound) {
			return fmt.Errorf("no failure file for task %s (still running, or every record succeeded)", taskID)
		}
		return err
	}

	if err := os.Rename(tmp.Name(), out); err != nil {
		return fmt.Errorf("failed to save %s: %w", out, err)
	}

	display.DisplayDownload(out, n)
	return nil
}

// HandleVariant resolves a product page link to the variant id a submission
// needs.
func HandleVariant(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	v, err := newClient().LookupVariant(args[0])
	if err != nil {
		return err
	}

	display.DisplayVariant(v)
	return nil
}

// HandleInfo prints the daemon health report.
func HandleInfo(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	api := newClient()
	h, err := api.Health()
	if err != nil {
		return err
	}

	display.DisplayInfo(api.BaseURL(), h)
	return nil
}
