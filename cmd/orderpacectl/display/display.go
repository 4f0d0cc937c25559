// Package display provides output formatting for orderpacectl.
//
// Every function honors the global --output flag: "table" renders aligned
// text with text/tabwriter, "json" prints the daemon's payload indented.
// Status words in detail views are colored with lipgloss when stdout is a
// terminal; table cells stay uncolored so tabwriter can align them.
package display

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/concave-dev/orderpace/cmd/orderpacectl/client"
	"github.com/concave-dev/orderpace/cmd/orderpacectl/config"
	"github.com/concave-dev/orderpace/cmd/orderpacectl/utils"
	"github.com/concave-dev/orderpace/internal/logging"
	"github.com/concave-dev/orderpace/internal/shopify"
	"github.com/concave-dev/orderpace/internal/tasks"
	internalutils "github.com/concave-dev/orderpace/internal/utils"
	"github.com/dustin/go-humanize"
)

// Out is where all output goes. Tests replace it with a buffer.
var Out io.Writer = os.Stdout

var (
	goodStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	badStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	headingStyle = lipgloss.NewStyle().Bold(true)
)

func isJSON() bool {
	return config.Global.Output == "json"
}

func printJSON(v any) {
	encoder := json.NewEncoder(Out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		logging.Error("Failed to encode JSON: %v", err)
		fmt.Fprintln(Out, "Error encoding JSON output")
	}
}

// StatusStyle returns the style of a task status or record outcome.
func StatusStyle(status string) lipgloss.Style {
	switch status {
	case string(tasks.StatusCompleted), string(tasks.OutcomeSuccess):
		return goodStyle
	case string(tasks.StatusRunning), string(tasks.OutcomeSkipped):
		return warnStyle
	case string(tasks.StatusCancelled), string(tasks.OutcomeCancelled):
		return mutedStyle
	default:
		return badStyle
	}
}

func relative(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t)
}

// DisplayTasks prints the task list, newest first.
func DisplayTasks(list []tasks.Summary) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].StartTime.After(list[j].StartTime)
	})

	if isJSON() {
		if list == nil {
			list = []tasks.Summary{}
		}
		printJSON(list)
		return
	}

	if len(list) == 0 {
		fmt.Fprintln(Out, "No tasks found")
		return
	}

	w := tabwriter.NewWriter(Out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "ID\tSTATUS\tPROGRESS\tSUCCEEDED\tSKIPPED\tSTARTED\tDEADLINE")
	for _, t := range list {
		fmt.Fprintf(w, "%s\t%s\t%d/%d\t%d\t%d\t%s\t%s\n",
			internalutils.TruncateIDSafe(t.ID),
			t.Status,
			t.Processed, t.Total,
			t.Succeeded,
			t.Skipped,
			relative(t.StartTime),
			relative(t.EndTime),
		)
	}
}

// DisplayTask prints one task with every per-record result.
func DisplayTask(snap *tasks.Snapshot) {
	if isJSON() {
		printJSON(snap)
		return
	}

	fmt.Fprintln(Out, headingStyle.Render("Task Information:"))
	fmt.Fprintf(Out, "  ID:        %s\n", snap.ID)
	fmt.Fprintf(Out, "  Status:    %s\n", StatusStyle(string(snap.Status)).Render(string(snap.Status)))
	fmt.Fprintf(Out, "  Progress:  %d/%d (%d succeeded, %d skipped)\n",
		snap.Processed, snap.Total, snap.Succeeded, len(snap.Skipped))
	fmt.Fprintf(Out, "  Store:     %s\n", snap.Store)
	fmt.Fprintf(Out, "  Variant:   %s\n", snap.VariantID)
	fmt.Fprintf(Out, "  Started:   %s (%s)\n", snap.StartTime.Format(time.RFC3339), relative(snap.StartTime))
	fmt.Fprintf(Out, "  Deadline:  %s (%s)\n", snap.EndTime.Format(time.RFC3339), relative(snap.EndTime))
	fmt.Fprintf(Out, "  Pacing:    %s between records\n", utils.FormatSeconds(snap.PacingDelay))
	if snap.FinishedAt != nil {
		fmt.Fprintf(Out, "  Finished:  %s (took %s)\n", snap.FinishedAt.Format(time.RFC3339),
			utils.FormatDuration(snap.FinishedAt.Sub(snap.StartTime)))
	}

	if len(snap.Results) == 0 {
		fmt.Fprintln(Out, "\nNo records processed yet")
		return
	}

	results := append([]tasks.Result(nil), snap.Results...)
	sort.SliceStable(results, func(i, j int) bool { return results[i].Index < results[j].Index })

	fmt.Fprintln(Out)
	w := tabwriter.NewWriter(Out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "RECORD\tOUTCOME\tORDER\tTERMS\tREASON")
	for _, r := range results {
		orderID := "-"
		if r.OrderID != 0 {
			orderID = strconv.FormatInt(r.OrderID, 10)
		}
		terms := "-"
		if r.PaymentTermsAttached != nil {
			terms = strconv.FormatBool(*r.PaymentTermsAttached)
		}
		reason := r.Reason
		if reason == "" {
			reason = "-"
		} else if !config.Global.Verbose && len(reason) > 60 {
			reason = reason[:57] + "..."
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", r.Index+1, r.Outcome, orderID, terms, reason)
	}
}

// DisplaySubmit prints the answer to an accepted batch.
func DisplaySubmit(resp *client.SubmitResponse) {
	if isJSON() {
		printJSON(resp)
		return
	}

	fmt.Fprintf(Out, "Batch accepted:\n")
	fmt.Fprintf(Out, "  Task ID:  %s\n", resp.TaskID)
	fmt.Fprintf(Out, "  Records:  %s\n", humanize.Comma(int64(resp.Records)))
	fmt.Fprintf(Out, "  Message:  %s\n", resp.Message)
}

// DisplayCancel prints the answer to an accepted cancellation.
func DisplayCancel(resp *client.CancelResponse) {
	if isJSON() {
		printJSON(resp)
		return
	}

	fmt.Fprintf(Out, "Task %s: %s\n", resp.TaskID,
		StatusStyle(string(resp.Status)).Render(string(resp.Status)))
	if resp.Message != "" {
		fmt.Fprintf(Out, "  %s\n", resp.Message)
	}
}

// DisplayVariant prints a resolved product variant.
func DisplayVariant(v *shopify.Variant) {
	if isJSON() {
		printJSON(v)
		return
	}

	fmt.Fprintf(Out, "Variant ID:  %d\n", v.VariantID)
	fmt.Fprintf(Out, "Store:       %s\n", v.Store)
}

// DisplayDownload reports a saved failure file.
func DisplayDownload(path string, size int64) {
	if isJSON() {
		printJSON(map[string]any{"path": path, "bytes": size})
		return
	}
	fmt.Fprintf(Out, "Saved failed orders to %s (%s)\n", path, humanize.Bytes(uint64(size)))
}

// DisplayInfo prints the daemon health report.
func DisplayInfo(apiURL string, h *client.HealthResponse) {
	if isJSON() {
		printJSON(h)
		return
	}

	fmt.Fprintln(Out, headingStyle.Render("Daemon Information:"))
	fmt.Fprintf(Out, "  API:      %s\n", apiURL)
	fmt.Fprintf(Out, "  Status:   %s\n", goodStyle.Render(h.Status))
	fmt.Fprintf(Out, "  Version:  %s\n", h.Version)
	fmt.Fprintf(Out, "  Uptime:   %s\n", h.Uptime)

	fmt.Fprintln(Out, "  Tasks:")
	for _, status := range []tasks.Status{tasks.StatusRunning, tasks.StatusCompleted, tasks.StatusCancelled} {
		fmt.Fprintf(Out, "    %-10s %d\n", status+":", h.Tasks[string(status)])
	}
}
