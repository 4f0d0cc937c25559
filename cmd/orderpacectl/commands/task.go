package commands

import (
	"github.com/spf13/cobra"
)

var submitCmd = &cobra.Command{
	Use:   "submit FILE.csv",
	Short: "Submit a CSV batch of orders",
	Long: `Upload a CSV file of order rows as a new batch.

The daemon spreads the records evenly between now and --end-time and returns
a task id immediately. Store, token and variant fall back to the daemon's
configured defaults when left out.`,
	Example: `  orderpacectl submit orders.csv --variant=4242
  orderpacectl submit orders.csv --store=demo.myshopify.com --end-time=2026-10-20T18:00:00+05:30 --watch`,
	Args: cobra.ExactArgs(1),
}

var lsCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List tasks",
	Example: `  orderpacectl ls
  orderpacectl ls --status=Running --watch`,
	Args: cobra.NoArgs,
}

var statusCmd = &cobra.Command{
	Use:   "status TASK_ID",
	Short: "Show a task with every per-record outcome",
	Long: `Show the status of a task and the outcome of every processed record.

TASK_ID may be the full id or any unique prefix of the short id shown by ls.
With --watch the view refreshes until the task finishes.`,
	Args: cobra.ExactArgs(1),
}

var cancelCmd = &cobra.Command{
	Use:   "cancel TASK_ID",
	Short: "Cancel a running task",
	Long: `Cancel a running task. Records already being submitted finish; every
record not yet started is reported as cancelled and written to the failure file.`,
	Args: cobra.ExactArgs(1),
}

var downloadCmd = &cobra.Command{
	Use:   "download TASK_ID",
	Short: "Download the failure CSV of a finished task",
	Long: `Download the CSV of records that did not become orders, with the reason
for each. The file uses the same columns the daemon accepts, so it can be fixed
and submitted again.`,
	Example: `  orderpacectl download 3f2b8c1e9a47
  orderpacectl download 3f2b8c1e9a47 -f - | less`,
	Args: cobra.ExactArgs(1),
}

var variantCmd = &cobra.Command{
	Use:     "variant PRODUCT_URL",
	Short:   "Resolve a product link to its variant id",
	Example: `  orderpacectl variant https://demo.myshopify.com/products/classic-tee`,
	Args:    cobra.ExactArgs(1),
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show daemon status and task counts",
	Args:  cobra.NoArgs,
}

// GetTaskCommands returns the task command references for flag and handler setup
func GetTaskCommands() (submit, ls, status, cancel, download, variant, info *cobra.Command) {
	return submitCmd, lsCmd, statusCmd, cancelCmd, downloadCmd, variantCmd, infoCmd
}

// SetupSubmitFlags configures flags for the submit command
func SetupSubmitFlags(cmd *cobra.Command, variantPtr, storePtr, tokenPtr, endTimePtr *string, watchPtr *bool) {
	cmd.Flags().StringVar(variantPtr, "variant", "", "Product variant id (daemon default when empty)")
	cmd.Flags().StringVar(storePtr, "store", "", "Store address, e.g. demo.myshopify.com (daemon default when empty)")
	cmd.Flags().StringVar(tokenPtr, "token", "", "Store access token (daemon default when empty)")
	cmd.Flags().StringVar(endTimePtr, "end-time", "",
		"Deadline: RFC 3339 or YYYY-MM-DDTHH:MM in the daemon's time zone (now when empty)")
	cmd.Flags().BoolVarP(watchPtr, "watch", "w", false, "Follow the task until it finishes")
}

// SetupTaskFlags configures flags for ls, status and download
func SetupTaskFlags(ls, status, download *cobra.Command, watchPtr *bool, statusFilterPtr *string, outFilePtr *string) {
	ls.Flags().BoolVarP(watchPtr, "watch", "w", false, "Watch for live updates")
	ls.Flags().StringVar(statusFilterPtr, "status", "", "Filter by status: Running, Completed, Cancelled")

	status.Flags().BoolVarP(watchPtr, "watch", "w", false, "Refresh until the task finishes")

	download.Flags().StringVarP(outFilePtr, "file", "f", "",
		"Destination file, - for stdout (default failed_orders_<task_id>.csv)")
}
