// Package client provides the API client used by orderpacectl to talk to the
// orderpaced REST API.
//
// The client wraps Resty with the daemon's endpoints and error format. Reads
// retry on connection failures; submissions and cancellations never retry, so
// a batch cannot be accepted twice because a response was lost.
package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/concave-dev/orderpace/cmd/orderpacectl/config"
	"github.com/concave-dev/orderpace/internal/logging"
	"github.com/concave-dev/orderpace/internal/netutil"
	"github.com/concave-dev/orderpace/internal/shopify"
	"github.com/concave-dev/orderpace/internal/tasks"
	"github.com/go-resty/resty/v2"
)

// SubmitOptions are the optional batch parameters of a submission. Empty
// values fall back to the daemon defaults.
type SubmitOptions struct {
	VariantID   string
	Store       string
	AccessToken string
	EndTime     string
}

// SubmitResponse is the daemon's answer to an accepted batch.
type SubmitResponse struct {
	TaskID  string `json:"task_id"`
	Records int    `json:"records"`
	Message string `json:"message"`
}

// TaskListResponse lists tasks known to the daemon.
type TaskListResponse struct {
	Tasks []tasks.Summary `json:"tasks"`
	Count int             `json:"count"`
}

// CancelResponse is the daemon's answer to an accepted cancellation.
type CancelResponse struct {
	TaskID  string       `json:"task_id"`
	Status  tasks.Status `json:"status"`
	Message string       `json:"message"`
}

// HealthResponse is the daemon health report.
type HealthResponse struct {
	Status    string         `json:"status"`
	Timestamp time.Time      `json:"timestamp"`
	Version   string         `json:"version"`
	Uptime    string         `json:"uptime"`
	Tasks     map[string]int `json:"tasks,omitempty"`
}

// APIError is a non-success response from the daemon.
type APIError struct {
	StatusCode int
	Message    string
	Details    string
	RetryAfter string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Details != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Details)
	}
	if e.RetryAfter != "" {
		msg = fmt.Sprintf("%s (retry after %ss)", msg, e.RetryAfter)
	}
	return fmt.Sprintf("API request failed with status %d: %s", e.StatusCode, msg)
}

// IsStatus reports whether err is an *APIError with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

// OrderpaceAPIClient talks to one orderpaced instance
type OrderpaceAPIClient struct {
	reads   *resty.Client
	writes  *resty.Client
	baseURL string
}

func newRestyClient(baseURL string, timeout time.Duration, retries int) *resty.Client {
	client := resty.New()

	client.SetLogger(logging.RestyLogger{Prefix: "api"})

	client.
		SetTimeout(timeout).
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", fmt.Sprintf("orderpacectl/%s", config.Version))

	client.SetRetryCount(retries)
	if retries > 0 {
		client.
			SetRetryWaitTime(1 * time.Second).
			SetRetryMaxWaitTime(5 * time.Second).
			AddRetryCondition(func(r *resty.Response, err error) bool {
				// Only retry on connection errors, not HTTP errors
				return err != nil
			})
	}

	client.OnBeforeRequest(func(c *resty.Client, req *resty.Request) error {
		logging.Debug("Making API request: %s %s", req.Method, req.URL)
		return nil
	})
	client.OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
		logging.Debug("API response: %d %s (took %v)",
			resp.StatusCode(), resp.Status(), resp.Time())
		return nil
	})
	client.OnError(func(req *resty.Request, err error) {
		logging.Debug("API request failed: %s %s - %v", req.Method, req.URL, err)
	})

	return client
}

// NewOrderpaceAPIClient creates a client for the daemon at apiAddr
// ("host:port") with a per-request timeout in seconds.
func NewOrderpaceAPIClient(apiAddr string, timeout int) *OrderpaceAPIClient {
	baseURL := fmt.Sprintf("http://%s/api/v1", apiAddr)
	d := time.Duration(timeout) * time.Second

	return &OrderpaceAPIClient{
		reads:   newRestyClient(baseURL, d, 3),
		writes:  newRestyClient(baseURL, d, 0),
		baseURL: baseURL,
	}
}

// CreateAPIClient creates a client from the global CLI flags
func CreateAPIClient() *OrderpaceAPIClient {
	return NewOrderpaceAPIClient(config.Global.APIAddr, config.Global.Timeout)
}

// BaseURL returns the API root the client talks to.
func (api *OrderpaceAPIClient) BaseURL() string {
	return api.baseURL
}

// connectionError wraps a transport failure with a hint when the daemon is not
// listening at all.
func (api *OrderpaceAPIClient) connectionError(err error) error {
	if netutil.IsConnectionRefusedError(err) {
		return fmt.Errorf("cannot reach orderpaced at %s (is the daemon running?): %w", api.baseURL, err)
	}
	return fmt.Errorf("failed to connect to API server at %s: %w", api.baseURL, err)
}

// responseError builds an *APIError from a non-success response.
func responseError(resp *resty.Response) error {
	return parseAPIError(resp.StatusCode(), resp.Header(), resp.Body())
}

// parseAPIError decodes an error body. The daemon reports errors as
// {"error","details"}; the failure download uses {"status","message"}.
func parseAPIError(status int, header http.Header, data []byte) *APIError {
	apiErr := &APIError{
		StatusCode: status,
		RetryAfter: header.Get("Retry-After"),
	}

	var body struct {
		Error   string `json:"error"`
		Details string `json:"details"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		apiErr.Message = body.Error
		if apiErr.Message == "" {
			apiErr.Message = body.Message
		}
		apiErr.Details = body.Details
	} else {
		apiErr.Details = strings.TrimSpace(string(data))
	}

	return apiErr
}

// Health returns the daemon health report.
func (api *OrderpaceAPIClient) Health() (*HealthResponse, error) {
	var response HealthResponse

	resp, err := api.reads.R().
		SetResult(&response).
		Get("/health")
	if err != nil {
		return nil, api.connectionError(err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, responseError(resp)
	}

	return &response, nil
}

// SubmitFile uploads a CSV file as a new batch.
func (api *OrderpaceAPIClient) SubmitFile(path string, opts SubmitOptions) (*SubmitResponse, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var response SubmitResponse

	form := map[string]string{}
	setIfPresent(form, "variant_id", opts.VariantID)
	setIfPresent(form, "store_url", opts.Store)
	setIfPresent(form, "access_token", opts.AccessToken)
	setIfPresent(form, "end_time", opts.EndTime)

	resp, err := api.writes.R().
		SetFileReader("file", filepath.Base(path), f).
		SetFormData(form).
		SetResult(&response).
		Post("/tasks")
	if err != nil {
		return nil, api.connectionError(err)
	}
	if resp.StatusCode() != http.StatusAccepted {
		return nil, responseError(resp)
	}

	return &response, nil
}

// ListTasks returns every task, optionally filtered by status.
func (api *OrderpaceAPIClient) ListTasks(status string) ([]tasks.Summary, error) {
	var response TaskListResponse

	req := api.reads.R().SetResult(&response)
	if status != "" {
		req.SetQueryParam("status", status)
	}

	resp, err := req.Get("/tasks")
	if err != nil {
		return nil, api.connectionError(err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, responseError(resp)
	}

	return response.Tasks, nil
}

// GetTask returns the full status of one task.
func (api *OrderpaceAPIClient) GetTask(taskID string) (*tasks.Snapshot, error) {
	var response tasks.Snapshot

	resp, err := api.reads.R().
		SetResult(&response).
		SetPathParam("id", taskID).
		Get("/tasks/{id}")
	if err != nil {
		return nil, api.connectionError(err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, responseError(resp)
	}

	return &response, nil
}

// CancelTask requests cancellation of a running task.
func (api *OrderpaceAPIClient) CancelTask(taskID string) (*CancelResponse, error) {
	var response CancelResponse

	resp, err := api.writes.R().
		SetResult(&response).
		SetPathParam("id", taskID).
		Post("/tasks/{id}/cancel")
	if err != nil {
		return nil, api.connectionError(err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, responseError(resp)
	}

	return &response, nil
}

// DownloadFailures streams the failure CSV of a task into w and returns the
// number of bytes written.
func (api *OrderpaceAPIClient) DownloadFailures(taskID string, w io.Writer) (int64, error) {
	resp, err := api.reads.R().
		SetDoNotParseResponse(true).
		SetPathParam("id", taskID).
		Get("/tasks/{id}/failures")
	if err != nil {
		return 0, api.connectionError(err)
	}

	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() != http.StatusOK {
		data, _ := io.ReadAll(body)
		return 0, parseAPIError(resp.StatusCode(), resp.Header(), data)
	}

	n, err := io.Copy(w, body)
	if err != nil {
		return n, fmt.Errorf("failed to write failure file: %w", err)
	}
	return n, nil
}

// LookupVariant resolves a product page link to its first variant.
func (api *OrderpaceAPIClient) LookupVariant(productURL string) (*shopify.Variant, error) {
	var response shopify.Variant

	resp, err := api.reads.R().
		SetResult(&response).
		SetQueryParam("product_url", productURL).
		Get("/variants")
	if err != nil {
		return nil, api.connectionError(err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, responseError(resp)
	}

	return &response, nil
}

// GetTaskIDsForResolver lists every task id for partial id resolution.
func (api *OrderpaceAPIClient) GetTaskIDsForResolver() ([]string, error) {
	list, err := api.ListTasks("")
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(list))
	for _, t := range list {
		ids = append(ids, t.ID)
	}
	return ids, nil
}

func setIfPresent(form map[string]string, key, value string) {
	if value != "" {
		form[key] = value
	}
}
