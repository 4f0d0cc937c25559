// Package shopify implements the store Admin API transport used to replay
// order records.
//
// Only two calls are made against a store: creating an order over the REST
// Admin API and attaching payment terms to the created order over the GraphQL
// Admin API. A third, unauthenticated call resolves a product page link to its
// first variant id.
//
// CLIENT BEHAVIOR:
//   - One Client per batch; the store address and access credential are batch
//     parameters and are never shared across batches
//   - Every request carries a fixed timeout (10s unless configured)
//   - No automatic retries: order creation is not idempotent and a retried
//     request could create a duplicate order on the store
//   - The access credential is sent as a header and never logged
package shopify

import (
	"fmt"
	"strings"
	"time"

	"github.com/concave-dev/orderpace/internal/logging"
	"github.com/go-resty/resty/v2"
)

const (
	// DefaultTimeout bounds every outbound request.
	DefaultTimeout = 10 * time.Second

	// AccessTokenHeader carries the store access credential.
	AccessTokenHeader = "X-Shopify-Access-Token"

	ordersPath  = "/admin/api/2024-01/orders.json"
	graphQLPath = "/admin/api/unstable/graphql.json"
)

// Config holds the per-batch parameters of a store client.
type Config struct {
	// Store is the store host ("example.myshopify.com") or a base URL with an
	// explicit scheme ("http://127.0.0.1:8080").
	Store string

	// AccessToken is the Admin API credential.
	AccessToken string

	// Timeout bounds each request; zero means DefaultTimeout.
	Timeout time.Duration

	// UserAgent is sent with every request when set.
	UserAgent string
}

// Client talks to a single store's Admin API.
type Client struct {
	client  *resty.Client
	baseURL string
}

// NewClient creates a store client. It does not contact the store.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	baseURL := BaseURL(cfg.Store)

	client := resty.New()
	client.SetLogger(logging.RestyLogger{Prefix: "shopify"})

	client.
		SetTimeout(timeout).
		SetBaseURL(baseURL).
		SetRetryCount(0).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json").
		SetHeader(AccessTokenHeader, cfg.AccessToken)

	if cfg.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.UserAgent)
	}

	client.OnBeforeRequest(func(c *resty.Client, req *resty.Request) error {
		logging.Debug("Shopify request: %s %s", req.Method, req.URL)
		return nil
	})

	client.OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
		logging.Debug("Shopify response: %d (took %v)", resp.StatusCode(), resp.Time())
		return nil
	})

	client.OnError(func(req *resty.Request, err error) {
		logging.Debug("Shopify request failed: %s %s - %v", req.Method, req.URL, err)
	})

	return &Client{
		client:  client,
		baseURL: baseURL,
	}
}

// BaseURL turns a store address into the URL requests are made against. A bare
// host gets https; an address that already names a scheme is kept as is.
func BaseURL(store string) string {
	store = strings.TrimRight(strings.TrimSpace(store), "/")
	if strings.HasPrefix(store, "http://") || strings.HasPrefix(store, "https://") {
		return store
	}
	return fmt.Sprintf("https://%s", store)
}

// BaseURLString returns the resolved base URL of the client.
func (c *Client) BaseURLString() string {
	return c.baseURL
}
