package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/concave-dev/orderpace/internal/logging"
	"github.com/go-resty/resty/v2"
)

// ErrNoVariants is returned when a product has no variants.
var ErrNoVariants = errors.New("product has no variants")

var storeHostPattern = regexp.MustCompile(`^https?://([^/]+)/`)

// StoreFromProductURL extracts the store host from a product page link.
func StoreFromProductURL(productURL string) (string, error) {
	m := storeHostPattern.FindStringSubmatch(strings.TrimSpace(productURL))
	if m == nil {
		return "", fmt.Errorf("invalid product url %q", productURL)
	}
	return m[1], nil
}

// VariantResolver resolves public product links to variant ids. Product JSON
// is public storefront data, so no credential is sent.
type VariantResolver struct {
	client *resty.Client
}

// NewVariantResolver creates a resolver with the given request timeout.
func NewVariantResolver(timeout time.Duration) *VariantResolver {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	client := resty.New()
	client.SetLogger(logging.RestyLogger{Prefix: "shopify"})
	client.
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &VariantResolver{client: client}
}

type productEnvelope struct {
	Product struct {
		Variants []struct {
			ID int64 `json:"id"`
		} `json:"variants"`
	} `json:"product"`
}

// Variant is the result of a product link lookup.
type Variant struct {
	VariantID int64  `json:"variant_id"`
	Store     string `json:"store_url"`
}

// LookupVariantID fetches "<productURL>.json" and returns the id of the first
// variant together with the store host.
func (v *VariantResolver) LookupVariantID(ctx context.Context, productURL string) (*Variant, error) {
	productURL = strings.TrimSpace(productURL)
	if _, err := url.ParseRequestURI(productURL); err != nil {
		return nil, fmt.Errorf("invalid product url %q: %w", productURL, err)
	}
	store, err := StoreFromProductURL(productURL)
	if err != nil {
		return nil, err
	}

	target := strings.TrimSuffix(strings.TrimRight(productURL, "/"), ".json") + ".json"

	resp, err := v.client.R().
		SetContext(ctx).
		Get(target)
	if err != nil {
		return nil, &TransportError{Op: "fetch product", Err: err}
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, &RejectionError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	var product productEnvelope
	if err := json.Unmarshal(resp.Body(), &product); err != nil {
		return nil, &TransportError{Op: "decode product", Err: err}
	}
	if len(product.Product.Variants) == 0 {
		return nil, ErrNoVariants
	}

	return &Variant{VariantID: product.Product.Variants[0].ID, Store: store}, nil
}
