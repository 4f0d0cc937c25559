package shopify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOrder() Order {
	return Order{
		LineItems: []LineItem{{VariantID: 4242, Quantity: 2}},
		Customer:  Customer{FirstName: "Asha", LastName: "Rao"},
		ShippingAddress: ShippingAddress{
			FirstName: "Asha",
			LastName:  "Rao",
			Address1:  "12 MG Road",
			Phone:     "9876543210",
			City:      "Bengaluru",
			Province:  "KA",
			Zip:       "560001",
		},
	}
}

func TestBaseURL(t *testing.T) {
	tests := []struct {
		store string
		want  string
	}{
		{"example.myshopify.com", "https://example.myshopify.com"},
		{" example.myshopify.com/ ", "https://example.myshopify.com"},
		{"http://127.0.0.1:8080", "http://127.0.0.1:8080"},
		{"https://example.myshopify.com/", "https://example.myshopify.com"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, BaseURL(tt.store), "BaseURL(%q)", tt.store)
	}
}

func TestCreateOrder(t *testing.T) {
	var gotBody map[string]map[string]any
	var gotToken string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, ordersPath, r.URL.Path)
		gotToken = r.Header.Get(AccessTokenHeader)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"order":{"id":555,"name":"#1001"}}`))
	}))
	defer server.Close()

	client := NewClient(Config{Store: server.URL, AccessToken: "shpat_test"})
	created, err := client.CreateOrder(context.Background(), testOrder())
	require.NoError(t, err)

	assert.Equal(t, int64(555), created.ID)
	assert.Equal(t, "shpat_test", gotToken)

	order := gotBody["order"]
	require.NotNil(t, order)
	assert.Equal(t, "pending", order["financial_status"])

	shipping := order["shipping_address"].(map[string]any)
	assert.Equal(t, "IN", shipping["country"])
	assert.Equal(t, "9876543210", shipping["phone"])

	items := order["line_items"].([]any)
	require.Len(t, items, 1)
	item := items[0].(map[string]any)
	assert.Equal(t, float64(4242), item["variant_id"])
	assert.Equal(t, float64(2), item["quantity"])
}

func TestCreateOrderRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"errors":{"line_items":["is invalid"]}}`))
	}))
	defer server.Close()

	client := NewClient(Config{Store: server.URL, AccessToken: "t"})
	_, err := client.CreateOrder(context.Background(), testOrder())
	require.Error(t, err)

	var rejection *RejectionError
	require.ErrorAs(t, err, &rejection)
	assert.Equal(t, http.StatusUnprocessableEntity, rejection.StatusCode)
	assert.Contains(t, rejection.Body, "is invalid")
	assert.True(t, IsRejection(err))
}

func TestCreateOrderOKIsNotCreated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"order":{"id":1}}`))
	}))
	defer server.Close()

	client := NewClient(Config{Store: server.URL, AccessToken: "t"})
	_, err := client.CreateOrder(context.Background(), testOrder())

	var rejection *RejectionError
	require.ErrorAs(t, err, &rejection)
	assert.Equal(t, http.StatusOK, rejection.StatusCode)
}

func TestCreateOrderTransportErrors(t *testing.T) {
	t.Run("malformed body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`not json`))
		}))
		defer server.Close()

		_, err := NewClient(Config{Store: server.URL}).CreateOrder(context.Background(), testOrder())

		var transport *TransportError
		require.ErrorAs(t, err, &transport)
		assert.False(t, IsRejection(err))
	})

	t.Run("timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
			w.WriteHeader(http.StatusCreated)
		}))
		defer server.Close()

		client := NewClient(Config{Store: server.URL, Timeout: 20 * time.Millisecond})
		_, err := client.CreateOrder(context.Background(), testOrder())

		var transport *TransportError
		require.ErrorAs(t, err, &transport)
	})

	t.Run("connection refused", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		addr := server.URL
		server.Close()

		_, err := NewClient(Config{Store: addr}).CreateOrder(context.Background(), testOrder())

		var transport *TransportError
		require.ErrorAs(t, err, &transport)
	})
}

func TestAttachPaymentTerms(t *testing.T) {
	var got graphQLRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, graphQLPath, r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"data":{"paymentTermsCreate":{"paymentTerms":{"id":"gid://shopify/PaymentTerms/1"},"userErrors":[]}}}`))
	}))
	defer server.Close()

	err := NewClient(Config{Store: server.URL}).AttachPaymentTerms(context.Background(), 555)
	require.NoError(t, err)

	assert.True(t, strings.Contains(got.Query, "paymentTermsCreate"))
	assert.Equal(t, "gid://shopify/Order/555", got.Variables["referenceId"])
	attrs := got.Variables["paymentTermsAttributes"].(map[string]any)
	assert.Equal(t, PaymentTermsTemplateID, attrs["paymentTermsTemplateId"])
}

func TestAttachPaymentTermsFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `oops`},
		{"user errors", http.StatusOK, `{"data":{"paymentTermsCreate":{"userErrors":[{"message":"already has terms"}]}}}`},
		{"graphql errors", http.StatusOK, `{"errors":[{"message":"access denied"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			err := NewClient(Config{Store: server.URL}).AttachPaymentTerms(context.Background(), 1)
			assert.Error(t, err)
		})
	}
}
