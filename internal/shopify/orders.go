package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// DefaultCountry is the country code placed on every shipping address.
const DefaultCountry = "IN"

// PaymentTermsTemplateID is the template attached to every created order.
const PaymentTermsTemplateID = "gid://shopify/PaymentTermsTemplate/1"

const paymentTermsMutation = `mutation PaymentTermsCreate($referenceId: ID!, $paymentTermsAttributes: PaymentTermsCreateInput!) {
  paymentTermsCreate(referenceId: $referenceId, paymentTermsAttributes: $paymentTermsAttributes) {
    paymentTerms {
      id
    }
    userErrors {
      field
      message
    }
  }
}`

// LineItem is one product line of an order.
type LineItem struct {
	VariantID int64  `json:"variant_id"`
	Quantity  int    `json:"quantity"`
}

// Customer names the buyer.
type Customer struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// ShippingAddress is the delivery address of an order.
type ShippingAddress struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Address1  string `json:"address1"`
	Address2  string `json:"address2"`
	Phone     string `json:"phone"`
	City      string `json:"city"`
	Province  string `json:"province"`
	Country   string `json:"country"`
	Zip       string `json:"zip"`
}

// Order is the order creation payload.
type Order struct {
	LineItems       []LineItem      `json:"line_items"`
	Customer        Customer        `json:"customer"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
	FinancialStatus string          `json:"financial_status"`
}

type orderEnvelope struct {
	Order Order `json:"order"`
}

// CreatedOrder is the part of the creation response the engine needs.
type CreatedOrder struct {
	ID int64 `json:"id"`
}

type createdEnvelope struct {
	Order *CreatedOrder `json:"order"`
}

// CreateOrder submits one order. Only 201 Created counts as success; any other
// status yields a *RejectionError carrying the response body. Connection,
// timeout and decode failures yield a *TransportError.
func (c *Client) CreateOrder(ctx context.Context, order Order) (*CreatedOrder, error) {
	if order.FinancialStatus == "" {
		order.FinancialStatus = "pending"
	}
	if order.ShippingAddress.Country == "" {
		order.ShippingAddress.Country = DefaultCountry
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(orderEnvelope{Order: order}).
		Post(ordersPath)
	if err != nil {
		return nil, &TransportError{Op: "create order", Err: err}
	}

	if resp.StatusCode() != http.StatusCreated {
		return nil, &RejectionError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	var created createdEnvelope
	if err := json.Unmarshal(resp.Body(), &created); err != nil {
		return nil, &TransportError{Op: "decode created order", Err: err}
	}
	if created.Order == nil || created.Order.ID == 0 {
		return nil, &TransportError{Op: "decode created order", Err: errors.New("response has no order id")}
	}

	return created.Order, nil
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type paymentTermsResponse struct {
	Data struct {
		PaymentTermsCreate struct {
			UserErrors []struct {
				Message string `json:"message"`
			} `json:"userErrors"`
		} `json:"paymentTermsCreate"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// OrderGID returns the global id of an order.
func OrderGID(orderID int64) string {
	return fmt.Sprintf("gid://shopify/Order/%d", orderID)
}

// AttachPaymentTerms attaches the default payment terms template to a created
// order. Any status other than 200, or a GraphQL level error, is returned.
func (c *Client) AttachPaymentTerms(ctx context.Context, orderID int64) error {
	body := graphQLRequest{
		Query: paymentTermsMutation,
		Variables: map[string]any{
			"referenceId": OrderGID(orderID),
			"paymentTermsAttributes": map[string]any{
				"paymentTermsTemplateId": PaymentTermsTemplateID,
			},
		},
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(body).
		Post(graphQLPath)
	if err != nil {
		return &TransportError{Op: "attach payment terms", Err: err}
	}

	if resp.StatusCode() != http.StatusOK {
		return &RejectionError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	var parsed paymentTermsResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		// The store answered 200; an unreadable body is not treated as failure.
		return nil
	}
	if len(parsed.Errors) > 0 {
		return fmt.Errorf("payment terms: %s", parsed.Errors[0].Message)
	}
	if ue := parsed.Data.PaymentTermsCreate.UserErrors; len(ue) > 0 {
		return fmt.Errorf("payment terms: %s", ue[0].Message)
	}
	return nil
}
