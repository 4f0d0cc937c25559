package engine

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/concave-dev/orderpace/internal/logging"
	"github.com/concave-dev/orderpace/internal/metrics"
	"github.com/concave-dev/orderpace/internal/order"
	"github.com/concave-dev/orderpace/internal/shopify"
	"github.com/concave-dev/orderpace/internal/tasks"
)

// Reasons attached to records that never reached the store.
const (
	ReasonInvalidPhone = "invalid phone number"
	ReasonCancelled    = "cancelled"
)

// StoreClient is the store API surface the submitter needs.
type StoreClient interface {
	CreateOrder(ctx context.Context, order shopify.Order) (*shopify.CreatedOrder, error)
	AttachPaymentTerms(ctx context.Context, orderID int64) error
}

// ClientFactory builds the store client of one batch.
type ClientFactory func(store, accessToken string) StoreClient

// submitter turns one record into one order on the store.
type submitter struct {
	taskID    string
	variantID int64
	client    StoreClient
	registry  *tasks.Registry
	metrics   *metrics.Metrics
	log       logging.TaskLogger
}

// submit processes one record and returns its result. Records whose outcome
// is not success are appended to the task's skipped list here.
func (s *submitter) submit(ctx context.Context, index int, rec order.Record) tasks.Result {
	result := tasks.Result{Index: index}

	if !rec.PhoneValid {
		s.log.Warn("skipping record %d, invalid phone number %q", index, rec.RawPhone)
		s.registry.AppendSkipped(s.taskID, rec)
		result.Outcome = tasks.OutcomeSkipped
		result.Reason = ReasonInvalidPhone
		return result
	}

	quantity, err := strconv.Atoi(strings.TrimSpace(rec.Quantity))
	if err != nil {
		s.registry.AppendSkipped(s.taskID, rec)
		result.Outcome = tasks.OutcomeError
		result.Reason = fmt.Sprintf("invalid quantity %q", rec.Quantity)
		return result
	}

	first, last := order.SplitName(rec.FullName)
	payload := shopify.Order{
		LineItems: []shopify.LineItem{{VariantID: s.variantID, Quantity: quantity}},
		Customer:  shopify.Customer{FirstName: first, LastName: last},
		ShippingAddress: shopify.ShippingAddress{
			FirstName: first,
			LastName:  last,
			Address1:  rec.Address1,
			Address2:  rec.Address2,
			Phone:     rec.Phone,
			City:      rec.City,
			Province:  rec.Region,
			Country:   shopify.DefaultCountry,
			Zip:       rec.PostalCode,
		},
		FinancialStatus: "pending",
	}

	// Cancellation must not interrupt a call that has already started.
	callCtx := context.WithoutCancel(ctx)

	start := time.Now()
	created, err := s.client.CreateOrder(callCtx, payload)
	s.metrics.ObserveRemoteCall("create_order", err == nil, time.Since(start))

	if err != nil {
		s.registry.AppendSkipped(s.taskID, rec)

		var rejection *shopify.RejectionError
		if errors.As(err, &rejection) {
			s.log.Error("order for record %d rejected: %d - %s", index, rejection.StatusCode, rejection.Body)
			result.Outcome = tasks.OutcomeFailed
			result.Reason = rejection.Body
			return result
		}

		s.log.Error("order for record %d failed: %v", index, err)
		result.Outcome = tasks.OutcomeError
		result.Reason = err.Error()
		return result
	}

	s.log.Info("order created successfully: %d", created.ID)

	start = time.Now()
	err = s.client.AttachPaymentTerms(callCtx, created.ID)
	s.metrics.ObserveRemoteCall("payment_terms", err == nil, time.Since(start))

	attached := err == nil
	if err != nil {
		s.log.Error("failed to create payment terms for order %d: %v", created.ID, err)
	} else {
		s.log.Debug("payment terms created for order %d", created.ID)
	}

	result.Outcome = tasks.OutcomeSuccess
	result.OrderID = created.ID
	result.PaymentTermsAttached = &attached
	return result
}
