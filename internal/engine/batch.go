package engine

import (
	"strconv"
	"time"

	"github.com/concave-dev/orderpace/internal/order"
	"github.com/concave-dev/orderpace/internal/validate"
)

// Batch is one submission: the records to replay and the store parameters
// they are replayed against.
type Batch struct {
	Records []order.Record

	// VariantID is the product variant every order is placed for.
	VariantID string

	// Store is the store host or base URL.
	Store string

	// AccessToken is the store credential. It is used only for this batch.
	AccessToken string

	// Deadline is when the last record should be submitted. The zero value
	// means as soon as possible.
	Deadline time.Time
}

// Validate checks the batch and returns the parsed variant id. Every error is
// an *order.ValidationError.
func (b Batch) Validate() (int64, error) {
	if len(b.Records) == 0 {
		return 0, &order.ValidationError{Field: "records", Reason: "batch rejected", Err: order.ErrNoRecords}
	}
	if err := validate.VariantID(b.VariantID); err != nil {
		return 0, &order.ValidationError{Field: "variant_id", Reason: err.Error()}
	}
	variantID, err := strconv.ParseInt(b.VariantID, 10, 64)
	if err != nil || variantID <= 0 {
		return 0, order.NewValidationError("variant_id", "must be a positive integer")
	}
	if err := validate.StoreAddress(b.Store); err != nil {
		return 0, &order.ValidationError{Field: "store_url", Reason: err.Error()}
	}
	if err := validate.ValidateRequiredString(b.AccessToken, "access token"); err != nil {
		return 0, &order.ValidationError{Field: "access_token", Reason: err.Error()}
	}
	return variantID, nil
}
