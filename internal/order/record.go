// Package order turns uploaded spreadsheet rows into canonical order records.
//
// This package implements the record normalizer used by the batch engine. Each
// row of an export is a mapping of column name to string; shipping columns are
// preferred and billing columns act as a fallback. The result is an immutable
// Record value that is handed to the remote submitter.
//
// NORMALIZATION RULES:
//   - Every field takes the first non-empty, trimmed value of its column list
//   - Absent columns normalize to the empty string and never abort the batch
//   - The phone number is normalized up front but an invalid number does not
//     reject the row; the submitter decides, so the batch size is known before
//     processing starts
package order

import (
	"strings"

	"github.com/concave-dev/orderpace/internal/logging"
)

// Row is one raw tabular record keyed by column header.
type Row map[string]string

// Column headers of the source export. The billing name header is misspelled
// by some exporters, so both spellings are accepted.
const (
	ColShippingName     = "Shipping Name"
	ColBillingName      = "Billing Name"
	ColBilingName       = "Biling Name"
	ColShippingAddress1 = "Shipping Address1"
	ColBillingAddress1  = "Billing Address1"
	ColShippingAddress2 = "Shipping Address2"
	ColBillingAddress2  = "Billing Address2"
	ColShippingZip      = "Shipping Zip"
	ColBillingZip       = "Billing Zip"
	ColShippingCity     = "Shipping City"
	ColBillingCity      = "Billing City"
	ColShippingProvince = "Shipping Province"
	ColBillingProvince  = "Billing Province"
	ColShippingPhone    = "Shipping Phone"
	ColBillingPhone     = "Billing Phone"
	ColLineitemSKU      = "Lineitem sku"
	ColLineitemQuantity = "Lineitem quantity"
)

// Column headers of the failure artifact. An artifact can be uploaded again
// as is once its rows are fixed, so these are accepted as a last fallback.
const (
	ColName        = "name"
	ColAddress1    = "address1"
	ColAddress2    = "address2"
	ColPincode     = "pincode"
	ColCity        = "city"
	ColState       = "state"
	ColPhoneNumber = "phone_number"
	ColProductID   = "product_id"
	ColQuantity    = "quantity"
)

// ExpectedColumns lists every header the normalizer reads.
var ExpectedColumns = []string{
	ColShippingName, ColBillingName, ColBilingName,
	ColShippingAddress1, ColBillingAddress1,
	ColShippingAddress2, ColBillingAddress2,
	ColShippingZip, ColBillingZip,
	ColShippingCity, ColBillingCity,
	ColShippingProvince, ColBillingProvince,
	ColShippingPhone, ColBillingPhone,
	ColLineitemSKU, ColLineitemQuantity,
	ColName, ColAddress1, ColAddress2, ColPincode, ColCity, ColState,
	ColPhoneNumber, ColProductID, ColQuantity,
}

// Record is a canonical order-submission record. It is produced once by
// Normalize and never mutated afterwards; pass it by value.
type Record struct {
	FullName   string `json:"name"`
	Address1   string `json:"address1"`
	Address2   string `json:"address2"`
	PostalCode string `json:"pincode"`
	City       string `json:"city"`
	Region     string `json:"state"`
	RawPhone   string `json:"phone_number"`
	SKU        string `json:"product_id"`
	Quantity   string `json:"quantity"`

	// Phone is the normalized 10 digit number, empty when PhoneValid is false.
	Phone      string `json:"-"`
	PhoneValid bool   `json:"-"`
}

// FirstName returns the first whitespace-separated token of the full name.
func (r Record) FirstName() string {
	first, _ := SplitName(r.FullName)
	return first
}

// LastName returns everything after the first token of the full name.
func (r Record) LastName() string {
	_, last := SplitName(r.FullName)
	return last
}

// Normalize converts one raw row into a Record. Rows that carry none of the
// expected columns are logged and still produce an all-empty Record.
func Normalize(row Row) Record {
	if !hasAnyExpectedColumn(row) {
		logging.Warn("Normalizer: row has none of the expected columns (%d columns present)", len(row))
	}

	return Prepare(Record{
		FullName:   first(row, ColShippingName, ColBillingName, ColBilingName, ColName),
		Address1:   first(row, ColShippingAddress1, ColBillingAddress1, ColAddress1),
		Address2:   first(row, ColShippingAddress2, ColBillingAddress2, ColAddress2),
		PostalCode: first(row, ColShippingZip, ColBillingZip, ColPincode),
		City:       first(row, ColShippingCity, ColBillingCity, ColCity),
		Region:     first(row, ColShippingProvince, ColBillingProvince, ColState),
		RawPhone:   first(row, ColShippingPhone, ColBillingPhone, ColPhoneNumber),
		SKU:        first(row, ColLineitemSKU, ColProductID),
		Quantity:   first(row, ColLineitemQuantity, ColQuantity),
	})
}

// Prepare trims every field of a record built elsewhere (for example decoded
// from a JSON request) and derives its normalized phone number.
func Prepare(rec Record) Record {
	rec.FullName = strings.TrimSpace(rec.FullName)
	rec.Address1 = strings.TrimSpace(rec.Address1)
	rec.Address2 = strings.TrimSpace(rec.Address2)
	rec.PostalCode = strings.TrimSpace(rec.PostalCode)
	rec.City = strings.TrimSpace(rec.City)
	rec.Region = strings.TrimSpace(rec.Region)
	rec.RawPhone = strings.TrimSpace(rec.RawPhone)
	rec.SKU = strings.TrimSpace(rec.SKU)
	rec.Quantity = strings.TrimSpace(rec.Quantity)

	rec.Phone, rec.PhoneValid = NormalizePhone(rec.RawPhone)
	if !rec.PhoneValid {
		logging.Debug("Normalizer: invalid phone number %q for %q", rec.RawPhone, rec.FullName)
	}
	return rec
}

// PrepareAll prepares a batch of records, preserving order.
func PrepareAll(records []Record) []Record {
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		out = append(out, Prepare(rec))
	}
	return out
}

// NormalizeAll normalizes a whole batch, preserving input order.
func NormalizeAll(rows []Row) []Record {
	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, Normalize(row))
	}
	return records
}

// SplitName splits a full name into a first name and the remaining tokens.
func SplitName(full string) (string, string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}

// first returns the first non-empty trimmed value among the given columns.
func first(row Row, columns ...string) string {
	for _, col := range columns {
		if v := strings.TrimSpace(row[col]); v != "" {
			return v
		}
	}
	return ""
}

func hasAnyExpectedColumn(row Row) bool {
	for _, col := range ExpectedColumns {
		if _, ok := row[col]; ok {
			return true
		}
	}
	return false
}
