package order

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleExport = "Shipping Name,Shipping Address1,Shipping Zip,Shipping City,Shipping Province,Shipping Phone,Lineitem sku,Lineitem quantity\n" +
	"Asha Rao,12 MG Road,560001,Bengaluru,KA,9876543210,SKU-1,1\n" +
	",,,,,,,\n" +
	"\"Rao, Ravi\",\"4 \"\"B\"\" Block\",110001,Delhi,DL,+919876543211,SKU-2,3\n"

func TestParseCSV(t *testing.T) {
	rows, err := ParseCSV(strings.NewReader(sampleExport))
	require.NoError(t, err)
	require.Len(t, rows, 2, "blank row should be skipped")

	assert.Equal(t, "Asha Rao", rows[0][ColShippingName])
	assert.Equal(t, "Rao, Ravi", rows[1][ColShippingName])
	assert.Equal(t, `4 "B" Block`, rows[1][ColShippingAddress1])
	assert.Equal(t, "3", rows[1][ColLineitemQuantity])
}

func TestParseCSVStripsBOM(t *testing.T) {
	rows, err := ParseCSV(strings.NewReader("\xEF\xBB\xBFShipping Name\nAsha\n"))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "Asha", rows[0][ColShippingName])
}

func TestParseCSVShortRows(t *testing.T) {
	rows, err := ParseCSV(strings.NewReader("Shipping Name,Shipping Phone\nAsha\n"))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	_, ok := rows[0][ColShippingPhone]
	assert.False(t, ok)
	assert.Equal(t, "", Normalize(rows[0]).RawPhone)
}

func TestParseCSVRejects(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"empty file", "", ErrEmptyFile},
		{"header only", "Shipping Name,Shipping Phone\n", ErrNoRecords},
		{"only blank rows", "Shipping Name\n\"\"\n", ErrNoRecords},
		{"invalid utf8", "Shipping Name\n\xff\xfe\n", ErrInvalidEncoding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCSV(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			assert.True(t, IsValidationError(err))
		})
	}
}
