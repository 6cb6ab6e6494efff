package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	t.Run("Calendar Date", func(t *testing.T) {
		d, err := ParseDate("2026-06-15")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC), d)
	})

	t.Run("Timestamp Truncates To Date", func(t *testing.T) {
		d, err := ParseDate("2026-06-15T13:45:12")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC), d)
	})

	t.Run("RFC3339 Truncates To Date", func(t *testing.T) {
		d, err := ParseDate("2026-06-15T13:45:12Z")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC), d)
	})

	t.Run("Garbage Fails With Sentinel", func(t *testing.T) {
		for _, input := range []string{"", "not-a-date", "15/06/2026", "2026-13-40"} {
			_, err := ParseDate(input)
			assert.ErrorIs(t, err, ErrInvalidDateFormat, input)
		}
	})
}

func TestDimensions(t *testing.T) {
	d := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)

	record := ChargebackRecord{
		Date: d, MerchantID: "M001", Country: "ID",
		PaymentMethod: "visa", Processor: "Adyen",
	}
	aggregate := TransactionAggregate{
		Date: d, MerchantID: "M001", Country: "ID",
		PaymentMethod: "visa", Processor: "Adyen",
	}

	// Both tables address the same logical slice through the same key.
	assert.Equal(t, record.Dimensions(), aggregate.Dimensions())
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2026, 6, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-06-05", FormatDate(d))
}
