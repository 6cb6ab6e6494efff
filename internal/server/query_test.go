package server

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flashcart/insights/internal/analytics"
	"github.com/flashcart/insights/internal/types"
)

func TestParseChargebackFilter(t *testing.T) {
	t.Run("All Parameters", func(t *testing.T) {
		r := httptest.NewRequest("GET",
			"/api/v1/chargebacks?start_date=2026-06-01&end_date=2026-06-30&merchant_id=tech&reason_category=fraud,product_not_received&payment_method=visa&country=ID,PH&min_amount=10&max_amount=200", nil)

		f, err := parseChargebackFilter(r)
		require.NoError(t, err)
		assert.Equal(t, "2026-06-01", types.FormatDate(*f.StartDate))
		assert.Equal(t, "2026-06-30", types.FormatDate(*f.EndDate))
		assert.Equal(t, "tech", f.Merchant)
		assert.Equal(t, []string{"fraud", "product_not_received"}, f.Categories)
		assert.Equal(t, []string{"visa"}, f.PaymentMethods)
		assert.Equal(t, []string{"ID", "PH"}, f.Countries)
		assert.Equal(t, "10", f.MinAmount.String())
		assert.Equal(t, "200", f.MaxAmount.String())
	})

	t.Run("No Parameters Is Zero Filter", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/v1/chargebacks", nil)
		f, err := parseChargebackFilter(r)
		require.NoError(t, err)
		assert.True(t, f.IsZero())
	})

	t.Run("Malformed Date Propagates Sentinel", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/v1/chargebacks?start_date=06-15-2026", nil)
		_, err := parseChargebackFilter(r)
		assert.ErrorIs(t, err, types.ErrInvalidDateFormat)
	})
}

func TestFilterKey(t *testing.T) {
	t.Run("Equal Filters Give Equal Keys", func(t *testing.T) {
		a := analytics.ChargebackFilter{Countries: []string{"PH", "ID"}, Categories: []string{"fraud"}}
		b := analytics.ChargebackFilter{Countries: []string{"ID", "PH"}, Categories: []string{"fraud"}}
		assert.Equal(t, filterKey(a), filterKey(b))
	})

	t.Run("Different Filters Give Different Keys", func(t *testing.T) {
		a := analytics.ChargebackFilter{Countries: []string{"ID"}}
		b := analytics.ChargebackFilter{Countries: []string{"PH"}}
		assert.NotEqual(t, filterKey(a), filterKey(b))
	})

	t.Run("Zero Filter Has Stable Key", func(t *testing.T) {
		assert.Equal(t, "all", filterKey(analytics.ChargebackFilter{}))
	})
}

func TestSortChargebacks(t *testing.T) {
	records := func() []types.ChargebackRecord {
		return []types.ChargebackRecord{
			{ChargebackID: "b", Date: day("2026-06-10"), MerchantName: "Zed"},
			{ChargebackID: "a", Date: day("2026-06-10"), MerchantName: "Alpha"},
			{ChargebackID: "c", Date: day("2026-06-01"), MerchantName: "Mid"},
		}
	}

	t.Run("Equal Keys Break Ties By ID", func(t *testing.T) {
		rows := records()
		sortChargebacks(rows, "date", "asc")
		assert.Equal(t, "c", rows[0].ChargebackID)
		assert.Equal(t, "a", rows[1].ChargebackID)
		assert.Equal(t, "b", rows[2].ChargebackID)
	})

	t.Run("Deterministic Across Runs", func(t *testing.T) {
		first := records()
		second := records()
		sortChargebacks(first, "merchant_name", "desc")
		sortChargebacks(second, "merchant_name", "desc")
		assert.Equal(t, first, second)
	})
}

func day(s string) time.Time {
	d, err := types.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}
