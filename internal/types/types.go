// Domain types for chargeback analytics
package types

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the canonical calendar-date representation used across
// both tables and all request parameters.
const DateLayout = "2006-01-02"

// ErrInvalidDateFormat is returned when a date parameter cannot be parsed.
// It surfaces at the request boundary as a 400; the core never corrects
// malformed dates silently.
var ErrInvalidDateFormat = errors.New("invalid date format")

// ChargebackRecord is one disputed transaction. Records are immutable once
// loaded; the table is read-only for the lifetime of the process.
type ChargebackRecord struct {
	ChargebackID     string          `json:"chargeback_id"`
	Date             time.Time       `json:"date"`
	MerchantID       string          `json:"merchant_id"`
	MerchantName     string          `json:"merchant_name"`
	MerchantCategory string          `json:"merchant_category"`
	ProductName      string          `json:"product_name"`
	Country          string          `json:"country"`
	ReasonCategory   string          `json:"reason_category"`
	ReasonCode       string          `json:"reason_code"`
	PaymentMethod    string          `json:"payment_method"`
	Processor        string          `json:"processor"`
	AmountUSD        decimal.Decimal `json:"amount_usd"`
	Currency         string          `json:"currency"`
}

// TransactionAggregate is a pre-aggregated denominator slice, one row per
// (date, merchant, country, payment method, processor). It is used only by
// the rate calculator.
type TransactionAggregate struct {
	Date               time.Time       `json:"date"`
	MerchantID         string          `json:"merchant_id"`
	Country            string          `json:"country"`
	PaymentMethod      string          `json:"payment_method"`
	Processor          string          `json:"processor"`
	TransactionsCount  int64           `json:"transactions_count"`
	TransactionsAmount decimal.Decimal `json:"transactions_amount"`
}

// DimensionKey names the dimensions shared by both tables. The filter
// engine and the rate calculator address the same logical slice through
// this key, so filter semantics cannot drift between the two call sites.
type DimensionKey struct {
	Date          time.Time `json:"date"`
	MerchantID    string    `json:"merchant_id"`
	Country       string    `json:"country"`
	PaymentMethod string    `json:"payment_method"`
	Processor     string    `json:"processor"`
}

// Dimensions returns the record's dimension key.
func (c ChargebackRecord) Dimensions() DimensionKey {
	return DimensionKey{
		Date:          c.Date,
		MerchantID:    c.MerchantID,
		Country:       c.Country,
		PaymentMethod: c.PaymentMethod,
		Processor:     c.Processor,
	}
}

// Dimensions returns the aggregate's dimension key.
func (t TransactionAggregate) Dimensions() DimensionKey {
	return DimensionKey{
		Date:          t.Date,
		MerchantID:    t.MerchantID,
		Country:       t.Country,
		PaymentMethod: t.PaymentMethod,
		Processor:     t.Processor,
	}
}

// ParseDate parses a calendar date. Full timestamps (RFC 3339 or a bare
// "2006-01-02T15:04:05") are accepted and truncated to their date, matching
// the loader's normalization of chargeback_date.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range []string{DateLayout, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return Midnight(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, s)
}

// Midnight truncates t to its calendar date in UTC.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// FormatDate renders a normalized date using the canonical layout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
