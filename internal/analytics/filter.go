// Filter engine for the chargeback table
package analytics

import (
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/flashcart/insights/internal/types"
)

// ChargebackFilter is a set of optional predicates over the chargeback
// table. A nil/empty field passes every row; supplied predicates are
// combined with logical AND.
type ChargebackFilter struct {
	StartDate      *time.Time
	EndDate        *time.Time
	Merchant       string // case-insensitive substring on merchant_id OR merchant_name
	Categories     []string
	PaymentMethods []string
	Countries      []string
	MinAmount      *decimal.Decimal
	MaxAmount      *decimal.Decimal
}

// IsZero reports whether no predicate is set.
func (f ChargebackFilter) IsZero() bool {
	return f.StartDate == nil && f.EndDate == nil && f.Merchant == "" &&
		len(f.Categories) == 0 && len(f.PaymentMethods) == 0 && len(f.Countries) == 0 &&
		f.MinAmount == nil && f.MaxAmount == nil
}

// Match reports whether a single record satisfies every supplied predicate.
func (f ChargebackFilter) Match(r types.ChargebackRecord) bool {
	if f.StartDate != nil && r.Date.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && r.Date.After(*f.EndDate) {
		return false
	}
	if f.Merchant != "" {
		needle := strings.ToLower(f.Merchant)
		if !strings.Contains(strings.ToLower(r.MerchantID), needle) &&
			!strings.Contains(strings.ToLower(r.MerchantName), needle) {
			return false
		}
	}
	if len(f.Categories) > 0 && !lo.Contains(f.Categories, r.ReasonCategory) {
		return false
	}
	if len(f.PaymentMethods) > 0 && !lo.Contains(f.PaymentMethods, r.PaymentMethod) {
		return false
	}
	if len(f.Countries) > 0 && !lo.Contains(f.Countries, r.Country) {
		return false
	}
	if f.MinAmount != nil && r.AmountUSD.LessThan(*f.MinAmount) {
		return false
	}
	if f.MaxAmount != nil && r.AmountUSD.GreaterThan(*f.MaxAmount) {
		return false
	}
	return true
}

// FilterChargebacks returns the rows satisfying the filter. The result is a
// fresh slice; mutating it never affects the source table. Zero matches is
// not an error, the result is simply empty.
func FilterChargebacks(rows []types.ChargebackRecord, f ChargebackFilter) []types.ChargebackRecord {
	out := make([]types.ChargebackRecord, 0, len(rows))
	for _, r := range rows {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// TransactionScope mirrors the chargeback filter on the transaction table.
// Only dimensions that exist on both tables are present: reason category and
// amount bounds are chargeback-specific and deliberately absent. Merchant
// matching is exact set membership because callers pass resolved IDs, not
// free text.
type TransactionScope struct {
	StartDate      *time.Time
	EndDate        *time.Time
	MerchantIDs    []string
	PaymentMethods []string
	Countries      []string
}

// Scope projects the chargeback filter onto the shared dimensions, binding
// it to the given resolved merchant ID set.
func (f ChargebackFilter) Scope(merchantIDs []string) TransactionScope {
	return TransactionScope{
		StartDate:      f.StartDate,
		EndDate:        f.EndDate,
		MerchantIDs:    merchantIDs,
		PaymentMethods: f.PaymentMethods,
		Countries:      f.Countries,
	}
}

// Match reports whether an aggregate row falls inside the scope.
func (s TransactionScope) Match(t types.TransactionAggregate) bool {
	if s.StartDate != nil && t.Date.Before(*s.StartDate) {
		return false
	}
	if s.EndDate != nil && t.Date.After(*s.EndDate) {
		return false
	}
	if len(s.MerchantIDs) > 0 && !lo.Contains(s.MerchantIDs, t.MerchantID) {
		return false
	}
	if len(s.PaymentMethods) > 0 && !lo.Contains(s.PaymentMethods, t.PaymentMethod) {
		return false
	}
	if len(s.Countries) > 0 && !lo.Contains(s.Countries, t.Country) {
		return false
	}
	return true
}
