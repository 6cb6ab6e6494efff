package analytics

import (
	"github.com/shopspring/decimal"

	"github.com/flashcart/insights/internal/types"
)

// ChargebackRate computes chargebacks / matching transactions * 100 for the
// slice described by the scope, rounded to 2 decimal places.
//
// A zero chargeback count or a scope with no matching transaction volume
// yields 0.0. Missing denominator data is expected for sparse slices and is
// never an error.
func ChargebackRate(chargebacks int, aggregates []types.TransactionAggregate, scope TransactionScope) float64 {
	if chargebacks == 0 {
		return 0
	}

	var total int64
	for _, t := range aggregates {
		if scope.Match(t) {
			total += t.TransactionsCount
		}
	}
	if total == 0 {
		return 0
	}

	rate := decimal.NewFromInt(int64(chargebacks)).
		Div(decimal.NewFromInt(total)).
		Mul(decimal.NewFromInt(100)).
		Round(2)
	return rate.InexactFloat64()
}
