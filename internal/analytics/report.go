// Aggregation and reporting layer
package analytics

import (
	"sort"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/flashcart/insights/internal/types"
)

// TopMerchantLimit caps the merchant leaderboard.
const TopMerchantLimit = 10

// CategoryBreakdown is the per-reason-category summary slice.
type CategoryBreakdown struct {
	Category string  `json:"category"`
	Count    int     `json:"count"`
	Amount   float64 `json:"amount"`
}

// CountryBreakdown is the per-country summary slice.
type CountryBreakdown struct {
	Country string  `json:"country"`
	Count   int     `json:"count"`
	Amount  float64 `json:"amount"`
}

// PaymentMethodBreakdown is the per-payment-method summary slice.
type PaymentMethodBreakdown struct {
	PaymentMethod string  `json:"payment_method"`
	Count         int     `json:"count"`
	Amount        float64 `json:"amount"`
}

// ProcessorBreakdown is the per-processor summary slice.
type ProcessorBreakdown struct {
	Processor string  `json:"processor"`
	Count     int     `json:"count"`
	Amount    float64 `json:"amount"`
}

// DailyBreakdown is the per-day summary slice, ordered by date.
type DailyBreakdown struct {
	Date   string  `json:"date"`
	Count  int     `json:"count"`
	Amount float64 `json:"amount"`
}

// MerchantSummary is one leaderboard entry with its individual chargeback
// rate computed against the transaction table.
type MerchantSummary struct {
	MerchantID   string  `json:"merchant_id"`
	MerchantName string  `json:"merchant_name"`
	Count        int     `json:"count"`
	Amount       float64 `json:"amount"`
	Rate         float64 `json:"rate"`
}

// Report is the composed metrics payload for one filter set.
type Report struct {
	TotalChargebacks    int                      `json:"total_chargebacks"`
	TotalDisputedAmount float64                  `json:"total_disputed_amount"`
	ChargebackRate      float64                  `json:"chargeback_rate"`
	TrendPct            float64                  `json:"trend_pct"`
	ByCategory          []CategoryBreakdown      `json:"by_category"`
	ByCountry           []CountryBreakdown       `json:"by_country"`
	ByPaymentMethod     []PaymentMethodBreakdown `json:"by_payment_method"`
	ByProcessor         []ProcessorBreakdown     `json:"by_processor"`
	ByDay               []DailyBreakdown         `json:"by_day"`
	TopMerchants        []MerchantSummary        `json:"top_merchants"`
}

// BuildReport aggregates an already-filtered chargeback subset. The full
// table is needed for the trend comparison (its previous window is never
// date-filtered by the caller), and the original filter is needed to scope
// the rate denominators to the same logical slice.
func BuildReport(
	filtered []types.ChargebackRecord,
	all []types.ChargebackRecord,
	aggregates []types.TransactionAggregate,
	filter ChargebackFilter,
	now time.Time,
) Report {
	report := Report{
		TotalChargebacks: len(filtered),
		ByCategory:       []CategoryBreakdown{},
		ByCountry:        []CountryBreakdown{},
		ByPaymentMethod:  []PaymentMethodBreakdown{},
		ByProcessor:      []ProcessorBreakdown{},
		ByDay:            []DailyBreakdown{},
		TopMerchants:     []MerchantSummary{},
		TrendPct:         TrendPct(all, filter.StartDate, filter.EndDate, now),
	}
	if len(filtered) == 0 {
		return report
	}

	report.TotalDisputedAmount = sumAmount(filtered)

	merchantIDs := lo.Uniq(lo.Map(filtered, func(r types.ChargebackRecord, _ int) string {
		return r.MerchantID
	}))
	report.ChargebackRate = ChargebackRate(len(filtered), aggregates, filter.Scope(merchantIDs))

	report.ByCategory = lo.Map(
		groupCount(filtered, func(r types.ChargebackRecord) string { return r.ReasonCategory }),
		func(g dimensionGroup, _ int) CategoryBreakdown {
			return CategoryBreakdown{Category: g.key, Count: g.count, Amount: g.amount}
		})
	report.ByCountry = lo.Map(
		groupCount(filtered, func(r types.ChargebackRecord) string { return r.Country }),
		func(g dimensionGroup, _ int) CountryBreakdown {
			return CountryBreakdown{Country: g.key, Count: g.count, Amount: g.amount}
		})
	report.ByPaymentMethod = lo.Map(
		groupCount(filtered, func(r types.ChargebackRecord) string { return r.PaymentMethod }),
		func(g dimensionGroup, _ int) PaymentMethodBreakdown {
			return PaymentMethodBreakdown{PaymentMethod: g.key, Count: g.count, Amount: g.amount}
		})
	report.ByProcessor = lo.Map(
		groupCount(filtered, func(r types.ChargebackRecord) string { return r.Processor }),
		func(g dimensionGroup, _ int) ProcessorBreakdown {
			return ProcessorBreakdown{Processor: g.key, Count: g.count, Amount: g.amount}
		})
	report.ByDay = lo.Map(
		groupCount(filtered, func(r types.ChargebackRecord) string { return types.FormatDate(r.Date) }),
		func(g dimensionGroup, _ int) DailyBreakdown {
			return DailyBreakdown{Date: g.key, Count: g.count, Amount: g.amount}
		})

	report.TopMerchants = topMerchants(filtered, aggregates, filter)
	return report
}

type dimensionGroup struct {
	key    string
	count  int
	amount float64
}

// groupCount groups rows by key and returns count and amount sum per group,
// ordered by key ascending for deterministic output.
func groupCount(rows []types.ChargebackRecord, key func(types.ChargebackRecord) string) []dimensionGroup {
	grouped := lo.GroupBy(rows, key)

	keys := lo.Keys(grouped)
	sort.Strings(keys)

	out := make([]dimensionGroup, 0, len(keys))
	for _, k := range keys {
		out = append(out, dimensionGroup{
			key:    k,
			count:  len(grouped[k]),
			amount: sumAmount(grouped[k]),
		})
	}
	return out
}

// topMerchants builds the leaderboard: group by merchant, sort by count
// descending (merchant_id ascending on ties), cap at TopMerchantLimit, and
// compute each merchant's rate over its own ID plus the caller's other
// active filters.
func topMerchants(rows []types.ChargebackRecord, aggregates []types.TransactionAggregate, filter ChargebackFilter) []MerchantSummary {
	grouped := lo.GroupBy(rows, func(r types.ChargebackRecord) string { return r.MerchantID })

	summaries := make([]MerchantSummary, 0, len(grouped))
	for id, group := range grouped {
		summaries = append(summaries, MerchantSummary{
			MerchantID:   id,
			MerchantName: group[0].MerchantName,
			Count:        len(group),
			Amount:       sumAmount(group),
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Count != summaries[j].Count {
			return summaries[i].Count > summaries[j].Count
		}
		return summaries[i].MerchantID < summaries[j].MerchantID
	})
	if len(summaries) > TopMerchantLimit {
		summaries = summaries[:TopMerchantLimit]
	}

	for i := range summaries {
		summaries[i].Rate = ChargebackRate(
			summaries[i].Count,
			aggregates,
			filter.Scope([]string{summaries[i].MerchantID}),
		)
	}
	return summaries
}

func sumAmount(rows []types.ChargebackRecord) float64 {
	sum := decimal.Zero
	for _, r := range rows {
		sum = sum.Add(r.AmountUSD)
	}
	return sum.Round(2).InexactFloat64()
}
