package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/flashcart/insights/internal/types"
)

// DefaultTrendWindowDays is the trailing window used when no period is
// requested (29 days back plus today, a 30-day span).
const DefaultTrendWindowDays = 29

// TrendPct compares the chargeback count in [start, end] against the
// immediately preceding window of equal length and returns the percentage
// change rounded to 1 decimal place. Positive means the current period is
// worse. A previous period with zero chargebacks yields 0.0.
//
// rows must be the full, date-unfiltered table; now supplies "today" for the
// default window.
func TrendPct(rows []types.ChargebackRecord, start, end *time.Time, now time.Time) float64 {
	var sd, ed time.Time
	if start == nil || end == nil {
		ed = types.Midnight(now)
		sd = ed.AddDate(0, 0, -DefaultTrendWindowDays)
	} else {
		sd = *start
		ed = *end
	}

	periodLen := int(ed.Sub(sd).Hours() / 24)
	prevEnd := sd.AddDate(0, 0, -1)
	prevStart := sd.AddDate(0, 0, -(periodLen + 1))

	current := countBetween(rows, sd, ed)
	previous := countBetween(rows, prevStart, prevEnd)
	if previous == 0 {
		return 0
	}

	pct := decimal.NewFromInt(int64(current - previous)).
		Div(decimal.NewFromInt(int64(previous))).
		Mul(decimal.NewFromInt(100)).
		Round(1)
	return pct.InexactFloat64()
}

func countBetween(rows []types.ChargebackRecord, start, end time.Time) int {
	n := 0
	for _, r := range rows {
		if !r.Date.Before(start) && !r.Date.After(end) {
			n++
		}
	}
	return n
}
