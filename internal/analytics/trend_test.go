package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flashcart/insights/internal/types"
)

// rowsOn builds n records all dated d.
func rowsOn(d string, n int) []types.ChargebackRecord {
	out := make([]types.ChargebackRecord, n)
	for i := range out {
		out[i] = types.ChargebackRecord{Date: day(d)}
	}
	return out
}

func TestTrendPct(t *testing.T) {
	now := day("2026-06-30")

	t.Run("Doubling Is Plus Hundred Percent", func(t *testing.T) {
		rows := append(rowsOn("2026-06-05", 10), rowsOn("2026-06-15", 20)...)
		pct := TrendPct(rows, dayPtr("2026-06-11"), dayPtr("2026-06-20"), now)
		assert.Equal(t, 100.0, pct)
	})

	t.Run("Halving Is Minus Fifty Percent", func(t *testing.T) {
		rows := append(rowsOn("2026-06-05", 20), rowsOn("2026-06-15", 10)...)
		pct := TrendPct(rows, dayPtr("2026-06-11"), dayPtr("2026-06-20"), now)
		assert.Equal(t, -50.0, pct)
	})

	t.Run("Empty Previous Window Is Zero", func(t *testing.T) {
		rows := rowsOn("2026-06-15", 20)
		pct := TrendPct(rows, dayPtr("2026-06-11"), dayPtr("2026-06-20"), now)
		assert.Equal(t, 0.0, pct)
	})

	t.Run("Rounds To One Decimal", func(t *testing.T) {
		// 4 vs 3 previous = +33.333...% -> 33.3
		rows := append(rowsOn("2026-06-05", 3), rowsOn("2026-06-15", 4)...)
		pct := TrendPct(rows, dayPtr("2026-06-11"), dayPtr("2026-06-20"), now)
		assert.Equal(t, 33.3, pct)
	})

	t.Run("Previous Window Immediately Precedes Period", func(t *testing.T) {
		// Period 2026-06-11..2026-06-20; previous must be 2026-06-01..2026-06-10.
		// A row on 2026-05-31 belongs to neither.
		rows := append(rowsOn("2026-06-10", 5), rowsOn("2026-06-15", 5)...)
		rows = append(rows, rowsOn("2026-05-31", 100)...)
		pct := TrendPct(rows, dayPtr("2026-06-11"), dayPtr("2026-06-20"), now)
		assert.Equal(t, 0.0, pct) // 5 vs 5
	})

	t.Run("Default Window Is Trailing Thirty Days", func(t *testing.T) {
		// now = 2026-06-30, default period 2026-06-01..2026-06-30,
		// previous 2026-05-02..2026-05-31.
		rows := append(rowsOn("2026-06-20", 6), rowsOn("2026-05-20", 4)...)
		pct := TrendPct(rows, nil, nil, now)
		assert.Equal(t, 50.0, pct)
	})

	t.Run("Single Day Period", func(t *testing.T) {
		rows := append(rowsOn("2026-06-14", 2), rowsOn("2026-06-15", 3)...)
		pct := TrendPct(rows, dayPtr("2026-06-15"), dayPtr("2026-06-15"), now)
		assert.Equal(t, 50.0, pct)
	})
}
