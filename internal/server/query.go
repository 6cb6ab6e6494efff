package server

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/flashcart/insights/internal/analytics"
	"github.com/flashcart/insights/internal/types"
)

// Pagination bounds. page_size outside [1, MaxPageSize] is a client error,
// not something to clamp silently.
const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

// parseChargebackFilter reads the shared filter query parameters. All three
// read surfaces (listing, export, metrics) go through this one parser so the
// same URL always describes the same slice of data.
func parseChargebackFilter(r *http.Request) (analytics.ChargebackFilter, error) {
	q := r.URL.Query()
	var f analytics.ChargebackFilter

	if v := q.Get("start_date"); v != "" {
		d, err := types.ParseDate(v)
		if err != nil {
			return f, fmt.Errorf("start_date: %w", err)
		}
		f.StartDate = &d
	}
	if v := q.Get("end_date"); v != "" {
		d, err := types.ParseDate(v)
		if err != nil {
			return f, fmt.Errorf("end_date: %w", err)
		}
		f.EndDate = &d
	}

	f.Merchant = strings.TrimSpace(q.Get("merchant_id"))
	f.Categories = splitParam(q.Get("reason_category"))
	f.PaymentMethods = splitParam(q.Get("payment_method"))
	f.Countries = splitParam(q.Get("country"))

	if v := q.Get("min_amount"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return f, fmt.Errorf("min_amount: invalid number %q", v)
		}
		f.MinAmount = &d
	}
	if v := q.Get("max_amount"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return f, fmt.Errorf("max_amount: invalid number %q", v)
		}
		f.MaxAmount = &d
	}

	return f, nil
}

// splitParam turns a comma-separated query value into a trimmed slice.
func splitParam(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// filterKey renders the filter as a canonical string for the report cache.
// Equal filters must always produce equal keys, so slices are sorted.
func filterKey(f analytics.ChargebackFilter) string {
	var b strings.Builder

	writeField := func(name, value string) {
		if value != "" {
			fmt.Fprintf(&b, "%s=%s;", name, value)
		}
	}

	if f.StartDate != nil {
		writeField("sd", types.FormatDate(*f.StartDate))
	}
	if f.EndDate != nil {
		writeField("ed", types.FormatDate(*f.EndDate))
	}
	writeField("m", strings.ToLower(f.Merchant))
	writeField("cat", joinSorted(f.Categories))
	writeField("pm", joinSorted(f.PaymentMethods))
	writeField("cty", joinSorted(f.Countries))
	if f.MinAmount != nil {
		writeField("min", f.MinAmount.String())
	}
	if f.MaxAmount != nil {
		writeField("max", f.MaxAmount.String())
	}

	if b.Len() == 0 {
		return "all"
	}
	return b.String()
}

func joinSorted(values []string) string {
	if len(values) == 0 {
		return ""
	}
	sorted := make([]string, len(values))
	copy(sorted, values)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}

// pageParams holds validated pagination parameters.
type pageParams struct {
	Page     int
	PageSize int
}

// parsePageParams validates page and page_size. Out-of-range values are
// rejected with a descriptive error rather than clamped.
func parsePageParams(r *http.Request) (pageParams, error) {
	p := pageParams{Page: 1, PageSize: DefaultPageSize}
	q := r.URL.Query()

	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return p, fmt.Errorf("page must be a positive integer, got %q", v)
		}
		p.Page = n
	}
	if v := q.Get("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > MaxPageSize {
			return p, fmt.Errorf("page_size must be between 1 and %d, got %q", MaxPageSize, v)
		}
		p.PageSize = n
	}

	return p, nil
}

// sortLess returns a comparison function for the given field, or nil when
// the field is not sortable. Ties fall back to chargeback_id so the order is
// total and pagination windows never overlap.
func sortLess(field string) func(a, b types.ChargebackRecord) bool {
	var less func(a, b types.ChargebackRecord) bool
	switch field {
	case "date":
		less = func(a, b types.ChargebackRecord) bool { return a.Date.Before(b.Date) }
	case "merchant_id":
		less = func(a, b types.ChargebackRecord) bool { return a.MerchantID < b.MerchantID }
	case "merchant_name":
		less = func(a, b types.ChargebackRecord) bool { return a.MerchantName < b.MerchantName }
	case "country":
		less = func(a, b types.ChargebackRecord) bool { return a.Country < b.Country }
	case "reason_category":
		less = func(a, b types.ChargebackRecord) bool { return a.ReasonCategory < b.ReasonCategory }
	case "payment_method":
		less = func(a, b types.ChargebackRecord) bool { return a.PaymentMethod < b.PaymentMethod }
	case "processor":
		less = func(a, b types.ChargebackRecord) bool { return a.Processor < b.Processor }
	case "amount_usd":
		less = func(a, b types.ChargebackRecord) bool { return a.AmountUSD.LessThan(b.AmountUSD) }
	default:
		return nil
	}
	return less
}

// sortChargebacks orders records in place by the requested field and
// direction. Unknown fields silently fall back to date descending, matching
// what the dashboard sends by default.
func sortChargebacks(records []types.ChargebackRecord, field, dir string) {
	less := sortLess(field)
	if less == nil {
		less = sortLess("date")
		dir = "desc"
	}

	descending := dir != "asc"
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if descending {
			a, b = b, a
		}
		if less(a, b) {
			return true
		}
		if less(b, a) {
			return false
		}
		return a.ChargebackID < b.ChargebackID
	})
}

// paginate slices records for the requested page. Pages past the end are
// valid and simply empty.
func paginate(records []types.ChargebackRecord, p pageParams) []types.ChargebackRecord {
	start := (p.Page - 1) * p.PageSize
	if start >= len(records) {
		return []types.ChargebackRecord{}
	}
	end := start + p.PageSize
	if end > len(records) {
		end = len(records)
	}
	return records[start:end]
}
