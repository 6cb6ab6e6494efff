package server

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/flashcart/insights/internal/analytics"
	"github.com/flashcart/insights/internal/observability"
)

// HandleChargebackMetrics computes the aggregated metrics report for one
// filter set. Results are cached in Redis keyed by the canonical filter
// string; the tables never change at runtime, so a TTL is only needed to
// bound memory, not for freshness.
func (s *Server) HandleChargebackMetrics(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	filter, err := parseChargebackFilter(r)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	key := filterKey(filter)

	_, span := observability.TraceReportBuild(r.Context(), s.tracer, key)
	defer span.End()

	if s.cache != nil {
		cached, hit, err := s.cache.GetReport(key)
		if err != nil {
			log.Error().Err(err).Str("filter_key", key).Msg("Report cache lookup failed")
		}
		if s.metrics != nil {
			s.metrics.RecordCacheLookup(hit)
		}
		span.SetAttributes(observability.AttrCacheHit.Bool(hit))
		if hit {
			writeJSON(w, http.StatusOK, cached)
			return
		}
	}

	chargebacks, err := s.store.Chargebacks()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load chargeback table")
		writeJSONError(w, "data not available", http.StatusServiceUnavailable)
		return
	}
	transactions, err := s.store.Transactions()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load transaction table")
		writeJSONError(w, "data not available", http.StatusServiceUnavailable)
		return
	}

	filtered := analytics.FilterChargebacks(chargebacks, filter)
	report := analytics.BuildReport(filtered, chargebacks, transactions, filter, s.now())

	span.SetAttributes(observability.AttrFilteredRows.Int(len(filtered)))
	if s.metrics != nil {
		s.metrics.RecordQuery("chargeback_metrics", len(filtered), time.Since(start))
	}

	if s.cache != nil {
		if err := s.cache.StoreReport(key, &report, s.config.Cache.ReportTTL); err != nil {
			log.Error().Err(err).Str("filter_key", key).Msg("Failed to cache report")
		}
	}

	writeJSON(w, http.StatusOK, report)
}
