package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/flashcart/insights/internal/analytics"
	"github.com/flashcart/insights/internal/export"
	"github.com/flashcart/insights/internal/observability"
)

// HandleExportChargebacks streams the filtered record set as a file
// download. The same filter parameters as the listing endpoint apply, but
// there is no pagination; the row cap from the limits config protects the
// server instead.
func (s *Server) HandleExportChargebacks(w http.ResponseWriter, r *http.Request) {
	filter, err := parseChargebackFilter(r)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	rows, err := s.store.Chargebacks()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load chargeback table")
		writeJSONError(w, "data not available", http.StatusServiceUnavailable)
		return
	}

	_, span := s.tracer.StartSpan(r.Context(), "chargebacks.export",
		observability.AttrExportFormat.String(string(format)),
		observability.AttrFilterKey.String(filterKey(filter)),
	)
	defer span.End()

	filtered := analytics.FilterChargebacks(rows, filter)
	sortChargebacks(filtered, "date", "desc")

	if max := s.config.Limits.MaxExportRows; len(filtered) > max {
		writeJSONError(w,
			fmt.Sprintf("export of %d rows exceeds the limit of %d; narrow the filters", len(filtered), max),
			http.StatusRequestEntityTooLarge)
		return
	}

	filename := fmt.Sprintf("chargebacks_%s.%s", time.Now().Format("20060102_150405"), format.Extension())
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition")

	if err := export.Write(w, format, filtered); err != nil {
		// Headers are already sent; nothing to do but log
		log.Error().Err(err).Str("format", string(format)).Msg("Export write failed")
		return
	}

	span.SetAttributes(observability.AttrFilteredRows.Int(len(filtered)))
	if s.metrics != nil {
		s.metrics.RecordExport(string(format))
	}
}
