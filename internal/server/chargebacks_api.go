package server

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/flashcart/insights/internal/analytics"
	"github.com/flashcart/insights/internal/observability"
	"github.com/flashcart/insights/internal/types"
)

// ChargebackListResponse is one page of filtered records.
type ChargebackListResponse struct {
	Records    []types.ChargebackRecord `json:"records"`
	Total      int                      `json:"total"`
	Page       int                      `json:"page"`
	PageSize   int                      `json:"page_size"`
	TotalPages int                      `json:"total_pages"`
}

// HandleListChargebacks returns a filtered, sorted, paginated page of the
// chargeback table. Total always counts the whole filtered set, not the page.
func (s *Server) HandleListChargebacks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	filter, err := parseChargebackFilter(r)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	page, err := parsePageParams(r)
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

	_, span := s.tracer.StartSpan(r.Context(), "chargebacks.list",
		observability.AttrFilterKey.String(filterKey(filter)),
		observability.AttrPage.Int(page.Page),
		observability.AttrPageSize.Int(page.PageSize),
		observability.AttrSortBy.String(r.URL.Query().Get("sort_by")),
	)
	defer span.End()

	filtered := analytics.FilterChargebacks(rows, filter)
	sortChargebacks(filtered, r.URL.Query().Get("sort_by"), r.URL.Query().Get("sort_dir"))

	total := len(filtered)
	totalPages := (total + page.PageSize - 1) / page.PageSize

	span.SetAttributes(observability.AttrFilteredRows.Int(total))
	if s.metrics != nil {
		s.metrics.RecordQuery("chargebacks_list", total, time.Since(start))
	}

	writeJSON(w, http.StatusOK, ChargebackListResponse{
		Records:    paginate(filtered, page),
		Total:      total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: totalPages,
	})
}
