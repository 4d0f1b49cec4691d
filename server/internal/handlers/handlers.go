// Package handlers implements the JSON API consumed by the dashboard
// frontend.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/usagetop/usagetop/internal/aggregator"
	"github.com/usagetop/usagetop/internal/config"
	"github.com/usagetop/usagetop/internal/fetch"
	"github.com/usagetop/usagetop/internal/mock"
)

// cacheTTL bounds how stale a served report may be.
const cacheTTL = 5 * time.Minute

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	fetcher fetch.DayFetcher
	cache   *reportCache
	log     *zap.Logger
}

// New creates a Handler. fetcher may be nil when no API key is
// configured; the usage endpoint then reports that instead of fetching.
func New(fetcher fetch.DayFetcher, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		fetcher: fetcher,
		cache:   newReportCache(cacheTTL),
		log:     log,
	}
}

// Usage handles GET /api/usage?start_date=YYYY-MM-DD&end_date=YYYY-MM-DD.
// Without a range it covers the default window ending today.
func (h *Handler) Usage(w http.ResponseWriter, r *http.Request) {
	if h.fetcher == nil {
		h.jsonError(w, "no API key configured on the server", http.StatusServiceUnavailable)
		return
	}

	start, end, err := parseRange(r)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	cacheKey := start.Format("2006-01-02") + "|" + end.Format("2006-01-02")
	if report, ok := h.cache.get(cacheKey); ok {
		h.writeJSON(w, report)
		return
	}

	orch := fetch.NewOrchestrator(h.fetcher, h.log)
	batches, err := orch.FetchRange(r.Context(), start, end)
	if err != nil {
		var apiErr *fetch.APIError
		if errors.As(err, &apiErr) {
			h.jsonError(w, fmt.Sprintf("usage API error (%d): %s", apiErr.Status, apiErr.Body), http.StatusBadGateway)
			return
		}
		h.log.Error("usage fetch failed", zap.Error(err))
		h.jsonError(w, "failed to fetch usage data", http.StatusBadGateway)
		return
	}

	report := aggregator.Aggregate(batches)
	h.cache.put(cacheKey, report)
	h.writeJSON(w, report)
}

// Mock handles GET /api/usage/mock with the synthetic demo report.
func (h *Handler) Mock(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, mock.Generate(time.Now()))
}

// Health handles the health check endpoint.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string]string{"status": "healthy"})
}

// parseRange reads start_date/end_date, defaulting to the last
// config.DefaultDays days ending today.
func parseRange(r *http.Request) (time.Time, time.Time, error) {
	startStr := r.URL.Query().Get("start_date")
	endStr := r.URL.Query().Get("end_date")

	if startStr == "" && endStr == "" {
		end := time.Now().Truncate(24 * time.Hour)
		return end.AddDate(0, 0, -(config.DefaultDays - 1)), end, nil
	}
	if startStr == "" || endStr == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("start_date and end_date must be given together")
	}

	start, err := time.Parse("2006-01-02", startStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start_date %q, use YYYY-MM-DD", startStr)
	}
	end, err := time.Parse("2006-01-02", endStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end_date %q, use YYYY-MM-DD", endStr)
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("start_date %s is after end_date %s", startStr, endStr)
	}
	return start, end, nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("writing response", zap.Error(err))
	}
}

func (h *Handler) jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
