// Package handlers provides HTTP handlers for booking analytics.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/aristath/rentboard/internal/domain"
	"github.com/aristath/rentboard/internal/modules/analytics"
	"github.com/aristath/rentboard/internal/modules/bookings"
	"github.com/aristath/rentboard/internal/modules/export"
)

const (
	contentTypeMsgpack = "application/msgpack"
	contentTypeXLSX    = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	maxImportSize = 32 << 20
)

var errBadRequest = errors.New("bad request")

// Importer replaces the stored bookings with a CSV export
type Importer interface {
	ImportReader(ctx context.Context, source string, r io.Reader) (*bookings.ImportReport, error)
}

// Handler handles analytics HTTP requests
type Handler struct {
	service  *analytics.Service
	importer Importer
	log      zerolog.Logger
}

// NewHandler creates a new analytics handler. importer may be nil, in which
// case the import endpoint answers 503.
func NewHandler(service *analytics.Service, importer Importer, log zerolog.Logger) *Handler {
	return &Handler{
		service:  service,
		importer: importer,
		log:      log.With().Str("handler", "analytics").Logger(),
	}
}

// HandleGetOverview handles GET /api/analytics/overview
func (h *Handler) HandleGetOverview(w http.ResponseWriter, r *http.Request) {
	req, err := parseRequest(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	overview, err := h.service.Overview(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeData(w, r, http.StatusOK, overview)
}

// HandleGetPerformance handles GET /api/analytics/performance
func (h *Handler) HandleGetPerformance(w http.ResponseWriter, r *http.Request) {
	req, err := parseRequest(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	summary, err := h.service.Performance(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeData(w, r, http.StatusOK, summary)
}

// HandleGetPropertySeries handles GET /api/analytics/properties/{property}/series
func (h *Handler) HandleGetPropertySeries(w http.ResponseWriter, r *http.Request, property string) {
	req, err := parseRequest(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	series, err := h.service.PropertySeries(r.Context(), req, property)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeData(w, r, http.StatusOK, series)
}

// HandleGetReportWorkbook handles GET /api/analytics/report.xlsx
func (h *Handler) HandleGetReportWorkbook(w http.ResponseWriter, r *http.Request) {
	req, err := parseRequest(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	report, err := h.service.Report(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	f, err := export.Workbook(report)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("rentboard-%s-%d.xlsx", strings.ToLower(string(report.Overview.Mode)), report.Overview.Year)
	w.Header().Set("Content-Type", contentTypeXLSX)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)

	if err := f.Write(w); err != nil {
		h.log.Error().Err(err).Msg("Failed to write workbook")
	}
}

// HandleGetThresholds handles GET /api/analytics/thresholds
func (h *Handler) HandleGetThresholds(w http.ResponseWriter, r *http.Request) {
	rules := h.service.Rules()
	primary, secondary := rules.Currencies()

	h.writeData(w, r, http.StatusOK, map[string]interface{}{
		"thresholds":         rules.Thresholds(),
		"primary_currency":   primary,
		"secondary_currency": secondary,
		"conversion_rate":    rules.ConversionRate(),
		"bands":              rules.Bands(),
	})
}

// HandleGetFilters handles GET /api/analytics/filters
func (h *Handler) HandleGetFilters(w http.ResponseWriter, r *http.Request) {
	years, err := h.service.Years(r.Context(), r.URL.Query().Get("owner"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeData(w, r, http.StatusOK, map[string]interface{}{
		"modes":      []domain.Mode{domain.ModeRevenue, domain.ModeOccupancy},
		"years":      years,
		"owners":     h.service.Owners(),
		"properties": h.service.Properties(),
	})
}

// HandleImportBookings handles POST /api/bookings/import
func (h *Handler) HandleImportBookings(w http.ResponseWriter, r *http.Request) {
	if h.importer == nil {
		http.Error(w, "Booking import is not configured", http.StatusServiceUnavailable)
		return
	}

	source := r.URL.Query().Get("source")
	if source == "" {
		source = "upload"
	}

	report, err := h.importer.ImportReader(r.Context(), source, http.MaxBytesReader(w, r.Body, maxImportSize))
	if err != nil {
		if errors.Is(err, bookings.ErrMissingColumn) || errors.Is(err, domain.ErrEmptyDataset) {
			err = fmt.Errorf("%w: %v", errBadRequest, err)
		}
		h.writeError(w, r, err)
		return
	}

	h.log.Info().
		Str("batch_id", report.BatchID).
		Int("records", report.RecordCount).
		Int("errors", report.ErrorCount).
		Msg("Bookings imported")

	h.writeData(w, r, http.StatusOK, report)
}

// parseRequest reads mode, year and owner from the query string
func parseRequest(r *http.Request) (analytics.Request, error) {
	q := r.URL.Query()
	req := analytics.Request{
		Mode:  q.Get("mode"),
		Owner: q.Get("owner"),
	}

	if yearStr := q.Get("year"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil || year < 1 {
			return req, fmt.Errorf("%w: invalid year %q", errBadRequest, yearStr)
		}
		req.Year = year
	}

	return req, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest), errors.Is(err, domain.ErrUnsupportedMode):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnknownProperty), errors.Is(err, domain.ErrEmptyDataset):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.Error().Err(err).Str("path", r.URL.Path).Msg("Analytics request failed")
		http.Error(w, "Internal server error", status)
		return
	}

	h.log.Debug().Err(err).Str("path", r.URL.Path).Int("status", status).Msg("Analytics request rejected")
	body := map[string]interface{}{
		"error": err.Error(),
	}
	var rejectedErr *analytics.RejectedError
	if errors.As(err, &rejectedErr) {
		body["rejected"] = rejectedErr.Rejected
	}
	h.writeResponse(w, r, status, body)
}

func (h *Handler) writeData(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	h.writeResponse(w, r, status, map[string]interface{}{
		"data": data,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// writeResponse encodes msgpack when the client asks for it, JSON otherwise
func (h *Handler) writeResponse(w http.ResponseWriter, r *http.Request, status int, body interface{}) {
	if strings.Contains(r.Header.Get("Accept"), contentTypeMsgpack) {
		w.Header().Set("Content-Type", contentTypeMsgpack)
		w.WriteHeader(status)

		enc := msgpack.NewEncoder(w)
		enc.SetCustomStructTag("json")
		if err := enc.Encode(body); err != nil {
			h.log.Error().Err(err).Msg("Failed to encode msgpack response")
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
