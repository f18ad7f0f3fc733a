// Package reportshttp serves the accounting reports over HTTP.
package reportshttp

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lmnp-erp/lmnp-erp/internal/accounting/reports"
	"github.com/lmnp-erp/lmnp-erp/internal/export"
	"github.com/lmnp-erp/lmnp-erp/internal/platform/httpx"
	"github.com/lmnp-erp/lmnp-erp/internal/records"
	"github.com/lmnp-erp/lmnp-erp/internal/shared"
)

type reportService interface {
	Generate(ctx context.Context, userID string, period records.Period) (reports.AccountingReportResult, error)
}

type metricsRecorder interface {
	ReportGenerated(kind, format string)
}

var errorMappings = []httpx.Mapping{
	{Err: reports.ErrInvalidPeriod, Kind: httpx.ErrValidation},
}

// Handler exposes the report endpoints.
type Handler struct {
	logger  *slog.Logger
	service reportService
	metrics metricsRecorder
	now     func() time.Time
}

// NewHandler constructs the reports handler. metrics may be nil.
func NewHandler(logger *slog.Logger, service reportService, metrics metricsRecorder) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, metrics: metrics, now: time.Now}
}

// MountRoutes registers routes relative to the /reports group.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.show)
	r.Get("/export.csv", h.exportCSV)
	r.Get("/export.txt", h.exportText)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	result, ok := h.generate(w, r)
	if !ok {
		return
	}
	h.count("json")
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	result, ok := h.generate(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.WriteReportCSV(&buf, result); err != nil {
		h.fail(w, "export report csv", err)
		return
	}
	h.count("csv")
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename(result.Period, "csv")))
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Error("write report csv", slog.Any("error", err))
	}
}

func (h *Handler) exportText(w http.ResponseWriter, r *http.Request) {
	result, ok := h.generate(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.WriteReportText(&buf, result); err != nil {
		h.fail(w, "export report text", err)
		return
	}
	h.count("txt")
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename(result.Period, "txt")))
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Error("write report text", slog.Any("error", err))
	}
}

func (h *Handler) generate(w http.ResponseWriter, r *http.Request) (reports.AccountingReportResult, bool) {
	period, err := h.parsePeriod(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return reports.AccountingReportResult{}, false
	}
	userID, _ := shared.UserFromContext(r.Context())
	result, err := h.service.Generate(r.Context(), userID, period)
	if err != nil {
		h.fail(w, "generate report", err)
		return reports.AccountingReportResult{}, false
	}
	return result, true
}

// parsePeriod reads start/end, falling back to the calendar year in ?year= or
// the current year when neither bound is given.
func (h *Handler) parsePeriod(r *http.Request) (records.Period, error) {
	q := r.URL.Query()
	start := strings.TrimSpace(q.Get("start"))
	end := strings.TrimSpace(q.Get("end"))
	if start == "" && end == "" {
		year := h.now().Year()
		if raw := strings.TrimSpace(q.Get("year")); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 {
				return records.Period{}, fmt.Errorf("year must be a positive integer")
			}
			year = parsed
		}
		return records.YearPeriod(year), nil
	}
	from, err := records.ParseDate(start)
	if err != nil {
		return records.Period{}, fmt.Errorf("start must be a YYYY-MM-DD date")
	}
	to, err := records.ParseDate(end)
	if err != nil {
		return records.Period{}, fmt.Errorf("end must be a YYYY-MM-DD date")
	}
	return records.Period{Start: from, End: to}, nil
}

func (h *Handler) count(format string) {
	if h.metrics != nil {
		h.metrics.ReportGenerated("report", format)
	}
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	h.logger.Warn(op, slog.Any("error", err))
	httpx.RespondError(w, err, errorMappings...)
}

func filename(p records.Period, ext string) string {
	return fmt.Sprintf("lmnp-%s_%s.%s", p.Start.String(), p.End.String(), ext)
}
