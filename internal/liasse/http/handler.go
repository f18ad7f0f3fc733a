// Package liassehttp serves liasse mappings, snapshots and exports.
package liassehttp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lmnp-erp/lmnp-erp/internal/declarations"
	"github.com/lmnp-erp/lmnp-erp/internal/export"
	"github.com/lmnp-erp/lmnp-erp/internal/liasse"
	"github.com/lmnp-erp/lmnp-erp/internal/platform/httpx"
	"github.com/lmnp-erp/lmnp-erp/internal/shared"
)

type liasseService interface {
	Generate(ctx context.Context, userID, declarationID string, overrides liasse.Overrides) (liasse.Result, error)
	Snapshot(ctx context.Context, userID, declarationID string, overrides liasse.Overrides) (liasse.GenerationSnapshot, error)
	Preview(ctx context.Context, userID, declarationID string, overrides liasse.Overrides) (liasse.GenerationSnapshot, error)
}

type metricsRecorder interface {
	ReportGenerated(kind, format string)
	LiasseIssue(form, severity string)
}

var errorMappings = []httpx.Mapping{
	{Err: declarations.ErrNotFound, Kind: httpx.ErrNotFound},
}

// Handler exposes the liasse endpoints under /declarations/{id}/liasse.
type Handler struct {
	logger  *slog.Logger
	service liasseService
	metrics metricsRecorder
}

// NewHandler constructs the liasse handler. metrics may be nil.
func NewHandler(logger *slog.Logger, service liasseService, metrics metricsRecorder) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, metrics: metrics}
}

type overridesRequest struct {
	Overrides liasse.Overrides `json:"overrides"`
}

// MountRoutes registers routes relative to the /declarations group.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/{id}/liasse", h.generate)
	r.Post("/{id}/liasse/snapshot", h.snapshot)
	r.Get("/{id}/liasse/export.csv", h.exportCSV)
}

func (h *Handler) generate(w http.ResponseWriter, r *http.Request) {
	overrides, err := decodeOverrides(r)
	if err != nil {
		h.fail(w, "decode liasse overrides", err)
		return
	}
	userID, _ := shared.UserFromContext(r.Context())
	result, err := h.service.Generate(r.Context(), userID, chi.URLParam(r, "id"), overrides)
	if err != nil {
		h.fail(w, "generate liasse", err)
		return
	}
	h.observe("json", result.Issues)
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request) {
	overrides, err := decodeOverrides(r)
	if err != nil {
		h.fail(w, "decode liasse overrides", err)
		return
	}
	userID, _ := shared.UserFromContext(r.Context())
	snap, err := h.service.Snapshot(r.Context(), userID, chi.URLParam(r, "id"), overrides)
	if err != nil {
		h.fail(w, "snapshot liasse", err)
		return
	}
	h.observe("snapshot", snap.Issues)
	httpx.JSON(w, http.StatusCreated, snap)
}

func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	userID, _ := shared.UserFromContext(r.Context())
	snap, err := h.service.Preview(r.Context(), userID, chi.URLParam(r, "id"), nil)
	if err != nil {
		h.fail(w, "export liasse", err)
		return
	}
	var buf bytes.Buffer
	if err := export.WriteLiasseCSV(&buf, snap); err != nil {
		h.fail(w, "export liasse csv", err)
		return
	}
	h.observe("csv", nil)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=liasse-%d-%s.csv", snap.Year, snap.DeclarationID))
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Error("write liasse csv", slog.Any("error", err))
	}
}

// decodeOverrides accepts an empty body as "no overrides".
func decodeOverrides(r *http.Request) (liasse.Overrides, error) {
	var req overridesRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	for form := range req.Overrides {
		if !form.Valid() {
			return nil, fmt.Errorf("%w: unknown form %q", httpx.ErrValidation, form)
		}
	}
	return req.Overrides, nil
}

func (h *Handler) observe(format string, issues []liasse.ValidationIssue) {
	if h.metrics == nil {
		return
	}
	h.metrics.ReportGenerated("liasse", format)
	for _, is := range issues {
		h.metrics.LiasseIssue(is.Form, string(is.Severity))
	}
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	h.logger.Warn(op, slog.Any("error", err))
	httpx.RespondError(w, err, errorMappings...)
}
