package declarations

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/lmnp-erp/lmnp-erp/internal/platform/httpx"
	"github.com/lmnp-erp/lmnp-erp/internal/shared"
)

type declarationService interface {
	List(ctx context.Context, userID string) ([]Declaration, error)
	Get(ctx context.Context, userID, id string) (Declaration, error)
	Create(ctx context.Context, in CreateInput) (Declaration, error)
	UpdateStatus(ctx context.Context, userID, id string, status Status) (Declaration, error)
	UpdateDetails(ctx context.Context, userID, id string, in DetailsInput) (Declaration, error)
	Delete(ctx context.Context, userID, id string) error
	Preview(ctx context.Context, userID string, year int, propertyIDs []string) (Totals, error)
	Context(ctx context.Context, userID, id string) (Context, error)
}

var errorMappings = []httpx.Mapping{
	{Err: ErrNotFound, Kind: httpx.ErrNotFound},
	{Err: ErrDuplicateYear, Kind: httpx.ErrDuplicate},
	{Err: ErrInvalidTransition, Kind: httpx.ErrUnprocessable},
	{Err: ErrInvalidInput, Kind: httpx.ErrValidation},
}

// Handler exposes declaration endpoints.
type Handler struct {
	logger  *slog.Logger
	service declarationService
}

// NewHandler constructs the declaration HTTP handler.
func NewHandler(logger *slog.Logger, service declarationService) *Handler {
	return &Handler{logger: logger, service: service}
}

type createRequest struct {
	Year       int      `json:"year" validate:"required,gte=1900,lte=2999"`
	Properties []string `json:"properties" validate:"omitempty,dive,required"`
	Details    Details  `json:"details"`
}

type statusRequest struct {
	Status Status `json:"status" validate:"required,oneof=draft in_progress completed submitted"`
}

type detailsRequest struct {
	Details    Details   `json:"details"`
	Properties *[]string `json:"properties,omitempty"`
}

// MountRoutes registers routes relative to the /declarations group.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/preview", h.preview)
	r.Get("/{id}", h.show)
	r.Get("/{id}/context", h.showContext)
	r.Patch("/{id}/status", h.updateStatus)
	r.Patch("/{id}/details", h.updateDetails)
	r.Delete("/{id}", h.remove)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	userID, _ := shared.UserFromContext(r.Context())
	decls, err := h.service.List(r.Context(), userID)
	if err != nil {
		h.fail(w, "list declarations", err)
		return
	}
	httpx.JSON(w, http.StatusOK, decls)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpx.DecodeValid(r, &req); err != nil {
		h.fail(w, "create declaration", err)
		return
	}
	userID, _ := shared.UserFromContext(r.Context())
	decl, err := h.service.Create(r.Context(), CreateInput{
		UserID:     userID,
		Year:       req.Year,
		Properties: req.Properties,
		Details:    req.Details,
	})
	if err != nil {
		h.fail(w, "create declaration", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, decl)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	userID, _ := shared.UserFromContext(r.Context())
	decl, err := h.service.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "get declaration", err)
		return
	}
	httpx.JSON(w, http.StatusOK, decl)
}

func (h *Handler) showContext(w http.ResponseWriter, r *http.Request) {
	userID, _ := shared.UserFromContext(r.Context())
	dctx, err := h.service.Context(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "declaration context", err)
		return
	}
	httpx.JSON(w, http.StatusOK, dctx)
}

func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get("year")))
	if err != nil || year <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "year must be a positive integer")
		return
	}
	var propertyIDs []string
	if raw := strings.TrimSpace(r.URL.Query().Get("properties")); raw != "" {
		propertyIDs = strings.Split(raw, ",")
	}
	userID, _ := shared.UserFromContext(r.Context())
	totals, err := h.service.Preview(r.Context(), userID, year, propertyIDs)
	if err != nil {
		h.fail(w, "preview totals", err)
		return
	}
	httpx.JSON(w, http.StatusOK, totals)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := httpx.DecodeValid(r, &req); err != nil {
		h.fail(w, "update status", err)
		return
	}
	userID, _ := shared.UserFromContext(r.Context())
	decl, err := h.service.UpdateStatus(r.Context(), userID, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		h.fail(w, "update status", err)
		return
	}
	httpx.JSON(w, http.StatusOK, decl)
}

func (h *Handler) updateDetails(w http.ResponseWriter, r *http.Request) {
	var req detailsRequest
	if err := httpx.DecodeValid(r, &req); err != nil {
		h.fail(w, "update details", err)
		return
	}
	userID, _ := shared.UserFromContext(r.Context())
	decl, err := h.service.UpdateDetails(r.Context(), userID, chi.URLParam(r, "id"), DetailsInput{
		Details:    req.Details,
		Properties: req.Properties,
	})
	if err != nil {
		h.fail(w, "update details", err)
		return
	}
	httpx.JSON(w, http.StatusOK, decl)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	userID, _ := shared.UserFromContext(r.Context())
	if err := h.service.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		h.fail(w, "delete declaration", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	h.logger.Warn(op, slog.Any("error", err))
	httpx.RespondError(w, err, errorMappings...)
}
