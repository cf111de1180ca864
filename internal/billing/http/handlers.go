// Package http exposes the billing run surface: triggering runs and
// previewing an invoice before anything is persisted.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/warebill/warebill/internal/billing"
	"github.com/warebill/warebill/internal/invoices"
	"github.com/warebill/warebill/internal/platform/httpx"
)

// Runner executes and previews billing runs.
type Runner interface {
	Run(ctx context.Context, customerID string, startDate time.Time) (*billing.Invoice, error)
	Preview(ctx context.Context, customerID string, startDate time.Time) (*billing.Invoice, error)
}

// Handler manages billing run endpoints.
type Handler struct {
	logger   *slog.Logger
	runner   Runner
	validate *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, runner Runner) *Handler {
	return &Handler{logger: logger, runner: runner, validate: validator.New()}
}

// MountRoutes registers billing run routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/runs", h.run)
	r.Post("/preview", h.preview)
}

type runRequest struct {
	CustomerID string `json:"customer_id" validate:"required"`
	StartDate  string `json:"start_date" validate:"required,datetime=2006-01-02"`
}

func (h *Handler) run(w http.ResponseWriter, r *http.Request) {
	req, start, ok := h.decode(w, r)
	if !ok {
		return
	}
	inv, err := h.runner.Run(r.Context(), req.CustomerID, start)
	if err != nil {
		h.logger.Error("billing run failed",
			slog.String("customer_id", req.CustomerID),
			slog.String("kind", billing.ErrorKind(err)),
			slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, invoices.NewView(inv))
}

func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	req, start, ok := h.decode(w, r)
	if !ok {
		return
	}
	inv, err := h.runner.Preview(r.Context(), req.CustomerID, start)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, invoices.NewView(inv))
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (runRequest, time.Time, bool) {
	var req runRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return runRequest{}, time.Time{}, false
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return runRequest{}, time.Time{}, false
	}
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "start_date must be YYYY-MM-DD")
		return runRequest{}, time.Time{}, false
	}
	return req, start, true
}
