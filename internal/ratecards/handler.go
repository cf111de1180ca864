package ratecards

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/warebill/warebill/internal/billing"
	"github.com/warebill/warebill/internal/platform/httpx"
)

// Handler manages rate-card registry endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers rate-card routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type entryPayload struct {
	CustomerID  string `json:"customer_id" validate:"required"`
	ServiceType string `json:"service_type" validate:"required"`
	ChargeType  string `json:"charge_type" validate:"required"`
	Rate        string `json:"rate" validate:"required"`
	Currency    string `json:"currency" validate:"required,len=3"`
	Unit        string `json:"unit" validate:"required,oneof=M3 PAL EA TON MON"`
}

func (h *Handler) decodeEntry(r *http.Request) (Entry, error) {
	var payload entryPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		return Entry{}, err
	}
	if err := h.validate.Struct(payload); err != nil {
		return Entry{}, err
	}
	rate, err := decimal.NewFromString(payload.Rate)
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		CustomerID:  payload.CustomerID,
		ServiceType: billing.ServiceType(payload.ServiceType),
		ChargeType:  payload.ChargeType,
		Rate:        rate,
		Currency:    payload.Currency,
		Unit:        billing.Unit(payload.Unit),
	}, nil
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filters := ListFilters{
		CustomerID:  r.URL.Query().Get("customer_id"),
		ServiceType: r.URL.Query().Get("service_type"),
	}
	list, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list rate cards", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"rates": list})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	e, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, e)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	entry, err := h.decodeEntry(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	created, err := h.service.Create(r.Context(), entry)
	if err != nil {
		h.logger.Error("create rate entry",
			slog.String("customer_id", entry.CustomerID),
			slog.String("charge_type", entry.ChargeType),
			slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	entry, err := h.decodeEntry(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if err := h.service.Update(r.Context(), id, entry); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
