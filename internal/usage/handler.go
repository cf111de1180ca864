package usage

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/warebill/warebill/internal/billing"
	"github.com/warebill/warebill/internal/platform/httpx"
)

// Handler manages usage ledger endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers usage routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.record)
	r.Get("/", h.list)
}

type recordPayload struct {
	CustomerID  string `json:"customer_id" validate:"required"`
	ServiceType string `json:"service_type" validate:"required"`
	ChargeType  string `json:"charge_type" validate:"required"`
	Quantity    string `json:"quantity" validate:"required"`
	OccurredAt  string `json:"occurred_at" validate:"required"`
}

type recordRequest struct {
	Records []recordPayload `json:"records" validate:"required,min=1,dive"`
}

func (h *Handler) record(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	records := make([]billing.UsageRecord, 0, len(req.Records))
	for _, p := range req.Records {
		qty, err := decimal.NewFromString(p.Quantity)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid quantity "+p.Quantity)
			return
		}
		occurred, err := time.Parse(time.RFC3339, p.OccurredAt)
		if err != nil {
			// Date-only ledger feeds are accepted too.
			occurred, err = time.Parse("2006-01-02", p.OccurredAt)
			if err != nil {
				httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid occurred_at "+p.OccurredAt)
				return
			}
		}
		records = append(records, billing.UsageRecord{
			CustomerID:  p.CustomerID,
			ServiceType: billing.ServiceType(p.ServiceType),
			ChargeType:  p.ChargeType,
			Quantity:    qty,
			OccurredAt:  occurred,
		})
	}

	if err := h.service.Record(r.Context(), records); err != nil {
		h.logger.Error("record usage", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"recorded": len(records)})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	customerID := r.URL.Query().Get("customer_id")
	start, err := time.Parse("2006-01-02", r.URL.Query().Get("start"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "start must be YYYY-MM-DD")
		return
	}
	end, err := time.Parse("2006-01-02", r.URL.Query().Get("end"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "end must be YYYY-MM-DD")
		return
	}
	records, err := h.service.Usage(r.Context(), customerID, start, end)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"records": records})
}
