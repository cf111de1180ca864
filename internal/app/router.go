package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	billinghttp "github.com/warebill/warebill/internal/billing/http"
	"github.com/warebill/warebill/internal/invoices"
	"github.com/warebill/warebill/internal/masterdata/customers"
	"github.com/warebill/warebill/internal/observability"
	"github.com/warebill/warebill/internal/ratecards"
	"github.com/warebill/warebill/internal/usage"
	"github.com/warebill/warebill/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	CustomerHandler *customers.Handler
	RateCardHandler *ratecards.Handler
	UsageHandler    *usage.Handler
	BillingHandler  *billinghttp.Handler
	InvoiceHandler  *invoices.Handler
	JobHandler      *jobs.Handler
	Metrics         *observability.Metrics
}

// NewRouter constructs the chi.Router with service defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/customers", params.CustomerHandler.MountRoutes)
	r.Route("/api/rates", params.RateCardHandler.MountRoutes)
	r.Route("/api/usage", params.UsageHandler.MountRoutes)
	r.Route("/api/billing", params.BillingHandler.MountRoutes)
	r.Route("/api/invoices", params.InvoiceHandler.MountRoutes)
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
