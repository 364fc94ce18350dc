package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/Ashish-Kr-1/billing-sys-rkct-sub000/internal/invoices"
	"github.com/Ashish-Kr-1/billing-sys-rkct-sub000/internal/ledger"
	"github.com/Ashish-Kr-1/billing-sys-rkct-sub000/internal/masterdata"
	"github.com/Ashish-Kr-1/billing-sys-rkct-sub000/internal/observability"
	"github.com/Ashish-Kr-1/billing-sys-rkct-sub000/internal/quotations"
	"github.com/Ashish-Kr-1/billing-sys-rkct-sub000/internal/tenant"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	Registry          *tenant.Registry
	InvoiceHandler    *invoices.Handler
	QuotationHandler  *quotations.Handler
	LedgerHandler     *ledger.Handler
	MasterDataHandler *masterdata.Handler
	Metrics           *observability.Metrics
}

// NewRouter constructs the chi.Router. Every business route runs behind
// the company resolution middleware; health and metrics stay outside it.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	if !params.Config.IsProduction() {
		r.Use(chimw.Logger)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(tenant.Middleware(params.Registry, params.Logger))

		if params.InvoiceHandler != nil {
			r.Route("/invoices", params.InvoiceHandler.MountRoutes)
		}
		if params.QuotationHandler != nil {
			r.Route("/quotations", params.QuotationHandler.MountRoutes)
		}
		if params.LedgerHandler != nil {
			r.Route("/ledger", params.LedgerHandler.MountRoutes)
		}
		if params.MasterDataHandler != nil {
			r.Route("/masterdata", params.MasterDataHandler.MountRoutes)
		}
	})

	return r
}
