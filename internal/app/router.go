package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/odyssey-erp/odyssey-bff/internal/accounting/payments"
	"github.com/odyssey-erp/odyssey-bff/internal/accounting/reports"
	"github.com/odyssey-erp/odyssey-bff/internal/masterdata/items"
	"github.com/odyssey-erp/odyssey-bff/internal/observability"
	"github.com/odyssey-erp/odyssey-bff/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-bff/internal/procurement"
	"github.com/odyssey-erp/odyssey-bff/internal/sales"
	"github.com/odyssey-erp/odyssey-bff/jobs"
	"github.com/odyssey-erp/odyssey-bff/report"
)

// HealthChecker checks a dependency for the readiness endpoint.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	ReportsHandler     *reports.Handler
	PaymentsHandler    *payments.Handler
	ProcurementHandler *procurement.Handler
	SalesHandler       *sales.Handler
	ItemsHandler       *items.Handler
	ReportHandler      *report.Handler
	JobHandler         *jobs.Handler
	Upstream           HealthChecker
	Metrics            *observability.Metrics
}

// NewRouter constructs the chi.Router with Odyssey defaults.
func NewRouter(params RouterParams) http.Handler {
	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "no route for "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.Problem(w, http.StatusMethodNotAllowed, "Method Not Allowed", r.Method+" not allowed on "+r.URL.Path)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", readyHandler(params.Upstream, logger))

	r.Route("/api", func(r chi.Router) {
		if params.ReportsHandler != nil {
			r.Route("/accounting/reports", params.ReportsHandler.MountRoutes)
		}
		if params.PaymentsHandler != nil {
			r.Route("/accounting/payments", params.PaymentsHandler.MountRoutes)
		}
		if params.ProcurementHandler != nil {
			r.Route("/purchase-orders", params.ProcurementHandler.MountRoutes)
		}
		if params.SalesHandler != nil {
			r.Route("/sales-orders", params.SalesHandler.MountRoutes)
		}
		if params.ItemsHandler != nil {
			r.Route("/items", params.ItemsHandler.MountRoutes)
		}
	})
	if params.ReportHandler != nil {
		r.Route("/report", params.ReportHandler.MountRoutes)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}

// readyHandler reports whether the ERP site answers within a short deadline.
func readyHandler(upstream HealthChecker, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if upstream == nil {
			httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := upstream.Ping(ctx); err != nil {
			logger.Warn("readiness check failed", slog.Any("error", err))
			httpx.Problem(w, http.StatusServiceUnavailable, "Service Unavailable", "erp unavailable")
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
