package handler

import (
	"net/http"

	"github.com/nivelo/crm-dashboard-bfa-go/internal/infra/observability"
	"github.com/nivelo/crm-dashboard-bfa-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// NewRouter creates the HTTP router with all routes and middleware.
// authSvc may be nil, in which case the v1 routes are open (dev mode).
func NewRouter(svc *service.DashboardService, authSvc *service.AuthService, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler())
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {
		if authSvc != nil {
			r.Use(JWTAuthMiddleware(authSvc, logger))
		}

		// Dashboard analytics: fast path with local-aggregation fallback.
		// GET /v1/customers/{customerId}/dashboard/analytics?range=&start=&end=
		r.Get("/customers/{customerId}/dashboard/analytics", dashboardAnalyticsHandler(svc, logger))

		// Primary record lists for the app's client, billing, and agenda screens.
		r.Get("/customers/{customerId}/clients", listClientsHandler(svc, logger))
		r.Get("/customers/{customerId}/receipts", listReceiptsHandler(svc, logger))
		r.Get("/customers/{customerId}/invoices", listInvoicesHandler(svc, logger))
		r.Get("/customers/{customerId}/events", listEventsHandler(svc, logger))

		// Service metrics snapshot.
		r.Get("/metrics/dashboard", dashboardMetricsHandler(metrics, logger))
	})

	return r
}

func healthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
