package handler

import (
	"net/http"
	"time"

	"github.com/nivelo/crm-dashboard-bfa-go/internal/domain"
	"github.com/nivelo/crm-dashboard-bfa-go/internal/infra/observability"
	"github.com/nivelo/crm-dashboard-bfa-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// dashboardResponse wraps the analytics model with request metadata.
type dashboardResponse struct {
	RequestID string                     `json:"requestId"`
	Source    string                     `json:"source"`
	LatencyMs int64                      `json:"latencyMs"`
	Analytics *domain.DashboardAnalytics `json:"analytics"`
}

// ============================================================
// GET /v1/customers/{customerId}/dashboard/analytics
// ============================================================

func dashboardAnalyticsHandler(svc *service.DashboardService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/customers/{customerId}/dashboard/analytics")
		defer span.End()

		customerID := chi.URLParam(r, "customerId")
		if customerID == "" {
			writeError(w, http.StatusBadRequest, "customer_id is required")
			return
		}
		span.SetAttributes(attribute.String("customer.id", customerID))

		q := r.URL.Query()
		rangeType := q.Get("range")
		if rangeType == "" {
			rangeType = domain.RangeThisMonth
		}

		start := time.Now()
		result, err := svc.GetDashboardAnalytics(ctx, customerID, rangeType, q.Get("start"), q.Get("end"))
		latencyMs := time.Since(start).Milliseconds()
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, dashboardResponse{
			RequestID: uuid.New().String(),
			Source:    result.Source,
			LatencyMs: latencyMs,
			Analytics: result.Model,
		})
	}
}

// ============================================================
// Record lists
// ============================================================

func listClientsHandler(svc *service.DashboardService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/customers/{customerId}/clients")
		defer span.End()

		clients, err := svc.ListClients(ctx, chi.URLParam(r, "customerId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, clients)
	}
}

func listReceiptsHandler(svc *service.DashboardService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/customers/{customerId}/receipts")
		defer span.End()

		receipts, err := svc.ListReceipts(ctx, chi.URLParam(r, "customerId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, receipts)
	}
}

func listInvoicesHandler(svc *service.DashboardService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/customers/{customerId}/invoices")
		defer span.End()

		invoices, err := svc.ListInvoices(ctx, chi.URLParam(r, "customerId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, invoices)
	}
}

func listEventsHandler(svc *service.DashboardService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/customers/{customerId}/events")
		defer span.End()

		q := r.URL.Query()
		events, err := svc.ListEvents(ctx, chi.URLParam(r, "customerId"), q.Get("start"), q.Get("end"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, events)
	}
}

// ============================================================
// GET /v1/metrics/dashboard
// ============================================================

func dashboardMetricsHandler(metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/metrics/dashboard")
		defer span.End()

		writeJSON(w, http.StatusOK, metrics.GetDashboardSnapshot())
	}
}
