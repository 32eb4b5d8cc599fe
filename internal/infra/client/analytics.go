package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/nivelo/crm-dashboard-bfa-go/internal/domain"
	"github.com/nivelo/crm-dashboard-bfa-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"
)

// AnalyticsClient calls the dedicated upstream analytics endpoint (the
// fast path). Implements port.AnalyticsFetcher.
type AnalyticsClient struct {
	httpClient *http.Client
	baseURL    string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
}

// NewAnalyticsClient creates an AnalyticsClient.
func NewAnalyticsClient(httpClient *http.Client, baseURL string, cb *gobreaker.CircuitBreaker, cfg resilience.Config) *AnalyticsClient {
	return &AnalyticsClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		cb:         cb,
		cfg:        cfg,
	}
}

// analyticsEnvelope is the upstream response wrapper. An unsuccessful
// envelope or a missing payload means "no server analytics for this range",
// which is a normal fallback trigger, not an error.
type analyticsEnvelope struct {
	Success bool                       `json:"success"`
	Data    *domain.DashboardAnalytics `json:"data"`
}

// FetchDashboardAnalytics returns the server-computed model, or (nil, nil)
// when the endpoint has no data for the range.
func (c *AnalyticsClient) FetchDashboardAnalytics(ctx context.Context, customerID string, r domain.DateRange) (*domain.DashboardAnalytics, error) {
	ctx, span := tracer.Start(ctx, "AnalyticsClient.FetchDashboardAnalytics")
	defer span.End()
	span.SetAttributes(
		attribute.String("customer.id", customerID),
		attribute.String("range.type", r.Type),
	)

	var envelope analyticsEnvelope

	_, err := c.cb.Execute(func() (any, error) {
		innerErr := resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			q := url.Values{}
			q.Set("range", r.Type)
			q.Set("start", r.StartDate)
			q.Set("end", r.EndDate)

			u := fmt.Sprintf("%s/v1/customers/%s/analytics/dashboard?%s", c.baseURL, customerID, q.Encode())
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
			if err != nil {
				return err
			}

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusNotFound {
				envelope = analyticsEnvelope{}
				return nil
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("analytics API returned status %d", resp.StatusCode)
			}

			return json.NewDecoder(resp.Body).Decode(&envelope)
		})
		if innerErr != nil {
			return nil, innerErr
		}
		return nil, nil
	})

	if err != nil {
		return nil, &domain.ErrExternalService{Service: "analytics", Err: err}
	}

	if !envelope.Success || envelope.Data == nil {
		return nil, nil
	}
	return envelope.Data, nil
}
