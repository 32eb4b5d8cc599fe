// Package client provides resilient HTTP clients for the upstream CRM API.
// It is also the normalization boundary: loosely typed upstream payloads
// leave this package as strict domain records.
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
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("client")

// RecordsClient fetches primary CRM records (clients, receipts, invoices,
// calendar events). Implements port.RecordFetcher.
type RecordsClient struct {
	httpClient *http.Client
	baseURL    string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
	bulkhead   *resilience.Bulkhead
}

// NewRecordsClient creates a RecordsClient. The bulkhead caps concurrent
// upstream fetches across all in-flight dashboard requests.
func NewRecordsClient(httpClient *http.Client, baseURL string, cb *gobreaker.CircuitBreaker, cfg resilience.Config, bulkhead *resilience.Bulkhead) *RecordsClient {
	return &RecordsClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		cb:         cb,
		cfg:        cfg,
		bulkhead:   bulkhead,
	}
}

// FetchClients retrieves the client book.
func (c *RecordsClient) FetchClients(ctx context.Context, customerID string) ([]domain.Client, error) {
	raw, err := c.getCollection(ctx, "clients", fmt.Sprintf("/v1/customers/%s/clients", customerID), nil)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Client, 0, len(raw))
	for _, m := range raw {
		out = append(out, normalizeClient(m))
	}
	return out, nil
}

// FetchReceipts retrieves payment receipts.
func (c *RecordsClient) FetchReceipts(ctx context.Context, customerID string) ([]domain.Receipt, error) {
	raw, err := c.getCollection(ctx, "receipts", fmt.Sprintf("/v1/customers/%s/receipts", customerID), nil)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Receipt, 0, len(raw))
	for _, m := range raw {
		out = append(out, normalizeReceipt(m))
	}
	return out, nil
}

// FetchInvoices retrieves outgoing invoices.
func (c *RecordsClient) FetchInvoices(ctx context.Context, customerID string) ([]domain.Invoice, error) {
	raw, err := c.getCollection(ctx, "invoices", fmt.Sprintf("/v1/customers/%s/invoices", customerID), nil)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Invoice, 0, len(raw))
	for _, m := range raw {
		out = append(out, normalizeInvoice(m))
	}
	return out, nil
}

// FetchEvents retrieves calendar events within the date window.
func (c *RecordsClient) FetchEvents(ctx context.Context, customerID, startDate, endDate string) ([]domain.Event, error) {
	q := url.Values{}
	q.Set("startDate", startDate)
	q.Set("endDate", endDate)

	raw, err := c.getCollection(ctx, "events", fmt.Sprintf("/v1/customers/%s/events", customerID), q)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Event, 0, len(raw))
	for _, m := range raw {
		out = append(out, normalizeEvent(m))
	}
	return out, nil
}

// getCollection fetches one record collection with bulkhead, circuit
// breaker, retry, and tracing. Payloads are decoded loosely; normalization
// happens per record type in the callers.
func (c *RecordsClient) getCollection(ctx context.Context, source, path string, query url.Values) ([]map[string]any, error) {
	ctx, span := tracer.Start(ctx, "RecordsClient.getCollection")
	defer span.End()
	span.SetAttributes(attribute.String("crm.source", source))

	if err := c.bulkhead.Acquire(ctx); err != nil {
		return nil, &domain.ErrExternalService{Service: source, Err: err}
	}
	defer c.bulkhead.Release()

	var records []map[string]any

	result, err := c.cb.Execute(func() (any, error) {
		innerErr := resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			u := c.baseURL + path
			if len(query) > 0 {
				u += "?" + query.Encode()
			}
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
				records = nil
				return nil
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("CRM API %s returned status %d", source, resp.StatusCode)
			}

			return json.NewDecoder(resp.Body).Decode(&records)
		})
		if innerErr != nil {
			return nil, innerErr
		}
		return records, nil
	})

	if err != nil {
		return nil, &domain.ErrExternalService{Service: source, Err: err}
	}

	return result.([]map[string]any), nil
}
