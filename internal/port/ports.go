// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/nivelo/crm-dashboard-bfa-go/internal/domain"
)

// ClientFetcher retrieves the CRM client book.
type ClientFetcher interface {
	FetchClients(ctx context.Context, customerID string) ([]domain.Client, error)
}

// ReceiptFetcher retrieves payment receipts.
type ReceiptFetcher interface {
	FetchReceipts(ctx context.Context, customerID string) ([]domain.Receipt, error)
}

// InvoiceFetcher retrieves outgoing invoices.
type InvoiceFetcher interface {
	FetchInvoices(ctx context.Context, customerID string) ([]domain.Invoice, error)
}

// EventFetcher retrieves calendar events within a date window.
type EventFetcher interface {
	FetchEvents(ctx context.Context, customerID, startDate, endDate string) ([]domain.Event, error)
}

// RecordFetcher bundles the four primary record sources. Implemented by the
// CRM API client; each fetch may fail independently.
type RecordFetcher interface {
	ClientFetcher
	ReceiptFetcher
	InvoiceFetcher
	EventFetcher
}

// AnalyticsFetcher is the optional fast path: upstream-computed dashboard
// analytics. A nil model with a nil error means the endpoint had no data
// for the range; callers fall back to local aggregation.
type AnalyticsFetcher interface {
	FetchDashboardAnalytics(ctx context.Context, customerID string, r domain.DateRange) (*domain.DashboardAnalytics, error)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
