package service

import (
	"context"
	"time"

	"github.com/nivelo/crm-dashboard-bfa-go/internal/analytics"
	"github.com/nivelo/crm-dashboard-bfa-go/internal/domain"
	"github.com/nivelo/crm-dashboard-bfa-go/internal/infra/cache"
	"github.com/nivelo/crm-dashboard-bfa-go/internal/infra/observability"
	"github.com/nivelo/crm-dashboard-bfa-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("service/dashboard")

// DashboardService resolves dashboard analytics: server-computed when the
// upstream analytics endpoint has data (fast path), locally aggregated from
// primary records otherwise (fallback).
type DashboardService struct {
	records     port.RecordFetcher
	fastPath    port.AnalyticsFetcher // nil when no analytics endpoint is configured
	resultCache port.Cache[*domain.AnalyticsResult]
	metrics     *observability.Metrics
	logger      *zap.Logger
	clock       func() time.Time
}

// Option customizes a DashboardService.
type Option func(*DashboardService)

// WithClock overrides the time source (tests).
func WithClock(clock func() time.Time) Option {
	return func(s *DashboardService) { s.clock = clock }
}

// NewDashboardService creates the dashboard service with all dependencies
// injected. fastPath may be nil.
func NewDashboardService(
	records port.RecordFetcher,
	fastPath port.AnalyticsFetcher,
	resultCache port.Cache[*domain.AnalyticsResult],
	metrics *observability.Metrics,
	logger *zap.Logger,
	opts ...Option,
) *DashboardService {
	s := &DashboardService{
		records:     records,
		fastPath:    fastPath,
		resultCache: resultCache,
		metrics:     metrics,
		logger:      logger,
		clock:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetDashboardAnalytics resolves the range, then selects between the fast
// path and local aggregation. Fast-path failures and empty envelopes both
// trigger the fallback; they are not surfaced as errors.
func (s *DashboardService) GetDashboardAnalytics(ctx context.Context, customerID, rangeType, customStart, customEnd string) (*domain.AnalyticsResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "DashboardService.GetDashboardAnalytics")
	defer span.End()
	span.SetAttributes(
		attribute.String("customer.id", customerID),
		attribute.String("range.type", rangeType),
	)

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("dashboard", time.Since(start))
	}()

	now := s.clock()
	rng := analytics.ResolveDateRange(rangeType, customStart, customEnd, now)

	key := cache.Key("dashboard", customerID, rng.Type, rng.StartDate, rng.EndDate)
	if cached, ok := s.resultCache.Get(key); ok {
		s.metrics.IncrCacheHit("dashboard")
		return cached, nil
	}
	s.metrics.IncrCacheMiss("dashboard")

	if model := s.tryFastPath(ctx, customerID, rng); model != nil {
		s.metrics.IncrFastPath("hit")
		s.metrics.IncrRequest("success")
		result := &domain.AnalyticsResult{Source: domain.SourceServer, Model: model}
		s.resultCache.Set(key, result)
		return result, nil
	}
	s.metrics.IncrFastPath("fallback")

	clients, receipts, invoices, events := s.fetchRecords(ctx, customerID, rng)

	model, err := analytics.Compute(analytics.ComputeInput{
		Clients:  clients,
		Receipts: receipts,
		Invoices: invoices,
		Events:   events,
		Range:    rng,
		Now:      now,
	})
	if err != nil {
		s.logger.Error("dashboard aggregation failed",
			zap.String("customer_id", customerID),
			zap.Error(err),
		)
		s.metrics.IncrRequest("error")
		return nil, err
	}

	s.metrics.IncrRequest("success")
	result := &domain.AnalyticsResult{Source: domain.SourceComputed, Model: model}
	s.resultCache.Set(key, result)
	return result, nil
}

// tryFastPath returns the server-computed model, or nil when the endpoint
// is unconfigured, empty, or failing.
func (s *DashboardService) tryFastPath(ctx context.Context, customerID string, rng domain.DateRange) *domain.DashboardAnalytics {
	if s.fastPath == nil {
		return nil
	}

	model, err := s.fastPath.FetchDashboardAnalytics(ctx, customerID, rng)
	if err != nil {
		s.logger.Warn("analytics fast path failed, computing locally",
			zap.String("customer_id", customerID),
			zap.Error(err),
		)
		return nil
	}
	if model == nil {
		s.logger.Debug("analytics fast path empty, computing locally",
			zap.String("customer_id", customerID),
		)
	}
	return model
}

// fetchRecords fans out the four primary fetches concurrently. Individual
// failures are absorbed by substituting an empty collection: partial data
// beats total failure for this read-only report.
func (s *DashboardService) fetchRecords(ctx context.Context, customerID string, rng domain.DateRange) ([]domain.Client, []domain.Receipt, []domain.Invoice, []domain.Event) {
	clients := []domain.Client{}
	receipts := []domain.Receipt{}
	invoices := []domain.Invoice{}
	events := []domain.Event{}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		c, err := s.records.FetchClients(gCtx, customerID)
		if err != nil {
			s.logger.Warn("client fetch failed, using empty collection", zap.Error(err))
			s.metrics.IncrFetchError("clients")
			return nil
		}
		clients = c
		return nil
	})

	g.Go(func() error {
		r, err := s.records.FetchReceipts(gCtx, customerID)
		if err != nil {
			s.logger.Warn("receipt fetch failed, using empty collection", zap.Error(err))
			s.metrics.IncrFetchError("receipts")
			return nil
		}
		receipts = r
		return nil
	})

	g.Go(func() error {
		i, err := s.records.FetchInvoices(gCtx, customerID)
		if err != nil {
			s.logger.Warn("invoice fetch failed, using empty collection", zap.Error(err))
			s.metrics.IncrFetchError("invoices")
			return nil
		}
		invoices = i
		return nil
	})

	g.Go(func() error {
		e, err := s.records.FetchEvents(gCtx, customerID, rng.StartDate, rng.EndDate)
		if err != nil {
			s.logger.Warn("event fetch failed, using empty collection", zap.Error(err))
			s.metrics.IncrFetchError("events")
			return nil
		}
		events = e
		return nil
	})

	// Branches never return errors; Wait only joins them.
	_ = g.Wait()

	return clients, receipts, invoices, events
}

// ============================================================
// Record passthroughs (list screens of the mobile app)
// ============================================================

func (s *DashboardService) ListClients(ctx context.Context, customerID string) ([]domain.Client, error) {
	ctx, span := tracer.Start(ctx, "DashboardService.ListClients")
	defer span.End()

	return s.records.FetchClients(ctx, customerID)
}

func (s *DashboardService) ListReceipts(ctx context.Context, customerID string) ([]domain.Receipt, error) {
	ctx, span := tracer.Start(ctx, "DashboardService.ListReceipts")
	defer span.End()

	return s.records.FetchReceipts(ctx, customerID)
}

func (s *DashboardService) ListInvoices(ctx context.Context, customerID string) ([]domain.Invoice, error) {
	ctx, span := tracer.Start(ctx, "DashboardService.ListInvoices")
	defer span.End()

	return s.records.FetchInvoices(ctx, customerID)
}

func (s *DashboardService) ListEvents(ctx context.Context, customerID, startDate, endDate string) ([]domain.Event, error) {
	ctx, span := tracer.Start(ctx, "DashboardService.ListEvents")
	defer span.End()

	return s.records.FetchEvents(ctx, customerID, startDate, endDate)
}
