package domain

import "time"

// ============================================================
// Dashboard Analytics
// ============================================================

// Date range selector types understood by the resolver.
const (
	RangeThisWeek  = "this_week"
	RangeThisMonth = "this_month"
	RangeThisYear  = "this_year"
	RangeCustom    = "custom"
)

// DateRange is a resolved reporting period. Bounds are calendar dates
// (YYYY-MM-DD); the end date is inclusive.
type DateRange struct {
	Type      string `json:"type"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// DashboardAnalytics is the full dashboard model. Every facet is always
// populated; consumers never see a partial model.
type DashboardAnalytics struct {
	DateRange   DateRange      `json:"dateRange"`
	Revenue     *RevenueFacet  `json:"revenue"`
	Clients     *ClientFacet   `json:"clients"`
	Billing     *BillingFacet  `json:"billing"`
	Activity    *ActivityFacet `json:"activity"`
	LastUpdated time.Time      `json:"lastUpdated"`
}

// RevenueFacet aggregates paid receipts.
type RevenueFacet struct {
	Total          float64              `json:"total"`
	ChangePercent  float64              `json:"changePercent"` // always 0 without historical data
	Series         []TimePoint          `json:"series"`
	ByServiceLine  []ServiceLineRevenue `json:"byServiceLine"`
	AvgTransaction float64              `json:"avgTransaction"`
	TopClients     []ClientRevenue      `json:"topClients"`
}

// TimePoint is one bucket of the revenue time series.
type TimePoint struct {
	Date   string  `json:"date"`
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

// ServiceLineRevenue is revenue grouped by service line. ColorIndex is
// assigned by insertion order modulo the chart palette size.
type ServiceLineRevenue struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
	ColorIndex int     `json:"colorIndex"`
}

// ClientRevenue is one entry of the top-clients ranking.
type ClientRevenue struct {
	ClientID string  `json:"clientId"`
	Name     string  `json:"name"`
	Revenue  float64 `json:"revenue"`
}

// ClientFacet aggregates the client book.
type ClientFacet struct {
	Total            int           `json:"total"`
	Active           int           `json:"active"`
	Prospect         int           `json:"prospect"`
	Completed        int           `json:"completed"`
	Inactive         int           `json:"inactive"`
	NewThisPeriod    int           `json:"newThisPeriod"`
	NewChangePercent float64       `json:"newChangePercent"` // always 0 without historical data
	Series           []ClientPoint `json:"series"`
	ByStatus         []StatusCount `json:"byStatus"`
	RetentionRate    float64       `json:"retentionRate"`
}

// ClientPoint is one bucket of the client time series: new clients in the
// bucket plus the running total as of that bucket.
type ClientPoint struct {
	Date       string `json:"date"`
	Label      string `json:"label"`
	NewClients int    `json:"newClients"`
	Total      int    `json:"total"`
}

// StatusCount is one slice of the client-status breakdown. Zero-count
// statuses are omitted from the rendered set.
type StatusCount struct {
	Status     string  `json:"status"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// BillingFacet aggregates outstanding billing.
type BillingFacet struct {
	PendingInvoiceCount  int     `json:"pendingInvoiceCount"`
	PendingInvoiceAmount float64 `json:"pendingInvoiceAmount"`
	PendingReceiptCount  int     `json:"pendingReceiptCount"`
	PendingReceiptAmount float64 `json:"pendingReceiptAmount"`
	TotalOutstanding     float64 `json:"totalOutstanding"`
	OverdueCount         int     `json:"overdueCount"`
	OverdueAmount        float64 `json:"overdueAmount"`
}

// ActivityFacet aggregates calendar events.
type ActivityFacet struct {
	Upcoming       int     `json:"upcoming"`
	Completed      int     `json:"completed"`
	Total          int     `json:"total"`
	CompletionRate float64 `json:"completionRate"`
}

// ============================================================
// Result envelope
// ============================================================

// Analytics sources.
const (
	SourceServer   = "server"   // fast path: upstream-computed analytics
	SourceComputed = "computed" // fallback: aggregated from primary records
)

// AnalyticsResult carries the model plus its provenance so callers can tell
// server-computed analytics from the local fallback (where period-over-period
// deltas are always zero).
type AnalyticsResult struct {
	Source string              `json:"source"`
	Model  *DashboardAnalytics `json:"model"`
}

// ============================================================
// Service metrics snapshot
// ============================================================

// DashboardMetrics is returned by GET /v1/metrics/dashboard.
type DashboardMetrics struct {
	TotalRequests   int64   `json:"totalRequests"`
	ErrorRate       float64 `json:"errorRate"`
	FastPathHitRate float64 `json:"fastPathHitRate"`
	CacheHitRate    float64 `json:"cacheHitRate"`
	Period          string  `json:"period"`
}
