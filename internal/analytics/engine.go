package analytics

import (
	"sort"
	"time"

	"github.com/nivelo/crm-dashboard-bfa-go/internal/domain"
)

// paletteSize is the number of chart colors the dashboard cycles through.
const paletteSize = 8

// topClientsLimit caps the revenue ranking.
const topClientsLimit = 5

// ComputeInput carries everything the engine needs. All four collections
// must be valid (possibly empty) slices; fetch failures are absorbed
// upstream by substituting empty collections, never here.
type ComputeInput struct {
	Clients  []domain.Client
	Receipts []domain.Receipt
	Invoices []domain.Invoice
	Events   []domain.Event
	Range    domain.DateRange
	Now      time.Time
}

// Compute aggregates the primary records into a complete dashboard model.
// It is deterministic for a fixed Now and returns either the whole model or
// an error, never a partial model. The only failure mode is malformed
// range bounds.
func Compute(in ComputeInput) (*domain.DashboardAnalytics, error) {
	start, err := time.Parse(DateLayout, in.Range.StartDate)
	if err != nil {
		return nil, &domain.ErrAggregation{Reason: "invalid range start", Err: err}
	}
	end, err := time.Parse(DateLayout, in.Range.EndDate)
	if err != nil {
		return nil, &domain.ErrAggregation{Reason: "invalid range end", Err: err}
	}
	// End date is inclusive: cover the whole final day.
	endExcl := end.AddDate(0, 0, 1)

	paid := filterPaid(in.Receipts)

	var totalRevenue float64
	for _, r := range paid {
		totalRevenue += r.Amount
	}

	model := &domain.DashboardAnalytics{
		DateRange:   in.Range,
		Revenue:     revenueFacet(in, paid, totalRevenue, start, end),
		Clients:     clientFacet(in, start, endExcl, end),
		Billing:     billingFacet(in),
		Activity:    activityFacet(in),
		LastUpdated: in.Now,
	}
	return model, nil
}

func filterPaid(receipts []domain.Receipt) []domain.Receipt {
	paid := make([]domain.Receipt, 0, len(receipts))
	for _, r := range receipts {
		if r.Status == domain.ReceiptStatusPaid {
			paid = append(paid, r)
		}
	}
	return paid
}

func revenueFacet(in ComputeInput, paid []domain.Receipt, totalRevenue float64, start, end time.Time) *domain.RevenueFacet {
	avg := float64(0)
	if len(paid) > 0 {
		avg = totalRevenue / float64(len(paid))
	}
	return &domain.RevenueFacet{
		Total:          totalRevenue,
		ChangePercent:  0, // no historical fetch in fallback mode
		Series:         revenueSeries(in.Range, paid, start, end),
		ByServiceLine:  serviceLineBreakdown(paid, totalRevenue),
		AvgTransaction: avg,
		TopClients:     topClientsByRevenue(paid, in.Clients),
	}
}

// serviceLineBreakdown groups paid receipts by service line, preserving
// first-seen order so color assignment is deterministic.
func serviceLineBreakdown(paid []domain.Receipt, totalRevenue float64) []domain.ServiceLineRevenue {
	amounts := make(map[string]float64)
	order := make([]string, 0)

	for _, r := range paid {
		line := r.ServiceLine
		if line == "" {
			line = "Other"
		}
		if _, seen := amounts[line]; !seen {
			order = append(order, line)
		}
		amounts[line] += r.Amount
	}

	out := make([]domain.ServiceLineRevenue, 0, len(order))
	for i, line := range order {
		pct := float64(0)
		if totalRevenue > 0 {
			pct = amounts[line] / totalRevenue * 100
		}
		out = append(out, domain.ServiceLineRevenue{
			ID:         line,
			Name:       line,
			Amount:     amounts[line],
			Percentage: pct,
			ColorIndex: i % paletteSize,
		})
	}
	return out
}

// topClientsByRevenue ranks clients by paid-receipt revenue. The sort is
// stable so ties keep their first-seen order; the result is capped at 5.
func topClientsByRevenue(paid []domain.Receipt, clients []domain.Client) []domain.ClientRevenue {
	names := make(map[string]string, len(clients))
	for _, c := range clients {
		names[c.ID] = c.Name
	}

	revenue := make(map[string]float64)
	order := make([]string, 0)
	for _, r := range paid {
		if _, seen := revenue[r.ClientID]; !seen {
			order = append(order, r.ClientID)
		}
		revenue[r.ClientID] += r.Amount
	}

	ranked := make([]domain.ClientRevenue, 0, len(order))
	for _, id := range order {
		name := names[id]
		if name == "" {
			name = "Unknown"
		}
		ranked = append(ranked, domain.ClientRevenue{ClientID: id, Name: name, Revenue: revenue[id]})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Revenue > ranked[j].Revenue
	})
	if len(ranked) > topClientsLimit {
		ranked = ranked[:topClientsLimit]
	}
	return ranked
}

// revenueSeries folds paid receipts into the pre-initialized bucket layout.
// Contributions whose derived key is not in the layout are dropped.
func revenueSeries(r domain.DateRange, paid []domain.Receipt, start, end time.Time) []domain.TimePoint {
	buckets := Buckets(r.Type, start, end)
	idx := bucketIndex(buckets)

	amounts := make([]float64, len(buckets))
	for _, rc := range paid {
		if i, ok := idx[bucketKeyFor(r.Type, rc.PaidAt)]; ok {
			amounts[i] += rc.Amount
		}
	}

	series := make([]domain.TimePoint, len(buckets))
	for i, b := range buckets {
		series[i] = domain.TimePoint{Date: b.Key, Label: b.Label, Amount: amounts[i]}
	}
	return series
}

func clientFacet(in ComputeInput, start, endExcl, end time.Time) *domain.ClientFacet {
	var active, prospect, completed, inactive, newThisPeriod int
	for _, c := range in.Clients {
		switch c.Status {
		case domain.ClientStatusActive:
			active++
		case domain.ClientStatusProspect:
			prospect++
		case domain.ClientStatusCompleted:
			completed++
		case domain.ClientStatusInactive:
			inactive++
		}
		if !c.CreatedAt.Before(start) && c.CreatedAt.Before(endExcl) {
			newThisPeriod++
		}
	}

	total := len(in.Clients)
	retention := float64(0)
	if total > 0 {
		retention = float64(active) / float64(total) * 100
	}

	return &domain.ClientFacet{
		Total:            total,
		Active:           active,
		Prospect:         prospect,
		Completed:        completed,
		Inactive:         inactive,
		NewThisPeriod:    newThisPeriod,
		NewChangePercent: 0, // no historical fetch in fallback mode
		Series:           clientSeries(in.Range, in.Clients, start, end),
		ByStatus:         statusBreakdown(total, active, prospect, completed, inactive),
		RetentionRate:    retention,
	}
}

// statusBreakdown omits zero-count statuses from the rendered set; the
// percentages are still computed against the full client total.
func statusBreakdown(total, active, prospect, completed, inactive int) []domain.StatusCount {
	out := make([]domain.StatusCount, 0, 4)
	for _, s := range []struct {
		status string
		count  int
	}{
		{domain.ClientStatusActive, active},
		{domain.ClientStatusProspect, prospect},
		{domain.ClientStatusCompleted, completed},
		{domain.ClientStatusInactive, inactive},
	} {
		if s.count == 0 {
			continue
		}
		out = append(out, domain.StatusCount{
			Status:     s.status,
			Count:      s.count,
			Percentage: float64(s.count) / float64(total) * 100,
		})
	}
	return out
}

// clientSeries buckets new-client counts and carries a running total that
// starts from the number of clients created strictly before the range.
func clientSeries(r domain.DateRange, clients []domain.Client, start, end time.Time) []domain.ClientPoint {
	buckets := Buckets(r.Type, start, end)
	idx := bucketIndex(buckets)

	counts := make([]int, len(buckets))
	base := 0
	for _, c := range clients {
		if c.CreatedAt.Before(start) {
			base++
			continue
		}
		if i, ok := idx[bucketKeyFor(r.Type, c.CreatedAt)]; ok {
			counts[i]++
		}
	}

	series := make([]domain.ClientPoint, len(buckets))
	running := base
	for i, b := range buckets {
		running += counts[i]
		series[i] = domain.ClientPoint{Date: b.Key, Label: b.Label, NewClients: counts[i], Total: running}
	}
	return series
}

func billingFacet(in ComputeInput) *domain.BillingFacet {
	f := &domain.BillingFacet{}

	for _, inv := range in.Invoices {
		if inv.Status != domain.InvoiceStatusPending && inv.Status != domain.InvoiceStatusSent {
			continue
		}
		f.PendingInvoiceCount++
		f.PendingInvoiceAmount += inv.Amount
		if !inv.DueAt.IsZero() && inv.DueAt.Before(in.Now) {
			f.OverdueCount++
			f.OverdueAmount += inv.Amount
		}
	}

	for _, r := range in.Receipts {
		if r.Status != domain.ReceiptStatusPending && r.Status != domain.ReceiptStatusDraft {
			continue
		}
		f.PendingReceiptCount++
		f.PendingReceiptAmount += r.Amount
	}

	f.TotalOutstanding = f.PendingInvoiceAmount + f.PendingReceiptAmount
	return f
}

func activityFacet(in ComputeInput) *domain.ActivityFacet {
	f := &domain.ActivityFacet{Total: len(in.Events)}
	for _, e := range in.Events {
		if !e.StartsAt.Before(in.Now) {
			f.Upcoming++
		}
		if e.Status == domain.EventStatusCompleted {
			f.Completed++
		}
	}
	if f.Total > 0 {
		f.CompletionRate = float64(f.Completed) / float64(f.Total) * 100
	}
	return f
}
