package analytics_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/nivelo/crm-dashboard-bfa-go/internal/analytics"
	"github.com/nivelo/crm-dashboard-bfa-go/internal/domain"
)

var juneRange = domain.DateRange{
	Type:      domain.RangeThisMonth,
	StartDate: "2025-06-01",
	EndDate:   "2025-06-30",
}

func TestCompute_EmptyInputs(t *testing.T) {
	model, err := analytics.Compute(analytics.ComputeInput{Range: juneRange, Now: fixedNow})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if model.Revenue.Total != 0 || model.Revenue.AvgTransaction != 0 {
		t.Error("expected zero revenue for empty inputs")
	}
	if model.Clients.Total != 0 || model.Clients.RetentionRate != 0 {
		t.Error("expected zero clients and retention 0, not NaN")
	}
	if model.Activity.CompletionRate != 0 {
		t.Errorf("expected completion rate 0 with no events, got %f", model.Activity.CompletionRate)
	}
	if model.Billing.TotalOutstanding != 0 {
		t.Error("expected zero outstanding billing")
	}

	// June has five weekly buckets; the series must be zero-filled, never sparse.
	if len(model.Revenue.Series) != 5 {
		t.Fatalf("expected 5 weekly revenue buckets, got %d", len(model.Revenue.Series))
	}
	for _, p := range model.Revenue.Series {
		if p.Amount != 0 {
			t.Errorf("expected zero-filled bucket %s, got %f", p.Date, p.Amount)
		}
	}
	if len(model.Clients.Series) != 5 {
		t.Fatalf("expected 5 weekly client buckets, got %d", len(model.Clients.Series))
	}
}

func TestCompute_ServiceLineBreakdown(t *testing.T) {
	in := analytics.ComputeInput{
		Receipts: []domain.Receipt{
			{ID: "r1", ClientID: "c1", Status: domain.ReceiptStatusPaid, Amount: 100, ServiceLine: "A", PaidAt: day(2025, 6, 3)},
			{ID: "r2", ClientID: "c2", Status: domain.ReceiptStatusPaid, Amount: 300, ServiceLine: "B", PaidAt: day(2025, 6, 10)},
		},
		Range: juneRange,
		Now:   fixedNow,
	}

	model, err := analytics.Compute(in)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if model.Revenue.Total != 400 {
		t.Errorf("expected total revenue 400, got %f", model.Revenue.Total)
	}
	bd := model.Revenue.ByServiceLine
	if len(bd) != 2 {
		t.Fatalf("expected 2 service lines, got %d", len(bd))
	}
	if bd[0].Name != "A" || bd[0].Amount != 100 || bd[0].Percentage != 25 {
		t.Errorf("expected {A,100,25%%}, got {%s,%f,%f%%}", bd[0].Name, bd[0].Amount, bd[0].Percentage)
	}
	if bd[1].Name != "B" || bd[1].Amount != 300 || bd[1].Percentage != 75 {
		t.Errorf("expected {B,300,75%%}, got {%s,%f,%f%%}", bd[1].Name, bd[1].Amount, bd[1].Percentage)
	}
	if bd[0].ColorIndex != 0 || bd[1].ColorIndex != 1 {
		t.Errorf("expected insertion-order color indices 0,1, got %d,%d", bd[0].ColorIndex, bd[1].ColorIndex)
	}

	// Breakdown amounts must sum to total revenue exactly.
	if bd[0].Amount+bd[1].Amount != model.Revenue.Total {
		t.Error("service line amounts do not sum to total revenue")
	}
}

func TestCompute_OverdueInvoices(t *testing.T) {
	yesterday := fixedNow.AddDate(0, 0, -1)
	in := analytics.ComputeInput{
		Invoices: []domain.Invoice{
			{ID: "i1", Status: domain.InvoiceStatusPending, Amount: 250, DueAt: yesterday},
			{ID: "i2", Status: domain.InvoiceStatusSent, Amount: 80, DueAt: fixedNow.AddDate(0, 0, 7)},
			{ID: "i3", Status: domain.InvoiceStatusPaid, Amount: 999, DueAt: yesterday},
		},
		Range: juneRange,
		Now:   fixedNow,
	}

	model, err := analytics.Compute(in)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	b := model.Billing
	if b.PendingInvoiceCount != 2 || b.PendingInvoiceAmount != 330 {
		t.Errorf("expected 2 pending invoices totaling 330, got %d / %f", b.PendingInvoiceCount, b.PendingInvoiceAmount)
	}
	if b.OverdueCount != 1 || b.OverdueAmount != 250 {
		t.Errorf("expected 1 overdue invoice of 250, got %d / %f", b.OverdueCount, b.OverdueAmount)
	}
}

func TestCompute_PendingReceiptsAndOutstanding(t *testing.T) {
	in := analytics.ComputeInput{
		Invoices: []domain.Invoice{
			{ID: "i1", Status: domain.InvoiceStatusPending, Amount: 100, DueAt: fixedNow.AddDate(0, 0, 3)},
		},
		Receipts: []domain.Receipt{
			{ID: "r1", Status: domain.ReceiptStatusPending, Amount: 40, PaidAt: day(2025, 6, 5)},
			{ID: "r2", Status: domain.ReceiptStatusDraft, Amount: 10, PaidAt: day(2025, 6, 6)},
			{ID: "r3", Status: domain.ReceiptStatusPaid, Amount: 500, PaidAt: day(2025, 6, 7)},
		},
		Range: juneRange,
		Now:   fixedNow,
	}

	model, err := analytics.Compute(in)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	b := model.Billing
	if b.PendingReceiptCount != 2 || b.PendingReceiptAmount != 50 {
		t.Errorf("expected 2 pending receipts totaling 50, got %d / %f", b.PendingReceiptCount, b.PendingReceiptAmount)
	}
	if b.TotalOutstanding != 150 {
		t.Errorf("expected total outstanding 150, got %f", b.TotalOutstanding)
	}
}

func TestCompute_ClientRunningTotal(t *testing.T) {
	in := analytics.ComputeInput{
		Clients: []domain.Client{
			{ID: "c1", Name: "Old", Status: domain.ClientStatusActive, CreatedAt: day(2025, 2, 10)},
			{ID: "c2", Name: "New", Status: domain.ClientStatusProspect, CreatedAt: day(2025, 6, 17)},
		},
		Range: juneRange,
		Now:   fixedNow,
	}

	model, err := analytics.Compute(in)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if model.Clients.NewThisPeriod != 1 {
		t.Errorf("expected 1 new client this period, got %d", model.Clients.NewThisPeriod)
	}
	series := model.Clients.Series
	if series[0].Total != 1 {
		t.Errorf("expected running total to start at 1, got %d", series[0].Total)
	}
	if series[len(series)-1].Total != 2 {
		t.Errorf("expected running total to end at 2, got %d", series[len(series)-1].Total)
	}
}

func TestCompute_StatusBreakdownOmitsZeroCounts(t *testing.T) {
	in := analytics.ComputeInput{
		Clients: []domain.Client{
			{ID: "c1", Status: domain.ClientStatusActive, CreatedAt: day(2025, 1, 1)},
			{ID: "c2", Status: domain.ClientStatusActive, CreatedAt: day(2025, 1, 2)},
			{ID: "c3", Status: domain.ClientStatusInactive, CreatedAt: day(2025, 1, 3)},
		},
		Range: juneRange,
		Now:   fixedNow,
	}

	model, err := analytics.Compute(in)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(model.Clients.ByStatus) != 2 {
		t.Fatalf("expected 2 non-zero statuses, got %d", len(model.Clients.ByStatus))
	}
	for _, s := range model.Clients.ByStatus {
		if s.Percentage < 0 || s.Percentage > 100 {
			t.Errorf("percentage out of range: %f", s.Percentage)
		}
	}
	if rate := model.Clients.RetentionRate; rate < 66.6 || rate > 66.7 {
		t.Errorf("expected retention rate ~66.67, got %f", rate)
	}
}

func TestCompute_TopClientsRanking(t *testing.T) {
	clients := []domain.Client{
		{ID: "c1", Name: "Alpha", Status: domain.ClientStatusActive, CreatedAt: day(2025, 1, 1)},
		{ID: "c2", Name: "Bravo", Status: domain.ClientStatusActive, CreatedAt: day(2025, 1, 1)},
	}
	receipts := make([]domain.Receipt, 0, 8)
	// c1..c7 with revenues 10, 20, ..., 70; c2 ties with c9 at 20.
	for i, rc := range []struct {
		client string
		amount float64
	}{
		{"c1", 10}, {"c2", 20}, {"c3", 30}, {"c4", 40},
		{"c5", 50}, {"c6", 60}, {"c7", 70}, {"c9", 20},
	} {
		receipts = append(receipts, domain.Receipt{
			ID:       string(rune('a' + i)),
			ClientID: rc.client,
			Status:   domain.ReceiptStatusPaid,
			Amount:   rc.amount,
			PaidAt:   day(2025, 6, 9),
		})
	}

	model, err := analytics.Compute(analytics.ComputeInput{
		Clients:  clients,
		Receipts: receipts,
		Range:    juneRange,
		Now:      fixedNow,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	top := model.Revenue.TopClients
	if len(top) != 5 {
		t.Fatalf("expected top list capped at 5, got %d", len(top))
	}
	for i := 1; i < len(top); i++ {
		if top[i].Revenue > top[i-1].Revenue {
			t.Errorf("top clients not sorted non-increasing at %d", i)
		}
	}
	want := []string{"c7", "c6", "c5", "c4", "c3"}
	for i, id := range want {
		if top[i].ClientID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, top[i].ClientID)
		}
	}
	if top[0].Name != "Unknown" {
		t.Errorf("expected unresolved client name to be Unknown, got %s", top[0].Name)
	}
}

func TestCompute_TopClientsStableTieBreak(t *testing.T) {
	receipts := []domain.Receipt{
		{ID: "r1", ClientID: "first", Status: domain.ReceiptStatusPaid, Amount: 100, PaidAt: day(2025, 6, 2)},
		{ID: "r2", ClientID: "second", Status: domain.ReceiptStatusPaid, Amount: 100, PaidAt: day(2025, 6, 3)},
	}

	model, err := analytics.Compute(analytics.ComputeInput{Receipts: receipts, Range: juneRange, Now: fixedNow})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	top := model.Revenue.TopClients
	if top[0].ClientID != "first" || top[1].ClientID != "second" {
		t.Errorf("expected tie broken by collection order, got %s then %s", top[0].ClientID, top[1].ClientID)
	}
}

func TestCompute_ActivityRates(t *testing.T) {
	in := analytics.ComputeInput{
		Events: []domain.Event{
			{ID: "e1", StartsAt: fixedNow.AddDate(0, 0, 1)},
			{ID: "e2", StartsAt: fixedNow.AddDate(0, 0, -2), Status: domain.EventStatusCompleted},
			{ID: "e3", StartsAt: fixedNow.AddDate(0, 0, -1)},
			{ID: "e4", StartsAt: fixedNow.AddDate(0, 0, 3), Status: domain.EventStatusCompleted},
		},
		Range: juneRange,
		Now:   fixedNow,
	}

	model, err := analytics.Compute(in)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	a := model.Activity
	if a.Upcoming != 2 || a.Completed != 2 || a.Total != 4 {
		t.Errorf("expected upcoming=2 completed=2 total=4, got %+v", a)
	}
	if a.CompletionRate != 50 {
		t.Errorf("expected completion rate 50, got %f", a.CompletionRate)
	}
}

func TestCompute_Idempotent(t *testing.T) {
	in := analytics.ComputeInput{
		Clients: []domain.Client{
			{ID: "c1", Name: "Alpha", Status: domain.ClientStatusActive, CreatedAt: day(2025, 6, 5)},
		},
		Receipts: []domain.Receipt{
			{ID: "r1", ClientID: "c1", Status: domain.ReceiptStatusPaid, Amount: 120, ServiceLine: "Coaching", PaidAt: day(2025, 6, 6)},
		},
		Invoices: []domain.Invoice{
			{ID: "i1", Status: domain.InvoiceStatusSent, Amount: 45, DueAt: day(2025, 6, 25)},
		},
		Events: []domain.Event{
			{ID: "e1", StartsAt: day(2025, 6, 20)},
		},
		Range: juneRange,
		Now:   fixedNow,
	}

	first, err := analytics.Compute(in)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	second, err := analytics.Compute(in)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if !bytes.Equal(a, b) {
		t.Error("expected byte-identical output for identical inputs and fixed now")
	}
}

func TestCompute_MalformedRange(t *testing.T) {
	_, err := analytics.Compute(analytics.ComputeInput{
		Range: domain.DateRange{Type: domain.RangeThisMonth, StartDate: "06/01/2025", EndDate: "2025-06-30"},
		Now:   fixedNow,
	})
	if err == nil {
		t.Fatal("expected aggregation error for malformed range, got nil")
	}
	var aggErr *domain.ErrAggregation
	if !errors.As(err, &aggErr) {
		t.Errorf("expected ErrAggregation, got %T", err)
	}
}
