package client

import (
	"strconv"
	"strings"
	"time"

	"github.com/nivelo/crm-dashboard-bfa-go/internal/domain"
)

// The upstream CRM API is not strictly typed: field names vary in casing,
// numbers sometimes arrive as strings, and optional fields go missing.
// Raw records are normalized here, exactly once, into the strict domain
// types. The aggregation engine never sees a loose field.

func strField(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

// numField reads a monetary amount, clamped to non-negative.
func numField(m map[string]any, keys ...string) float64 {
	for _, k := range keys {
		v, ok := m[k]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case float64:
			return maxf(n)
		case int:
			return maxf(float64(n))
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
				return maxf(f)
			}
		}
	}
	return 0
}

func maxf(f float64) float64 {
	if f < 0 {
		return 0
	}
	return f
}

// timeField parses the first present timestamp field, accepting RFC3339
// (with or without fractional seconds) and bare calendar dates. Returns the
// zero time when nothing parses.
func timeField(m map[string]any, keys ...string) time.Time {
	for _, k := range keys {
		s, ok := m[k].(string)
		if !ok || s == "" {
			continue
		}
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
			if t, err := time.Parse(layout, s); err == nil {
				return t
			}
		}
	}
	return time.Time{}
}

func statusField(m map[string]any) string {
	return strings.ToLower(strField(m, "status", "state"))
}

func normalizeClient(m map[string]any) domain.Client {
	return domain.Client{
		ID:        strField(m, "id", "_id", "clientId", "client_id"),
		Name:      strField(m, "name", "fullName", "full_name"),
		Status:    statusField(m),
		CreatedAt: timeField(m, "createdAt", "created_at", "creationDate"),
	}
}

func normalizeReceipt(m map[string]any) domain.Receipt {
	line := strField(m, "serviceLine", "service_line", "service")
	if line == "" {
		line = "Other"
	}
	return domain.Receipt{
		ID:          strField(m, "id", "_id", "receiptId", "receipt_id"),
		ClientID:    strField(m, "clientId", "client_id", "customerId", "customer_id"),
		Amount:      numField(m, "amount", "total"),
		Status:      statusField(m),
		ServiceLine: line,
		PaidAt:      timeField(m, "paidAt", "paid_at", "createdAt", "created_at"),
	}
}

func normalizeInvoice(m map[string]any) domain.Invoice {
	return domain.Invoice{
		ID:        strField(m, "id", "_id", "invoiceId", "invoice_id"),
		Amount:    numField(m, "amount", "total"),
		Status:    statusField(m),
		DueAt:     timeField(m, "dueDate", "due_date", "dueAt"),
		CreatedAt: timeField(m, "createdAt", "created_at"),
	}
}

func normalizeEvent(m map[string]any) domain.Event {
	return domain.Event{
		ID:       strField(m, "id", "_id", "eventId", "event_id"),
		StartsAt: timeField(m, "startTime", "start_time", "start", "startsAt"),
		Status:   statusField(m),
	}
}
