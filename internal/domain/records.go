package domain

import "time"

// Normalized CRM records. Raw upstream payloads are loosely typed; the
// client layer maps them into these strict representations exactly once,
// so the aggregation engine never has to branch on casing or missing fields.

// Client status values (normalized to lowercase).
const (
	ClientStatusActive    = "active"
	ClientStatusProspect  = "prospect"
	ClientStatusCompleted = "completed"
	ClientStatusInactive  = "inactive"
)

// Receipt status values.
const (
	ReceiptStatusPaid    = "paid"
	ReceiptStatusPending = "pending"
	ReceiptStatusDraft   = "draft"
)

// Invoice status values.
const (
	InvoiceStatusPending = "pending"
	InvoiceStatusSent    = "sent"
	InvoiceStatusPaid    = "paid"
)

// EventStatusCompleted marks a calendar event that already happened.
const EventStatusCompleted = "completed"

// Client is a CRM client record.
type Client struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// Receipt is a payment record tied to a client. PaidAt falls back to the
// creation timestamp when the upstream record carries no payment date.
type Receipt struct {
	ID          string    `json:"id"`
	ClientID    string    `json:"clientId"`
	Amount      float64   `json:"amount"`
	Status      string    `json:"status"`
	ServiceLine string    `json:"serviceLine"`
	PaidAt      time.Time `json:"paidAt"`
}

// Invoice is an outgoing bill.
type Invoice struct {
	ID        string    `json:"id"`
	Amount    float64   `json:"amount"`
	Status    string    `json:"status"`
	DueAt     time.Time `json:"dueAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// Event is a calendar event; only counted, never summed.
type Event struct {
	ID       string    `json:"id"`
	StartsAt time.Time `json:"startsAt"`
	Status   string    `json:"status"`
}
