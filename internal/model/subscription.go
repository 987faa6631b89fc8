// Package model defines the persisted records of the three widgets.
package model

import (
	"github.com/theirongolddev/fintrack/internal/date"

	"github.com/shopspring/decimal"
)

// Status is the stored payment state of a subscription.
// "Overdue" is never stored here; it is the derived IsOverdue flag.
type Status string

const (
	StatusOpen Status = "open"
	StatusPaid Status = "paid"
)

// Subscription is one recurring bill.
type Subscription struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Value         decimal.Decimal `json:"value"`
	DueDate       string          `json:"dueDate"` // YYYY-MM-DD, kept raw so bad input survives a load
	PaymentMethod string          `json:"paymentMethod,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	Status        Status          `json:"status"`
	DelayHistory  []date.Date     `json:"delayHistory"`

	// IsOverdue is recomputed on every evaluation pass. It is persisted so
	// the next pass can tell a newly overdue item from one already flagged.
	IsOverdue bool `json:"isOverdue"`
}

// Paid reports whether the subscription has been marked paid.
func (s Subscription) Paid() bool { return s.Status == StatusPaid }

// Due parses DueDate.
func (s Subscription) Due() (date.Date, error) { return date.Parse(s.DueDate) }

// RepeatedlyLate reports whether the item went overdue on more than one day.
func (s Subscription) RepeatedlyLate() bool { return len(s.DelayHistory) > 1 }

// SubscriptionInput is the editable subset of a Subscription, as
// submitted by a form or command.
type SubscriptionInput struct {
	ID            string
	Name          string
	Value         decimal.Decimal
	DueDate       string
	PaymentMethod string
	Notes         string
}
