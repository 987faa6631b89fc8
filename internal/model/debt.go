package model

import (
	"github.com/theirongolddev/fintrack/internal/date"

	"github.com/shopspring/decimal"
)

// Payment is one installment recorded against a debt.
type Payment struct {
	Amount decimal.Decimal `json:"amount"`
	Date   date.Date       `json:"date"`
}

// Debt is a loan or installment plan with an append-only payment ledger.
type Debt struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	StartDate   date.Date       `json:"startDate"`
	DueDate     string          `json:"dueDate,omitempty"` // optional, YYYY-MM-DD
	Notes       string          `json:"notes,omitempty"`
	Payments    []Payment       `json:"payments"`
}

// DebtInput is the editable subset of a Debt.
type DebtInput struct {
	ID          string
	Description string
	TotalAmount decimal.Decimal
	StartDate   date.Date
	DueDate     string
	Notes       string
}
