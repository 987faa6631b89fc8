package debt

import (
	"github.com/theirongolddev/fintrack/internal/date"
	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/money"
)

// Row is the display projection of one debt.
type Row struct {
	ID          string
	Description string
	Total       string
	Paid        string
	Remaining   string
	DueDate     string
	Notes       string
	Progress    float64 // 0-1, clamped
	Percent     string
	State       State
	Payments    int
}

// Rows projects debts for display on today. Order is preserved.
func Rows(debts []model.Debt, today date.Date) []Row {
	rows := make([]Row, 0, len(debts))
	for _, d := range debts {
		due := "N/A"
		if d.DueDate != "" {
			due = date.DisplayString(d.DueDate)
		}
		rows = append(rows, Row{
			ID:          d.ID,
			Description: d.Description,
			Total:       money.FormatBRL(d.TotalAmount),
			Paid:        money.FormatBRL(TotalPaid(d)),
			Remaining:   money.FormatBRL(Balance(d)),
			DueDate:     due,
			Notes:       d.Notes,
			Progress:    Fraction(d),
			Percent:     Progress(d).StringFixed(0) + "%",
			State:       Classify(d, today),
			Payments:    len(d.Payments),
		})
	}
	return rows
}
