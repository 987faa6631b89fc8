package subscription

import (
	"github.com/theirongolddev/fintrack/internal/date"
	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/money"
)

// RowState drives how a list row is styled.
type RowState string

const (
	RowOpen              RowState = "open"
	RowPaid              RowState = "paid"
	RowOverdue           RowState = "overdue"
	RowRepeatedlyOverdue RowState = "repeatedly-overdue"
)

// Action is something the user can do to a row.
type Action string

const (
	ActionMarkPaid Action = "paid"
	ActionUndo     Action = "undo"
	ActionEdit     Action = "edit"
	ActionDelete   Action = "delete"
)

// Row is the display projection of one subscription.
type Row struct {
	ID            string
	Name          string
	Value         string
	DueDate       string
	PaymentMethod string
	Notes         string
	Badge         string
	State         RowState
	Delays        int
	Actions       []Action
}

// Rows projects items for display. Order is preserved.
func Rows(items []model.Subscription) []Row {
	rows := make([]Row, 0, len(items))
	for _, it := range items {
		rows = append(rows, rowOf(it))
	}
	return rows
}

func rowOf(it model.Subscription) Row {
	r := Row{
		ID:            it.ID,
		Name:          it.Name,
		Value:         money.FormatBRL(it.Value),
		DueDate:       date.DisplayString(it.DueDate),
		PaymentMethod: it.PaymentMethod,
		Notes:         it.Notes,
		Delays:        len(it.DelayHistory),
		State:         RowOpen,
	}
	if r.PaymentMethod == "" {
		r.PaymentMethod = "N/A"
	}

	switch {
	case it.Paid():
		r.State = RowPaid
		r.Badge = "Paid"
		r.Actions = []Action{ActionUndo, ActionEdit, ActionDelete}
		return r
	case it.IsOverdue && it.RepeatedlyLate():
		r.State = RowRepeatedlyOverdue
	case it.IsOverdue:
		r.State = RowOverdue
	}
	r.Actions = []Action{ActionMarkPaid, ActionEdit, ActionDelete}
	return r
}
