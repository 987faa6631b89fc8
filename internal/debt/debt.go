// Package debt keeps installment plans and their payment ledgers.
package debt

import (
	"fmt"
	"sort"

	"github.com/theirongolddev/fintrack/internal/date"
	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/money"

	"github.com/shopspring/decimal"
)

// NearingDueDays is how close a due date must be to flag the debt.
const NearingDueDays = 7

// TotalPaid sums the payment ledger.
func TotalPaid(d model.Debt) decimal.Decimal {
	total := decimal.Zero
	for _, p := range d.Payments {
		total = total.Add(p.Amount)
	}
	return total
}

// Remaining is TotalAmount minus TotalPaid. It goes negative on overpayment.
func Remaining(d model.Debt) decimal.Decimal {
	return d.TotalAmount.Sub(TotalPaid(d))
}

// Balance is Remaining floored at zero, as shown to the user.
func Balance(d model.Debt) decimal.Decimal {
	return decimal.Max(decimal.Zero, Remaining(d))
}

// PaidOff reports whether payments cover the total.
func PaidOff(d model.Debt) bool {
	return TotalPaid(d).GreaterThanOrEqual(d.TotalAmount)
}

// Progress is the paid share of the total as 0-100. A zero total has no
// progress. The value is not clamped, so overpayment reads above 100.
func Progress(d model.Debt) decimal.Decimal {
	if d.TotalAmount.IsZero() {
		return decimal.Zero
	}
	return TotalPaid(d).Div(d.TotalAmount).Mul(money.Hundred)
}

// Fraction is Progress as 0-1, clamped, for progress bars.
func Fraction(d model.Debt) float64 {
	f := Progress(d).Div(money.Hundred).InexactFloat64()
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}

// SuggestedPayment is the default and maximum for a new payment: the
// remaining balance rounded to cents, or zero when nothing is owed.
func SuggestedPayment(d model.Debt) decimal.Decimal {
	return Balance(d).Round(2)
}

// State is the derived urgency of a debt.
type State string

const (
	StateNormal     State = "normal"
	StateNearingDue State = "nearing-due"
	StateOverdue    State = "overdue"
	StatePaid       State = "paid"
)

// Classify derives d's state on today. A missing or unparseable due date
// never makes a debt overdue or nearing due.
func Classify(d model.Debt, today date.Date) State {
	if !Remaining(d).IsPositive() {
		return StatePaid
	}
	if d.DueDate == "" {
		return StateNormal
	}
	due, err := date.Parse(d.DueDate)
	if err != nil {
		return StateNormal
	}
	if due.Before(today) {
		return StateOverdue
	}
	if days := today.DaysUntil(due); days >= 0 && days <= NearingDueDays {
		return StateNearingDue
	}
	return StateNormal
}

// Filter selects which debts a list shows.
type Filter string

const (
	FilterAll  Filter = "all"
	FilterOpen Filter = "open"
	FilterPaid Filter = "paid"
)

// Filters lists the filters in display order.
var Filters = []Filter{FilterAll, FilterOpen, FilterPaid}

// ParseFilter accepts a filter name, defaulting to FilterAll for "".
func ParseFilter(s string) (Filter, error) {
	switch Filter(s) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterOpen, FilterPaid:
		return Filter(s), nil
	}
	return "", fmt.Errorf("unknown filter %q (want all, open or paid)", s)
}

// Match reports whether d passes f.
func (f Filter) Match(d model.Debt) bool {
	switch f {
	case FilterPaid:
		return PaidOff(d)
	case FilterOpen:
		return !PaidOff(d)
	default:
		return true
	}
}

// Apply returns the debts passing f, sorted by start date ascending.
func Apply(debts []model.Debt, f Filter) []model.Debt {
	out := make([]model.Debt, 0, len(debts))
	for _, d := range debts {
		if f.Match(d) {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartDate.Before(out[j].StartDate)
	})
	return out
}

// Totals aggregates a set of debts.
type Totals struct {
	Owed      decimal.Decimal `json:"owed"`
	Paid      decimal.Decimal `json:"paid"`
	Remaining decimal.Decimal `json:"remaining"`
	Open      int             `json:"open"`
	Overdue   int             `json:"overdue"`
}

// Summarize totals every debt on today.
func Summarize(debts []model.Debt, today date.Date) Totals {
	var t Totals
	for _, d := range debts {
		t.Owed = t.Owed.Add(d.TotalAmount)
		t.Paid = t.Paid.Add(TotalPaid(d))
		t.Remaining = t.Remaining.Add(Balance(d))
		switch Classify(d, today) {
		case StatePaid:
		case StateOverdue:
			t.Overdue++
			t.Open++
		default:
			t.Open++
		}
	}
	return t
}
