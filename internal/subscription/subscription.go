// Package subscription tracks recurring bills and their overdue history.
//
// An item is open or paid. Overdue is derived: an open item whose due
// date is before today. Each day an item is newly found overdue is
// recorded once in its delay history.
package subscription

import (
	"fmt"
	"sort"

	"github.com/theirongolddev/fintrack/internal/date"
	"github.com/theirongolddev/fintrack/internal/model"

	"github.com/shopspring/decimal"
)

// NoticeKind classifies an evaluation alert.
type NoticeKind string

const (
	NoticeOverdue  NoticeKind = "overdue"
	NoticeRepeated NoticeKind = "repeated-delay"
)

// Notice is raised when an evaluation pass records a new delay.
type Notice struct {
	Kind  NoticeKind `json:"kind"`
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	On    date.Date  `json:"on"`
	Times int        `json:"times"` // len(DelayHistory) after recording
}

// Message is the user-facing text for n.
func (n Notice) Message() string {
	if n.Kind == NoticeRepeated {
		return fmt.Sprintf("Alert: '%s' is overdue again (%d times)", n.Name, n.Times)
	}
	return fmt.Sprintf("Alert: '%s' is overdue!", n.Name)
}

// Evaluate recomputes IsOverdue for every item against today, in place.
//
// An item that becomes overdue records today in its delay history unless
// today is already there; only a fresh record yields notices. Items with
// an unparseable due date are left untouched. changed reports whether any
// item was modified and the collection needs saving.
func Evaluate(items []model.Subscription, today date.Date) (notices []Notice, changed bool) {
	for i := range items {
		it := &items[i]
		due, err := it.Due()
		if err != nil {
			continue
		}

		nowOverdue := due.Before(today) && !it.Paid()
		if nowOverdue && !it.IsOverdue {
			it.IsOverdue = true
			changed = true
			if containsDate(it.DelayHistory, today) {
				continue
			}
			it.DelayHistory = append(it.DelayHistory, today)
			notices = append(notices, Notice{
				Kind: NoticeOverdue, ID: it.ID, Name: it.Name, On: today, Times: len(it.DelayHistory),
			})
			if it.RepeatedlyLate() {
				notices = append(notices, Notice{
					Kind: NoticeRepeated, ID: it.ID, Name: it.Name, On: today, Times: len(it.DelayHistory),
				})
			}
			continue
		}

		if it.IsOverdue != nowOverdue {
			it.IsOverdue = nowOverdue
			changed = true
		}
	}
	return notices, changed
}

func containsDate(ds []date.Date, d date.Date) bool {
	for _, x := range ds {
		if x == d {
			return true
		}
	}
	return false
}

// Summary holds the three headline totals.
type Summary struct {
	Open    decimal.Decimal `json:"open"`
	Overdue decimal.Decimal `json:"overdue"`
	Paid    decimal.Decimal `json:"paid"`

	OpenCount    int `json:"open_count"`
	OverdueCount int `json:"overdue_count"`
	PaidCount    int `json:"paid_count"`
}

// Summarize totals values by state. Each item lands in exactly one bucket.
func Summarize(items []model.Subscription) Summary {
	var s Summary
	for _, it := range items {
		switch {
		case it.Paid():
			s.Paid = s.Paid.Add(it.Value)
			s.PaidCount++
		case it.IsOverdue:
			s.Overdue = s.Overdue.Add(it.Value)
			s.OverdueCount++
		default:
			s.Open = s.Open.Add(it.Value)
			s.OpenCount++
		}
	}
	return s
}

// Filter selects which items a list shows.
type Filter string

const (
	FilterAll     Filter = "all"
	FilterOpen    Filter = "open"
	FilterOverdue Filter = "overdue"
	FilterPaid    Filter = "paid"
)

// Filters lists the filters in display order.
var Filters = []Filter{FilterAll, FilterOpen, FilterOverdue, FilterPaid}

// ParseFilter accepts a filter name, defaulting to FilterAll for "".
func ParseFilter(s string) (Filter, error) {
	if s == "" {
		return FilterAll, nil
	}
	for _, f := range Filters {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown filter %q (want all, open, overdue or paid)", s)
}

// Match reports whether it passes f.
func (f Filter) Match(it model.Subscription) bool {
	switch f {
	case FilterPaid:
		return it.Paid()
	case FilterOverdue:
		return it.IsOverdue && !it.Paid()
	case FilterOpen:
		return it.Status == model.StatusOpen && !it.IsOverdue
	default:
		return true
	}
}

// Apply returns the items passing f, sorted by due date ascending.
// Items with unparseable due dates sort last, in their original order.
func Apply(items []model.Subscription, f Filter) []model.Subscription {
	out := make([]model.Subscription, 0, len(items))
	for _, it := range items {
		if f.Match(it) {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		di, erri := out[i].Due()
		dj, errj := out[j].Due()
		switch {
		case erri != nil:
			return false
		case errj != nil:
			return true
		}
		return di.Before(dj)
	})
	return out
}
