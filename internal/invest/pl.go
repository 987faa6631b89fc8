package invest

import (
	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/money"

	"github.com/shopspring/decimal"
)

// PL is the profit or loss of one line of the wallet.
type PL struct {
	Category model.Category   `json:"category"`
	Initial  decimal.Decimal  `json:"initial"`
	Current  decimal.Decimal  `json:"current"`
	Value    decimal.Decimal  `json:"value"`
	Percent  *decimal.Decimal `json:"percent,omitempty"` // nil when Initial is zero
}

func newPL(c model.Category, initial, current decimal.Decimal) PL {
	p := PL{Category: c, Initial: initial, Current: current, Value: current.Sub(initial)}
	if initial.IsPositive() {
		pct := p.Value.Div(initial).Mul(money.Hundred)
		p.Percent = &pct
	}
	return p
}

// Sign is 1 for profit, -1 for loss and 0 when flat.
func (p PL) Sign() int { return p.Value.Sign() }

// PercentString is the P/L percentage with two decimals, or "" when
// undefined.
func (p PL) PercentString() string {
	if p.Percent == nil {
		return ""
	}
	return money.Percent(*p.Percent)
}

// Report is the wallet P/L broken down by bucket.
type Report struct {
	Buckets []PL `json:"buckets"` // one per stored category
	Dollar  PL   `json:"dollar"`  // US stocks + ETFs
	Total   PL   `json:"total"`
}

// ProfitLoss computes P/L for every bucket, the combined dollar line and
// the total.
func ProfitLoss(w model.Wallet) Report {
	var r Report
	for _, c := range model.Categories {
		r.Buckets = append(r.Buckets, newPL(c, w.Initial[c], w.Current[c]))
	}
	di, dc := DollarCombined(w)
	r.Dollar = newPL(model.DollarCombined, di, dc)
	ti, tc := Totals(w)
	r.Total = newPL("total", ti, tc)
	return r
}

// Lines returns the P/L rows as the wallet view shows them: the BRL
// buckets followed by the combined dollar line.
func (r Report) Lines() []PL {
	var out []PL
	for _, p := range r.Buckets {
		if p.Category == model.USStocks || p.Category == model.USETF {
			continue
		}
		out = append(out, p)
	}
	return append(out, r.Dollar)
}

// Bucket returns the P/L for c.
func (r Report) Bucket(c model.Category) (PL, bool) {
	if c == model.DollarCombined {
		return r.Dollar, true
	}
	for _, p := range r.Buckets {
		if p.Category == c {
			return p, true
		}
	}
	return PL{}, false
}
