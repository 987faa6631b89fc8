// Package invest splits a contribution across investment buckets and
// tracks the resulting wallet's profit and loss.
package invest

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/money"

	"github.com/shopspring/decimal"
)

// ErrInvalidAllocation is returned for weights that do not sum to 100%.
var ErrInvalidAllocation = errors.New("invest: allocation percentages must sum to 100")

// Weights are the bucket shares of a contribution, as fractions.
// USStocks and USETF are shares of the dollar bucket, not of the total.
type Weights struct {
	Crypto      decimal.Decimal
	Dollar      decimal.Decimal
	FixedIncome decimal.Decimal
	BRStocks    decimal.Decimal
	USStocks    decimal.Decimal
	USETF       decimal.Decimal
}

// DefaultWeights is 10% crypto, 45% dollar, 18% fixed income and 27% BR
// stocks, with the dollar bucket split 60/40 between US stocks and ETFs.
func DefaultWeights() Weights {
	return Weights{
		Crypto:      decimal.RequireFromString("0.10"),
		Dollar:      decimal.RequireFromString("0.45"),
		FixedIncome: decimal.RequireFromString("0.18"),
		BRStocks:    decimal.RequireFromString("0.27"),
		USStocks:    decimal.RequireFromString("0.60"),
		USETF:       decimal.RequireFromString("0.40"),
	}
}

// Percentages is Weights expressed as 0-100 values, as kept in config.
type Percentages struct {
	Crypto      float64
	Dollar      float64
	FixedIncome float64
	BRStocks    float64
	USStocks    float64
	USETF       float64
}

// WeightsFromPercent validates p and converts it to Weights.
func WeightsFromPercent(p Percentages) (Weights, error) {
	pct := func(v float64) decimal.Decimal { return decimal.NewFromFloat(v).Div(money.Hundred) }
	w := Weights{
		Crypto:      pct(p.Crypto),
		Dollar:      pct(p.Dollar),
		FixedIncome: pct(p.FixedIncome),
		BRStocks:    pct(p.BRStocks),
		USStocks:    pct(p.USStocks),
		USETF:       pct(p.USETF),
	}
	return w, w.Validate()
}

// Validate checks that both levels sum to one and nothing is negative.
func (w Weights) Validate() error {
	for _, v := range []decimal.Decimal{w.Crypto, w.Dollar, w.FixedIncome, w.BRStocks, w.USStocks, w.USETF} {
		if v.IsNegative() {
			return fmt.Errorf("%w: negative share %s", ErrInvalidAllocation, v)
		}
	}
	one := decimal.NewFromInt(1)
	if top := money.Sum(w.Crypto, w.Dollar, w.FixedIncome, w.BRStocks); !top.Equal(one) {
		return fmt.Errorf("%w: buckets sum to %s%%", ErrInvalidAllocation, top.Mul(money.Hundred))
	}
	if split := w.USStocks.Add(w.USETF); !split.Equal(one) {
		return fmt.Errorf("%w: dollar split sums to %s%%", ErrInvalidAllocation, split.Mul(money.Hundred))
	}
	return nil
}

// Allocation is one contribution split into buckets, in BRL.
type Allocation struct {
	Total       decimal.Decimal `json:"total"`
	Crypto      decimal.Decimal `json:"crypto"`
	Dollar      decimal.Decimal `json:"dollar"`
	FixedIncome decimal.Decimal `json:"fixedIncome"`
	BRStocks    decimal.Decimal `json:"brStocks"`
	USStocks    decimal.Decimal `json:"usStocks"`
	USETF       decimal.Decimal `json:"usEtf"`
}

// Allocate splits total using the default weights.
func Allocate(total decimal.Decimal) Allocation {
	return DefaultWeights().Allocate(total)
}

// Allocate splits total by w. A non-positive total allocates nothing.
//
// The last bucket at each level takes the remainder so the parts always
// add up to the whole exactly.
func (w Weights) Allocate(total decimal.Decimal) Allocation {
	if !total.IsPositive() {
		return Allocation{}
	}
	a := Allocation{
		Total:       total,
		Crypto:      total.Mul(w.Crypto),
		Dollar:      total.Mul(w.Dollar),
		FixedIncome: total.Mul(w.FixedIncome),
	}
	a.BRStocks = total.Sub(a.Crypto).Sub(a.Dollar).Sub(a.FixedIncome)
	a.USStocks = a.Dollar.Mul(w.USStocks)
	a.USETF = a.Dollar.Sub(a.USStocks)
	return a
}

// IsZero reports whether nothing was allocated.
func (a Allocation) IsZero() bool { return !a.Total.IsPositive() }

// Bucket returns the amount for a stored category, or the dollar bucket
// for DollarCombined.
func (a Allocation) Bucket(c model.Category) decimal.Decimal {
	switch c {
	case model.Crypto:
		return a.Crypto
	case model.FixedIncome:
		return a.FixedIncome
	case model.BRStocks:
		return a.BRStocks
	case model.USStocks:
		return a.USStocks
	case model.USETF:
		return a.USETF
	case model.DollarCombined:
		return a.Dollar
	}
	return decimal.Zero
}

// DollarView is the dollar bucket converted to USD.
type DollarView struct {
	Dollar   decimal.Decimal `json:"dollar"`
	USStocks decimal.Decimal `json:"usStocks"`
	USETF    decimal.Decimal `json:"usEtf"`
}

// InUSD converts the dollar bucket with a USD-per-BRL rate. It reports
// false when the rate is not usable, in which case USD figures are hidden.
func (a Allocation) InUSD(usdPerBRL decimal.Decimal) (DollarView, bool) {
	if !usdPerBRL.IsPositive() {
		return DollarView{}, false
	}
	return DollarView{
		Dollar:   a.Dollar.Mul(usdPerBRL),
		USStocks: a.USStocks.Mul(usdPerBRL),
		USETF:    a.USETF.Mul(usdPerBRL),
	}, true
}

// ConvertBRL converts a plain BRL amount to USD. It reports false when the
// amount is not positive or the rate is unusable.
func ConvertBRL(brl, usdPerBRL decimal.Decimal) (decimal.Decimal, bool) {
	if !brl.IsPositive() || !usdPerBRL.IsPositive() {
		return decimal.Zero, false
	}
	return brl.Mul(usdPerBRL), true
}
