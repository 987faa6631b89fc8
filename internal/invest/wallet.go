package invest

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/money"
	"github.com/theirongolddev/fintrack/internal/store"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidAmount is returned for a non-positive contribution or a
	// negative bucket value.
	ErrInvalidAmount = errors.New("invest: invalid amount")
	// ErrUnknownCategory is returned for a category the wallet does not hold.
	ErrUnknownCategory = errors.New("invest: unknown category")
)

// AddAllocation adds a contribution to the wallet's cost basis.
func AddAllocation(w model.Wallet, a Allocation) (model.Wallet, error) {
	if a.IsZero() {
		return w, fmt.Errorf("%w: contribution must be positive", ErrInvalidAmount)
	}
	w = clone(w)
	for _, c := range model.Categories {
		w.Initial[c] = w.Initial[c].Add(a.Bucket(c))
	}
	return w, nil
}

// SetCurrent records the latest value of one bucket. DollarCombined is
// split across US stocks and ETFs in the proportion of their cost basis,
// or by defaultSplit (the US stocks share) when there is no basis yet.
func SetCurrent(w model.Wallet, c model.Category, v, defaultSplit decimal.Decimal) (model.Wallet, error) {
	if !c.Valid() {
		return w, fmt.Errorf("%w: %s", ErrUnknownCategory, c)
	}
	if v.IsNegative() {
		return w, fmt.Errorf("%w: %s is negative", ErrInvalidAmount, v)
	}
	w = clone(w)
	if c != model.DollarCombined {
		w.Current[c] = v
		return w, nil
	}

	ratio := defaultSplit
	basis := w.Initial[model.USStocks].Add(w.Initial[model.USETF])
	if basis.IsPositive() {
		ratio = w.Initial[model.USStocks].Div(basis)
	}
	w.Current[model.USStocks] = v.Mul(ratio)
	w.Current[model.USETF] = v.Sub(w.Current[model.USStocks])
	return w, nil
}

// EditInitial overwrites the cost basis. Buckets absent from values are
// set to zero.
func EditInitial(w model.Wallet, values map[model.Category]decimal.Decimal) (model.Wallet, error) {
	w = clone(w)
	for _, c := range model.Categories {
		v := values[c]
		if v.IsNegative() {
			return w, fmt.Errorf("%w: %s is negative", ErrInvalidAmount, c.Label())
		}
		w.Initial[c] = v
	}
	return w, nil
}

func clone(w model.Wallet) model.Wallet {
	out := model.NewWallet()
	for c, v := range w.Initial {
		out.Initial[c] = v
	}
	for c, v := range w.Current {
		out.Current[c] = v
	}
	return out
}

// Book owns the persisted wallet.
type Book struct {
	kv           store.KV
	wallet       model.Wallet
	defaultSplit decimal.Decimal
}

// OpenWallet loads the wallet from kv. A missing document is an all-zero
// wallet. weights supply the dollar split used before any basis exists.
func OpenWallet(kv store.KV, weights Weights) (*Book, error) {
	b := &Book{kv: kv, wallet: model.NewWallet(), defaultSplit: weights.USStocks}
	if _, err := store.LoadJSON(kv, store.KeyWallet, &b.wallet); err != nil {
		return nil, fmt.Errorf("loading wallet: %w", err)
	}
	b.wallet.Normalize()
	return b, nil
}

// Wallet returns a copy of the current wallet.
func (b *Book) Wallet() model.Wallet { return clone(b.wallet) }

// ProfitLoss reports P/L for the current wallet.
func (b *Book) ProfitLoss() Report { return ProfitLoss(b.wallet) }

func (b *Book) commit(w model.Wallet) error {
	if err := store.SaveJSON(b.kv, store.KeyWallet, w); err != nil {
		return err
	}
	b.wallet = w
	return nil
}

// SaveAllocation adds a contribution to the cost basis.
func (b *Book) SaveAllocation(a Allocation) error {
	w, err := AddAllocation(b.wallet, a)
	if err != nil {
		return err
	}
	return b.commit(w)
}

// SetCurrent records the latest value of one bucket.
func (b *Book) SetCurrent(c model.Category, v decimal.Decimal) error {
	w, err := SetCurrent(b.wallet, c, v, b.defaultSplit)
	if err != nil {
		return err
	}
	return b.commit(w)
}

// EditInitial overwrites the cost basis.
func (b *Book) EditInitial(values map[model.Category]decimal.Decimal) error {
	w, err := EditInitial(b.wallet, values)
	if err != nil {
		return err
	}
	return b.commit(w)
}

// Reset deletes the stored wallet. Callers confirm with the user first.
func (b *Book) Reset() error {
	if err := b.kv.Delete(store.KeyWallet); err != nil {
		return err
	}
	b.wallet = model.NewWallet()
	return nil
}

// Totals returns the summed cost basis and current value.
func Totals(w model.Wallet) (initial, current decimal.Decimal) {
	for _, c := range model.Categories {
		initial = initial.Add(w.Initial[c])
		current = current.Add(w.Current[c])
	}
	return initial, current
}

// DollarCombined returns the US stocks plus ETFs basis and value.
func DollarCombined(w model.Wallet) (initial, current decimal.Decimal) {
	return money.Sum(w.Initial[model.USStocks], w.Initial[model.USETF]),
		money.Sum(w.Current[model.USStocks], w.Current[model.USETF])
}
