package model

import "github.com/shopspring/decimal"

// Category is an investment bucket held in the wallet.
type Category string

const (
	Crypto      Category = "crypto"
	FixedIncome Category = "fixedIncome"
	BRStocks    Category = "brStocks"
	USStocks    Category = "usStocks"
	USETF       Category = "usEtf"

	// DollarCombined is not stored. Setting it splits the value across
	// USStocks and USETF.
	DollarCombined Category = "dollarCombined"
)

// Categories lists the stored buckets in display order.
var Categories = []Category{Crypto, FixedIncome, BRStocks, USStocks, USETF}

var categoryLabels = map[Category]string{
	Crypto:         "Crypto",
	FixedIncome:    "Fixed income",
	BRStocks:       "BR stocks",
	USStocks:       "US stocks",
	USETF:          "US ETFs",
	DollarCombined: "Dollar (US stocks + ETFs)",
}

// Label returns the display name of c.
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

// Valid reports whether c names a stored bucket or DollarCombined.
func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Wallet tracks the cost basis and latest value of each bucket.
type Wallet struct {
	Initial map[Category]decimal.Decimal `json:"initial"`
	Current map[Category]decimal.Decimal `json:"current"`
}

// NewWallet returns a wallet with every bucket at zero.
func NewWallet() Wallet {
	w := Wallet{
		Initial: make(map[Category]decimal.Decimal, len(Categories)),
		Current: make(map[Category]decimal.Decimal, len(Categories)),
	}
	for _, c := range Categories {
		w.Initial[c] = decimal.Zero
		w.Current[c] = decimal.Zero
	}
	return w
}

// Normalize fills missing buckets with zero, for wallets read from older
// or hand-edited documents.
func (w *Wallet) Normalize() {
	if w.Initial == nil {
		w.Initial = make(map[Category]decimal.Decimal, len(Categories))
	}
	if w.Current == nil {
		w.Current = make(map[Category]decimal.Decimal, len(Categories))
	}
	for _, c := range Categories {
		if _, ok := w.Initial[c]; !ok {
			w.Initial[c] = decimal.Zero
		}
		if _, ok := w.Current[c]; !ok {
			w.Current[c] = decimal.Zero
		}
	}
}
