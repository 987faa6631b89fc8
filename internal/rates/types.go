package rates

import (
	"time"

	"github.com/shopspring/decimal"
)

// Source names a rate provider.
type Source string

const (
	AwesomeAPI  Source = "awesomeapi"
	CurrencyAPI Source = "currencyapi"
)

// Endpoint describes where a source publishes its rate and how to read it.
type Endpoint struct {
	Source Source
	URL    string
	// Path is the JSONPath of the rate inside the response.
	Path string
	// BRLPerUSD is set when the published figure is reais per dollar
	// rather than dollars per real.
	BRLPerUSD bool
}

// Default endpoints.
var (
	AwesomeEndpoint = Endpoint{
		Source:    AwesomeAPI,
		URL:       "https://economia.awesomeapi.com.br/json/last/USD-BRL",
		Path:      "$.USDBRL.bid",
		BRLPerUSD: true,
	}
	CurrencyEndpoint = Endpoint{
		Source: CurrencyAPI,
		URL:    "https://cdn.jsdelivr.net/npm/@fawazahmed0/currency-api@latest/v1/currencies/brl.json",
		Path:   "$.brl.usd",
	}
)

// Quote is the outcome of one fetch. A quote with Err set is unavailable
// and its rates are zero.
type Quote struct {
	Source    Source          `json:"source"`
	USDPerBRL decimal.Decimal `json:"usdPerBrl"`
	BRLPerUSD decimal.Decimal `json:"brlPerUsd"`
	FetchedAt time.Time       `json:"fetchedAt"`
	Err       error           `json:"-"`
}

// Available reports whether the quote carries a usable rate.
func (q Quote) Available() bool {
	return q.Err == nil && q.USDPerBRL.IsPositive()
}

// Status is a short human description of the quote.
func (q Quote) Status() string {
	if !q.Available() {
		return "unavailable"
	}
	return "1 USD = R$ " + q.BRLPerUSD.StringFixed(4)
}

// ErrText returns the fetch error text, or "".
func (q Quote) ErrText() string {
	if q.Err == nil {
		return ""
	}
	return q.Err.Error()
}

// Best returns the first available quote.
func Best(quotes ...Quote) (Quote, bool) {
	for _, q := range quotes {
		if q.Available() {
			return q, true
		}
	}
	return Quote{}, false
}
