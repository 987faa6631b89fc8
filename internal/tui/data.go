package tui

import (
	"context"
	"errors"

	"github.com/theirongolddev/fintrack/internal/debt"
	"github.com/theirongolddev/fintrack/internal/invest"
	"github.com/theirongolddev/fintrack/internal/rates"
	"github.com/theirongolddev/fintrack/internal/store"
	"github.com/theirongolddev/fintrack/internal/subscription"

	tea "github.com/charmbracelet/bubbletea"
)

// DataLoadedMsg is sent when the three books have been read from the store.
// A book that failed to load is nil and Err says why.
type DataLoadedMsg struct {
	Subs   *subscription.Book
	Debts  *debt.Book
	Wallet *invest.Book
	Err    error
}

// RateMsg carries the outcome of one exchange-rate fetch.
type RateMsg struct {
	Quote rates.Quote
}

// loadDataCmd opens every book in the background. Each widget loads on its
// own so one corrupt document does not hide the other two.
func loadDataCmd(kv store.KV, weights invest.Weights) tea.Cmd {
	return func() tea.Msg {
		if kv == nil {
			return DataLoadedMsg{Err: errors.New("no data store configured")}
		}

		var (
			msg  DataLoadedMsg
			errs []error
			err  error
		)
		if msg.Subs, err = subscription.Open(kv); err != nil {
			errs = append(errs, err)
		}
		if msg.Debts, err = debt.Open(kv); err != nil {
			errs = append(errs, err)
		}
		if msg.Wallet, err = invest.OpenWallet(kv, weights); err != nil {
			errs = append(errs, err)
		}
		msg.Err = errors.Join(errs...)
		return msg
	}
}

// fetchRateCmd fetches one exchange-rate source. Failures come back as an
// unavailable quote, never as an error.
func fetchRateCmd(rc *rates.Client, ep rates.Endpoint) tea.Cmd {
	return func() tea.Msg {
		return RateMsg{Quote: rc.Fetch(context.Background(), ep)}
	}
}
