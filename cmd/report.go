package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/theirongolddev/fintrack/internal/config"
	"github.com/theirongolddev/fintrack/internal/debt"
	"github.com/theirongolddev/fintrack/internal/invest"
	"github.com/theirongolddev/fintrack/internal/rates"
	"github.com/theirongolddev/fintrack/internal/report"
	"github.com/theirongolddev/fintrack/internal/store"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	flagReportRaw   bool
	flagReportStyle string
	flagReportWidth int
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print a summary of subscriptions, debts and the wallet",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().BoolVar(&flagReportRaw, "raw", false, "Print the Markdown source instead of rendering it")
	reportCmd.Flags().StringVar(&flagReportStyle, "style", "", "Render style: dark, light, notty (default dark, notty when piped)")
	reportCmd.Flags().IntVar(&flagReportWidth, "width", 0, "Wrap width (default terminal width)")
	reportCmd.Flags().BoolVar(&flagNoRates, "offline", false, "Skip the exchange-rate lookup")
	rootCmd.AddCommand(reportCmd)
}

func runReport(_ *cobra.Command, _ []string) error {
	return withStore(func(cfg config.Config, kv store.KV) error {
		subs, err := openSubs(kv)
		if err != nil {
			return err
		}
		debts, err := debt.Open(kv)
		if err != nil {
			return err
		}
		weights, err := cfg.Weights()
		if err != nil {
			return fmt.Errorf("reading allocation: %w", err)
		}
		wallet, err := invest.OpenWallet(kv, weights)
		if err != nil {
			return err
		}

		var quotes []rates.Quote
		if !flagNoRates {
			once, periodic := cfg.Endpoints()
			quotes = rates.NewClient(cfg.RequestTimeout(), log).FetchAll(context.Background(), once, periodic)
		}

		md := report.Markdown(report.Data{
			Today:         today(),
			Subscriptions: subs.Items(),
			Debts:         debts.Debts(),
			Wallet:        wallet.Wallet(),
			Quotes:        quotes,
		})
		if flagReportRaw {
			fmt.Print(md)
			return nil
		}

		style, width := flagReportStyle, flagReportWidth
		fd := int(os.Stdout.Fd()) //nolint:gosec // stdout descriptor fits in int
		tty := term.IsTerminal(fd)
		if style == "" && !tty {
			style = "notty"
		}
		if width == 0 && tty {
			if w, _, err := term.GetSize(fd); err == nil {
				width = w - 2
			}
		}
		out, err := report.Render(md, style, width)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	})
}
