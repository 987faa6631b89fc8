package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/rates"

	"github.com/spf13/cobra"
)

var ratesCmd = &cobra.Command{
	Use:   "rates",
	Short: "Fetch the USD/BRL exchange rate from every source",
	Args:  cobra.NoArgs,
	RunE:  runRates,
}

func init() {
	rootCmd.AddCommand(ratesCmd)
}

func runRates(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	once, periodic := cfg.Endpoints()
	rc := rates.NewClient(cfg.RequestTimeout(), log)
	quotes := rc.FetchAll(context.Background(), once, periodic)

	fmt.Println()
	fmt.Println(cli.RenderTitle("EXCHANGE RATES"))
	fmt.Println()

	now := time.Now()
	rows := make([][]string, 0, len(quotes))
	for _, q := range quotes {
		usdPerBRL, brlPerUSD := "-", "-"
		if q.Available() {
			usdPerBRL = q.USDPerBRL.StringFixed(4)
			brlPerUSD = q.BRLPerUSD.StringFixed(4)
		}
		status := "ok"
		if !q.Available() {
			status = cli.RenderMuted(q.ErrText())
		}
		rows = append(rows, []string{string(q.Source), brlPerUSD, usdPerBRL, cli.FormatAge(q.FetchedAt, now), status})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers:  []string{"Source", "R$ per US$", "US$ per R$", "Fetched", "Status"},
		Rows:     rows,
		LeftCols: 1,
	}))

	if _, ok := rates.Best(quotes...); !ok {
		return fmt.Errorf("no exchange-rate source answered")
	}
	return nil
}
