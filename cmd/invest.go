package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/config"
	"github.com/theirongolddev/fintrack/internal/invest"
	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/money"
	"github.com/theirongolddev/fintrack/internal/rates"
	"github.com/theirongolddev/fintrack/internal/store"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	flagCalcPlain bool
	flagNoRates   bool
	flagInitial   = map[model.Category]*string{}
)

var investCmd = &cobra.Command{
	Use:   "invest",
	Short: "Allocation calculator and investment wallet",
	RunE:  runWallet,
}

var investCalcCmd = &cobra.Command{
	Use:   "calc <amount>",
	Short: "Split an amount across the investment buckets",
	Args:  cobra.ExactArgs(1),
	RunE:  runInvestCalc,
}

var investSaveCmd = &cobra.Command{
	Use:   "save <amount>",
	Short: "Split an amount and add it to the wallet's cost basis",
	Args:  cobra.ExactArgs(1),
	RunE:  runInvestSave,
}

var investSetCmd = &cobra.Command{
	Use:   "set <category> <value>",
	Short: "Record the current value of a bucket",
	Long: "Record the current value of a bucket. Categories: crypto, fixedIncome, brStocks,\n" +
		"usStocks, usEtf, or dollarCombined to split one figure across US stocks and ETFs.",
	Args: cobra.ExactArgs(2),
	RunE: runInvestSet,
}

var investEditInitialCmd = &cobra.Command{
	Use:   "edit-initial",
	Short: "Overwrite the wallet's cost basis; only the given flags change",
	Args:  cobra.NoArgs,
	RunE:  runInvestEditInitial,
}

var investResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset every wallet bucket to zero",
	Args:  cobra.NoArgs,
	RunE:  runInvestReset,
}

var investWalletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Show the wallet with profit and loss",
	Args:  cobra.NoArgs,
	RunE:  runWallet,
}

func init() {
	investCalcCmd.Flags().BoolVar(&flagCalcPlain, "plain", false, "Print plain values (12.34) for copying")
	for _, c := range []*cobra.Command{investCalcCmd, investWalletCmd, investCmd} {
		c.Flags().BoolVar(&flagNoRates, "offline", false, "Skip the exchange-rate lookup")
	}

	for _, c := range model.Categories {
		flagInitial[c] = investEditInitialCmd.Flags().String(string(c), "", c.Label()+" cost basis in R$")
	}

	investResetCmd.Flags().BoolVarP(&flagYes, "yes", "y", false, "Do not ask for confirmation")

	investCmd.AddCommand(investCalcCmd, investSaveCmd, investSetCmd, investEditInitialCmd, investResetCmd, investWalletCmd)
	rootCmd.AddCommand(investCmd)
}

func parseAmountArg(s string) (decimal.Decimal, error) {
	d, ok := money.ParseStrict(s)
	if !ok {
		return decimal.Zero, fmt.Errorf("%q is not an amount", s)
	}
	return d, nil
}

// fetchQuote returns the best available USD quote, trying the periodic
// source first. It never fails; an unavailable quote hides USD figures.
func fetchQuote(cfg config.Config) (rates.Quote, bool) {
	if flagNoRates {
		return rates.Quote{}, false
	}
	once, periodic := cfg.Endpoints()
	rc := rates.NewClient(cfg.RequestTimeout(), log)
	quotes := rc.FetchAll(context.Background(), periodic, once)
	return rates.Best(quotes...)
}

func runInvestCalc(_ *cobra.Command, args []string) error {
	total, err := parseAmountArg(args[0])
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	weights, err := cfg.Weights()
	if err != nil {
		return fmt.Errorf("reading allocation: %w", err)
	}
	a := weights.Allocate(total)

	if flagCalcPlain {
		for _, l := range allocationRows(weights, a) {
			fmt.Printf("%s\t%s\n", l.key, money.Plain(l.brl))
		}
		return nil
	}

	q, haveRate := fetchQuote(cfg)
	var usd invest.DollarView
	if haveRate {
		usd, haveRate = a.InUSD(q.USDPerBRL)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("ALLOCATION  " + money.FormatBRL(total)))
	fmt.Println()

	rows := make([][]string, 0, 7)
	for _, l := range allocationRows(weights, a) {
		usdCell := ""
		if haveRate {
			switch l.key {
			case "dollar":
				usdCell = money.FormatUSD(usd.Dollar)
			case "usStocks":
				usdCell = money.FormatUSD(usd.USStocks)
			case "usEtf":
				usdCell = money.FormatUSD(usd.USETF)
			}
		}
		rows = append(rows, []string{l.label, l.share.Mul(money.Hundred).StringFixed(0) + "%", money.FormatBRL(l.brl), usdCell})
	}
	rows = append(rows, []string{"---"}, []string{"Total", "100%", money.FormatBRL(a.Total), ""})
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Bucket", "Share", "R$", "US$"},
		Rows:    rows,
	}))

	if haveRate {
		fmt.Printf("  %s (%s)\n\n", q.Status(), q.Source)
	} else {
		fmt.Println(cli.RenderMuted("  Exchange rate unavailable, USD values hidden."))
		fmt.Println()
	}
	return nil
}

type allocRow struct {
	key   string
	label string
	share decimal.Decimal
	brl   decimal.Decimal
}

func allocationRows(w invest.Weights, a invest.Allocation) []allocRow {
	return []allocRow{
		{"crypto", "Crypto", w.Crypto, a.Crypto},
		{"dollar", "Dollar", w.Dollar, a.Dollar},
		{"usStocks", "  US stocks", w.USStocks, a.USStocks},
		{"usEtf", "  US ETFs", w.USETF, a.USETF},
		{"fixedIncome", "Fixed income", w.FixedIncome, a.FixedIncome},
		{"brStocks", "BR stocks", w.BRStocks, a.BRStocks},
	}
}

// withWallet opens the wallet book with the configured split.
func withWallet(fn func(cfg config.Config, b *invest.Book) error) error {
	return withStore(func(cfg config.Config, kv store.KV) error {
		weights, err := cfg.Weights()
		if err != nil {
			return fmt.Errorf("reading allocation: %w", err)
		}
		b, err := invest.OpenWallet(kv, weights)
		if err != nil {
			return err
		}
		return fn(cfg, b)
	})
}

func runInvestSave(_ *cobra.Command, args []string) error {
	total, err := parseAmountArg(args[0])
	if err != nil {
		return err
	}
	return withWallet(func(cfg config.Config, b *invest.Book) error {
		weights, _ := cfg.Weights()
		if err := b.SaveAllocation(weights.Allocate(total)); err != nil {
			return fmt.Errorf("saving allocation: %w", err)
		}
		log.WithField("total", money.Plain(total)).Info("allocation saved to wallet")
		fmt.Printf("  %s added to the wallet\n", money.FormatBRL(total))
		return nil
	})
}

func runInvestSet(_ *cobra.Command, args []string) error {
	c, err := parseCategory(args[0])
	if err != nil {
		return err
	}
	v, err := parseAmountArg(args[1])
	if err != nil {
		return err
	}
	return withWallet(func(_ config.Config, b *invest.Book) error {
		if err := b.SetCurrent(c, v); err != nil {
			return fmt.Errorf("updating %s: %w", c.Label(), err)
		}
		p, _ := b.ProfitLoss().Bucket(c)
		fmt.Printf("  %s is now %s, P/L %s\n", c.Label(), money.FormatBRL(p.Current), cli.FormatPL(p))
		return nil
	})
}

// parseCategory accepts a category key or its label, ignoring case,
// spaces, dashes and underscores.
func parseCategory(s string) (model.Category, error) {
	norm := func(x string) string {
		return strings.NewReplacer(" ", "", "-", "", "_", "").Replace(strings.ToLower(x))
	}
	want := norm(s)
	for _, c := range append(append([]model.Category{}, model.Categories...), model.DollarCombined) {
		if norm(string(c)) == want || norm(c.Label()) == want {
			return c, nil
		}
	}
	if want == "dollar" {
		return model.DollarCombined, nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

func runInvestEditInitial(cmd *cobra.Command, _ []string) error {
	return withWallet(func(_ config.Config, b *invest.Book) error {
		w := b.Wallet()
		values := make(map[model.Category]decimal.Decimal, len(model.Categories))
		changed := 0
		for _, c := range model.Categories {
			values[c] = w.Initial[c]
			if cmd.Flags().Changed(string(c)) {
				v, err := parseAmountArg(*flagInitial[c])
				if err != nil {
					return err
				}
				values[c] = v
				changed++
			}
		}
		if changed == 0 {
			return fmt.Errorf("nothing to change; pass one or more of --%s", strings.Join(categoryKeys(), ", --"))
		}
		if err := b.EditInitial(values); err != nil {
			return fmt.Errorf("editing initial values: %w", err)
		}
		fmt.Println("  Initial values updated")
		return nil
	})
}

func categoryKeys() []string {
	keys := make([]string, len(model.Categories))
	for i, c := range model.Categories {
		keys[i] = string(c)
	}
	return keys
}

func runInvestReset(_ *cobra.Command, _ []string) error {
	return withWallet(func(_ config.Config, b *invest.Book) error {
		if err := confirm("Reset the wallet? Every bucket goes back to zero."); err != nil {
			return err
		}
		if err := b.Reset(); err != nil {
			return fmt.Errorf("resetting wallet: %w", err)
		}
		fmt.Println("  Wallet reset")
		return nil
	})
}

func runWallet(_ *cobra.Command, _ []string) error {
	return withWallet(func(cfg config.Config, b *invest.Book) error {
		r := b.ProfitLoss()

		fmt.Println()
		fmt.Println(cli.RenderTitle("INVESTMENT WALLET"))
		fmt.Println()

		rows := make([][]string, 0, len(r.Buckets)+3)
		for _, p := range r.Lines() {
			rows = append(rows, []string{p.Category.Label(), money.FormatBRL(p.Initial), money.FormatBRL(p.Current), cli.FormatPL(p)})
		}
		rows = append(rows, []string{"---"})
		rows = append(rows, []string{"Total", money.FormatBRL(r.Total.Initial), money.FormatBRL(r.Total.Current), cli.FormatPL(r.Total)})
		fmt.Print(cli.RenderTable(cli.Table{
			Headers: []string{"Bucket", "Initial", "Current", "P/L"},
			Rows:    rows,
		}))

		if q, ok := fetchQuote(cfg); ok {
			if usd, ok := invest.ConvertBRL(r.Dollar.Current, q.USDPerBRL); ok {
				fmt.Printf("  Dollar bucket: %s at %s\n\n", money.FormatUSD(usd), q.Status())
			}
		}
		return nil
	})
}
