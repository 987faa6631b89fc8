package cmd

import (
	"fmt"

	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/config"
	"github.com/theirongolddev/fintrack/internal/debt"
	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/money"
	"github.com/theirongolddev/fintrack/internal/store"

	"github.com/spf13/cobra"
)

var (
	flagDebtFilter      string
	flagDebtDescription string
	flagDebtTotal       string
	flagDebtStart       string
	flagDebtDue         string
	flagDebtNotes       string
	flagPayAmount       string
	flagPayDate         string
)

var debtsCmd = &cobra.Command{
	Use:   "debts",
	Short: "List debts with their payment progress",
	RunE:  runDebtsList,
}

var debtsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a debt",
	Args:  cobra.NoArgs,
	RunE:  runDebtsAdd,
}

var debtsEditCmd = &cobra.Command{
	Use:   "edit <id|description>",
	Short: "Edit a debt; only the given flags change",
	Args:  cobra.ExactArgs(1),
	RunE:  runDebtsEdit,
}

var debtsPayCmd = &cobra.Command{
	Use:   "pay <id|description>",
	Short: "Record a payment (defaults to the remaining balance)",
	Args:  cobra.ExactArgs(1),
	RunE:  runDebtsPay,
}

var debtsShowCmd = &cobra.Command{
	Use:   "show <id|description>",
	Short: "Show a debt and its payment history",
	Args:  cobra.ExactArgs(1),
	RunE:  runDebtsShow,
}

var debtsDeleteCmd = &cobra.Command{
	Use:   "delete <id|description>",
	Short: "Delete a debt and its payments",
	Args:  cobra.ExactArgs(1),
	RunE:  runDebtsDelete,
}

func init() {
	debtsCmd.Flags().StringVarP(&flagDebtFilter, "filter", "f", "all", "Filter: all, open, paid")

	for _, c := range []*cobra.Command{debtsAddCmd, debtsEditCmd} {
		c.Flags().StringVar(&flagDebtDescription, "description", "", "Description")
		c.Flags().StringVar(&flagDebtTotal, "total", "", "Total amount in R$")
		c.Flags().StringVar(&flagDebtStart, "start", "", "Start date, YYYY-MM-DD (default today)")
		c.Flags().StringVar(&flagDebtDue, "due", "", "Due date, YYYY-MM-DD (optional)")
		c.Flags().StringVar(&flagDebtNotes, "notes", "", "Notes")
	}
	_ = debtsAddCmd.MarkFlagRequired("description")
	_ = debtsAddCmd.MarkFlagRequired("total")

	debtsPayCmd.Flags().StringVar(&flagPayAmount, "amount", "", "Amount in R$ (default the remaining balance)")
	debtsPayCmd.Flags().StringVar(&flagPayDate, "date", "", "Payment date, YYYY-MM-DD (default today)")

	debtsDeleteCmd.Flags().BoolVarP(&flagYes, "yes", "y", false, "Do not ask for confirmation")

	debtsCmd.AddCommand(debtsAddCmd, debtsEditCmd, debtsPayCmd, debtsShowCmd, debtsDeleteCmd)
	rootCmd.AddCommand(debtsCmd)
}

func resolveDebt(b *debt.Book, arg string) (model.Debt, error) {
	debts := b.Debts()
	ids := make([]string, len(debts))
	names := make([]string, len(debts))
	for i, d := range debts {
		ids[i], names[i] = d.ID, d.Description
	}
	id, err := resolveID(arg, ids, names)
	if err != nil {
		return model.Debt{}, err
	}
	return b.Find(id)
}

func runDebtsList(_ *cobra.Command, _ []string) error {
	f, err := debt.ParseFilter(flagDebtFilter)
	if err != nil {
		return err
	}
	return withStore(func(_ config.Config, kv store.KV) error {
		b, err := debt.Open(kv)
		if err != nil {
			return err
		}
		now := today()
		all := b.Debts()
		shown := debt.Apply(all, f)

		fmt.Println()
		fmt.Println(cli.RenderTitle(fmt.Sprintf("DEBTS  %s", now.Display())))
		fmt.Println()

		if len(shown) == 0 {
			fmt.Println("  No debts match. Add one with `fintrack debts add`.")
			fmt.Println()
			return nil
		}

		rows := make([][]string, 0, len(shown))
		for _, r := range debt.Rows(shown, now) {
			if r.State == debt.StateOverdue || r.State == debt.StateNearingDue {
				warn(fmt.Sprintf("'%s' is %s", r.Description, r.State))
			}
			rows = append(rows, []string{
				shortID(r.ID),
				r.Description,
				r.Total,
				r.Paid,
				r.Remaining,
				r.DueDate,
				cli.RenderProgressBar(r.Progress, 12),
				cli.RenderState(string(r.State)),
			})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Title:    "Debts · " + string(f),
			Headers:  []string{"ID", "Description", "Total", "Paid", "Remaining", "Due", "Progress", "State"},
			Rows:     rows,
			LeftCols: 2,
		}))

		t := debt.Summarize(all, now)
		fmt.Print(cli.RenderTable(cli.Table{
			Headers: []string{"Owed", "Paid", "Remaining", "Open", "Overdue"},
			Rows: [][]string{{
				money.FormatBRL(t.Owed),
				money.FormatBRL(t.Paid),
				money.FormatBRL(t.Remaining),
				fmt.Sprint(t.Open),
				fmt.Sprint(t.Overdue),
			}},
		}))
		return nil
	})
}

func runDebtsAdd(_ *cobra.Command, _ []string) error {
	start, err := parseDateFlag(flagDebtStart)
	if err != nil {
		return fmt.Errorf("parsing --start: %w", err)
	}
	return withStore(func(_ config.Config, kv store.KV) error {
		b, err := debt.Open(kv)
		if err != nil {
			return err
		}
		d, err := b.Upsert(model.DebtInput{
			Description: flagDebtDescription,
			TotalAmount: money.Parse(flagDebtTotal),
			StartDate:   start,
			DueDate:     flagDebtDue,
			Notes:       flagDebtNotes,
		})
		if err != nil {
			return fmt.Errorf("adding debt: %w", err)
		}
		log.WithField("id", d.ID).Info("debt saved")
		fmt.Printf("  Debt saved: %s, %s (%s)\n", d.Description, money.FormatBRL(d.TotalAmount), shortID(d.ID))
		return nil
	})
}

func runDebtsEdit(cmd *cobra.Command, args []string) error {
	return withStore(func(_ config.Config, kv store.KV) error {
		b, err := debt.Open(kv)
		if err != nil {
			return err
		}
		d, err := resolveDebt(b, args[0])
		if err != nil {
			return err
		}

		in := model.DebtInput{
			ID:          d.ID,
			Description: d.Description,
			TotalAmount: d.TotalAmount,
			StartDate:   d.StartDate,
			DueDate:     d.DueDate,
			Notes:       d.Notes,
		}
		flags := cmd.Flags()
		if flags.Changed("description") {
			in.Description = flagDebtDescription
		}
		if flags.Changed("total") {
			in.TotalAmount = money.Parse(flagDebtTotal)
		}
		if flags.Changed("start") {
			if in.StartDate, err = parseDateFlag(flagDebtStart); err != nil {
				return fmt.Errorf("parsing --start: %w", err)
			}
		}
		if flags.Changed("due") {
			in.DueDate = flagDebtDue
		}
		if flags.Changed("notes") {
			in.Notes = flagDebtNotes
		}

		if _, err := b.Upsert(in); err != nil {
			return fmt.Errorf("updating debt: %w", err)
		}
		fmt.Printf("  Debt updated: %s\n", in.Description)
		return nil
	})
}

func runDebtsPay(_ *cobra.Command, args []string) error {
	on, err := parseDateFlag(flagPayDate)
	if err != nil {
		return fmt.Errorf("parsing --date: %w", err)
	}
	return withStore(func(_ config.Config, kv store.KV) error {
		b, err := debt.Open(kv)
		if err != nil {
			return err
		}
		d, err := resolveDebt(b, args[0])
		if err != nil {
			return err
		}

		amount := debt.SuggestedPayment(d)
		if flagPayAmount != "" {
			amount = money.Parse(flagPayAmount)
		}
		if !amount.IsPositive() && flagPayAmount == "" {
			fmt.Printf("  '%s' is already paid off\n", d.Description)
			return nil
		}

		d, err = b.AddPayment(d.ID, amount, on)
		if err != nil {
			return fmt.Errorf("recording payment: %w", err)
		}
		log.WithField("id", d.ID).WithField("amount", money.Plain(amount)).Info("payment recorded")
		fmt.Printf("  Payment of %s recorded for '%s'. Remaining: %s\n",
			money.FormatBRL(amount), d.Description, money.FormatBRL(debt.Balance(d)))
		if debt.PaidOff(d) {
			fmt.Println("  Paid off!")
		}
		return nil
	})
}

func runDebtsShow(_ *cobra.Command, args []string) error {
	return withStore(func(_ config.Config, kv store.KV) error {
		b, err := debt.Open(kv)
		if err != nil {
			return err
		}
		d, err := resolveDebt(b, args[0])
		if err != nil {
			return err
		}
		r := debt.Rows([]model.Debt{d}, today())[0]

		fmt.Println()
		fmt.Println(cli.RenderTitle(d.Description))
		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{
			Headers: []string{"Field", "Value"},
			Rows: [][]string{
				{"ID", d.ID},
				{"Total", r.Total},
				{"Paid", r.Paid},
				{"Remaining", r.Remaining},
				{"Progress", cli.RenderProgressBar(r.Progress, 20)},
				{"Started", d.StartDate.Display()},
				{"Due", r.DueDate},
				{"State", cli.RenderState(string(r.State))},
			},
		}))

		if len(d.Payments) == 0 {
			fmt.Println(cli.RenderMuted("  No payments yet."))
			fmt.Println()
			return nil
		}
		rows := make([][]string, 0, len(d.Payments))
		for i, p := range d.Payments {
			rows = append(rows, []string{fmt.Sprint(i + 1), p.Date.Display(), money.FormatBRL(p.Amount)})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Payments",
			Headers: []string{"#", "Date", "Amount"},
			Rows:    rows,
		}))
		return nil
	})
}

func runDebtsDelete(_ *cobra.Command, args []string) error {
	return withStore(func(_ config.Config, kv store.KV) error {
		b, err := debt.Open(kv)
		if err != nil {
			return err
		}
		d, err := resolveDebt(b, args[0])
		if err != nil {
			return err
		}
		if err := confirm(fmt.Sprintf("Delete '%s' and its %s?", d.Description, cli.Plural(len(d.Payments), "payment"))); err != nil {
			return err
		}
		if err := b.Delete(d.ID); err != nil {
			return fmt.Errorf("deleting debt: %w", err)
		}
		fmt.Printf("  Debt deleted: %s\n", d.Description)
		return nil
	})
}
