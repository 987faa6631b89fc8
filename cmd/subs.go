package cmd

import (
	"fmt"

	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/config"
	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/money"
	"github.com/theirongolddev/fintrack/internal/store"
	"github.com/theirongolddev/fintrack/internal/subscription"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	flagSubFilter string
	flagSubName   string
	flagSubValue  string
	flagSubDue    string
	flagSubMethod string
	flagSubNotes  string
)

var subsCmd = &cobra.Command{
	Use:     "subs",
	Aliases: []string{"subscriptions"},
	Short:   "List subscriptions and their overdue state",
	RunE:    runSubsList,
}

var subsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a subscription",
	Args:  cobra.NoArgs,
	RunE:  runSubsAdd,
}

var subsEditCmd = &cobra.Command{
	Use:   "edit <id|name>",
	Short: "Edit a subscription; only the given flags change",
	Args:  cobra.ExactArgs(1),
	RunE:  runSubsEdit,
}

var subsPaidCmd = &cobra.Command{
	Use:   "paid <id|name>",
	Short: "Mark a subscription as paid",
	Args:  cobra.ExactArgs(1),
	RunE:  func(_ *cobra.Command, args []string) error { return runSubsStatus(args[0], true) },
}

var subsUndoCmd = &cobra.Command{
	Use:   "undo <id|name>",
	Short: "Move a paid subscription back to open",
	Args:  cobra.ExactArgs(1),
	RunE:  func(_ *cobra.Command, args []string) error { return runSubsStatus(args[0], false) },
}

var subsDeleteCmd = &cobra.Command{
	Use:   "delete <id|name>",
	Short: "Delete a subscription",
	Args:  cobra.ExactArgs(1),
	RunE:  runSubsDelete,
}

func init() {
	subsCmd.Flags().StringVarP(&flagSubFilter, "filter", "f", "all", "Filter: all, open, overdue, paid")

	for _, c := range []*cobra.Command{subsAddCmd, subsEditCmd} {
		c.Flags().StringVar(&flagSubName, "name", "", "Name")
		c.Flags().StringVar(&flagSubValue, "value", "", "Value in R$ (\"49,90\" or \"49.90\")")
		c.Flags().StringVar(&flagSubDue, "due", "", "Due date, YYYY-MM-DD")
		c.Flags().StringVar(&flagSubMethod, "method", "", "Payment method")
		c.Flags().StringVar(&flagSubNotes, "notes", "", "Notes")
	}
	_ = subsAddCmd.MarkFlagRequired("name")
	_ = subsAddCmd.MarkFlagRequired("due")

	subsDeleteCmd.Flags().BoolVarP(&flagYes, "yes", "y", false, "Do not ask for confirmation")

	subsCmd.AddCommand(subsAddCmd, subsEditCmd, subsPaidCmd, subsUndoCmd, subsDeleteCmd)
	rootCmd.AddCommand(subsCmd)
}

// openSubs opens the subscription book and runs an evaluation pass, so
// every command sees up-to-date overdue flags and alerts.
func openSubs(kv store.KV) (*subscription.Book, error) {
	b, err := subscription.Open(kv)
	if err != nil {
		return nil, err
	}
	notices, err := b.Evaluate(today())
	if err != nil {
		return nil, fmt.Errorf("saving subscriptions: %w", err)
	}
	for _, n := range notices {
		log.WithFields(logrus.Fields{"id": n.ID, "times": n.Times}).Info(n.Message())
		warn(n.Message())
	}
	return b, nil
}

func resolveSubscription(b *subscription.Book, arg string) (model.Subscription, error) {
	items := b.Items()
	ids := make([]string, len(items))
	names := make([]string, len(items))
	for i, it := range items {
		ids[i], names[i] = it.ID, it.Name
	}
	id, err := resolveID(arg, ids, names)
	if err != nil {
		return model.Subscription{}, err
	}
	return b.Find(id)
}

func runSubsList(_ *cobra.Command, _ []string) error {
	f, err := subscription.ParseFilter(flagSubFilter)
	if err != nil {
		return err
	}
	return withStore(func(_ config.Config, kv store.KV) error {
		b, err := openSubs(kv)
		if err != nil {
			return err
		}
		items, sum, _, err := b.View(today(), f)
		if err != nil {
			return err
		}

		fmt.Println()
		fmt.Println(cli.RenderTitle(fmt.Sprintf("SUBSCRIPTIONS  %s", today().Display())))
		fmt.Println()

		if len(items) == 0 {
			fmt.Println("  No subscriptions match. Add one with `fintrack subs add`.")
			fmt.Println()
			return nil
		}

		rows := make([][]string, 0, len(items))
		for _, r := range subscription.Rows(items) {
			state := cli.RenderState(string(r.State))
			if r.Delays > 1 {
				state += fmt.Sprintf(" (%dx)", r.Delays)
			}
			rows = append(rows, []string{shortID(r.ID), r.Name, r.Value, r.DueDate, r.PaymentMethod, state})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Title:    "Subscriptions · " + string(f),
			Headers:  []string{"ID", "Name", "Value", "Due", "Method", "Status"},
			Rows:     rows,
			LeftCols: 2,
		}))

		fmt.Print(cli.RenderTable(cli.Table{
			Headers: []string{"State", "Items", "Total"},
			Rows: [][]string{
				{"Open", fmt.Sprint(sum.OpenCount), money.FormatBRL(sum.Open)},
				{"Overdue", fmt.Sprint(sum.OverdueCount), money.FormatBRL(sum.Overdue)},
				{"Paid", fmt.Sprint(sum.PaidCount), money.FormatBRL(sum.Paid)},
			},
		}))
		return nil
	})
}

func runSubsAdd(_ *cobra.Command, _ []string) error {
	return withStore(func(_ config.Config, kv store.KV) error {
		b, err := openSubs(kv)
		if err != nil {
			return err
		}
		it, err := b.Upsert(model.SubscriptionInput{
			Name:          flagSubName,
			Value:         money.Parse(flagSubValue),
			DueDate:       flagSubDue,
			PaymentMethod: flagSubMethod,
			Notes:         flagSubNotes,
		})
		if err != nil {
			return fmt.Errorf("adding subscription: %w", err)
		}
		if _, err := b.Evaluate(today()); err != nil {
			return fmt.Errorf("saving subscriptions: %w", err)
		}
		log.WithField("id", it.ID).Info("subscription saved")
		fmt.Printf("  Subscription saved: %s (%s)\n", it.Name, shortID(it.ID))
		return nil
	})
}

func runSubsEdit(cmd *cobra.Command, args []string) error {
	return withStore(func(_ config.Config, kv store.KV) error {
		b, err := openSubs(kv)
		if err != nil {
			return err
		}
		it, err := resolveSubscription(b, args[0])
		if err != nil {
			return err
		}

		in := model.SubscriptionInput{
			ID:            it.ID,
			Name:          it.Name,
			Value:         it.Value,
			DueDate:       it.DueDate,
			PaymentMethod: it.PaymentMethod,
			Notes:         it.Notes,
		}
		flags := cmd.Flags()
		if flags.Changed("name") {
			in.Name = flagSubName
		}
		if flags.Changed("value") {
			in.Value = money.Parse(flagSubValue)
		}
		if flags.Changed("due") {
			in.DueDate = flagSubDue
		}
		if flags.Changed("method") {
			in.PaymentMethod = flagSubMethod
		}
		if flags.Changed("notes") {
			in.Notes = flagSubNotes
		}

		if _, err := b.Upsert(in); err != nil {
			return fmt.Errorf("updating subscription: %w", err)
		}
		// A new due date can change the overdue state.
		if _, err := b.Evaluate(today()); err != nil {
			return fmt.Errorf("saving subscriptions: %w", err)
		}
		fmt.Printf("  Subscription updated: %s\n", in.Name)
		return nil
	})
}

func runSubsStatus(arg string, paid bool) error {
	return withStore(func(_ config.Config, kv store.KV) error {
		b, err := openSubs(kv)
		if err != nil {
			return err
		}
		it, err := resolveSubscription(b, arg)
		if err != nil {
			return err
		}
		if paid {
			err = b.MarkPaid(it.ID)
		} else {
			err = b.Undo(it.ID)
		}
		if err != nil {
			return fmt.Errorf("updating subscription: %w", err)
		}
		if _, err := b.Evaluate(today()); err != nil {
			return fmt.Errorf("saving subscriptions: %w", err)
		}
		if paid {
			fmt.Printf("  '%s' marked as paid\n", it.Name)
		} else {
			fmt.Printf("  '%s' moved back to open\n", it.Name)
		}
		return nil
	})
}

func runSubsDelete(_ *cobra.Command, args []string) error {
	return withStore(func(_ config.Config, kv store.KV) error {
		b, err := subscription.Open(kv)
		if err != nil {
			return err
		}
		it, err := resolveSubscription(b, args[0])
		if err != nil {
			return err
		}
		if err := confirm(fmt.Sprintf("Delete '%s'?", it.Name)); err != nil {
			return err
		}
		if err := b.Delete(it.ID); err != nil {
			return fmt.Errorf("deleting subscription: %w", err)
		}
		fmt.Printf("  Subscription deleted: %s\n", it.Name)
		return nil
	})
}
