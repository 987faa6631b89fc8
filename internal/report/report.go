// Package report builds a Markdown summary of every widget and renders it
// for the terminal.
package report

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/fintrack/internal/date"
	"github.com/theirongolddev/fintrack/internal/debt"
	"github.com/theirongolddev/fintrack/internal/invest"
	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/money"
	"github.com/theirongolddev/fintrack/internal/rates"
	"github.com/theirongolddev/fintrack/internal/subscription"

	"github.com/charmbracelet/glamour"
)

// Data is everything a report covers. Subscriptions are expected to have
// been evaluated for Today already.
type Data struct {
	Today         date.Date
	Subscriptions []model.Subscription
	Debts         []model.Debt
	Wallet        model.Wallet
	Quotes        []rates.Quote
}

// Markdown builds the report source.
func Markdown(d Data) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# fintrack report, %s\n\n", d.Today.Display())
	writeSubscriptions(&b, d.Subscriptions)
	writeDebts(&b, d.Debts, d.Today)
	writeWallet(&b, d.Wallet, d.Quotes)
	writeRates(&b, d.Quotes)
	return b.String()
}

func writeSubscriptions(b *strings.Builder, items []model.Subscription) {
	s := subscription.Summarize(items)
	b.WriteString("## Subscriptions\n\n")
	b.WriteString("| Status | Count | Total |\n|---|---:|---:|\n")
	fmt.Fprintf(b, "| Open | %d | %s |\n", s.OpenCount, money.FormatBRL(s.Open))
	fmt.Fprintf(b, "| Overdue | %d | %s |\n", s.OverdueCount, money.FormatBRL(s.Overdue))
	fmt.Fprintf(b, "| Paid | %d | %s |\n\n", s.PaidCount, money.FormatBRL(s.Paid))

	b.WriteString("### Overdue\n\n")
	overdue := subscription.Rows(subscription.Apply(items, subscription.FilterOverdue))
	if len(overdue) == 0 {
		b.WriteString("Nothing overdue.\n\n")
		return
	}
	for _, r := range overdue {
		fmt.Fprintf(b, "- **%s** %s, due %s", escape(r.Name), r.Value, r.DueDate)
		if r.Delays > 1 {
			fmt.Fprintf(b, " (late %d times)", r.Delays)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func writeDebts(b *strings.Builder, debts []model.Debt, today date.Date) {
	t := debt.Summarize(debts, today)
	b.WriteString("## Debts\n\n")
	fmt.Fprintf(b, "%s owed, %s paid, %s remaining across %d open debt(s).\n\n",
		money.FormatBRL(t.Owed), money.FormatBRL(t.Paid), money.FormatBRL(t.Remaining), t.Open)
	if len(debts) == 0 {
		return
	}
	b.WriteString("| Description | Total | Paid | Remaining | Due | Progress | State |\n")
	b.WriteString("|---|---:|---:|---:|---|---:|---|\n")
	for _, r := range debt.Rows(debt.Apply(debts, debt.FilterAll), today) {
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s | %s | %s |\n",
			escape(r.Description), r.Total, r.Paid, r.Remaining, r.DueDate, r.Percent, r.State)
	}
	b.WriteString("\n")
}

func writeWallet(b *strings.Builder, w model.Wallet, quotes []rates.Quote) {
	r := invest.ProfitLoss(w)
	b.WriteString("## Wallet\n\n")
	b.WriteString("| Bucket | Initial | Current | P/L | % |\n|---|---:|---:|---:|---:|\n")
	for _, p := range append(r.Lines(), r.Total) {
		label := p.Category.Label()
		if p.Category == "total" {
			label = "**Total**"
		}
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s |\n", label,
			money.FormatBRL(p.Initial), money.FormatBRL(p.Current), money.Signed(p.Value, money.BRL), p.PercentString())
	}
	b.WriteString("\n")

	if q, ok := rates.Best(quotes...); ok {
		if usd, ok := invest.ConvertBRL(r.Dollar.Current, q.USDPerBRL); ok {
			fmt.Fprintf(b, "Dollar bucket is worth about %s.\n\n", money.FormatUSD(usd))
		}
	}
}

func writeRates(b *strings.Builder, quotes []rates.Quote) {
	if len(quotes) == 0 {
		return
	}
	b.WriteString("## Exchange rate\n\n")
	for _, q := range quotes {
		fmt.Fprintf(b, "- %s: %s\n", q.Source, q.Status())
	}
	b.WriteString("\n")
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// Render renders md for a terminal of the given width. style is a glamour
// standard style name such as "dark", "light" or "notty".
func Render(md, style string, width int) (string, error) {
	if style == "" {
		style = "dark"
	}
	opts := []glamour.TermRendererOption{glamour.WithStandardStyle(style)}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("creating renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("rendering report: %w", err)
	}
	return out, nil
}
