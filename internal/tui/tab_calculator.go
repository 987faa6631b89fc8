package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/invest"
	"github.com/theirongolddev/fintrack/internal/money"
	"github.com/theirongolddev/fintrack/internal/rates"
	"github.com/theirongolddev/fintrack/internal/tui/components"
	"github.com/theirongolddev/fintrack/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

type calcState struct {
	amount decimal.Decimal
	alloc  invest.Allocation
}

func (a App) updateCalculatorKeys(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "enter", "a":
		v := &formValues{}
		if a.calc.amount.IsPositive() {
			v.amount = money.Plain(a.calc.amount)
		}
		return a, a.openForm(formAmount, newAmountForm(v), v), true

	case "S":
		if a.wallet == nil {
			a.bookUnavailable("wallet")
			return a, nil, true
		}
		if err := a.wallet.SaveAllocation(a.calc.alloc); err != nil {
			if errors.Is(err, invest.ErrInvalidAmount) {
				a.flash("Enter an amount first")
				return a, nil, true
			}
			a.flashErr(err)
			return a, nil, true
		}
		a.log.WithField("total", money.Plain(a.calc.alloc.Total)).Info("allocation saved to wallet")
		a.flash(money.FormatBRL(a.calc.alloc.Total) + " added to the wallet")
		a.recompute()
		return a, nil, true
	}
	return a, nil, false
}

type allocLine struct {
	label  string
	share  decimal.Decimal // fraction of its parent
	brl    decimal.Decimal
	usd    decimal.Decimal
	hasUSD bool
	sub    bool
}

func (a App) allocationLines(q rates.Quote, haveRate bool) []allocLine {
	w, al := a.weights, a.calc.alloc

	var usd invest.DollarView
	if haveRate {
		usd, haveRate = al.InUSD(q.USDPerBRL)
	}
	return []allocLine{
		{label: "Crypto", share: w.Crypto, brl: al.Crypto},
		{label: "Dollar", share: w.Dollar, brl: al.Dollar, usd: usd.Dollar, hasUSD: haveRate},
		{label: "US stocks", share: w.USStocks, brl: al.USStocks, usd: usd.USStocks, hasUSD: haveRate, sub: true},
		{label: "US ETFs", share: w.USETF, brl: al.USETF, usd: usd.USETF, hasUSD: haveRate, sub: true},
		{label: "Fixed income", share: w.FixedIncome, brl: al.FixedIncome},
		{label: "BR stocks", share: w.BRStocks, brl: al.BRStocks},
	}
}

func (a App) renderCalculatorTab(cw int) string {
	t := theme.Active
	q, haveRate := a.bestQuote()

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	subStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	headStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Bold(true)
	usdStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface)

	var b strings.Builder

	totalNote := "press enter to set"
	if a.calc.amount.IsPositive() {
		totalNote = "S saves it to the wallet"
	}
	dollarValue := "—"
	if usd, ok := invest.ConvertBRL(a.calc.alloc.Dollar, q.USDPerBRL); ok {
		dollarValue = money.FormatUSD(usd)
	}
	b.WriteString(components.MetricRow([]components.Metric{
		{Label: "To invest", Value: money.FormatBRL(a.calc.amount), Note: totalNote},
		{Label: "Dollar bucket", Value: dollarValue, Note: money.FormatBRL(a.calc.alloc.Dollar)},
		{Label: "Exchange rate", Value: q.Status(), Note: string(q.Source)},
	}, cw))
	b.WriteString("\n")

	innerW := components.CardInnerWidth(cw)
	shareW, amountW := 8, 16
	labelW := innerW - shareW - 3*amountW
	if labelW < 14 {
		labelW = 14
	}

	var body strings.Builder
	body.WriteString(headStyle.Render(truncStr(fmt.Sprintf("%-*s%*s%*s%*s%*s",
		labelW, "Bucket", shareW, "Share", amountW, "R$", amountW, "Plain", amountW, "US$"), innerW)))
	body.WriteString("\n")

	for _, l := range a.allocationLines(q, haveRate) {
		label := l.label
		style := valueStyle
		if l.sub {
			label = "  └ " + label
			style = subStyle
		}
		share := l.share.Mul(money.Hundred).StringFixed(0) + "%"
		row := style.Render(fmt.Sprintf("%-*s%*s%*s%*s", labelW, label, shareW, share, amountW, money.FormatBRL(l.brl), amountW, money.Plain(l.brl)))
		usd := ""
		if l.hasUSD {
			usd = money.FormatUSD(l.usd)
		}
		row += usdStyle.Render(fmt.Sprintf("%*s", amountW, usd))
		if pad := innerW - lipgloss.Width(row); pad > 0 {
			row += valueStyle.Render(strings.Repeat(" ", pad))
		}
		body.WriteString(row)
		body.WriteString("\n")
	}
	body.WriteString(labelStyle.Render(strings.Repeat("─", innerW)))
	body.WriteString("\n")
	body.WriteString(valueStyle.Bold(true).Render(fmt.Sprintf("%-*s%*s%*s%*s", labelW, "Total", shareW, "100%", amountW, money.FormatBRL(a.calc.alloc.Total), amountW, money.Plain(a.calc.alloc.Total))))

	b.WriteString(components.ContentCard("Allocation", body.String(), cw))
	b.WriteString("\n")
	b.WriteString(a.renderRatesCard(cw))
	return b.String()
}

func (a App) renderRatesCard(cw int) string {
	t := theme.Active
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	errStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface)

	line := func(name, when string, q rates.Quote) string {
		s := labelStyle.Render(fmt.Sprintf("%-14s", name))
		if q.Source == "" {
			return s + labelStyle.Render("waiting...")
		}
		if !q.Available() {
			return s + errStyle.Render("unavailable: "+truncStr(q.ErrText(), components.CardInnerWidth(cw)-16))
		}
		return s + valueStyle.Render(q.Status()) + labelStyle.Render("  "+when)
	}

	var body strings.Builder
	body.WriteString(line("AwesomeAPI", "fetched at startup", a.onceQuote))
	body.WriteString("\n")
	body.WriteString(line("Currency API", "updated "+cli.FormatAge(a.lastRate, time.Now()), a.periodicQuote))
	body.WriteString("\n")
	body.WriteString(labelStyle.Render(fmt.Sprintf("Refreshed every %s · press r to refresh now", a.cfg.RefreshInterval())))
	return components.ContentCard("Exchange rates", body.String(), cw)
}
