package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/fintrack/internal/invest"
	"github.com/theirongolddev/fintrack/internal/money"
	"github.com/theirongolddev/fintrack/internal/tui/components"
	"github.com/theirongolddev/fintrack/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func (a App) updateWalletKeys(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "enter", "u", "i", "R":
		if a.wallet == nil {
			a.bookUnavailable("wallet")
			return a, nil, true
		}
	}

	switch key {
	case "enter", "u":
		lines := a.pl.Lines()
		if len(lines) == 0 {
			return a, nil, true
		}
		p := lines[a.walletCursor]
		v := &formValues{category: p.Category, amount: money.Plain(p.Current)}
		return a, a.openForm(formCurrent, newCurrentForm(v), v), true

	case "i":
		v := newInitialValues(a.wallet.Wallet())
		return a, a.openForm(formInitial, newInitialForm(v), v), true

	case "R":
		v := &formValues{}
		f := newConfirmForm("Reset the wallet?", "Initial and current values of every bucket go back to zero.", "Reset", v)
		return a, a.openForm(formResetWallet, f, v), true
	}
	return a, nil, false
}

func plStyle(p invest.PL) lipgloss.Style {
	t := theme.Active
	return lipgloss.NewStyle().Foreground(t.Sign(p.Sign())).Background(t.Surface)
}

func plText(p invest.PL) string {
	s := money.Signed(p.Value, money.BRL)
	if pct := p.PercentString(); pct != "" {
		s += " (" + pct + ")"
	}
	return s
}

func (a App) renderWalletTab(cw int) string {
	t := theme.Active
	total := a.pl.Total

	var b strings.Builder
	b.WriteString(components.MetricRow([]components.Metric{
		{Label: "Invested", Value: money.FormatBRL(total.Initial)},
		{Label: "Current", Value: money.FormatBRL(total.Current)},
		{Label: "Profit / loss", Value: money.Signed(total.Value, money.BRL), Note: total.PercentString(), Tone: total.Sign()},
	}, cw))
	b.WriteString("\n")

	lines := a.pl.Lines()
	innerW := components.CardInnerWidth(cw)
	amountW, plW := 16, 26
	labelW := innerW - 2 - 2*amountW - plW
	if labelW < 16 {
		labelW = 16
	}

	headStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Bold(true)
	var body strings.Builder
	body.WriteString(headStyle.Render(truncStr(fmt.Sprintf("  %-*s%*s%*s%*s", labelW, "Bucket", amountW, "Initial", amountW, "Current", plW, "P/L"), innerW)))
	body.WriteString("\n")

	for i, p := range lines {
		selected := i == a.walletCursor
		bg := t.Surface
		if selected {
			bg = t.SurfaceHover
		}
		style := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(bg).Bold(selected)

		marker := "  "
		if selected {
			marker = "▸ "
		}
		row := style.Render(fmt.Sprintf("%s%-*s%*s%*s", marker, labelW, p.Category.Label(), amountW, money.FormatBRL(p.Initial), amountW, money.FormatBRL(p.Current)))
		row += plStyle(p).Background(bg).Render(fmt.Sprintf("%*s", plW, plText(p)))
		if pad := innerW - lipgloss.Width(row); pad > 0 {
			row += lipgloss.NewStyle().Background(bg).Render(strings.Repeat(" ", pad))
		}
		body.WriteString(row)
		body.WriteString("\n")
	}

	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	body.WriteString(dimStyle.Render(strings.Repeat("─", innerW)))
	body.WriteString("\n")
	totalRow := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true).
		Render(fmt.Sprintf("  %-*s%*s%*s", labelW, "Total", amountW, money.FormatBRL(total.Initial), amountW, money.FormatBRL(total.Current)))
	totalRow += plStyle(total).Bold(true).Render(fmt.Sprintf("%*s", plW, plText(total)))
	body.WriteString(totalRow)

	b.WriteString(components.ContentCard("Wallet", body.String(), cw))
	b.WriteString("\n")

	hint := "US stocks and ETFs are updated together; the value is split by their cost basis."
	if q, ok := a.bestQuote(); ok {
		if usd, ok := invest.ConvertBRL(a.pl.Dollar.Current, q.USDPerBRL); ok {
			hint = fmt.Sprintf("Dollar bucket is worth %s at %s. ", money.FormatUSD(usd), q.Status()) + hint
		}
	}
	b.WriteString(components.ContentCard("Notes", dimStyle.Render(truncStr(hint, innerW)), cw))
	return b.String()
}
