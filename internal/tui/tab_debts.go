package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/debt"
	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/money"
	"github.com/theirongolddev/fintrack/internal/tui/components"
	"github.com/theirongolddev/fintrack/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type debtsState struct {
	cursor int
	filter debt.Filter
}

func nextDebtFilter(f debt.Filter) debt.Filter {
	for i, x := range debt.Filters {
		if x == f {
			return debt.Filters[(i+1)%len(debt.Filters)]
		}
	}
	return debt.FilterAll
}

func (a App) selectedDebt() (model.Debt, bool) {
	if len(a.debtItems) == 0 {
		return model.Debt{}, false
	}
	return a.debtItems[a.debtState.cursor], true
}

func (a App) updateDebtsKeys(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "a", "e", "enter", "p", "D", "delete":
		if a.debts == nil {
			a.bookUnavailable("debts")
			return a, nil, true
		}
	}

	switch key {
	case "f":
		a.debtState.filter = nextDebtFilter(a.debtState.filter)
		a.debtState.cursor = 0
		a.recompute()
		return a, nil, true

	case "a":
		v := newDebtValues(nil, a.day)
		return a, a.openForm(formDebt, newDebtForm(v), v), true

	case "e", "enter":
		d, ok := a.selectedDebt()
		if !ok {
			return a, nil, true
		}
		v := newDebtValues(&d, a.day)
		return a, a.openForm(formDebt, newDebtForm(v), v), true

	case "p":
		d, ok := a.selectedDebt()
		if !ok {
			return a, nil, true
		}
		limit := debt.SuggestedPayment(d)
		if !limit.IsPositive() {
			a.flash(fmt.Sprintf("'%s' is already paid off", d.Description))
			return a, nil, true
		}
		v := newPaymentValues(d, limit, a.day)
		return a, a.openForm(formPayment, newPaymentForm(v), v), true

	case "D", "delete":
		d, ok := a.selectedDebt()
		if !ok {
			return a, nil, true
		}
		v := &formValues{id: d.ID}
		desc := "Its payment history is deleted with it."
		f := newConfirmForm(fmt.Sprintf("Delete '%s'?", d.Description), desc, "Delete", v)
		return a, a.openForm(formDeleteDebt, f, v), true
	}
	return a, nil, false
}

func debtColor(s debt.State) lipgloss.Color {
	t := theme.Active
	switch s {
	case debt.StatePaid:
		return t.Green
	case debt.StateOverdue:
		return t.Red
	case debt.StateNearingDue:
		return t.Orange
	}
	return t.Accent
}

func (a App) renderDebtsTab(cw, h int) string {
	t := theme.Active
	tot := a.debtTotals

	var b strings.Builder

	remainingNote := cli.Plural(tot.Open, "open debt")
	if tot.Overdue > 0 {
		remainingNote += fmt.Sprintf(", %d overdue", tot.Overdue)
	}
	b.WriteString(components.MetricRow([]components.Metric{
		{Label: "Total owed", Value: money.FormatBRL(tot.Owed)},
		{Label: "Paid", Value: money.FormatBRL(tot.Paid), Tone: tot.Paid.Sign()},
		{Label: "Remaining", Value: money.FormatBRL(tot.Remaining), Note: remainingNote, Tone: -sign(tot.Overdue)},
	}, cw))
	b.WriteString("\n")

	title := fmt.Sprintf("Debts · %s (%d)", a.debtState.filter, len(a.debtRows))
	if len(a.debtRows) == 0 {
		empty := "No debts. Press a to add one."
		if a.debtState.filter != debt.FilterAll {
			empty = "Nothing matches this filter. Press f to change it."
		}
		b.WriteString(components.ContentCard(title, lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Render(empty), cw))
		return b.String()
	}

	innerW := components.CardInnerWidth(cw)
	compact := a.isCompactLayout()

	amountW, dueW, barW := 14, 12, 20
	paidW := amountW
	if compact {
		paidW, barW = 0, 10
	}
	progressW := barW + 5 // bar, space and "100%"
	descW := innerW - 2 - amountW - paidW - amountW - dueW - progressW
	if descW < 10 {
		descW = 10
	}

	headStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Bold(true)
	head := fmt.Sprintf("  %-*s%*s", descW, "Description", amountW, "Total")
	if !compact {
		head += fmt.Sprintf("%*s", paidW, "Paid")
	}
	head += fmt.Sprintf("%*s  %-*s%s", amountW, "Remaining", dueW-2, "Due", "Progress")

	var body strings.Builder
	body.WriteString(headStyle.Render(truncStr(head, innerW)))
	body.WriteString("\n")

	start, end := visibleRange(a.debtState.cursor, len(a.debtRows), h-12)
	for i := start; i < end; i++ {
		r := a.debtRows[i]
		selected := i == a.debtState.cursor

		bg := t.Surface
		if selected {
			bg = t.SurfaceHover
		}
		fg := t.TextPrimary
		if r.State == debt.StateOverdue || r.State == debt.StatePaid {
			fg = debtColor(r.State)
		}
		style := lipgloss.NewStyle().Foreground(fg).Background(bg).Bold(selected)

		marker := "  "
		if selected {
			marker = "▸ "
		}
		text := fmt.Sprintf("%s%-*s%*s", marker, descW, truncStr(r.Description, descW-1), amountW, r.Total)
		if !compact {
			text += fmt.Sprintf("%*s", paidW, r.Paid)
		}
		text += fmt.Sprintf("%*s  %-*s", amountW, r.Remaining, dueW-2, r.DueDate)

		line := style.Render(text) + components.ProgressBar(r.Progress, barW, debtColor(r.State))
		if pad := innerW - lipgloss.Width(line); pad > 0 {
			line += lipgloss.NewStyle().Background(bg).Render(strings.Repeat(" ", pad))
		}
		body.WriteString(line)
		body.WriteString("\n")
	}

	b.WriteString(components.ContentCard(title, strings.TrimSuffix(body.String(), "\n"), cw))
	b.WriteString("\n")
	b.WriteString(a.renderDebtDetail(cw))
	return b.String()
}

func (a App) renderDebtDetail(cw int) string {
	t := theme.Active
	r := a.debtRows[a.debtState.cursor]
	d := a.debtItems[a.debtState.cursor]

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	stateStyle := lipgloss.NewStyle().Foreground(debtColor(r.State)).Background(t.Surface).Bold(true)

	parts := []string{
		stateStyle.Render(stateLabel(r.State)),
		labelStyle.Render("Started: ") + valueStyle.Render(d.StartDate.Display()),
		labelStyle.Render("Payments: ") + valueStyle.Render(fmt.Sprint(r.Payments)),
	}
	if n := len(d.Payments); n > 0 {
		last := d.Payments[n-1]
		parts = append(parts, labelStyle.Render("Last: ")+valueStyle.Render(money.FormatBRL(last.Amount)+" on "+last.Date.Display()))
	}
	if r.Notes != "" {
		parts = append(parts, labelStyle.Render("Notes: ")+valueStyle.Render(truncStr(r.Notes, components.CardInnerWidth(cw)/3)))
	}

	hint := "[p] add payment  [e] edit  [D] delete"
	if r.State == debt.StatePaid {
		hint = "[e] edit  [D] delete"
	}
	body := strings.Join(parts, labelStyle.Render("  ·  ")) + "\n" +
		lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Render(hint)
	return components.ContentCard(r.Description, body, cw)
}

func stateLabel(s debt.State) string {
	switch s {
	case debt.StatePaid:
		return "Paid off"
	case debt.StateOverdue:
		return "Overdue"
	case debt.StateNearingDue:
		return "Due soon"
	}
	return "Open"
}
