package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/money"
	"github.com/theirongolddev/fintrack/internal/subscription"
	"github.com/theirongolddev/fintrack/internal/tui/components"
	"github.com/theirongolddev/fintrack/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type subsState struct {
	cursor int
	filter subscription.Filter
}

func nextSubscriptionFilter(f subscription.Filter) subscription.Filter {
	for i, x := range subscription.Filters {
		if x == f {
			return subscription.Filters[(i+1)%len(subscription.Filters)]
		}
	}
	return subscription.FilterAll
}

func (a App) selectedSubscription() (model.Subscription, bool) {
	if len(a.subItems) == 0 {
		return model.Subscription{}, false
	}
	return a.subItems[a.subState.cursor], true
}

func (a App) updateSubscriptionsKeys(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "a", "e", "enter", "p", " ", "D", "delete":
		if a.subs == nil {
			a.bookUnavailable("subscriptions")
			return a, nil, true
		}
	}

	switch key {
	case "f":
		a.subState.filter = nextSubscriptionFilter(a.subState.filter)
		a.subState.cursor = 0
		a.recompute()
		return a, nil, true

	case "a":
		v := newSubscriptionValues(nil, a.day)
		return a, a.openForm(formSubscription, newSubscriptionForm(v), v), true

	case "e", "enter":
		it, ok := a.selectedSubscription()
		if !ok {
			return a, nil, true
		}
		v := newSubscriptionValues(&it, a.day)
		return a, a.openForm(formSubscription, newSubscriptionForm(v), v), true

	case "p", " ":
		it, ok := a.selectedSubscription()
		if !ok {
			return a, nil, true
		}
		status, err := a.subs.Toggle(it.ID)
		if err != nil {
			a.flashErr(err)
			return a, nil, true
		}
		if status == model.StatusPaid {
			a.flash(fmt.Sprintf("'%s' marked as paid", it.Name))
		} else {
			a.flash(fmt.Sprintf("'%s' moved back to open", it.Name))
		}
		a.recompute()
		return a, nil, true

	case "D", "delete":
		it, ok := a.selectedSubscription()
		if !ok {
			return a, nil, true
		}
		v := &formValues{id: it.ID}
		f := newConfirmForm(fmt.Sprintf("Delete '%s'?", it.Name), "This cannot be undone.", "Delete", v)
		return a, a.openForm(formDeleteSubscription, f, v), true
	}
	return a, nil, false
}

func (a App) renderSubscriptionsTab(cw, h int) string {
	t := theme.Active
	sum := a.subSummary

	var b strings.Builder

	overdueTone := 0
	if sum.OverdueCount > 0 {
		overdueTone = -1
	}
	b.WriteString(components.MetricRow([]components.Metric{
		{Label: "Open", Value: money.FormatBRL(sum.Open), Note: cli.Plural(sum.OpenCount, "item")},
		{Label: "Overdue", Value: money.FormatBRL(sum.Overdue), Note: cli.Plural(sum.OverdueCount, "item"), Tone: overdueTone},
		{Label: "Paid", Value: money.FormatBRL(sum.Paid), Note: cli.Plural(sum.PaidCount, "item"), Tone: sign(sum.PaidCount)},
	}, cw))
	b.WriteString("\n")

	title := fmt.Sprintf("Subscriptions · %s (%d)", a.subState.filter, len(a.subRows))
	if len(a.subRows) == 0 {
		empty := "No subscriptions. Press a to add one."
		if a.subState.filter != subscription.FilterAll {
			empty = "Nothing matches this filter. Press f to change it."
		}
		b.WriteString(components.ContentCard(title, lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Render(empty), cw))
		return b.String()
	}

	innerW := components.CardInnerWidth(cw)
	compact := a.isCompactLayout()

	valueW, dueW, methodW, statusW := 14, 11, 14, 10
	if compact {
		methodW = 0
	}
	nameW := innerW - valueW - dueW - methodW - statusW - 2
	if nameW < 10 {
		nameW = 10
	}

	headStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Bold(true)
	head := fmt.Sprintf("  %-*s%*s  %-*s", nameW, "Name", valueW, "Value", dueW-2, "Due")
	if !compact {
		head += fmt.Sprintf("%-*s", methodW, "Method")
	}
	head += fmt.Sprintf("%-*s", statusW, "Status")

	var body strings.Builder
	body.WriteString(headStyle.Render(truncStr(head, innerW)))
	body.WriteString("\n")

	// metrics (5) + card chrome (3) + header (1) + detail (3)
	start, end := visibleRange(a.subState.cursor, len(a.subRows), h-12)
	for i := start; i < end; i++ {
		r := a.subRows[i]
		selected := i == a.subState.cursor

		bg := t.Surface
		if selected {
			bg = t.SurfaceHover
		}
		fg := t.TextPrimary
		status := "Open"
		switch r.State {
		case subscription.RowPaid:
			fg, status = t.Green, r.Badge
		case subscription.RowOverdue:
			fg, status = t.Late(false), "Overdue"
		case subscription.RowRepeatedlyOverdue:
			fg, status = t.Late(true), fmt.Sprintf("Late ×%d", r.Delays)
		}

		marker := "  "
		if selected {
			marker = "▸ "
		}
		line := fmt.Sprintf("%s%-*s%*s  %-*s", marker, nameW, truncStr(r.Name, nameW-1), valueW, r.Value, dueW-2, r.DueDate)
		if !compact {
			line += fmt.Sprintf("%-*s", methodW, truncStr(r.PaymentMethod, methodW-1))
		}
		line += fmt.Sprintf("%-*s", statusW, status)

		style := lipgloss.NewStyle().Foreground(fg).Background(bg).Width(innerW)
		if selected {
			style = style.Bold(true)
		}
		body.WriteString(style.Render(truncStr(line, innerW)))
		body.WriteString("\n")
	}

	b.WriteString(components.ContentCard(title, strings.TrimSuffix(body.String(), "\n"), cw))
	b.WriteString("\n")
	b.WriteString(a.renderSubscriptionDetail(cw))
	return b.String()
}

func (a App) renderSubscriptionDetail(cw int) string {
	t := theme.Active
	r := a.subRows[a.subState.cursor]

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	parts := []string{
		labelStyle.Render("Method: ") + valueStyle.Render(r.PaymentMethod),
	}
	if r.Delays > 0 {
		parts = append(parts, labelStyle.Render("Late: ")+valueStyle.Render(cli.Plural(r.Delays, "time")))
	}
	if r.Notes != "" {
		parts = append(parts, labelStyle.Render("Notes: ")+valueStyle.Render(truncStr(r.Notes, components.CardInnerWidth(cw)/2)))
	}

	actions := make([]string, len(r.Actions))
	for i, act := range r.Actions {
		actions[i] = actionHint(act)
	}
	sep := labelStyle.Render("  ·  ")
	body := strings.Join(parts, sep) + "\n" + lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Render(strings.Join(actions, "  "))
	return components.ContentCard(r.Name, body, cw)
}

func actionHint(act subscription.Action) string {
	switch act {
	case subscription.ActionMarkPaid:
		return "[p] mark paid"
	case subscription.ActionUndo:
		return "[p] undo"
	case subscription.ActionEdit:
		return "[e] edit"
	case subscription.ActionDelete:
		return "[D] delete"
	}
	return string(act)
}

func sign(n int) int {
	if n > 0 {
		return 1
	}
	return 0
}
