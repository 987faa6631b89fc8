package components

import (
	"strings"

	"github.com/theirongolddev/fintrack/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Status is what the bottom bar shows.
type Status struct {
	Hints    string // key hints for the active tab
	Toast    string // transient feedback, replaces the hints while set
	ToastErr bool
	Rate     string // exchange-rate summary
	Spinner  string // non-empty while a rate fetch is in flight
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, s Status) string {
	t := theme.Active

	barStyle := lipgloss.NewStyle().Background(t.Surface)
	hintStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	rateStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	left := hintStyle.Render(" " + s.Hints)
	if s.Toast != "" {
		toastColor := t.Green
		if s.ToastErr {
			toastColor = t.Red
		}
		left = lipgloss.NewStyle().Foreground(toastColor).Background(t.Surface).Bold(true).Render(" " + s.Toast)
	}

	right := ""
	if s.Spinner != "" {
		right += lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Render(s.Spinner) + barStyle.Render(" ")
	}
	if s.Rate != "" {
		right += rateStyle.Render(s.Rate + " ")
	}

	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 0 {
		padding = 0
	}
	gap := barStyle.Render(strings.Repeat(" ", padding))

	return barStyle.Width(width).Render(left + gap + right)
}

