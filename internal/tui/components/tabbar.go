package components

import (
	"strings"

	"github.com/theirongolddev/fintrack/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Tab represents a single tab in the tab bar.
type Tab struct {
	Name   string
	Key    rune
	KeyPos int // position of the shortcut letter in the name (-1 if not in name)
}

// Tabs defines all available tabs, in display order.
var Tabs = []Tab{
	{Name: "Subscriptions", Key: 's', KeyPos: 0},
	{Name: "Debts", Key: 'd', KeyPos: 0},
	{Name: "Calculator", Key: 'c', KeyPos: 0},
	{Name: "Wallet", Key: 'w', KeyPos: 0},
	{Name: "Settings", Key: 'x', KeyPos: -1}, // s belongs to Subscriptions
}

func renderTab(tab Tab, active bool) string {
	t := theme.Active

	if active {
		return lipgloss.NewStyle().
			Foreground(t.AccentBright).
			Background(t.SurfaceHover).
			Bold(true).
			Padding(0, 1).
			Render(tab.Name)
	}

	base := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Underline(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var label string
	if tab.KeyPos >= 0 && tab.KeyPos < len(tab.Name) {
		label = base.Render(tab.Name[:tab.KeyPos]) +
			keyStyle.Render(tab.Name[tab.KeyPos:tab.KeyPos+1]) +
			base.Render(tab.Name[tab.KeyPos+1:])
	} else {
		label = base.Render(tab.Name) +
			dimStyle.Render("[") + keyStyle.Render(string(tab.Key)) + dimStyle.Render("]")
	}
	pad := base.Render(" ")
	return pad + label + pad
}

// TabVisualWidth is the rendered width of tab, used for mouse hit testing.
func TabVisualWidth(tab Tab, active bool) int {
	return lipgloss.Width(renderTab(tab, active))
}

// RenderTabBar renders the tab bar with the given active index, padded to width.
func RenderTabBar(activeIdx int, width int) string {
	t := theme.Active
	sep := lipgloss.NewStyle().Background(t.Surface).Render(" ")

	parts := make([]string, len(Tabs))
	for i, tab := range Tabs {
		parts[i] = renderTab(tab, i == activeIdx)
	}
	bar := strings.Join(parts, sep)

	return lipgloss.NewStyle().Background(t.Surface).Width(width).Render(bar)
}

// TabIdxByKey returns the tab index for a given key press, or -1.
func TabIdxByKey(key rune) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}
