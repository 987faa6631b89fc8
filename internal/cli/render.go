package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme colors (Flexoki Dark)
var (
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorOrange    = lipgloss.Color("#DA702C")
	ColorRed       = lipgloss.Color("#D14D41")
	ColorYellow    = lipgloss.Color("#D0A215")
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	profitStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	lossStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	warnStyle = lipgloss.NewStyle().
			Foreground(ColorOrange)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)
)

// Table represents a bordered text table for CLI output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	// LeftCols is how many leading columns are left-aligned. Columns
	// after them are right-aligned. Zero means one.
	LeftCols int
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(55).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

// RenderTable renders a bordered table with headers and rows. A row
// holding the single cell "---" renders as a separator.
func RenderTable(t Table) string {
	if len(t.Rows) == 0 && len(t.Headers) == 0 {
		return ""
	}

	numCols := len(t.Headers)
	if numCols == 0 {
		numCols = len(t.Rows[0])
	}
	left := t.LeftCols
	if left < 1 {
		left = 1
	}

	widths := make([]int, numCols)
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < numCols {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}

	rule := func(l, mid, r string) string {
		var b strings.Builder
		b.WriteString(l)
		for i, w := range widths {
			b.WriteString(strings.Repeat("─", w+2))
			if i < numCols-1 {
				b.WriteString(mid)
			}
		}
		b.WriteString(r)
		return dimStyle.Render(b.String()) + "\n"
	}

	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(headerStyle.Render(t.Title))
		b.WriteString("\n")
	}

	b.WriteString(rule("╭", "┬", "╮"))

	if len(t.Headers) > 0 {
		b.WriteString(dimStyle.Render("│"))
		for i, h := range t.Headers {
			b.WriteString(headerStyle.Render(pad(h, widths[i], i < left)))
			b.WriteString(dimStyle.Render("│"))
		}
		b.WriteString("\n")
		b.WriteString(rule("├", "┼", "┤"))
	}

	for _, row := range t.Rows {
		if len(row) == 1 && row[0] == "---" {
			b.WriteString(rule("├", "┼", "┤"))
			continue
		}

		b.WriteString(dimStyle.Render("│"))
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			b.WriteString(valueStyle.Render(pad(cell, widths[i], i < left)))
			b.WriteString(dimStyle.Render("│"))
		}
		b.WriteString("\n")
	}

	b.WriteString(rule("╰", "┴", "╯"))
	return b.String()
}

// pad surrounds cell with one space and fills it to width, measuring
// display cells rather than bytes.
func pad(cell string, width int, leftAlign bool) string {
	fill := strings.Repeat(" ", max(0, width-lipgloss.Width(cell)))
	if leftAlign {
		return " " + cell + fill + " "
	}
	return " " + fill + cell + " "
}

// RenderProgressBar renders a text progress bar for a 0-1 fraction.
func RenderProgressBar(frac float64, width int) string {
	frac = min(max(frac, 0), 1)
	filled := min(int(frac*float64(width)), width)

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("[%s] %s", mutedStyle.Render(bar), FormatPercent(frac))
}

// RenderWarning renders a line for stderr alerts.
func RenderWarning(msg string) string {
	return warnStyle.Render("  ! " + msg)
}

// RenderMuted renders secondary text.
func RenderMuted(s string) string {
	return mutedStyle.Render(s)
}

// RenderState colours a status word: paid green, overdue red, anything
// nearing a deadline yellow.
func RenderState(state string) string {
	switch state {
	case "paid":
		return profitStyle.Render(state)
	case "overdue", "repeatedly-overdue":
		return lossStyle.Render(state)
	case "nearing-due":
		return lipgloss.NewStyle().Foreground(ColorYellow).Render(state)
	}
	return state
}
