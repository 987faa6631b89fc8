package components

import (
	"fmt"

	"github.com/theirongolddev/fintrack/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// Bar renders a solid bar of barWidth cells filled to frac in the given colour.
func Bar(frac float64, barWidth int, fill lipgloss.Color) string {
	t := theme.Active
	if barWidth < 4 {
		barWidth = 4
	}
	bar := progress.New(
		progress.WithSolidFill(string(fill)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)
	return bar.ViewAs(clamp01(frac))
}

// ProgressBar renders a bar followed by its percentage. The bar turns green
// once complete.
func ProgressBar(frac float64, barWidth int, fill lipgloss.Color) string {
	t := theme.Active
	frac = clamp01(frac)
	if frac >= 1 {
		fill = t.Green
	}
	pctStyle := lipgloss.NewStyle().Foreground(fill).Background(t.Surface).Bold(true)
	space := lipgloss.NewStyle().Background(t.Surface).Render(" ")
	return Bar(frac, barWidth, fill) + space + pctStyle.Render(fmt.Sprintf("%3.0f%%", frac*100))
}
