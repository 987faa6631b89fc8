// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"time"

	"github.com/theirongolddev/fintrack/internal/invest"
	"github.com/theirongolddev/fintrack/internal/money"
)

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.0f%%", f*100)
}

// FormatAge formats how long ago t was, relative to now.
// e.g., 45s -> "just now", 125s -> "2m ago", 3725s -> "1h 2m ago"
func FormatAge(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	secs := int64(now.Sub(t).Seconds())
	if secs < 60 {
		return "just now"
	}

	hours := secs / 3600
	mins := (secs % 3600) / 60
	if hours >= 24 {
		return fmt.Sprintf("%dd ago", hours/24)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm ago", hours, mins)
	}
	return fmt.Sprintf("%dm ago", mins)
}

// FormatPL renders a P/L line as "+R$20,00 (20.00%)", coloured by sign.
// The percentage is omitted when undefined.
func FormatPL(p invest.PL) string {
	s := money.Signed(p.Value, money.BRL)
	if pct := p.PercentString(); pct != "" {
		s += " (" + pct + ")"
	}
	switch p.Sign() {
	case 1:
		return profitStyle.Render(s)
	case -1:
		return lossStyle.Render(s)
	}
	return s
}

// Plural returns "1 item" or "n items".
func Plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
