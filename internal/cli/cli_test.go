package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/fintrack/internal/invest"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/shopspring/decimal"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func TestFormatAge(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{30 * time.Second, "just now"},
		{125 * time.Second, "2m ago"},
		{62 * time.Minute, "1h 2m ago"},
		{50 * time.Hour, "2d ago"},
	}
	for _, tt := range tests {
		if got := FormatAge(now.Add(-tt.ago), now); got != tt.want {
			t.Errorf("FormatAge(-%s) = %q, want %q", tt.ago, got, tt.want)
		}
	}
	if got := FormatAge(time.Time{}, now); got != "never" {
		t.Errorf("zero time = %q", got)
	}
}

func TestFormatPL(t *testing.T) {
	pct := decimal.NewFromInt(20)
	got := FormatPL(invest.PL{Value: decimal.NewFromInt(20), Percent: &pct})
	if !strings.Contains(got, "+R$20,00 (20.00%)") {
		t.Errorf("FormatPL = %q", got)
	}
	if got := FormatPL(invest.PL{}); got != "R$0,00" {
		t.Errorf("flat FormatPL = %q", got)
	}
}

func TestPlural(t *testing.T) {
	if Plural(1, "debt") != "1 debt" || Plural(3, "debt") != "3 debts" {
		t.Fatal("Plural")
	}
}

func TestRenderTableAlignsByDisplayWidth(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Name", "Value"},
		Rows: [][]string{
			{"Café", "R$10,00"},
			{"---"},
			{"Gym", "R$100,00"},
		},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 7 {
		t.Fatalf("got %d lines, want 7:\n%s", len(lines), out)
	}
	for _, l := range lines[1:] {
		if w := len([]rune(l)); w != len([]rune(lines[0])) {
			t.Errorf("line %q has width %d, want %d", l, w, len([]rune(lines[0])))
		}
	}
	if !strings.Contains(out, "│ Café │  R$10,00 │") {
		t.Errorf("row not padded as expected:\n%s", out)
	}
}

func TestRenderProgressBarClamps(t *testing.T) {
	if got := RenderProgressBar(1.5, 4); !strings.Contains(got, "████") || !strings.HasSuffix(got, "100%") {
		t.Errorf("over-full bar = %q", got)
	}
	if got := RenderProgressBar(0.5, 4); !strings.Contains(got, "██░░") || !strings.HasSuffix(got, "50%") {
		t.Errorf("half bar = %q", got)
	}
}
