package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/theirongolddev/fintrack/internal/tui/theme"
)

func init() {
	// Force TrueColor output so ANSI codes are generated in tests
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func TestLayoutRowSumsToTotal(t *testing.T) {
	for _, tc := range []struct{ total, n int }{{100, 3}, {80, 4}, {7, 7}, {10, 3}} {
		sum := 0
		for _, w := range LayoutRow(tc.total, tc.n) {
			sum += w
		}
		if sum != tc.total {
			t.Errorf("LayoutRow(%d, %d) sums to %d", tc.total, tc.n, sum)
		}
	}
	if LayoutRow(10, 0) != nil {
		t.Error("LayoutRow with n=0 should be nil")
	}
}

func TestCardRowBackgroundFill(t *testing.T) {
	theme.SetActive("flexoki-dark")

	shortCard := ContentCard("Short", "Content", 22)
	tallCard := ContentCard("Tall", "Line 1\nLine 2\nLine 3\nLine 4\nLine 5", 22)

	shortLines := lipgloss.Height(shortCard)
	tallLines := lipgloss.Height(tallCard)
	if shortLines >= tallLines {
		t.Fatal("test setup error: short card should be shorter than tall card")
	}

	joined := CardRow([]string{tallCard, shortCard})
	lines := strings.Split(joined, "\n")
	if len(lines) != tallLines {
		t.Errorf("joined height = %d, want %d", len(lines), tallLines)
	}

	for i := shortLines; i < len(lines); i++ {
		if !strings.Contains(lines[i], "\x1b[") {
			t.Errorf("line %d has no ANSI codes, padding is unstyled", i)
		}
	}
}

func TestMetricRowWidth(t *testing.T) {
	row := MetricRow([]Metric{
		{Label: "Total", Value: "R$100,00"},
		{Label: "Overdue", Value: "R$50,00", Tone: -1},
		{Label: "Paid", Value: "R$50,00", Tone: 1, Note: "2 items"},
	}, 90)
	if w := lipgloss.Width(row); w != 90 {
		t.Fatalf("metric row width = %d, want 90", w)
	}
}

func TestTabBar(t *testing.T) {
	for i, tab := range Tabs {
		if got := TabIdxByKey(tab.Key); got != i {
			t.Errorf("TabIdxByKey(%q) = %d, want %d", tab.Key, got, i)
		}
	}
	if TabIdxByKey('z') != -1 {
		t.Error("unknown key should map to -1")
	}

	settings := Tabs[len(Tabs)-1]
	if TabVisualWidth(settings, false) != TabVisualWidth(settings, true)+3 {
		t.Error("inactive Settings should add the [x] hint")
	}
	if got := lipgloss.Width(RenderTabBar(0, 120)); got != 120 {
		t.Errorf("tab bar width = %d, want 120", got)
	}
}

func TestStatusBarPrefersToast(t *testing.T) {
	bar := RenderStatusBar(100, Status{Hints: "[?]help", Toast: "Saved", Rate: "1 USD = R$ 5.0000"})
	if strings.Contains(bar, "[?]help") || !strings.Contains(bar, "Saved") {
		t.Fatalf("toast should replace hints: %q", bar)
	}
	if !strings.Contains(bar, "1 USD = R$ 5.0000") {
		t.Fatalf("rate missing: %q", bar)
	}
	if w := lipgloss.Width(bar); w != 100 {
		t.Fatalf("status bar width = %d, want 100", w)
	}
}

func TestProgressBarClamps(t *testing.T) {
	full := ProgressBar(1.7, 10, theme.Active.Accent)
	if !strings.Contains(full, "100%") {
		t.Fatalf("over-full bar should read 100%%: %q", full)
	}
	empty := ProgressBar(-1, 10, theme.Active.Accent)
	if !strings.Contains(empty, "  0%") {
		t.Fatalf("negative bar should read 0%%: %q", empty)
	}
}
